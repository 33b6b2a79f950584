package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/inkwell-labs/cartograph/internal/util"
	"github.com/inkwell-labs/cartograph/pkg/ai"
	"github.com/inkwell-labs/cartograph/pkg/common"
	"github.com/inkwell-labs/cartograph/pkg/logger"
)

type enhanceEntity struct {
	Name       string  `json:"name" jsonschema_description:"Canonical name of the entity as it appears in the text"`
	Type       string  `json:"type" jsonschema_description:"One of the provided entity types"`
	Confidence float64 `json:"confidence" jsonschema_description:"Certainty between 0.0 and 1.0 that this is a real entity of the given type"`
}

type enhanceResponse struct {
	Entities []enhanceEntity `json:"entities" jsonschema_description:"Entities identified in the text"`
}

const (
	lmAdmitThreshold   = 0.55
	lmConfidenceCap    = 0.92
	agreementBoostCap  = 0.98
	lmSnippetMaxLength = 200
)

// EnhanceEntities issues one structured extraction request per segment and
// merges the model's entities into the baseline list. A segment whose
// requests exhaust their retries is logged and skipped; the baseline result
// for it stands. The merged list preserves baseline ordering, with model-only
// entities appended in discovery order.
func EnhanceEntities(
	ctx context.Context,
	client ai.GraphAIClient,
	segments []common.TextSegment,
	docID string,
	baseline []common.ExtractedEntity,
	maxRetries int,
) []common.ExtractedEntity {
	typeList := make([]string, 0, len(common.EntityTypes))
	for _, t := range common.EntityTypes {
		typeList = append(typeList, string(t))
	}
	systemPrompt := fmt.Sprintf(ai.EnhancePrompt, strings.Join(typeList, ", "))

	lmEntities := make([]common.ExtractedEntity, 0)
	lmIndex := make(map[string]int)

	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}

		res, err := util.RetryWithBackoff(ctx, maxRetries, util.DefaultRetryBaseDelay,
			func(ctx context.Context) (enhanceResponse, error) {
				var out enhanceResponse
				err := client.GenerateCompletionWithFormat(
					ctx,
					"extract_entities",
					"Extract typed entities from a text segment.",
					seg.Text,
					&out,
					ai.WithSystemPrompts(systemPrompt),
				)
				return out, err
			})
		if err != nil {
			logger.Warn("[Enhance] extraction failed, keeping baseline for segment",
				"doc", docID, "segment", seg.Index, "err", err)
			continue
		}

		snippet := seg.Text
		if len(snippet) > lmSnippetMaxLength {
			snippet = cutAtRuneBoundary(snippet, lmSnippetMaxLength)
		}

		for _, ent := range res.Entities {
			name := strings.TrimSpace(ent.Name)
			if len(name) < 2 {
				continue
			}
			typ, ok := common.ParseEntityType(strings.ToUpper(strings.TrimSpace(ent.Type)))
			if !ok {
				continue
			}
			confidence := util.Min(lmConfidenceCap, ent.Confidence)

			source := common.SourceSnippet{
				DocumentID:   docID,
				Text:         snippet,
				SegmentIndex: seg.Index,
			}

			key := mergeKey(name, typ)
			if i, ok := lmIndex[key]; ok {
				lmEntities[i].Sources = append(lmEntities[i].Sources, source)
				lmEntities[i].Confidence = util.Min(lmConfidenceCap, lmEntities[i].Confidence+0.02)
				continue
			}
			lmIndex[key] = len(lmEntities)
			lmEntities = append(lmEntities, common.ExtractedEntity{
				Name:       name,
				Type:       typ,
				Confidence: confidence,
				Sources:    []common.SourceSnippet{source},
				Aliases:    []string{},
			})
		}
	}

	return mergeEnhanced(baseline, lmEntities)
}

// mergeEnhanced folds model entities into the baseline list. An entity seen
// by both stages gets an agreement boost; a model-only entity is admitted
// only above the confidence floor, since the model alone is never trusted as
// much as a confirmed baseline match.
func mergeEnhanced(baseline, lmEntities []common.ExtractedEntity) []common.ExtractedEntity {
	merged := make([]common.ExtractedEntity, len(baseline))
	copy(merged, baseline)

	index := make(map[string]int, len(merged))
	for i, e := range merged {
		index[mergeKey(e.Name, e.Type)] = i
	}

	for _, lm := range lmEntities {
		key := mergeKey(lm.Name, lm.Type)
		i, found := index[key]
		if !found {
			if lm.Confidence >= lmAdmitThreshold {
				index[key] = len(merged)
				merged = append(merged, lm)
			}
			continue
		}

		merged[i].Confidence = util.Min(agreementBoostCap, util.Max(merged[i].Confidence, lm.Confidence)+0.05)
		existing := make(map[string]bool, len(merged[i].Sources))
		for _, s := range merged[i].Sources {
			existing[s.Text] = true
		}
		for _, s := range lm.Sources {
			if !existing[s.Text] {
				merged[i].Sources = append(merged[i].Sources, s)
				existing[s.Text] = true
			}
		}
	}

	return merged
}

func mergeKey(name string, typ common.EntityType) string {
	return NormalizeText(name) + "\x00" + string(typ)
}
