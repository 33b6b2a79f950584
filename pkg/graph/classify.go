package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/inkwell-labs/cartograph/internal/util"
	"github.com/inkwell-labs/cartograph/pkg/ai"
	"github.com/inkwell-labs/cartograph/pkg/common"
	"github.com/inkwell-labs/cartograph/pkg/logger"
)

const (
	patternConfidence       = 0.85
	classifyAcceptThreshold = 0.5
	maxClassifySnippets     = 5
)

// relationPattern matches a keyword in the shared example snippets, gated by
// the endpoint entity types. An empty type means that side is unconstrained;
// the gate accepts either endpoint order.
type relationPattern struct {
	keywords []string
	types    [2]common.EntityType
	label    string
}

var relationPatterns = []relationPattern{
	{[]string{"founded", "co-founded", "started", "established", "launched"}, [2]common.EntityType{}, "founded"},
	{[]string{"ceo", "chief executive", "president of", "head of", "director of"}, [2]common.EntityType{common.EntityPerson, common.EntityOrganization}, "ceo_of"},
	{[]string{"works at", "employed by", "employee of", "working at", "joined", "hired by"}, [2]common.EntityType{common.EntityPerson, common.EntityOrganization}, "works_at"},
	{[]string{"studied at", "graduated from", "attended"}, [2]common.EntityType{common.EntityPerson, common.EntityOrganization}, "studied_at"},
	{[]string{"authored", "wrote", "published"}, [2]common.EntityType{common.EntityPerson, common.EntityPaper}, "authored"},
	{[]string{"created", "invented", "designed"}, [2]common.EntityType{}, "created"},
	{[]string{"developed", "built"}, [2]common.EntityType{}, "developed"},
	{[]string{"headquartered in", "based in", "headquarters in"}, [2]common.EntityType{common.EntityOrganization, common.EntityLocation}, "headquartered_in"},
	{[]string{"located in", "situated in"}, [2]common.EntityType{"", common.EntityLocation}, "located_in"},
	{[]string{"born in"}, [2]common.EntityType{common.EntityPerson, common.EntityLocation}, "born_in"},
	{[]string{"lives in", "resides in"}, [2]common.EntityType{common.EntityPerson, common.EntityLocation}, "lives_in"},
	{[]string{"collaborated with", "worked with", "partnered with"}, [2]common.EntityType{common.EntityPerson, common.EntityPerson}, "collaborated_with"},
	{[]string{"colleague"}, [2]common.EntityType{common.EntityPerson, common.EntityPerson}, "colleague_of"},
	{[]string{"acquired", "bought", "purchased"}, [2]common.EntityType{common.EntityOrganization, common.EntityOrganization}, "acquired_by"},
	{[]string{"part of", "subsidiary of", "division of"}, [2]common.EntityType{common.EntityOrganization, common.EntityOrganization}, "part_of"},
	{[]string{"uses", "powered by", "built on"}, [2]common.EntityType{"", common.EntityConcept}, "uses"},
}

var allowedRelationLabels = map[string]bool{
	"founded": true, "works_at": true, "ceo_of": true, "located_in": true,
	"headquartered_in": true, "uses": true, "part_of": true, "authored": true,
	"created": true, "developed": true, "studied_at": true, "colleague_of": true,
	"collaborated_with": true, "acquired_by": true, "born_in": true,
	"lives_in": true, common.RelationLabelGeneric: true,
}

type relationClassification struct {
	Type       string  `json:"type" jsonschema_description:"Relationship type in lowercase"`
	Confidence float64 `json:"confidence" jsonschema_description:"Certainty between 0.0 and 1.0"`
}

// classifyWithPatterns scans the joined example snippets for a known keyword
// whose type gate admits the endpoint pair. Returns the empty string when
// nothing matches.
func classifyWithPatterns(sourceType, targetType common.EntityType, examples []string) string {
	text := strings.ToLower(strings.Join(examples, " "))

	for _, pattern := range relationPatterns {
		for _, keyword := range pattern.keywords {
			if !strings.Contains(text, keyword) {
				continue
			}
			if patternTypesMatch(sourceType, targetType, pattern.types) {
				return pattern.label
			}
		}
	}
	return ""
}

func patternTypesMatch(sourceType, targetType common.EntityType, required [2]common.EntityType) bool {
	if required[0] == "" && required[1] == "" {
		return true
	}
	forward := (required[0] == "" || sourceType == required[0]) && (required[1] == "" || targetType == required[1])
	reverse := (required[0] == "" || targetType == required[0]) && (required[1] == "" || sourceType == required[1])
	return forward || reverse
}

// ClassifyRelationships upgrades generic co-occurrence labels to specific
// relation types. Only relationships at or above cfg.MinClassifyWeight are
// candidates. Pattern matching runs first and is free; unresolved candidates
// fall back to one model call each, capped at the cfg.MaxLLMClassifications
// strongest by weight. Failures and low-confidence answers leave the generic
// label in place.
func ClassifyRelationships(
	ctx context.Context,
	client ai.GraphAIClient,
	relationships []common.Relationship,
	entities []common.CanonicalEntity,
	cfg Config,
) {
	entityByID := make(map[string]common.CanonicalEntity, len(entities))
	for _, e := range entities {
		entityByID[e.ID.String()] = e
	}

	unresolved := make([]int, 0)
	patternMatched := 0

	for i := range relationships {
		rel := &relationships[i]
		if rel.Weight < cfg.MinClassifyWeight {
			continue
		}

		source, okS := entityByID[rel.SourceEntityID.String()]
		target, okT := entityByID[rel.TargetEntityID.String()]
		if !okS || !okT {
			continue
		}

		if label := classifyWithPatterns(source.Type, target.Type, rel.Examples); label != "" {
			rel.RelationLabel = label
			rel.Confidence = util.Max(rel.Confidence, patternConfidence)
			patternMatched++
			continue
		}

		unresolved = append(unresolved, i)
	}

	if client == nil || len(unresolved) == 0 {
		logger.Debug("[Classify] pattern pass complete", "matched", patternMatched, "unresolved", len(unresolved))
		return
	}

	// Strongest relationships get the limited model budget.
	sort.SliceStable(unresolved, func(a, b int) bool {
		return relationships[unresolved[a]].Weight > relationships[unresolved[b]].Weight
	})
	if cfg.MaxLLMClassifications > 0 && len(unresolved) > cfg.MaxLLMClassifications {
		unresolved = unresolved[:cfg.MaxLLMClassifications]
	}

	classified := 0
	for _, i := range unresolved {
		if ctx.Err() != nil {
			logger.Warn("[Classify] context cancelled, leaving remaining relationships generic", "err", ctx.Err())
			return
		}

		rel := &relationships[i]
		source := entityByID[rel.SourceEntityID.String()]
		target := entityByID[rel.TargetEntityID.String()]

		result, err := classifyWithModel(ctx, client, source, target, rel.Examples, cfg.MaxRetries)
		if err != nil {
			logger.Warn("[Classify] model classification failed", "source", source.Label, "target", target.Label, "err", err)
			continue
		}

		label := strings.ToLower(strings.TrimSpace(result.Type))
		if !allowedRelationLabels[label] || result.Confidence < classifyAcceptThreshold {
			logger.Debug("[Classify] rejecting model answer", "label", label, "confidence", result.Confidence)
			continue
		}

		rel.RelationLabel = label
		rel.Confidence = util.Max(rel.Confidence, result.Confidence)
		classified++
	}

	logger.Debug("[Classify] classification complete", "patterns", patternMatched, "model", classified)
}

func classifyWithModel(
	ctx context.Context,
	client ai.GraphAIClient,
	source, target common.CanonicalEntity,
	examples []string,
	maxRetries int,
) (*relationClassification, error) {
	snippets := examples
	if len(snippets) > maxClassifySnippets {
		snippets = snippets[:maxClassifySnippets]
	}
	lines := make([]string, 0, len(snippets))
	for _, s := range snippets {
		lines = append(lines, "- "+s)
	}

	prompt := fmt.Sprintf(ai.ClassifyPrompt,
		source.Label, source.Type,
		target.Label, target.Type,
		strings.Join(lines, "\n"))

	out, err := util.RetryWithBackoff(ctx, maxRetries, util.DefaultRetryBaseDelay,
		func(ctx context.Context) (relationClassification, error) {
			var res relationClassification
			err := client.GenerateCompletionWithFormat(ctx, "classify_relationship",
				"Classify the relationship between two entities.", prompt, &res)
			return res, err
		})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
