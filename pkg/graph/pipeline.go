package graph

import (
	"context"
	"strings"
	"time"

	"github.com/inkwell-labs/cartograph/internal/util"
	"github.com/inkwell-labs/cartograph/pkg/common"
	"github.com/inkwell-labs/cartograph/pkg/logger"
)

const (
	importanceConfidenceWeight = 0.6
	importanceDegreeWeight     = 0.4
)

// Extract runs the full pipeline over the segments of one document and
// returns the canonical entities and relationships. Empty input yields an
// empty result, not an error. Model-backed stages degrade to the
// deterministic baseline on persistent failure; the only errors surfaced are
// context cancellation between stages and nothing else.
func (p *Pipeline) Extract(ctx context.Context, documentID string, segments []common.TextSegment) (*common.ExtractResult, error) {
	result := &common.ExtractResult{
		Entities:      []common.CanonicalEntity{},
		Relationships: []common.Relationship{},
	}
	if !hasContent(segments) {
		logger.Debug("[Pipeline] nothing to extract", "doc", documentID)
		return result, nil
	}

	started := time.Now()

	stageStart := time.Now()
	entities := RecognizeEntities(segments, documentID)
	logger.Info("[Pipeline] recognizer done", "doc", documentID, "entities", len(entities), "duration", time.Since(stageStart))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.cfg.UseEnhancer && p.client != nil {
		stageStart = time.Now()
		entities = EnhanceEntities(ctx, p.client, segments, documentID, entities, p.cfg.MaxRetries)
		logger.Info("[Pipeline] enhancer done", "doc", documentID, "entities", len(entities), "duration", time.Since(stageStart))

		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	if len(entities) == 0 {
		logger.Info("[Pipeline] no entities found", "doc", documentID, "duration", time.Since(started))
		return result, nil
	}

	embeddings := make([][]float32, len(entities))
	if p.client != nil {
		stageStart = time.Now()
		names := make([]string, 0, len(entities))
		for _, e := range entities {
			names = append(names, e.Name)
		}
		embeddings = GenerateEntityEmbeddings(ctx, p.client, names, p.cfg.MaxRetries)
		logger.Info("[Pipeline] embeddings done", "doc", documentID, "duration", time.Since(stageStart))

		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	stageStart = time.Now()
	canonical, err := DeduplicateEntities(entities, embeddings, p.cfg.StringSimilarityThreshold, p.cfg.EmbeddingSimilarityThreshold)
	if err != nil {
		return nil, err
	}
	logger.Info("[Pipeline] dedup done", "doc", documentID, "entities", len(canonical), "duration", time.Since(stageStart))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stageStart = time.Now()
	relationships := InferCooccurrences(canonical, segments, p.cfg.MinCooccurrenceWeight)
	logger.Info("[Pipeline] relationships done", "doc", documentID, "relationships", len(relationships), "duration", time.Since(stageStart))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The pattern tier of classification is deterministic and always runs;
	// the model fallback needs both a client and the enhancer enabled.
	lmClient := p.client
	if !p.cfg.UseEnhancer {
		lmClient = nil
	}
	stageStart = time.Now()
	ClassifyRelationships(ctx, lmClient, relationships, canonical, p.cfg)
	logger.Info("[Pipeline] classification done", "doc", documentID, "duration", time.Since(stageStart))

	scoreImportance(canonical, relationships)

	result.Entities = canonical
	result.Relationships = relationships
	logger.Info("[Pipeline] extraction complete",
		"doc", documentID,
		"entities", len(result.Entities),
		"relationships", len(result.Relationships),
		"duration", time.Since(started))

	return result, nil
}

func hasContent(segments []common.TextSegment) bool {
	for _, s := range segments {
		if strings.TrimSpace(s.Text) != "" {
			return true
		}
	}
	return false
}

// scoreImportance blends each entity's confidence with its relative degree in
// the relationship graph. An isolated entity keeps the confidence portion of
// the score; the best-connected entity gets the full degree portion.
func scoreImportance(entities []common.CanonicalEntity, relationships []common.Relationship) {
	degrees := make(map[string]int, len(entities))
	for _, rel := range relationships {
		degrees[rel.SourceEntityID.String()]++
		degrees[rel.TargetEntityID.String()]++
	}

	maxDegree := 0
	for _, d := range degrees {
		maxDegree = util.Max(maxDegree, d)
	}

	for i := range entities {
		score := importanceConfidenceWeight * entities[i].Confidence
		if maxDegree > 0 {
			score += importanceDegreeWeight * float64(degrees[entities[i].ID.String()]) / float64(maxDegree)
		}
		entities[i].ImportanceScore = util.Clamp01(score)
	}
}
