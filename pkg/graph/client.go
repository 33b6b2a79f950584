package graph

import (
	"fmt"

	"github.com/inkwell-labs/cartograph/pkg/ai"
)

// Config holds the tunable knobs of the extraction pipeline. Thresholds are
// fractions in [0,1]; NewPipeline rejects anything outside that range.
type Config struct {
	// UseEnhancer enables the model-backed extraction and classification
	// stages. With it off (or with a nil client) the pipeline runs fully
	// deterministic: recognizer, dedup, and co-occurrence only.
	UseEnhancer bool

	// StringSimilarityThreshold is the minimum normalized string similarity
	// for two same-type entities to merge.
	StringSimilarityThreshold float64

	// EmbeddingSimilarityThreshold is the minimum cosine similarity between
	// two entity embeddings for a merge.
	EmbeddingSimilarityThreshold float64

	// MinCooccurrenceWeight is the minimum co-occurrence weight for a
	// relationship to be kept at all.
	MinCooccurrenceWeight float64

	// MinClassifyWeight is the minimum weight for a relationship to be a
	// candidate for label classification.
	MinClassifyWeight float64

	// MaxRetries bounds the attempts per external model call.
	MaxRetries int

	// MaxLLMClassifications caps model-backed classification calls per
	// request; the strongest relationships by weight get the budget. Zero
	// means no cap.
	MaxLLMClassifications int
}

// DefaultConfig returns the standard pipeline tuning.
func DefaultConfig() Config {
	return Config{
		UseEnhancer:                  true,
		StringSimilarityThreshold:    0.85,
		EmbeddingSimilarityThreshold: 0.90,
		MinCooccurrenceWeight:        0.3,
		MinClassifyWeight:            0.5,
		MaxRetries:                   3,
		MaxLLMClassifications:        20,
	}
}

// Pipeline runs the full text-to-graph extraction: entity recognition,
// optional model enhancement, embedding-assisted deduplication, co-occurrence
// inference, and relation typing.
type Pipeline struct {
	client ai.GraphAIClient
	cfg    Config
}

// NewPipeline validates cfg and builds a pipeline around the given model
// client. The client may be nil, which disables every model-backed stage; a
// bad threshold is a construction error, not a runtime surprise.
func NewPipeline(client ai.GraphAIClient, cfg Config) (*Pipeline, error) {
	thresholds := map[string]float64{
		"string similarity threshold":    cfg.StringSimilarityThreshold,
		"embedding similarity threshold": cfg.EmbeddingSimilarityThreshold,
		"min cooccurrence weight":        cfg.MinCooccurrenceWeight,
		"min classify weight":            cfg.MinClassifyWeight,
	}
	for name, v := range thresholds {
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("invalid configuration: %s %f outside [0,1]", name, v)
		}
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("invalid configuration: max retries %d is negative", cfg.MaxRetries)
	}
	if cfg.MaxLLMClassifications < 0 {
		return nil, fmt.Errorf("invalid configuration: max llm classifications %d is negative", cfg.MaxLLMClassifications)
	}

	return &Pipeline{client: client, cfg: cfg}, nil
}
