package graph

import (
	"context"
	"fmt"

	"github.com/inkwell-labs/cartograph/internal/util"
	"github.com/inkwell-labs/cartograph/pkg/ai"
	"github.com/inkwell-labs/cartograph/pkg/logger"
)

const embeddingBatchSize = 10

// GenerateEntityEmbeddings produces one embedding per input name, aligned to
// input order. Requests go out in batches of 10; each batch retries
// independently, and a batch that permanently fails leaves nil markers for
// its names instead of zero vectors, which would corrupt cosine comparisons
// downstream.
func GenerateEntityEmbeddings(
	ctx context.Context,
	client ai.GraphAIClient,
	names []string,
	maxRetries int,
) [][]float32 {
	results := make([][]float32, len(names))
	if len(names) == 0 {
		return results
	}

	failed := 0
	for start := 0; start < len(names); start += embeddingBatchSize {
		end := util.Min(start+embeddingBatchSize, len(names))
		batch := names[start:end]

		vectors, err := util.RetryWithBackoff(ctx, maxRetries, util.DefaultRetryBaseDelay,
			func(ctx context.Context) ([][]float32, error) {
				out, err := client.GenerateEmbeddings(ctx, batch)
				if err != nil {
					return nil, err
				}
				if len(out) != len(batch) {
					return nil, fmt.Errorf("embedding batch size mismatch: got %d want %d", len(out), len(batch))
				}
				return out, nil
			})
		if err != nil {
			logger.Warn("[Embed] batch failed, continuing without vectors",
				"start", start, "size", len(batch), "err", err)
			failed += len(batch)
			continue
		}

		copy(results[start:end], vectors)
	}

	if failed > 0 {
		logger.Info("[Embed] generated embeddings with failures",
			"total", len(names), "failed", failed)
	}
	return results
}
