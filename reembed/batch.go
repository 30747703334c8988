package reembed

import (
	"context"
	"fmt"

	"github.com/poiesic/teamup/ai"
	"github.com/poiesic/teamup/core"
	"github.com/poiesic/teamup/index"
)

// BatchResult counts what happened to one batch.
type BatchResult struct {
	Applied int
	// Discarded profiles changed while their batch was being embedded.
	Discarded int
}

// BatchProcessor embeds batches of profiles and applies the vectors.
type BatchProcessor struct {
	index    *index.Index
	embedder ai.Embedder
	policy   ai.RetryPolicy
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(idx *index.Index, embedder ai.Embedder, policy ai.RetryPolicy) *BatchProcessor {
	return &BatchProcessor{
		index:    idx,
		embedder: embedder,
		policy:   policy,
	}
}

// Process embeds the profiles' texts in one provider call and stores the
// normalized vectors. A vector is only applied if the profile text is
// unchanged since the batch was read. Profiles without embedding text get
// the zero vector and are not sent to the provider.
func (bp *BatchProcessor) Process(ctx context.Context, profiles []*core.Profile) (BatchResult, error) {
	var res BatchResult
	if len(profiles) == 0 {
		return res, nil
	}

	vectors := make([][]float32, len(profiles))
	var texts []string
	var pending []int
	for i, p := range profiles {
		text := p.EmbeddingText()
		if text == "" {
			vectors[i] = ai.ZeroVector(bp.index.Dimension())
			continue
		}
		texts = append(texts, text)
		pending = append(pending, i)
	}

	if len(texts) > 0 {
		embeddings, err := ai.EmbedBatch(ctx, bp.embedder, texts, bp.policy)
		if err != nil {
			return res, fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.policy.MaxAttempts, err)
		}
		for j, i := range pending {
			vectors[i] = ai.NormalizeVector(embeddings[j])
		}
	}

	for i, p := range profiles {
		applied, err := bp.index.UpdateEmbedding(ctx, p.UserID, vectors[i], p.TextDigest)
		if err != nil {
			return res, fmt.Errorf("failed to update profile %s: %w", p.UserID, err)
		}
		if applied {
			res.Applied++
		} else {
			res.Discarded++
		}
	}
	return res, nil
}
