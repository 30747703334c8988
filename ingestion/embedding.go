package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/teamup/ai"
	"github.com/poiesic/teamup/index"
)

// embeddingProcessor computes profile embeddings and applies them to the
// index if the profile text has not changed in the meantime.
type embeddingProcessor struct {
	index    *index.Index
	embedder ai.Embedder
	policy   ai.RetryPolicy
	observer Observer
	logger   *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(idx *index.Index, embedder ai.Embedder, policy ai.RetryPolicy, observer Observer, logger *slog.Logger) (processor, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		index:    idx,
		embedder: embedder,
		policy:   policy,
		observer: observer,
		logger:   logger.With("processor", "embeddings"),
	}, nil
}

// process embeds the job's text and applies the vector.
func (ep *embeddingProcessor) process(ctx context.Context, job embeddingJob) error {
	ep.logger.Debug("embedding profile", "userID", job.userID)

	vector, err := ai.Embed(ctx, ep.embedder, job.text, ep.policy)
	if err != nil {
		ep.observer.EmbeddingFailed(job.userID, err)
		return fmt.Errorf("embedding profile %s: %w", job.userID, err)
	}

	applied, err := ep.index.UpdateEmbedding(ctx, job.userID, ai.NormalizeVector(vector), job.digest)
	if err != nil {
		ep.observer.EmbeddingFailed(job.userID, err)
		return err
	}
	if !applied {
		// the profile changed or was removed while we were embedding
		ep.logger.Debug("discarding superseded embedding", "userID", job.userID)
		ep.observer.EmbeddingDiscarded(job.userID)
		return nil
	}

	ep.observer.EmbeddingApplied(job.userID)
	return nil
}
