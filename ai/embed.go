package ai

import (
	"context"
	"errors"
	"fmt"
)

// Embed embeds a single text under policy. Each attempt gets its own
// timeout. Provider failures that survive every attempt are wrapped with
// ErrEmbeddingProvider; if ctx itself ends, ctx.Err() is returned unwrapped
// so callers can tell a caller deadline apart from an upstream outage.
func Embed(ctx context.Context, embedder Embedder, text string, policy RetryPolicy) ([]float32, error) {
	var vector []float32
	err := RetryWithBackoff(ctx, func() error {
		attemptCtx, cancel := attemptContext(ctx, policy)
		defer cancel()

		v, err := embedder.EmbedText(attemptCtx, text)
		if err != nil {
			return err
		}
		if len(v) == 0 {
			return ErrEmptyEmbedding
		}
		vector = v
		return nil
	}, policy.MaxAttempts, policy.BaseDelay)

	if err != nil {
		return nil, classify(ctx, err)
	}
	return vector, nil
}

// EmbedBatch embeds texts in one provider call under policy. The result
// has one vector per text, in order.
func EmbedBatch(ctx context.Context, embedder Embedder, texts []string, policy RetryPolicy) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		attemptCtx, cancel := attemptContext(ctx, policy)
		defer cancel()

		vs, err := embedder.EmbedTexts(attemptCtx, texts)
		if err != nil {
			return err
		}
		if len(vs) != len(texts) {
			return fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vs))
		}
		vectors = vs
		return nil
	}, policy.MaxAttempts, policy.BaseDelay)

	if err != nil {
		return nil, classify(ctx, err)
	}
	return vectors, nil
}

func attemptContext(ctx context.Context, policy RetryPolicy) (context.Context, context.CancelFunc) {
	if policy.Timeout > 0 {
		return context.WithTimeout(ctx, policy.Timeout)
	}
	return context.WithCancel(ctx)
}

func classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, ErrInvalidMaxAttempts) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrEmbeddingProvider, err)
}
