package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder fails the first failures calls, then returns vec.
type stubEmbedder struct {
	failures int
	calls    int
	vec      []float32
	block    bool
}

func (s *stubEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.calls <= s.failures {
		return nil, errors.New("connection refused")
	}
	return s.vec, nil
}

func (s *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v, err := s.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

var fastPolicy = RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Timeout: 50 * time.Millisecond}

func TestEmbed_RetriesThenSucceeds(t *testing.T) {
	stub := &stubEmbedder{failures: 2, vec: []float32{1, 0}}

	v, err := Embed(context.Background(), stub, "go", fastPolicy)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, v)
	assert.Equal(t, 3, stub.calls)
}

func TestEmbed_ExhaustedWrapsProviderError(t *testing.T) {
	stub := &stubEmbedder{failures: 10}

	_, err := Embed(context.Background(), stub, "go", fastPolicy)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbeddingProvider)
	assert.Equal(t, 3, stub.calls)
}

func TestEmbed_EmptyVectorIsProviderError(t *testing.T) {
	stub := &stubEmbedder{vec: []float32{}}

	_, err := Embed(context.Background(), stub, "go", fastPolicy)
	assert.ErrorIs(t, err, ErrEmbeddingProvider)
	assert.ErrorIs(t, err, ErrEmptyEmbedding)
}

func TestEmbed_AttemptTimeoutIsProviderError(t *testing.T) {
	stub := &stubEmbedder{block: true}
	policy := RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, Timeout: 5 * time.Millisecond}

	_, err := Embed(context.Background(), stub, "go", policy)
	assert.ErrorIs(t, err, ErrEmbeddingProvider)
	assert.Equal(t, 2, stub.calls)
}

func TestEmbed_CallerDeadline(t *testing.T) {
	stub := &stubEmbedder{block: true}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond, Timeout: time.Second}
	_, err := Embed(ctx, stub, "go", policy)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrEmbeddingProvider)
}

func TestEmbedBatch(t *testing.T) {
	stub := &stubEmbedder{vec: []float32{0, 1}}

	vs, err := EmbedBatch(context.Background(), stub, []string{"a", "b"}, fastPolicy)
	require.NoError(t, err)
	assert.Len(t, vs, 2)

	vs, err = EmbedBatch(context.Background(), stub, nil, fastPolicy)
	require.NoError(t, err)
	assert.Nil(t, vs)
}
