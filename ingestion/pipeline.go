package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/teamup/ai"
	"github.com/poiesic/teamup/core"
	"github.com/poiesic/teamup/index"
	"github.com/poiesic/teamup/storage"
)

// Pipeline applies profile changes to the index and re-embeds changed
// profiles in the background.
type Pipeline struct {
	index         *index.Index
	embedder      ai.Embedder
	store         storage.ProfileStore
	embeddingPool *ants.Pool
	embeddingProc processor
	policy        ai.RetryPolicy
	observer      Observer
	inflight      sync.WaitGroup
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for background embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embeddingPool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithRetryPolicy sets the timeout and retry policy for embedding calls.
func WithRetryPolicy(policy ai.RetryPolicy) Option {
	return func(p *Pipeline) error {
		if policy.MaxAttempts < 1 {
			return ai.ErrInvalidMaxAttempts
		}
		p.policy = policy
		return nil
	}
}

// WithProfileStore sets the store OnProfileChanged reads profiles from.
func WithProfileStore(store storage.ProfileStore) Option {
	return func(p *Pipeline) error {
		p.store = store
		return nil
	}
}

// WithObserver sets the observer notified of background job outcomes.
func WithObserver(observer Observer) Option {
	return func(p *Pipeline) error {
		if observer == nil {
			observer = noopObserver{}
		}
		p.observer = observer
		return nil
	}
}

// NewPipeline creates a new profile pipeline.
func NewPipeline(idx *index.Index, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	// Default pool size
	poolSize := max(runtime.NumCPU()/2, 1)
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		index:         idx,
		embedder:      embedder,
		embeddingPool: pool,
		policy:        ai.DefaultRetryPolicy(),
		observer:      noopObserver{},
		logger:        slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create the processor after options are applied so it gets the final config
	p.embeddingProc, err = newEmbeddingProcessor(idx, embedder, p.policy, p.observer, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// Upsert stores profile's attributes in the index right away. If its
// embedding text changed, the previous embedding is kept (the zero vector
// for a new profile) and a background job computes the new one.
//
// A profile that arrives with its own embedding is stored as given.
func (p *Pipeline) Upsert(ctx context.Context, profile *core.Profile) error {
	if profile == nil {
		return fmt.Errorf("%w: nil profile", core.ErrInvalidProfile)
	}

	next := core.NormalizeProfile(profile)
	if len(next.Embedding) == 0 && next.EmbeddingText() != "" {
		if prev, err := p.index.Get(ctx, next.UserID); err == nil {
			next.Embedding = prev.Embedding
			next.EmbeddingDigest = prev.EmbeddingDigest
		}
	}

	if err := p.index.Upsert(ctx, next); err != nil {
		return err
	}

	cur, err := p.index.Get(ctx, next.UserID)
	if err != nil {
		// removed concurrently
		return nil
	}
	if !cur.IsStale() {
		return nil
	}
	return p.submit(embeddingJob{userID: cur.UserID, text: cur.EmbeddingText(), digest: cur.TextDigest})
}

// UpsertSync is Upsert with the embedding computed inline. Nothing is
// stored if embedding fails.
//
// Errors: core.ErrUpstreamUnavailable once provider retries are exhausted,
// core.ErrTimeout when ctx expires.
func (p *Pipeline) UpsertSync(ctx context.Context, profile *core.Profile) error {
	if profile == nil {
		return fmt.Errorf("%w: nil profile", core.ErrInvalidProfile)
	}

	next := core.NormalizeProfile(profile)
	if err := core.ValidateProfile(next); err != nil {
		return err
	}

	// nothing to embed: the index stores the zero vector
	if next.EmbeddingText() == "" {
		next.Embedding = nil
		return p.index.Upsert(ctx, next)
	}

	if prev, err := p.index.Get(ctx, next.UserID); err == nil && prev.EmbeddingDigest == next.TextDigest && prev.HasEmbedding() {
		next.Embedding = prev.Embedding
		next.EmbeddingDigest = prev.EmbeddingDigest
		return p.index.Upsert(ctx, next)
	}

	vector, err := ai.Embed(ctx, p.embedder, next.EmbeddingText(), p.policy)
	if err != nil {
		p.observer.EmbeddingFailed(next.UserID, err)
		return mapError(err)
	}
	next.Embedding = ai.NormalizeVector(vector)
	next.EmbeddingDigest = next.TextDigest

	if err := p.index.Upsert(ctx, next); err != nil {
		return err
	}
	p.observer.EmbeddingApplied(next.UserID)
	return nil
}

// OnProfileChanged re-reads userID from the profile store and applies it.
// A user missing from the store is removed from the index.
func (p *Pipeline) OnProfileChanged(ctx context.Context, userID string) error {
	if p.store == nil {
		return ErrProfileStoreRequired
	}

	profile, err := p.store.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return p.OnProfileDeleted(ctx, userID)
	}
	if err != nil {
		return fmt.Errorf("reading profile %s: %w", userID, err)
	}
	if profile == nil {
		return p.OnProfileDeleted(ctx, userID)
	}
	return p.Upsert(ctx, profile)
}

// OnProfileDeleted removes userID from the index. Pending embedding jobs
// for the user become no-ops.
func (p *Pipeline) OnProfileDeleted(ctx context.Context, userID string) error {
	return p.index.Remove(ctx, userID)
}

// Wait blocks until every submitted embedding job has finished.
func (p *Pipeline) Wait() {
	p.inflight.Wait()
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}

func (p *Pipeline) submit(job embeddingJob) error {
	p.inflight.Add(1)
	err := p.embeddingPool.Submit(func() {
		defer p.inflight.Done()
		if err := p.embeddingProc.process(context.Background(), job); err != nil {
			p.logger.Error("error processing embedding", "userID", job.userID, "err", err)
		}
	})
	if err != nil {
		p.inflight.Done()
		p.logger.Error("could not schedule embedding", "userID", job.userID, "err", err)
		return fmt.Errorf("scheduling embedding for %s: %w", job.userID, err)
	}
	return nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", core.ErrTimeout, err)
	case errors.Is(err, ai.ErrEmbeddingProvider):
		return fmt.Errorf("%w: %w", core.ErrUpstreamUnavailable, err)
	default:
		return err
	}
}
