// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package index

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/poiesic/teamup/ai"
	"github.com/poiesic/teamup/core"
	"github.com/poiesic/teamup/storage"
)

// ErrRepositoryRequired is returned when New is called without a repository.
var ErrRepositoryRequired = errors.New("profile repository is required")

// Index keeps every profile in memory for similarity queries and writes
// through to a ProfileRepository.
//
// Records are immutable once published; writers build a new record and
// swap the pointer. Readers never observe a half-written profile.
type Index struct {
	repo   storage.ProfileRepository
	dim    int
	logger *slog.Logger
	now    func() time.Time

	// writeMu serializes writers so repository order matches memory order.
	writeMu sync.Mutex
	mu      sync.RWMutex
	records map[string]*core.Profile
}

// Option configures an Index.
type Option func(*Index)

// WithDimension sets the embedding dimension. Defaults to ai.DefaultDimension.
func WithDimension(dim int) Option {
	return func(x *Index) {
		if dim > 0 {
			x.dim = dim
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(x *Index) {
		if logger != nil {
			x.logger = logger
		}
	}
}

// WithClock overrides time.Now for UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(x *Index) {
		if now != nil {
			x.now = now
		}
	}
}

// New creates an empty index over repo. Call Load to warm it from storage.
func New(repo storage.ProfileRepository, opts ...Option) (*Index, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	x := &Index{
		repo:    repo,
		dim:     ai.DefaultDimension,
		logger:  slog.Default(),
		now:     func() time.Time { return time.Now().UTC() },
		records: make(map[string]*core.Profile),
	}
	for _, opt := range opts {
		opt(x)
	}
	x.logger = x.logger.With("component", "profile-index")
	return x, nil
}

// Dimension returns the embedding dimension every record carries.
func (x *Index) Dimension() int {
	return x.dim
}

// Len returns the number of indexed profiles.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.records)
}

// Load replaces the in-memory records with everything in the repository.
// Records whose embedding has the wrong length are kept with a zero vector
// and marked stale so the next re-embedding pass repairs them.
func (x *Index) Load(ctx context.Context) error {
	x.writeMu.Lock()
	defer x.writeMu.Unlock()

	records := make(map[string]*core.Profile)
	err := x.repo.ForEachProfile(ctx, "", 0, func(batch []*core.Profile) error {
		for _, p := range batch {
			if len(p.Embedding) != x.dim {
				x.logger.Warn("resetting embedding with unexpected dimension",
					"userID", p.UserID, "got", len(p.Embedding), "want", x.dim)
				p.Embedding = ai.ZeroVector(x.dim)
				p.EmbeddingDigest = 0
			}
			records[p.UserID] = p
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("loading profiles: %w", err)
	}

	x.mu.Lock()
	x.records = records
	x.mu.Unlock()

	x.logger.Info("index loaded", "profiles", len(records))
	return nil
}

// Upsert inserts or replaces a profile. The profile is normalized and
// validated first. An empty embedding becomes the zero vector; a supplied
// embedding without a digest is assumed to match the current text. A
// profile with no embedding text is never stale: the zero vector is its
// embedding.
// Upserting identical attributes is a no-op and leaves UpdatedAt alone.
func (x *Index) Upsert(ctx context.Context, profile *core.Profile) error {
	if profile == nil {
		return fmt.Errorf("%w: nil profile", core.ErrInvalidProfile)
	}

	next := core.NormalizeProfile(profile)
	if err := core.ValidateProfile(next); err != nil {
		return err
	}

	switch {
	case len(next.Embedding) == 0:
		next.Embedding = ai.ZeroVector(x.dim)
		next.EmbeddingDigest = 0
		if next.EmbeddingText() == "" {
			next.EmbeddingDigest = next.TextDigest
		}
	case len(next.Embedding) != x.dim:
		return fmt.Errorf("%w: embedding has %d dimensions, index uses %d",
			core.ErrDimensionMismatch, len(next.Embedding), x.dim)
	case next.HasEmbedding() && next.EmbeddingDigest == 0:
		next.EmbeddingDigest = next.TextDigest
	}

	x.writeMu.Lock()
	defer x.writeMu.Unlock()

	if prev := x.lookup(next.UserID); prev != nil && prev.SameAttributes(next) {
		return nil
	}

	next.UpdatedAt = x.now()
	if err := x.repo.PutProfiles(ctx, next); err != nil {
		return fmt.Errorf("storing profile %s: %w", next.UserID, err)
	}
	x.publish(next)
	return nil
}

// Remove deletes a profile. Removing an absent profile is a no-op.
func (x *Index) Remove(ctx context.Context, userID string) error {
	x.writeMu.Lock()
	defer x.writeMu.Unlock()

	if x.lookup(userID) == nil {
		return nil
	}
	if err := x.repo.DeleteProfiles(ctx, userID); err != nil {
		return fmt.Errorf("deleting profile %s: %w", userID, err)
	}

	x.mu.Lock()
	delete(x.records, userID)
	x.mu.Unlock()
	return nil
}

// Get returns a copy of the profile for userID.
func (x *Index) Get(ctx context.Context, userID string) (*core.Profile, error) {
	p := x.lookup(userID)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", core.ErrProfileNotFound, userID)
	}
	return p.Clone(), nil
}

// UpdateEmbedding stores vector for userID only if the profile's current
// TextDigest still equals digest, i.e. the text the vector was computed
// from is still current. It reports whether the vector was applied.
func (x *Index) UpdateEmbedding(ctx context.Context, userID string, vector []float32, digest uint64) (bool, error) {
	if len(vector) != x.dim {
		return false, fmt.Errorf("%w: embedding has %d dimensions, index uses %d",
			core.ErrDimensionMismatch, len(vector), x.dim)
	}

	x.writeMu.Lock()
	defer x.writeMu.Unlock()

	cur := x.lookup(userID)
	if cur == nil || cur.TextDigest != digest {
		return false, nil
	}

	next := cur.Clone()
	next.Embedding = slices.Clone(vector)
	next.EmbeddingDigest = digest
	next.UpdatedAt = x.now()
	if err := x.repo.PutProfiles(ctx, next); err != nil {
		return false, fmt.Errorf("storing embedding for %s: %w", userID, err)
	}
	x.publish(next)
	return true, nil
}

// Result is the outcome of a filtered similarity query.
type Result struct {
	// Hits holds at most k matches, most similar first.
	Hits []core.ScoredID
	// Matched counts every profile that passed the filters.
	Matched int
}

// Query returns the k profiles most similar to vector among those passing
// filters. Ties are broken by ascending user ID. Profiles still holding the
// zero vector take part with similarity 0.5.
func (x *Index) Query(ctx context.Context, vector []float32, filters core.FilterSet, k int) (*Result, error) {
	if len(vector) != x.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index uses %d",
			core.ErrDimensionMismatch, len(vector), x.dim)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshot := x.snapshot()
	hits := make([]core.ScoredID, 0, len(snapshot))
	for _, p := range snapshot {
		if !Matches(p, filters) {
			continue
		}
		hits = append(hits, core.ScoredID{UserID: p.UserID, Similarity: Similarity(vector, p.Embedding)})
	}

	matched := len(hits)
	SortScored(hits)
	if k < 0 {
		k = 0
	}
	if len(hits) > k {
		hits = hits[:k]
	}
	return &Result{Hits: hits, Matched: matched}, nil
}

// QueryBySimilarity is Query without the match count.
func (x *Index) QueryBySimilarity(ctx context.Context, vector []float32, filters core.FilterSet, k int) ([]core.ScoredID, error) {
	res, err := x.Query(ctx, vector, filters, k)
	if err != nil {
		return nil, err
	}
	return res.Hits, nil
}

// All returns copies of every profile ordered by user ID.
func (x *Index) All(ctx context.Context) []*core.Profile {
	snapshot := x.snapshot()
	out := make([]*core.Profile, len(snapshot))
	for i, p := range snapshot {
		out[i] = p.Clone()
	}
	slices.SortFunc(out, func(a, b *core.Profile) int {
		return cmp.Compare(a.UserID, b.UserID)
	})
	return out
}

// SortScored orders hits by descending similarity, then ascending user ID.
func SortScored(hits []core.ScoredID) {
	slices.SortFunc(hits, func(a, b core.ScoredID) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
}

func (x *Index) lookup(userID string) *core.Profile {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.records[userID]
}

func (x *Index) publish(p *core.Profile) {
	x.mu.Lock()
	x.records[p.UserID] = p
	x.mu.Unlock()
}

func (x *Index) snapshot() []*core.Profile {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]*core.Profile, 0, len(x.records))
	for _, p := range x.records {
		out = append(out, p)
	}
	return out
}
