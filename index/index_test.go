package index

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/teamup/core"
	"github.com/poiesic/teamup/storage"
	"github.com/poiesic/teamup/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDim = 4

func newTestIndex(t *testing.T, opts ...Option) (*Index, storage.ProfileRepository) {
	t.Helper()
	profiles, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		profiles.Close()
		backend.Close()
	})

	x, err := New(profiles, append([]Option{WithDimension(testDim)}, opts...)...)
	require.NoError(t, err)
	return x, profiles
}

func profile(id string, vec []float32) *core.Profile {
	return &core.Profile{UserID: id, Skills: []string{"go"}, Level: 1, Embedding: vec}
}

func TestNew_RequiresRepository(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)
}

func TestUpsertGetRoundTrip(t *testing.T) {
	x, repo := newTestIndex(t)
	ctx := context.Background()

	p := &core.Profile{
		UserID:         "u1",
		Name:           "Ada",
		Skills:         []string{"React", "Go"},
		PreferredRoles: []string{"frontend"},
		College:        "MIT",
		GraduationYear: 2026,
		Level:          2,
		Embedding:      []float32{1, 0, 0, 0},
	}
	require.NoError(t, x.Upsert(ctx, p))

	got, err := x.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, p.Skills, got.Skills)
	assert.Equal(t, p.Embedding, got.Embedding)
	assert.Equal(t, got.TextDigest, got.EmbeddingDigest, "supplied embedding is treated as current")
	assert.False(t, got.UpdatedAt.IsZero())

	stored, err := repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got.SameAttributes(stored))

	// callers get copies
	got.Skills[0] = "Haskell"
	again, err := x.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "React", again.Skills[0])
}

func TestUpsert_Idempotent(t *testing.T) {
	tick := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	x, _ := newTestIndex(t, WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}))
	ctx := context.Background()

	p := profile("u1", []float32{0, 1, 0, 0})
	require.NoError(t, x.Upsert(ctx, p))
	first, err := x.Get(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, x.Upsert(ctx, p))
	second, err := x.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
	assert.Equal(t, 1, x.Len())

	p.Bio = "changed"
	require.NoError(t, x.Upsert(ctx, p))
	third, err := x.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, third.UpdatedAt.After(second.UpdatedAt))
}

func TestUpsert_ZeroVectorAndDimensions(t *testing.T) {
	x, _ := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, x.Upsert(ctx, profile("u1", nil)))
	got, err := x.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0, 0}, got.Embedding)
	assert.True(t, got.IsStale())

	err = x.Upsert(ctx, profile("u2", []float32{1, 2}))
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)

	err = x.Upsert(ctx, &core.Profile{Level: 1})
	assert.ErrorIs(t, err, core.ErrInvalidProfile)

	err = x.Upsert(ctx, nil)
	assert.ErrorIs(t, err, core.ErrInvalidProfile)
}

func TestUpsert_NoEmbeddingTextIsCurrent(t *testing.T) {
	x, _ := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, x.Upsert(ctx, &core.Profile{UserID: "u1", Level: 2, XP: 30}))
	got, err := x.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0, 0}, got.Embedding)
	assert.False(t, got.IsStale())
	assert.False(t, got.HasEmbedding())
}

func TestRemove(t *testing.T) {
	x, repo := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, x.Upsert(ctx, profile("u1", nil)))
	require.NoError(t, x.Remove(ctx, "u1"))
	require.NoError(t, x.Remove(ctx, "u1"), "second remove is a no-op")

	_, err := x.Get(ctx, "u1")
	assert.ErrorIs(t, err, core.ErrProfileNotFound)
	_, err = repo.GetProfile(ctx, "u1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateEmbedding_CompareAndSwap(t *testing.T) {
	x, _ := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, x.Upsert(ctx, profile("u1", nil)))
	cur, err := x.Get(ctx, "u1")
	require.NoError(t, err)

	applied, err := x.UpdateEmbedding(ctx, "u1", []float32{1, 0, 0, 0}, cur.TextDigest+1)
	require.NoError(t, err)
	assert.False(t, applied, "digest for older text is discarded")

	applied, err = x.UpdateEmbedding(ctx, "u1", []float32{1, 0, 0, 0}, cur.TextDigest)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := x.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0, 0}, got.Embedding)
	assert.False(t, got.IsStale())

	applied, err = x.UpdateEmbedding(ctx, "missing", []float32{1, 0, 0, 0}, 1)
	require.NoError(t, err)
	assert.False(t, applied)

	_, err = x.UpdateEmbedding(ctx, "u1", []float32{1}, cur.TextDigest)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestQuery_OrderingAndTies(t *testing.T) {
	x, _ := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, x.Upsert(ctx, profile("c", []float32{1, 0, 0, 0})))
	require.NoError(t, x.Upsert(ctx, profile("a", []float32{1, 0, 0, 0})))
	require.NoError(t, x.Upsert(ctx, profile("b", []float32{0, 1, 0, 0})))
	require.NoError(t, x.Upsert(ctx, profile("z", nil)))

	res, err := x.Query(ctx, []float32{1, 0, 0, 0}, core.FilterSet{}, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Matched)
	require.Len(t, res.Hits, 4)

	assert.Equal(t, "a", res.Hits[0].UserID, "ties broken by ascending user id")
	assert.Equal(t, "c", res.Hits[1].UserID)
	assert.InDelta(t, 1.0, res.Hits[0].Similarity, 1e-9)
	assert.Equal(t, "b", res.Hits[2].UserID)
	assert.InDelta(t, 0.5, res.Hits[2].Similarity, 1e-9)
	assert.Equal(t, "z", res.Hits[3].UserID, "zero vector profiles are included at 0.5")

	for _, h := range res.Hits {
		assert.GreaterOrEqual(t, h.Similarity, 0.0)
		assert.LessOrEqual(t, h.Similarity, 1.0)
	}

	hits, err := x.QueryBySimilarity(ctx, []float32{1, 0, 0, 0}, core.FilterSet{}, 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestQuery_EmptyIndexAndBadVector(t *testing.T) {
	x, _ := newTestIndex(t)
	ctx := context.Background()

	res, err := x.Query(ctx, []float32{1, 0, 0, 0}, core.FilterSet{}, 5)
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
	assert.Zero(t, res.Matched)

	_, err = x.Query(ctx, []float32{1, 0}, core.FilterSet{}, 5)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestQuery_FilterSubset(t *testing.T) {
	x, _ := newTestIndex(t)
	ctx := context.Background()

	years := []int{0, 2023, 2024, 2025, 2026, 2027}
	for i, y := range years {
		p := profile(fmt.Sprintf("u%d", i), []float32{1, float32(i), 0, 0})
		p.GraduationYear = y
		p.College = "Stanford University"
		if i%2 == 0 {
			p.College = "MIT"
		}
		require.NoError(t, x.Upsert(ctx, p))
	}

	filters := core.FilterSet{GradYear: &core.YearRange{Min: 2024, Max: 2026}}
	res, err := x.Query(ctx, []float32{1, 0, 0, 0}, filters, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Matched, "inclusive on both bounds, no-year profile excluded")
	for _, h := range res.Hits {
		p, err := x.Get(ctx, h.UserID)
		require.NoError(t, err)
		assert.True(t, Matches(p, filters))
	}

	res, err = x.Query(ctx, []float32{1, 0, 0, 0}, core.FilterSet{College: "stanford"}, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Matched)
}

func TestLoad(t *testing.T) {
	x, repo := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, x.Upsert(ctx, profile("u1", []float32{1, 0, 0, 0})))
	// a record written with another dimension
	require.NoError(t, repo.PutProfiles(ctx, &core.Profile{UserID: "u2", Level: 1, Embedding: []float32{1, 1}, EmbeddingDigest: 7}))

	fresh, err := New(repo, WithDimension(testDim))
	require.NoError(t, err)
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, 2, fresh.Len())

	u2, err := fresh.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, u2.Embedding, testDim)
	assert.Zero(t, u2.EmbeddingDigest)

	all := fresh.All(ctx)
	require.Len(t, all, 2)
	assert.Equal(t, "u1", all[0].UserID)
}

func TestConcurrentUpsertAndQuery(t *testing.T) {
	x, _ := newTestIndex(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, x.Upsert(ctx, profile(fmt.Sprintf("u%02d", i), []float32{1, float32(i), 0, 0})))
		}()
		go func() {
			defer wg.Done()
			_, err := x.Query(ctx, []float32{1, 0, 0, 0}, core.FilterSet{}, 5)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, x.Len())
}
