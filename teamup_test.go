package teamup

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/teamup/ai/mock"
	"github.com/poiesic/teamup/config"
	"github.com/poiesic/teamup/core"
	"github.com/poiesic/teamup/search"
)

const testDim = 8

func testConfig(path string) *config.Config {
	cfg := config.Default()
	cfg.AI.Dimension = testDim
	if path == "" {
		cfg.Database.InMemory = true
	} else {
		cfg.Database.Path = path
	}
	return cfg
}

func openTestDatabase(t *testing.T, path string) *Database {
	t.Helper()
	db, err := NewDatabase(context.Background(),
		WithConfig(testConfig(path)),
		WithEmbedder(mock.NewMockEmbedderWithDimension(testDim)))
	require.NoError(t, err)
	return db
}

func TestNewDatabase(t *testing.T) {
	t.Run("in memory with injected embedder", func(t *testing.T) {
		db := openTestDatabase(t, "")
		defer db.Close()

		assert.NotNil(t, db.Index())
		assert.NotNil(t, db.ProfileRepository())
		assert.NotNil(t, db.CheckpointRepository())
		assert.Equal(t, testDim, db.Index().Dimension())
		assert.Nil(t, db.provider)
	})

	t.Run("configured provider", func(t *testing.T) {
		db, err := NewDatabase(context.Background(), WithConfig(testConfig("")))
		require.NoError(t, err)
		defer db.Close()
		assert.NotNil(t, db.provider)
		assert.NotNil(t, db.embedder)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0o644))

		db, err := NewDatabase(context.Background(),
			WithConfig(testConfig(tmpFile)),
			WithEmbedder(mock.NewMockEmbedder()))
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("invalid configuration", func(t *testing.T) {
		cfg := testConfig("")
		cfg.Engine.SearchPageSize = 0
		db, err := NewDatabase(context.Background(), WithConfig(cfg))
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
		assert.Nil(t, db)
	})
}

func TestDatabase_ReloadsProfiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	ctx := context.Background()

	db := openTestDatabase(t, dir)
	pipeline, err := db.NewIngestionPipeline()
	require.NoError(t, err)
	require.NoError(t, pipeline.UpsertSync(ctx, &core.Profile{UserID: "ada", Level: 1, Skills: []string{"Go"}}))
	pipeline.Release()
	require.NoError(t, db.Close())

	db = openTestDatabase(t, dir)
	defer db.Close()
	assert.Equal(t, 1, db.Index().Len())
	p, err := db.Index().Get(ctx, "ada")
	require.NoError(t, err)
	assert.True(t, p.HasEmbedding())
}

func TestDatabase_EngineAndMetrics(t *testing.T) {
	ctx := context.Background()
	db := openTestDatabase(t, "")
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Release()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, pipeline.UpsertSync(ctx, &core.Profile{UserID: id, Level: 1, Bio: "builder " + id}))
	}

	engine, err := db.NewEngine(search.WithPageSizes(2, 2))
	require.NoError(t, err)

	res, err := engine.Search(ctx, search.SearchRequest{Text: "builder"})
	require.NoError(t, err)
	assert.Len(t, res.Results, 2)
	assert.Equal(t, 3, res.TotalAvailable)

	count, err := testutil.GatherAndCount(db.Gatherer(), "teamup_requests_total", "teamup_profile_embeddings_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(db.Gatherer(), "teamup_indexed_profiles")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDatabase_Reembedder(t *testing.T) {
	db := openTestDatabase(t, "")
	defer db.Close()

	db.Config().Pipeline.BatchSize = 7
	rc := db.ReembedConfig()
	assert.Equal(t, 7, rc.BatchSize)
	assert.Equal(t, db.Config().AI.MaxAttempts, rc.RetryPolicy.MaxAttempts)

	var progress bytes.Buffer
	r, err := db.NewReembedder(nil, &progress)
	require.NoError(t, err)
	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
}
