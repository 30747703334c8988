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


// Package teamup wires the profile store, index, embedding provider and
// engines into a single handle.
package teamup

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/poiesic/teamup/ai"
	"github.com/poiesic/teamup/ai/breaker"
	"github.com/poiesic/teamup/ai/openai"
	"github.com/poiesic/teamup/config"
	"github.com/poiesic/teamup/index"
	"github.com/poiesic/teamup/ingestion"
	"github.com/poiesic/teamup/metrics"
	"github.com/poiesic/teamup/reembed"
	"github.com/poiesic/teamup/search"
	"github.com/poiesic/teamup/storage"
	"github.com/poiesic/teamup/storage/badger"
)

type Database struct {
	backend        *badger.Backend
	profileRepo    storage.ProfileRepository
	checkpointRepo storage.CheckpointRepository
	index          *index.Index
	provider       ai.Provider
	embedder       ai.Embedder
	registry       *prometheus.Registry
	collector      *metrics.Collector
	config         *config.Config
	logger         *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	config   *config.Config
	embedder ai.Embedder
	logger   *slog.Logger
}

// WithConfig replaces the built-in configuration.
func WithConfig(cfg *config.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.config = cfg
	}
}

// WithEmbedder bypasses the configured provider. The embedder is used as
// is, without a circuit breaker.
func WithEmbedder(embedder ai.Embedder) DatabaseOption {
	return func(o *databaseOptions) {
		o.embedder = embedder
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// NewDatabase opens the store named by the configuration and loads every
// stored profile into the index.
func NewDatabase(ctx context.Context, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		config: config.Default(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	cfg := options.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := options.logger

	backend, err := badger.OpenBackendWithLogger(cfg.Database.Path, cfg.Database.InMemory, logger)
	if err != nil {
		return nil, err
	}
	profileRepo := badger.NewProfileRepository(backend)
	checkpointRepo := badger.NewCheckpointRepository(backend)

	idx, err := index.New(profileRepo,
		index.WithDimension(cfg.AI.Dimension),
		index.WithLogger(logger))
	if err != nil {
		backend.Close()
		return nil, err
	}
	if err := idx.Load(ctx); err != nil {
		backend.Close()
		return nil, err
	}

	db := &Database{
		backend:        backend,
		profileRepo:    profileRepo,
		checkpointRepo: checkpointRepo,
		index:          idx,
		embedder:       options.embedder,
		registry:       prometheus.NewRegistry(),
		config:         cfg,
		logger:         logger,
	}

	if db.embedder == nil {
		providerConfig := cfg.ProviderConfig()
		if err := providerConfig.Validate(); err != nil {
			backend.Close()
			return nil, err
		}
		provider, err := openai.NewProvider(providerConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
		db.provider = provider
		db.embedder = breaker.New(provider.Embedder(),
			breaker.WithSettings(cfg.BreakerSettings()),
			breaker.WithLogger(logger))
	}

	db.collector = metrics.NewCollector(db.registry)
	db.collector.TrackIndexSize(idx.Len)
	return db, nil
}

func (db *Database) Close() error {
	var errs []error
	if db.provider != nil {
		if err := db.provider.Close(); err != nil {
			db.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	if err := db.profileRepo.Close(); err != nil {
		db.logger.Error("error closing profile repository", "err", err)
		errs = append(errs, err)
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (db *Database) Index() *index.Index {
	return db.index
}

func (db *Database) ProfileRepository() storage.ProfileRepository {
	return db.profileRepo
}

func (db *Database) CheckpointRepository() storage.CheckpointRepository {
	return db.checkpointRepo
}

func (db *Database) Config() *config.Config {
	return db.config
}

// Gatherer exposes the metrics recorded by engines and pipelines created
// from this Database.
func (db *Database) Gatherer() prometheus.Gatherer {
	return db.registry
}

// NewEngine creates a search engine configured from the Database's
// settings. opts are applied last.
func (db *Database) NewEngine(opts ...search.Option) (*search.Engine, error) {
	cfg := db.config
	base := []search.Option{
		search.WithLogger(db.logger),
		search.WithMonitor(db.collector),
		search.WithWeights(cfg.Scoring.Weights),
		search.WithThresholds(cfg.Scoring.Thresholds),
		search.WithRetryPolicy(cfg.RetryPolicy()),
		search.WithOverFetchMargin(cfg.Engine.OverFetchMargin),
		search.WithRecommendPool(cfg.Engine.RecommendPool),
		search.WithPageSizes(cfg.Engine.SearchPageSize, cfg.Engine.RecommendPageSize),
	}
	return search.New(db.index, db.embedder, append(base, opts...)...)
}

// NewIngestionPipeline creates a profile pipeline backed by the Database's
// profile repository. opts are applied last.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	base := []ingestion.Option{
		ingestion.WithLogger(db.logger),
		ingestion.WithObserver(db.collector),
		ingestion.WithProfileStore(db.profileRepo),
		ingestion.WithRetryPolicy(db.config.RetryPolicy()),
	}
	if size := db.config.Pipeline.PoolSize; size > 0 {
		base = append(base, ingestion.WithPoolSize(size))
	}
	return ingestion.NewPipeline(db.index, db.embedder, append(base, opts...)...)
}

// ReembedConfig returns the bulk re-embedding settings derived from the
// configuration.
func (db *Database) ReembedConfig() *reembed.Config {
	rc := reembed.DefaultConfig()
	rc.BatchSize = db.config.Pipeline.BatchSize
	rc.ReportInterval = db.config.Pipeline.ReportInterval
	rc.RetryPolicy = db.config.RetryPolicy()
	return rc
}

// NewReembedder creates a bulk re-embedder writing progress to progress.
// A nil rc uses ReembedConfig.
func (db *Database) NewReembedder(rc *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	if rc == nil {
		rc = db.ReembedConfig()
	}
	return reembed.NewReembedder(db.index, db.checkpointRepo, db.embedder, rc, progress)
}
