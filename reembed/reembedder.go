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


package reembed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/teamup/ai"
	"github.com/poiesic/teamup/core"
	"github.com/poiesic/teamup/index"
	"github.com/poiesic/teamup/storage"
)

// ProcessorType identifies the reembedder's checkpoint.
const ProcessorType = "reembed"

var (
	// ErrIndexRequired is returned when a profile index is not provided.
	ErrIndexRequired = errors.New("profile index required")

	// ErrCheckpointRepositoryRequired is returned when a checkpoint repository is not provided.
	ErrCheckpointRepositoryRequired = errors.New("checkpoint repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of profiles to embed per provider call
	BatchSize int

	// ReportInterval is how often to report progress (number of profiles)
	ReportInterval int

	// StaleOnly skips profiles whose embedding matches their current text
	StaleOnly bool

	// RetryPolicy bounds each provider call
	RetryPolicy ai.RetryPolicy
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: DefaultBatchSize,
		RetryPolicy: ai.RetryPolicy{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			Timeout:     30 * time.Second,
		},
	}
}

// Result summarizes a run.
type Result struct {
	// Processed counts profiles sent to the provider.
	Processed int
	Applied   int
	Discarded int
	// ResumedAfter is the user ID the run resumed after, if any.
	ResumedAfter string
}

// Reembedder orchestrates the reembedding of every profile in an index.
type Reembedder struct {
	checkpoints storage.CheckpointRepository
	config      *Config
	progress    io.Writer
	processor   *BatchProcessor
	iterator    *ProfileIterator
	logger      *slog.Logger
	now         func() time.Time
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(idx *index.Index, checkpoints storage.CheckpointRepository, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if checkpoints == nil {
		return nil, ErrCheckpointRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.RetryPolicy.MaxAttempts < 1 {
		return nil, ai.ErrInvalidMaxAttempts
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		checkpoints: checkpoints,
		config:      config,
		progress:    progress,
		processor:   NewBatchProcessor(idx, embedder, config.RetryPolicy),
		iterator:    NewProfileIterator(idx, config.BatchSize),
		logger:      slog.Default().With("component", "reembedder"),
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// Run reembeds every selected profile. If a previous run was interrupted it
// resumes after the last completed batch. The checkpoint is cleared once
// every profile has been processed.
func (r *Reembedder) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	checkpoint, err := r.checkpoints.LoadCheckpoint(ctx, ProcessorType)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if checkpoint != nil {
		res.ResumedAfter = checkpoint.LastUserID
		fmt.Fprintf(r.progress, "Resuming after %s (checkpoint from %s)\n",
			checkpoint.LastUserID, checkpoint.UpdatedAt.Format(time.RFC3339))
	}

	var keep func(*core.Profile) bool
	if r.config.StaleOnly {
		keep = (*core.Profile).IsStale
	}
	profiles := r.iterator.Select(ctx, res.ResumedAfter, keep)

	if len(profiles) == 0 {
		fmt.Fprintf(r.progress, "No profiles to reembed (0 profiles)\n")
		return res, r.checkpoints.ClearCheckpoint(ctx, ProcessorType)
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d profiles (batch size: %d)\n",
		len(profiles), r.iterator.batchSize)

	tracker := NewProgressTracker(r.progress, len(profiles), r.config.ReportInterval)
	tracker.Start()

	err = r.iterator.ForEach(ctx, profiles, func(batch []*core.Profile) error {
		counts, err := r.processor.Process(ctx, batch)
		res.Applied += counts.Applied
		res.Discarded += counts.Discarded
		if err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		res.Processed += len(batch)
		tracker.Increment(len(batch))

		return r.checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{
			ProcessorType: ProcessorType,
			LastUserID:    batch[len(batch)-1].UserID,
			UpdatedAt:     r.now(),
		})
	})
	tracker.Finish()
	if err != nil {
		r.logger.Error("reembedding stopped", "processed", res.Processed, "err", err)
		return res, err
	}

	if err := r.checkpoints.ClearCheckpoint(ctx, ProcessorType); err != nil {
		return res, fmt.Errorf("failed to clear checkpoint: %w", err)
	}

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d profiles in %v (%d applied, %d changed during the run)\n",
		res.Processed, elapsed.Round(time.Millisecond), res.Applied, res.Discarded)
	return res, nil
}
