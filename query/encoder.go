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


// Package query turns free text and loosely typed filters into a query
// vector and a validated core.FilterSet.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/teamup/ai"
	"github.com/poiesic/teamup/core"
)

// ErrEmbedderRequired is returned when NewEncoder is called without an embedder.
var ErrEmbedderRequired = errors.New("embedder is required")

// Encoded is an encoded search query.
type Encoded struct {
	Vector  []float32
	Filters core.FilterSet
}

// Encoder embeds query text with the same provider that embedded profiles.
type Encoder struct {
	embedder ai.Embedder
	dim      int
	policy   ai.RetryPolicy
	logger   *slog.Logger
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithDimension sets the dimension query vectors must have.
func WithDimension(dim int) Option {
	return func(e *Encoder) {
		if dim > 0 {
			e.dim = dim
		}
	}
}

// WithRetryPolicy sets the timeout and retry policy for provider calls.
func WithRetryPolicy(policy ai.RetryPolicy) Option {
	return func(e *Encoder) {
		e.policy = policy
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Encoder) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEncoder creates an Encoder.
func NewEncoder(embedder ai.Embedder, opts ...Option) (*Encoder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	e := &Encoder{
		embedder: embedder,
		dim:      ai.DefaultDimension,
		policy:   ai.DefaultRetryPolicy(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "query-encoder")
	return e, nil
}

// Encode validates the filters and embeds text.
//
// Errors: core.ErrEmptyQuery for blank text, core.ErrInvalidFilter for bad
// filters, core.ErrUpstreamUnavailable once provider retries are exhausted,
// core.ErrTimeout when ctx expires, core.ErrDimensionMismatch when the
// provider answers with a vector of the wrong size.
func (e *Encoder) Encode(ctx context.Context, text string, raw RawFilters) (*Encoded, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, core.ErrEmptyQuery
	}

	filters, err := NormalizeFilters(raw)
	if err != nil {
		return nil, err
	}

	vector, err := ai.Embed(ctx, e.embedder, text, e.policy)
	if err != nil {
		return nil, e.mapError(err)
	}
	if len(vector) != e.dim {
		return nil, fmt.Errorf("%w: query embedding has %d dimensions, index uses %d",
			core.ErrDimensionMismatch, len(vector), e.dim)
	}

	return &Encoded{Vector: vector, Filters: filters}, nil
}

func (e *Encoder) mapError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", core.ErrTimeout, err)
	case errors.Is(err, ai.ErrEmbeddingProvider):
		e.logger.Warn("embedding provider unavailable", "err", err)
		return fmt.Errorf("%w: %w", core.ErrUpstreamUnavailable, err)
	default:
		return err
	}
}
