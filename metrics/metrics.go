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


// Package metrics exposes Prometheus metrics for the matching engine and
// the profile pipeline.
//
// Metrics are registered on the Registerer passed to NewCollector, never on
// the global default registry, so several engines can live in one process.
//
// Usage:
//
//	reg := prometheus.NewRegistry()
//	c := metrics.NewCollector(reg)
//	engine, _ := search.New(idx, embedder, search.WithMonitor(c))
//	pipeline, _ := ingestion.NewPipeline(idx, embedder, ingestion.WithObserver(c))
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/poiesic/teamup/core"
	"github.com/poiesic/teamup/ingestion"
	"github.com/poiesic/teamup/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "teamup"

// Request outcomes used as the "outcome" label.
const (
	OutcomeOK         = "ok"
	OutcomeInvalid    = "invalid_request"
	OutcomeNotFound   = "not_found"
	OutcomeIncomplete = "profile_incomplete"
	OutcomeUpstream   = "upstream_unavailable"
	OutcomeTimeout    = "timeout"
	OutcomeError      = "error"
)

// Collector records engine and pipeline activity.
type Collector struct {
	reg prometheus.Registerer

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	encodeDuration  prometheus.Histogram
	candidates      *prometheus.HistogramVec
	results         *prometheus.HistogramVec
	skipped         *prometheus.CounterVec
	embeddings      *prometheus.CounterVec
}

var (
	_ search.Monitor     = (*Collector)(nil)
	_ ingestion.Observer = (*Collector)(nil)
)

// NewCollector creates a Collector and registers its metrics on reg.
// It panics if the metrics are already registered on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		reg: reg,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of search and recommend requests by outcome",
			},
			[]string{"operation", "outcome"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "End-to-end request latency in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"operation"},
		),
		encodeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_encode_duration_seconds",
				Help:      "Time spent embedding search queries in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		candidates: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "retrieved_candidates",
				Help:      "Number of candidates retrieved per request",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
			},
			[]string{"operation"},
		),
		results: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "returned_results",
				Help:      "Number of results returned per successful request",
				Buckets:   []float64{0, 1, 2, 4, 8, 15, 30},
			},
			[]string{"operation"},
		),
		skipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "skipped_candidates_total",
				Help:      "Candidates dropped because they vanished before scoring",
			},
			[]string{"operation"},
		),
		embeddings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "profile_embeddings_total",
				Help:      "Background profile embedding jobs by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// TrackIndexSize exports size as the teamup_indexed_profiles gauge.
func (c *Collector) TrackIndexSize(size func() int) {
	promauto.With(c.reg).NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "indexed_profiles",
			Help:      "Number of profiles in the index",
		},
		func() float64 { return float64(size()) },
	)
}

// Start implements search.Monitor.
func (c *Collector) Start(string) {}

// AfterEncode implements search.Monitor.
func (c *Collector) AfterEncode(_ string, elapsed time.Duration) {
	c.encodeDuration.Observe(elapsed.Seconds())
}

// AfterRetrieve implements search.Monitor.
func (c *Collector) AfterRetrieve(op string, candidates, _ int) {
	c.candidates.WithLabelValues(op).Observe(float64(candidates))
}

// SkippedCandidate implements search.Monitor.
func (c *Collector) SkippedCandidate(op string, _ string) {
	c.skipped.WithLabelValues(op).Inc()
}

// Finish implements search.Monitor.
func (c *Collector) Finish(op string, results int, elapsed time.Duration, err error) {
	outcome := Outcome(err)
	c.requests.WithLabelValues(op, outcome).Inc()
	c.requestDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	if outcome == OutcomeOK {
		c.results.WithLabelValues(op).Observe(float64(results))
	}
}

// EmbeddingApplied implements ingestion.Observer.
func (c *Collector) EmbeddingApplied(string) {
	c.embeddings.WithLabelValues("applied").Inc()
}

// EmbeddingDiscarded implements ingestion.Observer.
func (c *Collector) EmbeddingDiscarded(string) {
	c.embeddings.WithLabelValues("discarded").Inc()
}

// EmbeddingFailed implements ingestion.Observer.
func (c *Collector) EmbeddingFailed(string, error) {
	c.embeddings.WithLabelValues("failed").Inc()
}

// Outcome maps a request error onto a low-cardinality label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, core.ErrEmptyQuery),
		errors.Is(err, core.ErrInvalidFilter),
		errors.Is(err, core.ErrInvalidPage):
		return OutcomeInvalid
	case errors.Is(err, core.ErrProfileNotFound):
		return OutcomeNotFound
	case errors.Is(err, core.ErrProfileIncomplete):
		return OutcomeIncomplete
	case errors.Is(err, core.ErrUpstreamUnavailable):
		return OutcomeUpstream
	case errors.Is(err, core.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	default:
		return OutcomeError
	}
}
