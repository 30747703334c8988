// Package breaker wraps an ai.Embedder with a circuit breaker so callers
// fail fast while the embedding service is down instead of piling up
// retries against it.
package breaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/teamup/ai"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Settings tunes when the circuit opens and how it recovers.
type Settings struct {
	// Name identifies the breaker in logs and state callbacks.
	Name string
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32
	// Interval is the cyclic period in the closed state after which counts reset.
	Interval time.Duration
	// Timeout is how long the circuit stays open before going half-open.
	Timeout time.Duration
	// ConsecutiveFailures opens the circuit once reached.
	ConsecutiveFailures uint32
}

// DefaultSettings opens after 5 consecutive failures and probes again after 30s.
func DefaultSettings() Settings {
	return Settings{
		Name:                "embedding-provider",
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// Option configures an Embedder.
type Option func(*Embedder)

// WithSettings replaces the default breaker settings.
func WithSettings(s Settings) Option {
	return func(e *Embedder) {
		e.settings = s
	}
}

// WithLogger sets the logger used for state transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Embedder) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithStateListener registers a callback for state transitions.
func WithStateListener(fn func(name string, from, to gobreaker.State)) Option {
	return func(e *Embedder) {
		e.onStateChange = fn
	}
}

// Embedder is an ai.Embedder guarded by a circuit breaker.
type Embedder struct {
	next          ai.Embedder
	cb            *gobreaker.CircuitBreaker[[][]float32]
	settings      Settings
	logger        *slog.Logger
	onStateChange func(name string, from, to gobreaker.State)
}

var _ ai.Embedder = (*Embedder)(nil)

// New wraps next with a circuit breaker.
func New(next ai.Embedder, opts ...Option) *Embedder {
	e := &Embedder{
		next:     next,
		settings: DefaultSettings(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "embedding-breaker")

	threshold := e.settings.ConsecutiveFailures
	if threshold == 0 {
		threshold = 1
	}

	e.cb = gobreaker.NewCircuitBreaker[[][]float32](gobreaker.Settings{
		Name:        e.settings.Name,
		MaxRequests: e.settings.MaxRequests,
		Interval:    e.settings.Interval,
		Timeout:     e.settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			if e.onStateChange != nil {
				e.onStateChange(name, from, to)
			}
		},
		// caller cancellation is not an upstream failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return e
}

// State returns the current breaker state.
func (e *Embedder) State() gobreaker.State {
	return e.cb.State()
}

// EmbedText embeds a single text through the breaker.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.cb.Execute(func() ([][]float32, error) {
		v, err := e.next.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		return [][]float32{v}, nil
	})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts embeds a batch through the breaker.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return e.cb.Execute(func() ([][]float32, error) {
		return e.next.EmbedTexts(ctx, texts)
	})
}
