package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/teamup/ai"
	"github.com/poiesic/teamup/core"
	"github.com/poiesic/teamup/index"
	"github.com/poiesic/teamup/query"
	"github.com/poiesic/teamup/rank"
	"github.com/poiesic/teamup/retrieve"
	"github.com/poiesic/teamup/score"
	"github.com/poiesic/teamup/teams"
)

const (
	// DefaultSearchPageSize is the number of search results per page.
	DefaultSearchPageSize = 15
	// DefaultRecommendPageSize is the number of recommendations per page.
	DefaultRecommendPageSize = 8
	// DefaultRecommendPool is the minimum number of candidates scored for
	// a recommendation.
	DefaultRecommendPool = 50
	// DefaultOverFetchMargin is added to every retrieval window.
	DefaultOverFetchMargin = 10
)

// SearchRequest is a free-text search.
type SearchRequest struct {
	Text    string
	Filters query.RawFilters
	Page    int
	// PageSize of 0 selects the engine default.
	PageSize int
	// ExcludeUserID is normally the user issuing the search.
	ExcludeUserID string
}

// SearchResult is one page of search hits. Only Similarity is set on each
// match; CompositeScore mirrors it.
type SearchResult struct {
	Results []core.CandidateMatch `json:"results"`
	// TotalAvailable counts every profile passing the filters.
	TotalAvailable int `json:"totalAvailable"`
	Page           int `json:"page"`
	PageSize       int `json:"pageSize"`
}

// RecommendRequest asks for teammates for UserID.
type RecommendRequest struct {
	UserID  string
	Filters query.RawFilters
	Page    int
	// PageSize of 0 selects the engine default.
	PageSize int
	// ExcludeUserIDs are dropped from the results, e.g. users already invited.
	ExcludeUserIDs []string
}

// RecommendResult is one page of scored recommendations.
type RecommendResult struct {
	Results []core.CandidateMatch `json:"results"`
	// TotalConsidered is the number of candidates scored.
	TotalConsidered int `json:"totalConsidered"`
	// TotalRecommended is len(Results).
	TotalRecommended int `json:"totalRecommended"`
	// AverageScore is the mean composite score of Results, or 0.
	AverageScore float64 `json:"averageScore"`
}

// Engine answers search and recommendation requests over a profile index.
type Engine struct {
	index     *index.Index
	encoder   *query.Encoder
	retriever *retrieve.Retriever
	scorer    *score.Scorer
	former    *teams.Former
	logger    *slog.Logger
	monitor   Monitor

	weights    score.Weights
	thresholds score.Thresholds
	policy     ai.RetryPolicy

	margin            int
	recommendPool     int
	searchPageSize    int
	recommendPageSize int
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithMonitor sets the monitor notified at each stage of a request.
func WithMonitor(monitor Monitor) Option {
	return func(e *Engine) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		e.monitor = monitor
		return nil
	}
}

// WithWeights sets the composite score weights.
func WithWeights(weights score.Weights) Option {
	return func(e *Engine) error {
		if err := weights.Validate(); err != nil {
			return err
		}
		e.weights = weights
		return nil
	}
}

// WithThresholds sets the match reason thresholds.
func WithThresholds(thresholds score.Thresholds) Option {
	return func(e *Engine) error {
		e.thresholds = thresholds
		return nil
	}
}

// WithRetryPolicy sets the timeout and retry policy for query embedding.
func WithRetryPolicy(policy ai.RetryPolicy) Option {
	return func(e *Engine) error {
		if policy.MaxAttempts < 1 {
			return ai.ErrInvalidMaxAttempts
		}
		e.policy = policy
		return nil
	}
}

// WithOverFetchMargin sets how many extra candidates each retrieval asks
// for beyond the requested page.
func WithOverFetchMargin(margin int) Option {
	return func(e *Engine) error {
		if margin < 0 {
			return fmt.Errorf("over-fetch margin must not be negative: %d", margin)
		}
		e.margin = margin
		return nil
	}
}

// WithRecommendPool sets the minimum number of candidates scored per
// recommendation.
func WithRecommendPool(pool int) Option {
	return func(e *Engine) error {
		if pool < 1 {
			return fmt.Errorf("recommend pool must be positive: %d", pool)
		}
		e.recommendPool = pool
		return nil
	}
}

// WithPageSizes sets the default page sizes for search and recommend.
func WithPageSizes(search, recommend int) Option {
	return func(e *Engine) error {
		if search < 1 || recommend < 1 {
			return fmt.Errorf("%w: default page sizes must be positive", core.ErrInvalidPage)
		}
		e.searchPageSize = search
		e.recommendPageSize = recommend
		return nil
	}
}

// New creates an Engine over idx. Query text is embedded with embedder,
// which must produce vectors of the index's dimension.
func New(idx *index.Index, embedder ai.Embedder, opts ...Option) (*Engine, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	e := &Engine{
		index:             idx,
		logger:            slog.Default(),
		monitor:           &noopMonitor{},
		weights:           score.DefaultWeights(),
		thresholds:        score.DefaultThresholds(),
		policy:            ai.DefaultRetryPolicy(),
		margin:            DefaultOverFetchMargin,
		recommendPool:     DefaultRecommendPool,
		searchPageSize:    DefaultSearchPageSize,
		recommendPageSize: DefaultRecommendPageSize,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	var err error
	e.encoder, err = query.NewEncoder(embedder,
		query.WithDimension(idx.Dimension()),
		query.WithRetryPolicy(e.policy),
		query.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}
	if e.retriever, err = retrieve.New(idx); err != nil {
		return nil, err
	}
	if e.scorer, err = score.New(e.weights, e.thresholds); err != nil {
		return nil, err
	}
	if e.former, err = teams.New(idx, teams.WithLogger(e.logger)); err != nil {
		return nil, err
	}
	return e, nil
}

// Search embeds req.Text and returns the requested page of the most
// similar profiles passing req.Filters.
func (e *Engine) Search(ctx context.Context, req SearchRequest) (result *SearchResult, err error) {
	started := time.Now()
	e.monitor.Start(OpSearch)
	defer func() {
		n := 0
		if result != nil {
			n = len(result.Results)
		}
		e.monitor.Finish(OpSearch, n, time.Since(started), err)
	}()

	pageSize, err := e.pageSize(req.Page, req.PageSize, e.searchPageSize)
	if err != nil {
		return nil, err
	}

	encoded, err := e.encoder.Encode(ctx, req.Text, req.Filters)
	if err != nil {
		return nil, err
	}
	e.monitor.AfterEncode(OpSearch, time.Since(started))

	found, err := e.retriever.Retrieve(ctx, retrieve.Request{
		Vector:        encoded.Vector,
		Filters:       encoded.Filters,
		ExcludeUserID: req.ExcludeUserID,
		K:             retrieve.FetchSize(req.Page, pageSize, e.margin),
	})
	if err != nil {
		return nil, e.mapError(err)
	}
	e.monitor.AfterRetrieve(OpSearch, len(found.Candidates), found.Matched)

	matches := make([]core.CandidateMatch, len(found.Candidates))
	for i, c := range found.Candidates {
		matches[i] = core.CandidateMatch{
			UserID:         c.UserID,
			Similarity:     c.Similarity,
			CompositeScore: c.Similarity,
		}
	}

	page, err := rank.Aggregate(matches, rank.BySimilarity, req.Page, pageSize)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("search complete", "results", len(page.Results), "matched", found.Matched)
	return &SearchResult{
		Results:        page.Results,
		TotalAvailable: found.Matched,
		Page:           page.Page,
		PageSize:       page.PageSize,
	}, nil
}

// Recommend scores candidates for req.UserID and returns the requested page,
// best composite score first.
//
// The requester is matched with the embedding it has. Until a pending
// embedding lands that is the zero vector, which gives every candidate a
// similarity of 0.5, so ordering comes from the attribute scores alone.
//
// Errors: core.ErrProfileNotFound for an unknown requester,
// core.ErrProfileIncomplete when the requester lists neither skills nor
// roles, core.ErrInvalidFilter and core.ErrInvalidPage for bad input.
func (e *Engine) Recommend(ctx context.Context, req RecommendRequest) (result *RecommendResult, err error) {
	started := time.Now()
	e.monitor.Start(OpRecommend)
	defer func() {
		n := 0
		if result != nil {
			n = len(result.Results)
		}
		e.monitor.Finish(OpRecommend, n, time.Since(started), err)
	}()

	pageSize, err := e.pageSize(req.Page, req.PageSize, e.recommendPageSize)
	if err != nil {
		return nil, err
	}

	requester, err := e.index.Get(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if requester.IsIncomplete() {
		return nil, fmt.Errorf("%w: %s", core.ErrProfileIncomplete, req.UserID)
	}
	if requester.IsStale() {
		e.logger.Debug("requester embedding is not current",
			"userID", requester.UserID, "embedded", requester.HasEmbedding())
	}

	filters, err := query.NormalizeFilters(req.Filters)
	if err != nil {
		return nil, err
	}

	found, err := e.retriever.Retrieve(ctx, retrieve.Request{
		Vector:         requester.Embedding,
		Filters:        filters,
		ExcludeUserID:  requester.UserID,
		ExcludeUserIDs: req.ExcludeUserIDs,
		K:              max(e.recommendPool, retrieve.FetchSize(req.Page, pageSize, e.margin)),
	})
	if err != nil {
		return nil, e.mapError(err)
	}
	e.monitor.AfterRetrieve(OpRecommend, len(found.Candidates), found.Matched)

	matches := make([]core.CandidateMatch, 0, len(found.Candidates))
	for _, c := range found.Candidates {
		if err := ctx.Err(); err != nil {
			return nil, e.mapError(err)
		}
		candidate, err := e.index.Get(ctx, c.UserID)
		if err != nil {
			// removed between retrieval and scoring
			e.logger.Warn("skipping candidate", "userID", c.UserID, "err", err)
			e.monitor.SkippedCandidate(OpRecommend, c.UserID)
			continue
		}
		matches = append(matches, e.scorer.Score(requester, candidate, c.Similarity))
	}

	page, err := rank.Aggregate(matches, rank.ByComposite, req.Page, pageSize)
	if err != nil {
		return nil, err
	}

	var total float64
	for _, m := range page.Results {
		total += m.CompositeScore
	}
	var average float64
	if len(page.Results) > 0 {
		average = total / float64(len(page.Results))
	}

	e.logger.Debug("recommendations computed",
		"userID", req.UserID, "considered", len(matches), "recommended", len(page.Results))
	return &RecommendResult{
		Results:          page.Results,
		TotalConsidered:  len(matches),
		TotalRecommended: len(page.Results),
		AverageScore:     average,
	}, nil
}

// FormTeams groups embedded profiles into teams of three.
func (e *Engine) FormTeams(ctx context.Context) ([]core.Team, error) {
	return e.former.Form(ctx)
}

// Compatibility returns the overlap percentage between two users.
func (e *Engine) Compatibility(ctx context.Context, userA, userB string) (int, error) {
	a, err := e.index.Get(ctx, userA)
	if err != nil {
		return 0, err
	}
	b, err := e.index.Get(ctx, userB)
	if err != nil {
		return 0, err
	}
	return score.Compatibility(a, b), nil
}

func (e *Engine) pageSize(page, size, fallback int) (int, error) {
	if size == 0 {
		size = fallback
	}
	if page < 0 || size < 0 {
		return 0, fmt.Errorf("%w: page %d, size %d", core.ErrInvalidPage, page, size)
	}
	return size, nil
}

func (e *Engine) mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", core.ErrTimeout, err)
	}
	return err
}
