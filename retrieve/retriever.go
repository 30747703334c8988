// Package retrieve fetches candidate profiles from the index, dropping the
// requester and any other excluded users.
package retrieve

import (
	"context"
	"errors"
	"math"

	"github.com/poiesic/teamup/core"
	"github.com/poiesic/teamup/index"
)

// ErrIndexRequired is returned when New is called without an index.
var ErrIndexRequired = errors.New("profile index is required")

// Request describes one retrieval.
type Request struct {
	Vector  []float32
	Filters core.FilterSet
	// ExcludeUserID is normally the requester.
	ExcludeUserID string
	// ExcludeUserIDs lists further users to drop, e.g. already invited ones.
	ExcludeUserIDs []string
	// K is the maximum number of candidates to return.
	K int
}

// Result holds the retrieved candidates.
type Result struct {
	// Candidates are ordered by descending similarity, then user ID.
	Candidates []core.ScoredID
	// Matched counts profiles that passed the filters, excluded users aside.
	Matched int
}

// Retriever wraps an index query with exclusions.
type Retriever struct {
	index *index.Index
}

// New creates a Retriever.
func New(idx *index.Index) (*Retriever, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	return &Retriever{index: idx}, nil
}

// FetchSize is how many candidates to request so page can be filled after
// deduplication and exclusions: (page+1)*pageSize + margin. Negative
// arguments count as zero and the result saturates at math.MaxInt.
func FetchSize(page, pageSize, margin int) int {
	page, pageSize, margin = max(page, 0), max(pageSize, 0), max(margin, 0)
	if pageSize > 0 && page >= (math.MaxInt-margin)/pageSize {
		return math.MaxInt
	}
	return (page+1)*pageSize + margin
}

// Retrieve returns at most req.K candidates that are not excluded.
func (r *Retriever) Retrieve(ctx context.Context, req Request) (*Result, error) {
	excluded := make(map[string]struct{}, len(req.ExcludeUserIDs)+1)
	if req.ExcludeUserID != "" {
		excluded[req.ExcludeUserID] = struct{}{}
	}
	for _, id := range req.ExcludeUserIDs {
		excluded[id] = struct{}{}
	}

	k := max(req.K, 0)
	fetch := math.MaxInt
	if k <= math.MaxInt-len(excluded) {
		fetch = k + len(excluded)
	}
	res, err := r.index.Query(ctx, req.Vector, req.Filters, fetch)
	if err != nil {
		return nil, err
	}

	candidates := make([]core.ScoredID, 0, min(k, len(res.Hits)))
	dropped := 0
	for _, hit := range res.Hits {
		if _, skip := excluded[hit.UserID]; skip {
			dropped++
			continue
		}
		if len(candidates) < k {
			candidates = append(candidates, hit)
		}
	}

	// Hits past the fetched window may still hold excluded users; count
	// only those known to have matched.
	matched := res.Matched - dropped
	if len(res.Hits) < res.Matched {
		matched = res.Matched - r.excludedMatches(ctx, req, excluded)
	}

	return &Result{Candidates: candidates, Matched: max(matched, 0)}, nil
}

// excludedMatches counts excluded users that pass the filters.
func (r *Retriever) excludedMatches(ctx context.Context, req Request, excluded map[string]struct{}) int {
	n := 0
	for id := range excluded {
		p, err := r.index.Get(ctx, id)
		if err != nil {
			continue
		}
		if index.Matches(p, req.Filters) {
			n++
		}
	}
	return n
}
