package rank

import (
	"fmt"
	"math"
	"testing"

	"github.com/poiesic/teamup/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(results []core.CandidateMatch) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.UserID
	}
	return out
}

func TestAggregate_SortsByComposite(t *testing.T) {
	matches := []core.CandidateMatch{
		{UserID: "a", Similarity: 0.9, CompositeScore: 0.2},
		{UserID: "b", Similarity: 0.1, CompositeScore: 0.8},
		{UserID: "c", Similarity: 0.5, CompositeScore: 0.5},
	}

	p, err := Aggregate(matches, ByComposite, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, ids(p.Results))
	assert.Equal(t, 3, p.Total)

	p, err = Aggregate(matches, BySimilarity, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b"}, ids(p.Results))
}

func TestAggregate_TiesByUserID(t *testing.T) {
	matches := []core.CandidateMatch{
		{UserID: "zed", CompositeScore: 0.5},
		{UserID: "amy", CompositeScore: 0.5},
		{UserID: "kim", CompositeScore: 0.5},
	}

	p, err := Aggregate(matches, ByComposite, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"amy", "kim", "zed"}, ids(p.Results))
}

func TestAggregate_DedupesFirstWins(t *testing.T) {
	matches := []core.CandidateMatch{
		{UserID: "a", CompositeScore: 0.1},
		{UserID: "b", CompositeScore: 0.5},
		{UserID: "a", CompositeScore: 0.9},
	}

	p, err := Aggregate(matches, ByComposite, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(p.Results))
	assert.Equal(t, 0.1, p.Results[1].CompositeScore)
	assert.Equal(t, 2, p.Total)
}

func TestAggregate_Paging(t *testing.T) {
	var matches []core.CandidateMatch
	for i := range 7 {
		matches = append(matches, core.CandidateMatch{
			UserID:         fmt.Sprintf("u%d", i),
			CompositeScore: float64(10-i) / 10,
		})
	}

	p, err := Aggregate(matches, ByComposite, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"u3", "u4", "u5"}, ids(p.Results))
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 3, p.PageSize)

	p, err = Aggregate(matches, ByComposite, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"u6"}, ids(p.Results))

	p, err = Aggregate(matches, ByComposite, 5, 3)
	require.NoError(t, err)
	assert.Empty(t, p.Results)
	assert.Equal(t, 7, p.Total)
}

func TestAggregate_HugePageIsEmpty(t *testing.T) {
	matches := []core.CandidateMatch{{UserID: "u1", CompositeScore: 0.9}}

	p, err := Aggregate(matches, ByComposite, math.MaxInt64/2+1, 2)
	require.NoError(t, err)
	assert.Empty(t, p.Results)
	assert.Equal(t, 1, p.Total)

	p, err = Aggregate(matches, ByComposite, 1, math.MaxInt)
	require.NoError(t, err)
	assert.Empty(t, p.Results)

	p, err = Aggregate(matches, ByComposite, 0, math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids(p.Results))
}

func TestAggregate_Empty(t *testing.T) {
	p, err := Aggregate(nil, BySimilarity, 0, 15)
	require.NoError(t, err)
	assert.Empty(t, p.Results)
	assert.Zero(t, p.Total)
}

func TestAggregate_InvalidPage(t *testing.T) {
	_, err := Aggregate(nil, ByComposite, -1, 10)
	assert.ErrorIs(t, err, core.ErrInvalidPage)

	_, err = Aggregate(nil, ByComposite, 0, 0)
	assert.ErrorIs(t, err, core.ErrInvalidPage)
}
