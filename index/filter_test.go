package index

import (
	"testing"

	"github.com/poiesic/teamup/core"
	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	p := &core.Profile{
		UserID:         "u1",
		Skills:         []string{"React", "Node.js"},
		DomainInterest: []string{"AI/ML"},
		College:        "Massachusetts Institute of Technology",
		Location:       "Boston, MA",
		GraduationYear: 2025,
	}

	tests := []struct {
		name   string
		filter core.FilterSet
		want   bool
	}{
		{"empty filter", core.FilterSet{}, true},
		{"college substring ignoring case", core.FilterSet{College: "institute"}, true},
		{"college mismatch", core.FilterSet{College: "stanford"}, false},
		{"location substring", core.FilterSet{Location: "boston"}, true},
		{"skill overlap", core.FilterSet{Skills: []string{"python", "react"}}, true},
		{"skill miss", core.FilterSet{Skills: []string{"python"}}, false},
		{"domain overlap", core.FilterSet{DomainInterest: []string{"ai/ml"}}, true},
		{"domain miss", core.FilterSet{DomainInterest: []string{"fintech"}}, false},
		{"year lower bound", core.FilterSet{GradYear: &core.YearRange{Min: 2025}}, true},
		{"year upper bound", core.FilterSet{GradYear: &core.YearRange{Max: 2025}}, true},
		{"year outside", core.FilterSet{GradYear: &core.YearRange{Min: 2026, Max: 2028}}, false},
		{"all predicates", core.FilterSet{College: "MIT", Skills: []string{"react"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(p, tt.filter))
		})
	}
}

func TestMatches_NoYearNeverMatchesYearFilter(t *testing.T) {
	p := &core.Profile{UserID: "u1"}
	assert.False(t, Matches(p, core.FilterSet{GradYear: &core.YearRange{}}))
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, Similarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.InDelta(t, 0.5, Similarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, 0.5, Similarity([]float32{0, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, 0.5, Similarity(nil, nil), 1e-9)
}
