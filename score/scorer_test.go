package score

import (
	"testing"

	"github.com/poiesic/teamup/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frontendDev() *core.Profile {
	return &core.Profile{
		UserID:         "req",
		Skills:         []string{"React"},
		PreferredRoles: []string{"Frontend"},
		DomainInterest: []string{"AI/ML"},
		College:        "MIT",
		Location:       "Boston",
	}
}

func mlEngineer() *core.Profile {
	return &core.Profile{
		UserID:         "cand",
		Skills:         []string{"Python", "ML"},
		PreferredRoles: []string{"Backend"},
		DomainInterest: []string{"AI/ML"},
		College:        "Stanford",
		Location:       "Palo Alto",
	}
}

func TestComplementarity(t *testing.T) {
	tests := []struct {
		name      string
		requester []string
		candidate []string
		want      float64
	}{
		{"disjoint", []string{"react"}, []string{"python", "ml"}, 1},
		{"candidate subset of requester", []string{"react", "python"}, []string{"python"}, 0},
		{"half new", []string{"go"}, []string{"go", "rust"}, 0.5},
		{"case insensitive", []string{"Go"}, []string{"go"}, 0},
		{"requester empty", nil, []string{"go"}, 0},
		{"candidate empty", []string{"go"}, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Complementarity(tt.requester, tt.candidate), 1e-9)
		})
	}
}

func TestAlignment(t *testing.T) {
	assert.InDelta(t, 1.0, Alignment([]string{"AI/ML"}, []string{"ai/ml"}), 1e-9)
	assert.InDelta(t, 0.5, Alignment([]string{"web", "ai"}, []string{"ai"}), 1e-9)
	assert.Zero(t, Alignment(nil, []string{"ai"}))
	assert.Zero(t, Alignment([]string{"web"}, []string{"ai"}))
}

func TestScore_ComplementaryCandidate(t *testing.T) {
	s := Default()

	m := s.Score(frontendDev(), mlEngineer(), 0.9)

	assert.Equal(t, "cand", m.UserID)
	assert.InDelta(t, 1.0, m.SkillsComplementarity, 1e-9)
	assert.InDelta(t, 1.0, m.RoleComplementarity, 1e-9)
	assert.InDelta(t, 1.0, m.DomainAlignment, 1e-9)
	assert.Zero(t, m.LocaleBonus)
	assert.InDelta(t, 0.36*0.9+0.27+0.18+0.09, m.CompositeScore, 1e-9)
	assert.Equal(t, []string{
		"High profile compatibility",
		"Fills 2 skill gaps: ML, Python",
		"Complementary role: Backend",
		"Shared interest in AI/ML",
	}, m.MatchReasons)
}

func TestScore_LocaleBonus(t *testing.T) {
	s := Default()
	cand := mlEngineer()
	cand.College = " mit "

	m := s.Score(frontendDev(), cand, 0.5)

	assert.InDelta(t, 0.10, m.LocaleBonus, 1e-9)
	assert.Contains(t, m.MatchReasons, "Same college")
	assert.NotContains(t, m.MatchReasons, "Same location")
}

func TestScore_ReasonsCapped(t *testing.T) {
	s := Default()
	cand := mlEngineer()
	cand.College = "MIT"
	cand.Location = "Boston"

	m := s.Score(frontendDev(), cand, 0.95)

	assert.Len(t, m.MatchReasons, DefaultThresholds().MaxReasons)
	assert.Equal(t, "High profile compatibility", m.MatchReasons[0])
	assert.NotContains(t, m.MatchReasons, "Same college")
}

func TestScore_GoodMatchAndNoGaps(t *testing.T) {
	s := Default()
	req := frontendDev()
	cand := req.Clone()
	cand.UserID = "twin"
	cand.College = ""
	cand.Location = ""

	m := s.Score(req, cand, 0.8)

	assert.Zero(t, m.SkillsComplementarity)
	assert.Zero(t, m.RoleComplementarity)
	assert.Equal(t, []string{"Good profile match", "Shared interest in AI/ML"}, m.MatchReasons)
}

func TestScore_EmptyProfilesHaveNoReasons(t *testing.T) {
	s := Default()

	m := s.Score(&core.Profile{UserID: "a"}, &core.Profile{UserID: "b"}, 0.5)

	assert.Empty(t, m.MatchReasons)
	assert.InDelta(t, 0.18, m.CompositeScore, 1e-9)
}

func TestScore_Bounds(t *testing.T) {
	s := Default()
	for _, sim := range []float64{-3, 0, 0.5, 1, 7} {
		cand := mlEngineer()
		cand.College = "MIT"
		m := s.Score(frontendDev(), cand, sim)
		assert.GreaterOrEqual(t, m.CompositeScore, 0.0)
		assert.LessOrEqual(t, m.CompositeScore, 1.0)
		assert.GreaterOrEqual(t, m.Similarity, 0.0)
		assert.LessOrEqual(t, m.Similarity, 1.0)
	}
}

func TestScore_Deterministic(t *testing.T) {
	s := Default()
	first := s.Score(frontendDev(), mlEngineer(), 0.77)
	for range 20 {
		assert.Equal(t, first, s.Score(frontendDev(), mlEngineer(), 0.77))
	}
}

func TestScore_ManySkillGapsNamesThree(t *testing.T) {
	s := Default()
	cand := mlEngineer()
	cand.Skills = []string{"d", "c", "b", "a"}

	m := s.Score(frontendDev(), cand, 0)

	assert.Contains(t, m.MatchReasons, "Fills 4 skill gaps: a, b, c")
}

func TestScore_TwoRolesNamed(t *testing.T) {
	s := Default()
	cand := mlEngineer()
	cand.PreferredRoles = []string{"Designer", "Backend", "PM"}

	m := s.Score(frontendDev(), cand, 0)

	assert.Contains(t, m.MatchReasons, "Complementary roles: Backend, Designer")
}

func TestNew_ValidatesWeights(t *testing.T) {
	_, err := New(Weights{Similarity: 0.9, Skills: 0.5}, DefaultThresholds())
	assert.ErrorIs(t, err, ErrInvalidWeights)

	_, err = New(Weights{Similarity: -0.1}, DefaultThresholds())
	assert.ErrorIs(t, err, ErrInvalidWeights)

	s, err := New(Weights{Similarity: 1}, DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Weights().Similarity)
}

func TestDefaultWeights_SumToOne(t *testing.T) {
	w := DefaultWeights()
	require.NoError(t, w.Validate())
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
}

func TestNew_ZeroMaxReasons(t *testing.T) {
	th := DefaultThresholds()
	th.MaxReasons = 0
	s, err := New(DefaultWeights(), th)
	require.NoError(t, err)

	m := s.Score(frontendDev(), mlEngineer(), 0.9)
	assert.Empty(t, m.MatchReasons)
}
