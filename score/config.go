package score

import (
	"errors"
	"fmt"
)

// ErrInvalidWeights is returned when weights are negative or sum past 1.
var ErrInvalidWeights = errors.New("invalid scoring weights")

// Weights are the coefficients of the composite score.
type Weights struct {
	Similarity  float64 `koanf:"similarity"`
	Skills      float64 `koanf:"skills"`
	Roles       float64 `koanf:"roles"`
	Domain      float64 `koanf:"domain"`
	LocaleBonus float64 `koanf:"locale_bonus"`
}

// DefaultWeights keeps the 0.4/0.3/0.2/0.1 proportions, scaled so the
// weights plus the locale bonus sum to exactly 1.
func DefaultWeights() Weights {
	return Weights{
		Similarity:  0.36,
		Skills:      0.27,
		Roles:       0.18,
		Domain:      0.09,
		LocaleBonus: 0.10,
	}
}

// Sum returns the maximum composite the weights can produce.
func (w Weights) Sum() float64 {
	return w.Similarity + w.Skills + w.Roles + w.Domain + w.LocaleBonus
}

// Validate rejects negative weights and weights summing to more than 1.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"similarity":   w.Similarity,
		"skills":       w.Skills,
		"roles":        w.Roles,
		"domain":       w.Domain,
		"locale_bonus": w.LocaleBonus,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidWeights, name)
		}
	}
	if sum := w.Sum(); sum > 1+1e-9 {
		return fmt.Errorf("%w: weights sum to %.3f", ErrInvalidWeights, sum)
	}
	return nil
}

// Thresholds decide which signals are significant enough to explain.
type Thresholds struct {
	HighSimilarity float64 `koanf:"high_similarity"`
	GoodSimilarity float64 `koanf:"good_similarity"`
	SkillGap       float64 `koanf:"skill_gap"`
	RoleGap        float64 `koanf:"role_gap"`
	DomainShared   float64 `koanf:"domain_shared"`
	MaxReasons     int     `koanf:"max_reasons"`
}

// DefaultThresholds returns the standard reason cutoffs. Similarity
// thresholds are on the mapped [0,1] scale; 0.85 is a cosine of 0.7.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighSimilarity: 0.85,
		GoodSimilarity: 0.75,
		SkillGap:       0.3,
		RoleGap:        0.5,
		DomainShared:   0,
		MaxReasons:     4,
	}
}
