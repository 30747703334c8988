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


// Package score computes recommendation scores and their explanations.
//
// Complementarity signals reward candidates who bring what the requester
// lacks (set difference). Domain alignment rewards shared interest (set
// overlap). Compatibility is the separate, purely overlap-based figure
// shown on profile pages and is never used for ranking.
package score

import (
	"strings"

	"github.com/poiesic/teamup/core"
)

// Scorer turns a requester, a candidate and their similarity into a
// core.CandidateMatch. It holds no mutable state.
type Scorer struct {
	weights    Weights
	thresholds Thresholds
}

// New creates a Scorer. Weights are validated.
func New(weights Weights, thresholds Thresholds) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if thresholds.MaxReasons < 0 {
		thresholds.MaxReasons = 0
	}
	return &Scorer{weights: weights, thresholds: thresholds}, nil
}

// Default returns a Scorer with DefaultWeights and DefaultThresholds.
func Default() *Scorer {
	return &Scorer{weights: DefaultWeights(), thresholds: DefaultThresholds()}
}

// Weights returns the scorer's weights.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score computes every signal, the composite and the match reasons.
func (s *Scorer) Score(requester, candidate *core.Profile, similarity float64) core.CandidateMatch {
	similarity = clamp01(similarity)
	skills := Complementarity(requester.Skills, candidate.Skills)
	roles := Complementarity(requester.PreferredRoles, candidate.PreferredRoles)
	domain := Alignment(requester.DomainInterest, candidate.DomainInterest)

	sameCollege := sameLocale(requester.College, candidate.College)
	sameLocation := sameLocale(requester.Location, candidate.Location)
	var bonus float64
	if sameCollege || sameLocation {
		bonus = s.weights.LocaleBonus
	}

	w := s.weights
	composite := w.Similarity*similarity + w.Skills*skills + w.Roles*roles + w.Domain*domain + bonus

	m := core.CandidateMatch{
		UserID:                candidate.UserID,
		Similarity:            similarity,
		SkillsComplementarity: skills,
		RoleComplementarity:   roles,
		DomainAlignment:       domain,
		LocaleBonus:           bonus,
		CompositeScore:        clamp01(composite),
	}
	m.MatchReasons = s.reasons(requester, candidate, m, sameCollege, sameLocation)
	return m
}

// Complementarity is the fraction of candidate values the requester lacks:
// |candidate \ requester| / |candidate|. It is 0 when either side is empty.
func Complementarity(requester, candidate []string) float64 {
	req := core.NormalizeSet(requester, 0)
	cand := core.NormalizeSet(candidate, 0)
	if len(req) == 0 || len(cand) == 0 {
		return 0
	}
	return float64(len(core.Difference(cand, req))) / float64(len(cand))
}

// Alignment is the overlap fraction |a ∩ b| / max(|a|, |b|).
// It is 0 when either side is empty.
func Alignment(a, b []string) float64 {
	a = core.NormalizeSet(a, 0)
	b = core.NormalizeSet(b, 0)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return float64(len(core.Intersection(a, b))) / float64(max(len(a), len(b)))
}

func sameLocale(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && b != "" && strings.EqualFold(a, b)
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
