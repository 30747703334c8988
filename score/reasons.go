package score

import (
	"fmt"
	"strings"

	"github.com/poiesic/teamup/core"
)

const (
	maxNamedSkills  = 3
	maxNamedRoles   = 2
	maxNamedDomains = 2
)

// reasons lists the significant signals in a fixed order: similarity,
// skill gaps, roles, shared domains, then locale.
func (s *Scorer) reasons(requester, candidate *core.Profile, m core.CandidateMatch, sameCollege, sameLocation bool) []string {
	th := s.thresholds
	out := make([]string, 0, th.MaxReasons)

	switch {
	case m.Similarity > th.HighSimilarity:
		out = append(out, "High profile compatibility")
	case m.Similarity > th.GoodSimilarity:
		out = append(out, "Good profile match")
	}

	if m.SkillsComplementarity > th.SkillGap {
		gaps := core.Difference(core.NormalizeSet(candidate.Skills, 0), requester.Skills)
		noun := "gaps"
		if len(gaps) == 1 {
			noun = "gap"
		}
		out = append(out, fmt.Sprintf("Fills %d skill %s: %s", len(gaps), noun, list(gaps, maxNamedSkills)))
	}

	if m.RoleComplementarity > th.RoleGap {
		roles := core.Difference(core.NormalizeSet(candidate.PreferredRoles, 0), requester.PreferredRoles)
		out = append(out, plural("Complementary role: ", "Complementary roles: ", roles, maxNamedRoles))
	}

	if m.DomainAlignment > th.DomainShared {
		shared := core.Intersection(core.NormalizeSet(requester.DomainInterest, 0), candidate.DomainInterest)
		out = append(out, plural("Shared interest in ", "Shared interests in ", shared, maxNamedDomains))
	}

	if sameCollege {
		out = append(out, "Same college")
	}
	if sameLocation {
		out = append(out, "Same location")
	}

	if len(out) > th.MaxReasons {
		out = out[:th.MaxReasons]
	}
	return out
}

func plural(one, many string, values []string, limit int) string {
	n := min(len(values), limit)
	if n == 1 {
		return one + values[0]
	}
	return many + list(values, limit)
}

func list(values []string, limit int) string {
	return strings.Join(values[:min(len(values), limit)], ", ")
}
