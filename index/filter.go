package index

import (
	"strings"

	"github.com/poiesic/teamup/core"
)

// Matches reports whether p satisfies every predicate in f.
//
// College and location match as case-insensitive substrings. Skills and
// domain interest match when any value overlaps. The graduation year range
// is inclusive, and profiles without a year never match a year filter.
func Matches(p *core.Profile, f core.FilterSet) bool {
	if f.College != "" && !containsFold(p.College, f.College) {
		return false
	}
	if f.Location != "" && !containsFold(p.Location, f.Location) {
		return false
	}
	if len(f.DomainInterest) > 0 && !core.Overlaps(p.DomainInterest, f.DomainInterest) {
		return false
	}
	if len(f.Skills) > 0 && !core.Overlaps(p.Skills, f.Skills) {
		return false
	}
	if f.GradYear != nil {
		if p.GraduationYear == 0 || !f.GradYear.Contains(p.GraduationYear) {
			return false
		}
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
