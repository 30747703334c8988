package score

import (
	"math"

	"github.com/poiesic/teamup/core"
)

// Points available per attribute in the display compatibility figure.
const (
	compatSkills = 40
	compatRoles  = 30
	compatDomain = 20
	compatLocale = 10
)

// Compatibility is the overlap percentage shown next to a profile.
//
// Skills, roles and domains each contribute |shared| / max(|a|, |b|) of
// their points, but only when both profiles list something. A shared
// location or college adds the locale points to both score and total.
// The score is scaled against the points that could be compared and
// rounded; with nothing comparable the result is 0. Unlike
// Complementarity this rewards sameness and is not used to rank
// recommendations.
func Compatibility(a, b *core.Profile) int {
	var score, possible float64

	add := func(x, y []string, points float64) {
		x = core.NormalizeSet(x, 0)
		y = core.NormalizeSet(y, 0)
		if len(x) == 0 || len(y) == 0 {
			return
		}
		possible += points
		score += points * float64(len(core.Intersection(x, y))) / float64(max(len(x), len(y)))
	}

	add(a.Skills, b.Skills, compatSkills)
	add(a.PreferredRoles, b.PreferredRoles, compatRoles)
	add(a.DomainInterest, b.DomainInterest, compatDomain)

	if sameLocale(a.Location, b.Location) || sameLocale(a.College, b.College) {
		possible += compatLocale
		score += compatLocale
	}

	if possible == 0 {
		return 0
	}
	return int(math.Round(score / possible * 100))
}
