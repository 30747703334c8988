// Package teams groups users into balanced teams of three.
package teams

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/teamup/core"
	"github.com/poiesic/teamup/index"
)

// TeamSize is the number of members in a formed team.
const TeamSize = 3

const (
	similarityWeight = 0.7
	diversityWeight  = 0.3
)

var (
	// ErrIndexRequired is returned when New is called without an index.
	ErrIndexRequired = errors.New("profile index is required")

	// ErrNotEnoughProfiles is returned when fewer than TeamSize profiles
	// have an embedding.
	ErrNotEnoughProfiles = errors.New("not enough profiles to form teams")
)

// Former builds teams from the embedded profiles in an index.
type Former struct {
	index  *index.Index
	logger *slog.Logger
}

// Option configures a Former.
type Option func(*Former)

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Former) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates a Former.
func New(idx *index.Index, opts ...Option) (*Former, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	f := &Former{index: idx, logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Form walks users in ID order. Each user not yet placed is teamed with the
// two later unplaced users that maximize
//
//	0.7 * average pairwise similarity + 0.3 * min(distinct roles / 3, 1)
//
// with ties going to the earliest pair. Users left over once fewer than
// three remain are not placed.
func (f *Former) Form(ctx context.Context) ([]core.Team, error) {
	var members []*core.Profile
	for _, p := range f.index.All(ctx) {
		if p.HasEmbedding() {
			members = append(members, p)
		}
	}
	if len(members) < TeamSize {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughProfiles, len(members), TeamSize)
	}

	n := len(members)
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
	}
	for i := range n {
		for j := i + 1; j < n; j++ {
			s := index.Similarity(members[i].Embedding, members[j].Embedding)
			sim[i][j], sim[j][i] = s, s
		}
	}

	used := make([]bool, n)
	var teams []core.Team
	for i := range n {
		if used[i] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		best, bestJ, bestK := -1.0, -1, -1
		for j := i + 1; j < n; j++ {
			if used[j] {
				continue
			}
			for k := j + 1; k < n; k++ {
				if used[k] {
					continue
				}
				avg := (sim[i][j] + sim[i][k] + sim[j][k]) / 3
				roles := distinctRoles(members[i], members[j], members[k])
				score := similarityWeight*avg + diversityWeight*min(float64(roles)/TeamSize, 1)
				if score > best {
					best, bestJ, bestK = score, j, k
				}
			}
		}
		if bestJ < 0 {
			break
		}

		used[i], used[bestJ], used[bestK] = true, true, true
		teams = append(teams, core.Team{
			Members: []string{members[i].UserID, members[bestJ].UserID, members[bestK].UserID},
			Score:   best,
		})
	}

	f.logger.Debug("formed teams", "profiles", n, "teams", len(teams))
	return teams, nil
}

func distinctRoles(profiles ...*core.Profile) int {
	seen := make(map[string]struct{})
	for _, p := range profiles {
		for _, r := range p.PreferredRoles {
			if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
				seen[r] = struct{}{}
			}
		}
	}
	return len(seen)
}
