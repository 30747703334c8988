package main

import (
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/goccy/go-json"

	"github.com/poiesic/teamup"
	"github.com/poiesic/teamup/config"
	"github.com/poiesic/teamup/core"
	"github.com/poiesic/teamup/ingestion"
)

var (
	skills = []string{
		"Go", "Python", "TypeScript", "React", "Rust", "SQL", "Kubernetes",
		"PyTorch", "Figma", "Swift", "Kotlin", "GraphQL", "Terraform", "C++",
		"Solidity", "Unity", "Data Viz", "Pandas",
	}
	interests = []string{
		"hackathons", "open source", "startups", "research", "teaching",
		"game jams", "design systems", "competitive programming",
	}
	roles   = []string{"Backend", "Frontend", "Designer", "ML", "Mobile", "DevOps", "PM", "Data"}
	domains = []string{"AI/ML", "FinTech", "HealthTech", "EdTech", "Climate", "Gaming", "Web3", "Developer Tools"}

	colleges = []string{
		"MIT", "Stanford", "Georgia Tech", "IIT Bombay", "University of Waterloo",
		"ETH Zurich", "UC Berkeley", "",
	}
	locations = []string{
		"Boston", "San Francisco", "Atlanta", "Mumbai", "Toronto", "Zurich", "Berlin", "",
	}

	firstNames = []string{"Ada", "Grace", "Linus", "Ken", "Barbara", "Alan", "Radia", "Dennis", "Frances", "Guido"}
)

var (
	dbPath    = flag.String("db", "./teamup_db", "database directory")
	count     = flag.Int("count", 200, "number of synthetic profiles")
	seed      = flag.Uint64("seed", 42, "random seed")
	batchSize = flag.Int("batch", 25, "profiles per batch before waiting for embeddings")
	srcFile   = flag.String("src", "", "JSON array of profiles to load instead of synthetic data")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// pick returns n distinct values from pool.
func pick(r *rand.Rand, pool []string, n int) []string {
	idx := r.Perm(len(pool))[:min(n, len(pool))]
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		if pool[i] != "" {
			out = append(out, pool[i])
		}
	}
	return out
}

func one(r *rand.Rand, pool []string) string {
	return pool[r.IntN(len(pool))]
}

// syntheticProfiles yields n reproducible profiles for the given seed.
func syntheticProfiles(n int, seed uint64) iter.Seq[*core.Profile] {
	return func(yield func(*core.Profile) bool) {
		r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		for i := range n {
			name := one(r, firstNames)
			p := &core.Profile{
				UserID:         fmt.Sprintf("user-%04d", i),
				Name:           fmt.Sprintf("%s %d", name, i),
				Skills:         pick(r, skills, 2+r.IntN(4)),
				Interests:      pick(r, interests, 1+r.IntN(3)),
				PreferredRoles: pick(r, roles, 1+r.IntN(2)),
				DomainInterest: pick(r, domains, 1+r.IntN(3)),
				College:        one(r, colleges),
				Location:       one(r, locations),
				GraduationYear: 2022 + r.IntN(8),
				XP:             r.IntN(5000),
			}
			p.Level = 1 + p.XP/500
			p.Bio = fmt.Sprintf("%s likes %s and wants to work on %s.",
				name, p.Interests[0], p.DomainInterest[0])
			if !yield(p) {
				return
			}
		}
	}
}

// profilesFromFile returns an iterator over a JSON array of profiles.
func profilesFromFile(filename string) (iter.Seq[*core.Profile], error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var profiles []*core.Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return func(yield func(*core.Profile) bool) {
		for _, p := range profiles {
			if !yield(p) {
				return
			}
		}
	}, nil
}

// ingestBatched upserts profiles, waiting for background embeddings after
// every batch so the provider is never flooded.
func ingestBatched(ctx context.Context, pipeline *ingestion.Pipeline, source iter.Seq[*core.Profile], batchSize int) (int, error) {
	n := 0
	for p := range source {
		if err := pipeline.Upsert(ctx, p); err != nil {
			return n, fmt.Errorf("profile %s: %w", p.UserID, err)
		}
		n++
		if n%batchSize == 0 {
			pipeline.Wait()
			slog.Info("seeded batch", "profiles", n)
		}
	}
	pipeline.Wait()
	return n, nil
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}
	cfg.Database.Path = *dbPath

	ctx := context.Background()
	db, err := teamup.NewDatabase(ctx, teamup.WithConfig(cfg))
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	// Determine source of seed data
	var source iter.Seq[*core.Profile]
	if *srcFile != "" {
		source, err = profilesFromFile(*srcFile)
		if err != nil {
			panic(err)
		}
	} else {
		source = syntheticProfiles(*count, *seed)
	}

	n, err := ingestBatched(ctx, pipeline, source, max(*batchSize, 1))
	if err != nil {
		panic(err)
	}
	slog.Info("seeding complete", "profiles", n, "indexed", db.Index().Len())
}
