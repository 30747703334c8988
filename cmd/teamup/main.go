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


package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/teamup"
	"github.com/poiesic/teamup/config"
	"github.com/poiesic/teamup/core"
	"github.com/poiesic/teamup/query"
	"github.com/poiesic/teamup/search"
)

func main() {
	// A missing .env is normal; anything else is worth a warning.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning: failed to load .env: %v", err)
	}

	app := newApp(&runner{out: os.Stdout, progress: os.Stderr})
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// runner carries what every command needs besides its flags.
type runner struct {
	out      io.Writer
	progress io.Writer
	dbOpts   []teamup.DatabaseOption
}

func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "college", Usage: "Only match this college (case-insensitive substring)"},
		&cli.StringFlag{Name: "location", Usage: "Only match this location (case-insensitive substring)"},
		&cli.StringSliceFlag{Name: "skills", Usage: "Require all of these skills"},
		&cli.StringSliceFlag{Name: "domain", Usage: "Require any of these domain interests"},
		&cli.StringFlag{Name: "grad-year-min", Usage: "Earliest graduation year"},
		&cli.StringFlag{Name: "grad-year-max", Usage: "Latest graduation year"},
	}
}

func pageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "page", Usage: "Zero-based result page"},
		&cli.IntFlag{Name: "page-size", Usage: "Results per page (0 uses the configured default)"},
	}
}

func userFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "user",
		Aliases:  []string{"u"},
		Usage:    "User ID",
		Required: true,
	}
}

func newApp(r *runner) *cli.App {
	return &cli.App{
		Name:  "teamup",
		Usage: "Teammate search and recommendation over embedded profiles",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides config)",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "Write Prometheus metrics in text format to this file on exit",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Import profiles from a JSON array and embed them",
				Action: r.importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSON file holding an array of profiles",
						Required: true,
					},
				},
			},
			{
				Name:   "remove",
				Usage:  "Remove a profile",
				Action: r.removeCommand,
				Flags:  []cli.Flag{userFlag()},
			},
			{
				Name:   "show",
				Usage:  "Print a stored profile",
				Action: r.showCommand,
				Flags:  []cli.Flag{userFlag()},
			},
			{
				Name:   "search",
				Usage:  "Free-text search for profiles",
				Action: r.searchCommand,
				Flags: append(append([]cli.Flag{
					&cli.StringFlag{
						Name:     "text",
						Aliases:  []string{"t"},
						Usage:    "Search text",
						Required: true,
					},
					&cli.StringFlag{Name: "exclude", Usage: "User ID to leave out, normally the searcher"},
				}, filterFlags()...), pageFlags()...),
			},
			{
				Name:   "recommend",
				Usage:  "Recommend teammates for a user",
				Action: r.recommendCommand,
				Flags: append(append([]cli.Flag{
					userFlag(),
					&cli.StringSliceFlag{Name: "exclude-users", Usage: "User IDs to leave out"},
				}, filterFlags()...), pageFlags()...),
			},
			{
				Name:   "teams",
				Usage:  "Form balanced teams of three",
				Action: r.teamsCommand,
			},
			{
				Name:   "compat",
				Usage:  "Show the compatibility percentage of two users",
				Action: r.compatCommand,
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{Name: "other", Usage: "Other user ID", Required: true},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all profiles with the configured embedding model",
				Action: r.reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of profiles to embed in each batch",
						Value: 64,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N profiles",
						Value: 64,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per provider call",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "stale-only",
						Usage: "Only reembed profiles whose text changed since their last embedding",
					},
				},
			},
		},
	}
}

// withDatabase opens the configured database, runs fn and writes the
// metrics file if one was requested.
func (r *runner) withDatabase(c *cli.Context, fn func(ctx context.Context, db *teamup.Database) error) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if path := c.String("db"); path != "" {
		cfg.Database.Path = path
		cfg.Database.InMemory = false
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	opts := append([]teamup.DatabaseOption{teamup.WithConfig(cfg), teamup.WithLogger(slog.Default())}, r.dbOpts...)
	db, err := teamup.NewDatabase(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	runErr := fn(ctx, db)
	if path := c.String("metrics-file"); path != "" {
		if err := prometheus.WriteToTextfile(path, db.Gatherer()); err != nil {
			return errors.Join(runErr, fmt.Errorf("failed to write metrics: %w", err))
		}
	}
	return runErr
}

func (r *runner) withEngine(c *cli.Context, fn func(ctx context.Context, engine *search.Engine) error) error {
	return r.withDatabase(c, func(ctx context.Context, db *teamup.Database) error {
		engine, err := db.NewEngine()
		if err != nil {
			return fmt.Errorf("failed to create engine: %w", err)
		}
		return fn(ctx, engine)
	})
}

func (r *runner) importCommand(c *cli.Context) error {
	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return err
	}
	var profiles []*core.Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return fmt.Errorf("failed to parse profiles: %w", err)
	}

	return r.withDatabase(c, func(ctx context.Context, db *teamup.Database) error {
		pipeline, err := db.NewIngestionPipeline()
		if err != nil {
			return err
		}
		defer pipeline.Release()

		for _, p := range profiles {
			if err := pipeline.Upsert(ctx, p); err != nil {
				return fmt.Errorf("profile %s: %w", p.UserID, err)
			}
		}
		pipeline.Wait()
		fmt.Fprintf(r.progress, "Imported %d profiles (%d indexed)\n", len(profiles), db.Index().Len())
		return nil
	})
}

func (r *runner) removeCommand(c *cli.Context) error {
	return r.withDatabase(c, func(ctx context.Context, db *teamup.Database) error {
		pipeline, err := db.NewIngestionPipeline()
		if err != nil {
			return err
		}
		defer pipeline.Release()
		return pipeline.OnProfileDeleted(ctx, c.String("user"))
	})
}

func (r *runner) showCommand(c *cli.Context) error {
	return r.withDatabase(c, func(ctx context.Context, db *teamup.Database) error {
		p, err := db.Index().Get(ctx, c.String("user"))
		if err != nil {
			return err
		}
		p.Embedding = nil
		return writeJSON(r.out, p)
	})
}

func (r *runner) searchCommand(c *cli.Context) error {
	return r.withEngine(c, func(ctx context.Context, engine *search.Engine) error {
		res, err := engine.Search(ctx, search.SearchRequest{
			Text:          c.String("text"),
			Filters:       filtersFromFlags(c),
			Page:          c.Int("page"),
			PageSize:      c.Int("page-size"),
			ExcludeUserID: c.String("exclude"),
		})
		if err != nil {
			return err
		}
		return writeJSON(r.out, res)
	})
}

func (r *runner) recommendCommand(c *cli.Context) error {
	return r.withEngine(c, func(ctx context.Context, engine *search.Engine) error {
		res, err := engine.Recommend(ctx, search.RecommendRequest{
			UserID:         c.String("user"),
			Filters:        filtersFromFlags(c),
			Page:           c.Int("page"),
			PageSize:       c.Int("page-size"),
			ExcludeUserIDs: c.StringSlice("exclude-users"),
		})
		if err != nil {
			return err
		}
		return writeJSON(r.out, res)
	})
}

func (r *runner) teamsCommand(c *cli.Context) error {
	return r.withEngine(c, func(ctx context.Context, engine *search.Engine) error {
		teams, err := engine.FormTeams(ctx)
		if err != nil {
			return err
		}
		return writeJSON(r.out, teams)
	})
}

func (r *runner) compatCommand(c *cli.Context) error {
	return r.withEngine(c, func(ctx context.Context, engine *search.Engine) error {
		pct, err := engine.Compatibility(ctx, c.String("user"), c.String("other"))
		if err != nil {
			return err
		}
		return writeJSON(r.out, map[string]any{
			"userId":        c.String("user"),
			"otherUserId":   c.String("other"),
			"compatibility": pct,
		})
	})
}

func (r *runner) reembedCommand(c *cli.Context) error {
	// Validate flags before touching the database
	if c.Int("batch-size") <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if c.Int("report-interval") <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if c.Int("max-retries") <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	return r.withDatabase(c, func(ctx context.Context, db *teamup.Database) error {
		rc := db.ReembedConfig()
		if c.IsSet("batch-size") {
			rc.BatchSize = c.Int("batch-size")
		}
		if c.IsSet("report-interval") {
			rc.ReportInterval = c.Int("report-interval")
		}
		if c.IsSet("max-retries") {
			rc.RetryPolicy.MaxAttempts = c.Int("max-retries")
		}
		if c.IsSet("retry-delay") {
			rc.RetryPolicy.BaseDelay = c.Duration("retry-delay")
		}
		rc.StaleOnly = c.Bool("stale-only")

		reembedder, err := db.NewReembedder(rc, r.progress)
		if err != nil {
			return err
		}

		cfg := db.Config()
		fmt.Fprintf(r.progress, "Database: %s\n", cfg.Database.Path)
		fmt.Fprintf(r.progress, "Embedding host: %s\n", cfg.AI.Host)
		fmt.Fprintf(r.progress, "Embedding model: %s\n", cfg.AI.EmbeddingModel)
		fmt.Fprintln(r.progress)

		if _, err := reembedder.Run(ctx); err != nil {
			return fmt.Errorf("reembedding failed: %w", err)
		}
		return nil
	})
}

func filtersFromFlags(c *cli.Context) query.RawFilters {
	return query.RawFilters{
		College:        c.String("college"),
		Location:       c.String("location"),
		Skills:         query.StringList(c.StringSlice("skills")),
		DomainInterest: query.StringList(c.StringSlice("domain")),
		GradYearMin:    c.String("grad-year-min"),
		GradYearMax:    c.String("grad-year-max"),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
