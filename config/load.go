package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TEAMUP_"

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = EnvPrefix + "CONFIG"

// DefaultConfigPaths are searched in order when no path is given.
var DefaultConfigPaths = []string{
	"teamup.yaml",
	"teamup.yml",
}

// sections are the top-level keys; an env var's first word after the
// prefix must name one of them.
var sections = []string{"database", "ai", "engine", "scoring", "pipeline", "logging"}

// Load merges defaults, the config file at path (or the first file found
// in DefaultConfigPaths when path is empty) and the environment, then
// validates the result. A missing default file is not an error; a missing
// explicit path is.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Layer 3: environment, highest priority
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		return envPath
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps TEAMUP_AI_EMBEDDING_MODEL to ai.embedding_model and
// TEAMUP_SCORING_WEIGHTS_LOCALE_BONUS to scoring.weights.locale_bonus.
// Variables outside a known section are ignored.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	for _, section := range sections {
		rest, ok := strings.CutPrefix(key, section+"_")
		if !ok {
			continue
		}
		if section == "scoring" {
			for _, sub := range []string{"weights", "thresholds"} {
				if field, ok := strings.CutPrefix(rest, sub+"_"); ok {
					return section + "." + sub + "." + field
				}
			}
			return ""
		}
		return section + "." + rest
	}
	return ""
}
