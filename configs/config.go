// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package config loads the msgforge configuration from a YAML file with
// MSGFORGE_* environment variable overrides.
package config

import (
	"fmt"
	"os"
)

// Global exposes the loaded configuration.
var Global ForgeConfig

// ForgeConfig holds the tool configuration.
type ForgeConfig struct {
	Catalog struct {
		// Dir is the root of the persisted catalog layout.
		Dir string `env:"MSGFORGE_CATALOG_DIR,overwrite" yaml:"dir"`
		// SourceRoot is the default source tree scanned for markers.
		SourceRoot string   `env:"MSGFORGE_SOURCE_ROOT,overwrite" yaml:"sourceRoot"`
		Domains    []string `env:"MSGFORGE_DOMAINS,overwrite"     yaml:"domains"`
		Locales    []string `env:"MSGFORGE_LOCALES,overwrite"     yaml:"locales"`
	} `yaml:"catalog"`

	Scan struct {
		// Keywords are extra [pkg.]Func:ARG specs recognized as
		// translation calls, on top of the built-in set.
		Keywords    []string `env:"MSGFORGE_SCAN_KEYWORDS,overwrite"      yaml:"keywords"`
		CommentTags []string `env:"MSGFORGE_SCAN_COMMENT_TAGS,overwrite"  yaml:"commentTags"`
		MaxFileSize int64    `env:"MSGFORGE_SCAN_MAX_FILE_SIZE,overwrite" yaml:"maxFileSize"`
		Parallelism int      `env:"MSGFORGE_SCAN_PARALLELISM,overwrite"   yaml:"parallelism"`
	} `yaml:"scan"`

	Merge struct {
		FuzzyMatch    bool    `env:"MSGFORGE_MERGE_FUZZY_MATCH,overwrite"    yaml:"fuzzyMatch"`
		MinSimilarity float64 `env:"MSGFORGE_MERGE_MIN_SIMILARITY,overwrite" yaml:"minSimilarity"`
		// PruneAge is the minimum number of consecutive merges an
		// entry must stay obsolete before prune removes it.
		// Zero keeps obsolete entries until an explicit prune -all.
		PruneAge int `env:"MSGFORGE_MERGE_PRUNE_AGE,overwrite" yaml:"pruneAge"`
	} `yaml:"merge"`

	Log struct {
		Level   string   `env:"MSGFORGE_LOG_LEVEL,overwrite"   yaml:"logLevel"`
		Outputs []string `env:"MSGFORGE_LOG_OUTPUTS,overwrite" yaml:"logOutputs"`
		Format  string   `env:"MSGFORGE_LOG_FORMAT,overwrite"  yaml:"logFormat"`
	} `yaml:"log"`
}

// LoadConfig loads the configuration from flags, YAML and environment, in
// increasing precedence, then validates it and configures logging.
func (cfg *ForgeConfig) LoadConfig() error {
	configFilePath := parseCommandLineArgs()

	if envVar := os.Getenv("MSGFORGE_CONFIGFILE"); envVar != "" {
		configFilePath = envVar
	}

	cfg.SetDefaults()

	if err := cfg.readYAML(configFilePath); err != nil {
		return fmt.Errorf("error loading YAML config: %w", err)
	}

	if err := readEnv(cfg); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	cfg.setupLog()

	return nil
}
