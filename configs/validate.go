// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"

	"codeberg.org/msgforge/msgforge/extract"
)

// validation errors.
var (
	errEmptyCatalogDir   = errors.New("catalog.dir cannot be empty")
	errEmptySourceRoot   = errors.New("catalog.sourceRoot cannot be empty")
	errNoDomains         = errors.New("at least one catalog domain is required")
	errEmptyDomainName   = errors.New("catalog domain names cannot be empty")
	errInvalidSimilarity = errors.New("merge.minSimilarity must be within [0, 1]")
	errNegativePruneAge  = errors.New("merge.pruneAge cannot be negative")
	errNegativeFileSize  = errors.New("scan.maxFileSize cannot be negative")
	errInvalidLogLevel   = errors.New("invalid log.logLevel value")
	errInvalidLogFormat  = errors.New("invalid log.logFormat value")
)

// validate checks the loaded configuration for values that cannot work.
func (cfg *ForgeConfig) validate() error {
	if cfg.Catalog.Dir == "" {
		return errEmptyCatalogDir
	}

	if cfg.Catalog.SourceRoot == "" {
		return errEmptySourceRoot
	}

	if len(cfg.Catalog.Domains) == 0 {
		return errNoDomains
	}

	for _, domain := range cfg.Catalog.Domains {
		if domain == "" {
			return errEmptyDomainName
		}
	}

	for _, locale := range cfg.Catalog.Locales {
		if _, err := language.Parse(locale); err != nil {
			return fmt.Errorf("invalid locale %q: %w", locale, err)
		}
	}

	for _, spec := range cfg.Scan.Keywords {
		if _, err := extract.ParseKeyword(spec); err != nil {
			return fmt.Errorf("invalid scan keyword %q: %w", spec, err)
		}
	}

	if cfg.Scan.MaxFileSize < 0 {
		return errNegativeFileSize
	}

	if cfg.Merge.MinSimilarity < 0 || cfg.Merge.MinSimilarity > 1 {
		return errInvalidSimilarity
	}

	if cfg.Merge.PruneAge < 0 {
		return errNegativePruneAge
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return errInvalidLogLevel
	}

	switch cfg.Log.Format {
	case "console", "json":
		// valid
	default:
		return errInvalidLogFormat
	}

	return nil
}
