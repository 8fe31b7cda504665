// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

// SetDefaults populates the configuration with default values.
func (cfg *ForgeConfig) SetDefaults() {
	cfg.Catalog.Dir = "po"
	cfg.Catalog.SourceRoot = "."
	cfg.Catalog.Domains = []string{"messages"}
	cfg.Catalog.Locales = nil

	cfg.Scan.Keywords = nil
	cfg.Scan.CommentTags = nil
	cfg.Scan.MaxFileSize = 0
	cfg.Scan.Parallelism = 0

	cfg.Merge.FuzzyMatch = true
	cfg.Merge.MinSimilarity = 0
	cfg.Merge.PruneAge = 0

	cfg.Log.Level = "info"
	cfg.Log.Outputs = []string{"/dev/stderr"}
	cfg.Log.Format = "console"
}
