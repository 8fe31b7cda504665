// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReadEnv verifies environment variable overrides and validation.
func TestReadEnv(t *testing.T) {
	tests := []struct {
		name    string            // Description of the test case
		env     map[string]string // Name of the environment variable and its value
		wantErr bool              // Whether an error is expected
		check   func(t *testing.T, cfg *ForgeConfig)
	}{
		{
			name: "Valid configuration",
			env: map[string]string{
				"MSGFORGE_CATALOG_DIR": "locales",
				"MSGFORGE_DOMAINS":     "messages,errors",
				"MSGFORGE_LOCALES":     "fr,de,pt-BR",
			},
			wantErr: false,
			check: func(t *testing.T, cfg *ForgeConfig) {
				t.Helper()
				assert.Equal(t, "locales", cfg.Catalog.Dir)
				assert.Equal(t, []string{"messages", "errors"}, cfg.Catalog.Domains)
				assert.Equal(t, []string{"fr", "de", "pt-BR"}, cfg.Catalog.Locales)
			},
		},
		{
			name: "Invalid locale",
			env: map[string]string{
				"MSGFORGE_LOCALES": "not a locale!",
			},
			wantErr: true,
		},
		{
			name: "Invalid keyword spec",
			env: map[string]string{
				"MSGFORGE_SCAN_KEYWORDS": "Tr:zero",
			},
			wantErr: true,
		},
		{
			name: "Similarity out of range",
			env: map[string]string{
				"MSGFORGE_MERGE_MIN_SIMILARITY": "1.5",
			},
			wantErr: true,
		},
		{
			name: "Similarity parsed as float",
			env: map[string]string{
				"MSGFORGE_MERGE_MIN_SIMILARITY": "0.6",
			},
			wantErr: false,
			check: func(t *testing.T, cfg *ForgeConfig) {
				t.Helper()
				assert.InDelta(t, 0.6, cfg.Merge.MinSimilarity, 1e-9)
			},
		},
		{
			name: "Invalid log level",
			env: map[string]string{
				"MSGFORGE_LOG_LEVEL": "loud",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := &ForgeConfig{}
			cfg.SetDefaults()

			require.NoError(t, readEnv(cfg))

			err := cfg.validate()
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)

			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestReadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "msgforge.yaml")

	yamlCfg := `
catalog:
  dir: translations
  sourceRoot: ./src
  domains:
    - messages
  locales:
    - fr
    - uk
merge:
  fuzzyMatch: false
  pruneAge: 3
log:
  logLevel: warn
  logFormat: json
`
	require.NoError(t, os.WriteFile(path, []byte(yamlCfg), 0o600))

	cfg := &ForgeConfig{}
	cfg.SetDefaults()

	require.NoError(t, cfg.readYAML(path))
	require.NoError(t, cfg.validate())

	assert.Equal(t, "translations", cfg.Catalog.Dir)
	assert.Equal(t, "./src", cfg.Catalog.SourceRoot)
	assert.Equal(t, []string{"fr", "uk"}, cfg.Catalog.Locales)
	assert.False(t, cfg.Merge.FuzzyMatch)
	assert.Equal(t, 3, cfg.Merge.PruneAge)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestReadYAMLMissingFile(t *testing.T) {
	cfg := &ForgeConfig{}
	cfg.SetDefaults()

	// A missing config file is not an error, only an explicit bad one is.
	require.NoError(t, cfg.readYAML(filepath.Join(t.TempDir(), "nope.yaml")))
	assert.Equal(t, "po", cfg.Catalog.Dir)
}

func TestSetDefaults(t *testing.T) {
	cfg := &ForgeConfig{}
	cfg.SetDefaults()

	require.NoError(t, cfg.validate())

	assert.Equal(t, "po", cfg.Catalog.Dir)
	assert.Equal(t, []string{"messages"}, cfg.Catalog.Domains)
	assert.True(t, cfg.Merge.FuzzyMatch)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}
