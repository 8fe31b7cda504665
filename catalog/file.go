// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// zstExt marks zstd-compressed catalog files. Load and Save handle the
// codec transparently based on the file name.
const zstExt = ".zst"

// Load reads a catalog file from disk. Files ending in ".zst" are
// decompressed transparently. Domain and locale are left for the caller,
// which knows the directory layout.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path) // #nosec G304 -- catalog paths come from configuration
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.HasSuffix(path, zstExt) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open zstd catalog %s: %w", path, err)
		}
		defer dec.Close()

		return ParseNamed(dec, path)
	}

	return ParseNamed(f, path)
}

// Save writes the catalog to path atomically: serialize to a temp file in
// the same directory, then rename over the target. Files ending in ".zst"
// are compressed transparently.
func (c *Catalog) Save(path string) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp catalog: %w", err)
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if strings.HasSuffix(path, zstExt) {
		enc, err := zstd.NewWriter(tmp)
		if err != nil {
			return fmt.Errorf("open zstd writer: %w", err)
		}

		if err := c.Write(enc); err != nil {
			return err
		}

		if err := enc.Close(); err != nil {
			return fmt.Errorf("flush zstd catalog: %w", err)
		}
	} else if err := c.Write(tmp); err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("flush catalog %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish catalog %s: %w", path, err)
	}

	return nil
}
