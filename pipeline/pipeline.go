// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package pipeline drives the batch side of the catalog lifecycle: scan a
source tree for markers, rebuild the template per domain, merge every
locale catalog against it and persist the results. Per-file and
per-locale failures are collected and reported in aggregate; only
structural failures abort a run.
*/
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"codeberg.org/msgforge/msgforge/audit"
	"codeberg.org/msgforge/msgforge/catalog"
	"codeberg.org/msgforge/msgforge/extract"
	"codeberg.org/msgforge/msgforge/merge"
	"codeberg.org/msgforge/msgforge/pluralforms"
)

// Domain names one text domain and the source tree it is extracted from.
type Domain struct {
	Name string
	// Root is the source tree scanned for this domain's markers.
	Root string
}

// Config describes one ScanAndMerge run.
type Config struct {
	// CatalogDir is the root of the persisted catalog layout:
	// <CatalogDir>/<domain>/<locale>.po with the template at
	// <CatalogDir>/<domain>/<domain>.pot.
	CatalogDir string
	Domains    []Domain
	// Locales are the locale identifiers to merge for every domain.
	Locales []string

	// FuzzyMatch and MinSimilarity are passed through to the merger.
	FuzzyMatch    bool
	MinSimilarity float64

	// Scanner tuning; zero values use the extract defaults.
	Keywords    []string
	CommentTags []string
	MaxFileSize int64
	Parallelism int
}

// DomainResult is the outcome of one domain's scan and merges.
type DomainResult struct {
	Domain      string
	Occurrences int
	// Skipped lists files the scanner had to drop.
	Skipped []*extract.ScanError
	// Reports holds one merge report per successfully merged locale.
	Reports []*merge.Report
}

// Summary aggregates a whole run.
type Summary struct {
	Results []DomainResult
}

// ScanAndMerge runs the full batch pipeline. The returned error joins
// every per-domain and per-locale failure; a non-nil error with a non-nil
// summary means a partial run.
func ScanAndMerge(ctx context.Context, cfg Config) (*Summary, error) {
	logger := log.With().Str("sys", "pipeline").Logger()

	locales, err := canonicalLocales(cfg.Locales)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}

	var runErrs []error

	for _, domain := range cfg.Domains {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result, err := runDomain(ctx, cfg, domain, locales, logger)
		if err != nil {
			runErrs = append(runErrs, err)
		}

		if result != nil {
			summary.Results = append(summary.Results, *result)
		}
	}

	return summary, errors.Join(runErrs...)
}

// runDomain scans one domain's tree, rebuilds its template and merges all
// locales against it.
func runDomain(ctx context.Context, cfg Config, domain Domain, locales []string, logger zerolog.Logger) (*DomainResult, error) {
	scanner, err := newScanner(cfg, domain.Root)
	if err != nil {
		return nil, fmt.Errorf("domain %s: %w", domain.Name, err)
	}

	span := audit.Span{Op: "scan", Domain: domain.Name}
	scanCtx := span.Begin(ctx)

	occurrences, skipped, err := scanner.Scan(scanCtx)

	span.Error = err
	span.End()
	span.Log()

	if err != nil {
		return nil, fmt.Errorf("domain %s: %w", domain.Name, err)
	}

	result := &DomainResult{
		Domain:      domain.Name,
		Occurrences: len(occurrences),
		Skipped:     skipped,
	}

	template, err := extract.BuildTemplate(domain.Name, occurrences)
	if err != nil {
		// Ambiguous pluralizability needs a source fix; the stale
		// template and catalogs stay untouched.
		return result, fmt.Errorf("domain %s: %w", domain.Name, err)
	}

	domainDir := filepath.Join(cfg.CatalogDir, domain.Name)

	if err := template.Save(filepath.Join(domainDir, domain.Name+".pot")); err != nil {
		return result, fmt.Errorf("domain %s: %w", domain.Name, err)
	}

	logger.Info().
		Str("domain", domain.Name).
		Int("entries", len(template.Entries)).
		Int("skipped_files", len(result.Skipped)).
		Msg("Rebuilt template")

	opts := merge.Options{FuzzyMatch: cfg.FuzzyMatch, MinSimilarity: cfg.MinSimilarity}

	reports := make([]*merge.Report, len(locales))
	localeErrs := make([]error, len(locales))

	g, ctx := errgroup.WithContext(ctx)

	for i, locale := range locales {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			span := audit.Span{Op: "merge", Domain: domain.Name, Locale: locale}
			span.Begin(ctx)

			report, err := mergeLocale(domainDir, domain.Name, locale, template, opts)

			span.Error = err
			span.End()
			span.Log()

			if err != nil {
				localeErrs[i] = fmt.Errorf("domain %s: %w", domain.Name, err)

				return nil
			}

			reports[i] = report

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	for i, report := range reports {
		if report != nil {
			result.Reports = append(result.Reports, report)

			logger.Info().
				Str("domain", domain.Name).
				Str("locale", locales[i]).
				Int("new", len(report.New)).
				Int("obsoleted", len(report.Obsoleted)).
				Int("fuzzied", len(report.Fuzzied)).
				Int("untranslated", report.Untranslated).
				Msg("Merged locale catalog")
		}
	}

	return result, errors.Join(localeErrs...)
}

// mergeLocale merges one locale against the fresh template and persists
// the result.
func mergeLocale(domainDir, domain, locale string, template *catalog.Catalog, opts merge.Options) (*merge.Report, error) {
	path := localePath(domainDir, locale)

	existing, err := loadOrCreate(path, domain, locale)
	if err != nil {
		return nil, err
	}

	rule := pluralforms.ForLocale(locale)

	if header := existing.HeaderField(catalog.HeaderPluralForms); header != "" {
		rule, err = pluralforms.Parse(header)
		if err != nil {
			return nil, fmt.Errorf("locale %s: %w", locale, err)
		}
	}

	merged, report := merge.Merge(template, existing, rule, opts)

	if err := merged.Save(path); err != nil {
		return nil, err
	}

	return report, nil
}

// localePath resolves the on-disk spelling of one locale catalog. A
// compressed catalog is updated in place; a plain one wins when both
// exist, and new catalogs are created uncompressed.
func localePath(domainDir, locale string) string {
	plain := filepath.Join(domainDir, locale+".po")

	if _, err := os.Stat(plain); err == nil {
		return plain
	}

	compressed := plain + ".zst"
	if _, err := os.Stat(compressed); err == nil {
		return compressed
	}

	return plain
}

func loadOrCreate(path, domain, locale string) (*catalog.Catalog, error) {
	cat, err := catalog.Load(path)

	switch {
	case err == nil:
		cat.Domain = domain
		cat.Locale = locale

		return cat, nil
	case os.IsNotExist(err):
		return catalog.New(domain, locale), nil
	default:
		return nil, err
	}
}

// Prune removes sufficiently aged obsolete entries from every locale
// catalog under the configured layout, returning the number removed.
func Prune(cfg Config, minAge int) (int, error) {
	logger := log.With().Str("sys", "pipeline").Logger()

	locales, err := canonicalLocales(cfg.Locales)
	if err != nil {
		return 0, err
	}

	removed := 0

	var pruneErrs []error

	for _, domain := range cfg.Domains {
		for _, locale := range locales {
			path := localePath(filepath.Join(cfg.CatalogDir, domain.Name), locale)

			cat, err := catalog.Load(path)
			if err != nil {
				if !os.IsNotExist(err) {
					pruneErrs = append(pruneErrs, err)
				}

				continue
			}

			n := merge.Prune(cat, minAge)
			if n == 0 {
				continue
			}

			if err := cat.Save(path); err != nil {
				pruneErrs = append(pruneErrs, err)

				continue
			}

			removed += n

			logger.Info().
				Str("domain", domain.Name).
				Str("locale", locale).
				Int("removed", n).
				Msg("Pruned obsolete entries")
		}
	}

	return removed, errors.Join(pruneErrs...)
}

func newScanner(cfg Config, root string) (*extract.Scanner, error) {
	var opts []extract.Option

	if len(cfg.Keywords) > 0 {
		keywords := make([]*extract.Keyword, 0, len(cfg.Keywords))

		for _, spec := range cfg.Keywords {
			kw, err := extract.ParseKeyword(spec)
			if err != nil {
				return nil, fmt.Errorf("keyword %q: %w", spec, err)
			}

			keywords = append(keywords, kw)
		}

		opts = append(opts, extract.WithKeywords(keywords))
	}

	if len(cfg.CommentTags) > 0 {
		opts = append(opts, extract.WithCommentTags(cfg.CommentTags))
	}

	if cfg.MaxFileSize > 0 {
		opts = append(opts, extract.WithMaxFileSize(cfg.MaxFileSize))
	}

	if cfg.Parallelism > 0 {
		opts = append(opts, extract.WithParallelism(cfg.Parallelism))
	}

	return extract.NewScanner(root, opts...)
}

// canonicalLocales validates and canonicalizes locale identifiers,
// accepting both "pt_BR" and "pt-BR" spellings.
func canonicalLocales(locales []string) ([]string, error) {
	out := make([]string, 0, len(locales))

	for _, locale := range locales {
		tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
		if err != nil {
			return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
		}

		out = append(out, tag.String())
	}

	return out, nil
}
