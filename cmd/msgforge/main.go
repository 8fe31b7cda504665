// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Msgforge maintains gettext-style translation catalogs for Go source trees.

	msgforge [-config msgforge.yaml] update
	msgforge [-config msgforge.yaml] stats
	msgforge [-config msgforge.yaml] prune
	msgforge [-config msgforge.yaml] lookup <domain> <locale> <msgid> [n]

The update command scans the configured source tree for translation
markers, rebuilds the template per domain and merges every locale
catalog against it. The stats command summarizes catalog completeness,
prune drops aged obsolete entries, and lookup resolves one message the
way a running application would.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/rs/zerolog/log"

	"codeberg.org/msgforge/msgforge/audit"
	"codeberg.org/msgforge/msgforge/catalog"
	config "codeberg.org/msgforge/msgforge/configs"
	"codeberg.org/msgforge/msgforge/pipeline"
	"codeberg.org/msgforge/msgforge/store"
)

func main() {
	audit.SetDefaultLogger()

	if err := config.Global.LoadConfig(); err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error

	switch cmd := flag.Arg(0); cmd {
	case "update":
		err = runUpdate(ctx)
	case "stats":
		err = runStats()
	case "prune":
		err = runPrune()
	case "lookup":
		err = runLookup(ctx, flag.Args()[1:])
	case "":
		err = fmt.Errorf("no command given, expected one of update, stats, prune, lookup")
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// pipelineConfig maps the loaded configuration onto a pipeline run.
func pipelineConfig() pipeline.Config {
	cfg := config.Global

	domains := make([]pipeline.Domain, 0, len(cfg.Catalog.Domains))
	for _, name := range cfg.Catalog.Domains {
		domains = append(domains, pipeline.Domain{Name: name, Root: cfg.Catalog.SourceRoot})
	}

	return pipeline.Config{
		CatalogDir:    cfg.Catalog.Dir,
		Domains:       domains,
		Locales:       cfg.Catalog.Locales,
		FuzzyMatch:    cfg.Merge.FuzzyMatch,
		MinSimilarity: cfg.Merge.MinSimilarity,
		Keywords:      cfg.Scan.Keywords,
		CommentTags:   cfg.Scan.CommentTags,
		MaxFileSize:   cfg.Scan.MaxFileSize,
		Parallelism:   cfg.Scan.Parallelism,
	}
}

func runUpdate(ctx context.Context) error {
	summary, err := pipeline.ScanAndMerge(ctx, pipelineConfig())
	if summary == nil {
		return err
	}

	for _, result := range summary.Results {
		fmt.Printf("%s: %d occurrences, %d files skipped\n",
			result.Domain, result.Occurrences, len(result.Skipped))

		for _, skip := range result.Skipped {
			fmt.Printf("  skipped %s: %v\n", skip.File, skip.Err)
		}

		for _, report := range result.Reports {
			fmt.Printf("  %s: %d new, %d revived, %d obsoleted, %d fuzzied, %d untranslated\n",
				report.Locale, len(report.New), len(report.Revived),
				len(report.Obsoleted), len(report.Fuzzied), report.Untranslated)
		}
	}

	return err
}

func runStats() error {
	cfg := config.Global

	for _, domain := range cfg.Catalog.Domains {
		for _, locale := range cfg.Catalog.Locales {
			path := filepath.Join(cfg.Catalog.Dir, domain, locale+".po")

			cat, err := catalog.Load(path)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Printf("%s/%s: no catalog\n", domain, locale)

					continue
				}

				return err
			}

			stats := cat.Stats()
			fmt.Printf("%s/%s: %d translated, %d fuzzy, %d untranslated, %d obsolete\n",
				domain, locale, stats.Translated, stats.Fuzzy, stats.Untranslated, stats.Obsolete)
		}
	}

	return nil
}

func runPrune() error {
	removed, err := pipeline.Prune(pipelineConfig(), config.Global.Merge.PruneAge)

	fmt.Printf("pruned %d obsolete entries\n", removed)

	return err
}

func runLookup(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: msgforge lookup <domain> <locale> <msgid> [n]")
	}

	domain, locale, msgid := args[0], args[1], args[2]

	st := store.New()
	if err := st.Reload(ctx, config.Global.Catalog.Dir); err != nil {
		return err
	}

	if len(args) > 3 {
		n, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid count %q: %w", args[3], err)
		}

		fmt.Println(st.TranslatePlural(domain, locale, msgid, msgid, n))

		return nil
	}

	fmt.Println(st.Translate(domain, locale, msgid))

	return nil
}
