// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package store serves runtime translation lookups from merged locale
catalogs. A published snapshot is immutable, so lookups take no locks;
Reload builds a complete replacement snapshot and swaps it in atomically.
Lookups cannot fail: unknown domains, locales or msgids fall back to the
source text.
*/
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"codeberg.org/msgforge/msgforge/catalog"
	"codeberg.org/msgforge/msgforge/pluralforms"
)

// Store resolves (domain, locale, msgid) lookups against the most recently
// published snapshot. The zero value is unusable; construct with New.
type Store struct {
	snap   atomic.Pointer[snapshot]
	logger zerolog.Logger

	// missOnce deduplicates miss logs per (domain, locale, key).
	missOnce sync.Map
}

type snapshot struct {
	domains map[string]*domainData
}

type domainData struct {
	// locales maps canonical BCP 47 tags to their catalog data.
	locales map[string]*localeData
	tags    []language.Tag
	matcher language.Matcher
}

type localeData struct {
	rule    *pluralforms.Rule
	entries map[string]entryData
}

type entryData struct {
	msgstr []string
	plural bool
}

// New returns a store with an empty snapshot: every lookup falls back to
// source text until Reload publishes catalogs.
func New() *Store {
	s := &Store{logger: log.With().Str("sys", "store").Logger()}
	s.snap.Store(&snapshot{domains: map[string]*domainData{}})

	return s
}

// Reload loads every locale catalog under dir, laid out as
// <dir>/<domain>/<locale>.po (optionally .po.zst), and atomically replaces
// the current snapshot. A malformed catalog or plural rule degrades that
// locale to fallback and is reported in the joined error; other locales
// still load. Cancellation before publish leaves the old snapshot
// authoritative.
func (s *Store) Reload(ctx context.Context, dir string) error {
	domainDirs, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read catalog directory %s: %w", dir, err)
	}

	next := &snapshot{domains: map[string]*domainData{}}

	var loadErrs []error

	for _, entry := range domainDirs {
		if !entry.IsDir() {
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		domain := entry.Name()

		data, errs := s.loadDomain(filepath.Join(dir, domain), domain)
		loadErrs = append(loadErrs, errs...)

		if len(data.locales) > 0 {
			next.domains[domain] = data
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.snap.Store(next)
	s.missOnce.Clear()

	s.logger.Info().
		Int("domains", len(next.domains)).
		Msg("Published catalog snapshot")

	return errors.Join(loadErrs...)
}

// loadDomain reads all locale catalogs in one domain directory.
func (s *Store) loadDomain(dir, domain string) (*domainData, []error) {
	data := &domainData{locales: map[string]*localeData{}}

	files, err := os.ReadDir(dir)
	if err != nil {
		return data, []error{fmt.Errorf("read domain directory %s: %w", dir, err)}
	}

	var errs []error

	for _, f := range files {
		name := f.Name()

		base, ok := catalogBaseName(name)
		if !ok || base == domain {
			// Templates (<domain>.pot, <domain>.po) carry no translations.
			continue
		}

		// Accept both underscore and hyphen locale spellings.
		tag, err := language.Parse(strings.ReplaceAll(base, "_", "-"))
		if err != nil {
			s.logger.Warn().Str("file", name).Err(err).Msg("Skipping invalid locale file")

			continue
		}

		loc, err := loadLocale(filepath.Join(dir, name), tag.String())
		if err != nil {
			errs = append(errs, fmt.Errorf("domain %s: %w", domain, err))

			continue
		}

		data.locales[tag.String()] = loc
		data.tags = append(data.tags, tag)

		s.logger.Info().
			Str("domain", domain).
			Str("locale", tag.String()).
			Int("entries", len(loc.entries)).
			Msg("Loaded locale catalog")
	}

	sort.Slice(data.tags, func(i, j int) bool { return data.tags[i].String() < data.tags[j].String() })

	if len(data.tags) > 0 {
		data.matcher = language.NewMatcher(data.tags)
	}

	return data, errs
}

// catalogBaseName strips catalog extensions, accepting compressed files.
func catalogBaseName(name string) (string, bool) {
	name = strings.TrimSuffix(name, ".zst")

	for _, ext := range []string{".po", ".pot"} {
		if base, ok := strings.CutSuffix(name, ext); ok {
			return base, true
		}
	}

	return "", false
}

// loadLocale parses one catalog file into lookup form. Fuzzy entries are
// present but unreviewed; they resolve to source text like untranslated
// ones.
func loadLocale(path, locale string) (*localeData, error) {
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}

	rule := pluralforms.ForLocale(locale)

	if header := cat.HeaderField(catalog.HeaderPluralForms); header != "" {
		rule, err = pluralforms.Parse(header)
		if err != nil {
			return nil, fmt.Errorf("locale %s: %w", locale, err)
		}
	}

	loc := &localeData{rule: rule, entries: make(map[string]entryData, len(cat.Entries))}

	for _, e := range cat.Entries {
		if e.Obsolete || e.IsFuzzy() || e.IsUntranslated() {
			continue
		}

		loc.entries[e.Key()] = entryData{
			msgstr: e.MsgStr,
			plural: e.IsPlural(),
		}
	}

	return loc, nil
}

// Translate returns the translation of msgid, or msgid itself when the
// domain, locale or entry is unknown or untranslated. It never fails.
func (s *Store) Translate(domain, locale, msgid string) string {
	return s.TranslateContext(domain, locale, "", msgid)
}

// TranslateContext is Translate with a disambiguating msgctxt.
func (s *Store) TranslateContext(domain, locale, msgctxt, msgid string) string {
	key := catalog.EntryKey(msgctxt, msgid)

	loc := s.resolve(domain, locale)
	if loc != nil {
		if e, ok := loc.entries[key]; ok && e.msgstr[0] != "" {
			return e.msgstr[0]
		}
	}

	s.miss(domain, locale, key)

	return msgid
}

// TranslatePlural returns the plural form of the translation selected by
// the locale's rule for n. Missing translations fall back to msgid when
// n == 1 and msgidPlural otherwise, by the two-form convention.
func (s *Store) TranslatePlural(domain, locale, msgid, msgidPlural string, n int) string {
	return s.TranslatePluralContext(domain, locale, "", msgid, msgidPlural, n)
}

// TranslatePluralContext is TranslatePlural with a disambiguating msgctxt.
func (s *Store) TranslatePluralContext(domain, locale, msgctxt, msgid, msgidPlural string, n int) string {
	key := catalog.EntryKey(msgctxt, msgid)

	cardinal := uint32(0)
	if n > 0 {
		cardinal = uint32(n)
	}

	loc := s.resolve(domain, locale)
	if loc != nil {
		if e, ok := loc.entries[key]; ok && e.plural {
			if form := loc.rule.Index(cardinal); form < len(e.msgstr) && e.msgstr[form] != "" {
				return e.msgstr[form]
			}
		}
	}

	s.miss(domain, locale, key)

	if n == 1 {
		return msgid
	}

	return msgidPlural
}

// Locales lists the loaded locale tags for a domain in the current
// snapshot, sorted by tag string. The slice is a copy.
func (s *Store) Locales(domain string) []language.Tag {
	d := s.snap.Load().domains[domain]
	if d == nil {
		return nil
	}

	out := make([]language.Tag, len(d.tags))
	copy(out, d.tags)

	return out
}

// resolve finds the locale data serving a requested locale: an exact
// canonical hit, or the best match among loaded tags.
func (s *Store) resolve(domain, locale string) *localeData {
	d := s.snap.Load().domains[domain]
	if d == nil || len(d.locales) == 0 {
		return nil
	}

	canonical := strings.ReplaceAll(locale, "_", "-")
	if loc, ok := d.locales[canonical]; ok {
		return loc
	}

	tag, err := language.Parse(canonical)
	if err != nil {
		return nil
	}

	if loc, ok := d.locales[tag.String()]; ok {
		return loc
	}

	// Fall back to the closest loaded tag, e.g. pt-PT served by pt, but
	// never cross language boundaries for a locale we do not carry.
	_, idx, conf := d.matcher.Match(tag)
	if conf == language.No {
		return nil
	}

	return d.locales[d.tags[idx].String()]
}

// miss records a fallback lookup: counted for monitoring, logged once per
// key at debug level.
func (s *Store) miss(domain, locale, key string) {
	lookupMisses.WithLabelValues(domain, locale).Inc()

	id := domain + "\x00" + locale + "\x00" + key
	if _, loaded := s.missOnce.LoadOrStore(id, struct{}{}); !loaded {
		s.logger.Debug().
			Str("domain", domain).
			Str("locale", locale).
			Str("key", key).
			Msg("Missing translation")
	}
}
