// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package merge three-way merges a template catalog against an existing
per-locale catalog, in the manner of msgmerge: translations are never
destroyed, removed entries become obsolete rather than deleted, and any
entry whose meaning may have drifted is flagged fuzzy for review.
*/
package merge

import (
	"codeberg.org/msgforge/msgforge/catalog"
	"codeberg.org/msgforge/msgforge/pluralforms"
)

// DefaultMinSimilarity is the similarity threshold for adopting a
// translation from an obsoleted near-duplicate msgid.
const DefaultMinSimilarity = 0.75

// Options tune merge behavior.
type Options struct {
	// FuzzyMatch lets a new entry adopt the translation of an obsoleted
	// entry with a sufficiently similar msgid, marked fuzzy.
	FuzzyMatch bool
	// MinSimilarity is the [0,1] threshold for FuzzyMatch;
	// zero means DefaultMinSimilarity.
	MinSimilarity float64
}

func (o Options) minSimilarity() float64 {
	if o.MinSimilarity <= 0 {
		return DefaultMinSimilarity
	}

	return o.MinSimilarity
}

// Merge produces a new locale catalog from a template and the existing
// catalog for that locale, plus a report of everything that changed.
// Neither input is modified. The rule decides the msgstr arity of
// pluralizable entries; if the rule's nplurals changed since the last
// merge, every pluralizable entry is resized and re-flagged fuzzy.
func Merge(template, existing *catalog.Catalog, rule *pluralforms.Rule, opts Options) (*catalog.Catalog, *Report) {
	out := &catalog.Catalog{
		Domain: template.Domain,
		Locale: existing.Locale,
	}

	report := &Report{Domain: template.Domain, Locale: existing.Locale}

	mergeHeader(out, template, existing, rule)

	liveIdx := existing.Index()
	obsoleteIdx := obsoleteIndex(existing)

	matched := make(map[string]bool, len(template.Entries))
	for _, t := range template.Entries {
		matched[t.Key()] = true
	}

	for _, t := range template.Entries {
		key := t.Key()

		switch {
		case liveIdx[key] != nil:
			out.Add(mergeExisting(t, liveIdx[key], rule, report))
		case obsoleteIdx[key] != nil:
			out.Add(reviveObsolete(t, obsoleteIdx[key], rule, report))
		default:
			out.Add(newEntry(t, existing, matched, rule, opts, report))
		}
	}

	// Anything left in the existing catalog is no longer referenced by
	// source. Retained, never silently deleted.
	for _, e := range existing.Entries {
		if matched[e.Key()] {
			continue
		}

		obsolete := e.Clone()
		obsolete.References = nil
		obsolete.SetObsoleteAge(obsolete.ObsoleteAge() + 1)

		if !e.Obsolete {
			obsolete.Obsolete = true

			report.Obsoleted = append(report.Obsoleted, e.Key())
		}

		out.Add(obsolete)
	}

	for _, e := range out.Entries {
		if !e.Obsolete && e.IsUntranslated() {
			report.Untranslated++
		}
	}

	return out, report
}

// mergeHeader keeps the locale catalog's header (translator metadata
// belongs to translators) but refreshes the template creation date and
// pins Plural-Forms to the rule actually used.
func mergeHeader(out, template, existing *catalog.Catalog, rule *pluralforms.Rule) {
	if existing.Header != nil {
		out.Header = existing.Header.Clone()
	} else {
		seed := catalog.New(template.Domain, existing.Locale)
		out.Header = seed.Header
	}

	if template.Header != nil {
		if date := template.HeaderField(catalog.HeaderPOTCreationDate); date != "" {
			out.SetHeaderField(catalog.HeaderPOTCreationDate, date)
		}
	}

	out.SetHeaderField(catalog.HeaderPluralForms, rule.Header())
}

// arity returns the msgstr slot count the rule requires for t.
func arity(t *catalog.Entry, rule *pluralforms.Rule) int {
	if t.IsPlural() {
		return rule.NPlurals
	}

	return 1
}

// mergeExisting refreshes a surviving entry: scanner-owned fields come
// from the template, translator-owned fields from the existing entry.
func mergeExisting(t, e *catalog.Entry, rule *pluralforms.Rule, report *Report) *catalog.Entry {
	merged := &catalog.Entry{
		TranslatorComments: append([]string(nil), e.TranslatorComments...),
		ExtractedComments:  append([]string(nil), t.ExtractedComments...),
		References:         append([]catalog.Reference(nil), t.References...),
		Flags:              append([]string(nil), e.Flags...),
		MsgCtxt:            t.MsgCtxt,
		MsgID:              t.MsgID,
		MsgIDPlural:        t.MsgIDPlural,
		MsgStr:             append([]string(nil), e.MsgStr...),
	}

	merged.SetObsoleteAge(0)

	switch {
	case e.IsPlural() != t.IsPlural():
		resize(merged, arity(t, rule))
		flagFuzzy(merged, report, ReasonPluralityChanged)
	case len(merged.MsgStr) != arity(t, rule):
		resize(merged, arity(t, rule))

		if t.IsPlural() {
			flagFuzzy(merged, report, ReasonArityChanged)
		}
	}

	return merged
}

// reviveObsolete brings a previously obsoleted entry back under the
// template, keeping whatever translation it still holds.
func reviveObsolete(t, e *catalog.Entry, rule *pluralforms.Rule, report *Report) *catalog.Entry {
	revived := mergeExisting(t, e, rule, report)
	revived.Obsolete = false

	report.Revived = append(report.Revived, t.Key())

	return revived
}

// newEntry seeds an untranslated entry for a msgid the locale has never
// seen. With FuzzyMatch enabled it may instead adopt the translation of a
// similar obsoleted entry, flagged fuzzy for review.
func newEntry(t *catalog.Entry, existing *catalog.Catalog, templateKeys map[string]bool, rule *pluralforms.Rule, opts Options, report *Report) *catalog.Entry {
	entry := &catalog.Entry{
		ExtractedComments: append([]string(nil), t.ExtractedComments...),
		References:        append([]catalog.Reference(nil), t.References...),
		MsgCtxt:           t.MsgCtxt,
		MsgID:             t.MsgID,
		MsgIDPlural:       t.MsgIDPlural,
		MsgStr:            make([]string, arity(t, rule)),
	}

	report.New = append(report.New, t.Key())

	if opts.FuzzyMatch {
		if donor := findDonor(t, existing, templateKeys, opts.minSimilarity()); donor != nil {
			entry.MsgStr = append([]string(nil), donor.MsgStr...)
			resize(entry, arity(t, rule))
			flagFuzzy(entry, report, ReasonNearMatch)
		}
	}

	return entry
}

// resize pads msgstr with empty slots or truncates it to n, never
// replacing a kept non-empty slot.
func resize(e *catalog.Entry, n int) {
	for len(e.MsgStr) < n {
		e.MsgStr = append(e.MsgStr, "")
	}

	e.MsgStr = e.MsgStr[:n]
}

func flagFuzzy(e *catalog.Entry, report *Report, reason string) {
	if !e.IsFuzzy() {
		e.SetFuzzy(true)

		report.Fuzzied = append(report.Fuzzied, FuzzyEntry{Key: e.Key(), Reason: reason})
	}
}

func obsoleteIndex(c *catalog.Catalog) map[string]*catalog.Entry {
	idx := make(map[string]*catalog.Entry)

	for _, e := range c.Entries {
		if e.Obsolete {
			idx[e.Key()] = e
		}
	}

	return idx
}

// findDonor looks for the most similar msgid among entries that are
// obsolete or being obsoleted by this merge, with compatible
// pluralizability and a translation worth adopting.
func findDonor(t *catalog.Entry, existing *catalog.Catalog, templateKeys map[string]bool, minSimilarity float64) *catalog.Entry {
	var (
		best      *catalog.Entry
		bestScore float64
	)

	for _, e := range existing.Entries {
		// A key claimed by the template is live or about to be revived,
		// never a donor.
		if templateKeys[e.Key()] {
			continue
		}

		if e.IsUntranslated() || e.IsPlural() != t.IsPlural() {
			continue
		}

		score := similarity(t.MsgID, e.MsgID)
		if score >= minSimilarity && score > bestScore {
			best, bestScore = e, score
		}
	}

	return best
}
