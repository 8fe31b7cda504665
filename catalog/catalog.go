// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package catalog implements the gettext PO/POT data model: ordered catalogs
of translatable entries, an escape-aware line parser and a writer that
round-trips translator comments, references, flags and obsolete blocks.

A template catalog (POT) carries no locale and empty msgstr slots; a locale
catalog carries translations plus a header with Plural-Forms metadata.
*/
package catalog

import (
	"strings"
	"time"
)

// Well-known header field names.
const (
	HeaderProjectIDVersion = "Project-Id-Version"
	HeaderPOTCreationDate  = "POT-Creation-Date"
	HeaderLanguage         = "Language"
	HeaderPluralForms      = "Plural-Forms"
	HeaderContentType      = "Content-Type"
)

// POTCreationDateFormat is the timestamp layout used in POT headers.
const POTCreationDateFormat = "2006-01-02 15:04-0700"

// Catalog is an ordered set of entries scoped by (domain, locale).
// The template catalog for a domain has an empty Locale.
type Catalog struct {
	Domain string
	Locale string

	// Header is the msgid "" metadata entry. Nil until set or parsed.
	Header *Entry
	// Entries preserves file order. The header entry is not included.
	Entries []*Entry
}

// New returns an empty catalog with a minimal header.
func New(domain, locale string) *Catalog {
	c := &Catalog{Domain: domain, Locale: locale}
	c.Header = &Entry{MsgStr: []string{""}}
	c.SetHeaderField(HeaderProjectIDVersion, domain)
	c.SetHeaderField(HeaderContentType, "text/plain; charset=UTF-8")

	if locale != "" {
		c.SetHeaderField(HeaderLanguage, locale)
	}

	return c
}

// headerText returns the raw header msgstr.
func (c *Catalog) headerText() string {
	if c.Header == nil || len(c.Header.MsgStr) == 0 {
		return ""
	}

	return c.Header.MsgStr[0]
}

func (c *Catalog) setHeaderText(text string) {
	if c.Header == nil {
		c.Header = &Entry{MsgStr: []string{""}}
	}

	if len(c.Header.MsgStr) == 0 {
		c.Header.MsgStr = []string{""}
	}

	c.Header.MsgStr[0] = text
}

// HeaderField returns the value of a header field, or "" if absent.
// Field names compare case-insensitively, as gettext tools do.
func (c *Catalog) HeaderField(name string) string {
	for line := range strings.Lines(c.headerText()) {
		key, value, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(key), name) {
			return strings.TrimSpace(strings.TrimSuffix(value, "\n"))
		}
	}

	return ""
}

// SetHeaderField sets or replaces a header field, keeping field order.
func (c *Catalog) SetHeaderField(name, value string) {
	text := c.headerText()

	var (
		b     strings.Builder
		found bool
	)

	for line := range strings.Lines(text) {
		key, _, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(key), name) {
			b.WriteString(name + ": " + value + "\n")

			found = true

			continue
		}

		b.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			b.WriteString("\n")
		}
	}

	if !found {
		b.WriteString(name + ": " + value + "\n")
	}

	c.setHeaderText(b.String())
}

// SetPOTCreationDate stamps the header with t.
func (c *Catalog) SetPOTCreationDate(t time.Time) {
	c.SetHeaderField(HeaderPOTCreationDate, t.UTC().Format(POTCreationDateFormat))
}

// Lookup returns the live (non-obsolete) entry for key, or nil.
func (c *Catalog) Lookup(key string) *Entry {
	for _, e := range c.Entries {
		if !e.Obsolete && e.Key() == key {
			return e
		}
	}

	return nil
}

// Index returns a map from entry key to live entry, for merge-scale lookups.
func (c *Catalog) Index() map[string]*Entry {
	idx := make(map[string]*Entry, len(c.Entries))

	for _, e := range c.Entries {
		if !e.Obsolete {
			idx[e.Key()] = e
		}
	}

	return idx
}

// Add appends an entry, preserving insertion order.
func (c *Catalog) Add(e *Entry) {
	c.Entries = append(c.Entries, e)
}

// Stats summarizes translation progress over live entries.
type Stats struct {
	Total        int
	Translated   int
	Fuzzy        int
	Untranslated int
	Obsolete     int
}

// Stats counts the catalog's entries by translation state.
func (c *Catalog) Stats() Stats {
	var s Stats

	for _, e := range c.Entries {
		if e.Obsolete {
			s.Obsolete++

			continue
		}

		s.Total++

		switch {
		case e.IsFuzzy():
			s.Fuzzy++
		case e.IsTranslated():
			s.Translated++
		default:
			s.Untranslated++
		}
	}

	return s
}
