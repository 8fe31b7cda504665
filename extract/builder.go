// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

package extract

import (
	"fmt"
	"time"

	"codeberg.org/msgforge/msgforge/catalog"
	"codeberg.org/msgforge/msgforge/pluralforms"
)

// AmbiguousPluralError reports a msgid used once as singular-only and once
// as part of a plural pair (or with two different plural forms).
// Pluralizability must be globally consistent per msgid; the template
// build fails until the source is fixed.
type AmbiguousPluralError struct {
	MsgID  string
	First  catalog.Reference
	Second catalog.Reference
}

func (e *AmbiguousPluralError) Error() string {
	return fmt.Sprintf("ambiguous plural definition for msgid %q: %s conflicts with %s",
		e.MsgID, e.Second, e.First)
}

// BuildTemplate folds an occurrence stream into the template catalog for
// one domain. Duplicate msgids merge their references; entries keep
// first-seen order, so identical source yields identical templates.
func BuildTemplate(domain string, occurrences []Occurrence) (*catalog.Catalog, error) {
	cat := catalog.New(domain, "")
	cat.SetPOTCreationDate(time.Now())
	cat.SetHeaderField(catalog.HeaderPluralForms, pluralforms.Default().Header())

	entries := make(map[string]*catalog.Entry, len(occurrences))
	firstSeen := make(map[string]catalog.Reference, len(occurrences))

	for _, occ := range occurrences {
		key := catalog.EntryKey(occ.MsgCtxt, occ.MsgID)
		ref := catalog.Reference{File: occ.File, Line: occ.Line}

		entry, ok := entries[key]
		if !ok {
			entry = &catalog.Entry{
				MsgCtxt:     occ.MsgCtxt,
				MsgID:       occ.MsgID,
				MsgIDPlural: occ.MsgIDPlural,
			}

			if occ.MsgIDPlural != "" {
				entry.MsgStr = []string{"", ""}
			} else {
				entry.MsgStr = []string{""}
			}

			entries[key] = entry
			firstSeen[key] = ref

			cat.Add(entry)
		} else if entry.MsgIDPlural != occ.MsgIDPlural {
			return nil, &AmbiguousPluralError{
				MsgID:  occ.MsgID,
				First:  firstSeen[key],
				Second: ref,
			}
		}

		entry.References = appendReference(entry.References, ref)

		for _, comment := range occ.Comments {
			entry.ExtractedComments = appendUnique(entry.ExtractedComments, comment)
		}
	}

	return cat, nil
}

// appendReference adds ref unless it is already recorded.
func appendReference(refs []catalog.Reference, ref catalog.Reference) []catalog.Reference {
	for _, r := range refs {
		if r == ref {
			return refs
		}
	}

	return append(refs, ref)
}

func appendUnique(items []string, item string) []string {
	for _, existing := range items {
		if existing == item {
			return items
		}
	}

	return append(items, item)
}
