// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

package merge

// Reasons an entry can be marked fuzzy by a merge.
const (
	ReasonPluralityChanged = "pluralizability changed"
	ReasonArityChanged     = "plural form count changed"
	ReasonNearMatch        = "translation adopted from similar obsoleted entry"
)

// FuzzyEntry names an entry marked fuzzy by a merge, and why.
type FuzzyEntry struct {
	Key    string
	Reason string
}

// Report enumerates what one merge changed, for translator workload
// visibility. Entry keys are msgids, prefixed with their msgctxt where
// one exists.
type Report struct {
	Domain string
	Locale string

	// New lists entries created by this merge, seeded untranslated.
	New []string
	// Revived lists previously obsolete entries back in the template.
	Revived []string
	// Obsoleted lists entries newly absent from the template. They are
	// retained in the catalog until pruned.
	Obsoleted []string
	// Fuzzied lists entries this merge flagged for review.
	Fuzzied []FuzzyEntry

	// Untranslated counts live entries with every msgstr slot empty
	// after the merge.
	Untranslated int
}

// Clean reports whether the merge changed nothing a translator needs to
// look at: no new, revived, obsoleted or fuzzied entries.
func (r *Report) Clean() bool {
	return len(r.New) == 0 && len(r.Revived) == 0 &&
		len(r.Obsoleted) == 0 && len(r.Fuzzied) == 0
}
