// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Flag names with defined meaning in this package.
const (
	FlagFuzzy = "fuzzy"

	// obsoleteAgePrefix tags the number of consecutive merges an entry has
	// been obsolete, e.g. "obsolete-for-3". Unknown flags are ignored by
	// standard gettext tooling, so the token survives round trips.
	obsoleteAgePrefix = "obsolete-for-"
)

// Reference is one source occurrence of a msgid.
type Reference struct {
	File string
	Line int
}

func (r Reference) String() string {
	return fmt.Sprintf("%s:%d", r.File, r.Line)
}

// Entry is a single translatable unit within a catalog.
//
// MsgStr holds one element for non-pluralizable entries and nplurals
// elements for pluralizable ones. A template entry has empty MsgStr slots.
type Entry struct {
	// TranslatorComments are "# " lines, written by humans and preserved
	// verbatim across merges.
	TranslatorComments []string
	// ExtractedComments are "#." lines, rebuilt by the scanner.
	ExtractedComments []string
	// References are "#:" source locations, rebuilt on every scan.
	References []Reference
	// Flags are "#," tokens such as "fuzzy".
	Flags []string

	MsgCtxt     string
	MsgID       string
	MsgIDPlural string
	MsgStr      []string

	// Obsolete marks entries serialized as "#~" blocks. Obsolete entries
	// are retained across merges until explicitly pruned.
	Obsolete bool
}

// Key identifies an entry within a catalog: the msgctxt, if any, joined
// to the msgid with the gettext EOT separator.
func (e *Entry) Key() string {
	return EntryKey(e.MsgCtxt, e.MsgID)
}

// EntryKey builds the catalog key for a (msgctxt, msgid) pair.
func EntryKey(msgctxt, msgid string) string {
	if msgctxt == "" {
		return msgid
	}

	return msgctxt + "\x04" + msgid
}

// IsPlural reports whether the entry is pluralizable.
func (e *Entry) IsPlural() bool {
	return e.MsgIDPlural != ""
}

// IsHeader reports whether this is the catalog metadata entry.
func (e *Entry) IsHeader() bool {
	return e.MsgID == "" && e.MsgCtxt == ""
}

// HasFlag reports whether flag is present.
func (e *Entry) HasFlag(flag string) bool {
	for _, f := range e.Flags {
		if f == flag {
			return true
		}
	}

	return false
}

// IsFuzzy reports whether the entry carries the fuzzy flag.
func (e *Entry) IsFuzzy() bool {
	return e.HasFlag(FlagFuzzy)
}

// SetFuzzy adds or removes the fuzzy flag.
func (e *Entry) SetFuzzy(fuzzy bool) {
	if fuzzy {
		if !e.IsFuzzy() {
			e.Flags = append(e.Flags, FlagFuzzy)
		}

		return
	}

	filtered := e.Flags[:0]

	for _, f := range e.Flags {
		if f != FlagFuzzy {
			filtered = append(filtered, f)
		}
	}

	e.Flags = filtered
}

// ObsoleteAge returns the number of consecutive merges this entry has been
// obsolete, or 0 if the entry is live or freshly obsoleted.
func (e *Entry) ObsoleteAge() int {
	for _, f := range e.Flags {
		if rest, ok := strings.CutPrefix(f, obsoleteAgePrefix); ok {
			if n, err := strconv.Atoi(rest); err == nil && n > 0 {
				return n
			}
		}
	}

	return 0
}

// SetObsoleteAge records age as an obsolete-for-N flag token, replacing any
// previous one. Age 0 removes the token.
func (e *Entry) SetObsoleteAge(age int) {
	filtered := e.Flags[:0]

	for _, f := range e.Flags {
		if !strings.HasPrefix(f, obsoleteAgePrefix) {
			filtered = append(filtered, f)
		}
	}

	e.Flags = filtered
	if age > 0 {
		e.Flags = append(e.Flags, obsoleteAgePrefix+strconv.Itoa(age))
	}
}

// IsTranslated reports whether every msgstr slot is non-empty.
// Fuzzy entries do not count as translated.
func (e *Entry) IsTranslated() bool {
	if e.IsHeader() || e.IsFuzzy() || len(e.MsgStr) == 0 {
		return false
	}

	for _, s := range e.MsgStr {
		if s == "" {
			return false
		}
	}

	return true
}

// IsUntranslated reports whether every msgstr slot is empty.
func (e *Entry) IsUntranslated() bool {
	for _, s := range e.MsgStr {
		if s != "" {
			return false
		}
	}

	return true
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	dup := *e
	dup.TranslatorComments = append([]string(nil), e.TranslatorComments...)
	dup.ExtractedComments = append([]string(nil), e.ExtractedComments...)
	dup.References = append([]Reference(nil), e.References...)
	dup.Flags = append([]string(nil), e.Flags...)
	dup.MsgStr = append([]string(nil), e.MsgStr...)

	return &dup
}
