// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

package pluralforms

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	_ "embed"

	"github.com/tidwall/gjson"
)

// rulesJSON is the built-in per-language rule table, keyed by language
// code with a few regional overrides (e.g. pt-BR).
//
//go:embed data/plural_rules.json
var rulesJSON []byte

// ruleCache memoizes compiled rules. Keys are Plural-Forms source strings.
var ruleCache sync.Map // key: string, value: *Rule

// Rule is a locale's plural behavior: the number of distinct forms and a
// total mapping from cardinal to form index.
type Rule struct {
	NPlurals int

	expr Expression
	src  string
}

// Index returns the msgstr slot for cardinal n. The result is always in
// [0, NPlurals): out-of-range expression values clamp to the last form
// rather than failing a lookup.
func (r *Rule) Index(n uint32) int {
	idx := r.expr.Eval(n)

	if idx < 0 {
		return 0
	}

	if idx >= r.NPlurals {
		return r.NPlurals - 1
	}

	return idx
}

// Source returns the rule's expression text.
func (r *Rule) Source() string {
	return r.src
}

// Header renders the rule as a Plural-Forms header value.
func (r *Rule) Header() string {
	return fmt.Sprintf("nplurals=%d; plural=%s;", r.NPlurals, r.src)
}

// Default returns the universal two-form rule used when a locale has no
// configured Plural-Forms: nplurals=2; plural=(n != 1).
func Default() *Rule {
	return mustRule(2, "n != 1")
}

func mustRule(nplurals int, src string) *Rule {
	r, err := newRule(nplurals, src)
	if err != nil {
		panic(err)
	}

	return r
}

func newRule(nplurals int, src string) (*Rule, error) {
	if cached, ok := ruleCache.Load(cacheKey(nplurals, src)); ok {
		return cached.(*Rule), nil
	}

	expr, err := Compile(src)
	if err != nil {
		return nil, err
	}

	r := &Rule{NPlurals: nplurals, expr: expr, src: src}
	ruleCache.Store(cacheKey(nplurals, src), r)

	return r, nil
}

func cacheKey(nplurals int, src string) string {
	return strconv.Itoa(nplurals) + ";" + src
}

// Parse builds a rule from a Plural-Forms header value, e.g.
//
//	nplurals=2; plural=(n > 1);
//
// A *SyntaxError (possibly wrapped) reports malformed input at load time;
// evaluation never fails afterwards.
func Parse(header string) (*Rule, error) {
	var (
		nplurals  int
		pluralSrc string
		sawN      bool
		sawPlural bool
	)

	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("plural-forms header: malformed clause %q", part)
		}

		switch strings.TrimSpace(name) {
		case "nplurals":
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 1 {
				return nil, fmt.Errorf("plural-forms header: invalid nplurals %q", strings.TrimSpace(value))
			}

			nplurals = n
			sawN = true
		case "plural":
			// Cut splits at the first "=", so "==" inside the
			// expression stays intact.
			pluralSrc = strings.TrimSpace(value)
			sawPlural = true
		}
	}

	if !sawN || !sawPlural {
		return nil, fmt.Errorf("plural-forms header: missing nplurals or plural clause in %q", header)
	}

	return newRule(nplurals, pluralSrc)
}

// ForLocale returns the built-in rule for a locale identifier such as
// "ru", "pt_BR" or "zh-Hant-TW". Regional variants fall back to their
// language, unknown languages to the universal two-form Default.
func ForLocale(locale string) *Rule {
	locale = strings.ReplaceAll(locale, "_", "-")

	for _, key := range ruleKeys(locale) {
		entry := gjson.GetBytes(rulesJSON, key)
		if !entry.Exists() {
			continue
		}

		r, err := newRule(int(entry.Get("nplurals").Int()), entry.Get("plural").String())
		if err != nil {
			// Built-in table entries are compile-checked by tests;
			// treat a bad one as absent.
			continue
		}

		return r
	}

	return Default()
}

// ruleKeys lists table keys from most to least specific.
func ruleKeys(locale string) []string {
	keys := []string{locale}

	if base, _, ok := strings.Cut(locale, "-"); ok {
		keys = append(keys, base)
	}

	return keys
}
