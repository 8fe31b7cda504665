// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

package pluralforms

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestRuleIndex(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   map[uint32]int
	}{
		{
			name:   "English",
			header: "nplurals=2; plural=n != 1;",
			want:   map[uint32]int{0: 1, 1: 0, 2: 1, 11: 1, 100: 1},
		},
		{
			name:   "French",
			header: "nplurals=2; plural=n > 1;",
			want:   map[uint32]int{0: 0, 1: 0, 2: 1, 100: 1},
		},
		{
			name:   "Russian",
			header: "nplurals=3; plural=n%10==1 && n%100!=11 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2;",
			want: map[uint32]int{
				1: 0, 21: 0, 101: 0,
				2: 1, 3: 1, 4: 1, 22: 1,
				0: 2, 5: 2, 11: 2, 12: 2, 14: 2, 111: 2,
			},
		},
		{
			name:   "Polish",
			header: "nplurals=3; plural=n==1 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2;",
			want:   map[uint32]int{1: 0, 2: 1, 4: 1, 22: 1, 5: 2, 12: 2, 0: 2},
		},
		{
			name:   "Arabic",
			header: "nplurals=6; plural=n==0 ? 0 : n==1 ? 1 : n==2 ? 2 : n%100>=3 && n%100<=10 ? 3 : n%100>=11 ? 4 : 5;",
			want:   map[uint32]int{0: 0, 1: 1, 2: 2, 3: 3, 10: 3, 103: 3, 11: 4, 99: 4, 102: 5},
		},
		{
			name:   "Japanese",
			header: "nplurals=1; plural=0;",
			want:   map[uint32]int{0: 0, 1: 0, 42: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := Parse(tt.header)
			require.NoError(t, err)

			for n, want := range tt.want {
				assert.Equal(t, want, rule.Index(n), "n=%d", n)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"Empty header", ""},
		{"Missing plural clause", "nplurals=2;"},
		{"Missing nplurals clause", "plural=n != 1;"},
		{"Zero nplurals", "nplurals=0; plural=0;"},
		{"Non-numeric nplurals", "nplurals=two; plural=0;"},
		{"Unbalanced parens", "nplurals=2; plural=(n != 1;"},
		{"Unknown variable", "nplurals=2; plural=m != 1;"},
		{"Dangling operator", "nplurals=2; plural=n %;"},
		{"Missing ternary else", "nplurals=2; plural=n ? 1;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.header)
			assert.Error(t, err)
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse("nplurals=2; plural=n ==;")
	require.Error(t, err)

	var syntaxErr *SyntaxError

	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, "n ==", syntaxErr.Expr)
}

func TestParseSpacedClauses(t *testing.T) {
	rule, err := Parse("nplurals = 2 ; plural = ( n > 1 ) ;")
	require.NoError(t, err)
	assert.Equal(t, 0, rule.Index(1))
	assert.Equal(t, 1, rule.Index(2))
}

func TestHeaderRoundTrip(t *testing.T) {
	rule, err := Parse("nplurals=2; plural=n > 1;")
	require.NoError(t, err)

	again, err := Parse(rule.Header())
	require.NoError(t, err)

	assert.Equal(t, rule.NPlurals, again.NPlurals)
	assert.Equal(t, rule.Source(), again.Source())
}

func TestForLocale(t *testing.T) {
	tests := []struct {
		locale   string
		nplurals int
		probes   map[uint32]int
	}{
		{"en", 2, map[uint32]int{1: 0, 2: 1}},
		{"fr", 2, map[uint32]int{0: 0, 1: 0, 2: 1}},
		{"ru", 3, map[uint32]int{1: 0, 3: 1, 5: 2}},
		{"ja", 1, map[uint32]int{0: 0, 7: 0}},
		{"ar", 6, map[uint32]int{0: 0, 1: 1, 2: 2}},
		// Regional variants fall back to the base language.
		{"de_AT", 2, map[uint32]int{1: 0, 2: 1}},
		{"zh-Hant-TW", 1, map[uint32]int{1: 0, 2: 0}},
		// pt-BR has its own table entry, distinct from pt.
		{"pt-BR", 2, map[uint32]int{0: 0, 1: 0, 2: 1}},
		{"pt", 2, map[uint32]int{0: 1, 1: 0, 2: 1}},
		// Unknown languages get the universal default.
		{"tlh", 2, map[uint32]int{1: 0, 2: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			rule := ForLocale(tt.locale)
			require.Equal(t, tt.nplurals, rule.NPlurals)

			for n, want := range tt.probes {
				assert.Equal(t, want, rule.Index(n), "n=%d", n)
			}
		})
	}
}

// TestBuiltinRulesTotal compiles every built-in table entry and checks
// that evaluation always lands inside [0, NPlurals).
func TestBuiltinRulesTotal(t *testing.T) {
	table := gjson.ParseBytes(rulesJSON)
	require.True(t, table.IsObject())

	count := 0

	table.ForEach(func(key, value gjson.Result) bool {
		count++

		rule, err := newRule(int(value.Get("nplurals").Int()), value.Get("plural").String())
		require.NoError(t, err, "locale %s", key.String())

		for n := uint32(0); n <= 200; n++ {
			idx := rule.Index(n)
			require.GreaterOrEqual(t, idx, 0, "locale %s, n=%d", key.String(), n)
			require.Less(t, idx, rule.NPlurals, "locale %s, n=%d", key.String(), n)
		}

		return true
	})

	assert.Greater(t, count, 30)
}

// TestZeroDivisorIsTotal pins the guarded division behavior: a divisor
// that evaluates to zero yields 0 instead of panicking.
func TestZeroDivisorIsTotal(t *testing.T) {
	rule, err := Parse("nplurals=2; plural=n % (n - n);")
	require.NoError(t, err)

	for n := uint32(0); n <= 10; n++ {
		assert.Equal(t, 0, rule.Index(n))
	}
}

func TestIndexClamps(t *testing.T) {
	// The expression can produce form indexes the declared nplurals
	// cannot hold; lookups clamp instead of going out of range.
	rule, err := Parse("nplurals=2; plural=n;")
	require.NoError(t, err)

	assert.Equal(t, 0, rule.Index(0))
	assert.Equal(t, 1, rule.Index(1))
	assert.Equal(t, 1, rule.Index(9))
}

func TestRuleCaching(t *testing.T) {
	first, err := Parse("nplurals=2; plural=n != 1;")
	require.NoError(t, err)

	second, err := Parse("nplurals=2; plural=n != 1;")
	require.NoError(t, err)

	assert.Same(t, first, second)
}
