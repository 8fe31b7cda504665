// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderFields(t *testing.T) {
	c := New("messages", "fr")

	assert.Equal(t, "messages", c.HeaderField(HeaderProjectIDVersion))
	assert.Equal(t, "fr", c.HeaderField(HeaderLanguage))
	assert.Equal(t, "", c.HeaderField(HeaderPluralForms))

	c.SetHeaderField(HeaderPluralForms, "nplurals=2; plural=n > 1;")
	assert.Equal(t, "nplurals=2; plural=n > 1;", c.HeaderField(HeaderPluralForms))

	// Replacing keeps field order stable.
	c.SetHeaderField(HeaderLanguage, "fr_FR")
	assert.Equal(t, "fr_FR", c.HeaderField(HeaderLanguage))

	// Field names compare case-insensitively.
	assert.Equal(t, "fr_FR", c.HeaderField("language"))

	lines := c.headerText()
	assert.Less(t, indexOf(t, lines, "Language"), indexOf(t, lines, "Plural-Forms"))
}

func indexOf(t *testing.T, text, substr string) int {
	t.Helper()

	idx := -1

	for i := 0; i+len(substr) <= len(text); i++ {
		if text[i:i+len(substr)] == substr {
			idx = i

			break
		}
	}

	require.GreaterOrEqual(t, idx, 0, "missing %q", substr)

	return idx
}

func TestSetPOTCreationDate(t *testing.T) {
	c := New("messages", "")
	c.SetPOTCreationDate(time.Date(2026, 3, 14, 9, 26, 0, 0, time.UTC))

	assert.Equal(t, "2026-03-14 09:26+0000", c.HeaderField(HeaderPOTCreationDate))
}

func TestLookupSkipsObsolete(t *testing.T) {
	c := New("messages", "fr")
	c.Add(&Entry{MsgID: "Welcome", MsgStr: []string{"Bienvenue"}})
	c.Add(&Entry{MsgID: "Gone", MsgStr: []string{"Parti"}, Obsolete: true})

	assert.NotNil(t, c.Lookup("Welcome"))
	assert.Nil(t, c.Lookup("Gone"))
	assert.Nil(t, c.Lookup("menu\x04Welcome"))

	idx := c.Index()
	assert.Len(t, idx, 1)
}

func TestStats(t *testing.T) {
	c := New("messages", "fr")
	c.Add(&Entry{MsgID: "a", MsgStr: []string{"x"}})
	c.Add(&Entry{MsgID: "b", MsgStr: []string{""}})
	c.Add(&Entry{MsgID: "c", MsgStr: []string{"y"}, Flags: []string{FlagFuzzy}})
	c.Add(&Entry{MsgID: "d", MsgStr: []string{""}})
	c.Add(&Entry{MsgID: "e", MsgStr: []string{"z"}, Obsolete: true})

	s := c.Stats()
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Translated)
	assert.Equal(t, 1, s.Fuzzy)
	assert.Equal(t, 2, s.Untranslated)
	assert.Equal(t, 1, s.Obsolete)
}

func TestObsoleteAgeFlag(t *testing.T) {
	e := &Entry{MsgID: "x", MsgStr: []string{""}}

	assert.Equal(t, 0, e.ObsoleteAge())

	e.SetObsoleteAge(3)
	assert.Equal(t, 3, e.ObsoleteAge())
	assert.True(t, e.HasFlag("obsolete-for-3"))

	e.SetObsoleteAge(4)
	assert.Equal(t, 4, e.ObsoleteAge())
	assert.False(t, e.HasFlag("obsolete-for-3"))

	e.SetObsoleteAge(0)
	assert.Equal(t, 0, e.ObsoleteAge())
	assert.Empty(t, e.Flags)
}

func TestCloneIsDeep(t *testing.T) {
	e := &Entry{
		MsgID:      "x",
		MsgStr:     []string{"y"},
		Flags:      []string{FlagFuzzy},
		References: []Reference{{File: "a.go", Line: 1}},
	}

	dup := e.Clone()
	dup.MsgStr[0] = "changed"
	dup.Flags[0] = "changed"
	dup.References[0].Line = 99

	assert.Equal(t, "y", e.MsgStr[0])
	assert.Equal(t, FlagFuzzy, e.Flags[0])
	assert.Equal(t, 1, e.References[0].Line)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "messages", "fr.po")

	c := New("messages", "fr")
	c.Add(&Entry{MsgID: "Welcome", MsgStr: []string{"Bienvenue"}})

	require.NoError(t, c.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Entries, 1)
	assert.Equal(t, "Bienvenue", loaded.Entries[0].MsgStr[0])
	assert.Equal(t, "fr", loaded.HeaderField(HeaderLanguage))
}

func TestSaveLoadZstd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fr.po.zst")

	c := New("messages", "fr")
	c.Add(&Entry{MsgID: "Welcome", MsgStr: []string{"Bienvenue"}})

	require.NoError(t, c.Save(path))

	// The file on disk is compressed, not PO text.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "msgid")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Entries, 1)
	assert.Equal(t, "Bienvenue", loaded.Entries[0].MsgStr[0])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.po"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}
