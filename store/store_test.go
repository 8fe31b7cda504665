// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"codeberg.org/msgforge/msgforge/catalog"
)

// writeCatalog persists a locale catalog under the standard layout.
func writeCatalog(t *testing.T, dir, domain, locale string, entries ...*catalog.Entry) {
	t.Helper()

	c := catalog.New(domain, locale)

	for _, e := range entries {
		c.Add(e)
	}

	require.NoError(t, c.Save(filepath.Join(dir, domain, locale+".po")))
}

func loadedStore(t *testing.T) (*Store, string) {
	t.Helper()

	dir := t.TempDir()

	writeCatalog(t, dir, "messages", "fr",
		&catalog.Entry{MsgID: "Welcome", MsgStr: []string{"Bienvenue"}},
		&catalog.Entry{
			MsgID:       "%d visitor",
			MsgIDPlural: "%d visitors",
			MsgStr:      []string{"%d visiteur", "%d visiteurs"},
		},
		&catalog.Entry{MsgCtxt: "menu", MsgID: "Open", MsgStr: []string{"Ouvrir"}},
		&catalog.Entry{MsgID: "Draft", MsgStr: []string{"Brouillon"}, Flags: []string{catalog.FlagFuzzy}},
		&catalog.Entry{MsgID: "Gone", MsgStr: []string{"Parti"}, Obsolete: true},
		&catalog.Entry{MsgID: "Pending", MsgStr: []string{""}},
	)

	writeCatalog(t, dir, "messages", "de",
		&catalog.Entry{MsgID: "Welcome", MsgStr: []string{"Willkommen"}},
	)

	// The fr catalog header carries the French rule.
	frPath := filepath.Join(dir, "messages", "fr.po")
	c, err := catalog.Load(frPath)
	require.NoError(t, err)
	c.SetHeaderField(catalog.HeaderPluralForms, "nplurals=2; plural=n > 1;")
	require.NoError(t, c.Save(frPath))

	s := New()
	require.NoError(t, s.Reload(context.Background(), dir))

	return s, dir
}

func TestTranslate(t *testing.T) {
	s, _ := loadedStore(t)

	assert.Equal(t, "Bienvenue", s.Translate("messages", "fr", "Welcome"))
	assert.Equal(t, "Willkommen", s.Translate("messages", "de", "Welcome"))

	// Unknown msgid, locale and domain all fall back to source text.
	assert.Equal(t, "Missing", s.Translate("messages", "fr", "Missing"))
	assert.Equal(t, "Welcome", s.Translate("messages", "tlh", "Welcome"))
	assert.Equal(t, "Welcome", s.Translate("errors", "fr", "Welcome"))
}

func TestTranslateContext(t *testing.T) {
	s, _ := loadedStore(t)

	assert.Equal(t, "Ouvrir", s.TranslateContext("messages", "fr", "menu", "Open"))
	// Without the context the entry does not apply.
	assert.Equal(t, "Open", s.Translate("messages", "fr", "Open"))
}

func TestTranslateSkipsFuzzyAndObsolete(t *testing.T) {
	s, _ := loadedStore(t)

	assert.Equal(t, "Draft", s.Translate("messages", "fr", "Draft"))
	assert.Equal(t, "Gone", s.Translate("messages", "fr", "Gone"))
	assert.Equal(t, "Pending", s.Translate("messages", "fr", "Pending"))
}

func TestTranslatePlural(t *testing.T) {
	s, _ := loadedStore(t)

	// French puts 0 and 1 in the singular form.
	assert.Equal(t, "%d visiteur", s.TranslatePlural("messages", "fr", "%d visitor", "%d visitors", 0))
	assert.Equal(t, "%d visiteur", s.TranslatePlural("messages", "fr", "%d visitor", "%d visitors", 1))
	assert.Equal(t, "%d visiteurs", s.TranslatePlural("messages", "fr", "%d visitor", "%d visitors", 2))
	assert.Equal(t, "%d visiteurs", s.TranslatePlural("messages", "fr", "%d visitor", "%d visitors", 100))
}

func TestTranslatePluralFallback(t *testing.T) {
	s, _ := loadedStore(t)

	// Unknown entries follow the two-form convention on source text.
	assert.Equal(t, "%d file", s.TranslatePlural("messages", "fr", "%d file", "%d files", 1))
	assert.Equal(t, "%d files", s.TranslatePlural("messages", "fr", "%d file", "%d files", 0))
	assert.Equal(t, "%d files", s.TranslatePlural("messages", "fr", "%d file", "%d files", 5))
	assert.Equal(t, "%d files", s.TranslatePlural("messages", "tlh", "%d file", "%d files", 5))

	// Negative counts clamp rather than fail.
	assert.Equal(t, "%d files", s.TranslatePlural("messages", "fr", "%d file", "%d files", -3))
}

func TestResolveLocaleVariants(t *testing.T) {
	s, _ := loadedStore(t)

	// Regional requests are served by the base language catalog.
	assert.Equal(t, "Bienvenue", s.Translate("messages", "fr_CA", "Welcome"))
	assert.Equal(t, "Bienvenue", s.Translate("messages", "fr-FR", "Welcome"))
	assert.Equal(t, "Willkommen", s.Translate("messages", "de-AT", "Welcome"))

	// Garbage locales fall back rather than fail.
	assert.Equal(t, "Welcome", s.Translate("messages", "!!", "Welcome"))
}

func TestLocales(t *testing.T) {
	s, _ := loadedStore(t)

	tags := s.Locales("messages")
	require.Len(t, tags, 2)
	assert.Equal(t, language.Make("de"), tags[0])
	assert.Equal(t, language.Make("fr"), tags[1])

	assert.Nil(t, s.Locales("errors"))
}

func TestEmptyStoreFallsBack(t *testing.T) {
	s := New()

	assert.Equal(t, "Welcome", s.Translate("messages", "fr", "Welcome"))
	assert.Equal(t, "%d files", s.TranslatePlural("messages", "fr", "%d file", "%d files", 2))
}

func TestReloadMalformedCatalogDegrades(t *testing.T) {
	s, dir := loadedStore(t)

	badPath := filepath.Join(dir, "messages", "es.po")
	require.NoError(t, os.WriteFile(badPath, []byte("not a catalog\n"), 0o644))

	err := s.Reload(context.Background(), dir)
	require.Error(t, err)

	var formatErr *catalog.FormatError

	assert.ErrorAs(t, err, &formatErr)

	// The healthy locales are still served.
	assert.Equal(t, "Bienvenue", s.Translate("messages", "fr", "Welcome"))
	assert.Equal(t, "Hola", s.Translate("messages", "es", "Hola"))
}

func TestReloadCanceledKeepsSnapshot(t *testing.T) {
	s, dir := loadedStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, s.Reload(ctx, dir), context.Canceled)

	// The previous snapshot stays authoritative.
	assert.Equal(t, "Bienvenue", s.Translate("messages", "fr", "Welcome"))
}

func TestReloadCompressedCatalog(t *testing.T) {
	dir := t.TempDir()

	c := catalog.New("messages", "fr")
	c.Add(&catalog.Entry{MsgID: "Welcome", MsgStr: []string{"Bienvenue"}})
	require.NoError(t, c.Save(filepath.Join(dir, "messages", "fr.po.zst")))

	s := New()
	require.NoError(t, s.Reload(context.Background(), dir))

	assert.Equal(t, "Bienvenue", s.Translate("messages", "fr", "Welcome"))
}

func TestReloadSkipsTemplate(t *testing.T) {
	dir := t.TempDir()

	writeCatalog(t, dir, "messages", "fr",
		&catalog.Entry{MsgID: "Welcome", MsgStr: []string{"Bienvenue"}},
	)

	// The template must not be served as a locale named after the domain.
	tmpl := catalog.New("messages", "")
	tmpl.Add(&catalog.Entry{MsgID: "Welcome", MsgStr: []string{""}})
	require.NoError(t, tmpl.Save(filepath.Join(dir, "messages", "messages.pot")))

	s := New()
	require.NoError(t, s.Reload(context.Background(), dir))

	tags := s.Locales("messages")
	assert.Len(t, tags, 1)
}
