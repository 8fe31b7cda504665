// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/msgforge/msgforge/catalog"
)

func TestBuildTemplate(t *testing.T) {
	occurrences := []Occurrence{
		{MsgID: "Welcome", File: "web/home.go", Line: 7, Comments: []string{"TRANSLATORS: Landing page."}},
		{MsgID: "%d visitor", MsgIDPlural: "%d visitors", File: "core/visits.go", Line: 9},
		{MsgID: "Welcome", File: "web/about.go", Line: 17},
		{MsgID: "Open", MsgCtxt: "menu", File: "web/menu.go", Line: 3},
		// Exact duplicate folds into a single reference.
		{MsgID: "Welcome", File: "web/home.go", Line: 7},
	}

	template, err := BuildTemplate("messages", occurrences)
	require.NoError(t, err)

	assert.Equal(t, "messages", template.Domain)
	assert.Equal(t, "", template.Locale)
	assert.NotEmpty(t, template.HeaderField(catalog.HeaderPOTCreationDate))
	assert.Equal(t, "nplurals=2; plural=n != 1;", template.HeaderField(catalog.HeaderPluralForms))

	require.Len(t, template.Entries, 3)

	welcome := template.Entries[0]
	assert.Equal(t, "Welcome", welcome.MsgID)
	assert.Equal(t, []string{""}, welcome.MsgStr)
	assert.Equal(t, []catalog.Reference{
		{File: "web/home.go", Line: 7},
		{File: "web/about.go", Line: 17},
	}, welcome.References)
	assert.Equal(t, []string{"TRANSLATORS: Landing page."}, welcome.ExtractedComments)

	visitors := template.Entries[1]
	assert.True(t, visitors.IsPlural())
	assert.Equal(t, []string{"", ""}, visitors.MsgStr)

	open := template.Entries[2]
	assert.Equal(t, "menu", open.MsgCtxt)
}

func TestBuildTemplateStableOrder(t *testing.T) {
	occurrences := []Occurrence{
		{MsgID: "b", File: "f.go", Line: 2},
		{MsgID: "a", File: "f.go", Line: 5},
	}

	template, err := BuildTemplate("messages", occurrences)
	require.NoError(t, err)

	// First-seen order, not lexicographic.
	require.Len(t, template.Entries, 2)
	assert.Equal(t, "b", template.Entries[0].MsgID)
	assert.Equal(t, "a", template.Entries[1].MsgID)
}

func TestBuildTemplateAmbiguousPlural(t *testing.T) {
	occurrences := []Occurrence{
		{MsgID: "%d file", MsgIDPlural: "%d files", File: "a.go", Line: 1},
		{MsgID: "%d file", File: "b.go", Line: 2},
	}

	_, err := BuildTemplate("messages", occurrences)
	require.Error(t, err)

	var ambiguous *AmbiguousPluralError

	require.True(t, errors.As(err, &ambiguous))
	assert.Equal(t, "%d file", ambiguous.MsgID)
	assert.Equal(t, catalog.Reference{File: "a.go", Line: 1}, ambiguous.First)
	assert.Equal(t, catalog.Reference{File: "b.go", Line: 2}, ambiguous.Second)
}

func TestBuildTemplateContextSeparatesEntries(t *testing.T) {
	occurrences := []Occurrence{
		{MsgID: "Open", File: "a.go", Line: 1},
		{MsgID: "Open", MsgCtxt: "menu", File: "a.go", Line: 2},
	}

	template, err := BuildTemplate("messages", occurrences)
	require.NoError(t, err)
	assert.Len(t, template.Entries, 2)
}
