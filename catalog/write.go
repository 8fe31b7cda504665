// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// refLineWidth caps the width of "#:" reference lines, as msgmerge does.
const refLineWidth = 75

// Write serializes the catalog in PO format: header first, then entries in
// order, obsolete blocks prefixed with "#~".
func (c *Catalog) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if c.Header != nil {
		writeEntry(bw, c.Header)
	}

	for _, e := range c.Entries {
		fmt.Fprintln(bw)
		writeEntry(bw, e)
	}

	return bw.Flush()
}

// String renders the catalog as PO text.
func (c *Catalog) String() string {
	var b strings.Builder

	_ = c.Write(&b)

	return b.String()
}

func writeEntry(w *bufio.Writer, e *Entry) {
	for _, comment := range e.TranslatorComments {
		if comment == "" {
			fmt.Fprintln(w, "#")
		} else {
			fmt.Fprintf(w, "# %s\n", comment)
		}
	}

	for _, comment := range e.ExtractedComments {
		fmt.Fprintf(w, "#. %s\n", comment)
	}

	writeReferences(w, e.References)

	if len(e.Flags) > 0 {
		fmt.Fprintf(w, "#, %s\n", strings.Join(e.Flags, ", "))
	}

	prefix := ""
	if e.Obsolete {
		prefix = "#~ "
	}

	if e.MsgCtxt != "" {
		writeField(w, prefix, "msgctxt", e.MsgCtxt)
	}

	writeField(w, prefix, "msgid", e.MsgID)

	if e.IsPlural() {
		writeField(w, prefix, "msgid_plural", e.MsgIDPlural)

		for i, s := range e.MsgStr {
			writeField(w, prefix, fmt.Sprintf("msgstr[%d]", i), s)
		}

		return
	}

	value := ""
	if len(e.MsgStr) > 0 {
		value = e.MsgStr[0]
	}

	writeField(w, prefix, "msgstr", value)
}

func writeReferences(w *bufio.Writer, refs []Reference) {
	line := ""

	for _, ref := range refs {
		pos := ref.String()
		if line != "" && len(line)+len(pos)+1 > refLineWidth {
			fmt.Fprintf(w, "#:%s\n", line)

			line = ""
		}

		line += " " + pos
	}

	if line != "" {
		fmt.Fprintf(w, "#:%s\n", line)
	}
}

// writeField emits a keyword line, splitting multi-line values into the
// conventional empty-first-segment form:
//
//	msgid ""
//	"line one\n"
//	"line two"
func writeField(w *bufio.Writer, prefix, keyword, value string) {
	if !strings.Contains(value, "\n") || value == "\n" {
		fmt.Fprintf(w, "%s%s %s\n", prefix, keyword, quote(value))

		return
	}

	fmt.Fprintf(w, "%s%s \"\"\n", prefix, keyword)

	for _, segment := range splitAfterNewlines(value) {
		fmt.Fprintf(w, "%s%s\n", prefix, quote(segment))
	}
}

// splitAfterNewlines splits value after each newline, dropping the empty
// trailing segment produced by a final newline.
func splitAfterNewlines(value string) []string {
	parts := strings.SplitAfter(value, "\n")
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}

	return parts
}

// quote encodes one string segment with PO escaping.
func quote(s string) string {
	var b strings.Builder

	b.Grow(len(s) + 2)
	b.WriteByte('"')

	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(ch)
		}
	}

	b.WriteByte('"')

	return b.String()
}
