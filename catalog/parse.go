// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// maxLineBytes caps a single catalog line; longer lines indicate a
// corrupted or hostile file.
const maxLineBytes = 1 << 20

// FormatError reports a malformed catalog file. The whole file is rejected;
// callers degrade the affected locale to source-text fallback.
type FormatError struct {
	Path string
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	path := e.Path
	if path == "" {
		path = "catalog"
	}

	return fmt.Sprintf("%s:%d: %s", path, e.Line, e.Msg)
}

// parser holds the state of one Parse run.
type parser struct {
	path    string
	cat     *Catalog
	current *Entry
	// lastField names the most recent keyword line, so continuation
	// strings know where to append. For msgstr[N] it is the slot index.
	lastField string
	lastSlot  int
	sawHeader bool
	line      int
}

// Parse reads a PO or POT file. The returned catalog preserves entry order,
// comments, flags and obsolete blocks. Domain and locale are not encoded in
// the file body; callers set them from the file path.
func Parse(r io.Reader) (*Catalog, error) {
	return ParseNamed(r, "")
}

// ParseNamed is Parse with a file name for error reporting.
func ParseNamed(r io.Reader, path string) (*Catalog, error) {
	p := &parser{path: path, cat: &Catalog{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		p.line++

		if err := p.consume(scanner.Text()); err != nil {
			return nil, err
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, &FormatError{Path: path, Line: p.line, Msg: err.Error()}
	}

	if err := p.flush(); err != nil {
		return nil, err
	}

	return p.cat, nil
}

func (p *parser) errf(format string, args ...any) error {
	return &FormatError{Path: p.path, Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

// consume processes a single line.
func (p *parser) consume(line string) error {
	if strings.TrimSpace(line) == "" {
		return p.flush()
	}

	if p.current == nil {
		p.current = &Entry{}
	}

	// Obsolete blocks repeat the "#~ " prefix on every keyword line.
	if rest, ok := strings.CutPrefix(line, "#~"); ok {
		// An obsolete block may follow a live entry without a blank
		// separator line; close the live entry instead of folding the
		// block into it.
		if !p.current.Obsolete && p.lastField != "" {
			if err := p.flush(); err != nil {
				return err
			}

			p.current = &Entry{}
		}

		p.current.Obsolete = true
		line = strings.TrimPrefix(rest, " ")
	}

	if strings.HasPrefix(line, "#") {
		p.consumeComment(line)

		return nil
	}

	return p.consumeKeyword(line)
}

func (p *parser) consumeComment(line string) {
	e := p.current

	switch {
	case strings.HasPrefix(line, "#:"):
		for _, tok := range strings.Fields(line[2:]) {
			e.References = append(e.References, parseReference(tok))
		}
	case strings.HasPrefix(line, "#,"):
		for _, flag := range strings.Split(line[2:], ",") {
			if flag = strings.TrimSpace(flag); flag != "" {
				e.Flags = append(e.Flags, flag)
			}
		}
	case strings.HasPrefix(line, "#."):
		e.ExtractedComments = append(e.ExtractedComments, strings.TrimSpace(line[2:]))
	default:
		// "# " translator comment, preserved verbatim.
		comment := strings.TrimPrefix(line[1:], " ")
		e.TranslatorComments = append(e.TranslatorComments, comment)
	}
}

// parseReference splits "file:line"; a missing or malformed line number
// leaves Line at zero rather than failing the file.
func parseReference(tok string) Reference {
	if i := strings.LastIndexByte(tok, ':'); i >= 0 {
		if n, err := strconv.Atoi(tok[i+1:]); err == nil {
			return Reference{File: tok[:i], Line: n}
		}
	}

	return Reference{File: tok}
}

func (p *parser) consumeKeyword(line string) error {
	e := p.current

	switch {
	case strings.HasPrefix(line, "msgctxt "):
		s, err := p.unquote(strings.TrimPrefix(line, "msgctxt "))
		if err != nil {
			return err
		}

		e.MsgCtxt = s
		p.lastField = "msgctxt"

	case strings.HasPrefix(line, "msgid_plural "):
		s, err := p.unquote(strings.TrimPrefix(line, "msgid_plural "))
		if err != nil {
			return err
		}

		e.MsgIDPlural = s
		p.lastField = "msgid_plural"

	case strings.HasPrefix(line, "msgid "):
		s, err := p.unquote(strings.TrimPrefix(line, "msgid "))
		if err != nil {
			return err
		}

		e.MsgID = s
		p.lastField = "msgid"

	case strings.HasPrefix(line, "msgstr["):
		rest := line[len("msgstr["):]

		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return p.errf("unterminated msgstr index")
		}

		slot, err := strconv.Atoi(rest[:end])
		if err != nil || slot < 0 {
			return p.errf("invalid msgstr index %q", rest[:end])
		}

		s, err := p.unquote(strings.TrimSpace(rest[end+1:]))
		if err != nil {
			return err
		}

		for len(e.MsgStr) <= slot {
			e.MsgStr = append(e.MsgStr, "")
		}

		e.MsgStr[slot] = s
		p.lastField = "msgstr[]"
		p.lastSlot = slot

	case strings.HasPrefix(line, "msgstr "):
		s, err := p.unquote(strings.TrimPrefix(line, "msgstr "))
		if err != nil {
			return err
		}

		e.MsgStr = []string{s}
		p.lastField = "msgstr"

	case strings.HasPrefix(line, "\""):
		return p.continuation(line)

	default:
		return p.errf("unexpected input %q", line)
	}

	return nil
}

// continuation appends a quoted segment to the field started on a
// previous line. Adjacent segments concatenate.
func (p *parser) continuation(line string) error {
	s, err := p.unquote(line)
	if err != nil {
		return err
	}

	e := p.current

	switch p.lastField {
	case "msgctxt":
		e.MsgCtxt += s
	case "msgid":
		e.MsgID += s
	case "msgid_plural":
		e.MsgIDPlural += s
	case "msgstr":
		e.MsgStr[0] += s
	case "msgstr[]":
		e.MsgStr[p.lastSlot] += s
	default:
		return p.errf("continuation string with no preceding field")
	}

	return nil
}

// unquote decodes one quoted PO string segment, handling backslash escapes
// for quotes, backslashes, newlines and tabs.
func (p *parser) unquote(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", p.errf("expected quoted string, got %q", s)
	}

	body := s[1 : len(s)-1]
	if !strings.ContainsRune(body, '\\') {
		if strings.ContainsRune(body, '"') {
			return "", p.errf("unescaped quote in string %q", s)
		}

		return body, nil
	}

	var b strings.Builder

	b.Grow(len(body))

	for i := 0; i < len(body); i++ {
		ch := body[i]

		if ch == '"' {
			return "", p.errf("unescaped quote in string %q", s)
		}

		if ch != '\\' {
			b.WriteByte(ch)

			continue
		}

		i++
		if i >= len(body) {
			return "", p.errf("trailing backslash in string %q", s)
		}

		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			return "", p.errf("unknown escape \\%c", body[i])
		}
	}

	return b.String(), nil
}

// flush completes the in-progress entry, routing the msgid "" block to the
// catalog header.
func (p *parser) flush() error {
	e := p.current
	if e == nil {
		return nil
	}

	p.current = nil
	p.lastField = ""

	if e.IsHeader() && !e.Obsolete {
		if p.sawHeader {
			return p.errf("duplicate header entry")
		}

		p.sawHeader = true
		p.cat.Header = e

		return nil
	}

	if e.MsgID == "" {
		return p.errf("entry with empty msgid")
	}

	if len(e.MsgStr) == 0 {
		// Template entries omit msgstr; normalize to one empty slot
		// so arity invariants hold downstream.
		if e.IsPlural() {
			e.MsgStr = []string{"", ""}
		} else {
			e.MsgStr = []string{""}
		}
	}

	p.cat.Entries = append(p.cat.Entries, e)

	return nil
}
