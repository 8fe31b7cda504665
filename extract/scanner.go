// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package extract finds literal translation-call sites in a Go source tree
and folds them into a template catalog per text domain.

The scanner is keyword-driven: each recognized call form names the
argument positions of msgid, msgid_plural and msgctxt. Only compile-time
string literals are extracted; dynamically constructed strings are
skipped, since they cannot be statically cataloged. A parse failure in
one file drops that file's occurrences and is reported as a *ScanError
without failing the run.
*/
package extract

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxFileSize skips pathologically large files instead of stalling
// the whole scan on them.
const DefaultMaxFileSize = 4 << 20

// DefaultCommentTag marks developer comments intended for translators.
const DefaultCommentTag = "TRANSLATORS:"

// DefaultKeywords covers the Tr call family (context argument first) and
// the classic gettext names.
var DefaultKeywords = []string{
	"Tr:2",
	"TrC:2c,3",
	"TrN:2,3",
	"TrNC:2c,3,4",
	"Gettext:1",
	"NGettext:1,2",
	"PGettext:1c,2",
	"NPGettext:1c,2,3",
}

// Occurrence is one literal translation-call site.
type Occurrence struct {
	MsgID       string
	MsgIDPlural string
	MsgCtxt     string

	// File is slash-separated and relative to the scan root.
	File string
	Line int

	// Comments holds the TRANSLATORS-tagged comment lines immediately
	// preceding the call, one string per line.
	Comments []string
}

// ScanError reports a file that had to be skipped. The scan continues;
// the affected file contributes no occurrences.
type ScanError struct {
	File string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.File, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// Scanner walks a source tree for translation markers. The zero value is
// not ready for use; construct with NewScanner.
type Scanner struct {
	root        string
	keywords    []*Keyword
	commentTags []string
	maxFileSize int64
	parallelism int
	logger      zerolog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithKeywords replaces the default keyword set with parsed specs.
func WithKeywords(keywords []*Keyword) Option {
	return func(s *Scanner) { s.keywords = keywords }
}

// WithCommentTags sets the comment prefixes that mark translator notes.
func WithCommentTags(tags []string) Option {
	return func(s *Scanner) { s.commentTags = tags }
}

// WithMaxFileSize sets the per-file size cap in bytes.
func WithMaxFileSize(n int64) Option {
	return func(s *Scanner) { s.maxFileSize = n }
}

// WithParallelism bounds the number of files parsed concurrently.
func WithParallelism(n int) Option {
	return func(s *Scanner) { s.parallelism = n }
}

// NewScanner builds a scanner rooted at root with the default keyword set.
func NewScanner(root string, opts ...Option) (*Scanner, error) {
	s := &Scanner{
		root:        root,
		commentTags: []string{DefaultCommentTag},
		maxFileSize: DefaultMaxFileSize,
		parallelism: runtime.GOMAXPROCS(0),
		logger:      log.With().Str("sys", "extract").Logger(),
	}

	for _, spec := range DefaultKeywords {
		kw, err := ParseKeyword(spec)
		if err != nil {
			return nil, fmt.Errorf("default keyword %q: %w", spec, err)
		}

		s.keywords = append(s.keywords, kw)
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Scan walks the tree and returns occurrences in file-then-line order,
// plus one ScanError per skipped file. A structural failure, such as an
// unreadable root or cancellation, aborts the scan with an error.
func (s *Scanner) Scan(ctx context.Context) ([]Occurrence, []*ScanError, error) {
	files, err := s.listFiles()
	if err != nil {
		return nil, nil, err
	}

	// One result slot per file keeps output deterministic regardless of
	// which goroutine finishes first.
	type fileResult struct {
		occurrences []Occurrence
		skip        *ScanError
	}

	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			occurrences, err := s.scanFile(file)
			if err != nil {
				// Report the same slash-relative path as Occurrence.File.
				rel := s.relPath(file)
				results[i].skip = &ScanError{File: rel, Err: err}

				s.logger.Warn().Str("file", rel).Err(err).Msg("Skipping unparsable file")

				return nil
			}

			results[i].occurrences = occurrences

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		occurrences []Occurrence
		skipped     []*ScanError
	)

	for _, res := range results {
		occurrences = append(occurrences, res.occurrences...)

		if res.skip != nil {
			skipped = append(skipped, res.skip)
		}
	}

	return occurrences, skipped, nil
}

// listFiles collects the .go files under the root in sorted order,
// skipping hidden and underscore-prefixed directories, vendor trees and
// test files.
func (s *Scanner) listFiles() ([]string, error) {
	var files []string

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()

		if d.IsDir() {
			if path == s.root {
				return nil
			}

			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
				name == "vendor" || name == "testdata" {
				return filepath.SkipDir
			}

			return nil
		}

		if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			return nil
		}

		files = append(files, path)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.root, err)
	}

	sort.Strings(files)

	return files, nil
}

// scanFile parses one file and collects its occurrences in line order.
func (s *Scanner) scanFile(path string) ([]Occurrence, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.Size() > s.maxFileSize {
		return nil, fmt.Errorf("file size %d exceeds cap %d", info.Size(), s.maxFileSize)
	}

	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	rel := s.relPath(path)

	var occurrences []Occurrence

	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}

		for _, kw := range s.keywords {
			if !kw.Match(call) {
				continue
			}

			msgid, plural, msgctx, err := kw.Extract(call)
			if err != nil {
				// Dynamic argument; documented limitation, not a failure.
				break
			}

			pos := fset.Position(call.Pos())

			occurrences = append(occurrences, Occurrence{
				MsgID:       msgid,
				MsgIDPlural: plural,
				MsgCtxt:     msgctx,
				File:        rel,
				Line:        pos.Line,
				Comments:    s.commentsBefore(fset, file, pos),
			})

			break
		}

		return true
	})

	sort.SliceStable(occurrences, func(i, j int) bool {
		return occurrences[i].Line < occurrences[j].Line
	})

	return occurrences, nil
}

func (s *Scanner) relPath(path string) string {
	if rel, err := filepath.Rel(s.root, path); err == nil {
		return filepath.ToSlash(rel)
	}

	return filepath.ToSlash(path)
}

// commentsBefore returns the tagged comment group ending on the line
// immediately above pos, if any.
func (s *Scanner) commentsBefore(fset *token.FileSet, file *ast.File, pos token.Position) []string {
	for i := len(file.Comments) - 1; i >= 0; i-- {
		group := file.Comments[i]
		if fset.Position(group.End()).Line+1 != pos.Line {
			continue
		}

		lines := commentLines(group)
		if len(lines) == 0 {
			return nil
		}

		for _, tag := range s.commentTags {
			if strings.HasPrefix(lines[0], tag) {
				return lines
			}
		}

		return nil
	}

	return nil
}

func commentLines(group *ast.CommentGroup) []string {
	var lines []string

	for _, comment := range group.List {
		for line := range strings.Lines(comment.Text) {
			line = strings.TrimPrefix(line, "//")
			line = strings.TrimPrefix(line, "/*")
			line = strings.TrimSuffix(strings.TrimSpace(line), "*/")

			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}

	return lines
}
