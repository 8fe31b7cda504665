// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

package extract

import (
	"errors"
	"go/ast"
	"go/token"
	"strconv"
	"strings"
)

var (
	errNotString  = errors.New("not a literal string constant")
	errBadKeyword = errors.New("malformed keyword spec")
	errOutOfRange = errors.New("argument index out of range")
)

// Keyword describes one recognized translation-call form: a function name
// with optional package qualifier and the 1-based argument positions of
// msgid, msgid_plural and msgctxt.
type Keyword struct {
	name, pkg                  string
	msgid, msgidPlural, msgctx int
}

// ParseKeyword parses a spec of the form [PKG.]FUNC[:ARG,...] where each
// ARG is a 1-based argument index, suffixed with "c" for the context
// argument; the first plain index is the msgid, the second the plural.
// With no args the msgid is the first argument.
func ParseKeyword(spec string) (*Keyword, error) {
	function, argSpec, hasArgs := strings.Cut(spec, ":")

	var args []string
	if hasArgs {
		args = strings.Split(argSpec, ",")
	}

	var pkg string
	if i := strings.IndexByte(function, '.'); i >= 0 {
		pkg = function[:i]
		function = function[i+1:]

		if strings.IndexByte(function, '.') >= 0 {
			return nil, errBadKeyword
		}
	}

	if function == "" {
		return nil, errBadKeyword
	}

	k := &Keyword{
		name:        function,
		pkg:         pkg,
		msgid:       0,
		msgidPlural: -1,
		msgctx:      -1,
	}

	positional := 0

	for _, arg := range args {
		if arg == "" {
			return nil, errBadKeyword
		}

		if rest, ok := strings.CutSuffix(arg, "c"); ok {
			val, err := strconv.Atoi(rest)
			if err != nil || val < 1 {
				return nil, errBadKeyword
			}

			k.msgctx = val - 1

			continue
		}

		val, err := strconv.Atoi(arg)
		if err != nil || val < 1 {
			return nil, errBadKeyword
		}

		switch positional {
		case 0:
			k.msgid = val - 1
		case 1:
			k.msgidPlural = val - 1
		default:
			return nil, errBadKeyword
		}

		positional++
	}

	return k, nil
}

// Match reports whether call invokes this keyword, either unqualified or
// through a selector whose receiver matches the package qualifier.
func (k *Keyword) Match(call *ast.CallExpr) bool {
	var pkg, name string

	switch fun := call.Fun.(type) {
	case *ast.Ident:
		name = fun.Name
	case *ast.SelectorExpr:
		name = fun.Sel.Name
		if ident, ok := fun.X.(*ast.Ident); ok {
			pkg = ident.Name
		}
	default:
		return false
	}

	if name != k.name {
		return false
	}

	return k.pkg == "" || k.pkg == pkg
}

// Extract pulls the literal arguments out of a matched call. Dynamically
// constructed strings return errNotString and the call is skipped: such
// strings cannot be statically cataloged.
func (k *Keyword) Extract(call *ast.CallExpr) (msgid, plural, msgctx string, err error) {
	msgid, err = literalArg(call, k.msgid)
	if err != nil {
		return "", "", "", err
	}

	if k.msgidPlural >= 0 {
		plural, err = literalArg(call, k.msgidPlural)
		if err != nil {
			return "", "", "", err
		}
	}

	if k.msgctx >= 0 {
		msgctx, err = literalArg(call, k.msgctx)
		if err != nil {
			return "", "", "", err
		}
	}

	return msgid, plural, msgctx, nil
}

func literalArg(call *ast.CallExpr, idx int) (string, error) {
	if idx >= len(call.Args) {
		return "", errOutOfRange
	}

	return stringConstant(call.Args[idx])
}

// stringConstant evaluates an expression that must be a compile-time
// string literal, allowing parenthesization and "+" concatenation of
// literals.
func stringConstant(expr ast.Expr) (string, error) {
	switch val := expr.(type) {
	case *ast.BasicLit:
		if val.Kind != token.STRING {
			return "", errNotString
		}

		s, err := strconv.Unquote(val.Value)
		if err != nil {
			return "", errNotString
		}

		return s, nil

	case *ast.BinaryExpr:
		if val.Op != token.ADD {
			return "", errNotString
		}

		left, err := stringConstant(val.X)
		if err != nil {
			return "", err
		}

		right, err := stringConstant(val.Y)
		if err != nil {
			return "", err
		}

		return left + right, nil

	case *ast.ParenExpr:
		return stringConstant(val.X)
	}

	return "", errNotString
}
