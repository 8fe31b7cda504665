// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package pluralforms compiles gettext plural-forms expressions into
evaluatable expression trees and resolves per-locale plural rules.

The expression language covers integer literals, the variable n,
arithmetic (+ - * / %), comparisons (== != > >= < <=), boolean
connectives (&& || !) and the ternary conditional, with C precedence.
Compilation failures surface as *SyntaxError at load time; evaluation is
total and never fails.
*/
package pluralforms

import (
	"fmt"
	"strconv"
)

// SyntaxError reports a malformed plural-forms expression, naming the
// offending token and its byte offset.
type SyntaxError struct {
	Expr  string
	Pos   int
	Token string
}

func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("plural expression %q: unexpected end of input", e.Expr)
	}

	return fmt.Sprintf("plural expression %q: unexpected token %q at offset %d", e.Expr, e.Token, e.Pos)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokVar
	tokOp
)

type token struct {
	kind tokenKind
	text string
	pos  int
	num  int
}

// lex splits expr into tokens. Multi-character operators are greedy, so
// ">=" lexes as one token, never as ">" "=".
func lex(expr string) ([]token, error) {
	var toks []token

	i := 0
	for i < len(expr) {
		ch := expr[i]

		switch {
		case ch == ' ' || ch == '\t':
			i++

		case ch >= '0' && ch <= '9':
			start := i
			for i < len(expr) && expr[i] >= '0' && expr[i] <= '9' {
				i++
			}

			num, err := strconv.Atoi(expr[start:i])
			if err != nil {
				return nil, &SyntaxError{Expr: expr, Pos: start, Token: expr[start:i]}
			}

			toks = append(toks, token{kind: tokNumber, text: expr[start:i], pos: start, num: num})

		case ch == 'n':
			toks = append(toks, token{kind: tokVar, text: "n", pos: i})
			i++

		case ch == '&' || ch == '|':
			if i+1 >= len(expr) || expr[i+1] != ch {
				return nil, &SyntaxError{Expr: expr, Pos: i, Token: string(ch)}
			}

			toks = append(toks, token{kind: tokOp, text: expr[i : i+2], pos: i})
			i += 2

		case ch == '=':
			if i+1 >= len(expr) || expr[i+1] != '=' {
				return nil, &SyntaxError{Expr: expr, Pos: i, Token: string(ch)}
			}

			toks = append(toks, token{kind: tokOp, text: "==", pos: i})
			i += 2

		case ch == '!' || ch == '<' || ch == '>':
			if i+1 < len(expr) && expr[i+1] == '=' {
				toks = append(toks, token{kind: tokOp, text: expr[i : i+2], pos: i})
				i += 2
			} else {
				toks = append(toks, token{kind: tokOp, text: string(ch), pos: i})
				i++
			}

		case ch == '?' || ch == ':' || ch == '(' || ch == ')' ||
			ch == '+' || ch == '-' || ch == '*' || ch == '/' || ch == '%':
			toks = append(toks, token{kind: tokOp, text: string(ch), pos: i})
			i++

		case ch == ';' || ch == '\n':
			// Header values terminate expressions with a semicolon.
			i = len(expr)

		default:
			return nil, &SyntaxError{Expr: expr, Pos: i, Token: string(ch)}
		}
	}

	toks = append(toks, token{kind: tokEOF, pos: len(expr)})

	return toks, nil
}

// compiler is a recursive-descent parser over the token stream.
type compiler struct {
	expr string
	toks []token
	pos  int
}

func (c *compiler) peek() token {
	return c.toks[c.pos]
}

func (c *compiler) next() token {
	t := c.toks[c.pos]
	if t.kind != tokEOF {
		c.pos++
	}

	return t
}

func (c *compiler) errAt(t token) error {
	return &SyntaxError{Expr: c.expr, Pos: t.pos, Token: t.text}
}

// expectOp consumes the given operator or fails.
func (c *compiler) expectOp(op string) error {
	t := c.next()
	if t.kind != tokOp || t.text != op {
		return c.errAt(t)
	}

	return nil
}

func (c *compiler) atOp(op string) bool {
	t := c.peek()

	return t.kind == tokOp && t.text == op
}

// Compile parses a plural-forms expression into an Expression tree.
func Compile(expr string) (Expression, error) {
	toks, err := lex(expr)
	if err != nil {
		return nil, err
	}

	c := &compiler{expr: expr, toks: toks}

	e, err := c.ternary()
	if err != nil {
		return nil, err
	}

	if t := c.peek(); t.kind != tokEOF {
		return nil, c.errAt(t)
	}

	return e, nil
}

// ternary := or ("?" ternary ":" ternary)?
func (c *compiler) ternary() (Expression, error) {
	test, err := c.or()
	if err != nil {
		return nil, err
	}

	if !c.atOp("?") {
		return test, nil
	}

	c.next()

	ifTrue, err := c.ternary()
	if err != nil {
		return nil, err
	}

	if err := c.expectOp(":"); err != nil {
		return nil, err
	}

	ifFalse, err := c.ternary()
	if err != nil {
		return nil, err
	}

	return ternaryExpr{test: test, ifTrue: ifTrue, ifFalse: ifFalse}, nil
}

func (c *compiler) or() (Expression, error) {
	left, err := c.and()
	if err != nil {
		return nil, err
	}

	for c.atOp("||") {
		c.next()

		right, err := c.and()
		if err != nil {
			return nil, err
		}

		left = orExpr{left: left, right: right}
	}

	return left, nil
}

func (c *compiler) and() (Expression, error) {
	left, err := c.equality()
	if err != nil {
		return nil, err
	}

	for c.atOp("&&") {
		c.next()

		right, err := c.equality()
		if err != nil {
			return nil, err
		}

		left = andExpr{left: left, right: right}
	}

	return left, nil
}

func (c *compiler) equality() (Expression, error) {
	left, err := c.relational()
	if err != nil {
		return nil, err
	}

	for c.atOp("==") || c.atOp("!=") {
		op := c.next().text

		right, err := c.relational()
		if err != nil {
			return nil, err
		}

		if op == "==" {
			left = eqExpr{left: left, right: right}
		} else {
			left = neExpr{left: left, right: right}
		}
	}

	return left, nil
}

func (c *compiler) relational() (Expression, error) {
	left, err := c.additive()
	if err != nil {
		return nil, err
	}

	for c.atOp("<") || c.atOp("<=") || c.atOp(">") || c.atOp(">=") {
		op := c.next().text

		right, err := c.additive()
		if err != nil {
			return nil, err
		}

		switch op {
		case "<":
			left = ltExpr{left: left, right: right}
		case "<=":
			left = lteExpr{left: left, right: right}
		case ">":
			left = gtExpr{left: left, right: right}
		default:
			left = gteExpr{left: left, right: right}
		}
	}

	return left, nil
}

func (c *compiler) additive() (Expression, error) {
	left, err := c.multiplicative()
	if err != nil {
		return nil, err
	}

	for c.atOp("+") || c.atOp("-") {
		op := c.next().text

		right, err := c.multiplicative()
		if err != nil {
			return nil, err
		}

		if op == "+" {
			left = addExpr{left: left, right: right}
		} else {
			left = subExpr{left: left, right: right}
		}
	}

	return left, nil
}

func (c *compiler) multiplicative() (Expression, error) {
	left, err := c.unary()
	if err != nil {
		return nil, err
	}

	for c.atOp("*") || c.atOp("/") || c.atOp("%") {
		op := c.next().text

		right, err := c.unary()
		if err != nil {
			return nil, err
		}

		switch op {
		case "*":
			left = mulExpr{left: left, right: right}
		case "/":
			left = divExpr{left: left, right: right}
		default:
			left = modExpr{left: left, right: right}
		}
	}

	return left, nil
}

func (c *compiler) unary() (Expression, error) {
	if c.atOp("!") {
		c.next()

		sub, err := c.unary()
		if err != nil {
			return nil, err
		}

		return notExpr{sub: sub}, nil
	}

	return c.primary()
}

func (c *compiler) primary() (Expression, error) {
	t := c.next()

	switch {
	case t.kind == tokNumber:
		return numberExpr{value: t.num}, nil

	case t.kind == tokVar:
		return varExpr{}, nil

	case t.kind == tokOp && t.text == "(":
		e, err := c.ternary()
		if err != nil {
			return nil, err
		}

		if err := c.expectOp(")"); err != nil {
			return nil, err
		}

		return e, nil
	}

	return nil, c.errAt(t)
}
