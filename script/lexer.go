// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package script

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokKeyword
	tokPunct
)

var keywords = map[string]bool{
	"let": true, "const": true, "if": true, "else": true, "while": true,
	"loop": true, "for": true, "in": true, "break": true, "continue": true,
	"return": true, "fn": true, "true": true, "false": true,
}

// punctuation, longest first so that the lexer is greedy
var puncts = []string{
	"..=", "#{", "**",
	"..", "==", "!=", "<=", ">=", "&&", "||", "+=", "-=", "*=", "/=", "%=",
	"(", ")", "[", "]", "{", "}", ",", ";", ":", ".", "=", "+", "-", "*",
	"/", "%", "<", ">", "!",
}

// Pos is a position in script source, with 1-based line and column.
type Pos struct {
	Line, Col int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

type token struct {
	typ tokenType
	lit string
	pos Pos
}

func (t token) String() string {
	switch t.typ {
	case tokEOF:
		return "end of script"
	case tokString:
		return fmt.Sprintf("string %q", t.lit)
	}
	return fmt.Sprintf("'%s'", t.lit)
}

type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) peekRune() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return r
}

func (l *lexer) nextRune() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) errorf(p Pos, format string, args ...any) error {
	return &ParseError{Line: p.Line, Col: p.Col, Msg: fmt.Sprintf(format, args...)}
}

// skip skips whitespace and comments.
func (l *lexer) skip() error {
	for {
		r := l.peekRune()
		switch {
		case unicode.IsSpace(r):
			l.nextRune()
		case strings.HasPrefix(l.src[l.pos:], "//"):
			for r := l.peekRune(); r != '\n' && r != 0; r = l.peekRune() {
				l.nextRune()
			}
		case strings.HasPrefix(l.src[l.pos:], "/*"):
			start := Pos{l.line, l.col}
			l.nextRune()
			l.nextRune()
			for !strings.HasPrefix(l.src[l.pos:], "*/") {
				if l.pos >= len(l.src) {
					return l.errorf(start, "unterminated block comment")
				}
				l.nextRune()
			}
			l.nextRune()
			l.nextRune()
		default:
			return nil
		}
	}
}

func (l *lexer) next() (token, error) {
	if err := l.skip(); err != nil {
		return token{}, err
	}
	p := Pos{l.line, l.col}
	r := l.peekRune()
	switch {
	case r == 0:
		return token{typ: tokEOF, pos: p}, nil
	case isIdentStart(r):
		start := l.pos
		for r := l.peekRune(); isIdentStart(r) || isDigitRune(r); r = l.peekRune() {
			l.nextRune()
		}
		lit := l.src[start:l.pos]
		if keywords[lit] {
			return token{typ: tokKeyword, lit: lit, pos: p}, nil
		}
		return token{typ: tokIdent, lit: lit, pos: p}, nil
	case isDigitRune(r):
		return l.number(p)
	case r == '"':
		return l.str(p)
	}
	for _, pu := range puncts {
		if strings.HasPrefix(l.src[l.pos:], pu) {
			for range pu {
				l.nextRune()
			}
			return token{typ: tokPunct, lit: pu, pos: p}, nil
		}
	}
	return token{}, l.errorf(p, "unexpected character %q", r)
}

func (l *lexer) digits() {
	for r := l.peekRune(); isDigitRune(r) || r == '_'; r = l.peekRune() {
		l.nextRune()
	}
}

func (l *lexer) number(p Pos) (token, error) {
	start := l.pos
	typ := tokInt
	l.digits()
	// a dot followed by a digit continues the number; "1..2" is a range
	if l.peekRune() == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]) {
		typ = tokFloat
		l.nextRune()
		l.digits()
	}
	if r := l.peekRune(); r == 'e' || r == 'E' {
		save, line, col := l.pos, l.line, l.col
		l.nextRune()
		if r := l.peekRune(); r == '+' || r == '-' {
			l.nextRune()
		}
		if !isDigitRune(l.peekRune()) {
			l.pos, l.line, l.col = save, line, col
		} else {
			typ = tokFloat
			l.digits()
		}
	}
	lit := strings.ReplaceAll(l.src[start:l.pos], "_", "")
	return token{typ: typ, lit: lit, pos: p}, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isDigitRune(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func (l *lexer) str(p Pos) (token, error) {
	l.nextRune()
	var b strings.Builder
	for {
		r := l.nextRune()
		switch r {
		case 0, '\n':
			return token{}, l.errorf(p, "unterminated string")
		case '"':
			return token{typ: tokString, lit: b.String(), pos: p}, nil
		case '\\':
			e := l.nextRune()
			switch e {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			case '\\', '"':
				b.WriteRune(e)
			default:
				return token{}, l.errorf(Pos{l.line, l.col - 1}, "invalid escape sequence '\\%c'", e)
			}
		default:
			b.WriteRune(r)
		}
	}
}

// tokenize returns all of the tokens in the source, ending with tokEOF.
func tokenize(src string) ([]token, error) {
	l := newLexer(src)
	var toks []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.typ == tokEOF {
			return toks, nil
		}
	}
}

// IsIdentifier returns whether the given string is a valid
// script identifier that is not a keyword.
func IsIdentifier(s string) bool {
	if s == "" || keywords[s] {
		return false
	}
	for i, r := range s {
		if isIdentStart(r) {
			continue
		}
		if i > 0 && isDigitRune(r) {
			continue
		}
		return false
	}
	// a lone underscore is a placeholder, not a name
	return s != "_"
}
