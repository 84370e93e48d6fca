// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package script

import (
	"fmt"
	"strconv"
)

// ParseError is an error in the syntax of a script.
type ParseError struct {
	Line, Col int
	Msg       string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (line %d, position %d)", e.Msg, e.Line, e.Col)
}

type parser struct {
	toks     []token
	i        int
	depth    int
	maxDepth int
	ast      *AST
}

// Parse parses the given source with the given maximum
// expression nesting depth (0 for unlimited).
func Parse(src string, maxDepth int) (*AST, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, maxDepth: maxDepth, ast: &AST{Funcs: map[string]*FnDecl{}}}
	for p.peek().typ != tokEOF {
		if p.isKeyword("fn") {
			fn, err := p.parseFn()
			if err != nil {
				return nil, err
			}
			if _, ok := p.ast.Funcs[fn.Name]; ok {
				return nil, p.errorAt(fn.Pos, "function '%s' is already defined", fn.Name)
			}
			p.ast.Funcs[fn.Name] = fn
			continue
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		if s != nil {
			p.ast.Stmts = append(p.ast.Stmts, s)
		}
	}
	return p.ast, nil
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.typ != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) isPunct(s string) bool {
	t := p.peek()
	return t.typ == tokPunct && t.lit == s
}

func (p *parser) isKeyword(s string) bool {
	t := p.peek()
	return t.typ == tokKeyword && t.lit == s
}

func (p *parser) accept(s string) bool {
	if p.isPunct(s) {
		p.next()
		return true
	}
	return false
}

func (p *parser) errorAt(pos Pos, format string, args ...any) error {
	return &ParseError{Line: pos.Line, Col: pos.Col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(s string) (token, error) {
	t := p.peek()
	if t.typ != tokPunct || t.lit != s {
		return t, p.errorAt(t.pos, "expected '%s', found %s", s, t)
	}
	return p.next(), nil
}

func (p *parser) expectIdent(what string) (token, error) {
	t := p.peek()
	if t.typ != tokIdent {
		return t, p.errorAt(t.pos, "expected %s, found %s", what, t)
	}
	return p.next(), nil
}

func (p *parser) enter(pos Pos) error {
	p.depth++
	if p.maxDepth > 0 && p.depth > p.maxDepth {
		return p.errorAt(pos, "expression exceeds maximum nesting depth of %d", p.maxDepth)
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

// endStmt consumes a statement terminator, which may be omitted
// before a closing brace or the end of the script.
func (p *parser) endStmt() error {
	if p.accept(";") || p.isPunct("}") || p.peek().typ == tokEOF {
		return nil
	}
	t := p.peek()
	return p.errorAt(t.pos, "expected ';', found %s", t)
}

func (p *parser) parseFn() (*FnDecl, error) {
	pos := p.next().pos
	name, err := p.expectIdent("function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	fn := &FnDecl{Pos: pos, Name: name.lit}
	seen := map[string]bool{}
	for !p.isPunct(")") {
		t, err := p.expectIdent("parameter name")
		if err != nil {
			return nil, err
		}
		if seen[t.lit] {
			return nil, p.errorAt(t.pos, "duplicate parameter '%s'", t.lit)
		}
		seen[t.lit] = true
		fn.Params = append(fn.Params, t.lit)
		if !p.accept(",") {
			break
		}
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	fn.Body, err = p.parseBlock()
	return fn, err
}

func (p *parser) parseBlock() (*Block, error) {
	t, err := p.expect("{")
	if err != nil {
		return nil, err
	}
	if err := p.enter(t.pos); err != nil {
		return nil, err
	}
	defer p.leave()
	b := &Block{Pos: t.pos}
	for !p.isPunct("}") {
		if p.peek().typ == tokEOF {
			return nil, p.errorAt(t.pos, "unclosed '{'")
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		if s != nil {
			b.Stmts = append(b.Stmts, s)
		}
	}
	p.next()
	return b, nil
}

func (p *parser) parseStmt() (Stmt, error) {
	t := p.peek()
	if t.typ == tokPunct {
		switch t.lit {
		case ";":
			p.next()
			return nil, nil
		case "{":
			return p.parseBlock()
		}
	}
	if t.typ == tokKeyword {
		switch t.lit {
		case "let", "const":
			return p.parseLet()
		case "if":
			return p.parseIf()
		case "while":
			p.next()
			cond, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			return &While{Pos: t.pos, Cond: cond, Body: body}, nil
		case "loop":
			p.next()
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			return &Loop{Pos: t.pos, Body: body}, nil
		case "for":
			return p.parseFor()
		case "break":
			p.next()
			return &Break{Pos: t.pos}, p.endStmt()
		case "continue":
			p.next()
			return &Continue{Pos: t.pos}, p.endStmt()
		case "return":
			p.next()
			r := &Return{Pos: t.pos}
			if !p.isPunct(";") && !p.isPunct("}") && p.peek().typ != tokEOF {
				v, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				r.Value = v
			}
			return r, p.endStmt()
		case "fn":
			return nil, p.errorAt(t.pos, "functions can only be defined at global level")
		}
	}
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if op := p.peek(); op.typ == tokPunct {
		switch op.lit {
		case "=", "+=", "-=", "*=", "/=", "%=":
			switch x.(type) {
			case *Ident, *Member, *Index:
			default:
				return nil, p.errorAt(op.pos, "cannot assign to this expression")
			}
			p.next()
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return &Assign{Pos: op.pos, Target: x, Op: op.lit, Value: v}, p.endStmt()
		}
	}
	return &ExprStmt{X: x}, p.endStmt()
}

func (p *parser) parseLet() (Stmt, error) {
	kw := p.next()
	name, err := p.expectIdent("variable name")
	if err != nil {
		return nil, err
	}
	l := &Let{Pos: kw.pos, Name: name.lit, Const: kw.lit == "const"}
	if p.accept("=") {
		l.Value, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	} else if l.Const {
		return nil, p.errorAt(name.pos, "constant '%s' must be initialized", name.lit)
	}
	return l, p.endStmt()
}

func (p *parser) parseIf() (Stmt, error) {
	pos := p.next().pos
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	s := &If{Pos: pos, Cond: cond, Then: then}
	if p.isKeyword("else") {
		p.next()
		if p.isKeyword("if") {
			s.Else, err = p.parseIf()
		} else {
			s.Else, err = p.parseBlock()
		}
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (p *parser) parseFor() (Stmt, error) {
	pos := p.next().pos
	v, err := p.expectIdent("loop variable")
	if err != nil {
		return nil, err
	}
	if !p.isKeyword("in") {
		t := p.peek()
		return nil, p.errorAt(t.pos, "expected 'in', found %s", t)
	}
	p.next()
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &For{Pos: pos, Var: v.lit, Iter: iter, Body: body}, nil
}

func (p *parser) parseExpr() (Expr, error) {
	if err := p.enter(p.peek().pos); err != nil {
		return nil, err
	}
	defer p.leave()
	lo, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.typ == tokPunct && (t.lit == ".." || t.lit == "..=") {
		p.next()
		hi, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		return &Range{Pos: t.pos, Lo: lo, Hi: hi, Inclusive: t.lit == "..="}, nil
	}
	return lo, nil
}

// binary operator precedence levels, lowest first
var precedence = [][]string{
	{"||"},
	{"&&"},
	{"==", "!="},
	{"<", "<=", ">", ">="},
	{"+", "-"},
	{"*", "/", "%"},
}

func (p *parser) binaryOp(level int) (token, bool) {
	t := p.peek()
	if t.typ != tokPunct {
		return t, false
	}
	for _, op := range precedence[level] {
		if t.lit == op {
			return t, true
		}
	}
	return t, false
}

func (p *parser) parseBinary(level int) (Expr, error) {
	if level == len(precedence) {
		return p.parsePower()
	}
	x, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.binaryOp(level)
		if !ok {
			return x, nil
		}
		p.next()
		y, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		x = &Binary{Pos: op.pos, Op: op.lit, X: x, Y: y}
	}
}

func (p *parser) parsePower() (Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.typ == tokPunct && t.lit == "**" {
		p.next()
		if err := p.enter(t.pos); err != nil {
			return nil, err
		}
		defer p.leave()
		y, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		return &Binary{Pos: t.pos, Op: "**", X: x, Y: y}, nil
	}
	return x, nil
}

func (p *parser) parseUnary() (Expr, error) {
	t := p.peek()
	if t.typ == tokPunct && (t.lit == "-" || t.lit == "!" || t.lit == "+") {
		p.next()
		if err := p.enter(t.pos); err != nil {
			return nil, err
		}
		defer p.leave()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if t.lit == "+" {
			return x, nil
		}
		return &Unary{Pos: t.pos, Op: t.lit, X: x}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parseArgs() ([]Expr, error) {
	var args []Expr
	for !p.isPunct(")") {
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if !p.accept(",") {
			break
		}
	}
	_, err := p.expect(")")
	return args, err
}

func (p *parser) parsePostfix() (Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		switch {
		case t.typ == tokPunct && t.lit == ".":
			p.next()
			name, err := p.expectIdent("property name")
			if err != nil {
				return nil, err
			}
			if p.accept("(") {
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				x = &CallExpr{Pos: name.pos, Name: name.lit, Args: append([]Expr{x}, args...), Method: true}
			} else {
				x = &Member{Pos: name.pos, X: x, Name: name.lit}
			}
		case t.typ == tokPunct && t.lit == "[":
			p.next()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect("]"); err != nil {
				return nil, err
			}
			x = &Index{Pos: t.pos, X: x, Index: idx}
		default:
			return x, nil
		}
	}
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.next()
	switch t.typ {
	case tokInt:
		v, err := strconv.ParseInt(t.lit, 10, 64)
		if err != nil {
			return nil, p.errorAt(t.pos, "invalid integer literal %s", t.lit)
		}
		return &IntLit{Pos: t.pos, Value: v}, nil
	case tokFloat:
		v, err := strconv.ParseFloat(t.lit, 64)
		if err != nil {
			return nil, p.errorAt(t.pos, "invalid number literal %s", t.lit)
		}
		return &FloatLit{Pos: t.pos, Value: v}, nil
	case tokString:
		return &StringLit{Pos: t.pos, Value: t.lit}, nil
	case tokKeyword:
		switch t.lit {
		case "true", "false":
			return &BoolLit{Pos: t.pos, Value: t.lit == "true"}, nil
		}
	case tokIdent:
		if p.accept("(") {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &CallExpr{Pos: t.pos, Name: t.lit, Args: args}, nil
		}
		return &Ident{Pos: t.pos, Name: t.lit}, nil
	case tokPunct:
		switch t.lit {
		case "(":
			if p.accept(")") {
				return &UnitLit{Pos: t.pos}, nil
			}
			x, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(")"); err != nil {
				return nil, err
			}
			return x, nil
		case "[":
			a := &ArrayLit{Pos: t.pos}
			for !p.isPunct("]") {
				e, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				a.Elems = append(a.Elems, e)
				if !p.accept(",") {
					break
				}
			}
			if _, err := p.expect("]"); err != nil {
				return nil, err
			}
			return a, nil
		case "#{":
			return p.parseMap(t.pos)
		}
	case tokEOF:
		return nil, p.errorAt(t.pos, "unexpected end of script")
	}
	return nil, p.errorAt(t.pos, "unexpected %s", t)
}

func (p *parser) parseMap(pos Pos) (Expr, error) {
	m := &MapLit{Pos: pos}
	seen := map[string]bool{}
	for !p.isPunct("}") {
		k := p.next()
		if k.typ != tokIdent && k.typ != tokString && k.typ != tokKeyword {
			return nil, p.errorAt(k.pos, "expected property name, found %s", k)
		}
		if seen[k.lit] {
			return nil, p.errorAt(k.pos, "duplicate property '%s'", k.lit)
		}
		seen[k.lit] = true
		if _, err := p.expect(":"); err != nil {
			return nil, err
		}
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		m.Keys = append(m.Keys, k.lit)
		m.Values = append(m.Values, v)
		if !p.accept(",") {
			break
		}
	}
	if _, err := p.expect("}"); err != nil {
		return nil, err
	}
	return m, nil
}
