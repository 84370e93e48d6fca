// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package script

// Node is a node in a script syntax tree.
type Node interface {
	Position() Pos
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// AST is a compiled script: its top-level statements
// and the functions it declares.
type AST struct {
	Stmts []Stmt
	Funcs map[string]*FnDecl
}

type (
	// IntLit is an integer literal.
	IntLit struct {
		Pos   Pos
		Value int64
	}

	// FloatLit is a floating point literal.
	FloatLit struct {
		Pos   Pos
		Value float64
	}

	// StringLit is a string literal.
	StringLit struct {
		Pos   Pos
		Value string
	}

	// BoolLit is true or false.
	BoolLit struct {
		Pos   Pos
		Value bool
	}

	// UnitLit is the empty value ().
	UnitLit struct {
		Pos Pos
	}

	// Ident is a variable reference.
	Ident struct {
		Pos  Pos
		Name string
	}

	// ArrayLit is an array literal [a, b, ...].
	ArrayLit struct {
		Pos   Pos
		Elems []Expr
	}

	// MapLit is an object map literal #{k: v, ...}.
	MapLit struct {
		Pos    Pos
		Keys   []string
		Values []Expr
	}

	// Unary is a prefix operator expression.
	Unary struct {
		Pos Pos
		Op  string
		X   Expr
	}

	// Binary is an infix operator expression, including && and ||.
	Binary struct {
		Pos  Pos
		Op   string
		X, Y Expr
	}

	// Range is a range expression lo..hi or lo..=hi.
	Range struct {
		Pos       Pos
		Lo, Hi    Expr
		Inclusive bool
	}

	// CallExpr is a function call. Method calls a.f(b) are
	// represented as calls f(a, b) with Method set.
	CallExpr struct {
		Pos    Pos
		Name   string
		Args   []Expr
		Method bool
	}

	// Member is a property access x.name.
	Member struct {
		Pos  Pos
		X    Expr
		Name string
	}

	// Index is an index expression x[i].
	Index struct {
		Pos   Pos
		X     Expr
		Index Expr
	}
)

type (
	// Let declares a variable or constant.
	Let struct {
		Pos   Pos
		Name  string
		Const bool
		Value Expr
	}

	// Assign assigns to a variable, member or index, with an
	// optional compound operator such as "+=".
	Assign struct {
		Pos    Pos
		Target Expr
		Op     string
		Value  Expr
	}

	// ExprStmt is an expression evaluated for its effects.
	ExprStmt struct {
		X Expr
	}

	// Block is a braced list of statements with its own scope.
	Block struct {
		Pos   Pos
		Stmts []Stmt
	}

	// If is a conditional; Else is nil, a *Block or an *If.
	If struct {
		Pos  Pos
		Cond Expr
		Then *Block
		Else Stmt
	}

	// While loops while a condition holds.
	While struct {
		Pos  Pos
		Cond Expr
		Body *Block
	}

	// Loop loops until a break.
	Loop struct {
		Pos  Pos
		Body *Block
	}

	// For iterates over an array, range, string or map keys.
	For struct {
		Pos  Pos
		Var  string
		Iter Expr
		Body *Block
	}

	// Break exits the innermost loop.
	Break struct {
		Pos Pos
	}

	// Continue skips to the next iteration of the innermost loop.
	Continue struct {
		Pos Pos
	}

	// Return returns from a function, or ends the script.
	Return struct {
		Pos   Pos
		Value Expr
	}

	// FnDecl declares a function.
	FnDecl struct {
		Pos    Pos
		Name   string
		Params []string
		Body   *Block
	}
)

func (n *IntLit) Position() Pos    { return n.Pos }
func (n *FloatLit) Position() Pos  { return n.Pos }
func (n *StringLit) Position() Pos { return n.Pos }
func (n *BoolLit) Position() Pos   { return n.Pos }
func (n *UnitLit) Position() Pos   { return n.Pos }
func (n *Ident) Position() Pos     { return n.Pos }
func (n *ArrayLit) Position() Pos  { return n.Pos }
func (n *MapLit) Position() Pos    { return n.Pos }
func (n *Unary) Position() Pos     { return n.Pos }
func (n *Binary) Position() Pos    { return n.Pos }
func (n *Range) Position() Pos     { return n.Pos }
func (n *CallExpr) Position() Pos  { return n.Pos }
func (n *Member) Position() Pos    { return n.Pos }
func (n *Index) Position() Pos     { return n.Pos }
func (n *Let) Position() Pos       { return n.Pos }
func (n *Assign) Position() Pos    { return n.Pos }
func (n *ExprStmt) Position() Pos  { return n.X.Position() }
func (n *Block) Position() Pos     { return n.Pos }
func (n *If) Position() Pos        { return n.Pos }
func (n *While) Position() Pos     { return n.Pos }
func (n *Loop) Position() Pos      { return n.Pos }
func (n *For) Position() Pos       { return n.Pos }
func (n *Break) Position() Pos     { return n.Pos }
func (n *Continue) Position() Pos  { return n.Pos }
func (n *Return) Position() Pos    { return n.Pos }
func (n *FnDecl) Position() Pos    { return n.Pos }

func (*IntLit) exprNode()    {}
func (*FloatLit) exprNode()  {}
func (*StringLit) exprNode() {}
func (*BoolLit) exprNode()   {}
func (*UnitLit) exprNode()   {}
func (*Ident) exprNode()     {}
func (*ArrayLit) exprNode()  {}
func (*MapLit) exprNode()    {}
func (*Unary) exprNode()     {}
func (*Binary) exprNode()    {}
func (*Range) exprNode()     {}
func (*CallExpr) exprNode()  {}
func (*Member) exprNode()    {}
func (*Index) exprNode()     {}

func (*Let) stmtNode()      {}
func (*Assign) stmtNode()   {}
func (*ExprStmt) stmtNode() {}
func (*Block) stmtNode()    {}
func (*If) stmtNode()       {}
func (*While) stmtNode()    {}
func (*Loop) stmtNode()     {}
func (*For) stmtNode()      {}
func (*Break) stmtNode()    {}
func (*Continue) stmtNode() {}
func (*Return) stmtNode()   {}
func (*FnDecl) stmtNode()   {}
