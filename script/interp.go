// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package script

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// IntRange is the half-open integer range produced by a..b and a..=b.
type IntRange struct {
	Lo, Hi int64
}

func (r IntRange) ScriptString() string {
	return fmt.Sprintf("%d..%d", r.Lo, r.Hi)
}

// Getter is implemented by host values with script-visible properties.
type Getter interface {
	ScriptGet(name string) (Value, bool)
}

type signal int

const (
	sigBreak signal = iota
	sigContinue
)

func (s signal) Error() string {
	if s == sigBreak {
		return "'break' outside of a loop"
	}
	return "'continue' outside of a loop"
}

type returnSignal struct {
	value Value
}

func (r *returnSignal) Error() string { return "'return' outside of a function" }

type interp struct {
	eng    *Engine
	ast    *AST
	global *Scope

	// base is the number of global bindings visible to functions
	base  int
	ops   int
	depth int
	line  int
}

func (in *interp) errorf(p Pos, format string, args ...any) error {
	return &EvalError{Line: p.Line, Msg: fmt.Sprintf(format, args...)}
}

// wrap converts control flow escaping the script into errors.
func (in *interp) wrap(err error) error {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee
	}
	return &EvalError{Line: in.line, Msg: err.Error(), Err: err}
}

func (in *interp) step(p Pos) error {
	in.ops++
	in.line = p.Line
	if in.eng.MaxOperations > 0 && in.ops > in.eng.MaxOperations {
		return &EvalError{Line: p.Line, Msg: ErrTooManyOperations.Error(), Err: ErrTooManyOperations}
	}
	return nil
}

// execTop runs the top-level statements, returning the value of
// a trailing expression statement.
func (in *interp) execTop(scope *Scope, stmts []Stmt) (Value, error) {
	in.base = scope.Len()
	var last Value
	for i, s := range stmts {
		if es, ok := s.(*ExprStmt); ok && i == len(stmts)-1 {
			v, err := in.eval(scope, es.X)
			if err != nil {
				return nil, err
			}
			last = v
			continue
		}
		if err := in.exec(scope, s); err != nil {
			var rs *returnSignal
			if errors.As(err, &rs) {
				return rs.value, nil
			}
			return nil, err
		}
	}
	return last, nil
}

func (in *interp) execBlock(scope *Scope, b *Block) error {
	n := scope.Len()
	defer scope.rewind(n)
	for _, s := range b.Stmts {
		if err := in.exec(scope, s); err != nil {
			return err
		}
	}
	return nil
}

func (in *interp) exec(scope *Scope, s Stmt) error {
	if err := in.step(s.Position()); err != nil {
		return err
	}
	switch s := s.(type) {
	case *Let:
		var v Value
		if s.Value != nil {
			var err error
			if v, err = in.eval(scope, s.Value); err != nil {
				return err
			}
		}
		if s.Const {
			scope.PushConstant(s.Name, v)
		} else {
			scope.Push(s.Name, v)
		}
		return nil
	case *Assign:
		return in.assign(scope, s)
	case *ExprStmt:
		_, err := in.eval(scope, s.X)
		return err
	case *Block:
		return in.execBlock(scope, s)
	case *If:
		c, err := in.cond(scope, s.Cond)
		if err != nil {
			return err
		}
		if c {
			return in.execBlock(scope, s.Then)
		}
		if s.Else != nil {
			return in.exec(scope, s.Else)
		}
		return nil
	case *While:
		for {
			c, err := in.cond(scope, s.Cond)
			if err != nil || !c {
				return err
			}
			if brk, err := in.loopBody(scope, s.Body); brk || err != nil {
				return err
			}
		}
	case *Loop:
		for {
			if brk, err := in.loopBody(scope, s.Body); brk || err != nil {
				return err
			}
		}
	case *For:
		return in.execFor(scope, s)
	case *Break:
		return sigBreak
	case *Continue:
		return sigContinue
	case *Return:
		var v Value
		if s.Value != nil {
			var err error
			if v, err = in.eval(scope, s.Value); err != nil {
				return err
			}
		}
		return &returnSignal{value: v}
	}
	return in.errorf(s.Position(), "unsupported statement %T", s)
}

// loopBody runs one loop iteration, reporting whether to stop.
func (in *interp) loopBody(scope *Scope, b *Block) (bool, error) {
	if err := in.step(b.Pos); err != nil {
		return true, err
	}
	err := in.execBlock(scope, b)
	switch err {
	case nil, sigContinue:
		return false, nil
	case sigBreak:
		return true, nil
	}
	return true, err
}

func (in *interp) execFor(scope *Scope, s *For) error {
	it, err := in.eval(scope, s.Iter)
	if err != nil {
		return err
	}
	each := func(v Value) (bool, error) {
		n := scope.Len()
		scope.Push(s.Var, v)
		brk, err := in.loopBody(scope, s.Body)
		scope.rewind(n)
		return brk, err
	}
	switch it := it.(type) {
	case IntRange:
		for i := it.Lo; i < it.Hi; i++ {
			if brk, err := each(i); brk || err != nil {
				return err
			}
		}
	case *Array:
		elems := append([]Value(nil), it.Elems...)
		for _, v := range elems {
			if brk, err := each(v); brk || err != nil {
				return err
			}
		}
	case string:
		for _, r := range it {
			if brk, err := each(string(r)); brk || err != nil {
				return err
			}
		}
	case *Map:
		keys := append([]string(nil), it.Keys...)
		for _, k := range keys {
			if brk, err := each(k); brk || err != nil {
				return err
			}
		}
	default:
		return in.errorf(s.Iter.Position(), "cannot iterate over %s", TypeName(it))
	}
	return nil
}

func (in *interp) cond(scope *Scope, e Expr) (bool, error) {
	v, err := in.eval(scope, e)
	if err != nil {
		return false, err
	}
	b, err := Truthy(v)
	if err != nil {
		return false, in.errorf(e.Position(), "%v", err)
	}
	return b, nil
}

func (in *interp) assign(scope *Scope, s *Assign) error {
	v, err := in.eval(scope, s.Value)
	if err != nil {
		return err
	}
	compound := func(old Value) (Value, error) {
		if s.Op == "=" {
			return v, nil
		}
		return in.binop(s.Pos, strings.TrimSuffix(s.Op, "="), old, v)
	}
	switch t := s.Target.(type) {
	case *Ident:
		b := scope.find(t.Name)
		if b == nil {
			return in.errorf(t.Pos, "variable '%s' not found", t.Name)
		}
		if b.cnst {
			return in.errorf(t.Pos, "cannot assign to constant '%s'", t.Name)
		}
		nv, err := compound(b.value)
		if err != nil {
			return err
		}
		b.value = nv
		return nil
	case *Member:
		obj, err := in.eval(scope, t.X)
		if err != nil {
			return err
		}
		m, ok := obj.(*Map)
		if !ok {
			return in.errorf(t.Pos, "cannot set property '%s' of %s", t.Name, TypeName(obj))
		}
		old, _ := m.Get(t.Name)
		nv, err := compound(old)
		if err != nil {
			return err
		}
		m.Set(t.Name, nv)
		return nil
	case *Index:
		obj, err := in.eval(scope, t.X)
		if err != nil {
			return err
		}
		idx, err := in.eval(scope, t.Index)
		if err != nil {
			return err
		}
		switch obj := obj.(type) {
		case *Array:
			i, err := in.arrayIndex(t.Pos, obj, idx)
			if err != nil {
				return err
			}
			nv, err := compound(obj.Elems[i])
			if err != nil {
				return err
			}
			obj.Elems[i] = nv
			return nil
		case *Map:
			k, ok := idx.(string)
			if !ok {
				return in.errorf(t.Pos, "map index must be a string, found %s", TypeName(idx))
			}
			old, _ := obj.Get(k)
			nv, err := compound(old)
			if err != nil {
				return err
			}
			obj.Set(k, nv)
			return nil
		}
		return in.errorf(t.Pos, "cannot index into %s", TypeName(obj))
	}
	return in.errorf(s.Pos, "cannot assign to this expression")
}

func (in *interp) arrayIndex(p Pos, a *Array, idx Value) (int, error) {
	i, ok := idx.(int64)
	if !ok {
		return 0, in.errorf(p, "array index must be an int, found %s", TypeName(idx))
	}
	n := int64(len(a.Elems))
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, in.errorf(p, "array index %d out of bounds for length %d", idx, n)
	}
	return int(i), nil
}

func (in *interp) eval(scope *Scope, e Expr) (Value, error) {
	if err := in.step(e.Position()); err != nil {
		return nil, err
	}
	switch e := e.(type) {
	case *IntLit:
		return e.Value, nil
	case *FloatLit:
		return e.Value, nil
	case *StringLit:
		return e.Value, nil
	case *BoolLit:
		return e.Value, nil
	case *UnitLit:
		return nil, nil
	case *Ident:
		v, ok := scope.Get(e.Name)
		if !ok {
			return nil, in.errorf(e.Pos, "variable '%s' not found", e.Name)
		}
		return v, nil
	case *ArrayLit:
		a := &Array{Elems: make([]Value, len(e.Elems))}
		for i, x := range e.Elems {
			v, err := in.eval(scope, x)
			if err != nil {
				return nil, err
			}
			a.Elems[i] = v
		}
		return a, nil
	case *MapLit:
		m := NewMap()
		for i, k := range e.Keys {
			v, err := in.eval(scope, e.Values[i])
			if err != nil {
				return nil, err
			}
			m.Set(k, v)
		}
		return m, nil
	case *Unary:
		x, err := in.eval(scope, e.X)
		if err != nil {
			return nil, err
		}
		return in.unop(e.Pos, e.Op, x)
	case *Binary:
		return in.evalBinary(scope, e)
	case *Range:
		lo, err := in.eval(scope, e.Lo)
		if err != nil {
			return nil, err
		}
		hi, err := in.eval(scope, e.Hi)
		if err != nil {
			return nil, err
		}
		l, ok1 := lo.(int64)
		h, ok2 := hi.(int64)
		if !ok1 || !ok2 {
			return nil, in.errorf(e.Pos, "range bounds must be ints, found %s and %s", TypeName(lo), TypeName(hi))
		}
		if e.Inclusive {
			h++
		}
		return IntRange{Lo: l, Hi: h}, nil
	case *CallExpr:
		return in.call(scope, e)
	case *Member:
		x, err := in.eval(scope, e.X)
		if err != nil {
			return nil, err
		}
		switch x := x.(type) {
		case *Map:
			if v, ok := x.Get(e.Name); ok {
				return v, nil
			}
			return nil, in.errorf(e.Pos, "property '%s' not found", e.Name)
		case Getter:
			if v, ok := x.ScriptGet(e.Name); ok {
				return v, nil
			}
		}
		return nil, in.errorf(e.Pos, "%s has no property '%s'", TypeName(x), e.Name)
	case *Index:
		return in.evalIndex(scope, e)
	}
	return nil, in.errorf(e.Position(), "unsupported expression %T", e)
}

func (in *interp) evalIndex(scope *Scope, e *Index) (Value, error) {
	x, err := in.eval(scope, e.X)
	if err != nil {
		return nil, err
	}
	idx, err := in.eval(scope, e.Index)
	if err != nil {
		return nil, err
	}
	switch x := x.(type) {
	case *Array:
		i, err := in.arrayIndex(e.Pos, x, idx)
		if err != nil {
			return nil, err
		}
		return x.Elems[i], nil
	case *Map:
		k, ok := idx.(string)
		if !ok {
			return nil, in.errorf(e.Pos, "map index must be a string, found %s", TypeName(idx))
		}
		if v, ok := x.Get(k); ok {
			return v, nil
		}
		return nil, in.errorf(e.Pos, "property '%s' not found", k)
	case string:
		rs := []rune(x)
		i, err := in.arrayIndex(e.Pos, &Array{Elems: make([]Value, len(rs))}, idx)
		if err != nil {
			return nil, err
		}
		return string(rs[i]), nil
	}
	return nil, in.errorf(e.Pos, "cannot index into %s", TypeName(x))
}

func (in *interp) call(scope *Scope, e *CallExpr) (Value, error) {
	args := make([]Value, len(e.Args))
	for i, a := range e.Args {
		v, err := in.eval(scope, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	in.line = e.Pos.Line
	if fn, ok := in.ast.Funcs[e.Name]; ok && len(fn.Params) == len(args) {
		return in.callScript(e, fn, args)
	}
	f := in.eng.funcs[e.Name]
	if f == nil {
		if fn, ok := in.ast.Funcs[e.Name]; ok {
			return nil, in.errorf(e.Pos, "function '%s' expects %d arguments, found %d", e.Name, len(fn.Params), len(args))
		}
		return nil, in.errorf(e.Pos, "function '%s' not found", e.Name)
	}
	v, err := f(&Call{Engine: in.eng, Name: e.Name, Line: e.Pos.Line}, args)
	if err != nil {
		var ee *EvalError
		if errors.As(err, &ee) {
			return nil, err
		}
		return nil, &EvalError{Line: e.Pos.Line, Msg: fmt.Sprintf("%s: %v", e.Name, err), Err: err}
	}
	return v, nil
}

func (in *interp) callScript(e *CallExpr, fn *FnDecl, args []Value) (Value, error) {
	if in.eng.MaxCallDepth > 0 && in.depth >= in.eng.MaxCallDepth {
		return nil, in.errorf(e.Pos, "stack overflow calling '%s'", fn.Name)
	}
	in.depth++
	defer func() { in.depth-- }()

	frame := &Scope{parent: &Scope{parent: in.global.parent, vars: in.global.vars[:in.base:in.base]}}
	for i, p := range fn.Params {
		frame.Push(p, args[i])
	}
	err := in.execBlock(frame, fn.Body)
	var rs *returnSignal
	switch {
	case err == nil:
		return nil, nil
	case errors.As(err, &rs):
		return rs.value, nil
	case err == sigBreak || err == sigContinue:
		return nil, in.errorf(e.Pos, "%v in function '%s'", err, fn.Name)
	}
	return nil, err
}

func (in *interp) evalBinary(scope *Scope, e *Binary) (Value, error) {
	x, err := in.eval(scope, e.X)
	if err != nil {
		return nil, err
	}
	if e.Op == "&&" || e.Op == "||" {
		a, ok := x.(bool)
		if !ok {
			return nil, in.errorf(e.Pos, "'%s' expects bools, found %s", e.Op, TypeName(x))
		}
		if (e.Op == "&&") != a {
			return a, nil
		}
		y, err := in.eval(scope, e.Y)
		if err != nil {
			return nil, err
		}
		b, ok := y.(bool)
		if !ok {
			return nil, in.errorf(e.Pos, "'%s' expects bools, found %s", e.Op, TypeName(y))
		}
		return b, nil
	}
	y, err := in.eval(scope, e.Y)
	if err != nil {
		return nil, err
	}
	return in.binop(e.Pos, e.Op, x, y)
}

func (in *interp) unop(p Pos, op string, x Value) (Value, error) {
	switch x := x.(type) {
	case int64:
		if op == "-" {
			return -x, nil
		}
	case float64:
		if op == "-" {
			return -x, nil
		}
	case bool:
		if op == "!" {
			return !x, nil
		}
	}
	for _, f := range in.eng.unary {
		v, ok, err := f(op, x)
		if err != nil {
			return nil, in.errorf(p, "%v", err)
		}
		if ok {
			return v, nil
		}
	}
	return nil, in.errorf(p, "cannot apply '%s' to %s", op, TypeName(x))
}

func (in *interp) binop(p Pos, op string, a, b Value) (Value, error) {
	if !isCore(a) || !isCore(b) {
		for _, f := range in.eng.binary {
			v, ok, err := f(op, a, b)
			if err != nil {
				return nil, in.errorf(p, "%v", err)
			}
			if ok {
				return v, nil
			}
		}
	}
	switch op {
	case "==":
		return Equal(a, b), nil
	case "!=":
		return !Equal(a, b), nil
	}
	if ia, ok := a.(int64); ok {
		if ib, ok := b.(int64); ok {
			return in.intOp(p, op, ia, ib)
		}
	}
	if fa, ok := ToFloat(a); ok {
		if fb, ok := ToFloat(b); ok {
			v, err := floatOp(op, fa, fb)
			if err != nil {
				return nil, in.errorf(p, "%v", err)
			}
			return v, nil
		}
	}
	sa, aStr := a.(string)
	sb, bStr := b.(string)
	switch {
	case aStr && bStr && op != "+":
		v, err := stringCompare(op, sa, sb)
		if err != nil {
			return nil, in.errorf(p, "%v", err)
		}
		return v, nil
	case (aStr || bStr) && op == "+":
		return Format(a) + Format(b), nil
	}
	if aa, ok := a.(*Array); ok && op == "+" {
		if ab, ok := b.(*Array); ok {
			elems := append(append([]Value(nil), aa.Elems...), ab.Elems...)
			return &Array{Elems: elems}, nil
		}
	}
	return nil, in.errorf(p, "cannot apply '%s' to %s and %s", op, TypeName(a), TypeName(b))
}

func (in *interp) intOp(p Pos, op string, a, b int64) (Value, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/", "%":
		if b == 0 {
			return nil, in.errorf(p, "division by zero")
		}
		if op == "/" {
			return a / b, nil
		}
		return a % b, nil
	case "**":
		if b < 0 {
			return math.Pow(float64(a), float64(b)), nil
		}
		r := int64(1)
		for range b {
			r *= a
		}
		return r, nil
	}
	v, err := floatOp(op, float64(a), float64(b))
	if err != nil {
		return nil, in.errorf(p, "%v", err)
	}
	return v, nil
}

func floatOp(op string, a, b float64) (Value, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		return a / b, nil
	case "%":
		return math.Mod(a, b), nil
	case "**":
		return math.Pow(a, b), nil
	case "<":
		return a < b, nil
	case "<=":
		return a <= b, nil
	case ">":
		return a > b, nil
	case ">=":
		return a >= b, nil
	}
	return nil, fmt.Errorf("cannot apply '%s' to numbers", op)
}

func stringCompare(op string, a, b string) (Value, error) {
	switch op {
	case "<":
		return a < b, nil
	case "<=":
		return a <= b, nil
	case ">":
		return a > b, nil
	case ">=":
		return a >= b, nil
	}
	return nil, fmt.Errorf("cannot apply '%s' to strings", op)
}
