// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package script

import "slices"

type binding struct {
	name  string
	value Value
	cnst  bool
}

// Scope is a stack of named variable bindings. Later bindings shadow
// earlier ones with the same name. A scope may have a parent, which
// is searched after the scope's own bindings.
type Scope struct {
	parent *Scope
	vars   []binding
}

// NewScope returns a new empty [Scope].
func NewScope() *Scope {
	return &Scope{}
}

// child returns a new scope whose parent is this one.
func (s *Scope) child() *Scope {
	return &Scope{parent: s}
}

// Push adds a variable binding.
func (s *Scope) Push(name string, v Value) {
	s.vars = append(s.vars, binding{name: name, value: v})
}

// PushConstant adds a binding that scripts cannot reassign.
func (s *Scope) PushConstant(name string, v Value) {
	s.vars = append(s.vars, binding{name: name, value: v, cnst: true})
}

// Get returns the value of the innermost binding with the given name.
func (s *Scope) Get(name string) (Value, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		for i := len(sc.vars) - 1; i >= 0; i-- {
			if sc.vars[i].name == name {
				return sc.vars[i].value, true
			}
		}
	}
	return nil, false
}

// find returns the innermost binding with the given name.
func (s *Scope) find(name string) *binding {
	for sc := s; sc != nil; sc = sc.parent {
		for i := len(sc.vars) - 1; i >= 0; i-- {
			if sc.vars[i].name == name {
				return &sc.vars[i]
			}
		}
	}
	return nil
}

// Len returns the number of bindings in this scope,
// not counting its parents.
func (s *Scope) Len() int { return len(s.vars) }

// Names returns the names of the bindings in this scope in order,
// not counting its parents.
func (s *Scope) Names() []string {
	names := make([]string, len(s.vars))
	for i, v := range s.vars {
		names[i] = v.name
	}
	return names
}

// rewind drops bindings pushed after the scope had length n.
func (s *Scope) rewind(n int) {
	clear(s.vars[n:])
	s.vars = s.vars[:n]
}

// Clone returns a copy of the scope; bindings added to either copy
// are not visible in the other. Arrays and maps are deep copied with
// [Clone], so that mutating them through one scope does not change
// the other. Parent scopes are shared.
func (s *Scope) Clone() *Scope {
	vars := slices.Clone(s.vars)
	for i := range vars {
		vars[i].value = Clone(vars[i].value)
	}
	return &Scope{parent: s.parent, vars: vars}
}
