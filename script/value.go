// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package script

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"cogentcore.org/core/base/keylist"
)

// Value is a script value. The core value types are nil (the unit
// value), bool, int64, float64, string, *[Array] and *[Map]; host
// functions may produce values of any other type, which scripts can
// pass around and combine through registered operators.
type Value = any

// Array is a growable list of values. Arrays are shared by reference.
type Array struct {
	Elems []Value
}

// NewArray returns a new [Array] of the given values.
func NewArray(vs ...Value) *Array {
	return &Array{Elems: vs}
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.Elems) }

// Map is an object map from property names to values, kept in
// insertion order. Maps are shared by reference.
type Map struct {
	keylist.List[string, Value]
}

// NewMap returns a new empty [Map].
func NewMap() *Map {
	return &Map{}
}

// Get returns the value for the given key and whether it exists.
func (m *Map) Get(key string) (Value, bool) {
	return m.AtTry(key)
}

// Clone returns a deep copy of a value: arrays and maps are copied
// recursively, so that mutating the copy never affects the original.
// Other values are immutable and returned as is.
func Clone(v Value) Value {
	switch v := v.(type) {
	case *Array:
		return v.Clone()
	case *Map:
		return v.Clone()
	}
	return v
}

// Clone returns a deep copy of the array.
func (a *Array) Clone() *Array {
	c := &Array{Elems: make([]Value, len(a.Elems))}
	for i, e := range a.Elems {
		c.Elems[i] = Clone(e)
	}
	return c
}

// Clone returns a deep copy of the map, in the same key order.
func (m *Map) Clone() *Map {
	c := NewMap()
	for i, k := range m.Keys {
		c.Set(k, Clone(m.Values[i]))
	}
	return c
}

// Stringer is implemented by host values that have a custom
// display form in scripts.
type Stringer interface {
	ScriptString() string
}

// TypeName returns the script-visible name of the type of the value.
func TypeName(v Value) string {
	switch v := v.(type) {
	case nil:
		return "()"
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case *Array:
		return "array"
	case *Map:
		return "map"
	case interface{ TypeName() string }:
		return v.TypeName()
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// Format returns the display form of a value, as used by print
// and to_string. Strings are not quoted at the top level.
func Format(v Value) string {
	if s, ok := v.(string); ok {
		return s
	}
	var b strings.Builder
	format(&b, v)
	return b.String()
}

// FormatFloat formats a float so that it always reads as a float.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnNI") {
		s += ".0"
	}
	return s
}

func format(b *strings.Builder, v Value) {
	switch v := v.(type) {
	case nil:
		b.WriteString("()")
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case int64:
		b.WriteString(strconv.FormatInt(v, 10))
	case float64:
		b.WriteString(FormatFloat(v))
	case string:
		b.WriteString(strconv.Quote(v))
	case *Array:
		b.WriteString("[")
		for i, e := range v.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			format(b, e)
		}
		b.WriteString("]")
	case *Map:
		b.WriteString("#{")
		for i, k := range v.Keys {
			if i > 0 {
				b.WriteString(", ")
			}
			if IsIdentifier(k) {
				b.WriteString(k)
			} else {
				b.WriteString(strconv.Quote(k))
			}
			b.WriteString(": ")
			format(b, v.Values[i])
		}
		b.WriteString("}")
	case Stringer:
		b.WriteString(v.ScriptString())
	case fmt.Stringer:
		b.WriteString(v.String())
	default:
		fmt.Fprintf(b, "%v", v)
	}
}

// Truthy returns the boolean value of a condition, which must be a bool.
func Truthy(v Value) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expected a bool condition, found %s", TypeName(v))
	}
	return b, nil
}

// ToFloat converts an int or float value to float64.
func ToFloat(v Value) (float64, bool) {
	switch v := v.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// ToInt converts an int value, or a float with an integral value,
// to int64.
func ToInt(v Value) (int64, bool) {
	switch v := v.(type) {
	case int64:
		return v, true
	case float64:
		if float64(int64(v)) == v {
			return int64(v), true
		}
	}
	return 0, false
}

func isCore(v Value) bool {
	switch v.(type) {
	case nil, bool, int64, float64, string, *Array, *Map:
		return true
	}
	return false
}

// Equal returns whether two values are equal. Numbers compare by
// value across int and float; arrays and maps compare element-wise;
// other values compare with ==.
func Equal(a, b Value) bool {
	if fa, ok := ToFloat(a); ok {
		fb, ok := ToFloat(b)
		return ok && fa == fb
	}
	switch a := a.(type) {
	case *Array:
		b, ok := b.(*Array)
		if !ok || len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Equal(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case *Map:
		b, ok := b.(*Map)
		if !ok || a.Len() != b.Len() {
			return false
		}
		for i, k := range a.Keys {
			bv, ok := b.Get(k)
			if !ok || !Equal(a.Values[i], bv) {
				return false
			}
		}
		return true
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
