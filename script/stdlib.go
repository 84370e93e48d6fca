// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package script

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ArgCount returns an error unless there are exactly n arguments.
func ArgCount(c *Call, args []Value, n int) error {
	if len(args) != n {
		return c.Errorf("function '%s' expects %d argument(s), found %d", c.Name, n, len(args))
	}
	return nil
}

// Float returns argument i as a float64, accepting ints.
func Float(c *Call, args []Value, i int) (float64, error) {
	f, ok := ToFloat(args[i])
	if !ok {
		return 0, c.Errorf("function '%s' expects a number for argument %d, found %s", c.Name, i+1, TypeName(args[i]))
	}
	return f, nil
}

func mathFunc(f func(float64) float64) Func {
	return func(c *Call, args []Value) (Value, error) {
		if err := ArgCount(c, args, 1); err != nil {
			return nil, err
		}
		v, err := Float(c, args, 0)
		if err != nil {
			return nil, err
		}
		return f(v), nil
	}
}

func mathFunc2(f func(a, b float64) float64) Func {
	return func(c *Call, args []Value) (Value, error) {
		if err := ArgCount(c, args, 2); err != nil {
			return nil, err
		}
		a, err := Float(c, args, 0)
		if err != nil {
			return nil, err
		}
		b, err := Float(c, args, 1)
		if err != nil {
			return nil, err
		}
		return f(a, b), nil
	}
}

func array(c *Call, args []Value, i int) (*Array, error) {
	a, ok := args[i].(*Array)
	if !ok {
		return nil, c.Errorf("function '%s' expects an array, found %s", c.Name, TypeName(args[i]))
	}
	return a, nil
}

func registerStdlib(e *Engine) {
	e.Register("len", func(c *Call, args []Value) (Value, error) {
		if err := ArgCount(c, args, 1); err != nil {
			return nil, err
		}
		switch v := args[0].(type) {
		case *Array:
			return int64(len(v.Elems)), nil
		case *Map:
			return int64(v.Len()), nil
		case string:
			return int64(len([]rune(v))), nil
		}
		return nil, c.Errorf("cannot take the length of %s", TypeName(args[0]))
	})
	e.Register("is_empty", func(c *Call, args []Value) (Value, error) {
		n, err := e.funcs["len"](c, args)
		if err != nil {
			return nil, err
		}
		return n.(int64) == 0, nil
	})
	e.Register("push", func(c *Call, args []Value) (Value, error) {
		if err := ArgCount(c, args, 2); err != nil {
			return nil, err
		}
		a, err := array(c, args, 0)
		if err != nil {
			return nil, err
		}
		a.Elems = append(a.Elems, args[1])
		return nil, nil
	})
	e.Register("pop", func(c *Call, args []Value) (Value, error) {
		if err := ArgCount(c, args, 1); err != nil {
			return nil, err
		}
		a, err := array(c, args, 0)
		if err != nil {
			return nil, err
		}
		if len(a.Elems) == 0 {
			return nil, nil
		}
		v := a.Elems[len(a.Elems)-1]
		a.Elems = a.Elems[:len(a.Elems)-1]
		return v, nil
	})
	e.Register("remove", func(c *Call, args []Value) (Value, error) {
		if err := ArgCount(c, args, 2); err != nil {
			return nil, err
		}
		switch v := args[0].(type) {
		case *Array:
			i, ok := args[1].(int64)
			if !ok || i < 0 || int(i) >= len(v.Elems) {
				return nil, c.Errorf("invalid array index %s", Format(args[1]))
			}
			r := v.Elems[i]
			v.Elems = slices.Delete(v.Elems, int(i), int(i)+1)
			return r, nil
		case *Map:
			k, ok := args[1].(string)
			if !ok {
				return nil, c.Errorf("map keys must be strings")
			}
			r, _ := v.Get(k)
			v.DeleteByKey(k)
			return r, nil
		}
		return nil, c.Errorf("cannot remove from %s", TypeName(args[0]))
	})
	e.Register("contains", func(c *Call, args []Value) (Value, error) {
		if err := ArgCount(c, args, 2); err != nil {
			return nil, err
		}
		switch v := args[0].(type) {
		case *Array:
			return slices.ContainsFunc(v.Elems, func(x Value) bool { return Equal(x, args[1]) }), nil
		case *Map:
			k, _ := args[1].(string)
			_, ok := v.Get(k)
			return ok, nil
		case string:
			return strings.Contains(v, Format(args[1])), nil
		}
		return nil, c.Errorf("cannot search in %s", TypeName(args[0]))
	})
	e.Register("keys", func(c *Call, args []Value) (Value, error) {
		if err := ArgCount(c, args, 1); err != nil {
			return nil, err
		}
		m, ok := args[0].(*Map)
		if !ok {
			return nil, c.Errorf("function 'keys' expects a map, found %s", TypeName(args[0]))
		}
		a := &Array{}
		for _, k := range m.Keys {
			a.Elems = append(a.Elems, k)
		}
		return a, nil
	})
	e.Register("values", func(c *Call, args []Value) (Value, error) {
		if err := ArgCount(c, args, 1); err != nil {
			return nil, err
		}
		m, ok := args[0].(*Map)
		if !ok {
			return nil, c.Errorf("function 'values' expects a map, found %s", TypeName(args[0]))
		}
		return &Array{Elems: slices.Clone(m.Values)}, nil
	})
	e.Register("to_string", func(c *Call, args []Value) (Value, error) {
		if err := ArgCount(c, args, 1); err != nil {
			return nil, err
		}
		return Format(args[0]), nil
	})
	e.Register("type_of", func(c *Call, args []Value) (Value, error) {
		if err := ArgCount(c, args, 1); err != nil {
			return nil, err
		}
		return TypeName(args[0]), nil
	})
	e.Register("to_float", func(c *Call, args []Value) (Value, error) {
		if err := ArgCount(c, args, 1); err != nil {
			return nil, err
		}
		if s, ok := args[0].(string); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, c.Errorf("cannot parse %q as a float", s)
			}
			return f, nil
		}
		return Float(c, args, 0)
	})
	e.Register("to_int", func(c *Call, args []Value) (Value, error) {
		if err := ArgCount(c, args, 1); err != nil {
			return nil, err
		}
		switch v := args[0].(type) {
		case int64:
			return v, nil
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, c.Errorf("cannot convert %v to an int", v)
			}
			return int64(v), nil
		case string:
			i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, c.Errorf("cannot parse %q as an int", v)
			}
			return i, nil
		}
		return nil, c.Errorf("cannot convert %s to an int", TypeName(args[0]))
	})
	e.Register("abs", func(c *Call, args []Value) (Value, error) {
		if err := ArgCount(c, args, 1); err != nil {
			return nil, err
		}
		if i, ok := args[0].(int64); ok {
			if i < 0 {
				return -i, nil
			}
			return i, nil
		}
		return mathFunc(math.Abs)(c, args)
	})
	for name, f := range map[string]func(float64) float64{
		"sqrt": math.Sqrt, "sin": math.Sin, "cos": math.Cos, "tan": math.Tan,
		"asin": math.Asin, "acos": math.Acos, "atan": math.Atan,
		"exp": math.Exp, "ln": math.Log, "floor": math.Floor,
		"ceil": math.Ceil, "round": math.Round, "square": func(x float64) float64 { return x * x },
	} {
		e.Register(name, mathFunc(f))
	}
	e.Register("atan2", mathFunc2(math.Atan2))
	e.Register("pow", mathFunc2(math.Pow))
	minmax := func(pick func(a, b float64) float64, ipick func(a, b int64) int64) Func {
		return func(c *Call, args []Value) (Value, error) {
			if err := ArgCount(c, args, 2); err != nil {
				return nil, err
			}
			if a, ok := args[0].(int64); ok {
				if b, ok := args[1].(int64); ok {
					return ipick(a, b), nil
				}
			}
			return mathFunc2(pick)(c, args)
		}
	}
	e.Register("min", minmax(math.Min, func(a, b int64) int64 { return min(a, b) }))
	e.Register("max", minmax(math.Max, func(a, b int64) int64 { return max(a, b) }))
	e.Register("PI", func(c *Call, args []Value) (Value, error) {
		if err := ArgCount(c, args, 0); err != nil {
			return nil, err
		}
		return math.Pi, nil
	})
	e.Register("range", func(c *Call, args []Value) (Value, error) {
		if err := ArgCount(c, args, 2); err != nil {
			return nil, err
		}
		lo, ok1 := args[0].(int64)
		hi, ok2 := args[1].(int64)
		if !ok1 || !ok2 {
			return nil, c.Errorf("range bounds must be ints")
		}
		return IntRange{Lo: lo, Hi: hi}, nil
	})
	e.Register("throw", func(c *Call, args []Value) (Value, error) {
		msg := "error"
		if len(args) > 0 {
			msg = Format(args[0])
		}
		return nil, c.Errorf("%s", msg)
	})
	e.Register("sprintf", func(c *Call, args []Value) (Value, error) {
		if len(args) == 0 {
			return nil, c.Errorf("function 'sprintf' expects a format string")
		}
		f, ok := args[0].(string)
		if !ok {
			return nil, c.Errorf("function 'sprintf' expects a format string, found %s", TypeName(args[0]))
		}
		return fmt.Sprintf(f, args[1:]...), nil
	})
}
