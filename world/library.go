// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package world

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"cogentcore.org/core/base/strcase"
	"cogentcore.org/core/math32"
	"cogentcore.org/halfspace/implicit"
	"cogentcore.org/halfspace/implicit/shapes"
	"cogentcore.org/halfspace/script"
)

// InputTypes are the types of shape inputs.
type InputTypes int32

const (
	// OtherInput is an input of unknown type.
	OtherInput InputTypes = iota
	ScalarInput
	Vec2Input
	Vec3Input
	Vec4Input
	TreeInput
	TreeListInput
	PlaneInput
)

// ShapeKinds are the kinds of [ShapeDefinition].
type ShapeKinds int32

const (
	// ScriptShape is a plain script block.
	ScriptShape ShapeKinds = iota

	// LibraryShape is generated from a shape type.
	LibraryShape
)

// ShapeInput is an input of a [ShapeDefinition].
type ShapeInput struct {
	Name string
	Type InputTypes

	// Text is the initial expression text.
	Text string
}

// ShapeDefinition is a template for a new block.
type ShapeDefinition struct {
	// Name is the type name, used to name new blocks.
	Name string

	// Title is the display name.
	Title string

	Kind   ShapeKinds
	Inputs []ShapeInput
	Script string
}

// BlockName returns the base name of blocks created from the
// definition, like "scale_uniform" or "export_mesh".
func (sd *ShapeDefinition) BlockName() string {
	clean := strings.Map(func(r rune) rune {
		if r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return ' '
	}, sd.Name)
	return strcase.ToSnake(strings.Join(strings.Fields(clean), " "))
}

const exportMeshScript = `// Script to export a mesh
let shape = input("shape");
let lower = input("lower");
let upper = input("upper");
let min_feature = input("min_feature");
export_mesh(shape, vec3(lower), vec3(upper), min_feature.to_float());`

const valueScript = `let value = input("value");
output("value", value);`

var (
	treeType     = reflect.TypeFor[*implicit.Node]()
	treeListType = reflect.TypeFor[[]*implicit.Node]()
	vec2Type     = reflect.TypeFor[math32.Vector2]()
	vec3Type     = reflect.TypeFor[math32.Vector3]()
	vec4Type     = reflect.TypeFor[math32.Vector4]()
	planeType    = reflect.TypeFor[shapes.Plane]()
	float32Type  = reflect.TypeFor[float32]()
)

func inputType(t reflect.Type) InputTypes {
	switch t {
	case float32Type:
		return ScalarInput
	case vec2Type:
		return Vec2Input
	case vec3Type:
		return Vec3Input
	case vec4Type:
		return Vec4Input
	case treeType:
		return TreeInput
	case treeListType:
		return TreeListInput
	case planeType:
		return PlaneInput
	}
	return OtherInput
}

var defaultText = map[InputTypes]string{
	ScalarInput:   "0",
	Vec2Input:     "[0, 0]",
	Vec3Input:     "[0, 0, 0]",
	Vec4Input:     "[0, 0, 0, 0]",
	TreeInput:     "",
	TreeListInput: "[]",
	PlaneInput:    `plane("yz")`,
}

// fieldDefault returns the initial expression text for a shape field.
func fieldDefault(f reflect.StructField) string {
	if d, ok := f.Tag.Lookup("default"); ok {
		return d
	}
	return defaultText[inputType(f.Type)]
}

// Library returns the shape library: a blank script, a single value,
// every shape in [shapes.All] and a mesh export block. It panics
// on duplicate shape or field names.
func Library() []ShapeDefinition {
	lib := []ShapeDefinition{
		{Name: "Script", Title: "Script", Kind: ScriptShape},
		{Name: "Value", Title: "Value", Kind: ScriptShape, Script: valueScript,
			Inputs: []ShapeInput{{Name: "value", Type: OtherInput, Text: "0"}}},
	}
	names := map[string]bool{"Script": true, "Value": true}
	for _, t := range shapes.Types() {
		if names[t.Name()] {
			panic(fmt.Sprintf("duplicate shape name %s", t.Name()))
		}
		names[t.Name()] = true
		lib = append(lib, shapeDefinition(t))
	}
	lib = append(lib, ShapeDefinition{
		Name: "Export (mesh)", Title: "Export (mesh)", Kind: ScriptShape, Script: exportMeshScript,
		Inputs: []ShapeInput{
			{Name: "shape", Type: TreeInput},
			{Name: "lower", Type: Vec3Input, Text: "[-1, -1, -1]"},
			{Name: "upper", Type: Vec3Input, Text: "[1, 1, 1]"},
			{Name: "min_feature", Type: ScalarInput, Text: "0.1"},
		},
	})
	return lib
}

func shapeDefinition(t reflect.Type) ShapeDefinition {
	sd := ShapeDefinition{Name: t.Name(), Title: shapeTitle(t.Name()), Kind: LibraryShape}
	var b strings.Builder
	fmt.Fprintf(&b, "// auto-generated script for %s\n", t.Name())
	seen := map[string]bool{}
	var fields []string
	for i := range t.NumField() {
		f := t.Field(i)
		name := strcase.ToSnake(f.Name)
		if seen[name] {
			panic(fmt.Sprintf("duplicate field name %s in %s", name, t.Name()))
		}
		seen[name] = true
		fields = append(fields, name)
		sd.Inputs = append(sd.Inputs, ShapeInput{Name: name, Type: inputType(f.Type), Text: fieldDefault(f)})
		b.WriteString("\n")
		if desc := f.Tag.Get("desc"); desc != "" {
			fmt.Fprintf(&b, "// %s\n", desc)
		}
		fmt.Fprintf(&b, "let %s = input(%q);\n", name, name)
	}
	obj := make([]string, len(fields))
	for i, f := range fields {
		obj[i] = f + ": " + f
	}
	fmt.Fprintf(&b, "\nlet out = %s(#{ %s });\n", strcase.ToSnake(t.Name()), strings.Join(obj, ", "))
	b.WriteString(`output("out", out);`)
	sd.Script = b.String()
	return sd
}

// shapeTitle returns a display title, so that ScaleUniform
// becomes "Scale (uniform)" and RotateZ becomes "Rotate (Z)".
func shapeTitle(name string) string {
	s := strcase.ToSentence(name)
	words := strings.Fields(s)
	if len(words) != 2 {
		return s
	}
	w := words[1]
	if len(w) == 1 {
		w = strings.ToUpper(w)
	} else {
		w = strings.ToLower(w)
	}
	return fmt.Sprintf("%s (%s)", words[0], w)
}

// registerShapes registers a constructor for every shape type,
// named in snake case and taking an object map of its fields.
func registerShapes(e *script.Engine) {
	for _, t := range shapes.Types() {
		e.Register(strcase.ToSnake(t.Name()), shapeConstructor(t))
	}
}

func shapeConstructor(t reflect.Type) script.Func {
	return func(c *script.Call, args []script.Value) (script.Value, error) {
		if err := script.ArgCount(c, args, 1); err != nil {
			return nil, err
		}
		m, ok := args[0].(*script.Map)
		if !ok {
			return nil, c.Errorf("%s expects an object map of parameters, found %s", c.Name, script.TypeName(args[0]))
		}
		for _, k := range m.Keys {
			if _, ok := t.FieldByNameFunc(func(n string) bool { return strcase.ToSnake(n) == k }); !ok {
				return nil, c.Errorf("%s has no parameter '%s'", c.Name, k)
			}
		}
		sv := reflect.New(t).Elem()
		for i := range t.NumField() {
			f := t.Field(i)
			name := strcase.ToSnake(f.Name)
			v, ok := m.Get(name)
			if !ok {
				text := fieldDefault(f)
				if text == "" {
					return nil, c.Errorf("%s: missing parameter '%s'", c.Name, name)
				}
				var err error
				v, err = c.Engine.Eval(script.NewScope(), text)
				if err != nil {
					return nil, c.Errorf("%s: default for '%s': %v", c.Name, name, err)
				}
			}
			fv, err := fieldValue(f.Type, v)
			if err != nil {
				return nil, c.Errorf("%s: parameter '%s': %v", c.Name, name, err)
			}
			sv.Field(i).Set(fv)
		}
		return sv.Interface().(shapes.Shape).Tree(), nil
	}
}

// fieldValue converts a script value to a shape field of the given type.
func fieldValue(t reflect.Type, v script.Value) (reflect.Value, error) {
	var out any
	var err error
	switch t {
	case float32Type:
		f, ok := script.ToFloat(v)
		if !ok {
			err = fmt.Errorf("expected a number, found %s", script.TypeName(v))
		}
		out = float32(f)
	case vec2Type:
		out, err = Vector2(v)
	case vec3Type:
		out, err = Vector3(v)
	case vec4Type:
		out, err = Vector4(v)
	case treeType:
		tr, ok := ToTree(v)
		if !ok {
			err = fmt.Errorf("expected a tree, found %s", script.TypeName(v))
		}
		out = tr
	case treeListType:
		out, err = treeList(v)
	case planeType:
		switch p := v.(type) {
		case shapes.Plane:
			out = p
		case string:
			out, err = shapes.ParsePlane(p)
		default:
			err = fmt.Errorf("expected a plane, found %s", script.TypeName(v))
		}
	default:
		err = fmt.Errorf("unsupported field type %s", t)
	}
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(out), nil
}

func treeList(v script.Value) ([]*implicit.Node, error) {
	if t, ok := v.(*implicit.Node); ok {
		return []*implicit.Node{t}, nil
	}
	a, ok := v.(*script.Array)
	if !ok {
		return nil, fmt.Errorf("expected a list of trees, found %s", script.TypeName(v))
	}
	ts := make([]*implicit.Node, len(a.Elems))
	for i, e := range a.Elems {
		t, ok := ToTree(e)
		if !ok {
			return nil, fmt.Errorf("expected a tree at index %d, found %s", i, script.TypeName(e))
		}
		ts[i] = t
	}
	return ts, nil
}
