// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package state reads and writes documents. Documents carry a tag
// and a major.minor version. A reader accepts older minor versions of
// its major version, tries newer ones, and migrates older major
// versions forward. The dock layout is read on a best-effort basis.
package state

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"unicode/utf8"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/halfspace/world"
	"github.com/Masterminds/semver/v3"
)

// Tag identifies documents.
const Tag = "halfspace"

// Extension is the file extension of documents.
const Extension = ".half"

// Document is a saved editor session.
type Document struct {
	Tag   string
	Major int
	Minor int
	Meta  Meta
	World *world.WorldState
	Views map[world.BlockIndex]ViewState
	Dock  Dock
}

// New returns a document of the current version.
func New(ws *world.WorldState, views map[world.BlockIndex]ViewState, dock Dock, meta Meta) *Document {
	if views == nil {
		views = map[world.BlockIndex]ViewState{}
	}
	return &Document{Tag: Tag, Major: Major, Minor: Minor, Meta: meta, World: ws, Views: views, Dock: dock}
}

// Version returns the current version.
func Version() *semver.Version {
	return semver.New(Major, Minor, 0, "", "")
}

// payload is a document body in the current schema.
type payload struct {
	meta  Meta
	world worldStateV2
	views map[world.BlockIndex]ViewState
	dock  Dock
}

type rawDocument struct {
	Tag   string          `json:"tag"`
	Major int             `json:"major"`
	Minor int             `json:"minor"`
	Meta  json.RawMessage `json:"meta"`
	World json.RawMessage `json:"world"`
	Views json.RawMessage `json:"views"`
	Dock  json.RawMessage `json:"dock"`
}

type outDocument struct {
	Tag   string                         `json:"tag"`
	Major int                            `json:"major"`
	Minor int                            `json:"minor"`
	Meta  Meta                           `json:"meta"`
	World *worldStateV2                  `json:"world"`
	Views map[world.BlockIndex]ViewState `json:"views"`
	Dock  Dock                           `json:"dock"`
}

// strict decodes JSON rejecting unknown fields.
func strict(b []byte, v any) error {
	d := json.NewDecoder(bytes.NewReader(b))
	d.DisallowUnknownFields()
	if err := d.Decode(v); err != nil {
		return err
	}
	if d.More() {
		return errors.New("trailing data after JSON value")
	}
	return nil
}

func present(b json.RawMessage) bool {
	return len(b) > 0 && !bytes.Equal(b, []byte("null"))
}

// reader decodes the parts of one major version, reporting decode
// failures of a newer minor version as [TooNewError].
type reader struct {
	raw   *rawDocument
	major int
	minor int
}

func (r *reader) decode(b json.RawMessage, v any) error {
	err := strict(b, v)
	if err == nil {
		return nil
	}
	if r.raw.Minor > r.minor {
		return &TooNewError{ExpectedMajor: r.major, ExpectedMinor: r.minor, ActualMajor: r.raw.Major, ActualMinor: r.raw.Minor}
	}
	return &ParseError{Err: err}
}

// dock decodes the dock on a best-effort basis: on failure it
// returns an empty dock and false, and the views must be discarded.
func (r *reader) dock(d *Dock) bool {
	if !present(r.raw.Dock) {
		return true
	}
	if err := strict(r.raw.Dock, d); err != nil {
		slog.Warn("could not read dock state", "err", err)
		*d = Dock{}
		return false
	}
	return true
}

func readV2(raw *rawDocument) (*payload, error) {
	r := &reader{raw: raw, major: Major, minor: Minor}
	p := &payload{}
	if err := r.decode(raw.World, &p.world); err != nil {
		return nil, err
	}
	if present(raw.Meta) {
		if err := r.decode(raw.Meta, &p.meta); err != nil {
			return nil, err
		}
	}
	if present(raw.Views) {
		if err := r.decode(raw.Views, &p.views); err != nil {
			return nil, err
		}
	}
	if !r.dock(&p.dock) {
		p.views = nil
	}
	return p, nil
}

func readV1(raw *rawDocument) (*payload, error) {
	r := &reader{raw: raw, major: MajorV1, minor: MinorV1}
	d := &documentV1{}
	if err := r.decode(raw.World, &d.world); err != nil {
		return nil, err
	}
	if present(raw.Meta) {
		if err := r.decode(raw.Meta, &d.meta); err != nil {
			return nil, err
		}
	}
	if present(raw.Views) {
		if err := r.decode(raw.Views, &d.views); err != nil {
			return nil, err
		}
	}
	if !r.dock(&d.dock) {
		d.views = nil
	}
	return migrateV1(d)
}

// Read reads a document of any supported version, migrating it to
// the current version.
func Read(rd io.Reader) (*Document, error) {
	b, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	return ReadBytes(b)
}

// ReadBytes reads a document from bytes; see [Read].
func ReadBytes(b []byte) (*Document, error) {
	if !utf8.Valid(b) {
		off := 0
		for off < len(b) {
			r, n := utf8.DecodeRune(b[off:])
			if r == utf8.RuneError && n <= 1 {
				break
			}
			off += n
		}
		return nil, &NotUTF8Error{Offset: off}
	}
	raw := &rawDocument{}
	if err := json.Unmarshal(b, raw); err != nil {
		return nil, &ParseError{Err: err}
	}
	if raw.Tag != Tag {
		return nil, &BadTagError{Expected: Tag, Actual: raw.Tag}
	}
	if raw.Major < 0 || raw.Minor < 0 {
		return nil, &BadMajorVersionError{Expected: []int{MajorV1, Major}, Actual: raw.Major}
	}
	v := semver.New(uint64(raw.Major), uint64(raw.Minor), 0, "", "")
	if v.Major() > Version().Major() {
		return nil, &TooNewError{ExpectedMajor: Major, ExpectedMinor: Minor, ActualMajor: raw.Major, ActualMinor: raw.Minor}
	}

	var p *payload
	var err error
	switch raw.Major {
	case Major:
		p, err = readV2(raw)
	case MajorV1:
		p, err = readV1(raw)
	default:
		return nil, &BadMajorVersionError{Expected: []int{MajorV1, Major}, Actual: raw.Major}
	}
	if err != nil {
		return nil, err
	}
	ws, err := p.world.world()
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if v.LessThan(Version()) {
		slog.Info("migrated document", "from", v.String(), "to", Version().String())
	}
	return New(ws, p.views, p.dock, p.meta), nil
}

// Write writes the document as indented JSON, always at the
// current version.
func (d *Document) Write(w io.Writer) error {
	views := d.Views
	if views == nil {
		views = map[world.BlockIndex]ViewState{}
	}
	ws := d.World
	if ws == nil {
		ws = &world.WorldState{}
	}
	out := &outDocument{Tag: Tag, Major: Major, Minor: Minor, Meta: d.Meta, World: toV2(ws), Views: views, Dock: d.Dock}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(out)
}

// Bytes returns the document as written by [Document.Write].
func (d *Document) Bytes() []byte {
	var b bytes.Buffer
	errors.Log(d.Write(&b))
	return b.Bytes()
}

// Open reads the document in the given file.
func Open(filename string) (*Document, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Save writes the document to the given file.
func (d *Document) Save(filename string) error {
	return os.WriteFile(filename, d.Bytes(), 0o644)
}
