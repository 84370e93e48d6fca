// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import (
	"fmt"
)

// NotUTF8Error is returned for documents that are not valid UTF-8.
type NotUTF8Error struct {
	// Offset is the byte offset of the first invalid sequence.
	Offset int
}

func (e *NotUTF8Error) Error() string {
	return fmt.Sprintf("file is not UTF-8 (invalid byte at offset %d)", e.Offset)
}

// ParseError is returned for documents that are not valid JSON or do
// not match the schema of their version.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "could not parse JSON: " + e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// BadTagError is returned for JSON files that are not documents.
type BadTagError struct {
	Expected, Actual string
}

func (e *BadTagError) Error() string {
	return fmt.Sprintf("bad tag: expected %q, got %q", e.Expected, e.Actual)
}

// BadMajorVersionError is returned for major versions that never
// existed.
type BadMajorVersionError struct {
	Expected []int
	Actual   int
}

func (e *BadMajorVersionError) Error() string {
	return fmt.Sprintf("bad major version: expected one of %v, got %d", e.Expected, e.Actual)
}

// TooNewError is returned for documents written by a newer version
// than this reader understands.
type TooNewError struct {
	ExpectedMajor, ExpectedMinor int
	ActualMajor, ActualMinor     int
}

func (e *TooNewError) Error() string {
	return fmt.Sprintf("file is too new: our version is %d.%d, file's is %d.%d",
		e.ExpectedMajor, e.ExpectedMinor, e.ActualMajor, e.ActualMinor)
}
