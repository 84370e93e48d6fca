// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"fmt"

	"cogentcore.org/halfspace/render"
)

// ModalKinds are the kinds of [Modal].
type ModalKinds int32

const (
	// ErrorModal shows an error message.
	ErrorModal ModalKinds = iota

	// WaitForLoad blocks the app while a document is read.
	WaitForLoad

	// ExportInProgress blocks the app during an export, which the
	// user can cancel.
	ExportInProgress
)

func (k ModalKinds) String() string {
	switch k {
	case ErrorModal:
		return "Error"
	case WaitForLoad:
		return "WaitForLoad"
	case ExportInProgress:
		return "ExportInProgress"
	}
	return fmt.Sprintf("ModalKinds(%d)", int32(k))
}

// Modal is a dialog that blocks other actions until closed.
type Modal struct {
	Kind ModalKinds

	// Title and Message are set for errors.
	Title   string
	Message string

	// Path is the export target.
	Path string

	// Cancel stops the export in progress.
	Cancel *render.Cancel
}

// NewError returns an error modal.
func NewError(title string, err error) *Modal {
	return &Modal{Kind: ErrorModal, Title: title, Message: err.Error()}
}

// Is returns whether the modal is non-nil and of the given kind.
func (m *Modal) Is(k ModalKinds) bool {
	return m != nil && m.Kind == k
}

func (m *Modal) String() string {
	if m == nil {
		return "none"
	}
	if m.Kind == ErrorModal {
		return fmt.Sprintf("%v: %s: %s", m.Kind, m.Title, m.Message)
	}
	return m.Kind.String()
}

// CloseModal dismisses an error modal. Other modals close by
// themselves when their work completes.
func (a *App) CloseModal() {
	if a.Modal.Is(ErrorModal) {
		a.Modal = nil
	}
}
