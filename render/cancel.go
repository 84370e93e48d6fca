// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"errors"
	"sync/atomic"
)

// ErrCancelled is returned by rendering and export operations
// whose [Cancel] token was set.
var ErrCancelled = errors.New("cancelled")

// Cancel is a cancellation token shared between the owner of a
// task and the goroutines doing its work, which poll it at tile
// and cell boundaries. A nil *Cancel is never cancelled.
type Cancel struct {
	flag atomic.Bool
}

// NewCancel returns a new token that is not cancelled.
func NewCancel() *Cancel {
	return &Cancel{}
}

// Cancel sets the token.
func (c *Cancel) Cancel() {
	if c != nil {
		c.flag.Store(true)
	}
}

// IsCancelled returns whether the token has been set.
func (c *Cancel) IsCancelled() bool {
	return c != nil && c.flag.Load()
}

// Err returns [ErrCancelled] if the token has been set.
func (c *Cancel) Err() error {
	if c.IsCancelled() {
		return ErrCancelled
	}
	return nil
}
