// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logx

import "log/slog"

// Trace is a level below [slog.LevelDebug] used for high-frequency
// messages such as render scheduling decisions.
const Trace = slog.LevelDebug - 4

// UserLevel is the verbosity [slog.Level] that the user has selected for
// what logging messages should be shown. Messages at levels at or above
// this level will be shown. It is typically set from command line flags
// through [LevelFromFlags].
var UserLevel = defaultUserLevel

// LevelFromFlags returns the [slog.Level] object corresponding to the given
// user flag options. The flags correspond to the following values:
//   - vv: [Trace]
//   - v: [slog.LevelDebug]
//   - q: [slog.LevelError]
//   - (default: [slog.LevelInfo])
//
// The flags are evaluated in that order, so, for example, if both
// vv and q are specified, it will still return [Trace].
func LevelFromFlags(vv, v, q bool) slog.Level {
	switch {
	case vv:
		return Trace
	case v:
		return slog.LevelDebug
	case q:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelName returns the display name of the given level,
// with [Trace] named explicitly.
func LevelName(l slog.Level) string {
	if l <= Trace {
		return "TRACE"
	}
	return l.String()
}

// userLeveler reads [UserLevel] each time it is consulted,
// so that changing it takes effect without rebuilding the handler.
type userLeveler struct{}

func (userLeveler) Level() slog.Level {
	return UserLevel
}
