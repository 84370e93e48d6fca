// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logx provides leveled, colored logging on top of log/slog.
package logx

import (
	"io"
	"log/slog"
	"os"

	"github.com/muesli/termenv"
)

// UseColor is whether to use color in log messages. It is on by default
// and disabled automatically when the output does not support color.
var UseColor = true

// NewHandler returns a new [slog.Handler] writing to the given writer,
// filtered by [UserLevel] and with levels colored according to the
// color profile of the writer.
func NewHandler(w io.Writer) slog.Handler {
	profile := termenv.Ascii
	if f, ok := w.(*os.File); ok && UseColor {
		profile = termenv.NewOutput(f).Profile
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: userLeveler{},
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				return slog.Attr{}
			case slog.LevelKey:
				l, ok := a.Value.Any().(slog.Level)
				if !ok {
					return a
				}
				return slog.String(a.Key, colorLevel(profile, l))
			}
			return a
		},
	})
}

// SetDefaultLogger sets the default logger to one that writes
// to [os.Stderr] through [NewHandler].
func SetDefaultLogger() {
	slog.SetDefault(slog.New(NewHandler(os.Stderr)))
}

// colorLevel returns the level name colored for the given profile.
func colorLevel(profile termenv.Profile, l slog.Level) string {
	name := LevelName(l)
	if profile == termenv.Ascii {
		return name
	}
	var c termenv.Color
	switch {
	case l >= slog.LevelError:
		c = profile.Color("#e5484d")
	case l >= slog.LevelWarn:
		c = profile.Color("#f5a524")
	case l >= slog.LevelInfo:
		c = profile.Color("#3e9bd6")
	default:
		c = profile.Color("#8b8d98")
	}
	return termenv.String(name).Foreground(c).Bold().String()
}
