// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logging builds the zerolog.Logger cmd/ext and its packages log
// through: pretty console output on a terminal, structured JSON otherwise,
// so a resolver run piped into a file or log collector stays parseable.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds a logger at level writing to w. pretty selects zerolog's
// console writer (timestamped, colored level names) over raw JSON lines.
func New(w io.Writer, level zerolog.Level, pretty bool) zerolog.Logger {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// NewDefault picks pretty console output when stderr is a terminal and
// JSON otherwise (spec.md §6 "CLI surface" — scriptable by default,
// readable interactively). Terminal detection is a plain os.ModeCharDevice
// check rather than an x/sys/unix ioctl: the corpus's one real use of
// golang.org/x/sys (gonum's internal/asm/f64 CPU-feature dispatch, see
// fp/add_p2.go) is unrelated to terminal detection, and os.Stat is the
// portable stdlib primitive for it across the platforms this runs on.
func NewDefault(level zerolog.Level) zerolog.Logger {
	pretty := false
	if fi, err := os.Stderr.Stat(); err == nil {
		pretty = fi.Mode()&os.ModeCharDevice != 0
	}
	return New(os.Stderr, level, pretty)
}
