// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config resolves cmd/ext's settings from flags with environment
// variable fallbacks (spec.md §6 "CLI surface"), the way cmd line tools in
// the examples layer EXT_* overrides under explicit flags.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config is the resolved set of options a resolver run needs.
type Config struct {
	ModuleName string
	Algebra    string // "adem" or "milnor"
	MaxDegree  int
	SaveDir    string // "" disables persistence
	Threads    int
	Verbose    bool
}

// Defaults returns the baseline a flag set should start from, with
// environment overrides for the two settings spec.md calls out as
// env-overridable (EXT_SAVE_DIR, EXT_THREADS).
func Defaults() Config {
	c := Config{
		Algebra:   "milnor",
		MaxDegree: 30,
		SaveDir:   "",
		Threads:   1,
	}
	if v := os.Getenv("EXT_SAVE_DIR"); v != "" {
		c.SaveDir = v
	}
	if v := os.Getenv("EXT_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Threads = n
		}
	}
	return c
}

// Validate checks the settings a flag parse can't catch itself.
func (c Config) Validate() error {
	if c.ModuleName == "" {
		return fmt.Errorf("config: module_name is required")
	}
	if c.MaxDegree < 0 {
		return fmt.Errorf("config: max_degree must be >= 0, got %d", c.MaxDegree)
	}
	switch c.Algebra {
	case "adem", "milnor":
	default:
		return fmt.Errorf("config: algebra must be \"adem\" or \"milnor\", got %q", c.Algebra)
	}
	if c.Threads < 1 {
		return fmt.Errorf("config: threads must be >= 1, got %d", c.Threads)
	}
	return nil
}
