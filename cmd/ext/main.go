// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ext resolves a module's minimal free resolution over the
// Steenrod algebra through a given internal degree, reporting bigraded
// dimensions to stdout (spec.md §6 "CLI surface").
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/SpectralSequences/sseq-sub004/algebra"
	"github.com/SpectralSequences/sseq-sub004/concurrent"
	"github.com/SpectralSequences/sseq-sub004/internal/config"
	"github.com/SpectralSequences/sseq-sub004/internal/logging"
	"github.com/SpectralSequences/sseq-sub004/resolver"
	"github.com/SpectralSequences/sseq-sub004/wire"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: ext [flags] module_name max_degree

Resolves module_name.json's module through internal degree max_degree and
prints dim Ext^{s,t} for every computed bidegree where it is nonzero.

Flags:
  -algebra string
        adem or milnor; must match the basis the module definition selects:
        adem when its "algebra" list names adem, milnor otherwise
        (default "milnor")
  -save-dir string
        directory to read/write per-bidegree save files (also settable via
        EXT_SAVE_DIR)
  -threads int
        number of resolver worker goroutines (also settable via EXT_THREADS)
  -v    verbose (debug-level) logging`)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := config.Defaults()

	fs := flag.NewFlagSet("ext", flag.ContinueOnError)
	fs.Usage = usage
	fs.StringVar(&cfg.Algebra, "algebra", cfg.Algebra, "adem or milnor")
	fs.StringVar(&cfg.SaveDir, "save-dir", cfg.SaveDir, "save directory")
	fs.IntVar(&cfg.Threads, "threads", cfg.Threads, "worker goroutines")
	verbose := fs.Bool("v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) != 2 {
		usage()
		return 2
	}
	cfg.ModuleName = rest[0]
	n, err := strconv.Atoi(rest[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ext: invalid max_degree %q: %v\n", rest[1], err)
		return 2
	}
	cfg.MaxDegree = n
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "ext:", err)
		return 2
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := logging.NewDefault(level)

	if err := runResolve(cfg, log); err != nil {
		log.Error().Err(err).Msg("ext: failed")
		return 1
	}
	return 0
}

func runResolve(cfg config.Config, log zerolog.Logger) error {
	path := cfg.ModuleName
	if _, err := os.Stat(path); err != nil {
		path = cfg.ModuleName + ".json"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	mod, alg, err := wire.ParseModule(data)
	if err != nil {
		return fmt.Errorf("parsing module: %w", err)
	}
	if err := checkAlgebraMatches(cfg.Algebra, alg); err != nil {
		return err
	}

	r := resolver.NewResolution(alg.Prime(), mod, mod.MinDegree(), log)
	frontier := resolver.Box{S: cfg.MaxDegree, T: cfg.MaxDegree, MinDegree: mod.MinDegree()}

	if cfg.SaveDir != "" {
		dir := wire.SaveDir{Read: cfg.SaveDir, Write: cfg.SaveDir}
		if cfg.Threads > 1 {
			bucket := concurrent.NewTokenBucket(cfg.Threads)
			if err := r.ResolveConcurrentWithSaves(context.Background(), bucket, frontier, dir); err != nil {
				return fmt.Errorf("resolving: %w", err)
			}
		} else if err := r.ResolveWithSaves(frontier, dir); err != nil {
			return fmt.Errorf("resolving: %w", err)
		}
	} else if cfg.Threads > 1 {
		bucket := concurrent.NewTokenBucket(cfg.Threads)
		if err := r.ResolveConcurrent(context.Background(), bucket, frontier); err != nil {
			return fmt.Errorf("resolving: %w", err)
		}
	} else if err := r.Resolve(frontier); err != nil {
		return fmt.Errorf("resolving: %w", err)
	}

	report(r, cfg.MaxDegree)
	return nil
}

func checkAlgebraMatches(want string, got algebra.Algebra) error {
	_, isAdem := got.(*algebra.AdemAlgebra)
	switch want {
	case "adem":
		if !isAdem {
			return fmt.Errorf("-algebra=adem but module is defined over the Milnor basis")
		}
	case "milnor":
		if isAdem {
			return fmt.Errorf("-algebra=milnor but module is defined over the Adem basis")
		}
	}
	return nil
}

func report(r *resolver.Resolution, maxDegree int) {
	for s := 0; s <= maxDegree; s++ {
		computed := r.MaxComputedDegree(s)
		if computed < 0 {
			continue
		}
		m := r.Module(s)
		for t := 0; t <= computed; t++ {
			n := m.GeneratorsInDegree(t)
			if n > 0 {
				fmt.Printf("s=%d t=%d n=%d\n", s, t, n)
			}
		}
	}
}
