// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/SpectralSequences/sseq-sub004/algebra"
	"github.com/SpectralSequences/sseq-sub004/fp"
	"github.com/SpectralSequences/sseq-sub004/module"
)

// ProfileDef mirrors algebra.Profile in JSON (spec.md §6 "optional
// profile: Milnor sub-algebra profile {truncated, q_part, p_part}").
type ProfileDef struct {
	Truncated bool   `json:"truncated"`
	QPart     uint64 `json:"q_part"`
	PPart     []int  `json:"p_part"`
}

// ModuleDef is the module-definition JSON document (spec.md §6).
type ModuleDef struct {
	P               uint32         `json:"p"`
	Type            string         `json:"type"`
	Gens            map[string]int `json:"gens"`
	AdemRelations   []string       `json:"adem_relations"`
	MilnorRelations []string       `json:"milnor_relations"`
	Actions         []string       `json:"actions"`
	Algebra         []string       `json:"algebra"`
	Profile         *ProfileDef    `json:"profile"`
	Min             int            `json:"min"` // real projective space: lowest cell
	Max             int            `json:"max"` // real projective space: highest cell
}

const (
	typeFD   = "finite dimensional module"
	typeFP   = "finitely presented module"
	typeRP   = "real projective space"
	typeFree = "free module"
)

// ParseModule decodes a module-definition document and builds the module
// it describes together with the algebra it is defined over (spec.md §6).
func ParseModule(data []byte) (module.Module, algebra.Algebra, error) {
	var def ModuleDef
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, nil, fmt.Errorf("wire: malformed module definition: %w", err)
	}
	p, err := fp.NewValidPrime(def.P)
	if err != nil {
		return nil, nil, fmt.Errorf("wire: %w", err)
	}

	profile := algebra.UnrestrictedProfile
	if def.Profile != nil {
		profile = algebra.Profile{Truncated: def.Profile.Truncated, QPart: def.Profile.QPart, PPart: def.Profile.PPart}
	}

	useAdem := false
	for _, name := range def.Algebra {
		if name == "adem" {
			useAdem = true
		}
	}

	var alg algebra.Algebra
	if useAdem {
		adem, err := algebra.NewAdemAlgebra(p)
		if err != nil {
			return nil, nil, fmt.Errorf("wire: %w", err)
		}
		alg = adem
	} else {
		alg = algebra.NewMilnorAlgebra(p, profile)
	}
	ev := algebra.NewSteenrodEvaluator(p, profile)

	switch def.Type {
	case typeFD:
		m, err := buildFD(&def, alg, ev, useAdem)
		return m, alg, err
	case typeFP:
		m, err := buildFP(&def, alg, ev, useAdem)
		return m, alg, err
	case typeFree:
		return buildFree(&def, alg), alg, nil
	case typeRP:
		m, err := buildRP(&def, p, alg)
		return m, alg, err
	default:
		return nil, nil, fmt.Errorf("wire: unknown module type %q", def.Type)
	}
}

// orderedGenNames returns gens's names sorted by (degree, name), the order
// AddGenerators expects and the order generator indices are assigned in.
func orderedGenNames(gens map[string]int) []string {
	names := make([]string, 0, len(gens))
	for n := range gens {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if gens[names[i]] != gens[names[j]] {
			return gens[names[i]] < gens[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// genIndex assigns each generator name its index within its own degree,
// in the same order orderedGenNames groups them.
func genIndex(gens map[string]int) map[string][2]int {
	byDeg := map[int][]string{}
	for n, d := range gens {
		byDeg[d] = append(byDeg[d], n)
	}
	for d := range byDeg {
		sort.Strings(byDeg[d])
	}
	out := map[string][2]int{}
	for d, names := range byDeg {
		for i, n := range names {
			out[n] = [2]int{d, i}
		}
	}
	return out
}

func maxDegree(gens map[string]int) int {
	max := 0
	for _, d := range gens {
		if d > max {
			max = d
		}
	}
	return max
}

func buildFree(def *ModuleDef, alg algebra.Algebra) *module.FreeModule {
	fm := module.NewFreeModule(alg, "free", 0)
	for _, d := range sortedDegrees(def.Gens) {
		var names []string
		for n, gd := range def.Gens {
			if gd == d {
				names = append(names, n)
			}
		}
		sort.Strings(names)
		fm.AddGenerators(d, names)
	}
	return fm
}

func sortedDegrees(gens map[string]int) []int {
	seen := map[int]bool{}
	var degs []int
	for _, d := range gens {
		if !seen[d] {
			seen[d] = true
			degs = append(degs, d)
		}
	}
	sort.Ints(degs)
	return degs
}

func buildFD(def *ModuleDef, alg algebra.Algebra, ev *algebra.SteenrodEvaluator, useAdem bool) (*module.FDModule, error) {
	fd := module.NewFDModule(alg, "fd", 0)
	idx := genIndex(def.Gens)
	for _, d := range sortedDegrees(def.Gens) {
		var names []string
		for n, gd := range def.Gens {
			if gd == d {
				names = append(names, n)
			}
		}
		sort.Strings(names)
		fd.AddGenerators(d, names)
	}
	maxDeg := maxDegree(def.Gens)
	alg.ComputeBasis(maxDeg)

	for _, action := range def.Actions {
		if err := applyFDAction(fd, alg, ev, useAdem, idx, action); err != nil {
			return nil, err
		}
	}
	return fd, nil
}

// applyFDAction parses "op gen = sum" and records it with SetAction.
// FDModule.SetAction only accepts images of algebra *generator* operations
// (spec.md §3 "Finite-dimensional (FD)": "only generator ops need an
// explicit action; everything else is decomposed"), so op must evaluate
// to exactly one algebra basis element and that element must be one of
// alg.Generators(opDeg) — a real restriction inherited from FDModule's own
// contract, not a parser limitation.
func applyFDAction(fd *module.FDModule, alg algebra.Algebra, ev *algebra.SteenrodEvaluator, useAdem bool, idx map[string][2]int, action string) error {
	lhs, rhs, err := splitEquation(action)
	if err != nil {
		return err
	}
	p := newParser(lhs)
	algNode, err := p.parseAlgebraExpr()
	if err != nil {
		return err
	}
	genName, err := p.parseIdent()
	if err != nil {
		return err
	}
	if !p.eof() {
		return fmt.Errorf("wire: trailing input in action %q", action)
	}
	gi, ok := idx[genName]
	if !ok {
		return fmt.Errorf("wire: action references unknown generator %q", genName)
	}
	opDeg, opVec, err := evalAlgebra(algNode, ev)
	if err != nil {
		return err
	}
	opIdx, single, err := singleAdemOrMilnorGenerator(alg, ev, useAdem, opDeg, opVec)
	if err != nil {
		return fmt.Errorf("wire: action %q: %w", action, err)
	}
	if !single {
		return fmt.Errorf("wire: action %q: FD module actions must name a single algebra generator", action)
	}

	rp := newParser(rhs)
	rNode, err := rp.parseModuleExpr()
	if err != nil {
		return err
	}
	if !rp.eof() {
		return fmt.Errorf("wire: trailing input in action %q", action)
	}
	targetDeg := gi[0] + opDeg
	image := fp.NewFpVec(alg.Prime(), fd.Dimension(targetDeg))
	if err := evalModuleIntoFD(rNode, ev, useAdem, idx, image); err != nil {
		return err
	}
	fd.SetAction(opDeg, opIdx, gi[0], gi[1], image)
	return nil
}

// singleAdemOrMilnorGenerator converts a Milnor-basis vector (opDeg,
// opVec) to the module's algebra and checks it is a single basis element
// that is also one of that algebra's indecomposable generators, returning
// its index.
func singleAdemOrMilnorGenerator(alg algebra.Algebra, ev *algebra.SteenrodEvaluator, useAdem bool, deg int, milnorVec *fp.FpVec) (int, bool, error) {
	var vec *fp.FpVec
	if useAdem {
		v, err := ev.ToAdem(deg, milnorVec)
		if err != nil {
			return 0, false, err
		}
		vec = v
	} else {
		vec = milnorVec
	}
	idx, val, ok := vec.FirstNonzero()
	if !ok || val != 1 {
		return 0, false, nil
	}
	for i := idx + 1; i < vec.Len(); i++ {
		if vec.Entry(i) != 0 {
			return 0, false, nil
		}
	}
	for _, g := range alg.Generators(deg) {
		if g == idx {
			return idx, true, nil
		}
	}
	return 0, false, nil
}

// evalModuleIntoFD accumulates node's contribution into out, an FD module
// vector already sized to the target degree.
func evalModuleIntoFD(node moduleNode, ev *algebra.SteenrodEvaluator, useAdem bool, idx map[string][2]int, out *fp.FpVec) error {
	switch n := node.(type) {
	case modSum:
		if err := evalModuleIntoFD(n.a, ev, useAdem, idx, out); err != nil {
			return err
		}
		return evalModuleIntoFD(n.b, ev, useAdem, idx, out)
	case modGen:
		gi, ok := idx[n.name]
		if !ok {
			return fmt.Errorf("wire: reference to unknown generator %q", n.name)
		}
		if gi[1] >= out.Len() {
			return fmt.Errorf("wire: generator %q index out of range for target degree", n.name)
		}
		out.AddBasisElement(gi[1], 1)
		return nil
	case modAct:
		deg, vec, err := evalAlgebra(n.alg, ev)
		if err != nil {
			return err
		}
		if deg != 0 {
			return fmt.Errorf("wire: only scalar coefficients are supported on the right-hand side of an FD action")
		}
		c := vec.Entry(0)
		scratch := fp.NewFpVec(out.Prime(), out.Len())
		if err := evalModuleIntoFD(n.m, ev, useAdem, idx, scratch); err != nil {
			return err
		}
		out.Add(scratch, c)
		return nil
	}
	return fmt.Errorf("wire: unhandled module node %T", node)
}

func splitEquation(s string) (lhs, rhs string, err error) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("wire: action %q has no '='", s)
}

func buildFP(def *ModuleDef, alg algebra.Algebra, ev *algebra.SteenrodEvaluator, useAdem bool) (*module.FPModule, error) {
	fp_ := module.NewFPModule(alg, "fp", 0)
	gens := fp_.Generators()
	idx := genIndex(def.Gens)
	for _, d := range sortedDegrees(def.Gens) {
		var names []string
		for n, gd := range def.Gens {
			if gd == d {
				names = append(names, n)
			}
		}
		sort.Strings(names)
		fp_.AddGenerators(d, names)
	}
	maxDeg := maxDegree(def.Gens)
	gens.ComputeBasis(maxDeg)
	alg.ComputeBasis(maxDeg)

	relations := def.AdemRelations
	if len(def.MilnorRelations) > 0 {
		relations = def.MilnorRelations
	}
	byDeg := map[int][]string{}
	for _, rel := range relations {
		d, err := relationDegree(rel, ev, idx)
		if err != nil {
			return nil, err
		}
		byDeg[d] = append(byDeg[d], rel)
	}
	degs := make([]int, 0, len(byDeg))
	for d := range byDeg {
		degs = append(degs, d)
	}
	sort.Ints(degs)
	for _, d := range degs {
		var vecs []*fp.FpVec
		for _, rel := range byDeg[d] {
			v, err := parseRelation(rel, ev, useAdem, idx, gens, d)
			if err != nil {
				return nil, err
			}
			vecs = append(vecs, v)
		}
		fp_.AddRelations(d, vecs)
	}
	return fp_, nil
}

// relationDegree determines a relation string's homogeneous internal
// degree by evaluating its first term.
func relationDegree(rel string, ev *algebra.SteenrodEvaluator, idx map[string][2]int) (int, error) {
	node, err := newParser(rel).parseModuleExpr()
	if err != nil {
		return 0, err
	}
	return firstTermDegree(node, ev, idx)
}

func firstTermDegree(node moduleNode, ev *algebra.SteenrodEvaluator, idx map[string][2]int) (int, error) {
	switch n := node.(type) {
	case modSum:
		return firstTermDegree(n.a, ev, idx)
	case modGen:
		gi, ok := idx[n.name]
		if !ok {
			return 0, fmt.Errorf("wire: reference to unknown generator %q", n.name)
		}
		return gi[0], nil
	case modAct:
		deg, _, err := evalAlgebra(n.alg, ev)
		if err != nil {
			return 0, err
		}
		inner, err := firstTermDegree(n.m, ev, idx)
		if err != nil {
			return 0, err
		}
		return deg + inner, nil
	}
	return 0, fmt.Errorf("wire: unhandled module node %T", node)
}

// parseRelation evaluates rel (a sum of coeff*op*generator terms) as a
// vector in gens's free-module basis of degree d.
func parseRelation(rel string, ev *algebra.SteenrodEvaluator, useAdem bool, idx map[string][2]int, gens *module.FreeModule, d int) (*fp.FpVec, error) {
	node, err := newParser(rel).parseModuleExpr()
	if err != nil {
		return nil, err
	}
	gens.ComputeBasis(d) // relations may sit above the top generator degree
	out := fp.NewFpVec(gens.Prime(), gens.Dimension(d))
	if err := evalModuleIntoFree(node, ev, useAdem, idx, gens, d, out, 1); err != nil {
		return nil, err
	}
	return out, nil
}

// evalModuleIntoFree accumulates c * node into out, a vector in gens's
// basis of degree targetDeg, using gens.OperationGeneratorToIndex to place
// each (op, generator) pair directly onto its basis index.
func evalModuleIntoFree(node moduleNode, ev *algebra.SteenrodEvaluator, useAdem bool, idx map[string][2]int, gens *module.FreeModule, targetDeg int, out *fp.FpVec, c uint32) error {
	switch n := node.(type) {
	case modSum:
		if err := evalModuleIntoFree(n.a, ev, useAdem, idx, gens, targetDeg, out, c); err != nil {
			return err
		}
		return evalModuleIntoFree(n.b, ev, useAdem, idx, gens, targetDeg, out, c)
	case modGen:
		gi, ok := idx[n.name]
		if !ok {
			return fmt.Errorf("wire: reference to unknown generator %q", n.name)
		}
		if gi[0] != targetDeg {
			return fmt.Errorf("wire: generator %q has degree %d, expected %d (inhomogeneous relation?)", n.name, gi[0], targetDeg)
		}
		opIdx := unitOpIndex(gens.Algebra())
		out.AddBasisElement(gens.OperationGeneratorToIndex(0, opIdx, gi[0], gi[1]), c)
		return nil
	case modAct:
		opDeg, opVec, err := evalAlgebra(n.alg, ev)
		if err != nil {
			return err
		}
		if opDeg == 0 {
			// a bare scalar coefficient
			coeff := (c * opVec.Entry(0)) % gens.Prime().Uint32()
			return evalModuleIntoFree(n.m, ev, useAdem, idx, gens, targetDeg, out, coeff)
		}
		if useAdem {
			v, err := ev.ToAdem(opDeg, opVec)
			if err != nil {
				return err
			}
			opVec = v
		}
		gen, ok := n.m.(modGen)
		if !ok {
			return fmt.Errorf("wire: an algebra action must apply directly to a generator, not a sub-expression")
		}
		gi, ok := idx[gen.name]
		if !ok {
			return fmt.Errorf("wire: reference to unknown generator %q", gen.name)
		}
		if gi[0]+opDeg != targetDeg {
			return fmt.Errorf("wire: term degree %d does not match relation degree %d", gi[0]+opDeg, targetDeg)
		}
		for _, e := range opVec.IterNonzero() {
			coeff := (c * e.Value) % gens.Prime().Uint32()
			if coeff == 0 {
				continue
			}
			out.AddBasisElement(gens.OperationGeneratorToIndex(opDeg, e.Index, gi[0], gi[1]), coeff)
		}
		return nil
	}
	return fmt.Errorf("wire: unhandled module node %T", node)
}

// unitOpIndex returns the index of the degree-0 identity basis element,
// always index 0 for both bases (the empty admissible monomial / the
// empty Milnor element).
func unitOpIndex(alg algebra.Algebra) int {
	alg.ComputeBasis(0)
	return 0
}

// buildRP constructs the real projective space module RP(min..max): one
// generator x_n per cell n in [min, max], with Sq^i(x_n) = C(n,i) x_{n+i}
// (spec.md's supplemented "real projective space" module type; the
// classical action on H^*(RP^infinity; F_2), grounded on fp.Binomial).
func buildRP(def *ModuleDef, p fp.ValidPrime, alg algebra.Algebra) (*module.FDModule, error) {
	if p.Uint32() != 2 {
		return nil, fmt.Errorf("wire: real projective space modules are only defined at p=2")
	}
	if def.Max < def.Min {
		return nil, fmt.Errorf("wire: real projective space module needs max >= min")
	}
	fd := module.NewFDModule(alg, "RP", def.Min)
	for n := def.Min; n <= def.Max; n++ {
		fd.AddGenerators(n, []string{fmt.Sprintf("x%d", n)})
	}
	maxOp := def.Max - def.Min
	alg.ComputeBasis(maxOp)
	// Sq^i acts on x_n for every i with n+i <= max, via the binomial
	// coefficient formula; only i that are algebra generators (powers of
	// two for Adem, or the classical Milnor generators) need an explicit
	// SetAction, everything else is decomposed by the algebra itself.
	for n := def.Min; n <= def.Max; n++ {
		for i := 1; n+i <= def.Max; i++ {
			if !isAlgebraGeneratorDegree(alg, i) {
				continue
			}
			for _, opIdx := range alg.Generators(i) {
				c := fp.Binomial(p, n, i)
				image := fp.NewFpVec(p, fd.Dimension(n+i))
				if c != 0 {
					image.SetEntry(0, c)
				}
				fd.SetAction(i, opIdx, n, 0, image)
			}
		}
	}
	return fd, nil
}

func isAlgebraGeneratorDegree(alg algebra.Algebra, deg int) bool {
	return len(alg.Generators(deg)) > 0
}
