// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/SpectralSequences/sseq-sub004/algebra"
	"github.com/SpectralSequences/sseq-sub004/fp"
)

// A hand-written recursive-descent parser for the algebra/module relation
// grammar used by module-definition "actions" and "*_relations" entries
// (spec.md §6). Grounded on original_source/src/steenrod_parser.rs's
// grammar (sums of products of Sq^n / Sq(n1,...) / P(...) / Q_i tokens
// acting on named module generators); no parser-combinator library is in
// the dependency set this project carries forward, so it is reimplemented
// directly rather than hand-rolling a stand-in for one.

// algebraNode is a parsed algebra expression.
type algebraNode interface{ isAlgebraNode() }

type algProduct struct{ a, b algebraNode }
type algSum struct{ a, b algebraNode }
type algScalar struct{ c int }
type algSq struct{ n int }       // Sq<n> or P<n> at p=2
type algPTuple struct{ pp []int } // Sq(n1,n2,...) or P(n1,n2,...)
type algQ struct{ i int }        // Q<i>

func (algProduct) isAlgebraNode() {}
func (algSum) isAlgebraNode()     {}
func (algScalar) isAlgebraNode()  {}
func (algSq) isAlgebraNode()      {}
func (algPTuple) isAlgebraNode()  {}
func (algQ) isAlgebraNode()       {}

// moduleNode is a parsed module expression: a sum of algebra-acts-on-generator terms.
type moduleNode interface{ isModuleNode() }

type modAct struct {
	alg algebraNode
	m   moduleNode
}
type modSum struct{ a, b moduleNode }
type modGen struct{ name string }

func (modAct) isModuleNode() {}
func (modSum) isModuleNode() {}
func (modGen) isModuleNode() {}

// parser is a minimal hand-rolled scanner over a relation/action string.
type parser struct {
	s   string
	pos int
}

func newParser(s string) *parser { return &parser{s: s} }

func (p *parser) skipSpace() {
	for p.pos < len(p.s) && p.s[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *parser) eof() bool {
	p.skipSpace()
	return p.pos >= len(p.s)
}

func (p *parser) consume(c byte) bool {
	p.skipSpace()
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) errf(format string, args ...interface{}) error {
	return fmt.Errorf("wire: parse error at byte %d of %q: %s", p.pos, p.s, fmt.Sprintf(format, args...))
}

// parseAlgebraExpr parses a full algebra expression (sum of terms).
func (p *parser) parseAlgebraExpr() (algebraNode, error) {
	node, err := p.parseAlgebraTerm()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		if p.peek() == '+' {
			p.pos++
			rhs, err := p.parseAlgebraTerm()
			if err != nil {
				return nil, err
			}
			node = algSum{node, rhs}
			continue
		}
		if p.peek() == '-' {
			p.pos++
			rhs, err := p.parseAlgebraTerm()
			if err != nil {
				return nil, err
			}
			node = algSum{node, algProduct{algScalar{-1}, rhs}}
			continue
		}
		return node, nil
	}
}

// parseAlgebraTerm parses a product of factors separated by '*' or space.
func (p *parser) parseAlgebraTerm() (algebraNode, error) {
	node, err := p.parseAlgebraFactor()
	if err != nil {
		return nil, err
	}
	for {
		save := p.pos
		p.skipSpace()
		if p.peek() == '*' {
			p.pos++
		} else if p.pos < len(p.s) && isFactorStart(p.s[p.pos:]) {
			// space-separated implicit product
		} else {
			p.pos = save
			return node, nil
		}
		rhs, err := p.parseAlgebraFactor()
		if err != nil {
			return nil, err
		}
		node = algProduct{node, rhs}
	}
}

// isFactorStart reports whether rest begins a new algebra factor (used to
// disambiguate implicit-product whitespace from the end of the term,
// e.g. "Sq2 Sq1" is a product but "Sq2 x0" in a module term is not ours
// to consume here).
func isFactorStart(rest string) bool {
	if len(rest) == 0 {
		return false
	}
	c := rest[0]
	return c == '(' || unicode.IsDigit(rune(c)) ||
		strings.HasPrefix(rest, "Sq") || strings.HasPrefix(rest, "P") || strings.HasPrefix(rest, "Q")
}

func (p *parser) parseAlgebraFactor() (algebraNode, error) {
	p.skipSpace()
	if p.consume('(') {
		node, err := p.parseAlgebraExpr()
		if err != nil {
			return nil, err
		}
		if !p.consume(')') {
			return nil, p.errf("expected ')'")
		}
		return node, nil
	}
	rest := p.s[p.pos:]
	switch {
	case strings.HasPrefix(rest, "Sq") || strings.HasPrefix(rest, "P"):
		prefixLen := 2
		if rest[0] == 'P' {
			prefixLen = 1
		}
		p.pos += prefixLen
		return p.parseGeneratorTail()
	case strings.HasPrefix(rest, "Q"):
		p.pos++
		n, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		return algQ{i: n}, nil
	case len(rest) > 0 && (unicode.IsDigit(rune(rest[0])) || rest[0] == '-'):
		n, err := p.parseSignedInt()
		if err != nil {
			return nil, err
		}
		return algScalar{c: n}, nil
	}
	return nil, p.errf("expected algebra factor")
}

// parseGeneratorTail parses the part after "Sq"/"P": either a bare
// integer (Sq7) or a parenthesised comma list (Sq(2,1)).
func (p *parser) parseGeneratorTail() (algebraNode, error) {
	if p.peek() == '(' {
		p.pos++
		var nums []int
		for {
			n, err := p.parseInt()
			if err != nil {
				return nil, err
			}
			nums = append(nums, n)
			if p.consume(',') {
				continue
			}
			break
		}
		if !p.consume(')') {
			return nil, p.errf("expected ')' closing tuple")
		}
		return algPTuple{pp: nums}, nil
	}
	n, err := p.parseInt()
	if err != nil {
		return nil, err
	}
	return algSq{n: n}, nil
}

func (p *parser) parseInt() (int, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.s) && unicode.IsDigit(rune(p.s[p.pos])) {
		p.pos++
	}
	if p.pos == start {
		return 0, p.errf("expected integer")
	}
	return strconv.Atoi(p.s[start:p.pos])
}

func (p *parser) parseSignedInt() (int, error) {
	p.skipSpace()
	neg := false
	if p.peek() == '-' {
		neg = true
		p.pos++
	} else if p.peek() == '+' {
		p.pos++
	}
	n, err := p.parseInt()
	if err != nil {
		return 0, err
	}
	if neg {
		n = -n
	}
	return n, nil
}

// parseModuleExpr parses a sum of (optional coefficient/algebra-action)
// generator terms, e.g. "Sq1 x0 + 2 x1 - x2".
func (p *parser) parseModuleExpr() (moduleNode, error) {
	node, err := p.parseModuleTerm()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		if p.peek() == '+' {
			p.pos++
			rhs, err := p.parseModuleTerm()
			if err != nil {
				return nil, err
			}
			node = modSum{node, rhs}
			continue
		}
		if p.peek() == '-' {
			p.pos++
			rhs, err := p.parseModuleTerm()
			if err != nil {
				return nil, err
			}
			node = modSum{node, modAct{algScalar{-1}, rhs}}
			continue
		}
		return node, nil
	}
}

func (p *parser) parseModuleTerm() (moduleNode, error) {
	p.skipSpace()
	var alg algebraNode
	if isFactorStart(p.s[p.pos:]) {
		a, err := p.parseAlgebraTerm()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		p.consume('*')
		alg = a
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	var node moduleNode = modGen{name: name}
	if alg != nil {
		node = modAct{alg: alg, m: node}
	}
	return node, nil
}

func (p *parser) parseIdent() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.s) && (unicode.IsLetter(rune(p.s[p.pos])) || unicode.IsDigit(rune(p.s[p.pos])) || p.s[p.pos] == '_') {
		p.pos++
	}
	if p.pos == start {
		return "", p.errf("expected generator name")
	}
	name := p.s[start:p.pos]
	if strings.HasPrefix(name, "Sq") || strings.HasPrefix(name, "P") || strings.HasPrefix(name, "Q") {
		return "", p.errf("module generators may not start with Sq, P, or Q: %q", name)
	}
	return name, nil
}

// evalAlgebra evaluates an algebra expression to (degree, vector in the
// Milnor basis of that degree).
func evalAlgebra(node algebraNode, ev *algebra.SteenrodEvaluator) (int, *fp.FpVec, error) {
	switch n := node.(type) {
	case algScalar:
		v := ev.UnitVector()
		v.Scale(uint32(((n.c % int(ev.Milnor().Prime().Uint32())) + int(ev.Milnor().Prime().Uint32())) % int(ev.Milnor().Prime().Uint32())))
		return 0, v, nil
	case algSq:
		deg, v := ev.SingleMilnorElement(algebra.MilnorElt{P: []int{n.n}})
		return deg, v, nil
	case algPTuple:
		deg, v := ev.SingleMilnorElement(algebra.MilnorElt{P: append([]int(nil), n.pp...)})
		return deg, v, nil
	case algQ:
		deg, v := ev.SingleMilnorElement(algebra.MilnorElt{Q: uint64(1) << uint(n.i)})
		return deg, v, nil
	case algSum:
		degA, va, err := evalAlgebra(n.a, ev)
		if err != nil {
			return 0, nil, err
		}
		degB, vb, err := evalAlgebra(n.b, ev)
		if err != nil {
			return 0, nil, err
		}
		if degA != degB {
			return 0, nil, fmt.Errorf("wire: inhomogeneous sum of algebra terms in degrees %d and %d", degA, degB)
		}
		out := va.Clone()
		out.Add(vb, 1)
		return degA, out, nil
	case algProduct:
		degA, va, err := evalAlgebra(n.a, ev)
		if err != nil {
			return 0, nil, err
		}
		degB, vb, err := evalAlgebra(n.b, ev)
		if err != nil {
			return 0, nil, err
		}
		milnor := ev.Milnor()
		milnor.ComputeBasis(degA + degB)
		out := fp.NewFpVec(milnor.Prime(), milnor.Dimension(degA+degB))
		for _, ea := range va.IterNonzero() {
			for _, eb := range vb.IterNonzero() {
				c := (ea.Value * eb.Value) % milnor.Prime().Uint32()
				if c == 0 {
					continue
				}
				milnor.MultiplyBasisElements(out, c, degA, ea.Index, degB, eb.Index)
			}
		}
		return degA + degB, out, nil
	}
	return 0, nil, fmt.Errorf("wire: unhandled algebra node %T", node)
}
