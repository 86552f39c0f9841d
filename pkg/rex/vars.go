// Copyright 2021 EMQ Technologies Co., Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rex

// VarSet is a set of variables keyed by name.
type VarSet map[string]*Variable

func NewVarSet(vars ...*Variable) VarSet {
	s := make(VarSet, len(vars))
	for _, v := range vars {
		s[v.Name] = v
	}
	return s
}

func (s VarSet) Contains(v *Variable) bool { return s[v.Name] != nil }

func (s VarSet) ContainsName(name string) bool { _, ok := s[name]; return ok }

// ContainsAll reports whether every variable in other is also in s.
func (s VarSet) ContainsAll(other VarSet) bool {
	for n := range other {
		if !s.ContainsName(n) {
			return false
		}
	}
	return true
}

func (s VarSet) Names() []string { return sortedNames(s) }

func (s VarSet) List() []*Variable {
	out := make([]*Variable, 0, len(s))
	for _, n := range s.Names() {
		out = append(out, s[n])
	}
	return out
}

// ExtractUnique returns the set of distinct variables referenced by e.
func ExtractUnique(e Expr) VarSet {
	set := VarSet{}
	walkVars(e, func(v *Variable) { set[v.Name] = v })
	return set
}

// ExtractAll returns every variable occurrence, including duplicates —
// used by the Project inlining-candidate test (spec.md §4.1.2), which
// needs occurrence counts, not just a set.
func ExtractAll(e Expr) []*Variable {
	var out []*Variable
	walkVars(e, func(v *Variable) { out = append(out, v) })
	return out
}

func walkVars(e Expr, visit func(*Variable)) {
	switch n := e.(type) {
	case nil:
		return
	case *Constant:
		return
	case *Variable:
		visit(n)
	case *Call:
		for _, a := range n.Args {
			walkVars(a, visit)
		}
	case *DynamicFilter:
		visit(n.Probe)
	}
}

// UniqueSubExpressions returns every distinct sub-expression of e
// (structural equality), used by the Project rule to reject pushing a
// conjunct that contains a TRY call anywhere within it (spec.md §4.1.2).
func UniqueSubExpressions(e Expr) []Expr {
	seen := map[string]bool{}
	var out []Expr
	var walk func(Expr)
	walk = func(n Expr) {
		if n == nil {
			return
		}
		key := n.String()
		if !seen[key] {
			seen[key] = true
			out = append(out, n)
		}
		if c, ok := n.(*Call); ok {
			for _, a := range c.Args {
				walk(a)
			}
		}
	}
	walk(e)
	return out
}

// ContainsTry reports whether any sub-expression of e is a TRY call.
func ContainsTry(e Expr) bool {
	for _, sub := range UniqueSubExpressions(e) {
		if c, ok := sub.(*Call); ok && c.Op == Try {
			return true
		}
	}
	return false
}
