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

// FunctionCatalog is the subset of the metadata catalog (spec.md §6,
// "Metadata catalog (read-only)") that the expression algebra needs:
// whether a named, non-built-in function is deterministic, and how to
// fold a call to it once every argument is a constant. Implemented by
// package catalog; declared here (rather than imported from there) so
// this package has no dependency on the catalog's YAML/gval machinery —
// only on the two operations the algebra actually calls.
type FunctionCatalog interface {
	IsDeterministic(op Op) bool
	Fold(op Op, args []Expr) (Expr, bool)
}

// nondeterministicBuiltins are the built-in operators that are never
// safe to duplicate or relocate across a row boundary.
var nondeterministicBuiltins = map[Op]bool{RandomFn: true, NowFn: true, UUIDFn: true}

// DeterminismEvaluator answers IsDeterministic, consulting a
// FunctionCatalog for any operator it doesn't recognize as built-in.
// The zero value (nil Catalog) treats unrecognized operators as
// deterministic absent catalog metadata saying otherwise.
type DeterminismEvaluator struct {
	Catalog FunctionCatalog
}

func (d DeterminismEvaluator) IsDeterministic(e Expr) bool {
	switch n := e.(type) {
	case nil, *Constant, *Variable:
		return true
	case *DynamicFilter:
		return true
	case *Call:
		if nondeterministicBuiltins[n.Op] {
			return false
		}
		if !isBuiltin(n.Op) && d.Catalog != nil && !d.Catalog.IsDeterministic(n.Op) {
			return false
		}
		for _, a := range n.Args {
			if !d.IsDeterministic(a) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func isBuiltin(op Op) bool {
	switch op {
	case And, Or, Not, Eq, Neq, Lt, Le, Gt, Ge, Plus, Minus, Mul, Div, IsNull, IsNotNull, Try, RandomFn, NowFn, UUIDFn:
		return true
	default:
		return false
	}
}

// FilterDeterministicConjuncts drops every non-deterministic top-level
// conjunct of e, combining the rest back with CombineConjuncts.
func (d DeterminismEvaluator) FilterDeterministicConjuncts(e Expr) Expr {
	var kept []Expr
	for _, c := range ExtractConjuncts(e) {
		if d.IsDeterministic(c) {
			kept = append(kept, c)
		}
	}
	return CombineConjuncts(kept...)
}

// Partition splits e's conjuncts into those satisfying pred and the
// rest, preserving order within each half. A small helper used by
// several per-operator rules (Window, MarkDistinct, GroupId, ...) that
// all partition the inherited predicate the same way.
func Partition(e Expr, pred func(Expr) bool) (yes, no []Expr) {
	for _, c := range ExtractConjuncts(e) {
		if pred(c) {
			yes = append(yes, c)
		} else {
			no = append(no, c)
		}
	}
	return
}
