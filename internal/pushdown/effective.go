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

package pushdown

import (
	"github.com/shobhitham/hetu-core/pkg/plan"
	"github.com/shobhitham/hetu-core/pkg/rex"
)

// effectivePredicate conservatively summarizes a predicate guaranteed
// to hold on every row n produces (spec.md §6, "Effective-predicate
// extractor"). It is intentionally shallow: missing an implied
// predicate only costs a pushdown opportunity, never correctness, so
// unrecognized node shapes simply contribute TRUE.
func (r *rewriter) effectivePredicate(n plan.Node) rex.Expr {
	switch t := n.(type) {
	case *plan.Filter:
		return r.simp.Simplify(combineAll(t.Predicate, r.effectivePredicate(t.Source)))
	case *plan.TableScan:
		return rex.True
	case *plan.Project:
		inner := r.effectivePredicate(t.Source)
		replacements := map[string]rex.Expr{}
		for _, a := range t.Assignments {
			if _, isVar := a.Expr.(*rex.Variable); isVar {
				continue
			}
			replacements[a.Output.Name] = a.Expr
		}
		rewritten := rex.InlineVariables(replacements, inner)
		out := plan.OutputSet(t)
		kept := rex.CombineConjunctList(filterInScope(rewritten, out))
		return r.simp.Simplify(kept)
	case *plan.Join:
		if t.Type != plan.Inner {
			return rex.True
		}
		return r.simp.Simplify(combineAll(r.effectivePredicate(t.Left), r.effectivePredicate(t.Right), t.FilterOrTrue()))
	default:
		return rex.True
	}
}

// filterInScope keeps only the conjuncts of e whose free variables
// are all present in scope.
func filterInScope(e rex.Expr, scope rex.VarSet) []rex.Expr {
	var out []rex.Expr
	for _, c := range rex.ExtractConjuncts(e) {
		if scope.ContainsAll(rex.ExtractUnique(c)) {
			out = append(out, c)
		}
	}
	return out
}
