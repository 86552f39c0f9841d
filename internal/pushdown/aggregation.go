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
	"github.com/shobhitham/hetu-core/internal/pushdown/metric"
	"github.com/shobhitham/hetu-core/pkg/plan"
	"github.com/shobhitham/hetu-core/pkg/rex"
)

// visitAggregation implements spec.md §4.1.6.
func (r *rewriter) visitAggregation(a *plan.Aggregation, inherited rex.Expr) plan.Node {
	if a.HasGlobalAggregationRow() {
		return r.defaultRule(a, inherited)
	}
	keyScope := rex.NewVarSet(a.GroupingKeys...)
	pushable, residual := r.pushThroughKeyedScope(inherited, keyScope, func(c rex.Expr) bool {
		return a.GroupIDSymbol != nil && rex.ExtractUnique(c).ContainsName(a.GroupIDSymbol.Name)
	})
	metric.ConjunctsPushed.WithLabelValues("Aggregation").Add(float64(len(rex.ExtractConjuncts(pushable))))
	return r.rewriteChildAndWrap(a, pushable, residual)
}

// visitUnnest implements spec.md §4.1.7: same shape as Aggregation,
// keyed on the replicated symbol set instead of the grouping keys.
func (r *rewriter) visitUnnest(u *plan.Unnest, inherited rex.Expr) plan.Node {
	keyScope := rex.NewVarSet(u.ReplicateSymbols...)
	pushable, residual := r.pushThroughKeyedScope(inherited, keyScope, func(rex.Expr) bool { return false })
	metric.ConjunctsPushed.WithLabelValues("Unnest").Add(float64(len(rex.ExtractConjuncts(pushable))))
	return r.rewriteChildAndWrap(u, pushable, residual)
}

// pushThroughKeyedScope is the shared Aggregation/Unnest pushdown
// shape: non-deterministic conjuncts and any conjunct excludeFromPush
// flags stay above unconditionally; the rest is tried against an
// equality inference keyed on scope, re-emitting scope-internal
// equalities below and complement/straddling equalities above.
func (r *rewriter) pushThroughKeyedScope(inherited rex.Expr, scope rex.VarSet, excludeFromPush func(rex.Expr) bool) (pushable, residual rex.Expr) {
	var blocked, candidates []rex.Expr
	for _, c := range rex.ExtractConjuncts(inherited) {
		if !r.det.IsDeterministic(c) || excludeFromPush(c) {
			blocked = append(blocked, c)
			continue
		}
		candidates = append(candidates, c)
	}

	ei := r.newEqualityInference(rex.CombineConjunctList(candidates))
	inScope := func(vars rex.VarSet) bool { return scope.ContainsAll(vars) }

	var pushed, keptAbove []rex.Expr
	for _, c := range ei.NonInferrableConjuncts() {
		if rewritten, ok := ei.RewriteExpression(c, inScope, false); ok {
			pushed = append(pushed, rewritten)
		} else {
			keptAbove = append(keptAbove, c)
		}
	}
	part := ei.GenerateEqualitiesPartitionedBy(inScope)
	pushed = append(pushed, part.ScopeEqualities...)
	keptAbove = append(keptAbove, part.ComplementEqualities...)
	keptAbove = append(keptAbove, part.ScopeStraddlingEqualities...)
	keptAbove = append(keptAbove, blocked...)

	return rex.CombineConjunctList(pushed), rex.CombineConjunctList(keptAbove)
}
