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

// visitJoin implements spec.md §4.2 end to end: outer-to-inner
// normalization, the inner/outer decomposition kernels, equi-clause
// extraction, the two degenerate-case rewrites, distribution-type
// preservation, dynamic-filter synthesis, and the structural-stability
// guard.
func (r *rewriter) visitJoin(j *plan.Join, inherited rex.Expr) plan.Node {
	originalOutput := j.Output()
	leftScope := plan.OutputSet(j.Left)
	rightScope := plan.OutputSet(j.Right)
	r.currentLeftScope, r.currentRightScope = leftScope, rightScope
	defer func() { r.currentLeftScope, r.currentRightScope = nil, nil }()

	newType := r.normalizeOuterToInner(j, inherited)
	if newType != j.Type {
		metric.JoinsNormalized.WithLabelValues(j.Type.String() + "->" + newType.String()).Inc()
		r.warnings.Add("pushdown: join %s normalized from %s to %s", j.NodeID, j.Type, newType)
	}

	var leftPred, rightPred, joinPredicate, postJoin rex.Expr
	switch newType {
	case plan.Inner:
		res := r.processInnerJoin(inherited, j.Left, j.Right, j.FilterOrTrue())
		leftPred, rightPred, joinPredicate, postJoin = res.LeftPredicate, res.RightPredicate, res.JoinPredicate, res.PostJoinPredicate
	case plan.Left:
		res := r.processLimitedOuterJoin(inherited, j.Left, j.Right, j.FilterOrTrue())
		leftPred, rightPred, joinPredicate, postJoin = res.OuterPredicate, res.InnerPredicate, res.JoinPredicate, res.PostJoinPredicate
	case plan.Right:
		res := r.processLimitedOuterJoin(inherited, j.Right, j.Left, j.FilterOrTrue())
		rightPred, leftPred, joinPredicate, postJoin = res.OuterPredicate, res.InnerPredicate, res.JoinPredicate, res.PostJoinPredicate
	case plan.Full:
		// No named kernel covers an un-normalized FULL join: neither
		// side is provably preserved, so nothing inherited can be
		// pushed to either input, and the inherited predicate has
		// nowhere to go but straight back above the join.
		leftPred, rightPred = rex.True, rex.True
		joinPredicate = j.FilterOrTrue()
		postJoin = inherited
	}

	equiClauses, residual, leftExtra, rightExtra := r.extractEquiClauses(leftScope, rightScope, joinPredicate)
	residual = r.simp.Simplify(residual)

	var dynamicFilters []plan.DynamicFilterAssignment
	if rex.IsFalse(residual) {
		// Degenerate case 1 (spec.md §4.2): a provably-false join
		// predicate collapses any equi-clauses with it (an AND with a
		// FALSE conjunct is FALSE regardless), so there is nothing left
		// to hash on. Replace it with an explicit false comparison
		// rather than leaving a bare FALSE literal, so later passes see
		// an ordinary comparison on the join rather than a degenerate
		// sentinel value.
		equiClauses, leftExtra, rightExtra = nil, nil, nil
		residual = falseComparison()
		r.warnings.Add("pushdown: join %s predicate simplified to FALSE, replaced with 0 = 1", j.NodeID)
	} else if newType == plan.Inner && len(equiClauses) == 0 && !rex.IsTrue(residual) {
		// Degenerate case 2: an INNER join with a residual filter but
		// no hashable equi-clause can't be executed as a hash join at
		// all; fold the filter above the join instead of leaving it on
		// a Join node that has no key to probe with.
		postJoin = combineAll(postJoin, residual)
		residual = rex.True
	} else if r.dynamicFilteringEnabled() && (newType == plan.Inner || newType == plan.Right) {
		dfResult := r.synthesizeDynamicFilters(equiClauses, residual)
		dynamicFilters = dfResult.Assignments
		leftPred = combineAll(leftPred, dfResult.ProbePredicate)
	}

	metric.ConjunctsPushed.WithLabelValues("JoinLeft").Add(float64(len(rex.ExtractConjuncts(leftPred))))
	metric.ConjunctsPushed.WithLabelValues("JoinRight").Add(float64(len(rex.ExtractConjuncts(rightPred))))
	newLeft := r.Visit(j.Left, leftPred)
	newRight := r.Visit(j.Right, rightPred)
	newLeft = extendWithProjection(r, newLeft, leftExtra)
	newRight = extendWithProjection(r, newRight, rightExtra)

	var filterField rex.Expr
	if !rex.IsTrue(residual) {
		filterField = residual
	}

	if newLeft == j.Left && newRight == j.Right && newType == j.Type &&
		equiClausesEqual(equiClauses, j.EquiClauses) && r.simp.Equivalent(j.FilterOrTrue(), rexOrTrue(filterField)) &&
		dynamicFiltersEqual(dynamicFilters, j.DynamicFilters) && rex.IsTrue(postJoin) {
		return j
	}

	rebuilt := &plan.Join{
		NodeID:         r.nodeIDs.Next(),
		Type:           newType,
		Left:           newLeft,
		Right:          newRight,
		EquiClauses:    equiClauses,
		Filter:         filterField,
		Distribution:   preserveDistribution(j.Distribution, newType),
		DynamicFilters: dynamicFilters,
		Spillable:      j.Spillable,
	}
	var result plan.Node = rebuilt
	if len(leftExtra) > 0 || len(rightExtra) > 0 {
		result = restoreOutputOrder(r, rebuilt, originalOutput)
	}
	return r.installFilter(result, postJoin)
}

// restoreOutputOrder re-projects node down to exactly the symbols in
// original, in their original order: equi-clause extraction
// (extendWithProjection) may have appended fresh key symbols to one
// or both of the join's inputs, which otherwise leak into the join's
// own output and drift its column order.
func restoreOutputOrder(r *rewriter, node plan.Node, original []*plan.Symbol) plan.Node {
	assignments := make([]plan.Assignment, len(original))
	for i, sym := range original {
		assignments[i] = plan.Assignment{Output: sym, Expr: sym}
	}
	return &plan.Project{NodeID: r.nodeIDs.Next(), Assignments: assignments, Source: node}
}

func rexOrTrue(e rex.Expr) rex.Expr {
	if e == nil {
		return rex.True
	}
	return e
}

func equiClausesEqual(a, b []plan.EquiClause) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Left.Name != b[i].Left.Name || a[i].Right.Name != b[i].Right.Name {
			return false
		}
	}
	return true
}

func dynamicFiltersEqual(a, b []plan.DynamicFilterAssignment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].BuildSymbol.Name != b[i].BuildSymbol.Name {
			return false
		}
	}
	return true
}

// falseComparison is the explicit "0 = 1" sentinel spec.md §4.2's
// first degenerate case installs in place of a bare FALSE literal.
func falseComparison() rex.Expr {
	return &rex.Call{Op: rex.Eq, Args: []rex.Expr{
		&rex.Constant{Val: int64(0), Typ: rex.Bigint},
		&rex.Constant{Val: int64(1), Typ: rex.Bigint},
	}, Typ: rex.Boolean}
}

// preserveDistribution implements spec.md §4.2's distribution-type
// preservation rule. An unset distribution is left unset; only an
// explicitly set one is adjusted to what the join type mandates.
func preserveDistribution(original plan.DistributionType, newType plan.JoinType) plan.DistributionType {
	if original == plan.DistributionUnspecified {
		return original
	}
	if newType.MustPartition() {
		return plan.Partitioned
	}
	if newType.MustReplicate() {
		return plan.Replicated
	}
	return original
}

// extractEquiClauses implements spec.md §4.2's "Equi-clause
// extraction": every top-level conjunct of the form
// left-side-expr = right-side-expr becomes an EquiClause, introducing
// a fresh symbol (and a matching identity-extending projection
// assignment on whichever side needs it) for any operand that isn't
// already a bare variable. Everything else is returned as residual.
func (r *rewriter) extractEquiClauses(leftScope, rightScope rex.VarSet, predicate rex.Expr) ([]plan.EquiClause, rex.Expr, []plan.Assignment, []plan.Assignment) {
	var clauses []plan.EquiClause
	var residual []rex.Expr
	var leftExtra, rightExtra []plan.Assignment

	for _, c := range rex.ExtractConjuncts(predicate) {
		call, ok := c.(*rex.Call)
		if !ok || call.Op != rex.Eq || len(call.Args) != 2 {
			residual = append(residual, c)
			continue
		}
		a, b := call.Args[0], call.Args[1]
		aVars, bVars := rex.ExtractUnique(a), rex.ExtractUnique(b)

		var leftExpr, rightExpr rex.Expr
		switch {
		case leftScope.ContainsAll(aVars) && rightScope.ContainsAll(bVars):
			leftExpr, rightExpr = a, b
		case leftScope.ContainsAll(bVars) && rightScope.ContainsAll(aVars):
			leftExpr, rightExpr = b, a
		default:
			residual = append(residual, c)
			continue
		}

		leftSym, assign := r.asSymbol(leftExpr)
		if assign != nil {
			leftExtra = append(leftExtra, *assign)
		}
		rightSym, assign := r.asSymbol(rightExpr)
		if assign != nil {
			rightExtra = append(rightExtra, *assign)
		}
		clauses = append(clauses, plan.EquiClause{Left: leftSym, Right: rightSym})
	}

	return clauses, rex.CombineConjunctList(residual), leftExtra, rightExtra
}

// asSymbol returns expr directly if it's already a bare variable;
// otherwise it allocates a fresh symbol and an assignment projecting
// expr to it.
func (r *rewriter) asSymbol(expr rex.Expr) (*rex.Variable, *plan.Assignment) {
	if v, ok := expr.(*rex.Variable); ok {
		return v, nil
	}
	sym := r.symbols.NewSymbol(expr.String(), expr.Type())
	return sym, &plan.Assignment{Output: sym, Expr: expr}
}

// extendWithProjection installs extra as additional assignments atop
// node, identity-projecting every one of node's existing output
// columns alongside them. An already-Project node gets the
// assignments appended directly instead of a redundant second layer.
func extendWithProjection(r *rewriter, node plan.Node, extra []plan.Assignment) plan.Node {
	if len(extra) == 0 {
		return node
	}
	if p, ok := node.(*plan.Project); ok {
		next := *p
		next.NodeID = r.nodeIDs.Next()
		next.Assignments = append(append([]plan.Assignment{}, p.Assignments...), extra...)
		return &next
	}
	assignments := make([]plan.Assignment, 0, len(node.Output())+len(extra))
	for _, s := range node.Output() {
		assignments = append(assignments, plan.Assignment{Output: s, Expr: s})
	}
	assignments = append(assignments, extra...)
	return &plan.Project{NodeID: r.nodeIDs.Next(), Assignments: assignments, Source: node}
}

// visitSpatialJoin implements spec.md §4.4: structurally parallel to
// Join but simpler. Only INNER and LEFT occur, the filter is
// mandatory and can never become FALSE (a spatial predicate has no
// constant-foldable boolean literal form), outer-to-inner
// normalization only ever applies to LEFT, and there are no
// equi-clauses or dynamic filters to synthesize.
func (r *rewriter) visitSpatialJoin(s *plan.SpatialJoin, inherited rex.Expr) plan.Node {
	rightScope := plan.OutputSet(s.Right)

	newType := s.Type
	if s.Type == plan.SpatialLeft && r.anyConjunctRejectsNull(inherited, rightScope) {
		newType = plan.SpatialInner
	}

	var leftPred, rightPred, joinPredicate, postJoin rex.Expr
	if newType == plan.SpatialInner {
		res := r.processInnerJoin(inherited, s.Left, s.Right, s.Filter)
		leftPred, rightPred, joinPredicate, postJoin = res.LeftPredicate, res.RightPredicate, res.JoinPredicate, res.PostJoinPredicate
	} else {
		res := r.processLimitedOuterJoin(inherited, s.Left, s.Right, s.Filter)
		leftPred, rightPred, joinPredicate, postJoin = res.OuterPredicate, res.InnerPredicate, res.JoinPredicate, res.PostJoinPredicate
	}

	newLeft := r.Visit(s.Left, leftPred)
	newRight := r.Visit(s.Right, rightPred)

	if newLeft == s.Left && newRight == s.Right && newType == s.Type && r.simp.Equivalent(joinPredicate, s.Filter) && rex.IsTrue(postJoin) {
		return s
	}

	rebuilt := &plan.SpatialJoin{
		NodeID:             r.nodeIDs.Next(),
		Type:               newType,
		Left:               newLeft,
		Right:              newRight,
		Filter:             r.simp.Simplify(joinPredicate),
		PartitioningSymbol: s.PartitioningSymbol,
		SpatialIndexHint:   s.SpatialIndexHint,
	}
	return r.installFilter(rebuilt, postJoin)
}

// visitSemiJoin implements spec.md §4.1.10's two sub-rules.
func (r *rewriter) visitSemiJoin(s *plan.SemiJoin, inherited rex.Expr) plan.Node {
	sourceScope := plan.OutputSet(s.Source)

	if !rex.ExtractUnique(inherited).ContainsName(s.OutputSymbol.Name) {
		return r.visitNonFilteringSemiJoin(s, inherited, sourceScope)
	}
	return r.visitFilteringSemiJoin(s, inherited, sourceScope)
}

// visitNonFilteringSemiJoin handles the case where the inherited
// predicate doesn't reference the semi-join's own boolean output: P
// pushes straight to the source side (non-deterministic conjuncts
// included, since they don't need to survive re-evaluation against a
// different row set the way a filtering predicate would), and the
// filtering side is recursed with TRUE.
func (r *rewriter) visitNonFilteringSemiJoin(s *plan.SemiJoin, inherited rex.Expr, sourceScope rex.VarSet) plan.Node {
	pushable, residual := rex.Partition(inherited, func(c rex.Expr) bool {
		return sourceScope.ContainsAll(rex.ExtractUnique(c))
	})
	metric.ConjunctsPushed.WithLabelValues("SemiJoin").Add(float64(len(pushable)))
	newSource := r.Visit(s.Source, rex.CombineConjunctList(pushable))
	newFiltering := r.Visit(s.FilteringSource, rex.True)
	rebuilt := s
	if newSource != s.Source || newFiltering != s.FilteringSource {
		rebuilt = &plan.SemiJoin{
			NodeID:              r.nodeIDs.Next(),
			Source:              newSource,
			FilteringSource:     newFiltering,
			SourceJoinSymbol:    s.SourceJoinSymbol,
			FilteringJoinSymbol: s.FilteringJoinSymbol,
			OutputSymbol:        s.OutputSymbol,
			DynamicFilterID:     s.DynamicFilterID,
		}
	}
	return r.installFilter(rebuilt, rex.CombineConjunctList(residual))
}

// visitFilteringSemiJoin handles a predicate that does reference the
// semi-join's boolean output: it can't be pushed at all (the output
// doesn't exist below the node), but conjuncts unrelated to it can
// still be related, via the join's equi-condition, to the source
// side. A dynamic filter is synthesized on the source side, gated on
// dynamic filtering being enabled and no id already claimed.
func (r *rewriter) visitFilteringSemiJoin(s *plan.SemiJoin, inherited rex.Expr, sourceScope rex.VarSet) plan.Node {
	detP := r.det.FilterDeterministicConjuncts(inherited)
	eSource := r.effectivePredicate(s.Source)
	eFiltering := r.effectivePredicate(s.FilteringSource)
	joinEquality := rex.NewEquals(s.SourceJoinSymbol, s.FilteringJoinSymbol)

	ei := r.newEqualityInference(detP, eSource, eFiltering, joinEquality)
	inSource := inScopeSet(sourceScope)

	var sourcePush, kept []rex.Expr
	for _, c := range rex.ExtractConjuncts(inherited) {
		if rex.ExtractUnique(c).ContainsName(s.OutputSymbol.Name) {
			kept = append(kept, c)
			continue
		}
		if !r.det.IsDeterministic(c) {
			sourcePush = append(sourcePush, c)
			continue
		}
		if rewritten, ok := ei.RewriteExpression(c, inSource, false); ok {
			sourcePush = append(sourcePush, rewritten)
		} else {
			kept = append(kept, c)
		}
	}

	dynamicFilterID := s.DynamicFilterID
	if r.dynamicFilteringEnabled() && dynamicFilterID == "" {
		dynamicFilterID = r.dfIDs.Next()
		sourcePush = append(sourcePush, &rex.DynamicFilter{ID: dynamicFilterID, Probe: s.SourceJoinSymbol})
	}

	metric.ConjunctsPushed.WithLabelValues("SemiJoin").Add(float64(len(sourcePush)))
	newSource := r.Visit(s.Source, rex.CombineConjunctList(sourcePush))
	newFiltering := r.Visit(s.FilteringSource, rex.True)

	rebuilt := s
	if newSource != s.Source || newFiltering != s.FilteringSource || dynamicFilterID != s.DynamicFilterID {
		rebuilt = &plan.SemiJoin{
			NodeID:              r.nodeIDs.Next(),
			Source:              newSource,
			FilteringSource:     newFiltering,
			SourceJoinSymbol:    s.SourceJoinSymbol,
			FilteringJoinSymbol: s.FilteringJoinSymbol,
			OutputSymbol:        s.OutputSymbol,
			DynamicFilterID:     dynamicFilterID,
		}
	}
	return r.installFilter(rebuilt, rex.CombineConjunctList(kept))
}
