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

// innerJoinPushDownResult is the four-predicate bundle processInnerJoin
// produces (spec.md §9, "Result bundles over named tuples").
type innerJoinPushDownResult struct {
	LeftPredicate, RightPredicate, JoinPredicate, PostJoinPredicate rex.Expr
}

// outerJoinPushDownResult is the limited-outer-join analogue.
type outerJoinPushDownResult struct {
	OuterPredicate, InnerPredicate, JoinPredicate, PostJoinPredicate rex.Expr
}

func inScopeSet(scope rex.VarSet) func(rex.VarSet) bool {
	return func(vars rex.VarSet) bool { return scope.ContainsAll(vars) }
}

func notInScopeSet(scope rex.VarSet) func(rex.VarSet) bool {
	return func(vars rex.VarSet) bool {
		for n := range vars {
			if scope.ContainsName(n) {
				return false
			}
		}
		return true
	}
}

// anyConjunctRejectsNull reports whether some deterministic conjunct
// of p null-rejects side (spec.md §4.2, "Outer-to-inner
// normalization").
func (r *rewriter) anyConjunctRejectsNull(p rex.Expr, side rex.VarSet) bool {
	for _, c := range rex.ExtractConjuncts(p) {
		if !r.det.IsDeterministic(c) {
			continue
		}
		if r.null.RejectsNull(c, side) {
			return true
		}
	}
	return false
}

// normalizeOuterToInner implements the outer-to-inner normalization
// table (spec.md §4.2).
func (r *rewriter) normalizeOuterToInner(j *plan.Join, inherited rex.Expr) plan.JoinType {
	leftVars := plan.OutputSet(j.Left)
	rightVars := plan.OutputSet(j.Right)
	rejectsLeft := r.anyConjunctRejectsNull(inherited, leftVars)
	rejectsRight := r.anyConjunctRejectsNull(inherited, rightVars)
	switch j.Type {
	case plan.Full:
		switch {
		case rejectsLeft && rejectsRight:
			return plan.Inner
		case rejectsRight:
			return plan.Left
		case rejectsLeft:
			return plan.Right
		default:
			return plan.Full
		}
	case plan.Left:
		if rejectsRight {
			return plan.Inner
		}
		return plan.Left
	case plan.Right:
		if rejectsLeft {
			return plan.Inner
		}
		return plan.Right
	case plan.Inner:
		return plan.Inner
	default:
		unsupportedVariant("join type %v not in {INNER, LEFT, RIGHT, FULL}", j.Type)
		return j.Type
	}
}

// processInnerJoin implements spec.md §4.2, "Inner-join decomposition".
func (r *rewriter) processInnerJoin(inherited rex.Expr, left, right plan.Node, joinPredicate rex.Expr) innerJoinPushDownResult {
	leftScope := plan.OutputSet(left)

	detP := r.det.FilterDeterministicConjuncts(inherited)
	nonDetP := nonDeterministicConjuncts(r, inherited)
	detJ := r.det.FilterDeterministicConjuncts(joinPredicate)
	nonDetJ := nonDeterministicConjuncts(r, joinPredicate)

	eL := r.effectivePredicate(left)
	eR := r.effectivePredicate(right)

	all := r.newEqualityInference(detP, eL, eR, detJ)
	withoutLeft := r.newEqualityInference(detP, eR, detJ)
	withoutRight := r.newEqualityInference(detP, eL, detJ)

	inLeft := inScopeSet(leftScope)
	inRight := notInScopeSet(leftScope)

	var leftPush, rightPush, joinConjuncts []rex.Expr

	pushOrKeep := func(c rex.Expr) {
		leftRewritten, leftOK := all.RewriteExpression(c, inLeft, false)
		rightRewritten, rightOK := all.RewriteExpression(c, inRight, false)
		if leftOK {
			leftPush = append(leftPush, leftRewritten)
		}
		if rightOK {
			rightPush = append(rightPush, rightRewritten)
		}
		if !leftOK && !rightOK {
			joinConjuncts = append(joinConjuncts, c)
		}
	}

	ei := r.newEqualityInference(detP)
	for _, c := range ei.NonInferrableConjuncts() {
		pushOrKeep(c)
	}

	eiRight := r.newEqualityInference(eR)
	for _, c := range eiRight.NonInferrableConjuncts() {
		if rewritten, ok := all.RewriteExpression(c, inLeft, false); ok {
			leftPush = append(leftPush, rewritten)
		}
	}
	eiLeft := r.newEqualityInference(eL)
	for _, c := range eiLeft.NonInferrableConjuncts() {
		if rewritten, ok := all.RewriteExpression(c, inRight, false); ok {
			rightPush = append(rightPush, rewritten)
		}
	}

	eiJoin := r.newEqualityInference(detJ)
	for _, c := range eiJoin.NonInferrableConjuncts() {
		pushOrKeep(c)
	}

	leftPush = append(leftPush, withoutLeft.GenerateEqualitiesPartitionedBy(inLeft).ScopeEqualities...)
	rightPush = append(rightPush, withoutRight.GenerateEqualitiesPartitionedBy(inRight).ScopeEqualities...)

	straddling := all.GenerateEqualitiesPartitionedBy(inLeft).ScopeStraddlingEqualities
	joinConjuncts = append(joinConjuncts, straddling...)

	joinConjuncts = append(joinConjuncts, nonDetP...)
	joinConjuncts = append(joinConjuncts, nonDetJ...)

	return innerJoinPushDownResult{
		LeftPredicate:     rex.CombineConjunctList(leftPush),
		RightPredicate:    rex.CombineConjunctList(rightPush),
		JoinPredicate:     rex.CombineConjunctList(joinConjuncts),
		PostJoinPredicate: rex.True,
	}
}

// processLimitedOuterJoin implements spec.md §4.2, "Outer-join
// decomposition". outer is the preserved (non-null-padded) side and
// inner the null-padded side: for a LEFT join outer is the left input.
func (r *rewriter) processLimitedOuterJoin(inherited rex.Expr, outer, inner plan.Node, joinPredicate rex.Expr) outerJoinPushDownResult {
	outerScope := plan.OutputSet(outer)
	innerScope := plan.OutputSet(inner)
	inOuter := inScopeSet(outerScope)
	inInner := inScopeSet(innerScope)

	detP := r.det.FilterDeterministicConjuncts(inherited)
	nonDetP := nonDeterministicConjuncts(r, inherited)
	detJ := r.det.FilterDeterministicConjuncts(joinPredicate)
	nonDetJ := nonDeterministicConjuncts(r, joinPredicate)

	eOuter := r.effectivePredicate(outer)
	eInner := r.effectivePredicate(inner)

	i0 := r.newEqualityInference(detP)
	part0 := i0.GenerateEqualitiesPartitionedBy(inOuter)

	iPlus := r.newEqualityInference(rex.CombineConjunctList(part0.ScopeEqualities), eOuter, eInner, detJ)

	var outerPush, innerPush, joinConjuncts, postJoin []rex.Expr
	postJoin = append(postJoin, part0.ComplementEqualities...)
	postJoin = append(postJoin, part0.ScopeStraddlingEqualities...)

	ei := r.newEqualityInference(detP)
	for _, c := range ei.NonInferrableConjuncts() {
		outerRewritten, pushedOuter := i0.RewriteExpression(c, inOuter, false)
		if !pushedOuter {
			postJoin = append(postJoin, c)
			continue
		}
		outerPush = append(outerPush, outerRewritten)
		if innerRewritten, ok := iPlus.RewriteExpression(outerRewritten, inInner, false); ok {
			innerPush = append(innerPush, innerRewritten)
		}
	}

	eiOuter := r.newEqualityInference(eOuter)
	for _, c := range eiOuter.NonInferrableConjuncts() {
		if rewritten, ok := iPlus.RewriteExpression(c, inInner, false); ok {
			innerPush = append(innerPush, rewritten)
		}
	}

	eiJoin := r.newEqualityInference(detJ)
	for _, c := range eiJoin.NonInferrableConjuncts() {
		if rewritten, ok := iPlus.RewriteExpression(c, inInner, false); ok {
			innerPush = append(innerPush, rewritten)
		} else {
			joinConjuncts = append(joinConjuncts, c)
		}
	}

	partPlus := iPlus.GenerateEqualitiesPartitionedBy(inInner)
	innerPush = append(innerPush, partPlus.ScopeEqualities...)
	joinConjuncts = append(joinConjuncts, partPlus.ComplementEqualities...)
	joinConjuncts = append(joinConjuncts, partPlus.ScopeStraddlingEqualities...)

	detJOnly := r.newEqualityInference(detJ)
	innerPush = append(innerPush, detJOnly.GenerateEqualitiesPartitionedBy(inInner).ScopeEqualities...)

	joinConjuncts = append(joinConjuncts, nonDetP...)
	joinConjuncts = append(joinConjuncts, nonDetJ...)

	return outerJoinPushDownResult{
		OuterPredicate:    rex.CombineConjunctList(outerPush),
		InnerPredicate:    rex.CombineConjunctList(innerPush),
		JoinPredicate:     rex.CombineConjunctList(joinConjuncts),
		PostJoinPredicate: rex.CombineConjunctList(postJoin),
	}
}

func nonDeterministicConjuncts(r *rewriter, e rex.Expr) []rex.Expr {
	var out []rex.Expr
	for _, c := range rex.ExtractConjuncts(e) {
		if !r.det.IsDeterministic(c) {
			out = append(out, c)
		}
	}
	return out
}
