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

// dynamicFilterResult bundles the synthesizer's output: the
// assignments to record on the Join node and the extra probe-side
// predicate to push into the probe input (spec.md §4.3).
type dynamicFilterResult struct {
	Assignments    []plan.DynamicFilterAssignment
	ProbePredicate rex.Expr
}

// synthesizeDynamicFilters implements spec.md §4.3. It is only
// called when dynamic filtering is enabled and the (possibly
// normalized) join type is INNER or RIGHT, in which case probe is
// always the left side and build the right side.
func (r *rewriter) synthesizeDynamicFilters(equiClauses []plan.EquiClause, residual rex.Expr) dynamicFilterResult {
	claimed := map[string]bool{}
	var assignments []plan.DynamicFilterAssignment
	var predicates []rex.Expr

	for _, clause := range equiClauses {
		if claimed[clause.Left.Name] || claimed[clause.Right.Name] {
			continue
		}
		id := r.dfIDs.Next()
		claimed[clause.Left.Name] = true
		claimed[clause.Right.Name] = true
		assignments = append(assignments, plan.DynamicFilterAssignment{ID: id, BuildSymbol: clause.Right})
		predicates = append(predicates, &rex.DynamicFilter{ID: id, Probe: clause.Left})
		metric.DynamicFiltersSynthesized.WithLabelValues("equiClause").Inc()
	}

	for _, c := range rex.ExtractConjuncts(residual) {
		call, ok := c.(*rex.Call)
		if !ok || !rex.IsRangeComparator(call.Op) || len(call.Args) != 2 {
			continue
		}
		leftVar, lok := call.Args[0].(*rex.Variable)
		rightVar, rok := call.Args[1].(*rex.Variable)
		if !lok || !rok || leftVar.Typ != rex.Bigint || rightVar.Typ != rex.Bigint {
			continue
		}
		probe, build, comparator, ok := r.classifyRangeOperands(leftVar, rightVar, call.Op)
		if !ok || claimed[probe.Name] || claimed[build.Name] {
			continue
		}
		id := r.dfIDs.Next()
		claimed[probe.Name] = true
		claimed[build.Name] = true
		assignments = append(assignments, plan.DynamicFilterAssignment{ID: id, BuildSymbol: build})
		predicates = append(predicates, &rex.DynamicFilter{ID: id, Probe: probe, Comparator: comparator})
		metric.DynamicFiltersSynthesized.WithLabelValues("rangeComparison").Inc()
	}

	return dynamicFilterResult{Assignments: assignments, ProbePredicate: rex.CombineConjunctList(predicates)}
}

// classifyRangeOperands decides which of left/right is the probe
// (left-output) and which is the build (right-output) side of a
// residual range comparison, flipping the comparator when the
// variables turn out to be reversed relative to join input order
// (spec.md §4.3, "Flip the comparator when the left-output variable
// is actually the build side").
func (r *rewriter) classifyRangeOperands(left, right *rex.Variable, op rex.Op) (probe, build *rex.Variable, comparator rex.Op, ok bool) {
	leftIsProbe := r.currentLeftScope.Contains(left)
	rightIsBuild := r.currentRightScope.Contains(right)
	if leftIsProbe && rightIsBuild {
		return left, right, op, true
	}
	leftIsBuild := r.currentRightScope.Contains(left)
	rightIsProbe := r.currentLeftScope.Contains(right)
	if leftIsBuild && rightIsProbe {
		return right, left, rex.Flip(op), true
	}
	return nil, nil, "", false
}
