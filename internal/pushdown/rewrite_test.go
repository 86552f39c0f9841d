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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shobhitham/hetu-core/pkg/catalog"
	"github.com/shobhitham/hetu-core/pkg/plan"
	"github.com/shobhitham/hetu-core/pkg/rex"
)

func v(name string) *rex.Variable { return &rex.Variable{Name: name, Typ: rex.Bigint} }

func scan(id, table string, cols ...*rex.Variable) *plan.TableScan {
	return &plan.TableScan{NodeID: id, Table: table, Columns: cols}
}

func optimize(t *testing.T, root plan.Node) plan.Node {
	t.Helper()
	out, err := Optimize(root, catalog.NewSession(nil), nil)
	require.NoError(t, err)
	return out
}

// S1: Filter(a+b>10, Project({a:=x,b:=y}, Scan(x,y))) pushes through
// the Project and lands as a Filter directly above the Scan, rewritten
// in terms of x and y.
func TestFilterThroughProjectOntoScan(t *testing.T) {
	x, y := v("x"), v("y")
	predicate := &rex.Call{Op: rex.Gt, Args: []rex.Expr{
		&rex.Call{Op: rex.Plus, Args: []rex.Expr{v("a"), v("b")}, Typ: rex.Bigint},
		&rex.Constant{Val: int64(10), Typ: rex.Bigint},
	}, Typ: rex.Boolean}

	root := &plan.Filter{
		NodeID:    "f1",
		Predicate: predicate,
		Source: &plan.Project{
			NodeID: "p1",
			Assignments: []plan.Assignment{
				{Output: v("a"), Expr: x},
				{Output: v("b"), Expr: y},
			},
			Source: scan("s1", "t", x, y),
		},
	}

	out := optimize(t, root)

	project, ok := out.(*plan.Project)
	require.True(t, ok, "expected a Project at the root, got %T", out)
	filter, ok := project.Source.(*plan.Filter)
	require.True(t, ok, "expected a Filter beneath the Project, got %T", project.Source)
	_, ok = filter.Source.(*plan.TableScan)
	require.True(t, ok, "expected a TableScan beneath the Filter, got %T", filter.Source)
	assert.Contains(t, filter.Predicate.String(), "x")
	assert.Contains(t, filter.Predicate.String(), "y")
}

// S4: a Filter whose predicate is already entirely about the Scan's
// own columns, directly above the Scan, survives unchanged (the
// structural-identity case in visitFilter).
func TestFilterDirectlyAboveScanIsStable(t *testing.T) {
	x := v("x")
	predicate := &rex.Call{Op: rex.Gt, Args: []rex.Expr{x, &rex.Constant{Val: int64(5), Typ: rex.Bigint}}, Typ: rex.Boolean}
	root := &plan.Filter{NodeID: "f1", Predicate: predicate, Source: scan("s1", "t", x)}

	out := optimize(t, root)

	filter, ok := out.(*plan.Filter)
	require.True(t, ok)
	assert.Equal(t, predicate.String(), filter.Predicate.String())
}

// S5: Filter(g=3 AND cnt>10, Aggregation(groupBy=g, cnt=COUNT(*))) ->
// Filter(cnt>10, Aggregation(groupBy=g, Filter(g=3, Scan))).
func TestFilterThroughAggregationSplitsOnGroupingKey(t *testing.T) {
	g, cnt := v("g"), v("cnt")
	eqG3 := &rex.Call{Op: rex.Eq, Args: []rex.Expr{g, &rex.Constant{Val: int64(3), Typ: rex.Bigint}}, Typ: rex.Boolean}
	cntGt10 := &rex.Call{Op: rex.Gt, Args: []rex.Expr{cnt, &rex.Constant{Val: int64(10), Typ: rex.Bigint}}, Typ: rex.Boolean}

	root := &plan.Filter{
		NodeID:    "f1",
		Predicate: rex.NewAnd(eqG3, cntGt10),
		Source: &plan.Aggregation{
			NodeID:       "agg1",
			GroupingKeys: []*rex.Variable{g},
			Aggregates:   []plan.AggregateCall{{Output: cnt, Func: "COUNT", Args: nil}},
			Source:       scan("s1", "t", g),
		},
	}

	out := optimize(t, root)

	outer, ok := out.(*plan.Filter)
	require.True(t, ok, "expected an outer Filter, got %T", out)
	assert.Contains(t, outer.Predicate.String(), "cnt")
	assert.NotContains(t, outer.Predicate.String(), "g =")

	agg, ok := outer.Source.(*plan.Aggregation)
	require.True(t, ok, "expected an Aggregation beneath the outer Filter, got %T", outer.Source)
	inner, ok := agg.Source.(*plan.Filter)
	require.True(t, ok, "expected a Filter beneath the Aggregation, got %T", agg.Source)
	assert.Equal(t, "(g = 3)", inner.Predicate.String())
}

// S6: a predicate over a Union's output symbol is translated
// independently into each branch's own symbol space.
func TestFilterThroughUnionTranslatesPerBranch(t *testing.T) {
	out1, out2, col := v("out"), v("out"), v("out")
	a, b := v("a"), v("b")
	predicate := &rex.Call{Op: rex.Gt, Args: []rex.Expr{col, &rex.Constant{Val: int64(1), Typ: rex.Bigint}}, Typ: rex.Boolean}

	root := &plan.Filter{
		NodeID:    "f1",
		Predicate: predicate,
		Source: &plan.Union{
			NodeID:        "u1",
			Columns:       []*rex.Variable{out1},
			Inputs:        []plan.Node{scan("s1", "t1", a), scan("s2", "t2", b)},
			InputMappings: [][]*rex.Variable{{a}, {b}},
		},
	}
	_ = out2

	out := optimize(t, root)

	union, ok := out.(*plan.Union)
	require.True(t, ok, "expected a Union at the root, got %T", out)
	require.Len(t, union.Inputs, 2)

	left, ok := union.Inputs[0].(*plan.Filter)
	require.True(t, ok, "expected branch 0 to carry a Filter, got %T", union.Inputs[0])
	assert.Contains(t, left.Predicate.String(), "a")

	right, ok := union.Inputs[1].(*plan.Filter)
	require.True(t, ok, "expected branch 1 to carry a Filter, got %T", union.Inputs[1])
	assert.Contains(t, right.Predicate.String(), "b")
}

// An inner join's ON-clause equi-condition, combined with a predicate
// naming only the left side, pushes entirely below the join: the left
// input gets its own Filter and the join is left with no residual
// filter and one equi-clause.
func TestInnerJoinPushesSingleSidePredicateAndKeepsEquiClause(t *testing.T) {
	l, r := v("l"), v("r")
	joinEq := &rex.Call{Op: rex.Eq, Args: []rex.Expr{l, r}, Typ: rex.Boolean}
	leftOnly := &rex.Call{Op: rex.Gt, Args: []rex.Expr{l, &rex.Constant{Val: int64(0), Typ: rex.Bigint}}, Typ: rex.Boolean}

	root := &plan.Join{
		NodeID: "j1",
		Type:   plan.Inner,
		Left:   scan("s1", "t1", l),
		Right:  scan("s2", "t2", r),
		Filter: joinEq,
	}
	root2 := &plan.Filter{NodeID: "f1", Predicate: leftOnly, Source: root}

	out := optimize(t, root2)

	join, ok := out.(*plan.Join)
	require.True(t, ok, "expected a Join at the root, got %T", out)
	require.Len(t, join.EquiClauses, 1)
	assert.Equal(t, "l", join.EquiClauses[0].Left.Name)
	assert.Equal(t, "r", join.EquiClauses[0].Right.Name)
	assert.Nil(t, join.Filter)

	leftFilter, ok := join.Left.(*plan.Filter)
	require.True(t, ok, "expected the left input to carry a Filter, got %T", join.Left)
	assert.Contains(t, leftFilter.Predicate.String(), "l")
}

// S3: Filter(r.k IS NOT NULL, Join(LEFT, L, R, [l.k = r.k], TRUE)) ->
// Join(INNER, [l.k = r.k], L, R). The inherited IS NOT NULL predicate
// null-rejects the right side, so the join is promoted before
// decomposition and its own equi-condition is consumed.
func TestLeftJoinNormalizesToInnerWhenInheritedPredicateNullRejectsRight(t *testing.T) {
	l, r := v("l"), v("r")
	joinEq := &rex.Call{Op: rex.Eq, Args: []rex.Expr{l, r}, Typ: rex.Boolean}
	rNotNull := &rex.Call{Op: rex.IsNotNull, Args: []rex.Expr{r}, Typ: rex.Boolean}

	join := &plan.Join{
		NodeID: "j1",
		Type:   plan.Left,
		Left:   scan("s1", "t1", l),
		Right:  scan("s2", "t2", r),
		Filter: joinEq,
	}
	root := &plan.Filter{NodeID: "f1", Predicate: rNotNull, Source: join}

	out := optimize(t, root)

	joined, ok := out.(*plan.Join)
	require.True(t, ok, "expected a Join at the root, got %T", out)
	assert.Equal(t, plan.Inner, joined.Type)
	require.Len(t, joined.EquiClauses, 1)
	assert.Equal(t, "l", joined.EquiClauses[0].Left.Name)
	assert.Equal(t, "r", joined.EquiClauses[0].Right.Name)
}

// A LEFT join that doesn't normalize (the inherited predicate names
// only the outer side, so it can't null-reject the inner side) pushes
// that predicate straight into the outer input and leaves the join
// type and equi-clause untouched: processLimitedOuterJoin's outer-push
// path with no inner-side involvement at all.
func TestLeftJoinPushesOuterOnlyPredicateIntoOuterInput(t *testing.T) {
	l, a, r := v("l"), v("a"), v("r")
	joinEq := &rex.Call{Op: rex.Eq, Args: []rex.Expr{l, r}, Typ: rex.Boolean}
	aGt5 := &rex.Call{Op: rex.Gt, Args: []rex.Expr{a, &rex.Constant{Val: int64(5), Typ: rex.Bigint}}, Typ: rex.Boolean}

	join := &plan.Join{
		NodeID: "j1",
		Type:   plan.Left,
		Left:   scan("s1", "t1", l, a),
		Right:  scan("s2", "t2", r),
		Filter: joinEq,
	}
	root := &plan.Filter{NodeID: "f1", Predicate: aGt5, Source: join}

	out := optimize(t, root)

	joined, ok := out.(*plan.Join)
	require.True(t, ok, "expected a Join at the root with no residual outer Filter, got %T", out)
	assert.Equal(t, plan.Left, joined.Type, "an outer-only predicate must not null-reject the inner side")
	require.Len(t, joined.EquiClauses, 1)
	assert.Nil(t, joined.Filter)

	leftFilter, ok := joined.Left.(*plan.Filter)
	require.True(t, ok, "expected the outer (left) input to carry a Filter, got %T", joined.Left)
	assert.Contains(t, leftFilter.Predicate.String(), "a")

	_, ok = joined.Right.(*plan.TableScan)
	require.True(t, ok, "the inner (right) input must be untouched, got %T", joined.Right)
}

// Regression for processLimitedOuterJoin: a residual conjunct over the
// inner side that does NOT null-reject it (an OR with an IS NULL
// branch) must land post-join, never pushed into the inner input. The
// inner-scope rewrite is only attempted once the outer-scope rewrite
// has already succeeded, and is fed the outer-rewritten expression; a
// conjunct entirely about the inner side has no outer rewrite, so it
// must be kept above the join rather than filtered into the inner
// scan, which would silently change a LEFT join's output rows.
func TestLeftJoinKeepsNonNullRejectingInnerPredicatePostJoin(t *testing.T) {
	l, r, val := v("l"), v("r"), v("val")
	joinEq := &rex.Call{Op: rex.Eq, Args: []rex.Expr{l, r}, Typ: rex.Boolean}
	valIsNull := &rex.Call{Op: rex.IsNull, Args: []rex.Expr{val}, Typ: rex.Boolean}
	valGt5 := &rex.Call{Op: rex.Gt, Args: []rex.Expr{val, &rex.Constant{Val: int64(5), Typ: rex.Bigint}}, Typ: rex.Boolean}
	residual := &rex.Call{Op: rex.Or, Args: []rex.Expr{valIsNull, valGt5}, Typ: rex.Boolean}

	join := &plan.Join{
		NodeID: "j1",
		Type:   plan.Left,
		Left:   scan("s1", "t1", l),
		Right:  scan("s2", "t2", r, val),
		Filter: joinEq,
	}
	root := &plan.Filter{NodeID: "f1", Predicate: residual, Source: join}

	out := optimize(t, root)

	outer, ok := out.(*plan.Filter)
	require.True(t, ok, "expected the non-null-rejecting residual to land as a Filter above the join, got %T", out)
	assert.Contains(t, outer.Predicate.String(), "val")

	joined, ok := outer.Source.(*plan.Join)
	require.True(t, ok, "expected a Join beneath the outer Filter, got %T", outer.Source)
	assert.Equal(t, plan.Left, joined.Type)

	_, ok = joined.Right.(*plan.TableScan)
	require.True(t, ok, "the inner (right) input must not have absorbed the OR-guarded predicate, got %T", joined.Right)
}

// An INNER join's equi-clause gives rise to a dynamic filter on the
// probe (left) side, in addition to (not instead of) the equi-clause
// itself: spec.md §4.3's equi-clause-derived synthesis path.
func TestInnerJoinSynthesizesDynamicFilterFromEquiClause(t *testing.T) {
	l, r := v("l"), v("r")
	joinEq := &rex.Call{Op: rex.Eq, Args: []rex.Expr{l, r}, Typ: rex.Boolean}

	root := &plan.Join{
		NodeID: "j1",
		Type:   plan.Inner,
		Left:   scan("s1", "t1", l),
		Right:  scan("s2", "t2", r),
		Filter: joinEq,
	}

	out := optimize(t, root)

	joined, ok := out.(*plan.Join)
	require.True(t, ok, "expected a Join at the root, got %T", out)
	require.Len(t, joined.EquiClauses, 1, "the equi-clause must survive synthesis")
	require.Len(t, joined.DynamicFilters, 1)
	assert.Equal(t, "r", joined.DynamicFilters[0].BuildSymbol.Name)

	leftFilter, ok := joined.Left.(*plan.Filter)
	require.True(t, ok, "expected the probe (left) input to carry the synthesized dynamic filter, got %T", joined.Left)
	assert.Contains(t, leftFilter.Predicate.String(), "DF(")
	assert.Contains(t, leftFilter.Predicate.String(), "l")
}
