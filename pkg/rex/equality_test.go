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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func inScopeOf(names ...string) func(VarSet) bool {
	allowed := map[string]bool{}
	for _, n := range names {
		allowed[n] = true
	}
	return func(vs VarSet) bool {
		for n := range vs {
			if !allowed[n] {
				return false
			}
		}
		return true
	}
}

func TestEqualityInferenceRewriteExpression(t *testing.T) {
	det := DeterminismEvaluator{}
	simp := Simplifier{}
	// a.x = b.x, a.y = b.y
	ei := NewEqualityInferenceBuilder(det, simp).
		AddEquality(NewEquals(v("ax"), v("bx"))).
		AddEquality(NewEquals(v("ay"), v("by"))).
		Build()

	predicate := &Call{Op: Gt, Args: []Expr{v("ax"), v("ay")}, Typ: Boolean}
	rewritten, ok := ei.RewriteExpression(predicate, inScopeOf("bx", "by"), false)
	assert.True(t, ok)
	assert.Equal(t, "(bx > by)", rewritten.String())
}

func TestEqualityInferenceRewriteExpressionFailsOutOfScope(t *testing.T) {
	det := DeterminismEvaluator{}
	simp := Simplifier{}
	ei := NewEqualityInferenceBuilder(det, simp).Build()

	predicate := &Call{Op: Gt, Args: []Expr{v("ax"), v("ay")}, Typ: Boolean}
	_, ok := ei.RewriteExpression(predicate, inScopeOf("bx"), false)
	assert.False(t, ok)
}

func TestEqualityInferencePartition(t *testing.T) {
	det := DeterminismEvaluator{}
	simp := Simplifier{}
	ei := NewEqualityInferenceBuilder(det, simp).
		AddEquality(NewEquals(v("ax"), v("bx"))).
		Build()

	part := ei.GenerateEqualitiesPartitionedBy(inScopeOf("ax"))
	assert.Empty(t, part.ScopeEqualities)
	assert.Empty(t, part.ComplementEqualities)
	assert.Len(t, part.ScopeStraddlingEqualities, 1)
}

func TestEqualityInferenceNonInferrableConjuncts(t *testing.T) {
	det := DeterminismEvaluator{}
	simp := Simplifier{}
	notAnEquality := &Call{Op: Gt, Args: []Expr{v("a"), v("b")}, Typ: Boolean}
	ei := NewEqualityInferenceBuilder(det, simp).
		AddEquality(notAnEquality).
		Build()
	assert.Len(t, ei.NonInferrableConjuncts(), 1)
}
