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

func TestSimplifyConstantFolding(t *testing.T) {
	s := Simplifier{}
	expr := &Call{Op: Gt, Args: []Expr{&Constant{Val: int64(2), Typ: Bigint}, &Constant{Val: int64(1), Typ: Bigint}}, Typ: Boolean}
	assert.True(t, IsTrue(s.Simplify(expr)))
}

func TestSimplifyNullPropagation(t *testing.T) {
	s := Simplifier{}
	expr := &Call{Op: Eq, Args: []Expr{v("a"), NullOf(Bigint)}, Typ: Boolean}
	got := s.Simplify(expr)
	assert.True(t, IsNullLiteral(got))
}

func TestSimplifyAndFlattensAndDrops(t *testing.T) {
	s := Simplifier{}
	a := &Call{Op: Gt, Args: []Expr{v("a"), &Constant{Val: int64(1), Typ: Bigint}}, Typ: Boolean}
	expr := NewAnd(True, a, True)
	got := s.Simplify(expr)
	assert.Equal(t, a.String(), got.String())
}

func TestSimplifyAndShortCircuitsOnFalse(t *testing.T) {
	s := Simplifier{}
	a := &Call{Op: Gt, Args: []Expr{v("a"), &Constant{Val: int64(1), Typ: Bigint}}, Typ: Boolean}
	got := s.Simplify(NewAnd(a, False))
	assert.True(t, IsFalse(got))
}

func TestSimplifyNot(t *testing.T) {
	s := Simplifier{}
	assert.True(t, IsFalse(s.Simplify(&Call{Op: Not, Args: []Expr{True}, Typ: Boolean})))
	assert.True(t, IsTrue(s.Simplify(&Call{Op: Not, Args: []Expr{False}, Typ: Boolean})))
}

func TestNullInputEvaluatorRejectsNull(t *testing.T) {
	eval := NullInputEvaluator{Simplifier: Simplifier{}}
	expr := &Call{Op: Eq, Args: []Expr{v("a"), v("b")}, Typ: Boolean}

	assert.True(t, eval.RejectsNull(expr, NewVarSet(v("a"))))
	assert.True(t, eval.RejectsNull(expr, NewVarSet(v("b"))))
}

func TestNullInputEvaluatorDoesNotRejectUnrelated(t *testing.T) {
	eval := NullInputEvaluator{Simplifier: Simplifier{}}
	expr := &Call{Op: Gt, Args: []Expr{v("a"), &Constant{Val: int64(1), Typ: Bigint}}, Typ: Boolean}
	assert.False(t, eval.RejectsNull(expr, NewVarSet(v("b"))))
}

func TestEquivalent(t *testing.T) {
	s := Simplifier{}
	x := v("x")
	a := NewAnd(True, x)
	assert.True(t, s.Equivalent(a, x))
}
