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

func v(name string) *Variable { return &Variable{Name: name, Typ: Bigint} }

func TestExtractConjuncts(t *testing.T) {
	a := &Call{Op: Gt, Args: []Expr{v("a"), &Constant{Val: int64(1), Typ: Bigint}}, Typ: Boolean}
	b := &Call{Op: Lt, Args: []Expr{v("b"), &Constant{Val: int64(2), Typ: Bigint}}, Typ: Boolean}
	c := &Call{Op: Eq, Args: []Expr{v("c"), &Constant{Val: int64(3), Typ: Bigint}}, Typ: Boolean}

	tests := []struct {
		name string
		expr Expr
		want []Expr
	}{
		{"true extracts empty", True, nil},
		{"single non-and returns itself", a, []Expr{a}},
		{"flat and", NewAnd(a, b, c), []Expr{a, b, c}},
		{"nested and flattens", NewAnd(NewAnd(a, b), c), []Expr{a, b, c}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractConjuncts(tt.expr)
			assert.Equal(t, len(tt.want), len(got))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].String(), got[i].String())
			}
		})
	}
}

func TestCombineConjuncts(t *testing.T) {
	a := &Call{Op: Gt, Args: []Expr{v("a"), &Constant{Val: int64(1), Typ: Bigint}}, Typ: Boolean}

	t.Run("empty combines to true", func(t *testing.T) {
		assert.True(t, IsTrue(CombineConjuncts()))
	})
	t.Run("false short circuits", func(t *testing.T) {
		got := CombineConjuncts(a, False, a)
		assert.True(t, IsFalse(got))
	})
	t.Run("dedupes identical conjuncts", func(t *testing.T) {
		got := CombineConjuncts(a, a)
		assert.Equal(t, a.String(), got.String())
	})
	t.Run("single conjunct returns unwrapped", func(t *testing.T) {
		got := CombineConjuncts(a)
		_, isAnd := got.(*Call)
		if isAnd {
			assert.NotEqual(t, And, got.(*Call).Op)
		}
		assert.Equal(t, a.String(), got.String())
	})
}
