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

type fakeCatalog struct {
	deterministic map[Op]bool
}

func (f fakeCatalog) IsDeterministic(op Op) bool { return f.deterministic[op] }
func (f fakeCatalog) Fold(op Op, args []Expr) (Expr, bool) { return nil, false }

func TestDeterminismEvaluatorBuiltins(t *testing.T) {
	d := DeterminismEvaluator{}
	assert.True(t, d.IsDeterministic(&Call{Op: Eq, Args: []Expr{v("a"), v("b")}, Typ: Boolean}))
	assert.False(t, d.IsDeterministic(&Call{Op: RandomFn, Typ: Double}))
	assert.False(t, d.IsDeterministic(&Call{Op: NowFn, Typ: Timestamp}))
}

func TestDeterminismEvaluatorConsultsCatalog(t *testing.T) {
	d := DeterminismEvaluator{Catalog: fakeCatalog{deterministic: map[Op]bool{"my_func": false}}}
	call := &Call{Op: "my_func", Args: []Expr{v("a")}, Typ: Bigint}
	assert.False(t, d.IsDeterministic(call))
}

func TestDeterminismEvaluatorDefaultsDeterministicWithoutCatalog(t *testing.T) {
	d := DeterminismEvaluator{}
	call := &Call{Op: "my_func", Args: []Expr{v("a")}, Typ: Bigint}
	assert.True(t, d.IsDeterministic(call))
}

func TestFilterDeterministicConjuncts(t *testing.T) {
	d := DeterminismEvaluator{}
	det := &Call{Op: Eq, Args: []Expr{v("a"), v("b")}, Typ: Boolean}
	nondet := &Call{Op: NowFn, Typ: Timestamp}
	got := d.FilterDeterministicConjuncts(NewAnd(det, nondet))
	assert.Equal(t, det.String(), got.String())
}
