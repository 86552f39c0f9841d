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

func TestExtractUnique(t *testing.T) {
	expr := NewAnd(
		&Call{Op: Eq, Args: []Expr{v("a"), v("b")}, Typ: Boolean},
		&Call{Op: Eq, Args: []Expr{v("a"), v("c")}, Typ: Boolean},
	)
	set := ExtractUnique(expr)
	assert.Len(t, set, 3)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, set.Names())
}

func TestExtractAllCountsDuplicates(t *testing.T) {
	expr := &Call{Op: Plus, Args: []Expr{v("a"), v("a")}, Typ: Bigint}
	assert.Len(t, ExtractAll(expr), 2)
}

func TestContainsTry(t *testing.T) {
	withTry := &Call{Op: Eq, Args: []Expr{&Call{Op: Try, Args: []Expr{v("a")}, Typ: Bigint}, v("b")}, Typ: Boolean}
	withoutTry := &Call{Op: Eq, Args: []Expr{v("a"), v("b")}, Typ: Boolean}
	assert.True(t, ContainsTry(withTry))
	assert.False(t, ContainsTry(withoutTry))
}

func TestVarSetContainsAll(t *testing.T) {
	s := NewVarSet(v("a"), v("b"))
	assert.True(t, s.ContainsAll(NewVarSet(v("a"))))
	assert.False(t, s.ContainsAll(NewVarSet(v("c"))))
}
