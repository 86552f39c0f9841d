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

func TestInlineVariablesSubstitutes(t *testing.T) {
	expr := &Call{Op: Gt, Args: []Expr{v("out"), &Constant{Val: int64(1), Typ: Bigint}}, Typ: Boolean}
	replacements := RenameToInput(v("out"), v("in"))
	got := InlineVariables(replacements, expr)
	assert.Equal(t, "(in > 1)", got.String())
}

func TestInlineVariablesLeavesUnmappedAlone(t *testing.T) {
	expr := v("untouched")
	got := InlineVariables(map[string]Expr{"other": v("x")}, expr)
	assert.Equal(t, "untouched", got.String())
}

func TestInlineVariablesReturnsSameNodeWhenUnchanged(t *testing.T) {
	expr := &Call{Op: Gt, Args: []Expr{v("a"), &Constant{Val: int64(1), Typ: Bigint}}, Typ: Boolean}
	got := InlineVariables(map[string]Expr{}, expr)
	assert.Same(t, expr, got)
}

func TestVariableMap(t *testing.T) {
	m := VariableMap([]*Variable{v("a"), v("b")}, []*Variable{v("x"), v("y")})
	assert.Equal(t, "x", m["a"].String())
	assert.Equal(t, "y", m["b"].String())
}
