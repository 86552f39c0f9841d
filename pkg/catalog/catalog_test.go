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

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shobhitham/hetu-core/pkg/rex"
)

func TestCatalogFoldsRegisteredFunction(t *testing.T) {
	c := New()
	err := c.Register(FunctionSpec{Name: "add_one", Deterministic: true, Template: "arg0 + 1", ReturnType: "bigint"})
	assert.NoError(t, err)

	folded, ok := c.Fold(rex.Op("add_one"), []rex.Expr{&rex.Constant{Val: int64(4), Typ: rex.Bigint}})
	assert.True(t, ok)
	assert.Equal(t, "5", folded.String())
}

func TestCatalogFoldFailsOnNonConstantArg(t *testing.T) {
	c := New()
	_ = c.Register(FunctionSpec{Name: "add_one", Deterministic: true, Template: "arg0 + 1", ReturnType: "bigint"})

	_, ok := c.Fold(rex.Op("add_one"), []rex.Expr{&rex.Variable{Name: "x", Typ: rex.Bigint}})
	assert.False(t, ok)
}

func TestCatalogIsDeterministicDefaultsTrueForUnknown(t *testing.T) {
	c := New()
	assert.True(t, c.IsDeterministic(rex.Op("unknown_func")))
}

func TestCatalogIsDeterministicHonorsRegisteredFlag(t *testing.T) {
	c := New()
	_ = c.Register(FunctionSpec{Name: "rand_like", Deterministic: false})
	assert.False(t, c.IsDeterministic(rex.Op("rand_like")))
}
