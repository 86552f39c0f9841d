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

package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shobhitham/hetu-core/pkg/rex"
)

func TestPlanJSONRoundTrip(t *testing.T) {
	x := &rex.Variable{Name: "x", Typ: rex.Bigint}
	y := &rex.Variable{Name: "y", Typ: rex.Bigint}
	original := &Join{
		NodeID: "j1",
		Type:   Inner,
		Left:   &TableScan{NodeID: "s1", Table: "t1", Columns: []*Symbol{x}},
		Right:  &TableScan{NodeID: "s2", Table: "t2", Columns: []*Symbol{y}},
		EquiClauses: []EquiClause{{Left: x, Right: y}},
		Filter: &rex.Call{Op: rex.Gt, Args: []rex.Expr{x, &rex.Constant{Val: int64(1), Typ: rex.Bigint}}, Typ: rex.Boolean},
	}

	data, err := MarshalNodeJSON(original)
	require.NoError(t, err)

	decoded, err := ParseJSON(data)
	require.NoError(t, err)

	join, ok := decoded.(*Join)
	require.True(t, ok, "expected *Join, got %T", decoded)
	assert.Equal(t, "j1", join.NodeID)
	assert.Equal(t, Inner, join.Type)
	require.Len(t, join.EquiClauses, 1)
	assert.Equal(t, "x", join.EquiClauses[0].Left.Name)
	assert.Equal(t, "y", join.EquiClauses[0].Right.Name)
	assert.Equal(t, "(x > 1)", join.Filter.String())

	left, ok := join.Left.(*TableScan)
	require.True(t, ok)
	assert.Equal(t, "t1", left.Table)
}
