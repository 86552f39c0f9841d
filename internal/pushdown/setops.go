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
	"github.com/shobhitham/hetu-core/pkg/plan"
	"github.com/shobhitham/hetu-core/pkg/rex"
)

// visitUnion implements spec.md §4.1.8: the node consumes the
// inherited predicate entirely by translating it into each input's
// symbol space and recursing.
func (r *rewriter) visitUnion(u *plan.Union, inherited rex.Expr) plan.Node {
	newInputs := make([]plan.Node, len(u.Inputs))
	changed := false
	for i, input := range u.Inputs {
		translated := rex.InlineVariables(symbolMapToExprMap(u.SymbolMapFor(i)), inherited)
		newInputs[i] = r.Visit(input, translated)
		if newInputs[i] != input {
			changed = true
		}
	}
	if !changed {
		return u
	}
	next := *u
	next.NodeID = r.nodeIDs.Next()
	next.Inputs = newInputs
	return &next
}

// visitExchange implements spec.md §4.1.9, the column-index-mapping
// analogue of visitUnion.
func (r *rewriter) visitExchange(e *plan.Exchange, inherited rex.Expr) plan.Node {
	newInputs := make([]plan.Node, len(e.Inputs))
	changed := false
	for i, input := range e.Inputs {
		translated := rex.InlineVariables(symbolMapToExprMap(e.SymbolMapFor(i)), inherited)
		newInputs[i] = r.Visit(input, translated)
		if newInputs[i] != input {
			changed = true
		}
	}
	if !changed {
		return e
	}
	next := *e
	next.NodeID = r.nodeIDs.Next()
	next.Inputs = newInputs
	return &next
}

func symbolMapToExprMap(m map[string]*plan.Symbol) map[string]rex.Expr {
	out := make(map[string]rex.Expr, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
