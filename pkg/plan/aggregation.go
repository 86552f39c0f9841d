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

import "github.com/shobhitham/hetu-core/pkg/rex"

// AggregateCall is one aggregate function invocation assigned to an
// output symbol.
type AggregateCall struct {
	Output *Symbol
	Func   rex.Op
	Args   []*Symbol
}

// Aggregation groups by GroupingKeys and computes Aggregates. When
// GroupingSets has more than one element, each set is a distinct
// subset of GroupingKeys (GROUPING SETS / ROLLUP / CUBE); an empty set
// among them means a global-aggregation row is produced, which blocks
// pushdown entirely (spec.md §4.1.6).
type Aggregation struct {
	NodeID        string
	GroupingKeys  []*Symbol
	GroupingSets  [][]*Symbol
	Aggregates    []AggregateCall
	GroupIDSymbol *Symbol // nil if this aggregation has no group-id input
	Source        Node
}

func (a *Aggregation) ID() string { return a.NodeID }
func (a *Aggregation) Output() []*Symbol {
	out := append([]*Symbol{}, a.GroupingKeys...)
	for _, agg := range a.Aggregates {
		out = append(out, agg.Output)
	}
	return out
}
func (a *Aggregation) Children() []Node { return []Node{a.Source} }
func (a *Aggregation) planNode()        {}

// HasGlobalAggregationRow reports whether any grouping set is empty.
func (a *Aggregation) HasGlobalAggregationRow() bool {
	if len(a.GroupingSets) == 0 {
		return false
	}
	for _, set := range a.GroupingSets {
		if len(set) == 0 {
			return true
		}
	}
	return false
}
