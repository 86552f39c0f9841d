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

// Window computes one or more window functions partitioned by
// PartitionBy. A conjunct is pushable through it iff it is
// deterministic and depends only on PartitionBy (spec.md §4.1.3).
type Window struct {
	NodeID       string
	PartitionBy  []*Symbol
	OrderBy      []*Symbol
	Functions    []AggregateCall
	Source       Node
}

func (w *Window) ID() string { return w.NodeID }
func (w *Window) Output() []*Symbol {
	out := append([]*Symbol{}, w.Source.Output()...)
	for _, f := range w.Functions {
		out = append(out, f.Output)
	}
	return out
}
func (w *Window) Children() []Node { return []Node{w.Source} }
func (w *Window) planNode()        {}

// MarkDistinct adds a boolean Marker symbol recording whether each row
// is the first with its DistinctSymbols. Pushable conjuncts are those
// whose free variables are a subset of DistinctSymbols (spec.md
// §4.1.4).
type MarkDistinct struct {
	NodeID          string
	Marker          *Symbol
	DistinctSymbols []*Symbol
	Source          Node
}

func (m *MarkDistinct) ID() string          { return m.NodeID }
func (m *MarkDistinct) Output() []*Symbol   { return append(append([]*Symbol{}, m.Source.Output()...), m.Marker) }
func (m *MarkDistinct) Children() []Node    { return []Node{m.Source} }
func (m *MarkDistinct) planNode()           {}

// GroupId implements GROUPING SETS expansion: GroupIDSymbol
// distinguishes which grouping set produced a row, and
// CommonGroupingColumns maps each output grouping column present in
// every grouping set back to its input symbol — the scope used by the
// pushdown rule (spec.md §4.1.5).
type GroupId struct {
	NodeID                string
	GroupIDSymbol         *Symbol
	CommonGroupingColumns map[string]*Symbol // output symbol name -> input symbol
	PassthroughColumns    []*Symbol
	Source                Node
}

func (g *GroupId) ID() string { return g.NodeID }
func (g *GroupId) Output() []*Symbol {
	out := append([]*Symbol{}, g.PassthroughColumns...)
	return append(out, g.GroupIDSymbol)
}
func (g *GroupId) Children() []Node { return []Node{g.Source} }
func (g *GroupId) planNode()        {}
