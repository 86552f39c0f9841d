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

// Unnest explodes each ArraySymbols entry into rows, passing
// ReplicateSymbols through unchanged on every generated row. Pushable
// conjuncts are those keyed on ReplicateSymbols — the symbols that
// are not themselves unnested (spec.md §4.1.7, "same shape as
// Aggregation but keyed on the replicated symbol set").
type Unnest struct {
	NodeID            string
	ReplicateSymbols  []*Symbol
	ArraySymbols      []*Symbol
	UnnestedSymbols   []*Symbol
	OrdinalitySymbol  *Symbol // nil if WITH ORDINALITY wasn't requested
	Source            Node
}

func (u *Unnest) ID() string { return u.NodeID }
func (u *Unnest) Output() []*Symbol {
	out := append([]*Symbol{}, u.ReplicateSymbols...)
	out = append(out, u.UnnestedSymbols...)
	if u.OrdinalitySymbol != nil {
		out = append(out, u.OrdinalitySymbol)
	}
	return out
}
func (u *Unnest) Children() []Node { return []Node{u.Source} }
func (u *Unnest) planNode()        {}

// AssignUniqueId adds a generated UniqueIDSymbol column. No pending
// predicate may mention it (spec.md §4.1.11, §7 "scope violation").
type AssignUniqueId struct {
	NodeID         string
	UniqueIDSymbol *Symbol
	Source         Node
}

func (a *AssignUniqueId) ID() string { return a.NodeID }
func (a *AssignUniqueId) Output() []*Symbol {
	return append(append([]*Symbol{}, a.Source.Output()...), a.UniqueIDSymbol)
}
func (a *AssignUniqueId) Children() []Node { return []Node{a.Source} }
func (a *AssignUniqueId) planNode()        {}

// Sort and Sample are transparent to pushdown: the inherited
// predicate passes through unchanged (spec.md §4.1.11).
type Sort struct {
	NodeID  string
	OrderBy []*Symbol
	Source  Node
}

func (s *Sort) ID() string        { return s.NodeID }
func (s *Sort) Output() []*Symbol { return s.Source.Output() }
func (s *Sort) Children() []Node  { return []Node{s.Source} }
func (s *Sort) planNode()         {}

type Sample struct {
	NodeID string
	Ratio  float64
	Source Node
}

func (s *Sample) ID() string        { return s.NodeID }
func (s *Sample) Output() []*Symbol { return s.Source.Output() }
func (s *Sample) Children() []Node  { return []Node{s.Source} }
func (s *Sample) planNode()         {}
