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

// TableScan is a source of rows with a declared output schema. It has
// no children, so any inherited predicate the pass can't otherwise
// drop is installed as a Filter directly above it (spec.md §4.1.11).
type TableScan struct {
	NodeID  string
	Table   string
	Columns []*Symbol
}

func (s *TableScan) ID() string          { return s.NodeID }
func (s *TableScan) Output() []*Symbol   { return s.Columns }
func (s *TableScan) Children() []Node    { return nil }
func (s *TableScan) planNode()           {}

// CTEScan is a reference to a materialized common-table-expression's
// subtree. Unlike TableScan it has one child: the CTE's own plan,
// which this pass may still push a predicate into when dynamic
// filtering is active and the inherited predicate carries dynamic
// filter conjuncts (spec.md §4.1.11).
type CTEScan struct {
	NodeID  string
	CTEName string
	Columns []*Symbol
	Source  Node
}

func (s *CTEScan) ID() string          { return s.NodeID }
func (s *CTEScan) Output() []*Symbol   { return s.Columns }
func (s *CTEScan) Children() []Node    { return []Node{s.Source} }
func (s *CTEScan) planNode()           {}
