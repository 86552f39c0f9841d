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

// Union maps each output symbol to the corresponding symbol of each
// of N children (spec.md §3, "Union"). InputMappings[i][j] is the
// input-i symbol corresponding to Columns[j].
type Union struct {
	NodeID        string
	Columns       []*Symbol
	Inputs        []Node
	InputMappings [][]*Symbol // InputMappings[i] has len(Columns) entries, one per input i
}

func (u *Union) ID() string        { return u.NodeID }
func (u *Union) Output() []*Symbol { return u.Columns }
func (u *Union) Children() []Node  { return u.Inputs }
func (u *Union) planNode()         {}

// SymbolMapFor builds the output->input symbol map for input i,
// suitable for rex.InlineVariables/VariableMap.
func (u *Union) SymbolMapFor(i int) map[string]*Symbol {
	m := make(map[string]*Symbol, len(u.Columns))
	for j, out := range u.Columns {
		m[out.Name] = u.InputMappings[i][j]
	}
	return m
}

// Exchange is structurally identical to Union for this pass's
// purposes: N children plus a per-child symbol mapping. Modeled
// separately (rather than reusing Union) because it carries a
// partitioning scheme the pass must leave untouched, and because the
// source keeps it a distinct node kind with its own column-index
// mapping (spec.md §3, "Exchange"; §4.1.9).
type Exchange struct {
	NodeID        string
	Columns       []*Symbol
	Inputs        []Node
	InputMappings [][]*Symbol
	Partitioning  string
}

func (e *Exchange) ID() string        { return e.NodeID }
func (e *Exchange) Output() []*Symbol { return e.Columns }
func (e *Exchange) Children() []Node  { return e.Inputs }
func (e *Exchange) planNode()         {}

func (e *Exchange) SymbolMapFor(i int) map[string]*Symbol {
	m := make(map[string]*Symbol, len(e.Columns))
	for j, out := range e.Columns {
		m[out.Name] = e.InputMappings[i][j]
	}
	return m
}
