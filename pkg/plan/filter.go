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

// Filter holds one predicate expression over its single child's
// output.
type Filter struct {
	NodeID    string
	Predicate rex.Expr
	Source    Node
}

func (f *Filter) ID() string        { return f.NodeID }
func (f *Filter) Output() []*Symbol { return f.Source.Output() }
func (f *Filter) Children() []Node  { return []Node{f.Source} }
func (f *Filter) planNode()         {}

// Project is an ordered assignment list mapping output symbol to an
// expression over the child's symbols.
type Project struct {
	NodeID      string
	Assignments []Assignment
	Source      Node
}

// Assignment is one output-symbol := expression pair of a Project.
type Assignment struct {
	Output *Symbol
	Expr   rex.Expr
}

func (p *Project) ID() string { return p.NodeID }
func (p *Project) Output() []*Symbol {
	out := make([]*Symbol, len(p.Assignments))
	for i, a := range p.Assignments {
		out[i] = a.Output
	}
	return out
}
func (p *Project) Children() []Node { return []Node{p.Source} }
func (p *Project) planNode()        {}

// Assignment returns the expression assigned to the named output
// symbol, or nil if none matches.
func (p *Project) AssignmentFor(name string) rex.Expr {
	for _, a := range p.Assignments {
		if a.Output.Name == name {
			return a.Expr
		}
	}
	return nil
}
