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

// Package plan defines the logical plan tree that package pushdown
// rewrites: a tagged union of operator node variants, each carrying
// its output schema and operator-specific fields (spec.md §3, "Plan
// tree"). Nodes are immutable values; rewriting a subtree produces a
// new node rather than mutating the original, so unchanged subtrees
// can be shared by reference between the input and output trees.
package plan

import "github.com/shobhitham/hetu-core/pkg/rex"

// Symbol is an output column: a name and a type. It is the plan-level
// name for what package rex calls a Variable — every Symbol has a
// corresponding *rex.Variable usable directly in predicates.
type Symbol = rex.Variable

// Node is the sealed interface every operator variant implements. The
// unexported marker keeps the union closed to this package, mirroring
// the tagged-sum idiom recommended for re-expressing the source's
// class hierarchy (spec.md §9, "Tagged variants over inheritance").
type Node interface {
	ID() string
	Output() []*Symbol
	Children() []Node
	planNode()
}

// OutputSet is a convenience for building an rex.VarSet from a node's
// output schema, used pervasively by the per-operator rules to test
// whether a conjunct's free variables are in scope.
func OutputSet(n Node) rex.VarSet {
	return rex.NewVarSet(n.Output()...)
}

// WithChild returns a shallow copy of n with its single child replaced
// by child, for node variants that have exactly one. Panics (a
// programming-contract violation, per spec.md §7) if n isn't
// single-child.
func WithChild(n Node, child Node) Node {
	switch t := n.(type) {
	case *Filter:
		c := *t
		c.Source = child
		return &c
	case *Project:
		c := *t
		c.Source = child
		return &c
	case *Window:
		c := *t
		c.Source = child
		return &c
	case *MarkDistinct:
		c := *t
		c.Source = child
		return &c
	case *GroupId:
		c := *t
		c.Source = child
		return &c
	case *Aggregation:
		c := *t
		c.Source = child
		return &c
	case *Unnest:
		c := *t
		c.Source = child
		return &c
	case *AssignUniqueId:
		c := *t
		c.Source = child
		return &c
	case *Sort:
		c := *t
		c.Source = child
		return &c
	case *Sample:
		c := *t
		c.Source = child
		return &c
	case *CTEScan:
		c := *t
		c.Source = child
		return &c
	default:
		panic(shapeViolation("WithChild called on a node without exactly one child"))
	}
}

type shapeViolationPanic string

func shapeViolation(msg string) shapeViolationPanic { return shapeViolationPanic(msg) }
