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

type JoinType int

const (
	Inner JoinType = iota
	Left
	Right
	Full
)

func (t JoinType) String() string {
	switch t {
	case Inner:
		return "INNER"
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	case Full:
		return "FULL"
	default:
		return "UNKNOWN"
	}
}

type DistributionType int

const (
	DistributionUnspecified DistributionType = iota
	Partitioned
	Replicated
)

// MustPartition reports whether t requires PARTITIONED distribution
// regardless of what was requested (spec.md §4.2, "distribution-type
// preservation"): a FULL or RIGHT join's build side must be
// partitioned so every probe row can find a potential match.
func (t JoinType) MustPartition() bool { return t == Full || t == Right }

// MustReplicate reports whether t requires REPLICATED distribution —
// never the case for the join types this pass supports; kept as a
// named predicate so the preservation rule reads the same way for
// both directions.
func (t JoinType) MustReplicate() bool { return false }

// EquiClause is one `left_symbol = right_symbol` join condition
// implementable by hashing.
type EquiClause struct {
	Left  *Symbol
	Right *Symbol
}

// DynamicFilterAssignment records that dynamic filter ID is fed by
// BuildSymbol, the build-side (right, for INNER/RIGHT) column whose
// distinct values constrain the probe side (spec.md §4.3).
type DynamicFilterAssignment struct {
	ID          string
	BuildSymbol *Symbol
}

// Join implements the inner/outer join pushdown kernel's output
// shape (spec.md §3, "Join"; §4.2).
type Join struct {
	NodeID         string
	Type           JoinType
	Left           Node
	Right          Node
	EquiClauses    []EquiClause
	Filter         rex.Expr // residual predicate beyond the equi-clauses; nil means none
	Distribution   DistributionType
	DynamicFilters []DynamicFilterAssignment
	Spillable      bool
}

func (j *Join) ID() string { return j.NodeID }
func (j *Join) Output() []*Symbol {
	return append(append([]*Symbol{}, j.Left.Output()...), j.Right.Output()...)
}
func (j *Join) Children() []Node { return []Node{j.Left, j.Right} }
func (j *Join) planNode()        {}

// FilterOrTrue returns j.Filter, or the TRUE literal if it is nil —
// several rules treat "no residual filter" and "residual filter is
// TRUE" identically.
func (j *Join) FilterOrTrue() rex.Expr {
	if j.Filter == nil {
		return rex.True
	}
	return j.Filter
}

// SpatialJoinType restricts SpatialJoin to the two variants the
// source supports (spec.md §4.4).
type SpatialJoinType int

const (
	SpatialInner SpatialJoinType = iota
	SpatialLeft
)

func (t SpatialJoinType) String() string {
	if t == SpatialLeft {
		return "LEFT"
	}
	return "INNER"
}

// SpatialJoin is structurally parallel to Join but simpler: the
// filter is mandatory, there are no equi-clauses and no dynamic
// filters (spec.md §4.4).
type SpatialJoin struct {
	NodeID             string
	Type               SpatialJoinType
	Left               Node
	Right              Node
	Filter             rex.Expr
	PartitioningSymbol *Symbol
	SpatialIndexHint   string
}

func (s *SpatialJoin) ID() string { return s.NodeID }
func (s *SpatialJoin) Output() []*Symbol {
	return append(append([]*Symbol{}, s.Left.Output()...), s.Right.Output()...)
}
func (s *SpatialJoin) Children() []Node { return []Node{s.Left, s.Right} }
func (s *SpatialJoin) planNode()        {}

// SemiJoin carries the boolean result of "does this source row have
// a match in the filtering source" as OutputSymbol (spec.md §3,
// "SemiJoin").
type SemiJoin struct {
	NodeID            string
	Source            Node
	FilteringSource   Node
	SourceJoinSymbol  *Symbol
	FilteringJoinSymbol *Symbol
	OutputSymbol      *Symbol
	DynamicFilterID   string // "" means none assigned yet
}

func (s *SemiJoin) ID() string { return s.NodeID }
func (s *SemiJoin) Output() []*Symbol {
	return append(append([]*Symbol{}, s.Source.Output()...), s.OutputSymbol)
}
func (s *SemiJoin) Children() []Node { return []Node{s.Source, s.FilteringSource} }
func (s *SemiJoin) planNode()        {}
