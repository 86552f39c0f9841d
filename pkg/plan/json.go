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
	"encoding/json"
	"fmt"

	"github.com/shobhitham/hetu-core/pkg/rex"
)

// nodeWire is the on-disk shape cmd/hetuctl reads plans from and
// writes rewritten plans back to: a "kind" discriminator plus
// whichever of the remaining fields that node variant uses.
type nodeWire struct {
	Kind           string          `json:"kind"`
	ID             string          `json:"id"`
	Table          string          `json:"table,omitempty"`
	Columns        []rex.ExprWire  `json:"columns,omitempty"`
	Predicate      *rex.ExprWire   `json:"predicate,omitempty"`
	Assignments    []assignWire    `json:"assignments,omitempty"`
	Source         *nodeWire       `json:"source,omitempty"`
	Left           *nodeWire       `json:"left,omitempty"`
	Right          *nodeWire       `json:"right,omitempty"`
	JoinType       string          `json:"joinType,omitempty"`
	EquiClauses    []equiWire      `json:"equiClauses,omitempty"`
	Filter         *rex.ExprWire   `json:"filter,omitempty"`
	Distribution   string          `json:"distribution,omitempty"`
	Spillable      bool            `json:"spillable,omitempty"`
	GroupingKeys   []rex.ExprWire  `json:"groupingKeys,omitempty"`
	GroupingSets   [][]rex.ExprWire `json:"groupingSets,omitempty"`
	Aggregates     []aggWire       `json:"aggregates,omitempty"`
	GroupIDSymbol  *rex.ExprWire   `json:"groupIdSymbol,omitempty"`
	PartitionBy    []rex.ExprWire  `json:"partitionBy,omitempty"`
	OrderBy        []rex.ExprWire  `json:"orderBy,omitempty"`
	Functions      []aggWire       `json:"functions,omitempty"`
	Marker         *rex.ExprWire   `json:"marker,omitempty"`
	DistinctSymbols []rex.ExprWire `json:"distinctSymbols,omitempty"`
	CommonGroupingColumns map[string]rex.ExprWire `json:"commonGroupingColumns,omitempty"`
	PassthroughColumns []rex.ExprWire `json:"passthroughColumns,omitempty"`
	ReplicateSymbols []rex.ExprWire `json:"replicateSymbols,omitempty"`
	ArraySymbols   []rex.ExprWire  `json:"arraySymbols,omitempty"`
	UnnestedSymbols []rex.ExprWire `json:"unnestedSymbols,omitempty"`
	OrdinalitySymbol *rex.ExprWire `json:"ordinalitySymbol,omitempty"`
	UniqueIDSymbol *rex.ExprWire   `json:"uniqueIdSymbol,omitempty"`
	Ratio          float64         `json:"ratio,omitempty"`
	Inputs         []nodeWire      `json:"inputs,omitempty"`
	InputMappings  [][]rex.ExprWire `json:"inputMappings,omitempty"`
	Partitioning   string          `json:"partitioning,omitempty"`
	CTEName        string          `json:"cteName,omitempty"`
}

type assignWire struct {
	Output rex.ExprWire `json:"output"`
	Expr   rex.ExprWire `json:"expr"`
}

type equiWire struct {
	Left  rex.ExprWire `json:"left"`
	Right rex.ExprWire `json:"right"`
}

type aggWire struct {
	Output rex.ExprWire   `json:"output"`
	Func   string         `json:"func"`
	Args   []rex.ExprWire `json:"args,omitempty"`
}

func decodeVars(ws []rex.ExprWire) ([]*Symbol, error) {
	out := make([]*Symbol, len(ws))
	for i, w := range ws {
		v, err := rex.DecodeVariable(w)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func encodeVars(vs []*Symbol) []rex.ExprWire {
	out := make([]rex.ExprWire, len(vs))
	for i, v := range vs {
		out[i] = rex.EncodeVariable(v)
	}
	return out
}

func joinTypeFromWire(s string) (JoinType, error) {
	switch s {
	case "INNER":
		return Inner, nil
	case "LEFT":
		return Left, nil
	case "RIGHT":
		return Right, nil
	case "FULL":
		return Full, nil
	default:
		return Inner, fmt.Errorf("plan: unknown join type %q", s)
	}
}

func distributionFromWire(s string) DistributionType {
	switch s {
	case "PARTITIONED":
		return Partitioned
	case "REPLICATED":
		return Replicated
	default:
		return DistributionUnspecified
	}
}

func distributionToWire(d DistributionType) string {
	switch d {
	case Partitioned:
		return "PARTITIONED"
	case Replicated:
		return "REPLICATED"
	default:
		return ""
	}
}

// DecodeNode parses one nodeWire (and, recursively, its children)
// into a Node tree.
func DecodeNode(w nodeWire) (Node, error) {
	switch w.Kind {
	case "scan", "tablescan":
		cols, err := decodeVars(w.Columns)
		if err != nil {
			return nil, err
		}
		return &TableScan{NodeID: w.ID, Table: w.Table, Columns: cols}, nil
	case "cteScan":
		cols, err := decodeVars(w.Columns)
		if err != nil {
			return nil, err
		}
		src, err := decodeChild(w.Source)
		if err != nil {
			return nil, err
		}
		return &CTEScan{NodeID: w.ID, CTEName: w.CTEName, Columns: cols, Source: src}, nil
	case "filter":
		if w.Predicate == nil {
			return nil, fmt.Errorf("plan: filter %s missing predicate", w.ID)
		}
		pred, err := rex.DecodeExpr(*w.Predicate)
		if err != nil {
			return nil, err
		}
		src, err := decodeChild(w.Source)
		if err != nil {
			return nil, err
		}
		return &Filter{NodeID: w.ID, Predicate: pred, Source: src}, nil
	case "project":
		assigns := make([]Assignment, len(w.Assignments))
		for i, a := range w.Assignments {
			out, err := rex.DecodeVariable(a.Output)
			if err != nil {
				return nil, err
			}
			expr, err := rex.DecodeExpr(a.Expr)
			if err != nil {
				return nil, err
			}
			assigns[i] = Assignment{Output: out, Expr: expr}
		}
		src, err := decodeChild(w.Source)
		if err != nil {
			return nil, err
		}
		return &Project{NodeID: w.ID, Assignments: assigns, Source: src}, nil
	case "join":
		jt, err := joinTypeFromWire(w.JoinType)
		if err != nil {
			return nil, err
		}
		left, err := decodeChild(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeChild(w.Right)
		if err != nil {
			return nil, err
		}
		clauses := make([]EquiClause, len(w.EquiClauses))
		for i, c := range w.EquiClauses {
			l, err := rex.DecodeVariable(c.Left)
			if err != nil {
				return nil, err
			}
			r, err := rex.DecodeVariable(c.Right)
			if err != nil {
				return nil, err
			}
			clauses[i] = EquiClause{Left: l, Right: r}
		}
		var filter rex.Expr
		if w.Filter != nil {
			filter, err = rex.DecodeExpr(*w.Filter)
			if err != nil {
				return nil, err
			}
		}
		return &Join{
			NodeID:       w.ID,
			Type:         jt,
			Left:         left,
			Right:        right,
			EquiClauses:  clauses,
			Filter:       filter,
			Distribution: distributionFromWire(w.Distribution),
			Spillable:    w.Spillable,
		}, nil
	case "aggregation":
		keys, err := decodeVars(w.GroupingKeys)
		if err != nil {
			return nil, err
		}
		sets := make([][]*Symbol, len(w.GroupingSets))
		for i, s := range w.GroupingSets {
			sets[i], err = decodeVars(s)
			if err != nil {
				return nil, err
			}
		}
		aggs, err := decodeAggs(w.Aggregates)
		if err != nil {
			return nil, err
		}
		var groupID *Symbol
		if w.GroupIDSymbol != nil {
			groupID, err = rex.DecodeVariable(*w.GroupIDSymbol)
			if err != nil {
				return nil, err
			}
		}
		src, err := decodeChild(w.Source)
		if err != nil {
			return nil, err
		}
		return &Aggregation{NodeID: w.ID, GroupingKeys: keys, GroupingSets: sets, Aggregates: aggs, GroupIDSymbol: groupID, Source: src}, nil
	case "window":
		part, err := decodeVars(w.PartitionBy)
		if err != nil {
			return nil, err
		}
		order, err := decodeVars(w.OrderBy)
		if err != nil {
			return nil, err
		}
		fns, err := decodeAggs(w.Functions)
		if err != nil {
			return nil, err
		}
		src, err := decodeChild(w.Source)
		if err != nil {
			return nil, err
		}
		return &Window{NodeID: w.ID, PartitionBy: part, OrderBy: order, Functions: fns, Source: src}, nil
	case "markDistinct":
		marker, err := rex.DecodeVariable(*w.Marker)
		if err != nil {
			return nil, err
		}
		distinct, err := decodeVars(w.DistinctSymbols)
		if err != nil {
			return nil, err
		}
		src, err := decodeChild(w.Source)
		if err != nil {
			return nil, err
		}
		return &MarkDistinct{NodeID: w.ID, Marker: marker, DistinctSymbols: distinct, Source: src}, nil
	case "groupId":
		groupID, err := rex.DecodeVariable(*w.GroupIDSymbol)
		if err != nil {
			return nil, err
		}
		common := make(map[string]*Symbol, len(w.CommonGroupingColumns))
		for out, in := range w.CommonGroupingColumns {
			v, err := rex.DecodeVariable(in)
			if err != nil {
				return nil, err
			}
			common[out] = v
		}
		pass, err := decodeVars(w.PassthroughColumns)
		if err != nil {
			return nil, err
		}
		src, err := decodeChild(w.Source)
		if err != nil {
			return nil, err
		}
		return &GroupId{NodeID: w.ID, GroupIDSymbol: groupID, CommonGroupingColumns: common, PassthroughColumns: pass, Source: src}, nil
	case "unnest":
		rep, err := decodeVars(w.ReplicateSymbols)
		if err != nil {
			return nil, err
		}
		arr, err := decodeVars(w.ArraySymbols)
		if err != nil {
			return nil, err
		}
		unnested, err := decodeVars(w.UnnestedSymbols)
		if err != nil {
			return nil, err
		}
		var ord *Symbol
		if w.OrdinalitySymbol != nil {
			ord, err = rex.DecodeVariable(*w.OrdinalitySymbol)
			if err != nil {
				return nil, err
			}
		}
		src, err := decodeChild(w.Source)
		if err != nil {
			return nil, err
		}
		return &Unnest{NodeID: w.ID, ReplicateSymbols: rep, ArraySymbols: arr, UnnestedSymbols: unnested, OrdinalitySymbol: ord, Source: src}, nil
	case "assignUniqueId":
		id, err := rex.DecodeVariable(*w.UniqueIDSymbol)
		if err != nil {
			return nil, err
		}
		src, err := decodeChild(w.Source)
		if err != nil {
			return nil, err
		}
		return &AssignUniqueId{NodeID: w.ID, UniqueIDSymbol: id, Source: src}, nil
	case "sort":
		order, err := decodeVars(w.OrderBy)
		if err != nil {
			return nil, err
		}
		src, err := decodeChild(w.Source)
		if err != nil {
			return nil, err
		}
		return &Sort{NodeID: w.ID, OrderBy: order, Source: src}, nil
	case "sample":
		src, err := decodeChild(w.Source)
		if err != nil {
			return nil, err
		}
		return &Sample{NodeID: w.ID, Ratio: w.Ratio, Source: src}, nil
	case "union", "exchange":
		cols, err := decodeVars(w.Columns)
		if err != nil {
			return nil, err
		}
		inputs := make([]Node, len(w.Inputs))
		for i, in := range w.Inputs {
			inputs[i], err = DecodeNode(in)
			if err != nil {
				return nil, err
			}
		}
		mappings := make([][]*Symbol, len(w.InputMappings))
		for i, m := range w.InputMappings {
			mappings[i], err = decodeVars(m)
			if err != nil {
				return nil, err
			}
		}
		if w.Kind == "union" {
			return &Union{NodeID: w.ID, Columns: cols, Inputs: inputs, InputMappings: mappings}, nil
		}
		return &Exchange{NodeID: w.ID, Columns: cols, Inputs: inputs, InputMappings: mappings, Partitioning: w.Partitioning}, nil
	default:
		return nil, fmt.Errorf("plan: unknown node kind %q", w.Kind)
	}
}

func decodeChild(w *nodeWire) (Node, error) {
	if w == nil {
		return nil, fmt.Errorf("plan: missing required child node")
	}
	return DecodeNode(*w)
}

func decodeAggs(ws []aggWire) ([]AggregateCall, error) {
	out := make([]AggregateCall, len(ws))
	for i, w := range ws {
		out2, err := rex.DecodeVariable(w.Output)
		if err != nil {
			return nil, err
		}
		args, err := decodeVars(w.Args)
		if err != nil {
			return nil, err
		}
		out[i] = AggregateCall{Output: out2, Func: rex.Op(w.Func), Args: args}
	}
	return out, nil
}

// ParseJSON decodes a single JSON plan document, as read by
// cmd/hetuctl's "optimize" subcommand.
func ParseJSON(data []byte) (Node, error) {
	var w nodeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return DecodeNode(w)
}

// EncodeNode renders n back into the wire shape for cmd/hetuctl to
// print the rewritten plan. SemiJoin and SpatialJoin have no wire form:
// they encode as kind "unknown" with none of their fields or children.
// A Join's DynamicFilters are not written.
func EncodeNode(n Node) nodeWire {
	switch t := n.(type) {
	case *TableScan:
		return nodeWire{Kind: "scan", ID: t.NodeID, Table: t.Table, Columns: encodeVars(t.Columns)}
	case *CTEScan:
		return nodeWire{Kind: "cteScan", ID: t.NodeID, CTEName: t.CTEName, Columns: encodeVars(t.Columns), Source: encodeChild(t.Source)}
	case *Filter:
		pred := rex.EncodeExpr(t.Predicate)
		return nodeWire{Kind: "filter", ID: t.NodeID, Predicate: &pred, Source: encodeChild(t.Source)}
	case *Project:
		assigns := make([]assignWire, len(t.Assignments))
		for i, a := range t.Assignments {
			assigns[i] = assignWire{Output: rex.EncodeVariable(a.Output), Expr: rex.EncodeExpr(a.Expr)}
		}
		return nodeWire{Kind: "project", ID: t.NodeID, Assignments: assigns, Source: encodeChild(t.Source)}
	case *Join:
		clauses := make([]equiWire, len(t.EquiClauses))
		for i, c := range t.EquiClauses {
			clauses[i] = equiWire{Left: rex.EncodeVariable(c.Left), Right: rex.EncodeVariable(c.Right)}
		}
		var filter *rex.ExprWire
		if t.Filter != nil {
			f := rex.EncodeExpr(t.Filter)
			filter = &f
		}
		return nodeWire{
			Kind: "join", ID: t.NodeID, JoinType: t.Type.String(),
			Left: encodeChild(t.Left), Right: encodeChild(t.Right),
			EquiClauses: clauses, Filter: filter,
			Distribution: distributionToWire(t.Distribution), Spillable: t.Spillable,
		}
	case *Aggregation:
		sets := make([][]rex.ExprWire, len(t.GroupingSets))
		for i, s := range t.GroupingSets {
			sets[i] = encodeVars(s)
		}
		var groupID *rex.ExprWire
		if t.GroupIDSymbol != nil {
			g := rex.EncodeVariable(t.GroupIDSymbol)
			groupID = &g
		}
		return nodeWire{
			Kind: "aggregation", ID: t.NodeID, GroupingKeys: encodeVars(t.GroupingKeys),
			GroupingSets: sets, Aggregates: encodeAggs(t.Aggregates), GroupIDSymbol: groupID,
			Source: encodeChild(t.Source),
		}
	case *Window:
		return nodeWire{Kind: "window", ID: t.NodeID, PartitionBy: encodeVars(t.PartitionBy), OrderBy: encodeVars(t.OrderBy), Functions: encodeAggs(t.Functions), Source: encodeChild(t.Source)}
	case *MarkDistinct:
		marker := rex.EncodeVariable(t.Marker)
		return nodeWire{Kind: "markDistinct", ID: t.NodeID, Marker: &marker, DistinctSymbols: encodeVars(t.DistinctSymbols), Source: encodeChild(t.Source)}
	case *GroupId:
		groupID := rex.EncodeVariable(t.GroupIDSymbol)
		common := make(map[string]rex.ExprWire, len(t.CommonGroupingColumns))
		for out, in := range t.CommonGroupingColumns {
			common[out] = rex.EncodeVariable(in)
		}
		return nodeWire{Kind: "groupId", ID: t.NodeID, GroupIDSymbol: &groupID, CommonGroupingColumns: common, PassthroughColumns: encodeVars(t.PassthroughColumns), Source: encodeChild(t.Source)}
	case *Unnest:
		var ord *rex.ExprWire
		if t.OrdinalitySymbol != nil {
			o := rex.EncodeVariable(t.OrdinalitySymbol)
			ord = &o
		}
		return nodeWire{Kind: "unnest", ID: t.NodeID, ReplicateSymbols: encodeVars(t.ReplicateSymbols), ArraySymbols: encodeVars(t.ArraySymbols), UnnestedSymbols: encodeVars(t.UnnestedSymbols), OrdinalitySymbol: ord, Source: encodeChild(t.Source)}
	case *AssignUniqueId:
		id := rex.EncodeVariable(t.UniqueIDSymbol)
		return nodeWire{Kind: "assignUniqueId", ID: t.NodeID, UniqueIDSymbol: &id, Source: encodeChild(t.Source)}
	case *Sort:
		return nodeWire{Kind: "sort", ID: t.NodeID, OrderBy: encodeVars(t.OrderBy), Source: encodeChild(t.Source)}
	case *Sample:
		return nodeWire{Kind: "sample", ID: t.NodeID, Ratio: t.Ratio, Source: encodeChild(t.Source)}
	case *Union:
		return nodeWire{Kind: "union", ID: t.NodeID, Columns: encodeVars(t.Columns), Inputs: encodeChildren(t.Inputs), InputMappings: encodeMappings(t.InputMappings)}
	case *Exchange:
		return nodeWire{Kind: "exchange", ID: t.NodeID, Columns: encodeVars(t.Columns), Inputs: encodeChildren(t.Inputs), InputMappings: encodeMappings(t.InputMappings), Partitioning: t.Partitioning}
	default:
		return nodeWire{Kind: "unknown"}
	}
}

func encodeChild(n Node) *nodeWire {
	if n == nil {
		return nil
	}
	w := EncodeNode(n)
	return &w
}

func encodeChildren(ns []Node) []nodeWire {
	out := make([]nodeWire, len(ns))
	for i, n := range ns {
		out[i] = EncodeNode(n)
	}
	return out
}

func encodeMappings(ms [][]*Symbol) [][]rex.ExprWire {
	out := make([][]rex.ExprWire, len(ms))
	for i, m := range ms {
		out[i] = encodeVars(m)
	}
	return out
}

func encodeAggs(aggs []AggregateCall) []aggWire {
	out := make([]aggWire, len(aggs))
	for i, a := range aggs {
		out[i] = aggWire{Output: rex.EncodeVariable(a.Output), Func: string(a.Func), Args: encodeVars(a.Args)}
	}
	return out
}

// MarshalNodeJSON makes Node trees (via EncodeNode's wire shape)
// round-trip through the standard library's json package without
// cmd/hetuctl having to call EncodeNode/DecodeNode explicitly.
func MarshalNodeJSON(n Node) ([]byte, error) {
	return json.MarshalIndent(EncodeNode(n), "", "  ")
}
