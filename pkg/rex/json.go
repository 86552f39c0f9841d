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

package rex

import (
	"encoding/json"
	"fmt"
)

// exprWire is the on-disk shape of an Expr: a "kind" discriminator
// plus whichever fields that variant needs. cmd/hetuctl reads plans
// in this format rather than a general-purpose Go-value encoding, so
// a hand-written plan.json fixture stays readable.
type exprWire struct {
	Kind       string      `json:"kind"`
	Name       string      `json:"name,omitempty"`
	Type       string      `json:"type,omitempty"`
	Value      interface{} `json:"value,omitempty"`
	Op         string      `json:"op,omitempty"`
	Args       []exprWire  `json:"args,omitempty"`
	ID         string      `json:"id,omitempty"`
	Probe      *exprWire   `json:"probe,omitempty"`
	Comparator string      `json:"comparator,omitempty"`
}

func typeFromWire(s string) Type {
	switch s {
	case "boolean":
		return Boolean
	case "bigint":
		return Bigint
	case "double":
		return Double
	case "varchar":
		return Varchar
	case "timestamp":
		return Timestamp
	default:
		return Unknown
	}
}

func typeToWire(t Type) string { return t.String() }

// DecodeExpr parses one exprWire node (already unmarshaled from
// JSON) into an Expr tree.
func DecodeExpr(w exprWire) (Expr, error) {
	switch w.Kind {
	case "var":
		return &Variable{Name: w.Name, Typ: typeFromWire(w.Type)}, nil
	case "const":
		if w.Value == nil {
			return NullOf(typeFromWire(w.Type)), nil
		}
		return &Constant{Val: w.Value, Typ: typeFromWire(w.Type)}, nil
	case "call":
		args := make([]Expr, len(w.Args))
		for i, a := range w.Args {
			ae, err := DecodeExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = ae
		}
		return &Call{Op: Op(w.Op), Args: args, Typ: typeFromWire(w.Type)}, nil
	case "df":
		if w.Probe == nil {
			return nil, fmt.Errorf("rex: dynamic filter %q missing probe", w.ID)
		}
		probe, err := DecodeExpr(*w.Probe)
		if err != nil {
			return nil, err
		}
		probeVar, ok := probe.(*Variable)
		if !ok {
			return nil, fmt.Errorf("rex: dynamic filter %q probe is not a variable", w.ID)
		}
		return &DynamicFilter{ID: w.ID, Probe: probeVar, Comparator: Op(w.Comparator)}, nil
	default:
		return nil, fmt.Errorf("rex: unknown expression kind %q", w.Kind)
	}
}

// UnmarshalJSON lets an *exprWire (and transitively, []exprWire) be
// decoded with the standard library directly.
func (w *exprWire) UnmarshalJSON(data []byte) error {
	type alias exprWire
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*w = exprWire(a)
	return nil
}

// ParseExprJSON decodes a single JSON expression document.
func ParseExprJSON(data []byte) (Expr, error) {
	var w exprWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return DecodeExpr(w)
}

// EncodeExpr renders e back into the wire shape, for cmd/hetuctl to
// print a rewritten plan.
func EncodeExpr(e Expr) exprWire {
	switch t := e.(type) {
	case *Variable:
		return exprWire{Kind: "var", Name: t.Name, Type: typeToWire(t.Typ)}
	case *Constant:
		return exprWire{Kind: "const", Value: t.Val, Type: typeToWire(t.Typ)}
	case *Call:
		args := make([]exprWire, len(t.Args))
		for i, a := range t.Args {
			args[i] = EncodeExpr(a)
		}
		return exprWire{Kind: "call", Op: string(t.Op), Args: args, Type: typeToWire(t.Typ)}
	case *DynamicFilter:
		probe := EncodeExpr(t.Probe)
		return exprWire{Kind: "df", ID: t.ID, Probe: &probe, Comparator: string(t.Comparator)}
	default:
		return exprWire{Kind: "unknown"}
	}
}

// ExprWire is the exported alias cmd/hetuctl and pkg/plan's own codec
// decode into/from; the type itself stays unexported to keep the
// field set (and its json tags) an implementation detail of this
// package's wire format.
type ExprWire = exprWire

// DecodeVariable is a convenience for callers (pkg/plan's codec) that
// know a wire node must be a variable, e.g. a Symbol.
func DecodeVariable(w exprWire) (*Variable, error) {
	e, err := DecodeExpr(w)
	if err != nil {
		return nil, err
	}
	v, ok := e.(*Variable)
	if !ok {
		return nil, fmt.Errorf("rex: expected a variable, got kind %q", w.Kind)
	}
	return v, nil
}

// EncodeVariable mirrors EncodeExpr for the Symbol case.
func EncodeVariable(v *Variable) exprWire { return EncodeExpr(v) }
