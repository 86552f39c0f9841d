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

// Package catalog implements the read-only metadata catalog
// collaborator from spec.md §6: per-function determinism metadata,
// and constant folding for catalog-registered scalar functions that
// aren't part of the row-expression algebra's built-in operator set.
//
// Built-in operators (AND, comparisons, arithmetic) are folded
// directly by package rex using SQL three-valued logic; gval is
// narrowly scoped to catalog functions precisely because gval's
// expression language has no native NULL and can't be trusted with
// the join null-rejection test's three-valued semantics.
package catalog

import (
	"context"
	"fmt"

	"github.com/PaesslerAG/gval"

	"github.com/shobhitham/hetu-core/pkg/rex"
)

// FunctionSpec describes one catalog-registered scalar function: its
// determinism and, when foldable, a gval expression template that
// computes its result from named arguments arg0, arg1, ...
type FunctionSpec struct {
	Name          string `yaml:"name"`
	Deterministic bool   `yaml:"deterministic"`
	Template      string `yaml:"template"`
	ReturnType    string `yaml:"returnType"`
}

// Catalog holds a fixed set of function specs, compiled once at load
// time. It implements rex.FunctionCatalog.
type Catalog struct {
	specs map[string]FunctionSpec
	eval  map[string]gval.Evaluable
}

func New() *Catalog {
	return &Catalog{specs: map[string]FunctionSpec{}, eval: map[string]gval.Evaluable{}}
}

// Register adds or replaces a function spec, compiling its template
// (if any) eagerly so a bad template fails at load time rather than
// mid-optimization.
func (c *Catalog) Register(spec FunctionSpec) error {
	c.specs[spec.Name] = spec
	if spec.Template == "" {
		return nil
	}
	eval, err := gval.Full().NewEvaluable(spec.Template)
	if err != nil {
		return fmt.Errorf("catalog: compiling template for %s: %w", spec.Name, err)
	}
	c.eval[spec.Name] = eval
	return nil
}

func (c *Catalog) IsDeterministic(op rex.Op) bool {
	spec, ok := c.specs[string(op)]
	if !ok {
		// Unknown functions default to deterministic, matching the
		// teacher's default-allow posture for unregistered calls.
		return true
	}
	return spec.Deterministic
}

// Fold evaluates a registered function's template against constant
// arguments. ok is false when the function isn't registered, has no
// template, or any argument isn't a *rex.Constant.
func (c *Catalog) Fold(op rex.Op, args []rex.Expr) (rex.Expr, bool) {
	spec, ok := c.specs[string(op)]
	if !ok || spec.Template == "" {
		return nil, false
	}
	eval, ok := c.eval[spec.Name]
	if !ok {
		return nil, false
	}
	vars := make(map[string]interface{}, len(args))
	for i, a := range args {
		cst, ok := a.(*rex.Constant)
		if !ok {
			return nil, false
		}
		if cst.IsNull() {
			return rex.NullOf(parseType(spec.ReturnType)), true
		}
		vars[fmt.Sprintf("arg%d", i)] = cst.Val
	}
	result, err := eval(context.Background(), vars)
	if err != nil {
		return nil, false
	}
	return &rex.Constant{Val: result, Typ: parseType(spec.ReturnType)}, true
}

func parseType(name string) rex.Type {
	switch name {
	case "boolean":
		return rex.Boolean
	case "bigint":
		return rex.Bigint
	case "double":
		return rex.Double
	case "varchar":
		return rex.Varchar
	case "timestamp":
		return rex.Timestamp
	default:
		return rex.Unknown
	}
}
