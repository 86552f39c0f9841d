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

// InlineVariables substitutes every Variable in e that has a mapping in
// replacements with the mapped expression, recursively. Variables with
// no mapping are left as-is. This backs both the Project rule's
// substitution of a child-side variable by its defining assignment, and
// the Union/Exchange rules' translation of an inherited predicate into
// an input's symbol space.
func InlineVariables(replacements map[string]Expr, e Expr) Expr {
	switch n := e.(type) {
	case nil:
		return nil
	case *Constant:
		return n
	case *Variable:
		if r, ok := replacements[n.Name]; ok {
			return r
		}
		return n
	case *Call:
		args := make([]Expr, len(n.Args))
		changed := false
		for i, a := range n.Args {
			args[i] = InlineVariables(replacements, a)
			if args[i] != a {
				changed = true
			}
		}
		if !changed {
			return n
		}
		return &Call{Op: n.Op, Args: args, Typ: n.Typ}
	case *DynamicFilter:
		if r, ok := replacements[n.Probe.Name]; ok {
			if v, ok := r.(*Variable); ok {
				return &DynamicFilter{ID: n.ID, Probe: v, Comparator: n.Comparator}
			}
		}
		return n
	default:
		return e
	}
}

// VariableMap builds a replacements map suitable for InlineVariables
// from a from->to variable correspondence (e.g. an output->input symbol
// mapping on Union or Exchange).
func VariableMap(from []*Variable, to []*Variable) map[string]Expr {
	m := make(map[string]Expr, len(from))
	for i, f := range from {
		m[f.Name] = to[i]
	}
	return m
}

// RenameToInput is a convenience for the common case of mapping a
// single output variable to a single input variable.
func RenameToInput(out, in *Variable) map[string]Expr {
	return map[string]Expr{out.Name: in}
}
