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

// ExtractConjuncts flattens e into its top-level AND operands. TRUE
// extracts to the empty sequence. A non-AND expression extracts to the
// single-element sequence containing itself.
func ExtractConjuncts(e Expr) []Expr {
	var out []Expr
	collectConjuncts(e, &out)
	return out
}

func collectConjuncts(e Expr, out *[]Expr) {
	if e == nil || IsTrue(e) {
		return
	}
	if c, ok := e.(*Call); ok && c.Op == And {
		for _, a := range c.Args {
			collectConjuncts(a, out)
		}
		return
	}
	*out = append(*out, e)
}

// CombineConjuncts is the identity-on-empty inverse of ExtractConjuncts:
// it dedupes the given conjuncts, short-circuits to FALSE if any of them
// is the FALSE literal, and folds the rest back into a single AND (or
// TRUE if nothing remains).
func CombineConjuncts(conjuncts ...Expr) Expr {
	var flat []Expr
	for _, c := range conjuncts {
		flat = append(flat, ExtractConjuncts(c)...)
	}
	seen := make(map[string]bool, len(flat))
	deduped := flat[:0:0]
	for _, c := range flat {
		if IsFalse(c) {
			return False
		}
		key := c.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, c)
	}
	return NewAnd(deduped...)
}

// CombineConjunctList is CombineConjuncts over a slice, for call sites
// that have already built up a []Expr.
func CombineConjunctList(conjuncts []Expr) Expr {
	return CombineConjuncts(conjuncts...)
}
