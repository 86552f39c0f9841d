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

// Simplifier folds constants, flattens nested ANDs, and drops
// SQL three-valued-logic tautologies (e.g. "x AND TRUE" -> "x"). It
// never reorders or drops a conjunct that might still reference a
// column, so it is safe to run on any intermediate predicate, not just
// a fully-bound one.
type Simplifier struct {
	Catalog FunctionCatalog
}

// Simplify rewrites e to an equivalent, smaller expression. It is the
// concrete backer of the "expression simplifier" collaborator in
// spec.md §6, used after every rewrite that combines or substitutes
// into a predicate.
func (s Simplifier) Simplify(e Expr) Expr {
	switch n := e.(type) {
	case nil, *Constant, *Variable, *DynamicFilter:
		return e
	case *Call:
		return s.simplifyCall(n)
	default:
		return e
	}
}

func (s Simplifier) simplifyCall(c *Call) Expr {
	args := make([]Expr, len(c.Args))
	for i, a := range c.Args {
		args[i] = s.Simplify(a)
	}
	switch c.Op {
	case And:
		return s.simplifyAnd(args)
	case Or:
		return s.simplifyOr(args)
	case Not:
		return s.simplifyNot(args[0])
	case Eq, Neq, Lt, Le, Gt, Ge, Plus, Minus, Mul, Div:
		if len(args) == 2 && (IsNullLiteral(args[0]) || IsNullLiteral(args[1])) {
			if c.Op == Plus || c.Op == Minus || c.Op == Mul || c.Op == Div {
				return NullOf(c.Typ)
			}
			return NullOf(Boolean)
		}
		if folded, ok := foldBinary(c.Op, args); ok {
			return folded
		}
	case IsNull:
		if k, ok := args[0].(*Constant); ok {
			return boolConst(k.IsNull())
		}
	case IsNotNull:
		if k, ok := args[0].(*Constant); ok {
			return boolConst(!k.IsNull())
		}
	}
	if allConstant(args) && s.Catalog != nil && !isBuiltin(c.Op) {
		if folded, ok := s.Catalog.Fold(c.Op, args); ok {
			return folded
		}
	}
	return &Call{Op: c.Op, Args: args, Typ: c.Typ}
}

func (s Simplifier) simplifyAnd(args []Expr) Expr {
	var kept []Expr
	for _, a := range args {
		if IsFalse(a) {
			return False
		}
		if IsTrue(a) {
			continue
		}
		kept = append(kept, ExtractConjuncts(a)...)
	}
	return NewAnd(dedupe(kept)...)
}

func (s Simplifier) simplifyOr(args []Expr) Expr {
	var kept []Expr
	for _, a := range args {
		if IsTrue(a) {
			return True
		}
		if IsFalse(a) {
			continue
		}
		kept = append(kept, a)
	}
	if len(kept) == 0 {
		return False
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return &Call{Op: Or, Args: dedupe(kept), Typ: Boolean}
}

func (s Simplifier) simplifyNot(arg Expr) Expr {
	switch {
	case IsTrue(arg):
		return False
	case IsFalse(arg):
		return True
	default:
		return &Call{Op: Not, Args: []Expr{arg}, Typ: Boolean}
	}
}

func dedupe(exprs []Expr) []Expr {
	seen := make(map[string]bool, len(exprs))
	out := exprs[:0:0]
	for _, e := range exprs {
		key := e.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

func allConstant(exprs []Expr) bool {
	for _, e := range exprs {
		if _, ok := e.(*Constant); !ok {
			return false
		}
	}
	return true
}

func boolConst(b bool) *Constant {
	if b {
		return True
	}
	return False
}

// foldBinary evaluates a built-in binary operator over two constants,
// propagating NULL per SQL three-valued logic. ok is false when either
// operand isn't constant yet, or the operator/value combination can't
// be folded (e.g. string arithmetic).
func foldBinary(op Op, args []Expr) (Expr, bool) {
	if len(args) != 2 {
		return nil, false
	}
	l, lok := args[0].(*Constant)
	r, rok := args[1].(*Constant)
	if !lok || !rok {
		return nil, false
	}
	if l.IsNull() || r.IsNull() {
		if op == Eq || op == Neq || op == Lt || op == Le || op == Gt || op == Ge {
			return NullOf(Boolean), true
		}
		return NullOf(l.Typ), true
	}
	lf, lok := asFloat(l.Val)
	rf, rok := asFloat(r.Val)
	if !lok || !rok {
		if op == Eq {
			return boolConst(l.Val == r.Val), true
		}
		if op == Neq {
			return boolConst(l.Val != r.Val), true
		}
		return nil, false
	}
	switch op {
	case Eq:
		return boolConst(lf == rf), true
	case Neq:
		return boolConst(lf != rf), true
	case Lt:
		return boolConst(lf < rf), true
	case Le:
		return boolConst(lf <= rf), true
	case Gt:
		return boolConst(lf > rf), true
	case Ge:
		return boolConst(lf >= rf), true
	case Plus:
		return &Constant{Val: lf + rf, Typ: l.Typ}, true
	case Minus:
		return &Constant{Val: lf - rf, Typ: l.Typ}, true
	case Mul:
		return &Constant{Val: lf * rf, Typ: l.Typ}, true
	case Div:
		if rf == 0 {
			return nil, false
		}
		return &Constant{Val: lf / rf, Typ: l.Typ}, true
	default:
		return nil, false
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// Equivalent reports whether two expressions are structurally
// identical up to constant folding, used by the structural-stability
// guard (spec.md §4.2, "Structural-stability guard") to decide whether
// a rewrite actually changed anything.
func (s Simplifier) Equivalent(a, b Expr) bool {
	return s.Simplify(a).String() == s.Simplify(b).String()
}

// NullInputEvaluator evaluates a boolean expression with a chosen set
// of variables bound to NULL and every other variable left symbolic
// via a best-effort constant binding. It backs the join
// outer-to-inner normalization's null-rejection test (spec.md §4.2):
// "binds every variable on the joined side to NULL ... evaluates the
// predicate under SQL three-valued logic ... the side can be treated
// as INNER when the predicate evaluates to FALSE or UNKNOWN for every
// row in which those variables are NULL."
type NullInputEvaluator struct {
	Simplifier Simplifier
}

// RejectsNull reports whether expr is guaranteed to evaluate to FALSE
// or NULL whenever every variable in nullVars is NULL, regardless of
// the value of any other variable. It is conservative: if it cannot
// prove rejection it returns false, never a false positive.
func (n NullInputEvaluator) RejectsNull(expr Expr, nullVars VarSet) bool {
	bound := bindToNull(expr, nullVars)
	folded := n.Simplifier.Simplify(bound)
	return IsFalse(folded) || IsNullLiteral(folded)
}

func bindToNull(e Expr, nullVars VarSet) Expr {
	switch n := e.(type) {
	case nil, *Constant:
		return e
	case *Variable:
		if nullVars.Contains(n) {
			return NullOf(n.Typ)
		}
		return n
	case *Call:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = bindToNull(a, nullVars)
		}
		return &Call{Op: n.Op, Args: args, Typ: n.Typ}
	case *DynamicFilter:
		return n
	default:
		return e
	}
}
