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

// Package pushdown implements the predicate pushdown optimizer pass:
// a single bottom-up rewrite of a logical plan tree that relocates
// filter predicates as close to their data sources as the relational
// semantics of the intervening operators permit (spec.md §1-§2).
package pushdown

import (
	"github.com/shobhitham/hetu-core/internal/idalloc"
	"github.com/shobhitham/hetu-core/pkg/catalog"
	"github.com/shobhitham/hetu-core/pkg/rex"
)

// rewriter threads the collaborators spec.md §6 lists as external —
// the determinism oracle, the simplifier, the session, and the
// mutable allocators — through one recursive traversal. A fresh
// rewriter is created per Optimize call; it is not safe for
// concurrent reuse (spec.md §5, "single-threaded cooperative
// traversal").
type rewriter struct {
	session   *catalog.Session
	warnings  *catalog.WarningCollector
	symbols   *idalloc.SymbolAllocator
	nodeIDs   *idalloc.PlanNodeIDAllocator
	dfIDs     idalloc.DynamicFilterIDAllocator

	det  rex.DeterminismEvaluator
	simp rex.Simplifier
	null rex.NullInputEvaluator

	// currentLeftScope/currentRightScope hold the join currently being
	// rewritten's input schemas, scoped to the duration of visitJoin so
	// the dynamic-filter synthesizer it calls can classify a residual
	// range comparison's operands as probe- or build-side without
	// threading them through every intermediate call.
	currentLeftScope  rex.VarSet
	currentRightScope rex.VarSet
}

func newRewriter(session *catalog.Session, warnings *catalog.WarningCollector, symbols *idalloc.SymbolAllocator) *rewriter {
	var fc rex.FunctionCatalog
	if session != nil && session.Catalog != nil {
		fc = session.Catalog
	}
	det := rex.DeterminismEvaluator{Catalog: fc}
	simp := rex.Simplifier{Catalog: fc}
	return &rewriter{
		session: session,
		warnings: warnings,
		symbols:  symbols,
		nodeIDs:  &idalloc.PlanNodeIDAllocator{},
		dfIDs:    idalloc.DynamicFilterIDAllocator{},
		det:      det,
		simp:     simp,
		null:     rex.NullInputEvaluator{Simplifier: simp},
	}
}

func (r *rewriter) dynamicFilteringEnabled() bool {
	return r.session != nil && r.session.DynamicFilteringEnabled
}

func (r *rewriter) newEqualityInference(exprs ...rex.Expr) *rex.EqualityInference {
	b := rex.NewEqualityInferenceBuilder(r.det, r.simp)
	for _, e := range exprs {
		b.AddEqualities(rex.ExtractConjuncts(e)...)
	}
	return b.Build()
}

// combineAll is a small convenience over rex.CombineConjuncts for
// call sites threading several predicate fragments together.
func combineAll(exprs ...rex.Expr) rex.Expr {
	return rex.CombineConjuncts(exprs...)
}
