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

// Package idalloc provides the identifier allocator collaborator
// described in spec.md §6 ("Identifier allocator"): fresh symbol
// names for join equi-clause keys that aren't already bare variables,
// monotonic plan node ids, and opaque dynamic-filter ids.
package idalloc

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/shobhitham/hetu-core/pkg/rex"
)

// SymbolAllocator hands out variables that don't collide with any
// name already in use in the plan being rewritten. Each instance is
// scoped to a single Optimize call; it is not safe for concurrent use,
// matching the single-threaded-per-subtree rewrite pass it backs.
type SymbolAllocator struct {
	used map[string]bool
	next int
}

func NewSymbolAllocator(existing rex.VarSet) *SymbolAllocator {
	used := make(map[string]bool, len(existing))
	for n := range existing {
		used[n] = true
	}
	return &SymbolAllocator{used: used}
}

// NewSymbol returns a fresh variable of the given type, derived from
// hint (e.g. the join key expression's textual form) for readability,
// falling back to a numbered "$expr" name if hint collides.
func (a *SymbolAllocator) NewSymbol(hint string, typ rex.Type) *rex.Variable {
	candidate := hint
	if candidate == "" || a.used[candidate] {
		for {
			candidate = fmt.Sprintf("$expr_%d", a.next)
			a.next++
			if !a.used[candidate] {
				break
			}
		}
	}
	a.used[candidate] = true
	return &rex.Variable{Name: candidate, Typ: typ}
}

// PlanNodeIDAllocator hands out monotonically increasing plan node
// ids, used when a rule splits one node into several (e.g. inserting
// a Project below a Join to hold a fresh equi-clause key).
type PlanNodeIDAllocator struct {
	counter int64
}

func (a *PlanNodeIDAllocator) Next() string {
	n := atomic.AddInt64(&a.counter, 1)
	return fmt.Sprintf("pn-%d", n)
}

// DynamicFilterIDAllocator hands out opaque identifiers for dynamic
// filters (spec.md §9, "dynamic filter identifiers are opaque
// strings"). Backed by uuid rather than a counter so ids stay unique
// across independent Optimize calls sharing no allocator state.
type DynamicFilterIDAllocator struct{}

func (DynamicFilterIDAllocator) Next() string {
	return uuid.NewString()
}
