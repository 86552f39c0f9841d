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

package pushdown

import (
	"time"

	"github.com/shobhitham/hetu-core/internal/idalloc"
	"github.com/shobhitham/hetu-core/internal/pushdown/metric"
	"github.com/shobhitham/hetu-core/pkg/catalog"
	"github.com/shobhitham/hetu-core/pkg/hlog"
	"github.com/shobhitham/hetu-core/pkg/plan"
	"github.com/shobhitham/hetu-core/pkg/rex"
)

// Optimize is the pass's single public entry point (spec.md §1): one
// bottom-up traversal of root, starting with TRUE as the predicate
// inherited from above, returning the rewritten tree.
//
// A panic raised anywhere during the traversal for a programming-
// contract violation (spec.md §7 — a scope, shape, or unsupported-
// variant error) is recovered here and returned as err instead of
// propagating, so a single malformed subtree can't take down the
// caller's whole planning pipeline.
func Optimize(root plan.Node, session *catalog.Session, warnings *catalog.WarningCollector) (out plan.Node, err error) {
	defer recoverAsError(&err)
	start := time.Now()
	defer func() { metric.OptimizeDuration.Observe(time.Since(start).Seconds()) }()

	if warnings == nil {
		warnings = &catalog.WarningCollector{}
	}
	symbols := idalloc.NewSymbolAllocator(collectAllSymbols(root))
	r := newRewriter(session, warnings, symbols)

	hlog.Log.Debugf("pushdown: starting traversal at root %s", root.ID())
	rewritten := r.Visit(root, rex.True)
	hlog.Log.Debugf("pushdown: traversal complete, root is now %s", rewritten.ID())
	return rewritten, nil
}

// collectAllSymbols walks the whole tree to seed the symbol allocator
// with every name already in use, so a freshly minted equi-clause key
// can never collide with an existing column.
func collectAllSymbols(n plan.Node) rex.VarSet {
	set := rex.VarSet{}
	var walk func(plan.Node)
	walk = func(n plan.Node) {
		if n == nil {
			return
		}
		for _, s := range n.Output() {
			set[s.Name] = s
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(n)
	return set
}
