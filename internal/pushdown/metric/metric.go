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

// Package metric registers the pushdown pass's prometheus counters,
// grounded on the collector shapes in internal/topo/node/metric.
package metric

import "github.com/prometheus/client_golang/prometheus"

var (
	// ConjunctsPushed counts conjuncts relocated below the node they
	// were inherited at, labeled by the operator that did the moving.
	ConjunctsPushed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hetu_pushdown_conjuncts_pushed_total",
		Help: "Number of predicate conjuncts relocated below an operator by the pushdown pass.",
	}, []string{"operator"})

	// JoinsNormalized counts outer-to-inner join promotions, labeled
	// by the transition (e.g. "LEFT->INNER").
	JoinsNormalized = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hetu_pushdown_joins_normalized_total",
		Help: "Number of outer joins the pass promoted to a narrower join type.",
	}, []string{"transition"})

	// DynamicFiltersSynthesized counts dynamic-filter predicates
	// emitted at hash-join probe sites, labeled by whether the filter
	// came from an equi-clause or a residual range comparison. Dynamic
	// filters synthesized for a SemiJoin are not counted.
	DynamicFiltersSynthesized = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hetu_pushdown_dynamic_filters_total",
		Help: "Number of dynamic-filter predicates synthesized by the pass.",
	}, []string{"source"})

	// OptimizeDuration observes wall-clock time per Optimize call.
	OptimizeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "hetu_pushdown_optimize_duration_seconds",
		Help:    "Time spent in one Optimize call.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(ConjunctsPushed, JoinsNormalized, DynamicFiltersSynthesized, OptimizeDuration)
}
