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

package catalog

import "fmt"

// Session is the per-optimization-call context threaded through the
// pass (spec.md §6, "Session"): a feature flag for dynamic filtering
// plus the connector-session view used for constant folding.
type Session struct {
	DynamicFilteringEnabled bool
	Catalog                 *Catalog
}

func NewSession(catalog *Catalog) *Session {
	if catalog == nil {
		catalog = New()
	}
	return &Session{DynamicFilteringEnabled: true, Catalog: catalog}
}

// WarningCollector accumulates non-fatal notices raised while
// optimizing (a join whose type was narrowed by outer-to-inner
// normalization, or a join predicate simplified to FALSE). Distinct from the fatal
// errorx errors: a warning never aborts optimization.
type WarningCollector struct {
	messages []string
}

func (w *WarningCollector) Add(format string, args ...interface{}) {
	w.messages = append(w.messages, fmt.Sprintf(format, args...))
}

func (w *WarningCollector) Messages() []string {
	return w.messages
}
