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
	"fmt"

	"github.com/shobhitham/hetu-core/internal/errorx"
)

// Every programming-contract violation (spec.md §7) is raised as a
// panic carrying *errorx.Error and recovered once, at Optimize's top
// level. Internal rule code never checks for or handles these itself;
// that would scatter error plumbing through every rule arm for
// conditions that, by construction, never happen on a well-formed
// input plan.

func scopeViolation(format string, args ...interface{}) {
	panic(errorx.NewWithCode(errorx.ScopeViolation, fmt.Sprintf(format, args...)))
}

func shapeViolation(format string, args ...interface{}) {
	panic(errorx.NewWithCode(errorx.ShapeViolation, fmt.Sprintf(format, args...)))
}

func unsupportedVariant(format string, args ...interface{}) {
	panic(errorx.NewWithCode(errorx.UnsupportedVariant, fmt.Sprintf(format, args...)))
}

// recoverAsError turns a panicked *errorx.Error (or any other panic
// value, wrapped generically) into a returned error. Deferred exactly
// once, by Optimize.
func recoverAsError(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(*errorx.Error); ok {
		*err = e
		return
	}
	*err = errorx.New(fmt.Sprintf("pushdown: %v", r))
}
