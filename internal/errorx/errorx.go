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

// Package errorx defines the typed error returned by package pushdown
// when a plan or predicate it is given violates one of the contracts
// listed in spec.md §6 ("External interfaces"). Every such violation
// is a programming-contract failure, not a recoverable runtime
// condition, so the pass raises it as a panic internally and converts
// it to one of these codes only at the Optimize entry point.
package errorx

type ErrorCode int

const (
	GeneralErr ErrorCode = 1001

	// ScopeViolation is raised when a rewritten predicate still
	// references a variable outside the scope it was pushed into —
	// the equality-inference rewrite could not fully relocate it.
	ScopeViolation ErrorCode = 2101

	// ShapeViolation is the code for a plan node whose children or
	// assignments don't satisfy the invariant the corresponding rule
	// assumes. No code path in package pushdown raises it: a
	// plan.WithChild call on a node without exactly one child panics
	// with a plain message that Optimize returns as GeneralErr.
	ShapeViolation ErrorCode = 2102

	// UnsupportedVariant is raised when the pass is asked to rewrite a
	// plan node variant it has no rule for.
	UnsupportedVariant ErrorCode = 2103
)

type Error struct {
	msg  string
	code ErrorCode
}

func New(message string) *Error {
	return &Error{msg: message, code: GeneralErr}
}

func NewWithCode(code ErrorCode, message string) *Error {
	return &Error{msg: message, code: code}
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Code() ErrorCode {
	return e.code
}

type ErrorWithCode interface {
	Error() string
	Code() ErrorCode
}

func IsScopeViolation(err error) bool {
	withCode, ok := err.(ErrorWithCode)
	return ok && withCode.Code() == ScopeViolation
}

func IsShapeViolation(err error) bool {
	withCode, ok := err.(ErrorWithCode)
	return ok && withCode.Code() == ShapeViolation
}
