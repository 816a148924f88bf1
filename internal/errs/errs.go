// Copyright 2026 The Snowgraph Authors
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
//
// SPDX-License-Identifier: Apache-2.0

// Package errs defines the error kinds surfaced by the synchronization
// engine. Each kind wraps an underlying cause with github.com/pkg/errors so
// that errors.Cause and errors.As still reach the root driver error; the
// Kind field is what the Orchestrator and the CLI switch on.
package errs

import "github.com/pkg/errors"

// Kind enumerates the error categories named by the engine's error handling
// design.
type Kind int

const (
	// KindConfig covers config parse and validation failures.
	KindConfig Kind = iota
	// KindState covers state-store load/save failures.
	KindState
	// KindSource covers warehouse/file reader failures.
	KindSource
	// KindPlan covers query-planning failures.
	KindPlan
	// KindTransform covers row-to-payload transformation failures.
	KindTransform
	// KindSink covers graph-store write failures.
	KindSink
	// KindMetrics covers the metrics HTTP endpoint.
	KindMetrics
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "ConfigError"
	case KindState:
		return "StateError"
	case KindSource:
		return "SourceError"
	case KindPlan:
		return "PlanError"
	case KindTransform:
		return "TransformError"
	case KindSink:
		return "SinkError"
	case KindMetrics:
		return "MetricsError"
	default:
		return "UnknownError"
	}
}

// Sub-kinds for ConfigError, used by callers that need finer-grained
// handling (e.g. the CLI's exit-code logic doesn't, but tests do).
const (
	ConfigParse    = "Parse"
	ConfigValidate = "Validate"
	ConfigEnvUnset = "EnvUnset"
)

// Error is the common shape of every error kind the engine surfaces.
type Error struct {
	Kind    Kind
	Sub     string // optional sub-kind, e.g. one of the Config* constants
	cause   error
}

// New builds an Error of the given kind whose cause is a fresh error
// carrying msg.
func New(kind Kind, sub, msg string) *Error {
	return &Error{Kind: kind, Sub: sub, cause: errors.New(msg)}
}

// Wrap builds an Error of the given kind, wrapping cause with msg via
// pkg/errors so the original stack trace is preserved.
func Wrap(kind Kind, sub string, cause error, msg string) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Sub: sub, cause: errors.Wrap(cause, msg)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Sub != "" {
		return e.Kind.String() + "[" + e.Sub + "]: " + e.cause.Error()
	}
	return e.Kind.String() + ": " + e.cause.Error()
}

// Unwrap allows errors.Is/errors.As to reach the wrapped cause.
func (e *Error) Unwrap() error { return e.cause }

// Cause implements the github.com/pkg/errors causer interface.
func (e *Error) Cause() error { return e.cause }

// As reports whether err is (or wraps) an *Error of the given kind, and
// returns it if so.
func As(err error, kind Kind) (*Error, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return nil, false
	}
	if e.Kind != kind {
		return nil, false
	}
	return e, true
}
