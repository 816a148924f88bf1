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

// Package msort contains utility functions for de-duplicating batches of
// graph payloads before they are submitted to the sink.
package msort

import (
	"fmt"

	"github.com/snowgraph/snowgraph/internal/types"
)

// payloadKey returns a comparable identity for a Payload: for nodes, the
// label set plus key value; for edges, the relationship type plus both
// endpoint key values (and the edge key, if configured).
func payloadKey(p types.Payload) string {
	switch p.Kind {
	case types.PayloadNodeUpsert, types.PayloadNodeDelete:
		return "n|" + joinLabels(p.Node.Labels) + "|" + toString(p.Node.KeyValue)
	default:
		k := "e|" + p.Edge.RelType + "|" + toString(p.Edge.From.KeyValue) + "|" + toString(p.Edge.To.KeyValue)
		if p.Edge.KeyProp != "" {
			k += "|" + toString(p.Edge.KeyValue)
		}
		return k
	}
}

// UniqueByKey implements a "last one wins" de-duplication of payloads with
// the same identity. If two payloads share a key, the later one in the
// input slice (the one observed later in the row stream) is kept. The
// modified slice is returned.
func UniqueByKey(x []types.Payload) []types.Payload {
	seenIdx := make(map[string]int, len(x))

	dest := len(x)
	for src := len(x) - 1; src >= 0; src-- {
		key := payloadKey(x[src])
		if _, found := seenIdx[key]; found {
			// x[src] occurs earlier in the stream than the occurrence
			// already kept for this key; drop it.
			continue
		}
		dest--
		seenIdx[key] = dest
		x[dest] = x[src]
	}

	return x[dest:]
}

func joinLabels(labels []string) string {
	out := ""
	for i, l := range labels {
		if i > 0 {
			out += ":"
		}
		out += l
	}
	return out
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprint(v)
}
