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

package graph

import (
	"context"

	"github.com/snowgraph/snowgraph/internal/config"
	"github.com/snowgraph/snowgraph/internal/types"
)

// Sink is the Graph Sink: the component that turns batches of Payloads into
// idempotent Cypher writes against FalkorDB. Every method splits its input
// into sub-batches of at most the configured max_batch_size before issuing
// any query.
type Sink interface {
	UpsertNodes(ctx context.Context, labels []string, keyProp string, batch []types.Payload) error
	DeleteNodes(ctx context.Context, labels []string, keyProp string, batch []types.Payload) error
	UpsertEdges(ctx context.Context, from, to EndpointShape, relType, direction, edgeKeyProp string, batch []types.Payload) error
	DeleteEdges(ctx context.Context, from, to EndpointShape, relType, direction, edgeKeyProp string, batch []types.Payload) error
	PurgeAll(ctx context.Context) error
	PurgeMapping(ctx context.Context, m *config.Mapping, from, to *EndpointShape) error
	Close() error
}

// EndpointShape is the subset of a resolved edge endpoint the sink needs to
// build a MATCH pattern: labels and key property, not the source column
// (that belongs to the Transformer, not the sink).
type EndpointShape struct {
	Labels  []string
	KeyProp string
}

// splitBatches divides payloads into consecutive sub-batches of at most
// size elements. size <= 0 means no splitting.
func splitBatches(payloads []types.Payload, size int) [][]types.Payload {
	if size <= 0 || len(payloads) <= size {
		return [][]types.Payload{payloads}
	}
	var out [][]types.Payload
	for i := 0; i < len(payloads); i += size {
		end := i + size
		if end > len(payloads) {
			end = len(payloads)
		}
		out = append(out, payloads[i:end])
	}
	return out
}
