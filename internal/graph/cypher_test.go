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
	"testing"

	"github.com/snowgraph/snowgraph/internal/config"
	"github.com/snowgraph/snowgraph/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeUpsertCypherShape(t *testing.T) {
	q := nodeUpsertCypher([]string{"Customer"}, "id")
	assert.Equal(t, "UNWIND $rows AS r MERGE (n:Customer {`id`:r.key}) SET n += r.props", q)
}

func TestEdgeUpsertCypherDirection(t *testing.T) {
	out := edgeUpsertCypher([]string{"Customer"}, "id", []string{"Order"}, "order_id", "PLACED", "out", "")
	assert.Contains(t, out, "(a)-[e:PLACED]->(b)")

	in := edgeUpsertCypher([]string{"Customer"}, "id", []string{"Order"}, "order_id", "PLACED", "in", "line_no")
	assert.Contains(t, in, "(a)<-[e:PLACED {`line_no`:r.edgeKey}]-(b)")
}

func TestSplitBatches(t *testing.T) {
	payloads := make([]types.Payload, 5)
	batches := splitBatches(payloads, 2)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 2)
	assert.Len(t, batches[2], 1)

	assert.Len(t, splitBatches(payloads, 0), 1)
	assert.Len(t, splitBatches(payloads, 100), 1)
}

func TestWithParamsEncodesArrayOfMaps(t *testing.T) {
	q := withParams("UNWIND $rows AS r RETURN r", map[string]any{
		"rows": []any{
			map[string]any{"key": "a", "props": map[string]any{"n": int64(1)}},
		},
	})
	assert.Equal(t, `CYPHER rows=[{key:"a",props:{n:1}}] UNWIND $rows AS r RETURN r`, q)
}

type noopSink struct{ calls int }

var _ Sink = (*noopSink)(nil)

func (s *noopSink) UpsertNodes(context.Context, []string, string, []types.Payload) error {
	s.calls++
	return nil
}
func (s *noopSink) DeleteNodes(context.Context, []string, string, []types.Payload) error {
	s.calls++
	return nil
}
func (s *noopSink) UpsertEdges(context.Context, EndpointShape, EndpointShape, string, string, string, []types.Payload) error {
	s.calls++
	return nil
}
func (s *noopSink) DeleteEdges(context.Context, EndpointShape, EndpointShape, string, string, string, []types.Payload) error {
	s.calls++
	return nil
}
func (s *noopSink) PurgeAll(context.Context) error { s.calls++; return nil }
func (s *noopSink) PurgeMapping(context.Context, *config.Mapping, *EndpointShape, *EndpointShape) error {
	s.calls++
	return nil
}
func (s *noopSink) Close() error { return nil }

func TestWithChaosIdentityWhenDisabled(t *testing.T) {
	delegate := &noopSink{}
	got, ok := WithChaos(delegate, 0).(*noopSink)
	require.True(t, ok)
	assert.Same(t, delegate, got)
}

func TestWithChaosInjectsErrorsOnEveryMethod(t *testing.T) {
	delegate := &noopSink{}
	sink := WithChaos(delegate, 1.0)
	ctx := context.Background()

	assert.ErrorIs(t, sink.UpsertNodes(ctx, nil, "", nil), ErrChaos)
	assert.ErrorIs(t, sink.DeleteNodes(ctx, nil, "", nil), ErrChaos)
	assert.ErrorIs(t, sink.UpsertEdges(ctx, EndpointShape{}, EndpointShape{}, "", "", "", nil), ErrChaos)
	assert.ErrorIs(t, sink.DeleteEdges(ctx, EndpointShape{}, EndpointShape{}, "", "", "", nil), ErrChaos)
	assert.ErrorIs(t, sink.PurgeAll(ctx), ErrChaos)
	assert.ErrorIs(t, sink.PurgeMapping(ctx, &config.Mapping{}, nil, nil), ErrChaos)
	assert.Equal(t, 0, delegate.calls, "no call should have reached the delegate at prob=1.0")
}

func TestNodeUpsertRowsPreservesKeyAndProps(t *testing.T) {
	batch := []types.Payload{
		{Kind: types.PayloadNodeUpsert, Node: types.NodeRef{KeyValue: "c1"}, Props: map[string]any{"name": "Ada"}},
	}
	rows := nodeUpsertRows(batch)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, "c1", row["key"])
	assert.Equal(t, map[string]any{"name": "Ada"}, row["props"])
}
