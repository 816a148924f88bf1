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

package transform

import (
	"testing"

	"github.com/snowgraph/snowgraph/internal/config"
	"github.com/snowgraph/snowgraph/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strCell(s string) types.Cell { return types.Cell{Kind: types.CellString, Str: s} }
func intCell(i int64) types.Cell  { return types.Cell{Kind: types.CellInt, Int: i} }
func boolCell(b bool) types.Cell  { return types.Cell{Kind: types.CellBool, Bool: b} }

func customerMapping() *config.Mapping {
	return &config.Mapping{
		Name:   "customers",
		Kind:   config.KindNode,
		Labels: []string{"Customer"},
		Key:    &config.KeyDescriptor{SourceColumn: "ID", GraphProperty: "id"},
		Properties: map[string]string{
			"name": "NAME",
		},
	}
}

func TestTransformNodeUpsert(t *testing.T) {
	m := customerMapping()
	row := types.Row{Columns: []string{"ID", "NAME"}, Cells: []types.Cell{intCell(1), strCell("Ada")}}

	res, err := Transform(m, row, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Payload)
	assert.Equal(t, types.PayloadNodeUpsert, res.Payload.Kind)
	assert.Equal(t, int64(1), res.Payload.Node.KeyValue)
	assert.Equal(t, "Ada", res.Payload.Props["name"])
}

func TestTransformDropsNullKey(t *testing.T) {
	m := customerMapping()
	row := types.Row{Columns: []string{"ID", "NAME"}, Cells: []types.Cell{types.NullCell(), strCell("Ada")}}

	res, err := Transform(m, row, nil)
	require.NoError(t, err)
	assert.True(t, res.Dropped)
	assert.Nil(t, res.Payload)
}

func TestTransformDeleteOnFlag(t *testing.T) {
	m := customerMapping()
	m.Delta = &config.Delta{DeletedFlagColumn: "DELETED", DeletedFlagValue: "true"}
	row := types.Row{
		Columns: []string{"ID", "NAME", "DELETED"},
		Cells:   []types.Cell{intCell(1), strCell("Ada"), boolCell(true)},
	}

	res, err := Transform(m, row, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Payload)
	assert.Equal(t, types.PayloadNodeDelete, res.Payload.Kind)
}

func TestTransformEdgeResolvesEndpoints(t *testing.T) {
	cfg := &config.Config{
		Mappings: []config.Mapping{
			{Name: "customers", Kind: config.KindNode, Labels: []string{"Customer"},
				Key: &config.KeyDescriptor{SourceColumn: "ID", GraphProperty: "id"}},
			{Name: "orders", Kind: config.KindNode, Labels: []string{"Order"},
				Key: &config.KeyDescriptor{SourceColumn: "ID", GraphProperty: "id"}},
			{
				Name: "purchased", Kind: config.KindEdge,
				RelationshipType: "PURCHASED", Direction: "out",
				From: &config.Endpoint{NodeMapping: "customers", MatchOn: []config.KeyDescriptor{{SourceColumn: "CUSTOMER_ID", GraphProperty: "id"}}},
				To:   &config.Endpoint{NodeMapping: "orders", MatchOn: []config.KeyDescriptor{{SourceColumn: "ORDER_ID", GraphProperty: "id"}}},
			},
		},
	}
	edgeMapping := &cfg.Mappings[2]
	edgeCtx, err := ResolveEdgeContext(cfg, edgeMapping)
	require.NoError(t, err)

	row := types.Row{Columns: []string{"CUSTOMER_ID", "ORDER_ID"}, Cells: []types.Cell{intCell(1), intCell(10)}}
	res, err := Transform(edgeMapping, row, edgeCtx)
	require.NoError(t, err)
	require.NotNil(t, res.Payload)
	assert.Equal(t, types.PayloadEdgeUpsert, res.Payload.Kind)
	assert.Equal(t, []string{"Customer"}, res.Payload.Edge.From.Labels)
	assert.Equal(t, int64(1), res.Payload.Edge.From.KeyValue)
	assert.Equal(t, []string{"Order"}, res.Payload.Edge.To.Labels)
	assert.Equal(t, int64(10), res.Payload.Edge.To.KeyValue)
}

func TestRenderForComparisonPreservesEmptyString(t *testing.T) {
	assert.Equal(t, "", renderForComparison(strCell("")))
}
