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

package planner

import (
	"testing"

	"github.com/snowgraph/snowgraph/internal/config"
	"github.com/snowgraph/snowgraph/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func incrementalMapping() *config.Mapping {
	m := &config.Mapping{
		Name:   "orders",
		Source: config.Source{Table: "ORDERS", WhereClause: "REGION = 'US'"},
		Mode:   "incremental",
		Delta:  &config.Delta{UpdatedAtColumn: "UPDATED_AT"},
		Labels: []string{"Order"},
		Key:    &config.KeyDescriptor{SourceColumn: "ID", GraphProperty: "id"},
	}
	return m
}

func TestPlannerWatermarkPredicate(t *testing.T) {
	m := incrementalMapping()
	ts := "2024-01-01T00:00:00Z"
	prior := &types.WatermarkRecord{LastUpdatedAt: &ts, InitialFullLoadDone: true}

	plan, err := Plan(m, prior)
	require.NoError(t, err)

	assert.Contains(t, plan.SQL, "WHERE (REGION = 'US') AND UPDATED_AT > ?")
	require.Len(t, plan.Parameters, 1)
	assert.Equal(t, ts, plan.Parameters[0])
	assert.Equal(t, types.ModeIncremental, plan.Mode)
}

func TestPlannerFirstRunFullLoadOmitsPredicate(t *testing.T) {
	m := incrementalMapping()
	m.Delta.InitialFullLoad = true

	ts := "2024-01-01T00:00:00Z"
	prior := &types.WatermarkRecord{LastUpdatedAt: &ts, InitialFullLoadDone: false}

	plan, err := Plan(m, prior)
	require.NoError(t, err)
	assert.NotContains(t, plan.SQL, "UPDATED_AT >")
	assert.Equal(t, types.ModeFull, plan.Mode)

	prior.InitialFullLoadDone = true
	plan2, err := Plan(m, prior)
	require.NoError(t, err)
	assert.Contains(t, plan2.SQL, "UPDATED_AT > ?")
	assert.Equal(t, types.ModeIncremental, plan2.Mode)
}

func TestPlannerRawSelectPassesThrough(t *testing.T) {
	m := &config.Mapping{
		Name:   "custom",
		Source: config.Source{RawSelect: "SELECT * FROM WHATEVER"},
		Mode:   "incremental",
		Delta:  &config.Delta{UpdatedAtColumn: "TS"},
	}
	plan, err := Plan(m, nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM WHATEVER", plan.SQL)
	assert.Empty(t, plan.Parameters)
	assert.Equal(t, "TS", plan.UpdatedAtColumn)
}

func TestPlannerProjectionIsDeterministic(t *testing.T) {
	m := &config.Mapping{
		Name:   "customers",
		Source: config.Source{Table: "CUSTOMERS"},
		Mode:   "full",
		Labels: []string{"Customer"},
		Key:    &config.KeyDescriptor{SourceColumn: "ID", GraphProperty: "id"},
		Properties: map[string]string{
			"name":  "NAME",
			"email": "EMAIL",
		},
	}
	plan1, err := Plan(m, nil)
	require.NoError(t, err)
	plan2, err := Plan(m, nil)
	require.NoError(t, err)
	assert.Equal(t, plan1.SQL, plan2.SQL)
	assert.Contains(t, plan1.SQL, "SELECT ID, EMAIL, NAME FROM CUSTOMERS")
}
