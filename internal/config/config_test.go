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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/snowgraph/snowgraph/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlDoc = `
warehouse:
  account: "$SG_ACCOUNT"
  user: svc_sync
  password: hunter2
  warehouse: WH
  database: DB
  schema: PUBLIC
graph:
  addr: localhost:6379
  graph_name: g
  max_batch_size: 500
state:
  backend: file
  path: state.json
mappings:
  - name: customers
    source:
      table: CUSTOMERS
    mode: full
    labels: [Customer]
    key:
      source_column: ID
      graph_property: id
    properties:
      name: NAME
  - name: orders
    source:
      table: ORDERS
    mode: incremental
    delta:
      updated_at_column: UPDATED_AT
    labels: [Order]
    key:
      source_column: ID
      graph_property: id
  - name: purchased
    source:
      table: ORDER_LINES
    mode: full
    relationship_type: PURCHASED
    direction: out
    from:
      node_mapping: customers
      match_on:
        - source_column: CUSTOMER_ID
          graph_property: id
    to:
      node_mapping: orders
      match_on:
        - source_column: ORDER_ID
          graph_property: id
`

const jsonDoc = `{
  "warehouse": {"account": "$SG_ACCOUNT", "user": "svc_sync", "password": "hunter2", "warehouse": "WH", "database": "DB", "schema": "PUBLIC"},
  "graph": {"addr": "localhost:6379", "graph_name": "g", "max_batch_size": 500},
  "state": {"backend": "file", "path": "state.json"},
  "mappings": [
    {"name": "customers", "source": {"table": "CUSTOMERS"}, "mode": "full", "labels": ["Customer"], "key": {"source_column": "ID", "graph_property": "id"}, "properties": {"name": "NAME"}},
    {"name": "orders", "source": {"table": "ORDERS"}, "mode": "incremental", "delta": {"updated_at_column": "UPDATED_AT"}, "labels": ["Order"], "key": {"source_column": "ID", "graph_property": "id"}},
    {"name": "purchased", "source": {"table": "ORDER_LINES"}, "mode": "full", "relationship_type": "PURCHASED", "direction": "out",
     "from": {"node_mapping": "customers", "match_on": [{"source_column": "CUSTOMER_ID", "graph_property": "id"}]},
     "to": {"node_mapping": "orders", "match_on": [{"source_column": "ORDER_ID", "graph_property": "id"}]}}
  ]
}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAMLAndJSONAgree(t *testing.T) {
	t.Setenv("SG_ACCOUNT", "acct-1")

	yamlPath := writeTemp(t, "cfg.yaml", yamlDoc)
	jsonPath := writeTemp(t, "cfg.json", jsonDoc)

	yamlCfg, err := Load(yamlPath)
	require.NoError(t, err)
	jsonCfg, err := Load(jsonPath)
	require.NoError(t, err)

	assert.Equal(t, yamlCfg.Warehouse.Account, jsonCfg.Warehouse.Account)
	require.Len(t, jsonCfg.Mappings, len(yamlCfg.Mappings))
	for i := range yamlCfg.Mappings {
		assert.Equal(t, yamlCfg.Mappings[i].Name, jsonCfg.Mappings[i].Name)
		assert.Equal(t, yamlCfg.Mappings[i].Kind, jsonCfg.Mappings[i].Kind)
	}
}

func TestLoadResolvesEnv(t *testing.T) {
	t.Setenv("SG_ACCOUNT", "resolved-account")
	path := writeTemp(t, "cfg.yaml", yamlDoc)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "resolved-account", cfg.Warehouse.Account)
}

func TestLoadFailsOnUnsetEnv(t *testing.T) {
	os.Unsetenv("SG_ACCOUNT")
	path := writeTemp(t, "cfg.yaml", yamlDoc)

	_, err := Load(path)
	require.Error(t, err)
	e, ok := errs.As(err, errs.KindConfig)
	require.True(t, ok)
	assert.Equal(t, errs.ConfigEnvUnset, e.Sub)
}

func TestEdgeMappingMustReferenceDeclaredNode(t *testing.T) {
	t.Setenv("SG_ACCOUNT", "acct-1")
	bad := `
warehouse: {account: "$SG_ACCOUNT", user: u, password: p}
graph: {addr: "localhost:6379", graph_name: g, max_batch_size: 10}
state: {backend: none}
mappings:
  - name: purchased
    source: {table: ORDER_LINES}
    mode: full
    relationship_type: PURCHASED
    direction: out
    from: {node_mapping: customers, match_on: [{source_column: CUSTOMER_ID, graph_property: id}]}
    to: {node_mapping: orders, match_on: [{source_column: ORDER_ID, graph_property: id}]}
`
	path := writeTemp(t, "bad.yaml", bad)
	_, err := Load(path)
	require.Error(t, err)
}

func TestIncrementalWithoutDeltaRejected(t *testing.T) {
	t.Setenv("SG_ACCOUNT", "acct-1")
	bad := `
warehouse: {account: "$SG_ACCOUNT", user: u, password: p}
graph: {addr: "localhost:6379", graph_name: g, max_batch_size: 10}
state: {backend: none}
mappings:
  - name: orders
    source: {table: ORDERS}
    mode: incremental
    labels: [Order]
    key: {source_column: ID, graph_property: id}
`
	path := writeTemp(t, "bad.yaml", bad)
	_, err := Load(path)
	require.Error(t, err)
}
