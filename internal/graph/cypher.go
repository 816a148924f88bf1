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

// Package graph implements the Graph Sink: batched, parameterized
// MERGE/DELETE statements against a FalkorDB graph, plus purge operations.
package graph

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/snowgraph/snowgraph/internal/types"
)

// labelPattern renders a label list as ":L1:L2:...".
func labelPattern(labels []string) string {
	return ":" + strings.Join(labels, ":")
}

// nodeUpsertCypher builds the statement of the shape:
// UNWIND $rows AS r MERGE (n:L1:L2 {key:r.key}) SET n += r.props
func nodeUpsertCypher(labels []string, keyProp string) string {
	return fmt.Sprintf(
		"UNWIND $rows AS r MERGE (n%s {%s:r.key}) SET n += r.props",
		labelPattern(labels), backtick(keyProp),
	)
}

// nodeDeleteCypher builds: UNWIND $ids AS i MATCH (n:L {key:i}) DETACH DELETE n
func nodeDeleteCypher(labels []string, keyProp string) string {
	return fmt.Sprintf(
		"UNWIND $ids AS i MATCH (n%s {%s:i}) DETACH DELETE n",
		labelPattern(labels), backtick(keyProp),
	)
}

// edgeUpsertCypher builds the MATCH/MATCH/MERGE statement for an edge
// batch. The MERGE pattern includes the edge key property when one is
// configured, making the edge unique per key value.
func edgeUpsertCypher(fromLabels []string, fromKeyProp string, toLabels []string, toKeyProp, relType, direction, edgeKeyProp string) string {
	relPattern := ":" + relType
	if edgeKeyProp != "" {
		relPattern += fmt.Sprintf(" {%s:r.edgeKey}", backtick(edgeKeyProp))
	}

	arrow := fmt.Sprintf("(a)-[e%s]->(b)", relPattern)
	if direction == "in" {
		arrow = fmt.Sprintf("(a)<-[e%s]-(b)", relPattern)
	}

	return fmt.Sprintf(
		"UNWIND $rows AS r MATCH (a%s {%s:r.from}) MATCH (b%s {%s:r.to}) MERGE %s SET e += r.props",
		labelPattern(fromLabels), backtick(fromKeyProp),
		labelPattern(toLabels), backtick(toKeyProp),
		arrow,
	)
}

// edgeDeleteCypher builds the analogous MATCH/MATCH/MATCH-rel/DELETE
// statement for an edge delete batch.
func edgeDeleteCypher(fromLabels []string, fromKeyProp string, toLabels []string, toKeyProp, relType, direction, edgeKeyProp string) string {
	relPattern := ":" + relType
	if edgeKeyProp != "" {
		relPattern += fmt.Sprintf(" {%s:r.edgeKey}", backtick(edgeKeyProp))
	}

	arrow := fmt.Sprintf("(a)-[e%s]->(b)", relPattern)
	if direction == "in" {
		arrow = fmt.Sprintf("(a)<-[e%s]-(b)", relPattern)
	}

	return fmt.Sprintf(
		"UNWIND $rows AS r MATCH (a%s {%s:r.from}) MATCH (b%s {%s:r.to}) MATCH %s DELETE e",
		labelPattern(fromLabels), backtick(fromKeyProp),
		labelPattern(toLabels), backtick(toKeyProp),
		arrow,
	)
}

const purgeAllCypher = "MATCH (n) DETACH DELETE n"

func purgeNodeLabelsCypher(labels []string) string {
	return fmt.Sprintf("MATCH (n%s) DETACH DELETE n", labelPattern(labels))
}

func purgeEdgeTypeCypher(fromLabels []string, toLabels []string, relType, direction string) string {
	arrow := fmt.Sprintf("(a%s)-[e:%s]->(b%s)", labelPattern(fromLabels), relType, labelPattern(toLabels))
	if direction == "in" {
		arrow = fmt.Sprintf("(a%s)<-[e:%s]-(b%s)", labelPattern(fromLabels), relType, labelPattern(toLabels))
	}
	return fmt.Sprintf("MATCH %s DELETE e", arrow)
}

// backtick wraps an identifier in backticks, FalkorDB's quoting syntax for
// property names that aren't valid bare identifiers. Identifiers come from
// trusted config, never from row data.
func backtick(ident string) string {
	return "`" + ident + "`"
}

// withParams renders a `CYPHER k=literal ...` parameter prefix ahead of
// query, FalkorDB's mechanism for binding values (including array/map
// literals) without string-interpolating them into the query body.
func withParams(query string, params map[string]any) string {
	if len(params) == 0 {
		return query
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("CYPHER ")
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(encodeLiteral(params[k]))
		b.WriteString(" ")
	}
	b.WriteString(query)
	return b.String()
}

func encodeLiteral(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(t)
	case string:
		return quoteString(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = encodeLiteral(e)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ":" + encodeLiteral(t[k])
		}
		return "{" + strings.Join(parts, ",") + "}"
	default:
		return quoteString(fmt.Sprint(t))
	}
}

func quoteString(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + replacer.Replace(s) + `"`
}

// nodeUpsertRows renders a batch of node-upsert payloads as the $rows
// array literal: [{key:..., props:{...}}, ...].
func nodeUpsertRows(batch []types.Payload) []any {
	rows := make([]any, len(batch))
	for i, p := range batch {
		rows[i] = map[string]any{"key": p.Node.KeyValue, "props": p.Props}
	}
	return rows
}

func nodeDeleteIDs(batch []types.Payload) []any {
	ids := make([]any, len(batch))
	for i, p := range batch {
		ids[i] = p.Node.KeyValue
	}
	return ids
}

func edgeUpsertRows(batch []types.Payload) []any {
	rows := make([]any, len(batch))
	for i, p := range batch {
		row := map[string]any{"from": p.Edge.From.KeyValue, "to": p.Edge.To.KeyValue, "props": p.Props}
		if p.Edge.KeyProp != "" {
			row["edgeKey"] = p.Edge.KeyValue
		}
		rows[i] = row
	}
	return rows
}

func edgeDeleteRows(batch []types.Payload) []any {
	rows := make([]any, len(batch))
	for i, p := range batch {
		row := map[string]any{"from": p.Edge.From.KeyValue, "to": p.Edge.To.KeyValue}
		if p.Edge.KeyProp != "" {
			row["edgeKey"] = p.Edge.KeyValue
		}
		rows[i] = row
	}
	return rows
}
