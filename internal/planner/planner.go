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

// Package planner turns a mapping plus prior watermark state into the SQL
// text and bound parameters for one run, and decides whether that run is a
// full or incremental load.
package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/snowgraph/snowgraph/internal/config"
	"github.com/snowgraph/snowgraph/internal/errs"
	"github.com/snowgraph/snowgraph/internal/types"
)

// QueryPlan is the output of planning one mapping run.
type QueryPlan struct {
	SQL        string
	Parameters []any
	Mode       types.RunMode
	// FilePath is set instead of SQL for file-sourced mappings; the reader
	// routes such plans to the file reader.
	FilePath string
	// UpdatedAtColumn is passed through so the Transformer knows which
	// column to read to compute the new watermark. Empty when the mapping
	// carries no delta block; a raw_select mapping without
	// delta.updated_at_column never advances its watermark.
	UpdatedAtColumn string
}

// Plan produces the QueryPlan for m given its current watermark record (nil
// if the mapping has never completed a run).
func Plan(m *config.Mapping, prior *types.WatermarkRecord) (QueryPlan, error) {
	mode := runMode(m, prior)

	updatedAt := ""
	if m.Delta != nil {
		updatedAt = m.Delta.UpdatedAtColumn
	}

	if m.Source.RawSelect != "" {
		return QueryPlan{
			SQL:             m.Source.RawSelect,
			Parameters:      nil,
			Mode:            mode,
			UpdatedAtColumn: updatedAt,
		}, nil
	}

	if m.Source.FilePath != "" {
		// File rows are read whole and no watermark predicate applies: every
		// row in the file is transformed and written on every run. The
		// watermark still advances from the rows' updated_at values.
		return QueryPlan{
			FilePath:        m.Source.FilePath,
			Mode:            mode,
			UpdatedAtColumn: updatedAt,
		}, nil
	}

	if m.Source.Table == "" {
		return QueryPlan{}, errs.Wrap(errs.KindPlan, "", errors.Errorf("mapping %q has no table, raw_select, or file_path", m.Name), "planning query")
	}

	projection := projectionColumns(m)
	sql := fmt.Sprintf("SELECT %s FROM %s", strings.Join(projection, ", "), m.Source.Table)

	var predicates []string
	var params []any

	if m.Source.WhereClause != "" {
		predicates = append(predicates, "("+m.Source.WhereClause+")")
	}

	useWatermark := mode == types.ModeIncremental &&
		prior != nil && prior.LastUpdatedAt != nil &&
		m.Delta != nil && m.Delta.UpdatedAtColumn != ""

	if useWatermark {
		predicates = append(predicates, fmt.Sprintf("%s > ?", m.Delta.UpdatedAtColumn))
		params = append(params, *prior.LastUpdatedAt)
	}

	if len(predicates) > 0 {
		sql += " WHERE " + strings.Join(predicates, " AND ")
	}

	return QueryPlan{
		SQL:             sql,
		Parameters:      params,
		Mode:            mode,
		UpdatedAtColumn: updatedAt,
	}, nil
}

// runMode decides full vs. incremental: full if configured so, or if
// initial_full_load is requested and not yet done; incremental otherwise.
func runMode(m *config.Mapping, prior *types.WatermarkRecord) types.RunMode {
	if m.Mode == "full" {
		return types.ModeFull
	}
	if m.Delta != nil && m.Delta.InitialFullLoad {
		done := prior != nil && prior.InitialFullLoadDone
		if !done {
			return types.ModeFull
		}
	}
	return types.ModeIncremental
}

// projectionColumns de-duplicates every column referenced by key,
// properties, endpoint match_on, delta.updated_at_column, and
// delta.deleted_flag_column: key (or match_on and edge key) columns first
// in declaration order, then property columns in sorted graph-property
// order, then the delta columns.
func projectionColumns(m *config.Mapping) []string {
	seen := map[string]bool{}
	var cols []string
	add := func(c string) {
		if c == "" || seen[c] {
			return
		}
		seen[c] = true
		cols = append(cols, c)
	}

	if m.IsNode() {
		if m.Key != nil {
			add(m.Key.SourceColumn)
		}
		// Properties is a map; iterate in sorted key order for
		// deterministic output even though map iteration is unordered.
		keys := make([]string, 0, len(m.Properties))
		for k := range m.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			add(m.Properties[k])
		}
	} else {
		if m.From != nil {
			for _, p := range m.From.MatchOn {
				add(p.SourceColumn)
			}
		}
		if m.To != nil {
			for _, p := range m.To.MatchOn {
				add(p.SourceColumn)
			}
		}
		if m.EdgeKey != nil {
			add(m.EdgeKey.SourceColumn)
		}
		keys := make([]string, 0, len(m.EdgeProperties))
		for k := range m.EdgeProperties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			add(m.EdgeProperties[k])
		}
	}

	if m.Delta != nil {
		add(m.Delta.UpdatedAtColumn)
		add(m.Delta.DeletedFlagColumn)
	}

	return cols
}
