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

package source

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/snowgraph/snowgraph/internal/errs"
	"github.com/snowgraph/snowgraph/internal/planner"
	"github.com/snowgraph/snowgraph/internal/types"
)

// FileReader reads a JSON array of objects from disk and yields each object
// as a Row. It exists primarily for deterministic testing and bootstrap;
// plan.SQL is ignored entirely.
type FileReader struct {
	// Path, if non-empty, overrides plan.FilePath. Left empty in normal
	// operation, where each plan names its own file.
	Path string
}

var _ Reader = (*FileReader)(nil)

// Open reads and parses the plan's file. The whole file is decoded up
// front; the returned RowStream walks the decoded slice lazily.
func (f *FileReader) Open(ctx context.Context, plan planner.QueryPlan) (RowStream, error) {
	path := f.Path
	if path == "" {
		path = plan.FilePath
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindSource, "", err, "reading file source")
	}

	var objs []map[string]any
	if err := json.Unmarshal(raw, &objs); err != nil {
		return nil, errs.Wrap(errs.KindSource, "", err, "decoding file source as a JSON array of objects")
	}

	rows := make([]types.Row, 0, len(objs))
	for _, obj := range objs {
		rows = append(rows, objectToRow(obj))
	}

	return &sliceRowStream{rows: rows}, nil
}

// objectToRow converts a decoded JSON object into a Row. Column order is
// the object's keys in sorted order, since encoding/json discards the
// original key order of a map.
func objectToRow(obj map[string]any) types.Row {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cells := make([]types.Cell, len(keys))
	for i, k := range keys {
		cells[i] = jsonValueToCell(obj[k])
	}
	return types.Row{Columns: keys, Cells: cells}
}

func jsonValueToCell(v any) types.Cell {
	switch t := v.(type) {
	case nil:
		return types.NullCell()
	case bool:
		return types.Cell{Kind: types.CellBool, Bool: t}
	case float64:
		if t == float64(int64(t)) {
			return types.Cell{Kind: types.CellInt, Int: int64(t)}
		}
		return types.Cell{Kind: types.CellFloat, Float: t}
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return types.Cell{Kind: types.CellTime, Time: ts}
		}
		return types.Cell{Kind: types.CellString, Str: t}
	default:
		return types.Cell{Kind: types.CellString, Str: ""}
	}
}

type sliceRowStream struct {
	rows []types.Row
	pos  int
}

var _ RowStream = (*sliceRowStream)(nil)

func (s *sliceRowStream) Next(ctx context.Context) (types.Row, bool, error) {
	if err := ctx.Err(); err != nil {
		return types.Row{}, false, errs.Wrap(errs.KindSource, "", err, "reading file source")
	}
	if s.pos >= len(s.rows) {
		return types.Row{}, false, nil
	}
	row := s.rows[s.pos]
	s.pos++
	return row, true, nil
}

func (s *sliceRowStream) Close() error { return nil }
