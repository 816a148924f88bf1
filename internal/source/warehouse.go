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
	"database/sql"
	"fmt"
	"time"

	"github.com/snowgraph/snowgraph/internal/errs"
	"github.com/snowgraph/snowgraph/internal/planner"
	"github.com/snowgraph/snowgraph/internal/types"

	_ "github.com/snowflakedb/gosnowflake" // registers the "snowflake" driver
)

// WarehouseReader executes generated SELECTs against a Snowflake
// connection, streaming the resulting rows while preserving column order
// and server-reported types.
type WarehouseReader struct {
	DB      *sql.DB
	Timeout time.Duration
}

var _ Reader = (*WarehouseReader)(nil)

// Open executes plan.SQL with plan.Parameters bound and returns a
// RowStream over the result set.
func (w *WarehouseReader) Open(ctx context.Context, plan planner.QueryPlan) (RowStream, error) {
	cancel := func() {}
	if w.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
	}

	rows, err := w.DB.QueryContext(ctx, plan.SQL, plan.Parameters...)
	if err != nil {
		cancel()
		return nil, errs.Wrap(errs.KindSource, "", err, "executing warehouse query")
	}

	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		cancel()
		return nil, errs.Wrap(errs.KindSource, "", err, "reading result columns")
	}

	return &sqlRowStream{rows: rows, columns: cols, cancel: cancel}, nil
}

type sqlRowStream struct {
	rows    *sql.Rows
	columns []string
	cancel  context.CancelFunc
}

var _ RowStream = (*sqlRowStream)(nil)

func (s *sqlRowStream) Next(ctx context.Context) (types.Row, bool, error) {
	if err := ctx.Err(); err != nil {
		return types.Row{}, false, errs.Wrap(errs.KindSource, "", err, "reading warehouse row")
	}
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return types.Row{}, false, errs.Wrap(errs.KindSource, "", err, "iterating warehouse rows")
		}
		return types.Row{}, false, nil
	}

	dest := make([]any, len(s.columns))
	ptrs := make([]any, len(s.columns))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	if err := s.rows.Scan(ptrs...); err != nil {
		return types.Row{}, false, errs.Wrap(errs.KindSource, "", err, "scanning warehouse row")
	}

	cells := make([]types.Cell, len(s.columns))
	for i, v := range dest {
		cells[i] = toCell(v)
	}

	return types.Row{Columns: s.columns, Cells: cells}, true, nil
}

func (s *sqlRowStream) Close() error {
	err := s.rows.Close()
	s.cancel()
	return err
}

func toCell(v any) types.Cell {
	switch t := v.(type) {
	case nil:
		return types.NullCell()
	case bool:
		return types.Cell{Kind: types.CellBool, Bool: t}
	case int64:
		return types.Cell{Kind: types.CellInt, Int: t}
	case int:
		return types.Cell{Kind: types.CellInt, Int: int64(t)}
	case float64:
		return types.Cell{Kind: types.CellFloat, Float: t}
	case []byte:
		return types.Cell{Kind: types.CellString, Str: string(t)}
	case string:
		return types.Cell{Kind: types.CellString, Str: t}
	case time.Time:
		return types.Cell{Kind: types.CellTime, Time: t}
	default:
		return types.Cell{Kind: types.CellString, Str: fmt.Sprint(v)}
	}
}
