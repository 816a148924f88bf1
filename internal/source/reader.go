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

// Package source provides a uniform adapter over the warehouse and file
// row sources: open(plan) -> RowStream, where a RowStream yields a lazy,
// finite sequence of Rows and a terminal status.
package source

import (
	"context"

	"github.com/snowgraph/snowgraph/internal/errs"
	"github.com/snowgraph/snowgraph/internal/planner"
	"github.com/snowgraph/snowgraph/internal/types"
)

// RowStream is a lazy, finite sequence of Rows.
type RowStream interface {
	// Next advances the stream. ok is false once the stream is exhausted;
	// callers must still check err in that case.
	Next(ctx context.Context) (row types.Row, ok bool, err error)
	// Close releases any resources held by the stream.
	Close() error
}

// Reader executes a generated query plan and streams the resulting rows.
type Reader interface {
	Open(ctx context.Context, plan planner.QueryPlan) (RowStream, error)
}

// Dispatch returns a Reader that routes file-sourced plans to a FileReader
// and everything else to warehouse. warehouse may be nil when every
// configured mapping is file-sourced; opening a warehouse plan then fails.
func Dispatch(warehouse Reader) Reader {
	return &dispatchReader{warehouse: warehouse, file: &FileReader{}}
}

type dispatchReader struct {
	warehouse Reader
	file      Reader
}

var _ Reader = (*dispatchReader)(nil)

func (d *dispatchReader) Open(ctx context.Context, plan planner.QueryPlan) (RowStream, error) {
	if plan.FilePath != "" {
		return d.file.Open(ctx, plan)
	}
	if d.warehouse == nil {
		return nil, errs.New(errs.KindSource, "", "no warehouse connection configured for a table-sourced mapping")
	}
	return d.warehouse.Open(ctx, plan)
}
