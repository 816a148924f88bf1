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

// Package wiring assembles the long-lived components of the
// synchronization engine: the warehouse connection pool, the source
// reader, the graph sink, and the watermark store.
package wiring

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/snowgraph/snowgraph/internal/config"
	"github.com/snowgraph/snowgraph/internal/graph"
	"github.com/snowgraph/snowgraph/internal/orchestrator"
	"github.com/snowgraph/snowgraph/internal/source"
	"github.com/snowgraph/snowgraph/internal/util/stdpool"
	"github.com/snowgraph/snowgraph/internal/watermark"
)

// Engine is the fully wired set of long-lived components main needs to
// drive a run or a daemon loop.
type Engine struct {
	Orchestrator *orchestrator.Orchestrator
}

// ProvideReader opens the warehouse pool (unless every mapping is
// file-sourced) and wraps it in a Reader that also routes file-sourced
// plans. The cleanup closes the pool.
func ProvideReader(ctx context.Context, cfg *config.Config) (source.Reader, func(), error) {
	if !cfg.NeedsWarehouse() {
		return source.Dispatch(nil), func() {}, nil
	}

	db, cancel, err := stdpool.OpenSnowflake(ctx, cfg.Warehouse)
	if err != nil {
		return nil, nil, err
	}
	wh := &source.WarehouseReader{DB: db, Timeout: queryTimeout(cfg)}
	return source.Dispatch(wh), cancel, nil
}

// ProvideSink dials FalkorDB and verifies connectivity before the first
// mapping runs. The cleanup closes the client.
func ProvideSink(ctx context.Context, cfg *config.Config) (graph.Sink, func(), error) {
	sink := graph.NewFalkorDBSink(cfg.Graph)
	if err := sink.Ping(ctx, queryTimeout(cfg)); err != nil {
		_ = sink.Close()
		return nil, nil, err
	}
	cleanup := func() {
		if err := sink.Close(); err != nil {
			logrus.WithError(err).Warn("could not close FalkorDB connection")
		}
	}
	return sink, cleanup, nil
}

// ProvideStore selects the configured state backend.
func ProvideStore(cfg *config.Config) (watermark.Store, error) {
	return watermark.New(cfg.State)
}

func queryTimeout(cfg *config.Config) time.Duration {
	if cfg.Warehouse.QueryTimeout > 0 {
		return time.Duration(cfg.Warehouse.QueryTimeout) * time.Second
	}
	return 30 * time.Second
}
