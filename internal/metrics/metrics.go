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

// Package metrics defines the in-process counters the engine exposes over
// its HTTP metrics endpoint, and the handler that serves their Prometheus
// text exposition. Counter arithmetic is lock-free (prometheus's own atomic
// implementation), so the HTTP server never blocks the Orchestrator.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// MappingLabel names the one label every mapping-scoped counter carries.
var MappingLabel = []string{"mapping"}

var (
	// Runs counts completed sync runs, global.
	Runs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "runs",
		Help: "the number of sync runs completed",
	})
	// FailedRuns counts runs in which at least one mapping failed.
	FailedRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "failed_runs",
		Help: "the number of sync runs that failed to persist state or encountered a mapping failure",
	})
	// RowsFetched counts rows read from the source, global.
	RowsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rows_fetched",
		Help: "the number of rows fetched from the source across all mappings",
	})
	// RowsWritten counts upsert payloads applied to the graph, global.
	RowsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rows_written",
		Help: "the number of upsert payloads written to the graph across all mappings",
	})
	// RowsDeleted counts delete payloads applied to the graph, global.
	RowsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rows_deleted",
		Help: "the number of delete payloads written to the graph across all mappings",
	})

	// MappingRuns counts completed runs per mapping.
	MappingRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mapping_runs",
		Help: "the number of times this mapping completed a run",
	}, MappingLabel)
	// MappingFailedRuns counts failed runs per mapping.
	MappingFailedRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mapping_failed_runs",
		Help: "the number of times this mapping's run failed",
	}, MappingLabel)
	// MappingRowsFetched counts rows read from the source per mapping.
	MappingRowsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mapping_rows_fetched",
		Help: "the number of rows fetched from the source for this mapping",
	}, MappingLabel)
	// MappingRowsWritten counts upsert payloads applied per mapping.
	MappingRowsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mapping_rows_written",
		Help: "the number of upsert payloads written to the graph for this mapping",
	}, MappingLabel)
	// MappingRowsDeleted counts delete payloads applied per mapping.
	MappingRowsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mapping_rows_deleted",
		Help: "the number of delete payloads written to the graph for this mapping",
	}, MappingLabel)
)

// Server serves the metrics exposition at GET /. It exists as its own type,
// rather than a bare http.ListenAndServe call in main, so main can start it
// once at process start and leave it running across daemon passes.
type Server struct {
	httpServer *http.Server
}

// NewServer builds a metrics HTTP server bound to addr; it does not start
// listening until Start is called. The mux treats "/" as a catch-all, so the
// handler itself answers any path other than "/", or any method other than
// GET, with a 404.
func NewServer(addr string) *Server {
	expositionHandler := promhttp.Handler()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		expositionHandler.ServeHTTP(w, r)
	})
	return &Server{httpServer: &http.Server{Addr: addr, Handler: mux}}
}

// Start begins serving in a background goroutine. Bind failures are logged,
// not fatal: a sync run should still proceed even if metrics can't bind.
func (s *Server) Start() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("metrics server stopped unexpectedly")
		}
	}()
}

// Stop gracefully shuts the metrics server down within the given deadline.
func (s *Server) Stop(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
