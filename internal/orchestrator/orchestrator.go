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

// Package orchestrator sequences mappings in declaration order, driving
// each through Plan -> Read -> Transform -> Sink -> watermark advance, and
// drives the daemon loop that repeats the whole pass on an interval.
package orchestrator

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/snowgraph/snowgraph/internal/config"
	"github.com/snowgraph/snowgraph/internal/errs"
	"github.com/snowgraph/snowgraph/internal/graph"
	"github.com/snowgraph/snowgraph/internal/metrics"
	"github.com/snowgraph/snowgraph/internal/planner"
	"github.com/snowgraph/snowgraph/internal/source"
	"github.com/snowgraph/snowgraph/internal/stopper"
	"github.com/snowgraph/snowgraph/internal/transform"
	"github.com/snowgraph/snowgraph/internal/types"
	"github.com/snowgraph/snowgraph/internal/util/msort"
	"github.com/snowgraph/snowgraph/internal/watermark"
)

var log = logrus.WithField("component", "orchestrator")

// Orchestrator owns the long-lived adapters (state store, source reader,
// graph sink) and sequences the configured mappings against them. It does
// not own the warehouse/graph connections themselves; those are handles
// passed in at construction, per the owner-borrower discipline: the
// adapters that created them are responsible for closing them.
type Orchestrator struct {
	Config *config.Config
	Store  watermark.Store
	Reader source.Reader
	Sink   graph.Sink

	edgeContexts map[string]*transform.EdgeContext
}

// New builds an Orchestrator and pre-resolves every edge mapping's endpoint
// context, so that per-row dispatch never needs to walk the mapping list.
func New(cfg *config.Config, store watermark.Store, reader source.Reader, sink graph.Sink) (*Orchestrator, error) {
	edgeContexts := make(map[string]*transform.EdgeContext)
	for i := range cfg.Mappings {
		m := &cfg.Mappings[i]
		if m.IsEdge() {
			ec, err := transform.ResolveEdgeContext(cfg, m)
			if err != nil {
				return nil, err
			}
			edgeContexts[m.Name] = ec
		}
	}
	return &Orchestrator{Config: cfg, Store: store, Reader: reader, Sink: sink, edgeContexts: edgeContexts}, nil
}

// RunOptions selects the purge behavior for a single pass. PurgeMappings
// and PurgeAll apply only on the pass they're given to; the daemon loop
// clears them after the first iteration.
type RunOptions struct {
	PurgeAll      bool
	PurgeMappings []string
}

// MappingResult summarizes one mapping's outcome within a run.
type MappingResult struct {
	Name         string
	Failed       bool
	RowsFetched  int
	RowsWritten  int
	RowsDeleted  int
	RowsDropped  int
	Err          error
}

// RunResult summarizes one full pass across all mappings.
type RunResult struct {
	Failed   bool
	Mappings []MappingResult
}

// Run executes one full pass: optional purges, then every mapping in
// declaration order, each independently, with watermark advances collected
// in memory and persisted once at the end of the pass.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (RunResult, error) {
	if opts.PurgeAll {
		log.Warn("purge_all requested")
		if err := o.Sink.PurgeAll(ctx); err != nil {
			return RunResult{Failed: true}, err
		}
	}
	for _, name := range opts.PurgeMappings {
		m, ok := o.findMapping(name)
		if !ok {
			return RunResult{Failed: true}, errs.Wrap(errs.KindConfig, errs.ConfigValidate,
				errors.Errorf("unknown mapping %q in --purge-mapping", name), "purging mapping")
		}
		var from, to *graph.EndpointShape
		if m.IsEdge() {
			ec := o.edgeContexts[m.Name]
			from = &graph.EndpointShape{Labels: ec.From.Labels, KeyProp: ec.From.KeyProp}
			to = &graph.EndpointShape{Labels: ec.To.Labels, KeyProp: ec.To.KeyProp}
		}
		if err := o.Sink.PurgeMapping(ctx, m, from, to); err != nil {
			return RunResult{Failed: true}, err
		}
	}

	watermarks, err := o.Store.Load()
	if err != nil {
		return RunResult{Failed: true}, err
	}

	result := RunResult{}
	for i := range o.Config.Mappings {
		if ctx.Err() != nil {
			log.Warn("shutdown requested, aborting run before remaining mappings")
			break
		}
		m := &o.Config.Mappings[i]
		mr := o.runMapping(ctx, m, watermarks)
		result.Mappings = append(result.Mappings, mr)

		metrics.RowsFetched.Add(float64(mr.RowsFetched))
		metrics.MappingRowsFetched.WithLabelValues(m.Name).Add(float64(mr.RowsFetched))
		metrics.RowsWritten.Add(float64(mr.RowsWritten))
		metrics.MappingRowsWritten.WithLabelValues(m.Name).Add(float64(mr.RowsWritten))
		metrics.RowsDeleted.Add(float64(mr.RowsDeleted))
		metrics.MappingRowsDeleted.WithLabelValues(m.Name).Add(float64(mr.RowsDeleted))

		if mr.Failed {
			result.Failed = true
			metrics.MappingFailedRuns.WithLabelValues(m.Name).Inc()
			log.WithFields(logrus.Fields{"mapping": m.Name, "error": mr.Err}).Error("mapping run failed")
			continue
		}

		metrics.MappingRuns.WithLabelValues(m.Name).Inc()
		log.WithFields(logrus.Fields{
			"mapping":      m.Name,
			"rows_fetched": mr.RowsFetched,
			"rows_written": mr.RowsWritten,
			"rows_deleted": mr.RowsDeleted,
			"rows_dropped": mr.RowsDropped,
		}).Info("mapping run completed")
	}

	if err := o.Store.Save(watermarks); err != nil {
		result.Failed = true
		metrics.FailedRuns.Inc()
		return result, err
	}

	metrics.Runs.Inc()
	if result.Failed {
		metrics.FailedRuns.Inc()
	}
	return result, nil
}

func (o *Orchestrator) findMapping(name string) (*config.Mapping, bool) {
	for i := range o.Config.Mappings {
		if o.Config.Mappings[i].Name == name {
			return &o.Config.Mappings[i], true
		}
	}
	return nil, false
}

// runMapping executes Plan -> Read -> Transform -> Sink for one mapping,
// and on success mutates watermarks[m.Name] in place. It never returns an
// error itself; failures are reported through MappingResult so the caller
// can continue with the next mapping.
func (o *Orchestrator) runMapping(ctx context.Context, m *config.Mapping, watermarks map[string]types.WatermarkRecord) MappingResult {
	mr := MappingResult{Name: m.Name}

	prior, hadPrior := watermarks[m.Name]
	var priorPtr *types.WatermarkRecord
	if hadPrior {
		priorPtr = &prior
	}

	plan, err := planner.Plan(m, priorPtr)
	if err != nil {
		mr.Failed = true
		mr.Err = err
		return mr
	}

	stream, err := o.Reader.Open(ctx, plan)
	if err != nil {
		mr.Failed = true
		mr.Err = err
		return mr
	}
	defer stream.Close()

	var edgeCtx *transform.EdgeContext
	if m.IsEdge() {
		edgeCtx = o.edgeContexts[m.Name]
	}

	var payloads []types.Payload
	maxUpdatedAt := ""
	if hadPrior && prior.LastUpdatedAt != nil {
		maxUpdatedAt = *prior.LastUpdatedAt
	}

	for {
		if ctx.Err() != nil {
			mr.Failed = true
			mr.Err = ctx.Err()
			return mr
		}
		row, ok, err := stream.Next(ctx)
		if err != nil {
			mr.Failed = true
			mr.Err = err
			return mr
		}
		if !ok {
			break
		}
		mr.RowsFetched++

		res, err := transform.Transform(m, row, edgeCtx)
		if err != nil {
			mr.Failed = true
			mr.Err = err
			return mr
		}
		if res.Dropped {
			mr.RowsDropped++
			continue
		}
		if res.UpdatedAt != "" {
			newer := res.UpdatedAt > maxUpdatedAt
			// Integer cursors compare numerically; as text "10" sorts before "9".
			if a, errA := strconv.ParseInt(res.UpdatedAt, 10, 64); errA == nil {
				if b, errB := strconv.ParseInt(maxUpdatedAt, 10, 64); errB == nil {
					newer = a > b
				}
			}
			if newer {
				maxUpdatedAt = res.UpdatedAt
			}
		}
		if res.Payload != nil {
			payloads = append(payloads, *res.Payload)
		}
	}

	payloads = msort.UniqueByKey(payloads)

	var upserts, deletes []types.Payload
	for _, p := range payloads {
		switch p.Kind {
		case types.PayloadNodeUpsert, types.PayloadEdgeUpsert:
			upserts = append(upserts, p)
		default:
			deletes = append(deletes, p)
		}
	}

	if err := o.writeBatches(ctx, m, edgeCtx, upserts, deletes); err != nil {
		mr.Failed = true
		mr.Err = err
		return mr
	}
	mr.RowsWritten = len(upserts)
	mr.RowsDeleted = len(deletes)

	newRecord := types.WatermarkRecord{InitialFullLoadDone: hadPrior && prior.InitialFullLoadDone}
	if plan.Mode == types.ModeFull && m.Delta != nil && m.Delta.InitialFullLoad {
		newRecord.InitialFullLoadDone = true
	}
	if maxUpdatedAt != "" {
		v := maxUpdatedAt
		newRecord.LastUpdatedAt = &v
	} else if hadPrior {
		newRecord.LastUpdatedAt = prior.LastUpdatedAt
	}
	watermarks[m.Name] = newRecord

	return mr
}

func (o *Orchestrator) writeBatches(ctx context.Context, m *config.Mapping, edgeCtx *transform.EdgeContext, upserts, deletes []types.Payload) error {
	if m.IsNode() {
		if err := o.Sink.UpsertNodes(ctx, m.Labels, m.Key.GraphProperty, upserts); err != nil {
			return err
		}
		return o.Sink.DeleteNodes(ctx, m.Labels, m.Key.GraphProperty, deletes)
	}

	from := graph.EndpointShape{Labels: edgeCtx.From.Labels, KeyProp: edgeCtx.From.KeyProp}
	to := graph.EndpointShape{Labels: edgeCtx.To.Labels, KeyProp: edgeCtx.To.KeyProp}
	edgeKeyProp := ""
	if m.EdgeKey != nil {
		edgeKeyProp = m.EdgeKey.GraphProperty
	}
	if err := o.Sink.UpsertEdges(ctx, from, to, m.RelationshipType, m.Direction, edgeKeyProp, upserts); err != nil {
		return err
	}
	return o.Sink.DeleteEdges(ctx, from, to, m.RelationshipType, m.Direction, edgeKeyProp, deletes)
}

// RunDaemon performs one initial pass honoring opts, then repeats at
// interval until st signals shutdown. Subsequent passes ignore opts'
// purge flags.
func (o *Orchestrator) RunDaemon(ctx context.Context, st *stopper.Stopper, opts RunOptions, interval time.Duration) error {
	first := opts
	steadyState := RunOptions{}

	for {
		current := first
		if _, err := o.Run(ctx, current); err != nil {
			log.WithError(err).Error("run failed")
		}
		first = steadyState

		if !st.Sleep(interval) {
			log.Info("shutdown signal received, daemon loop exiting")
			return nil
		}
	}
}
