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

package graph

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/snowgraph/snowgraph/internal/config"
	"github.com/snowgraph/snowgraph/internal/errs"
	"github.com/snowgraph/snowgraph/internal/types"
)

var log = logrus.WithField("component", "graph")

// FalkorDBSink implements Sink over a FalkorDB instance, speaking its
// Redis-protocol GRAPH.QUERY command via go-redis. FalkorDB is a Redis
// module, so the wire protocol and client are ordinary RESP; only the
// command name and query text are graph-specific.
type FalkorDBSink struct {
	rdb       redis.UniversalClient
	graphName string
	batchSize int
}

var _ Sink = (*FalkorDBSink)(nil)

// NewFalkorDBSink dials addr and returns a Sink bound to graphName. The
// connection is lazy: go-redis doesn't dial until the first command.
func NewFalkorDBSink(cfg config.GraphConfig) *FalkorDBSink {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	})
	return &FalkorDBSink{rdb: rdb, graphName: cfg.GraphName, batchSize: cfg.MaxBatchSize}
}

func (s *FalkorDBSink) query(ctx context.Context, q string, params map[string]any) error {
	cmd := s.rdb.Do(ctx, "GRAPH.QUERY", s.graphName, withParams(q, params), "--compact")
	if err := cmd.Err(); err != nil {
		return errs.Wrap(errs.KindSink, "", err, "executing graph query")
	}
	return nil
}

func (s *FalkorDBSink) UpsertNodes(ctx context.Context, labels []string, keyProp string, batch []types.Payload) error {
	if len(batch) == 0 {
		return nil
	}
	q := nodeUpsertCypher(labels, keyProp)
	for _, sub := range splitBatches(batch, s.batchSize) {
		if err := s.query(ctx, q, map[string]any{"rows": nodeUpsertRows(sub)}); err != nil {
			return err
		}
	}
	log.WithFields(logrus.Fields{"labels": labels, "count": len(batch)}).Debug("upserted nodes")
	return nil
}

func (s *FalkorDBSink) DeleteNodes(ctx context.Context, labels []string, keyProp string, batch []types.Payload) error {
	if len(batch) == 0 {
		return nil
	}
	q := nodeDeleteCypher(labels, keyProp)
	for _, sub := range splitBatches(batch, s.batchSize) {
		if err := s.query(ctx, q, map[string]any{"ids": nodeDeleteIDs(sub)}); err != nil {
			return err
		}
	}
	log.WithFields(logrus.Fields{"labels": labels, "count": len(batch)}).Debug("deleted nodes")
	return nil
}

func (s *FalkorDBSink) UpsertEdges(ctx context.Context, from, to EndpointShape, relType, direction, edgeKeyProp string, batch []types.Payload) error {
	if len(batch) == 0 {
		return nil
	}
	q := edgeUpsertCypher(from.Labels, from.KeyProp, to.Labels, to.KeyProp, relType, direction, edgeKeyProp)
	for _, sub := range splitBatches(batch, s.batchSize) {
		if err := s.query(ctx, q, map[string]any{"rows": edgeUpsertRows(sub)}); err != nil {
			return err
		}
	}
	log.WithFields(logrus.Fields{"rel_type": relType, "count": len(batch)}).Debug("upserted edges")
	return nil
}

func (s *FalkorDBSink) DeleteEdges(ctx context.Context, from, to EndpointShape, relType, direction, edgeKeyProp string, batch []types.Payload) error {
	if len(batch) == 0 {
		return nil
	}
	q := edgeDeleteCypher(from.Labels, from.KeyProp, to.Labels, to.KeyProp, relType, direction, edgeKeyProp)
	for _, sub := range splitBatches(batch, s.batchSize) {
		if err := s.query(ctx, q, map[string]any{"rows": edgeDeleteRows(sub)}); err != nil {
			return err
		}
	}
	log.WithFields(logrus.Fields{"rel_type": relType, "count": len(batch)}).Debug("deleted edges")
	return nil
}

// PurgeAll deletes every node and relationship in the graph.
func (s *FalkorDBSink) PurgeAll(ctx context.Context) error {
	log.Warn("purging entire graph")
	return s.query(ctx, purgeAllCypher, nil)
}

// PurgeMapping deletes everything a single mapping owns: all nodes with its
// labels, or all relationships of its type between its two endpoint label
// sets. from/to are ignored for node mappings and required for edge
// mappings.
func (s *FalkorDBSink) PurgeMapping(ctx context.Context, m *config.Mapping, from, to *EndpointShape) error {
	log.WithField("mapping", m.Name).Warn("purging mapping")
	if m.IsNode() {
		return s.query(ctx, purgeNodeLabelsCypher(m.Labels), nil)
	}
	if from == nil || to == nil {
		return errs.Wrap(errs.KindSink, "", errors.Errorf("mapping %q: missing endpoint shapes for purge", m.Name), "purging mapping")
	}
	return s.query(ctx, purgeEdgeTypeCypher(from.Labels, to.Labels, m.RelationshipType, m.Direction), nil)
}

func (s *FalkorDBSink) Close() error {
	return s.rdb.Close()
}

// Ping verifies connectivity at startup, with the same deadline discipline
// the warehouse connector uses.
func (s *FalkorDBSink) Ping(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return errs.Wrap(errs.KindSink, "", err, "connecting to FalkorDB")
	}
	return nil
}
