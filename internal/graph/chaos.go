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
	"math/rand"

	"github.com/pkg/errors"
	"github.com/snowgraph/snowgraph/internal/config"
	"github.com/snowgraph/snowgraph/internal/types"
)

// ErrChaos is the error injected by WithChaos.
var ErrChaos = errors.New("chaos")

// WithChaos wraps a Sink so that every write method fails with probability
// prob, for exercising the orchestrator's failure-atomicity property
// without a live FalkorDB. delegate is returned unmodified if prob <= 0.
func WithChaos(delegate Sink, prob float32) Sink {
	if prob <= 0 {
		return delegate
	}
	return &chaosSink{delegate: delegate, prob: prob}
}

type chaosSink struct {
	delegate Sink
	prob     float32
}

var _ Sink = (*chaosSink)(nil)

func (c *chaosSink) fail() bool { return rand.Float32() < c.prob }

func (c *chaosSink) UpsertNodes(ctx context.Context, labels []string, keyProp string, batch []types.Payload) error {
	if c.fail() {
		return errors.WithMessage(ErrChaos, "UpsertNodes")
	}
	return c.delegate.UpsertNodes(ctx, labels, keyProp, batch)
}

func (c *chaosSink) DeleteNodes(ctx context.Context, labels []string, keyProp string, batch []types.Payload) error {
	if c.fail() {
		return errors.WithMessage(ErrChaos, "DeleteNodes")
	}
	return c.delegate.DeleteNodes(ctx, labels, keyProp, batch)
}

func (c *chaosSink) UpsertEdges(ctx context.Context, from, to EndpointShape, relType, direction, edgeKeyProp string, batch []types.Payload) error {
	if c.fail() {
		return errors.WithMessage(ErrChaos, "UpsertEdges")
	}
	return c.delegate.UpsertEdges(ctx, from, to, relType, direction, edgeKeyProp, batch)
}

func (c *chaosSink) DeleteEdges(ctx context.Context, from, to EndpointShape, relType, direction, edgeKeyProp string, batch []types.Payload) error {
	if c.fail() {
		return errors.WithMessage(ErrChaos, "DeleteEdges")
	}
	return c.delegate.DeleteEdges(ctx, from, to, relType, direction, edgeKeyProp, batch)
}

func (c *chaosSink) PurgeAll(ctx context.Context) error {
	if c.fail() {
		return errors.WithMessage(ErrChaos, "PurgeAll")
	}
	return c.delegate.PurgeAll(ctx)
}

func (c *chaosSink) PurgeMapping(ctx context.Context, m *config.Mapping, from, to *EndpointShape) error {
	if c.fail() {
		return errors.WithMessage(ErrChaos, "PurgeMapping")
	}
	return c.delegate.PurgeMapping(ctx, m, from, to)
}

func (c *chaosSink) Close() error { return c.delegate.Close() }
