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
	"math/rand"

	"github.com/pkg/errors"
	"github.com/snowgraph/snowgraph/internal/planner"
	"github.com/snowgraph/snowgraph/internal/types"
)

// ErrChaos is the error injected by WithChaos.
var ErrChaos = errors.New("chaos")

// WithChaos returns a Reader that fails with probability prob on every
// Open call and on every Next call of the streams it returns. It exists to
// exercise the Orchestrator's failure handling without a live warehouse.
// delegate is returned unmodified if prob <= 0.
func WithChaos(delegate Reader, prob float32) Reader {
	if prob <= 0 {
		return delegate
	}
	return &chaosReader{delegate: delegate, prob: prob}
}

type chaosReader struct {
	delegate Reader
	prob     float32
}

var _ Reader = (*chaosReader)(nil)

func (c *chaosReader) Open(ctx context.Context, plan planner.QueryPlan) (RowStream, error) {
	if rand.Float32() < c.prob {
		return nil, errors.WithMessage(ErrChaos, "Open")
	}
	stream, err := c.delegate.Open(ctx, plan)
	if err != nil {
		return nil, err
	}
	return &chaosStream{delegate: stream, prob: c.prob}, nil
}

type chaosStream struct {
	delegate RowStream
	prob     float32
}

var _ RowStream = (*chaosStream)(nil)

func (c *chaosStream) Next(ctx context.Context) (types.Row, bool, error) {
	if rand.Float32() < c.prob {
		return types.Row{}, false, errors.WithMessage(ErrChaos, "Next")
	}
	return c.delegate.Next(ctx)
}

func (c *chaosStream) Close() error { return c.delegate.Close() }
