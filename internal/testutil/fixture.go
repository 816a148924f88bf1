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

// Package testutil provides in-memory fakes for the Source Reader, Graph
// Sink, and State Store, so the Orchestrator and its collaborators can be
// exercised without a live warehouse or graph. One can be constructed by
// calling NewFixture.
package testutil

import (
	"context"

	"github.com/snowgraph/snowgraph/internal/config"
	"github.com/snowgraph/snowgraph/internal/graph"
	"github.com/snowgraph/snowgraph/internal/planner"
	"github.com/snowgraph/snowgraph/internal/source"
	"github.com/snowgraph/snowgraph/internal/types"
	"github.com/snowgraph/snowgraph/internal/watermark"
)

// Fixture bundles the three fake adapters the Orchestrator depends on.
type Fixture struct {
	Reader *FakeReader
	Sink   *FakeSink
	Store  *MemStore
}

// NewFixture returns a Fixture with empty fakes.
func NewFixture() *Fixture {
	return &Fixture{
		Reader: &FakeReader{Rows: map[string][]types.Row{}},
		Sink:   &FakeSink{},
		Store:  &MemStore{Records: map[string]types.WatermarkRecord{}},
	}
}

// FakeReader serves pre-loaded rows keyed by the SQL text a QueryPlan
// carries, so a test can stage different rows for different mappings or
// successive calls without a real warehouse. RawSelect- and table-sourced
// plans are both keyed the same way, by plan.SQL.
type FakeReader struct {
	Rows map[string][]types.Row
	// Err, if set, is returned by the next Open call instead of a stream.
	Err error
}

var _ source.Reader = (*FakeReader)(nil)

// Open returns a stream over the rows staged for plan.SQL.
func (f *FakeReader) Open(_ context.Context, plan planner.QueryPlan) (source.RowStream, error) {
	if f.Err != nil {
		err := f.Err
		f.Err = nil
		return nil, err
	}
	return &fakeStream{rows: f.Rows[plan.SQL]}, nil
}

type fakeStream struct {
	rows []types.Row
	pos  int
}

func (s *fakeStream) Next(_ context.Context) (types.Row, bool, error) {
	if s.pos >= len(s.rows) {
		return types.Row{}, false, nil
	}
	row := s.rows[s.pos]
	s.pos++
	return row, true, nil
}

func (s *fakeStream) Close() error { return nil }

// FakeSink records every batch it's handed and can be configured to fail
// on a named operation once.
type FakeSink struct {
	UpsertedNodes [][]types.Payload
	DeletedNodes  [][]types.Payload
	UpsertedEdges [][]types.Payload
	DeletedEdges  [][]types.Payload
	PurgedAll     bool
	PurgedNames   []string

	// FailOn, if equal to a method name ("UpsertNodes", "UpsertEdges",
	// "DeleteNodes", "DeleteEdges", "PurgeAll", "PurgeMapping"), makes that
	// call fail once and then clears itself.
	FailOn string
	failErr error
}

var _ graph.Sink = (*FakeSink)(nil)

func (f *FakeSink) shouldFail(op string) error {
	if f.FailOn != op {
		return nil
	}
	f.FailOn = ""
	if f.failErr != nil {
		return f.failErr
	}
	return errChaos(op)
}

func (f *FakeSink) UpsertNodes(_ context.Context, _ []string, _ string, batch []types.Payload) error {
	if err := f.shouldFail("UpsertNodes"); err != nil {
		return err
	}
	f.UpsertedNodes = append(f.UpsertedNodes, batch)
	return nil
}

func (f *FakeSink) DeleteNodes(_ context.Context, _ []string, _ string, batch []types.Payload) error {
	if err := f.shouldFail("DeleteNodes"); err != nil {
		return err
	}
	f.DeletedNodes = append(f.DeletedNodes, batch)
	return nil
}

func (f *FakeSink) UpsertEdges(_ context.Context, _, _ graph.EndpointShape, _, _, _ string, batch []types.Payload) error {
	if err := f.shouldFail("UpsertEdges"); err != nil {
		return err
	}
	f.UpsertedEdges = append(f.UpsertedEdges, batch)
	return nil
}

func (f *FakeSink) DeleteEdges(_ context.Context, _, _ graph.EndpointShape, _, _, _ string, batch []types.Payload) error {
	if err := f.shouldFail("DeleteEdges"); err != nil {
		return err
	}
	f.DeletedEdges = append(f.DeletedEdges, batch)
	return nil
}

func (f *FakeSink) PurgeAll(_ context.Context) error {
	if err := f.shouldFail("PurgeAll"); err != nil {
		return err
	}
	f.PurgedAll = true
	return nil
}

func (f *FakeSink) PurgeMapping(_ context.Context, m *config.Mapping, _, _ *graph.EndpointShape) error {
	if err := f.shouldFail("PurgeMapping"); err != nil {
		return err
	}
	f.PurgedNames = append(f.PurgedNames, m.Name)
	return nil
}

func (f *FakeSink) Close() error { return nil }

func errChaos(op string) error { return &fakeErr{op: op} }

type fakeErr struct{ op string }

func (e *fakeErr) Error() string { return "testutil: forced failure in " + e.op }

// MemStore is an in-memory watermark.Store, for tests that need
// persistence across multiple Orchestrator.Run calls within one test.
type MemStore struct {
	Records map[string]types.WatermarkRecord
	// SaveErr, if set, is returned by the next Save call and then cleared.
	SaveErr error
}

var _ watermark.Store = (*MemStore)(nil)

func (m *MemStore) Load() (map[string]types.WatermarkRecord, error) {
	out := make(map[string]types.WatermarkRecord, len(m.Records))
	for k, v := range m.Records {
		out[k] = v
	}
	return out, nil
}

func (m *MemStore) Save(records map[string]types.WatermarkRecord) error {
	if m.SaveErr != nil {
		err := m.SaveErr
		m.SaveErr = nil
		return err
	}
	m.Records = records
	return nil
}
