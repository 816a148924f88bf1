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

// Package transform maps Rows to graph payloads per a mapping's rules,
// classifying each row as a live upsert or a soft delete, and tracks the
// watermark value observed so far in the current run.
package transform

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/snowgraph/snowgraph/internal/config"
	"github.com/snowgraph/snowgraph/internal/errs"
	"github.com/snowgraph/snowgraph/internal/types"
)

// EndpointResolved is a pre-resolved edge endpoint: which labels and key
// property identify the target node, and which source column in the edge
// row's projection carries the matching value.
type EndpointResolved struct {
	Labels    []string
	KeyProp   string
	SourceCol string
}

// EdgeContext carries the two endpoints' resolved shape for one
// EdgeMapping, computed once before the row loop so that Transform never
// needs to walk the mapping list per row.
type EdgeContext struct {
	From EndpointResolved
	To   EndpointResolved
}

// ResolveEdgeContext resolves m's from/to endpoints against cfg. m must be
// an EdgeMapping that has already passed config.Validate.
func ResolveEdgeContext(cfg *config.Config, m *config.Mapping) (*EdgeContext, error) {
	from, err := resolveEndpoint(cfg, m.From)
	if err != nil {
		return nil, err
	}
	to, err := resolveEndpoint(cfg, m.To)
	if err != nil {
		return nil, err
	}
	return &EdgeContext{From: *from, To: *to}, nil
}

func resolveEndpoint(cfg *config.Config, ep *config.Endpoint) (*EndpointResolved, error) {
	target, ok := cfg.NodeMapping(ep.NodeMapping)
	if !ok {
		return nil, errs.Wrap(errs.KindTransform, "", errors.Errorf("unresolved node mapping %q", ep.NodeMapping), "resolving edge endpoint")
	}
	col, ok := config.MatchColumnFor(ep, target)
	if !ok {
		return nil, errs.Wrap(errs.KindTransform, "", errors.Errorf("no match_on column for node mapping %q", ep.NodeMapping), "resolving edge endpoint")
	}
	return &EndpointResolved{
		Labels:    target.Labels,
		KeyProp:   target.Key.GraphProperty,
		SourceCol: col,
	}, nil
}

// Result is the outcome of transforming one Row.
type Result struct {
	// Payload is nil when the row was dropped (null key) or produced no
	// graph effect.
	Payload *types.Payload
	// Dropped is true when the row had a null key and was counted as
	// dropped rather than transformed.
	Dropped bool
	// UpdatedAt is the row's rendered delta.updated_at_column value, or ""
	// if the mapping carries no delta/updated-at column.
	UpdatedAt string
}

// Transform maps one Row to zero or one graph payload, per m's rules.
// edgeCtx must be non-nil when m is an EdgeMapping, and is ignored for
// NodeMappings.
func Transform(m *config.Mapping, row types.Row, edgeCtx *EdgeContext) (Result, error) {
	updatedAt := ""
	if m.Delta != nil && m.Delta.UpdatedAtColumn != "" {
		if cell, ok := row.Get(m.Delta.UpdatedAtColumn); ok && !cell.IsNull() {
			updatedAt = renderForComparison(cell)
		}
	}

	deleted := isDeleted(m, row)

	if m.IsNode() {
		return transformNode(m, row, deleted, updatedAt)
	}
	return transformEdge(m, row, edgeCtx, deleted, updatedAt)
}

func isDeleted(m *config.Mapping, row types.Row) bool {
	if m.Delta == nil || m.Delta.DeletedFlagColumn == "" {
		return false
	}
	cell, ok := row.Get(m.Delta.DeletedFlagColumn)
	if !ok {
		return false
	}
	return renderForComparison(cell) == m.Delta.DeletedFlagValue
}

func transformNode(m *config.Mapping, row types.Row, deleted bool, updatedAt string) (Result, error) {
	keyCell, ok := row.Get(m.Key.SourceColumn)
	if !ok || keyCell.IsNull() {
		return Result{Dropped: true, UpdatedAt: updatedAt}, nil
	}

	ref := types.NodeRef{Labels: m.Labels, KeyProp: m.Key.GraphProperty, KeyValue: keyCell.Value()}

	if deleted {
		return Result{
			Payload:   &types.Payload{Kind: types.PayloadNodeDelete, Node: ref},
			UpdatedAt: updatedAt,
		}, nil
	}

	props := map[string]any{}
	for graphProp, sourceCol := range m.Properties {
		if cell, ok := row.Get(sourceCol); ok {
			props[graphProp] = cell.Value()
		}
	}

	return Result{
		Payload:   &types.Payload{Kind: types.PayloadNodeUpsert, Node: ref, Props: props},
		UpdatedAt: updatedAt,
	}, nil
}

func transformEdge(m *config.Mapping, row types.Row, edgeCtx *EdgeContext, deleted bool, updatedAt string) (Result, error) {
	if edgeCtx == nil {
		return Result{}, errs.Wrap(errs.KindTransform, "", errors.Errorf("mapping %q: missing edge context", m.Name), "transforming row")
	}

	fromCell, ok := row.Get(edgeCtx.From.SourceCol)
	if !ok || fromCell.IsNull() {
		return Result{Dropped: true, UpdatedAt: updatedAt}, nil
	}
	toCell, ok := row.Get(edgeCtx.To.SourceCol)
	if !ok || toCell.IsNull() {
		return Result{Dropped: true, UpdatedAt: updatedAt}, nil
	}

	ref := types.EdgeRef{
		RelType:   m.RelationshipType,
		Direction: m.Direction,
		From:      types.NodeRef{Labels: edgeCtx.From.Labels, KeyProp: edgeCtx.From.KeyProp, KeyValue: fromCell.Value()},
		To:        types.NodeRef{Labels: edgeCtx.To.Labels, KeyProp: edgeCtx.To.KeyProp, KeyValue: toCell.Value()},
	}
	if m.EdgeKey != nil {
		if cell, ok := row.Get(m.EdgeKey.SourceColumn); ok && !cell.IsNull() {
			ref.KeyProp = m.EdgeKey.GraphProperty
			ref.KeyValue = cell.Value()
		}
	}

	if deleted {
		return Result{
			Payload:   &types.Payload{Kind: types.PayloadEdgeDelete, Edge: ref},
			UpdatedAt: updatedAt,
		}, nil
	}

	props := map[string]any{}
	for graphProp, sourceCol := range m.EdgeProperties {
		if cell, ok := row.Get(sourceCol); ok {
			props[graphProp] = cell.Value()
		}
	}

	return Result{
		Payload:   &types.Payload{Kind: types.PayloadEdgeUpsert, Edge: ref, Props: props},
		UpdatedAt: updatedAt,
	}, nil
}

// renderForComparison returns the cell's value as a string suitable for
// watermark/flag comparison: timestamps are rendered in canonical
// ISO-8601 UTC with a fixed nine-digit fraction, so that two rendered
// timestamps sort as text in time order; everything else via its natural
// string form. Empty strings are preserved, never coerced to "null" or
// similar.
func renderForComparison(c types.Cell) string {
	switch c.Kind {
	case types.CellString:
		return c.Str
	case types.CellTime:
		return c.Time.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
	case types.CellBool:
		if c.Bool {
			return "true"
		}
		return "false"
	case types.CellInt:
		return strconv.FormatInt(c.Int, 10)
	case types.CellFloat:
		return strconv.FormatFloat(c.Float, 'f', -1, 64)
	default:
		return ""
	}
}
