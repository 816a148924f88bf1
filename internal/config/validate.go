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

package config

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/snowgraph/snowgraph/internal/errs"
)

// Validate performs the semantic validation pass over a decoded config. It
// assumes Kind has already been inferred on every mapping (decode does
// this) and that environment substitution has already run.
func Validate(cfg *Config) error {
	if cfg.NeedsWarehouse() {
		if err := validateWarehouse(cfg.Warehouse); err != nil {
			return err
		}
	}

	seen := make(map[string]*Mapping, len(cfg.Mappings))
	for i := range cfg.Mappings {
		m := &cfg.Mappings[i]

		if m.Name == "" {
			return fail("mapping at index %d has no name", i)
		}
		if _, dup := seen[m.Name]; dup {
			return fail("duplicate mapping name %q", m.Name)
		}

		if err := validateSource(m); err != nil {
			return err
		}
		if err := validateMode(m); err != nil {
			return err
		}

		if m.IsNode() {
			if err := validateNode(m); err != nil {
				return err
			}
		} else {
			if err := validateEdge(m, seen); err != nil {
				return err
			}
		}

		seen[m.Name] = m
	}

	return nil
}

func validateWarehouse(w WarehouseConfig) error {
	if w.Password == "" && w.KeyPath == "" {
		return fail("warehouse config must set password or key_path")
	}
	return nil
}

func validateSource(m *Mapping) error {
	switch m.Source.count() {
	case 0:
		return fail("mapping %q: no source specified", m.Name)
	case 1:
		return nil
	default:
		return fail("mapping %q: exactly one of table/raw_select/file_path must be set", m.Name)
	}
}

func validateMode(m *Mapping) error {
	if m.Mode != "full" && m.Mode != "incremental" {
		return fail("mapping %q: mode must be \"full\" or \"incremental\", got %q", m.Name, m.Mode)
	}
	if m.Mode == "incremental" && m.Source.RawSelect == "" {
		if m.Delta == nil || m.Delta.UpdatedAtColumn == "" {
			return fail(
				"mapping %q: mode=incremental requires delta.updated_at_column unless source.raw_select is used", m.Name)
		}
	}
	return nil
}

func validateNode(m *Mapping) error {
	if len(m.Labels) == 0 {
		return fail("mapping %q: NodeMapping requires at least one label", m.Name)
	}
	if m.Key == nil || m.Key.SourceColumn == "" || m.Key.GraphProperty == "" {
		return fail("mapping %q: NodeMapping requires a key descriptor", m.Name)
	}
	return nil
}

func validateEdge(m *Mapping, priorNodes map[string]*Mapping) error {
	if m.RelationshipType == "" {
		return fail("mapping %q: EdgeMapping requires relationship_type", m.Name)
	}
	if m.Direction != "out" && m.Direction != "in" {
		return fail("mapping %q: direction must be \"out\" or \"in\", got %q", m.Name, m.Direction)
	}
	if err := validateEndpoint(m, "from", m.From, priorNodes); err != nil {
		return err
	}
	if err := validateEndpoint(m, "to", m.To, priorNodes); err != nil {
		return err
	}
	return nil
}

func validateEndpoint(m *Mapping, side string, ep *Endpoint, priorNodes map[string]*Mapping) error {
	if ep == nil || ep.NodeMapping == "" {
		return fail("mapping %q: %s endpoint requires node_mapping", m.Name, side)
	}
	target, ok := priorNodes[ep.NodeMapping]
	if !ok {
		return fail(
			"mapping %q: %s.node_mapping %q must reference a node mapping declared earlier in the sequence",
			m.Name, side, ep.NodeMapping)
	}
	if !target.IsNode() {
		return fail("mapping %q: %s.node_mapping %q is not a NodeMapping", m.Name, side, ep.NodeMapping)
	}
	if len(ep.MatchOn) == 0 {
		return fail("mapping %q: %s endpoint requires at least one match_on pair", m.Name, side)
	}
	matched := false
	for _, pair := range ep.MatchOn {
		if target.Key != nil && pair.GraphProperty == target.Key.GraphProperty {
			matched = true
			break
		}
	}
	if !matched {
		return fail(
			"mapping %q: %s.match_on must include the key property (%s) of node mapping %q",
			m.Name, side, keyPropOf(target), ep.NodeMapping)
	}
	return nil
}

func keyPropOf(m *Mapping) string {
	if m.Key == nil {
		return ""
	}
	return m.Key.GraphProperty
}

func fail(format string, args ...any) error {
	return errs.Wrap(errs.KindConfig, errs.ConfigValidate, errors.New(fmt.Sprintf(format, args...)), "config validation")
}
