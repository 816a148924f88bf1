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

// Package config parses and validates the declarative mapping
// configuration that drives the synchronization engine: one warehouse
// connection, one graph connection, a state-backend descriptor, and an
// ordered sequence of node/edge mappings.
package config

// Config is the parsed root document. Load returns it with environment
// references already resolved.
type Config struct {
	Warehouse WarehouseConfig `yaml:"warehouse" json:"warehouse"`
	Graph     GraphConfig     `yaml:"graph" json:"graph"`
	State     StateConfig     `yaml:"state" json:"state"`
	Mappings  []Mapping       `yaml:"mappings" json:"mappings"`
}

// WarehouseConfig describes the Snowflake connection.
type WarehouseConfig struct {
	Account      string `yaml:"account" json:"account"`
	User         string `yaml:"user" json:"user"`
	Password     string `yaml:"password" json:"password"`
	KeyPath      string `yaml:"key_path" json:"key_path"`
	Warehouse    string `yaml:"warehouse" json:"warehouse"`
	Database     string `yaml:"database" json:"database"`
	Schema       string `yaml:"schema" json:"schema"`
	Role         string `yaml:"role" json:"role"`
	QueryTimeout int    `yaml:"query_timeout_secs" json:"query_timeout_secs"`
}

// GraphConfig describes the FalkorDB connection.
type GraphConfig struct {
	Addr         string `yaml:"addr" json:"addr"`
	Password     string `yaml:"password" json:"password"`
	GraphName    string `yaml:"graph_name" json:"graph_name"`
	MaxBatchSize int    `yaml:"max_batch_size" json:"max_batch_size"`
}

// StateConfig selects and configures the State Store backend.
type StateConfig struct {
	// Backend is "file" or "none".
	Backend string `yaml:"backend" json:"backend"`
	Path    string `yaml:"path" json:"path"`
}

// MappingKind discriminates the Mapping tagged variant.
type MappingKind int

const (
	// KindNode marks a Mapping as a NodeMapping.
	KindNode MappingKind = iota
	// KindEdge marks a Mapping as an EdgeMapping.
	KindEdge
)

// Source names exactly one of the three ways a mapping can read rows.
type Source struct {
	Table       string `yaml:"table,omitempty" json:"table,omitempty"`
	WhereClause string `yaml:"where_clause,omitempty" json:"where_clause,omitempty"`
	RawSelect   string `yaml:"raw_select,omitempty" json:"raw_select,omitempty"`
	FilePath    string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
}

// count returns how many of the source forms are non-empty.
func (s Source) count() int {
	n := 0
	if s.Table != "" {
		n++
	}
	if s.RawSelect != "" {
		n++
	}
	if s.FilePath != "" {
		n++
	}
	return n
}

// Delta describes incremental-load bookkeeping for a mapping.
type Delta struct {
	UpdatedAtColumn   string `yaml:"updated_at_column,omitempty" json:"updated_at_column,omitempty"`
	DeletedFlagColumn string `yaml:"deleted_flag_column,omitempty" json:"deleted_flag_column,omitempty"`
	DeletedFlagValue  string `yaml:"deleted_flag_value,omitempty" json:"deleted_flag_value,omitempty"`
	InitialFullLoad   bool   `yaml:"initial_full_load" json:"initial_full_load"`
}

// KeyDescriptor names the source column and graph property that together
// form a node's key or an endpoint's match pair.
type KeyDescriptor struct {
	SourceColumn  string `yaml:"source_column" json:"source_column"`
	GraphProperty string `yaml:"graph_property" json:"graph_property"`
}

// Endpoint resolves one side of an EdgeMapping to a prior NodeMapping's
// key property, via one or more match pairs.
type Endpoint struct {
	NodeMapping string          `yaml:"node_mapping" json:"node_mapping"`
	MatchOn     []KeyDescriptor `yaml:"match_on" json:"match_on"`
}

// Mapping is the tagged union of NodeMapping and EdgeMapping. Exactly one
// of the Node/Edge field sets is populated, selected by Kind, so dispatch
// on mapping kind, which is on the hot path of every row, is a field
// comparison rather than a type assertion.
type Mapping struct {
	Kind MappingKind `yaml:"-" json:"-"`
	Name string      `yaml:"name" json:"name"`

	Source Source  `yaml:"source" json:"source"`
	Mode   string  `yaml:"mode" json:"mode"` // "full" or "incremental"
	Delta  *Delta  `yaml:"delta,omitempty" json:"delta,omitempty"`

	// NodeMapping fields.
	Labels     []string          `yaml:"labels,omitempty" json:"labels,omitempty"`
	Key        *KeyDescriptor    `yaml:"key,omitempty" json:"key,omitempty"`
	Properties map[string]string `yaml:"properties,omitempty" json:"properties,omitempty"`

	// EdgeMapping fields.
	RelationshipType string            `yaml:"relationship_type,omitempty" json:"relationship_type,omitempty"`
	Direction        string            `yaml:"direction,omitempty" json:"direction,omitempty"`
	From             *Endpoint         `yaml:"from,omitempty" json:"from,omitempty"`
	To               *Endpoint         `yaml:"to,omitempty" json:"to,omitempty"`
	EdgeKey          *KeyDescriptor    `yaml:"edge_key,omitempty" json:"edge_key,omitempty"`
	EdgeProperties   map[string]string `yaml:"edge_properties,omitempty" json:"edge_properties,omitempty"`
}

// IsNode reports whether m is a NodeMapping.
func (m *Mapping) IsNode() bool { return m.Kind == KindNode }

// IsEdge reports whether m is an EdgeMapping.
func (m *Mapping) IsEdge() bool { return m.Kind == KindEdge }

// inferKind sets Kind based on which variant's required fields are
// populated. Called once, right after decode, before validation.
func (m *Mapping) inferKind() {
	if m.RelationshipType != "" || m.From != nil || m.To != nil {
		m.Kind = KindEdge
	} else {
		m.Kind = KindNode
	}
}

// NeedsWarehouse reports whether any mapping reads from the warehouse
// (table or raw_select source). A config whose mappings are all
// file-sourced never opens a warehouse connection.
func (c *Config) NeedsWarehouse() bool {
	for i := range c.Mappings {
		if c.Mappings[i].Source.FilePath == "" {
			return true
		}
	}
	return false
}

// NodeMapping returns the named mapping if it exists and is a NodeMapping.
func (c *Config) NodeMapping(name string) (*Mapping, bool) {
	for i := range c.Mappings {
		if c.Mappings[i].Name == name && c.Mappings[i].IsNode() {
			return &c.Mappings[i], true
		}
	}
	return nil, false
}

// MatchColumnFor returns the source column within ep.MatchOn whose
// GraphProperty equals the key property of the NodeMapping it targets, per
// the invariant enforced by Validate.
func MatchColumnFor(ep *Endpoint, target *Mapping) (string, bool) {
	if target.Key == nil {
		return "", false
	}
	for _, pair := range ep.MatchOn {
		if pair.GraphProperty == target.Key.GraphProperty {
			return pair.SourceColumn, true
		}
	}
	return "", false
}
