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

// Package watermark implements the State Store: per-mapping watermarks and
// initial_full_load flags, persisted durably across restarts. The store is
// touched only by the Orchestrator, serially between mapping runs, so no
// internal locking is required.
package watermark

import "github.com/snowgraph/snowgraph/internal/types"

// Store is the State Store contract.
type Store interface {
	// Load returns the current watermark for every mapping the store knows
	// about. A mapping absent from the map has never completed a run.
	Load() (map[string]types.WatermarkRecord, error)

	// Save atomically persists the entire watermark map.
	Save(map[string]types.WatermarkRecord) error
}
