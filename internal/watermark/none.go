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

package watermark

import "github.com/snowgraph/snowgraph/internal/types"

// NoneStore discards every save and always reports no prior watermarks, so
// every run behaves as if it were the first. Used when StateConfig.Backend
// is "none".
type NoneStore struct{}

var _ Store = NoneStore{}

// Load always returns an empty map.
func (NoneStore) Load() (map[string]types.WatermarkRecord, error) {
	return map[string]types.WatermarkRecord{}, nil
}

// Save is a no-op.
func (NoneStore) Save(map[string]types.WatermarkRecord) error { return nil }
