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

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/snowgraph/snowgraph/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	store := &FileStore{Path: filepath.Join(t.TempDir(), "state.json")}
	m, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := &FileStore{Path: filepath.Join(t.TempDir(), "state.json")}
	v := "2024-01-02T00:00:00Z"
	in := map[string]types.WatermarkRecord{
		"orders": {LastUpdatedAt: &v, InitialFullLoadDone: true},
	}
	require.NoError(t, store.Save(in))

	out, err := store.Load()
	require.NoError(t, err)
	require.Contains(t, out, "orders")
	assert.Equal(t, v, *out["orders"].LastUpdatedAt)
	assert.True(t, out["orders"].InitialFullLoadDone)
}

func TestFileStoreCorruptionIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	store := &FileStore{Path: path}
	_, err := store.Load()
	require.Error(t, err)
}

func TestNoneStoreDiscardsSaves(t *testing.T) {
	store := NoneStore{}
	v := "x"
	require.NoError(t, store.Save(map[string]types.WatermarkRecord{"a": {LastUpdatedAt: &v}}))

	m, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, m)
}
