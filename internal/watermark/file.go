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
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/snowgraph/snowgraph/internal/errs"
	"github.com/snowgraph/snowgraph/internal/types"
)

// FileStore is the file-backed State Store. It serializes the whole
// watermark map as one JSON object and writes it atomically: to a temp
// path in the same directory, then rename over the target path.
type FileStore struct {
	Path string
}

var _ Store = (*FileStore)(nil)

// Load reads Path. A missing file is treated as an empty map (first run
// ever); a present-but-unparseable file is fatal. Watermark corruption must
// never be silently reset.
func (f *FileStore) Load() (map[string]types.WatermarkRecord, error) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]types.WatermarkRecord{}, nil
		}
		return nil, errs.Wrap(errs.KindState, "", err, "reading state file")
	}

	out := map[string]types.WatermarkRecord{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errs.Wrap(errs.KindState, "", err, "state file is corrupt, refusing to reset watermarks")
	}
	return out, nil
}

// Save writes the map to a temp file beside Path and renames it into
// place, so a crash mid-write never leaves a half-written state file.
func (f *FileStore) Save(m map[string]types.WatermarkRecord) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errs.Wrap(errs.KindState, "", err, "encoding state")
	}

	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return errs.Wrap(errs.KindState, "", err, "creating temp state file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return errs.Wrap(errs.KindState, "", err, "writing temp state file")
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.KindState, "", err, "closing temp state file")
	}

	if err := os.Rename(tmpPath, f.Path); err != nil {
		return errs.Wrap(errs.KindState, "", errors.WithStack(err), "renaming state file into place")
	}
	return nil
}
