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
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/snowgraph/snowgraph/internal/errs"
	"gopkg.in/yaml.v3"
)

// Load reads, decodes, resolves environment references in, and validates
// the config file at path. The extension selects the decoder: .yaml/.yml
// for YAML, .json for JSON.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindConfig, errs.ConfigParse, err, "reading config file")
	}

	cfg, err := decode(path, raw)
	if err != nil {
		return nil, err
	}

	if err := substituteEnv(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func decode(path string, raw []byte) (*Config, error) {
	cfg := &Config{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errs.Wrap(errs.KindConfig, errs.ConfigParse, err, "decoding YAML config")
		}
	case ".json":
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, errs.Wrap(errs.KindConfig, errs.ConfigParse, err, "decoding JSON config")
		}
	default:
		return nil, errs.Wrap(errs.KindConfig, errs.ConfigParse,
			errors.Errorf("unrecognized config extension %q", ext), "selecting config decoder")
	}

	for i := range cfg.Mappings {
		cfg.Mappings[i].inferKind()
	}

	return cfg, nil
}
