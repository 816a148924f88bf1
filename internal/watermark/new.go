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
	"github.com/pkg/errors"
	"github.com/snowgraph/snowgraph/internal/config"
	"github.com/snowgraph/snowgraph/internal/errs"
)

// New builds the configured Store backend.
func New(cfg config.StateConfig) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		if cfg.Path == "" {
			return nil, errs.Wrap(errs.KindConfig, errs.ConfigValidate,
				errors.New("state.path is required for the file backend"), "configuring state store")
		}
		return &FileStore{Path: cfg.Path}, nil
	case "none":
		return NoneStore{}, nil
	default:
		return nil, errs.Wrap(errs.KindConfig, errs.ConfigValidate,
			errors.Errorf("unknown state backend %q", cfg.Backend), "configuring state store")
	}
}
