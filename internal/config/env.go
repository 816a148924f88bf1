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
	"os"
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"github.com/snowgraph/snowgraph/internal/errs"
)

// substituteEnv walks every string field reachable from cfg and replaces
// any value beginning with "$" with the named environment variable's
// value. An unset variable is a fatal config error.
func substituteEnv(cfg *Config) error {
	return walkStrings(reflect.ValueOf(cfg))
}

func walkStrings(v reflect.Value) error {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return walkStrings(v.Elem())
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if err := walkStrings(v.Field(i)); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := walkStrings(v.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Map:
		for _, k := range v.MapKeys() {
			elem := v.MapIndex(k)
			resolved, err := resolveString(elem)
			if err != nil {
				return err
			}
			if resolved != nil {
				v.SetMapIndex(k, reflect.ValueOf(*resolved))
			}
		}
	case reflect.String:
		if !v.CanSet() {
			return nil
		}
		resolved, err := resolveEnvValue(v.String())
		if err != nil {
			return err
		}
		if resolved != v.String() {
			v.SetString(resolved)
		}
	}
	return nil
}

func resolveString(v reflect.Value) (*string, error) {
	if v.Kind() != reflect.String {
		return nil, nil
	}
	resolved, err := resolveEnvValue(v.String())
	if err != nil {
		return nil, err
	}
	return &resolved, nil
}

func resolveEnvValue(s string) (string, error) {
	if !strings.HasPrefix(s, "$") {
		return s, nil
	}
	name := strings.TrimPrefix(s, "$")
	val, ok := os.LookupEnv(name)
	if !ok {
		return "", errs.Wrap(errs.KindConfig, errs.ConfigEnvUnset,
			errors.Errorf("environment variable %q is not set", name),
			"resolving config env reference")
	}
	return val, nil
}
