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

// Package stdpool creates standardized database/sql connection pools for
// the warehouse reader.
package stdpool

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"database/sql"
	"encoding/pem"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	sf "github.com/snowflakedb/gosnowflake"

	"github.com/snowgraph/snowgraph/internal/config"
	"github.com/snowgraph/snowgraph/internal/errs"
)

// OpenSnowflake opens a *sql.DB against the warehouse described by cfg.
// If KeyPath is configured, keypair auth is used (Password, if present, is
// treated as the PEM passphrase); otherwise password auth. Missing both is
// rejected at config-validation time, not here.
func OpenSnowflake(ctx context.Context, cfg config.WarehouseConfig) (*sql.DB, func(), error) {
	sfCfg := sf.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Warehouse: cfg.Warehouse,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
		Role:      cfg.Role,
	}

	if cfg.QueryTimeout > 0 {
		sfCfg.LoginTimeout = time.Duration(cfg.QueryTimeout) * time.Second
	}

	if cfg.KeyPath != "" {
		key, err := loadPrivateKey(cfg.KeyPath, cfg.Password)
		if err != nil {
			return nil, nil, errs.Wrap(errs.KindSource, "", err, "loading Snowflake private key")
		}
		sfCfg.Authenticator = sf.AuthTypeJwt
		sfCfg.PrivateKey = key
	} else {
		sfCfg.Password = cfg.Password
	}

	dsn, err := sf.DSN(&sfCfg)
	if err != nil {
		return nil, nil, errs.Wrap(errs.KindSource, "", err, "building Snowflake DSN")
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, nil, errs.Wrap(errs.KindSource, "", err, "opening Snowflake connection")
	}

	if err := pingWithTimeout(ctx, db, cfg.QueryTimeout); err != nil {
		db.Close()
		return nil, nil, errs.Wrap(errs.KindSource, "", err, "pinging Snowflake")
	}

	log.WithFields(log.Fields{
		"account":   cfg.Account,
		"database":  cfg.Database,
		"schema":    cfg.Schema,
		"warehouse": cfg.Warehouse,
	}).Info("opened Snowflake connection")

	cancel := func() {
		if err := db.Close(); err != nil {
			log.WithError(err).Warn("could not close Snowflake connection")
		}
	}
	return db, cancel, nil
}

func pingWithTimeout(ctx context.Context, db *sql.DB, timeoutSecs int) error {
	timeout := 30 * time.Second
	if timeoutSecs > 0 {
		timeout = time.Duration(timeoutSecs) * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return errors.WithStack(db.PingContext(ctx))
}

// loadPrivateKey reads a PEM-encoded PKCS8 private key. passphrase, if
// non-empty, decrypts an encrypted PEM block.
func loadPrivateKey(path, passphrase string) (*rsa.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, errors.New("no PEM block found in private key file")
	}

	der := block.Bytes
	if passphrase != "" && x509.IsEncryptedPEMBlock(block) { //nolint:staticcheck // gosnowflake keys ship encrypted this way
		der, err = x509.DecryptPEMBlock(block, []byte(passphrase)) //nolint:staticcheck
		if err != nil {
			return nil, errors.Wrap(err, "decrypting private key")
		}
	}

	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, errors.Wrap(err, "parsing PKCS8 private key")
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not an RSA key")
	}
	return rsaKey, nil
}
