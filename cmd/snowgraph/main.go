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

// Command snowgraph replicates Snowflake tables into a FalkorDB graph
// according to a declarative mapping config, either as a single pass or as
// a daemon that repeats on a fixed interval.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/snowgraph/snowgraph/internal/config"
	"github.com/snowgraph/snowgraph/internal/errs"
	"github.com/snowgraph/snowgraph/internal/metrics"
	"github.com/snowgraph/snowgraph/internal/orchestrator"
	"github.com/snowgraph/snowgraph/internal/planner"
	"github.com/snowgraph/snowgraph/internal/stopper"
	"github.com/snowgraph/snowgraph/internal/wiring"
	"github.com/spf13/pflag"
)

// cliConfig holds the flags the command accepts. Bind registers them;
// Preflight validates the parsed result, keeping the two concerns separate.
type cliConfig struct {
	ConfigPath   string
	PurgeGraph   bool
	PurgeMapping []string
	Daemon       bool
	IntervalSecs uint32
	DryRun       bool
	MetricsAddr  string
}

func (c *cliConfig) Bind(flags *pflag.FlagSet) {
	flags.StringVar(&c.ConfigPath, "config", "", "path to the mapping config file (YAML or JSON)")
	flags.BoolVar(&c.PurgeGraph, "purge-graph", false, "delete every node and relationship before syncing")
	flags.StringArrayVar(&c.PurgeMapping, "purge-mapping", nil, "delete a single mapping's nodes/relationships before syncing; repeatable")
	flags.BoolVar(&c.Daemon, "daemon", false, "run continuously, repeating the sync pass on --interval-secs")
	flags.Uint32Var(&c.IntervalSecs, "interval-secs", 0, "interval between daemon passes; required with --daemon")
	flags.BoolVar(&c.DryRun, "dry-run", false, "print the generated query plan for every mapping and exit, touching neither the warehouse nor the graph")
	flags.StringVar(&c.MetricsAddr, "metrics-addr", "0.0.0.0:9898", "address the metrics HTTP endpoint binds to")
}

func (c *cliConfig) Preflight() error {
	if c.ConfigPath == "" {
		return errs.New(errs.KindConfig, errs.ConfigValidate, "--config is required")
	}
	if c.Daemon && c.IntervalSecs == 0 {
		return errs.New(errs.KindConfig, errs.ConfigValidate, "--interval-secs is required with --daemon")
	}
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	configureLogging()

	cli := &cliConfig{}
	cli.Bind(pflag.CommandLine)
	pflag.Parse()

	if err := cli.Preflight(); err != nil {
		logrus.WithError(err).Error("invalid command line")
		return 1
	}

	cfg, err := config.Load(cli.ConfigPath)
	if err != nil {
		logrus.WithError(err).Error("failed to load config")
		return 1
	}

	if cli.DryRun {
		return runDryRun(cfg)
	}

	ctx := context.Background()
	engine, cleanup, err := wiring.BuildEngine(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to start")
		return 1
	}
	defer cleanup()

	metricsServer := metrics.NewServer(cli.MetricsAddr)
	metricsServer.Start()

	opts := orchestrator.RunOptions{PurgeAll: cli.PurgeGraph, PurgeMappings: cli.PurgeMapping}

	if cli.Daemon {
		st := stopper.New()
		if err := engine.Orchestrator.RunDaemon(st.Context(), st, opts, secondsToDuration(cli.IntervalSecs)); err != nil {
			logrus.WithError(err).Error("daemon loop exited with error")
			return 1
		}
		return 0
	}

	result, err := engine.Orchestrator.Run(ctx, opts)
	if err != nil {
		logrus.WithError(err).Error("run failed")
		if _, ok := errs.As(err, errs.KindConfig); ok {
			return 1
		}
		return 2
	}
	if result.Failed {
		return 2
	}
	return 0
}

// runDryRun plans every mapping without touching the warehouse or the
// graph, and prints the generated SQL and bound parameters. It never needs
// the wired Engine, since planning only consumes config and an (empty)
// prior watermark.
func runDryRun(cfg *config.Config) int {
	for i := range cfg.Mappings {
		m := &cfg.Mappings[i]
		plan, err := planner.Plan(m, nil)
		if err != nil {
			logrus.WithError(err).WithField("mapping", m.Name).Error("failed to plan mapping")
			return 1
		}
		fmt.Printf("-- mapping: %s (mode=%v)\n%s\n", m.Name, plan.Mode, plan.SQL)
		if len(plan.Parameters) > 0 {
			fmt.Printf("-- parameters: %v\n", plan.Parameters)
		}
	}
	return 0
}

func configureLogging() {
	level, err := logrus.ParseLevel(os.Getenv("SNOWGRAPH_LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func secondsToDuration(s uint32) time.Duration {
	return time.Duration(s) * time.Second
}
