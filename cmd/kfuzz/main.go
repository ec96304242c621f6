// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main implements the kfuzz CLI, a thin demo binary over
// pkg/kfuzz/driver wired against a worked-example TCP target.
//
// Usage:
//
//	kfuzz run [driver flags]   Drive the demo "echo" template against a TCP target
//	kfuzz --version            Show version and exit
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kraklabs/kfuzz/pkg/kfuzz/driver"
	"github.com/kraklabs/kfuzz/pkg/kfuzz/session"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		configPath  = flag.StringP("config", "c", "", "Path to kfuzz.yaml (default: built-in demo config)")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		metricsAddr = flag.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	)

	flag.SetInterspersed(false)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `kfuzz - a deterministic generation-based network fuzzer

Usage:
  kfuzz <command> [options]

Commands:
  run    Drive the demo "echo" template against a TCP target

Global Options:
  -c, --config         Path to kfuzz.yaml
  --no-color           Disable color output (respects NO_COLOR env var)
  --metrics-addr       HTTP listen address for Prometheus metrics
  -V, --version        Show version and exit

Run options (kfuzz run [options]):
  --delay              Seconds to sleep after each post_test
  --start              First mutation index to run (inclusive)
  --end                Last mutation index to run (exclusive)
  --session            Path to the session store
  --no-env-test        Skip the pristine-render environment self-test

`)
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("kfuzz version %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("kfuzz.config", "error", err)
		os.Exit(1)
	}

	switch command := args[0]; command {
	case "run":
		os.Exit(runCommand(args[1:], cfg, *noColor, *metricsAddr, logger))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runCommand(args []string, cfg Config, noColor bool, metricsAddr string, logger *slog.Logger) int {
	opts, err := driver.ParseCLI(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kfuzz run: %v\n", err)
		return 1
	}
	if opts.Session != "" {
		cfg.Store.Backend = "file"
		cfg.Store.Path = opts.Session
	}

	store, err := buildStore(cfg.Store, logger)
	if err != nil {
		logger.Error("kfuzz.store", "error", err)
		return 1
	}

	tmpl := buildEchoTemplate()
	tgt := newTCPTarget(cfg.Target.Addr, cfg.Target.Timeout, logger)

	driverCfg := opts.ToConfig(isTerminalStdout(), noColor)
	d := driver.New(tmpl, tgt, store, driverCfg, logger)

	if metricsAddr == "" {
		metricsAddr = cfg.Metrics.Addr
	}
	if metricsAddr != "" {
		go serveMetrics(metricsAddr, d.Metrics(), logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("kfuzz.run.interrupt")
		cancel()
	}()

	result, err := d.Run(ctx)
	if err != nil {
		logger.Error("kfuzz.run", "status", result.Status, "error", err)
		return 1
	}

	fmt.Printf("kfuzz run: status=%s tests=%d failures=%d last_index=%d\n",
		result.Status, result.TestsRun, result.FailureCount, result.LastIndex)
	if result.Status == driver.StatusMaxFailuresReached {
		return 2
	}
	return 0
}

func buildStore(cfg StoreConfig, logger *slog.Logger) (session.Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return session.NewMemoryStore(), nil
	case "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("store backend %q requires a path", cfg.Backend)
		}
		return session.NewFileStore(cfg.Path, logger), nil
	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("store backend %q requires a path", cfg.Backend)
		}
		return session.NewSQLiteStore(cfg.Path, logger), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func serveMetrics(addr string, m *driver.Metrics, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	logger.Info("kfuzz.metrics.start", "addr", addr, "path", "/metrics")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Warn("kfuzz.metrics.error", "error", err)
	}
}

func isTerminalStdout() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
