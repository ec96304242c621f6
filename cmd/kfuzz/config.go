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

package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk fuzzer configuration (target, session store and
// metrics settings; payload files are not configured here), the same
// yaml.v3-backed shape cmd/cie uses for .cie/project.yaml.
type Config struct {
	Target  TargetConfig  `yaml:"target"`
	Store   StoreConfig   `yaml:"store"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
}

// TargetConfig addresses the demo TCP target.
type TargetConfig struct {
	Addr    string        `yaml:"addr"`
	Timeout time.Duration `yaml:"timeout"`
}

// StoreConfig selects and configures the session.Store backend.
type StoreConfig struct {
	// Backend is one of "memory", "file", "sqlite".
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// MetricsConfig configures the optional Prometheus exporter.
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

func defaultConfig() Config {
	return Config{
		Target: TargetConfig{Addr: "127.0.0.1:9000", Timeout: 2 * time.Second},
		Store:  StoreConfig{Backend: "memory"},
	}
}

// loadConfig reads path as YAML, falling back to defaultConfig() when path
// is empty or the file does not exist.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
