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

package driver

import "github.com/prometheus/client_golang/prometheus"

// metrics groups the reference driver's Prometheus instrumentation,
// registered against a private registry so an embedding application can
// scrape kfuzz's counters without colliding with its own default registry
// (the same reasoning behind cmd/cie/index.go's own private --metrics-addr
// mux rather than serving on prometheus.DefaultRegisterer).
type Metrics struct {
	registry      *prometheus.Registry
	testsTotal    prometheus.Counter
	failuresTotal prometheus.Counter
	currentIndex  prometheus.Gauge
}

func newMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		testsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kfuzz_tests_total",
			Help: "Total number of tests run by the driver.",
		}),
		failuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kfuzz_failures_total",
			Help: "Total number of tests whose report status was failed.",
		}),
		currentIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kfuzz_current_index",
			Help: "Mutation index of the test currently or most recently run.",
		}),
	}
	reg.MustRegister(m.testsTotal, m.failuresTotal, m.currentIndex)
	return m
}

// Registry exposes the private registry so an embedding application can
// serve it (e.g. mounted at /metrics, mirroring cie index --metrics-addr).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
