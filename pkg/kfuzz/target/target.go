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

// Package target defines the contract between the driver and the system
// under test (spec.md §6 "External interfaces"): the Target lifecycle, the
// session-data callback for client-style SUTs, and thin reference
// Controller/Monitor collaborators.
package target

import (
	"context"

	"github.com/kraklabs/kfuzz/pkg/bitstring"
	"github.com/kraklabs/kfuzz/pkg/kfuzz/session"
)

// Target is implemented by the system-under-test adapter. The driver calls
// these in order: Setup once, then per test PreTest, then either Transmit
// (server-style SUTs, the driver pushes the rendered payload) or Trigger
// (client-style SUTs, which pull payloads via a registered Provider), then
// PostTest, then GetReport. Teardown is called once at the end (spec.md §6
// "Target contract").
type Target interface {
	// Setup prepares the SUT for fuzzing (starting a process, opening a
	// connection). Called once before the first test.
	Setup(ctx context.Context) error

	// PreTest is called immediately before test index is transmitted or
	// triggered, e.g. to reset per-test SUT state.
	PreTest(ctx context.Context, index int) error

	// Transmit pushes payload to the SUT directly. Mutually exclusive with
	// Trigger for a given Target implementation; a server-style Target
	// implements Transmit and returns ErrNotSupported from Trigger (or vice
	// versa).
	Transmit(ctx context.Context, payload bitstring.Bitstring) error

	// Trigger asks a client-style SUT to pull its own payload via the
	// session-data callback (see Provider) rather than being pushed one.
	Trigger(ctx context.Context) error

	// PostTest is called after the SUT has processed the test, before the
	// report is collected.
	PostTest(ctx context.Context, index int) error

	// GetReport returns the structured outcome of the most recent test.
	GetReport(ctx context.Context) (session.Report, error)

	// Teardown releases any resources Setup acquired. Called once, always,
	// even if the session ends early (max failures, cancellation).
	Teardown(ctx context.Context) error
}

// Controller is a thin reference collaborator that can restart or
// health-check the SUT out of band from the Target lifecycle - e.g. to
// recover a crashed process between tests. It is optional; drivers that
// don't need it simply never construct one.
type Controller interface {
	// Restart brings the SUT back to a known-good state.
	Restart(ctx context.Context) error
	// IsAlive reports whether the SUT currently appears healthy.
	IsAlive(ctx context.Context) bool
}

// Monitor is a thin reference collaborator that watches the SUT
// asynchronously (a log tail, a crash dump watcher) and surfaces failures
// the Target's own PostTest/GetReport pair would otherwise miss.
type Monitor interface {
	// Start begins watching. Called once, alongside Target.Setup.
	Start(ctx context.Context) error
	// Failures returns reports observed since the last call. A Report
	// carries no test index, so failures are not attributed to tests.
	Failures() []session.Report
	// Stop ends watching. Called once, alongside Target.Teardown.
	Stop(ctx context.Context) error
}
