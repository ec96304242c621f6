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

package session

// Store is the opaque key/value abstraction the driver uses to persist a
// fuzzing run (spec.md §6 "Session store"). The engine never inspects the
// storage format; implementations may be in-memory, file-based, or backed
// by an embedded SQL engine.
type Store interface {
	// Start opens (creating if necessary) the session's backing storage.
	// Called once, before the first get_session_info/set_session_info.
	Start() error

	// GetSessionInfo returns the persisted run record, or ok=false if this
	// store has never been started with one (a fresh session).
	GetSessionInfo() (info Info, ok bool, err error)

	// SetSessionInfo persists the current run record. Called after every
	// test iteration to advance CurrentIndex/FailureCount.
	SetSessionInfo(info Info) error

	// StoreReport persists the Target's report for testIndex. Spec.md §6
	// requires storing at minimum the last stored report per *failed* test;
	// implementations may choose to store every report.
	StoreReport(testIndex int, report Report) error

	// GetReport retrieves a previously stored report, or ok=false if none
	// was stored for testIndex.
	GetReport(testIndex int) (report Report, ok bool, err error)

	// Get/Set expose the store as a general-purpose opaque key/value bag,
	// for driver- or target-specific bookkeeping beyond SessionInfo/Report.
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error

	// Close releases any held resources (file handles, DB connections).
	Close() error
}
