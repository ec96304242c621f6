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

// Package driver implements the reference fuzzing-session driver loop
// (spec.md §6 "Driver CLI surface", §7 "Error handling design") and the
// CLI flag surface it is configured from.
package driver

import (
	"fmt"

	"github.com/kraklabs/kfuzz/pkg/kfuzz/session"
)

// EnvironmentNotReadyError is returned when the pre-loop pristine-render
// self-test (spec.md §7 "environment self-test") does not come back
// passed, before any mutation is attempted.
type EnvironmentNotReadyError struct {
	Report session.Report
}

func (e *EnvironmentNotReadyError) Error() string {
	return fmt.Sprintf("environment not ready: status=%s reason=%s", e.Report.Status, e.Report.Reason)
}
