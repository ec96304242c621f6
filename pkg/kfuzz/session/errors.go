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

// Package session provides the opaque key/value persistence abstraction the
// driver uses to track a fuzzing run (spec.md §6 "Session store", §9 design
// note "should be an opaque key/value abstraction; do not leak the storage
// format into the engine").
package session

import "fmt"

// IncompatibleError is raised when a resumed session's stored template hash
// does not match the template being run (spec.md §8 scenario 6).
type IncompatibleError struct {
	StoredHash  uint64
	CurrentHash uint64
	StoredName  string
	CurrentName string
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("session is incompatible: stored template %q (hash %d) does not match current template %q (hash %d)",
		e.StoredName, e.StoredHash, e.CurrentName, e.CurrentHash)
}
