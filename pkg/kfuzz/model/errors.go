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

package model

import "fmt"

// InvalidParameterError is raised at construction time for a field or
// container configured with a self-contradictory parameter set (e.g.
// RandomBits with min > max).
type InvalidParameterError struct {
	Component string
	Reason    string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter for %s: %s", e.Component, e.Reason)
}

// UnresolvedDependencyError is raised when a calculated field's named
// dependency cannot be found by scope resolution (spec.md §4.4).
type UnresolvedDependencyError struct {
	CalculatedField string
	DependencyName  string
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("calculated field %q could not resolve dependency %q", e.CalculatedField, e.DependencyName)
}
