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

// MutationLibrary merges a field's local library (derived from its
// default) and a shared class library (generic payloads) into one
// virtual, deduplicated, filterable list (spec.md §3 "Mutation library").
//
// Filtering (e.g. max_size) marks entries as skipped without renumbering
// the rest: Size() and Get() only ever see the filtered, dense view.
type MutationLibrary struct {
	entries [][]byte
	active  []int // indices into entries that survive all filters, in order
}

// NewMutationLibrary builds the deduplicated, filtered virtual list. local
// entries take priority over shared entries when both contain the same
// value (the first occurrence wins and later duplicates are dropped
// entirely, from whichever list they came from).
func NewMutationLibrary(local, shared [][]byte, filters ...func([]byte) bool) *MutationLibrary {
	seen := make(map[string]bool, len(local)+len(shared))
	entries := make([][]byte, 0, len(local)+len(shared))
	for _, v := range local {
		if k := string(v); !seen[k] {
			seen[k] = true
			entries = append(entries, v)
		}
	}
	for _, v := range shared {
		if k := string(v); !seen[k] {
			seen[k] = true
			entries = append(entries, v)
		}
	}

	active := make([]int, 0, len(entries))
	for i, v := range entries {
		keep := true
		for _, f := range filters {
			if !f(v) {
				keep = false
				break
			}
		}
		if keep {
			active = append(active, i)
		}
	}
	return &MutationLibrary{entries: entries, active: active}
}

// Size is the library's effective (post-filter) mutation count.
func (m *MutationLibrary) Size() int { return len(m.active) }

// Get returns the i-th effective (post-filter) entry, 0 <= i < Size().
func (m *MutationLibrary) Get(i int) []byte { return m.entries[m.active[i]] }
