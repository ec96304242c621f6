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

import (
	"github.com/kraklabs/kfuzz/pkg/bitstring"
	"github.com/kraklabs/kfuzz/pkg/kfuzz/encode"
)

// Group picks its mutation from a caller-supplied list of alternative byte
// strings; its shared class library is empty (spec.md §4.2 "Group").
type Group struct {
	fieldCore
	Default []byte
	Encoder encode.StringEncoder
}

// NewGroup builds a Group field whose mutation library is exactly
// alternatives, deduplicated in declaration order.
func NewGroup(name string, def []byte, alternatives [][]byte, enc encode.StringEncoder, fuzzable bool) *Group {
	lib := NewMutationLibrary(alternatives, nil)
	return &Group{fieldCore: newFieldCore(name, fuzzable, lib), Default: def, Encoder: enc}
}

func (f *Group) currentBytes() []byte {
	if v, ok := f.currentLibraryBytes(); ok {
		return v
	}
	return f.Default
}

func (f *Group) Hash() uint64 {
	return hashFields("group", f.fuzzable, f.Default, []byte(f.Encoder.Name()))
}

func (f *Group) Info() Info { return f.fieldCore.info(f.currentBytes()) }

func (f *Group) renderSelf(ctx *RenderContext) bitstring.Bitstring {
	f.lastRendered = mustEncodeString(f.Encoder, f.currentBytes())
	return f.lastRendered
}
