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

// Static never mutates: num_mutations is always 0, render always produces
// the encoded default (spec.md §4.2 "Static").
type Static struct {
	fieldCore
	Default []byte
	Encoder encode.StringEncoder
}

// NewStatic builds a non-fuzzable field that always renders Encoder(Default).
func NewStatic(name string, def []byte, enc encode.StringEncoder) *Static {
	return &Static{
		fieldCore: newFieldCore(name, false, NewMutationLibrary(nil, nil)),
		Default:   def,
		Encoder:   enc,
	}
}

func (f *Static) Hash() uint64 {
	return hashFields("static", false, f.Default, []byte(f.Encoder.Name()))
}

func (f *Static) Info() Info { return f.fieldCore.info(f.Default) }

func (f *Static) renderSelf(ctx *RenderContext) bitstring.Bitstring {
	f.lastRendered = mustEncodeString(f.Encoder, f.Default)
	return f.lastRendered
}
