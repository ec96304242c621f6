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
	"bytes"

	"github.com/kraklabs/kfuzz/pkg/bitstring"
	"github.com/kraklabs/kfuzz/pkg/kfuzz/encode"
)

// String carries a byte-string default, a powers-of-default local library,
// and the shared class library of generic injection payloads (spec.md
// §4.2 "String").
type String struct {
	fieldCore
	Default []byte
	Encoder encode.StringEncoder
}

// NewString builds a String field. maxSize <= 0 means unbounded.
func NewString(name string, def []byte, enc encode.StringEncoder, fuzzable bool, maxSize int) *String {
	lib := NewMutationLibrary(localStringLibrary(def), StringClassLibrary(), sizeFilter(maxSize))
	return &String{fieldCore: newFieldCore(name, fuzzable, lib), Default: def, Encoder: enc}
}

// localStringLibrary builds the power-of-default and NUL-fenced variants
// named in spec.md §4.2: ×2, ×10, ×100 repeats of the default, plus the
// default with a NUL prepended and a NUL appended.
func localStringLibrary(def []byte) [][]byte {
	var out [][]byte
	for _, n := range []int{2, 10, 100} {
		out = append(out, bytes.Repeat(def, n))
	}
	out = append(out, append([]byte{0}, def...))
	out = append(out, append(append([]byte{}, def...), 0))
	return out
}

func sizeFilter(maxSize int) func([]byte) bool {
	if maxSize <= 0 {
		return func([]byte) bool { return true }
	}
	return func(v []byte) bool { return len(v) <= maxSize }
}

func (f *String) currentBytes() []byte {
	if v, ok := f.currentLibraryBytes(); ok {
		return v
	}
	return f.Default
}

func (f *String) Hash() uint64 {
	return hashFields("string", f.fuzzable, f.Default, []byte(f.Encoder.Name()))
}

func (f *String) Info() Info { return f.fieldCore.info(f.currentBytes()) }

func (f *String) renderSelf(ctx *RenderContext) bitstring.Bitstring {
	f.lastRendered = mustEncodeString(f.Encoder, f.currentBytes())
	return f.lastRendered
}

// Delimiter is shaped exactly like String but its shared class library is
// combinations of common delimiter characters and newline sequences
// (spec.md §4.2 "Delimiter") instead of generic injection payloads.
type Delimiter struct {
	fieldCore
	Default []byte
	Encoder encode.StringEncoder
}

// NewDelimiter builds a Delimiter field.
func NewDelimiter(name string, def []byte, enc encode.StringEncoder, fuzzable bool, maxSize int) *Delimiter {
	lib := NewMutationLibrary(localStringLibrary(def), delimiterPayloads(string(def)), sizeFilter(maxSize))
	return &Delimiter{fieldCore: newFieldCore(name, fuzzable, lib), Default: def, Encoder: enc}
}

func (f *Delimiter) currentBytes() []byte {
	if v, ok := f.currentLibraryBytes(); ok {
		return v
	}
	return f.Default
}

func (f *Delimiter) Hash() uint64 {
	return hashFields("delimiter", f.fuzzable, f.Default, []byte(f.Encoder.Name()))
}

func (f *Delimiter) Info() Info { return f.fieldCore.info(f.currentBytes()) }

func (f *Delimiter) renderSelf(ctx *RenderContext) bitstring.Bitstring {
	f.lastRendered = mustEncodeString(f.Encoder, f.currentBytes())
	return f.lastRendered
}
