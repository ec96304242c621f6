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
	"encoding/binary"

	"github.com/kraklabs/kfuzz/internal/assert"
	"github.com/kraklabs/kfuzz/pkg/bitstring"
	"github.com/kraklabs/kfuzz/pkg/kfuzz/encode"
)

// BitField is a fixed-length signed or unsigned integer with an optional
// explicit [MinValue, MaxValue] range (spec.md §4.2 "BitField"). Its
// mutation library is materialised over 8-byte big-endian encodings of the
// int64 candidate values so it can reuse the generic MutationLibrary
// dedup/filter machinery that every other field uses; encodeInt64/
// decodeInt64 convert at the boundary.
type BitField struct {
	fieldCore
	Default  int64
	MinValue int64
	MaxValue int64
	Encoder  *encode.IntegerEncoder
}

// NewBitField builds a BitField. minValue/maxValue bound the shared-library
// probe grid and the post-generation range filter; they do not themselves
// constrain Default.
func NewBitField(name string, def, minValue, maxValue int64, enc *encode.IntegerEncoder, fuzzable bool) *BitField {
	assert.Precondition(minValue <= maxValue, "BitField %q: min_value must be <= max_value", name)
	local := bitFlipLibrary(def, enc.BitLength)
	shared := bitFieldGrid(def, minValue, maxValue)
	rangeFilter := func(v []byte) bool {
		n := decodeInt64(v)
		return n >= minValue && n <= maxValue
	}
	lib := NewMutationLibrary(local, shared, rangeFilter)
	return &BitField{
		fieldCore: newFieldCore(name, fuzzable, lib),
		Default:   def, MinValue: minValue, MaxValue: maxValue,
		Encoder: enc,
	}
}

func encodeInt64(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func decodeInt64(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}

// bitFlipLibrary flips each bit of def's low `bits` positions individually.
func bitFlipLibrary(def int64, bits int) [][]byte {
	out := make([][]byte, 0, bits)
	for i := 0; i < bits; i++ {
		out = append(out, encodeInt64(def^(int64(1)<<uint(i))))
	}
	return out
}

// bitFieldGrid builds the deterministic probe grid named in spec.md §4.2:
// five values at each boundary, four interior quartile cut-points (each
// with a ±4 neighbourhood), off-by-N around the default, plus any values
// from kitty_integers.txt.
func bitFieldGrid(def, min, max int64) [][]byte {
	var out [][]byte
	addNeighbourhood := func(center int64, span int) {
		for d := -span; d <= span; d++ {
			out = append(out, encodeInt64(center+int64(d)))
		}
	}
	addNeighbourhood(min, 2)
	addNeighbourhood(max, 2)

	span := max - min
	for _, frac := range []float64{0.2, 0.4, 0.6, 0.8} {
		cut := min + int64(float64(span)*frac)
		addNeighbourhood(cut, 4)
	}
	addNeighbourhood(def, 4)

	for _, v := range IntegerClassLibrary() {
		out = append(out, encodeInt64(v))
	}
	return out
}

func (f *BitField) currentValue() int64 {
	if v, ok := f.currentLibraryBytes(); ok {
		return decodeInt64(v)
	}
	return f.Default
}

func (f *BitField) Hash() uint64 {
	encParams := []byte{byte(f.Encoder.Endian), byte(f.Encoder.Encoding), 0}
	if f.Encoder.Signed {
		encParams[2] = 1
	}
	return hashFields("bitfield", f.fuzzable, encodeInt64(f.Default), encodeInt64(f.MinValue), encodeInt64(f.MaxValue),
		encodeInt64(int64(f.Encoder.BitLength)), encParams)
}

func (f *BitField) Info() Info { return f.fieldCore.info(encodeInt64(f.currentValue())) }

func (f *BitField) renderSelf(ctx *RenderContext) bitstring.Bitstring {
	bs, err := f.Encoder.Encode(f.currentValue())
	assert.Postcondition(err == nil, "BitField %q failed to encode its own current (already range-checked) value: %v", f.Name(), err)
	f.lastRendered = bs
	return bs
}
