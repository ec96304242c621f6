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
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"

	"github.com/kraklabs/kfuzz/internal/assert"
	"github.com/kraklabs/kfuzz/pkg/bitstring"
	"github.com/kraklabs/kfuzz/pkg/kfuzz/encode"
)

// SessionData is the runtime key/value dictionary a Dynamic field reads its
// base value from (spec.md §4.2 "Dynamic", §6 "session-data callback").
type SessionData interface {
	Get(key string) []byte
}

// Dynamic fields take their base value from SessionData at render time
// rather than owning a fixed default. Unlike every other field its mutation
// space is not a materialised library: when fuzzable with an explicit byte
// Length, mutation i flips bit i of whatever the current session-data value
// is (spec.md §4.2 "Dynamic").
type Dynamic struct {
	base
	Key      string
	Length   int // bytes; 0 means length is not fixed and the field is not fuzzable
	Fuzzable bool
	Data     SessionData
	Encoder  encode.BitsEncoder

	currentIndex int
	lastRendered bitstring.Bitstring
}

// NewDynamic builds a Dynamic field bound to key in data.
func NewDynamic(name, key string, length int, fuzzable bool, data SessionData, enc encode.BitsEncoder) *Dynamic {
	assert.NotNil(data, "Dynamic field SessionData")
	return &Dynamic{
		base: newBase(name), Key: key, Length: length, Fuzzable: fuzzable,
		Data: data, Encoder: enc, currentIndex: -1,
	}
}

func (f *Dynamic) NumMutations() int {
	if !f.Fuzzable || f.Length <= 0 {
		return 0
	}
	return f.Length * 8
}

func (f *Dynamic) CurrentIndex() int { return f.currentIndex }

func (f *Dynamic) Mutate() bool {
	if f.currentIndex+1 >= f.NumMutations() {
		return false
	}
	f.currentIndex++
	return true
}

func (f *Dynamic) Skip(n int) int {
	if n <= 0 {
		return 0
	}
	remaining := f.NumMutations() - 1 - f.currentIndex
	if remaining < 0 {
		remaining = 0
	}
	steps := n
	if steps > remaining {
		steps = remaining
	}
	f.currentIndex += steps
	return steps
}

func (f *Dynamic) Reset() { f.currentIndex = -1 }

func (f *Dynamic) Hash() uint64 {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(f.Length))
	return hashFields("dynamic", f.Fuzzable, []byte(f.Key), lenBuf[:])
}

func (f *Dynamic) currentValue() []byte {
	raw := f.Data.Get(f.Key)
	if f.currentIndex < 0 {
		return raw
	}
	mutated := make([]byte, len(raw))
	copy(mutated, raw)
	flipBit(mutated, f.currentIndex)
	return mutated
}

// flipBit toggles bit i of b, counting from the most-significant bit of
// b[0], matching bitstring's MSB-first bit numbering.
func flipBit(b []byte, i int) {
	byteIdx, bitIdx := i/8, i%8
	if byteIdx >= len(b) {
		return
	}
	b[byteIdx] ^= 1 << uint(7-bitIdx)
}

func (f *Dynamic) Info() Info {
	raw := f.currentValue()
	return Info{
		Path:           path(f),
		RawHex:         hex.EncodeToString(raw),
		RawBase64:      base64.StdEncoding.EncodeToString(raw),
		RenderedHex:    f.lastRendered.Hex(),
		RenderedBase64: f.lastRendered.Base64(),
		OffsetBits:     f.Offset(),
		MutationIndex:  f.currentIndex,
		NumMutations:   f.NumMutations(),
	}
}

func (f *Dynamic) renderSelf(ctx *RenderContext) bitstring.Bitstring {
	f.lastRendered = mustEncodeBits(f.Encoder, bitstring.FromBytes(f.currentValue()))
	return f.lastRendered
}
