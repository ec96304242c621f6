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
	"math/rand"

	"github.com/kraklabs/kfuzz/pkg/bitstring"
	"github.com/kraklabs/kfuzz/pkg/kfuzz/encode"
)

// randomCore is shared by RandomBits and RandomBytes: both are seeded,
// reproducible random sequences over a length range, in two modes - a
// fixed mutation count drawing a random length per mutation, or a step
// that walks lengths deterministically (spec.md §4.2 "RandomBits /
// RandomBytes"). minLength/maxLength/step are expressed in the field's own
// unit (bits for RandomBits, bytes for RandomBytes, whose renderSelf
// multiplies by 8) while content is always generated in bits.
type randomCore struct {
	base
	fuzzable             bool
	minLength, maxLength int
	step                 int
	fixedCount           int
	seed                 int64
	encoder              encode.BitsEncoder

	currentIndex int
	lastRendered bitstring.Bitstring
}

func newRandomCore(name string, fuzzable bool, minLength, maxLength, step, fixedCount int, seed int64, enc encode.BitsEncoder) randomCore {
	if minLength < 0 {
		panic(&InvalidParameterError{Component: name, Reason: "min_length must be >= 0"})
	}
	if maxLength <= 0 {
		panic(&InvalidParameterError{Component: name, Reason: "max_length must be > 0"})
	}
	if minLength > maxLength {
		panic(&InvalidParameterError{Component: name, Reason: "min_length must be <= max_length"})
	}
	if step < 0 {
		panic(&InvalidParameterError{Component: name, Reason: "step must be >= 0"})
	}
	return randomCore{
		base: newBase(name), fuzzable: fuzzable,
		minLength: minLength, maxLength: maxLength, step: step, fixedCount: fixedCount,
		seed: seed, encoder: enc, currentIndex: -1,
	}
}

func (f *randomCore) NumMutations() int {
	if !f.fuzzable {
		return 0
	}
	if f.step > 0 {
		n := 0
		for l := f.minLength; l < f.maxLength; l += f.step {
			n++
		}
		return n
	}
	return f.fixedCount
}

func (f *randomCore) CurrentIndex() int { return f.currentIndex }

func (f *randomCore) Mutate() bool {
	if f.currentIndex+1 >= f.NumMutations() {
		return false
	}
	f.currentIndex++
	return true
}

func (f *randomCore) Skip(n int) int {
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

// Reset re-seeds: since length/content for index i is derived purely from
// (seed, i) rather than replayed draws, "re-seeding" is implicit - Reset
// only needs to rewind current_index (spec.md §4.2 "a reset re-seeds the
// generator so mutation i is identical across runs").
func (f *randomCore) Reset() { f.currentIndex = -1 }

func (f *randomCore) lengthAt(i int) int {
	if f.step > 0 {
		return f.minLength + i*f.step
	}
	gen := rand.New(rand.NewSource(f.seed ^ int64(i)*2654435761))
	span := f.maxLength - f.minLength + 1
	return f.minLength + gen.Intn(span)
}

// contentAt draws lengthBits of deterministic pseudo-random content for
// mutation index i, independent of the order in which indices are visited.
func contentAt(seed int64, i, lengthBits int) bitstring.Bitstring {
	gen := rand.New(rand.NewSource(seed ^ (int64(i)+1)*11400714819323198485))
	nbytes := (lengthBits + 7) / 8
	buf := make([]byte, nbytes)
	gen.Read(buf)
	return bitstring.FromBits(buf, lengthBits)
}

func (f *randomCore) Hash(kind string) uint64 {
	var buf [40]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(f.minLength))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(f.maxLength))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(f.step))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(f.fixedCount))
	binary.LittleEndian.PutUint64(buf[32:40], uint64(f.seed))
	return hashFields(kind, f.fuzzable, buf[:])
}

func (f *randomCore) info() Info {
	return Info{
		Path:           path(f),
		RawHex:         "",
		RawBase64:      "",
		RenderedHex:    f.lastRendered.Hex(),
		RenderedBase64: f.lastRendered.Base64(),
		OffsetBits:     f.Offset(),
		MutationIndex:  f.currentIndex,
		NumMutations:   f.NumMutations(),
	}
}

// RandomBits draws a seeded, reproducible bit sequence of variable length
// per mutation (spec.md §4.2 "RandomBits").
type RandomBits struct{ randomCore }

// NewRandomBits builds a RandomBits field. fixedCount is ignored when
// step > 0.
func NewRandomBits(name string, fuzzable bool, minLength, maxLength, step, fixedCount int, seed int64, enc encode.BitsEncoder) *RandomBits {
	return &RandomBits{newRandomCore(name, fuzzable, minLength, maxLength, step, fixedCount, seed, enc)}
}

func (f *RandomBits) Hash() uint64 { return f.randomCore.Hash("random_bits") }
func (f *RandomBits) Info() Info   { return f.randomCore.info() }

func (f *RandomBits) renderSelf(ctx *RenderContext) bitstring.Bitstring {
	lengthBits := f.minLength
	if f.currentIndex >= 0 {
		lengthBits = f.lengthAt(f.currentIndex)
	}
	content := contentAt(f.seed, f.currentIndex, lengthBits)
	f.lastRendered = mustEncodeBits(f.encoder, content)
	return f.lastRendered
}

// RandomBytes is RandomBits with lengths expressed in bytes.
type RandomBytes struct{ randomCore }

// NewRandomBytes builds a RandomBytes field; lengths are in bytes.
func NewRandomBytes(name string, fuzzable bool, minLength, maxLength, step, fixedCount int, seed int64, enc encode.BitsEncoder) *RandomBytes {
	return &RandomBytes{newRandomCore(name, fuzzable, minLength, maxLength, step, fixedCount, seed, enc)}
}

func (f *RandomBytes) Hash() uint64 { return f.randomCore.Hash("random_bytes") }
func (f *RandomBytes) Info() Info   { return f.randomCore.info() }

func (f *RandomBytes) renderSelf(ctx *RenderContext) bitstring.Bitstring {
	lengthBytes := f.minLength
	if f.currentIndex >= 0 {
		lengthBytes = f.lengthAt(f.currentIndex)
	}
	content := contentAt(f.seed, f.currentIndex, lengthBytes*8)
	f.lastRendered = mustEncodeBits(f.encoder, content)
	return f.lastRendered
}
