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

	"github.com/cespare/xxhash/v2"
	"github.com/kraklabs/kfuzz/internal/assert"
	"github.com/kraklabs/kfuzz/pkg/bitstring"
	"github.com/kraklabs/kfuzz/pkg/kfuzz/encode"
)

// fieldCore is embedded by the library-backed leaf fields (Static, String,
// Delimiter, Group, BitField); Dynamic and RandomBits/RandomBytes keep
// their own index state instead. It owns the one piece of
// mutation state every field shares: "which entry of my mutation library am
// I currently on" (spec.md §3 "Field node" invariant (i): -1 means Default).
type fieldCore struct {
	base
	fuzzable     bool
	lib          *MutationLibrary
	currentIndex int

	lastRendered bitstring.Bitstring
}

func newFieldCore(name string, fuzzable bool, lib *MutationLibrary) fieldCore {
	return fieldCore{base: newBase(name), fuzzable: fuzzable, lib: lib, currentIndex: -1}
}

func (f *fieldCore) NumMutations() int {
	if !f.fuzzable || f.lib == nil {
		return 0
	}
	return f.lib.Size()
}

func (f *fieldCore) CurrentIndex() int { return f.currentIndex }

func (f *fieldCore) Mutate() bool {
	if f.NumMutations() == 0 {
		return false
	}
	if f.currentIndex+1 >= f.lib.Size() {
		return false
	}
	f.currentIndex++
	return true
}

func (f *fieldCore) Skip(n int) int {
	if n <= 0 || f.NumMutations() == 0 {
		return 0
	}
	remaining := f.lib.Size() - 1 - f.currentIndex
	steps := n
	if steps > remaining {
		steps = remaining
	}
	if steps < 0 {
		steps = 0
	}
	f.currentIndex += steps
	return steps
}

func (f *fieldCore) Reset() { f.currentIndex = -1 }

// currentLibraryBytes returns the active mutation's raw bytes, or nil if
// the field is still at Default (caller substitutes its own default value).
func (f *fieldCore) currentLibraryBytes() ([]byte, bool) {
	if f.currentIndex < 0 || f.lib == nil {
		return nil, false
	}
	return f.lib.Get(f.currentIndex), true
}

// named is the minimal shape path() needs - satisfied by *fieldCore and by
// every Container.
type named interface {
	Name() string
	Enclosing() Container
}

// path walks the enclosing chain to build a "/"-joined path, mirroring the
// original system's dotted field paths (kitty/model/low_level/field.py
// get_name()).
func path(n named) string {
	if n == nil {
		return ""
	}
	parent := n.Enclosing()
	if parent == nil {
		return n.Name()
	}
	return path(parent) + "/" + n.Name()
}

func (f *fieldCore) info(raw []byte) Info {
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

// mustEncodeString applies a string encoder, asserting success: once a
// field's construction-time parameters are valid (spec.md §4.1 "Encoders"
// guarantees encode fails deterministically, only for conditions that
// construction-time validation already rules out), a runtime encode
// failure is an engine bug, not a user-facing error (spec.md §4.5
// "Runtime rendering does not fail barring a logic bug").
func mustEncodeString(enc encode.StringEncoder, v []byte) bitstring.Bitstring {
	bs, err := enc.Encode(v)
	assert.Postcondition(err == nil, "string encoder %q failed at render time: %v", enc.Name(), err)
	return bs
}

// mustEncodeBits applies a bits encoder with the same runtime-infallibility
// assertion as mustEncodeString.
func mustEncodeBits(enc encode.BitsEncoder, v bitstring.Bitstring) bitstring.Bitstring {
	bs, err := enc.Encode(v)
	assert.Postcondition(err == nil, "bits encoder %q failed at render time: %v", enc.Name(), err)
	return bs
}

// hashFields folds a field's identifying parameters into one fingerprint.
// Used by every concrete Hash() implementation (spec.md §3 "Hash").
func hashFields(kind string, fuzzable bool, parts ...[]byte) uint64 {
	h := xxhash.New()
	h.WriteString(kind)
	h.WriteByte(0)
	if fuzzable {
		h.WriteByte(1)
	} else {
		h.WriteByte(0)
	}
	var lenBuf [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(p)))
		h.Write(lenBuf[:])
		h.Write(p)
	}
	return h.Sum64()
}
