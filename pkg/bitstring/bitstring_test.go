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

package bitstring

import "testing"

func TestFromBytesRoundTrip(t *testing.T) {
	b := FromBytes([]byte{0x12, 0x34})
	if b.Len() != 16 {
		t.Fatalf("Len() = %d, want 16", b.Len())
	}
	if !b.IsByteAligned() {
		t.Fatalf("expected byte aligned")
	}
	if got := b.Hex(); got != "1234" {
		t.Fatalf("Hex() = %q, want 1234", got)
	}
}

func TestFromBitsClearsTrailing(t *testing.T) {
	// 0xFF with only 4 bits requested should render as 0xF0, not 0xFF.
	b := FromBits([]byte{0xFF}, 4)
	if b.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", b.Len())
	}
	if b.IsByteAligned() {
		t.Fatalf("expected non-aligned")
	}
	if got := b.PadToByte().Hex(); got != "f0" {
		t.Fatalf("PadToByte().Hex() = %q, want f0", got)
	}
}

func TestConcatByteAligned(t *testing.T) {
	a := FromBytes([]byte{0x12})
	b := FromBytes([]byte{0x34})
	got := a.Concat(b)
	if got.Len() != 16 {
		t.Fatalf("Len() = %d, want 16", got.Len())
	}
	if got.Hex() != "1234" {
		t.Fatalf("Hex() = %q, want 1234", got.Hex())
	}
}

func TestConcatUnaligned(t *testing.T) {
	a := FromBits([]byte{0xF0}, 4) // 1111
	b := FromBits([]byte{0x0F}, 4) // 1111 shifted: top 4 bits of 0x0F are 0000
	got := a.Concat(b)
	if got.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", got.Len())
	}
	// a contributes bits 1111, b contributes its top 4 bits which are 0000.
	if got.Hex() != "f0" {
		t.Fatalf("Hex() = %q, want f0", got.Hex())
	}
}

func TestSlice(t *testing.T) {
	b := FromBytes([]byte{0xAB, 0xCD})
	got := b.Slice(4, 12)
	if got.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", got.Len())
	}
	if got.Hex() != "bc" {
		t.Fatalf("Hex() = %q, want bc", got.Hex())
	}
}

func TestReverse(t *testing.T) {
	b := FromBytes([]byte{0x80}) // 1000 0000
	got := b.Reverse()
	if got.Hex() != "01" {
		t.Fatalf("Hex() = %q, want 01", got.Hex())
	}
}

func TestEqual(t *testing.T) {
	a := FromBits([]byte{0xF0}, 4)
	b := FromBits([]byte{0xFF}, 4)
	if !a.Equal(b) {
		t.Fatalf("expected equal bitstrings with same logical content")
	}
}

func TestEmptyConcatIdentity(t *testing.T) {
	a := FromBytes([]byte{0x01})
	if !Empty().Concat(a).Equal(a) {
		t.Fatalf("Empty().Concat(a) != a")
	}
	if !a.Concat(Empty()).Equal(a) {
		t.Fatalf("a.Concat(Empty()) != a")
	}
}
