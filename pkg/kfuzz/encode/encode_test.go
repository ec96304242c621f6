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

package encode

import (
	"encoding/hex"
	"testing"

	"github.com/kraklabs/kfuzz/pkg/bitstring"
)

func TestStringIdentity(t *testing.T) {
	got, err := Identity().Encode([]byte("kitty"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hex() != hex.EncodeToString([]byte("kitty")) {
		t.Fatalf("got %q", got.Hex())
	}
}

func TestStringNullTerminated(t *testing.T) {
	got, err := NullTerminated().Encode([]byte("ab"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hex() != "616200" {
		t.Fatalf("got %q, want 616200", got.Hex())
	}
}

func TestStringUTF8Rejects(t *testing.T) {
	_, err := UTF8().Encode([]byte{0xff, 0xfe})
	if err == nil {
		t.Fatalf("expected error for invalid UTF-8")
	}
}

func TestIntegerRawBigEndian(t *testing.T) {
	enc, err := NewIntegerEncoder(16, false, BigEndian, RawBits)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	got, err := enc.Encode(0x1234)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got.Hex() != "1234" {
		t.Fatalf("got %q, want 1234", got.Hex())
	}
}

func TestIntegerRawLittleEndian(t *testing.T) {
	enc, err := NewIntegerEncoder(16, false, LittleEndian, RawBits)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	got, err := enc.Encode(0x1234)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got.Hex() != "3412" {
		t.Fatalf("got %q, want 3412", got.Hex())
	}
}

func TestIntegerRawLittleEndianNotByteAligned(t *testing.T) {
	enc, err := NewIntegerEncoder(12, false, LittleEndian, RawBits)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	got, err := enc.Encode(0xABC)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got.Len() != 12 {
		t.Fatalf("got %d bits, want 12", got.Len())
	}
	want := bitstring.FromBits([]byte{0xC0, 0xA0}, 12)
	if !got.Equal(want) {
		t.Fatalf("got %q, want %q", got.Hex(), want.Hex())
	}
}

func TestIntegerOutOfRange(t *testing.T) {
	enc, _ := NewIntegerEncoder(8, false, BigEndian, RawBits)
	if _, err := enc.Encode(256); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

func TestIntegerSignedVarintUnsupported(t *testing.T) {
	if _, err := NewIntegerEncoder(32, true, BigEndian, Varint7); err == nil {
		t.Fatalf("expected UnsupportedEncodingError for signed varint")
	}
}

func TestIntegerVarint7RoundTripShape(t *testing.T) {
	enc, _ := NewIntegerEncoder(32, false, LittleEndian, Varint7)
	got, err := enc.Encode(300) // 300 = 0b100101100 -> groups 0x2C,0x02
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{0x2C | 0x80, 0x02}
	if got.Hex() != hex.EncodeToString(want) {
		t.Fatalf("got %q, want %x", got.Hex(), want)
	}
}

func TestIntegerASCIIDecimal(t *testing.T) {
	enc, _ := NewIntegerEncoder(16, false, NoneEndian, ASCIIDecimal)
	got, err := enc.Encode(42)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got.Hex() != hex.EncodeToString([]byte("42")) {
		t.Fatalf("got %q", got.Hex())
	}
}

func TestBitsByteAlignedPads(t *testing.T) {
	in := bitstring.FromBits([]byte{0xF0}, 4)
	got, err := ByteAligned().Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", got.Len())
	}
}

func TestDESKnownAnswer(t *testing.T) {
	key, _ := hex.DecodeString("133457799BBCDFF1")
	plain, _ := hex.DecodeString("0123456789ABCDEF")
	block, err := newDESBlock(key)
	if err != nil {
		t.Fatalf("newDESBlock: %v", err)
	}
	out := make([]byte, 8)
	block.Encrypt(out, plain)
	if got := hex.EncodeToString(out); got != "85e813540f0ab405" {
		t.Fatalf("DES KAT mismatch: got %s, want 85e813540f0ab405", got)
	}
}

func TestCipherAESCBCDeterministic(t *testing.T) {
	key := []byte("0123456789abcdef")
	c := &CipherEncoder{
		Algorithm: AES,
		Mode:      CBC,
		KeyFn:     func() []byte { return key },
		IV:        make([]byte, 16),
	}
	a, err := c.Encode([]byte("hello world"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, err := c.Encode([]byte("hello world"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("expected deterministic ciphertext for deterministic key provider")
	}
}
