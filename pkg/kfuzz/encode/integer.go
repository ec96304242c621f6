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
	"strconv"

	"github.com/kraklabs/kfuzz/pkg/bitstring"
)

// Endianness selects byte order for raw-bits integer encoding.
type Endianness int

const (
	BigEndian Endianness = iota
	LittleEndian
	// NoneEndian applies when the value fits in a single byte or the
	// encoding (ASCII, varint) does not use byte order at all.
	NoneEndian
)

// IntegerEncoding selects the wire representation of an integer field.
type IntegerEncoding int

const (
	RawBits IntegerEncoding = iota
	ASCIIDecimal
	ASCIIHex
	// Varint7 is a 7-bit-per-byte continuation-bit varint. Only unsigned
	// values are supported; see spec.md §4.1 and §9 open question (iii).
	// This implementation clears the continuation bit on the last byte
	// rendered (see encodeVarint7), pinning that open question towards a
	// self-terminating stream.
	Varint7
)

// IntegerEncoder renders a fixed-width integer value to a bitstring.
type IntegerEncoder struct {
	BitLength int
	Signed    bool
	Endian    Endianness
	Encoding  IntegerEncoding
}

// NewIntegerEncoder constructs an integer encoder. bitLength must be > 0.
func NewIntegerEncoder(bitLength int, signed bool, endian Endianness, enc IntegerEncoding) (*IntegerEncoder, error) {
	if bitLength <= 0 {
		return nil, &EncodingError{Op: "integer", Reason: "bit length must be positive"}
	}
	if enc == Varint7 && signed {
		return nil, &UnsupportedEncodingError{Op: "integer.varint7", Reason: "signed multi-byte varint is not supported"}
	}
	return &IntegerEncoder{BitLength: bitLength, Signed: signed, Endian: endian, Encoding: enc}, nil
}

func (e *IntegerEncoder) Name() string { return "integer" }

// Range reports the representable [min, max] for this encoder's bit length
// and signedness, letting callers (e.g. the Size/ElementCount/IndexOf
// calculated fields) saturate a computed value without duplicating the
// signed/unsigned width arithmetic.
func (e *IntegerEncoder) Range() (int64, int64) {
	if e.Signed {
		return signedRange(e.BitLength)
	}
	_, max := unsignedRange(e.BitLength)
	return 0, int64(max)
}

// Encode renders value according to the encoder's configuration.
func (e *IntegerEncoder) Encode(value int64) (bitstring.Bitstring, error) {
	if err := e.checkRange(value); err != nil {
		return bitstring.Bitstring{}, err
	}
	switch e.Encoding {
	case RawBits:
		return e.encodeRaw(value)
	case ASCIIDecimal:
		s := strconv.FormatInt(value, 10)
		return bitstring.FromBytes([]byte(s)), nil
	case ASCIIHex:
		var s string
		if e.Signed && value < 0 {
			s = "-" + strconv.FormatUint(uint64(-value), 16)
		} else {
			s = strconv.FormatUint(uint64(value), 16)
		}
		return bitstring.FromBytes([]byte(s)), nil
	case Varint7:
		return bitstring.FromBytes(encodeVarint7(uint64(value), e.Endian == BigEndian)), nil
	default:
		return bitstring.Bitstring{}, &EncodingError{Op: "integer", Reason: "unknown encoding"}
	}
}

func (e *IntegerEncoder) checkRange(value int64) error {
	if e.Signed {
		min, max := signedRange(e.BitLength)
		if value < min || value > max {
			return &EncodingError{Op: "integer", Reason: "value out of range for signed bit length"}
		}
	} else {
		if value < 0 {
			return &EncodingError{Op: "integer", Reason: "negative value for unsigned encoding"}
		}
		_, max := unsignedRange(e.BitLength)
		if uint64(value) > max {
			return &EncodingError{Op: "integer", Reason: "value out of range for unsigned bit length"}
		}
	}
	return nil
}

func signedRange(bits int) (int64, int64) {
	if bits >= 64 {
		return -(1 << 63), (1 << 63) - 1
	}
	max := int64(1)<<(uint(bits)-1) - 1
	min := -(int64(1) << (uint(bits) - 1))
	return min, max
}

func unsignedRange(bits int) (uint64, uint64) {
	if bits >= 64 {
		return 0, ^uint64(0)
	}
	return 0, (uint64(1) << uint(bits)) - 1
}

// encodeRaw packs value's two's-complement low BitLength bits into a
// big/little-endian byte string, then truncates to the exact bit length
// (no implicit byte padding - that is the Bits encoder's job).
func (e *IntegerEncoder) encodeRaw(value int64) (bitstring.Bitstring, error) {
	u := uint64(value) & maskFor(e.BitLength)
	nbytes := (e.BitLength + 7) / 8
	buf := make([]byte, nbytes)
	switch e.Endian {
	case LittleEndian:
		for i := 0; i < nbytes; i++ {
			buf[i] = byte(u >> (8 * uint(i)))
		}
	default: // BigEndian and NoneEndian both pack MSB-first
		for i := 0; i < nbytes; i++ {
			buf[nbytes-1-i] = byte(u >> (8 * uint(i)))
		}
	}
	// The raw bit pattern occupies the low BitLength bits of the packed
	// view regardless of byte order; re-align so the returned bitstring's
	// *first* BitLength bits (MSB-first) are the value, with no extra
	// byte-rounding padding left in (that is the Bits encoder's job).
	full := bitstring.FromBytes(buf)
	return full.Slice(full.Len()-e.BitLength, full.Len()), nil
}

func maskFor(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(bits)) - 1
}

// encodeVarint7 encodes u as a sequence of 7-bit groups with a continuation
// bit in the high bit of each byte. The continuation bit is cleared on the
// last byte in rendering order (whichever group that is for the chosen
// endianness) so the stream is self-terminating; this pins spec.md §9 open
// question (iii) towards the decodable convention.
func encodeVarint7(u uint64, bigEndian bool) []byte {
	var groups []byte // least-significant 7-bit group first
	if u == 0 {
		groups = []byte{0}
	}
	for u > 0 {
		groups = append(groups, byte(u&0x7F))
		u >>= 7
	}
	if bigEndian {
		reverseBytes(groups) // most-significant group first
	}
	out := make([]byte, len(groups))
	for i, g := range groups {
		out[i] = g
		if i != len(groups)-1 {
			out[i] |= 0x80
		}
	}
	return out
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
