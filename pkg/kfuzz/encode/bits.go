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

import "github.com/kraklabs/kfuzz/pkg/bitstring"

// BitsEncoder transforms a bitstring into another bitstring.
type BitsEncoder interface {
	Encode(value bitstring.Bitstring) (bitstring.Bitstring, error)
	Name() string
}

type funcBitsEncoder struct {
	name string
	fn   func(bitstring.Bitstring) (bitstring.Bitstring, error)
}

func (f funcBitsEncoder) Encode(v bitstring.Bitstring) (bitstring.Bitstring, error) { return f.fn(v) }
func (f funcBitsEncoder) Name() string                                             { return f.name }

// BitsIdentity passes the bitstring through unchanged.
func BitsIdentity() BitsEncoder {
	return funcBitsEncoder{"bits_identity", func(v bitstring.Bitstring) (bitstring.Bitstring, error) {
		return v, nil
	}}
}

// ByteAligned zero-pads the bitstring up to the next byte boundary. Pinning
// spec.md §9 open question (ii): trailing padding bits are always 0.
func ByteAligned() BitsEncoder {
	return funcBitsEncoder{"byte_aligned", func(v bitstring.Bitstring) (bitstring.Bitstring, error) {
		return v.PadToByte(), nil
	}}
}

// BitReverse reverses the bit order of the value.
func BitReverse() BitsEncoder {
	return funcBitsEncoder{"bit_reverse", func(v bitstring.Bitstring) (bitstring.Bitstring, error) {
		return v.Reverse(), nil
	}}
}

// WrapString requires a byte-aligned input and delegates to a string
// encoder over its byte view. A non-byte-aligned input is an EncodingError.
func WrapString(str StringEncoder) BitsEncoder {
	return funcBitsEncoder{"wrap:" + str.Name(), func(v bitstring.Bitstring) (bitstring.Bitstring, error) {
		if !v.IsByteAligned() {
			return bitstring.Bitstring{}, &EncodingError{Op: "bits.wrap_string", Reason: "input is not byte-aligned"}
		}
		return str.Encode(v.Bytes())
	}}
}
