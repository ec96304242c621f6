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
	"encoding/base64"
	"encoding/hex"
	"unicode/utf8"

	"github.com/kraklabs/kfuzz/pkg/bitstring"
)

// StringEncoder transforms a byte string into its wire bitstring.
type StringEncoder interface {
	Encode(value []byte) (bitstring.Bitstring, error)
	Name() string
}

type funcStringEncoder struct {
	name string
	fn   func([]byte) (bitstring.Bitstring, error)
}

func (f funcStringEncoder) Encode(value []byte) (bitstring.Bitstring, error) { return f.fn(value) }
func (f funcStringEncoder) Name() string                                    { return f.name }

// Identity renders the byte string unchanged.
func Identity() StringEncoder {
	return funcStringEncoder{"identity", func(v []byte) (bitstring.Bitstring, error) {
		return bitstring.FromBytes(v), nil
	}}
}

// UTF8 renders the byte string unchanged but rejects invalid UTF-8, since a
// fuzzer mutation may have introduced invalid sequences upstream that this
// encoder is specifically meant to guard against.
func UTF8() StringEncoder {
	return funcStringEncoder{"utf8", func(v []byte) (bitstring.Bitstring, error) {
		if !utf8.Valid(v) {
			return bitstring.Bitstring{}, &EncodingError{Op: "utf8", Reason: "invalid UTF-8 sequence"}
		}
		return bitstring.FromBytes(v), nil
	}}
}

// Hex renders the byte string as its lower-case ASCII hex representation.
func Hex() StringEncoder {
	return funcStringEncoder{"hex", func(v []byte) (bitstring.Bitstring, error) {
		return bitstring.FromBytes([]byte(hex.EncodeToString(v))), nil
	}}
}

// Base64 renders the byte string as standard base64, optionally with a
// trailing newline.
func Base64(trailingNewline bool) StringEncoder {
	name := "base64"
	if trailingNewline {
		name = "base64_nl"
	}
	return funcStringEncoder{name, func(v []byte) (bitstring.Bitstring, error) {
		out := base64.StdEncoding.EncodeToString(v)
		if trailingNewline {
			out += "\n"
		}
		return bitstring.FromBytes([]byte(out)), nil
	}}
}

// NullTerminated appends a single NUL byte after the value.
func NullTerminated() StringEncoder {
	return funcStringEncoder{"null_terminated", func(v []byte) (bitstring.Bitstring, error) {
		out := make([]byte, len(v)+1)
		copy(out, v)
		return bitstring.FromBytes(out), nil
	}}
}

// UserFunc wraps an arbitrary caller-supplied byte transform.
func UserFunc(name string, fn func([]byte) []byte) StringEncoder {
	return funcStringEncoder{name, func(v []byte) (bitstring.Bitstring, error) {
		return bitstring.FromBytes(fn(v)), nil
	}}
}
