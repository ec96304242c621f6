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

// Package encode implements the pure value-to-bitstring transforms used by
// fields: string encoders, integer encoders, bit encoders, and the
// cipher-backed byte encoders. Every encoder here is a stateless, pure
// function - no encoder keeps state across calls.
package encode

import "fmt"

// EncodingError is raised when an encoder cannot represent its input: a
// non-byte-aligned bitstring fed to a byte-oriented encoder, a value outside
// the representable range of its bit-length, or similar deterministic,
// construction/render-time failures.
type EncodingError struct {
	Op     string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding error in %s: %s", e.Op, e.Reason)
}

// UnsupportedEncodingError is raised for a combination an encoder flatly
// does not support, e.g. a signed multi-byte (7-bit) varint.
type UnsupportedEncodingError struct {
	Op     string
	Reason string
}

func (e *UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("unsupported encoding in %s: %s", e.Op, e.Reason)
}
