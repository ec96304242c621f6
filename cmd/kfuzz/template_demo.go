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

package main

import (
	"github.com/kraklabs/kfuzz/pkg/kfuzz/encode"
	"github.com/kraklabs/kfuzz/pkg/kfuzz/model"
)

// buildEchoTemplate builds a worked-example template for cmd/kfuzz's "run"
// subcommand: a length-prefixed, CRC32-checksummed line-protocol message.
// It is not a product template, just a demonstration that exercises a
// String field, a Size field and a Checksum field together.
//
//	[ 4-byte length (bits) ][ 4-byte CRC32 over payload ][ payload ]
func buildEchoTemplate() *model.Template {
	u32, err := encode.NewIntegerEncoder(32, false, encode.BigEndian, encode.RawBits)
	if err != nil {
		panic(err)
	}

	payload := model.NewString("payload", []byte("hello, kfuzz"), encode.Identity(), true, 0)
	size := model.NewSizeField("length", "payload", u32)
	checksum := model.NewChecksumField("crc32", "payload", model.CRC32, u32)

	root := model.NewGroupContainer("echo", size, checksum, payload)
	return model.NewTemplate(root)
}
