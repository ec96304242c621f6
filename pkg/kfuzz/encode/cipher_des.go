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

// DES is not carried by any library in the example corpus (golang.org/x/crypto
// dropped legacy DES long ago), so it is implemented here directly against
// FIPS 46-3, exposed as a crypto/cipher.Block so it can be driven through the
// standard library's CBC chaining mode the same way AES is (see cipher.go).

var ipTable = [64]int{
	58, 50, 42, 34, 26, 18, 10, 2, 60, 52, 44, 36, 28, 20, 12, 4,
	62, 54, 46, 38, 30, 22, 14, 6, 64, 56, 48, 40, 32, 24, 16, 8,
	57, 49, 41, 33, 25, 17, 9, 1, 59, 51, 43, 35, 27, 19, 11, 3,
	61, 53, 45, 37, 29, 21, 13, 5, 63, 55, 47, 39, 31, 23, 15, 7,
}

var fpTable = [64]int{
	40, 8, 48, 16, 56, 24, 64, 32, 39, 7, 47, 15, 55, 23, 63, 31,
	38, 6, 46, 14, 54, 22, 62, 30, 37, 5, 45, 13, 53, 21, 61, 29,
	36, 4, 44, 12, 52, 20, 60, 28, 35, 3, 43, 11, 51, 19, 59, 27,
	34, 2, 42, 10, 50, 18, 58, 26, 33, 1, 41, 9, 49, 17, 57, 25,
}

var pc1Table = [56]int{
	57, 49, 41, 33, 25, 17, 9, 1, 58, 50, 42, 34, 26, 18,
	10, 2, 59, 51, 43, 35, 27, 19, 11, 3, 60, 52, 44, 36,
	63, 55, 47, 39, 31, 23, 15, 7, 62, 54, 46, 38, 30, 22,
	14, 6, 61, 53, 45, 37, 29, 21, 13, 5, 28, 20, 12, 4,
}

var pc2Table = [48]int{
	14, 17, 11, 24, 1, 5, 3, 28, 15, 6, 21, 10,
	23, 19, 12, 4, 26, 8, 16, 7, 27, 20, 13, 2,
	41, 52, 31, 37, 47, 55, 30, 40, 51, 45, 33, 48,
	44, 49, 39, 56, 34, 53, 46, 42, 50, 36, 29, 32,
}

var shiftSchedule = [16]int{1, 1, 2, 2, 2, 2, 2, 2, 1, 2, 2, 2, 2, 2, 2, 1}

var eTable = [48]int{
	32, 1, 2, 3, 4, 5, 4, 5, 6, 7, 8, 9,
	8, 9, 10, 11, 12, 13, 12, 13, 14, 15, 16, 17,
	16, 17, 18, 19, 20, 21, 20, 21, 22, 23, 24, 25,
	24, 25, 26, 27, 28, 29, 28, 29, 30, 31, 32, 1,
}

var pTable = [32]int{
	16, 7, 20, 21, 29, 12, 28, 17, 1, 15, 23, 26,
	5, 18, 31, 10, 2, 8, 24, 14, 32, 27, 3, 9,
	19, 13, 30, 6, 22, 11, 4, 25,
}

var sBoxes = [8][4][16]int{
	{
		{14, 4, 13, 1, 2, 15, 11, 8, 3, 10, 6, 12, 5, 9, 0, 7},
		{0, 15, 7, 4, 14, 2, 13, 1, 10, 6, 12, 11, 9, 5, 3, 8},
		{4, 1, 14, 8, 13, 6, 2, 11, 15, 12, 9, 7, 3, 10, 5, 0},
		{15, 12, 8, 2, 4, 9, 1, 7, 5, 11, 3, 14, 10, 0, 6, 13},
	},
	{
		{15, 1, 8, 14, 6, 11, 3, 4, 9, 7, 2, 13, 12, 0, 5, 10},
		{3, 13, 4, 7, 15, 2, 8, 14, 12, 0, 1, 10, 6, 9, 11, 5},
		{0, 14, 7, 11, 10, 4, 13, 1, 5, 8, 12, 6, 9, 3, 2, 15},
		{13, 8, 10, 1, 3, 15, 4, 2, 11, 6, 7, 12, 0, 5, 14, 9},
	},
	{
		{10, 0, 9, 14, 6, 3, 15, 5, 1, 13, 12, 7, 11, 4, 2, 8},
		{13, 7, 0, 9, 3, 4, 6, 10, 2, 8, 5, 14, 12, 11, 15, 1},
		{13, 6, 4, 9, 8, 15, 3, 0, 11, 1, 2, 12, 5, 10, 14, 7},
		{1, 10, 13, 0, 6, 9, 8, 7, 4, 15, 14, 3, 11, 5, 2, 12},
	},
	{
		{7, 13, 14, 3, 0, 6, 9, 10, 1, 2, 8, 5, 11, 12, 4, 15},
		{13, 8, 11, 5, 6, 15, 0, 3, 4, 7, 2, 12, 1, 10, 14, 9},
		{10, 6, 9, 0, 12, 11, 7, 13, 15, 1, 3, 14, 5, 2, 8, 4},
		{3, 15, 0, 6, 10, 1, 13, 8, 9, 4, 5, 11, 12, 7, 2, 14},
	},
	{
		{2, 12, 4, 1, 7, 10, 11, 6, 8, 5, 3, 15, 13, 0, 14, 9},
		{14, 11, 2, 12, 4, 7, 13, 1, 5, 0, 15, 10, 3, 9, 8, 6},
		{4, 2, 1, 11, 10, 13, 7, 8, 15, 9, 12, 5, 6, 3, 0, 14},
		{11, 8, 12, 7, 1, 14, 2, 13, 6, 15, 0, 9, 10, 4, 5, 3},
	},
	{
		{12, 1, 10, 15, 9, 2, 6, 8, 0, 13, 3, 4, 14, 7, 5, 11},
		{10, 15, 4, 2, 7, 12, 9, 5, 6, 1, 13, 14, 0, 11, 3, 8},
		{9, 14, 15, 5, 2, 8, 12, 3, 7, 0, 4, 10, 1, 13, 11, 6},
		{4, 3, 2, 12, 9, 5, 15, 10, 11, 14, 1, 7, 6, 0, 8, 13},
	},
	{
		{4, 11, 2, 14, 15, 0, 8, 13, 3, 12, 9, 7, 5, 10, 6, 1},
		{13, 0, 11, 7, 4, 9, 1, 10, 14, 3, 5, 12, 2, 15, 8, 6},
		{1, 4, 11, 13, 12, 3, 7, 14, 10, 15, 6, 8, 0, 5, 9, 2},
		{6, 11, 13, 8, 1, 4, 10, 7, 9, 5, 0, 15, 14, 2, 3, 12},
	},
	{
		{13, 2, 8, 4, 6, 15, 11, 1, 10, 9, 3, 14, 5, 0, 12, 7},
		{1, 15, 13, 8, 10, 3, 7, 4, 12, 5, 6, 11, 0, 14, 9, 2},
		{7, 11, 4, 1, 9, 12, 14, 2, 0, 6, 10, 13, 15, 3, 5, 8},
		{2, 1, 14, 7, 4, 10, 8, 13, 15, 12, 9, 0, 3, 5, 6, 11},
	},
}

func bitAt(v uint64, totalBits, pos1 int) uint64 {
	shift := uint(totalBits - pos1)
	return (v >> shift) & 1
}

func permute(v uint64, totalBits int, table []int) uint64 {
	var out uint64
	for _, p := range table {
		out = (out << 1) | bitAt(v, totalBits, p)
	}
	return out
}

func leftRotate28(v uint32, n int) uint32 {
	v &= 0x0FFFFFFF
	return ((v << uint(n)) | (v >> uint(28-n))) & 0x0FFFFFFF
}

// desSubkeys derives the 16 round keys (each 48 bits, stored in the low
// bits of a uint64) from an 8-byte DES key.
func desSubkeys(key uint64) [16]uint64 {
	pc1 := permute(key, 64, pc1Table[:])
	c := uint32(pc1 >> 28)
	d := uint32(pc1 & 0x0FFFFFFF)
	var subkeys [16]uint64
	for round := 0; round < 16; round++ {
		c = leftRotate28(c, shiftSchedule[round])
		d = leftRotate28(d, shiftSchedule[round])
		cd := (uint64(c) << 28) | uint64(d)
		subkeys[round] = permute(cd, 56, pc2Table[:])
	}
	return subkeys
}

func feistel(r uint32, subkey uint64) uint32 {
	e := permute(uint64(r), 32, eTable[:])
	x := e ^ subkey
	var sOut uint32
	for i := 0; i < 8; i++ {
		chunk := (x >> uint(42-6*i)) & 0x3F
		row := ((chunk >> 4) & 0x2) | (chunk & 0x1)
		col := (chunk >> 1) & 0xF
		sOut = (sOut << 4) | uint32(sBoxes[i][row][col])
	}
	return uint32(permute(uint64(sOut), 32, pTable[:]))
}

// desCryptBlock runs the Feistel network with the given subkey order
// (K1..K16 to encrypt, K16..K1 to decrypt) over one 64-bit block.
func desCryptBlock(block uint64, subkeys [16]uint64) uint64 {
	ip := permute(block, 64, ipTable[:])
	l := uint32(ip >> 32)
	r := uint32(ip & 0xFFFFFFFF)
	for round := 0; round < 16; round++ {
		l, r = r, l^feistel(r, subkeys[round])
	}
	preOutput := (uint64(r) << 32) | uint64(l)
	return permute(preOutput, 64, fpTable[:])
}

func reverseSubkeys(k [16]uint64) [16]uint64 {
	var out [16]uint64
	for i := range k {
		out[i] = k[15-i]
	}
	return out
}

// desBlock implements crypto/cipher.Block for single DES.
type desBlock struct {
	enc [16]uint64
	dec [16]uint64
}

func newDESBlock(key []byte) (*desBlock, error) {
	if len(key) != 8 {
		return nil, &EncodingError{Op: "cipher.des", Reason: "DES key must be 8 bytes"}
	}
	k := bytesToUint64(key)
	enc := desSubkeys(k)
	return &desBlock{enc: enc, dec: reverseSubkeys(enc)}, nil
}

func (b *desBlock) BlockSize() int { return 8 }

func (b *desBlock) Encrypt(dst, src []byte) {
	out := desCryptBlock(bytesToUint64(src), b.enc)
	uint64ToBytes(out, dst)
}

func (b *desBlock) Decrypt(dst, src []byte) {
	out := desCryptBlock(bytesToUint64(src), b.dec)
	uint64ToBytes(out, dst)
}

// tripleDESBlock implements crypto/cipher.Block for EDE3 (or EDE2 when the
// third key equals the first) triple DES.
type tripleDESBlock struct {
	k1, k2, k3 *desBlock
}

func newTripleDESBlock(key []byte) (*tripleDESBlock, error) {
	switch len(key) {
	case 24:
		k1, err := newDESBlock(key[0:8])
		if err != nil {
			return nil, err
		}
		k2, err := newDESBlock(key[8:16])
		if err != nil {
			return nil, err
		}
		k3, err := newDESBlock(key[16:24])
		if err != nil {
			return nil, err
		}
		return &tripleDESBlock{k1, k2, k3}, nil
	case 16:
		k1, err := newDESBlock(key[0:8])
		if err != nil {
			return nil, err
		}
		k2, err := newDESBlock(key[8:16])
		if err != nil {
			return nil, err
		}
		return &tripleDESBlock{k1, k2, k1}, nil
	default:
		return nil, &EncodingError{Op: "cipher.3des", Reason: "3DES key must be 16 or 24 bytes"}
	}
}

func (b *tripleDESBlock) BlockSize() int { return 8 }

func (b *tripleDESBlock) Encrypt(dst, src []byte) {
	tmp := make([]byte, 8)
	b.k1.Encrypt(tmp, src)
	b.k2.Decrypt(tmp, tmp)
	b.k3.Encrypt(dst, tmp)
}

func (b *tripleDESBlock) Decrypt(dst, src []byte) {
	tmp := make([]byte, 8)
	b.k3.Decrypt(tmp, src)
	b.k2.Encrypt(tmp, tmp)
	b.k1.Decrypt(dst, tmp)
}

func bytesToUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = (v << 8) | uint64(b[i])
	}
	return v
}

func uint64ToBytes(v uint64, dst []byte) {
	for i := 7; i >= 0; i-- {
		dst[i] = byte(v)
		v >>= 8
	}
}
