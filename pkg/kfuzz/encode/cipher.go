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
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"

	"github.com/kraklabs/kfuzz/pkg/bitstring"
	"golang.org/x/crypto/pbkdf2"
)

// CipherAlgorithm selects the block cipher backing a CipherEncoder.
type CipherAlgorithm int

const (
	AES CipherAlgorithm = iota
	DES
	TripleDES
)

// CipherMode selects the block chaining mode.
type CipherMode int

const (
	CBC CipherMode = iota
	ECB
)

// KeyProvider supplies the key material for one encode call. It is invoked
// exactly once per Encode, so a deterministic provider yields the same key
// for mutation N across rebuilt trees; a provider that reads external
// entropy breaks that determinism (spec.md §4.2 "Cipher/hash encoders").
type KeyProvider func() []byte

// Padder pads plaintext up to a multiple of the block size before
// encryption. ZeroPadder is the default.
type Padder func(data []byte, blockSize int) []byte

// ZeroPadder pads with zero bytes up to the next block boundary.
func ZeroPadder(data []byte, blockSize int) []byte {
	rem := len(data) % blockSize
	if rem == 0 {
		return data
	}
	return append(append([]byte{}, data...), make([]byte, blockSize-rem)...)
}

// PBKDF2KeyProvider derives a fixed-length key from a passphrase and salt
// (PBKDF2-HMAC-SHA256, iters rounds). Like a literal fixed key it never
// reads external entropy, so it stays a deterministic KeyProvider: the same
// passphrase/salt/iters always yields the same key.
func PBKDF2KeyProvider(passphrase, salt []byte, keyLen, iters int) KeyProvider {
	return func() []byte {
		return pbkdf2.Key(passphrase, salt, iters, keyLen, sha256.New)
	}
}

// CipherEncoder is a byte-string encoder backed by a block cipher.
type CipherEncoder struct {
	Algorithm CipherAlgorithm
	Mode      CipherMode
	KeyFn     KeyProvider
	IV        []byte // fixed IV, used when CBC and no per-call IV is derived
	Pad       Padder
}

func (c *CipherEncoder) Name() string { return "cipher" }

func (c *CipherEncoder) newBlock(key []byte) (cipher.Block, error) {
	switch c.Algorithm {
	case AES:
		return aes.NewCipher(key)
	case DES:
		return newDESBlock(key)
	case TripleDES:
		return newTripleDESBlock(key)
	default:
		return nil, &EncodingError{Op: "cipher", Reason: "unknown algorithm"}
	}
}

// Encode invokes the key provider exactly once, then encrypts value under
// the configured mode.
func (c *CipherEncoder) Encode(value []byte) (bitstring.Bitstring, error) {
	pad := c.Pad
	if pad == nil {
		pad = ZeroPadder
	}
	key := c.KeyFn()
	block, err := c.newBlock(key)
	if err != nil {
		return bitstring.Bitstring{}, err
	}
	plain := pad(value, block.BlockSize())

	switch c.Mode {
	case CBC:
		iv := c.IV
		if len(iv) == 0 {
			iv = make([]byte, block.BlockSize())
		}
		if len(iv) != block.BlockSize() {
			return bitstring.Bitstring{}, &EncodingError{Op: "cipher.cbc", Reason: "IV length must equal block size"}
		}
		out := make([]byte, len(plain))
		cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, plain)
		return bitstring.FromBytes(out), nil
	case ECB:
		out := make([]byte, len(plain))
		bs := block.BlockSize()
		for off := 0; off < len(plain); off += bs {
			block.Encrypt(out[off:off+bs], plain[off:off+bs])
		}
		return bitstring.FromBytes(out), nil
	default:
		return bitstring.Bitstring{}, &EncodingError{Op: "cipher", Reason: "unknown mode"}
	}
}
