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
	"hash"
	"hash/adler32"
	"hash/crc32"

	"github.com/kraklabs/kfuzz/internal/assert"
	"github.com/kraklabs/kfuzz/pkg/bitstring"
	"github.com/kraklabs/kfuzz/pkg/kfuzz/encode"
)

// calcCore is embedded by every calculated-field variant. A calculated
// field names a dependency by resolved reference (spec.md §4.4) and is
// never itself fuzzable by default - "non-default on every render... not
// itself fuzzable unless so configured (default: not fuzzable, 0
// mutations)". Making a calculated field itself fuzzable is left as a
// future extension point; none of this engine's built-in variants need it.
type calcCore struct {
	base
	depName string
	dep     Node // resolved lazily, on first render

	lastRendered bitstring.Bitstring
}

func newCalcCore(name, depName string) calcCore {
	return calcCore{base: newBase(name), depName: depName}
}

func (c *calcCore) NumMutations() int { return 0 }
func (c *calcCore) CurrentIndex() int { return -1 }
func (c *calcCore) Mutate() bool      { return false }
func (c *calcCore) Skip(int) int      { return 0 }
func (c *calcCore) Reset()            {}

// resolveDep resolves and caches the dependency node, starting the search
// at this calculated field's own enclosing container (spec.md §4.4: "first
// scan the current container, then its enclosing container, recursively").
func (c *calcCore) resolveDep() Node {
	if c.dep != nil {
		return c.dep
	}
	enc := c.Enclosing()
	assert.NotNil(enc, "calculated field's enclosing container")
	dep, ok := enc.Resolve(c.depName)
	if !ok {
		panic(&UnresolvedDependencyError{CalculatedField: c.name, DependencyName: c.depName})
	}
	c.dep = dep
	return dep
}

func (c *calcCore) info() Info {
	return Info{
		Path:           path(c),
		RenderedHex:    c.lastRendered.Hex(),
		RenderedBase64: c.lastRendered.Base64(),
		OffsetBits:     c.Offset(),
		MutationIndex:  -1,
		NumMutations:   0,
	}
}

// Clone renders exactly the dependency's current rendering (spec.md §4.4
// "Clone"). In-render fallback: empty bits.
type Clone struct{ calcCore }

// NewClone builds a Clone calculated field over depName.
func NewClone(name, depName string) *Clone { return &Clone{newCalcCore(name, depName)} }

func (c *Clone) Hash() uint64 { return hashFields("clone", false, []byte(c.depName)) }
func (c *Clone) Info() Info   { return c.calcCore.info() }

func (c *Clone) renderSelf(ctx *RenderContext) bitstring.Bitstring {
	dep := c.resolveDep()
	if ctx.IsRendering(dep.ID()) {
		c.lastRendered = bitstring.Empty()
		return c.lastRendered
	}
	c.lastRendered = RenderNode(ctx, dep)
	return c.lastRendered
}

// CalculatedBits applies a user function to the dependency's rendered bits
// (spec.md §4.4 "CalculatedBits"). In-render fallback: the function applied
// to an empty bitstring.
type CalculatedBits struct {
	calcCore
	Fn func(bitstring.Bitstring) bitstring.Bitstring
}

// NewCalculatedBits builds a CalculatedBits calculated field.
func NewCalculatedBits(name, depName string, fn func(bitstring.Bitstring) bitstring.Bitstring) *CalculatedBits {
	return &CalculatedBits{calcCore: newCalcCore(name, depName), Fn: fn}
}

func (c *CalculatedBits) Hash() uint64 { return hashFields("calculated_bits", false, []byte(c.depName)) }
func (c *CalculatedBits) Info() Info   { return c.calcCore.info() }

func (c *CalculatedBits) renderSelf(ctx *RenderContext) bitstring.Bitstring {
	dep := c.resolveDep()
	in := bitstring.Empty()
	if !ctx.IsRendering(dep.ID()) {
		in = RenderNode(ctx, dep)
	}
	c.lastRendered = c.Fn(in)
	return c.lastRendered
}

// CalculatedStr applies a user function to the dependency's rendered bytes
// (spec.md §4.4 "CalculatedStr"). In-render fallback: the function applied
// to an empty byte string.
type CalculatedStr struct {
	calcCore
	Fn func([]byte) []byte
}

// NewCalculatedStr builds a CalculatedStr calculated field.
func NewCalculatedStr(name, depName string, fn func([]byte) []byte) *CalculatedStr {
	return &CalculatedStr{calcCore: newCalcCore(name, depName), Fn: fn}
}

func (c *CalculatedStr) Hash() uint64 { return hashFields("calculated_str", false, []byte(c.depName)) }
func (c *CalculatedStr) Info() Info   { return c.calcCore.info() }

func (c *CalculatedStr) renderSelf(ctx *RenderContext) bitstring.Bitstring {
	dep := c.resolveDep()
	var in []byte
	if !ctx.IsRendering(dep.ID()) {
		in = RenderNode(ctx, dep).Bytes()
	}
	c.lastRendered = bitstring.FromBytes(c.Fn(in))
	return c.lastRendered
}

// HashField renders a fixed-length digest of the dependency's current
// rendering (spec.md §4.4 "Hash"). In-render fallback: zero bits of the
// digest's own width.
type HashField struct {
	calcCore
	NewHash func() hash.Hash
}

// NewHashField builds a Hash calculated field, e.g. NewHashField("h",
// "body", md5.New).
func NewHashField(name, depName string, newHash func() hash.Hash) *HashField {
	return &HashField{calcCore: newCalcCore(name, depName), NewHash: newHash}
}

func (h *HashField) Hash() uint64 { return hashFields("hash_field", false, []byte(h.depName)) }
func (h *HashField) Info() Info   { return h.calcCore.info() }

func (h *HashField) renderSelf(ctx *RenderContext) bitstring.Bitstring {
	digestLen := h.NewHash().Size()
	dep := h.resolveDep()
	if ctx.IsRendering(dep.ID()) {
		h.lastRendered = bitstring.FromBytes(make([]byte, digestLen))
		return h.lastRendered
	}
	sum := h.NewHash()
	sum.Write(RenderNode(ctx, dep).Bytes())
	h.lastRendered = bitstring.FromBytes(sum.Sum(nil))
	return h.lastRendered
}

// sizeUnit selects whether Size counts in bits or bytes.
type sizeUnit int

const (
	unitBits sizeUnit = iota
	unitBytes
)

// SizeField is a BitField-backed integer whose value is the dependency's
// current rendered length, saturated to the encoder's representable range
// (spec.md §4.4 "Size / SizeInBytes"). In-render fallback: zero. A size
// field placed inside its own dependency therefore always renders zero:
// Template.Render is a single cached pass and does not re-render it with
// the finished length.
type SizeField struct {
	calcCore
	Encoder *encode.IntegerEncoder
	Unit    sizeUnit
}

// NewSizeField builds a Size calculated field (length in bits).
func NewSizeField(name, depName string, enc *encode.IntegerEncoder) *SizeField {
	return &SizeField{calcCore: newCalcCore(name, depName), Encoder: enc, Unit: unitBits}
}

// NewSizeInBytesField builds a SizeInBytes calculated field.
func NewSizeInBytesField(name, depName string, enc *encode.IntegerEncoder) *SizeField {
	return &SizeField{calcCore: newCalcCore(name, depName), Encoder: enc, Unit: unitBytes}
}

func (s *SizeField) Hash() uint64 { return hashFields("size_field", false, []byte(s.depName)) }
func (s *SizeField) Info() Info   { return s.calcCore.info() }

func (s *SizeField) renderSelf(ctx *RenderContext) bitstring.Bitstring {
	dep := s.resolveDep()
	var value int64
	if !ctx.IsRendering(dep.ID()) {
		n := RenderNode(ctx, dep).Len()
		if s.Unit == unitBytes {
			n = (n + 7) / 8
		}
		value = saturate(int64(n), s.Encoder)
	}
	bs, err := s.Encoder.Encode(value)
	assert.Postcondition(err == nil, "SizeField %q: saturated value still out of range: %v", s.Name(), err)
	s.lastRendered = bs
	return bs
}

func saturate(v int64, enc *encode.IntegerEncoder) int64 {
	min, max := enc.Range()
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ElementCountField's value is the number of rendered children of its
// dependency (spec.md §4.4 "ElementCount"); an inactive conditional branch
// dependency counts zero.
type ElementCountField struct {
	calcCore
	Encoder *encode.IntegerEncoder
}

// NewElementCountField builds an ElementCount calculated field. depName
// must resolve to a Container.
func NewElementCountField(name, depName string, enc *encode.IntegerEncoder) *ElementCountField {
	return &ElementCountField{calcCore: newCalcCore(name, depName), Encoder: enc}
}

func (e *ElementCountField) Hash() uint64 {
	return hashFields("element_count", false, []byte(e.depName))
}
func (e *ElementCountField) Info() Info { return e.calcCore.info() }

func (e *ElementCountField) renderSelf(ctx *RenderContext) bitstring.Bitstring {
	dep := e.resolveDep()
	var count int64
	if c, ok := dep.(Container); ok {
		count = int64(len(c.RenderedChildren(ctx)))
	}
	bs, err := e.Encoder.Encode(saturate(count, e.Encoder))
	assert.Postcondition(err == nil, "ElementCountField %q failed to encode: %v", e.Name(), err)
	e.lastRendered = bs
	return bs
}

// IndexOfField's value is the position of the dependency inside its own
// enclosing container's rendered-children list (spec.md §4.4 "IndexOf"):
// 0 if the dependency has no enclosing container, len(rendered) if the
// dependency is not currently among the rendered children.
type IndexOfField struct {
	calcCore
	Encoder *encode.IntegerEncoder
}

// NewIndexOfField builds an IndexOf calculated field.
func NewIndexOfField(name, depName string, enc *encode.IntegerEncoder) *IndexOfField {
	return &IndexOfField{calcCore: newCalcCore(name, depName), Encoder: enc}
}

func (x *IndexOfField) Hash() uint64 { return hashFields("index_of", false, []byte(x.depName)) }
func (x *IndexOfField) Info() Info   { return x.calcCore.info() }

func (x *IndexOfField) renderSelf(ctx *RenderContext) bitstring.Bitstring {
	dep := x.resolveDep()
	var value int64
	depEnc := dep.Enclosing()
	if depEnc != nil {
		rendered := depEnc.RenderedChildren(ctx)
		value = int64(len(rendered))
		for i, n := range rendered {
			if n.ID() == dep.ID() {
				value = int64(i)
				break
			}
		}
	}
	bs, err := x.Encoder.Encode(saturate(value, x.Encoder))
	assert.Postcondition(err == nil, "IndexOfField %q failed to encode: %v", x.Name(), err)
	x.lastRendered = bs
	return bs
}

// ChecksumAlgorithm selects the built-in checksum function.
type ChecksumAlgorithm int

const (
	CRC32 ChecksumAlgorithm = iota
	Adler32
)

// ChecksumField's value is algorithm(dep.render_bytes), truncated to 32
// bits (spec.md §4.4 "Checksum").
type ChecksumField struct {
	calcCore
	Algorithm ChecksumAlgorithm
	Encoder   *encode.IntegerEncoder
}

// NewChecksumField builds a Checksum calculated field.
func NewChecksumField(name, depName string, algo ChecksumAlgorithm, enc *encode.IntegerEncoder) *ChecksumField {
	return &ChecksumField{calcCore: newCalcCore(name, depName), Algorithm: algo, Encoder: enc}
}

func (c *ChecksumField) Hash() uint64 {
	return hashFields("checksum", false, []byte(c.depName), []byte{byte(c.Algorithm)})
}
func (c *ChecksumField) Info() Info { return c.calcCore.info() }

func (c *ChecksumField) renderSelf(ctx *RenderContext) bitstring.Bitstring {
	dep := c.resolveDep()
	var sum uint32
	if !ctx.IsRendering(dep.ID()) {
		raw := RenderNode(ctx, dep).Bytes()
		switch c.Algorithm {
		case CRC32:
			sum = crc32.ChecksumIEEE(raw)
		case Adler32:
			sum = adler32.Checksum(raw)
		}
	}
	bs, err := c.Encoder.Encode(int64(sum))
	assert.Postcondition(err == nil, "ChecksumField %q failed to encode: %v", c.Name(), err)
	c.lastRendered = bs
	return bs
}
