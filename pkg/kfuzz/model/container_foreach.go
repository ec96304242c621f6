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
	"encoding/binary"

	"github.com/kraklabs/kfuzz/pkg/bitstring"
)

// ForEachContainer is a cross-product container (spec.md §4.3 "ForEach"):
// for every mutation of mutated, the children are walked through their
// full local mutation space; num_mutations is the product of the two.
type ForEachContainer struct {
	base
	mutated Node
	inner   containerCore

	currentIndex int
	lastRendered bitstring.Bitstring
}

// NewForEachContainer builds a ForEach container over mutated and children.
func NewForEachContainer(name string, mutated Node, children ...Node) *ForEachContainer {
	f := &ForEachContainer{
		base: newBase(name), mutated: mutated,
		inner: newContainerCore(name+".body", children), currentIndex: -1,
	}
	mutated.setEnclosing(f)
	bindChildren(f, children)
	return f
}

func (f *ForEachContainer) NumMutations() int {
	outer, inner := f.mutated.NumMutations(), f.inner.NumMutations()
	if outer == 0 || inner == 0 {
		return 0
	}
	return outer * inner
}

func (f *ForEachContainer) CurrentIndex() int { return f.currentIndex }

// skipTo resets both the mutated field and the children, then re-derives
// the (outer, inner) pair for target (spec.md §5 "re-derives each field's
// sub-index from scratch on skip").
func (f *ForEachContainer) skipTo(target int) {
	f.mutated.Reset()
	f.inner.Reset()
	if target < 0 {
		f.currentIndex = -1
		return
	}
	innerCount := f.inner.NumMutations()
	if innerCount > 0 {
		outerIdx, innerIdx := target/innerCount, target%innerCount
		f.mutated.Skip(outerIdx + 1)
		f.inner.skipTo(innerIdx)
	}
	f.currentIndex = target
}

func (f *ForEachContainer) Mutate() bool {
	total := f.NumMutations()
	if total == 0 || f.currentIndex+1 >= total {
		return false
	}
	f.skipTo(f.currentIndex + 1)
	return true
}

func (f *ForEachContainer) Skip(n int) int {
	if n <= 0 {
		return 0
	}
	total := f.NumMutations()
	remaining := total - 1 - f.currentIndex
	if remaining < 0 {
		remaining = 0
	}
	steps := n
	if steps > remaining {
		steps = remaining
	}
	if steps > 0 {
		f.skipTo(f.currentIndex + steps)
	}
	return steps
}

func (f *ForEachContainer) Reset() { f.skipTo(-1) }

func (f *ForEachContainer) Children() []Node {
	out := make([]Node, 0, len(f.inner.children)+1)
	out = append(out, f.mutated)
	out = append(out, f.inner.children...)
	return out
}

func (f *ForEachContainer) Resolve(name string) (Node, bool) { return resolveUp(f, name) }

func (f *ForEachContainer) RenderedChildren(ctx *RenderContext) []Node {
	out := make([]Node, 0, len(f.inner.children)+1)
	out = append(out, f.mutated)
	out = append(out, f.inner.RenderedChildren(ctx)...)
	return out
}

func (f *ForEachContainer) Hash() uint64 {
	parts := make([][]byte, 0, len(f.inner.children)+1)
	addHash := func(v uint64) {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], v)
		parts = append(parts, b[:])
	}
	addHash(f.mutated.Hash())
	for _, ch := range f.inner.children {
		addHash(ch.Hash())
	}
	return hashFields("foreach", true, parts...)
}

func (f *ForEachContainer) Info() Info {
	return Info{
		Path:           path(f),
		RenderedHex:    f.lastRendered.Hex(),
		RenderedBase64: f.lastRendered.Base64(),
		OffsetBits:     f.Offset(),
		MutationIndex:  f.currentIndex,
		NumMutations:   f.NumMutations(),
	}
}

func (f *ForEachContainer) renderSelf(ctx *RenderContext) bitstring.Bitstring {
	offset := f.Offset()
	f.mutated.setOffset(offset)
	mutatedBS := RenderNode(ctx, f.mutated)
	offset += mutatedBS.Len()

	f.inner.setOffset(offset)
	bodyBS := f.inner.renderConcat(ctx)

	f.lastRendered = mutatedBS.Concat(bodyBS)
	return f.lastRendered
}
