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

	"github.com/kraklabs/kfuzz/internal/assert"
	"github.com/kraklabs/kfuzz/pkg/bitstring"
)

// RepeatContainer renders its children min_times..max_times times (spec.md
// §4.3 "Repeat"). Its mutation space is the disjoint union of repetition-
// count mutations (render the default content k times, for each
// k in (min_times, max_times]) and the children's own mutation space,
// rendered at a fixed min_times repetitions.
type RepeatContainer struct {
	base
	inner    containerCore
	minTimes int
	maxTimes int

	currentIndex  int
	repeatCountAt int // >0 while in regime (a): the k currently selected

	lastRendered bitstring.Bitstring
}

// NewRepeatContainer builds a Repeat container. minTimes must be >= 0 and
// <= maxTimes.
func NewRepeatContainer(name string, minTimes, maxTimes int, children ...Node) *RepeatContainer {
	assert.Precondition(minTimes >= 0 && minTimes <= maxTimes, "Repeat %q: requires 0 <= min_times <= max_times", name)
	r := &RepeatContainer{
		base: newBase(name), inner: newContainerCore(name+".body", children),
		minTimes: minTimes, maxTimes: maxTimes, currentIndex: -1,
	}
	bindChildren(r, children)
	return r
}

func (r *RepeatContainer) repetitionCount() int {
	n := r.maxTimes - r.minTimes
	if n < 0 {
		return 0
	}
	return n
}

func (r *RepeatContainer) NumMutations() int { return r.repetitionCount() + r.inner.NumMutations() }

func (r *RepeatContainer) CurrentIndex() int { return r.currentIndex }

func (r *RepeatContainer) skipTo(target int) {
	r.inner.Reset()
	r.repeatCountAt = 0
	if target < 0 {
		r.currentIndex = -1
		return
	}
	repCount := r.repetitionCount()
	if target < repCount {
		r.repeatCountAt = r.minTimes + 1 + target
	} else {
		r.inner.skipTo(target - repCount)
	}
	r.currentIndex = target
}

func (r *RepeatContainer) Mutate() bool {
	total := r.NumMutations()
	if total == 0 || r.currentIndex+1 >= total {
		return false
	}
	r.skipTo(r.currentIndex + 1)
	return true
}

func (r *RepeatContainer) Skip(n int) int {
	if n <= 0 {
		return 0
	}
	total := r.NumMutations()
	remaining := total - 1 - r.currentIndex
	if remaining < 0 {
		remaining = 0
	}
	steps := n
	if steps > remaining {
		steps = remaining
	}
	if steps > 0 {
		r.skipTo(r.currentIndex + steps)
	}
	return steps
}

func (r *RepeatContainer) Reset() { r.skipTo(-1) }

func (r *RepeatContainer) Children() []Node { return r.inner.children }

func (r *RepeatContainer) Resolve(name string) (Node, bool) { return resolveUp(r, name) }

func (r *RepeatContainer) RenderedChildren(ctx *RenderContext) []Node {
	return r.inner.RenderedChildren(ctx)
}

func (r *RepeatContainer) Hash() uint64 {
	var lenBuf [16]byte
	binary.LittleEndian.PutUint64(lenBuf[0:8], uint64(r.minTimes))
	binary.LittleEndian.PutUint64(lenBuf[8:16], uint64(r.maxTimes))
	parts := [][]byte{lenBuf[:]}
	for _, ch := range r.inner.children {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], ch.Hash())
		parts = append(parts, b[:])
	}
	return hashFields("repeat", true, parts...)
}

func (r *RepeatContainer) Info() Info {
	return Info{
		Path:           path(r),
		RenderedHex:    r.lastRendered.Hex(),
		RenderedBase64: r.lastRendered.Base64(),
		OffsetBits:     r.Offset(),
		MutationIndex:  r.currentIndex,
		NumMutations:   r.NumMutations(),
	}
}

// renderSelf renders the current repetition count (min_times by default, or
// while in the inner-mutation regime; the selected k while in the
// repetition-count regime) copies of the current children rendering.
func (r *RepeatContainer) renderSelf(ctx *RenderContext) bitstring.Bitstring {
	k := r.minTimes
	if r.repeatCountAt > 0 {
		k = r.repeatCountAt
	}
	r.inner.setOffset(r.Offset())
	content := r.inner.renderConcat(ctx)

	out := bitstring.Empty()
	for i := 0; i < k; i++ {
		out = out.Concat(content)
	}
	r.lastRendered = out
	return out
}
