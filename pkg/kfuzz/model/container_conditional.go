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
	"github.com/cespare/xxhash/v2"
	"github.com/kraklabs/kfuzz/pkg/bitstring"
)

// ConditionalContainer is If/IfNot (spec.md §4.3 "Conditional containers").
// Its Condition is evaluated at render time, not at mutate time: an
// inactive branch renders empty bits and contributes zero length to offset
// accounting, but its sub-mutations still count toward the enclosing
// index space.
type ConditionalContainer struct {
	containerCore
	condition Condition
	negate    bool

	lastRendered bitstring.Bitstring
}

// NewIf builds a container that renders its children only when cond holds.
func NewIf(name string, cond Condition, children ...Node) *ConditionalContainer {
	c := &ConditionalContainer{containerCore: newContainerCore(name, children), condition: cond}
	bindChildren(c, children)
	return c
}

// NewIfNot builds a container that renders its children only when cond
// does not hold.
func NewIfNot(name string, cond Condition, children ...Node) *ConditionalContainer {
	c := &ConditionalContainer{containerCore: newContainerCore(name, children), condition: cond, negate: true}
	bindChildren(c, children)
	return c
}

func (c *ConditionalContainer) isActive(ctx *RenderContext) bool {
	v := c.condition.Evaluate(ctx)
	if c.negate {
		return !v
	}
	return v
}

func (c *ConditionalContainer) Resolve(name string) (Node, bool) { return resolveUp(c, name) }

// RenderedChildren overrides containerCore's default: an inactive
// conditional container contributes no rendered children of its own
// (spec.md §4.4 "empty conditional branches count zero").
func (c *ConditionalContainer) RenderedChildren(ctx *RenderContext) []Node {
	if !c.isActive(ctx) {
		return nil
	}
	return c.containerCore.RenderedChildren(ctx)
}

func (c *ConditionalContainer) Hash() uint64 {
	h := xxhash.New()
	h.WriteString("conditional_container")
	if c.negate {
		h.WriteByte(1)
	} else {
		h.WriteByte(0)
	}
	for _, ch := range c.children {
		var buf [8]byte
		v := ch.Hash()
		for i := range buf {
			buf[i] = byte(v >> (8 * uint(i)))
		}
		h.Write(buf[:])
	}
	return h.Sum64()
}

func (c *ConditionalContainer) Info() Info {
	return Info{
		Path:           path(c),
		RenderedHex:    c.lastRendered.Hex(),
		RenderedBase64: c.lastRendered.Base64(),
		OffsetBits:     c.Offset(),
		MutationIndex:  c.CurrentIndex(),
		NumMutations:   c.NumMutations(),
	}
}

func (c *ConditionalContainer) renderSelf(ctx *RenderContext) bitstring.Bitstring {
	if !c.isActive(ctx) {
		c.lastRendered = bitstring.Empty()
		return c.lastRendered
	}
	c.lastRendered = c.renderConcat(ctx)
	return c.lastRendered
}
