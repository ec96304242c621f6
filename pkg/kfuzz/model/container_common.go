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

import "github.com/kraklabs/kfuzz/pkg/bitstring"

// containerCore implements the sequential-walkthrough mutation model shared
// by the unconditional Container and the conditional containers (spec.md
// §4.3): num_mutations is the sum of the children's, at most one child is
// ever non-default, and an index is re-derived from scratch on every
// mutate/skip rather than replayed incrementally (spec.md §5 "Resume is by
// integer index").
//
// Repeat and ForEach do not embed this - their mutation spaces are not a
// plain sum of children (spec.md §4.3).
type containerCore struct {
	base
	children []Node
}

func newContainerCore(name string, children []Node) containerCore {
	c := containerCore{base: newBase(name), children: children}
	return c
}

// bindChildren sets every child's enclosing back-reference to self. Called
// once by each concrete constructor after containerCore is in place, since
// setEnclosing needs the fully-constructed *parent* value.
func bindChildren(self Container, children []Node) {
	for _, ch := range children {
		ch.setEnclosing(self)
	}
}

func (c *containerCore) Children() []Node { return c.children }

func (c *containerCore) NumMutations() int {
	total := 0
	for _, ch := range c.children {
		total += ch.NumMutations()
	}
	return total
}

func (c *containerCore) CurrentIndex() int {
	offset := 0
	for _, ch := range c.children {
		if ci := ch.CurrentIndex(); ci != -1 {
			return offset + ci
		}
		offset += ch.NumMutations()
	}
	return -1
}

// skipTo resets every child, then re-derives which child owns global index
// target (negative target just resets everything to Default).
func (c *containerCore) skipTo(target int) {
	for _, ch := range c.children {
		ch.Reset()
	}
	if target < 0 {
		return
	}
	offset := 0
	for _, ch := range c.children {
		n := ch.NumMutations()
		if target < offset+n {
			ch.Skip(target - offset + 1)
			return
		}
		offset += n
	}
}

func (c *containerCore) Mutate() bool {
	cur := c.CurrentIndex()
	total := c.NumMutations()
	if total == 0 || cur+1 >= total {
		return false
	}
	c.skipTo(cur + 1)
	return true
}

func (c *containerCore) Skip(n int) int {
	if n <= 0 {
		return 0
	}
	cur := c.CurrentIndex()
	total := c.NumMutations()
	remaining := total - 1 - cur
	if remaining < 0 {
		remaining = 0
	}
	steps := n
	if steps > remaining {
		steps = remaining
	}
	if steps > 0 {
		c.skipTo(cur + steps)
	}
	return steps
}

func (c *containerCore) Reset() {
	for _, ch := range c.children {
		ch.Reset()
	}
}

// activeChild is implemented only by the conditional containers; every
// other node is always considered active.
type activeChild interface {
	isActive(ctx *RenderContext) bool
}

// RenderedChildren is the default implementation shared by every
// containerCore-based container: every child is rendered, but an inactive
// conditional branch is excluded from the list (spec.md §4.4 "ElementCount
// / IndexOf").
func (c *containerCore) RenderedChildren(ctx *RenderContext) []Node {
	out := make([]Node, 0, len(c.children))
	for _, ch := range c.children {
		if a, ok := ch.(activeChild); ok && !a.isActive(ctx) {
			continue
		}
		out = append(out, ch)
	}
	return out
}

// renderConcat renders every child in declaration order, assigning each
// child's offset just before rendering it (no separate pre-pass) and
// concatenating bit-level (spec.md §4.3 "concatenation is bit-level, no
// implicit padding").
func (c *containerCore) renderConcat(ctx *RenderContext) bitstring.Bitstring {
	out := bitstring.Empty()
	offset := c.Offset()
	for _, ch := range c.children {
		ch.setOffset(offset)
		bs := RenderNode(ctx, ch)
		offset += bs.Len()
		out = out.Concat(bs)
	}
	return out
}
