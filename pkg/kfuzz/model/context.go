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
	"bytes"

	"github.com/kraklabs/kfuzz/pkg/bitstring"
)

// RenderContext is created fresh for every top-down render walk. It caches
// each node's rendering (so a node referenced twice - once by the natural
// tree walk, once by a calculated field's dependency lookup - renders only
// once) and tracks which nodes are currently mid-render, which is how a
// calculated field detects that it is nested inside its own dependency
// (spec.md §4.4, §9 "cyclic rendering").
type RenderContext struct {
	rendering map[NodeID]bool
	cache     map[NodeID]bitstring.Bitstring
}

// NewRenderContext starts a fresh render pass.
func NewRenderContext() *RenderContext {
	return &RenderContext{
		rendering: make(map[NodeID]bool),
		cache:     make(map[NodeID]bitstring.Bitstring),
	}
}

// IsRendering reports whether id is currently being rendered further up the
// call stack - i.e. whether resolving it now would be a cycle.
func (ctx *RenderContext) IsRendering(id NodeID) bool {
	return ctx.rendering[id]
}

// RenderNode renders n exactly once per context, caching the result so
// repeated references (natural tree walk + calculated-field dependency
// lookups) observe the identical bitstring.
func RenderNode(ctx *RenderContext, n Node) bitstring.Bitstring {
	if bs, ok := ctx.cache[n.ID()]; ok {
		return bs
	}
	ctx.rendering[n.ID()] = true
	bs := n.renderSelf(ctx)
	ctx.rendering[n.ID()] = false
	ctx.cache[n.ID()] = bs
	return bs
}

// Condition gates a conditional container at render time (spec.md §4.3).
type Condition interface {
	Evaluate(ctx *RenderContext) bool
}

// constCondition always evaluates to the same boolean.
type constCondition bool

func (c constCondition) Evaluate(ctx *RenderContext) bool { return bool(c) }

// Always is a Condition that is always true (used by If with no real
// condition).
func Always() Condition { return constCondition(true) }

// Never is the complementary constant condition.
func Never() Condition { return constCondition(false) }

// equalCondition compares a named field's current rendered bytes to a
// fixed value.
type equalCondition struct {
	container Container
	name      string
	value     []byte
	negate    bool
}

// Equal builds a Condition that is true when the field named `name`
// (resolved via the enclosing container's scope rules) currently renders
// to exactly `value`.
func Equal(container Container, name string, value []byte) Condition {
	return &equalCondition{container: container, name: name, value: value}
}

// NotEqual is the negation of Equal.
func NotEqual(container Container, name string, value []byte) Condition {
	return &equalCondition{container: container, name: name, value: value, negate: true}
}

func (c *equalCondition) Evaluate(ctx *RenderContext) bool {
	target, ok := c.container.Resolve(c.name)
	if !ok {
		return false != c.negate
	}
	got := RenderNode(ctx, target).Bytes()
	eq := bytes.Equal(got, c.value)
	if c.negate {
		return !eq
	}
	return eq
}
