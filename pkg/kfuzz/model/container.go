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

// GroupContainer is the unconditional container (spec.md §4.3 "Container
// (unconditional group)"): children render in declaration order and
// mutate sequentially, one at a time.
type GroupContainer struct {
	containerCore
	lastRendered bitstring.Bitstring
}

// NewGroupContainer builds an unconditional container over children, in
// declaration order.
func NewGroupContainer(name string, children ...Node) *GroupContainer {
	g := &GroupContainer{containerCore: newContainerCore(name, children)}
	bindChildren(g, children)
	return g
}

func (g *GroupContainer) Resolve(name string) (Node, bool) { return resolveUp(g, name) }

func (g *GroupContainer) Hash() uint64 {
	h := xxhash.New()
	h.WriteString("group_container")
	for _, ch := range g.children {
		var buf [8]byte
		v := ch.Hash()
		for i := range buf {
			buf[i] = byte(v >> (8 * uint(i)))
		}
		h.Write(buf[:])
	}
	return h.Sum64()
}

func (g *GroupContainer) Info() Info {
	return Info{
		Path:           path(g),
		RenderedHex:    g.lastRendered.Hex(),
		RenderedBase64: g.lastRendered.Base64(),
		OffsetBits:     g.Offset(),
		MutationIndex:  g.CurrentIndex(),
		NumMutations:   g.NumMutations(),
	}
}

func (g *GroupContainer) renderSelf(ctx *RenderContext) bitstring.Bitstring {
	g.lastRendered = g.renderConcat(ctx)
	return g.lastRendered
}
