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

	"github.com/cespare/xxhash/v2"
	"github.com/kraklabs/kfuzz/pkg/bitstring"
)

// Template is the distinguished root container plus the public sequencer
// API (spec.md §3 "Template", §4.5 "Template + sequencer"). It wraps the
// whole field/container tree into a single enumerable, resumable stream.
type Template struct {
	root Container

	hashComputed bool
	hash         uint64
}

// NewTemplate wraps root as the template's body. root's own name becomes
// the template's name.
func NewTemplate(root Container) *Template {
	return &Template{root: root}
}

func (t *Template) Name() string { return t.root.Name() }

// NumMutations is the sum over the tree (spec.md §4.5). Each field's own
// library is built once at construction, so this stays cheap to recompute
// on every call rather than needing its own cache.
func (t *Template) NumMutations() int { return t.root.NumMutations() }

// CurrentIndex is the last completed mutation index, -1 if pristine.
func (t *Template) CurrentIndex() int { return t.root.CurrentIndex() }

// Mutate advances the tree by one mutation step.
func (t *Template) Mutate() bool { return t.root.Mutate() }

// Skip advances up to n steps, returning how many were actually taken.
func (t *Template) Skip(n int) int { return t.root.Skip(n) }

// Reset returns every field in the tree to Default.
func (t *Template) Reset() { t.root.Reset() }

// Render performs the top-down walk: offsets are assigned as each node is
// visited, in the same single walk that renders it (there is no separate
// offset pre-pass). The returned bitstring is the wire rendering of the
// whole tree for the current mutation state.
func (t *Template) Render() bitstring.Bitstring {
	ctx := NewRenderContext()
	t.root.setOffset(0)
	return RenderNode(ctx, t.root)
}

// GetInfo returns structured metadata for every node in the tree, in a
// depth-first declaration-order walk (spec.md §4.5 "get_info()").
func (t *Template) GetInfo() []Info {
	var out []Info
	var walk func(n Node)
	walk = func(n Node) {
		out = append(out, n.Info())
		if c, ok := n.(Container); ok {
			for _, ch := range c.Children() {
				walk(ch)
			}
		}
	}
	walk(t.root)
	return out
}

// Hash is a stable digest of the tree's shape and every leaf's determining
// parameters (spec.md §3 "Template", §4.5 "hash()", §8 "Hash stability").
// It is computed once and memoised: node Hash() methods only fold
// construction-time parameters, never mutation state, so the result is
// invariant across mutate/render/reset by construction.
func (t *Template) Hash() uint64 {
	if t.hashComputed {
		return t.hash
	}
	h := xxhash.New()
	var buf [8]byte
	var walk func(n Node)
	walk = func(n Node) {
		binary.LittleEndian.PutUint64(buf[:], n.Hash())
		h.Write(buf[:])
		if c, ok := n.(Container); ok {
			for _, ch := range c.Children() {
				walk(ch)
			}
		}
	}
	walk(t.root)
	t.hash = h.Sum64()
	t.hashComputed = true
	return t.hash
}
