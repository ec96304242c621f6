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

// Package model implements the fuzzer's tree: fields, containers,
// calculated fields, and the template + sequencer that walks them. This is
// component F/C/K/T from spec.md §2.
package model

import (
	"sync/atomic"

	"github.com/kraklabs/kfuzz/pkg/bitstring"
)

// NodeID is a process-local, monotonically assigned identity for a tree
// node. It exists so the render context can track "currently rendering"
// and cached-rendering state without node equality depending on pointer
// identity leaking outside the package (arena-index style back-references,
// per spec.md §9 design notes).
type NodeID uint64

var nextNodeID uint64

func newNodeID() NodeID {
	return NodeID(atomic.AddUint64(&nextNodeID, 1))
}

// Info is the structured metadata returned by a node's Info() method,
// mirroring the original system's get_info() (kitty/model/low_level/field.py):
// both the raw (un-encoded) and rendered (encoded) views, in hex and base64.
type Info struct {
	Path           string
	RawHex         string
	RawBase64      string
	RenderedHex    string
	RenderedBase64 string
	OffsetBits     int
	MutationIndex  int
	NumMutations   int
}

// Node is implemented by every field and container. current_index lives on
// every node (fields drive their own; containers derive theirs from their
// children - spec.md §3 "Field node" invariant (i)).
type Node interface {
	ID() NodeID
	Name() string

	// NumMutations is the total number of mutations this node's subtree
	// enumerates. It is recomputed on every call from libraries built at
	// construction, so it never changes over the node's lifetime.
	NumMutations() int

	// CurrentIndex is the last completed mutation index, -1 if the node
	// (or, for a container, every descendant) is at its default.
	CurrentIndex() int

	// Mutate advances by one step. Returns false when already exhausted.
	Mutate() bool

	// Skip advances up to n steps, returning how many were actually taken.
	Skip(n int) int

	// Reset returns the node to its pristine Default state.
	Reset()

	// Hash is a stable fingerprint of this node's determining parameters
	// (type, default, fuzzable flag, length, constraints - not its
	// current mutation state).
	Hash() uint64

	Info() Info

	// Offset is the bit offset assigned during the most recent render
	// walk (0 until the first render).
	Offset() int

	Enclosing() Container

	setEnclosing(c Container)
	setOffset(bits int)

	// renderSelf performs this node's actual rendering logic. External
	// callers use the package-level RenderNode, which adds caching and
	// cycle detection around renderSelf.
	renderSelf(ctx *RenderContext) bitstring.Bitstring
}

// Container is a Node that composes children in declaration order.
type Container interface {
	Node
	Children() []Node

	// Resolve looks up a descendant by name, scanning this container's
	// children first, then walking up through enclosing containers
	// (spec.md §4.4 "Calculated fields" dependency resolution).
	Resolve(name string) (Node, bool)

	// RenderedChildren returns, after rendering via ctx, the subsequence
	// of children considered "rendered" - every child except an inactive
	// conditional branch (spec.md §4.4 ElementCount / IndexOf).
	RenderedChildren(ctx *RenderContext) []Node
}

// base is embedded by every concrete node implementation. It is not
// exported: node identity, enclosing back-references, and render offsets
// are relations owned by the tree, not by the node itself (spec.md §9
// design notes).
type base struct {
	id        NodeID
	name      string
	enclosing Container
	offset    int
}

func newBase(name string) base {
	return base{id: newNodeID(), name: name}
}

func (b *base) ID() NodeID          { return b.id }
func (b *base) Name() string        { return b.name }
func (b *base) Offset() int         { return b.offset }
func (b *base) setOffset(bits int)  { b.offset = bits }
func (b *base) Enclosing() Container { return b.enclosing }

func (b *base) setEnclosing(c Container) {
	if b.enclosing != nil && b.enclosing.ID() != c.ID() {
		panic("model: a node's enclosing container cannot change once bound")
	}
	b.enclosing = c
}

// resolveDown searches n's own subtree only - n itself, then (if n is a
// Container) its children, recursively. It never consults Enclosing(), so
// it cannot re-enter a container an enclosing scan already came from.
func resolveDown(n Node, name string) (Node, bool) {
	if n.Name() == name {
		return n, true
	}
	if c, ok := n.(Container); ok {
		for _, child := range c.Children() {
			if found, ok := resolveDown(child, name); ok {
				return found, true
			}
		}
	}
	return nil, false
}

// resolveUp scans name in the children of c (and their subtrees), then
// walks up through enclosing containers. It is shared by every Container
// implementation's Resolve method.
func resolveUp(c Container, name string) (Node, bool) {
	for _, child := range c.Children() {
		if found, ok := resolveDown(child, name); ok {
			return found, true
		}
	}
	if up := c.Enclosing(); up != nil {
		return resolveUpFrom(up, name, c)
	}
	return nil, false
}

// resolveUpFrom continues an up-scan from c, having already searched the
// subtree rooted at skip (the container the scan just came from) - so it
// skips re-descending into skip, which would otherwise recurse into c
// again via skip's own Enclosing() and loop forever.
func resolveUpFrom(c Container, name string, skip Node) (Node, bool) {
	for _, child := range c.Children() {
		if skip != nil && child.ID() == skip.ID() {
			continue
		}
		if found, ok := resolveDown(child, name); ok {
			return found, true
		}
	}
	if up := c.Enclosing(); up != nil {
		return resolveUpFrom(up, name, c)
	}
	return nil, false
}
