// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package callgraph implements the call-tree model used by profile
// unification: interned frames, arena-backed graphs with depth-first node
// ids, the pairwise graph union and the node mappings it produces.
package callgraph // import "github.com/callpath/ensemble/callgraph"

import (
	"fmt"
	"slices"
)

// NodeID is the id of a node within one graph. Ids are assigned in
// depth-first preorder and are contiguous from 0, so a NodeID doubles as the
// index into the graph's node arena. Node identity across the unified graph
// and its dependent tables is NodeID equality, never frame equality.
type NodeID int32

// InvalidNode marks the absence of a node.
const InvalidNode NodeID = -1

type node struct {
	frame    Frame
	depth    int32
	children []NodeID
	parents  []NodeID
}

// Graph is a single call graph. Nodes live in an arena indexed by NodeID.
// A well-formed graph has exactly one root (id 0) and its arena order is
// depth-first preorder; graphs are trees of call paths in the common case but
// nodes may have multiple parents. Graphs are immutable after construction;
// they are only ever built by a Builder, Union or Clone.
type Graph struct {
	nodes []node
	roots []NodeID
}

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// Roots returns the ids of all parentless nodes, in id order.
// The returned slice must not be modified.
func (g *Graph) Roots() []NodeID {
	return g.roots
}

// Root returns the single root of the graph. It fails if the graph is empty
// or has more than one root.
func (g *Graph) Root() (NodeID, error) {
	if len(g.roots) != 1 {
		return InvalidNode, fmt.Errorf("expected exactly one root, have %d", len(g.roots))
	}
	return g.roots[0], nil
}

// Frame returns the frame of the given node.
func (g *Graph) Frame(id NodeID) Frame {
	return g.nodes[id].frame
}

// Depth returns the depth of the given node. Roots have depth 0.
func (g *Graph) Depth(id NodeID) int32 {
	return g.nodes[id].depth
}

// Children returns the ordered child ids of the given node.
// The returned slice must not be modified.
func (g *Graph) Children(id NodeID) []NodeID {
	return g.nodes[id].children
}

// Parents returns the ordered parent ids of the given node.
// The returned slice must not be modified.
func (g *Graph) Parents(id NodeID) []NodeID {
	return g.nodes[id].parents
}

// Clone returns a deep copy of the graph. The copy shares no mutable state
// with the original; frames are interned and thus shared by design.
func (g *Graph) Clone() *Graph {
	nodes := make([]node, len(g.nodes))
	for i := range g.nodes {
		nodes[i] = node{
			frame:    g.nodes[i].frame,
			depth:    g.nodes[i].depth,
			children: slices.Clone(g.nodes[i].children),
			parents:  slices.Clone(g.nodes[i].parents),
		}
	}
	return &Graph{nodes: nodes, roots: slices.Clone(g.roots)}
}

// DFSOrder returns the node ids in depth-first preorder, starting from the
// roots in id order and visiting children in their stored order. Nodes with
// multiple parents appear once, at their first visit. The traversal uses an
// explicit stack so arbitrarily deep graphs cannot overflow the call stack.
func (g *Graph) DFSOrder() []NodeID {
	order := make([]NodeID, 0, len(g.nodes))
	visited := make([]bool, len(g.nodes))
	// Push roots in reverse so they pop in id order.
	stack := make([]NodeID, 0, len(g.roots))
	for i := len(g.roots) - 1; i >= 0; i-- {
		stack = append(stack, g.roots[i])
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		order = append(order, id)
		children := g.nodes[id].children
		for i := len(children) - 1; i >= 0; i-- {
			if !visited[children[i]] {
				stack = append(stack, children[i])
			}
		}
	}
	return order
}

// CheckWellFormed verifies the structural assumptions unification relies on:
// a single root with id 0, depths increasing by one along every parent edge,
// and node ids assigned contiguously in depth-first preorder. Readers are
// responsible for handing over well-formed graphs; this check exists so a
// caller can reject malformed input before folding it into an ensemble.
func (g *Graph) CheckWellFormed() error {
	if len(g.nodes) == 0 {
		return fmt.Errorf("graph has no nodes")
	}
	if len(g.roots) != 1 {
		return fmt.Errorf("expected exactly one root, have %d", len(g.roots))
	}
	if g.roots[0] != 0 {
		return fmt.Errorf("root has id %d, want 0", g.roots[0])
	}
	for id := range g.nodes {
		n := &g.nodes[id]
		if len(n.parents) == 0 {
			if n.depth != 0 {
				return fmt.Errorf("root node %d has depth %d", id, n.depth)
			}
			continue
		}
		for _, parent := range n.parents {
			if g.nodes[parent].depth != n.depth-1 {
				return fmt.Errorf("node %d has depth %d but parent %d has depth %d",
					id, n.depth, parent, g.nodes[parent].depth)
			}
		}
	}
	order := g.DFSOrder()
	if len(order) != len(g.nodes) {
		return fmt.Errorf("%d of %d nodes are unreachable from the root",
			len(g.nodes)-len(order), len(g.nodes))
	}
	for i, id := range order {
		if id != NodeID(i) {
			return fmt.Errorf("node ids are not in depth-first preorder: "+
				"position %d holds id %d", i, id)
		}
	}
	return nil
}
