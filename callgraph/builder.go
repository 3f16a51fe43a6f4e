// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package callgraph // import "github.com/callpath/ensemble/callgraph"

type childKey struct {
	parent NodeID
	frame  Frame
}

// Builder constructs a Graph incrementally. Node ids handed out by the
// builder are provisional insertion-order ids; Finish renumbers the graph to
// depth-first preorder and returns a NodeMapping from provisional to final
// ids so that any data keyed on provisional ids can be reindexed with the
// same machinery unification uses.
type Builder struct {
	nodes []node
	roots []NodeID
	index map[childKey]NodeID
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{index: make(map[childKey]NodeID)}
}

// NumNodes returns the number of nodes added so far.
func (b *Builder) NumNodes() int {
	return len(b.nodes)
}

// Frame returns the frame of the given provisional node.
func (b *Builder) Frame(id NodeID) Frame {
	return b.nodes[id].frame
}

// Depth returns the depth of the given provisional node.
func (b *Builder) Depth(id NodeID) int32 {
	return b.nodes[id].depth
}

// AddRoot appends a new root node with the given frame.
func (b *Builder) AddRoot(frame Frame) NodeID {
	id := NodeID(len(b.nodes))
	b.nodes = append(b.nodes, node{frame: frame})
	b.roots = append(b.roots, id)
	return id
}

// Child returns the child of parent carrying the given frame, creating it if
// it does not exist yet. This is the path-building primitive for readers:
// repeated samples through the same call path collapse onto one node.
func (b *Builder) Child(parent NodeID, frame Frame) NodeID {
	key := childKey{parent: parent, frame: frame}
	if id, ok := b.index[key]; ok {
		return id
	}
	id := b.AddChild(parent, frame)
	b.index[key] = id
	return id
}

// AddChild appends a new child node under parent without looking for an
// existing child with an equal frame. Sibling nodes sharing a frame stay
// distinct; graph union relies on this when it copies unmatched subtrees.
func (b *Builder) AddChild(parent NodeID, frame Frame) NodeID {
	id := NodeID(len(b.nodes))
	b.nodes = append(b.nodes, node{
		frame:   frame,
		depth:   b.nodes[parent].depth + 1,
		parents: []NodeID{parent},
	})
	b.nodes[parent].children = append(b.nodes[parent].children, id)
	return id
}

// Link adds an additional parent edge to an existing node. Both nodes must
// already exist and the child must sit one level below the parent.
func (b *Builder) Link(parent, child NodeID) {
	b.nodes[parent].children = append(b.nodes[parent].children, child)
	b.nodes[child].parents = append(b.nodes[child].parents, parent)
}

// Finish renumbers the nodes to depth-first preorder and returns the
// resulting Graph together with the provisional-id → final-id mapping.
// The builder must not be used afterwards.
func (b *Builder) Finish() (*Graph, NodeMapping) {
	remap := NewNodeMapping(len(b.nodes))
	next := NodeID(0)
	stack := make([]NodeID, 0, len(b.roots))
	for i := len(b.roots) - 1; i >= 0; i-- {
		stack = append(stack, b.roots[i])
	}
	for len(stack) > 0 {
		old := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if remap[old] != InvalidNode {
			continue
		}
		remap[old] = next
		next++
		children := b.nodes[old].children
		for i := len(children) - 1; i >= 0; i-- {
			if remap[children[i]] == InvalidNode {
				stack = append(stack, children[i])
			}
		}
	}

	nodes := make([]node, int(next))
	for old := range b.nodes {
		newID := remap[old]
		if newID == InvalidNode {
			// Unreachable from any root; dropped. CheckWellFormed on the
			// result reports the count mismatch to the caller.
			continue
		}
		src := &b.nodes[old]
		dst := &nodes[newID]
		dst.frame = src.frame
		dst.depth = src.depth
		dst.children = remapIDs(src.children, remap)
		dst.parents = remapIDs(src.parents, remap)
	}
	roots := remapIDs(b.roots, remap)
	b.nodes, b.roots, b.index = nil, nil, nil
	return &Graph{nodes: nodes, roots: roots}, remap
}

func remapIDs(ids []NodeID, remap NodeMapping) []NodeID {
	if ids == nil {
		return nil
	}
	out := make([]NodeID, 0, len(ids))
	for _, id := range ids {
		if remap[id] != InvalidNode {
			out = append(out, remap[id])
		}
	}
	return out
}
