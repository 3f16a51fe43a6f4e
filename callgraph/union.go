// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package callgraph // import "github.com/callpath/ensemble/callgraph"

// Union merges two well-formed graphs into a new graph and returns it
// together with one total mapping per input (old node id → id in the merged
// graph). Two nodes merge iff they sit at the same structural position, their
// depths are equal and their frames are equal; node ids carry no identity
// across graphs and are never compared. Unmatched subtrees are copied whole,
// parented under the already-merged parent, with A's children ordered before
// B-only children. Neither input is mutated and the output shares no nodes
// with either input.
//
// An empty input yields a copy of the other graph, with an empty mapping for
// the empty side and an identity mapping for the other.
func Union(a, b *Graph) (*Graph, NodeMapping, NodeMapping) {
	if a.NumNodes() == 0 {
		out := b.Clone()
		return out, NodeMapping{}, IdentityMapping(b.NumNodes())
	}
	if b.NumNodes() == 0 {
		out := a.Clone()
		return out, IdentityMapping(a.NumNodes()), NodeMapping{}
	}

	u := &unionState{
		a:    a,
		b:    b,
		bld:  NewBuilder(),
		mapA: NewNodeMapping(a.NumNodes()),
		mapB: NewNodeMapping(b.NumNodes()),
	}
	u.run()

	out, remap := u.bld.Finish()
	return out, u.mapA.Compose(remap), u.mapB.Compose(remap)
}

type unionState struct {
	a, b *Graph
	bld  *Builder
	// mapA/mapB hold provisional builder ids until the final renumbering.
	mapA, mapB NodeMapping
}

// siblingTask compares the children of one merged node: aNodes from graph A
// against bNodes from graph B. parent is the provisional id of the merged
// parent, or InvalidNode for the root level.
type siblingTask struct {
	parent NodeID
	aNodes []NodeID
	bNodes []NodeID
}

type nodePair struct {
	a, b NodeID
}

// run walks both graphs with an explicit worklist. Call trees routinely reach
// thousands of frames deep, so none of this may recurse.
func (u *unionState) run() {
	stack := []siblingTask{{parent: InvalidNode, aNodes: u.a.Roots(), bNodes: u.b.Roots()}}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, p := range u.matchSiblings(t.aNodes, t.bNodes) {
			switch {
			case p.a != InvalidNode && p.b != InvalidNode:
				stack = u.emitPair(t.parent, p, stack)
			case p.a != InvalidNode:
				u.emitSingle(u.a, p.a, t.parent, u.mapA)
			default:
				u.emitSingle(u.b, p.b, t.parent, u.mapB)
			}
		}
	}
}

// matchSiblings pairs up two sibling groups by frame equality. Each A node
// takes the first not-yet-consumed B sibling with an equal depth and frame;
// sibling nodes sharing an identical frame stay distinct and pair up in
// traversal order. Unpaired A nodes come first (in A order), then unpaired B
// nodes (in B order).
func (u *unionState) matchSiblings(aNodes, bNodes []NodeID) []nodePair {
	pairs := make([]nodePair, 0, len(aNodes)+len(bNodes))
	consumed := make([]bool, len(bNodes))
	for _, an := range aNodes {
		match := InvalidNode
		for j, bn := range bNodes {
			if consumed[j] {
				continue
			}
			if u.a.Frame(an) == u.b.Frame(bn) && u.a.Depth(an) == u.b.Depth(bn) {
				consumed[j] = true
				match = bn
				break
			}
		}
		pairs = append(pairs, nodePair{a: an, b: match})
	}
	for j, bn := range bNodes {
		if !consumed[j] {
			pairs = append(pairs, nodePair{a: InvalidNode, b: bn})
		}
	}
	return pairs
}

// emitPair merges one matched pair into a fresh output node and schedules the
// comparison of their children. Nodes already merged through another parent
// are only re-linked; a pair whose sides disagree on whether they were seen
// before falls back to copying the unseen side whole.
func (u *unionState) emitPair(parent NodeID, p nodePair,
	stack []siblingTask) []siblingTask {
	outA, okA := u.mapA.Lookup(p.a)
	outB, okB := u.mapB.Lookup(p.b)
	switch {
	case okA && okB:
		u.link(parent, outA)
	case okA:
		u.link(parent, outA)
		u.emitSingle(u.b, p.b, parent, u.mapB)
	case okB:
		u.link(parent, outB)
		u.emitSingle(u.a, p.a, parent, u.mapA)
	default:
		out := u.newNode(parent, u.a.Frame(p.a))
		u.mapA[p.a] = out
		u.mapB[p.b] = out
		stack = append(stack, siblingTask{
			parent: out,
			aNodes: u.a.Children(p.a),
			bNodes: u.b.Children(p.b),
		})
	}
	return stack
}

// emitSingle copies the whole subtree rooted at src into the output under
// parent, recording mappings in m. Subtree nodes reached before through
// another parent are linked instead of copied again.
func (u *unionState) emitSingle(src *Graph, root, parent NodeID, m NodeMapping) {
	type copyTask struct {
		src    NodeID
		parent NodeID
	}
	stack := []copyTask{{src: root, parent: parent}}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if out, ok := m.Lookup(t.src); ok {
			u.link(t.parent, out)
			continue
		}
		out := u.newNode(t.parent, src.Frame(t.src))
		m[t.src] = out
		children := src.Children(t.src)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, copyTask{src: children[i], parent: out})
		}
	}
}

func (u *unionState) newNode(parent NodeID, frame Frame) NodeID {
	if parent == InvalidNode {
		return u.bld.AddRoot(frame)
	}
	return u.bld.AddChild(parent, frame)
}

func (u *unionState) link(parent, child NodeID) {
	if parent == InvalidNode || child == InvalidNode {
		return
	}
	u.bld.Link(parent, child)
}
