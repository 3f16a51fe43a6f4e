// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package callgraph // import "github.com/callpath/ensemble/callgraph"

// NodeMapping maps node ids of a source graph to their counterparts in a
// derived graph. Because source ids are contiguous it is a dense slice
// indexed by the old id; entries holding InvalidNode are unmapped. A mapping
// is transient: it is produced by one union or renumbering step, applied (or
// composed) once, and then discarded.
type NodeMapping []NodeID

// NewNodeMapping returns a mapping for a source graph of n nodes with every
// entry unmapped.
func NewNodeMapping(n int) NodeMapping {
	m := make(NodeMapping, n)
	for i := range m {
		m[i] = InvalidNode
	}
	return m
}

// IdentityMapping returns a mapping that maps every id of a source graph of
// n nodes to itself.
func IdentityMapping(n int) NodeMapping {
	m := make(NodeMapping, n)
	for i := range m {
		m[i] = NodeID(i)
	}
	return m
}

// Lookup returns the mapped id for old and whether a mapping exists.
func (m NodeMapping) Lookup(old NodeID) (NodeID, bool) {
	if old < 0 || int(old) >= len(m) || m[old] == InvalidNode {
		return InvalidNode, false
	}
	return m[old], true
}

// Total reports whether every source id has a mapping.
func (m NodeMapping) Total() bool {
	for _, id := range m {
		if id == InvalidNode {
			return false
		}
	}
	return true
}

// Compose chains next onto m: the result maps old ids through m and then
// through next. This is the accumulator operation of the unification fold:
// composing two mappings is bounded by node count, so dependent tables only
// need a single reindex pass at the very end instead of one per fold step.
func (m NodeMapping) Compose(next NodeMapping) NodeMapping {
	out := make(NodeMapping, len(m))
	for i, mid := range m {
		if mid == InvalidNode {
			out[i] = InvalidNode
			continue
		}
		out[i], _ = next.Lookup(mid)
	}
	return out
}
