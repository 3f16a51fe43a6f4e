// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package metrics // import "github.com/callpath/ensemble/metrics"

import (
	"github.com/callpath/ensemble/callgraph"
)

// ApplyMapping returns a new table whose row keys have their node component
// rewritten through mapping. The operation is atomic: if any key's node is
// unmapped, an UnmappedNodeError is returned and no table is produced. Row
// order and all cell values are preserved; the receiver is not modified.
//
// Cost is linear in the row count. Callers folding many graphs compose their
// mappings first and call this exactly once per source table.
func (t *Table) ApplyMapping(mapping callgraph.NodeMapping) (*Table, error) {
	keys := make([]Key, len(t.keys))
	for i, k := range t.keys {
		mapped, ok := mapping.Lookup(k.Node)
		if !ok {
			return nil, &UnmappedNodeError{Key: k}
		}
		keys[i] = Key{Node: mapped, Profile: k.Profile}
	}
	// A union mapping never merges two nodes of one input, so a collision
	// here means the supplied mapping does not fit the table's graph.
	if dup, ok := findDuplicateKey(keys); ok {
		return nil, &DuplicateKeyError{Key: dup, Detail: "mapping merged distinct row keys"}
	}
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.clone()
	}
	return &Table{keys: keys, cols: cols}, nil
}
