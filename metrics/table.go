// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics implements the row-keyed columnar tables that carry
// per-node measurements through profile unification: bulk application of
// node mappings, row-wise and column-wise concatenation, and the node-major
// key order the merged result is served in.
package metrics // import "github.com/callpath/ensemble/metrics"

import (
	"fmt"
	"slices"

	"github.com/callpath/ensemble/callgraph"
)

// ProfileID identifies one recorded profile within an ensemble. It is opaque
// to this package; readers assign it, unification only requires uniqueness.
type ProfileID int32

// Key is the row key of a metrics table: one node of one graph, measured in
// one profile. Node carries identity relative to a specific graph; applying
// a NodeMapping moves keys from one graph's id space into another's.
type Key struct {
	Node    callgraph.NodeID
	Profile ProfileID
}

// Compare orders keys node-major, then profile-major.
func (k Key) Compare(other Key) int {
	if c := int(k.Node) - int(other.Node); c != 0 {
		return c
	}
	return int(k.Profile) - int(other.Profile)
}

// Table is an immutable columnar table with (node, profile) row keys.
// All operations return new tables and leave their receivers untouched.
type Table struct {
	keys []Key
	cols []*Column
}

// New creates a table from row keys and index-aligned columns. Every column
// must have exactly one cell per key and keys must be unique.
func New(keys []Key, cols ...*Column) (*Table, error) {
	for _, c := range cols {
		if c.Len() != len(keys) {
			return nil, fmt.Errorf("column %q has %d cells for %d row keys",
				c.Name, c.Len(), len(keys))
		}
	}
	if dup, ok := findDuplicateKey(keys); ok {
		return nil, &DuplicateKeyError{Key: dup}
	}
	return &Table{keys: slices.Clone(keys), cols: cols}, nil
}

func findDuplicateKey(keys []Key) (Key, bool) {
	seen := make(map[Key]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			return k, true
		}
		seen[k] = struct{}{}
	}
	return Key{}, false
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.keys)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.cols)
}

// Key returns the row key at index i.
func (t *Table) Key(i int) Key {
	return t.keys[i]
}

// Keys returns all row keys in row order.
// The returned slice must not be modified.
func (t *Table) Keys() []Key {
	return t.keys
}

// Columns returns the columns in column order.
// The returned slice must not be modified.
func (t *Table) Columns() []*Column {
	return t.cols
}

// Column looks a column up by group and name.
func (t *Table) Column(group, name string) (*Column, bool) {
	for _, c := range t.cols {
		if c.Group == group && c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ColumnByName looks a column up by name alone, across all groups.
func (t *Table) ColumnByName(name string) (*Column, bool) {
	for _, c := range t.cols {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Profiles returns the distinct profile ids present in the row keys, sorted.
func (t *Table) Profiles() []ProfileID {
	seen := make(map[ProfileID]struct{})
	for _, k := range t.keys {
		seen[k.Profile] = struct{}{}
	}
	out := make([]ProfileID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// sortByKey reorders the rows node-major, then profile-major. The sort is
// stable so equal keys (which New and ConcatRows reject anyway) would keep
// their relative order.
func (t *Table) sortByKey() {
	perm := make([]int, len(t.keys))
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(x, y int) int {
		return t.keys[x].Compare(t.keys[y])
	})
	keys := make([]Key, len(perm))
	for i, j := range perm {
		keys[i] = t.keys[j]
	}
	t.keys = keys
	for _, c := range t.cols {
		c.reorder(perm)
	}
}
