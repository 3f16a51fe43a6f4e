// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package metrics // import "github.com/callpath/ensemble/metrics"

import (
	"fmt"
	"slices"

	"github.com/callpath/ensemble/callgraph"
)

// ConcatRows stacks the rows of the given tables into one table. Each profile
// must be contributed by exactly one input: a profile id appearing in two
// inputs surfaces as a DuplicateKeyError, never as a silent overwrite, even
// when the colliding inputs carry disjoint node sets. Since every table is
// duplicate-free on its own, this also keeps row keys globally unique. The
// column set of the result is the union of the input columns, identified by
// (group, name); cells a table does not provide are filled with NaN (float
// columns) or "" (string columns). Result rows are ordered node-major, then
// profile-major, which makes the stacked table a coherent per-node, per-run
// panel. Inputs are not modified.
func ConcatRows(tables ...*Table) (*Table, error) {
	totalRows := 0
	var colOrder []columnID
	colKind := make(map[columnID]ColumnKind)
	seenProfiles := make(map[ProfileID]struct{})
	for _, t := range tables {
		totalRows += t.NumRows()
		for _, id := range t.Profiles() {
			if _, ok := seenProfiles[id]; ok {
				return nil, &DuplicateKeyError{
					Key:    Key{Node: callgraph.InvalidNode, Profile: id},
					Detail: fmt.Sprintf("profile %d is contributed by more than one input", id),
				}
			}
			seenProfiles[id] = struct{}{}
		}
		for _, c := range t.cols {
			id := c.id()
			kind, ok := colKind[id]
			if !ok {
				colKind[id] = c.kind
				colOrder = append(colOrder, id)
				continue
			}
			if kind != c.kind {
				return nil, fmt.Errorf("column %q is %s in one input and %s in another",
					c.Name, kind, c.kind)
			}
		}
	}

	keys := make([]Key, 0, totalRows)
	cols := make([]*Column, len(colOrder))
	for i, id := range colOrder {
		cols[i] = (&Column{Group: id.group, Name: id.name, kind: colKind[id]}).empty(totalRows)
	}

	for _, t := range tables {
		srcByID := make(map[columnID]*Column, len(t.cols))
		for _, c := range t.cols {
			srcByID[c.id()] = c
		}
		for row, k := range t.keys {
			keys = append(keys, k)
			for i, id := range colOrder {
				if src, ok := srcByID[id]; ok {
					cols[i].appendFrom(src, row)
				} else {
					cols[i].appendMissing()
				}
			}
		}
	}

	out := &Table{keys: keys, cols: cols}
	out.sortByKey()
	return out, nil
}

// ConcatColumns glues the columns of several tables that share identical row
// keys side by side, labeling each input's columns with the corresponding
// outer group label. It is used when several metric sources describe the same
// rows with disjoint or overlapping column sets; the group label keeps equal
// column names from colliding. Inputs are not modified.
func ConcatColumns(tables []*Table, groups []string) (*Table, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables to concatenate")
	}
	if len(tables) != len(groups) {
		return nil, fmt.Errorf("have %d tables but %d group labels", len(tables), len(groups))
	}
	base := tables[0].keys
	for _, t := range tables[1:] {
		if len(t.keys) != len(base) {
			return nil, fmt.Errorf("row counts differ: %d vs %d", len(base), len(t.keys))
		}
		for i := range base {
			if t.keys[i] != base[i] {
				return nil, &DuplicateKeyError{
					Key:    t.keys[i],
					Detail: fmt.Sprintf("row %d does not align across inputs", i),
				}
			}
		}
	}

	var cols []*Column
	seen := make(map[columnID]struct{})
	for ti, t := range tables {
		for _, c := range t.cols {
			out := c.clone()
			out.Group = groups[ti]
			if _, ok := seen[out.id()]; ok {
				return nil, fmt.Errorf("column %q appears twice under group %q",
					out.Name, out.Group)
			}
			seen[out.id()] = struct{}{}
			cols = append(cols, out)
		}
	}
	return &Table{keys: slices.Clone(base), cols: cols}, nil
}
