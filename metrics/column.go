// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package metrics // import "github.com/callpath/ensemble/metrics"

import (
	"math"
	"slices"
)

// ColumnKind is the value type of a column.
type ColumnKind uint8

const (
	// FloatKind columns hold float64 measurements; missing cells are NaN.
	FloatKind ColumnKind = iota
	// StringKind columns hold strings; missing cells are empty.
	StringKind
)

// String implements the Stringer interface.
func (k ColumnKind) String() string {
	switch k {
	case FloatKind:
		return "float"
	case StringKind:
		return "string"
	default:
		return "unknown"
	}
}

// Column is one named value vector of a Table, index-aligned with the table's
// row keys. Group is an optional outer label used when tables from several
// metric sources are concatenated column-wise.
type Column struct {
	Group string
	Name  string

	kind   ColumnKind
	floats []float64
	strs   []string
}

// NewFloatColumn creates a float column from the given values.
// The slice is used as-is and must not be modified afterwards.
func NewFloatColumn(name string, values []float64) *Column {
	return &Column{Name: name, kind: FloatKind, floats: values}
}

// NewStringColumn creates a string column from the given values.
// The slice is used as-is and must not be modified afterwards.
func NewStringColumn(name string, values []string) *Column {
	return &Column{Name: name, kind: StringKind, strs: values}
}

// Kind returns the column's value type.
func (c *Column) Kind() ColumnKind {
	return c.kind
}

// Len returns the number of cells.
func (c *Column) Len() int {
	if c.kind == StringKind {
		return len(c.strs)
	}
	return len(c.floats)
}

// FloatAt returns the float value of cell i. It must only be called on
// FloatKind columns.
func (c *Column) FloatAt(i int) float64 {
	return c.floats[i]
}

// StringAt returns the string value of cell i. It must only be called on
// StringKind columns.
func (c *Column) StringAt(i int) string {
	return c.strs[i]
}

func (c *Column) clone() *Column {
	return &Column{
		Group:  c.Group,
		Name:   c.Name,
		kind:   c.kind,
		floats: slices.Clone(c.floats),
		strs:   slices.Clone(c.strs),
	}
}

// empty returns a zero-length column with the same identity and kind.
func (c *Column) empty(capacity int) *Column {
	out := &Column{Group: c.Group, Name: c.Name, kind: c.kind}
	if c.kind == StringKind {
		out.strs = make([]string, 0, capacity)
	} else {
		out.floats = make([]float64, 0, capacity)
	}
	return out
}

func (c *Column) appendFrom(src *Column, i int) {
	if c.kind == StringKind {
		c.strs = append(c.strs, src.strs[i])
	} else {
		c.floats = append(c.floats, src.floats[i])
	}
}

func (c *Column) appendMissing() {
	if c.kind == StringKind {
		c.strs = append(c.strs, "")
	} else {
		c.floats = append(c.floats, math.NaN())
	}
}

// reorder permutes the cells so that cell i of the result holds the cell
// perm[i] of the input.
func (c *Column) reorder(perm []int) {
	if c.kind == StringKind {
		out := make([]string, len(perm))
		for i, j := range perm {
			out[i] = c.strs[j]
		}
		c.strs = out
		return
	}
	out := make([]float64, len(perm))
	for i, j := range perm {
		out[i] = c.floats[j]
	}
	c.floats = out
}

// columnID is the identity of a column across tables.
type columnID struct {
	group string
	name  string
}

func (c *Column) id() columnID {
	return columnID{group: c.Group, name: c.Name}
}
