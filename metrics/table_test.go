// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callpath/ensemble/callgraph"
)

func key(node callgraph.NodeID, prof ProfileID) Key {
	return Key{Node: node, Profile: prof}
}

func TestNewChecksShape(t *testing.T) {
	keys := []Key{key(0, 1), key(1, 1)}

	_, err := New(keys, NewFloatColumn("time", []float64{1.0}))
	assert.Error(t, err)

	_, err = New([]Key{key(0, 1), key(0, 1)},
		NewFloatColumn("time", []float64{1.0, 2.0}))
	var dup *DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, key(0, 1), dup.Key)

	tbl, err := New(keys,
		NewFloatColumn("time", []float64{1.0, 2.0}),
		NewStringColumn("name", []string{"main", "foo"}))
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, 2, tbl.NumColumns())
}

func TestColumnLookup(t *testing.T) {
	tbl, err := New([]Key{key(0, 1)},
		NewFloatColumn("time", []float64{3.5}),
		NewStringColumn("name", []string{"main"}))
	require.NoError(t, err)

	c, ok := tbl.ColumnByName("time")
	require.True(t, ok)
	assert.Equal(t, FloatKind, c.Kind())
	assert.Equal(t, 3.5, c.FloatAt(0))

	c, ok = tbl.Column("", "name")
	require.True(t, ok)
	assert.Equal(t, StringKind, c.Kind())
	assert.Equal(t, "main", c.StringAt(0))

	_, ok = tbl.Column("other", "name")
	assert.False(t, ok)
	_, ok = tbl.ColumnByName("missing")
	assert.False(t, ok)
}

func TestProfilesAreSortedAndDistinct(t *testing.T) {
	tbl, err := New([]Key{key(0, 7), key(1, 2), key(2, 7), key(0, 2)},
		NewFloatColumn("time", []float64{1, 2, 3, 4}))
	require.NoError(t, err)
	assert.Equal(t, []ProfileID{2, 7}, tbl.Profiles())
}

func TestKeyCompareIsNodeMajor(t *testing.T) {
	assert.Negative(t, key(0, 9).Compare(key(1, 0)))
	assert.Positive(t, key(2, 0).Compare(key(1, 9)))
	assert.Negative(t, key(1, 1).Compare(key(1, 2)))
	assert.Zero(t, key(1, 1).Compare(key(1, 1)))
}
