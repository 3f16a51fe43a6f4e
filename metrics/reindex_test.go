// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callpath/ensemble/callgraph"
)

func TestApplyMappingRewritesKeys(t *testing.T) {
	tbl, err := New([]Key{key(0, 1), key(1, 1), key(2, 1)},
		NewFloatColumn("time", []float64{1, 2, 3}),
		NewStringColumn("name", []string{"main", "foo", "bar"}))
	require.NoError(t, err)

	mapped, err := tbl.ApplyMapping(callgraph.NodeMapping{4, 0, 2})
	require.NoError(t, err)
	assert.Equal(t, []Key{key(4, 1), key(0, 1), key(2, 1)}, mapped.Keys())

	// Values move with their rows, the input table is untouched.
	c, _ := mapped.ColumnByName("time")
	assert.Equal(t, []float64{1, 2, 3}, []float64{c.FloatAt(0), c.FloatAt(1), c.FloatAt(2)})
	assert.Equal(t, []Key{key(0, 1), key(1, 1), key(2, 1)}, tbl.Keys())
}

func TestApplyMappingFailsOnUnmappedNode(t *testing.T) {
	tbl, err := New([]Key{key(0, 1), key(5, 1)},
		NewFloatColumn("time", []float64{1, 2}))
	require.NoError(t, err)

	tests := map[string]callgraph.NodeMapping{
		"mapping too short":   {3},
		"explicitly unmapped": {3, 0, 0, 0, 0, callgraph.InvalidNode},
	}
	for name, mapping := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tbl.ApplyMapping(mapping)
			var unmapped *UnmappedNodeError
			require.ErrorAs(t, err, &unmapped)
			assert.Equal(t, key(5, 1), unmapped.Key)
		})
	}
}

func TestApplyMappingRejectsMergedKeys(t *testing.T) {
	tbl, err := New([]Key{key(0, 1), key(1, 1)},
		NewFloatColumn("time", []float64{1, 2}))
	require.NoError(t, err)

	// A mapping that folds two nodes together would silently collapse rows.
	_, err = tbl.ApplyMapping(callgraph.NodeMapping{3, 3})
	var dup *DuplicateKeyError
	require.ErrorAs(t, err, &dup)
}

func TestApplyIdentityMapping(t *testing.T) {
	tbl, err := New([]Key{key(0, 1), key(1, 1)},
		NewFloatColumn("time", []float64{1, 2}))
	require.NoError(t, err)

	mapped, err := tbl.ApplyMapping(callgraph.IdentityMapping(2))
	require.NoError(t, err)
	assert.Equal(t, tbl.Keys(), mapped.Keys())
}
