// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package ensemble

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callpath/ensemble/callgraph"
	"github.com/callpath/ensemble/metrics"
)

func kinds(violations []Violation) []ViolationKind {
	out := make([]ViolationKind, len(violations))
	for i, v := range violations {
		out[i] = v.Kind
	}
	return out
}

func TestValidatePassesOnUnifiedEnsemble(t *testing.T) {
	e, err := Unify([]*Profile{
		chainProfile(t, 1, "main", "foo"),
		chainProfile(t, 2, "main", "bar"),
	})
	require.NoError(t, err)
	assert.Empty(t, Validate(e))
}

func TestValidateReportsProfileSetMismatch(t *testing.T) {
	e, err := Unify([]*Profile{
		chainProfile(t, 1, "main"),
		chainProfile(t, 2, "main"),
	})
	require.NoError(t, err)

	delete(e.Sources, 2)
	assert.Contains(t, kinds(Validate(e)), ViolationProfileSets)
}

// handMadeEnsemble assembles an ensemble without going through Unify, the
// way an aggregation layer might after filtering tables by hand.
func handMadeEnsemble(t *testing.T, g *callgraph.Graph, tbl *metrics.Table) *Ensemble {
	t.Helper()
	records := make(map[metrics.ProfileID]Record)
	sources := make(ProfileMap)
	for _, id := range tbl.Profiles() {
		records[id] = Record{}
		sources[id] = "hand-made"
	}
	return &Ensemble{
		ID:       uuid.New(),
		Graph:    g,
		Metrics:  tbl,
		Metadata: NewMetadataTable(records),
		Sources:  sources,
	}
}

func TestValidateReportsForeignNodes(t *testing.T) {
	g := chainProfile(t, 1, "main").Graph
	tbl, err := metrics.New(
		[]metrics.Key{{Node: 0, Profile: 1}, {Node: 7, Profile: 1}},
		metrics.NewFloatColumn("time", []float64{1, 2}))
	require.NoError(t, err)

	violations := Validate(handMadeEnsemble(t, g, tbl))
	assert.Contains(t, kinds(violations), ViolationNodeIdentity)
	assert.NotContains(t, kinds(violations), ViolationNameMismatch)
}

func TestValidateReportsNameMismatch(t *testing.T) {
	g := chainProfile(t, 1, "main", "foo").Graph
	tbl, err := metrics.New(
		[]metrics.Key{{Node: 0, Profile: 1}, {Node: 1, Profile: 1}},
		metrics.NewStringColumn("name", []string{"main", "not-foo"}))
	require.NoError(t, err)

	violations := Validate(handMadeEnsemble(t, g, tbl))
	require.Equal(t, []ViolationKind{ViolationNameMismatch}, kinds(violations))
	assert.Contains(t, violations[0].Detail, "not-foo")
}

func TestValidateAllowsAbsentNames(t *testing.T) {
	g := chainProfile(t, 1, "main", "foo").Graph

	// Empty name cells and a missing name column are both fine.
	tbl, err := metrics.New(
		[]metrics.Key{{Node: 0, Profile: 1}, {Node: 1, Profile: 1}},
		metrics.NewStringColumn("name", []string{"main", ""}))
	require.NoError(t, err)
	assert.Empty(t, Validate(handMadeEnsemble(t, g, tbl)))

	tbl, err = metrics.New(
		[]metrics.Key{{Node: 0, Profile: 1}},
		metrics.NewFloatColumn("time", []float64{1}))
	require.NoError(t, err)
	assert.Empty(t, Validate(handMadeEnsemble(t, g, tbl)))
}

func TestValidateReportsMultipleRoots(t *testing.T) {
	b := callgraph.NewBuilder()
	b.AddRoot(callgraph.NewFrame("a", callgraph.FunctionFrame))
	b.AddRoot(callgraph.NewFrame("b", callgraph.FunctionFrame))
	forest, _ := b.Finish()

	tbl, err := metrics.New(
		[]metrics.Key{{Node: 0, Profile: 1}},
		metrics.NewFloatColumn("time", []float64{1}))
	require.NoError(t, err)

	violations := Validate(handMadeEnsemble(t, forest, tbl))
	assert.Contains(t, kinds(violations), ViolationMultipleRoots)
	// A two-root forest is still id-contiguous.
	assert.NotContains(t, kinds(violations), ViolationIDContiguity)
}

func TestViolationStrings(t *testing.T) {
	v := Violation{Kind: ViolationNameMismatch, Detail: "row 3"}
	assert.Equal(t, "name-mismatch: row 3", v.String())

	for _, k := range []ViolationKind{ViolationNodeIdentity, ViolationProfileSets,
		ViolationIDContiguity, ViolationNameMismatch, ViolationDuplicateKey,
		ViolationMultipleRoots} {
		assert.NotEqual(t, "unknown", k.String())
	}
}
