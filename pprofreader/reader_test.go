// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package pprofreader

import (
	"bytes"
	"testing"

	"github.com/google/pprof/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callpath/ensemble/callgraph"
	"github.com/callpath/ensemble/ensemble"
	"github.com/callpath/ensemble/metrics"
)

// testProfile builds an in-memory pprof profile:
//
//	main -> foo (10 samples, 100ns)
//	main -> bar (5 samples, 50ns)
func testProfile() *profile.Profile {
	mapping := &profile.Mapping{ID: 1, File: "/usr/bin/testprog", HasFunctions: true}
	fnMain := &profile.Function{ID: 1, Name: "main", Filename: "main.go"}
	fnFoo := &profile.Function{ID: 2, Name: "foo", Filename: "main.go"}
	fnBar := &profile.Function{ID: 3, Name: "bar", Filename: "main.go"}

	locMain := &profile.Location{ID: 1, Mapping: mapping,
		Line: []profile.Line{{Function: fnMain, Line: 10}}}
	locFoo := &profile.Location{ID: 2, Mapping: mapping,
		Line: []profile.Line{{Function: fnFoo, Line: 20}}}
	locBar := &profile.Location{ID: 3, Mapping: mapping,
		Line: []profile.Line{{Function: fnBar, Line: 30}}}

	return &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "samples", Unit: "count"},
			{Type: "cpu", Unit: "nanoseconds"},
		},
		Sample: []*profile.Sample{
			// Stacks are leaf-first.
			{Location: []*profile.Location{locFoo, locMain}, Value: []int64{10, 100}},
			{Location: []*profile.Location{locBar, locMain}, Value: []int64{5, 50}},
		},
		Mapping:       []*profile.Mapping{mapping},
		Location:      []*profile.Location{locMain, locFoo, locBar},
		Function:      []*profile.Function{fnMain, fnFoo, fnBar},
		TimeNanos:     1700000000000000000,
		DurationNanos: 2000000000,
		Period:        10000000,
		PeriodType:    &profile.ValueType{Type: "cpu", Unit: "nanoseconds"},
	}
}

func encode(t *testing.T, p *profile.Profile) []byte {
	t.Helper()
	var buf bytes.Buffer
	// Write emits gzip-compressed data, so this also covers decompression.
	require.NoError(t, p.Write(&buf))
	return buf.Bytes()
}

func TestReadBuildsRootedGraph(t *testing.T) {
	p, err := Read(encode(t, testProfile()), "test.pprof", 1)
	require.NoError(t, err)
	require.NoError(t, p.Graph.CheckWellFormed())

	// Synthetic root named after the binary, then main, foo, bar.
	require.Equal(t, 4, p.Graph.NumNodes())
	root, err := p.Graph.Root()
	require.NoError(t, err)
	assert.Equal(t, "testprog", p.Graph.Frame(root).Name())
	assert.Equal(t, callgraph.RegionFrame, p.Graph.Frame(root).Type())
	assert.Equal(t, "main", p.Graph.Frame(1).Name())
	assert.Equal(t, callgraph.FunctionFrame, p.Graph.Frame(1).Type())
	assert.Len(t, p.Graph.Children(1), 2)
}

func TestReadAttributesValuesToLeaves(t *testing.T) {
	p, err := Read(encode(t, testProfile()), "test.pprof", 3)
	require.NoError(t, err)

	// Only the two leaves carry rows.
	require.Equal(t, 2, p.Metrics.NumRows())
	samples, ok := p.Metrics.ColumnByName("samples/count")
	require.True(t, ok)
	cpu, ok := p.Metrics.ColumnByName("cpu/nanoseconds")
	require.True(t, ok)
	names, ok := p.Metrics.ColumnByName("name")
	require.True(t, ok)

	byName := make(map[string][2]float64, p.Metrics.NumRows())
	for i, k := range p.Metrics.Keys() {
		assert.Equal(t, metrics.ProfileID(3), k.Profile)
		assert.Equal(t, p.Graph.Frame(k.Node).Name(), names.StringAt(i))
		byName[names.StringAt(i)] = [2]float64{samples.FloatAt(i), cpu.FloatAt(i)}
	}
	assert.Equal(t, [2]float64{10, 100}, byName["foo"])
	assert.Equal(t, [2]float64{5, 50}, byName["bar"])
}

func TestReadCollectsMetadata(t *testing.T) {
	p, err := Read(encode(t, testProfile()), "test.pprof", 1)
	require.NoError(t, err)

	assert.Equal(t, "test.pprof", p.Source)
	assert.Equal(t, int64(1700000000000000000), p.Metadata["time_nanos"])
	assert.Equal(t, int64(2000000000), p.Metadata["duration_nanos"])
	assert.Equal(t, int64(10000000), p.Metadata["period"])
	assert.Equal(t, "cpu/nanoseconds", p.Metadata["period_type"])
}

func TestReadExpandsInlineFrames(t *testing.T) {
	p := testProfile()
	fnInline := &profile.Function{ID: 4, Name: "inlined", Filename: "main.go"}
	p.Function = append(p.Function, fnInline)
	// One location carrying an inlined call: innermost line first.
	p.Location[1].Line = []profile.Line{
		{Function: fnInline, Line: 21},
		{Function: p.Function[1], Line: 20}, // foo
	}

	prof, err := Read(encode(t, p), "inline.pprof", 1)
	require.NoError(t, err)

	// root -> main -> foo -> inlined, root -> main -> bar.
	require.Equal(t, 5, prof.Graph.NumNodes())
	var sawInline bool
	for id := callgraph.NodeID(0); int(id) < prof.Graph.NumNodes(); id++ {
		if prof.Graph.Frame(id).Name() == "inlined" {
			sawInline = true
			assert.Equal(t, callgraph.InlineFrame, prof.Graph.Frame(id).Type())
		}
	}
	assert.True(t, sawInline)
}

func TestReadProfilesUnify(t *testing.T) {
	a, err := Read(encode(t, testProfile()), "a.pprof", 0)
	require.NoError(t, err)
	b, err := Read(encode(t, testProfile()), "b.pprof", 1)
	require.NoError(t, err)

	e, err := ensemble.Unify([]*ensemble.Profile{a, b})
	require.NoError(t, err)
	assert.Equal(t, 4, e.Graph.NumNodes())
	assert.Equal(t, 4, e.Metrics.NumRows())
	assert.Empty(t, ensemble.Validate(e))
}

func TestReadRejectsGarbage(t *testing.T) {
	_, err := Read([]byte("not a profile"), "garbage", 1)
	assert.Error(t, err)
}
