// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package pprofreader turns pprof-encoded profiles into the (graph, metrics
// table, metadata record) triple the unification engine consumes. A pprof
// profile is a forest of sampled stacks; the reader roots the forest under a
// single synthetic region frame so the resulting graph is single-rooted, and
// attributes sample values exclusively to the leaf node of each stack.
package pprofreader // import "github.com/callpath/ensemble/pprofreader"

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/pprof/profile"
	"github.com/klauspost/compress/gzip"

	"github.com/callpath/ensemble/callgraph"
	"github.com/callpath/ensemble/ensemble"
	"github.com/callpath/ensemble/internal/log"
	"github.com/callpath/ensemble/metrics"
)

// ReadFile reads a pprof profile from path, assigning it the given profile id.
func ReadFile(path string, id metrics.ProfileID) (*ensemble.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Read(data, path, id)
}

// Read decodes a pprof profile (optionally gzip-compressed) and converts it
// into a Profile. source names the origin for provenance tracking.
func Read(data []byte, source string, id metrics.ProfileID) (*ensemble.Profile, error) {
	raw, err := decompress(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s: %w", source, err)
	}
	p, err := profile.ParseData(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}

	cache, err := newFrameCache()
	if err != nil {
		return nil, err
	}
	bld := callgraph.NewBuilder()
	root := bld.AddRoot(callgraph.NewFrame(rootName(p), callgraph.RegionFrame))

	// Per-node value accumulation, keyed by provisional builder ids. Stacks
	// arrive leaf-first; the graph wants them root-first.
	numTypes := len(p.SampleType)
	values := make(map[callgraph.NodeID][]float64)
	for _, s := range p.Sample {
		node := root
		for li := len(s.Location) - 1; li >= 0; li-- {
			node = appendLocation(bld, cache, node, s.Location[li])
		}
		acc := values[node]
		if acc == nil {
			acc = make([]float64, numTypes)
			values[node] = acc
		}
		for j := 0; j < numTypes && j < len(s.Value); j++ {
			acc[j] += float64(s.Value[j])
		}
	}

	// Row keys in builder-id order keep the table deterministic.
	rowIDs := make([]callgraph.NodeID, 0, len(values))
	for bid := range values {
		rowIDs = append(rowIDs, bid)
	}
	slices.Sort(rowIDs)

	keys := make([]metrics.Key, len(rowIDs))
	names := make([]string, len(rowIDs))
	valueCols := make([][]float64, numTypes)
	for j := range valueCols {
		valueCols[j] = make([]float64, len(rowIDs))
	}
	for i, bid := range rowIDs {
		keys[i] = metrics.Key{Node: bid, Profile: id}
		names[i] = bld.Frame(bid).Name()
		for j := range valueCols {
			valueCols[j][i] = values[bid][j]
		}
	}
	cols := make([]*metrics.Column, 0, numTypes+1)
	for j, st := range p.SampleType {
		cols = append(cols, metrics.NewFloatColumn(sampleTypeName(st), valueCols[j]))
	}
	cols = append(cols, metrics.NewStringColumn("name", names))

	table, err := metrics.New(keys, cols...)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble metrics for %s: %w", source, err)
	}

	// Renumber to depth-first ids and move the table into the final id space
	// with the same reindexing machinery unification uses.
	graph, remap := bld.Finish()
	table, err = table.ApplyMapping(remap)
	if err != nil {
		return nil, fmt.Errorf("failed to reindex metrics for %s: %w", source, err)
	}

	log.Debugf("read %s: %d samples, %d nodes, %d metric rows",
		source, len(p.Sample), graph.NumNodes(), table.NumRows())
	return &ensemble.Profile{
		ID:       id,
		Graph:    graph,
		Metrics:  table,
		Metadata: metadata(p),
		Source:   source,
	}, nil
}

// appendLocation descends from node through the frames of one pprof
// location. Locations with inlining information carry multiple lines,
// innermost first; the outermost line is the actual call, the inner ones are
// marked as inline frames.
func appendLocation(bld *callgraph.Builder, cache *frameCache,
	node callgraph.NodeID, loc *profile.Location) callgraph.NodeID {
	if len(loc.Line) == 0 || loc.Line[len(loc.Line)-1].Function == nil {
		frame := callgraph.NewFrame(fmt.Sprintf("%#x", loc.Address), callgraph.NativeFrame)
		return bld.Child(node, frame)
	}
	kernel := loc.Mapping != nil && strings.HasPrefix(loc.Mapping.File, "[kernel")
	for lj := len(loc.Line) - 1; lj >= 0; lj-- {
		line := loc.Line[lj]
		if line.Function == nil {
			continue
		}
		ty := callgraph.FunctionFrame
		switch {
		case kernel:
			ty = callgraph.KernelFrame
		case lj < len(loc.Line)-1:
			ty = callgraph.InlineFrame
		}
		node = bld.Child(node, cache.frameFor(line.Function, ty))
	}
	return node
}

// rootName derives the synthetic root frame's name from the profiled
// binary, so that profiles of the same program merge at the root.
func rootName(p *profile.Profile) string {
	if len(p.Mapping) > 0 && p.Mapping[0].File != "" {
		return filepath.Base(p.Mapping[0].File)
	}
	return "<program>"
}

func sampleTypeName(st *profile.ValueType) string {
	if st.Unit == "" {
		return st.Type
	}
	return st.Type + "/" + st.Unit
}

func metadata(p *profile.Profile) ensemble.Record {
	rec := ensemble.Record{
		"time_nanos":     p.TimeNanos,
		"duration_nanos": p.DurationNanos,
		"period":         p.Period,
	}
	if p.PeriodType != nil {
		rec["period_type"] = sampleTypeName(p.PeriodType)
	}
	if p.DefaultSampleType != "" {
		rec["default_sample_type"] = p.DefaultSampleType
	}
	if p.DocURL != "" {
		rec["doc_url"] = p.DocURL
	}
	if len(p.Comments) > 0 {
		rec["comments"] = slices.Clone(p.Comments)
	}
	return rec
}

func decompress(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return data, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
