// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package ensemble merges independently recorded profiles (each a call
// graph, a per-node metrics table and a run-metadata record) into one
// consistent ensemble: a unified graph plus stacked tables keyed against it.
package ensemble // import "github.com/callpath/ensemble/ensemble"

import (
	"fmt"

	"github.com/callpath/ensemble/callgraph"
	"github.com/callpath/ensemble/metrics"
)

// Record holds the free-form run metadata of one profile (machine, build and
// run information as reported by the profiling tool).
type Record map[string]any

// Profile is the output triple of a profile reader: one call graph, one
// metrics table keyed by (node-of-that-graph, ID), and one metadata record.
// Source names where the profile came from, typically a file path.
type Profile struct {
	ID       metrics.ProfileID
	Graph    *callgraph.Graph
	Metrics  *metrics.Table
	Metadata Record
	Source   string
}

// check verifies the reader output contract before the profile enters a
// unification fold: a well-formed single-rooted graph with contiguous
// depth-first ids, and a metrics table whose rows reference only this
// profile's id and nodes of this graph.
func (p *Profile) check() error {
	if p.Graph == nil || p.Metrics == nil {
		return &MalformedInputError{
			Profile: p.ID,
			Source:  p.Source,
			Err:     fmt.Errorf("profile is missing its graph or metrics table"),
		}
	}
	if err := p.Graph.CheckWellFormed(); err != nil {
		return &MalformedInputError{Profile: p.ID, Source: p.Source, Err: err}
	}
	numNodes := callgraph.NodeID(p.Graph.NumNodes())
	for _, k := range p.Metrics.Keys() {
		if k.Profile != p.ID {
			return &MalformedInputError{
				Profile: p.ID,
				Source:  p.Source,
				Err: fmt.Errorf("metrics row carries foreign profile id %d",
					k.Profile),
			}
		}
		if k.Node < 0 || k.Node >= numNodes {
			return &MalformedInputError{
				Profile: p.ID,
				Source:  p.Source,
				Err: fmt.Errorf("metrics row references node %d outside the graph (%d nodes)",
					k.Node, numNodes),
			}
		}
	}
	return nil
}
