// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package ensemble // import "github.com/callpath/ensemble/ensemble"

import (
	"fmt"
	"slices"

	"github.com/callpath/ensemble/callgraph"
	"github.com/callpath/ensemble/metrics"
)

// ViolationKind classifies a consistency violation found in an ensemble.
type ViolationKind uint8

const (
	// ViolationNodeIdentity: a metrics row key references a node id that is
	// not part of the unified graph.
	ViolationNodeIdentity ViolationKind = iota
	// ViolationProfileSets: the profile id sets of the metrics table, the
	// metadata table and the provenance map are not pairwise equal.
	ViolationProfileSets
	// ViolationIDContiguity: the graph's node ids, taken in depth-first
	// order, are not exactly 0..N-1.
	ViolationIDContiguity
	// ViolationNameMismatch: a row's name column disagrees with the frame
	// name of the row's node.
	ViolationNameMismatch
	// ViolationDuplicateKey: two metrics rows share a (node, profile) key.
	ViolationDuplicateKey
	// ViolationMultipleRoots: the graph has more than one root.
	ViolationMultipleRoots
)

// String implements the Stringer interface.
func (k ViolationKind) String() string {
	switch k {
	case ViolationNodeIdentity:
		return "node-identity"
	case ViolationProfileSets:
		return "profile-sets"
	case ViolationIDContiguity:
		return "id-contiguity"
	case ViolationNameMismatch:
		return "name-mismatch"
	case ViolationDuplicateKey:
		return "duplicate-key"
	case ViolationMultipleRoots:
		return "multiple-roots"
	default:
		return "unknown"
	}
}

// Violation is one advisory finding of Validate. Violations are data, not
// errors: they are never thrown, so a caller can log, warn or escalate them
// as it sees fit.
type Violation struct {
	Kind   ViolationKind
	Detail string
}

// String implements the Stringer interface.
func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Detail)
}

// Validate checks the ensemble's cross-table invariants and returns every
// violation it finds; an empty result means the ensemble is consistent. The
// checks are independent and none of them fails fast, so one pass surfaces
// all problems at once. Validate has no side effects and is always safe to
// run, including on ensembles a caller assembled by hand.
func Validate(e *Ensemble) []Violation {
	var out []Violation
	out = append(out, checkNodeIdentity(e)...)
	out = append(out, checkProfileSets(e)...)
	out = append(out, checkIDContiguity(e)...)
	out = append(out, checkNameConsistency(e)...)
	out = append(out, checkDuplicateKeys(e)...)
	out = append(out, checkRoots(e)...)
	return out
}

// checkNodeIdentity verifies that every node referenced by the metrics table
// is a node of the unified graph. Node identity is id equality against the
// graph's contiguous id space, so the membership test is a range check.
func checkNodeIdentity(e *Ensemble) []Violation {
	var out []Violation
	numNodes := callgraph.NodeID(e.Graph.NumNodes())
	for _, k := range e.Metrics.Keys() {
		if k.Node < 0 || k.Node >= numNodes {
			out = append(out, Violation{
				Kind: ViolationNodeIdentity,
				Detail: fmt.Sprintf("row (node %d, profile %d) references a node "+
					"outside the unified graph (%d nodes)", k.Node, k.Profile, numNodes),
			})
		}
	}
	return out
}

func checkProfileSets(e *Ensemble) []Violation {
	var out []Violation
	inMetrics := e.Metrics.Profiles()
	inMetadata := e.Metadata.Profiles()
	inSources := e.Sources.Profiles()
	if !slices.Equal(inMetrics, inMetadata) {
		out = append(out, Violation{
			Kind: ViolationProfileSets,
			Detail: fmt.Sprintf("metrics table has profiles %v but metadata table has %v",
				inMetrics, inMetadata),
		})
	}
	if !slices.Equal(inMetrics, inSources) {
		out = append(out, Violation{
			Kind: ViolationProfileSets,
			Detail: fmt.Sprintf("metrics table has profiles %v but provenance map has %v",
				inMetrics, inSources),
		})
	}
	return out
}

func checkIDContiguity(e *Ensemble) []Violation {
	order := e.Graph.DFSOrder()
	if len(order) != e.Graph.NumNodes() {
		return []Violation{{
			Kind: ViolationIDContiguity,
			Detail: fmt.Sprintf("%d of %d nodes are unreachable from the roots",
				e.Graph.NumNodes()-len(order), e.Graph.NumNodes()),
		}}
	}
	for i, id := range order {
		if id != callgraph.NodeID(i) {
			return []Violation{{
				Kind: ViolationIDContiguity,
				Detail: fmt.Sprintf("depth-first position %d holds node id %d", i, id),
			}}
		}
	}
	return nil
}

// checkNameConsistency compares the "name" column, if the table has one,
// against the frame names of the unified graph. Rows with an empty name cell
// are fine; a reader is not obliged to emit the column at all.
func checkNameConsistency(e *Ensemble) []Violation {
	col, ok := e.Metrics.ColumnByName("name")
	if !ok || col.Kind() != metrics.StringKind {
		return nil
	}
	var out []Violation
	numNodes := callgraph.NodeID(e.Graph.NumNodes())
	for i, k := range e.Metrics.Keys() {
		name := col.StringAt(i)
		if name == "" || k.Node < 0 || k.Node >= numNodes {
			continue
		}
		frameName := e.Graph.Frame(k.Node).Name()
		if name != frameName {
			out = append(out, Violation{
				Kind: ViolationNameMismatch,
				Detail: fmt.Sprintf("row (node %d, profile %d) is named %q but the "+
					"node's frame is named %q", k.Node, k.Profile, name, frameName),
			})
		}
	}
	return out
}

func checkDuplicateKeys(e *Ensemble) []Violation {
	var out []Violation
	seen := make(map[metrics.Key]struct{}, e.Metrics.NumRows())
	for _, k := range e.Metrics.Keys() {
		if _, ok := seen[k]; ok {
			out = append(out, Violation{
				Kind:   ViolationDuplicateKey,
				Detail: fmt.Sprintf("row key (node %d, profile %d) appears twice", k.Node, k.Profile),
			})
			continue
		}
		seen[k] = struct{}{}
	}
	return out
}

func checkRoots(e *Ensemble) []Violation {
	if roots := e.Graph.Roots(); len(roots) > 1 {
		return []Violation{{
			Kind:   ViolationMultipleRoots,
			Detail: fmt.Sprintf("graph has %d roots", len(roots)),
		}}
	}
	return nil
}
