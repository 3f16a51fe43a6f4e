// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package ensemble // import "github.com/callpath/ensemble/ensemble"

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/callpath/ensemble/callgraph"
	"github.com/callpath/ensemble/internal/log"
	"github.com/callpath/ensemble/metrics"
)

// Stats counts the work a unification performed. ReindexPasses stays at one
// per input table no matter how many profiles were folded; the fold composes
// node mappings instead of re-keying tables at every step.
type Stats struct {
	UnionSteps    int
	ReindexPasses int
}

// Ensemble is the result of unifying N profiles: one graph, one metrics
// table and one metadata table. Every row key of the metrics table names a
// node id of the unified graph and a profile present in both the metadata
// table and the provenance map. Consumers may read the
// ensemble freely but must not mutate it; a later unification replaces it
// wholesale rather than patching it.
type Ensemble struct {
	ID       uuid.UUID
	Graph    *callgraph.Graph
	Metrics  *metrics.Table
	Metadata *MetadataTable
	Sources  ProfileMap
	Stats    Stats
}

// graphFingerprint formats a graph's structural hash on demand: the hash is
// only computed if the log line carrying it is actually emitted.
type graphFingerprint struct {
	g *callgraph.Graph
}

func (f graphFingerprint) String() string {
	return fmt.Sprintf("%#016x", callgraph.Fingerprint(f.g))
}

// Unify merges the given profiles into one ensemble. The fold is a strictly
// sequential left-to-right reduction: each pairwise union consumes the
// previous step's output graph. Per-profile node mappings are accumulated by
// composition across the fold and applied to each metrics table exactly once,
// after the last union step. Inputs are never mutated; on error no partial
// ensemble is returned.
func Unify(profiles []*Profile) (*Ensemble, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no profiles to unify")
	}
	seen := make(map[metrics.ProfileID]string, len(profiles))
	for _, p := range profiles {
		if err := p.check(); err != nil {
			return nil, err
		}
		if prev, ok := seen[p.ID]; ok {
			return nil, &metrics.DuplicateKeyError{
				Key: metrics.Key{Node: callgraph.InvalidNode, Profile: p.ID},
				Detail: fmt.Sprintf("profile id supplied by both %q and %q",
					prev, p.Source),
			}
		}
		seen[p.ID] = p.Source
	}

	var stats Stats
	unified := profiles[0].Graph.Clone()
	mappings := make([]callgraph.NodeMapping, len(profiles))
	mappings[0] = callgraph.IdentityMapping(unified.NumNodes())
	for i := 1; i < len(profiles); i++ {
		out, mapAcc, mapNew := callgraph.Union(unified, profiles[i].Graph)
		// Re-point every already-folded profile at the new graph; the new
		// profile's mapping is taken as-is.
		for j := 0; j < i; j++ {
			mappings[j] = mappings[j].Compose(mapAcc)
		}
		mappings[i] = mapNew
		unified = out
		stats.UnionSteps++
		log.Debugf("union step %d: %d nodes, fingerprint %s",
			i, unified.NumNodes(), graphFingerprint{g: unified})
	}

	reindexed := make([]*metrics.Table, len(profiles))
	for i, p := range profiles {
		t, err := p.Metrics.ApplyMapping(mappings[i])
		if err != nil {
			return nil, fmt.Errorf("reindexing profile %d (%s): %w", p.ID, p.Source, err)
		}
		reindexed[i] = t
		stats.ReindexPasses++
	}

	stacked, err := metrics.ConcatRows(reindexed...)
	if err != nil {
		return nil, fmt.Errorf("stacking metrics tables: %w", err)
	}

	records := make(map[metrics.ProfileID]Record, len(profiles))
	sources := make(ProfileMap, len(profiles))
	for _, p := range profiles {
		records[p.ID] = p.Metadata
		sources[p.ID] = p.Source
	}

	e := &Ensemble{
		ID:       uuid.New(),
		Graph:    unified,
		Metrics:  stacked,
		Metadata: NewMetadataTable(records),
		Sources:  sources,
		Stats:    stats,
	}
	log.Infof("unified %d profiles into ensemble %s: %d nodes, %d metric rows",
		len(profiles), e.ID, unified.NumNodes(), stacked.NumRows())
	return e, nil
}
