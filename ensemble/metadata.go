// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package ensemble // import "github.com/callpath/ensemble/ensemble"

import (
	"slices"

	"github.com/callpath/ensemble/metrics"
)

// MetadataTable holds one metadata record per profile, keyed by profile id.
// It is assembled once per unification and only read afterwards.
type MetadataTable struct {
	profiles []metrics.ProfileID
	records  map[metrics.ProfileID]Record
}

// NewMetadataTable builds a metadata table from per-profile records.
func NewMetadataTable(records map[metrics.ProfileID]Record) *MetadataTable {
	profiles := make([]metrics.ProfileID, 0, len(records))
	for id := range records {
		profiles = append(profiles, id)
	}
	slices.Sort(profiles)
	return &MetadataTable{profiles: profiles, records: records}
}

// Len returns the number of records.
func (mt *MetadataTable) Len() int {
	return len(mt.profiles)
}

// Profiles returns the profile ids present in the table, sorted.
// The returned slice must not be modified.
func (mt *MetadataTable) Profiles() []metrics.ProfileID {
	return mt.profiles
}

// Record returns the metadata record for the given profile.
func (mt *MetadataTable) Record(id metrics.ProfileID) (Record, bool) {
	rec, ok := mt.records[id]
	return rec, ok
}

// ProfileMap associates each profile id with the provenance of the profile,
// typically the path of the file it was read from. Like the metadata table
// it is created once per unification and never patched in place.
type ProfileMap map[metrics.ProfileID]string

// Profiles returns the profile ids present in the map, sorted.
func (pm ProfileMap) Profiles() []metrics.ProfileID {
	out := make([]metrics.ProfileID, 0, len(pm))
	for id := range pm {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
