// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package metrics // import "github.com/callpath/ensemble/metrics"

import "fmt"

// UnmappedNodeError reports a row key whose node has no entry in the node
// mapping handed to ApplyMapping. This means the mapping does not belong to
// the graph the table is keyed against — a merge defect or a reader that
// produced rows referencing nodes outside its own graph. Rows are never
// silently dropped or coerced; the whole operation fails.
type UnmappedNodeError struct {
	Key Key
}

func (e *UnmappedNodeError) Error() string {
	return fmt.Sprintf("no mapping for node %d (profile %d)", e.Key.Node, e.Key.Profile)
}

// DuplicateKeyError reports two rows carrying the same (node, profile) key,
// either within one table or across the inputs of a row concatenation.
type DuplicateKeyError struct {
	Key Key
	// Detail optionally names the conflict when the duplicate is not a plain
	// row collision, e.g. a profile id supplied by two different inputs.
	Detail string
}

func (e *DuplicateKeyError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("duplicate key (node %d, profile %d): %s",
			e.Key.Node, e.Key.Profile, e.Detail)
	}
	return fmt.Sprintf("duplicate row key (node %d, profile %d)", e.Key.Node, e.Key.Profile)
}
