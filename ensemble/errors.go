// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package ensemble // import "github.com/callpath/ensemble/ensemble"

import (
	"fmt"

	"github.com/callpath/ensemble/metrics"
)

// MalformedInputError reports a profile that violates the reader output
// contract (rootedness, id contiguity, depth consistency, or table keys
// outside the profile's own graph). It aborts the fold before any merging
// happens; the caller decides whether to drop the profile or abort entirely.
type MalformedInputError struct {
	Profile metrics.ProfileID
	Source  string
	Err     error
}

func (e *MalformedInputError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("malformed profile %d (%s): %v", e.Profile, e.Source, e.Err)
	}
	return fmt.Sprintf("malformed profile %d: %v", e.Profile, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}
