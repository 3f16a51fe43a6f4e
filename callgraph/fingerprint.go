// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package callgraph // import "github.com/callpath/ensemble/callgraph"

import (
	"strconv"

	"github.com/zeebo/xxh3"
)

// Fingerprint calculates a structural hash over the graph: the depth, frame
// and child count of every node in depth-first preorder. Graphs with equal
// fingerprints are isomorphic with overwhelming probability, which makes the
// fingerprint useful as a cheap "did the merge change anything" signal and
// for log correlation; it is not a substitute for the union's node mappings.
func Fingerprint(g *Graph) uint64 {
	var buf [24]byte
	h := xxh3.New()
	for _, id := range g.DFSOrder() {
		data := g.Frame(id).Value()
		_, _ = h.Write(strconv.AppendUint(buf[:0], uint64(g.Depth(id)), 10))
		_, _ = h.Write([]byte{byte(data.Type)})
		_, _ = h.WriteString(data.Name)
		_, _ = h.Write(strconv.AppendUint(buf[:0], uint64(len(g.Children(id))), 10))
	}
	return h.Sum64()
}
