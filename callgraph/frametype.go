// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package callgraph // import "github.com/callpath/ensemble/callgraph"

// FrameType classifies the producer of a frame. This usually corresponds to
// the kind of call site the profiling tool recorded, but can additionally
// contain synthetic markers like region frames inserted by a reader.
type FrameType uint8

const (
	// UnknownFrame indicates a frame of unknown origin.
	// If this appears, it's likely a bug in a reader.
	UnknownFrame FrameType = iota
	// FunctionFrame identifies regular function call frames.
	FunctionFrame
	// InlineFrame identifies call sites expanded from inlining information.
	InlineFrame
	// NativeFrame identifies unsymbolized native code addresses.
	NativeFrame
	// KernelFrame identifies kernel frames.
	KernelFrame
	// RegionFrame identifies synthetic grouping frames, e.g. the program
	// root a reader inserts above a forest of stacks.
	RegionFrame
)

const unknownFrameName = "unknown"

var frameTypeNames = map[FrameType]string{
	FunctionFrame: "function",
	InlineFrame:   "inline",
	NativeFrame:   "native",
	KernelFrame:   "kernel",
	RegionFrame:   "region",
}

// FrameTypeFromString converts a frame type name to its FrameType.
func FrameTypeFromString(name string) FrameType {
	for ty, tyName := range frameTypeNames {
		if tyName == name {
			return ty
		}
	}
	return UnknownFrame
}

// String implements the Stringer interface.
func (ty FrameType) String() string {
	if name, ok := frameTypeNames[ty]; ok {
		return name
	}
	return unknownFrameName
}
