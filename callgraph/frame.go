// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package callgraph // import "github.com/callpath/ensemble/callgraph"

import (
	"fmt"
	"unique"
)

// FrameData identifies what a call-tree position represents. Two frames are
// equal iff all attributes match; the node id is never part of frame identity.
type FrameData struct {
	// Name is the symbolic name of the call site (function name, region
	// label, or a synthesized name for unsymbolized addresses).
	Name string
	// Type classifies the producer of the frame.
	Type FrameType
}

// Frame is an interned FrameData reference. Comparing two Frames compares the
// interned handles, so equality checks are pointer-sized regardless of name
// length. The zero Frame is not valid.
type Frame struct {
	value unique.Handle[FrameData]
}

// NewFrame interns a FrameData built from name and type.
func NewFrame(name string, ty FrameType) Frame {
	return InternFrame(FrameData{Name: name, Type: ty})
}

// InternFrame interns the given FrameData.
func InternFrame(data FrameData) Frame {
	return Frame{value: unique.Make(data)}
}

// Valid determines if the Frame is valid.
func (f Frame) Valid() bool {
	return f != Frame{}
}

// Value returns the dereferenced FrameData.
// This can be done only if the Frame is Valid.
func (f Frame) Value() FrameData {
	return f.value.Value()
}

// Name returns the frame's name attribute.
func (f Frame) Name() string {
	return f.value.Value().Name
}

// Type returns the frame's type attribute.
func (f Frame) Type() FrameType {
	return f.value.Value().Type
}

// String implements the Stringer interface.
func (f Frame) String() string {
	if !f.Valid() {
		return "<invalid>"
	}
	data := f.Value()
	return fmt.Sprintf("%s [%s]", data.Name, data.Type)
}
