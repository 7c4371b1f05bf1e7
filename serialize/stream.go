// Package serialize implements the cyclic-graph-safe object serializer
// and deserializer: a tagged byte stream that can represent a Croc value
// graph of primitives, Strings, Tables, Arrays, Namespaces, Classes,
// Instances, script Functions and FuncDefs, including shared and cyclic
// references, and reconstruct it in a (possibly different) VM. Any other
// object (Memblock, WeakRef, Thread, NativeObj, native Function) is an
// encoding error unless it is listed in the transient table.
package serialize

import "io"

// Output is the abstract sink a Serializer writes to. The package does
// not prescribe a transport: wrap any io.Writer with NewOutput, or
// supply your own implementation (a network connection, a bytes.Buffer,
// a file).
type Output interface {
	io.Writer
}

// Input is the abstract source a Deserializer reads from.
type Input interface {
	io.Reader
}

// NewOutput adapts a plain io.Writer to Output (identity, since Output
// is just io.Writer today — kept as a distinct type so the serializer's
// public surface can grow framing requirements later without breaking
// callers).
func NewOutput(w io.Writer) Output { return w }

// NewInput adapts a plain io.Reader to Input.
func NewInput(r io.Reader) Input { return r }
