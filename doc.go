// Package goldfish is a streaming, event-driven codec library for CBOR
// (RFC 8949) and JSON (RFC 8259). A reader produces a single-use
// Document for each top-level value; Document's String, Binary, Array
// and Map variants are themselves lazy child readers sharing the
// underlying byte stream by reference, so a large document can be
// processed without ever holding more than the current value in
// memory.
//
// Reading
//
// NewCBORReader and NewJSONReader each wrap an io.Reader and produce
// successive top-level Documents via Read. A Document's scalar value is
// read eagerly; its String, Binary, Array or Map payload stays lazy
// until the caller calls AsString, AsBinary, AsArray, AsMap or Visit.
// Abandoning a Document partway through -- moving on without reading
// every element of an array, say -- requires draining it first with
// SeekToEnd before its parent container can be read again.
//
// AddReadChecks wraps a Document so that violating that locking
// discipline, or reading a map's key and value out of order, fails with
// a reported error instead of producing undefined behavior; omitting
// the call is the zero-overhead alternative.
//
// Writing
//
// NewCBORWriter and NewJSONWriter each wrap an io.Writer and accept a
// Document produced by either reader: CopyDocument, or a writer's Write
// method directly, streams it out without buffering the whole value in
// memory first. Because a Document's readers don't expose an upfront
// byte length or element count, CBORWriter always uses CBOR's
// indefinite-length encoding for strings, binary and containers.
//
// Coercion
//
// A Document's As* methods implement the cross-type coercion table of
// the CBOR/JSON data model: integers widen to floats, floats cast back
// to integers only when the result is exact, and in JSON mode a string
// may be parsed as a number or treated as base64-encoded binary.
//
// Building
//
// A Document doesn't have to come from a reader. NewUintDocument,
// NewStringDocumentFromBytes and the other New*Document constructors
// build scalar Documents directly from native Go values; ArrayBuilder
// and MapBuilder assemble Array and Map Documents one element or
// key/value pair at a time. The result can be handed to CBORWriter,
// JSONWriter or CopyDocument exactly like a Document read off the wire.
// AddArrayWriteChecks and AddMapWriteChecks wrap a builder so that
// appending after Build, or a map's AppendKey/AppendValue called out of
// order, fails with a reported error instead of producing a malformed
// document; omitting the call is the zero-overhead alternative.
package goldfish
