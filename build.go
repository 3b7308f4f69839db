package goldfish

import "io"

// NewNullDocument builds a Null Document, independent of any reader.
func NewNullDocument() *Document { return newNullDoc(false) }

// NewUndefinedDocument builds an Undefined Document.
func NewUndefinedDocument() *Document { return newUndefinedDoc(false) }

// NewBoolDocument builds a Bool Document carrying b.
func NewBoolDocument(b bool) *Document { return newBoolDoc(b, false) }

// NewUintDocument builds an unsigned integer Document carrying u.
func NewUintDocument(u uint64) *Document { return newUintDoc(u, false) }

// NewIntDocument builds a signed integer Document carrying i.
func NewIntDocument(i int64) *Document { return newIntDoc(i, false) }

// NewFloatDocument builds a floating-point Document carrying f.
func NewFloatDocument(f float64) *Document { return newFloatDoc(f, false) }

// NewStringDocument builds a String Document whose payload streams from r.
func NewStringDocument(r ByteReader) *Document { return newStringDoc(r, false) }

// NewBinaryDocument builds a Binary Document whose payload streams from r.
func NewBinaryDocument(r ByteReader) *Document { return newBinaryDoc(r, false) }

// NewArrayDocument builds an Array Document whose elements come from r.
func NewArrayDocument(r ArrayReader) *Document { return newArrayDoc(r, false) }

// NewMapDocument builds a Map Document whose key/value pairs come from r.
func NewMapDocument(r MapReader) *Document { return newMapDoc(r, false) }

// NewStringDocumentFromBytes builds a String Document over an in-memory
// payload, for the common case of building from data already held in
// memory rather than from an open stream.
func NewStringDocumentFromBytes(b []byte) *Document {
	return NewStringDocument(newByteSliceReader(b))
}

// NewBinaryDocumentFromBytes builds a Binary Document over an in-memory
// payload.
func NewBinaryDocumentFromBytes(b []byte) *Document {
	return NewBinaryDocument(newByteSliceReader(b))
}

// byteSliceReader implements ByteReader over a fixed in-memory payload.
type byteSliceReader struct {
	b   []byte
	pos int
}

func newByteSliceReader(b []byte) *byteSliceReader { return &byteSliceReader{b: b} }

func (r *byteSliceReader) Read(dst []byte) (int, error) {
	if r.pos >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(dst, r.b[r.pos:])
	r.pos += n
	return n, nil
}

func (r *byteSliceReader) Seek(n uint64) (uint64, error) {
	remaining := uint64(len(r.b) - r.pos)
	if n > remaining {
		n = remaining
	}
	r.pos += int(n)
	return n, nil
}

// ArrayBuilder assembles an Array Document one element at a time, the
// push counterpart to ArrayReader. The zero value, or NewArrayBuilder's
// result, is ready to use. Calling Append after Build is undefined
// behavior; wrap with AddArrayWriteChecks for a reported error instead.
type ArrayBuilder struct {
	items []*Document
}

// NewArrayBuilder returns an empty ArrayBuilder.
func NewArrayBuilder() *ArrayBuilder { return &ArrayBuilder{} }

// Append adds d as the array's next element.
func (b *ArrayBuilder) Append(d *Document) { b.items = append(b.items, d) }

// Build finalizes the array and returns it as a Document.
func (b *ArrayBuilder) Build() *Document {
	return NewArrayDocument(&sliceArrayReader{items: b.items})
}

type sliceArrayReader struct {
	items []*Document
	pos   int
}

func (r *sliceArrayReader) Next() (*Document, bool, error) {
	if r.pos >= len(r.items) {
		return nil, false, nil
	}
	d := r.items[r.pos]
	r.pos++
	return d, true, nil
}

// MapBuilder assembles a Map Document one key/value pair at a time,
// mirroring MapReader's NextKey/Value alternation on the push side:
// AppendKey and AppendValue must alternate strictly, key first. Pairs
// are emitted in insertion order. Calling AppendKey/AppendValue out of
// order, or after Build, is undefined behavior; wrap with
// AddMapWriteChecks for a reported error instead.
type MapBuilder struct {
	keys   []*Document
	values []*Document
}

// NewMapBuilder returns an empty MapBuilder.
func NewMapBuilder() *MapBuilder { return &MapBuilder{} }

// AppendKey adds key as the next pair's key.
func (b *MapBuilder) AppendKey(key *Document) { b.keys = append(b.keys, key) }

// AppendValue adds value as the value for the most recently appended key.
func (b *MapBuilder) AppendValue(value *Document) { b.values = append(b.values, value) }

// Build finalizes the map and returns it as a Document.
func (b *MapBuilder) Build() *Document {
	return NewMapDocument(&sliceMapReader{keys: b.keys, values: b.values})
}

type sliceMapReader struct {
	keys, values []*Document
	pos          int
}

func (r *sliceMapReader) NextKey() (*Document, bool, error) {
	if r.pos >= len(r.keys) {
		return nil, false, nil
	}
	return r.keys[r.pos], true, nil
}

func (r *sliceMapReader) Value() (*Document, error) {
	v := r.values[r.pos]
	r.pos++
	return v, nil
}
