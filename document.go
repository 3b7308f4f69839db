package goldfish

import (
	"errors"
	"io"
	"math"
)

// ArrayReader produces the elements of an Array Document one at a time.
// Next returns ok == false once the array is exhausted; the reader must
// not be used again afterwards.
type ArrayReader interface {
	Next() (*Document, bool, error)
}

// MapReader alternates NextKey/Value strictly: NextKey
// returns ok == false to end the map; otherwise Value must be called
// exactly once before the next NextKey.
type MapReader interface {
	NextKey() (*Document, bool, error)
	Value() (*Document, error)
}

// Document is the sum type every reader produces and every writer
// accepts. Scalars are carried by value; String, Binary,
// Array and Map own a child reader positioned at the first unread byte of
// the payload. A Document is single-use: any coercion or sub-reader
// extraction consumes it, and a second access is a usage error.
type Document struct {
	tag Tag

	b bool
	u uint64
	i int64
	f float64

	str ByteReader
	arr ArrayReader
	mp  MapReader

	// jsonMode reports whether this Document was produced by the JSON
	// reader, which enables JSON-only coercions (binary-via-base64,
	// numbers parsed lazily out of string content).
	jsonMode bool

	used bool
}

func newScalarDoc(tag Tag, jsonMode bool) *Document { return &Document{tag: tag, jsonMode: jsonMode} }

func newNullDoc(jsonMode bool) *Document      { return newScalarDoc(TagNull, jsonMode) }
func newUndefinedDoc(jsonMode bool) *Document { return newScalarDoc(TagUndefined, jsonMode) }

func newBoolDoc(b bool, jsonMode bool) *Document {
	d := newScalarDoc(TagBool, jsonMode)
	d.b = b
	return d
}

func newUintDoc(u uint64, jsonMode bool) *Document {
	d := newScalarDoc(TagUint, jsonMode)
	d.u = u
	return d
}

func newIntDoc(i int64, jsonMode bool) *Document {
	d := newScalarDoc(TagInt, jsonMode)
	d.i = i
	return d
}

func newFloatDoc(f float64, jsonMode bool) *Document {
	d := newScalarDoc(TagFloat, jsonMode)
	d.f = f
	return d
}

func newStringDoc(r ByteReader, jsonMode bool) *Document {
	d := newScalarDoc(TagString, jsonMode)
	d.str = r
	return d
}

func newBinaryDoc(r ByteReader, jsonMode bool) *Document {
	d := newScalarDoc(TagBinary, jsonMode)
	d.str = r
	return d
}

func newArrayDoc(r ArrayReader, jsonMode bool) *Document {
	d := newScalarDoc(TagArray, jsonMode)
	d.arr = r
	return d
}

func newMapDoc(r MapReader, jsonMode bool) *Document {
	d := newScalarDoc(TagMap, jsonMode)
	d.mp = r
	return d
}

// Tag reports the Document's kind. Unlike the As* consumers, Tag and the
// other predicates below never consume the Document.
func (d *Document) Tag() Tag { return d.tag }

// IsExactly reports whether the Document's tag is exactly t.
func (d *Document) IsExactly(t Tag) bool { return d.tag == t }

// IsNull reports whether the Document's tag is Null.
func (d *Document) IsNull() bool { return d.tag == TagNull }

// IsUndefinedOrNull reports whether the Document's tag is Undefined or Null.
func (d *Document) IsUndefinedOrNull() bool { return d.tag == TagUndefined || d.tag == TagNull }

func (d *Document) consume() error {
	if d.used {
		return badVariantAccess("document already consumed")
	}
	d.used = true
	return nil
}

// AsString consumes the Document and returns its String child reader.
func (d *Document) AsString() (ByteReader, error) {
	if err := d.consume(); err != nil {
		return nil, err
	}
	if d.tag != TagString {
		return nil, badVariantAccess("as_string: expected string, got %s", d.tag)
	}
	return d.str, nil
}

// AsBinary consumes the Document and returns a reader over its binary
// payload. In JSON mode the Document must be a String, and the bytes are
// tunneled through base64 decoding; otherwise the Document
// must be a native Binary.
func (d *Document) AsBinary() (ByteReader, error) {
	if err := d.consume(); err != nil {
		return nil, err
	}
	if d.jsonMode {
		if d.tag != TagString {
			return nil, badVariantAccess("as_binary: expected string (json binary tunnel), got %s", d.tag)
		}
		return newBase64Reader(d.str), nil
	}
	if d.tag != TagBinary {
		return nil, badVariantAccess("as_binary: expected binary, got %s", d.tag)
	}
	return d.str, nil
}

// AsArray consumes the Document and returns its ArrayReader.
func (d *Document) AsArray() (ArrayReader, error) {
	if err := d.consume(); err != nil {
		return nil, err
	}
	if d.tag != TagArray {
		return nil, badVariantAccess("as_array: expected array, got %s", d.tag)
	}
	return d.arr, nil
}

// AsMap consumes the Document and returns its MapReader.
func (d *Document) AsMap() (MapReader, error) {
	if err := d.consume(); err != nil {
		return nil, err
	}
	if d.tag != TagMap {
		return nil, badVariantAccess("as_map: expected map, got %s", d.tag)
	}
	return d.mp, nil
}

// numberFromString parses the Document's string content as a JSON number,
// requiring the entire string to be consumed by the
// number grammar. Only valid in JSON mode.
func (d *Document) numberFromString() (Tag, uint64, int64, float64, error) {
	if !d.jsonMode {
		return 0, 0, 0, 0, badVariantAccess("as number: expected numeric type, got string")
	}
	pk := newReaderPeeker(d.str)
	tag, u, i, f, err := scanNumber(pk)
	if err != nil {
		if errors.Is(err, ErrIllFormattedJSON) || errors.Is(err, ErrIntegerOverflowJSON) {
			return 0, 0, 0, 0, badVariantAccess("parsing number from string: %v", err)
		}
		return 0, 0, 0, 0, err
	}
	if _, ok, _ := pk.PeekByte(); ok {
		return 0, 0, 0, 0, badVariantAccess("trailing characters after number parsed from string")
	}
	return tag, u, i, f, nil
}

// AsFloat64 consumes the Document, widening an integer or identity-mapping
// a float; in JSON mode a string is parsed as a number first.
func (d *Document) AsFloat64() (float64, error) {
	if err := d.consume(); err != nil {
		return 0, err
	}
	switch d.tag {
	case TagUint:
		return float64(d.u), nil
	case TagInt:
		return float64(d.i), nil
	case TagFloat:
		return d.f, nil
	case TagString:
		tag, u, i, f, err := d.numberFromString()
		if err != nil {
			return 0, err
		}
		switch tag {
		case TagUint:
			return float64(u), nil
		case TagInt:
			return float64(i), nil
		default:
			return f, nil
		}
	default:
		return 0, badVariantAccess("as_double: expected numeric type, got %s", d.tag)
	}
}

// AsUint64 consumes the Document. A negative signed int or a
// non-exactly-representable float fails with ErrIntegerOverflowCasting.
func (d *Document) AsUint64() (uint64, error) {
	if err := d.consume(); err != nil {
		return 0, err
	}
	switch d.tag {
	case TagUint:
		return d.u, nil
	case TagInt:
		return castSignedToUnsigned(d.i)
	case TagFloat:
		return castFloatToUnsigned(d.f)
	case TagString:
		tag, u, i, f, err := d.numberFromString()
		if err != nil {
			return 0, err
		}
		switch tag {
		case TagUint:
			return u, nil
		case TagInt:
			return castSignedToUnsigned(i)
		default:
			return castFloatToUnsigned(f)
		}
	default:
		return 0, badVariantAccess("as_uint64: expected numeric type, got %s", d.tag)
	}
}

// AsInt64 consumes the Document, failing with ErrIntegerOverflowCasting if
// the source value doesn't fit in [-2^63, 2^63-1].
func (d *Document) AsInt64() (int64, error) {
	if err := d.consume(); err != nil {
		return 0, err
	}
	switch d.tag {
	case TagInt:
		return d.i, nil
	case TagUint:
		return castUnsignedToSigned(d.u)
	case TagFloat:
		return castFloatToSigned(d.f)
	case TagString:
		tag, u, i, f, err := d.numberFromString()
		if err != nil {
			return 0, err
		}
		switch tag {
		case TagInt:
			return i, nil
		case TagUint:
			return castUnsignedToSigned(u)
		default:
			return castFloatToSigned(f)
		}
	default:
		return 0, badVariantAccess("as_int64: expected numeric type, got %s", d.tag)
	}
}

// AsUint32, AsUint16 and AsUint8 range-check AsUint64's result.
func (d *Document) AsUint32() (uint32, error) { return narrowUint[uint32](d.AsUint64()) }
func (d *Document) AsUint16() (uint16, error) { return narrowUint[uint16](d.AsUint64()) }
func (d *Document) AsUint8() (uint8, error)   { return narrowUint[uint8](d.AsUint64()) }

// AsInt32, AsInt16 and AsInt8 range-check AsInt64's result.
func (d *Document) AsInt32() (int32, error) { return narrowInt[int32](d.AsInt64()) }
func (d *Document) AsInt16() (int16, error) { return narrowInt[int16](d.AsInt64()) }
func (d *Document) AsInt8() (int8, error)   { return narrowInt[int8](d.AsInt64()) }

type uintSized interface {
	~uint8 | ~uint16 | ~uint32
}

func narrowUint[T uintSized](x uint64, err error) (T, error) {
	if err != nil {
		return 0, err
	}
	var zero T
	max := uint64(^zero)
	if x > max {
		return 0, overflowCasting("%d does not fit in %T", x, zero)
	}
	return T(x), nil
}

type intSized interface {
	~int8 | ~int16 | ~int32
}

func narrowInt[T intSized](x int64, err error) (T, error) {
	if err != nil {
		return 0, err
	}
	var zero T
	minV, maxV := rangeOf[T]()
	if x < minV || x > maxV {
		return 0, overflowCasting("%d does not fit in %T", x, zero)
	}
	return T(x), nil
}

func rangeOf[T intSized]() (int64, int64) {
	var zero T
	switch any(zero).(type) {
	case int8:
		return math.MinInt8, math.MaxInt8
	case int16:
		return math.MinInt16, math.MaxInt16
	default:
		return math.MinInt32, math.MaxInt32
	}
}

// AsBool consumes the Document. A string Document must spell exactly
// "true" or "false"; any other tag but Bool fails.
func (d *Document) AsBool() (bool, error) {
	if err := d.consume(); err != nil {
		return false, err
	}
	switch d.tag {
	case TagBool:
		return d.b, nil
	case TagString:
		// one byte past "false", so a longer string is not taken for it.
		var buf [6]byte
		n, err := readFullBuffer(d.str, buf[:])
		if err != nil {
			return false, err
		}
		switch {
		case n == 4 && string(buf[:4]) == "true":
			return true, nil
		case n == 5 && string(buf[:5]) == "false":
			return false, nil
		default:
			return false, badVariantAccess("as_bool: string is not a boolean literal")
		}
	default:
		return false, badVariantAccess("as_bool: expected boolean, got %s", d.tag)
	}
}

// readFullBuffer reads up to len(buf) bytes, short only at end of stream.
func readFullBuffer(r ByteReader, buf []byte) (int, error) {
	var n int
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			if errors.Is(err, io.EOF) {
				return n, nil
			}
			return n, err
		}
		if m == 0 {
			return n, nil
		}
	}
	return n, nil
}

func castSignedToUnsigned(x int64) (uint64, error) {
	if x < 0 {
		return 0, overflowCasting("negative value %d does not fit in uint64", x)
	}
	return uint64(x), nil
}

func castUnsignedToSigned(x uint64) (int64, error) {
	if x > math.MaxInt64 {
		return 0, overflowCasting("value %d does not fit in int64", x)
	}
	return int64(x), nil
}

func castFloatToUnsigned(x float64) (uint64, error) {
	u := uint64(x)
	if float64(u) != x {
		return 0, overflowCasting("%v is not an exact, representable unsigned integer", x)
	}
	return u, nil
}

func castFloatToSigned(x float64) (int64, error) {
	i := int64(x)
	if float64(i) != x {
		return 0, overflowCasting("%v is not an exact, representable integer", x)
	}
	return i, nil
}

// Visitor dispatches structurally over every Tag a Document can carry.
// Exactly one method is invoked.
type Visitor interface {
	VisitNull() error
	VisitUndefined() error
	VisitBool(bool) error
	VisitUint(uint64) error
	VisitInt(int64) error
	VisitFloat(float64) error
	VisitString(ByteReader) error
	VisitBinary(ByteReader) error
	VisitArray(ArrayReader) error
	VisitMap(MapReader) error
}

// Visit consumes the Document and dispatches to the matching Visitor
// method. Binary/string bytes are passed through without base64 handling
// regardless of jsonMode -- callers who want the JSON binary tunnel
// should call AsBinary explicitly instead.
func (d *Document) Visit(v Visitor) error {
	if err := d.consume(); err != nil {
		return err
	}
	switch d.tag {
	case TagNull:
		return v.VisitNull()
	case TagUndefined:
		return v.VisitUndefined()
	case TagBool:
		return v.VisitBool(d.b)
	case TagUint:
		return v.VisitUint(d.u)
	case TagInt:
		return v.VisitInt(d.i)
	case TagFloat:
		return v.VisitFloat(d.f)
	case TagString:
		return v.VisitString(d.str)
	case TagBinary:
		return v.VisitBinary(d.str)
	case TagArray:
		return v.VisitArray(d.arr)
	case TagMap:
		return v.VisitMap(d.mp)
	default:
		return badVariantAccess("visit: invalid tag %v", d.tag)
	}
}

// SeekToEnd drains whatever of d's remaining bytes or children hasn't
// been read, so that a caller which decided to skip d may safely resume
// reading from d's parent.
func SeekToEnd(d *Document) error {
	if err := d.consume(); err != nil {
		return err
	}
	switch d.tag {
	case TagString, TagBinary:
		_, err := d.str.Seek(math.MaxUint64)
		return err
	case TagArray:
		for {
			child, ok, err := d.arr.Next()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			if err := SeekToEnd(child); err != nil {
				return err
			}
		}
	case TagMap:
		for {
			key, ok, err := d.mp.NextKey()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			if err := SeekToEnd(key); err != nil {
				return err
			}
			val, err := d.mp.Value()
			if err != nil {
				return err
			}
			if err := SeekToEnd(val); err != nil {
				return err
			}
		}
	default:
		return nil
	}
}
