package goldfish

import (
	"encoding/binary"
	"io"
	"math"
)

// CBORWriter serializes a Document tree as CBOR (RFC 8949). Because a
// Document's String/Binary/Array/Map readers only know how to produce
// their next chunk or element, not an upfront count or byte length,
// every container and every string is written using CBOR's
// indefinite-length form, terminated by a break byte, rather than
// buffering the whole payload first to compute a definite-length header.
type CBORWriter struct {
	sink Sink
}

// NewCBORWriter wraps w for writing.
func NewCBORWriter(w io.Writer) *CBORWriter {
	return &CBORWriter{sink: NewSink(w)}
}

// Write serializes d as a single top-level CBOR data item and flushes
// the underlying stream.
func (cw *CBORWriter) Write(d *Document) error {
	if err := writeCBORValue(cw.sink, d); err != nil {
		return err
	}
	return cw.sink.Flush()
}

// WriteCBOR serializes d to w as a single top-level CBOR data item.
func WriteCBOR(w io.Writer, d *Document) error {
	return NewCBORWriter(w).Write(d)
}

func writeCBORValue(sink Sink, d *Document) error {
	return d.Visit(&cborValueVisitor{sink: sink})
}

type cborValueVisitor struct {
	sink Sink
}

func (v *cborValueVisitor) VisitNull() error {
	return writeByte(v.sink, makeInitialByte(cborMajorSimple, simpleNull))
}

func (v *cborValueVisitor) VisitUndefined() error {
	return writeByte(v.sink, makeInitialByte(cborMajorSimple, simpleUndefined))
}

func (v *cborValueVisitor) VisitBool(b bool) error {
	if b {
		return writeByte(v.sink, makeInitialByte(cborMajorSimple, simpleTrue))
	}
	return writeByte(v.sink, makeInitialByte(cborMajorSimple, simpleFalse))
}

func (v *cborValueVisitor) VisitUint(u uint64) error {
	return writeCBORArgument(v.sink, cborMajorUint, u)
}

func (v *cborValueVisitor) VisitInt(i int64) error {
	if i >= 0 {
		return writeCBORArgument(v.sink, cborMajorUint, uint64(i))
	}
	// -1-i, computed without overflowing int64 even at i == math.MinInt64.
	magnitude := uint64(-(i + 1))
	return writeCBORArgument(v.sink, cborMajorNegInt, magnitude)
}

// VisitFloat always writes the IEEE 754 binary64 form: a Document
// carries floats as float64 with no record of the narrower width they
// may originally have been read from, so round-tripping through
// binary16 or binary32 would just re-narrow and risk losing precision
// gained nowhere. Writing binary64 unconditionally is lossless and simple.
func (v *cborValueVisitor) VisitFloat(f float64) error {
	if err := writeByte(v.sink, makeInitialByte(cborMajorSimple, simpleFloat64)); err != nil {
		return err
	}
	return writeBigEndianUint64(v.sink, math.Float64bits(f))
}

func (v *cborValueVisitor) VisitString(r ByteReader) error {
	return writeCBORByteSequence(v.sink, cborMajorText, r)
}

func (v *cborValueVisitor) VisitBinary(r ByteReader) error {
	return writeCBORByteSequence(v.sink, cborMajorBytes, r)
}

func (v *cborValueVisitor) VisitArray(a ArrayReader) error {
	if err := writeByte(v.sink, makeInitialByte(cborMajorArray, addInfoIndefinite)); err != nil {
		return err
	}
	for {
		child, ok, err := a.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := writeCBORValue(v.sink, child); err != nil {
			return err
		}
	}
	return writeByte(v.sink, cborBreak)
}

func (v *cborValueVisitor) VisitMap(m MapReader) error {
	if err := writeByte(v.sink, makeInitialByte(cborMajorMap, addInfoIndefinite)); err != nil {
		return err
	}
	for {
		key, ok, err := m.NextKey()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := writeCBORValue(v.sink, key); err != nil {
			return err
		}
		val, err := m.Value()
		if err != nil {
			return err
		}
		if err := writeCBORValue(v.sink, val); err != nil {
			return err
		}
	}
	return writeByte(v.sink, cborBreak)
}

// writeCBORByteSequence streams r out as an indefinite-length byte or
// text string: a sequence of definite-length chunks, one per Read call
// that returned data, terminated by a break byte.
func writeCBORByteSequence(sink Sink, major byte, r ByteReader) error {
	if err := writeByte(sink, makeInitialByte(major, addInfoIndefinite)); err != nil {
		return err
	}
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if err := writeCBORArgument(sink, major, uint64(n)); err != nil {
				return err
			}
			if _, werr := sink.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
	}
	return writeByte(sink, cborBreak)
}

func makeInitialByte(major, addInfo byte) byte {
	return (major << 5) | addInfo
}

// writeCBORArgument writes major's header with n encoded in the
// shortest form that fits, covering unsigned ints, negative ints (via
// their encoded magnitude), and byte/text string or array/map lengths
// alike.
func writeCBORArgument(sink Sink, major byte, n uint64) error {
	switch {
	case n <= addInfoDirect:
		return writeByte(sink, makeInitialByte(major, byte(n)))
	case n <= math.MaxUint8:
		if err := writeByte(sink, makeInitialByte(major, addInfoUint8)); err != nil {
			return err
		}
		return writeByte(sink, byte(n))
	case n <= math.MaxUint16:
		if err := writeByte(sink, makeInitialByte(major, addInfoUint16)); err != nil {
			return err
		}
		return writeBigEndianUint16(sink, uint16(n))
	case n <= math.MaxUint32:
		if err := writeByte(sink, makeInitialByte(major, addInfoUint32)); err != nil {
			return err
		}
		return writeBigEndianUint32(sink, uint32(n))
	default:
		if err := writeByte(sink, makeInitialByte(major, addInfoUint64)); err != nil {
			return err
		}
		return writeBigEndianUint64(sink, n)
	}
}

func writeBigEndianUint16(sink Sink, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := sink.Write(buf[:])
	return err
}

func writeBigEndianUint32(sink Sink, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := sink.Write(buf[:])
	return err
}

func writeBigEndianUint64(sink Sink, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	_, err := sink.Write(buf[:])
	return err
}
