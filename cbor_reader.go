package goldfish

import (
	"io"
	"math"
)

// CBOR major types (RFC 8949 §3), grounded on the constant naming of
// synadia-labs/cbor-go's runtime support package.
const (
	cborMajorUint   = 0
	cborMajorNegInt = 1
	cborMajorBytes  = 2
	cborMajorText   = 3
	cborMajorArray  = 4
	cborMajorMap    = 5
	cborMajorTag    = 6
	cborMajorSimple = 7
)

// Additional-info values (5 bits) that select how the argument is
// encoded, rather than carrying it directly.
const (
	addInfoDirect     = 23
	addInfoUint8      = 24
	addInfoUint16     = 25
	addInfoUint32     = 26
	addInfoUint64     = 27
	addInfoIndefinite = 31
)

// Simple values under major type 7.
const (
	simpleFalse     = 20
	simpleTrue      = 21
	simpleNull      = 22
	simpleUndefined = 23
	simpleFloat16   = 25
	simpleFloat32   = 26
	simpleFloat64   = 27
	cborBreak       = 0xFF
)

// CBORReader reads successive top-level CBOR data items off a byte
// stream, the JSONReader's CBOR counterpart.
type CBORReader struct {
	src      *Source
	maxDepth int
}

// NewCBORReader wraps r for reading. The default maximum container
// nesting depth is 200.
func NewCBORReader(r io.Reader) *CBORReader {
	return &CBORReader{src: NewSource(r), maxDepth: 200}
}

// MaxDepth overrides the maximum allowed container nesting depth.
// Semantic tags read and discarded ahead of a value do not count toward
// the depth.
func (cr *CBORReader) MaxDepth(n int) { cr.maxDepth = n }

// Read parses and returns the next top-level CBOR data item. It returns
// io.EOF once the stream has no further bytes.
func (cr *CBORReader) Read() (*Document, error) {
	_, ok, err := cr.src.PeekByte()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, io.EOF
	}
	return readCBORValue(cr.src, cr.maxDepth, 0)
}

// ReadCBOR parses a single top-level CBOR data item from r.
func ReadCBOR(r io.Reader) (*Document, error) {
	return NewCBORReader(r).Read()
}

// readCBORValue reads one data item, discarding any chain of leading
// semantic tags (major type 6) ahead of it.
func readCBORValue(src *Source, maxDepth, depth int) (*Document, error) {
	depth++
	if depth > maxDepth {
		return nil, illFormatted("maximum nesting depth of %d exceeded", maxDepth)
	}

	for {
		b, err := src.ReadByte()
		if err != nil {
			return nil, err
		}
		major := b >> 5
		addInfo := b & 0x1F

		if major == cborMajorTag {
			if _, err := readArgument(src, addInfo); err != nil {
				return nil, err
			}
			continue
		}
		return readCBORValueBody(src, major, addInfo, maxDepth, depth)
	}
}

func readCBORValueBody(src *Source, major, addInfo byte, maxDepth, depth int) (*Document, error) {
	switch major {
	case cborMajorUint:
		n, err := readArgument(src, addInfo)
		if err != nil {
			return nil, err
		}
		return newUintDoc(n, false), nil

	case cborMajorNegInt:
		n, err := readArgument(src, addInfo)
		if err != nil {
			return nil, err
		}
		i, err := negIntToInt64(n)
		if err != nil {
			return nil, err
		}
		return newIntDoc(i, false), nil

	case cborMajorBytes:
		r, err := readCBORByteSequence(src, major, addInfo)
		if err != nil {
			return nil, err
		}
		return newBinaryDoc(r, false), nil

	case cborMajorText:
		r, err := readCBORByteSequence(src, major, addInfo)
		if err != nil {
			return nil, err
		}
		return newStringDoc(r, false), nil

	case cborMajorArray:
		if addInfo == addInfoIndefinite {
			return newArrayDoc(&cborIndefiniteArrayReader{src: src, maxDepth: maxDepth, depth: depth}, false), nil
		}
		n, err := readArgument(src, addInfo)
		if err != nil {
			return nil, err
		}
		return newArrayDoc(&cborDefiniteArrayReader{src: src, remaining: n, maxDepth: maxDepth, depth: depth}, false), nil

	case cborMajorMap:
		if addInfo == addInfoIndefinite {
			return newMapDoc(&cborIndefiniteMapReader{src: src, maxDepth: maxDepth, depth: depth}, false), nil
		}
		n, err := readArgument(src, addInfo)
		if err != nil {
			return nil, err
		}
		return newMapDoc(&cborDefiniteMapReader{src: src, remainingPairs: n, maxDepth: maxDepth, depth: depth}, false), nil

	case cborMajorSimple:
		return readCBORSimple(src, addInfo)

	default:
		return nil, illFormatted("unsupported CBOR major type %d", major)
	}
}

// readArgument decodes the (major, addInfo) header's argument -- a
// length, count or scalar magnitude depending on the major type.
func readArgument(src *Source, addInfo byte) (uint64, error) {
	switch {
	case addInfo <= addInfoDirect:
		return uint64(addInfo), nil
	case addInfo == addInfoUint8:
		b, err := src.ReadByte()
		return uint64(b), err
	case addInfo == addInfoUint16:
		v, err := src.ReadUint16()
		return uint64(v), err
	case addInfo == addInfoUint32:
		v, err := src.ReadUint32()
		return uint64(v), err
	case addInfo == addInfoUint64:
		return src.ReadUint64()
	default:
		return 0, illFormatted("invalid additional info %d", addInfo)
	}
}

// negIntToInt64 converts a major-1 argument n (meaning -1-n) to int64,
// failing if the represented value is more negative than math.MinInt64.
func negIntToInt64(n uint64) (int64, error) {
	const maxNegMag = uint64(math.MaxInt64) + 1
	if n >= maxNegMag {
		return 0, illFormatted("negative integer -1-%d overflows int64", n)
	}
	magnitude := n + 1
	if magnitude == maxNegMag {
		return math.MinInt64, nil
	}
	return -int64(magnitude), nil
}

func readCBORSimple(src *Source, addInfo byte) (*Document, error) {
	switch addInfo {
	case simpleFalse:
		return newBoolDoc(false, false), nil
	case simpleTrue:
		return newBoolDoc(true, false), nil
	case simpleNull:
		return newNullDoc(false), nil
	case simpleUndefined:
		return newUndefinedDoc(false), nil
	case simpleFloat16:
		bits, err := src.ReadUint16()
		if err != nil {
			return nil, err
		}
		return newFloatDoc(float64(halfToFloat32(bits)), false), nil
	case simpleFloat32:
		bits, err := src.ReadUint32()
		if err != nil {
			return nil, err
		}
		return newFloatDoc(float64(math.Float32frombits(bits)), false), nil
	case simpleFloat64:
		bits, err := src.ReadUint64()
		if err != nil {
			return nil, err
		}
		return newFloatDoc(math.Float64frombits(bits), false), nil
	case addInfoIndefinite: // 31, the break marker
		return nil, illFormatted("unexpected break outside an indefinite-length container")
	default:
		return nil, illFormatted("unsupported simple value, additional info %d", addInfo)
	}
}

// halfToFloat32 expands an IEEE 754 binary16 into binary32, handling
// subnormals and infinities/NaN.
func halfToFloat32(h uint16) float32 {
	sign := uint32(h>>15) & 0x1
	exp := uint32(h>>10) & 0x1F
	frac := uint32(h) & 0x3FF

	var bits uint32
	switch {
	case exp == 0 && frac == 0:
		bits = sign << 31
	case exp == 0:
		exp = 1
		for frac&0x400 == 0 {
			frac <<= 1
			exp--
		}
		frac &= 0x3FF
		bits = (sign << 31) | ((exp + 112) << 23) | (frac << 13)
	case exp == 0x1F:
		bits = (sign << 31) | (0xFF << 23) | (frac << 13)
	default:
		bits = (sign << 31) | ((exp + 112) << 23) | (frac << 13)
	}
	return math.Float32frombits(bits)
}

////////////////////////////////////////////////////////////////////////////
// byte/text string readers

// cborBoundedReader exposes a definite-length byte or text string
// payload as a ByteReader, reading directly off the shared Source.
type cborBoundedReader struct {
	src       *Source
	remaining uint64
}

func (r *cborBoundedReader) Read(dst []byte) (int, error) {
	if r.remaining == 0 {
		return 0, io.EOF
	}
	if uint64(len(dst)) > r.remaining {
		dst = dst[:r.remaining]
	}
	n, err := r.src.Read(dst)
	r.remaining -= uint64(n)
	return n, err
}

func (r *cborBoundedReader) Seek(n uint64) (uint64, error) {
	if n > r.remaining {
		n = r.remaining
	}
	skipped, err := r.src.Seek(n)
	r.remaining -= skipped
	return skipped, err
}

// cborChunkedByteReader exposes an indefinite-length byte or text string
// as a ByteReader, transparently crossing the boundaries between its
// definite-length chunks until the break byte.
type cborChunkedByteReader struct {
	src   *Source
	major byte
	cur   *cborBoundedReader
	done  bool
}

func (r *cborChunkedByteReader) nextChunk() error {
	b, err := r.src.ReadByte()
	if err != nil {
		return err
	}
	if b == cborBreak {
		r.done = true
		r.cur = nil
		return nil
	}
	gotMajor := b >> 5
	addInfo := b & 0x1F
	if gotMajor != r.major || addInfo == addInfoIndefinite {
		return illFormatted("invalid chunk inside indefinite-length string")
	}
	n, err := readArgument(r.src, addInfo)
	if err != nil {
		return err
	}
	r.cur = &cborBoundedReader{src: r.src, remaining: n}
	return nil
}

func (r *cborChunkedByteReader) Read(dst []byte) (int, error) {
	for {
		if r.done {
			return 0, io.EOF
		}
		if r.cur == nil {
			if err := r.nextChunk(); err != nil {
				return 0, err
			}
			if r.done {
				return 0, io.EOF
			}
			continue
		}
		n, err := r.cur.Read(dst)
		if n > 0 {
			return n, nil
		}
		if err == io.EOF {
			r.cur = nil
			continue
		}
		return 0, err
	}
}

func (r *cborChunkedByteReader) Seek(n uint64) (uint64, error) {
	return seekByReading(r, n)
}

func readCBORByteSequence(src *Source, major, addInfo byte) (ByteReader, error) {
	if addInfo == addInfoIndefinite {
		return &cborChunkedByteReader{src: src, major: major}, nil
	}
	n, err := readArgument(src, addInfo)
	if err != nil {
		return nil, err
	}
	return &cborBoundedReader{src: src, remaining: n}, nil
}

////////////////////////////////////////////////////////////////////////////
// array / map readers

type cborDefiniteArrayReader struct {
	src             *Source
	remaining       uint64
	maxDepth, depth int
}

func (a *cborDefiniteArrayReader) Next() (*Document, bool, error) {
	if a.remaining == 0 {
		return nil, false, nil
	}
	a.remaining--
	d, err := readCBORValue(a.src, a.maxDepth, a.depth)
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}

type cborIndefiniteArrayReader struct {
	src             *Source
	maxDepth, depth int
	done            bool
}

func (a *cborIndefiniteArrayReader) Next() (*Document, bool, error) {
	if a.done {
		return nil, false, nil
	}
	b, ok, err := a.src.PeekByte()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, unexpectedEOF("indefinite-length array not terminated")
	}
	if b == cborBreak {
		_, _ = a.src.ReadByte()
		a.done = true
		return nil, false, nil
	}
	d, err := readCBORValue(a.src, a.maxDepth, a.depth)
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}

type cborDefiniteMapReader struct {
	src             *Source
	remainingPairs  uint64
	maxDepth, depth int
}

func (m *cborDefiniteMapReader) NextKey() (*Document, bool, error) {
	if m.remainingPairs == 0 {
		return nil, false, nil
	}
	m.remainingPairs--
	d, err := readCBORValue(m.src, m.maxDepth, m.depth)
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}

func (m *cborDefiniteMapReader) Value() (*Document, error) {
	return readCBORValue(m.src, m.maxDepth, m.depth)
}

type cborIndefiniteMapReader struct {
	src             *Source
	maxDepth, depth int
	done            bool
}

func (m *cborIndefiniteMapReader) NextKey() (*Document, bool, error) {
	if m.done {
		return nil, false, nil
	}
	b, ok, err := m.src.PeekByte()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, unexpectedEOF("indefinite-length map not terminated")
	}
	if b == cborBreak {
		_, _ = m.src.ReadByte()
		m.done = true
		return nil, false, nil
	}
	d, err := readCBORValue(m.src, m.maxDepth, m.depth)
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}

func (m *cborIndefiniteMapReader) Value() (*Document, error) {
	return readCBORValue(m.src, m.maxDepth, m.depth)
}
