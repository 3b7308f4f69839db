package goldfish

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// JSONWriter serializes a Document tree as JSON text. A string payload's
// bytes are assumed to already be valid UTF-8 and are forwarded as-is,
// except for the control characters, the quote and the backslash, which
// are escaped.
type JSONWriter struct {
	sink Sink
}

// NewJSONWriter wraps w for writing.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{sink: NewSink(w)}
}

// Write serializes d as a single top-level JSON value and flushes the
// underlying stream.
func (jw *JSONWriter) Write(d *Document) error {
	if err := writeJSONValue(jw.sink, d); err != nil {
		return err
	}
	return jw.sink.Flush()
}

// WriteJSON serializes d to w as a single top-level JSON value.
func WriteJSON(w io.Writer, d *Document) error {
	return NewJSONWriter(w).Write(d)
}

func writeJSONValue(sink Sink, d *Document) error {
	return d.Visit(&jsonValueVisitor{sink: sink})
}

func writeRaw(sink Sink, s string) error {
	_, err := sink.Write([]byte(s))
	return err
}

type jsonValueVisitor struct {
	sink Sink
}

func (v *jsonValueVisitor) VisitNull() error      { return writeRaw(v.sink, "null") }
func (v *jsonValueVisitor) VisitUndefined() error { return writeRaw(v.sink, "null") }

func (v *jsonValueVisitor) VisitBool(b bool) error {
	if b {
		return writeRaw(v.sink, "true")
	}
	return writeRaw(v.sink, "false")
}

func (v *jsonValueVisitor) VisitUint(u uint64) error {
	return writeRaw(v.sink, strconv.FormatUint(u, 10))
}

func (v *jsonValueVisitor) VisitInt(i int64) error {
	return writeRaw(v.sink, strconv.FormatInt(i, 10))
}

func (v *jsonValueVisitor) VisitFloat(f float64) error {
	s, err := formatJSONFloat(f)
	if err != nil {
		return err
	}
	return writeRaw(v.sink, s)
}

func (v *jsonValueVisitor) VisitString(r ByteReader) error {
	return writeJSONString(v.sink, r)
}

func (v *jsonValueVisitor) VisitBinary(r ByteReader) error {
	return writeJSONBinary(v.sink, r)
}

func (v *jsonValueVisitor) VisitArray(a ArrayReader) error {
	if err := writeByte(v.sink, '['); err != nil {
		return err
	}
	first := true
	for {
		child, ok, err := a.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if !first {
			if err := writeByte(v.sink, ','); err != nil {
				return err
			}
		}
		first = false
		if err := writeJSONValue(v.sink, child); err != nil {
			return err
		}
	}
	return writeByte(v.sink, ']')
}

func (v *jsonValueVisitor) VisitMap(m MapReader) error {
	if err := writeByte(v.sink, '{'); err != nil {
		return err
	}
	first := true
	for {
		key, ok, err := m.NextKey()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if !first {
			if err := writeByte(v.sink, ','); err != nil {
				return err
			}
		}
		first = false
		if err := writeJSONMapKey(v.sink, key); err != nil {
			return err
		}
		if err := writeByte(v.sink, ':'); err != nil {
			return err
		}
		val, err := m.Value()
		if err != nil {
			return err
		}
		if err := writeJSONValue(v.sink, val); err != nil {
			return err
		}
	}
	return writeByte(v.sink, '}')
}

// writeJSONMapKey writes key as a quoted JSON string, applying
// scalar-to-string coercion: a string or scalar map key, whatever its
// native tag, is written as a JSON string. Null and undefined keys are
// written as the string "null"; arrays, maps and binary values cannot be
// keys.
func writeJSONMapKey(sink Sink, key *Document) error {
	switch key.Tag() {
	case TagString:
		r, err := key.AsString()
		if err != nil {
			return err
		}
		return writeJSONString(sink, r)
	case TagNull, TagUndefined:
		if err := key.consume(); err != nil {
			return err
		}
		return writeRaw(sink, `"null"`)
	case TagBool:
		b, err := key.AsBool()
		if err != nil {
			return err
		}
		if b {
			return writeRaw(sink, `"true"`)
		}
		return writeRaw(sink, `"false"`)
	case TagUint:
		u, err := key.AsUint64()
		if err != nil {
			return err
		}
		return writeRaw(sink, `"`+strconv.FormatUint(u, 10)+`"`)
	case TagInt:
		i, err := key.AsInt64()
		if err != nil {
			return err
		}
		return writeRaw(sink, `"`+strconv.FormatInt(i, 10)+`"`)
	case TagFloat:
		f, err := key.AsFloat64()
		if err != nil {
			return err
		}
		s, err := formatJSONFloat(f)
		if err != nil {
			return err
		}
		return writeRaw(sink, `"`+s+`"`)
	default:
		return invalidKeyType("map keys must be scalar, got %s", key.Tag())
	}
}

// formatJSONFloat renders f as a JSON number literal, shared by scalar
// values and stringified map keys. NaN and Infinity have no JSON
// representation. A round-number result (strconv's shortest form has no
// '.' or exponent) is forced to carry a decimal point, so re-reading the
// literal back produces a Float Document rather than a Uint or Int one.
func formatJSONFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", illFormattedJSON("NaN and Infinity have no JSON representation")
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s, nil
}

// jsonEscapeTable maps each byte to its JSON escape sequence, or "" if
// the byte may be written raw. Every byte at or above 0x80 is left
// unmapped (forwarded raw): a string's payload is a run of bytes the
// writer never decodes, not a sequence of runes it re-encodes.
var jsonEscapeTable [256]string

func init() {
	jsonEscapeTable['"'] = `\"`
	jsonEscapeTable['\\'] = `\\`
	jsonEscapeTable['\b'] = `\b`
	jsonEscapeTable['\f'] = `\f`
	jsonEscapeTable['\n'] = `\n`
	jsonEscapeTable['\r'] = `\r`
	jsonEscapeTable['\t'] = `\t`
	for i := 0; i < 0x20; i++ {
		if jsonEscapeTable[i] == "" {
			jsonEscapeTable[i] = fmt.Sprintf(`\u%04x`, i)
		}
	}
}

// writeJSONString streams r's payload out as a quoted JSON string,
// escaping control characters and the quote/backslash. Every other
// byte, including the whole 0x80-0xFF range, is forwarded unchanged.
func writeJSONString(sink Sink, r ByteReader) error {
	if err := writeByte(sink, '"'); err != nil {
		return err
	}
	buf := make([]byte, 4096)
	for {
		n, rerr := r.Read(buf)
		for i := 0; i < n; i++ {
			b := buf[i]
			if esc := jsonEscapeTable[b]; esc != "" {
				if err := writeRaw(sink, esc); err != nil {
					return err
				}
				continue
			}
			if err := writeByte(sink, b); err != nil {
				return err
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				break
			}
			return NewIOError(rerr)
		}
	}
	return writeByte(sink, '"')
}

// writeJSONBinary tunnels a Binary payload through a JSON string as
// standard base64, with no distinguishing prefix or tag: a reader can
// only recover the Binary tag by knowing from context that the field
// holds binary data.
func writeJSONBinary(sink Sink, r ByteReader) error {
	if err := writeByte(sink, '"'); err != nil {
		return err
	}
	bw := newBase64Writer(sink)
	buf := make([]byte, 4096)
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, werr := bw.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				break
			}
			return rerr
		}
	}
	if err := bw.FlushNoInnerFlush(); err != nil {
		return err
	}
	return writeByte(sink, '"')
}
