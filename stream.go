package goldfish

import (
	"bufio"
	"encoding/binary"
	"io"
)

// minSourceBuffer is the minimum bufio.Reader size a Source rebuffers to,
// the same way jibby.NewDecoder rebuffers any bufio.Reader under 8192
// bytes. The CBOR and JSON readers themselves peek at most one byte ahead.
const minSourceBuffer = 4096

// ByteReader is a lazy, finite byte sequence: the child reader a Document
// exposes for its String and Binary payload. It satisfies io.Reader; Read
// may return fewer bytes than requested without that meaning end of
// stream. End of stream is signaled the idiomatic Go way, by Read
// returning (0, io.EOF).
type ByteReader interface {
	io.Reader

	// Seek skips up to n bytes of payload, returning how many were
	// actually skipped (fewer than n only at end of stream).
	Seek(n uint64) (uint64, error)
}

// Sink is the push-side byte contract a writer's backend is built on.
// Flush is idempotent on the adapter itself but may have side effects on
// the inner stream (padding for base64, a terminator for an indefinite
// container).
type Sink interface {
	io.Writer
	Flush() error
}

// Source is the pull-side byte-stream contract CBOR and JSON readers are
// built on top of. It wraps an io.Reader in a small buffered adapter that
// promotes single-byte peeking even when the wrapped reader offers no
// peek capability of its own.
type Source struct {
	r *bufio.Reader
}

// NewSource wraps r for use by a CBOR or JSON reader. If r is already a
// sufficiently large *bufio.Reader it is used directly (no double
// buffering), mirroring jibby.NewDecoder.
func NewSource(r io.Reader) *Source {
	if br, ok := r.(*bufio.Reader); ok && br.Size() >= minSourceBuffer {
		return &Source{r: br}
	}
	return &Source{r: bufio.NewReaderSize(r, minSourceBuffer)}
}

// Read implements io.Reader / the ByteReader contract directly against
// the underlying stream: used by CBOR's definite-length binary/string
// framing, which reads payload bytes straight off the Source.
func (s *Source) Read(dst []byte) (int, error) {
	n, err := s.r.Read(dst)
	if err != nil && err != io.EOF {
		return n, NewIOError(err)
	}
	return n, err
}

// PeekByte returns the next byte without consuming it. ok is false at end
// of stream.
func (s *Source) PeekByte() (b byte, ok bool, err error) {
	buf, err := s.r.Peek(1)
	if err != nil {
		if err == io.EOF {
			return 0, false, nil
		}
		return 0, false, NewIOError(err)
	}
	return buf[0], true, nil
}

// peekRun peeks up to n bytes without consuming them, returning fewer
// only at end of stream. It is unexported and nothing in the package
// calls it; the readers use the single-byte Source.PeekByte.
func (s *Source) peekRun(n int) ([]byte, error) {
	buf, err := s.r.Peek(n)
	if err != nil && err != io.EOF {
		return nil, NewIOError(err)
	}
	return buf, nil
}

// ReadByte consumes and returns the next byte, failing with
// ErrUnexpectedEndOfStream at end of stream.
func (s *Source) ReadByte() (byte, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return 0, unexpectedEOF("reading one byte")
		}
		return 0, NewIOError(err)
	}
	return b, nil
}

// UnreadByte puts back the single most recently read byte.
func (s *Source) UnreadByte() error {
	return s.r.UnreadByte()
}

// ReadFull reads exactly len(dst) bytes, failing with
// ErrUnexpectedEndOfStream if the stream ends first.
func (s *Source) ReadFull(dst []byte) error {
	_, err := io.ReadFull(s.r, dst)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return unexpectedEOF("reading %d bytes", len(dst))
		}
		return NewIOError(err)
	}
	return nil
}

// ReadUint16 reads a big-endian uint16, per CBOR's wire format.
func (s *Source) ReadUint16() (uint16, error) {
	var buf [2]byte
	if err := s.ReadFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// ReadUint32 reads a big-endian uint32, per CBOR's wire format.
func (s *Source) ReadUint32() (uint32, error) {
	var buf [4]byte
	if err := s.ReadFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// ReadUint64 reads a big-endian uint64, per CBOR's wire format.
func (s *Source) ReadUint64() (uint64, error) {
	var buf [8]byte
	if err := s.ReadFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// Seek skips up to n bytes directly off the underlying stream, returning
// how many were actually discarded (fewer than n only at end of stream).
func (s *Source) Seek(n uint64) (uint64, error) {
	var skipped uint64
	for skipped < n {
		chunk := n - skipped
		if chunk > 1<<20 {
			chunk = 1 << 20
		}
		d, err := s.r.Discard(int(chunk))
		skipped += uint64(d)
		if err != nil {
			if err == io.EOF {
				return skipped, nil
			}
			return skipped, NewIOError(err)
		}
		if d == 0 {
			break
		}
	}
	return skipped, nil
}

// sinkWriter adapts an io.Writer to Sink by buffering writes, the same
// role bufio.Writer plays for jibby's output buffers.
type sinkWriter struct {
	w *bufio.Writer
}

// NewSink wraps w for use by a CBOR or JSON writer.
func NewSink(w io.Writer) Sink {
	return &sinkWriter{w: bufio.NewWriterSize(w, minSourceBuffer)}
}

func (s *sinkWriter) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	if err != nil {
		return n, NewIOError(err)
	}
	return n, nil
}

func (s *sinkWriter) Flush() error {
	if err := s.w.Flush(); err != nil {
		return NewIOError(err)
	}
	return nil
}

// writeByte writes a single byte through a Sink.
func writeByte(w Sink, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}
