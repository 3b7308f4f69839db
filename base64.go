package goldfish

import (
	"encoding/base64"
	"io"
)

// base64Reader decodes standard, padded base64 off an inner ByteReader,
// exposing the decoded bytes as a ByteReader in turn: this is how a JSON
// Document tunnels a CBOR-shaped Binary value through a JSON string.
type base64Reader struct {
	r io.Reader
}

func newBase64Reader(inner ByteReader) *base64Reader {
	return &base64Reader{r: base64.NewDecoder(base64.StdEncoding, inner)}
}

func (b *base64Reader) Read(dst []byte) (int, error) {
	n, err := b.r.Read(dst)
	if err != nil && err != io.EOF {
		return n, illFormatted("decoding base64: %v", err)
	}
	return n, err
}

// Seek drains and discards up to n decoded bytes.
func (b *base64Reader) Seek(n uint64) (uint64, error) {
	return seekByReading(b, n)
}

// base64Writer encodes onto an inner Sink using the standard, padded
// alphabet. FlushNoInnerFlush closes out any pending group (emitting '='
// padding) without flushing the inner Sink, so the JSON binary writer can
// interleave the closing quote between the base64 padding and the inner
// buffer flush.
type base64Writer struct {
	enc   io.WriteCloser
	inner Sink
}

func newBase64Writer(inner Sink) *base64Writer {
	return &base64Writer{
		enc:   base64.NewEncoder(base64.StdEncoding, inner),
		inner: inner,
	}
}

func (b *base64Writer) Write(p []byte) (int, error) {
	n, err := b.enc.Write(p)
	if err != nil {
		return n, NewIOError(err)
	}
	return n, nil
}

// FlushNoInnerFlush emits any trailing base64 padding without flushing
// the inner Sink's own buffer.
func (b *base64Writer) FlushNoInnerFlush() error {
	if err := b.enc.Close(); err != nil {
		return NewIOError(err)
	}
	return nil
}

func (b *base64Writer) Flush() error {
	if err := b.FlushNoInnerFlush(); err != nil {
		return err
	}
	return b.inner.Flush()
}

// seekByReading implements Seek for a ByteReader that only knows how to
// Read, by draining into a scratch buffer. Used by adapters (base64, the
// JSON string reader, CBOR's indefinite-length string reader) whose inner
// stream has no faster skip.
func seekByReading(r io.Reader, n uint64) (uint64, error) {
	var buf [512]byte
	var skipped uint64
	for skipped < n {
		want := n - skipped
		if want > uint64(len(buf)) {
			want = uint64(len(buf))
		}
		rn, err := r.Read(buf[:want])
		skipped += uint64(rn)
		if err != nil {
			if err == io.EOF {
				return skipped, nil
			}
			return skipped, err
		}
		if rn == 0 {
			return skipped, nil
		}
	}
	return skipped, nil
}
