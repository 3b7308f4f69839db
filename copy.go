package goldfish

import "io"

// DocumentWriter is the common shape of JSONWriter and CBORWriter: given
// a Document -- possibly produced by the other format's reader
// entirely -- it streams it out, reading each String/Binary payload and
// each Array/Map element only as it's written, never buffering a whole
// document in memory first.
type DocumentWriter interface {
	Write(*Document) error
}

// CopyDocument streams d into dst. This is the whole of transcoding: a
// Document from a CBORReader can be handed directly to a JSONWriter, or
// vice versa, with no intermediate representation.
func CopyDocument(dst DocumentWriter, d *Document) error {
	return dst.Write(d)
}

// TranscodeCBORToJSON reads every top-level CBOR data item off r and
// writes each one out as a JSON value on w.
func TranscodeCBORToJSON(w io.Writer, r io.Reader) error {
	return transcode(NewJSONWriter(w), NewCBORReader(r))
}

// TranscodeJSONToCBOR reads every top-level JSON value off r and writes
// each one out as a CBOR data item on w.
func TranscodeJSONToCBOR(w io.Writer, r io.Reader) error {
	return transcode(NewCBORWriter(w), NewJSONReader(r))
}

// documentReader is the common shape of JSONReader and CBORReader.
type documentReader interface {
	Read() (*Document, error)
}

func transcode(dst DocumentWriter, src documentReader) error {
	for {
		d, err := src.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if err := CopyDocument(dst, d); err != nil {
			return err
		}
	}
}
