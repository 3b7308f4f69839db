package goldfish

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayBuilderRoundTripsAsJSON(t *testing.T) {
	ab := NewArrayBuilder()
	ab.Append(NewUintDocument(1))
	ab.Append(NewBoolDocument(true))
	ab.Append(NewStringDocumentFromBytes([]byte("hi")))

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, ab.Build()))
	assert.Equal(t, `[1,true,"hi"]`, buf.String())
}

func TestMapBuilderRoundTripsAsCBORThenJSON(t *testing.T) {
	mb := NewMapBuilder()
	mb.AppendKey(NewStringDocumentFromBytes([]byte("hello")))
	mb.AppendValue(NewStringDocumentFromBytes([]byte("world")))

	var cborBuf bytes.Buffer
	require.NoError(t, WriteCBOR(&cborBuf, mb.Build()))

	d, err := ReadCBOR(bytes.NewReader(cborBuf.Bytes()))
	require.NoError(t, err)
	var jsonBuf bytes.Buffer
	require.NoError(t, WriteJSON(&jsonBuf, d))
	assert.Equal(t, `{"hello":"world"}`, jsonBuf.String())
}

func TestNewBinaryDocumentFromBytesWritesBase64(t *testing.T) {
	d := NewBinaryDocumentFromBytes([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, d))
	assert.Equal(t, `"3q2+7w=="`, buf.String())
}

func TestByteSliceReaderSeekThenRead(t *testing.T) {
	r := newByteSliceReader([]byte("abcdef"))
	skipped, err := r.Seek(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), skipped)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "cdef", string(got))
}

func TestAddArrayWriteChecksRejectsAppendAfterBuild(t *testing.T) {
	cb := AddArrayWriteChecks(NewArrayBuilder())
	require.NoError(t, cb.Append(NewUintDocument(1)))
	doc := cb.Build()
	require.NotNil(t, doc)

	err := cb.Append(NewUintDocument(2))
	assert.Error(t, err)
}

func TestAddMapWriteChecksEnforcesKeyValueAlternation(t *testing.T) {
	cb := AddMapWriteChecks(NewMapBuilder())
	require.NoError(t, cb.AppendKey(NewStringDocumentFromBytes([]byte("a"))))

	// a second key before a value must fail.
	err := cb.AppendKey(NewStringDocumentFromBytes([]byte("b")))
	assert.Error(t, err)

	require.NoError(t, cb.AppendValue(NewUintDocument(1)))

	// a value with no pending key must fail.
	err = cb.AppendValue(NewUintDocument(2))
	assert.Error(t, err)
}

func TestAddMapWriteChecksRejectsAppendAfterBuild(t *testing.T) {
	cb := AddMapWriteChecks(NewMapBuilder())
	require.NoError(t, cb.AppendKey(NewStringDocumentFromBytes([]byte("a"))))
	require.NoError(t, cb.AppendValue(NewUintDocument(1)))
	cb.Build()

	err := cb.AppendKey(NewStringDocumentFromBytes([]byte("b")))
	assert.Error(t, err)
}
