// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package goldfish

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTripJSON(t *testing.T, input string) string {
	t.Helper()
	d, err := ReadJSON(strings.NewReader(input))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, d))
	return buf.String()
}

func TestJSONWriterRoundTripsObject(t *testing.T) {
	got := roundTripJSON(t, `{"a":1,"b":[true,null,-2,3.5]}`)
	assert.Equal(t, `{"a":1,"b":[true,null,-2,3.5]}`, got)
}

func TestJSONWriterEscapesAndForwardsNonASCIIBytes(t *testing.T) {
	input := "\"A\U0001D11E\\n\\t\\\"\""
	d, err := ReadJSON(strings.NewReader(input))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, d))
	// The non-ASCII rune's UTF-8 bytes are forwarded unchanged; only the
	// control characters and the quote are re-escaped.
	want := "\"A\U0001D11E\\n\\t\\\"\""
	assert.Equal(t, want, buf.String())
}

func TestJSONWriterUndefinedBecomesNull(t *testing.T) {
	d := newUndefinedDoc(false)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, d))
	assert.Equal(t, "null", buf.String())
}

func TestJSONWriterBinaryAsBase64(t *testing.T) {
	cborSrc := []byte{0x44, 0xDE, 0xAD, 0xBE, 0xEF} // definite-length 4-byte binary string
	doc, err := ReadCBOR(bytes.NewReader(cborSrc))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, doc))
	assert.Equal(t, `"3q2+7w=="`, buf.String())
}

func TestJSONWriterFloatKeepsDecimalPoint(t *testing.T) {
	d, err := ReadJSON(strings.NewReader("2.0"))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, d))
	assert.Contains(t, buf.String(), ".")
}

func TestJSONWriterNonStringMapKeyRoundTrips(t *testing.T) {
	mb := NewMapBuilder()
	mb.AppendKey(NewUintDocument(7))
	mb.AppendValue(NewStringDocumentFromBytes([]byte("seven")))

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, mb.Build()))
	assert.Equal(t, `{"7":"seven"}`, buf.String())

	d, err := ReadJSON(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	m, err := d.AsMap()
	require.NoError(t, err)

	key, ok, err := m.NextKey()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, key.IsExactly(TagString))
	u, err := key.AsUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), u)

	val, err := m.Value()
	require.NoError(t, err)
	r, err := val.AsString()
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "seven", string(got))
}
