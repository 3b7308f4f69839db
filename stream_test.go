// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package goldfish

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourcePeekAndReadByte(t *testing.T) {
	src := NewSource(bytes.NewReader([]byte("abc")))

	b, ok, err := src.PeekByte()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, byte('a'), b)

	got, err := src.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('a'), got)

	got, err = src.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('b'), got)
}

func TestSourceReadByteAtEndOfStream(t *testing.T) {
	src := NewSource(bytes.NewReader(nil))
	_, err := src.ReadByte()
	assert.ErrorIs(t, err, ErrUnexpectedEndOfStream)
}

func TestSourcePeekByteAtEndOfStream(t *testing.T) {
	src := NewSource(bytes.NewReader(nil))
	_, ok, err := src.PeekByte()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSourceSeekSkipsBytes(t *testing.T) {
	src := NewSource(bytes.NewReader([]byte("abcdef")))
	skipped, err := src.Seek(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), skipped)

	b, err := src.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('d'), b)
}

func TestSourceSeekPastEndOfStream(t *testing.T) {
	src := NewSource(bytes.NewReader([]byte("ab")))
	skipped, err := src.Seek(10)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), skipped)
}

func TestSourceReadFullFailsShortOfFullBuffer(t *testing.T) {
	src := NewSource(bytes.NewReader([]byte("ab")))
	buf := make([]byte, 4)
	err := src.ReadFull(buf)
	assert.ErrorIs(t, err, ErrUnexpectedEndOfStream)
}

func TestSourceReadUintHelpers(t *testing.T) {
	src := NewSource(bytes.NewReader([]byte{0x01, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x03}))
	u16, err := src.ReadUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0100), u16)

	u32, err := src.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x00020000), u32)

	src2 := NewSource(bytes.NewReader([]byte{0, 0, 0, 0, 0, 0, 0, 1}))
	u64, err := src2.ReadUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u64)
}

func TestSinkWriteAndFlush(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf)
	_, err := sink.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, sink.Flush())
	assert.Equal(t, "hello", buf.String())
}

func TestSourceReadReturnsEOF(t *testing.T) {
	src := NewSource(bytes.NewReader(nil))
	buf := make([]byte, 1)
	_, err := src.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
}
