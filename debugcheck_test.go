// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package goldfish

import (
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddReadChecksCatchesUndrainedChild(t *testing.T) {
	raw, err := ReadJSON(strings.NewReader(`[[1,2],3]`))
	require.NoError(t, err)
	d, err := AddReadChecks(raw)
	require.NoError(t, err)

	arr, err := d.AsArray()
	require.NoError(t, err)

	inner, ok, err := arr.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, TagArray, inner.Tag())
	// inner array is not drained -- asking the parent for its next
	// element must fail with a locked-parent error.
	_, _, err = arr.Next()
	assert.Error(t, err)
}

func TestAddReadChecksAllowsResumeAfterDraining(t *testing.T) {
	raw, err := ReadJSON(strings.NewReader(`[[1,2],3]`))
	require.NoError(t, err)
	d, err := AddReadChecks(raw)
	require.NoError(t, err)

	arr, err := d.AsArray()
	require.NoError(t, err)

	inner, ok, err := arr.Next()
	require.NoError(t, err)
	require.True(t, ok)
	innerArr, err := inner.AsArray()
	require.NoError(t, err)
	for {
		_, ok, err := innerArr.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
	}

	next, ok, err := arr.Next()
	require.NoError(t, err)
	require.True(t, ok)
	u, err := next.AsUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), u)
}

func TestAddReadChecksSeekToEndUnlocksParent(t *testing.T) {
	raw, err := ReadJSON(strings.NewReader(`["abc","def"]`))
	require.NoError(t, err)
	d, err := AddReadChecks(raw)
	require.NoError(t, err)

	arr, err := d.AsArray()
	require.NoError(t, err)

	first, ok, err := arr.Next()
	require.NoError(t, err)
	require.True(t, ok)
	sr, err := first.AsString()
	require.NoError(t, err)
	// read partway, then skip the rest with Seek (what SeekToEnd does for
	// a string payload); the short skip unlocks the parent.
	buf := make([]byte, 1)
	_, err = sr.Read(buf)
	require.NoError(t, err)
	_, err = sr.Seek(math.MaxUint64)
	require.NoError(t, err)

	second, ok, err := arr.Next()
	require.NoError(t, err)
	require.True(t, ok)
	s2, err := second.AsString()
	require.NoError(t, err)
	got, err := io.ReadAll(s2)
	require.NoError(t, err)
	assert.Equal(t, "def", string(got))
}

func TestAddReadChecksMapKeyValueAlternation(t *testing.T) {
	raw, err := ReadJSON(strings.NewReader(`{"a":1}`))
	require.NoError(t, err)
	d, err := AddReadChecks(raw)
	require.NoError(t, err)

	m, err := d.AsMap()
	require.NoError(t, err)

	_, ok, err := m.NextKey()
	require.NoError(t, err)
	require.True(t, ok)

	// calling NextKey again before Value is read must fail.
	_, _, err = m.NextKey()
	assert.Error(t, err)
}

func TestAddReadChecksMapValueBeforeKey(t *testing.T) {
	raw, err := ReadJSON(strings.NewReader(`{"a":1}`))
	require.NoError(t, err)
	d, err := AddReadChecks(raw)
	require.NoError(t, err)

	m, err := d.AsMap()
	require.NoError(t, err)

	// calling Value before any NextKey must fail.
	_, err = m.Value()
	assert.Error(t, err)
}
