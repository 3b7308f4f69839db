// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package goldfish

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentIsSingleUse(t *testing.T) {
	d := mustReadJSON(t, "123")
	_, err := d.AsUint64()
	require.NoError(t, err)
	_, err = d.AsUint64()
	assert.ErrorIs(t, err, ErrBadVariantAccess)
}

func TestDocumentCoercesIntToFloat(t *testing.T) {
	d := mustReadJSON(t, "-2")
	f, err := d.AsFloat64()
	require.NoError(t, err)
	assert.Equal(t, -2.0, f)
}

func TestDocumentFloatToIntRequiresExactValue(t *testing.T) {
	d := mustReadJSON(t, "3.5")
	_, err := d.AsInt64()
	assert.ErrorIs(t, err, ErrIntegerOverflowCasting)

	d = mustReadJSON(t, "4.0")
	i, err := d.AsInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(4), i)
}

func TestDocumentNegativeIntToUintFails(t *testing.T) {
	d := mustReadJSON(t, "-1")
	_, err := d.AsUint64()
	assert.ErrorIs(t, err, ErrIntegerOverflowCasting)
}

func TestDocumentJSONStringParsedAsNumber(t *testing.T) {
	d := mustReadJSON(t, `"42"`)
	u, err := d.AsUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), u)
}

func TestDocumentJSONStringAsBool(t *testing.T) {
	d := mustReadJSON(t, `"true"`)
	b, err := d.AsBool()
	require.NoError(t, err)
	assert.True(t, b)

	d = mustReadJSON(t, `"false"`)
	b, err = d.AsBool()
	require.NoError(t, err)
	assert.False(t, b)

	d = mustReadJSON(t, `"nope"`)
	_, err = d.AsBool()
	assert.Error(t, err)
}

func TestDocumentNarrowingRangeChecks(t *testing.T) {
	d := mustReadJSON(t, "300")
	_, err := d.AsUint8()
	assert.ErrorIs(t, err, ErrIntegerOverflowCasting)

	d = mustReadJSON(t, "200")
	u8, err := d.AsUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(200), u8)

	d = mustReadJSON(t, "-200")
	_, err = d.AsInt8()
	assert.ErrorIs(t, err, ErrIntegerOverflowCasting)
}

func TestSeekToEndDrainsNestedContainers(t *testing.T) {
	d := mustReadJSON(t, `[{"a":[1,2,3]},"trailing"]`)
	require.NoError(t, SeekToEnd(d))
}

type recordingVisitor struct {
	gotUint *uint64
}

func (v *recordingVisitor) VisitNull() error      { return nil }
func (v *recordingVisitor) VisitUndefined() error { return nil }
func (v *recordingVisitor) VisitBool(bool) error  { return nil }
func (v *recordingVisitor) VisitUint(u uint64) error {
	*v.gotUint = u
	return nil
}
func (v *recordingVisitor) VisitInt(int64) error             { return nil }
func (v *recordingVisitor) VisitFloat(float64) error          { return nil }
func (v *recordingVisitor) VisitString(ByteReader) error      { return nil }
func (v *recordingVisitor) VisitBinary(ByteReader) error      { return nil }
func (v *recordingVisitor) VisitArray(ArrayReader) error      { return nil }
func (v *recordingVisitor) VisitMap(MapReader) error          { return nil }

func TestVisitDispatchesToMatchingMethod(t *testing.T) {
	d := mustReadJSON(t, "42")
	var got uint64
	v := &recordingVisitor{gotUint: &got}
	require.NoError(t, d.Visit(v))
	assert.Equal(t, uint64(42), got)
}

func TestIsNullAndIsUndefinedOrNull(t *testing.T) {
	d, err := ReadJSON(strings.NewReader("null"))
	require.NoError(t, err)
	assert.True(t, d.IsNull())
	assert.True(t, d.IsUndefinedOrNull())
}
