// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package primitive

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The same interface as bsoncodec.Zeroer implemented for tests.
type zeroer interface {
	IsZero() bool
}

func TestTimestampCompare(t *testing.T) {
	testcases := []struct {
		name     string
		tp       Timestamp
		tp2      Timestamp
		expected int
	}{
		{"equal", Timestamp{T: 12345, I: 67890}, Timestamp{T: 12345, I: 67890}, 0},
		{"T greater than", Timestamp{T: 12345, I: 67890}, Timestamp{T: 2345, I: 67890}, 1},
		{"I greater than", Timestamp{T: 12345, I: 67890}, Timestamp{T: 12345, I: 7890}, 1},
		{"T less than", Timestamp{T: 12345, I: 67890}, Timestamp{T: 112345, I: 67890}, -1},
		{"I less than", Timestamp{T: 12345, I: 67890}, Timestamp{T: 12345, I: 167890}, -1},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, CompareTimestamp(tc.tp, tc.tp2))
		})
	}
}

func TestPrimitiveIsZero(t *testing.T) {
	testcases := []struct {
		name    string
		zero    zeroer
		nonzero zeroer
	}{
		{"binary", Binary{}, Binary{Data: []byte{0x01, 0x02, 0x03}, Subtype: 0xFF}},
		{"regex", Regex{}, Regex{Pattern: "foo", Options: "i"}},
		{"timestamp", Timestamp{}, Timestamp{T: 12345, I: 67890}},
		{"objectID", NilObjectID, ObjectID{0x01}},
		{"int64", NewInt64(0), NewInt64(1)},
		{"decimal128", NewDecimal128(0x3040000000000000, 0), NewDecimal128(0x3040000000000000, 1)},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, tc.zero.IsZero())
			require.False(t, tc.nonzero.IsZero())
		})
	}
}

func TestNewRegex(t *testing.T) {
	testCases := []struct {
		name    string
		options string
		want    string
	}{
		{"sorted", "xmi", "imx"},
		{"deduplicated", "iimi", "im"},
		{"empty", "", ""},
		{"all", "usxmli", "ilmsux"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rx, err := NewRegex("a.b", tc.options)
			require.NoError(t, err)
			assert.Equal(t, Regex{Pattern: "a.b", Options: tc.want}, rx)
		})
	}

	_, err := NewRegex("a", "ig")
	assert.Equal(t, ErrInvalidRegexOptions, errors.Cause(err))
}

func TestDateTime(t *testing.T) {
	tm := time.Date(2020, 1, 2, 3, 4, 5, 6e6, time.UTC)
	dt := NewDateTimeFromTime(tm)
	assert.Equal(t, DateTime(1577934245006), dt)
	assert.True(t, dt.Time().Equal(tm))

	assert.True(t, DateTime(-1).Time().Equal(time.Unix(0, -1e6)))
}

func TestDMap(t *testing.T) {
	d := D{{"a", 1}, {"b", "x"}, {"a", 2}}
	assert.Equal(t, M{"a": 2, "b": "x"}, d.Map())
}

func TestBinaryEqual(t *testing.T) {
	assert.True(t, Binary{Subtype: 1, Data: []byte{1}}.Equal(Binary{Subtype: 1, Data: []byte{1}}))
	assert.False(t, Binary{Subtype: 1, Data: []byte{1}}.Equal(Binary{Subtype: 2, Data: []byte{1}}))
}
