// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0
//
// Based on gopkg.in/mgo.v2/bson by Gustavo Niemeyer
// See THIRD-PARTY-NOTICES for original license terms.

package primitive

import (
	"github.com/pkg/errors"

	"github.com/lucsoft/web-bson-sub000/internal/decimal128"
	"github.com/lucsoft/web-bson-sub000/x/bsonx/bsoncore"
)

// These constants are the maximum and minimum values for the exponent field in a decimal128 value.
const (
	MaxDecimal128Exp = decimal128.MaxDecimal128Exp
	MinDecimal128Exp = decimal128.MinDecimal128Exp
)

var (
	// ErrParseDecimal128 is the cause of errors for strings that are not
	// decimal numbers.
	ErrParseDecimal128 = decimal128.ErrInvalidString

	// ErrDecimal128Overflow is the cause of errors for numbers that need
	// more precision or exponent range than a decimal128 has.
	ErrDecimal128Overflow = decimal128.ErrOverflow

	// ErrDecimal128Bytes is returned when a byte slice is not 16 bytes long.
	ErrDecimal128Bytes = errors.New("decimal128 requires exactly 16 bytes")
)

// Decimal128 holds decimal128 BSON values.
type Decimal128 struct {
	h, l uint64
}

// NewDecimal128 creates a Decimal128 using the provide high and low uint64s.
func NewDecimal128(h, l uint64) Decimal128 {
	return Decimal128{h: h, l: l}
}

// ParseDecimal128 takes the given string and attempts to parse it into a valid
// Decimal128 value.
func ParseDecimal128(s string) (Decimal128, error) {
	h, l, err := decimal128.Parse(s)
	if err != nil {
		return Decimal128{}, err
	}
	return Decimal128{h: h, l: l}, nil
}

// Decimal128FromBytes reads a Decimal128 from its 16 byte wire form, low
// word first.
func Decimal128FromBytes(b []byte) (Decimal128, error) {
	if len(b) != bsoncore.Decimal128Size {
		return Decimal128{}, errors.Wrapf(ErrDecimal128Bytes, "got %d", len(b))
	}
	h, l, _, _ := bsoncore.ReadDecimal128(b)
	return Decimal128{h: h, l: l}, nil
}

// GetBytes returns the underlying bytes of the BSON decimal value as two uint64 values. The first
// contains the most first 8 bytes of the value and the second contains the latter.
func (d Decimal128) GetBytes() (uint64, uint64) {
	return d.h, d.l
}

// Bytes returns the 16 byte wire form of d.
func (d Decimal128) Bytes() []byte {
	return bsoncore.AppendDecimal128(make([]byte, 0, bsoncore.Decimal128Size), d.h, d.l)
}

// String returns a string representation of the decimal value.
func (d Decimal128) String() string {
	return decimal128.String(d.h, d.l)
}

// IsNaN returns whether d is NaN.
func (d Decimal128) IsNaN() bool {
	return d.h>>58&(1<<5-1) == 0x1F
}

// IsInf returns:
//
//	+1 d == Infinity
//	 0 other case
//	-1 d == -Infinity
func (d Decimal128) IsInf() int {
	if d.h>>58&(1<<5-1) != 0x1E {
		return 0
	}
	if d.h>>63&1 == 0 {
		return 1
	}
	return -1
}

// IsZero returns true if d is a zero of either sign.
func (d Decimal128) IsZero() bool {
	return decimal128.IsZero(d.h, d.l)
}

// Equal reports whether d and d2 have the same bit pattern. Members of the
// same cohort such as 1.0 and 1.00 are not equal.
func (d Decimal128) Equal(d2 Decimal128) bool {
	return d == d2
}
