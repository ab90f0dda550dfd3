// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package primitive

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/lucsoft/web-bson-sub000/internal/binaryutil"
)

var (
	// ErrDivisionByZero is returned by Div and Mod for a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrInvalidRadix is returned for a radix outside [2, 36].
	ErrInvalidRadix = errors.New("radix out of range")

	// ErrParseInt64 is returned when a string is not an integer that fits in
	// 64 bits.
	ErrParseInt64 = errors.New("invalid Int64 string")

	// ErrInt64Bytes is returned when a byte slice is not 8 bytes long.
	ErrInt64Bytes = errors.New("Int64 requires exactly 8 bytes")
)

// Int64 is a 64-bit two's complement integer paired with a flag that makes
// comparison, division, narrowing and formatting treat the bits as unsigned.
// Arithmetic wraps and the result keeps the flag of the receiver.
type Int64 struct {
	bits     uint64
	unsigned bool
}

// NewInt64 returns a signed Int64 holding v.
func NewInt64(v int64) Int64 { return Int64{bits: uint64(v)} }

// NewUint64 returns an unsigned Int64 holding v.
func NewUint64(v uint64) Int64 { return Int64{bits: v, unsigned: true} }

// Int64FromInt32 returns a signed Int64 holding v.
func Int64FromInt32(v int32) Int64 { return NewInt64(int64(v)) }

// Int64FromUint32 returns an unsigned Int64 holding v.
func Int64FromUint32(v uint32) Int64 { return NewUint64(uint64(v)) }

// Int64FromBits assembles an Int64 from the bit patterns of its low and high
// 32-bit halves.
func Int64FromBits(low, high int32, unsigned bool) Int64 {
	return Int64{bits: uint64(uint32(high))<<32 | uint64(uint32(low)), unsigned: unsigned}
}

// Int64FromFloat64 converts f, truncating any fraction. NaN converts to
// zero and out of range values clamp to the nearest bound.
func Int64FromFloat64(f float64, unsigned bool) Int64 {
	switch {
	case math.IsNaN(f):
		return Int64{unsigned: unsigned}
	case unsigned && f <= 0:
		return Int64{unsigned: true}
	case unsigned && f >= 1<<64:
		return NewUint64(math.MaxUint64)
	case unsigned:
		return NewUint64(uint64(f))
	case f <= math.MinInt64:
		return NewInt64(math.MinInt64)
	case f >= 1<<63:
		return NewInt64(math.MaxInt64)
	}
	return NewInt64(int64(f))
}

// Int64FromBytes reads an Int64 from exactly 8 bytes.
func Int64FromBytes(b []byte, unsigned, littleEndian bool) (Int64, error) {
	if len(b) != 8 {
		return Int64{}, errors.Wrapf(ErrInt64Bytes, "got %d", len(b))
	}
	var bits uint64
	if littleEndian {
		bits, _, _ = binaryutil.ReadU64(b)
	} else {
		bits, _, _ = binaryutil.ReadU64BE(b)
	}
	return Int64{bits: bits, unsigned: unsigned}, nil
}

// ParseInt64 parses s in the given radix. A leading '+' is accepted and a
// leading '-' negates the value in two's complement, so "-1" parsed as unsigned is the maximum uint64.
// Magnitudes that need more than 64 bits are rejected. "NaN" and the
// infinities parse as zero.
func ParseInt64(s string, unsigned bool, radix int) (Int64, error) {
	if s == "" {
		return Int64{}, errors.Wrap(ErrParseInt64, "empty string")
	}
	switch s {
	case "NaN", "Infinity", "+Infinity", "-Infinity":
		return Int64{unsigned: unsigned}, nil
	}
	if radix < 2 || radix > 36 {
		return Int64{}, errors.Wrapf(ErrInvalidRadix, "%d", radix)
	}

	negative := false
	digits := s
	switch digits[0] {
	case '-':
		negative = true
		digits = digits[1:]
	case '+':
		digits = digits[1:]
	}
	if strings.IndexByte(digits, '-') >= 0 {
		return Int64{}, errors.Wrapf(ErrParseInt64, "interior hyphen in %q", s)
	}

	mag, err := strconv.ParseUint(digits, radix, 64)
	if err != nil {
		return Int64{}, errors.Wrapf(ErrParseInt64, "%q in radix %d", s, radix)
	}
	if negative {
		mag = -mag
	}
	return Int64{bits: mag, unsigned: unsigned}, nil
}

// IsUnsigned reports whether i is treated as unsigned.
func (i Int64) IsUnsigned() bool { return i.unsigned }

// Low returns the bit pattern of the low 32 bits.
func (i Int64) Low() int32 { return int32(uint32(i.bits)) }

// High returns the bit pattern of the high 32 bits.
func (i Int64) High() int32 { return int32(uint32(i.bits >> 32)) }

// ToSigned returns i reinterpreted as signed.
func (i Int64) ToSigned() Int64 { return Int64{bits: i.bits} }

// ToUnsigned returns i reinterpreted as unsigned.
func (i Int64) ToUnsigned() Int64 { return Int64{bits: i.bits, unsigned: true} }

// IsZero reports whether i is zero.
func (i Int64) IsZero() bool { return i.bits == 0 }

// IsNegative reports whether i is signed and below zero.
func (i Int64) IsNegative() bool { return !i.unsigned && int64(i.bits) < 0 }

// IsOdd reports whether the lowest bit is set.
func (i Int64) IsOdd() bool { return i.bits&1 == 1 }

// Int64 returns the bits as an int64.
func (i Int64) Int64() int64 { return int64(i.bits) }

// Uint64 returns the bits as a uint64.
func (i Int64) Uint64() uint64 { return i.bits }

// Float64 returns the nearest float64, honoring the unsigned flag.
func (i Int64) Float64() float64 {
	if i.unsigned {
		return float64(i.bits)
	}
	return float64(int64(i.bits))
}

func (i Int64) with(bits uint64) Int64 { return Int64{bits: bits, unsigned: i.unsigned} }

// Add returns i+j.
func (i Int64) Add(j Int64) Int64 { return i.with(i.bits + j.bits) }

// Sub returns i-j.
func (i Int64) Sub(j Int64) Int64 { return i.with(i.bits - j.bits) }

// Mul returns i*j.
func (i Int64) Mul(j Int64) Int64 { return i.with(i.bits * j.bits) }

// Neg returns -i.
func (i Int64) Neg() Int64 { return i.with(-i.bits) }

// Not returns ^i.
func (i Int64) Not() Int64 { return i.with(^i.bits) }

// And returns i&j.
func (i Int64) And(j Int64) Int64 { return i.with(i.bits & j.bits) }

// Or returns i|j.
func (i Int64) Or(j Int64) Int64 { return i.with(i.bits | j.bits) }

// Xor returns i^j.
func (i Int64) Xor(j Int64) Int64 { return i.with(i.bits ^ j.bits) }

// Shl returns i<<(n&63).
func (i Int64) Shl(n uint) Int64 { return i.with(i.bits << (n & 63)) }

// Shr returns i>>(n&63), replicating the sign bit.
func (i Int64) Shr(n uint) Int64 { return i.with(uint64(int64(i.bits) >> (n & 63))) }

// ShrUnsigned returns i>>(n&63), filling with zeros.
func (i Int64) ShrUnsigned(n uint) Int64 { return i.with(i.bits >> (n & 63)) }

// Div returns i/j truncated toward zero. The receiver's flag picks the
// division: an unsigned receiver divides both bit patterns as unsigned, a
// signed receiver divides both as signed.
func (i Int64) Div(j Int64) (Int64, error) {
	if j.bits == 0 {
		return Int64{}, ErrDivisionByZero
	}
	if i.unsigned {
		return i.with(i.bits / j.bits), nil
	}
	// math.MinInt64 / -1 wraps to math.MinInt64.
	return i.with(uint64(int64(i.bits) / int64(j.bits))), nil
}

// Mod returns i - (i/j)*j.
func (i Int64) Mod(j Int64) (Int64, error) {
	q, err := i.Div(j)
	if err != nil {
		return Int64{}, err
	}
	return i.Sub(q.Mul(j)), nil
}

// Equal reports whether i and j hold the same bits. When their flags differ
// and both have the top bit set they are reported as not equal, since one
// reads as negative and the other as a magnitude above math.MaxInt64.
func (i Int64) Equal(j Int64) bool {
	if i.unsigned != j.unsigned && i.bits>>63 == 1 && j.bits>>63 == 1 {
		return false
	}
	return i.bits == j.bits
}

// Compare returns -1, 0 or +1. Negative signed values sort below everything
// else. Two negatives compare as int64; any other pair compares magnitudes,
// so signedness may differ.
func (i Int64) Compare(j Int64) int {
	if i.Equal(j) {
		return 0
	}
	iNeg, jNeg := i.IsNegative(), j.IsNegative()
	switch {
	case iNeg && !jNeg:
		return -1
	case !iNeg && jNeg:
		return 1
	case iNeg && jNeg:
		if int64(i.bits) < int64(j.bits) {
			return -1
		}
		return 1
	case i.bits < j.bits:
		return -1
	}
	return 1
}

// LessThan reports whether i.Compare(j) < 0.
func (i Int64) LessThan(j Int64) bool { return i.Compare(j) < 0 }

// GreaterThan reports whether i.Compare(j) > 0.
func (i Int64) GreaterThan(j Int64) bool { return i.Compare(j) > 0 }

// Bytes returns the 8 byte representation of i.
func (i Int64) Bytes(littleEndian bool) []byte {
	if littleEndian {
		return binaryutil.Append64(make([]byte, 0, 8), i.bits)
	}
	return binaryutil.Append64BE(make([]byte, 0, 8), i.bits)
}

// Text returns i in the given radix, which must be in [2, 36]. Letters are
// lower case.
func (i Int64) Text(radix int) string {
	if i.unsigned {
		return strconv.FormatUint(i.bits, radix)
	}
	return strconv.FormatInt(int64(i.bits), radix)
}

func (i Int64) String() string { return i.Text(10) }
