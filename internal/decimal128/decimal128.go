// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package decimal128 converts between decimal strings and the two 64-bit
// words of an IEEE 754-2008 decimal128 value in BID encoding.
package decimal128

import (
	"math/bits"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// These constants are the maximum and minimum values for the exponent field in a decimal128 value.
const (
	MaxDecimal128Exp = 6111
	MinDecimal128Exp = -6176

	// MaxDigits is the number of significant decimal digits a decimal128 holds.
	MaxDigits = 34

	// MaxStringLength is the longest input Parse accepts.
	MaxStringLength = 7000

	exponentBias = 6176
	exponentMask = 1<<14 - 1
	signBit      = 1 << 63
)

// Canonical high words of the special values. Their low words are zero.
const (
	NaNHigh         uint64 = 0x7C00000000000000
	InfHigh         uint64 = 0x7800000000000000
	NegativeInfHigh uint64 = 0xF800000000000000
)

const (
	combinationInfinity = 0x1E
	combinationNaN      = 0x1F
)

var (
	// ErrInvalidString is returned when a string is not a decimal number.
	ErrInvalidString = errors.New("decimal128: invalid string")

	// ErrOverflow is returned when a value cannot be represented without
	// losing a non-zero digit.
	ErrOverflow = errors.New("decimal128: value out of range")
)

var decimalPattern = regexp.MustCompile(`^(\d*)(?:\.(\d*))?(?:[eE]([+-]?\d+))?$`)

// significandLimit is 10^34, one past the largest canonical significand.
var significandLimit = func() [2]uint64 {
	var h, l uint64 = 0, 1
	for i := 0; i < MaxDigits; i++ {
		h, l = mul10add(h, l, 0)
	}
	return [2]uint64{h, l}
}()

func divmod(h, l uint64, div uint32) (qh, ql uint64, rem uint32) {
	div64 := uint64(div)
	a := h >> 32
	aq := a / div64
	ar := a % div64
	b := ar<<32 + h&(1<<32-1)
	bq := b / div64
	br := b % div64
	c := br<<32 + l>>32
	cq := c / div64
	cr := c % div64
	d := cr<<32 + l&(1<<32-1)
	dq := d / div64
	dr := d % div64
	return (aq<<32 | bq), (cq<<32 | dq), uint32(dr)
}

func mul10add(h, l, digit uint64) (uint64, uint64) {
	hi, lo := bits.Mul64(l, 10)
	lo, carry := bits.Add64(lo, digit, 0)
	return h*10 + hi + carry, lo
}

// String returns the canonical string form of the decimal value: fixed
// point when the adjusted exponent lies in [-6, 33] and the exponent is not
// positive, scientific notation otherwise.
func String(h, l uint64) string {
	var sb strings.Builder
	if h&signBit != 0 {
		sb.WriteByte('-')
	}

	switch h >> 58 & 0x1F {
	case combinationInfinity:
		sb.WriteString("Infinity")
		return sb.String()
	case combinationNaN:
		return "NaN"
	}

	high, low, exp := unpack(h, l)
	digits := significandDigits(high, low)
	sciExp := len(digits) - 1 + exp

	if sciExp >= MaxDigits || sciExp <= -7 || exp > 0 {
		sb.WriteByte(digits[0])
		if len(digits) > 1 {
			sb.WriteByte('.')
			sb.WriteString(digits[1:])
		}
		sb.WriteByte('E')
		if sciExp > 0 {
			sb.WriteByte('+')
		}
		sb.WriteString(strconv.Itoa(sciExp))
		return sb.String()
	}

	if exp == 0 {
		sb.WriteString(digits)
		return sb.String()
	}
	radix := len(digits) + exp
	if radix > 0 {
		sb.WriteString(digits[:radix])
		sb.WriteByte('.')
		sb.WriteString(digits[radix:])
		return sb.String()
	}
	sb.WriteString("0.")
	sb.WriteString(strings.Repeat("0", -radix))
	sb.WriteString(digits)
	return sb.String()
}

// IsZero reports whether h and l encode a finite zero of either sign.
// Non-canonical significands count as zero.
func IsZero(h, l uint64) bool {
	if c := h >> 58 & 0x1F; c == combinationInfinity || c == combinationNaN {
		return false
	}
	high, low, _ := unpack(h, l)
	return high == 0 && low == 0
}

// unpack splits a finite decimal128 into its significand and unbiased
// exponent.
func unpack(h, l uint64) (high, low uint64, exp int) {
	if h>>61&3 == 3 {
		// Bits: 1*sign 2*ignored 14*exponent 111*significand.
		// The implicit 0b100 prefix puts every such significand above
		// 10^34-1, so the value reads as zero.
		return 0, 0, int(h>>47&exponentMask) - exponentBias
	}
	// Bits: 1*sign 14*exponent 113*significand
	exp = int(h>>49&exponentMask) - exponentBias
	high, low = h&(1<<49-1), l
	if high > significandLimit[0] || high == significandLimit[0] && low >= significandLimit[1] {
		return 0, 0, exp
	}
	return high, low, exp
}

// significandDigits renders a significand below 10^34 in base 10 without
// leading zeros. Zero renders as "0".
func significandDigits(high, low uint64) string {
	if high == 0 && low == 0 {
		return "0"
	}
	var repr [45]byte // five groups of nine digits
	i := len(repr)
	var rem uint32
	for high != 0 || low != 0 {
		high, low, rem = divmod(high, low, 1e9)
		for d := 0; d < 9; d++ {
			i--
			repr[i] = '0' + byte(rem%10)
			rem /= 10
		}
	}
	for repr[i] == '0' {
		i++
	}
	return string(repr[i:])
}

// Parse converts s into the high and low words of a decimal128.
//
// Up to 34 significant digits are kept. Further digits round the 34th
// half-to-even. The exponent is brought into [-6176, 6111] by padding or
// trimming zeros; when that would drop a non-zero digit ErrOverflow is
// returned. Zero always fits, at the nearest in-range exponent.
func Parse(s string) (h, l uint64, err error) {
	if len(s) >= MaxStringLength {
		return 0, 0, errors.Wrapf(ErrInvalidString, "input of %d bytes is too long", len(s))
	}

	orig := s
	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	switch strings.ToLower(s) {
	case "nan":
		return NaNHigh, 0, nil
	case "inf", "infinity":
		if negative {
			return NegativeInfHigh, 0, nil
		}
		return InfHigh, 0, nil
	}

	m := decimalPattern.FindStringSubmatch(s)
	if m == nil || m[1] == "" && m[2] == "" {
		return 0, 0, errors.Wrapf(ErrInvalidString, "%q", orig)
	}
	intPart, fracPart, expPart := m[1], m[2], m[3]

	exp := 0
	if expPart != "" {
		// A range error leaves e saturated, which is all the
		// normalization below needs.
		e, _ := strconv.ParseInt(expPart, 10, 32)
		exp = int(e)
	}
	exp -= len(fracPart)

	digits := strings.TrimLeft(intPart+fracPart, "0")
	if digits == "" {
		switch {
		case exp > MaxDecimal128Exp:
			exp = MaxDecimal128Exp
		case exp < MinDecimal128Exp:
			exp = MinDecimal128Exp
		}
		h, l = pack(negative, exp, 0, 0)
		return h, l, nil
	}

	n := len(digits)
	precisionDrop := max(0, n-MaxDigits)
	totalDrop := max(precisionDrop, MinDecimal128Exp-exp)
	if totalDrop > 0 {
		if totalDrop >= n {
			return 0, 0, errors.Wrapf(ErrOverflow, "%q underflows", orig)
		}
		kept, tail := digits[:n-totalDrop], digits[n-totalDrop:]
		if totalDrop > precisionDrop {
			if strings.Trim(tail, "0") != "" {
				return 0, 0, errors.Wrapf(ErrOverflow, "%q underflows", orig)
			}
		} else if roundsUp(kept, tail) {
			kept = incrementDigits(kept)
		}
		exp += totalDrop
		if len(kept) > MaxDigits {
			// the carry produced 10^34; its last digit is a zero
			kept = kept[:MaxDigits]
			exp++
		}
		digits = kept
	}

	if exp > MaxDecimal128Exp {
		pad := exp - MaxDecimal128Exp
		if len(digits)+pad > MaxDigits {
			return 0, 0, errors.Wrapf(ErrOverflow, "%q overflows", orig)
		}
		digits += strings.Repeat("0", pad)
		exp = MaxDecimal128Exp
	}

	var high, low uint64
	for i := 0; i < len(digits); i++ {
		high, low = mul10add(high, low, uint64(digits[i]-'0'))
	}
	h, l = pack(negative, exp, high, low)
	return h, l, nil
}

func pack(negative bool, exp int, high, low uint64) (uint64, uint64) {
	h := uint64(exp+exponentBias)&exponentMask<<49 | high
	if negative {
		h |= signBit
	}
	return h, low
}

// roundsUp reports whether dropping tail from kept rounds half-to-even
// upwards.
func roundsUp(kept, tail string) bool {
	switch {
	case tail[0] > '5':
		return true
	case tail[0] < '5':
		return false
	case strings.Trim(tail[1:], "0") != "":
		return true
	}
	return (kept[len(kept)-1]-'0')%2 == 1
}

func incrementDigits(s string) string {
	b := []byte(s)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != '9' {
			b[i]++
			return string(b)
		}
		b[i] = '0'
	}
	return "1" + string(b)
}
