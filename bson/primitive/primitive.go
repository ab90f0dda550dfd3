// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package primitive contains types similar to Go primitives for BSON types that do not have direct
// Go primitive representations.
package primitive

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidRegexOptions is returned when a regular expression carries an
// option outside "ilmsux".
var ErrInvalidRegexOptions = errors.New("invalid regular expression option")

// E represents a BSON element for a D. It is usually used inside a D.
type E struct {
	Key   string
	Value interface{}
}

// D is an ordered representation of a BSON document. This type should be used when the order of the elements matters,
// such as MongoDB command documents. If the order of the elements does not matter, an M should be used instead.
//
// Example usage:
//
//	primitive.D{{"foo", "bar"}, {"hello", "world"}, {"pi", 3.14159}}
type D []E

// Map creates a map from the elements of the D. Later keys overwrite
// earlier ones.
func (d D) Map() M {
	m := make(M, len(d))
	for _, e := range d {
		m[e.Key] = e.Value
	}
	return m
}

// M is an unordered representation of a BSON document. This type should be used when the order of the elements does not
// matter. This type is handled as a regular map[string]interface{} when encoding and decoding. Elements will be
// serialized in sorted key order.
type M map[string]interface{}

// An A is an ordered representation of a BSON array.
//
// Example usage:
//
//	primitive.A{"bar", "world", 3.14159, primitive.D{{"qux", 12345}}}
type A []interface{}

// Binary represents a BSON binary value.
type Binary struct {
	Subtype byte
	Data    []byte
}

// Equal compares bp to bp2 and returns true if they are equal.
func (bp Binary) Equal(bp2 Binary) bool {
	return bp.Subtype == bp2.Subtype && bytes.Equal(bp.Data, bp2.Data)
}

// IsZero returns if bp is the empty Binary.
func (bp Binary) IsZero() bool {
	return bp.Subtype == 0 && len(bp.Data) == 0
}

// Undefined represents the BSON undefined value type.
type Undefined struct{}

// Null represents the BSON null value.
type Null struct{}

// MinKey represents the BSON minkey value.
type MinKey struct{}

// MaxKey represents the BSON maxkey value.
type MaxKey struct{}

// DateTime represents the BSON datetime value, in milliseconds since the
// Unix epoch.
type DateTime int64

// NewDateTimeFromTime creates a new DateTime from a Time.
func NewDateTimeFromTime(t time.Time) DateTime {
	return DateTime(t.Unix()*1e3 + int64(t.Nanosecond())/1e6)
}

// Time returns the date as a time type.
func (d DateTime) Time() time.Time {
	return time.Unix(int64(d)/1000, int64(d)%1000*1000000)
}

// Regex represents a BSON regex value. Options are kept sorted.
type Regex struct {
	Pattern string
	Options string
}

// NewRegex creates a Regex with its options sorted and deduplicated. Only
// the options "ilmsux" are accepted.
func NewRegex(pattern, options string) (Regex, error) {
	opts := []byte(options)
	sort.Slice(opts, func(i, j int) bool { return opts[i] < opts[j] })
	var out []byte
	for i, c := range opts {
		if !strings.ContainsRune("ilmsux", rune(c)) {
			return Regex{}, errors.Wrapf(ErrInvalidRegexOptions, "%q", c)
		}
		if i > 0 && opts[i-1] == c {
			continue
		}
		out = append(out, c)
	}
	return Regex{Pattern: pattern, Options: string(out)}, nil
}

func (rp Regex) String() string {
	return fmt.Sprintf(`{"pattern": "%s", "options": "%s"}`, rp.Pattern, rp.Options)
}

// Equal compares rp to rp2 and returns true if they are equal.
func (rp Regex) Equal(rp2 Regex) bool {
	return rp.Pattern == rp2.Pattern && rp.Options == rp2.Options
}

// IsZero returns if rp is the empty Regex.
func (rp Regex) IsZero() bool {
	return rp.Pattern == "" && rp.Options == ""
}

// DBRef is a reference to a document in another collection. It is written
// as an embedded document with the keys $ref, $id, an optional $db and then
// Fields.
type DBRef struct {
	Collection string
	ID         interface{}
	DB         string
	Fields     D
}

// JavaScript represents a BSON JavaScript code value.
type JavaScript string

// Symbol represents a BSON symbol value.
type Symbol string

// CodeWithScope represents a BSON JavaScript code with scope value. A nil
// Scope is written as plain JavaScript.
type CodeWithScope struct {
	Code  JavaScript
	Scope interface{}
}

func (cws CodeWithScope) String() string {
	return fmt.Sprintf(`{"code": "%s", "scope": %v}`, cws.Code, cws.Scope)
}

// Function is the source text of a function. It is written as JavaScript
// code only when function serialization is enabled and skipped otherwise.
type Function struct {
	Source string
}

// Timestamp represents a BSON timestamp value.
type Timestamp struct {
	T uint32
	I uint32
}

// Equal compares tp to tp2 and returns true if they are equal.
func (tp Timestamp) Equal(tp2 Timestamp) bool {
	return tp.T == tp2.T && tp.I == tp2.I
}

// IsZero returns if tp is the zero Timestamp.
func (tp Timestamp) IsZero() bool {
	return tp.T == 0 && tp.I == 0
}

// CompareTimestamp returns an integer comparing two Timestamps, where T is compared first, followed by I.
// Returns 0 if tp = tp2, 1 if tp > tp2, -1 if tp < tp2.
func CompareTimestamp(tp, tp2 Timestamp) int {
	if tp.Equal(tp2) {
		return 0
	}

	if tp.T > tp2.T {
		return 1
	}
	if tp.T < tp2.T {
		return -1
	}
	// Compare I values because T values are equal
	if tp.I > tp2.I {
		return 1
	}
	return -1
}

// Int32 is a value that is always written as a BSON int32, bypassing the
// numeric width selection applied to plain Go numbers.
type Int32 int32

// Double is a value that is always written as a BSON double, even when it
// holds an integral value.
type Double float64
