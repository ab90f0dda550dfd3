// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bsoncore contains functions that can be used to encode and decode BSON
// elements and values to or from a slice of bytes. These functions are aimed at
// allowing low level manipulation of BSON and can be used to build a higher
// level BSON library.
//
// The Read* functions within this package return the values of the element and
// a boolean indicating if the values are valid. A boolean was used instead of
// an error because any error that would be returned would be the same: not
// enough bytes. This library attempts to do no validation, it will only return
// false if there are not enough bytes for an item to be read. It is the
// consumer's responsibility to validate those bytes.
//
// The Append* functions within this package will append the type value to the
// given dst slice. If the slice has enough capacity, it will not grow the
// slice. The Append*Element functions within this package operate in the same
// way, but additionally append the BSON type and the key before the value.
package bsoncore

import (
	"bytes"
	"math"

	"github.com/lucsoft/web-bson-sub000/bson/bsontype"
	"github.com/lucsoft/web-bson-sub000/internal/binaryutil"
)

// Fixed payload widths.
const (
	ObjectIDSize   = 12
	Decimal128Size = 16
	EmptyDocument  = 5 // int32 length + 0x00 terminator
)

// AppendType will append t to dst and return the extended buffer.
func AppendType(dst []byte, t bsontype.Type) []byte { return append(dst, byte(t)) }

// AppendKey will append key to dst and return the extended buffer.
func AppendKey(dst []byte, key string) []byte { return append(append(dst, key...), 0x00) }

// AppendHeader will append Type t and key to dst and return the extended
// buffer.
func AppendHeader(dst []byte, t bsontype.Type, key string) []byte {
	return AppendKey(AppendType(dst, t), key)
}

// HeaderSize returns the number of bytes AppendHeader writes for key.
func HeaderSize(key string) int { return 1 + len(key) + 1 }

// ReadKey will read a NUL-terminated key from src. The 0x00 byte will not be
// present in the returned bytes. If there is no terminator, false is returned.
func ReadKey(src []byte) ([]byte, []byte, bool) { return readcstring(src) }

// ReserveLength reserves the space required for length and returns the index where to write the length
// and the []byte with reserved space.
func ReserveLength(dst []byte) (int32, []byte) {
	index := len(dst)
	return int32(index), append(dst, 0x00, 0x00, 0x00, 0x00)
}

// UpdateLength updates the length at index with length and returns the []byte.
func UpdateLength(dst []byte, index, length int32) []byte {
	binaryutil.PutI32(dst, int(index), length)
	return dst
}

// AppendDocumentEnd writes the null byte for a document and updates the length of the document.
// The index should be the beginning of the document's length bytes.
func AppendDocumentEnd(dst []byte, index int32) []byte {
	dst = append(dst, 0x00)
	return UpdateLength(dst, index, int32(len(dst[index:])))
}

// AppendDouble will append f to dst and return the extended buffer.
func AppendDouble(dst []byte, f float64) []byte {
	return binaryutil.Append64(dst, math.Float64bits(f))
}

// AppendDoubleElement will append a BSON double element using key and f to dst
// and return the extended buffer.
func AppendDoubleElement(dst []byte, key string, f float64) []byte {
	return AppendDouble(AppendHeader(dst, bsontype.Double, key), f)
}

// ReadDouble will read a float64 from src. If there are not enough bytes it
// will return false.
func ReadDouble(src []byte) (float64, []byte, bool) {
	bits, rem, ok := binaryutil.ReadU64(src)
	if !ok {
		return 0, src, false
	}
	return math.Float64frombits(bits), rem, true
}

// AppendString will append s to dst and return the extended buffer. The
// length prefix counts the trailing 0x00.
func AppendString(dst []byte, s string) []byte {
	dst = binaryutil.AppendI32(dst, int32(len(s)+1))
	dst = append(dst, s...)
	return append(dst, 0x00)
}

// StringSize returns the number of bytes AppendString writes for s.
func StringSize(s string) int { return 4 + len(s) + 1 }

// AppendStringElement will append a BSON string element using key and val to dst
// and return the extended buffer.
func AppendStringElement(dst []byte, key, val string) []byte {
	return AppendString(AppendHeader(dst, bsontype.String, key), val)
}

// ReadString will read a length-prefixed string from src. The returned bytes
// exclude the trailing 0x00. It returns false if there are not enough bytes,
// the length is not positive or the terminator is missing.
func ReadString(src []byte) ([]byte, []byte, bool) {
	l, rem, ok := binaryutil.ReadI32(src)
	if !ok || l <= 0 || int64(len(rem)) < int64(l) || rem[l-1] != 0x00 {
		return nil, src, false
	}
	return rem[:l-1], rem[l:], true
}

// AppendDocumentElement will append a BSON embedded document element using key
// and doc to dst and return the extended buffer.
func AppendDocumentElement(dst []byte, key string, doc []byte) []byte {
	return append(AppendHeader(dst, bsontype.EmbeddedDocument, key), doc...)
}

// ReadDocument will read a length-prefixed document from src. If there are
// not enough bytes it will return false.
func ReadDocument(src []byte) ([]byte, []byte, bool) {
	l, _, ok := binaryutil.ReadI32(src)
	if !ok || l < EmptyDocument || int64(len(src)) < int64(l) {
		return nil, src, false
	}
	return src[:l], src[l:], true
}

// AppendBinary will append subtype and b to dst and return the extended buffer.
// Subtype 0x02 carries an extra inner length.
func AppendBinary(dst []byte, subtype byte, b []byte) []byte {
	if subtype == bsontype.BinaryBinaryOld {
		dst = binaryutil.AppendI32(dst, int32(len(b)+4))
		dst = append(dst, subtype)
		dst = binaryutil.AppendI32(dst, int32(len(b)))
		return append(dst, b...)
	}
	dst = append(binaryutil.AppendI32(dst, int32(len(b))), subtype)
	return append(dst, b...)
}

// BinarySize returns the number of bytes AppendBinary writes.
func BinarySize(subtype byte, n int) int {
	if subtype == bsontype.BinaryBinaryOld {
		return 4 + 1 + 4 + n
	}
	return 4 + 1 + n
}

// AppendBinaryElement will append a BSON binary element using key, subtype, and
// b to dst and return the extended buffer.
func AppendBinaryElement(dst []byte, key string, subtype byte, b []byte) []byte {
	return AppendBinary(AppendHeader(dst, bsontype.Binary, key), subtype, b)
}

// AppendObjectID will append oid to dst and return the extended buffer.
func AppendObjectID(dst []byte, oid [ObjectIDSize]byte) []byte { return append(dst, oid[:]...) }

// AppendObjectIDElement will append a BSON ObjectID element using key and oid to dst
// and return the extended buffer.
func AppendObjectIDElement(dst []byte, key string, oid [ObjectIDSize]byte) []byte {
	return AppendObjectID(AppendHeader(dst, bsontype.ObjectID, key), oid)
}

// ReadObjectID will read an ObjectID from src. If there are not enough bytes it
// will return false.
func ReadObjectID(src []byte) ([ObjectIDSize]byte, []byte, bool) {
	var oid [ObjectIDSize]byte
	if len(src) < ObjectIDSize {
		return oid, src, false
	}
	copy(oid[:], src[:ObjectIDSize])
	return oid, src[ObjectIDSize:], true
}

// AppendBoolean will append b to dst and return the extended buffer.
func AppendBoolean(dst []byte, b bool) []byte {
	if b {
		return append(dst, 0x01)
	}
	return append(dst, 0x00)
}

// AppendBooleanElement will append a BSON boolean element using key and b to dst
// and return the extended buffer.
func AppendBooleanElement(dst []byte, key string, b bool) []byte {
	return AppendBoolean(AppendHeader(dst, bsontype.Boolean, key), b)
}

// AppendDateTime will append dt to dst and return the extended buffer.
func AppendDateTime(dst []byte, dt int64) []byte { return binaryutil.AppendI64(dst, dt) }

// AppendDateTimeElement will append a BSON datetime element using key and dt to dst
// and return the extended buffer.
func AppendDateTimeElement(dst []byte, key string, dt int64) []byte {
	return AppendDateTime(AppendHeader(dst, bsontype.DateTime, key), dt)
}

// AppendNullElement will append a BSON null element using key to dst
// and return the extended buffer.
func AppendNullElement(dst []byte, key string) []byte { return AppendHeader(dst, bsontype.Null, key) }

// AppendRegex will append pattern and options to dst and return the extended buffer.
func AppendRegex(dst []byte, pattern, options string) []byte {
	return AppendKey(AppendKey(dst, pattern), options)
}

// RegexSize returns the number of bytes AppendRegex writes.
func RegexSize(pattern, options string) int { return len(pattern) + 1 + len(options) + 1 }

// AppendRegexElement will append a BSON regex element using key, pattern, and
// options to dst and return the extended buffer.
func AppendRegexElement(dst []byte, key, pattern, options string) []byte {
	return AppendRegex(AppendHeader(dst, bsontype.Regex, key), pattern, options)
}

// ReadRegex will read a pattern and options from src. If there are not enough bytes it
// will return false.
func ReadRegex(src []byte) (pattern, options []byte, rem []byte, ok bool) {
	pattern, rem, ok = readcstring(src)
	if !ok {
		return nil, nil, src, false
	}
	options, rem, ok = readcstring(rem)
	if !ok {
		return nil, nil, src, false
	}
	return pattern, options, rem, true
}

// AppendDBPointer will append ns and oid to dst and return the extended buffer.
func AppendDBPointer(dst []byte, ns string, oid [ObjectIDSize]byte) []byte {
	return AppendObjectID(AppendString(dst, ns), oid)
}

// AppendJavaScript will append js to dst and return the extended buffer.
func AppendJavaScript(dst []byte, js string) []byte { return AppendString(dst, js) }

// AppendJavaScriptElement will append a BSON JavaScript element using key and
// js to dst and return the extended buffer.
func AppendJavaScriptElement(dst []byte, key, js string) []byte {
	return AppendJavaScript(AppendHeader(dst, bsontype.JavaScript, key), js)
}

// AppendSymbol will append symbol to dst and return the extended buffer.
func AppendSymbol(dst []byte, symbol string) []byte { return AppendString(dst, symbol) }

// AppendSymbolElement will append a BSON symbol element using key and symbol to dst
// and return the extended buffer.
func AppendSymbolElement(dst []byte, key, symbol string) []byte {
	return AppendSymbol(AppendHeader(dst, bsontype.Symbol, key), symbol)
}

// AppendCodeWithScope will append code and scope to dst and return the extended buffer.
func AppendCodeWithScope(dst []byte, code string, scope []byte) []byte {
	length := int32(4 + StringSize(code) + len(scope)) // length of cws, length of code, code, 0x00, scope
	dst = binaryutil.AppendI32(dst, length)
	return append(AppendString(dst, code), scope...)
}

// AppendInt32 will append i32 to dst and return the extended buffer.
func AppendInt32(dst []byte, i32 int32) []byte { return binaryutil.AppendI32(dst, i32) }

// AppendInt32Element will append a BSON int32 element using key and i32 to dst
// and return the extended buffer.
func AppendInt32Element(dst []byte, key string, i32 int32) []byte {
	return AppendInt32(AppendHeader(dst, bsontype.Int32, key), i32)
}

// ReadInt32 will read an int32 from src. If there are not enough bytes it
// will return false.
func ReadInt32(src []byte) (int32, []byte, bool) { return binaryutil.ReadI32(src) }

// AppendTimestamp will append t and i to dst and return the extended buffer.
func AppendTimestamp(dst []byte, t, i uint32) []byte {
	return binaryutil.Append32(binaryutil.Append32(dst, i), t) // i is the lower 4 bytes, t is the higher 4 bytes
}

// AppendTimestampElement will append a BSON timestamp element using key, t, and
// i to dst and return the extended buffer.
func AppendTimestampElement(dst []byte, key string, t, i uint32) []byte {
	return AppendTimestamp(AppendHeader(dst, bsontype.Timestamp, key), t, i)
}

// ReadTimestamp will read t and i from src. If there are not enough bytes it
// will return false.
func ReadTimestamp(src []byte) (t, i uint32, rem []byte, ok bool) {
	i, rem, ok = binaryutil.ReadU32(src)
	if !ok {
		return 0, 0, src, false
	}
	t, rem, ok = binaryutil.ReadU32(rem)
	if !ok {
		return 0, 0, src, false
	}
	return t, i, rem, true
}

// AppendInt64 will append i64 to dst and return the extended buffer.
func AppendInt64(dst []byte, i64 int64) []byte { return binaryutil.AppendI64(dst, i64) }

// AppendInt64Element will append a BSON int64 element using key and i64 to dst
// and return the extended buffer.
func AppendInt64Element(dst []byte, key string, i64 int64) []byte {
	return AppendInt64(AppendHeader(dst, bsontype.Int64, key), i64)
}

// ReadInt64 will read an int64 from src. If there are not enough bytes it
// will return false.
func ReadInt64(src []byte) (int64, []byte, bool) { return binaryutil.ReadI64(src) }

// AppendDecimal128 will append the high and low words of a decimal128 to dst,
// low word first, and return the extended buffer.
func AppendDecimal128(dst []byte, high, low uint64) []byte {
	return binaryutil.Append64(binaryutil.Append64(dst, low), high)
}

// AppendDecimal128Element will append a BSON decimal128 element using key and
// the high and low words to dst and return the extended buffer.
func AppendDecimal128Element(dst []byte, key string, high, low uint64) []byte {
	return AppendDecimal128(AppendHeader(dst, bsontype.Decimal128, key), high, low)
}

// ReadDecimal128 will read the high and low words of a decimal128 from src.
// If there are not enough bytes it will return false.
func ReadDecimal128(src []byte) (high, low uint64, rem []byte, ok bool) {
	low, rem, ok = binaryutil.ReadU64(src)
	if !ok {
		return 0, 0, src, false
	}
	high, rem, ok = binaryutil.ReadU64(rem)
	if !ok {
		return 0, 0, src, false
	}
	return high, low, rem, true
}

// AppendMaxKeyElement will append a BSON max key element using key to dst
// and return the extended buffer.
func AppendMaxKeyElement(dst []byte, key string) []byte {
	return AppendHeader(dst, bsontype.MaxKey, key)
}

// AppendMinKeyElement will append a BSON min key element using key to dst
// and return the extended buffer.
func AppendMinKeyElement(dst []byte, key string) []byte {
	return AppendHeader(dst, bsontype.MinKey, key)
}

func readcstring(src []byte) ([]byte, []byte, bool) {
	idx := bytes.IndexByte(src, 0x00)
	if idx < 0 {
		return nil, src, false
	}
	return src[:idx], src[idx+1:], true
}
