// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package binaryutil

// ReadU32 reads a 4-byte little-endian uint32 from src returning the value,
// remaining bytes, and ok flag.
func ReadU32(src []byte) (uint32, []byte, bool) {
	if len(src) < 4 {
		return 0, src, false
	}

	_ = src[3] // bounds check hint to compiler

	value := uint32(src[0]) |
		uint32(src[1])<<8 |
		uint32(src[2])<<16 |
		uint32(src[3])<<24

	return value, src[4:], true
}

// ReadI32 reads a 4-byte little-endian int32 from src returning the value,
// remaining bytes, and ok flag.
func ReadI32(src []byte) (int32, []byte, bool) {
	u, rem, ok := ReadU32(src)
	return int32(u), rem, ok
}

// ReadU64 reads an 8-byte little-endian uint64 from src returning the value,
// remaining bytes, and ok flag.
func ReadU64(src []byte) (uint64, []byte, bool) {
	if len(src) < 8 {
		return 0, src, false
	}

	_ = src[7] // bounds check hint to compiler

	value := uint64(src[0]) |
		uint64(src[1])<<8 |
		uint64(src[2])<<16 |
		uint64(src[3])<<24 |
		uint64(src[4])<<32 |
		uint64(src[5])<<40 |
		uint64(src[6])<<48 |
		uint64(src[7])<<56

	return value, src[8:], true
}

// ReadI64 reads an 8-byte little-endian int64 from src returning the value,
// remaining bytes, and ok flag.
func ReadI64(src []byte) (int64, []byte, bool) {
	u, rem, ok := ReadU64(src)
	return int64(u), rem, ok // MSB carries the sign bit
}

// ReadU64BE reads an 8-byte big-endian uint64 from src returning the value,
// remaining bytes, and ok flag.
func ReadU64BE(src []byte) (uint64, []byte, bool) {
	if len(src) < 8 {
		return 0, src, false
	}

	_ = src[7]

	value := uint64(src[7]) |
		uint64(src[6])<<8 |
		uint64(src[5])<<16 |
		uint64(src[4])<<24 |
		uint64(src[3])<<32 |
		uint64(src[2])<<40 |
		uint64(src[1])<<48 |
		uint64(src[0])<<56

	return value, src[8:], true
}

// Append32 appends a uint32 to dst in little-endian byte order.
func Append32(dst []byte, x uint32) []byte {
	return append(dst,
		byte(x),
		byte(x>>8),
		byte(x>>16),
		byte(x>>24),
	)
}

// AppendI32 appends an int32 to dst in little-endian byte order.
func AppendI32(dst []byte, x int32) []byte {
	return Append32(dst, uint32(x))
}

// Append64 appends a uint64 to dst in little-endian byte order.
func Append64(dst []byte, x uint64) []byte {
	return append(dst,
		byte(x),
		byte(x>>8),
		byte(x>>16),
		byte(x>>24),
		byte(x>>32),
		byte(x>>40),
		byte(x>>48),
		byte(x>>56),
	)
}

// AppendI64 appends an int64 to dst in little-endian byte order.
func AppendI64(dst []byte, x int64) []byte {
	return Append64(dst, uint64(x))
}

// Append64BE appends a uint64 to dst in big-endian byte order.
func Append64BE(dst []byte, x uint64) []byte {
	return append(dst,
		byte(x>>56),
		byte(x>>48),
		byte(x>>40),
		byte(x>>32),
		byte(x>>24),
		byte(x>>16),
		byte(x>>8),
		byte(x),
	)
}

// PutI32 writes a little-endian int32 into dst starting at offset. Caller must
// ensure capacity.
func PutI32(dst []byte, offset int, value int32) {
	dst[offset] = byte(value)
	dst[offset+1] = byte(value >> 8)
	dst[offset+2] = byte(value >> 16)
	dst[offset+3] = byte(value >> 24)
}
