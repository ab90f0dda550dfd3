// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

// Lead byte masks and the patterns they must match.
const (
	firstBitMask   = 0x80
	firstTwoMask   = 0xE0
	twoBitChar     = 0xC0
	firstThreeMask = 0xF0
	threeBitChar   = 0xE0
	firstFourMask  = 0xF8
	fourBitChar    = 0xF0
	contMask       = 0xC0
	contChar       = 0x80
)

// ValidateUTF8 reports whether b is structurally valid UTF-8.
//
// Only byte patterns are checked: a lead byte must announce between zero and
// three continuation bytes and exactly that many must follow. Overlong
// encodings and surrogate code points are accepted. Callers that need strict
// decoding substitute U+FFFD separately.
func ValidateUTF8(b []byte) bool {
	return ValidateUTF8Range(b, 0, len(b))
}

// ValidateUTF8Range validates b[start:end]. An out of range window is
// reported as invalid.
func ValidateUTF8Range(b []byte, start, end int) bool {
	if start < 0 || end > len(b) || start > end {
		return false
	}
	continuation := 0
	for _, c := range b[start:end] {
		if continuation > 0 {
			if c&contMask != contChar {
				return false
			}
			continuation--
			continue
		}
		switch {
		case c&firstBitMask == 0:
		case c&firstTwoMask == twoBitChar:
			continuation = 1
		case c&firstThreeMask == threeBitChar:
			continuation = 2
		case c&firstFourMask == fourBitChar:
			continuation = 3
		default:
			return false
		}
	}
	return continuation == 0
}
