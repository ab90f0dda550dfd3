// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Go regexp flags with a BSON option of the same letter.
const sharedRegexFlags = "ims"

// sortOptions returns options sorted with repeated letters removed.
func sortOptions(options string) string {
	b := []byte(options)
	sort.Slice(b, func(i, j int) bool { return b[i] < b[j] })
	out := make([]byte, 0, len(b))
	for i, c := range b {
		if i > 0 && c == b[i-1] {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

// regexpToBSON splits a leading flag group such as "(?im)" off re's source
// and returns it as BSON options. Groups with flags BSON cannot express stay
// part of the pattern.
func regexpToBSON(re *regexp.Regexp) (pattern, options string) {
	src := re.String()
	if !strings.HasPrefix(src, "(?") {
		return src, ""
	}
	end := strings.IndexByte(src, ')')
	if end < 0 {
		return src, ""
	}
	flags := src[2:end]
	if flags == "" || strings.Trim(flags, sharedRegexFlags) != "" {
		return src, ""
	}
	return src[end+1:], flags
}

// bsonToRegexp compiles a BSON regular expression. Options without a Go
// equivalent are dropped.
func bsonToRegexp(pattern, options string) (*regexp.Regexp, error) {
	var flags []byte
	for i := 0; i < len(options); i++ {
		if strings.IndexByte(sharedRegexFlags, options[i]) >= 0 && !strings.ContainsRune(string(flags), rune(options[i])) {
			flags = append(flags, options[i])
		}
	}
	src := pattern
	if len(flags) > 0 {
		src = "(?" + string(flags) + ")" + pattern
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidRegex, "%q: %v", pattern, err)
	}
	return re, nil
}
