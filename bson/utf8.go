// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/lucsoft/web-bson-sub000/bson/bsonoptions"
	"github.com/lucsoft/web-bson-sub000/x/bsonx/bsoncore"
)

// utf8Policy decides per key whether strings must be valid UTF-8. In global
// mode every key gets validate. Otherwise keys in fields get validate and
// every other key gets the opposite.
type utf8Policy struct {
	global   bool
	validate bool
	fields   map[string]bool
}

func newUTF8Policy(opts *bsonoptions.ValidationOptions) (utf8Policy, error) {
	if opts == nil {
		return utf8Policy{global: true, validate: true}, nil
	}
	if opts.UTF8Fields == nil {
		validate := true
		if opts.UTF8 != nil {
			validate = *opts.UTF8
		}
		return utf8Policy{global: true, validate: validate}, nil
	}
	if len(opts.UTF8Fields) == 0 {
		return utf8Policy{}, errors.Wrap(ErrInvalidValidationOptions, "UTF-8 validation setting cannot be empty")
	}

	first := true
	var validate bool
	for _, v := range opts.UTF8Fields {
		if first {
			validate, first = v, false
			continue
		}
		if v != validate {
			return utf8Policy{}, errors.Wrap(ErrInvalidValidationOptions, "UTF-8 validation setting must be all true or all false")
		}
	}
	return utf8Policy{validate: validate, fields: opts.UTF8Fields}, nil
}

func (p utf8Policy) forKey(key string) bool {
	if p.global {
		return p.validate
	}
	if _, ok := p.fields[key]; ok {
		return p.validate
	}
	return !p.validate
}

// child returns the policy for the contents of a document stored under key.
func (p utf8Policy) child(key string) utf8Policy {
	return utf8Policy{global: true, validate: p.forKey(key)}
}

// decodeText converts b to a string. With validate set, bytes the lenient
// validator rejects are an error. Whatever passes is returned with ill
// formed sequences replaced by U+FFFD.
func decodeText(b []byte, validate bool, key string) (string, error) {
	if validate && !bsoncore.ValidateUTF8(b) {
		return "", errors.Wrapf(ErrInvalidUTF8, "in field %q", key)
	}
	if utf8.Valid(b) {
		return string(b), nil
	}
	s, _, err := transform.String(runes.ReplaceIllFormed(), string(b))
	return s, err
}
