// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bsonoptions defines the optional configurations for serializing and
// deserializing BSON documents.
package bsonoptions

const (
	defaultCheckKeys          = false
	defaultSerializeFunctions = false
	defaultIgnoreUndefined    = true
	defaultIndex              = 0
)

// SerializeOptions represents all possible options for serializing a document.
type SerializeOptions struct {
	CheckKeys          *bool // Specifies if keys starting with '$' or containing '.' are rejected. Defaults to false.
	SerializeFunctions *bool // Specifies if functions are written as JavaScript code instead of being skipped. Defaults to false.
	IgnoreUndefined    *bool // Specifies if undefined document fields are omitted instead of written as null. Defaults to true.
	Index              *int  // Specifies the offset at which SerializeWithBufferAndIndex starts writing. Defaults to 0.
}

// Serialize creates a new *SerializeOptions
func Serialize() *SerializeOptions {
	return &SerializeOptions{}
}

// SetCheckKeys specifies if keys starting with '$' or containing '.' are rejected. Defaults to false.
func (s *SerializeOptions) SetCheckKeys(b bool) *SerializeOptions {
	s.CheckKeys = &b
	return s
}

// SetSerializeFunctions specifies if functions are written as JavaScript code instead of being skipped. Defaults to false.
func (s *SerializeOptions) SetSerializeFunctions(b bool) *SerializeOptions {
	s.SerializeFunctions = &b
	return s
}

// SetIgnoreUndefined specifies if undefined document fields are omitted instead of written as null. Defaults to true.
func (s *SerializeOptions) SetIgnoreUndefined(b bool) *SerializeOptions {
	s.IgnoreUndefined = &b
	return s
}

// SetIndex specifies the offset at which SerializeWithBufferAndIndex starts writing. Defaults to 0.
func (s *SerializeOptions) SetIndex(i int) *SerializeOptions {
	s.Index = &i
	return s
}

// MergeSerializeOptions combines the given *SerializeOptions into a single *SerializeOptions in a last one wins fashion.
// Every field of the result is set, unset fields taking their defaults.
func MergeSerializeOptions(opts ...*SerializeOptions) *SerializeOptions {
	checkKeys, serializeFunctions, ignoreUndefined, index := defaultCheckKeys, defaultSerializeFunctions, defaultIgnoreUndefined, defaultIndex
	s := &SerializeOptions{
		CheckKeys:          &checkKeys,
		SerializeFunctions: &serializeFunctions,
		IgnoreUndefined:    &ignoreUndefined,
		Index:              &index,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if opt.CheckKeys != nil {
			s.CheckKeys = opt.CheckKeys
		}
		if opt.SerializeFunctions != nil {
			s.SerializeFunctions = opt.SerializeFunctions
		}
		if opt.IgnoreUndefined != nil {
			s.IgnoreUndefined = opt.IgnoreUndefined
		}
		if opt.Index != nil {
			s.Index = opt.Index
		}
	}

	return s
}
