// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsonoptions

const (
	defaultPromoteLongs   = true
	defaultPromoteValues  = true
	defaultPromoteBuffers = false
	defaultBSONRegExp     = false
	defaultRaw            = false
	defaultAllowSmaller   = false
	defaultValidateUTF8   = true
)

// ValidationOptions controls UTF-8 validation of decoded strings. UTF8
// applies to every key. UTF8Fields names the keys that get the setting
// stored in the map; every other key gets the opposite setting. The map must
// be non-empty and all of its values must agree. When both are set,
// UTF8Fields wins.
type ValidationOptions struct {
	UTF8       *bool
	UTF8Fields map[string]bool
}

// Validation creates a new *ValidationOptions
func Validation() *ValidationOptions {
	return &ValidationOptions{}
}

// SetUTF8 specifies if strings are checked for valid UTF-8 under every key.
func (v *ValidationOptions) SetUTF8(b bool) *ValidationOptions {
	v.UTF8 = &b
	return v
}

// SetUTF8Fields specifies per key UTF-8 validation.
func (v *ValidationOptions) SetUTF8Fields(fields map[string]bool) *ValidationOptions {
	v.UTF8Fields = fields
	return v
}

// DeserializeOptions represents all possible options for deserializing a document.
type DeserializeOptions struct {
	PromoteLongs                     *bool              // Specifies if int64 values that fit in 53 bits decode as int64 instead of primitive.Int64. Defaults to true.
	PromoteValues                    *bool              // Specifies if int32, double, symbol and int64 values decode as Go primitives. Defaults to true.
	PromoteBuffers                   *bool              // Specifies if binary values decode as []byte instead of primitive.Binary. Defaults to false.
	BSONRegExp                       *bool              // Specifies if regular expressions decode as primitive.Regex instead of *regexp.Regexp. Defaults to false.
	Raw                              *bool              // Specifies if embedded documents decode as undecoded bson.Raw. Defaults to false.
	AllowObjectSmallerThanBufferSize *bool              // Specifies if the buffer may extend past the end of the document. Defaults to false.
	Index                            *int               // Specifies the offset of the document within the buffer. Defaults to 0.
	Validation                       *ValidationOptions // Specifies UTF-8 validation. Defaults to validating every key.
}

// Deserialize creates a new *DeserializeOptions
func Deserialize() *DeserializeOptions {
	return &DeserializeOptions{}
}

// SetPromoteLongs specifies if int64 values that fit in 53 bits decode as int64 instead of primitive.Int64. Defaults to true.
func (d *DeserializeOptions) SetPromoteLongs(b bool) *DeserializeOptions {
	d.PromoteLongs = &b
	return d
}

// SetPromoteValues specifies if int32, double, symbol and int64 values decode as Go primitives. Defaults to true.
func (d *DeserializeOptions) SetPromoteValues(b bool) *DeserializeOptions {
	d.PromoteValues = &b
	return d
}

// SetPromoteBuffers specifies if binary values decode as []byte instead of primitive.Binary. Defaults to false.
func (d *DeserializeOptions) SetPromoteBuffers(b bool) *DeserializeOptions {
	d.PromoteBuffers = &b
	return d
}

// SetBSONRegExp specifies if regular expressions decode as primitive.Regex instead of *regexp.Regexp. Defaults to false.
func (d *DeserializeOptions) SetBSONRegExp(b bool) *DeserializeOptions {
	d.BSONRegExp = &b
	return d
}

// SetRaw specifies if embedded documents decode as undecoded bson.Raw. Defaults to false.
func (d *DeserializeOptions) SetRaw(b bool) *DeserializeOptions {
	d.Raw = &b
	return d
}

// SetAllowObjectSmallerThanBufferSize specifies if the buffer may extend past the end of the document. Defaults to false.
func (d *DeserializeOptions) SetAllowObjectSmallerThanBufferSize(b bool) *DeserializeOptions {
	d.AllowObjectSmallerThanBufferSize = &b
	return d
}

// SetIndex specifies the offset of the document within the buffer. Defaults to 0.
func (d *DeserializeOptions) SetIndex(i int) *DeserializeOptions {
	d.Index = &i
	return d
}

// SetValidation specifies UTF-8 validation. Defaults to validating every key.
func (d *DeserializeOptions) SetValidation(v *ValidationOptions) *DeserializeOptions {
	d.Validation = v
	return d
}

// MergeDeserializeOptions combines the given *DeserializeOptions into a single *DeserializeOptions in a last one wins fashion.
// Every field of the result is set, unset fields taking their defaults. Validation is replaced as a whole.
func MergeDeserializeOptions(opts ...*DeserializeOptions) *DeserializeOptions {
	promoteLongs, promoteValues, promoteBuffers := defaultPromoteLongs, defaultPromoteValues, defaultPromoteBuffers
	bsonRegExp, raw, allowSmaller, index := defaultBSONRegExp, defaultRaw, defaultAllowSmaller, defaultIndex
	utf8 := defaultValidateUTF8
	d := &DeserializeOptions{
		PromoteLongs:                     &promoteLongs,
		PromoteValues:                    &promoteValues,
		PromoteBuffers:                   &promoteBuffers,
		BSONRegExp:                       &bsonRegExp,
		Raw:                              &raw,
		AllowObjectSmallerThanBufferSize: &allowSmaller,
		Index:                            &index,
		Validation:                       &ValidationOptions{UTF8: &utf8},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if opt.PromoteLongs != nil {
			d.PromoteLongs = opt.PromoteLongs
		}
		if opt.PromoteValues != nil {
			d.PromoteValues = opt.PromoteValues
		}
		if opt.PromoteBuffers != nil {
			d.PromoteBuffers = opt.PromoteBuffers
		}
		if opt.BSONRegExp != nil {
			d.BSONRegExp = opt.BSONRegExp
		}
		if opt.Raw != nil {
			d.Raw = opt.Raw
		}
		if opt.AllowObjectSmallerThanBufferSize != nil {
			d.AllowObjectSmallerThanBufferSize = opt.AllowObjectSmallerThanBufferSize
		}
		if opt.Index != nil {
			d.Index = opt.Index
		}
		if opt.Validation != nil {
			d.Validation = opt.Validation
		}
	}

	return d
}
