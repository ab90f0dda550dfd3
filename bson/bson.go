// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/lucsoft/web-bson-sub000/bson/bsonoptions"
	"github.com/lucsoft/web-bson-sub000/bson/primitive"
)

// D is an ordered representation of a BSON document. This type should be used when the order of the elements matters,
// such as MongoDB command documents. If the order of the elements does not matter, an M should be used instead.
//
// Example usage:
//
//	bson.D{{"foo", "bar"}, {"hello", "world"}, {"pi", 3.14159}}
type D = primitive.D

// E represents a BSON element for a D. It is usually used inside a D.
type E = primitive.E

// M is an unordered representation of a BSON document. This type should be used when the order of the elements does not
// matter. It is written in sorted key order.
//
// Example usage:
//
//	bson.M{"foo": "bar", "hello": "world", "pi": 3.14159}
type M = primitive.M

// An A is an ordered representation of a BSON array.
//
// Example usage:
//
//	bson.A{"bar", "world", 3.14159, bson.D{{"qux", 12345}}}
type A = primitive.A

// Raw is an undecoded BSON document. Deserialize returns embedded documents
// as Raw when the Raw option is set; they share memory with the input.
type Raw []byte

// Validate checks that r is one well formed document. Strings are not
// checked for UTF-8 and regular expressions are not compiled.
func (r Raw) Validate() error {
	d := &decoder{bsonRegExp: true, anyRegexOptions: true, utf8: utf8Policy{global: true}}
	_, _, err := d.decodeTop(r, 0, false)
	return err
}

// maxPooledBuffer is the largest scratch buffer returned to the pool.
const maxPooledBuffer = 16 << 20

var bufPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 1024)
		return &b
	},
}

func getBuffer() *[]byte { return bufPool.Get().(*[]byte) }

func putBuffer(b *[]byte) {
	if cap(*b) > maxPooledBuffer {
		return
	}
	*b = (*b)[:0]
	bufPool.Put(b)
}

// Serialize returns the BSON encoding of doc.
func Serialize(doc interface{}, opts ...*bsonoptions.SerializeOptions) ([]byte, error) {
	scratch := getBuffer()
	defer putBuffer(scratch)

	enc := newEncoder((*scratch)[:0], false, bsonoptions.MergeSerializeOptions(opts...))
	if err := enc.encodeTop(doc); err != nil {
		return nil, err
	}
	*scratch = enc.dst

	out := make([]byte, len(enc.dst))
	copy(out, enc.dst)
	return out, nil
}

// SerializeWithBufferAndIndex writes the BSON encoding of doc into buf
// starting at the Index option. It returns the offset one past the last byte
// written. If buf cannot hold the document, buf is left untouched and an
// ErrTooSmall is returned.
func SerializeWithBufferAndIndex(doc interface{}, buf []byte, opts ...*bsonoptions.SerializeOptions) (int, error) {
	so := bsonoptions.MergeSerializeOptions(opts...)
	index := *so.Index
	if index < 0 || index > len(buf) {
		return 0, errors.Wrapf(ErrInvalidLength, "index %d is outside a buffer of %d bytes", index, len(buf))
	}

	scratch := getBuffer()
	defer putBuffer(scratch)

	enc := newEncoder((*scratch)[:0], false, so)
	if err := enc.encodeTop(doc); err != nil {
		return 0, err
	}
	*scratch = enc.dst

	if len(enc.dst) > len(buf)-index {
		return 0, NewErrTooSmall()
	}
	return index + copy(buf[index:], enc.dst), nil
}

// CalculateObjectSize returns the number of bytes Serialize would write for
// doc. It fails exactly when Serialize would.
func CalculateObjectSize(doc interface{}, opts ...*bsonoptions.SerializeOptions) (int, error) {
	enc := newEncoder(nil, true, bsonoptions.MergeSerializeOptions(opts...))
	if err := enc.encodeTop(doc); err != nil {
		return 0, err
	}
	return enc.n, nil
}

// Deserialize decodes the document in b starting at the Index option.
func Deserialize(b []byte, opts ...*bsonoptions.DeserializeOptions) (D, error) {
	do := bsonoptions.MergeDeserializeOptions(opts...)
	dec, err := newDecoder(do)
	if err != nil {
		return nil, err
	}
	doc, _, err := dec.decodeTop(b, *do.Index, *do.AllowObjectSmallerThanBufferSize)
	return doc, err
}

// DeserializeStream decodes numberOfDocuments documents stored back to back
// in data from startIndex, placing them in documents from docStartIndex. It
// returns the offset just past the last document. The buffer may extend past
// the documents.
func DeserializeStream(data []byte, startIndex, numberOfDocuments int, documents []D, docStartIndex int,
	opts ...*bsonoptions.DeserializeOptions) (int, error) {

	if docStartIndex < 0 || docStartIndex+numberOfDocuments > len(documents) {
		return startIndex, errors.Wrapf(ErrInvalidLength, "%d documents do not fit in a slice of %d from %d",
			numberOfDocuments, len(documents), docStartIndex)
	}
	dec, err := newDecoder(bsonoptions.MergeDeserializeOptions(opts...))
	if err != nil {
		return startIndex, err
	}

	index := startIndex
	for i := 0; i < numberOfDocuments; i++ {
		doc, size, err := dec.decodeTop(data, index, true)
		if err != nil {
			return index, errors.WithMessagef(err, "document %d at offset %d", i, index)
		}
		documents[docStartIndex+i] = doc
		index += size
	}
	return index, nil
}
