// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"github.com/pkg/errors"

	"github.com/lucsoft/web-bson-sub000/bson/bsonoptions"
	"github.com/lucsoft/web-bson-sub000/bson/bsontype"
	"github.com/lucsoft/web-bson-sub000/bson/primitive"
	"github.com/lucsoft/web-bson-sub000/internal/binaryutil"
	"github.com/lucsoft/web-bson-sub000/x/bsonx/bsoncore"
)

// maxSafeInteger is the largest integer a float64 holds exactly alongside
// all of its predecessors.
const maxSafeInteger = 1<<53 - 1

// minCodeWithScopeSize covers the total length, an empty code string and an
// empty scope document.
const minCodeWithScopeSize = 4 + 5 + 5

type decoder struct {
	promoteLongs   bool
	promoteValues  bool
	promoteBuffers bool
	bsonRegExp     bool
	raw            bool
	utf8           utf8Policy

	// anyRegexOptions keeps regex options as written instead of validating them.
	anyRegexOptions bool
}

func newDecoder(opts *bsonoptions.DeserializeOptions) (*decoder, error) {
	policy, err := newUTF8Policy(opts.Validation)
	if err != nil {
		return nil, err
	}
	return &decoder{
		promoteLongs:   *opts.PromoteLongs,
		promoteValues:  *opts.PromoteValues,
		promoteBuffers: *opts.PromoteBuffers,
		bsonRegExp:     *opts.BSONRegExp,
		raw:            *opts.Raw,
		utf8:           policy,
	}, nil
}

// decodeTop checks the framing of the document at b[index:] and decodes it.
// It returns the document and its declared size.
func (d *decoder) decodeTop(b []byte, index int, allowSmaller bool) (primitive.D, int, error) {
	if index < 0 || index > len(b) {
		return nil, 0, errors.Wrapf(ErrInvalidLength, "index %d is outside a buffer of %d bytes", index, len(b))
	}
	buf := b[index:]
	if len(buf) < bsoncore.EmptyDocument {
		return nil, 0, errors.Wrapf(ErrInvalidLength, "buffer of %d bytes is smaller than the minimum document size", len(buf))
	}
	size32, _, _ := binaryutil.ReadI32(buf)
	size := int(size32)
	switch {
	case size < bsoncore.EmptyDocument:
		return nil, 0, errors.Wrapf(ErrInvalidLength, "bson size must be >= 5, is %d", size)
	case allowSmaller && len(buf) < size:
		return nil, 0, errors.Wrapf(ErrInvalidLength, "buffer length %d must be >= bson size %d", len(buf), size)
	case !allowSmaller && len(buf) != size:
		return nil, 0, errors.Wrapf(ErrInvalidLength, "buffer length %d must equal bson size %d", len(buf), size)
	}
	if buf[size-1] != 0x00 {
		return nil, 0, errors.Wrap(ErrCorruptDocument, "document does not end with a 0x00 terminator")
	}

	doc, err := d.readElements(buf[:size], false, d.utf8)
	if err != nil {
		return nil, 0, err
	}
	return doc, size, nil
}

// readDocument reads the length prefixed document at the start of src. It
// returns the document bytes, which end with their terminator.
func readDocument(src []byte, t bsontype.Type, key string) ([]byte, error) {
	l, _, ok := binaryutil.ReadI32(src)
	if !ok {
		return nil, errors.Wrapf(ErrInsufficientBytes, "%s length for field %q", t, key)
	}
	doc, _, ok := bsoncore.ReadDocument(src)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidLength, "bad %s length %d for field %q", t, l, key)
	}
	if doc[len(doc)-1] != 0x00 {
		return nil, errors.Wrapf(ErrCorruptDocument, "invalid %s terminator byte for field %q", t, key)
	}
	return doc, nil
}

// readElements decodes the elements of doc, which holds exactly one
// document including its length and terminator. Arrays come back as
// primitive.A inside the returned D's values; for isArray the caller converts.
func (d *decoder) readElements(doc []byte, isArray bool, policy utf8Policy) (primitive.D, error) {
	out := primitive.D{}
	pos := 4
	for {
		if pos >= len(doc) {
			return nil, errors.Wrap(ErrCorruptDocument, "document ended without a terminator")
		}
		t := bsontype.Type(doc[pos])
		pos++
		if t == 0x00 {
			break
		}

		rawKey, rem, ok := bsoncore.ReadKey(doc[pos:])
		if !ok {
			return nil, errors.Wrap(ErrInvalidCString, "field name is not terminated")
		}
		pos = len(doc) - len(rem)

		key := string(rawKey)
		if !isArray {
			var err error
			key, err = decodeText(rawKey, policy.forKey(key), key)
			if err != nil {
				return nil, err
			}
		}

		val, n, err := d.readValue(t, key, doc[pos:], policy)
		if err != nil {
			return nil, err
		}
		pos += n
		out = append(out, primitive.E{Key: key, Value: val})
	}

	if pos != len(doc) {
		if isArray {
			return nil, errors.Wrap(ErrCorruptDocument, "corrupt array bson")
		}
		return nil, errors.Wrap(ErrCorruptDocument, "corrupt object bson")
	}
	return out, nil
}

// readValue decodes one value of type t from the start of src and reports
// how many bytes it used. src ends with the enclosing document.
func (d *decoder) readValue(t bsontype.Type, key string, src []byte, policy utf8Policy) (interface{}, int, error) {
	insufficient := func() (interface{}, int, error) {
		return nil, 0, errors.Wrapf(ErrInsufficientBytes, "%s for field %q", t, key)
	}

	switch t {
	case bsontype.Double:
		f, _, ok := bsoncore.ReadDouble(src)
		if !ok {
			return insufficient()
		}
		if d.promoteValues {
			return f, 8, nil
		}
		return primitive.Double(f), 8, nil

	case bsontype.String, bsontype.JavaScript, bsontype.Symbol:
		s, n, err := readText(src, t, key, policy.forKey(key))
		if err != nil {
			return nil, 0, err
		}
		switch {
		case t == bsontype.JavaScript:
			return primitive.JavaScript(s), n, nil
		case t == bsontype.Symbol && !d.promoteValues:
			return primitive.Symbol(s), n, nil
		}
		return s, n, nil

	case bsontype.EmbeddedDocument:
		doc, err := readDocument(src, t, key)
		if err != nil {
			return nil, 0, err
		}
		if d.raw {
			return Raw(doc), len(doc), nil
		}
		elems, err := d.readElements(doc, false, policy.child(key))
		if err != nil {
			return nil, 0, err
		}
		if ref, ok := asDBRef(elems); ok {
			return ref, len(doc), nil
		}
		return elems, len(doc), nil

	case bsontype.Array:
		doc, err := readDocument(src, t, key)
		if err != nil {
			return nil, 0, err
		}
		elems, err := d.readElements(doc, true, policy.child(key))
		if err != nil {
			return nil, 0, err
		}
		arr := make(primitive.A, len(elems))
		for i, e := range elems {
			arr[i] = e.Value
		}
		return arr, len(doc), nil

	case bsontype.Binary:
		return d.readBinary(src, key)

	case bsontype.Undefined:
		return primitive.Undefined{}, 0, nil

	case bsontype.ObjectID:
		oid, _, ok := bsoncore.ReadObjectID(src)
		if !ok {
			return insufficient()
		}
		return primitive.ObjectID(oid), bsoncore.ObjectIDSize, nil

	case bsontype.Boolean:
		if len(src) < 1 {
			return insufficient()
		}
		switch src[0] {
		case 0x00:
			return false, 1, nil
		case 0x01:
			return true, 1, nil
		}
		return nil, 0, errors.Wrapf(ErrInvalidBooleanType, "0x%02x for field %q", src[0], key)

	case bsontype.DateTime:
		ms, _, ok := bsoncore.ReadInt64(src)
		if !ok {
			return insufficient()
		}
		return primitive.DateTime(ms), 8, nil

	case bsontype.Null:
		return nil, 0, nil

	case bsontype.Regex:
		pattern, options, rem, ok := bsoncore.ReadRegex(src)
		if !ok {
			return nil, 0, errors.Wrapf(ErrInvalidCString, "regular expression for field %q is not terminated", key)
		}
		n := len(src) - len(rem)
		validate := policy.forKey(key)
		p, err := decodeText(pattern, validate, key)
		if err != nil {
			return nil, 0, err
		}
		o, err := decodeText(options, validate, key)
		if err != nil {
			return nil, 0, err
		}
		if d.anyRegexOptions {
			return primitive.Regex{Pattern: p, Options: o}, n, nil
		}
		if d.bsonRegExp {
			rx, err := primitive.NewRegex(p, o)
			if err != nil {
				return nil, 0, errors.Wrapf(ErrInvalidRegex, "field %q: %v", key, err)
			}
			return rx, n, nil
		}
		re, err := bsonToRegexp(p, o)
		if err != nil {
			return nil, 0, err
		}
		return re, n, nil

	case bsontype.DBPointer:
		ns, n, err := readText(src, t, key, policy.forKey(key))
		if err != nil {
			return nil, 0, err
		}
		oid, _, ok := bsoncore.ReadObjectID(src[n:])
		if !ok {
			return insufficient()
		}
		return primitive.DBRef{Collection: ns, ID: primitive.ObjectID(oid)}, n + bsoncore.ObjectIDSize, nil

	case bsontype.CodeWithScope:
		return d.readCodeWithScope(src, key, policy)

	case bsontype.Int32:
		i, _, ok := bsoncore.ReadInt32(src)
		if !ok {
			return insufficient()
		}
		if d.promoteValues {
			return i, 4, nil
		}
		return primitive.Int32(i), 4, nil

	case bsontype.Timestamp:
		ts, i, _, ok := bsoncore.ReadTimestamp(src)
		if !ok {
			return insufficient()
		}
		return primitive.Timestamp{T: ts, I: i}, 8, nil

	case bsontype.Int64:
		i, _, ok := bsoncore.ReadInt64(src)
		if !ok {
			return insufficient()
		}
		if d.promoteLongs && d.promoteValues && i >= -maxSafeInteger && i <= maxSafeInteger {
			return i, 8, nil
		}
		return primitive.NewInt64(i), 8, nil

	case bsontype.Decimal128:
		h, l, _, ok := bsoncore.ReadDecimal128(src)
		if !ok {
			return insufficient()
		}
		return primitive.NewDecimal128(h, l), bsoncore.Decimal128Size, nil

	case bsontype.MinKey:
		return primitive.MinKey{}, 0, nil

	case bsontype.MaxKey:
		return primitive.MaxKey{}, 0, nil
	}

	return nil, 0, errors.Wrapf(ErrUnknownType, "detected unknown BSON type 0x%02x for fieldname %q", byte(t), key)
}

// readText reads a length prefixed string and applies UTF-8 handling.
func readText(src []byte, t bsontype.Type, key string, validate bool) (string, int, error) {
	l, _, ok := binaryutil.ReadI32(src)
	if !ok {
		return "", 0, errors.Wrapf(ErrInsufficientBytes, "%s length for field %q", t, key)
	}
	if l <= 0 || int64(l) > int64(len(src)-4) {
		return "", 0, errors.Wrapf(ErrInvalidString, "bad %s length %d in bson for field %q", t, l, key)
	}
	b, _, ok := bsoncore.ReadString(src)
	if !ok {
		return "", 0, errors.Wrapf(ErrInvalidString, "invalid %s terminator byte for field %q", t, key)
	}
	s, err := decodeText(b, validate, key)
	if err != nil {
		return "", 0, err
	}
	return s, 4 + int(l), nil
}

func (d *decoder) readBinary(src []byte, key string) (interface{}, int, error) {
	total, rem, ok := binaryutil.ReadI32(src)
	if !ok || len(rem) < 1 {
		return nil, 0, errors.Wrapf(ErrInsufficientBytes, "binary for field %q", key)
	}
	subtype := rem[0]
	rem = rem[1:]
	switch {
	case total < 0:
		return nil, 0, errors.Wrapf(ErrInvalidBinary, "negative binary type element size found for field %q", key)
	case int64(total) > int64(len(rem)):
		return nil, 0, errors.Wrapf(ErrInvalidBinary, "binary type size larger than document size for field %q", key)
	}
	n := 5 + int(total)
	data := rem[:total]

	if subtype == bsontype.BinaryBinaryOld {
		inner, body, ok := binaryutil.ReadI32(data)
		switch {
		case !ok:
			return nil, 0, errors.Wrapf(ErrInvalidBinary, "binary type with subtype 0x02 is missing its inner size for field %q", key)
		case inner < 0:
			return nil, 0, errors.Wrapf(ErrInvalidBinary, "negative binary type element size found for subtype 0x02 for field %q", key)
		case inner > total-4:
			return nil, 0, errors.Wrapf(ErrInvalidBinary, "binary type with subtype 0x02 contains too long binary size for field %q", key)
		case inner < total-4:
			return nil, 0, errors.Wrapf(ErrInvalidBinary, "binary type with subtype 0x02 contains too short binary size for field %q", key)
		}
		data = body
	}

	out := make([]byte, len(data))
	copy(out, data)
	if d.promoteBuffers && d.promoteValues {
		return out, n, nil
	}
	return primitive.Binary{Subtype: subtype, Data: out}, n, nil
}

func (d *decoder) readCodeWithScope(src []byte, key string, policy utf8Policy) (interface{}, int, error) {
	total, rem, ok := binaryutil.ReadI32(src)
	if !ok {
		return nil, 0, errors.Wrapf(ErrInsufficientBytes, "code with scope for field %q", key)
	}
	if total < minCodeWithScopeSize {
		return nil, 0, errors.Wrapf(ErrInvalidCodeWithScope, "total size %d is shorter than the minimum for field %q", total, key)
	}
	if int64(total) > int64(len(src)) {
		return nil, 0, errors.Wrapf(ErrInvalidCodeWithScope, "total size %d exceeds the document for field %q", total, key)
	}
	body := rem[:total-4]

	code, n, err := readText(body, bsontype.JavaScript, key, policy.forKey(key))
	if err != nil {
		return nil, 0, err
	}
	scopeLen, _, ok := binaryutil.ReadI32(body[n:])
	switch {
	case !ok || 4+n+int(scopeLen) > int(total):
		return nil, 0, errors.Wrapf(ErrInvalidCodeWithScope, "total size is too short, truncating scope for field %q", key)
	case 4+n+int(scopeLen) < int(total):
		return nil, 0, errors.Wrapf(ErrInvalidCodeWithScope, "total size is too long, clips outer document for field %q", key)
	}
	scopeBytes, err := readDocument(body[n:], bsontype.EmbeddedDocument, key)
	if err != nil {
		return nil, 0, err
	}
	scope, err := d.readElements(scopeBytes, false, policy.child(key))
	if err != nil {
		return nil, 0, err
	}
	return primitive.CodeWithScope{Code: primitive.JavaScript(code), Scope: scope}, int(total), nil
}
