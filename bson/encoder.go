// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"math"
	"math/big"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/lucsoft/web-bson-sub000/bson/bsonoptions"
	"github.com/lucsoft/web-bson-sub000/bson/bsontype"
	"github.com/lucsoft/web-bson-sub000/bson/primitive"
	"github.com/lucsoft/web-bson-sub000/x/bsonx/bsoncore"
)

var tBinary = reflect.TypeOf([]byte(nil))

// identity names a compound value for cycle detection: the backing pointer
// plus the length for slices, the pointer alone for maps and pointers.
type identity struct {
	ptr uintptr
	len int
}

// encoder writes documents, or with sizeOnly set counts the bytes it would
// write. Both modes share every branch so the two never disagree.
type encoder struct {
	dst      []byte
	n        int
	sizeOnly bool

	checkKeys          bool
	serializeFunctions bool
	ignoreUndefined    bool

	ancestors []identity
}

func newEncoder(dst []byte, sizeOnly bool, opts *bsonoptions.SerializeOptions) *encoder {
	return &encoder{
		dst:                dst,
		sizeOnly:           sizeOnly,
		checkKeys:          *opts.CheckKeys,
		serializeFunctions: *opts.SerializeFunctions,
		ignoreUndefined:    *opts.IgnoreUndefined,
	}
}

func (e *encoder) push(v reflect.Value) (bool, error) {
	var id identity
	switch v.Kind() {
	case reflect.Slice:
		if v.Len() == 0 {
			return false, nil
		}
		id = identity{ptr: v.Pointer(), len: v.Len()}
	case reflect.Map, reflect.Ptr:
		if v.IsNil() {
			return false, nil
		}
		id = identity{ptr: v.Pointer(), len: -1}
	default:
		return false, nil
	}
	for _, a := range e.ancestors {
		if a == id {
			return false, errors.Wrapf(ErrCyclicDocument, "%v refers to one of its ancestors", v.Type())
		}
	}
	e.ancestors = append(e.ancestors, id)
	return true, nil
}

func (e *encoder) pop() { e.ancestors = e.ancestors[:len(e.ancestors)-1] }

func (e *encoder) startDocument() int32 {
	if e.sizeOnly {
		e.n += 4
		return 0
	}
	var idx int32
	idx, e.dst = bsoncore.ReserveLength(e.dst)
	return idx
}

func (e *encoder) endDocument(idx int32) {
	if e.sizeOnly {
		e.n++
		return
	}
	e.dst = bsoncore.AppendDocumentEnd(e.dst, idx)
}

func (e *encoder) header(t bsontype.Type, key string) {
	if e.sizeOnly {
		e.n += bsoncore.HeaderSize(key)
		return
	}
	e.dst = bsoncore.AppendHeader(e.dst, t, key)
}

func (e *encoder) validateKey(key string) error {
	if strings.IndexByte(key, 0x00) >= 0 {
		return errors.Wrapf(ErrInvalidKey, "key %q must not contain null bytes", key)
	}
	if !e.checkKeys {
		return nil
	}
	if strings.HasPrefix(key, "$") {
		return errors.Wrapf(ErrInvalidKey, "key %q must not start with '$'", key)
	}
	if strings.Contains(key, ".") {
		return errors.Wrapf(ErrInvalidKey, "key %q must not contain '.'", key)
	}
	return nil
}

// encodeTop writes v as a top level document.
func (e *encoder) encodeTop(v interface{}) error {
	switch doc := v.(type) {
	case primitive.D, primitive.M, primitive.A, primitive.DBRef, Raw:
		return e.encodeDocument(doc)
	case *primitive.D:
		if doc != nil {
			return e.encodeDocument(doc)
		}
	case *primitive.M:
		if doc != nil {
			return e.encodeDocument(doc)
		}
	default:
		rv := reflect.ValueOf(v)
		for rv.Kind() == reflect.Ptr && !rv.IsNil() {
			rv = rv.Elem()
		}
		if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
			return e.encodeDocument(v)
		}
	}
	return newTypeError(v, "top level value must be a document")
}

// encodeDocument writes a document-like value (document, array, map, DBRef
// or Raw) including its length prefix and terminator.
func (e *encoder) encodeDocument(v interface{}) error {
	rv := reflect.ValueOf(v)
	pushed, err := e.push(rv)
	if err != nil {
		return err
	}
	if pushed {
		defer e.pop()
	}

	switch doc := v.(type) {
	case Raw:
		if err := doc.Validate(); err != nil {
			return err
		}
		if e.sizeOnly {
			e.n += len(doc)
		} else {
			e.dst = append(e.dst, doc...)
		}
		return nil
	case *primitive.D:
		return e.encodeDocument(*doc)
	case *primitive.M:
		return e.encodeDocument(*doc)
	case primitive.DBRef:
		return e.encodeDBRef(doc)
	}

	idx := e.startDocument()
	switch doc := v.(type) {
	case primitive.D:
		for _, elem := range doc {
			if err := e.encodeElement(elem.Key, elem.Value, false); err != nil {
				return err
			}
		}
	case primitive.M:
		keys := make([]string, 0, len(doc))
		for k := range doc {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := e.encodeElement(k, doc[k], false); err != nil {
				return err
			}
		}
	case primitive.A:
		for i, val := range doc {
			if err := e.encodeElement(strconv.Itoa(i), val, true); err != nil {
				return err
			}
		}
	default:
		if err := e.encodeReflected(rv); err != nil {
			return err
		}
	}
	e.endDocument(idx)
	return nil
}

// encodeReflected writes the elements of maps with string keys, slices and
// arrays that are not one of the primitive document types.
func (e *encoder) encodeReflected(rv reflect.Value) error {
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		for _, k := range keys {
			if err := e.encodeElement(k.String(), rv.MapIndex(k).Interface(), false); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := e.encodeElement(strconv.Itoa(i), rv.Index(i).Interface(), true); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *encoder) encodeDBRef(ref primitive.DBRef) error {
	checkKeys := e.checkKeys
	e.checkKeys = false
	defer func() { e.checkKeys = checkKeys }()

	doc := primitive.D{{Key: "$ref", Value: ref.Collection}, {Key: "$id", Value: ref.ID}}
	if ref.DB != "" {
		doc = append(doc, primitive.E{Key: "$db", Value: ref.DB})
	}
	doc = append(doc, ref.Fields...)
	// doc is a fresh slice, so the fields' own identities still guard
	// against cycles through them.
	return e.encodeDocument(doc)
}

// encodeElement writes one key/value pair. inArray selects array rules:
// undefined is always written as null.
func (e *encoder) encodeElement(key string, v interface{}, inArray bool) error {
	if !inArray {
		if err := e.validateKey(key); err != nil {
			return err
		}
	}

	switch val := v.(type) {
	case nil, primitive.Null:
		e.encodeNull(key)
	case primitive.Undefined:
		if !inArray && e.ignoreUndefined {
			return nil
		}
		e.encodeNull(key)
	case bool:
		e.put(key, 1, func(dst []byte) []byte { return bsoncore.AppendBooleanElement(dst, key, val) })
	case string:
		e.put(key, bsoncore.StringSize(val), func(dst []byte) []byte { return bsoncore.AppendStringElement(dst, key, val) })
	case primitive.Symbol:
		e.put(key, bsoncore.StringSize(string(val)), func(dst []byte) []byte {
			return bsoncore.AppendSymbolElement(dst, key, string(val))
		})
	case primitive.JavaScript:
		e.encodeJavaScript(key, string(val))
	case primitive.Function:
		if !e.serializeFunctions {
			return nil
		}
		e.encodeJavaScript(key, val.Source)
	case int:
		e.encodeInteger(key, int64(val))
	case int8:
		e.encodeInteger(key, int64(val))
	case int16:
		e.encodeInteger(key, int64(val))
	case int32:
		e.encodeInteger(key, int64(val))
	case int64:
		e.encodeInteger(key, val)
	case uint:
		e.encodeUnsigned(key, uint64(val))
	case uint8:
		e.encodeInteger(key, int64(val))
	case uint16:
		e.encodeInteger(key, int64(val))
	case uint32:
		e.encodeInteger(key, int64(val))
	case uint64:
		e.encodeUnsigned(key, val)
	case float32:
		e.encodeNumber(key, float64(val))
	case float64:
		e.encodeNumber(key, val)
	case primitive.Int32:
		e.encodeInt32(key, int32(val))
	case primitive.Double:
		e.encodeDouble(key, float64(val))
	case primitive.Int64:
		e.put(key, 8, func(dst []byte) []byte { return bsoncore.AppendInt64Element(dst, key, val.Int64()) })
	case primitive.Decimal128:
		h, l := val.GetBytes()
		e.put(key, bsoncore.Decimal128Size, func(dst []byte) []byte { return bsoncore.AppendDecimal128Element(dst, key, h, l) })
	case primitive.ObjectID:
		e.put(key, bsoncore.ObjectIDSize, func(dst []byte) []byte { return bsoncore.AppendObjectIDElement(dst, key, val) })
	case primitive.DateTime:
		e.encodeDateTime(key, int64(val))
	case time.Time:
		e.encodeDateTime(key, int64(primitive.NewDateTimeFromTime(val)))
	case primitive.Timestamp:
		e.put(key, 8, func(dst []byte) []byte { return bsoncore.AppendTimestampElement(dst, key, val.T, val.I) })
	case primitive.MinKey:
		e.put(key, 0, func(dst []byte) []byte { return bsoncore.AppendMinKeyElement(dst, key) })
	case primitive.MaxKey:
		e.put(key, 0, func(dst []byte) []byte { return bsoncore.AppendMaxKeyElement(dst, key) })
	case primitive.Binary:
		e.encodeBinary(key, val.Subtype, val.Data)
	case []byte:
		e.encodeBinary(key, bsontype.BinaryGeneric, val)
	case primitive.Regex:
		return e.encodeRegex(key, val.Pattern, val.Options)
	case *regexp.Regexp:
		if val == nil {
			e.encodeNull(key)
			return nil
		}
		pattern, options := regexpToBSON(val)
		return e.encodeRegex(key, pattern, options)
	case primitive.CodeWithScope:
		return e.encodeCodeWithScope(key, val)
	case Raw:
		if err := val.Validate(); err != nil {
			return err
		}
		e.put(key, len(val), func(dst []byte) []byte { return bsoncore.AppendDocumentElement(dst, key, val) })
	case primitive.D, primitive.M, primitive.DBRef:
		e.header(bsontype.EmbeddedDocument, key)
		return e.encodeDocument(val)
	case primitive.A:
		e.header(bsontype.Array, key)
		return e.encodeDocument(val)
	case *big.Int, big.Int:
		return newTypeError(v, "use primitive.Int64 or primitive.Decimal128")
	default:
		return e.encodeOther(key, v, inArray)
	}
	return nil
}

// encodeOther handles values that need reflection: pointers, functions,
// and collections without a primitive type.
func (e *encoder) encodeOther(key string, v interface{}, inArray bool) error {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func:
		if e.serializeFunctions {
			return newTypeError(v, "function source is not available, use primitive.Function")
		}
		return nil
	case reflect.Ptr:
		if rv.IsNil() {
			e.encodeNull(key)
			return nil
		}
		pushed, err := e.push(rv)
		if err != nil {
			return err
		}
		if pushed {
			defer e.pop()
		}
		return e.encodeElement(key, rv.Elem().Interface(), inArray)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return newTypeError(v, "map keys must be strings")
		}
		if rv.IsNil() {
			e.encodeNull(key)
			return nil
		}
		e.header(bsontype.EmbeddedDocument, key)
		return e.encodeDocument(v)
	case reflect.Slice:
		if rv.IsNil() {
			e.encodeNull(key)
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			e.encodeBinary(key, bsontype.BinaryGeneric, rv.Convert(tBinary).Interface().([]byte))
			return nil
		}
		e.header(bsontype.Array, key)
		return e.encodeDocument(v)
	case reflect.Array:
		e.header(bsontype.Array, key)
		return e.encodeDocument(v)
	case reflect.String:
		return e.encodeElement(key, rv.String(), inArray)
	case reflect.Bool:
		return e.encodeElement(key, rv.Bool(), inArray)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.encodeInteger(key, rv.Int())
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.encodeUnsigned(key, rv.Uint())
		return nil
	case reflect.Float32, reflect.Float64:
		e.encodeNumber(key, rv.Float())
		return nil
	}
	return newTypeError(v, "")
}

// put writes one complete element. payload is the size of the value after
// the element header; appendFn writes header and value.
func (e *encoder) put(key string, payload int, appendFn func([]byte) []byte) {
	if e.sizeOnly {
		e.n += bsoncore.HeaderSize(key) + payload
		return
	}
	e.dst = appendFn(e.dst)
}

func (e *encoder) encodeNull(key string) {
	e.put(key, 0, func(dst []byte) []byte { return bsoncore.AppendNullElement(dst, key) })
}

func (e *encoder) encodeJavaScript(key, js string) {
	e.put(key, bsoncore.StringSize(js), func(dst []byte) []byte { return bsoncore.AppendJavaScriptElement(dst, key, js) })
}

func (e *encoder) encodeInt32(key string, i int32) {
	e.put(key, 4, func(dst []byte) []byte { return bsoncore.AppendInt32Element(dst, key, i) })
}

func (e *encoder) encodeDouble(key string, f float64) {
	e.put(key, 8, func(dst []byte) []byte { return bsoncore.AppendDoubleElement(dst, key, f) })
}

func (e *encoder) encodeDateTime(key string, ms int64) {
	e.put(key, 8, func(dst []byte) []byte { return bsoncore.AppendDateTimeElement(dst, key, ms) })
}

// encodeInteger writes an integer as int32 when it fits and as a double
// otherwise.
func (e *encoder) encodeInteger(key string, i int64) {
	if i >= math.MinInt32 && i <= math.MaxInt32 {
		e.encodeInt32(key, int32(i))
		return
	}
	e.encodeDouble(key, float64(i))
}

func (e *encoder) encodeUnsigned(key string, u uint64) {
	if u <= math.MaxInt32 {
		e.encodeInt32(key, int32(u))
		return
	}
	e.encodeDouble(key, float64(u))
}

// encodeNumber applies the same rule to floats. Negative zero keeps its sign
// as a double.
func (e *encoder) encodeNumber(key string, f float64) {
	if f == math.Trunc(f) && f >= math.MinInt32 && f <= math.MaxInt32 && !(f == 0 && math.Signbit(f)) {
		e.encodeInt32(key, int32(f))
		return
	}
	e.encodeDouble(key, f)
}

func (e *encoder) encodeBinary(key string, subtype byte, data []byte) {
	e.put(key, bsoncore.BinarySize(subtype, len(data)), func(dst []byte) []byte {
		return bsoncore.AppendBinaryElement(dst, key, subtype, data)
	})
}

func (e *encoder) encodeRegex(key, pattern, options string) error {
	if strings.IndexByte(pattern, 0x00) >= 0 {
		return errors.Wrapf(ErrInvalidRegex, "pattern for key %q must not contain null bytes", key)
	}
	if strings.IndexByte(options, 0x00) >= 0 {
		return errors.Wrapf(ErrInvalidRegex, "options for key %q must not contain null bytes", key)
	}
	options = sortOptions(options)
	e.put(key, bsoncore.RegexSize(pattern, options), func(dst []byte) []byte {
		return bsoncore.AppendRegexElement(dst, key, pattern, options)
	})
	return nil
}

func (e *encoder) encodeCodeWithScope(key string, cws primitive.CodeWithScope) error {
	if cws.Scope == nil {
		e.encodeJavaScript(key, string(cws.Code))
		return nil
	}
	e.header(bsontype.CodeWithScope, key)
	idx := e.startDocument()
	if e.sizeOnly {
		e.n += bsoncore.StringSize(string(cws.Code))
	} else {
		e.dst = bsoncore.AppendString(e.dst, string(cws.Code))
	}
	if err := e.encodeTop(cws.Scope); err != nil {
		return err
	}
	if !e.sizeOnly {
		e.dst = bsoncore.UpdateLength(e.dst, idx, int32(len(e.dst)-int(idx)))
	}
	return nil
}
