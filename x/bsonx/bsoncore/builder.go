// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import "github.com/lucsoft/web-bson-sub000/bson/bsontype"

// DocumentBuilder builds a bson document. Nested documents and arrays are
// opened with StartDocument or StartArray and closed with Finish.
type DocumentBuilder struct {
	doc     []byte
	indexes []int32
}

// NewDocumentBuilder creates a new DocumentBuilder
func NewDocumentBuilder() *DocumentBuilder {
	return (&DocumentBuilder{}).start()
}

func (db *DocumentBuilder) start() *DocumentBuilder {
	var index int32
	index, db.doc = ReserveLength(db.doc)
	db.indexes = append(db.indexes, index)
	return db
}

func (db *DocumentBuilder) finish() *DocumentBuilder {
	last := len(db.indexes) - 1
	db.doc = AppendDocumentEnd(db.doc, db.indexes[last])
	db.indexes = db.indexes[:last]
	return db
}

// Build closes every open level and returns the document bytes.
func (db *DocumentBuilder) Build() []byte {
	for len(db.indexes) > 0 {
		db.finish()
	}
	return db.doc
}

// StartDocument opens an embedded document under key.
func (db *DocumentBuilder) StartDocument(key string) *DocumentBuilder {
	db.doc = AppendHeader(db.doc, bsontype.EmbeddedDocument, key)
	return db.start()
}

// StartArray opens an array under key. Element keys inside are the caller's
// responsibility.
func (db *DocumentBuilder) StartArray(key string) *DocumentBuilder {
	db.doc = AppendHeader(db.doc, bsontype.Array, key)
	return db.start()
}

// Finish closes the innermost open document or array.
func (db *DocumentBuilder) Finish() *DocumentBuilder {
	if len(db.indexes) > 1 {
		db.finish()
	}
	return db
}

// AppendRaw appends an element header followed by payload verbatim. It is
// meant for hand-crafting elements the typed helpers cannot express.
func (db *DocumentBuilder) AppendRaw(t bsontype.Type, key string, payload []byte) *DocumentBuilder {
	db.doc = append(AppendHeader(db.doc, t, key), payload...)
	return db
}

// AppendInt32 will append an int32 element using key and i32 to DocumentBuilder.doc
func (db *DocumentBuilder) AppendInt32(key string, i32 int32) *DocumentBuilder {
	db.doc = AppendInt32Element(db.doc, key, i32)
	return db
}

// AppendInt64 will append an int64 element using key and i64 to DocumentBuilder.doc
func (db *DocumentBuilder) AppendInt64(key string, i64 int64) *DocumentBuilder {
	db.doc = AppendInt64Element(db.doc, key, i64)
	return db
}

// AppendDouble will append a double element using key and f to DocumentBuilder.doc
func (db *DocumentBuilder) AppendDouble(key string, f float64) *DocumentBuilder {
	db.doc = AppendDoubleElement(db.doc, key, f)
	return db
}

// AppendString will append str to DocumentBuilder.doc with the given key
func (db *DocumentBuilder) AppendString(key, str string) *DocumentBuilder {
	db.doc = AppendStringElement(db.doc, key, str)
	return db
}

// AppendSymbol will append a symbol element using key and symbol DocumentBuilder.doc
func (db *DocumentBuilder) AppendSymbol(key, symbol string) *DocumentBuilder {
	db.doc = AppendSymbolElement(db.doc, key, symbol)
	return db
}

// AppendJavaScript will append a javascript element using key and js to DocumentBuilder.doc
func (db *DocumentBuilder) AppendJavaScript(key, js string) *DocumentBuilder {
	db.doc = AppendJavaScriptElement(db.doc, key, js)
	return db
}

// AppendCodeWithScope will append code and scope using key to DocumentBuilder.doc
func (db *DocumentBuilder) AppendCodeWithScope(key, code string, scope []byte) *DocumentBuilder {
	db.doc = AppendCodeWithScope(AppendHeader(db.doc, bsontype.CodeWithScope, key), code, scope)
	return db
}

// AppendDocument will append a bson embedded document element using key
// and doc to DocumentBuilder.doc
func (db *DocumentBuilder) AppendDocument(key string, doc []byte) *DocumentBuilder {
	db.doc = AppendDocumentElement(db.doc, key, doc)
	return db
}

// AppendArray will append a bson array using key and arr to DocumentBuilder.doc
func (db *DocumentBuilder) AppendArray(key string, arr []byte) *DocumentBuilder {
	db.doc = append(AppendHeader(db.doc, bsontype.Array, key), arr...)
	return db
}

// AppendBinary will append a BSON binary element using key, subtype, and
// b to db.doc
func (db *DocumentBuilder) AppendBinary(key string, subtype byte, b []byte) *DocumentBuilder {
	db.doc = AppendBinaryElement(db.doc, key, subtype, b)
	return db
}

// AppendObjectID will append oid to DocumentBuilder.doc with the given key
func (db *DocumentBuilder) AppendObjectID(key string, oid [ObjectIDSize]byte) *DocumentBuilder {
	db.doc = AppendObjectIDElement(db.doc, key, oid)
	return db
}

// AppendBoolean will append a boolean element using key and b to DocumentBuilder.doc
func (db *DocumentBuilder) AppendBoolean(key string, b bool) *DocumentBuilder {
	db.doc = AppendBooleanElement(db.doc, key, b)
	return db
}

// AppendDateTime will append a datetime element using key and dt to DocumentBuilder.doc
func (db *DocumentBuilder) AppendDateTime(key string, dt int64) *DocumentBuilder {
	db.doc = AppendDateTimeElement(db.doc, key, dt)
	return db
}

// AppendRegex will append pattern and options using key to DocumentBuilder.doc
func (db *DocumentBuilder) AppendRegex(key, pattern, options string) *DocumentBuilder {
	db.doc = AppendRegexElement(db.doc, key, pattern, options)
	return db
}

// AppendDBPointer will append ns and oid to using key to DocumentBuilder.doc
func (db *DocumentBuilder) AppendDBPointer(key, ns string, oid [ObjectIDSize]byte) *DocumentBuilder {
	db.doc = AppendDBPointer(AppendHeader(db.doc, bsontype.DBPointer, key), ns, oid)
	return db
}

// AppendTimestamp will append t and i to DocumentBuilder.doc using provided key
func (db *DocumentBuilder) AppendTimestamp(key string, t, i uint32) *DocumentBuilder {
	db.doc = AppendTimestampElement(db.doc, key, t, i)
	return db
}

// AppendDecimal128 will append the decimal words to DocumentBuilder.doc using provided key
func (db *DocumentBuilder) AppendDecimal128(key string, high, low uint64) *DocumentBuilder {
	db.doc = AppendDecimal128Element(db.doc, key, high, low)
	return db
}

// AppendNull will append a null element using key to DocumentBuilder.doc
func (db *DocumentBuilder) AppendNull(key string) *DocumentBuilder {
	db.doc = AppendNullElement(db.doc, key)
	return db
}

// AppendUndefined will append a BSON undefined element using key to DocumentBuilder.doc
func (db *DocumentBuilder) AppendUndefined(key string) *DocumentBuilder {
	db.doc = AppendHeader(db.doc, bsontype.Undefined, key)
	return db
}

// AppendMinKey will append a minkey element using key to DocumentBuilder.doc
func (db *DocumentBuilder) AppendMinKey(key string) *DocumentBuilder {
	db.doc = AppendMinKeyElement(db.doc, key)
	return db
}

// AppendMaxKey will append a maxkey element using key to DocumentBuilder.doc
func (db *DocumentBuilder) AppendMaxKey(key string) *DocumentBuilder {
	db.doc = AppendMaxKeyElement(db.doc, key)
	return db
}
