// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"errors"
	"regexp"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucsoft/web-bson-sub000/bson/bsonoptions"
	"github.com/lucsoft/web-bson-sub000/bson/bsontype"
	"github.com/lucsoft/web-bson-sub000/bson/primitive"
	"github.com/lucsoft/web-bson-sub000/x/bsonx/bsoncore"
)

func TestDeserializeHelloWorld(t *testing.T) {
	doc, err := Deserialize(helloWorld)
	require.NoError(t, err)
	assert.Equal(t, D{{"hello", "world"}}, doc)
}

func TestDeserializeValues(t *testing.T) {
	oid := primitive.ObjectID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

	testCases := []struct {
		name string
		doc  []byte
		opts *bsonoptions.DeserializeOptions
		want interface{}
	}{
		{"double", bsoncore.NewDocumentBuilder().AppendDouble("v", 1.5).Build(), nil, 1.5},
		{"double unpromoted", bsoncore.NewDocumentBuilder().AppendDouble("v", 1.5).Build(),
			bsonoptions.Deserialize().SetPromoteValues(false), primitive.Double(1.5)},
		{"int32", bsoncore.NewDocumentBuilder().AppendInt32("v", -7).Build(), nil, int32(-7)},
		{"int32 unpromoted", bsoncore.NewDocumentBuilder().AppendInt32("v", -7).Build(),
			bsonoptions.Deserialize().SetPromoteValues(false), primitive.Int32(-7)},
		{"int64 safe", bsoncore.NewDocumentBuilder().AppendInt64("v", 1<<53-1).Build(), nil, int64(1<<53 - 1)},
		{"int64 negative safe", bsoncore.NewDocumentBuilder().AppendInt64("v", -(1<<53 - 1)).Build(), nil, int64(-(1<<53 - 1))},
		{"int64 unsafe", bsoncore.NewDocumentBuilder().AppendInt64("v", 1<<53).Build(), nil, primitive.NewInt64(1 << 53)},
		{"int64 without promoteLongs", bsoncore.NewDocumentBuilder().AppendInt64("v", 3).Build(),
			bsonoptions.Deserialize().SetPromoteLongs(false), primitive.NewInt64(3)},
		{"int64 without promoteValues", bsoncore.NewDocumentBuilder().AppendInt64("v", 3).Build(),
			bsonoptions.Deserialize().SetPromoteValues(false), primitive.NewInt64(3)},
		{"string", bsoncore.NewDocumentBuilder().AppendString("v", "héllo").Build(), nil, "héllo"},
		{"empty string", bsoncore.NewDocumentBuilder().AppendString("v", "").Build(), nil, ""},
		{"symbol", bsoncore.NewDocumentBuilder().AppendSymbol("v", "s").Build(), nil, "s"},
		{"symbol unpromoted", bsoncore.NewDocumentBuilder().AppendSymbol("v", "s").Build(),
			bsonoptions.Deserialize().SetPromoteValues(false), primitive.Symbol("s")},
		{"javascript", bsoncore.NewDocumentBuilder().AppendJavaScript("v", "x()").Build(), nil, primitive.JavaScript("x()")},
		{"binary", bsoncore.NewDocumentBuilder().AppendBinary("v", 0x04, []byte{1, 2}).Build(), nil,
			primitive.Binary{Subtype: 0x04, Data: []byte{1, 2}}},
		{"binary old", bsoncore.NewDocumentBuilder().AppendBinary("v", 0x02, []byte{1, 2}).Build(), nil,
			primitive.Binary{Subtype: 0x02, Data: []byte{1, 2}}},
		{"binary empty", bsoncore.NewDocumentBuilder().AppendBinary("v", 0x00, nil).Build(), nil,
			primitive.Binary{Subtype: 0x00, Data: []byte{}}},
		{"binary promoted", bsoncore.NewDocumentBuilder().AppendBinary("v", 0x00, []byte{9}).Build(),
			bsonoptions.Deserialize().SetPromoteBuffers(true), []byte{9}},
		{"undefined", bsoncore.NewDocumentBuilder().AppendUndefined("v").Build(), nil, primitive.Undefined{}},
		{"objectid", bsoncore.NewDocumentBuilder().AppendObjectID("v", oid).Build(), nil, oid},
		{"boolean", bsoncore.NewDocumentBuilder().AppendBoolean("v", true).Build(), nil, true},
		{"datetime", bsoncore.NewDocumentBuilder().AppendDateTime("v", 1234).Build(), nil, primitive.DateTime(1234)},
		{"null", bsoncore.NewDocumentBuilder().AppendNull("v").Build(), nil, nil},
		{"regex as BSON", bsoncore.NewDocumentBuilder().AppendRegex("v", "a+", "im").Build(),
			bsonoptions.Deserialize().SetBSONRegExp(true), primitive.Regex{Pattern: "a+", Options: "im"}},
		{"dbpointer", bsoncore.NewDocumentBuilder().AppendDBPointer("v", "db.c", oid).Build(), nil,
			primitive.DBRef{Collection: "db.c", ID: oid}},
		{"timestamp", bsoncore.NewDocumentBuilder().AppendTimestamp("v", 5, 6).Build(), nil, primitive.Timestamp{T: 5, I: 6}},
		{"decimal128", bsoncore.NewDocumentBuilder().AppendDecimal128("v", 0x3040000000000000, 1).Build(), nil,
			primitive.NewDecimal128(0x3040000000000000, 1)},
		{"minkey", bsoncore.NewDocumentBuilder().AppendMinKey("v").Build(), nil, primitive.MinKey{}},
		{"maxkey", bsoncore.NewDocumentBuilder().AppendMaxKey("v").Build(), nil, primitive.MaxKey{}},
		{"document", bsoncore.NewDocumentBuilder().StartDocument("v").AppendInt32("a", 1).Build(), nil, D{{"a", int32(1)}}},
		{"empty document", bsoncore.NewDocumentBuilder().StartDocument("v").Build(), nil, D{}},
		{"array", bsoncore.NewDocumentBuilder().StartArray("v").AppendInt32("0", 1).AppendString("1", "x").Build(), nil,
			A{int32(1), "x"}},
		{"code with scope",
			bsoncore.NewDocumentBuilder().AppendCodeWithScope("v", "f()",
				bsoncore.NewDocumentBuilder().AppendInt32("x", 1).Build()).Build(), nil,
			primitive.CodeWithScope{Code: "f()", Scope: D{{"x", int32(1)}}}},
		{"dbref",
			bsoncore.NewDocumentBuilder().StartDocument("v").
				AppendString("$ref", "c").AppendObjectID("$id", oid).AppendString("$db", "d").AppendInt32("n", 1).Build(), nil,
			primitive.DBRef{Collection: "c", ID: oid, DB: "d", Fields: D{{"n", int32(1)}}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var opts []*bsonoptions.DeserializeOptions
			if tc.opts != nil {
				opts = append(opts, tc.opts)
			}
			doc, err := Deserialize(tc.doc, opts...)
			require.NoError(t, err)
			require.Len(t, doc, 1)
			assert.Equal(t, "v", doc[0].Key)
			assert.Equal(t, tc.want, doc[0].Value)
		})
	}
}

func TestDeserializeDBRefDetection(t *testing.T) {
	testCases := []struct {
		name string
		doc  []byte
	}{
		{"no $id", bsoncore.NewDocumentBuilder().StartDocument("v").AppendString("$ref", "c").Build()},
		{"non-string $ref", bsoncore.NewDocumentBuilder().StartDocument("v").AppendInt32("$ref", 1).AppendInt32("$id", 1).Build()},
		{"null $id", bsoncore.NewDocumentBuilder().StartDocument("v").AppendString("$ref", "c").AppendNull("$id").Build()},
		{"non-string $db", bsoncore.NewDocumentBuilder().StartDocument("v").
			AppendString("$ref", "c").AppendInt32("$id", 1).AppendInt32("$db", 1).Build()},
		{"other $ key", bsoncore.NewDocumentBuilder().StartDocument("v").
			AppendString("$ref", "c").AppendInt32("$id", 1).AppendInt32("$x", 1).Build()},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Deserialize(tc.doc)
			require.NoError(t, err)
			assert.IsType(t, D{}, doc[0].Value)
		})
	}

	t.Run("top level stays a document", func(t *testing.T) {
		b := bsoncore.NewDocumentBuilder().AppendString("$ref", "c").AppendInt32("$id", 1).Build()
		doc, err := Deserialize(b)
		require.NoError(t, err)
		assert.Equal(t, D{{"$ref", "c"}, {"$id", int32(1)}}, doc)
	})
}

func TestDeserializeRegexp(t *testing.T) {
	b := bsoncore.NewDocumentBuilder().AppendRegex("v", "^a.b$", "imsux").Build()
	doc, err := Deserialize(b)
	require.NoError(t, err)
	re, ok := doc[0].Value.(*regexp.Regexp)
	require.True(t, ok, "got %T", doc[0].Value)
	assert.Equal(t, "(?ims)^a.b$", re.String())
	assert.True(t, re.MatchString("A\nB"))

	t.Run("invalid options with BSONRegExp", func(t *testing.T) {
		b := bsoncore.NewDocumentBuilder().AppendRegex("v", "a", "q").Build()
		_, err := Deserialize(b, bsonoptions.Deserialize().SetBSONRegExp(true))
		assert.True(t, errors.Is(err, ErrInvalidRegex), "got %v", err)
	})
	t.Run("pattern Go cannot compile", func(t *testing.T) {
		b := bsoncore.NewDocumentBuilder().AppendRegex("v", "(?<=a)b", "").Build()
		_, err := Deserialize(b)
		assert.True(t, errors.Is(err, ErrInvalidRegex), "got %v", err)

		doc, err := Deserialize(b, bsonoptions.Deserialize().SetBSONRegExp(true))
		require.NoError(t, err)
		assert.Equal(t, primitive.Regex{Pattern: "(?<=a)b"}, doc[0].Value)
	})
}

func TestDeserializeRaw(t *testing.T) {
	inner := bsoncore.NewDocumentBuilder().AppendInt32("a", 1).Build()
	b := bsoncore.NewDocumentBuilder().AppendDocument("v", inner).StartArray("arr").AppendInt32("0", 2).Build()

	doc, err := Deserialize(b, bsonoptions.Deserialize().SetRaw(true))
	require.NoError(t, err)
	assert.Equal(t, Raw(inner), doc[0].Value)
	assert.Equal(t, A{int32(2)}, doc[1].Value)

	raw := doc[0].Value.(Raw)
	require.NoError(t, raw.Validate())
	assert.Same(t, &b[4+1+len("v")+1], &raw[0])
}

func TestDeserializeBinaryIsCopied(t *testing.T) {
	b := bsoncore.NewDocumentBuilder().AppendBinary("v", 0x00, []byte{1, 2, 3}).Build()
	doc, err := Deserialize(b)
	require.NoError(t, err)
	for i := range b {
		b[i] = 0xFF
	}
	assert.Equal(t, []byte{1, 2, 3}, doc[0].Value.(primitive.Binary).Data)
}

func TestDeserializeFraming(t *testing.T) {
	withTrailer := append(append([]byte{}, helloWorld...), 0xAA, 0xBB)

	t.Run("exact", func(t *testing.T) {
		_, err := Deserialize(withTrailer)
		assert.True(t, errors.Is(err, ErrInvalidLength), "got %v", err)
	})
	t.Run("allow smaller", func(t *testing.T) {
		doc, err := Deserialize(withTrailer, bsonoptions.Deserialize().SetAllowObjectSmallerThanBufferSize(true))
		require.NoError(t, err)
		assert.Equal(t, D{{"hello", "world"}}, doc)
	})
	t.Run("index", func(t *testing.T) {
		b := append([]byte{0xAA, 0xBB, 0xCC}, helloWorld...)
		doc, err := Deserialize(b, bsonoptions.Deserialize().SetIndex(3))
		require.NoError(t, err)
		assert.Equal(t, D{{"hello", "world"}}, doc)
	})
	t.Run("index outside buffer", func(t *testing.T) {
		_, err := Deserialize(helloWorld, bsonoptions.Deserialize().SetIndex(len(helloWorld)+1))
		assert.True(t, errors.Is(err, ErrInvalidLength), "got %v", err)
	})
}

func TestDeserializeCorrupt(t *testing.T) {
	withPayload := func(typ bsontype.Type, payload ...byte) []byte {
		return bsoncore.NewDocumentBuilder().AppendRaw(typ, "k", payload).Build()
	}
	cws := bsoncore.AppendCodeWithScope(nil, "x", []byte{0x05, 0x00, 0x00, 0x00, 0x00})
	cwsLong := append(append([]byte{}, cws...), 0x00)
	cwsLong[0]++
	cwsShort := append([]byte{}, cws...)
	cwsShort[0]--

	testCases := []struct {
		name string
		doc  []byte
		want error
	}{
		{"too short", []byte{0x05, 0x00, 0x00}, ErrInvalidLength},
		{"size below minimum", []byte{0x04, 0x00, 0x00, 0x00, 0x00}, ErrInvalidLength},
		{"size above buffer", []byte{0x06, 0x00, 0x00, 0x00, 0x00}, ErrInvalidLength},
		{"negative size", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x00}, ErrInvalidLength},
		{"missing terminator", []byte{0x05, 0x00, 0x00, 0x00, 0x01}, ErrCorruptDocument},
		{"element runs past the end", []byte{0x06, 0x00, 0x00, 0x00, 0x0A, 0x00}, ErrCorruptDocument},
		{"unknown type", withPayload(0x14), ErrUnknownType},
		{"bad boolean", withPayload(bsontype.Boolean, 0x02), ErrInvalidBooleanType},
		{"string length too large", withPayload(bsontype.String, 0xFF, 0xFF, 0xFF, 0x7F, 'a', 0x00), ErrInvalidString},
		{"string length zero", withPayload(bsontype.String, 0x00, 0x00, 0x00, 0x00), ErrInvalidString},
		{"string unterminated", withPayload(bsontype.String, 0x02, 0x00, 0x00, 0x00, 'a', 'b'), ErrInvalidString},
		{"embedded length too large", withPayload(bsontype.EmbeddedDocument, 0x50, 0x00, 0x00, 0x00, 0x00), ErrInvalidLength},
		{"embedded length too small", withPayload(bsontype.EmbeddedDocument, 0x04, 0x00, 0x00, 0x00, 0x00), ErrInvalidLength},
		{"embedded trailing bytes", withPayload(bsontype.EmbeddedDocument, 0x07, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00), ErrCorruptDocument},
		{"array without terminator", withPayload(bsontype.Array, 0x06, 0x00, 0x00, 0x00, 0x0A, 0x00), ErrCorruptDocument},
		{"binary negative", withPayload(bsontype.Binary, 0xFF, 0xFF, 0xFF, 0xFF, 0x00), ErrInvalidBinary},
		{"binary too long", withPayload(bsontype.Binary, 0x10, 0x00, 0x00, 0x00, 0x00, 0x01), ErrInvalidBinary},
		{"binary old inner too short",
			withPayload(bsontype.Binary, 0x06, 0x00, 0x00, 0x00, 0x02, 0x01, 0x00, 0x00, 0x00, 0xAA, 0xBB), ErrInvalidBinary},
		{"binary old inner too long",
			withPayload(bsontype.Binary, 0x06, 0x00, 0x00, 0x00, 0x02, 0x03, 0x00, 0x00, 0x00, 0xAA, 0xBB), ErrInvalidBinary},
		{"regex options unterminated", []byte{0x09, 0x00, 0x00, 0x00, 0x0B, 'r', 0x00, 'a', 0x00}, ErrInvalidCString},
		{"code with scope too small", withPayload(bsontype.CodeWithScope, 0x0A, 0x00, 0x00, 0x00, 0x00, 0x00), ErrInvalidCodeWithScope},
		{"code with scope total too long", withPayload(bsontype.CodeWithScope, cwsLong...), ErrInvalidCodeWithScope},
		{"code with scope total too short", withPayload(bsontype.CodeWithScope, cwsShort...), ErrInvalidCodeWithScope},
		{"int64 truncated", withPayload(bsontype.Int64, 0x01, 0x02, 0x03), ErrInsufficientBytes},
		{"double truncated", withPayload(bsontype.Double, 0x01), ErrInsufficientBytes},
		{"objectid truncated", withPayload(bsontype.ObjectID, 0x01, 0x02), ErrInsufficientBytes},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Deserialize(tc.doc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "want %v, got %v", tc.want, err)
		})
	}
}

func TestDeserializeUTF8(t *testing.T) {
	bad := string([]byte{0xFF, 'x'})
	doc := bsoncore.NewDocumentBuilder().
		AppendString("good", "ok").
		AppendString("bad", bad).
		StartDocument("nested").AppendString("inner", bad).
		Build()

	testCases := []struct {
		name       string
		validation *bsonoptions.ValidationOptions
		want       error
	}{
		{"default validates", nil, ErrInvalidUTF8},
		{"global on", bsonoptions.Validation().SetUTF8(true), ErrInvalidUTF8},
		{"global off", bsonoptions.Validation().SetUTF8(false), nil},
		{"bad listed as off", bsonoptions.Validation().SetUTF8Fields(map[string]bool{"bad": false, "nested": false}), nil},
		{"others inherit the opposite", bsonoptions.Validation().SetUTF8Fields(map[string]bool{"good": true}), nil},
		{"bad listed as on", bsonoptions.Validation().SetUTF8Fields(map[string]bool{"bad": true}), ErrInvalidUTF8},
		{"nested inherits on", bsonoptions.Validation().SetUTF8Fields(map[string]bool{"bad": false}), ErrInvalidUTF8},
		{"empty map", bsonoptions.Validation().SetUTF8Fields(map[string]bool{}), ErrInvalidValidationOptions},
		{"mixed map", bsonoptions.Validation().SetUTF8Fields(map[string]bool{"a": true, "b": false}), ErrInvalidValidationOptions},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := bsonoptions.Deserialize()
			if tc.validation != nil {
				opts.SetValidation(tc.validation)
			}
			got, err := Deserialize(doc, opts)
			if tc.want != nil {
				assert.True(t, errors.Is(err, tc.want), "want %v, got %v", tc.want, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ok", got[0].Value)
			assert.Equal(t, "\uFFFDx", got[1].Value)
			assert.Equal(t, D{{"inner", "\uFFFDx"}}, got[2].Value)
		})
	}

	t.Run("lenient sequences pass and are replaced", func(t *testing.T) {
		overlong := bsoncore.NewDocumentBuilder().AppendString("v", string([]byte{0xC0, 0x80})).Build()
		got, err := Deserialize(overlong)
		require.NoError(t, err)
		s := got[0].Value.(string)
		assert.True(t, utf8.ValidString(s))
		assert.NotEqual(t, string([]byte{0xC0, 0x80}), s)
	})
	t.Run("array keys are not validated", func(t *testing.T) {
		b := bsoncore.NewDocumentBuilder().StartArray("a").AppendInt32(string([]byte{0xFF}), 1).Build()
		got, err := Deserialize(b)
		require.NoError(t, err)
		assert.Equal(t, A{int32(1)}, got[0].Value)
	})
	t.Run("field names", func(t *testing.T) {
		b := bsoncore.NewDocumentBuilder().AppendInt32(string([]byte{0xFF}), 1).Build()
		_, err := Deserialize(b)
		assert.True(t, errors.Is(err, ErrInvalidUTF8), "got %v", err)
	})
}

func TestDeserializeStream(t *testing.T) {
	first := bsoncore.NewDocumentBuilder().AppendInt32("n", 1).Build()
	second := bsoncore.NewDocumentBuilder().AppendInt32("n", 2).Build()
	third := bsoncore.NewDocumentBuilder().AppendString("s", "three").Build()

	var data []byte
	data = append(data, 0xEE)
	data = append(data, first...)
	data = append(data, second...)
	data = append(data, third...)
	data = append(data, 0xEE, 0xEE)

	docs := make([]D, 4)
	next, err := DeserializeStream(data, 1, 3, docs, 1)
	require.NoError(t, err)
	assert.Equal(t, 1+len(first)+len(second)+len(third), next)
	assert.Nil(t, docs[0])
	assert.Equal(t, D{{"n", int32(1)}}, docs[1])
	assert.Equal(t, D{{"n", int32(2)}}, docs[2])
	assert.Equal(t, D{{"s", "three"}}, docs[3])

	t.Run("documents slice too small", func(t *testing.T) {
		_, err := DeserializeStream(data, 1, 3, make([]D, 2), 0)
		assert.True(t, errors.Is(err, ErrInvalidLength), "got %v", err)
	})
	t.Run("corrupt document", func(t *testing.T) {
		broken := append([]byte{}, data...)
		broken[1+len(first)+4] = 0x14
		next, err := DeserializeStream(broken, 1, 3, make([]D, 3), 0)
		assert.True(t, errors.Is(err, ErrUnknownType), "got %v", err)
		assert.Contains(t, err.Error(), "document 1")
		assert.Equal(t, 1+len(first), next)
	})
}

func TestRawValidate(t *testing.T) {
	assert.NoError(t, Raw(helloWorld).Validate())
	assert.NoError(t, Raw(bsoncore.NewDocumentBuilder().AppendString("v", string([]byte{0xFF})).Build()).Validate())
	assert.NoError(t, Raw(bsoncore.NewDocumentBuilder().AppendRegex("v", "a", "gy").Build()).Validate())
	assert.True(t, errors.Is(Raw(helloWorld[:21]).Validate(), ErrInvalidLength))
}
