// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucsoft/web-bson-sub000/bson"
	"github.com/lucsoft/web-bson-sub000/bson/primitive"
)

// appendDocument appends doc as compact JSON, using extended JSON wrappers
// for values JSON has no literal for.
func appendDocument(dst []byte, doc bson.D) []byte {
	dst = append(dst, '{')
	for i, e := range doc {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = appendString(dst, e.Key)
		dst = append(dst, ':')
		dst = appendValue(dst, e.Value)
	}
	return append(dst, '}')
}

func appendString(dst []byte, s string) []byte {
	// Marshaling a string cannot fail.
	b, _ := json.Marshal(s)
	return append(dst, b...)
}

// appendWrapped appends {"key":value} where value is already JSON.
func appendWrapped(dst []byte, key string, value []byte) []byte {
	dst = append(dst, '{')
	dst = appendString(dst, key)
	dst = append(dst, ':')
	dst = append(dst, value...)
	return append(dst, '}')
}

func appendFloat(dst []byte, f float64) []byte {
	switch {
	case math.IsNaN(f):
		return appendWrapped(dst, "$numberDouble", []byte(`"NaN"`))
	case math.IsInf(f, 1):
		return appendWrapped(dst, "$numberDouble", []byte(`"Infinity"`))
	case math.IsInf(f, -1):
		return appendWrapped(dst, "$numberDouble", []byte(`"-Infinity"`))
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	dst = append(dst, s...)
	if !strings.ContainsAny(s, ".e") {
		dst = append(dst, ".0"...)
	}
	return dst
}

func appendValue(dst []byte, v interface{}) []byte {
	switch val := v.(type) {
	case nil:
		return append(dst, "null"...)
	case bool:
		return strconv.AppendBool(dst, val)
	case string:
		return appendString(dst, val)
	case int32:
		return strconv.AppendInt(dst, int64(val), 10)
	case int64:
		return strconv.AppendInt(dst, val, 10)
	case float64:
		return appendFloat(dst, val)
	case primitive.Int32:
		return appendWrapped(dst, "$numberInt", appendString(nil, strconv.Itoa(int(val))))
	case primitive.Double:
		return appendWrapped(dst, "$numberDouble", appendString(nil, strconv.FormatFloat(float64(val), 'g', -1, 64)))
	case primitive.Int64:
		return appendWrapped(dst, "$numberLong", appendString(nil, val.String()))
	case primitive.Decimal128:
		return appendWrapped(dst, "$numberDecimal", appendString(nil, val.String()))
	case primitive.ObjectID:
		return appendWrapped(dst, "$oid", appendString(nil, val.Hex()))
	case primitive.DateTime:
		return appendWrapped(dst, "$date", appendWrapped(nil, "$numberLong", appendString(nil, strconv.FormatInt(int64(val), 10))))
	case primitive.Timestamp:
		return appendWrapped(dst, "$timestamp", []byte(fmt.Sprintf(`{"t":%d,"i":%d}`, val.T, val.I)))
	case primitive.Binary:
		return appendBinary(dst, val.Subtype, val.Data)
	case []byte:
		return appendBinary(dst, 0x00, val)
	case primitive.Regex:
		return appendRegex(dst, val.Pattern, val.Options)
	case *regexp.Regexp:
		return appendRegex(dst, val.String(), "")
	case primitive.Symbol:
		return appendWrapped(dst, "$symbol", appendString(nil, string(val)))
	case primitive.JavaScript:
		return appendWrapped(dst, "$code", appendString(nil, string(val)))
	case primitive.CodeWithScope:
		dst = append(dst, `{"$code":`...)
		dst = appendString(dst, string(val.Code))
		dst = append(dst, `,"$scope":`...)
		dst = appendValue(dst, val.Scope)
		return append(dst, '}')
	case primitive.Undefined:
		return append(dst, `{"$undefined":true}`...)
	case primitive.MinKey:
		return append(dst, `{"$minKey":1}`...)
	case primitive.MaxKey:
		return append(dst, `{"$maxKey":1}`...)
	case primitive.DBRef:
		doc := bson.D{{Key: "$ref", Value: val.Collection}, {Key: "$id", Value: val.ID}}
		if val.DB != "" {
			doc = append(doc, bson.E{Key: "$db", Value: val.DB})
		}
		return appendDocument(dst, append(doc, val.Fields...))
	case bson.D:
		return appendDocument(dst, val)
	case bson.A:
		dst = append(dst, '[')
		for i, elem := range val {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendValue(dst, elem)
		}
		return append(dst, ']')
	case bson.Raw:
		doc, err := bson.Deserialize(val)
		if err != nil {
			return appendBinary(dst, 0x00, val)
		}
		return appendDocument(dst, doc)
	}
	return appendString(dst, fmt.Sprint(v))
}

func appendBinary(dst []byte, subtype byte, data []byte) []byte {
	dst = append(dst, `{"$binary":{"base64":`...)
	dst = appendString(dst, base64.StdEncoding.EncodeToString(data))
	dst = append(dst, `,"subType":`...)
	dst = appendString(dst, fmt.Sprintf("%02x", subtype))
	return append(dst, "}}"...)
}

func appendRegex(dst []byte, pattern, options string) []byte {
	dst = append(dst, `{"$regularExpression":{"pattern":`...)
	dst = appendString(dst, pattern)
	dst = append(dst, `,"options":`...)
	dst = appendString(dst, options)
	return append(dst, "}}"...)
}
