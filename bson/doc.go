// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bson converts between Go values and BSON documents.
//
// Serialize and SerializeWithBufferAndIndex write a document. Documents are
// primitive.D for ordered keys, primitive.M or any map with string keys for
// unordered keys (written in sorted key order), primitive.DBRef, or Raw.
// Values are dispatched on their Go type:
//
//	nil, primitive.Null          null
//	primitive.Undefined          null, or omitted in documents while IgnoreUndefined is set
//	bool                         boolean
//	string                       string
//	Go integers and floats       int32 when integral and in int32 range, double otherwise
//	primitive.Int32, Double      int32, double
//	primitive.Int64              int64
//	primitive.Decimal128         decimal128
//	primitive.ObjectID           ObjectId
//	primitive.DateTime, time.Time  UTC datetime
//	primitive.Binary, []byte     binary
//	primitive.Regex, *regexp.Regexp  regex
//	primitive.JavaScript         JavaScript code
//	primitive.CodeWithScope      code with scope, or code when Scope is nil
//	primitive.Function           code when SerializeFunctions is set, omitted otherwise
//	primitive.Symbol, Timestamp, MinKey, MaxKey
//	primitive.A, slices, arrays  array
//
// Deserialize reads a document back into a primitive.D. Values come back as
// the primitive types above, with int32, double, symbol and small int64
// values promoted to Go types unless the options say otherwise.
// CalculateObjectSize reports exactly how many bytes Serialize would write.
//
// Every function is safe for concurrent use.
package bson
