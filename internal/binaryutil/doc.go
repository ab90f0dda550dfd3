// Copyright (C) MongoDB, Inc. 2026-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package binaryutil provides little-endian fixed-width readers and writers
// over byte slices. It backs the element primitives in bsoncore and the
// Int64 byte conversions in primitive.
//
// Readers return the decoded value, the remaining bytes and an ok flag that
// is false only when src is too short. Signed readers do their arithmetic in
// the unsigned domain and convert once at the end.
package binaryutil
