// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"strings"

	"github.com/lucsoft/web-bson-sub000/bson/primitive"
)

// asDBRef recognizes a decoded document as a DBRef. Its '$' keys must be
// among $ref, $id and $db, with a string $ref, a non-null $id and, when
// present, a string $db. Other keys become Fields.
func asDBRef(d primitive.D) (primitive.DBRef, bool) {
	var ref primitive.DBRef
	var hasRef, hasID bool
	for _, e := range d {
		switch e.Key {
		case "$ref":
			s, ok := e.Value.(string)
			if !ok {
				return primitive.DBRef{}, false
			}
			ref.Collection, hasRef = s, true
		case "$id":
			if e.Value == nil {
				return primitive.DBRef{}, false
			}
			ref.ID, hasID = e.Value, true
		case "$db":
			s, ok := e.Value.(string)
			if !ok {
				return primitive.DBRef{}, false
			}
			ref.DB = s
		default:
			if strings.HasPrefix(e.Key, "$") {
				return primitive.DBRef{}, false
			}
			ref.Fields = append(ref.Fields, e)
		}
	}
	return ref, hasRef && hasID
}
