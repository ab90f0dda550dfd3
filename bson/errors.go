// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/go-stack/stack"
)

// FormatError is returned for bytes that are not well formed BSON and for
// documents that cannot be written as BSON. The package level Err* values
// are FormatErrors; errors returned by this package wrap them with context,
// so errors.Is matches the sentinel.
type FormatError struct {
	msg string
}

func (e *FormatError) Error() string { return "bson: " + e.msg }

// Structural errors.
var (
	ErrInvalidLength            = &FormatError{"invalid length"}
	ErrInvalidString            = &FormatError{"invalid string"}
	ErrInvalidCString           = &FormatError{"illegal CString"}
	ErrInvalidBooleanType       = &FormatError{"invalid value for BSON Boolean Type"}
	ErrInvalidBinary            = &FormatError{"invalid binary"}
	ErrInvalidCodeWithScope     = &FormatError{"invalid code with scope"}
	ErrUnknownType              = &FormatError{"unknown BSON type"}
	ErrCorruptDocument          = &FormatError{"corrupt document"}
	ErrInvalidKey               = &FormatError{"invalid key"}
	ErrInvalidRegex             = &FormatError{"invalid regular expression"}
	ErrInvalidUTF8              = &FormatError{"invalid UTF-8 string"}
	ErrCyclicDocument           = &FormatError{"cyclic dependency detected"}
	ErrInvalidValidationOptions = &FormatError{"invalid validation options"}
	ErrInsufficientBytes        = &FormatError{"insufficient bytes to read value"}
)

// TypeError is returned when a Go value has no BSON representation.
type TypeError struct {
	Type reflect.Type
	Msg  string
}

func (e *TypeError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("bson: cannot serialize %v: %s", e.Type, e.Msg)
	}
	return fmt.Sprintf("bson: cannot serialize %v", e.Type)
}

func newTypeError(v interface{}, msg string) *TypeError {
	return &TypeError{Type: reflect.TypeOf(v), Msg: msg}
}

// ErrTooSmall indicates that a slice provided to write into is not large enough to fit the data.
type ErrTooSmall struct {
	Stack stack.CallStack
}

// NewErrTooSmall creates a new ErrTooSmall with the given message and the current stack.
func NewErrTooSmall() ErrTooSmall {
	return ErrTooSmall{Stack: stack.Trace().TrimRuntime()}
}

// Error implements the error interface.
func (e ErrTooSmall) Error() string {
	return "too small"
}

// ErrorStack returns a string representing the stack at the point where the error occurred.
func (e ErrTooSmall) ErrorStack() string {
	s := bytes.NewBufferString("too small: [")

	for i, call := range e.Stack {
		if i != 0 {
			s.WriteString(", ")
		}

		// go vet doesn't like %k even though it's part of stack's API, so we move the format
		// string so it doesn't complain. (We also can't make it a constant, or go vet still
		// complains.)
		callFormat := "%k.%n %v"

		s.WriteString(fmt.Sprintf(callFormat, call, call, call))
	}

	s.WriteRune(']')

	return s.String()
}

// Is reports whether target is also an ErrTooSmall.
func (e ErrTooSmall) Is(target error) bool {
	_, ok := target.(ErrTooSmall)
	return ok
}
