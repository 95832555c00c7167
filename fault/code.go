// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
)

// numeric codes reported across the RPC boundary
const (
	CodeInvalidParameters = -32602
	CodeInternal          = -32603
	CodeNotFound          = -32010
	CodeAlreadyExists     = -32011
	CodeWrongPassword     = -32012
	CodeLocked            = -32013
	CodeHasKeyMaterial    = -32014
	CodeRateLimiting      = -32015
)

// Code - map an error to its numeric code
//
// specific errors are checked before their class
func Code(err error) int {
	switch err {
	case nil:
		return 0
	case HasKeyMaterial:
		return CodeHasKeyMaterial
	case RateLimiting:
		return CodeRateLimiting
	}

	switch {
	case IsErrInvalid(err):
		return CodeInvalidParameters
	case IsErrNotFound(err):
		return CodeNotFound
	case IsErrExists(err):
		return CodeAlreadyExists
	case IsErrPassword(err):
		return CodeWrongPassword
	case IsErrLocked(err):
		return CodeLocked
	}
	return CodeInternal
}

// CodedError - an error as it crosses the RPC boundary
type CodedError struct {
	Code    int
	Message string
}

// Error - "<code>: <message>"
func (e *CodedError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// Coded - attach the numeric code to an error
func Coded(err error) error {
	if nil == err {
		return nil
	}
	if c, ok := err.(*CodedError); ok {
		return c
	}
	return &CodedError{
		Code:    Code(err),
		Message: err.Error(),
	}
}
