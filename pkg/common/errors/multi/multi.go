/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package multi holds errors collected from operations that target
// several nodes, such as a broadcast that tried every orderer.
package multi

import (
	"strings"
)

// Errors is used to represent multiple errors
type Errors []error

// New Errors object with the given errors. Only non-nil errors are added.
// A single error is returned as is.
func New(errs ...error) error {
	var collected Errors
	for _, err := range errs {
		if err != nil {
			collected = append(collected, err)
		}
	}
	return collected.ToError()
}

// Append error to Errors. If the first arg is not an Errors object, one will be created
func Append(errs error, err error) error {
	m, ok := errs.(Errors)
	if !ok {
		return New(errs, err)
	}
	if err == nil {
		return errs
	}
	return append(m, err)
}

// ToError returns nil for no errors, the error itself for one error and
// the Errors value otherwise.
func (errs Errors) ToError() error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errs
	}
}

// Error joins the messages of all errors
func (errs Errors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Error()
	}

	msgs := []string{"Multiple errors occurred:"}
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, " - ")
}
