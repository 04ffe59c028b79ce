/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package sdkerr defines the error kinds surfaced by channel operations.
//
// InvalidArgument errors are raised locally before any remote call.
// Proposal errors wrap every per-peer failure and keep the original
// message. Transaction errors report broadcast and commit failures.
// Fatal errors are never wrapped into another kind.
package sdkerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an error
type Kind int

const (
	// Unknown is the kind of errors not created by this package
	Unknown Kind = iota
	// InvalidArgument caller supplied a bad argument or the channel is in the wrong state
	InvalidArgument
	// Proposal a peer facing operation failed
	Proposal
	// Transaction submitting a transaction to an orderer or committing it failed
	Transaction
	// Timeout a deadline expired while waiting for a result
	Timeout
	// Fatal an unrecoverable condition that must end the operation
	Fatal
)

var kindNames = map[Kind]string{
	Unknown:         "Unknown",
	InvalidArgument: "InvalidArgument",
	Proposal:        "ProposalException",
	Transaction:     "TransactionException",
	Timeout:         "Timeout",
	Fatal:           "Fatal",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[Unknown]
}

// Error is an error of a given Kind with an optional cause
type Error struct {
	kind  Kind
	msg   string
	cause error
}

func (e *Error) Error() string {
	switch {
	case e.cause == nil:
		return e.msg
	case e.msg == "":
		return e.cause.Error()
	default:
		return e.msg + ": " + e.cause.Error()
	}
}

// Kind returns the kind of the error
func (e *Error) Kind() Kind {
	return e.kind
}

// Cause returns the wrapped error, if any. errors.Cause follows it.
func (e *Error) Cause() error {
	return e.cause
}

// Unwrap returns the wrapped error, if any
func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind Kind, cause error, format string, args ...interface{}) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{kind: kind, msg: msg, cause: cause}
}

// NewInvalidArgument returns an InvalidArgument error with the formatted message
func NewInvalidArgument(format string, args ...interface{}) error {
	return newError(InvalidArgument, nil, format, args...)
}

// NewProposal returns a Proposal error with the formatted message
func NewProposal(format string, args ...interface{}) error {
	return newError(Proposal, nil, format, args...)
}

// WrapProposal wraps cause into a Proposal error. An empty message keeps the
// message of the cause verbatim. Fatal errors and Proposal errors without
// extra context are returned unchanged.
func WrapProposal(cause error, format string, args ...interface{}) error {
	if cause == nil {
		return nil
	}
	if IsFatal(cause) {
		return cause
	}
	if format == "" && KindOf(cause) == Proposal {
		return cause
	}
	return newError(Proposal, cause, format, args...)
}

// NewTransaction returns a Transaction error with the formatted message
func NewTransaction(format string, args ...interface{}) error {
	return newError(Transaction, nil, format, args...)
}

// WrapTransaction wraps cause into a Transaction error. Fatal errors are
// returned unchanged.
func WrapTransaction(cause error, format string, args ...interface{}) error {
	if cause == nil {
		return nil
	}
	if IsFatal(cause) {
		return cause
	}
	return newError(Transaction, cause, format, args...)
}

// NewTimeout returns a Timeout error with the formatted message
func NewTimeout(format string, args ...interface{}) error {
	return newError(Timeout, nil, format, args...)
}

// NewFatal marks cause as unrecoverable. The message of cause is kept as is.
func NewFatal(cause error) error {
	if cause == nil {
		return nil
	}
	if IsFatal(cause) {
		return cause
	}
	return newError(Fatal, cause, "")
}

// KindOf returns the kind of the outermost Error in the chain of err
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return Unknown
}

func hasKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.kind == kind {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsInvalidArgument reports whether err or any error it wraps is an InvalidArgument error
func IsInvalidArgument(err error) bool {
	return hasKind(err, InvalidArgument)
}

// IsProposal reports whether err or any error it wraps is a Proposal error
func IsProposal(err error) bool {
	return hasKind(err, Proposal)
}

// IsTransaction reports whether err or any error it wraps is a Transaction error
func IsTransaction(err error) bool {
	return hasKind(err, Transaction)
}

// IsTimeout reports whether err or any error it wraps is a Timeout error
func IsTimeout(err error) bool {
	return hasKind(err, Timeout)
}

// IsFatal reports whether err or any error it wraps is a Fatal error
func IsFatal(err error) bool {
	return hasKind(err, Fatal)
}
