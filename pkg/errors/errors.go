// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package errors defines the error kinds shared by the dispatcher, the source
// adapters and the RPC layer. A kind classifies an error for retry and for
// protocol-level status mapping; it is carried by a wrapping error value and
// survives fmt.Errorf("%w") chains.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an error.
type Kind int

const (
	// Unknown tags errors that carry no explicit kind.
	Unknown Kind = iota
	// InvalidSource means the configuration references an unknown source
	// type, misses a required key or holds invalid adapter options.
	InvalidSource
	// UnknownSource means a request names a source that is not configured.
	UnknownSource
	// InvalidData means the backend returned malformed data.
	InvalidData
	// InvalidMetadata means required metadata columns are absent.
	InvalidMetadata
	// InvalidConfiguration means a query result does not match the
	// declared shape.
	InvalidConfiguration
	// NotSupported means the adapter does not implement an optional
	// capability.
	NotSupported
	// Timeout means an adapter call exceeded its configured timeout.
	Timeout
	// Transient tags any other adapter failure.
	Transient
	// Unauthenticated means a bad or missing API key at the RPC boundary.
	Unauthenticated
)

func (k Kind) String() string {
	switch k {
	case InvalidSource:
		return "invalid source"
	case UnknownSource:
		return "unknown source"
	case InvalidData:
		return "invalid data"
	case InvalidMetadata:
		return "invalid metadata"
	case InvalidConfiguration:
		return "invalid configuration"
	case NotSupported:
		return "not supported"
	case Timeout:
		return "timeout"
	case Transient:
		return "transient"
	case Unauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// Error is an error tagged with a Kind.
type Error struct {
	kind  Kind
	msg   string
	cause error
}

// New returns an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Newf returns an error of the given kind with a formatted message.
func Newf(kind Kind, format string, params ...interface{}) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, params...)}
}

// Wrap tags an existing error with a kind. It returns nil when err is nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, msg: err.Error(), cause: err}
}

// Kind returns the kind of the error.
func (e *Error) Kind() Kind {
	return e.kind
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf extracts the kind from an error chain. Untagged errors report
// Unknown.
func KindOf(err error) Kind {
	var kerr *Error
	if stderrors.As(err, &kerr) {
		return kerr.Kind()
	}
	return Unknown
}

// IsRetryable reports whether the dispatcher may retry after err. Transient
// and Timeout errors are retryable; untagged adapter failures count as
// Transient.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case Transient, Timeout, Unknown:
		return true
	}
	return false
}
