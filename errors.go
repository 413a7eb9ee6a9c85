// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package xbar

import (
	"github.com/pkg/errors"
)

// Kind classifies bridge errors. Every kind is fatal to the simulation run.
//
type Kind int

// Error kinds.
//
const (
	Unknown Kind = iota
	// ElaborationFailure: a required signal cannot be resolved, has an
	// unexpected type or size, or the backend module fails to load.
	ElaborationFailure
	// ProtocolViolation: program and compute requested on the same edge.
	ProtocolViolation
	// BackendCallFailure: unbound entry point, or a backend call that failed
	// or returned no or a malformed result.
	BackendCallFailure
)

var kindNames = [...]string{"unknown error", "elaboration failure", "protocol violation", "backend call failure"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[0]
	}
	return kindNames[k]
}

// Error is an error returned by the bridge.
//
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Kind.String() + ": " + e.Err.Error() }

// Cause returns the underlying error.
//
func (e *Error) Cause() error { return e.Err }

// Unwrap returns the underlying error.
//
func (e *Error) Unwrap() error { return e.Err }

func newError(k Kind, err error) error {
	return &Error{Kind: k, Err: err}
}

func errorf(k Kind, format string, args ...interface{}) error {
	return &Error{Kind: k, Err: errors.Errorf(format, args...)}
}

// KindOf returns the Kind of the first *Error found in err's chain of
// causes, or Unknown.
//
func KindOf(err error) Kind {
	type causer interface {
		Cause() error
	}
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return Unknown
}
