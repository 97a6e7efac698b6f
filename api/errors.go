// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-fetch.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrWouldBlock         = fmt.Errorf("operation would block")
	ErrInProgress         = fmt.Errorf("operation in progress")
	ErrAlreadyRegistered  = fmt.Errorf("socket already registered")
	ErrNotRegistered      = fmt.Errorf("socket not registered")
	ErrNoRegistrations    = fmt.Errorf("no registered sockets to wait on")
	ErrReactorClosed      = fmt.Errorf("reactor is closed")
	ErrNotSupported       = fmt.Errorf("operation not supported")
	ErrPartialWrite       = fmt.Errorf("partial write")
	ErrNoSeparator        = fmt.Errorf("header/body separator not found")
	ErrBadContentLength   = fmt.Errorf("invalid Content-Length")
	ErrChunkedUnsupported = fmt.Errorf("chunked transfer-encoding not supported")
)

// ErrorKind classifies the terminal failure of a task.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindConnect
	KindWrite
	KindRead
	KindFraming
	KindDecode
	KindAborted
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnect:
		return "connect"
	case KindWrite:
		return "write"
	case KindRead:
		return "read"
	case KindFraming:
		return "framing"
	case KindDecode:
		return "decode"
	case KindAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Error represents a structured task failure with kind and context.
type Error struct {
	Kind    ErrorKind
	TaskID  string
	Err     error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.String() + " failure"
	if e.TaskID != "" {
		msg = "[" + e.TaskID + "] " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates a new structured error.
func NewError(kind ErrorKind, err error) *Error {
	return &Error{
		Kind: kind,
		Err:  err,
	}
}

// WithTask sets the owning task id.
func (e *Error) WithTask(id string) *Error {
	e.TaskID = id
	return e
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// KindOf extracts the ErrorKind from err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
