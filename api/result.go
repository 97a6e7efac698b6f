// Package api
// Author: momentics@gmail.com
//
// Response value and per-task terminal outcome.

package api

import "strings"

// Response is the framed result of one request/response exchange.
type Response struct {
	// Body holds the decoded JSON value, or the raw bytes when decoding was
	// not requested or the body is partial.
	Body    any
	RawBody []byte
	Headers string
	// Partial is set when the peer closed before the declared length was
	// reached, or when no Content-Length was declared.
	Partial bool
}

// StatusLine returns the first line of the header block.
func (r *Response) StatusLine() string {
	line, _, _ := strings.Cut(r.Headers, "\r\n")
	return line
}

// Outcome is the terminal result of a task: exactly one of Response or Err
// is set.
type Outcome struct {
	ID       string
	URL      string
	Response *Response
	Err      error
}

// Failed reports whether the task ended with an error.
func (o Outcome) Failed() bool { return o.Err != nil }
