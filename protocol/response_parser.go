// File: protocol/response_parser.go
// Author: momentics <momentics@gmail.com>
//
// Incremental HTTP/1.1 response parser. Bytes are pushed in arbitrary chunks;
// the parser never reads from a socket itself.

package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/momentics/hioload-fetch/api"
)

// ParseState is the framing state of a ResponseParser.
type ParseState int

const (
	StateHeaders ParseState = iota
	StateBody
)

func (s ParseState) String() string {
	if s == StateBody {
		return "body"
	}
	return "headers"
}

// DecodeMode selects how a finished body is materialized.
type DecodeMode int

const (
	// DecodeJSON unmarshals complete, non-empty bodies into an any value.
	DecodeJSON DecodeMode = iota
	// DecodeRaw keeps the body as bytes.
	DecodeRaw
)

func (m DecodeMode) String() string {
	if m == DecodeRaw {
		return "raw"
	}
	return "json"
}

// ParseDecodeMode maps "json" or "raw" to a DecodeMode.
func ParseDecodeMode(s string) (DecodeMode, error) {
	switch strings.ToLower(s) {
	case "json", "":
		return DecodeJSON, nil
	case "raw":
		return DecodeRaw, nil
	}
	return DecodeJSON, fmt.Errorf("unknown decode mode %q", s)
}

var (
	separator        = []byte("\r\n\r\n")
	crlf             = []byte("\r\n")
	contentLengthKey = []byte("Content-Length:")
	transferEncKey   = []byte("Transfer-Encoding:")
)

// ResponseParser frames a response by its blank-line separator and the first
// Content-Length header. The zero value is ready to use.
type ResponseParser struct {
	state     ParseState
	pending   []byte // bytes seen while in StateHeaders
	headers   []byte
	body      []byte
	length    int
	hasLength bool
	complete  bool
	err       error
}

// NewResponseParser returns a parser in StateHeaders.
func NewResponseParser() *ResponseParser {
	return &ResponseParser{}
}

// State returns the current framing state.
func (p *ResponseParser) State() ParseState { return p.state }

// Complete reports whether the declared body length has been received.
func (p *ResponseParser) Complete() bool { return p.complete }

// ContentLength returns the declared body length, if any was seen.
func (p *ResponseParser) ContentLength() (int, bool) { return p.length, p.hasLength }

// Feed appends data and advances the state machine. It returns true once the
// response is complete; further calls are no-ops. Framing errors are sticky.
func (p *ResponseParser) Feed(data []byte) (bool, error) {
	if p.err != nil {
		return false, p.err
	}
	if p.complete {
		return true, nil
	}
	switch p.state {
	case StateHeaders:
		// Only the tail of the previous buffer can start a separator.
		from := len(p.pending) - len(separator) + 1
		if from < 0 {
			from = 0
		}
		p.pending = append(p.pending, data...)
		i := bytes.Index(p.pending[from:], separator)
		if i < 0 {
			return false, nil
		}
		i += from
		p.headers = p.pending[:i]
		rest := p.pending[i+len(separator):]
		p.pending = nil
		if err := p.scanHeaders(); err != nil {
			p.err = api.NewError(api.KindFraming, err)
			return false, p.err
		}
		p.state = StateBody
		p.appendBody(rest)
	case StateBody:
		p.appendBody(data)
	}
	return p.complete, nil
}

func (p *ResponseParser) scanHeaders() error {
	for _, line := range bytes.Split(p.headers, crlf) {
		if !p.hasLength && bytes.HasPrefix(line, contentLengthKey) {
			v := strings.TrimSpace(string(line[len(contentLengthKey):]))
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("%w: %q", api.ErrBadContentLength, v)
			}
			p.length, p.hasLength = n, true
		}
		if bytes.HasPrefix(line, transferEncKey) &&
			bytes.Contains(bytes.ToLower(line[len(transferEncKey):]), []byte("chunked")) {
			return api.ErrChunkedUnsupported
		}
	}
	return nil
}

func (p *ResponseParser) appendBody(b []byte) {
	p.body = append(p.body, b...)
	if p.hasLength && len(p.body) >= p.length {
		p.body = p.body[:p.length]
		p.complete = true
	}
}

// Finalize builds the Response from what has been accumulated. It is called
// on completion or after the peer closed the connection; in the latter case a
// response without its full declared body is returned with Partial set. In
// JSON mode a partial body is still decoded when it parses.
func (p *ResponseParser) Finalize(mode DecodeMode) (*api.Response, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.state == StateHeaders {
		return nil, api.NewError(api.KindFraming, api.ErrNoSeparator).
			WithContext("buffered", len(p.pending))
	}
	if !utf8.Valid(p.headers) {
		return nil, api.NewError(api.KindDecode, fmt.Errorf("header block is not valid UTF-8"))
	}
	resp := &api.Response{
		Body:    p.body,
		RawBody: p.body,
		Headers: string(p.headers),
		Partial: !p.complete,
	}
	if mode != DecodeJSON || len(p.body) == 0 {
		return resp, nil
	}
	var v any
	if err := json.Unmarshal(p.body, &v); err != nil {
		// A cut-off body stays raw.
		if p.complete {
			return nil, api.NewError(api.KindDecode, err)
		}
		return resp, nil
	}
	resp.Body = v
	return resp, nil
}
