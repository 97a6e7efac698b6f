// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Implements the HTTP/1.1 wire handling used by the fetch tasks: a request
// encoder and an incremental, I/O-free response parser framed by
// Content-Length.
//
// Chunked transfer-encoding, keep-alive and close-delimited framing are not
// supported. A chunked response is rejected as soon as its headers are seen.
package protocol
