// File: protocol/request.go
// Author: momentics <momentics@gmail.com>

package protocol

// EncodeRequest builds the single-write GET request for requestURI on host.
// No headers other than Host are sent.
func EncodeRequest(host, requestURI string) []byte {
	if requestURI == "" {
		requestURI = "/"
	}
	buf := make([]byte, 0, len(host)+len(requestURI)+32)
	buf = append(buf, "GET "...)
	buf = append(buf, requestURI...)
	buf = append(buf, " HTTP/1.1\r\nHost: "...)
	buf = append(buf, host...)
	buf = append(buf, "\r\n\r\n"...)
	return buf
}
