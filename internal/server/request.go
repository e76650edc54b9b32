package server

import (
	"bufio"
	"fmt"
	"io"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
)

// Request is one parsed control request.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Proto    string
	Header   textproto.MIMEHeader
	Body     []byte
}

// Query parses the raw query string. Malformed pairs are dropped.
func (r *Request) Query() url.Values {
	v, _ := url.ParseQuery(r.RawQuery)
	return v
}

// ProtocolError reports a request that could not be framed. The
// connection is closed without a response.
type ProtocolError struct {
	Stage  string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("malformed request %s: %s", e.Stage, e.Reason)
}

// ReadRequest reads one request: request line, headers up to the blank
// line, then exactly Content-Length body bytes.
func ReadRequest(br *bufio.Reader, maxBody int64) (*Request, error) {
	tp := textproto.NewReader(br)

	line, err := tp.ReadLine()
	if err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, &ProtocolError{Stage: "request line", Reason: err.Error()}
	}
	parts := strings.Fields(line)
	if len(parts) != 3 {
		return nil, &ProtocolError{Stage: "request line", Reason: fmt.Sprintf("expected METHOD PATH PROTOCOL, got %q", line)}
	}
	req := &Request{Method: strings.ToUpper(parts[0]), Proto: parts[2]}
	req.Path, req.RawQuery, _ = strings.Cut(parts[1], "?")
	if !strings.HasPrefix(req.Path, "/") {
		return nil, &ProtocolError{Stage: "request line", Reason: fmt.Sprintf("path %q must start with /", req.Path)}
	}

	header, err := tp.ReadMIMEHeader()
	if err != nil {
		return nil, &ProtocolError{Stage: "headers", Reason: err.Error()}
	}
	req.Header = header

	cl := header.Get("Content-Length")
	if cl == "" {
		return req, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
	if err != nil || n < 0 {
		return nil, &ProtocolError{Stage: "headers", Reason: fmt.Sprintf("invalid Content-Length %q", cl)}
	}
	if maxBody > 0 && n > maxBody {
		return nil, &ProtocolError{Stage: "body", Reason: fmt.Sprintf("Content-Length %d exceeds limit %d", n, maxBody)}
	}
	if n > 0 {
		req.Body = make([]byte, n)
		if _, err := io.ReadFull(br, req.Body); err != nil {
			return nil, &ProtocolError{Stage: "body", Reason: err.Error()}
		}
	}
	return req, nil
}
