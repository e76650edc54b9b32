package server

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
)

// Content types used by the routes.
const (
	ContentText = "text/plain; charset=utf-8"
	ContentJSON = "application/json"
	ContentXML  = "application/xml; charset=utf-8"
	ContentJPEG = "image/jpeg"
)

// Response is a status, a content type and a body.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

func text(status int, body string) Response {
	return Response{Status: status, ContentType: ContentText, Body: []byte(body)}
}

func jsonResponse(status int, v interface{}) Response {
	b, err := json.Marshal(v)
	if err != nil {
		return text(http.StatusInternalServerError, "Internal Server Error")
	}
	return Response{Status: status, ContentType: ContentJSON, Body: b}
}

// Write frames resp for proto: status line, Content-Type, Content-Length,
// Connection: close, blank line, body.
func (resp Response) Write(w io.Writer, proto string) error {
	if proto == "" {
		proto = "HTTP/1.1"
	}
	reason := http.StatusText(resp.Status)
	if reason == "" {
		reason = "Unknown"
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s %d %s\r\n", proto, resp.Status, reason)
	fmt.Fprintf(bw, "Content-Type: %s\r\n", resp.ContentType)
	fmt.Fprintf(bw, "Content-Length: %d\r\n", len(resp.Body))
	bw.WriteString("Connection: close\r\n\r\n")
	bw.Write(resp.Body)
	return bw.Flush()
}
