package server

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReadRequest(t *testing.T) {
	raw := "POST /execute_json_script?debug=1 HTTP/1.1\r\n" +
		"Host: localhost\r\n" +
		"Content-Length: 2\r\n" +
		"\r\n" +
		"[]"
	req, err := ReadRequest(bufio.NewReader(strings.NewReader(raw)), 1024)
	if err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	if req.Method != "POST" {
		t.Errorf("Method = %q, want POST", req.Method)
	}
	if req.Path != "/execute_json_script" {
		t.Errorf("Path = %q", req.Path)
	}
	if req.RawQuery != "debug=1" {
		t.Errorf("RawQuery = %q", req.RawQuery)
	}
	if req.Proto != "HTTP/1.1" {
		t.Errorf("Proto = %q", req.Proto)
	}
	if got := req.Header.Get("host"); got != "localhost" {
		t.Errorf("Host header = %q", got)
	}
	if string(req.Body) != "[]" {
		t.Errorf("Body = %q", req.Body)
	}
	if got := req.Query().Get("debug"); got != "1" {
		t.Errorf("query debug = %q", got)
	}
}

func TestReadRequest_NoBody(t *testing.T) {
	raw := "GET /click?x=1&y=2 HTTP/1.0\r\n\r\n"
	req, err := ReadRequest(bufio.NewReader(strings.NewReader(raw)), 0)
	if err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	if req.Path != "/click" || req.RawQuery != "x=1&y=2" {
		t.Errorf("got path %q query %q", req.Path, req.RawQuery)
	}
	if req.Body != nil {
		t.Errorf("Body = %q, want nil", req.Body)
	}
}

func TestReadRequest_QuestionMarkInQuery(t *testing.T) {
	raw := "GET /find_element?type=text&value=why? HTTP/1.1\r\n\r\n"
	req, err := ReadRequest(bufio.NewReader(strings.NewReader(raw)), 0)
	if err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	if req.RawQuery != "type=text&value=why?" {
		t.Errorf("RawQuery = %q", req.RawQuery)
	}
}

func TestReadRequest_Errors(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		stage string
	}{
		{"two fields", "GET /status\r\n\r\n", "request line"},
		{"relative path", "GET status HTTP/1.1\r\n\r\n", "request line"},
		{"bad header", "GET /status HTTP/1.1\r\nno colon here\r\n\r\n", "headers"},
		{"bad length", "POST /input HTTP/1.1\r\nContent-Length: ten\r\n\r\n", "headers"},
		{"negative length", "POST /input HTTP/1.1\r\nContent-Length: -1\r\n\r\n", "headers"},
		{"too large", "POST /input HTTP/1.1\r\nContent-Length: 100\r\n\r\n", "body"},
		{"short body", "POST /input HTTP/1.1\r\nContent-Length: 10\r\n\r\nabc", "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRequest(bufio.NewReader(strings.NewReader(tt.raw)), 50)
			var pe *ProtocolError
			if !errors.As(err, &pe) {
				t.Fatalf("err = %v, want *ProtocolError", err)
			}
			if pe.Stage != tt.stage {
				t.Errorf("Stage = %q, want %q", pe.Stage, tt.stage)
			}
		})
	}
}

func TestReadRequest_EOF(t *testing.T) {
	_, err := ReadRequest(bufio.NewReader(strings.NewReader("")), 0)
	if !errors.Is(err, io.EOF) {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestResponseWrite(t *testing.T) {
	var b strings.Builder
	if err := text(404, "Not Found").Write(&b, "HTTP/1.0"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "HTTP/1.0 404 Not Found\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Length: 9\r\n" +
		"Connection: close\r\n" +
		"\r\n" +
		"Not Found"
	if b.String() != want {
		t.Errorf("got %q\nwant %q", b.String(), want)
	}
}
