/*
 * Copyright 2024 caiflower Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package http1

import (
	"bytes"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader hands out at most n bytes per Read.
type chunkReader struct {
	r io.Reader
	n int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(p) > c.n {
		p = p[:c.n]
	}
	return c.r.Read(p)
}

func TestSingleReader(t *testing.T) {
	sr := &SingleReader{Size: DefaultReadBufferSize}
	req, err := sr.ReadRequest(strings.NewReader("GET /echo/abc HTTP/1.1\r\nHost: h\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/echo/abc", req.Path)
}

func TestSingleReaderReadsOnce(t *testing.T) {
	// the second chunk is never read, so the header terminator is missing
	sr := &SingleReader{Size: DefaultReadBufferSize}
	_, err := sr.ReadRequest(&chunkReader{r: strings.NewReader("GET / HTTP/1.1\r\nHost: h\r\n\r\n"), n: 20})
	assert.True(t, errors.Is(err, ErrHeaderTerminator), "got %v", err)
}

func TestSingleReaderTruncates(t *testing.T) {
	sr := &SingleReader{Size: 32}
	raw := "GET / HTTP/1.1\r\nUser-Agent: " + strings.Repeat("a", 64) + "\r\n\r\n"
	_, err := sr.ReadRequest(strings.NewReader(raw))
	assert.True(t, errors.Is(err, ErrHeaderTerminator), "got %v", err)
}

func TestSingleReaderEOF(t *testing.T) {
	sr := &SingleReader{}
	_, err := sr.ReadRequest(bytes.NewReader(nil))
	assert.True(t, errors.Is(err, ErrRead), "got %v", err)
}

func TestSingleReaderConnClosed(t *testing.T) {
	server, client := net.Pipe()
	_ = client.Close()

	sr := &SingleReader{}
	_, err := sr.ReadRequest(server)
	assert.True(t, errors.Is(err, ErrRead), "got %v", err)
}

func TestBufferedReaderMultiLineBody(t *testing.T) {
	body := "line1\r\nline2\r\n\r\nline4"
	raw := "POST /files/a HTTP/1.1\r\nContent-Length: 21\r\n\r\n" + body
	br := &BufferedReader{}

	req, err := br.ReadRequest(&chunkReader{r: strings.NewReader(raw), n: 7})
	require.NoError(t, err)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, body, req.Body)
}

func TestBufferedReaderNoBody(t *testing.T) {
	br := &BufferedReader{}
	req, err := br.ReadRequest(strings.NewReader("GET / HTTP/1.1\r\nHost: h\r\n\r\ntrailing"))
	require.NoError(t, err)
	assert.Equal(t, "", req.Body)
	assert.Equal(t, "h", req.Headers["host"])
}

func TestBufferedReaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		reader  *BufferedReader
		raw     string
		wantErr error
	}{
		{name: "empty", reader: &BufferedReader{}, raw: "", wantErr: ErrRead},
		{name: "eof in headers", reader: &BufferedReader{}, raw: "GET / HTTP/1.1\r\nHost: h\r\n", wantErr: ErrHeaderTerminator},
		{name: "header too large", reader: &BufferedReader{MaxHeaderBytes: 32}, raw: "GET / HTTP/1.1\r\nX: " + strings.Repeat("a", 64) + "\r\n\r\n", wantErr: ErrHeaderTooLarge},
		{name: "body too large", reader: &BufferedReader{MaxBodySize: 4}, raw: "POST /files/a HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello", wantErr: ErrBodyTooLarge},
		{name: "bad content length", reader: &BufferedReader{}, raw: "POST /files/a HTTP/1.1\r\nContent-Length: abc\r\n\r\n", wantErr: ErrContentLength},
		{name: "negative content length", reader: &BufferedReader{}, raw: "POST /files/a HTTP/1.1\r\nContent-Length: -1\r\n\r\n", wantErr: ErrContentLength},
		{name: "short body", reader: &BufferedReader{}, raw: "POST /files/a HTTP/1.1\r\nContent-Length: 10\r\n\r\nhello", wantErr: ErrMissingBody},
		{name: "binary body", reader: &BufferedReader{}, raw: "POST /files/a HTTP/1.1\r\nContent-Length: 2\r\n\r\n\xff\xfe", wantErr: ErrInvalidEncoding},
		{name: "bad start line", reader: &BufferedReader{}, raw: "GET\r\n\r\n", wantErr: ErrMalformedStartLine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.reader.ReadRequest(strings.NewReader(tt.raw))
			assert.True(t, errors.Is(err, tt.wantErr), "want %v, got %v", tt.wantErr, err)
		})
	}
}

func TestBufferedReaderOverConn(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	go func() {
		_, _ = client.Write([]byte("POST /files/x HTTP/1.1\r\n"))
		time.Sleep(10 * time.Millisecond)
		_, _ = client.Write([]byte("Content-Length: 3\r\n\r\n"))
		time.Sleep(10 * time.Millisecond)
		_, _ = client.Write([]byte("a\nb"))
	}()

	req, err := (&BufferedReader{}).ReadRequest(server)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", req.Body)
	_ = client.Close()
}

func TestNewReader(t *testing.T) {
	assert.IsType(t, &SingleReader{}, NewReader(ReadModeSingle, 2048, 0, 0))
	assert.IsType(t, &SingleReader{}, NewReader("", 2048, 0, 0))
	assert.IsType(t, &BufferedReader{}, NewReader(ReadModeBuffered, 2048, 8192, 1024))
}
