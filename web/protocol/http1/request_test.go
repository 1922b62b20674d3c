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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *Request
		wantErr error
	}{
		{
			name: "root",
			raw:  "GET / HTTP/1.1\r\nHost: localhost:4221\r\n\r\n",
			want: &Request{Method: "GET", Path: "/", Headers: map[string]string{"host": "localhost:4221"}},
		},
		{
			name: "lower-cased keys and verbatim values",
			raw:  "GET /user-agent HTTP/1.1\r\nUser-Agent: Foo/1.0 (X: y)\r\nACCEPT: */*\r\n\r\n",
			want: &Request{Method: "GET", Path: "/user-agent", Headers: map[string]string{
				"user-agent": "Foo/1.0 (X: y)",
				"accept":     "*/*",
			}},
		},
		{
			name: "last duplicate wins",
			raw:  "GET / HTTP/1.1\r\nX-A: 1\r\nx-a: 2\r\n\r\n",
			want: &Request{Method: "GET", Path: "/", Headers: map[string]string{"x-a": "2"}},
		},
		{
			name: "malformed header line skipped",
			raw:  "GET / HTTP/1.1\r\nX-Bad-Header-No-Colon\r\nUser-Agent: curl\r\nX-Also-Bad:novalue\r\nHost: h\r\n\r\n",
			want: &Request{Method: "GET", Path: "/", Headers: map[string]string{"user-agent": "curl", "host": "h"}},
		},
		{
			name: "single line body",
			raw:  "POST /files/a HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello",
			want: &Request{Method: "POST", Path: "/files/a", Headers: map[string]string{"content-length": "5"}, Body: "hello"},
		},
		{
			name: "only the first body line is kept",
			raw:  "POST /files/a HTTP/1.1\r\n\r\nline1\r\nline2",
			want: &Request{Method: "POST", Path: "/files/a", Headers: map[string]string{}, Body: "line1"},
		},
		{
			name: "extra start line tokens ignored",
			raw:  "GET /echo/a b HTTP/1.1\r\n\r\n",
			want: &Request{Method: "GET", Path: "/echo/a", Headers: map[string]string{}},
		},
		{
			name: "start line without version",
			raw:  "DELETE /files/x\r\n\r\n",
			want: &Request{Method: "DELETE", Path: "/files/x", Headers: map[string]string{}},
		},
		{
			name:    "empty input",
			raw:     "",
			wantErr: ErrMalformedStartLine,
		},
		{
			name:    "single token start line",
			raw:     "GET\r\n\r\n",
			wantErr: ErrMalformedStartLine,
		},
		{
			name:    "no header terminator",
			raw:     "GET / HTTP/1.1\r\nHost: h\r\n",
			wantErr: ErrMissingBody,
		},
		{
			name:    "no line break at all",
			raw:     "GET / HTTP/1.1",
			wantErr: ErrHeaderTerminator,
		},
		{
			name:    "headers cut mid line",
			raw:     "GET / HTTP/1.1\r\nHost: h",
			wantErr: ErrHeaderTerminator,
		},
		{
			name:    "invalid utf-8",
			raw:     "GET /\xff HTTP/1.1\r\n\r\n",
			wantErr: ErrInvalidEncoding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRequest([]byte(tt.raw))
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "want %v, got %v", tt.wantErr, err)
				assert.Nil(t, got)
				return
			}
			assert.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseRequest() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRequestHeader(t *testing.T) {
	req, err := ParseRequest([]byte("GET / HTTP/1.1\r\nUser-Agent: curl/8.0\r\n\r\n"))
	assert.NoError(t, err)

	v, ok := req.Header("User-Agent")
	assert.True(t, ok)
	assert.Equal(t, "curl/8.0", v)

	_, ok = req.Header("Accept")
	assert.False(t, ok)
}
