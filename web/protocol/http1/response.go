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
	"io"
	"strconv"
	"strings"
)

const (
	StatusOK               = "200 OK"
	StatusCreated          = "201 Created"
	StatusForbidden        = "403 Forbidden"
	StatusNotFound         = "404 Not Found"
	StatusMethodNotAllowed = "405 Method Not Allowed"

	ContentTypeText   = "text/plain"
	ContentTypeBinary = "application/octet-stream"

	protocolVersion = "HTTP/1.1 "
)

// Response is a status line plus an optional typed body. A response without a
// body carries no headers at all.
type Response struct {
	Status      string
	ContentType string
	Body        []byte
	hasBody     bool
}

func NewEmptyResponse(status string) *Response {
	return &Response{Status: status}
}

// NewBodyResponse always emits Content-Length and Content-Type, even for an empty body.
func NewBodyResponse(status, contentType string, body []byte) *Response {
	return &Response{Status: status, ContentType: contentType, Body: body, hasBody: true}
}

func (resp *Response) HasBody() bool {
	return resp.hasBody
}

// Code returns the numeric part of the status line, e.g. "404".
func (resp *Response) Code() string {
	if i := strings.IndexByte(resp.Status, ' '); i > 0 {
		return resp.Status[:i]
	}
	return resp.Status
}

// Bytes renders the exact wire frame.
func (resp *Response) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(len(protocolVersion) + len(resp.Status) + 64 + len(resp.Body))

	buf.WriteString(protocolVersion)
	buf.WriteString(resp.Status)
	buf.WriteString(crlf)
	if resp.hasBody {
		buf.WriteString("Content-Length: ")
		buf.WriteString(strconv.Itoa(len(resp.Body)))
		buf.WriteString(crlf)
		buf.WriteString("Content-Type: ")
		buf.WriteString(resp.ContentType)
		buf.WriteString(crlf)
	}
	buf.WriteString(crlf)
	buf.Write(resp.Body)

	return buf.Bytes()
}

// WriteTo writes the frame with a single Write call.
func (resp *Response) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(resp.Bytes())
	return int64(n), err
}
