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
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/caiflower/tiny-httpd/pkg/logger"
)

const (
	DefaultReadBufferSize = 2048
	DefaultMaxHeaderBytes = 8192
	DefaultMaxBodySize    = 10 << 20

	ReadModeSingle   = "single"
	ReadModeBuffered = "buffered"
)

var headerEnd = []byte("\r\n\r\n")

type Reader interface {
	ReadRequest(r io.Reader) (*Request, error)
}

// NewReader returns a SingleReader unless mode is ReadModeBuffered.
func NewReader(mode string, readBufferSize, maxHeaderBytes, maxBodySize int) Reader {
	if mode == ReadModeBuffered {
		return &BufferedReader{MaxHeaderBytes: maxHeaderBytes, MaxBodySize: maxBodySize}
	}
	return &SingleReader{Size: readBufferSize}
}

// SingleReader issues exactly one Read into a fixed buffer. A request larger than
// the buffer is truncated and will most likely fail to parse.
type SingleReader struct {
	Size int
}

func (sr *SingleReader) ReadRequest(r io.Reader) (*Request, error) {
	size := sr.Size
	if size <= 0 {
		size = DefaultReadBufferSize
	}

	buf := make([]byte, size)
	n, err := r.Read(buf)
	if n == 0 {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	logger.Debug("[http1] Successfully read %d bytes.", n)
	logger.Trace("[http1] Raw request:\n======\n%s\n======", buf[:n])

	return ParseRequest(buf[:n])
}

// BufferedReader reads until the header terminator, then exactly Content-Length
// body bytes, so bodies may span lines.
type BufferedReader struct {
	MaxHeaderBytes int
	MaxBodySize    int
}

func (br *BufferedReader) ReadRequest(r io.Reader) (*Request, error) {
	maxHeader := br.MaxHeaderBytes
	if maxHeader <= 0 {
		maxHeader = DefaultMaxHeaderBytes
	}
	maxBody := br.MaxBodySize
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}

	reader := bufio.NewReader(r)
	head := bytes.Buffer{}
	for !bytes.HasSuffix(head.Bytes(), headerEnd) {
		line, err := reader.ReadSlice('\n')
		head.Write(line)
		if head.Len() > maxHeader {
			return nil, fmt.Errorf("%w: more than %d bytes", ErrHeaderTooLarge, maxHeader)
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err != nil {
			if head.Len() == 0 {
				return nil, fmt.Errorf("%w: %v", ErrRead, err)
			}
			return nil, fmt.Errorf("%w: %v", ErrHeaderTerminator, err)
		}
	}
	logger.Debug("[http1] Successfully read %d header bytes.", head.Len())

	if !utf8.Valid(head.Bytes()) {
		return nil, ErrInvalidEncoding
	}
	req, _, err := parseHead(strings.Split(head.String(), crlf))
	if err != nil {
		return nil, err
	}

	length := 0
	if v, ok := req.Headers["content-length"]; ok {
		length, err = strconv.Atoi(strings.TrimSpace(v))
		if err != nil || length < 0 {
			return nil, fmt.Errorf("%w: %q", ErrContentLength, v)
		}
	}
	if length > maxBody {
		return nil, fmt.Errorf("%w: %d > %d", ErrBodyTooLarge, length, maxBody)
	}

	body := make([]byte, length)
	if _, err = io.ReadFull(reader, body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingBody, err)
	}
	if !utf8.Valid(body) {
		return nil, ErrInvalidEncoding
	}
	req.Body = string(body)

	return req, nil
}
