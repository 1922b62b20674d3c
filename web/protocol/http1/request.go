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
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/caiflower/tiny-httpd/pkg/logger"
)

const (
	crlf            = "\r\n"
	headerSeparator = ": "
)

// Request is built once per connection and never mutated afterwards.
type Request struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	// keys are lower-cased, the last duplicate wins
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

// Header looks a header up case-insensitively.
func (r *Request) Header(name string) (string, bool) {
	v, ok := r.Headers[strings.ToLower(name)]
	return v, ok
}

// ParseRequest parses a request read in one piece. Lines are CR LF separated and the
// single line following the header terminator is taken as the whole body.
func ParseRequest(raw []byte) (*Request, error) {
	if !utf8.Valid(raw) {
		return nil, ErrInvalidEncoding
	}

	lines := strings.Split(string(raw), crlf)
	req, rest, err := parseHead(lines)
	if err != nil {
		return nil, err
	}

	if len(rest) == 0 {
		return nil, ErrMissingBody
	}
	req.Body = rest[0]
	return req, nil
}

// parseHead consumes the start line and the header lines up to and including the
// empty separator line, returning the lines that follow it.
func parseHead(lines []string) (*Request, []string, error) {
	if len(lines) == 0 {
		return nil, nil, ErrMalformedStartLine
	}

	tokens := strings.Split(lines[0], " ")
	if len(tokens) < 2 {
		return nil, nil, fmt.Errorf("%w: %q", ErrMalformedStartLine, lines[0])
	}

	req := &Request{
		Method:  tokens[0],
		Path:    tokens[1],
		Headers: make(map[string]string),
	}

	for i := 1; i < len(lines); i++ {
		line := lines[i]
		if line == "" {
			return req, lines[i+1:], nil
		}

		kv := strings.SplitN(line, headerSeparator, 2)
		if len(kv) != 2 {
			logger.Warn("[http1] Skip malformed header line %q.", line)
			continue
		}
		req.Headers[strings.ToLower(kv[0])] = kv[1]
	}

	return nil, nil, ErrHeaderTerminator
}
