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

import "errors"

// Every error below is fatal for the connection: nothing is written back.
var (
	ErrRead               = errors.New("read request failed")
	ErrInvalidEncoding    = errors.New("request is not valid utf-8")
	ErrMalformedStartLine = errors.New("malformed start line")
	ErrHeaderTerminator   = errors.New("request truncated before header terminator")
	ErrMissingBody        = errors.New("request truncated before body")
	ErrHeaderTooLarge     = errors.New("request header too large")
	ErrBodyTooLarge       = errors.New("request body too large")
	ErrContentLength      = errors.New("invalid Content-Length")
)
