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
package router

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/caiflower/tiny-httpd/pkg/cache"
	"github.com/caiflower/tiny-httpd/pkg/logger"
	"github.com/caiflower/tiny-httpd/web/protocol/http1"
)

type HandlerCfg struct {
	Directory  string
	StrictPath bool
}

type Handler struct {
	directory  string
	strictPath bool
	fileCache  *cache.FileCache
	logger     logger.ILog
}

// NewHandler copies cfg; fileCache may be nil.
func NewHandler(cfg HandlerCfg, fileCache *cache.FileCache, logger logger.ILog) *Handler {
	directory := cfg.Directory
	if directory == "" {
		directory = "."
	}
	return &Handler{
		directory:  directory,
		strictPath: cfg.StrictPath,
		fileCache:  fileCache,
		logger:     logger,
	}
}

func (h *Handler) Directory() string {
	return h.directory
}

// Serve answers req. A non-nil error means the connection must be dropped without a response.
func (h *Handler) Serve(req *http1.Request) (Route, *http1.Response, error) {
	route := Dispatch(req.Method, req.Path)

	var (
		resp *http1.Response
		err  error
	)
	switch route {
	case RouteRoot:
		resp = http1.NewEmptyResponse(http1.StatusOK)
	case RouteEcho:
		resp = h.echo(req)
	case RouteUserAgent:
		resp = h.userAgent(req)
	case RouteFileGet:
		resp, err = h.readFile(req)
	case RouteFilePost:
		resp, err = h.writeFile(req)
	case RouteMethodNotAllowed:
		resp = http1.NewEmptyResponse(http1.StatusMethodNotAllowed)
	default:
		resp = http1.NewEmptyResponse(http1.StatusNotFound)
	}

	return route, resp, err
}

// echo returns the raw path remainder, no url decoding.
func (h *Handler) echo(req *http1.Request) *http1.Response {
	value := strings.TrimPrefix(req.Path, echoPrefix)
	return http1.NewBodyResponse(http1.StatusOK, http1.ContentTypeText, []byte(value))
}

func (h *Handler) userAgent(req *http1.Request) *http1.Response {
	agent, ok := req.Header("user-agent")
	if !ok {
		return http1.NewEmptyResponse(http1.StatusNotFound)
	}
	return http1.NewBodyResponse(http1.StatusOK, http1.ContentTypeText, []byte(agent))
}

func (h *Handler) readFile(req *http1.Request) (*http1.Response, error) {
	path, forbidden, err := h.resolve(req.Path)
	if err != nil {
		return nil, err
	}
	if forbidden {
		return http1.NewEmptyResponse(http1.StatusForbidden), nil
	}

	if content, ok := h.fileCache.Get(path); ok {
		h.logger.Debug("[router] File cache hit. path=%s", path)
		return http1.NewBodyResponse(http1.StatusOK, http1.ContentTypeBinary, content), nil
	}

	gen := h.fileCache.Generation(path)
	if _, err = os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return http1.NewEmptyResponse(http1.StatusNotFound), nil
		}
		return nil, &FatalError{Op: "stat", Path: path, Err: err}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &FatalError{Op: "read", Path: path, Err: err}
	}
	if !utf8.Valid(content) {
		return nil, &FatalError{Op: "read", Path: path, Err: ErrBinaryFile}
	}

	if h.fileCache != nil && !h.fileCache.PutIfUnchanged(path, content, gen) {
		h.logger.Debug("[router] Skip caching, file changed while reading. path=%s", path)
	}
	return http1.NewBodyResponse(http1.StatusOK, http1.ContentTypeBinary, content), nil
}

// writeFile truncates or creates the target. Concurrent writers race, the last one wins.
func (h *Handler) writeFile(req *http1.Request) (*http1.Response, error) {
	path, forbidden, err := h.resolve(req.Path)
	if err != nil {
		return nil, err
	}
	if forbidden {
		return http1.NewEmptyResponse(http1.StatusForbidden), nil
	}

	// a read that raced with this write must not repopulate the cache
	h.fileCache.Invalidate(path)
	defer h.fileCache.Invalidate(path)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, &FatalError{Op: "open", Path: path, Err: err}
	}
	if _, err = f.WriteString(req.Body); err != nil {
		_ = f.Close()
		return nil, &FatalError{Op: "write", Path: path, Err: err}
	}
	if err = f.Close(); err != nil {
		return nil, &FatalError{Op: "close", Path: path, Err: err}
	}

	h.logger.Debug("[router] Wrote %d bytes to %s.", len(req.Body), path)
	return http1.NewEmptyResponse(http1.StatusCreated), nil
}

// resolve maps /files/<name> beneath the serving directory. Names with a ".."
// element are only logged, unless strictPath asks for them to be refused.
func (h *Handler) resolve(urlPath string) (path string, forbidden bool, err error) {
	if !strings.HasPrefix(urlPath, filesPrefix) {
		return "", false, &FatalError{Op: "resolve", Path: urlPath, Err: ErrBadFilePath}
	}

	name := strings.TrimPrefix(urlPath, filesPrefix)
	if hasDotDot(name) {
		if h.strictPath {
			h.logger.Warn("[router] Refuse path traversal. path=%s", urlPath)
			return "", true, nil
		}
		h.logger.Warn("[router] Path escapes serving directory. path=%s directory=%s", urlPath, h.directory)
	}

	return filepath.Join(h.directory, name), false, nil
}

func hasDotDot(name string) bool {
	for _, elem := range strings.Split(name, "/") {
		if elem == ".." {
			return true
		}
	}
	return false
}
