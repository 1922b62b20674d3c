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

package server

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/caiflower/tiny-httpd/pkg/e"
	golocalv1 "github.com/caiflower/tiny-httpd/pkg/golocal/v1"
	"github.com/caiflower/tiny-httpd/pkg/tools"
	"github.com/caiflower/tiny-httpd/web/protocol/http1"
)

type connState int

const (
	stateAccepted connState = iota
	stateReading
	stateParsed
	stateParseFailed
	stateDispatched
	stateResponding
	stateClosed
)

var connStateNames = [...]string{
	stateAccepted:    "accepted",
	stateReading:     "reading",
	stateParsed:      "parsed",
	stateParseFailed: "parse-failed",
	stateDispatched:  "dispatched",
	stateResponding:  "responding",
	stateClosed:      "closed",
}

func (cs connState) String() string {
	if int(cs) < len(connStateNames) {
		return connStateNames[cs]
	}
	return "unknown"
}

// serveConn supervises one connection: at most one request, at most one
// response, and the connection is always closed on return.
func (s *HttpServer) serveConn(_ context.Context, conn net.Conn) {
	golocalv1.PutTraceID(tools.UUID())
	defer golocalv1.Clean()

	var (
		start  = time.Now()
		remote = remoteAddr(conn)
		state  = stateAccepted
	)
	setState := func(next connState) {
		s.logger.Trace("[conn] %s: %s -> %s", remote, state, next)
		state = next
	}

	atomic.AddInt64(&s.active, 1)
	s.metric.activeConnections.Inc()
	defer func() {
		if err := conn.Close(); err != nil {
			s.logger.Debug("[conn] close %s: %s", remote, err.Error())
		}
		atomic.AddInt64(&s.active, -1)
		s.metric.activeConnections.Dec()
		s.logger.Debug("[conn] closed %s in state %s after %s", remote, state, time.Since(start))
		setState(stateClosed)
	}()
	defer e.OnErrorFunc("serveConn", func(r interface{}) {
		s.drop(stagePanic)
	})

	s.logger.Info("[conn] accepted new connection from %s", remote)

	if s.cfg.ReadTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
			s.logger.Debug("[conn] set read deadline: %s", err.Error())
		}
	}

	setState(stateReading)
	req, err := s.reader.ReadRequest(conn)
	if err != nil {
		setState(stateParseFailed)
		if errors.Is(err, http1.ErrRead) {
			s.logger.Error("[conn] reading from %s failed. Error: %s", remote, err.Error())
			s.drop(stageRead)
		} else {
			s.logger.Error("[conn] parsing request from %s failed. Error: %s", remote, err.Error())
			s.drop(stageParse)
		}
		return
	}
	setState(stateParsed)
	s.logger.Debug("[conn] parsed request %s", tools.LazyJson{V: req})

	setState(stateDispatched)
	route, resp, err := s.handler.Serve(req)
	if err != nil {
		s.logger.Error("[conn] %s %s (%s) failed. Error: %s", req.Method, req.Path, route, err.Error())
		s.drop(stageHandle)
		return
	}

	setState(stateResponding)
	if s.cfg.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
			s.logger.Debug("[conn] set write deadline: %s", err.Error())
		}
	}
	if _, err = resp.WriteTo(conn); err != nil {
		s.logger.Error("[conn] writing response to %s failed. Error: %s", remote, err.Error())
		s.drop(stageWrite)
		return
	}

	atomic.AddUint64(&s.served, 1)
	s.metric.saveMetric(resp.Code(), req.Method, route.String(), time.Since(start))
	s.logger.Info("[conn] %s %s -> %s", req.Method, req.Path, resp.Status)
}

func (s *HttpServer) drop(stage string) {
	atomic.AddUint64(&s.dropped, 1)
	s.metric.dropped(stage)
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "unknown"
}
