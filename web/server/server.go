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
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/caiflower/tiny-httpd/pkg/cache"
	"github.com/caiflower/tiny-httpd/pkg/logger"
	"github.com/caiflower/tiny-httpd/web/network"
	"github.com/caiflower/tiny-httpd/web/network/netpoll"
	"github.com/caiflower/tiny-httpd/web/network/standard"
	"github.com/caiflower/tiny-httpd/web/protocol/http1"
	"github.com/caiflower/tiny-httpd/web/router"
	"github.com/caiflower/tiny-httpd/web/server/config"
)

const shutdownTimeout = 5 * time.Second

type HttpServer struct {
	// 64位原子字段放在最前，保证32位平台对齐
	served  uint64
	dropped uint64
	active  int64

	cfg         *config.Config
	logger      logger.ILog
	handler     *router.Handler
	reader      http1.Reader
	gate        *network.Gate
	transporter network.Transporter
	metric      *HttpMetric
}

// NewHttpServer captures cfg once. Later changes to cfg do not reach the server.
func NewHttpServer(cfg config.Config) *HttpServer {
	var fileCache *cache.FileCache
	if cfg.FileCache.Enable {
		fileCache = cache.NewFileCache(cfg.FileCache.TTL)
	}

	s := &HttpServer{
		cfg:    &cfg,
		logger: logger.DefaultLogger(),
		reader: http1.NewReader(cfg.ReadMode, cfg.ReadBufferSize, cfg.MaxHeaderBytes, cfg.MaxBodySize),
		gate:   network.NewGate(cfg.MaxConns, cfg.Qps),
		metric: NewHttpMetric(cfg.Name),
	}
	s.handler = router.NewHandler(router.HandlerCfg{
		Directory:  cfg.Directory,
		StrictPath: cfg.StrictPath,
	}, fileCache, s.logger)

	options := network.Options{Network: cfg.Network, Addr: cfg.Addr, Gate: s.gate}
	if cfg.Mode == network.ModeNetpoll {
		s.transporter = netpoll.NewTransporter(&netpoll.Options{
			Options:      options,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		})
	} else {
		s.transporter = standard.NewTransporter(&options)
	}

	return s
}

func (s *HttpServer) Name() string {
	if s.cfg.Mode == network.ModeNetpoll {
		return fmt.Sprintf("NETPOLL_HTTP_SERVER:%s", s.cfg.Name)
	}
	return fmt.Sprintf("HTTP_SERVER:%s", s.cfg.Name)
}

// Start binds synchronously so a bad address is reported to the caller, then serves in the background.
func (s *HttpServer) Start() error {
	if err := s.transporter.Listen(); err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}

	s.logger.Info(
		"\n***************************** http server startup ***********************************************\n"+
			"************* web service [name:%s] [mode:%s] [directory:%s] listening on %s *********\n"+
			"*************************************************************************************************",
		s.cfg.Name, s.cfg.Mode, s.handler.Directory(), s.transporter.Addr())

	go func() {
		if err := s.transporter.Serve(s.serveConn); err != nil {
			s.logger.Error("[server] serve failed. Error: %s", err.Error())
		}
	}()
	return nil
}

// Close stops accepting. Connections in flight finish on their own.
func (s *HttpServer) Close() {
	s.logger.Info("      **** http server shutdown, wait at most %s ****", shutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.transporter.Shutdown(ctx); err != nil {
		s.logger.Warn(" **** http server shutdown error **** \n"+
			"**** error:%s ****", err.Error())
		return
	}
	s.logger.Info(" **** http server gracefully shutdown ****")
}

func (s *HttpServer) Addr() net.Addr {
	return s.transporter.Addr()
}

func (s *HttpServer) Metric() *HttpMetric {
	return s.metric
}

type Stats struct {
	Active  int64
	Served  uint64
	Dropped uint64
}

func (s *HttpServer) Stats() Stats {
	return Stats{
		Active:  atomic.LoadInt64(&s.active),
		Served:  atomic.LoadUint64(&s.served),
		Dropped: atomic.LoadUint64(&s.dropped),
	}
}
