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

package netpoll

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/caiflower/tiny-httpd/pkg/e"
	"github.com/caiflower/tiny-httpd/pkg/logger"
	"github.com/caiflower/tiny-httpd/web/network"
	"github.com/cloudwego/netpoll"
)

type Options struct {
	network.Options
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// transporter runs the supervisor inside netpoll's OnRequest, so a connection
// is never handled by two goroutines at once.
type transporter struct {
	options *Options
	logger  logger.ILog

	lock      sync.Mutex
	listener  netpoll.Listener
	eventLoop netpoll.EventLoop
}

func NewTransporter(options *Options) network.Transporter {
	return &transporter{
		options: options,
		logger:  logger.DefaultLogger(),
	}
}

func (t *transporter) Listen() error {
	ln, err := netpoll.CreateListener(t.options.NetworkOrDefault(), t.options.Addr)
	if err != nil {
		return err
	}
	t.lock.Lock()
	t.listener = ln
	t.lock.Unlock()
	t.logger.Info("[netpoll transporter] listening on %s", ln.Addr().String())
	return nil
}

func (t *transporter) Addr() net.Addr {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

func (t *transporter) Serve(onConn network.OnConnect) error {
	t.lock.Lock()
	ln := t.listener
	t.lock.Unlock()
	if ln == nil {
		return errors.New("netpoll transporter: Serve called before Listen")
	}

	gate := t.options.Gate
	onRequest := func(ctx context.Context, connection netpoll.Connection) error {
		defer e.OnError("netpoll onRequest")
		gate.Enter()
		defer gate.Leave()
		onConn(ctx, connection)
		return nil
	}

	opts := []netpoll.Option{}
	if t.options.ReadTimeout > 0 {
		opts = append(opts, netpoll.WithReadTimeout(t.options.ReadTimeout))
	}
	if t.options.WriteTimeout > 0 {
		opts = append(opts, netpoll.WithWriteTimeout(t.options.WriteTimeout))
	}

	eventLoop, err := netpoll.NewEventLoop(onRequest, opts...)
	if err != nil {
		return err
	}

	t.lock.Lock()
	t.eventLoop = eventLoop
	t.lock.Unlock()

	return eventLoop.Serve(ln)
}

func (t *transporter) Shutdown(ctx context.Context) error {
	t.lock.Lock()
	eventLoop, ln := t.eventLoop, t.listener
	t.eventLoop, t.listener = nil, nil
	t.lock.Unlock()

	if eventLoop != nil {
		return eventLoop.Shutdown(ctx)
	}
	if ln != nil {
		return ln.Close()
	}
	return nil
}
