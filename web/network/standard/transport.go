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

package standard

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/caiflower/tiny-httpd/pkg/logger"
	"github.com/caiflower/tiny-httpd/pkg/safego"
	"github.com/caiflower/tiny-httpd/web/network"
)

const acceptRetryDelay = 50 * time.Millisecond

// transporter serves every accepted connection on its own goroutine.
type transporter struct {
	options *network.Options
	logger  logger.ILog

	lock     sync.Mutex
	listener net.Listener
	closed   bool
	serving  bool
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewTransporter(options *network.Options) network.Transporter {
	ctx, cancel := context.WithCancel(context.Background())
	return &transporter{
		options: options,
		logger:  logger.DefaultLogger(),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

func (t *transporter) Listen() error {
	ln, err := net.Listen(t.options.NetworkOrDefault(), t.options.Addr)
	if err != nil {
		return err
	}
	t.lock.Lock()
	t.listener = ln
	t.lock.Unlock()
	t.logger.Info("[standard transporter] listening on %s", ln.Addr().String())
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
	if ln == nil || t.serving {
		t.lock.Unlock()
		return errors.New("standard transporter: not listening or already serving")
	}
	t.serving = true
	t.lock.Unlock()
	defer close(t.done)

	gate := t.options.Gate
	for {
		conn, err := ln.Accept()
		if err != nil {
			if t.isClosed() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			t.logger.Error("[standard transporter] accept failed. Error: %s", err.Error())
			time.Sleep(acceptRetryDelay)
			continue
		}

		if !gate.EnterContext(t.ctx) {
			// shut down while waiting for a slot
			_ = conn.Close()
			return nil
		}
		safego.Go(func() {
			defer gate.Leave()
			onConn(t.ctx, conn)
		})
	}
}

func (t *transporter) isClosed() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.closed
}

// Shutdown stops accepting. Connections already handed out run to completion.
func (t *transporter) Shutdown(ctx context.Context) error {
	t.lock.Lock()
	if t.closed {
		t.lock.Unlock()
		return nil
	}
	t.closed = true
	ln, serving := t.listener, t.serving
	t.lock.Unlock()

	t.cancel()
	if ln == nil {
		return nil
	}
	if err := ln.Close(); err != nil {
		return err
	}
	if !serving {
		return nil
	}

	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
