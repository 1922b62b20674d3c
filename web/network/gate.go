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

package network

import (
	"context"
	"sync/atomic"

	"github.com/caiflower/tiny-httpd/pkg/limiter"
)

// Gate admits connections. maxConns bounds connections in flight and qps bounds
// the accept rate; zero disables either bound. A nil *Gate admits everything.
type Gate struct {
	conns  limiter.ReleasableLimiter
	rate   limiter.Limiter
	active int64
}

func NewGate(maxConns, qps int) *Gate {
	g := &Gate{}
	if maxConns > 0 {
		g.conns = limiter.NewFixedWindow(maxConns)
	}
	if qps > 0 {
		g.rate = limiter.NewXTokenBucket(qps, qps)
	}
	return g
}

// Enter blocks until the connection may be served. Every Enter needs a Leave.
func (g *Gate) Enter() {
	g.EnterContext(context.Background())
}

// EnterContext is Enter that gives up when ctx is done. Leave is only owed when it returns true.
func (g *Gate) EnterContext(ctx context.Context) bool {
	if g == nil {
		return true
	}
	if g.rate != nil && !g.rate.TakeTokenWithContext(ctx) {
		return false
	}
	if g.conns != nil && !g.conns.TakeTokenWithContext(ctx) {
		return false
	}
	atomic.AddInt64(&g.active, 1)
	return true
}

func (g *Gate) Leave() {
	if g == nil {
		return
	}
	atomic.AddInt64(&g.active, -1)
	if g.conns != nil {
		g.conns.ReleaseToken()
	}
}

// Active is the number of admitted connections that have not left.
func (g *Gate) Active() int64 {
	if g == nil {
		return 0
	}
	return atomic.LoadInt64(&g.active)
}
