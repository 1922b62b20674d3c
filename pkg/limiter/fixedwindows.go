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
package limiter

import (
	"context"
	"time"
)

// 固定窗口：最多同时持有concurrent个令牌，用完需ReleaseToken归还

type FixedWindowLimiter struct {
	concurrent chan struct{}
}

func NewFixedWindow(concurrent int) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		concurrent: make(chan struct{}, concurrent),
	}
}

func (l *FixedWindowLimiter) TakeToken() {
	l.concurrent <- struct{}{}
}

func (l *FixedWindowLimiter) TakeTokenNonBlocking() bool {
	select {
	case l.concurrent <- struct{}{}:
		return true
	default:
		return false
	}
}

func (l *FixedWindowLimiter) TakeTokenWithTimeout(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case l.concurrent <- struct{}{}:
		return true
	case <-timer.C:
		return false
	}
}

// TakeTokenWithContext waits for a token until ctx is done.
func (l *FixedWindowLimiter) TakeTokenWithContext(ctx context.Context) bool {
	select {
	case l.concurrent <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

func (l *FixedWindowLimiter) ReleaseToken() {
	<-l.concurrent
}

func (l *FixedWindowLimiter) InUse() int {
	return len(l.concurrent)
}

// Wait blocks until every token has been released.
func (l *FixedWindowLimiter) Wait() {
	for l.InUse() != 0 {
		time.Sleep(50 * time.Millisecond)
	}
}
