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
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedWindowBoundsConcurrency(t *testing.T) {
	l := NewFixedWindow(3)

	var running, peak int32
	wg := sync.WaitGroup{}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.TakeToken()
			defer l.ReleaseToken()

			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&running, -1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	assert.Equal(t, 0, l.InUse())
}

func TestFixedWindowNonBlocking(t *testing.T) {
	l := NewFixedWindow(1)
	assert.True(t, l.TakeTokenNonBlocking())
	assert.False(t, l.TakeTokenNonBlocking())
	assert.False(t, l.TakeTokenWithTimeout(20*time.Millisecond))

	l.ReleaseToken()
	assert.True(t, l.TakeTokenWithTimeout(20*time.Millisecond))
	l.ReleaseToken()
	l.Wait()
}

func TestFixedWindowTakeTokenWithContext(t *testing.T) {
	l := NewFixedWindow(1)
	assert.True(t, l.TakeTokenWithContext(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.False(t, l.TakeTokenWithContext(ctx))

	l.ReleaseToken()
	assert.True(t, l.TakeTokenWithContext(context.Background()))
	l.ReleaseToken()
}
