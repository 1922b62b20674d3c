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

package safego

import (
	"sync"
	"testing"

	golocalv1 "github.com/caiflower/tiny-httpd/pkg/golocal/v1"
	"github.com/stretchr/testify/assert"
)

func TestSafeGoInheritsTraceID(t *testing.T) {
	trace := "test"
	golocalv1.PutTraceID(trace)
	defer golocalv1.Clean()

	wg := &sync.WaitGroup{}
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		Go(func() {
			defer wg.Done()
			assert.Equal(t, trace, golocalv1.GetTraceID())
		})
	}
	wg.Wait()
}

func TestSafeGoRecoversPanic(t *testing.T) {
	wg := &sync.WaitGroup{}
	wg.Add(1)
	Go(func() {
		defer wg.Done()
		panic("boom")
	})
	wg.Wait()
}
