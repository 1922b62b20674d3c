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
package crontab

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCronManger(t *testing.T) {
	m := NewCronTabManger("test")
	assert.Equal(t, "CRONTAB:test", m.Name())

	var count int32
	id, err := m.AddFunc("@every 1s", func() {
		atomic.AddInt32(&count, 1)
	})
	assert.NoError(t, err)

	assert.NoError(t, m.Start())
	time.Sleep(2200 * time.Millisecond)
	m.RemoveCronJob(id)
	m.Close()

	assert.GreaterOrEqual(t, atomic.LoadInt32(&count), int32(1))
}

func TestCronMangerBadSpec(t *testing.T) {
	m := NewCronTabManger("bad")
	_, err := m.AddFunc("not a spec", func() {})
	assert.Error(t, err)
}
