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
package cache

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// FileCache 基于github.com/patrickmn/go-cache的文件内容缓存
// key为文件的完整路径，写文件时需要调用Invalidate
type FileCache struct {
	c *cache.Cache

	// 每个路径的写入代数，Invalidate时递增
	lock        sync.Mutex
	generations map[string]uint64
}

func NewFileCache(ttl time.Duration) *FileCache {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	cleanup := time.Minute
	if ttl > 0 && ttl < cleanup {
		cleanup = ttl
	}
	return &FileCache{c: cache.New(ttl, cleanup), generations: make(map[string]uint64)}
}

func (fc *FileCache) Get(path string) ([]byte, bool) {
	if fc == nil {
		return nil, false
	}
	v, ok := fc.c.Get(path)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

func (fc *FileCache) Put(path string, content []byte) {
	if fc == nil {
		return
	}
	fc.c.SetDefault(path, content)
}

// Generation must be taken before reading path from disk and handed to PutIfUnchanged.
func (fc *FileCache) Generation(path string) uint64 {
	if fc == nil {
		return 0
	}
	fc.lock.Lock()
	defer fc.lock.Unlock()
	return fc.generations[path]
}

// PutIfUnchanged stores content only if path was not invalidated since gen was taken.
func (fc *FileCache) PutIfUnchanged(path string, content []byte, gen uint64) bool {
	if fc == nil {
		return false
	}
	fc.lock.Lock()
	defer fc.lock.Unlock()
	if fc.generations[path] != gen {
		return false
	}
	fc.c.SetDefault(path, content)
	return true
}

func (fc *FileCache) Invalidate(path string) {
	if fc == nil {
		return
	}
	fc.lock.Lock()
	defer fc.lock.Unlock()
	fc.generations[path]++
	fc.c.Delete(path)
}

func (fc *FileCache) Len() int {
	if fc == nil {
		return 0
	}
	return fc.c.ItemCount()
}
