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
package global

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"

	"github.com/caiflower/tiny-httpd/pkg/logger"
	"github.com/caiflower/tiny-httpd/pkg/syncx"
)

// DefaultResourceManger
// 用于守护进程的优雅退出，如HTTP Server、metrics、crontab

type Resource interface {
	Close()
}

type DaemonResource interface {
	Resource
	Name() string
	Start() error
}

type packageResource struct {
	Resource
	daemon DaemonResource
	order  int
}

func (p *packageResource) Name() string {
	if p.daemon != nil {
		return p.daemon.Name()
	}
	return fmt.Sprintf("%T", p.Resource)
}

func (p *packageResource) Start() error {
	if p.daemon != nil {
		return p.daemon.Start()
	}
	return nil
}

type ResourceManger struct {
	lock      sync.Locker
	resources []packageResource
	started   []packageResource
	running   bool
	stop      chan os.Signal
}

var DefaultResourceManger = NewResourceManger()

func NewResourceManger() *ResourceManger {
	return &ResourceManger{
		lock: syncx.NewSpinLock(),
		stop: make(chan os.Signal, 1),
	}
}

func (rm *ResourceManger) Add(resource Resource) {
	rm.lock.Lock()
	defer rm.lock.Unlock()

	for _, v := range rm.resources {
		if v.Resource == resource {
			return
		}
	}
	rm.resources = append(rm.resources, packageResource{Resource: resource, order: 1000000000})
}

// AddDaemonWithOrder registers a daemon; daemons with a higher order start first and close last.
func (rm *ResourceManger) AddDaemonWithOrder(daemon DaemonResource, order int) {
	rm.lock.Lock()
	defer rm.lock.Unlock()

	for _, v := range rm.resources {
		if v.daemon == daemon {
			return
		}
	}
	rm.resources = append(rm.resources, packageResource{Resource: daemon, daemon: daemon, order: order})
}

func (rm *ResourceManger) AddDaemon(daemon DaemonResource) {
	rm.AddDaemonWithOrder(daemon, 100000)
}

// Start starts every daemon. When one fails the already started ones are closed.
func (rm *ResourceManger) Start() error {
	rm.lock.Lock()
	defer rm.lock.Unlock()

	if rm.running {
		return nil
	}

	sort.SliceStable(rm.resources, func(i, j int) bool {
		return rm.resources[i].order > rm.resources[j].order
	})

	for _, resource := range rm.resources {
		if err := resource.Start(); err != nil {
			logger.Error("Start '%s' resource failed. Error: %s", resource.Name(), err.Error())
			rm.destroy()
			return err
		}
		rm.started = append(rm.started, resource)
	}
	rm.running = true
	return nil
}

// Signal starts all resources and blocks until SIGHUP/SIGINT/SIGTERM/SIGQUIT or Stop, then closes them.
func (rm *ResourceManger) Signal() error {
	if err := rm.Start(); err != nil {
		return err
	}

	signal.Notify(rm.stop, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(rm.stop)

	s := <-rm.stop
	logger.Info("Accept signal %v. The application is shutting down...", s)

	rm.lock.Lock()
	defer rm.lock.Unlock()
	rm.destroy()
	rm.running = false
	return nil
}

func (rm *ResourceManger) Stop() {
	select {
	case rm.stop <- syscall.SIGTERM:
	default:
	}
}

func (rm *ResourceManger) destroy() {
	for i := len(rm.started) - 1; i >= 0; i-- {
		rm.started[i].Close()
	}
	rm.started = nil
}
