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
	"net"
)

const (
	ModeStandard = "standard"
	ModeNetpoll  = "netpoll"
)

// OnConnect takes ownership of conn and must close it.
type OnConnect func(ctx context.Context, conn net.Conn)

// Transporter accepts connections and hands each to an OnConnect.
type Transporter interface {
	// Listen binds the address. Bind errors are reported here, before Serve.
	Listen() error
	// Serve blocks until the listener is closed.
	Serve(onConn OnConnect) error
	Addr() net.Addr
	Shutdown(ctx context.Context) error
}

type Options struct {
	Network string
	Addr    string
	Gate    *Gate
}

func (o *Options) NetworkOrDefault() string {
	if o.Network == "" {
		return "tcp"
	}
	return o.Network
}
