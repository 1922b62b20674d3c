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

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caiflower/tiny-httpd/pkg/logger"
	"github.com/caiflower/tiny-httpd/pkg/tools"
	"github.com/caiflower/tiny-httpd/web/network"
	"github.com/caiflower/tiny-httpd/web/protocol/http1"
)

type Option func(*Config) *Config

type Config struct {
	Name           string        `yaml:"name" default:"httpd"`
	Addr           string        `yaml:"addr" default:"127.0.0.1:4221"`
	Network        string        `yaml:"network" default:"tcp"`
	Directory      string        `yaml:"directory" default:"."`
	Mode           string        `yaml:"mode" default:"standard"`     // standard | netpoll
	ReadMode       string        `yaml:"readMode" default:"single"`   // single | buffered
	ReadBufferSize int           `yaml:"readBufferSize" default:"2048"`
	MaxHeaderBytes int           `yaml:"maxHeaderBytes" default:"8192"`
	MaxBodySize    int           `yaml:"maxBodySize" default:"10485760"` // 10MB
	MaxConns       int           `yaml:"maxConns"`                      // 0 不限制
	Qps            int           `yaml:"qps"`                           // 0 不限制
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	StrictPath     bool          `yaml:"strictPath"`
	FileCache      FileCache     `yaml:"fileCache"`
	Metrics        Metrics       `yaml:"metrics"`
	Stats          Stats         `yaml:"stats"`
	Logger         logger.Config `yaml:"logger"`
}

type FileCache struct {
	Enable bool          `yaml:"enable"`
	TTL    time.Duration `yaml:"ttl" default:"30s"`
}

type Metrics struct {
	Enable bool   `yaml:"enable"`
	Addr   string `yaml:"addr" default:"127.0.0.1:9091"`
	Path   string `yaml:"path" default:"/metrics"`
}

type Stats struct {
	Enable bool   `yaml:"enable"`
	Cron   string `yaml:"cron" default:"0 * * * * *"`
}

func Default() *Config {
	c := &Config{}
	_ = tools.SetDefaults(c)
	return c
}

// Load reads a yaml config file. A missing file yields the defaults.
func Load(filename string, opts ...Option) (*Config, error) {
	c := &Config{}
	if err := tools.LoadConfig(filename, c); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load config %s: %w", filename, err)
		}
		c = Default()
	}
	for _, opt := range opts {
		c = opt(c)
	}
	return c, c.Validate()
}

func New(opts ...Option) *Config {
	c := Default()
	for _, opt := range opts {
		c = opt(c)
	}
	return c
}

func (c *Config) Validate() error {
	switch c.Mode {
	case network.ModeStandard, network.ModeNetpoll:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	switch c.ReadMode {
	case http1.ReadModeSingle, http1.ReadModeBuffered:
	default:
		return fmt.Errorf("unknown readMode %q", c.ReadMode)
	}
	if c.ReadBufferSize <= 0 {
		return fmt.Errorf("readBufferSize must be positive, got %d", c.ReadBufferSize)
	}
	if c.MaxConns < 0 || c.Qps < 0 {
		return fmt.Errorf("maxConns and qps must not be negative")
	}
	return nil
}

func WithName(name string) Option {
	return func(c *Config) *Config {
		c.Name = name
		return c
	}
}

func WithAddr(addr string) Option {
	return func(c *Config) *Config {
		c.Addr = addr
		return c
	}
}

func WithDirectory(directory string) Option {
	return func(c *Config) *Config {
		c.Directory = directory
		return c
	}
}

func WithMode(mode string) Option {
	return func(c *Config) *Config {
		c.Mode = mode
		return c
	}
}

func WithReadMode(readMode string) Option {
	return func(c *Config) *Config {
		c.ReadMode = readMode
		return c
	}
}

func WithLimits(maxConns, qps int) Option {
	return func(c *Config) *Config {
		c.MaxConns = maxConns
		c.Qps = qps
		return c
	}
}

func WithTimeouts(readTimeout, writeTimeout time.Duration) Option {
	return func(c *Config) *Config {
		c.ReadTimeout = readTimeout
		c.WriteTimeout = writeTimeout
		return c
	}
}

func WithStrictPath(strict bool) Option {
	return func(c *Config) *Config {
		c.StrictPath = strict
		return c
	}
}

func WithFileCache(enable bool, ttl time.Duration) Option {
	return func(c *Config) *Config {
		c.FileCache.Enable = enable
		if ttl > 0 {
			c.FileCache.TTL = ttl
		}
		return c
	}
}
