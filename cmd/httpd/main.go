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

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caiflower/tiny-httpd/global"
	"github.com/caiflower/tiny-httpd/global/env"
	"github.com/caiflower/tiny-httpd/pkg/logger"
	"github.com/caiflower/tiny-httpd/web/server"
	"github.com/caiflower/tiny-httpd/web/server/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "httpd: %s\n", err.Error())
		logger.DefaultLogger().Close()
		os.Exit(1)
	}
	logger.DefaultLogger().Close()
}

func run(args []string) error {
	var opts []config.Option
	if directory, ok := parseDirectory(args); ok {
		opts = append(opts, config.WithDirectory(directory))
	}

	cfg, err := config.Load(filepath.Join(env.ConfigPath, "default.yaml"), opts...)
	if err != nil {
		return err
	}
	logger.InitLogger(&cfg.Logger)

	return register(global.DefaultResourceManger, cfg).Signal()
}

func register(rm *global.ResourceManger, cfg *config.Config) *global.ResourceManger {
	httpServer := server.NewHttpServer(*cfg)
	rm.AddDaemonWithOrder(httpServer, 100)

	if cfg.Metrics.Enable {
		rm.AddDaemonWithOrder(server.NewMetricsServer(cfg.Metrics.Addr, cfg.Metrics.Path, httpServer.Metric().Registry()), 200)
	}
	if cfg.Stats.Enable {
		stats, err := server.NewStatsCron(httpServer, cfg.Stats.Cron)
		if err != nil {
			logger.Warn("[httpd] stats disabled: %s", err.Error())
		} else {
			rm.AddDaemonWithOrder(stats, 50)
		}
	}
	return rm
}
