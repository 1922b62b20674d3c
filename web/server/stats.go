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

package server

import (
	"github.com/caiflower/tiny-httpd/pkg/crontab"
)

// NewStatsCron logs the server counters on spec, a six field cron expression.
func NewStatsCron(s *HttpServer, spec string) (*crontab.CronManger, error) {
	c := crontab.NewCronTabManger("stats:" + s.cfg.Name)
	if _, err := c.AddFunc(spec, s.logStats); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *HttpServer) logStats() {
	stats := s.Stats()
	s.logger.Info("[stats] %s active=%d served=%d dropped=%d", s.cfg.Name, stats.Active, stats.Served, stats.Dropped)
}
