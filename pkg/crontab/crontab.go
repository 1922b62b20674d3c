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
	"fmt"

	"github.com/caiflower/tiny-httpd/pkg/logger"
	"github.com/robfig/cron/v3"
)

type CronManger struct {
	name string
	cron *cron.Cron
}

// NewCronTabManger accepts six field specs (with seconds) as well as descriptors like "@every 1m".
func NewCronTabManger(name string) *CronManger {
	return &CronManger{name: name, cron: cron.New(cron.WithSeconds())}
}

func (c *CronManger) Name() string {
	return fmt.Sprintf("CRONTAB:%s", c.name)
}

func (c *CronManger) Start() error {
	c.cron.Start()
	logger.Info("[Crontab] %s started with %d jobs.", c.name, len(c.cron.Entries()))
	return nil
}

func (c *CronManger) Close() {
	<-c.cron.Stop().Done()
	logger.Info("[Crontab] %s stopped.", c.name)
}

func (c *CronManger) AddCronJob(spec string, job cron.Job) (cron.EntryID, error) {
	eid, err := c.cron.AddJob(spec, job)
	if err != nil {
		logger.Error("[Crontab] Add crontab failed. spec=%s. err=%v", spec, err)
		return eid, err
	}
	logger.Info("[Crontab] Add crontab. spec=%s. jobId=%v.", spec, eid)
	return eid, nil
}

func (c *CronManger) AddFunc(spec string, fn func()) (cron.EntryID, error) {
	return c.AddCronJob(spec, cron.FuncJob(fn))
}

func (c *CronManger) RemoveCronJob(id cron.EntryID) {
	c.cron.Remove(id)
}
