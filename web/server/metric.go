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
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/caiflower/tiny-httpd/global/env"
	"github.com/caiflower/tiny-httpd/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 连接被丢弃的阶段
const (
	stageRead   = "read"
	stageParse  = "parse"
	stageHandle = "handle"
	stageWrite  = "write"
	stagePanic  = "panic"
)

type HttpMetric struct {
	registry          *prometheus.Registry
	httpRequestTotal  *prometheus.CounterVec
	connDroppedTotal  *prometheus.CounterVec
	activeConnections prometheus.Gauge
	costHistogram     prometheus.Histogram
}

// NewHttpMetric registers into its own registry so several servers can live in one process.
func NewHttpMetric(name string) *HttpMetric {
	constLabels := prometheus.Labels{"ip": env.GetLocalHostIP(), "web": name}

	buckets := []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000}
	metric := &HttpMetric{
		registry:          prometheus.NewRegistry(),
		httpRequestTotal:  prometheus.NewCounterVec(prometheus.CounterOpts{Name: "http_request_total", Help: "http_request_total counter", ConstLabels: constLabels}, []string{"code", "method", "route"}),
		connDroppedTotal:  prometheus.NewCounterVec(prometheus.CounterOpts{Name: "http_connection_dropped_total", Help: "connections closed without a response", ConstLabels: constLabels}, []string{"stage"}),
		activeConnections: prometheus.NewGauge(prometheus.GaugeOpts{Name: "http_active_connections", Help: "connections being supervised", ConstLabels: constLabels}),
		costHistogram:     prometheus.NewHistogram(prometheus.HistogramOpts{Name: "http_request_histogram", Help: "http_request_histogram in milliseconds", Buckets: buckets, ConstLabels: constLabels}),
	}

	metric.registry.MustRegister(metric.httpRequestTotal, metric.connDroppedTotal, metric.activeConnections, metric.costHistogram)
	return metric
}

func (m *HttpMetric) Registry() *prometheus.Registry {
	return m.registry
}

func (m *HttpMetric) saveMetric(code, method, route string, cost time.Duration) {
	m.httpRequestTotal.WithLabelValues(code, method, route).Inc()
	m.costHistogram.Observe(float64(cost.Microseconds()) / 1000)
}

func (m *HttpMetric) dropped(stage string) {
	m.connDroppedTotal.WithLabelValues(stage).Inc()
}

// MetricsServer exposes a registry on a separate ops listener.
type MetricsServer struct {
	addr     string
	path     string
	registry *prometheus.Registry
	logger   logger.ILog

	lock     sync.Mutex
	server   *http.Server
	listener net.Listener
}

func NewMetricsServer(addr, path string, registry *prometheus.Registry) *MetricsServer {
	if path == "" {
		path = "/metrics"
	}
	return &MetricsServer{
		addr:     addr,
		path:     path,
		registry: registry,
		logger:   logger.DefaultLogger(),
	}
}

func (ms *MetricsServer) Name() string {
	return fmt.Sprintf("METRICS_SERVER:%s", ms.addr)
}

func (ms *MetricsServer) Start() error {
	ln, err := net.Listen("tcp", ms.addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(ms.path, promhttp.HandlerFor(ms.registry, promhttp.HandlerOpts{}))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ms.lock.Lock()
	ms.server, ms.listener = server, ln
	ms.lock.Unlock()

	ms.logger.Info("[metrics] serving %s on %s", ms.path, ln.Addr().String())
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ms.logger.Error("[metrics] serve failed. Error: %s", err.Error())
		}
	}()
	return nil
}

func (ms *MetricsServer) Addr() net.Addr {
	ms.lock.Lock()
	defer ms.lock.Unlock()
	if ms.listener == nil {
		return nil
	}
	return ms.listener.Addr()
}

func (ms *MetricsServer) Close() {
	ms.lock.Lock()
	server := ms.server
	ms.server = nil
	ms.lock.Unlock()
	if server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		ms.logger.Warn("[metrics] shutdown error: %s", err.Error())
	}
}
