// Package metrics exposes connection pool statistics as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/taskdeck/taskdeck/internal/database"
)

// PoolCollector reads database.Pool counters at scrape time. Register it once
// per pool; all metrics are emitted under the given namespace.
type PoolCollector struct {
	pool   *database.Pool
	logger *zap.Logger

	maxConns        *prometheus.Desc
	open            *prometheus.Desc
	inUse           *prometheus.Desc
	idle            *prometheus.Desc
	waitCount       *prometheus.Desc
	waitDuration    *prometheus.Desc
	acquires        *prometheus.Desc
	acquireTimeouts *prometheus.Desc
}

// NewPoolCollector creates a collector over the given pool.
func NewPoolCollector(namespace string, pool *database.Pool, logger *zap.Logger) *PoolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "db_pool", name),
			help, nil, nil,
		)
	}

	return &PoolCollector{
		pool:   pool,
		logger: logger.With(zap.String("component", "metrics")),

		maxConns:        desc("max_connections", "Configured connection limit"),
		open:            desc("open_connections", "Currently open connections"),
		inUse:           desc("in_use_connections", "Connections held by callers"),
		idle:            desc("idle_connections", "Open connections not in use"),
		waitCount:       desc("wait_total", "Acquisitions that had to wait for a connection"),
		waitDuration:    desc("wait_seconds_total", "Cumulative time spent waiting for connections"),
		acquires:        desc("acquires_total", "Successful connection acquisitions"),
		acquireTimeouts: desc("acquire_timeouts_total", "Acquisitions abandoned at the acquire timeout"),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.maxConns
	ch <- c.open
	ch <- c.inUse
	ch <- c.idle
	ch <- c.waitCount
	ch <- c.waitDuration
	ch <- c.acquires
	ch <- c.acquireTimeouts
}

// Collect implements prometheus.Collector.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool.Stats()

	ch <- prometheus.MustNewConstMetric(c.maxConns, prometheus.GaugeValue, float64(s.MaxConns))
	ch <- prometheus.MustNewConstMetric(c.open, prometheus.GaugeValue, float64(s.Open))
	ch <- prometheus.MustNewConstMetric(c.inUse, prometheus.GaugeValue, float64(s.InUse))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.Idle))
	ch <- prometheus.MustNewConstMetric(c.waitCount, prometheus.CounterValue, float64(s.WaitCount))
	ch <- prometheus.MustNewConstMetric(c.waitDuration, prometheus.CounterValue, s.WaitDuration.Seconds())
	ch <- prometheus.MustNewConstMetric(c.acquires, prometheus.CounterValue, float64(s.Acquires))
	ch <- prometheus.MustNewConstMetric(c.acquireTimeouts, prometheus.CounterValue, float64(s.AcquireTimeouts))
}
