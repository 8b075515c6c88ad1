package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStatsCollector exports pgxpool connection statistics through the
// prometheus.Collector interface, labelled by service name.
type PoolStatsCollector struct {
	pool    *pgxpool.Pool
	service string
	descs   map[string]*prometheus.Desc
}

type poolMetric struct {
	name      string
	help      string
	valueType prometheus.ValueType
	read      func(*pgxpool.Stat) float64
}

var poolMetrics = []poolMetric{
	{"db_pool_acquired_connections", "Number of currently acquired connections", prometheus.GaugeValue,
		func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }},
	{"db_pool_idle_connections", "Number of currently idle connections", prometheus.GaugeValue,
		func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }},
	{"db_pool_total_connections", "Total number of connections in the pool", prometheus.GaugeValue,
		func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }},
	{"db_pool_max_connections", "Maximum number of connections allowed", prometheus.GaugeValue,
		func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }},
	{"db_pool_constructing_connections", "Number of connections currently being constructed", prometheus.GaugeValue,
		func(s *pgxpool.Stat) float64 { return float64(s.ConstructingConns()) }},
	{"db_pool_acquire_count_total", "Total number of connection acquires", prometheus.CounterValue,
		func(s *pgxpool.Stat) float64 { return float64(s.AcquireCount()) }},
	{"db_pool_acquire_duration_seconds_total", "Total time spent acquiring connections in seconds", prometheus.CounterValue,
		func(s *pgxpool.Stat) float64 { return s.AcquireDuration().Seconds() }},
	{"db_pool_canceled_acquire_count_total", "Total number of canceled connection acquires", prometheus.CounterValue,
		func(s *pgxpool.Stat) float64 { return float64(s.CanceledAcquireCount()) }},
	{"db_pool_empty_acquire_count_total", "Total number of acquires that had to wait for a connection", prometheus.CounterValue,
		func(s *pgxpool.Stat) float64 { return float64(s.EmptyAcquireCount()) }},
	{"db_pool_new_connections_total", "Total number of new connections created", prometheus.CounterValue,
		func(s *pgxpool.Stat) float64 { return float64(s.NewConnsCount()) }},
	{"db_pool_max_lifetime_destroy_total", "Total connections destroyed due to max lifetime", prometheus.CounterValue,
		func(s *pgxpool.Stat) float64 { return float64(s.MaxLifetimeDestroyCount()) }},
	{"db_pool_max_idle_destroy_total", "Total connections destroyed due to max idle time", prometheus.CounterValue,
		func(s *pgxpool.Stat) float64 { return float64(s.MaxIdleDestroyCount()) }},
}

// NewPoolStatsCollector builds a collector over the given pool. The service
// label distinguishes pools when several are registered.
func NewPoolStatsCollector(pool *pgxpool.Pool, service string) *PoolStatsCollector {
	descs := make(map[string]*prometheus.Desc, len(poolMetrics))
	for _, m := range poolMetrics {
		descs[m.name] = prometheus.NewDesc(m.name, m.help, []string{"service"}, nil)
	}
	return &PoolStatsCollector{pool: pool, service: service, descs: descs}
}

func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range poolMetrics {
		ch <- c.descs[m.name]
	}
}

// Collect snapshots the pool statistics and emits one metric per entry.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.pool.Stat()
	for _, m := range poolMetrics {
		ch <- prometheus.MustNewConstMetric(c.descs[m.name], m.valueType, m.read(stat), c.service)
	}
}

// RegisterPoolMetrics registers a pool collector with the default registry.
func RegisterPoolMetrics(pool *pgxpool.Pool, service string) {
	prometheus.MustRegister(NewPoolStatsCollector(pool, service))
}
