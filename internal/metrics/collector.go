// Package metrics provides Prometheus metrics for neonlink-scriptd.
//
// The collector owns its own registry instead of the package-global default,
// so the daemon carries no ambient mutable state and tests stay isolated.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/neonlink/neonlink-scriptd/internal/supervisor"
)

// Collector tracks supervisor activity.
type Collector struct {
	registry *prometheus.Registry

	scriptsRunning     prometheus.Gauge
	startsTotal        prometheus.Counter
	spawnFailuresTotal prometheus.Counter
	forcedKillsTotal   prometheus.Counter
	runsTotal          *prometheus.CounterVec
	outputLinesTotal   *prometheus.CounterVec
	runDurationSeconds prometheus.Histogram
}

// NewCollector creates a collector with a private registry.
func NewCollector() *Collector {
	return NewCollectorWithRegistry(prometheus.NewRegistry())
}

// NewCollectorWithRegistry creates a collector registering on registry.
func NewCollectorWithRegistry(registry *prometheus.Registry) *Collector {
	c := &Collector{
		registry: registry,

		scriptsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scriptd_scripts_running",
			Help: "Currently running script processes",
		}),
		startsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scriptd_starts_total",
			Help: "Total accepted start requests",
		}),
		spawnFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scriptd_spawn_failures_total",
			Help: "Total start requests refused by the operating system",
		}),
		forcedKillsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scriptd_forced_kills_total",
			Help: "Total stops that escalated to SIGKILL",
		}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scriptd_runs_total",
			Help: "Finished runs by terminal status",
		}, []string{"status"}),
		outputLinesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scriptd_output_lines_total",
			Help: "Output lines forwarded to the logging sink, by stream",
		}, []string{"stream"}),
		runDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scriptd_run_duration_seconds",
			Help:    "Wall-clock duration of finished runs",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}

	registry.MustRegister(
		c.scriptsRunning,
		c.startsTotal,
		c.spawnFailuresTotal,
		c.forcedKillsTotal,
		c.runsTotal,
		c.outputLinesTotal,
		c.runDurationSeconds,
	)
	return c
}

// Registry returns the prometheus registry backing this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Callbacks returns supervisor callbacks that keep the metrics current.
// The returned struct can be merged with caller callbacks before passing it
// to the registry.
func (c *Collector) Callbacks() supervisor.Callbacks {
	return supervisor.Callbacks{
		OnStart: func(rec supervisor.RunRecord) {
			c.startsTotal.Inc()
			c.scriptsRunning.Inc()
		},
		OnExit: func(rec supervisor.RunRecord, uptime time.Duration) {
			c.scriptsRunning.Dec()
			c.runsTotal.WithLabelValues(rec.Status.String()).Inc()
			c.runDurationSeconds.Observe(uptime.Seconds())
		},
		OnForceKill: func(scriptID string) {
			c.forcedKillsTotal.Inc()
		},
	}
}

// RecordSpawnFailure counts a start request the operating system refused.
func (c *Collector) RecordSpawnFailure() {
	c.spawnFailuresTotal.Inc()
}

// InstrumentSink wraps a sink so every forwarded line is counted by stream
// before being passed on.
func (c *Collector) InstrumentSink(next supervisor.LogSink) supervisor.LogSink {
	return &countingSink{next: next, lines: c.outputLinesTotal}
}

type countingSink struct {
	next  supervisor.LogSink
	lines *prometheus.CounterVec
}

func (s *countingSink) Write(scriptID string, sev supervisor.Severity, line string) {
	s.lines.WithLabelValues(streamLabel(sev)).Inc()
	s.next.Write(scriptID, sev, line)
}

// streamLabel maps pump severities back to the stream they came from.
func streamLabel(sev supervisor.Severity) string {
	switch sev {
	case supervisor.SeverityInfo:
		return "stdout"
	case supervisor.SeverityWarn:
		return "stderr"
	default:
		return "other"
	}
}
