package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neonlink/neonlink-scriptd/internal/supervisor"
)

// gatherFamily returns the named metric family from the collector's registry,
// or nil when nothing with that name has been observed yet.
func gatherFamily(t *testing.T, c *Collector, name string) *dto.MetricFamily {
	t.Helper()
	families, err := c.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func gaugeValue(t *testing.T, c *Collector, name string) float64 {
	t.Helper()
	mf := gatherFamily(t, c, name)
	require.NotNil(t, mf, "metric %s not registered", name)
	require.Len(t, mf.Metric, 1)
	return mf.Metric[0].GetGauge().GetValue()
}

func counterValue(t *testing.T, c *Collector, name string) float64 {
	t.Helper()
	mf := gatherFamily(t, c, name)
	require.NotNil(t, mf, "metric %s not registered", name)
	require.Len(t, mf.Metric, 1)
	return mf.Metric[0].GetCounter().GetValue()
}

// labeledCounterValue returns the counter value carrying the given label pair,
// or 0 when that child has not been observed.
func labeledCounterValue(t *testing.T, c *Collector, name, label, value string) float64 {
	t.Helper()
	mf := gatherFamily(t, c, name)
	if mf == nil {
		return 0
	}
	for _, m := range mf.Metric {
		for _, lp := range m.Label {
			if lp.GetName() == label && lp.GetValue() == value {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestCallbacksTrackLifecycle(t *testing.T) {
	c := NewCollector()
	cbs := c.Callbacks()
	require.NotNil(t, cbs.OnStart)
	require.NotNil(t, cbs.OnExit)
	require.NotNil(t, cbs.OnForceKill)

	rec := supervisor.RunRecord{ScriptID: "s1", Status: supervisor.StatusRunning}
	cbs.OnStart(rec)
	cbs.OnStart(rec)

	assert.Equal(t, 2.0, counterValue(t, c, "scriptd_starts_total"))
	assert.Equal(t, 2.0, gaugeValue(t, c, "scriptd_scripts_running"))

	rec.Status = supervisor.StatusStopped
	cbs.OnExit(rec, 2*time.Second)
	rec.Status = supervisor.StatusErrored
	cbs.OnExit(rec, 5*time.Second)

	assert.Equal(t, 0.0, gaugeValue(t, c, "scriptd_scripts_running"))
	assert.Equal(t, 1.0, labeledCounterValue(t, c, "scriptd_runs_total", "status", "stopped"))
	assert.Equal(t, 1.0, labeledCounterValue(t, c, "scriptd_runs_total", "status", "errored"))

	hist := gatherFamily(t, c, "scriptd_run_duration_seconds")
	require.NotNil(t, hist)
	require.Len(t, hist.Metric, 1)
	assert.Equal(t, uint64(2), hist.Metric[0].GetHistogram().GetSampleCount())

	cbs.OnForceKill("s1")
	assert.Equal(t, 1.0, counterValue(t, c, "scriptd_forced_kills_total"))
}

func TestRecordSpawnFailure(t *testing.T) {
	c := NewCollector()
	c.RecordSpawnFailure()
	c.RecordSpawnFailure()
	assert.Equal(t, 2.0, counterValue(t, c, "scriptd_spawn_failures_total"))
}

type recordingSink struct {
	calls []string
}

func (s *recordingSink) Write(scriptID string, sev supervisor.Severity, line string) {
	s.calls = append(s.calls, scriptID+"/"+sev.String()+"/"+line)
}

func TestInstrumentSinkCountsByStream(t *testing.T) {
	c := NewCollector()
	inner := &recordingSink{}
	sink := c.InstrumentSink(inner)

	sink.Write("s1", supervisor.SeverityInfo, "out line")
	sink.Write("s1", supervisor.SeverityInfo, "another")
	sink.Write("s1", supervisor.SeverityWarn, "err line")
	sink.Write("s1", supervisor.SeverityError, "read failed")

	assert.Equal(t, 2.0, labeledCounterValue(t, c, "scriptd_output_lines_total", "stream", "stdout"))
	assert.Equal(t, 1.0, labeledCounterValue(t, c, "scriptd_output_lines_total", "stream", "stderr"))
	assert.Equal(t, 1.0, labeledCounterValue(t, c, "scriptd_output_lines_total", "stream", "other"))

	require.Len(t, inner.calls, 4, "instrumented sink must forward every line")
	assert.Equal(t, "s1/info/out line", inner.calls[0])
}

func TestSharedRegistryRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollectorWithRegistry(reg)
	assert.Panics(t, func() { NewCollectorWithRegistry(reg) })
}
