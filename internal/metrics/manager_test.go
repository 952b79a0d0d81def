package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRegistersCollectors(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()

	m.CounterSetsLogged.Inc()
	m.CounterSessions.WithLabelValues(OutcomeStarted).Inc()
	m.CounterExternalFailures.WithLabelValues(ServiceGroq).Inc()
	m.GaugeActiveSessions.Set(2)

	families, err := reg.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				values[f.GetName()] += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				values[f.GetName()] += metric.GetGauge().GetValue()
			}
		}
	}
	assert.InDelta(t, 1, values["reprx_test_sets_logged"], 1e-9)
	assert.InDelta(t, 1, values["reprx_test_sessions"], 1e-9)
	assert.InDelta(t, 1, values["reprx_test_external_failures"], 1e-9)
	assert.InDelta(t, 2, values["reprx_test_active_sessions"], 1e-9)
}
