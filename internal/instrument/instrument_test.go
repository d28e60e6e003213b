package instrument

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Ingestions.WithLabelValues(OutcomeOK).Inc()
	m.Transactions.Add(3)
	m.Queries.WithLabelValues("total_received", OutcomeOK).Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ingestions.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Transactions))

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "pesalens_ingestions_total")
	assert.Contains(t, names, "pesalens_queries_total")
}

func TestNop(t *testing.T) {
	m := Nop()
	assert.NotPanics(t, func() {
		m.Dropped.WithLabelValues("duplicate").Add(2)
		m.Duration.WithLabelValues("normalize").Observe(0.1)
	})
}
