package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg)

	m.RecordMutation("add")
	m.RecordMutation("add")
	m.RecordMutation("delete")
	m.RecordPersistenceFailure("save")
	m.SetCollectionSizes(3, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.mutations.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("delete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistenceFailures.WithLabelValues("save")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeExpenses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.trashedExpenses))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = Noop{}
	assert.NotPanics(t, func() {
		r.RecordMutation("add")
		r.RecordPersistenceFailure("load")
		r.SetCollectionSizes(0, 0)
	})
}
