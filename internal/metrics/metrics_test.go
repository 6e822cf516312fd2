package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAssessment(t *testing.T) {
	m := New()

	m.RecordAssessment("concern", OutcomeOK)
	m.RecordAssessment("concern", OutcomeOK)
	m.RecordAssessment("sketch", OutcomeFallback)

	families, err := m.registry.Gather()
	require.NoError(t, err)

	found := false
	for _, f := range families {
		if f.GetName() == "carelink_assessments_total" {
			found = true
		}
	}
	assert.True(t, found, "expected carelink_assessments_total to be registered")

	count := testutil.CollectAndCount(m.assessmentsTotal)
	assert.Equal(t, 2, count, "expected two label combinations")
}

func TestStoreEntriesGauge(t *testing.T) {
	m := New()

	m.SetStoreEntries("health-records", 3)
	m.SetStoreEntries("health-records", 5)

	value := testutil.ToFloat64(m.storeEntries.WithLabelValues("health-records"))
	assert.Equal(t, 5.0, value)
}

func TestModelLatencyObserves(t *testing.T) {
	m := New()

	m.RecordModelLatency("concern", 250*time.Millisecond)
	count := testutil.CollectAndCount(m.modelLatency)
	assert.Equal(t, 1, count)
}

func TestDefaultIsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}
