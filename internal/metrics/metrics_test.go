package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m := New()

	require.NotNil(t, m.Registry())
	assert.NotNil(t, m.QueriesTotal)
	assert.NotNil(t, m.QueryDuration)
	assert.NotNil(t, m.WebEscalations)
	assert.NotNil(t, m.ChunksIngested)
	assert.NotNil(t, m.UpdateChecks)
}

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.RecordIngest("all_vendor_docs", 3)

	assert.Equal(t, 3.0, testutil.ToFloat64(a.ChunksIngested.WithLabelValues("all_vendor_docs")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ChunksIngested.WithLabelValues("all_vendor_docs")))
}

func TestRecordQuery(t *testing.T) {
	m := New()

	m.RecordQuery("migration", 200*time.Millisecond, 1, true, false)
	m.RecordQuery("", time.Second, 0, false, true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("migration")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WebEscalations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueryFailures))
	assert.Equal(t, 2, testutil.CollectAndCount(m.QueryDuration))
}

func TestRecordIngest_IgnoresZero(t *testing.T) {
	m := New()

	m.RecordIngest("error_codes", 0)
	m.RecordIngestFailure()

	assert.Equal(t, 0, testutil.CollectAndCount(m.ChunksIngested))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IngestFailures))
}

func TestRecordUpdateCheck(t *testing.T) {
	m := New()

	m.RecordUpdateCheck("cisco_release_notes", 4, nil)
	m.RecordUpdateCheck("cisco_release_notes", 0, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpdateChecks.WithLabelValues("cisco_release_notes", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpdateChecks.WithLabelValues("cisco_release_notes", "error")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.UpdatedDocuments))
}

func TestRecordHTTPRequest(t *testing.T) {
	m := New()

	m.RecordHTTPRequest("/query", "POST", 200, 10*time.Millisecond)
	m.RecordHTTPRequest("/query", "POST", 200, 20*time.Millisecond)
	m.RecordHTTPRequest("", "GET", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/query", "POST", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("unmatched", "GET", "404")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordQuery("general", time.Second, 0, false, false)
		m.RecordIngest("default", 1)
		m.RecordIngestFailure()
		m.RecordUpdateCheck("x", 1, nil)
		m.RecordHTTPRequest("/query", "POST", 200, time.Millisecond)
	})
	assert.Nil(t, m.Registry())
}
