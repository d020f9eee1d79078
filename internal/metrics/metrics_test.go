package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func TestRecordPass(t *testing.T) {
	passesTotal.Reset()

	RecordPass(ResultSuccess, 0.2)
	RecordPass(ResultSuccess, 0.3)
	RecordPass(ResultPartial, 0.1)

	assert.Equal(t, 2.0, counterValue(t, passesTotal.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, counterValue(t, passesTotal.WithLabelValues(ResultPartial)))
	assert.Equal(t, 0.0, counterValue(t, passesTotal.WithLabelValues(ResultFailed)))
}

func TestRecordEvaluation(t *testing.T) {
	before := counterValue(t, recordsEvaluated)
	resetsBefore := counterValue(t, statusResets)

	RecordEvaluation(12, 2)

	assert.Equal(t, before+12, counterValue(t, recordsEvaluated))
	assert.Equal(t, resetsBefore+2, counterValue(t, statusResets))
}

func TestRecordCategoryFailure(t *testing.T) {
	categoryFailures.Reset()

	RecordCategoryFailure("holiday")
	RecordCategoryFailure("holiday")

	assert.Equal(t, 2.0, counterValue(t, categoryFailures.WithLabelValues("holiday")))
}

func TestSetActive(t *testing.T) {
	SetActive(2, 5)

	m := &dto.Metric{}
	require.NoError(t, activeNotifications.WithLabelValues("true").Write(m))
	assert.Equal(t, 2.0, m.GetGauge().GetValue())

	// A later pass replaces the value.
	SetActive(0, 1)
	m = &dto.Metric{}
	require.NoError(t, activeNotifications.WithLabelValues("true").Write(m))
	assert.Equal(t, 0.0, m.GetGauge().GetValue())
}

func TestHandler(t *testing.T) {
	RecordPass(ResultSuccess, 0.1)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), "reminder_passes_total")
	assert.Contains(t, string(body), "reminder_pass_duration_seconds")
}
