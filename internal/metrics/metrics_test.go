package metrics_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mautops/request-gin/internal/metrics"
	"github.com/mautops/request-gin/internal/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCounter map[types.RequestStatus]int64

func (s staticCounter) CountByStatus(ctx context.Context) (map[types.RequestStatus]int64, error) {
	return s, nil
}

func scrape(t *testing.T) string {
	t.Helper()
	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	return string(body)
}

// TestRecordTransition 测试流转计数器按 from/to 标签记录
func TestRecordTransition(t *testing.T) {
	metrics.RecordRequestCreated()
	metrics.RecordTransition(types.StatusPendingSuperadminReview, types.StatusPendingAdminReview)
	metrics.RecordUpdateRejected("forbidden")
	metrics.RecordAPIRequest("GET", "/api/v1/requests", 200, 0.01)

	body := scrape(t)
	assert.Contains(t, body, "requests_created_total")
	assert.Contains(t, body, `request_transitions_total{from="PENDING_SUPERADMIN_REVIEW",to="PENDING_ADMIN_REVIEW"}`)
	assert.Contains(t, body, `request_updates_rejected_total{reason="forbidden"}`)
	assert.Contains(t, body, `api_requests_total{method="GET",path="/api/v1/requests",status="OK"}`)
}

// TestCollector_CollectOnce 测试收集器刷新状态分布
func TestCollector_CollectOnce(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	collector := metrics.NewCollector(nil, staticCounter{types.StatusApproved: 7}, time.Minute, logger)
	collector.CollectOnce(context.Background())

	assert.Contains(t, scrape(t), `requests_by_status{status="APPROVED"} 7`)
}
