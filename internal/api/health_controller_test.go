package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/mautops/request-gin/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type stubChecker struct {
	healthy bool
}

func (s stubChecker) CheckHealth(ctx context.Context) bool {
	return s.healthy
}

func mockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	return db, mock
}

func healthCheck(t *testing.T, controller *api.HealthController) (int, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", controller.Check)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

// TestHealthController_Healthy 测试依赖正常
func TestHealthController_Healthy(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectPing()

	code, body := healthCheck(t, api.NewHealthController(db, stubChecker{healthy: true}))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "healthy", checks["openfga"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestHealthController_DatabaseDown 测试数据库不可用
func TestHealthController_DatabaseDown(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectPing().WillReturnError(assert.AnError)

	code, body := healthCheck(t, api.NewHealthController(db, nil))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body["status"])
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "disabled", checks["openfga"])
}

// TestHealthController_OpenFGADegraded 测试关系存储不可用时降级
func TestHealthController_OpenFGADegraded(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectPing()

	code, body := healthCheck(t, api.NewHealthController(db, stubChecker{healthy: false}))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", body["status"])
}
