package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mautops/request-gin/internal/api"
	"github.com/mautops/request-gin/internal/auth"
	"github.com/mautops/request-gin/internal/config"
	"github.com/mautops/request-gin/internal/repository"
	"github.com/mautops/request-gin/internal/service"
	"github.com/mautops/request-gin/internal/testutil"
	"github.com/mautops/request-gin/internal/workflow"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// apiResponse 测试用响应结构,兼容成功与错误两种格式
type apiResponse struct {
	Code    int                   `json:"code"`
	Message string                `json:"message"`
	Data    json.RawMessage       `json:"data"`
	Detail  string                `json:"detail"`
	Fields  []workflow.FieldError `json:"fields"`
}

// setupTestServer 创建基于内存 SQLite 的完整路由
func setupTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	testutil.SeedDirectory(t, db)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := config.Default()
	cfg.RateLimit.Enabled = false

	requestRepo := repository.NewRequestRepository(db)
	engine := workflow.NewEngine(requestRepo, repository.NewDirectoryRepository(db))
	requestSvc := service.NewRequestService(
		engine,
		repository.NewStateHistoryRepository(db),
		service.NewAuditLogService(repository.NewAuditLogRepository(db)),
		nil,
		logger,
	)

	return api.SetupRoutes(api.RouterDeps{
		Config:            cfg,
		Logger:            logger,
		DB:                db,
		Resolver:          auth.NewHMACTokenValidator(testSecret),
		RequestService:    requestSvc,
		StatisticsService: service.NewStatisticsService(requestRepo),
	})
}

// tokenFor 签发测试用 HS256 Token
func tokenFor(t *testing.T, userID, role string) string {
	t.Helper()
	claims := auth.HMACClaims{
		UserID: userID,
		Email:  userID + "@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// doJSON 发送请求并解析响应
func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewBuffer(data)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func validCreateBody() map[string]interface{} {
	return map[string]interface{}{
		"title":                  "New VPN tunnel",
		"requestedService":       "NETWORK",
		"serviceDescription":     "Site-to-site tunnel to the depot",
		"businessJustification":  "Depot systems need head office access",
		"requiredStartDate":      "2025-03-01",
		"requiredCompletionDate": "2025-03-15T00:00:00Z",
		"priority":               "medium",
		"impactCategory":         "LOW",
		"requestGroup":           "network",
		"providerId":             "prov-1",
		"departmentId":           "dept-1",
	}
}

func fieldNames(fields []workflow.FieldError) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	return names
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
}

