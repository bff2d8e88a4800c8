package container_test

import (
	"context"
	"io"
	"testing"

	"github.com/mautops/request-gin/internal/auth"
	"github.com/mautops/request-gin/internal/config"
	"github.com/mautops/request-gin/internal/container"
	"github.com/mautops/request-gin/internal/testutil"
	"github.com/mautops/request-gin/internal/types"
	"github.com/mautops/request-gin/internal/workflow"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// TestNewContainerWithDB 测试依赖组装
func TestNewContainerWithDB(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedDirectory(t, db)

	cfg := config.Default()
	c, err := container.NewContainerWithDB(cfg, db, nil, quietLogger())
	require.NoError(t, err)

	_, ok := c.Resolver().(*auth.HMACTokenValidator)
	assert.True(t, ok)
	assert.Nil(t, c.OpenFGAClient())
	assert.NotNil(t, c.Hub())
	assert.NotNil(t, c.EventHandler())

	c.Start(context.Background())

	// 创建请求经过事件处理器,没有 webhook 时事件直接标记为成功
	svc := c.RequestService()
	req, err := svc.Create(context.Background(), testutil.Principal("u1", types.RoleUser), workflowInput())
	require.NoError(t, err)
	assert.Equal(t, types.StatusPendingSuperadminReview, req.Status)

	summary, err := c.StatisticsService().Summary(context.Background(), testutil.Principal("root", types.RoleSuperadmin))
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.ByStatus[types.StatusPendingSuperadminReview])

	assert.NoError(t, c.Close())
}

// TestNewContainerWithDB_KeycloakMode 测试 Keycloak 模式的身份解析器
func TestNewContainerWithDB_KeycloakMode(t *testing.T) {
	db := testutil.NewTestDB(t)

	cfg := config.Default()
	cfg.Auth.Mode = "keycloak"
	cfg.Auth.KeycloakIssuer = "http://localhost:8082/realms/requests"

	c, err := container.NewContainerWithDB(cfg, db, nil, quietLogger())
	require.NoError(t, err)
	_, ok := c.Resolver().(*auth.KeycloakTokenValidator)
	assert.True(t, ok)
	assert.NoError(t, c.Close())
}

// TestNewContainerWithDB_UnknownAuthMode 测试非法认证模式
func TestNewContainerWithDB_UnknownAuthMode(t *testing.T) {
	db := testutil.NewTestDB(t)

	cfg := config.Default()
	cfg.Auth.Mode = "basic"

	_, err := container.NewContainerWithDB(cfg, db, nil, quietLogger())
	assert.Error(t, err)
}

func workflowInput() workflow.CreateInput {
	start := testutil.Date(2025, 3, 1)
	end := testutil.Date(2025, 3, 15)
	return workflow.CreateInput{
		Title:                  "Laptop refresh",
		RequestedService:       "HARDWARE",
		ServiceDescription:     "Replace five laptops",
		BusinessJustification:  "Warranty expired",
		RequiredStartDate:      &start,
		RequiredCompletionDate: &end,
		Priority:               types.LevelLow,
		ImpactCategory:         types.LevelLow,
		RequestGroup:           "it",
		ProviderID:             "prov-1",
		DepartmentID:           "dept-1",
	}
}
