package service_test

import (
	"context"
	"testing"

	"github.com/mautops/request-gin/internal/auth"
	"github.com/mautops/request-gin/internal/repository"
	"github.com/mautops/request-gin/internal/service"
	"github.com/mautops/request-gin/internal/testutil"
	"github.com/mautops/request-gin/internal/types"
	"github.com/mautops/request-gin/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStatisticsService_Summary 测试统计汇总与访问控制
func TestStatisticsService_Summary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.Principal("u1", types.RoleUser)
	root := testutil.Principal("root", types.RoleSuperadmin)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, owner, createInput())
		require.NoError(t, err)
	}
	list, err := f.svc.List(ctx, owner)
	require.NoError(t, err)
	rejected := types.StatusRejected
	_, err = f.svc.Update(ctx, root, list[0].ID, workflow.Patch{Status: &rejected})
	require.NoError(t, err)

	stats := service.NewStatisticsService(repository.NewRequestRepository(f.db))

	_, err = stats.Summary(ctx, owner)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	summary, err := stats.Summary(ctx, root)
	require.NoError(t, err)
	assert.EqualValues(t, 3, summary.Total)
	assert.EqualValues(t, 2, summary.Open)
	assert.EqualValues(t, 1, summary.Rejected)
	assert.EqualValues(t, 0, summary.Approved)
	assert.Equal(t, 0.0, summary.ApprovalRate)
	assert.EqualValues(t, 2, summary.ByStatus[types.StatusPendingSuperadminReview])
}
