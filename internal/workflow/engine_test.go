package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mautops/request-gin/internal/model"
	"github.com/mautops/request-gin/internal/repository"
	"github.com/mautops/request-gin/internal/testutil"
	"github.com/mautops/request-gin/internal/types"
	"github.com/mautops/request-gin/internal/workflow"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	u1    = testutil.Principal("u1", types.RoleUser)
	u2    = testutil.Principal("u2", types.RoleUser)
	admin = testutil.Principal("admin", types.RoleAdmin)
	root  = testutil.Principal("root", types.RoleSuperadmin)
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

type sequence struct {
	n int
}

func (s *sequence) Next() string {
	s.n++
	return fmt.Sprintf("id-%03d", s.n)
}

func newEngine(t *testing.T, opts ...workflow.Option) (*workflow.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	testutil.SeedDirectory(t, db)

	clock := &stepClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	ids := &sequence{}
	opts = append([]workflow.Option{workflow.WithClock(clock.Now), workflow.WithIDGenerator(ids.Next)}, opts...)

	engine := workflow.NewEngine(
		repository.NewRequestRepository(db),
		repository.NewDirectoryRepository(db),
		opts...,
	)
	return engine, db
}

func validInput() workflow.CreateInput {
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return workflow.CreateInput{
		Title:                  "Replace core switch",
		RequestedService:       "NETWORK",
		ServiceDescription:     "Swap the core switch in rack 4",
		BusinessJustification:  "End of life hardware",
		RequiredStartDate:      &start,
		RequiredCompletionDate: &end,
		Priority:               types.LevelHigh,
		ImpactCategory:         types.LevelMedium,
		RequestGroup:           "infra",
		ProviderID:             "prov-1",
		DepartmentID:           "dept-1",
	}
}

func statusPatch(status types.RequestStatus) workflow.Patch {
	return workflow.Patch{Status: &status}
}

func createAs(t *testing.T, engine *workflow.Engine, principal types.Principal) *model.RequestModel {
	t.Helper()
	req, err := engine.CreateRequest(context.Background(), principal, validInput())
	require.NoError(t, err)
	return req
}

// TestCreateRequest 新建请求处于初始状态且只有一条轨迹
func TestCreateRequest(t *testing.T) {
	engine, _ := newEngine(t)

	req := createAs(t, engine, u1)

	assert.Equal(t, types.StatusPendingSuperadminReview, req.Status)
	require.Len(t, req.ApprovalTrail, 1)
	assert.Equal(t, "Request created", req.ApprovalTrail[0].Comment)
	assert.Equal(t, "u1", req.ApprovalTrail[0].UserID)
	assert.Equal(t, types.StatusPendingSuperadminReview, req.ApprovalTrail[0].Status)
	assert.Equal(t, 1, req.Revision)

	require.NotNil(t, req.User)
	assert.Equal(t, "User One", req.User.Name, "upsert must not clear the seeded name")
	require.NotNil(t, req.Provider)
	assert.Equal(t, "Acme Utilities", req.Provider.Name)
	require.NotNil(t, req.Department)
	assert.Equal(t, "Operations", req.Department.Name)
}

// TestCreateRequest_UnknownCreatorIsUpserted 首次出现的调用者会写入用户摘要
func TestCreateRequest_UnknownCreatorIsUpserted(t *testing.T) {
	engine, _ := newEngine(t)

	newcomer := types.Principal{ID: "u9", Role: types.RoleUser, Name: "Newcomer", Email: "u9@example.com"}
	req := createAs(t, engine, newcomer)

	require.NotNil(t, req.User)
	assert.Equal(t, "Newcomer", req.User.Name)
}

// TestCreateRequest_ListsMissingFields 校验错误列出所有缺失字段
func TestCreateRequest_ListsMissingFields(t *testing.T) {
	engine, _ := newEngine(t)

	_, err := engine.CreateRequest(context.Background(), u1, workflow.CreateInput{Title: "only a title"})
	require.ErrorIs(t, err, workflow.ErrValidation)

	var verr *workflow.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{
		"requestedService", "serviceDescription", "businessJustification", "requestGroup",
		"providerId", "departmentId", "requiredStartDate", "requiredCompletionDate",
		"priority", "impactCategory",
	}, fields)
}

// TestCreateRequest_InvalidValues 非法枚举、日期顺序与目录引用
func TestCreateRequest_InvalidValues(t *testing.T) {
	engine, _ := newEngine(t)

	in := validInput()
	in.Priority = "URGENT"
	_, err := engine.CreateRequest(context.Background(), u1, in)
	assert.ErrorIs(t, err, workflow.ErrValidation)

	in = validInput()
	earlier := in.RequiredStartDate.AddDate(0, 0, -1)
	in.RequiredCompletionDate = &earlier
	_, err = engine.CreateRequest(context.Background(), u1, in)
	assert.ErrorIs(t, err, workflow.ErrValidation)

	in = validInput()
	in.DepartmentID = "dept-404"
	_, err = engine.CreateRequest(context.Background(), u1, in)
	assert.ErrorIs(t, err, workflow.ErrValidation)

	in = validInput()
	in.ProviderID = "prov-404"
	_, err = engine.CreateRequest(context.Background(), u1, in)
	assert.ErrorIs(t, err, workflow.ErrValidation)

	_, err = engine.CreateRequest(context.Background(), types.Principal{}, validInput())
	assert.ErrorIs(t, err, workflow.ErrUnauthenticated)
}

// TestApplyUpdate_SuperadminAdvances SUPERADMIN 推进到 PENDING_ADMIN_REVIEW
func TestApplyUpdate_SuperadminAdvances(t *testing.T) {
	engine, _ := newEngine(t)
	req := createAs(t, engine, u1)

	result, err := engine.ApplyUpdate(context.Background(), req.ID, root, statusPatch(types.StatusPendingAdminReview))
	require.NoError(t, err)

	assert.True(t, result.StatusChanged)
	assert.Equal(t, types.StatusPendingSuperadminReview, result.From)
	assert.Equal(t, types.StatusPendingAdminReview, result.To)
	assert.Equal(t, types.StatusPendingAdminReview, result.Request.Status)
	require.Len(t, result.Request.ApprovalTrail, 2)

	last := result.Request.ApprovalTrail[1]
	assert.Equal(t, types.StatusPendingAdminReview, last.Status)
	assert.Equal(t, "root", last.UserID)
	assert.Equal(t, "Status changed to PENDING_ADMIN_REVIEW", last.Comment)
	assert.Equal(t, 2, result.Request.Revision)
	assert.NotNil(t, result.Request.User, "relations are returned for display")
}

// TestApplyUpdate_SkippingAStageFails 跳过 PENDING_ADMIN_REVIEW 是不合法的流转
func TestApplyUpdate_SkippingAStageFails(t *testing.T) {
	engine, _ := newEngine(t)
	req := createAs(t, engine, u1)

	_, err := engine.ApplyUpdate(context.Background(), req.ID, root, statusPatch(types.StatusAssignedToEngineer))
	require.ErrorIs(t, err, workflow.ErrInvalidTransition)

	var terr *workflow.TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, types.StatusPendingSuperadminReview, terr.From)
	assert.Equal(t, types.StatusAssignedToEngineer, terr.To)

	reloaded, err := engine.GetRequest(context.Background(), req.ID, root)
	require.NoError(t, err)
	assert.Len(t, reloaded.ApprovalTrail, 1)
	assert.Equal(t, 1, reloaded.Revision)
}

// TestApplyUpdate_OtherUserForbidden 非创建人的普通用户总是被拒绝
func TestApplyUpdate_OtherUserForbidden(t *testing.T) {
	engine, _ := newEngine(t)
	req := createAs(t, engine, u1)

	patches := map[string]workflow.Patch{
		"legal transition":   statusPatch(types.StatusRejected),
		"illegal transition": statusPatch(types.StatusApproved),
		"field update":       {Title: strPtr("hijacked")},
	}
	for name, patch := range patches {
		t.Run(name, func(t *testing.T) {
			_, err := engine.ApplyUpdate(context.Background(), req.ID, u2, patch)
			assert.ErrorIs(t, err, workflow.ErrForbidden)
		})
	}
}

// TestApplyUpdate_CreatorCanReject 创建人可以在待审核时自行撤回
func TestApplyUpdate_CreatorCanReject(t *testing.T) {
	engine, _ := newEngine(t)
	req := createAs(t, engine, u1)

	result, err := engine.ApplyUpdate(context.Background(), req.ID, u1, statusPatch(types.StatusRejected))
	require.NoError(t, err)
	assert.Equal(t, types.StatusRejected, result.Request.Status)
	assert.Len(t, result.Request.ApprovalTrail, 2)
}

// TestApplyUpdate_FullPipeline 走完整个流程并验证轨迹单调增长
func TestApplyUpdate_FullPipeline(t *testing.T) {
	engine, _ := newEngine(t)
	req := createAs(t, engine, u1)

	path := []types.RequestStatus{
		types.StatusPendingAdminReview,
		types.StatusAssignedToEngineer,
		types.StatusInProgress,
		types.StatusCompletedByEngineer,
		types.StatusPendingMatrixApproval,
		types.StatusApproved,
	}
	for i, status := range path {
		result, err := engine.ApplyUpdate(context.Background(), req.ID, admin, statusPatch(status))
		require.NoError(t, err, "step %d", i)
		require.Len(t, result.Request.ApprovalTrail, i+2)
		assert.Equal(t, status, result.Request.ApprovalTrail[i+1].Status)
		assert.Equal(t, status, result.Request.Status)
	}

	// 终态不再允许任何流转
	for _, status := range types.AllStatuses {
		if status == types.StatusApproved {
			continue
		}
		_, err := engine.ApplyUpdate(context.Background(), req.ID, root, statusPatch(status))
		assert.ErrorIs(t, err, workflow.ErrInvalidTransition, status)
	}
}

// TestApplyUpdate_FieldsOnlyNeverAppends 不带状态的更新不追加轨迹
func TestApplyUpdate_FieldsOnlyNeverAppends(t *testing.T) {
	engine, _ := newEngine(t)
	req := createAs(t, engine, u1)

	high := types.LevelCritical
	result, err := engine.ApplyUpdate(context.Background(), req.ID, u1, workflow.Patch{
		Title:    strPtr("Replace both core switches"),
		Priority: &high,
		Comment:  strPtr("ignored without a status"),
	})
	require.NoError(t, err)

	assert.False(t, result.StatusChanged)
	assert.Equal(t, "Replace both core switches", result.Request.Title)
	assert.Equal(t, types.LevelCritical, result.Request.Priority)
	assert.Len(t, result.Request.ApprovalTrail, 1)
	assert.Equal(t, types.StatusPendingSuperadminReview, result.Request.Status)
}

// TestApplyUpdate_SameStatusIsNoChange 与当前相同的状态不做流转检查也不追加轨迹
func TestApplyUpdate_SameStatusIsNoChange(t *testing.T) {
	engine, _ := newEngine(t)
	req := createAs(t, engine, u1)

	result, err := engine.ApplyUpdate(context.Background(), req.ID, u1, statusPatch(types.StatusPendingSuperadminReview))
	require.NoError(t, err)
	assert.False(t, result.StatusChanged)
	assert.Len(t, result.Request.ApprovalTrail, 1)
}

// TestApplyUpdate_CustomComment 调用者提供的备注写入轨迹
func TestApplyUpdate_CustomComment(t *testing.T) {
	engine, db := newEngine(t)
	req := createAs(t, engine, u1)

	patch := statusPatch(types.StatusRejected)
	patch.Comment = strPtr("duplicate of REQ-12")
	result, err := engine.ApplyUpdate(context.Background(), req.ID, admin, patch)
	require.NoError(t, err)
	assert.Equal(t, "duplicate of REQ-12", result.Request.LastTrailEntry().Comment)

	var history []model.StateHistoryModel
	require.NoError(t, db.Where("request_id = ?", req.ID).Order("created_at").Find(&history).Error)
	require.Len(t, history, 2)
	assert.Equal(t, types.StatusPendingSuperadminReview, history[1].FromState)
	assert.Equal(t, types.StatusRejected, history[1].ToState)
	assert.Equal(t, "admin", history[1].Operator)
}

// TestApplyUpdate_Errors 缺少 ID、不存在的请求与非法补丁
func TestApplyUpdate_Errors(t *testing.T) {
	engine, _ := newEngine(t)
	req := createAs(t, engine, u1)

	_, err := engine.ApplyUpdate(context.Background(), "", root, statusPatch(types.StatusRejected))
	assert.ErrorIs(t, err, workflow.ErrValidation)

	_, err = engine.ApplyUpdate(context.Background(), "missing", root, statusPatch(types.StatusRejected))
	assert.ErrorIs(t, err, workflow.ErrNotFound)

	_, err = engine.ApplyUpdate(context.Background(), req.ID, root, workflow.Patch{Title: strPtr("  ")})
	assert.ErrorIs(t, err, workflow.ErrValidation)

	_, err = engine.ApplyUpdate(context.Background(), req.ID, root, workflow.Patch{DepartmentID: strPtr("dept-404")})
	assert.ErrorIs(t, err, workflow.ErrValidation)

	_, err = engine.ApplyUpdate(context.Background(), req.ID, types.Principal{}, statusPatch(types.StatusRejected))
	assert.ErrorIs(t, err, workflow.ErrUnauthenticated)
}

// TestListRequests 列表按角色限定范围并按创建时间倒序
func TestListRequests(t *testing.T) {
	engine, _ := newEngine(t)
	first := createAs(t, engine, u1)
	second := createAs(t, engine, u2)
	third := createAs(t, engine, u1)

	all, err := engine.ListRequests(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	own, err := engine.ListRequests(context.Background(), u1)
	require.NoError(t, err)
	require.Len(t, own, 2)
	for _, r := range own {
		assert.Equal(t, "u1", r.UserID)
	}

	// ADMIN 可以修改任意请求,但列表仍只看到自己的
	adminList, err := engine.ListRequests(context.Background(), admin)
	require.NoError(t, err)
	assert.Empty(t, adminList)
}

// TestGetRequest 读取授权与额外查看授权
func TestGetRequest(t *testing.T) {
	engine, _ := newEngine(t)
	req := createAs(t, engine, u1)

	_, err := engine.GetRequest(context.Background(), req.ID, u1)
	assert.NoError(t, err)
	_, err = engine.GetRequest(context.Background(), req.ID, admin)
	assert.NoError(t, err)
	_, err = engine.GetRequest(context.Background(), req.ID, u2)
	assert.ErrorIs(t, err, workflow.ErrForbidden)
	_, err = engine.GetRequest(context.Background(), "missing", u1)
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

// TestGetRequest_ViewGrant 外部授予的查看者可以读取但不能修改
func TestGetRequest_ViewGrant(t *testing.T) {
	grant := func(ctx context.Context, principal types.Principal, requestID string) (bool, error) {
		return principal.ID == "u2", nil
	}
	engine, _ := newEngine(t, workflow.WithViewGrant(grant))
	req := createAs(t, engine, u1)

	got, err := engine.GetRequest(context.Background(), req.ID, u2)
	require.NoError(t, err)
	assert.Equal(t, req.ID, got.ID)

	_, err = engine.ApplyUpdate(context.Background(), req.ID, u2, statusPatch(types.StatusRejected))
	assert.ErrorIs(t, err, workflow.ErrForbidden)
}

// TestGetRequest_ViewGrantError 查看授权检查失败时按未授权处理
func TestGetRequest_ViewGrantError(t *testing.T) {
	grant := func(ctx context.Context, principal types.Principal, requestID string) (bool, error) {
		return true, errors.New("openfga unavailable")
	}
	logger, hook := logrustest.NewNullLogger()
	engine, _ := newEngine(t, workflow.WithViewGrant(grant), workflow.WithLogger(logger))
	req := createAs(t, engine, u1)

	_, err := engine.GetRequest(context.Background(), req.ID, u2)
	assert.ErrorIs(t, err, workflow.ErrForbidden)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	// 所有者不依赖查看授权
	_, err = engine.GetRequest(context.Background(), req.ID, u1)
	assert.NoError(t, err)
}

// TestApplyUpdate_GuardBeforePatchChecks 先授权再校验补丁字段
func TestApplyUpdate_GuardBeforePatchChecks(t *testing.T) {
	engine, _ := newEngine(t)
	req := createAs(t, engine, u1)

	_, err := engine.ApplyUpdate(context.Background(), req.ID, u2, workflow.Patch{Title: strPtr("")})
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	_, err = engine.ApplyUpdate(context.Background(), "missing", root, workflow.Patch{Title: strPtr("")})
	assert.ErrorIs(t, err, workflow.ErrNotFound)

	_, err = engine.ApplyUpdate(context.Background(), req.ID, u1, workflow.Patch{Title: strPtr("")})
	assert.ErrorIs(t, err, workflow.ErrValidation)
}

func strPtr(s string) *string {
	return &s
}
