// Package workflow 服务请求审批流程引擎
//
// Engine 是请求的唯一修改入口: 加载请求,依次经过 auth.Authorize 与
// statemachine.IsLegalTransition 校验,再把字段修改、轨迹追加与 outbox 事件在一次仓储写入中提交。
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mautops/request-gin/internal/auth"
	"github.com/mautops/request-gin/internal/model"
	"github.com/mautops/request-gin/internal/repository"
	"github.com/mautops/request-gin/internal/statemachine"
	"github.com/mautops/request-gin/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// CreatedComment 新建请求时的轨迹备注
const CreatedComment = "Request created"

// DefaultMaxAttempts 版本冲突时的最大尝试次数
const DefaultMaxAttempts = 3

// ViewGrant 额外的查看授权,例如外部授予的查看者关系
type ViewGrant func(ctx context.Context, principal types.Principal, requestID string) (bool, error)

// UpdateResult ApplyUpdate 的结果
type UpdateResult struct {
	Request       *model.RequestModel
	From          types.RequestStatus
	To            types.RequestStatus
	StatusChanged bool
}

// Engine 审批流程引擎
type Engine struct {
	requests    repository.RequestRepository
	directory   repository.DirectoryRepository
	now         func() time.Time
	newID       func() string
	viewGrant   ViewGrant
	maxAttempts int
	outbox      Outbox
	logger      *logrus.Logger
}

// Option 引擎选项
type Option func(*Engine)

// WithClock 指定时钟
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator 指定 ID 生成器
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// WithViewGrant 指定额外的查看授权
func WithViewGrant(grant ViewGrant) Option {
	return func(e *Engine) { e.viewGrant = grant }
}

// WithMaxAttempts 指定版本冲突时的最大尝试次数
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// WithLogger 指定日志记录器
func WithLogger(logger *logrus.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine 创建审批流程引擎
func NewEngine(requests repository.RequestRepository, directory repository.DirectoryRepository, opts ...Option) *Engine {
	e := &Engine{
		requests:    requests,
		directory:   directory,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
		maxAttempts: DefaultMaxAttempts,
		logger:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ApplyUpdate 对请求应用部分更新
// 校验失败时不会产生任何写入;状态变化时追加一条轨迹,与字段修改一并提交
func (e *Engine) ApplyUpdate(ctx context.Context, requestID string, principal types.Principal, patch Patch) (*UpdateResult, error) {
	if principal.ID == "" {
		return nil, ErrUnauthenticated
	}
	if requestID == "" {
		return nil, &ValidationError{Fields: []FieldError{{Field: "id", Reason: "is required"}}}
	}

	for attempt := 1; ; attempt++ {
		current, err := e.load(ctx, requestID)
		if err != nil {
			return nil, err
		}

		next, history, err := e.prepare(ctx, current, principal, patch)
		if err != nil {
			return nil, err
		}

		event, err := e.buildEvent(updateChange(current, next, history, principal))
		if err != nil {
			return nil, err
		}

		updated, err := e.requests.Update(ctx, next, current.Revision, history, event)
		if errors.Is(err, repository.ErrRevisionMismatch) {
			if attempt < e.maxAttempts {
				continue
			}
			return nil, ErrConflict
		}
		if err != nil {
			return nil, fmt.Errorf("failed to persist request %s: %w", requestID, err)
		}
		e.dispatch(ctx, event)

		return &UpdateResult{
			Request:       updated,
			From:          current.Status,
			To:            updated.Status,
			StatusChanged: history != nil,
		}, nil
	}
}

// prepare 在当前请求的副本上应用补丁
// 返回的 history 为 nil 表示状态未变化
func (e *Engine) prepare(ctx context.Context, current *model.RequestModel, principal types.Principal, patch Patch) (*model.RequestModel, *model.StateHistoryModel, error) {
	if err := auth.Authorize(principal, current.UserID); err != nil {
		return nil, nil, err
	}
	if err := patch.validate(); err != nil {
		return nil, nil, err
	}

	statusChanged := patch.Status != nil && *patch.Status != current.Status
	if statusChanged && !statemachine.IsLegalTransition(current.Status, *patch.Status) {
		return nil, nil, &TransitionError{From: current.Status, To: *patch.Status}
	}

	next := *current
	next.User, next.Provider, next.Department = nil, nil, nil
	next.ApprovalTrail = append(datatypes.JSONSlice[model.ApprovalTrailEntry]{}, current.ApprovalTrail...)
	applyFields(&next, patch)

	if patch.RequiredStartDate != nil || patch.RequiredCompletionDate != nil {
		if err := e.checkDates(&next); err != nil {
			return nil, nil, err
		}
	}
	if patch.changesDirectory() {
		if err := e.checkDirectory(ctx, next.ProviderID, next.DepartmentID); err != nil {
			return nil, nil, err
		}
	}

	now := e.now()
	next.UpdatedAt = now

	if !statusChanged {
		return &next, nil, nil
	}

	to := *patch.Status
	comment := fmt.Sprintf("Status changed to %s", to)
	if patch.Comment != nil && *patch.Comment != "" {
		comment = *patch.Comment
	}

	next.Status = to
	next.ApprovalTrail = append(next.ApprovalTrail, model.ApprovalTrailEntry{
		Status:    to,
		Timestamp: now,
		UserID:    principal.ID,
		Comment:   comment,
	})

	history := &model.StateHistoryModel{
		ID:        e.newID(),
		RequestID: current.ID,
		FromState: current.Status,
		ToState:   to,
		Comment:   comment,
		Operator:  principal.ID,
		CreatedAt: now,
	}
	return &next, history, nil
}

// updateChange 描述一次更新,history 为 nil 表示只修改字段
func updateChange(current, next *model.RequestModel, history *model.StateHistoryModel, principal types.Principal) Change {
	change := Change{
		Kind:    ChangeUpdated,
		Request: next,
		From:    current.Status,
		To:      next.Status,
		ActorID: principal.ID,
		At:      next.UpdatedAt,
	}
	if history != nil {
		change.Kind = ChangeStatusChanged
		change.Comment = history.Comment
	}
	return change
}

// applyFields 应用非状态字段
func applyFields(req *model.RequestModel, patch Patch) {
	if patch.Title != nil {
		req.Title = *patch.Title
	}
	if patch.RequestedService != nil {
		req.RequestedService = *patch.RequestedService
	}
	if patch.ServiceDescription != nil {
		req.ServiceDescription = *patch.ServiceDescription
	}
	if patch.BusinessJustification != nil {
		req.BusinessJustification = *patch.BusinessJustification
	}
	if patch.RequiredStartDate != nil {
		req.RequiredStartDate = *patch.RequiredStartDate
	}
	if patch.RequiredCompletionDate != nil {
		req.RequiredCompletionDate = *patch.RequiredCompletionDate
	}
	if patch.FileURL != nil {
		if *patch.FileURL == "" {
			req.FileURL = nil
		} else {
			url := *patch.FileURL
			req.FileURL = &url
		}
	}
	if patch.Priority != nil {
		req.Priority = *patch.Priority
	}
	if patch.ImpactCategory != nil {
		req.ImpactCategory = *patch.ImpactCategory
	}
	if patch.RequestGroup != nil {
		req.RequestGroup = *patch.RequestGroup
	}
	if patch.ProviderID != nil {
		req.ProviderID = *patch.ProviderID
	}
	if patch.DepartmentID != nil {
		req.DepartmentID = *patch.DepartmentID
	}
}

// CreateRequest 创建请求
// 初始状态为 PENDING_SUPERADMIN_REVIEW,轨迹只有一条创建记录
func (e *Engine) CreateRequest(ctx context.Context, principal types.Principal, input CreateInput) (*model.RequestModel, error) {
	if principal.ID == "" {
		return nil, ErrUnauthenticated
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := e.checkDirectory(ctx, input.ProviderID, input.DepartmentID); err != nil {
		return nil, err
	}

	now := e.now()
	if err := e.directory.UpsertUser(ctx, &model.UserModel{
		ID:        principal.ID,
		Name:      principal.Name,
		Email:     principal.Email,
		Role:      principal.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("failed to sync creator: %w", err)
	}

	var fileURL *string
	if input.FileURL != nil && *input.FileURL != "" {
		url := *input.FileURL
		fileURL = &url
	}

	req := &model.RequestModel{
		ID:                     e.newID(),
		Title:                  input.Title,
		RequestedService:       input.RequestedService,
		ServiceDescription:     input.ServiceDescription,
		BusinessJustification:  input.BusinessJustification,
		RequiredStartDate:      *input.RequiredStartDate,
		RequiredCompletionDate: *input.RequiredCompletionDate,
		FileURL:                fileURL,
		Priority:               input.Priority,
		ImpactCategory:         input.ImpactCategory,
		RequestGroup:           input.RequestGroup,
		Status:                 statemachine.InitialStatus,
		ApprovalTrail: datatypes.JSONSlice[model.ApprovalTrailEntry]{{
			Status:    statemachine.InitialStatus,
			Timestamp: now,
			UserID:    principal.ID,
			Comment:   CreatedComment,
		}},
		Revision:     1,
		UserID:       principal.ID,
		ProviderID:   input.ProviderID,
		DepartmentID: input.DepartmentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("built an invalid request: %w", err)
	}

	history := &model.StateHistoryModel{
		ID:        e.newID(),
		RequestID: req.ID,
		ToState:   statemachine.InitialStatus,
		Comment:   CreatedComment,
		Operator:  principal.ID,
		CreatedAt: now,
	}

	event, err := e.buildEvent(Change{
		Kind:    ChangeCreated,
		Request: req,
		To:      req.Status,
		ActorID: principal.ID,
		Comment: CreatedComment,
		At:      now,
	})
	if err != nil {
		return nil, err
	}

	created, err := e.requests.Create(ctx, req, history, event)
	if err != nil {
		return nil, fmt.Errorf("failed to persist request: %w", err)
	}
	e.dispatch(ctx, event)
	return created, nil
}

// ListRequests 列出调用者可见的请求
// SUPERADMIN 可见全部,其他角色只看到自己创建的
func (e *Engine) ListRequests(ctx context.Context, principal types.Principal) ([]*model.RequestModel, error) {
	if principal.ID == "" {
		return nil, ErrUnauthenticated
	}

	var (
		reqs []*model.RequestModel
		err  error
	)
	if auth.CanViewAll(principal) {
		reqs, err = e.requests.FindAll(ctx)
	} else {
		reqs, err = e.requests.FindByUser(ctx, principal.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return reqs, nil
}

// GetRequest 读取单个请求,授权规则与修改相同
func (e *Engine) GetRequest(ctx context.Context, requestID string, principal types.Principal) (*model.RequestModel, error) {
	if principal.ID == "" {
		return nil, ErrUnauthenticated
	}

	req, err := e.load(ctx, requestID)
	if err != nil {
		return nil, err
	}

	err = auth.Authorize(principal, req.UserID)
	if err == nil {
		return req, nil
	}
	if e.viewGrant != nil {
		allowed, grantErr := e.viewGrant(ctx, principal, req.ID)
		if grantErr != nil {
			e.logger.WithError(grantErr).WithFields(logrus.Fields{
				"request_id": req.ID,
				"user_id":    principal.ID,
			}).Warn("View grant check failed, treating as not granted")
		}
		if allowed && grantErr == nil {
			return req, nil
		}
	}
	return nil, err
}

func (e *Engine) load(ctx context.Context, requestID string) (*model.RequestModel, error) {
	req, err := e.requests.FindByID(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load request %s: %w", requestID, err)
	}
	return req, nil
}

func (e *Engine) checkDates(req *model.RequestModel) error {
	if req.RequiredCompletionDate.Before(req.RequiredStartDate) {
		return &ValidationError{Fields: []FieldError{{
			Field:  "requiredCompletionDate",
			Reason: "must not be before requiredStartDate",
		}}}
	}
	return nil
}

// checkDirectory 校验租户与部门存在且部门属于该租户
func (e *Engine) checkDirectory(ctx context.Context, providerID, departmentID string) error {
	verr := &ValidationError{}

	exists, err := e.directory.ProviderExists(ctx, providerID)
	if err != nil {
		return err
	}
	if !exists {
		verr.add("providerId", "does not reference a known provider")
	}

	dept, err := e.directory.FindDepartment(ctx, departmentID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		verr.add("departmentId", "does not reference a known department")
	case err != nil:
		return err
	case exists && dept.ProviderID != providerID:
		verr.add("departmentId", "does not belong to the provider")
	}

	return verr.err()
}
