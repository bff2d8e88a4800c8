package service

import (
	"context"
	"errors"

	"github.com/mautops/request-gin/internal/auth"
	"github.com/mautops/request-gin/internal/metrics"
	"github.com/mautops/request-gin/internal/model"
	"github.com/mautops/request-gin/internal/repository"
	"github.com/mautops/request-gin/internal/statemachine"
	"github.com/mautops/request-gin/internal/types"
	"github.com/mautops/request-gin/internal/workflow"
	"github.com/sirupsen/logrus"
)

const resourceTypeRequest = "request"

// RequestService 服务请求服务接口
type RequestService interface {
	List(ctx context.Context, principal types.Principal) ([]*model.RequestModel, error)
	Create(ctx context.Context, principal types.Principal, input workflow.CreateInput) (*model.RequestModel, error)
	Update(ctx context.Context, principal types.Principal, id string, patch workflow.Patch) (*model.RequestModel, error)
	Get(ctx context.Context, principal types.Principal, id string) (*model.RequestModel, error)
	History(ctx context.Context, principal types.Principal, id string) ([]*model.StateHistoryModel, error)
	Transitions(ctx context.Context, principal types.Principal, id string) (*TransitionsView, error)
}

// TransitionsView 请求当前状态与可流转的下一状态
type TransitionsView struct {
	Status   types.RequestStatus   `json:"status"`
	Allowed  []types.RequestStatus `json:"allowed"`
	Terminal bool                  `json:"terminal"`
}

// requestService 服务请求服务实现
// 流程规则与事件 outbox 都在 workflow.Engine 中,这里负责审计、指标与关系镜像
type requestService struct {
	engine      *workflow.Engine
	historyRepo repository.StateHistoryRepository
	auditLogSvc AuditLogService
	relations   auth.RelationStore
	logger      *logrus.Logger
}

// NewRequestService 创建服务请求服务
// relations 可以为 nil
func NewRequestService(
	engine *workflow.Engine,
	historyRepo repository.StateHistoryRepository,
	auditLogSvc AuditLogService,
	relations auth.RelationStore,
	logger *logrus.Logger,
) RequestService {
	return &requestService{
		engine:      engine,
		historyRepo: historyRepo,
		auditLogSvc: auditLogSvc,
		relations:   relations,
		logger:      logger,
	}
}

// List 列出调用者可见的请求
func (s *requestService) List(ctx context.Context, principal types.Principal) ([]*model.RequestModel, error) {
	return s.engine.ListRequests(ctx, principal)
}

// Create 创建请求
func (s *requestService) Create(ctx context.Context, principal types.Principal, input workflow.CreateInput) (*model.RequestModel, error) {
	req, err := s.engine.CreateRequest(ctx, principal, input)
	if err != nil {
		return nil, err
	}

	metrics.RecordRequestCreated()

	s.audit(ctx, principal.ID, AuditActionCreate, req.ID, map[string]interface{}{
		"status":       req.Status,
		"providerId":   req.ProviderID,
		"departmentId": req.DepartmentID,
		"priority":     req.Priority,
	})

	if s.relations != nil {
		if err := s.relations.SetRelation(ctx, principal.ID, auth.RelationCreator, auth.ObjectTypeRequest, req.ID); err != nil {
			s.logger.WithError(err).WithField("request_id", req.ID).Warn("failed to write creator relation")
		}
	}

	return req, nil
}

// Update 更新请求,可能包含状态流转
func (s *requestService) Update(ctx context.Context, principal types.Principal, id string, patch workflow.Patch) (*model.RequestModel, error) {
	result, err := s.engine.ApplyUpdate(ctx, id, principal, patch)
	if err != nil {
		if reason := rejectionReason(err); reason != "" {
			metrics.RecordUpdateRejected(reason)
		}
		return nil, err
	}

	req := result.Request
	if !result.StatusChanged {
		s.audit(ctx, principal.ID, AuditActionUpdate, req.ID, map[string]interface{}{
			"revision": req.Revision,
		})
		return req, nil
	}

	metrics.RecordTransition(result.From, result.To)

	comment := ""
	if last := req.LastTrailEntry(); last != nil {
		comment = last.Comment
	}
	s.audit(ctx, principal.ID, AuditActionTransition, req.ID, map[string]interface{}{
		"from":     result.From,
		"to":       result.To,
		"comment":  comment,
		"revision": req.Revision,
	})

	return req, nil
}

// Get 读取单个请求
func (s *requestService) Get(ctx context.Context, principal types.Principal, id string) (*model.RequestModel, error) {
	return s.engine.GetRequest(ctx, id, principal)
}

// History 读取状态历史
func (s *requestService) History(ctx context.Context, principal types.Principal, id string) ([]*model.StateHistoryModel, error) {
	if _, err := s.engine.GetRequest(ctx, id, principal); err != nil {
		return nil, err
	}
	return s.historyRepo.FindByRequestID(ctx, id)
}

// Transitions 读取可流转的下一状态
func (s *requestService) Transitions(ctx context.Context, principal types.Principal, id string) (*TransitionsView, error) {
	req, err := s.engine.GetRequest(ctx, id, principal)
	if err != nil {
		return nil, err
	}
	return &TransitionsView{
		Status:   req.Status,
		Allowed:  statemachine.AllowedTransitions(req.Status),
		Terminal: statemachine.IsTerminal(req.Status),
	}, nil
}

// audit 审计日志写入失败不影响主流程
func (s *requestService) audit(ctx context.Context, userID, action, requestID string, details map[string]interface{}) {
	if s.auditLogSvc == nil {
		return
	}
	if err := s.auditLogSvc.RecordAction(ctx, userID, action, resourceTypeRequest, requestID, details); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"request_id": requestID,
			"action":     action,
		}).Warn("failed to record audit log")
	}
}

// rejectionReason 流程拒绝更新的原因,非流程错误返回空串
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, workflow.ErrValidation):
		return "validation"
	case errors.Is(err, workflow.ErrForbidden):
		return "forbidden"
	case errors.Is(err, workflow.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, workflow.ErrConflict):
		return "conflict"
	case errors.Is(err, workflow.ErrNotFound):
		return "not_found"
	}
	return ""
}

// ViewGrantFromRelations 基于关系存储的查看授权
func ViewGrantFromRelations(relations auth.RelationStore) workflow.ViewGrant {
	return func(ctx context.Context, principal types.Principal, requestID string) (bool, error) {
		return relations.CheckPermission(ctx, principal.ID, auth.RelationViewer, auth.ObjectTypeRequest, requestID)
	}
}
