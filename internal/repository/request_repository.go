package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mautops/request-gin/internal/model"
	"github.com/mautops/request-gin/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrRevisionMismatch 乐观锁版本不匹配,记录已被并发修改
	ErrRevisionMismatch = errors.New("revision mismatch")
)

// RequestRepository 服务请求仓储接口
// 所有读取都带出创建人、租户、部门摘要;
// 写入时 history 与 event 可以为 nil,非 nil 时与请求在同一事务内落库
type RequestRepository interface {
	FindByID(ctx context.Context, id string) (*model.RequestModel, error)
	FindAll(ctx context.Context) ([]*model.RequestModel, error)
	FindByUser(ctx context.Context, userID string) ([]*model.RequestModel, error)
	Create(ctx context.Context, req *model.RequestModel, history *model.StateHistoryModel, event *model.EventModel) (*model.RequestModel, error)
	Update(ctx context.Context, req *model.RequestModel, expectedRevision int, history *model.StateHistoryModel, event *model.EventModel) (*model.RequestModel, error)
	CountByStatus(ctx context.Context) (map[types.RequestStatus]int64, error)
}

// requestRepository 服务请求仓储实现
type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository 创建服务请求仓储
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// withRelations 预加载关联摘要
func (r *requestRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("Provider").
		Preload("Department")
}

// FindByID 根据 ID 查找请求
func (r *requestRepository) FindByID(ctx context.Context, id string) (*model.RequestModel, error) {
	var req model.RequestModel
	if err := r.withRelations(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find request: %w", err)
	}
	return &req, nil
}

// FindAll 查找所有请求,按创建时间倒序
func (r *requestRepository) FindAll(ctx context.Context) ([]*model.RequestModel, error) {
	var reqs []*model.RequestModel
	err := r.withRelations(ctx).Order("created_at DESC").Order("id DESC").Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return reqs, nil
}

// FindByUser 查找某个用户创建的请求
func (r *requestRepository) FindByUser(ctx context.Context, userID string) ([]*model.RequestModel, error) {
	var reqs []*model.RequestModel
	err := r.withRelations(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return reqs, nil
}

// Create 保存新请求及其初始状态历史与事件
func (r *requestRepository) Create(ctx context.Context, req *model.RequestModel, history *model.StateHistoryModel, event *model.EventModel) (*model.RequestModel, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(req).Error; err != nil {
			return err
		}
		return createRelated(tx, history, event)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return r.FindByID(ctx, req.ID)
}

// Update 以 compare-and-swap 方式写回请求
// 字段、完整审批轨迹、版本号、状态历史与事件在同一事务内提交;
// 版本号不匹配时返回 ErrRevisionMismatch,不做任何写入
func (r *requestRepository) Update(ctx context.Context, req *model.RequestModel, expectedRevision int, history *model.StateHistoryModel, event *model.EventModel) (*model.RequestModel, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.RequestModel{}).
			Where("id = ? AND revision = ?", req.ID, expectedRevision).
			Updates(map[string]interface{}{
				"title":                    req.Title,
				"requested_service":        req.RequestedService,
				"service_description":      req.ServiceDescription,
				"business_justification":   req.BusinessJustification,
				"required_start_date":      req.RequiredStartDate,
				"required_completion_date": req.RequiredCompletionDate,
				"file_url":                 req.FileURL,
				"priority":                 req.Priority,
				"impact_category":          req.ImpactCategory,
				"request_group":            req.RequestGroup,
				"provider_id":              req.ProviderID,
				"department_id":            req.DepartmentID,
				"status":                   req.Status,
				"approval_trail":           req.ApprovalTrail,
				"revision":                 expectedRevision + 1,
				"updated_at":               req.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRevisionMismatch
		}

		return createRelated(tx, history, event)
	})
	if err != nil {
		if errors.Is(err, ErrRevisionMismatch) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update request: %w", err)
	}

	return r.FindByID(ctx, req.ID)
}

// createRelated 写入与请求同一事务的状态历史和事件
func createRelated(tx *gorm.DB, history *model.StateHistoryModel, event *model.EventModel) error {
	if history != nil {
		if err := tx.Create(history).Error; err != nil {
			return err
		}
	}
	if event != nil {
		if err := event.Validate(); err != nil {
			return err
		}
		if err := tx.Create(event).Error; err != nil {
			return err
		}
	}
	return nil
}

// CountByStatus 统计各状态的请求数
func (r *requestRepository) CountByStatus(ctx context.Context) (map[types.RequestStatus]int64, error) {
	var rows []struct {
		Status types.RequestStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.RequestModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count requests: %w", err)
	}

	counts := make(map[types.RequestStatus]int64, len(types.AllStatuses))
	for _, status := range types.AllStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
