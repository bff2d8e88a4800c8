package repository

import (
	"context"

	"github.com/mautops/request-gin/internal/model"
	"gorm.io/gorm"
)

// StateHistoryRepository 状态历史仓储接口
// 写入由 RequestRepository 在请求事务内完成,这里只读
type StateHistoryRepository interface {
	FindByRequestID(ctx context.Context, requestID string) ([]*model.StateHistoryModel, error)
}

// stateHistoryRepository 状态历史仓储实现
type stateHistoryRepository struct {
	db *gorm.DB
}

// NewStateHistoryRepository 创建状态历史仓储
func NewStateHistoryRepository(db *gorm.DB) StateHistoryRepository {
	return &stateHistoryRepository{db: db}
}

// FindByRequestID 根据请求 ID 查找状态历史,按时间正序
func (r *stateHistoryRepository) FindByRequestID(ctx context.Context, requestID string) ([]*model.StateHistoryModel, error) {
	var histories []*model.StateHistoryModel
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&histories).Error
	return histories, err
}
