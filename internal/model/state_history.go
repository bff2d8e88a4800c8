package model

import (
	"errors"
	"time"

	"github.com/mautops/request-gin/internal/types"
)

// StateHistoryModel 状态变更历史
// 审批轨迹的规范化副本,与请求行在同一事务内写入
type StateHistoryModel struct {
	ID        string              `gorm:"primaryKey;type:varchar(64)" json:"id"`
	RequestID string              `gorm:"type:varchar(64);not null;index" json:"requestId"`
	FromState types.RequestStatus `gorm:"type:varchar(32)" json:"fromState,omitempty"`
	ToState   types.RequestStatus `gorm:"type:varchar(32);not null" json:"toState"`
	Comment   string              `gorm:"type:text" json:"comment"`
	Operator  string              `gorm:"type:varchar(64);not null" json:"operator"`
	CreatedAt time.Time           `gorm:"not null;index" json:"createdAt"`
}

// TableName 指定表名
func (StateHistoryModel) TableName() string {
	return "state_history"
}

// Validate 验证状态历史模型
func (shm *StateHistoryModel) Validate() error {
	if shm.ID == "" {
		return errors.New("history ID is required")
	}
	if shm.RequestID == "" {
		return errors.New("request ID is required")
	}
	if shm.ToState == "" {
		return errors.New("to state is required")
	}
	if shm.Operator == "" {
		return errors.New("operator is required")
	}
	return nil
}
