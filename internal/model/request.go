package model

import (
	"errors"
	"time"

	"github.com/mautops/request-gin/internal/types"
	"gorm.io/datatypes"
)

// ApprovalTrailEntry 审批轨迹条目
// 只追加,写入后不再修改
type ApprovalTrailEntry struct {
	Status    types.RequestStatus `json:"status"`
	Timestamp time.Time           `json:"timestamp"`
	UserID    string              `json:"userId"`
	Comment   string              `json:"comment"`
}

// RequestModel 服务请求数据模型
type RequestModel struct {
	ID                     string                                  `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Title                  string                                  `gorm:"type:varchar(255);not null" json:"title"`
	RequestedService       string                                  `gorm:"type:varchar(128);not null" json:"requestedService"`
	ServiceDescription     string                                  `gorm:"type:text;not null" json:"serviceDescription"`
	BusinessJustification  string                                  `gorm:"type:text;not null" json:"businessJustification"`
	RequiredStartDate      time.Time                               `gorm:"not null" json:"requiredStartDate"`
	RequiredCompletionDate time.Time                               `gorm:"not null" json:"requiredCompletionDate"`
	FileURL                *string                                 `gorm:"type:text" json:"fileUrl,omitempty"`
	Priority               types.Priority                          `gorm:"type:varchar(16);not null" json:"priority"`
	ImpactCategory         types.ImpactCategory                    `gorm:"type:varchar(16);not null" json:"impactCategory"`
	RequestGroup           string                                  `gorm:"type:varchar(128);not null" json:"requestGroup"`
	Status                 types.RequestStatus                     `gorm:"type:varchar(32);not null;index" json:"status"`
	ApprovalTrail          datatypes.JSONSlice[ApprovalTrailEntry] `json:"approvalTrail"`
	Revision               int                                     `gorm:"not null;default:1" json:"revision"`
	UserID                 string                                  `gorm:"type:varchar(64);not null;index" json:"userId"`
	ProviderID             string                                  `gorm:"type:varchar(64);not null;index" json:"providerId"`
	DepartmentID           string                                  `gorm:"type:varchar(64);not null;index" json:"departmentId"`
	CreatedAt              time.Time                               `gorm:"not null;index" json:"createdAt"`
	UpdatedAt              time.Time                               `gorm:"not null" json:"updatedAt"`

	User       *UserModel       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Provider   *ProviderModel   `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	Department *DepartmentModel `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (RequestModel) TableName() string {
	return "requests"
}

// Validate 验证请求模型
func (rm *RequestModel) Validate() error {
	if rm.ID == "" {
		return errors.New("request ID is required")
	}
	if rm.UserID == "" {
		return errors.New("user ID is required")
	}
	if !rm.Status.Valid() {
		return errors.New("request status is invalid")
	}
	if len(rm.ApprovalTrail) == 0 {
		return errors.New("approval trail is required")
	}
	for _, entry := range rm.ApprovalTrail {
		if entry.UserID == "" {
			return errors.New("approval trail entry user ID is required")
		}
	}
	return nil
}

// LastTrailEntry 返回最近一条轨迹
func (rm *RequestModel) LastTrailEntry() *ApprovalTrailEntry {
	if len(rm.ApprovalTrail) == 0 {
		return nil
	}
	entry := rm.ApprovalTrail[len(rm.ApprovalTrail)-1]
	return &entry
}
