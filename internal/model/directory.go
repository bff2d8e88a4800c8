package model

import (
	"errors"
	"time"

	"github.com/mautops/request-gin/internal/types"
)

// 组织目录由外部目录服务维护,这里只保留请求关联展示需要的摘要字段

// UserModel 用户摘要
type UserModel struct {
	ID        string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string     `gorm:"type:varchar(255)" json:"name"`
	Email     string     `gorm:"type:varchar(255);index" json:"email"`
	Role      types.Role `gorm:"type:varchar(16);not null;default:'USER'" json:"role"`
	CreatedAt time.Time  `gorm:"not null" json:"-"`
	UpdatedAt time.Time  `gorm:"not null" json:"-"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// ProviderModel 租户组织摘要
type ProviderModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`
}

// TableName 指定表名
func (ProviderModel) TableName() string {
	return "providers"
}

// DepartmentModel 部门摘要
type DepartmentModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	ProviderID string    `gorm:"type:varchar(64);not null;index" json:"providerId"`
	CreatedAt  time.Time `gorm:"not null" json:"-"`
	UpdatedAt  time.Time `gorm:"not null" json:"-"`
}

// TableName 指定表名
func (DepartmentModel) TableName() string {
	return "departments"
}

// Validate 验证部门模型
func (dm *DepartmentModel) Validate() error {
	if dm.ID == "" {
		return errors.New("department ID is required")
	}
	if dm.Name == "" {
		return errors.New("department name is required")
	}
	if dm.ProviderID == "" {
		return errors.New("provider ID is required")
	}
	return nil
}
