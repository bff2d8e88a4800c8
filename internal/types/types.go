package types

import (
	"fmt"
	"strings"
)

// RequestStatus 请求状态
type RequestStatus string

const (
	StatusPendingSuperadminReview RequestStatus = "PENDING_SUPERADMIN_REVIEW"
	StatusPendingAdminReview      RequestStatus = "PENDING_ADMIN_REVIEW"
	StatusAssignedToEngineer      RequestStatus = "ASSIGNED_TO_ENGINEER"
	StatusInProgress              RequestStatus = "IN_PROGRESS"
	StatusCompletedByEngineer     RequestStatus = "COMPLETED_BY_ENGINEER"
	StatusPendingMatrixApproval   RequestStatus = "PENDING_MATRIX_APPROVAL"
	StatusApproved                RequestStatus = "APPROVED"
	StatusRejected                RequestStatus = "REJECTED"
)

// AllStatuses 全部请求状态,按流程顺序排列
var AllStatuses = []RequestStatus{
	StatusPendingSuperadminReview,
	StatusPendingAdminReview,
	StatusAssignedToEngineer,
	StatusInProgress,
	StatusCompletedByEngineer,
	StatusPendingMatrixApproval,
	StatusApproved,
	StatusRejected,
}

// Valid 判断状态是否属于枚举
func (s RequestStatus) Valid() bool {
	for _, status := range AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ParseRequestStatus 将字符串解析为请求状态
func ParseRequestStatus(s string) (RequestStatus, error) {
	status := RequestStatus(strings.TrimSpace(s))
	if !status.Valid() {
		return "", fmt.Errorf("unknown request status %q", s)
	}
	return status, nil
}

// Level 优先级与影响范围共用的等级
type Level string

const (
	LevelLow      Level = "LOW"
	LevelMedium   Level = "MEDIUM"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// Priority 请求优先级
type Priority = Level

// ImpactCategory 影响范围
type ImpactCategory = Level

// AllLevels 全部等级
var AllLevels = []Level{LevelLow, LevelMedium, LevelHigh, LevelCritical}

// Valid 判断等级是否合法
func (l Level) Valid() bool {
	for _, level := range AllLevels {
		if l == level {
			return true
		}
	}
	return false
}

// ParseLevel 将字符串解析为等级
func ParseLevel(s string) (Level, error) {
	level := Level(strings.ToUpper(strings.TrimSpace(s)))
	if !level.Valid() {
		return "", fmt.Errorf("unknown level %q", s)
	}
	return level, nil
}

// Role 用户角色
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperadmin Role = "SUPERADMIN"
)

// ParseRole 解析角色,大小写不敏感
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleSuperadmin:
		return RoleSuperadmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// IsElevated ADMIN 与 SUPERADMIN 为管理角色
func (r Role) IsElevated() bool {
	return r == RoleAdmin || r == RoleSuperadmin
}

// Principal 身份提供方解析出的调用者
type Principal struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}
