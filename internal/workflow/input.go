package workflow

import (
	"strings"
	"time"

	"github.com/mautops/request-gin/internal/types"
)

// CreateInput 创建请求的输入
type CreateInput struct {
	Title                  string
	RequestedService       string
	ServiceDescription     string
	BusinessJustification  string
	RequiredStartDate      *time.Time
	RequiredCompletionDate *time.Time
	FileURL                *string
	Priority               types.Priority
	ImpactCategory         types.ImpactCategory
	RequestGroup           string
	ProviderID             string
	DepartmentID           string
}

// validate 列出所有缺失或非法的字段
func (in CreateInput) validate() error {
	verr := &ValidationError{}

	required := []struct {
		field string
		value string
	}{
		{"title", in.Title},
		{"requestedService", in.RequestedService},
		{"serviceDescription", in.ServiceDescription},
		{"businessJustification", in.BusinessJustification},
		{"requestGroup", in.RequestGroup},
		{"providerId", in.ProviderID},
		{"departmentId", in.DepartmentID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			verr.add(r.field, "is required")
		}
	}

	if in.RequiredStartDate == nil || in.RequiredStartDate.IsZero() {
		verr.add("requiredStartDate", "is required")
	}
	if in.RequiredCompletionDate == nil || in.RequiredCompletionDate.IsZero() {
		verr.add("requiredCompletionDate", "is required")
	}
	checkLevel(verr, "priority", in.Priority, true)
	checkLevel(verr, "impactCategory", in.ImpactCategory, true)

	if in.RequiredStartDate != nil && in.RequiredCompletionDate != nil &&
		in.RequiredCompletionDate.Before(*in.RequiredStartDate) {
		verr.add("requiredCompletionDate", "must not be before requiredStartDate")
	}

	return verr.err()
}

// Patch 部分更新
// nil 字段表示不修改;Status 为 nil 时不做任何状态检查,也不追加轨迹
type Patch struct {
	Status                 *types.RequestStatus
	Comment                *string
	Title                  *string
	RequestedService       *string
	ServiceDescription     *string
	BusinessJustification  *string
	RequiredStartDate      *time.Time
	RequiredCompletionDate *time.Time
	FileURL                *string
	Priority               *types.Priority
	ImpactCategory         *types.ImpactCategory
	RequestGroup           *string
	ProviderID             *string
	DepartmentID           *string
}

// validate 校验补丁自身,不依赖当前请求
func (p Patch) validate() error {
	verr := &ValidationError{}

	if p.Status != nil && !p.Status.Valid() {
		verr.add("status", "is not a known status")
	}

	cleared := []struct {
		field string
		value *string
	}{
		{"title", p.Title},
		{"requestedService", p.RequestedService},
		{"serviceDescription", p.ServiceDescription},
		{"businessJustification", p.BusinessJustification},
		{"requestGroup", p.RequestGroup},
		{"providerId", p.ProviderID},
		{"departmentId", p.DepartmentID},
	}
	for _, c := range cleared {
		if c.value != nil && strings.TrimSpace(*c.value) == "" {
			verr.add(c.field, "must not be empty")
		}
	}

	if p.RequiredStartDate != nil && p.RequiredStartDate.IsZero() {
		verr.add("requiredStartDate", "must not be empty")
	}
	if p.RequiredCompletionDate != nil && p.RequiredCompletionDate.IsZero() {
		verr.add("requiredCompletionDate", "must not be empty")
	}
	if p.Priority != nil {
		checkLevel(verr, "priority", *p.Priority, true)
	}
	if p.ImpactCategory != nil {
		checkLevel(verr, "impactCategory", *p.ImpactCategory, true)
	}

	return verr.err()
}

// changesDirectory 补丁是否修改了租户或部门
func (p Patch) changesDirectory() bool {
	return p.ProviderID != nil || p.DepartmentID != nil
}

func checkLevel(verr *ValidationError, field string, level types.Level, required bool) {
	switch {
	case level == "" && required:
		verr.add(field, "is required")
	case level != "" && !level.Valid():
		verr.add(field, "must be one of LOW, MEDIUM, HIGH, CRITICAL")
	}
}
