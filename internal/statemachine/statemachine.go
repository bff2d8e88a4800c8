package statemachine

import "github.com/mautops/request-gin/internal/types"

// transitions 合法的状态流转表
// APPROVED 与 REJECTED 为终态,没有出边
var transitions = map[types.RequestStatus][]types.RequestStatus{
	types.StatusPendingSuperadminReview: {types.StatusPendingAdminReview, types.StatusRejected},
	types.StatusPendingAdminReview:      {types.StatusAssignedToEngineer, types.StatusRejected},
	types.StatusAssignedToEngineer:      {types.StatusInProgress},
	types.StatusInProgress:              {types.StatusCompletedByEngineer},
	types.StatusCompletedByEngineer:     {types.StatusPendingMatrixApproval},
	types.StatusPendingMatrixApproval:   {types.StatusApproved, types.StatusRejected},
	types.StatusApproved:                {},
	types.StatusRejected:                {},
}

// InitialStatus 新建请求的初始状态
const InitialStatus = types.StatusPendingSuperadminReview

// IsLegalTransition 判断 from -> to 是否为合法流转
// 与调用者身份无关,纯查表
func IsLegalTransition(from, to types.RequestStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTransitions 返回 from 状态允许流转到的状态列表
func AllowedTransitions(from types.RequestStatus) []types.RequestStatus {
	allowed := transitions[from]
	result := make([]types.RequestStatus, len(allowed))
	copy(result, allowed)
	return result
}

// IsTerminal 判断状态是否为终态
func IsTerminal(status types.RequestStatus) bool {
	allowed, ok := transitions[status]
	return ok && len(allowed) == 0
}
