package service

import (
	"context"

	"github.com/mautops/request-gin/internal/auth"
	"github.com/mautops/request-gin/internal/repository"
	"github.com/mautops/request-gin/internal/statemachine"
	"github.com/mautops/request-gin/internal/types"
)

// StatisticsService 统计服务接口
type StatisticsService interface {
	Summary(ctx context.Context, principal types.Principal) (*RequestSummary, error)
}

// RequestSummary 请求统计
type RequestSummary struct {
	Total        int64                         `json:"total"`
	Open         int64                         `json:"open"`
	Approved     int64                         `json:"approved"`
	Rejected     int64                         `json:"rejected"`
	ApprovalRate float64                       `json:"approvalRate"` // 已结束请求中批准的比例
	ByStatus     map[types.RequestStatus]int64 `json:"byStatus"`
}

// statisticsService 统计服务实现
type statisticsService struct {
	requestRepo repository.RequestRepository
}

// NewStatisticsService 创建统计服务
func NewStatisticsService(requestRepo repository.RequestRepository) StatisticsService {
	return &statisticsService{requestRepo: requestRepo}
}

// Summary 全局统计,仅 SUPERADMIN 可见
func (s *statisticsService) Summary(ctx context.Context, principal types.Principal) (*RequestSummary, error) {
	if !auth.CanViewAll(principal) {
		return nil, auth.ErrForbidden
	}

	counts, err := s.requestRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	summary := &RequestSummary{ByStatus: counts}
	for status, count := range counts {
		summary.Total += count
		if !statemachine.IsTerminal(status) {
			summary.Open += count
		}
	}
	summary.Approved = counts[types.StatusApproved]
	summary.Rejected = counts[types.StatusRejected]
	if closed := summary.Approved + summary.Rejected; closed > 0 {
		summary.ApprovalRate = float64(summary.Approved) / float64(closed)
	}
	return summary, nil
}
