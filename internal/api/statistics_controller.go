package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/request-gin/internal/auth"
	"github.com/mautops/request-gin/internal/service"
	"github.com/sirupsen/logrus"
)

// StatisticsController 统计控制器
type StatisticsController struct {
	statisticsService service.StatisticsService
	logger            *logrus.Logger
}

// NewStatisticsController 创建统计控制器
func NewStatisticsController(statisticsService service.StatisticsService, logger *logrus.Logger) *StatisticsController {
	return &StatisticsController{
		statisticsService: statisticsService,
		logger:            logger,
	}
}

// Summary 请求统计
// @Summary      服务请求统计
// @Description  按状态统计请求数量与批准率,仅 SUPERADMIN 可用
// @Tags         统计
// @Produce      json
// @Success      200  {object}  Response{data=service.RequestSummary}
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /statistics/requests [get]
// @Security     BearerAuth
func (sc *StatisticsController) Summary(ctx *gin.Context) {
	principal, ok := auth.GetPrincipal(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	summary, err := sc.statisticsService.Summary(ctx.Request.Context(), *principal)
	if err != nil {
		respondServiceError(ctx, sc.logger, err)
		return
	}

	Success(ctx, summary)
}
