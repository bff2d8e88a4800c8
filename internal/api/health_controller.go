package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mautops/request-gin/internal/database"
	"gorm.io/gorm"
)

// HealthChecker 外部依赖健康检查
type HealthChecker interface {
	CheckHealth(ctx context.Context) bool
}

// HealthController 健康检查控制器
type HealthController struct {
	db      *gorm.DB
	openFGA HealthChecker
	now     func() time.Time
}

// NewHealthController 创建健康检查控制器
// openFGA 为 nil 表示未启用
func NewHealthController(db *gorm.DB, openFGA HealthChecker) *HealthController {
	return &HealthController{
		db:      db,
		openFGA: openFGA,
		now:     time.Now,
	}
}

// Check 健康检查
// @Summary      健康检查
// @Description  检查数据库与 OpenFGA 连接
// @Tags         系统
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (c *HealthController) Check(ctx *gin.Context) {
	status := "healthy"
	checks := make(map[string]string)

	if c.db != nil {
		if err := database.CheckHealth(ctx.Request.Context(), c.db); err != nil {
			status = "unhealthy"
			checks["database"] = "unhealthy: " + err.Error()
		} else {
			checks["database"] = "healthy"
		}
	} else {
		checks["database"] = "not configured"
	}

	if c.openFGA != nil {
		if c.openFGA.CheckHealth(ctx.Request.Context()) {
			checks["openfga"] = "healthy"
		} else {
			// 关系镜像不可用时主流程仍可工作
			if status == "healthy" {
				status = "degraded"
			}
			checks["openfga"] = "unhealthy"
		}
	} else {
		checks["openfga"] = "disabled"
	}

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	ctx.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": c.now().Unix(),
		"checks":    checks,
	})
}
