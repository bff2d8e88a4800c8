package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/request-gin/internal/workflow"
	"github.com/sirupsen/logrus"
)

// APIError API 错误
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorHandlerMiddleware 错误处理中间件
// 处理 handler 通过 c.Error 登记的错误和 panic,内部细节只写日志
func ErrorHandlerMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithFields(logrus.Fields{
					"request_id": c.GetString(requestIDKey),
					"path":       c.Request.URL.Path,
					"panic":      fmt.Sprint(r),
				}).Error("recovered from panic")
				Error(c, http.StatusInternalServerError, "internal server error", "")
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
			return
		}
		respondServiceError(c, logger, err)
	}
}

// WrapError 包装错误
func WrapError(err error, code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  err.Error(),
	}
}

// respondServiceError 将服务层错误映射为 HTTP 响应
func respondServiceError(c *gin.Context, logger *logrus.Logger, err error) {
	var verr *workflow.ValidationError
	var terr *workflow.TransitionError

	switch {
	case errors.As(err, &verr):
		ValidationFailed(c, verr.Fields)
	case errors.As(err, &terr):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "invalid status transition",
			Detail:  fmt.Sprintf("%s -> %s", terr.From, terr.To),
		})
	case errors.Is(err, workflow.ErrUnauthenticated):
		Error(c, http.StatusUnauthorized, "unauthorized", "")
	case errors.Is(err, workflow.ErrForbidden):
		Error(c, http.StatusForbidden, "forbidden", "")
	case errors.Is(err, workflow.ErrNotFound):
		Error(c, http.StatusNotFound, "request not found", "")
	case errors.Is(err, workflow.ErrConflict):
		Error(c, http.StatusConflict, "request was modified concurrently", "retry with the latest revision")
	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString(requestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		}).Error("request failed")
		Error(c, http.StatusInternalServerError, "internal server error", "")
	}
}
