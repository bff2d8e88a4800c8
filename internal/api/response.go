package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/request-gin/internal/workflow"
)

// Response 统一响应格式
// @Description 统一响应格式,包含状态码、消息和数据
type Response struct {
	Code    int         `json:"code" example:"0"`          // 状态码: 0 表示成功,非 0 表示失败
	Message string      `json:"message" example:"success"` // 响应消息
	Data    interface{} `json:"data"`                      // 响应数据
}

// ErrorResponse 错误响应格式
// @Description 错误响应格式,包含错误码、错误消息、错误详情和字段错误
type ErrorResponse struct {
	Code    int                   `json:"code" example:"400"`                           // 错误码
	Message string                `json:"message" example:"validation failed"`          // 错误消息
	Detail  string                `json:"detail,omitempty" example:"title is required"` // 错误详情(可选)
	Fields  []workflow.FieldError `json:"fields,omitempty"`                             // 字段错误(可选)
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string, detail string) {
	statusCode := http.StatusInternalServerError
	if code >= 400 && code < 600 {
		statusCode = code
	}

	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Code:    code,
		Message: message,
		Detail:  detail,
	})
}

// ValidationFailed 字段校验失败响应
func ValidationFailed(c *gin.Context, fields []workflow.FieldError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "validation failed",
		Fields:  fields,
	})
}
