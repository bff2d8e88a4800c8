package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mautops/request-gin/internal/auth"
	"github.com/mautops/request-gin/internal/types"
)

var (
	// ErrValidation 输入缺失或格式错误
	ErrValidation = errors.New("validation failed")
	// ErrNotFound 请求不存在
	ErrNotFound = errors.New("request not found")
	// ErrForbidden 调用者无权操作该请求
	ErrForbidden = auth.ErrForbidden
	// ErrInvalidTransition 状态流转不合法
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrConflict 并发修改重试耗尽
	ErrConflict = errors.New("request was modified concurrently")
	// ErrUnauthenticated 缺少调用者身份
	ErrUnauthenticated = errors.New("principal is required")
)

// FieldError 单个字段的校验错误
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError 校验错误,列出所有有问题的字段
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s %s", f.Field, f.Reason))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// Is 使 errors.Is(err, ErrValidation) 成立
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// add 追加字段错误
func (e *ValidationError) add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// err 没有字段错误时返回 nil
func (e *ValidationError) err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// TransitionError 不合法的状态流转
type TransitionError struct {
	From types.RequestStatus
	To   types.RequestStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// Is 使 errors.Is(err, ErrInvalidTransition) 成立
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
