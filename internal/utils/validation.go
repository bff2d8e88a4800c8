package utils

import (
	"regexp"
	"strings"
	"unicode"
)

// idPattern 只允许字母、数字、连字符、下划线
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxIDLength ID 最大长度
const MaxIDLength = 64

// ValidateID 验证 ID 格式
// 请求、租户、部门和用户 ID 使用相同规则
func ValidateID(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if len(id) > MaxIDLength {
		return ErrIDTooLong
	}
	if !idPattern.MatchString(id) {
		return ErrInvalidIDFormat
	}
	return nil
}

// ValidateRequestID 验证服务请求 ID
func ValidateRequestID(id string) error {
	return ValidateID(id)
}

// StripControlChars 移除控制字符（保留换行符和制表符）
func StripControlChars(input string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, input)
}

// 错误定义
var (
	ErrEmptyID         = &ValidationError{Code: "EMPTY_ID", Message: "id cannot be empty"}
	ErrInvalidIDFormat = &ValidationError{Code: "INVALID_ID_FORMAT", Message: "id contains invalid characters"}
	ErrIDTooLong       = &ValidationError{Code: "ID_TOO_LONG", Message: "id exceeds maximum length"}
)

// ValidationError 验证错误
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
