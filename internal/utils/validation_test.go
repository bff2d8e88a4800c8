package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestValidateID 测试 ID 格式校验
func TestValidateID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want error
	}{
		{"uuid", "0b6f3c1e-8a4e-4f7a-9d59-3c1f0e5a7b21", nil},
		{"underscore", "dept_ops", nil},
		{"empty", "", ErrEmptyID},
		{"space", "req 1", ErrInvalidIDFormat},
		{"quote", "1' OR '1'='1", ErrInvalidIDFormat},
		{"path", "../etc", ErrInvalidIDFormat},
		{"too long", strings.Repeat("a", MaxIDLength+1), ErrIDTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateRequestID(tt.id))
		})
	}
}

// TestStripControlChars 测试控制字符清理
func TestStripControlChars(t *testing.T) {
	assert.Equal(t, "line1\nline2\tend", StripControlChars("line1\nline2\tend\x00\x07"))
}
