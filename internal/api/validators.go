package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/mautops/request-gin/internal/types"
	"github.com/mautops/request-gin/internal/workflow"
)

// 接受的日期格式
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

var registerOnce sync.Once

// RegisterValidators 向 gin 的校验器注册自定义规则
// 字段错误使用 json 字段名
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("requeststatus", func(fl validator.FieldLevel) bool {
			value := strings.TrimSpace(fl.Field().String())
			if value == "" {
				return true
			}
			_, err := types.ParseRequestStatus(value)
			return err == nil
		})
		_ = v.RegisterValidation("level", func(fl validator.FieldLevel) bool {
			_, err := types.ParseLevel(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("requestdate", func(fl validator.FieldLevel) bool {
			_, err := parseDate(fl.Field().String())
			return err == nil
		})
	})
}

// parseDate 解析 RFC3339 时间或 YYYY-MM-DD 日期,结果为 UTC
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// bindingFieldErrors 将绑定错误转换为字段错误
// 非校验类错误(如 JSON 语法错误)返回 false
func bindingFieldErrors(err error) ([]workflow.FieldError, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	fields := make([]workflow.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, workflow.FieldError{
			Field:  fe.Field(),
			Reason: reasonFor(fe),
		})
	}
	return fields, true
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "requeststatus":
		return "is not a known status"
	case "level":
		return "must be one of LOW, MEDIUM, HIGH, CRITICAL"
	case "requestdate":
		return "must be an RFC3339 timestamp or a YYYY-MM-DD date"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return "is invalid"
}
