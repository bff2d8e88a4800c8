package auth

import (
	"errors"

	"github.com/mautops/request-gin/internal/types"
)

// ErrForbidden 调用者无权操作该请求
var ErrForbidden = errors.New("forbidden")

// Authorize 判断调用者能否修改 ownerID 创建的请求
// 规则按顺序匹配: ADMIN/SUPERADMIN 放行,创建人放行,其余拒绝。
// 只区分身份,流转是否合法由 statemachine 决定
func Authorize(principal types.Principal, ownerID string) error {
	if principal.Role.IsElevated() {
		return nil
	}
	if principal.ID != "" && principal.ID == ownerID {
		return nil
	}
	return ErrForbidden
}

// CanViewAll 判断调用者能否查看全部请求
func CanViewAll(principal types.Principal) bool {
	return principal.Role == types.RoleSuperadmin
}
