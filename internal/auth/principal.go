package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mautops/request-gin/internal/types"
)

const principalKey = "principal"

var (
	// ErrMissingToken 请求未携带 token
	ErrMissingToken = errors.New("missing authentication token")
	// ErrInvalidClaims token 合法但缺少身份信息
	ErrInvalidClaims = errors.New("token does not carry a usable identity")
)

// PrincipalResolver 将 token 解析为调用者身份
type PrincipalResolver interface {
	Resolve(token string) (*types.Principal, error)
}

// ExtractToken 从 Authorization 头或 cookie 中提取 token
// 两者都存在时以请求头为准
func ExtractToken(c *gin.Context, cookieName string) string {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return header
	}
	if cookieName != "" {
		if value, err := c.Cookie(cookieName); err == nil {
			return value
		}
	}
	return ""
}

// AuthMiddleware 认证中间件
// 解析调用者身份并写入上下文,失败时返回 401
func AuthMiddleware(resolver PrincipalResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c, cookieName)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "unauthorized",
				"detail":  ErrMissingToken.Error(),
			})
			return
		}

		principal, err := resolver.Resolve(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "unauthorized",
				"detail":  "invalid token",
			})
			return
		}

		SetPrincipal(c, principal)
		c.Next()
	}
}

// SetPrincipal 将调用者写入 gin 上下文
func SetPrincipal(c *gin.Context, principal *types.Principal) {
	c.Set(principalKey, principal)
	c.Set("user_id", principal.ID)
	c.Set("role", string(principal.Role))
}

// GetPrincipal 从 gin 上下文读取调用者
func GetPrincipal(c *gin.Context) (*types.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*types.Principal)
	return principal, ok && principal != nil
}
