package api

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware 安全头中间件
// 接口只返回 JSON,内容安全策略禁止加载任何资源;swagger 页面除外
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")

		if strings.HasPrefix(c.Request.URL.Path, apiPrefix) {
			c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			// 请求详情包含审批轨迹,不允许中间缓存
			c.Header("Cache-Control", "no-store")
		}

		c.Next()
	}
}
