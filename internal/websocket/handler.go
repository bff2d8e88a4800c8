package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorillaWS "github.com/gorilla/websocket"
	"github.com/mautops/request-gin/internal/auth"
	"github.com/sirupsen/logrus"
)

// newUpgrader 按允许的来源创建 Upgrader
// allowedOrigins 为空或包含 "*" 时不检查来源
func newUpgrader(allowedOrigins []string) gorillaWS.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return gorillaWS.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowed) == 0 || allowed["*"] {
				return true
			}
			return allowed[origin]
		},
	}
}

// cookieOriginAllowed 使用 cookie 认证时,浏览器来源必须被显式列出
// "*" 不算显式列出;没有 Origin 头的非浏览器客户端不受限制
func cookieOriginAllowed(allowedOrigins []string, origin string) bool {
	if origin == "" {
		return true
	}
	for _, allowed := range allowedOrigins {
		if allowed != "*" && allowed == origin {
			return true
		}
	}
	return false
}

// requestToken 依次从 query 参数 token、Authorization 头和认证 cookie 中取 token
func requestToken(c *gin.Context, cookieName string) (token string, fromCookie bool) {
	if token = c.Query("token"); token != "" {
		return token, false
	}
	if token = auth.ExtractToken(c, ""); token != "" {
		return token, false
	}
	if token = auth.ExtractToken(c, cookieName); token != "" {
		return token, true
	}
	return "", false
}

// Handler WebSocket 处理器
// token 可以放在 query 参数 token 中,也可以沿用 Authorization 头或认证 cookie
func Handler(hub *Hub, resolver auth.PrincipalResolver, cookieName string, allowedOrigins []string, logger *logrus.Logger) gin.HandlerFunc {
	upgrader := newUpgrader(allowedOrigins)

	return func(c *gin.Context) {
		token, fromCookie := requestToken(c, cookieName)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "unauthorized", "detail": "missing token"})
			return
		}
		if fromCookie && !cookieOriginAllowed(allowedOrigins, c.GetHeader("Origin")) {
			logger.WithField("origin", c.GetHeader("Origin")).Warn("rejected cookie authenticated websocket from unlisted origin")
			c.JSON(http.StatusForbidden, gin.H{"code": 403, "message": "forbidden"})
			return
		}

		principal, err := resolver.Resolve(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "unauthorized", "detail": "invalid token"})
			return
		}

		// Upgrade 失败时已经写回了错误响应
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.WithError(err).Warn("failed to upgrade websocket connection")
			return
		}

		client := NewClient(uuid.New().String(), principal, hub, conn)
		if !hub.register(client) {
			conn.Close()
			return
		}

		go client.ReadPump(logger)
		go client.WritePump()
	}
}
