package websocket_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	gorillaWS "github.com/gorilla/websocket"
	"github.com/mautops/request-gin/internal/auth"
	"github.com/mautops/request-gin/internal/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "ws-secret"

func token(t *testing.T, userID, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.HMACClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newServer(t *testing.T, allowedOrigins ...string) (*websocket.Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	logger := logrus.New()
	router := gin.New()
	router.GET("/ws/requests", websocket.Handler(hub, auth.NewHMACTokenValidator(secret), "auth-token", allowedOrigins, logger))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return hub, "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/requests"
}

func dial(t *testing.T, url string) *gorillaWS.Conn {
	t.Helper()
	conn, _, err := gorillaWS.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// TestHub_PublishToOwnerAndSuperadmin 测试事件只推送给创建人与 SUPERADMIN
func TestHub_PublishToOwnerAndSuperadmin(t *testing.T) {
	hub, url := newServer(t)

	owner := dial(t, url+"?token="+token(t, "u1", "USER"))
	other := dial(t, url+"?token="+token(t, "u2", "USER"))
	root := dial(t, url+"?token="+token(t, "root", "SUPERADMIN"))

	require.Eventually(t, func() bool { return hub.GetClientCount() == 3 }, time.Second, 10*time.Millisecond)

	delivered := hub.Publish("u1", []byte(`{"type":"request.status_changed"}`))
	assert.Equal(t, 2, delivered)

	for _, conn := range []*gorillaWS.Conn{owner, root} {
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"request.status_changed"}`, string(msg))
	}

	_ = other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "non-owner must not receive the event")
}

// TestHandler_RejectsMissingToken 测试缺少 token 时拒绝升级
func TestHandler_RejectsMissingToken(t *testing.T) {
	_, url := newServer(t)

	_, resp, err := gorillaWS.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)

	_, resp, err = gorillaWS.DefaultDialer.Dial(url+"?token=broken", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

// TestHub_UnregisterOnClose 测试连接关闭后客户端被注销
func TestHub_UnregisterOnClose(t *testing.T) {
	hub, url := newServer(t)

	conn := dial(t, url+"?token="+token(t, "u1", "USER"))
	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.GetClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func cookieHeader(t *testing.T, userID, origin string) http.Header {
	header := http.Header{}
	header.Set("Cookie", "auth-token="+token(t, userID, "SUPERADMIN"))
	if origin != "" {
		header.Set("Origin", origin)
	}
	return header
}

// TestHandler_CookieAuthRequiresListedOrigin 测试 cookie 认证只接受显式列出的来源
func TestHandler_CookieAuthRequiresListedOrigin(t *testing.T) {
	t.Run("wildcard origin", func(t *testing.T) {
		_, url := newServer(t, "*")
		_, resp, err := gorillaWS.DefaultDialer.Dial(url, cookieHeader(t, "root", "https://evil.example"))
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("unlisted origin", func(t *testing.T) {
		_, url := newServer(t, "https://app.example")
		_, resp, err := gorillaWS.DefaultDialer.Dial(url, cookieHeader(t, "root", "https://evil.example"))
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("listed origin", func(t *testing.T) {
		hub, url := newServer(t, "https://app.example")
		conn, _, err := gorillaWS.DefaultDialer.Dial(url, cookieHeader(t, "root", "https://app.example"))
		require.NoError(t, err)
		defer conn.Close()
		require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 10*time.Millisecond)
	})

	t.Run("explicit token with wildcard origin", func(t *testing.T) {
		hub, url := newServer(t, "*")
		header := http.Header{}
		header.Set("Origin", "https://other.example")
		conn, _, err := gorillaWS.DefaultDialer.Dial(url+"?token="+token(t, "u1", "USER"), header)
		require.NoError(t, err)
		defer conn.Close()
		require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 10*time.Millisecond)
	})
}
