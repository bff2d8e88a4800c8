package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mautops/request-gin/internal/auth"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

// clientLimiter 单个调用方的令牌桶
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterPool 按调用方划分的令牌桶集合
type limiterPool struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	clients   map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	return &limiterPool{
		rps:     rate.Limit(rps),
		burst:   burst,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

// allow 消耗 key 的一个令牌
func (p *limiterPool) allow(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if now.Sub(p.lastSweep) > limiterIdleTTL {
		for k, cl := range p.clients {
			if now.Sub(cl.lastSeen) > limiterIdleTTL {
				delete(p.clients, k)
			}
		}
		p.lastSweep = now
	}

	cl, ok := p.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(p.rps, p.burst)}
		p.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// RateLimitMiddleware 限流中间件
// 已认证的请求按用户限流,其余按客户端 IP 限流
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	pool := newLimiterPool(rps, burst)

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if principal, ok := auth.GetPrincipal(c); ok {
			key = "user:" + principal.ID
		}

		if !pool.allow(key) {
			c.Header("Retry-After", "1")
			Error(c, http.StatusTooManyRequests, "too many requests", "")
			return
		}
		c.Next()
	}
}
