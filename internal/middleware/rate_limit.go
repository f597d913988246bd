package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Dhoini/notification-relay/pkg/logger"
	"github.com/Dhoini/notification-relay/pkg/res"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitMessage ответ по умолчанию при превышении лимита
const RateLimitMessage = "Too many requests from this IP, please try again later."

type visitor struct {
	limiter *rate.Limiter
	resetAt time.Time
}

// IPRateLimiter фиксированное окно на каждый IP: не более requests запросов за window.
// Лимитер окна создается с нулевой скоростью пополнения, поэтому бакет не восполняется
// до начала следующего окна.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	requests int
	window   time.Duration
	now      func() time.Time
	log      *logger.Logger
}

// NewIPRateLimiter создает лимитер
func NewIPRateLimiter(requests int, window time.Duration, log *logger.Logger) *IPRateLimiter {
	if requests < 1 {
		requests = 1
	}
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		requests: requests,
		window:   window,
		now:      time.Now,
		log:      log,
	}
}

// Allow расходует один запрос из окна ip. Второе значение: время до начала следующего окна.
func (l *IPRateLimiter) Allow(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.cleanup(now)

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{
			limiter: rate.NewLimiter(0, l.requests),
			resetAt: now.Add(l.window),
		}
		l.visitors[ip] = v
	}

	if v.limiter.AllowN(now, 1) {
		return true, 0
	}
	return false, v.resetAt.Sub(now)
}

// cleanup удаляет посетителей, чье окно закончилось
func (l *IPRateLimiter) cleanup(now time.Time) {
	for ip, v := range l.visitors {
		if !now.Before(v.resetAt) {
			delete(l.visitors, ip)
		}
	}
}

// Middleware отвечает 429 с JSON телом при превышении лимита
func (l *IPRateLimiter) Middleware(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		allowed, retryAfter := l.Allow(ip)
		if !allowed {
			l.log.Warnw("Rate limit exceeded", "client_ip", ip, "path", c.Request.URL.Path)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			res.Fail(c.Writer, message, http.StatusTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}
