package middleware

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Dhoini/notification-relay/pkg/logger"
	"github.com/Dhoini/notification-relay/pkg/res"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// securityHeaders набор заголовков по умолчанию для JSON API
var securityHeaders = map[string]string{
	"Content-Security-Policy":           "default-src 'self';base-uri 'self';font-src 'self' https: data:;form-action 'self';frame-ancestors 'self';img-src 'self' data:;object-src 'none';script-src 'self';script-src-attr 'none';style-src 'self' https: 'unsafe-inline';upgrade-insecure-requests",
	"Cross-Origin-Opener-Policy":        "same-origin",
	"Cross-Origin-Resource-Policy":      "same-origin",
	"Origin-Agent-Cluster":              "?1",
	"Referrer-Policy":                   "no-referrer",
	"Strict-Transport-Security":         "max-age=31536000; includeSubDomains",
	"X-Content-Type-Options":            "nosniff",
	"X-DNS-Prefetch-Control":            "off",
	"X-Download-Options":                "noopen",
	"X-Frame-Options":                   "SAMEORIGIN",
	"X-Permitted-Cross-Domain-Policies": "none",
	"X-XSS-Protection":                  "0",
}

// SecurityHeaders выставляет заголовки безопасности на каждый ответ
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for k, v := range securityHeaders {
			h.Set(k, v)
		}
		h.Del("X-Powered-By")
		c.Next()
	}
}

// CORSRejectMessage тело ответа для запрещенного Origin
const CORSRejectMessage = "CORS policy: Origin not allowed"

// CORS пропускает запросы без Origin и с разрешенных источников, остальные получают 403 с JSON телом.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	allowAll := false
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{"Content-Type", "Stripe-Signature"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if allowAll {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cors.New(cfg)
	}

	isAllowed := func(origin string) bool {
		_, ok := allowed[origin]
		return ok
	}
	cfg.AllowOriginFunc = isAllowed
	handler := cors.New(cfg)

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && !isAllowed(origin) && !sameOrigin(origin, c.Request.Host) {
			res.Fail(c.Writer, CORSRejectMessage, http.StatusForbidden)
			c.Abort()
			return
		}
		handler(c)
	}
}

// sameOrigin запросы со своего же хоста CORS не проверяет
func sameOrigin(origin, host string) bool {
	return origin == "http://"+host || origin == "https://"+host
}

// BodyLimit ограничивает размер тела запроса
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// Recovery перехватывает панику и отвечает 500. Текст паники отдается только вне production.
func Recovery(log *logger.Logger, production bool) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		log.Errorw("Panic recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", c.GetString(RequestIDKey),
		)

		message := "Internal server error"
		if !production {
			switch v := recovered.(type) {
			case error:
				message = v.Error()
			case string:
				message = v
			default:
				message = fmt.Sprint(v)
			}
		}
		res.Fail(c.Writer, message, http.StatusInternalServerError)
		c.Abort()
	})
}
