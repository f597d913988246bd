package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dhoini/notification-relay/internal/domain"
)

// HealthHandler отдает состояние сервиса и список маршрутов
type HealthHandler struct {
	service string
	version string
	now     func() time.Time
}

func NewHealthHandler(service, version string) *HealthHandler {
	return &HealthHandler{service: service, version: version, now: time.Now}
}

// Health обрабатывает GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
		"service":   h.service,
	})
}

// Root обрабатывает GET /
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": h.service,
		"version": h.version,
		"endpoints": gin.H{
			"health":              "GET /health",
			"contact":             "POST /api/contact",
			"createPaymentIntent": "POST /api/payment/create-payment-intent",
			"stripeWebhook":       "POST /api/payment/webhook",
			"metrics":             "GET /metrics",
		},
	})
}

// NotFound ответ для несуществующих маршрутов. Ошибка попадает в c.Errors и в лог запроса.
func NotFound(c *gin.Context) {
	_ = c.Error(fmt.Errorf("%s %s: %w", c.Request.Method, c.Request.URL.Path, domain.ErrNotFound))
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"success": false, "message": "Endpoint not found"})
}
