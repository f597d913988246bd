package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dhoini/notification-relay/internal/domain"
	"github.com/Dhoini/notification-relay/pkg/logger"
	"github.com/Dhoini/notification-relay/pkg/req"
	"github.com/Dhoini/notification-relay/pkg/res"
)

const (
	// MaxWebhookBodySize ограничение на размер тела запроса вебхука (Stripe рекомендует ~65kb)
	MaxWebhookBodySize = int64(65536)

	stripeSignatureHeader = "Stripe-Signature"
)

// WebhookProcessor реализуется services.PaymentService
type WebhookProcessor interface {
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
}

// WebhookHandler обрабатывает входящие вебхуки от Stripe.
type WebhookHandler struct {
	service WebhookProcessor
	log     *logger.Logger
}

// NewWebhookHandler создает новый экземпляр WebhookHandler.
func NewWebhookHandler(service WebhookProcessor, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		log:     log,
	}
}

// HandleStripeWebhook - обработчик для Gin, принимающий вебхуки Stripe.
// Тело читается байт в байт: подпись считается по сырому payload.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	// 1. Чтение тела запроса с ограничением размера
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBodySize)
	//goland:noinspection GoUnhandledErrorResult
	defer c.Request.Body.Close()

	payload, err := req.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Errorw("Failed to read webhook request body", "error", err)
		if errors.Is(err, req.ErrBodyTooLarge) {
			res.PlainText(c.Writer, "Webhook Error: request body too large", http.StatusRequestEntityTooLarge)
		} else {
			res.PlainText(c.Writer, "Webhook Error: cannot read request body", http.StatusBadRequest)
		}
		c.Abort()
		return
	}

	// 2. Проверка подписи и диспетчеризация
	err = h.service.HandleWebhook(c.Request.Context(), payload, c.GetHeader(stripeSignatureHeader))
	if err != nil {
		var whErr *domain.WebhookError
		if errors.As(err, &whErr) {
			h.log.Warnw("Webhook signature verification failed", "error", whErr.Reason)
			res.PlainText(c.Writer, "Webhook Error: "+whErr.Reason, http.StatusBadRequest)
			c.Abort()
			return
		}

		h.log.Errorw("Webhook handler failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Webhook handler failed"})
		return
	}

	// 3. Подтверждаем получение, иначе Stripe будет повторять доставку
	c.JSON(http.StatusOK, gin.H{"received": true})
}
