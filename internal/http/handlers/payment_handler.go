package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dhoini/notification-relay/internal/domain"
	"github.com/Dhoini/notification-relay/internal/services"
	"github.com/Dhoini/notification-relay/pkg/logger"
	"github.com/Dhoini/notification-relay/pkg/req"
	"github.com/Dhoini/notification-relay/pkg/res"
)

// PaymentIntentCreator реализуется services.PaymentService
type PaymentIntentCreator interface {
	CreatePaymentIntent(ctx context.Context, input services.CreatePaymentIntentInput) (*domain.PaymentIntentResult, error)
}

// PaymentHandler обрабатывает HTTP запросы на создание платежей (для Gin).
type PaymentHandler struct {
	service    PaymentIntentCreator
	production bool
	log        *logger.Logger
}

// NewPaymentHandler создает новый экземпляр PaymentHandler.
// В production текст ошибки провайдера не попадает в ответ.
func NewPaymentHandler(service PaymentIntentCreator, production bool, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:    service,
		production: production,
		log:        log,
	}
}

// CreatePaymentIntentResponse ответ для платежной формы
type CreatePaymentIntentResponse struct {
	Success         bool   `json:"success"`
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// CreatePaymentIntent обрабатывает POST /api/payment/create-payment-intent
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	ctx := c.Request.Context()

	// Шаг 1: Декодируем тело запроса
	input, err := req.Decode[services.CreatePaymentIntentInput](c.Request.Body)
	if err != nil {
		h.log.Warnw("Failed to decode request body", "error", err)
		writeDecodeError(c, err)
		return
	}

	// Шаг 2: Валидация и вызов Stripe внутри сервиса
	result, err := h.service.CreatePaymentIntent(ctx, input)
	if err != nil {
		if verrs, ok := services.IsValidationError(err); ok {
			message := verrs.Error()
			if len(verrs) > 0 {
				message = verrs[0].Message
			}
			res.Fail(c.Writer, message, http.StatusBadRequest)
			c.Abort()
			return
		}

		h.log.Errorw("Error creating payment intent", "error", err)
		body := res.ErrorResponse{Success: false, Message: "Failed to create payment intent"}
		if !h.production {
			body.Error = err.Error()
		}
		res.JsonResponse(c.Writer, body, http.StatusInternalServerError)
		c.Abort()
		return
	}

	res.JsonResponse(c.Writer, CreatePaymentIntentResponse{
		Success:         true,
		ClientSecret:    result.ClientSecret,
		PaymentIntentID: result.PaymentIntentID,
	}, http.StatusOK)
}
