package stripe

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dhoini/notification-relay/internal/domain"
	"github.com/Dhoini/notification-relay/pkg/logger"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

// Client определяет методы для взаимодействия со Stripe API.
type Client interface {
	// CreatePaymentIntent создает PaymentIntent с автоматическим выбором способа оплаты.
	// Запрос должен быть уже проверен: сумма > 0, валюта в нижнем регистре.
	CreatePaymentIntent(ctx context.Context, req domain.PaymentIntentRequest) (*domain.PaymentIntentResult, error)
}

// stripeClient реализует интерфейс Client.
type stripeClient struct {
	client *client.API
	log    *logger.Logger
}

// NewStripeClient создает новый экземпляр клиента Stripe.
func NewStripeClient(apiKey string, log *logger.Logger) Client {
	return NewStripeClientWithBackends(apiKey, nil, log)
}

// NewStripeClientWithBackends позволяет подменить транспорт (например, на тестовый сервер).
// nil означает стандартные бэкенды Stripe.
func NewStripeClientWithBackends(apiKey string, backends *stripe.Backends, log *logger.Logger) Client {
	sc := &client.API{}
	sc.Init(apiKey, backends)
	return &stripeClient{
		client: sc,
		log:    log,
	}
}

// CreatePaymentIntent создает PaymentIntent в Stripe.
func (sc *stripeClient) CreatePaymentIntent(ctx context.Context, req domain.PaymentIntentRequest) (*domain.PaymentIntentResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:       stripe.Int64(req.Amount),
		Currency:     stripe.String(req.Currency),
		ReceiptEmail: stripe.String(req.CustomerEmail),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := sc.client.PaymentIntents.New(params)
	if err != nil {
		logStripeError(sc.log, "CreatePaymentIntent", err)
		return nil, fmt.Errorf("stripe: failed to create payment intent: %w", err)
	}

	sc.log.Infow("Stripe payment intent created",
		"paymentIntentID", pi.ID,
		"amount", pi.Amount,
		"currency", string(pi.Currency),
	)
	return &domain.PaymentIntentResult{
		ClientSecret:    pi.ClientSecret,
		PaymentIntentID: pi.ID,
	}, nil
}

// logStripeError - вспомогательная функция для логирования деталей ошибки Stripe.
func logStripeError(log *logger.Logger, operation string, err error) {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		log.Errorw("Stripe API error",
			"operation", operation,
			"type", string(stripeErr.Type),
			"code", string(stripeErr.Code),
			"param", stripeErr.Param,
			"message", stripeErr.Msg,
			"request_id", stripeErr.RequestID,
			"status_code", stripeErr.HTTPStatusCode,
		)
	} else {
		log.Errorw("Non-Stripe error during Stripe operation",
			"operation", operation,
			"error", err,
		)
	}
}
