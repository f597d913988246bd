package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Dhoini/notification-relay/internal/domain"
	"github.com/Dhoini/notification-relay/internal/metrics"
	"github.com/Dhoini/notification-relay/internal/repository"
	"github.com/Dhoini/notification-relay/internal/stripe"
	"github.com/Dhoini/notification-relay/pkg/logger"

	"github.com/go-playground/validator/v10"
)

const (
	msgAmountAndEmailRequired = "Amount and customer email are required"
	msgAmountMustBePositive   = "Amount must be a positive number"

	// maxAmount верхняя граница суммы в минимальных единицах, дальше float64 теряет точность
	maxAmount = 1 << 53
)

// Исходы обработки вебхука для метрик
const (
	webhookOutcomeProcessed = "processed"
	webhookOutcomeDuplicate = "duplicate"
	webhookOutcomeIgnored   = "ignored"
	webhookOutcomeFailed    = "failed"
)

// CreatePaymentIntentInput данные формы оплаты как они пришли от браузера.
// Amount остается сырым JSON значением: проверка типа часть валидации.
type CreatePaymentIntentInput struct {
	Amount        any            `json:"amount"`
	Currency      string         `json:"currency"`
	CustomerEmail string         `json:"customerEmail"`
	CustomerName  string         `json:"customerName"`
	Metadata      map[string]any `json:"metadata"`
}

// WebhookVerifier проверяет подпись и разбирает событие
type WebhookVerifier interface {
	Verify(payload []byte, sigHeader string) (domain.PaymentEvent, error)
}

type PaymentService struct {
	stripeClient stripe.Client
	verifier     WebhookVerifier
	notifier     Notifier
	events       repository.EventStore
	metrics      metrics.NotificationMetrics
	validate     *validator.Validate
	log          *logger.Logger
}

// NewPaymentService конструктор сервиса. events может быть nil, тогда повторные события не отсеиваются.
func NewPaymentService(
	stripeClient stripe.Client,
	verifier WebhookVerifier,
	notifier Notifier,
	events repository.EventStore,
	m metrics.NotificationMetrics,
	log *logger.Logger,
) *PaymentService {
	if events == nil {
		log.Warnw("Webhook event store is nil, duplicate deliveries will be processed again.")
		events = repository.NopEventStore{}
	}
	if m == nil {
		m = metrics.Nop{}
	}
	return &PaymentService{
		stripeClient: stripeClient,
		verifier:     verifier,
		notifier:     notifier,
		events:       events,
		metrics:      m,
		validate:     validator.New(),
		log:          log,
	}
}

// CreatePaymentIntent проверяет ввод и только потом обращается к Stripe.
// Ошибка ввода возвращается как domain.ValidationErrors с одним сообщением.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, input CreatePaymentIntentInput) (*domain.PaymentIntentResult, error) {
	req, err := s.buildPaymentIntentRequest(input)
	if err != nil {
		s.log.Warnw("Invalid payment intent request", "error", err)
		return nil, err
	}

	res, err := s.stripeClient.CreatePaymentIntent(ctx, *req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExternalServiceUnavailable, err)
	}

	s.metrics.IncPaymentIntentCreated(req.Currency)
	s.log.Infow("Payment intent created", "paymentIntentID", res.PaymentIntentID, "amount", req.Amount, "currency", req.Currency)
	return res, nil
}

func (s *PaymentService) buildPaymentIntentRequest(input CreatePaymentIntentInput) (*domain.PaymentIntentRequest, error) {
	email := strings.TrimSpace(input.CustomerEmail)
	if isFalsy(input.Amount) || s.validate.Var(email, "required") != nil {
		return nil, invalidPayment("amount", msgAmountAndEmailRequired)
	}

	value, ok := toFloat(input.Amount)
	if !ok || math.IsNaN(value) || value <= 0 {
		return nil, invalidPayment("amount", msgAmountMustBePositive)
	}
	amount := math.Round(value)
	if amount < 1 || amount > maxAmount {
		return nil, invalidPayment("amount", msgAmountMustBePositive)
	}

	currency := strings.ToLower(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	metadata := map[string]string{"customerName": input.CustomerName}
	for k, v := range input.Metadata {
		metadata[k] = stringifyMetadata(v)
	}

	return &domain.PaymentIntentRequest{
		Amount:        int64(amount),
		Currency:      currency,
		CustomerEmail: email,
		CustomerName:  input.CustomerName,
		Metadata:      metadata,
	}, nil
}

// HandleWebhook проверяет подпись и запускает сценарий уведомлений.
// Ошибка проверки подписи имеет тип *domain.WebhookError.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.verifier.Verify(payload, sigHeader)
	if err != nil {
		return err
	}

	eventID, eventType := event.EventID(), event.EventType()

	seen, err := s.events.Seen(ctx, eventID)
	if err != nil {
		// Хранилище недоступно: лучше отправить письмо повторно, чем потерять его
		s.log.Warnw("Failed to check webhook event, processing anyway", "error", err, "eventID", eventID)
	}
	if seen {
		s.log.Infow("Webhook event already processed, skipping", "eventID", eventID, "eventType", eventType)
		s.metrics.IncWebhookEvent(eventType, webhookOutcomeDuplicate)
		return nil
	}

	switch e := event.(type) {
	case domain.PaymentSucceededEvent:
		s.log.Infow("Payment succeeded", "eventID", eventID, "paymentIntentID", e.Outcome.PaymentIntentID)
		err = s.notifier.NotifyPaymentSucceeded(ctx, e.Outcome)
	case domain.PaymentFailedEvent:
		s.log.Infow("Payment failed", "eventID", eventID, "paymentIntentID", e.Outcome.PaymentIntentID)
		err = s.notifier.NotifyPaymentFailed(ctx, e.Outcome)
	default:
		s.log.Infow("Unhandled webhook event type", "eventID", eventID, "eventType", eventType)
		s.metrics.IncWebhookEvent(eventType, webhookOutcomeIgnored)
		return nil
	}

	if err != nil {
		s.metrics.IncWebhookEvent(eventType, webhookOutcomeFailed)
		s.log.Errorw("Error processing webhook event", "error", err, "eventID", eventID, "eventType", eventType)
		return fmt.Errorf("handle %s event %s: %w", eventType, eventID, err)
	}

	s.metrics.IncWebhookEvent(eventType, webhookOutcomeProcessed)
	if err := s.events.MarkProcessed(ctx, eventID); err != nil {
		s.log.Warnw("Failed to mark webhook event as processed", "error", err, "eventID", eventID)
	}
	return nil
}

func invalidPayment(field, message string) error {
	var errs domain.ValidationErrors
	errs.Add(field, message)
	return errs
}

// isFalsy повторяет проверку формы оплаты: отсутствующая сумма, 0, пустая строка, false
func isFalsy(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case string:
		return val == ""
	case float64:
		return val == 0 || math.IsNaN(val)
	case json.Number:
		f, err := val.Float64()
		return err == nil && f == 0
	default:
		return false
	}
}

// toFloat принимает только числовые JSON значения
func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	default:
		return 0, false
	}
}

func stringifyMetadata(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// IsValidationError сообщает, что ошибка вызвана неверным вводом
func IsValidationError(err error) (domain.ValidationErrors, bool) {
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}
