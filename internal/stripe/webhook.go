package stripe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Dhoini/notification-relay/internal/domain"
	"github.com/Dhoini/notification-relay/pkg/logger"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
)

const defaultFailureMessage = "Payment failed"

// WebhookVerifier проверяет подпись вебхука и превращает событие в domain.PaymentEvent.
type WebhookVerifier struct {
	secret    string
	tolerance time.Duration
	log       *logger.Logger
}

// NewWebhookVerifier создает верификатор с допуском по времени подписи 300 секунд.
func NewWebhookVerifier(secret string, log *logger.Logger) *WebhookVerifier {
	return &WebhookVerifier{
		secret:    secret,
		tolerance: webhook.DefaultTolerance,
		log:       log,
	}
}

// Verify проверяет заголовок Stripe-Signature над сырым телом запроса.
// Ошибка подписи имеет тип *domain.WebhookError, Reason можно вернуть отправителю.
// Ошибка разбора уже проверенного события обычная: Stripe получит 500 и повторит доставку.
func (v *WebhookVerifier) Verify(payload []byte, sigHeader string) (domain.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, v.secret, webhook.ConstructEventOptions{
		Tolerance: v.tolerance,
		// Версия API аккаунта может опережать версию SDK
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		v.log.Warnw("Webhook signature verification failed", "error", err)
		return nil, &domain.WebhookError{Reason: err.Error(), OriginalErr: err}
	}

	v.log.Infow("Received verified Stripe event", "eventID", event.ID, "eventType", string(event.Type))

	switch string(event.Type) {
	case domain.EventTypePaymentSucceeded:
		outcome, err := decodeOutcome(event.Data.Raw)
		if err != nil {
			return nil, v.decodeError(event, err)
		}
		return domain.PaymentSucceededEvent{ID: event.ID, Outcome: *outcome}, nil

	case domain.EventTypePaymentFailed:
		outcome, err := decodeOutcome(event.Data.Raw)
		if err != nil {
			return nil, v.decodeError(event, err)
		}
		if outcome.ErrorMessage == "" {
			outcome.ErrorMessage = defaultFailureMessage
		}
		return domain.PaymentFailedEvent{ID: event.ID, Outcome: *outcome}, nil

	default:
		return domain.UnhandledEvent{ID: event.ID, Type: string(event.Type)}, nil
	}
}

func (v *WebhookVerifier) decodeError(event stripe.Event, err error) error {
	v.log.Errorw("Failed to decode payment intent from event", "error", err, "eventID", event.ID, "eventType", string(event.Type))
	return fmt.Errorf("decode payment intent from %s event %s: %w", event.Type, event.ID, err)
}

// legacyCharges старый формат PaymentIntent, где charges развернуты прямо в объекте
type legacyCharges struct {
	Metadata json.RawMessage `json:"metadata"`
	Charges  struct {
		Data []struct {
			BillingDetails struct {
				Email string `json:"email"`
				Name  string `json:"name"`
			} `json:"billing_details"`
		} `json:"data"`
	} `json:"charges"`
}

// decodeOutcome собирает PaymentOutcome из объекта payment_intent.
// Email клиента: receipt_email, затем billing_details первого платежа.
func decodeOutcome(raw json.RawMessage) (*domain.PaymentOutcome, error) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(raw, &pi); err != nil {
		return nil, fmt.Errorf("payment intent: %w", err)
	}
	var extra legacyCharges
	if err := json.Unmarshal(raw, &extra); err != nil {
		return nil, fmt.Errorf("payment intent charges: %w", err)
	}
	metadata, err := orderedMetadata(extra.Metadata)
	if err != nil {
		return nil, fmt.Errorf("payment intent metadata: %w", err)
	}

	var billingEmail, billingName string
	if len(extra.Charges.Data) > 0 {
		billingEmail = extra.Charges.Data[0].BillingDetails.Email
		billingName = extra.Charges.Data[0].BillingDetails.Name
	} else if pi.LatestCharge != nil && pi.LatestCharge.BillingDetails != nil {
		billingEmail = pi.LatestCharge.BillingDetails.Email
		billingName = pi.LatestCharge.BillingDetails.Name
	}

	outcome := &domain.PaymentOutcome{
		PaymentIntentID: pi.ID,
		Amount:          pi.Amount,
		Currency:        string(pi.Currency),
		CustomerEmail:   pi.ReceiptEmail,
		CustomerName:    billingName,
		Metadata:        metadata,
	}
	if outcome.CustomerEmail == "" {
		outcome.CustomerEmail = billingEmail
	}
	if pi.LastPaymentError != nil {
		outcome.ErrorMessage = pi.LastPaymentError.Msg
	}
	return outcome, nil
}

// orderedMetadata читает объект metadata, сохраняя порядок ключей
func orderedMetadata(raw json.RawMessage) ([]domain.MetadataEntry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("metadata is not an object")
	}

	var entries []domain.MetadataEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		entries = append(entries, domain.MetadataEntry{Key: key, Value: metadataValue(value)})
	}
	return entries, nil
}

func metadataValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return strings.TrimSpace(string(b))
	}
}
