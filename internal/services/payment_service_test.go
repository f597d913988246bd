package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/Dhoini/notification-relay/internal/domain"
	"github.com/Dhoini/notification-relay/internal/repository"
	"github.com/Dhoini/notification-relay/internal/stripe"
	"github.com/Dhoini/notification-relay/pkg/logger"
)

const webhookSecret = "whsec_services_test"

func newTestPaymentService(client *fakeStripeClient, sender *recordingSender, events *memoryEventStore) *PaymentService {
	verifier := stripe.NewWebhookVerifier(webhookSecret, logger.NewNop())
	notifier := newTestNotifier(sender, nil)
	var store repository.EventStore
	if events != nil {
		store = events
	}
	return NewPaymentService(client, verifier, notifier, store, nil, logger.NewNop())
}

func signedHeader(payload string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    webhookSecret,
		Timestamp: time.Now(),
	}).Header
}

func TestCreatePaymentIntentBuildsRequest(t *testing.T) {
	client := &fakeStripeClient{}
	svc := newTestPaymentService(client, &recordingSender{}, nil)

	res, err := svc.CreatePaymentIntent(context.Background(), CreatePaymentIntentInput{
		Amount:        9999.6,
		Currency:      "GBP",
		CustomerEmail: "jane@example.com",
		CustomerName:  "Jane",
		Metadata:      map[string]any{"package": "Premium", "sessions": float64(3), "customerName": "Override"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret", res.ClientSecret)
	assert.Equal(t, "pi_1", res.PaymentIntentID)

	require.Len(t, client.calls, 1)
	req := client.calls[0]
	assert.Equal(t, int64(10000), req.Amount)
	assert.Equal(t, "gbp", req.Currency)
	assert.Equal(t, "jane@example.com", req.CustomerEmail)
	assert.Equal(t, map[string]string{
		"customerName": "Override",
		"package":      "Premium",
		"sessions":     "3",
	}, req.Metadata)
}

func TestCreatePaymentIntentDefaults(t *testing.T) {
	client := &fakeStripeClient{}
	svc := newTestPaymentService(client, &recordingSender{}, nil)

	_, err := svc.CreatePaymentIntent(context.Background(), CreatePaymentIntentInput{
		Amount:        float64(9900),
		CustomerEmail: "jane@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "gbp", client.calls[0].Currency)
	assert.Equal(t, map[string]string{"customerName": ""}, client.calls[0].Metadata)
}

func TestCreatePaymentIntentRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		input   CreatePaymentIntentInput
		message string
	}{
		{"missing amount", CreatePaymentIntentInput{CustomerEmail: "a@b.com"}, "Amount and customer email are required"},
		{"zero amount", CreatePaymentIntentInput{Amount: float64(0), CustomerEmail: "a@b.com"}, "Amount and customer email are required"},
		{"missing email", CreatePaymentIntentInput{Amount: float64(100)}, "Amount and customer email are required"},
		{"negative amount", CreatePaymentIntentInput{Amount: float64(-5), CustomerEmail: "a@b.com"}, "Amount must be a positive number"},
		{"string amount", CreatePaymentIntentInput{Amount: "100", CustomerEmail: "a@b.com"}, "Amount must be a positive number"},
		{"rounds to zero", CreatePaymentIntentInput{Amount: 0.4, CustomerEmail: "a@b.com"}, "Amount must be a positive number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeStripeClient{}
			svc := newTestPaymentService(client, &recordingSender{}, nil)

			res, err := svc.CreatePaymentIntent(context.Background(), tt.input)
			assert.Nil(t, res)

			verrs, ok := IsValidationError(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tt.message, verrs[0].Message)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, client.calls, "provider must not be called")
		})
	}
}

func TestCreatePaymentIntentProviderFailure(t *testing.T) {
	client := &fakeStripeClient{err: errors.New("stripe: card declined")}
	svc := newTestPaymentService(client, &recordingSender{}, nil)

	_, err := svc.CreatePaymentIntent(context.Background(), CreatePaymentIntentInput{
		Amount:        float64(100),
		CustomerEmail: "a@b.com",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalServiceUnavailable)
	_, isValidation := IsValidationError(err)
	assert.False(t, isValidation)
}

const succeededPayload = `{"id":"evt_s1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123","object":"payment_intent","amount":9900,"currency":"gbp","receipt_email":"jane@example.com","metadata":{"customerName":"Jane"}}}}`

const failedPayload = `{"id":"evt_f1","object":"event","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_456","object":"payment_intent","amount":5000,"currency":"gbp","last_payment_error":{"message":"Your card was declined."}}}}`

func TestHandleWebhookSucceeded(t *testing.T) {
	sender := &recordingSender{}
	svc := newTestPaymentService(&fakeStripeClient{}, sender, nil)

	err := svc.HandleWebhook(context.Background(), []byte(succeededPayload), signedHeader(succeededPayload))
	require.NoError(t, err)
	assert.Len(t, sender.requests, 3)
}

func TestHandleWebhookFailed(t *testing.T) {
	sender := &recordingSender{}
	svc := newTestPaymentService(&fakeStripeClient{}, sender, nil)

	err := svc.HandleWebhook(context.Background(), []byte(failedPayload), signedHeader(failedPayload))
	require.NoError(t, err)
	require.Len(t, sender.requests, 1)
	assert.Contains(t, sender.requests[0].TextBody, "Your card was declined.")
}

func TestHandleWebhookUnknownTypeSendsNothing(t *testing.T) {
	payload := `{"id":"evt_u1","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1","object":"charge"}}}`
	sender := &recordingSender{}
	svc := newTestPaymentService(&fakeStripeClient{}, sender, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), []byte(payload), signedHeader(payload)))
	assert.Empty(t, sender.requests)
}

func TestHandleWebhookInvalidSignatureSendsNothing(t *testing.T) {
	sender := &recordingSender{}
	svc := newTestPaymentService(&fakeStripeClient{}, sender, nil)

	err := svc.HandleWebhook(context.Background(), []byte(succeededPayload), "t=1,v1=deadbeef")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWebhookValidationFailed)
	assert.Empty(t, sender.requests)
}

func TestHandleWebhookWorkflowFailure(t *testing.T) {
	sender := &recordingSender{failAt: 2}
	events := newMemoryEventStore()
	svc := newTestPaymentService(&fakeStripeClient{}, sender, events)

	err := svc.HandleWebhook(context.Background(), []byte(succeededPayload), signedHeader(succeededPayload))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrWebhookValidationFailed)
	assert.False(t, events.seen["evt_s1"], "failed events stay retryable")
}

func TestHandleWebhookSkipsProcessedEvents(t *testing.T) {
	sender := &recordingSender{}
	events := newMemoryEventStore()
	svc := newTestPaymentService(&fakeStripeClient{}, sender, events)

	require.NoError(t, svc.HandleWebhook(context.Background(), []byte(succeededPayload), signedHeader(succeededPayload)))
	require.NoError(t, svc.HandleWebhook(context.Background(), []byte(succeededPayload), signedHeader(succeededPayload)))

	assert.Len(t, sender.requests, 3, "replayed event must not resend emails")
	assert.True(t, events.seen["evt_s1"])
}

func TestHandleWebhookProcessesWhenStoreUnavailable(t *testing.T) {
	sender := &recordingSender{}
	events := newMemoryEventStore()
	events.seenErr = errors.New("redis down")
	svc := newTestPaymentService(&fakeStripeClient{}, sender, events)

	require.NoError(t, svc.HandleWebhook(context.Background(), []byte(failedPayload), signedHeader(failedPayload)))
	assert.Len(t, sender.requests, 1)
}
