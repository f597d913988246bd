package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhoini/notification-relay/internal/domain"
	"github.com/Dhoini/notification-relay/internal/services"
	"github.com/Dhoini/notification-relay/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeContactService struct {
	got domain.ContactForm
	err error
}

func (f *fakeContactService) Submit(_ context.Context, form domain.ContactForm) (*domain.ContactSubmission, error) {
	f.got = form
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ContactSubmission{Name: form.Name, Email: form.Email}, nil
}

type fakePaymentService struct {
	got    services.CreatePaymentIntentInput
	result *domain.PaymentIntentResult
	err    error
}

func (f *fakePaymentService) CreatePaymentIntent(_ context.Context, input services.CreatePaymentIntentInput) (*domain.PaymentIntentResult, error) {
	f.got = input
	return f.result, f.err
}

type fakeWebhookService struct {
	payload []byte
	sig     string
	err     error
}

func (f *fakeWebhookService) HandleWebhook(_ context.Context, payload []byte, sig string) error {
	f.payload, f.sig = payload, sig
	return f.err
}

func perform(h gin.HandlerFunc, method, target, contentType, body string, headers map[string]string) *httptest.ResponseRecorder {
	r := gin.New()
	r.Handle(method, target, h)
	r.NoRoute(NotFound)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestContactSubmitJSON(t *testing.T) {
	svc := &fakeContactService{}
	h := NewContactHandler(svc, "support@example.com", logger.NewNop())

	w := perform(h.Submit, http.MethodPost, "/api/contact", "application/json",
		`{"name":"Jane Doe","email":"jane@example.com","service":"CV Review","appointmentDate":"2030-01-15"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Thank you for contacting us! We will get back to you shortly."}`, w.Body.String())
	assert.Equal(t, "Jane Doe", svc.got.Name)
	assert.Equal(t, "2030-01-15", svc.got.AppointmentDate)
}

func TestContactSubmitURLEncoded(t *testing.T) {
	svc := &fakeContactService{}
	h := NewContactHandler(svc, "support@example.com", logger.NewNop())

	form := url.Values{"name": {"Jane Doe"}, "email": {"jane@example.com"}, "service": {"Interview Prep"}, "appointmentTime": {"10:30"}}
	w := perform(h.Submit, http.MethodPost, "/api/contact", "application/x-www-form-urlencoded", form.Encode(), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Interview Prep", svc.got.Service)
	assert.Equal(t, "10:30", svc.got.AppointmentTime)
}

func TestContactSubmitErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "malformed json",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"success":false,"message":"Invalid request body"}`,
		},
		{
			name:       "mistyped field",
			body:       `{"name":42,"email":"jane@example.com"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"success":false,"errors":[{"field":"name","message":"name must be a string"}]}`,
		},
		{
			name: "validation errors",
			body: `{}`,
			err: domain.ValidationErrors{
				{Field: "name", Message: "Name is required"},
				{Field: "email", Message: "Email is required"},
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"success":false,"errors":[{"field":"name","message":"Name is required"},{"field":"email","message":"Email is required"}]}`,
		},
		{
			name:       "delivery failure hides internals",
			body:       `{"name":"Jane"}`,
			err:        fmt.Errorf("contact: step 1 (contact_confirmation) failed: %w", domain.ErrExternalServiceUnavailable),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"success":false,"message":"We encountered an error processing your request. Please try again later or contact us directly at support@example.com"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewContactHandler(&fakeContactService{err: tt.err}, "support@example.com", logger.NewNop())
			w := perform(h.Submit, http.MethodPost, "/api/contact", "application/json", tt.body, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.NotContains(t, w.Body.String(), "step 1")
		})
	}
}

func TestCreatePaymentIntentSuccess(t *testing.T) {
	svc := &fakePaymentService{result: &domain.PaymentIntentResult{ClientSecret: "pi_1_secret_x", PaymentIntentID: "pi_1"}}
	h := NewPaymentHandler(svc, false, logger.NewNop())

	w := perform(h.CreatePaymentIntent, http.MethodPost, "/api/payment/create-payment-intent", "application/json",
		`{"amount":99.5,"customerEmail":"a@b.com","customerName":"Ann","metadata":{"plan":"gold"}}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"clientSecret":"pi_1_secret_x","paymentIntentId":"pi_1"}`, w.Body.String())
	assert.Equal(t, 99.5, svc.got.Amount)
	assert.Equal(t, "gold", svc.got.Metadata["plan"])
}

func TestCreatePaymentIntentValidationError(t *testing.T) {
	var errs domain.ValidationErrors
	errs.Add("amount", "Amount must be a positive number")
	h := NewPaymentHandler(&fakePaymentService{err: errs}, false, logger.NewNop())

	w := perform(h.CreatePaymentIntent, http.MethodPost, "/api/payment/create-payment-intent", "application/json",
		`{"amount":-5,"customerEmail":"a@b.com"}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Amount must be a positive number"}`, w.Body.String())
}

func TestCreatePaymentIntentProviderFailure(t *testing.T) {
	providerErr := fmt.Errorf("%w: card_declined", domain.ErrExternalServiceUnavailable)

	tests := []struct {
		production bool
		wantError  bool
	}{
		{production: false, wantError: true},
		{production: true, wantError: false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("production=%v", tt.production), func(t *testing.T) {
			h := NewPaymentHandler(&fakePaymentService{err: providerErr}, tt.production, logger.NewNop())
			w := perform(h.CreatePaymentIntent, http.MethodPost, "/api/payment/create-payment-intent", "application/json",
				`{"amount":10,"customerEmail":"a@b.com"}`, nil)

			require.Equal(t, http.StatusInternalServerError, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "Failed to create payment intent", body["message"])
			_, hasError := body["error"]
			assert.Equal(t, tt.wantError, hasError)
		})
	}
}

func TestWebhookPassesRawPayloadAndSignature(t *testing.T) {
	svc := &fakeWebhookService{}
	h := NewWebhookHandler(svc, logger.NewNop())
	payload := `{"id":"evt_1",  "type":"payment_intent.succeeded"}`

	w := perform(h.HandleStripeWebhook, http.MethodPost, "/api/payment/webhook", "application/json", payload,
		map[string]string{"Stripe-Signature": "t=1,v1=abc"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
	assert.Equal(t, payload, string(svc.payload), "body must reach the verifier byte for byte")
	assert.Equal(t, "t=1,v1=abc", svc.sig)
}

func TestWebhookErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantBody    string
		wantContent string
	}{
		{
			name:        "signature failure",
			err:         &domain.WebhookError{Reason: "webhook has no valid signature", OriginalErr: errors.New("sig")},
			wantStatus:  http.StatusBadRequest,
			wantBody:    "Webhook Error: webhook has no valid signature",
			wantContent: "text/plain",
		},
		{
			name:        "workflow failure",
			err:         fmt.Errorf("handle payment_intent.succeeded event evt_1: %w", domain.ErrExternalServiceUnavailable),
			wantStatus:  http.StatusInternalServerError,
			wantBody:    `{"error":"Webhook handler failed"}`,
			wantContent: "application/json",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewWebhookHandler(&fakeWebhookService{err: tt.err}, logger.NewNop())
			w := perform(h.HandleStripeWebhook, http.MethodPost, "/api/payment/webhook", "application/json", `{}`, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
			assert.Contains(t, w.Header().Get("Content-Type"), tt.wantContent)
		})
	}
}

func TestWebhookBodyTooLarge(t *testing.T) {
	svc := &fakeWebhookService{}
	h := NewWebhookHandler(svc, logger.NewNop())

	w := perform(h.HandleStripeWebhook, http.MethodPost, "/api/payment/webhook", "application/json",
		strings.Repeat("x", int(MaxWebhookBodySize)+1), nil)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Nil(t, svc.payload)
}

func TestHealthAndRoot(t *testing.T) {
	h := NewHealthHandler("Relay", "1.0.0")
	h.now = func() time.Time { return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC) }

	w := perform(h.Health, http.MethodGet, "/health", "", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","timestamp":"2026-10-17T09:00:00Z","service":"Relay"}`, w.Body.String())

	w = perform(h.Root, http.MethodGet, "/", "", "", nil)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "1.0.0", body["version"])
	assert.Contains(t, body["endpoints"], "contact")
}

func TestNotFound(t *testing.T) {
	var recorded []*gin.Error
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		recorded = c.Errors
	})
	r.NoRoute(NotFound)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Endpoint not found"}`, w.Body.String())

	require.Len(t, recorded, 1)
	assert.ErrorIs(t, recorded[0].Err, domain.ErrNotFound)
	assert.Equal(t, "GET /nope: not found", recorded[0].Error())
}
