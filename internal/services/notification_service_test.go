package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhoini/notification-relay/internal/domain"
	"github.com/Dhoini/notification-relay/internal/kafka/producer"
)

func contactSubmission() domain.ContactSubmission {
	return domain.ContactSubmission{
		Name:            "Jane Doe",
		Email:           "jane@example.com",
		Service:         "CV Review",
		AppointmentDate: "2026-10-20",
		AppointmentTime: "14:30",
	}
}

func paymentOutcome() domain.PaymentOutcome {
	return domain.PaymentOutcome{
		PaymentIntentID: "pi_123",
		Amount:          9900,
		Currency:        "gbp",
		CustomerEmail:   "jane@example.com",
		CustomerName:    "Jane Doe",
	}
}

func TestNotifyContactSendsThreeEmailsInOrder(t *testing.T) {
	sender := &recordingSender{}
	audit := &recordingProducer{}

	err := newTestNotifier(sender, audit).NotifyContact(context.Background(), contactSubmission())
	require.NoError(t, err)

	require.Len(t, sender.requests, 3)
	assert.Equal(t, []string{
		"Thank You for Contacting NHS Career Boost",
		"New Contact Form Submission - CV Review",
		"[Copy] Thank You for Contacting NHS Career Boost - Jane Doe",
	}, sender.subjects())

	client, admin, cp := sender.requests[0], sender.requests[1], sender.requests[2]
	assert.Equal(t, "jane@example.com", client.To[0].EmailAddress.Address)
	assert.Equal(t, "Jane Doe", client.To[0].EmailAddress.Name)
	assert.Equal(t, "NHS Career Boost", client.From.Name)
	assert.Equal(t, "noreply@example.com", client.From.Address)

	assert.Equal(t, "admin@example.com", admin.To[0].EmailAddress.Address)
	assert.Equal(t, "Admin", admin.To[0].EmailAddress.Name)
	assert.Equal(t, "NHS Career Boost Contact Form", admin.From.Name)

	assert.Equal(t, "admin@example.com", cp.To[0].EmailAddress.Address)
	assert.Equal(t, client.HTMLBody, cp.HTMLBody)

	require.Len(t, audit.events, 1)
	assert.Equal(t, producer.WorkflowContact, audit.events[0].Workflow)
	assert.Equal(t, 3, audit.events[0].EmailsSent)
	assert.Equal(t, []string{"jane@example.com", "admin@example.com", "admin@example.com"}, audit.events[0].Recipients)
}

func TestNotifyContactStopsAtFirstFailure(t *testing.T) {
	tests := []struct {
		failAt    int
		wantSends int
		wantStep  string
	}{
		{failAt: 1, wantSends: 1, wantStep: "step 1 (contact_confirmation)"},
		{failAt: 2, wantSends: 2, wantStep: "step 2 (contact_admin)"},
		{failAt: 3, wantSends: 3, wantStep: "step 3 (contact_confirmation_copy)"},
	}

	for _, tt := range tests {
		t.Run(tt.wantStep, func(t *testing.T) {
			sender := &recordingSender{failAt: tt.failAt}
			audit := &recordingProducer{}

			err := newTestNotifier(sender, audit).NotifyContact(context.Background(), contactSubmission())
			require.Error(t, err)
			assert.True(t, errors.Is(err, errProviderDown))
			assert.Contains(t, err.Error(), tt.wantStep)
			assert.Len(t, sender.requests, tt.wantSends)
			assert.Empty(t, audit.events, "no audit for an aborted workflow")
		})
	}
}

func TestNotifyPaymentSucceeded(t *testing.T) {
	sender := &recordingSender{}

	err := newTestNotifier(sender, nil).NotifyPaymentSucceeded(context.Background(), paymentOutcome())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Payment Confirmation - NHS Career Boost",
		"💰 Payment Received - GBP 99.00",
		"[Copy] Payment Confirmation - NHS Career Boost - jane@example.com",
	}, sender.subjects())
	assert.Equal(t, "jane@example.com", sender.requests[0].To[0].EmailAddress.Address)
	assert.Equal(t, "NHS Career Boost Payments", sender.requests[1].From.Name)
	assert.Equal(t, "admin@example.com", sender.requests[2].To[0].EmailAddress.Address)
}

func TestNotifyPaymentSucceededWithoutCustomerEmail(t *testing.T) {
	sender := &recordingSender{}
	out := paymentOutcome()
	out.CustomerEmail = ""

	err := newTestNotifier(sender, nil).NotifyPaymentSucceeded(context.Background(), out)
	require.NoError(t, err)

	require.Len(t, sender.requests, 1)
	assert.Equal(t, "admin@example.com", sender.requests[0].To[0].EmailAddress.Address)
	assert.Equal(t, "💰 Payment Received - GBP 99.00", sender.requests[0].Subject)
}

func TestNotifyPaymentSucceededDefaultRecipientName(t *testing.T) {
	sender := &recordingSender{}
	out := paymentOutcome()
	out.CustomerName = ""

	require.NoError(t, newTestNotifier(sender, nil).NotifyPaymentSucceeded(context.Background(), out))
	assert.Equal(t, "Customer", sender.requests[0].To[0].EmailAddress.Name)
}

func TestNotifyPaymentFailedSendsSingleAdminEmail(t *testing.T) {
	sender := &recordingSender{}
	out := paymentOutcome()
	out.ErrorMessage = "Your card was declined."

	err := newTestNotifier(sender, nil).NotifyPaymentFailed(context.Background(), out)
	require.NoError(t, err)

	require.Len(t, sender.requests, 1)
	req := sender.requests[0]
	assert.Equal(t, "⚠️ Payment Failed - Action Required", req.Subject)
	assert.Equal(t, "admin@example.com", req.To[0].EmailAddress.Address)
	assert.Contains(t, req.TextBody, "Your card was declined.")
}

func TestAuditFailureDoesNotFailWorkflow(t *testing.T) {
	sender := &recordingSender{}
	audit := &recordingProducer{err: errors.New("kafka down")}

	err := newTestNotifier(sender, audit).NotifyPaymentFailed(context.Background(), paymentOutcome())
	assert.NoError(t, err)
	assert.Len(t, audit.events, 1)
	assert.Equal(t, "pi_123", audit.events[0].Reference)
}
