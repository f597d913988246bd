package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Dhoini/notification-relay/internal/domain"
	"github.com/Dhoini/notification-relay/internal/kafka/producer"
	"github.com/Dhoini/notification-relay/internal/mail"
	"github.com/Dhoini/notification-relay/internal/templates"
	"github.com/Dhoini/notification-relay/pkg/logger"
)

var errProviderDown = errors.New("provider down")

var testNow = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

// recordingSender запоминает запросы; failAt задает номер вызова (с 1), который вернет ошибку
type recordingSender struct {
	mu       sync.Mutex
	requests []mail.SendRequest
	failAt   int
}

func (s *recordingSender) Send(_ context.Context, req mail.SendRequest) (*mail.SendResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.failAt == len(s.requests) {
		return nil, errProviderDown
	}
	return &mail.SendResponse{StatusCode: 200}, nil
}

func (s *recordingSender) subjects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.requests))
	for _, r := range s.requests {
		out = append(out, r.Subject)
	}
	return out
}

type recordingProducer struct {
	events []producer.NotificationEvent
	err    error
}

func (p *recordingProducer) PublishNotificationDispatched(_ context.Context, event producer.NotificationEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingProducer) Close() error { return nil }

type fakeStripeClient struct {
	calls []domain.PaymentIntentRequest
	err   error
}

func (c *fakeStripeClient) CreatePaymentIntent(_ context.Context, req domain.PaymentIntentRequest) (*domain.PaymentIntentResult, error) {
	c.calls = append(c.calls, req)
	if c.err != nil {
		return nil, c.err
	}
	return &domain.PaymentIntentResult{ClientSecret: "pi_1_secret", PaymentIntentID: "pi_1"}, nil
}

type memoryEventStore struct {
	seen    map[string]bool
	seenErr error
}

func newMemoryEventStore() *memoryEventStore {
	return &memoryEventStore{seen: map[string]bool{}}
}

func (m *memoryEventStore) Seen(_ context.Context, id string) (bool, error) {
	if m.seenErr != nil {
		return false, m.seenErr
	}
	return m.seen[id], nil
}

func (m *memoryEventStore) MarkProcessed(_ context.Context, id string) error {
	m.seen[id] = true
	return nil
}

func testNotificationConfig() NotificationConfig {
	return NotificationConfig{
		FromAddress: "noreply@example.com",
		FromName:    "NHS Career Boost",
		AdminEmail:  "admin@example.com",
		BrandName:   "NHS Career Boost",
	}
}

func newTestNotifier(sender mail.Sender, audit producer.NotificationProducer) *NotificationService {
	formatter := templates.NewFormatter("NHS Career Boost", "support@example.com", time.UTC)
	return NewNotificationService(sender, formatter, testNotificationConfig(), nil, audit,
		func() time.Time { return testNow }, logger.NewNop())
}
