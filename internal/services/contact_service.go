package services

import (
	"context"
	"fmt"

	"github.com/Dhoini/notification-relay/internal/domain"
	"github.com/Dhoini/notification-relay/internal/metrics"
	"github.com/Dhoini/notification-relay/pkg/logger"
)

// ContactValidator проверяет и нормализует форму обратной связи
type ContactValidator interface {
	Validate(form domain.ContactForm) (*domain.ContactSubmission, error)
}

// ContactService принимает заявку с формы обратной связи
type ContactService struct {
	validator ContactValidator
	notifier  Notifier
	metrics   metrics.NotificationMetrics
	log       *logger.Logger
}

func NewContactService(validator ContactValidator, notifier Notifier, m metrics.NotificationMetrics, log *logger.Logger) *ContactService {
	if m == nil {
		m = metrics.Nop{}
	}
	return &ContactService{
		validator: validator,
		notifier:  notifier,
		metrics:   m,
		log:       log,
	}
}

// Submit возвращает domain.ValidationErrors, если форма неверна; письма тогда не отправляются.
func (s *ContactService) Submit(ctx context.Context, form domain.ContactForm) (*domain.ContactSubmission, error) {
	sub, err := s.validator.Validate(form)
	if err != nil {
		s.metrics.IncContactSubmission("invalid")
		return nil, err
	}

	if err := s.notifier.NotifyContact(ctx, *sub); err != nil {
		s.metrics.IncContactSubmission("failed")
		return nil, fmt.Errorf("contact notification: %w", err)
	}

	s.metrics.IncContactSubmission("accepted")
	s.log.Infow("Contact form processed", "email", sub.Email, "service", sub.Service)
	return sub, nil
}
