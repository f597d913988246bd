package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dhoini/notification-relay/internal/domain"
	"github.com/Dhoini/notification-relay/internal/kafka/producer"
	"github.com/Dhoini/notification-relay/internal/mail"
	"github.com/Dhoini/notification-relay/internal/metrics"
	"github.com/Dhoini/notification-relay/internal/templates"
	"github.com/Dhoini/notification-relay/pkg/logger"
)

const (
	adminRecipientName    = "Admin"
	defaultRecipientName  = "Customer"
	copySubjectPrefix     = "[Copy] "
	publishTimeout        = 10 * time.Second
	templateContactClient = "contact_confirmation"
	templateContactAdmin  = "contact_admin"
	templateContactCopy   = "contact_confirmation_copy"
	templatePaymentClient = "payment_success_client"
	templatePaymentAdmin  = "payment_success_admin"
	templatePaymentCopy   = "payment_success_client_copy"
	templatePaymentFailed = "payment_failure_admin"
)

// Notifier отправляет письма по бизнес-событиям
type Notifier interface {
	NotifyContact(ctx context.Context, sub domain.ContactSubmission) error
	NotifyPaymentSucceeded(ctx context.Context, outcome domain.PaymentOutcome) error
	NotifyPaymentFailed(ctx context.Context, outcome domain.PaymentOutcome) error
}

// NotificationConfig адреса и имена отправителей
type NotificationConfig struct {
	FromAddress string
	FromName    string
	AdminEmail  string
	BrandName   string
}

// NotificationService выполняет сценарии из одного-трех писем.
// Письма отправляются строго по очереди, первая ошибка прерывает сценарий.
type NotificationService struct {
	sender    mail.Sender
	formatter *templates.Formatter
	cfg       NotificationConfig
	metrics   metrics.NotificationMetrics
	audit     producer.NotificationProducer // Может быть nil, если Kafka не настроена
	now       func() time.Time
	log       *logger.Logger
}

// NewNotificationService конструктор сервиса
func NewNotificationService(
	sender mail.Sender,
	formatter *templates.Formatter,
	cfg NotificationConfig,
	m metrics.NotificationMetrics,
	audit producer.NotificationProducer,
	now func() time.Time,
	log *logger.Logger,
) *NotificationService {
	if audit == nil {
		log.Warnw("Notification audit producer is nil, audit publishing will be skipped.")
	}
	if m == nil {
		m = metrics.Nop{}
	}
	if now == nil {
		now = time.Now
	}
	return &NotificationService{
		sender:    sender,
		formatter: formatter,
		cfg:       cfg,
		metrics:   m,
		audit:     audit,
		now:       now,
		log:       log,
	}
}

// step одно письмо сценария
type step struct {
	template string
	req      mail.SendRequest
}

// NotifyContact: подтверждение клиенту, уведомление администратору, копия подтверждения администратору
func (s *NotificationService) NotifyContact(ctx context.Context, sub domain.ContactSubmission) error {
	now := s.now()
	client := s.formatter.ContactConfirmation(sub, now)
	admin := s.formatter.ContactAdminNotification(sub, now)

	steps := []step{
		{templateContactClient, s.request(s.cfg.FromName, sub.Email, sub.Name, client.Subject, client)},
		{templateContactAdmin, s.request(s.cfg.BrandName+" Contact Form", s.cfg.AdminEmail, adminRecipientName, admin.Subject, admin)},
		{templateContactCopy, s.request(s.cfg.FromName, s.cfg.AdminEmail, adminRecipientName,
			copySubjectPrefix+client.Subject+" - "+sub.Name, client)},
	}
	return s.run(ctx, producer.WorkflowContact, sub.Email, steps)
}

// NotifyPaymentSucceeded: без email клиента отправляется только уведомление администратору
func (s *NotificationService) NotifyPaymentSucceeded(ctx context.Context, outcome domain.PaymentOutcome) error {
	now := s.now()
	admin := s.formatter.PaymentSuccessAdmin(outcome, now)
	adminStep := step{templatePaymentAdmin, s.request(s.cfg.BrandName+" Payments", s.cfg.AdminEmail, adminRecipientName, admin.Subject, admin)}

	var steps []step
	if !outcome.HasCustomerEmail() {
		s.log.Warnw("No customer email on payment, notifying admin only", "paymentIntentID", outcome.PaymentIntentID)
		steps = []step{adminStep}
	} else {
		client := s.formatter.PaymentSuccessClient(outcome, now)
		name := outcome.CustomerName
		if name == "" {
			name = defaultRecipientName
		}
		steps = []step{
			{templatePaymentClient, s.request(s.cfg.FromName, outcome.CustomerEmail, name, client.Subject, client)},
			adminStep,
			{templatePaymentCopy, s.request(s.cfg.FromName, s.cfg.AdminEmail, adminRecipientName,
				copySubjectPrefix+client.Subject+" - "+outcome.CustomerEmail, client)},
		}
	}

	s.metrics.ObservePaymentAmount(float64(outcome.Amount)/100, outcome.Currency, "succeeded")
	return s.run(ctx, producer.WorkflowPaymentSucceeded, outcome.PaymentIntentID, steps)
}

// NotifyPaymentFailed: одно письмо администратору
func (s *NotificationService) NotifyPaymentFailed(ctx context.Context, outcome domain.PaymentOutcome) error {
	admin := s.formatter.PaymentFailureAdmin(outcome, s.now())
	steps := []step{
		{templatePaymentFailed, s.request(s.cfg.BrandName+" Payments", s.cfg.AdminEmail, adminRecipientName, admin.Subject, admin)},
	}

	s.metrics.ObservePaymentAmount(float64(outcome.Amount)/100, outcome.Currency, "failed")
	return s.run(ctx, producer.WorkflowPaymentFailed, outcome.PaymentIntentID, steps)
}

func (s *NotificationService) request(fromName, toAddress, toName, subject string, msg domain.EmailMessage) mail.SendRequest {
	return mail.SendRequest{
		From:     mail.Address{Address: s.cfg.FromAddress, Name: fromName},
		To:       mail.To(toAddress, toName),
		Subject:  subject,
		HTMLBody: msg.HTML,
		TextBody: msg.Text,
	}
}

// run отправляет письма по порядку и публикует событие аудита после успеха
func (s *NotificationService) run(ctx context.Context, workflow, reference string, steps []step) error {
	recipients := make([]string, 0, len(steps))
	for i, st := range steps {
		if _, err := s.sender.Send(ctx, st.req); err != nil {
			s.metrics.IncEmailFailed(st.template)
			s.log.Errorw("Notification step failed",
				"workflow", workflow,
				"step", i+1,
				"template", st.template,
				"reference", reference,
				"error", err,
			)
			return fmt.Errorf("%s: step %d (%s) failed: %w", workflow, i+1, st.template, err)
		}
		s.metrics.IncEmailSent(st.template)
		recipients = append(recipients, st.req.To[0].EmailAddress.Address)
	}

	s.log.Infow("Notification workflow completed", "workflow", workflow, "reference", reference, "emails", len(steps))
	s.publishAudit(ctx, producer.NotificationEvent{
		Workflow:   workflow,
		Reference:  reference,
		Recipients: recipients,
		EmailsSent: len(steps),
	})
	return nil
}

// publishAudit ошибки только логируются, письма уже отправлены
func (s *NotificationService) publishAudit(ctx context.Context, event producer.NotificationEvent) {
	if s.audit == nil {
		return
	}
	// Запрос может завершиться раньше, поэтому контекст отвязан от отмены
	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event.Timestamp = s.now().UTC()
	if err := s.audit.PublishNotificationDispatched(auditCtx, event); err != nil {
		s.log.Errorw("Failed to publish notification audit event", "error", err, "workflow", event.Workflow, "reference", event.Reference)
	}
}
