package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NotificationMetrics интерфейс для метрик сервиса уведомлений
type NotificationMetrics interface {
	IncEmailSent(template string)
	IncEmailFailed(template string)
	IncContactSubmission(outcome string)
	IncWebhookEvent(eventType, outcome string)
	IncPaymentIntentCreated(currency string)
	ObservePaymentAmount(amount float64, currency string, status string)
}

type notificationMetrics struct {
	emails          *prometheus.CounterVec
	contacts        *prometheus.CounterVec
	webhookEvents   *prometheus.CounterVec
	paymentsCreated *prometheus.CounterVec
	paymentsAmount  *prometheus.HistogramVec
}

// NewRegistry создает реестр со стандартными метриками Go-рантайма и процесса
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// NewNotificationMetrics регистрирует метрики в registry
func NewNotificationMetrics(registry prometheus.Registerer) NotificationMetrics {
	factory := promauto.With(registry)

	return &notificationMetrics{
		emails: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_emails_total",
				Help: "The total number of emails handed to the mail provider",
			},
			[]string{"template", "status"},
		),
		contacts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_contact_submissions_total",
				Help: "The total number of contact form submissions by outcome",
			},
			[]string{"outcome"},
		),
		webhookEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_webhook_events_total",
				Help: "The total number of verified webhook events by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		paymentsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_payment_intents_created_total",
				Help: "The total number of created payment intents",
			},
			[]string{"currency"},
		),
		paymentsAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "relay_payment_amount",
				Help:    "Payment amounts distribution in major currency units",
				Buckets: prometheus.ExponentialBuckets(10, 10, 5), // 10, 100, 1000, 10000, 100000
			},
			[]string{"currency", "status"},
		),
	}
}

// IncEmailSent увеличивает счетчик отправленных писем
func (m *notificationMetrics) IncEmailSent(template string) {
	m.emails.WithLabelValues(template, "sent").Inc()
}

// IncEmailFailed увеличивает счетчик неотправленных писем
func (m *notificationMetrics) IncEmailFailed(template string) {
	m.emails.WithLabelValues(template, "failed").Inc()
}

func (m *notificationMetrics) IncContactSubmission(outcome string) {
	m.contacts.WithLabelValues(outcome).Inc()
}

func (m *notificationMetrics) IncWebhookEvent(eventType, outcome string) {
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func (m *notificationMetrics) IncPaymentIntentCreated(currency string) {
	m.paymentsCreated.WithLabelValues(currency).Inc()
}

// ObservePaymentAmount записывает сумму платежа
func (m *notificationMetrics) ObservePaymentAmount(amount float64, currency string, status string) {
	m.paymentsAmount.WithLabelValues(currency, status).Observe(amount)
}

// Nop метрики для тестов и случаев без реестра
type Nop struct{}

func (Nop) IncEmailSent(string)                          {}
func (Nop) IncEmailFailed(string)                        {}
func (Nop) IncContactSubmission(string)                  {}
func (Nop) IncWebhookEvent(string, string)               {}
func (Nop) IncPaymentIntentCreated(string)               {}
func (Nop) ObservePaymentAmount(float64, string, string) {}
