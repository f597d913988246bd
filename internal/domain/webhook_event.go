package domain

// Типы событий Stripe, которые обрабатывает сервис
const (
	EventTypePaymentSucceeded = "payment_intent.succeeded"
	EventTypePaymentFailed    = "payment_intent.payment_failed"
)

// PaymentEvent проверенное событие вебхука.
// Закрытый набор вариантов: PaymentSucceededEvent, PaymentFailedEvent, UnhandledEvent.
type PaymentEvent interface {
	EventID() string
	EventType() string
	paymentEvent()
}

// PaymentSucceededEvent payment_intent.succeeded
type PaymentSucceededEvent struct {
	ID      string
	Outcome PaymentOutcome
}

// PaymentFailedEvent payment_intent.payment_failed
type PaymentFailedEvent struct {
	ID      string
	Outcome PaymentOutcome
}

// UnhandledEvent любой другой тип события. Подтверждается без обработки.
type UnhandledEvent struct {
	ID   string
	Type string
}

func (e PaymentSucceededEvent) EventID() string   { return e.ID }
func (e PaymentSucceededEvent) EventType() string { return EventTypePaymentSucceeded }
func (PaymentSucceededEvent) paymentEvent()       {}

func (e PaymentFailedEvent) EventID() string   { return e.ID }
func (e PaymentFailedEvent) EventType() string { return EventTypePaymentFailed }
func (PaymentFailedEvent) paymentEvent()       {}

func (e UnhandledEvent) EventID() string   { return e.ID }
func (e UnhandledEvent) EventType() string { return e.Type }
func (UnhandledEvent) paymentEvent()       {}
