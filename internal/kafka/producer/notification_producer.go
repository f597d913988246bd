package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dhoini/notification-relay/pkg/logger"
	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Значения заголовка event_type
const (
	WorkflowContact          = "contact.submitted"
	WorkflowPaymentSucceeded = "payment.succeeded"
	WorkflowPaymentFailed    = "payment.failed"
)

// NotificationEvent запись аудита о завершенном сценарии уведомлений
type NotificationEvent struct {
	ID         string    `json:"id"`
	Workflow   string    `json:"workflow"`
	Reference  string    `json:"reference"`
	Recipients []string  `json:"recipients"`
	EmailsSent int       `json:"emails_sent"`
	Timestamp  time.Time `json:"timestamp"`
}

// NotificationProducer интерфейс для отправки событий аудита
type NotificationProducer interface {
	PublishNotificationDispatched(ctx context.Context, event NotificationEvent) error
	Close() error
}

type kafkaNotificationProducer struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
	now      func() time.Time
}

// NewKafkaNotificationProducer создает новый продюсер событий аудита
func NewKafkaNotificationProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) NotificationProducer {
	return &kafkaNotificationProducer{
		producer: producer,
		topic:    topic,
		log:      log,
		now:      time.Now,
	}
}

// PublishNotificationDispatched публикует событие. ID и время проставляются, если не заданы.
// Ключ сообщения Reference, чтобы события одного платежа попадали в одну партицию.
func (p *kafkaNotificationProducer) PublishNotificationDispatched(ctx context.Context, event NotificationEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to publish notification event: %w", err)
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now().UTC()
	}

	messageValue, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Reference),
		Value: sarama.ByteEncoder(messageValue),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("event_type"),
				Value: []byte(event.Workflow),
			},
		},
		Timestamp: event.Timestamp,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish notification event: %w", err)
	}

	p.log.Debugw("Published notification event",
		"topic", p.topic,
		"workflow", event.Workflow,
		"partition", partition,
		"offset", offset,
	)
	return nil
}

// Close закрывает продюсер
func (p *kafkaNotificationProducer) Close() error {
	return p.producer.Close()
}
