package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dhoini/notification-relay/pkg/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

const (
	// Префикс ключей обработанных событий вебхука
	processedEventKeyPrefix = "webhook:processed:"

	defaultEventTTL = 72 * time.Hour
	pingTimeout     = 5 * time.Second
	maxPingRetries  = 3
)

// EventStore хранит идентификаторы уже обработанных событий вебхука.
type EventStore interface {
	// Seen сообщает, было ли событие уже успешно обработано
	Seen(ctx context.Context, eventID string) (bool, error)
	// MarkProcessed помечает событие как обработанное
	MarkProcessed(ctx context.Context, eventID string) error
}

// RedisEventStore реализует EventStore поверх Redis
type RedisEventStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisEventStore подключается к Redis и проверяет соединение.
// Ping повторяется с экспоненциальной задержкой, но не более maxPingRetries раз.
func NewRedisEventStore(ctx context.Context, redisAddr, redisPassword string, redisDB int, ttl time.Duration, log *logger.Logger) (*RedisEventStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return client.Ping(pingCtx).Err()
	}
	notify := func(err error, next time.Duration) {
		log.Warnw("Redis ping failed, retrying", "error", err, "next_attempt_in", next.String())
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	if err := backoff.RetryNotify(ping, backoff.WithContext(backoff.WithMaxRetries(bo, maxPingRetries), ctx), notify); err != nil {
		_ = client.Close()
		log.Errorw("Failed to connect to Redis", "error", err, "addr", redisAddr)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Infow("Connected to Redis successfully", "addr", redisAddr)
	return NewRedisEventStoreFromClient(client, ttl, log), nil
}

// NewRedisEventStoreFromClient оборачивает готовый клиент без проверки соединения
func NewRedisEventStoreFromClient(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisEventStore {
	if ttl <= 0 {
		ttl = defaultEventTTL
	}
	return &RedisEventStore{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Close закрывает соединение с Redis
func (r *RedisEventStore) Close() error {
	return r.client.Close()
}

// Seen проверяет наличие ключа события
func (r *RedisEventStore) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := r.client.Exists(ctx, processedEventKeyPrefix+eventID).Result()
	if err != nil {
		r.log.Errorw("Error checking processed event in Redis", "error", err, "eventID", eventID)
		return false, fmt.Errorf("failed to check processed event: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed записывает ключ события с TTL
func (r *RedisEventStore) MarkProcessed(ctx context.Context, eventID string) error {
	if err := r.client.Set(ctx, processedEventKeyPrefix+eventID, time.Now().UTC().Format(time.RFC3339), r.ttl).Err(); err != nil {
		r.log.Errorw("Failed to mark event as processed in Redis", "error", err, "eventID", eventID)
		return fmt.Errorf("failed to mark event as processed: %w", err)
	}

	r.log.Debugw("Event marked as processed", "eventID", eventID, "ttl", r.ttl.String())
	return nil
}

// NopEventStore используется, когда Redis не настроен: каждое событие считается новым
type NopEventStore struct{}

func (NopEventStore) Seen(context.Context, string) (bool, error) { return false, nil }
func (NopEventStore) MarkProcessed(context.Context, string) error { return nil }
