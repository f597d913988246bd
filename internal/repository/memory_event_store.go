package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Dhoini/notification-relay/pkg/logger"
)

// InMemoryEventStore реализация EventStore в памяти процесса.
// Используется, если Redis настроен, но недоступен при старте:
// повторы отсеиваются хотя бы в пределах одного экземпляра.
type InMemoryEventStore struct {
	events map[string]time.Time // eventID -> момент истечения
	mutex  sync.RWMutex
	ttl    time.Duration
	now    func() time.Time
	log    *logger.Logger
}

// NewInMemoryEventStore создает новое хранилище событий в памяти
func NewInMemoryEventStore(ttl time.Duration, log *logger.Logger) *InMemoryEventStore {
	if ttl <= 0 {
		ttl = defaultEventTTL
	}
	return &InMemoryEventStore{
		events: make(map[string]time.Time),
		ttl:    ttl,
		now:    time.Now,
		log:    log,
	}
}

// Seen проверяет, что событие помечено и срок еще не истек
func (r *InMemoryEventStore) Seen(_ context.Context, eventID string) (bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	expiresAt, exists := r.events[eventID]
	return exists && r.now().Before(expiresAt), nil
}

// MarkProcessed помечает событие и заодно удаляет просроченные записи
func (r *InMemoryEventStore) MarkProcessed(_ context.Context, eventID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := r.now()
	for id, expiresAt := range r.events {
		if !now.Before(expiresAt) {
			delete(r.events, id)
		}
	}
	r.events[eventID] = now.Add(r.ttl)

	r.log.Debugw("Event marked as processed in memory", "eventID", eventID, "ttl", r.ttl.String())
	return nil
}

// Len количество неистекших записей
func (r *InMemoryEventStore) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.events)
}
