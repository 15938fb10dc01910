package telemetry

import (
	"encoding/json"
	"sync"
	"time"
)

// Repository collects gameplay events for the balance stats endpoint.
type Repository interface {
	RecordEvent(eventType EventType, metadata EventMetadata) error
	GetEvents(since time.Time, eventTypes []EventType) ([]Event, error)
	Clear() error
}

// maxBufferedEvents caps the in-memory log; once full the oldest events
// fall off so a long-running server cannot grow without bound.
const maxBufferedEvents = 10000

// MemoryRepository holds recent events in process memory. Stats computed
// from it cover the buffered window only, which is enough for the balance
// endpoint and for tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	events []Event
	nextID int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1}
}

func (r *MemoryRepository) RecordEvent(eventType EventType, metadata EventMetadata) error {
	raw, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{
		ID:        r.nextID,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Metadata:  string(raw),
	})
	r.nextID++
	if len(r.events) > maxBufferedEvents {
		r.events = append([]Event(nil), r.events[len(r.events)-maxBufferedEvents:]...)
	}
	return nil
}

func (r *MemoryRepository) GetEvents(since time.Time, eventTypes []EventType) ([]Event, error) {
	wanted := make(map[EventType]bool, len(eventTypes))
	for _, t := range eventTypes {
		wanted[t] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Event, 0, len(r.events))
	for _, ev := range r.events {
		if ev.Timestamp.Before(since) {
			continue
		}
		if len(wanted) > 0 && !wanted[ev.Type] {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (r *MemoryRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.nextID = 1
	return nil
}
