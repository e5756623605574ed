package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventBookingCreated       = "booking_created"
	EventBookingUpdated       = "booking_updated"
	EventBookingStatusChanged = "booking_status_changed"
	EventBookingDeleted       = "booking_deleted"
	EventBookingClosedBySweep = "booking_closed_by_sweep"
)

// BookingEventTypes lists every event that changes booking state.
var BookingEventTypes = []string{
	EventBookingCreated,
	EventBookingUpdated,
	EventBookingStatusChanged,
	EventBookingDeleted,
	EventBookingClosedBySweep,
}

// BookingEventPayload describes the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID  int64     `json:"booking_id"`
	CustomerID int64     `json:"customer_id,omitempty"`
	StartDate  string    `json:"start_date,omitempty"`
	EndDate    string    `json:"end_date,omitempty"`
	Status     string    `json:"status,omitempty"`
	PrevStatus string    `json:"prev_status,omitempty"`
	TotalValue string    `json:"total_value,omitempty"`
	ItemIDs    []int64   `json:"item_ids,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex

	// OnError receives handler failures; nil drops them.
	OnError func(event *Event, err error)
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for the given event types.
func (b *EventBus) Subscribe(handler EventHandler, eventTypes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range eventTypes {
		b.subscribers[t] = append(b.subscribers[t], handler)
	}
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	onError := b.OnError
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	// Handlers run synchronously; caller decides concurrency model.
	for _, handler := range handlers {
		if err := handler(event); err != nil && onError != nil {
			onError(event, err)
		}
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	event, err := NewJSONEvent(eventType, payload)
	if err != nil {
		return err
	}

	b.Publish(&event)
	return nil
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}
