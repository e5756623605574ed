package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	bus.Subscribe(func(event *Event) error {
		received = event
		callCount++
		return nil
	}, EventBookingCreated)

	err := bus.PublishJSON(EventBookingCreated, BookingEventPayload{BookingID: 7, Status: "active"})
	require.NoError(t, err)

	assert.Equal(t, 1, callCount)
	require.NotNil(t, received)
	assert.Equal(t, EventBookingCreated, received.Type)

	var decoded BookingEventPayload
	require.NoError(t, json.Unmarshal(received.Payload, &decoded))
	assert.Equal(t, int64(7), decoded.BookingID)
	assert.Equal(t, "active", decoded.Status)
}

func TestEventBusSubscribeMany(t *testing.T) {
	bus := NewEventBus()
	seen := map[string]int{}

	bus.Subscribe(func(e *Event) error { seen[e.Type]++; return nil }, BookingEventTypes...)

	for _, typ := range BookingEventTypes {
		bus.Publish(&Event{Type: typ})
	}
	bus.Publish(&Event{Type: "unrelated"})

	assert.Len(t, seen, len(BookingEventTypes))
	for _, typ := range BookingEventTypes {
		assert.Equal(t, 1, seen[typ], typ)
	}
}

func TestEventBusHandlerErrors(t *testing.T) {
	bus := NewEventBus()
	var failures []error
	bus.OnError = func(_ *Event, err error) { failures = append(failures, err) }

	var secondCalled bool
	bus.Subscribe(func(_ *Event) error { return errors.New("boom") }, "event")
	bus.Subscribe(func(_ *Event) error { secondCalled = true; return nil }, "event")

	bus.Publish(&Event{Type: "event"})

	assert.True(t, secondCalled)
	require.Len(t, failures, 1)
	assert.EqualError(t, failures[0], "boom")
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	bus.Publish(&Event{Type: "unknown"})
	assert.NoError(t, bus.PublishJSON("unknown", nil))

	var nilBus *EventBus
	assert.NoError(t, nilBus.PublishJSON("unknown", nil))
}

func TestNewJSONEvent(t *testing.T) {
	event, err := NewJSONEvent("type", BookingEventPayload{BookingID: 123})
	require.NoError(t, err)

	assert.Equal(t, "type", event.Type)
	assert.False(t, event.CreatedAt.IsZero())

	var decoded BookingEventPayload
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	assert.Equal(t, int64(123), decoded.BookingID)

	_, err = NewJSONEvent("type", make(chan int))
	assert.Error(t, err)
}
