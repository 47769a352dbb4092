package kafka

import (
	"encoding/json"
	"testing"
)

func TestMessageBuilder(t *testing.T) {
	payload := map[string]string{"reservation_id": "abc", "room_id": "room-1"}

	msg, err := NewMessage().
		WithKey("room-1").
		WithEventType("reservation.confirmed").
		WithCorrelationID("abc").
		WithSource("seaview-reservations").
		WithValue(payload).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if msg.Key != "room-1" {
		t.Errorf("key = %q", msg.Key)
	}
	if msg.GetEventType() != "reservation.confirmed" {
		t.Errorf("event type = %q", msg.GetEventType())
	}
	if msg.GetCorrelationID() != "abc" {
		t.Errorf("correlation id = %q", msg.GetCorrelationID())
	}
	if msg.GetEventID() == "" {
		t.Error("event id not assigned")
	}

	var decoded map[string]string
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("value not valid JSON: %v", err)
	}
	if decoded["room_id"] != "room-1" {
		t.Errorf("payload room_id = %q", decoded["room_id"])
	}
}

func TestMessageBuilderMarshalFailure(t *testing.T) {
	_, err := NewMessage().
		WithKey("room-1").
		WithValue(func() {}). // functions cannot be marshalled
		Build()
	if err == nil {
		t.Fatal("expected marshal error")
	}
}

func TestMessageEventIDsAreUnique(t *testing.T) {
	a, _ := NewMessage().WithKey("k").WithValue("v").Build()
	b, _ := NewMessage().WithKey("k").WithValue("v").Build()

	if a.GetEventID() == b.GetEventID() {
		t.Fatal("two messages share an event id")
	}
}
