package sse

import (
	"strings"
	"testing"
	"time"
)

func recv(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return string(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return ""
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(0)
	defer b.Close()

	ch := b.Subscribe()
	if n := b.ClientCount(); n != 1 {
		t.Errorf("client count = %d, want 1", n)
	}

	b.Unsubscribe(ch)
	if n := b.ClientCount(); n != 0 {
		t.Errorf("client count after unsubscribe = %d, want 0", n)
	}
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}
}

func TestPublishDeliversToAllClients(t *testing.T) {
	b := NewBroker(0)
	defer b.Close()

	ch1 := b.Subscribe()
	ch2 := b.Subscribe()

	b.Publish(Event{Type: "test.event", Data: map[string]string{"k": "v"}})

	for _, ch := range []chan []byte{ch1, ch2} {
		msg := recv(t, ch)
		if !strings.Contains(msg, "event: test.event") {
			t.Errorf("missing event type: %q", msg)
		}
		if !strings.Contains(msg, `"k":"v"`) {
			t.Errorf("missing payload: %q", msg)
		}
	}
}

func TestPublishNoteEvent_TypesAndID(t *testing.T) {
	b := NewBroker(time.Hour) // throttle list hints out of the way
	defer b.Close()

	ch := b.Subscribe()

	// The first note event also carries a list.updated hint; the
	// one-hour throttle suppresses hints for the rest.
	b.PublishNoteEvent("created", 42)
	msg := recv(t, ch)
	if !strings.Contains(msg, "event: note.created") || !strings.Contains(msg, `"id":42`) {
		t.Errorf("created: got %q", msg)
	}
	msg = recv(t, ch)
	if !strings.Contains(msg, "event: list.updated") {
		t.Errorf("expected list hint after first event, got %q", msg)
	}

	for _, kind := range []string{"updated", "deleted"} {
		b.PublishNoteEvent(kind, 42)
		msg := recv(t, ch)
		if !strings.Contains(msg, "event: note."+kind) {
			t.Errorf("kind %s: got %q", kind, msg)
		}
		if !strings.Contains(msg, `"id":42`) {
			t.Errorf("kind %s: missing id: %q", kind, msg)
		}
	}
	select {
	case extra := <-ch:
		t.Errorf("unexpected extra event: %q", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublishImportEvent(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	b.PublishImportEvent(3, 5)

	msg := recv(t, ch)
	if !strings.Contains(msg, "event: notes.imported") {
		t.Errorf("got %q", msg)
	}
	if !strings.Contains(msg, `"inserted":3`) || !strings.Contains(msg, `"updated":5`) {
		t.Errorf("missing counts: %q", msg)
	}
}

func TestClose_IsIdempotentAndClosesClients(t *testing.T) {
	b := NewBroker(0)
	ch := b.Subscribe()

	b.Close()
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("client channel should be closed after Close")
	}
	if n := b.ClientCount(); n != 0 {
		t.Errorf("client count after close = %d", n)
	}

	// Post-close calls must not panic or block.
	b.Publish(Event{Type: "late"})
	b.PublishNoteEvent("created", 1)
	b.PublishImportEvent(0, 0)
	late := b.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscribe after close should return a closed channel")
	}
}
