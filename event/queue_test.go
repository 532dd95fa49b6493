package event

import (
	"sync"
	"testing"
	"time"
)

// TestQueueBasic tests basic push and consume operations
func TestQueueBasic(t *testing.T) {
	q := NewQueue()

	q.Push(Event{Type: TypeRegistered, Name: "mixer", Frame: 1, Timestamp: time.Now()})
	q.Push(Event{Type: TypeBarrierUp, Frame: 1, Timestamp: time.Now()})
	q.Push(Event{Type: TypeDriverStarted, Frame: 1, Timestamp: time.Now()})

	events := q.Consume()
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}

	// Verify events are in FIFO order
	if events[0].Type != TypeRegistered || events[0].Name != "mixer" {
		t.Errorf("Event 1 mismatch: got type=%v, name=%v", events[0].Type, events[0].Name)
	}
	if events[1].Type != TypeBarrierUp {
		t.Errorf("Event 2 mismatch: got type=%v", events[1].Type)
	}
	if events[2].Type != TypeDriverStarted {
		t.Errorf("Event 3 mismatch: got type=%v", events[2].Type)
	}

	// Second consume should return empty slice
	if events2 := q.Consume(); len(events2) != 0 {
		t.Errorf("Expected 0 events on second consume, got %d", len(events2))
	}
}

// TestQueueConcurrent tests concurrent push operations from multiple goroutines
func TestQueueConcurrent(t *testing.T) {
	q := NewQueue()
	numGoroutines := 10
	eventsPerGoroutine := 10
	totalEvents := numGoroutines * eventsPerGoroutine

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(goroutineID int) {
			defer wg.Done()
			for j := 0; j < eventsPerGoroutine; j++ {
				q.Push(Event{
					Type:      TypeRegistered,
					Frame:     int64(goroutineID*100 + j),
					Timestamp: time.Now(),
				})
			}
		}(i)
	}

	wg.Wait()

	events := q.Consume()
	if len(events) != totalEvents {
		t.Errorf("Expected %d events, got %d", totalEvents, len(events))
	}

	// Verify all frame markers are unique
	seen := make(map[int64]bool)
	for _, ev := range events {
		if seen[ev.Frame] {
			t.Errorf("Duplicate frame marker found: %d", ev.Frame)
		}
		seen[ev.Frame] = true
	}

	if q.Len() != 0 {
		t.Errorf("Expected queue to be empty, got length %d", q.Len())
	}
}

// TestQueueOverflow tests behavior when pushing more events than buffer size
func TestQueueOverflow(t *testing.T) {
	q := NewQueue()

	// Push 300 events to a 256-size buffer
	for i := 0; i < 300; i++ {
		q.Push(Event{Type: TypeRegistered, Frame: int64(i), Timestamp: time.Now()})
	}

	events := q.Consume()
	if len(events) > 256 {
		t.Errorf("Expected at most 256 events, got %d", len(events))
	}

	// Oldest events are overwritten; last event must survive
	if len(events) > 0 {
		last := events[len(events)-1].Frame
		if last != 299 {
			t.Errorf("Expected last frame to be 299, got %d", last)
		}
	}

	// Surviving events should be sequential
	for i := 1; i < len(events); i++ {
		prev := events[i-1].Frame
		curr := events[i].Frame
		if curr != prev+1 {
			t.Errorf("Events not sequential: events[%d]=%d, events[%d]=%d", i-1, prev, i, curr)
		}
	}
}

// TestTypeString verifies every type renders a distinct label
func TestTypeString(t *testing.T) {
	types := []Type{
		TypeRegistered, TypeRemoved, TypeBarrierUp, TypeBarrierDown,
		TypeDriverStarted, TypeDriverStopped, TypeCreationFailed,
	}
	seen := make(map[string]bool)
	for _, typ := range types {
		s := typ.String()
		if s == "unknown" || seen[s] {
			t.Errorf("Type %d renders %q", typ, s)
		}
		seen[s] = true
	}
	if Type(99).String() != "unknown" {
		t.Errorf("out-of-range type should render unknown")
	}
}
