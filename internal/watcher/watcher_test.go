package watcher

import (
	"reflect"
	"testing"
	"time"
)

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      string
	}{
		{EventCreate, "create"},
		{EventModify, "modify"},
		{EventDelete, "delete"},
		{EventRename, "rename"},
		{EventType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.eventType.String()
			if got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventTypeIsRemoval(t *testing.T) {
	if EventCreate.IsRemoval() || EventModify.IsRemoval() {
		t.Error("create/modify reported as removal")
	}
	if !EventDelete.IsRemoval() || !EventRename.IsRemoval() {
		t.Error("delete/rename not reported as removal")
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if !config.Enabled {
		t.Error("Enabled should be true by default")
	}
	if config.DebounceMs != 500 {
		t.Errorf("DebounceMs = %d, want 500", config.DebounceMs)
	}
	if config.QueueSize != 1024 {
		t.Errorf("QueueSize = %d, want 1024", config.QueueSize)
	}
	if config.Debounce() != 500*time.Millisecond {
		t.Errorf("Debounce() = %v", config.Debounce())
	}
}

func waitReady(t *testing.T, c *Coalescer, within time.Duration) bool {
	t.Helper()
	select {
	case <-c.Ready():
		return true
	case <-time.After(within):
		return false
	}
}

func TestCoalescerAdd(t *testing.T) {
	c := NewCoalescer(50 * time.Millisecond)

	c.Add(Event{Type: EventCreate, Path: "a.verse"})
	c.Add(Event{Type: EventModify, Path: "b.verse"})
	c.Add(Event{Type: EventDelete, Path: "c.verse"})

	if c.Pending() != 3 {
		t.Errorf("Pending() = %d, want 3", c.Pending())
	}
	if !waitReady(t, c, time.Second) {
		t.Fatal("Ready() never fired")
	}

	b := c.Take()
	if !reflect.DeepEqual(b.Changed, []string{"a.verse", "b.verse"}) {
		t.Errorf("Changed = %v", b.Changed)
	}
	if !reflect.DeepEqual(b.Deleted, []string{"c.verse"}) {
		t.Errorf("Deleted = %v", b.Deleted)
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d after Take", c.Pending())
	}
}

func TestCoalescerMergesPerPath(t *testing.T) {
	c := NewCoalescer(time.Hour)
	c.Add(Event{Type: EventModify, Path: "a.verse"})
	c.Add(Event{Type: EventModify, Path: "a.verse"})
	c.Add(Event{Type: EventModify, Path: "a.verse"})
	if c.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", c.Pending())
	}

	c.Add(Event{Type: EventDelete, Path: "a.verse"})
	b := c.Take()
	if len(b.Changed) != 0 || !reflect.DeepEqual(b.Deleted, []string{"a.verse"}) {
		t.Errorf("last event should win: %+v", b)
	}

	c.Add(Event{Type: EventRename, Path: "x.verse"})
	c.Add(Event{Type: EventCreate, Path: "x.verse"})
	b = c.Take()
	if !reflect.DeepEqual(b.Changed, []string{"x.verse"}) || len(b.Deleted) != 0 {
		t.Errorf("recreated path should be changed: %+v", b)
	}
}

func TestCoalescerRestartsTimer(t *testing.T) {
	c := NewCoalescer(150 * time.Millisecond)
	for i := 0; i < 10; i++ {
		c.Add(Event{Type: EventModify, Path: "a.verse"})
		time.Sleep(20 * time.Millisecond)
	}
	// 200ms have passed since the first Add, but only 20ms since the last.
	select {
	case <-c.Ready():
		t.Fatal("Ready() fired before the quiet period")
	default:
	}
	if !waitReady(t, c, time.Second) {
		t.Fatal("Ready() never fired")
	}
}

func TestCoalescerCancel(t *testing.T) {
	c := NewCoalescer(30 * time.Millisecond)
	c.Add(Event{Type: EventCreate, Path: "a.verse"})
	c.Cancel()

	if waitReady(t, c, 100*time.Millisecond) {
		t.Error("Ready() fired after Cancel")
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0 after cancel", c.Pending())
	}
}

func TestCoalescerTakeBeforeQuietPeriod(t *testing.T) {
	c := NewCoalescer(time.Hour)
	c.Add(Event{Type: EventCreate, Path: "a.verse"})
	b := c.Take()
	if !reflect.DeepEqual(b.Changed, []string{"a.verse"}) {
		t.Errorf("Take() = %+v", b)
	}
	if !c.Take().Empty() {
		t.Error("second Take() should be empty")
	}
}

func TestCoalescerIgnoresStaleTimer(t *testing.T) {
	const delay = 20 * time.Millisecond
	for i := 0; i < 50; i++ {
		c := NewCoalescer(delay)
		c.Add(Event{Type: EventModify, Path: "a.verse"})
		// Land the second Add near the first timer's expiry.
		time.Sleep(delay)
		start := time.Now()
		c.Add(Event{Type: EventModify, Path: "a.verse"})

		select {
		case <-c.Ready():
			if elapsed := time.Since(start); elapsed < delay/2 {
				t.Fatalf("iteration %d: Ready() fired %v after the last Add, want >= %v", i, elapsed, delay/2)
			}
		case <-time.After(time.Second):
			t.Fatalf("iteration %d: Ready() never fired", i)
		}
		c.Take()
	}
}

func TestCoalescerTakeDropsFiredSignal(t *testing.T) {
	c := NewCoalescer(5 * time.Millisecond)
	c.Add(Event{Type: EventCreate, Path: "a.verse"})
	time.Sleep(30 * time.Millisecond)
	if b := c.Take(); !reflect.DeepEqual(b.Changed, []string{"a.verse"}) {
		t.Fatalf("Take() = %+v", b)
	}
	select {
	case <-c.Ready():
		t.Error("Ready() still signalled after Take")
	default:
	}
}
