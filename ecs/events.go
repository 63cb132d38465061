package ecs

// EventType names a diagnostics event.
type EventType string

const (
	EventProgramLoaded     EventType = "program_loaded"
	EventProgramLoadFailed EventType = "program_load_failed"
	EventTickFailed        EventType = "tick_failed"
)

// Event is a diagnostics payload produced during a tick.
type Event struct {
	Type EventType
	Tick uint64
	Data any
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Len is the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
