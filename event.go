package lcm

import "container/heap"

// RobotState is one state of the LCM cycle a robot occupies.
type RobotState uint8

// RobotState values. The zero value is intentionally invalid so a
// zero-initialized Event is never mistaken for a LOOK event.
const (
	_ RobotState = iota
	Look
	Move
	Wait
	Terminated
)

func (s RobotState) String() string {
	switch s {
	case Look:
		return "LOOK"
	case Move:
		return "MOVE"
	case Wait:
		return "WAIT"
	case Terminated:
		return "TERMINATED"
	default:
		return "NONE"
	}
}

// Event is a single scheduled state transition. An Event with ID == -1 is a
// visualization-sampling tick, not tied to any robot.
type Event struct {
	Time  float64
	ID    int
	State RobotState
}

// visualizationEvent builds the sentinel visualization-tick event at time t.
func visualizationEvent(t float64) Event {
	return Event{Time: t, ID: -1}
}

// IsVisualization reports whether e is a visualization-sampling tick rather
// than a robot state transition.
func (e Event) IsVisualization() bool {
	return e.ID == -1
}

// eventQueue is a min-heap of Events ordered by Time, ties broken by
// insertion order (each entry's `order`, stamped from the `seq` counter) for a
// stable, reproducible pop sequence.
type eventQueue struct {
	items []queuedEvent
	seq   int
}

type queuedEvent struct {
	event Event
	order int
}

func newEventQueue() *eventQueue {
	q := &eventQueue{}
	heap.Init(q)
	return q
}

// PushEvent enqueues e, stamping it with the next insertion sequence number for
// the stable tie-break.
func (q *eventQueue) PushEvent(e Event) {
	heap.Push(q, queuedEvent{event: e, order: q.seq})
	q.seq++
}

// PopEvent removes and returns the earliest-time (ties: earliest-inserted)
// event. ok is false if the queue was empty.
func (q *eventQueue) PopEvent() (e Event, ok bool) {
	if q.Len() == 0 {
		return Event{}, false
	}
	return heap.Pop(q).(queuedEvent).event, true
}

// Len implements heap.Interface.
func (q *eventQueue) Len() int { return len(q.items) }

// Less implements heap.Interface: earlier time first, ties by insertion
// order.
func (q *eventQueue) Less(i, j int) bool {
	if q.items[i].event.Time != q.items[j].event.Time {
		return q.items[i].event.Time < q.items[j].event.Time
	}
	return q.items[i].order < q.items[j].order
}

// Swap implements heap.Interface.
func (q *eventQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

// Push implements heap.Interface; called by heap.Push, x is a queuedEvent.
func (q *eventQueue) Push(x interface{}) {
	q.items = append(q.items, x.(queuedEvent))
}

// Pop implements heap.Interface; called by heap.Pop.
func (q *eventQueue) Pop() interface{} {
	old := q.items
	n := len(old)
	item := old[n-1]
	q.items = old[:n-1]
	return item
}
