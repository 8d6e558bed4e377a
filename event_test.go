package lcm

import "testing"

func TestEventQueueOrdersByTime(t *testing.T) {
	q := newEventQueue()
	q.PushEvent(Event{Time: 3, ID: 1, State: Look})
	q.PushEvent(Event{Time: 1, ID: 2, State: Look})
	q.PushEvent(Event{Time: 2, ID: 3, State: Look})

	var got []float64
	for {
		e, ok := q.PopEvent()
		if !ok {
			break
		}
		got = append(got, e.Time)
	}
	want := []float64{1, 2, 3}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("order[%d] = %f, want %f", i, got[i], w)
		}
	}
}

func TestEventQueueStableTieBreak(t *testing.T) {
	q := newEventQueue()
	q.PushEvent(Event{Time: 5, ID: 10, State: Look})
	q.PushEvent(Event{Time: 5, ID: 20, State: Look})
	q.PushEvent(Event{Time: 5, ID: 30, State: Look})

	first, _ := q.PopEvent()
	second, _ := q.PopEvent()
	third, _ := q.PopEvent()
	if first.ID != 10 || second.ID != 20 || third.ID != 30 {
		t.Fatalf("tie-break not insertion order: %d, %d, %d", first.ID, second.ID, third.ID)
	}
}

func TestEventQueueEmpty(t *testing.T) {
	q := newEventQueue()
	if _, ok := q.PopEvent(); ok {
		t.Fatal("expected empty queue to report ok=false")
	}
}

func TestVisualizationEvent(t *testing.T) {
	e := visualizationEvent(1.5)
	if !e.IsVisualization() {
		t.Fatal("visualizationEvent should report IsVisualization")
	}
	if e.Time != 1.5 {
		t.Fatalf("time = %f, want 1.5", e.Time)
	}
	other := Event{Time: 1, ID: 0, State: Look}
	if other.IsVisualization() {
		t.Fatal("robot event misreported as visualization")
	}
}
