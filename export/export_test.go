package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/lcmsim/lcmsim"
)

func sampleEvents() chan lcm.StreamEvent {
	ch := make(chan lcm.StreamEvent, 4)
	ch <- lcm.StreamEvent{Kind: lcm.SimulationStart}
	ch <- lcm.StreamEvent{
		Kind: lcm.SimulationData,
		Time: 0.2,
		Snapshot: lcm.Snapshot{
			Time: 0.2,
			Robots: map[int]lcm.SnapshotDetails{
				0: {Pos: lcm.Coordinates{X: 1, Y: 2}, State: lcm.Wait, Frozen: true, Terminated: false, Multiplicity: 1},
				1: {Pos: lcm.Coordinates{X: 3, Y: 4}, State: lcm.Move, Frozen: false, Terminated: false, Multiplicity: 1},
			},
		},
	}
	ch <- lcm.StreamEvent{Kind: lcm.SimulationEnd}
	close(ch)
	return ch
}

func TestStreamCSVWritesOneRowPerRobot(t *testing.T) {
	var buf bytes.Buffer
	if err := StreamCSV(&buf, sampleEvents()); err != nil {
		t.Fatalf("StreamCSV: %s", err)
	}
	r := csv.NewReader(strings.NewReader(buf.String()))
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("reading back CSV: %s", err)
	}
	// header + 2 robot rows from the single simulation_data event.
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if rows[0][0] != "time" {
		t.Fatalf("missing header row: %v", rows[0])
	}
	if rows[1][1] != "0" || rows[2][1] != "1" {
		t.Fatalf("rows not sorted by robot id: %v, %v", rows[1], rows[2])
	}
}

func TestStreamJSONEncodesEveryEventKind(t *testing.T) {
	var buf bytes.Buffer
	if err := StreamJSON(&buf, sampleEvents()); err != nil {
		t.Fatalf("StreamJSON: %s", err)
	}
	out := buf.String()
	for _, want := range []string{`"kind":"simulation_start"`, `"kind":"simulation_data"`, `"kind":"simulation_end"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
