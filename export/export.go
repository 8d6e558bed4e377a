// Package export consumes a Scheduler's StreamEvent channel and renders it
// to CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/lcmsim/lcmsim"
)

// StreamCSV drains events, writing one row per robot per simulation_data
// event: time, robot id, x, y, state, frozen, terminated, multiplicity.
func StreamCSV(w io.Writer, events <-chan lcm.StreamEvent) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"time", "robot_id", "x", "y", "state", "frozen", "terminated", "multiplicity"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for ev := range events {
		if ev.Kind != lcm.SimulationData {
			continue
		}
		for _, id := range sortedIDs(ev.Snapshot.Robots) {
			d := ev.Snapshot.Robots[id]
			row := []string{
				strconv.FormatFloat(ev.Time, 'f', -1, 64),
				strconv.Itoa(id),
				strconv.FormatFloat(d.Pos.X, 'f', -1, 64),
				strconv.FormatFloat(d.Pos.Y, 'f', -1, 64),
				d.State.String(),
				strconv.FormatBool(d.Frozen),
				strconv.FormatBool(d.Terminated),
				strconv.Itoa(d.Multiplicity),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// jsonRobot is the per-robot JSON shape of a simulation_data event.
type jsonRobot struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	State        string  `json:"state"`
	Frozen       bool    `json:"frozen"`
	Terminated   bool    `json:"terminated"`
	Multiplicity int     `json:"multiplicity"`
}

// jsonEvent is the JSON wire shape of one StreamEvent.
type jsonEvent struct {
	Kind   string               `json:"kind"`
	Time   float64              `json:"time,omitempty"`
	Robots map[int]jsonRobot    `json:"robots,omitempty"`
	SEC    map[int]jsonCircle   `json:"smallest_enclosing_circle,omitempty"`
}

type jsonCircle struct {
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Radius  float64 `json:"radius"`
}

// StreamJSON drains events, writing one JSON object per line (newline-
// delimited JSON): each event is encoded and written as it arrives rather
// than buffered into one array.
func StreamJSON(w io.Writer, events <-chan lcm.StreamEvent) error {
	enc := json.NewEncoder(w)
	for ev := range events {
		je := jsonEvent{Kind: ev.Kind.String()}
		switch ev.Kind {
		case lcm.SimulationData:
			je.Time = ev.Time
			je.Robots = make(map[int]jsonRobot, len(ev.Snapshot.Robots))
			for id, d := range ev.Snapshot.Robots {
				je.Robots[id] = jsonRobot{
					X:            d.Pos.X,
					Y:            d.Pos.Y,
					State:        d.State.String(),
					Frozen:       d.Frozen,
					Terminated:   d.Terminated,
					Multiplicity: d.Multiplicity,
				}
			}
		case lcm.SmallestEnclosingCircle:
			je.SEC = make(map[int]jsonCircle, len(ev.SECReport))
			for id, c := range ev.SECReport {
				je.SEC[id] = jsonCircle{CenterX: c.Center.X, CenterY: c.Center.Y, Radius: c.Radius}
			}
		}
		if err := enc.Encode(je); err != nil {
			return fmt.Errorf("export: encoding %s event: %w", je.Kind, err)
		}
	}
	return nil
}

func sortedIDs(robots map[int]lcm.SnapshotDetails) []int {
	ids := make([]int, 0, len(robots))
	for id := range robots {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
