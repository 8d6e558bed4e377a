package lcm

import (
	"context"
	"math"
	"sort"

	kitlog "github.com/go-kit/kit/log"
)

// Scheduler owns every Robot and the event queue; it is the sole driver of
// simulation time. Robots never reference the Scheduler or each other. One
// struct holds the full run's state, advanced one event at a time by a
// single exported driver method.
type Scheduler struct {
	robots map[int]*Robot
	order  []int // input order, used only to make the initial RNG draws reproducible
	queue  *eventQueue
	rng    *Stream

	timePrecision         int
	thresholdPrecision    int
	samplingRate          float64
	lambdaRate            float64
	multiplicityDetection bool
	algorithm             AlgorithmKind

	history    History
	vizHistory History
	terminated bool

	logger kitlog.Logger
}

// SchedulerConfig collects the non-per-robot parameters of a simulation run.
type SchedulerConfig struct {
	Seed                  uint64
	LambdaRate            float64
	SamplingRate          float64
	TimePrecision         int
	ThresholdPrecision    int
	MultiplicityDetection bool
	Algorithm             AlgorithmKind
}

// NewScheduler constructs a Scheduler: seeds the RNG, creates the robots,
// draws each one's initial inter-arrival time, and enqueues the t=0
// visualization tick.
func NewScheduler(cfgs []RobotConfig, sc SchedulerConfig, logger kitlog.Logger) *Scheduler {
	s := &Scheduler{
		robots:                make(map[int]*Robot, len(cfgs)),
		order:                 make([]int, 0, len(cfgs)),
		queue:                 newEventQueue(),
		rng:                   NewStream(sc.Seed),
		timePrecision:         sc.TimePrecision,
		thresholdPrecision:    sc.ThresholdPrecision,
		samplingRate:          sc.SamplingRate,
		lambdaRate:            sc.LambdaRate,
		multiplicityDetection: sc.MultiplicityDetection,
		algorithm:             sc.Algorithm,
		logger:                kitlog.With(logger, "subsys", "scheduler"),
	}
	for _, cfg := range cfgs {
		s.robots[cfg.ID] = NewRobot(cfg, s.logger)
		s.order = append(s.order, cfg.ID)
	}
	for _, id := range s.order {
		t := s.round(s.rng.Exponential(s.lambdaRate))
		s.queue.PushEvent(Event{Time: t, ID: id, State: Look})
	}
	s.queue.PushEvent(visualizationEvent(0))
	s.logger.Log("event", "simulation_start", "robots", len(cfgs), "algorithm", sc.Algorithm)
	return s
}

// round rounds x to the scheduler's configured time precision; every drawn
// or derived event time is rounded before being enqueued.
func (s *Scheduler) round(x float64) float64 {
	scale := math.Pow(10, float64(s.timePrecision))
	return math.Round(x*scale) / scale
}

// handleEvent pops and processes one event, returning a code identifying
// what happened: -1 queue drained or cancelled, 0 visualization tick, 1/2/3
// a robot's LOOK/MOVE/WAIT, 4 a robot terminated. Stale events belonging to
// an already-terminated robot are silently skipped rather than surfaced as
// a distinct code; the queue is never pruned on termination.
func (s *Scheduler) handleEvent() int {
	for {
		if s.terminated {
			return -1
		}
		e, ok := s.queue.PopEvent()
		if !ok {
			s.terminated = true
			s.logger.Log("event", "queue_empty")
			return -1
		}
		if e.IsVisualization() {
			return s.processVisualization(e)
		}
		r, known := s.robots[e.ID]
		if !known || r.Terminated {
			continue
		}
		return s.processRobotEvent(r, e)
	}
}

// processVisualization handles a visualization-sampling tick: record a
// snapshot and enqueue the next tick.
func (s *Scheduler) processVisualization(e Event) int {
	snap := s.snapshot(e.Time)
	s.vizHistory = append(s.vizHistory, snap)
	s.queue.PushEvent(visualizationEvent(s.round(e.Time + s.samplingRate)))
	s.checkTermination()
	return 0
}

// processRobotEvent dispatches e to the matching Robot phase method and
// schedules its successor event.
func (s *Scheduler) processRobotEvent(r *Robot, e Event) int {
	switch e.State {
	case Look:
		wasTerminated := r.Terminated
		r.look(s.globalSnapshot(e.Time), e.Time, s.rng)
		s.history = append(s.history, s.snapshot(e.Time))

		if r.Terminated && !wasTerminated {
			s.checkTermination()
			return 4
		}
		if r.Frozen {
			// look() already invoked wait() directly: MOVE and WAIT collapse,
			// the next event is this robot's next LOOK.
			s.scheduleLook(r, e.Time)
		} else {
			s.scheduleMove(r, e.Time)
		}
		s.checkTermination()
		return 1
	case Move:
		r.move(e.Time)
		s.scheduleWait(r, e.Time)
		return 2
	case Wait:
		r.wait(e.Time)
		s.history = append(s.history, s.snapshot(e.Time))
		s.scheduleLook(r, e.Time)
		s.checkTermination()
		return 3
	default:
		panic("lcm: event with invalid state")
	}
}

// scheduleLook enqueues r's next LOOK at time + Exponential(lambda),
// representing think/reaction delay.
func (s *Scheduler) scheduleLook(r *Robot, at float64) {
	t := s.round(at + s.rng.Exponential(s.lambdaRate))
	s.queue.PushEvent(Event{Time: t, ID: r.ID, State: Look})
}

// scheduleMove enqueues r's MOVE at time + Exponential(lambda).
func (s *Scheduler) scheduleMove(r *Robot, at float64) {
	t := s.round(at + s.rng.Exponential(s.lambdaRate))
	s.queue.PushEvent(Event{Time: t, ID: r.ID, State: Move})
}

// scheduleWait enqueues r's WAIT, timed exactly (rigid_movement) or at a
// random stop-short fraction of the segment (non-rigid). A triggered DELAY
// fault does not stretch the MOVE: it is timed at the undelayed speed, so the
// halved speed covers half the distance by the WAIT.
func (s *Scheduler) scheduleWait(r *Robot, at float64) {
	d := distance(r.StartPosition, r.CalculatedPosition)
	speed := r.Speed
	if r.Fault.Kind == FaultDelay && r.FaultStatus == FaultTriggered {
		speed *= 2
	}
	var elapsed float64
	if r.RigidMovement || d == 0 {
		elapsed = d / speed
	} else {
		u := s.rng.UniformHalfOpen01()
		elapsed = u * d / speed
	}
	end := s.round(at + elapsed)
	r.EndTime = end
	s.queue.PushEvent(Event{Time: end, ID: r.ID, State: Wait})
}

// checkTermination detects the first termination condition: every robot
// frozen and algorithm-terminated. The second condition, an empty queue, is
// detected directly in handleEvent.
func (s *Scheduler) checkTermination() {
	if s.terminated {
		return
	}
	for _, r := range s.robots {
		if !r.Frozen || !r.Terminated {
			return
		}
	}
	s.terminated = true
	s.logger.Log("event", "termination_detected")
}

// globalSnapshot builds the full-population snapshot a Robot's LOOK phase
// filters by visibility: every robot's get_position(time), never a stale
// cached pose.
func (s *Scheduler) globalSnapshot(time float64) map[int]SnapshotDetails {
	return s.snapshot(time).Robots
}

// snapshot builds the per-robot position, state and convergence flags at
// time, with multiplicity detection applied if configured.
func (s *Scheduler) snapshot(time float64) Snapshot {
	robots := make(map[int]SnapshotDetails, len(s.robots))
	for id, r := range s.robots {
		robots[id] = SnapshotDetails{
			Pos:          r.GetPosition(time),
			State:        r.State,
			Frozen:       r.Frozen,
			Terminated:   r.Terminated,
			Multiplicity: 1,
		}
	}
	if s.multiplicityDetection {
		applyMultiplicity(robots, s.thresholdPrecision)
	}
	return Snapshot{Time: time, Robots: robots}
}

// applyMultiplicity groups robots whose coordinates, rounded to
// thresholdPrecision-2 decimals, are pairwise equal along sorted x then y,
// setting each group member's Multiplicity to the group size.
func applyMultiplicity(robots map[int]SnapshotDetails, thresholdPrecision int) {
	precision := thresholdPrecision - 2
	if precision < 0 {
		precision = 0
	}
	scale := math.Pow(10, float64(precision))

	type keyed struct {
		id   int
		x, y float64
	}
	items := make([]keyed, 0, len(robots))
	for id, d := range robots {
		items = append(items, keyed{
			id: id,
			x:  math.Round(d.Pos.X*scale) / scale,
			y:  math.Round(d.Pos.Y*scale) / scale,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].x != items[j].x {
			return items[i].x < items[j].x
		}
		return items[i].y < items[j].y
	})

	for i := 0; i < len(items); {
		j := i + 1
		for j < len(items) && items[j].x == items[i].x && items[j].y == items[i].y {
			j++
		}
		if size := j - i; size > 1 {
			for k := i; k < j; k++ {
				d := robots[items[k].id]
				d.Multiplicity = size
				robots[items[k].id] = d
			}
		}
		i = j
	}
}

// secReport collects the last computed smallest enclosing circle per robot,
// used for the terminal smallest_enclosing_circle output event (SEC
// algorithm runs only).
func (s *Scheduler) secReport() map[int]Circle {
	report := make(map[int]Circle, len(s.robots))
	for id, r := range s.robots {
		if r.LastSEC != nil {
			report[id] = *r.LastSEC
		}
	}
	return report
}

// Run drives handleEvent in a loop until termination or cancellation,
// emitting StreamEvents on out: simulation_start, one simulation_data per
// visualization tick, an optional smallest_enclosing_circle report, and
// simulation_end. Cancellation is polled via ctx.Done() between events
// rather than mid-event.
func (s *Scheduler) Run(ctx context.Context, out chan<- StreamEvent) {
	out <- StreamEvent{Kind: SimulationStart}

loop:
	for {
		select {
		case <-ctx.Done():
			s.logger.Log("event", "cancelled")
			break loop
		default:
		}

		switch code := s.handleEvent(); {
		case code == -1:
			break loop
		case code == 0:
			snap := s.vizHistory[len(s.vizHistory)-1]
			out <- StreamEvent{Kind: SimulationData, Time: snap.Time, Snapshot: snap}
		}
	}

	if s.algorithm == SEC {
		out <- StreamEvent{Kind: SmallestEnclosingCircle, SECReport: s.secReport()}
	}
	s.logger.Log("event", "simulation_end")
	out <- StreamEvent{Kind: SimulationEnd}
}
