package lcm

import (
	"math"

	kitlog "github.com/go-kit/kit/log"
)

// SnapshotDetails is the immutable record of one robot as observed in a
// Snapshot.
type SnapshotDetails struct {
	Pos          Coordinates
	State        RobotState
	Frozen       bool
	Terminated   bool
	Multiplicity int
}

// RobotConfig are the construction-time parameters of a Robot.
type RobotConfig struct {
	ID                    int
	Start                 Coordinates
	Speed                 float64
	VisibilityRadius      *float64 // nil == unlimited
	RigidMovement         bool
	ObstructedVisibility  bool
	MultiplicityDetection bool
	Algorithm             AlgorithmKind
	Frame                 Frame
	Fault                 FaultConfig
	ThresholdPrecision    int
}

// Robot is one simulated agent cycling through the LOOK/COMPUTE/MOVE/WAIT
// phases. It holds no reference back to the Scheduler or to peer Robots;
// peers are received as a value snapshot at LOOK time.
type Robot struct {
	ID int

	// geometric pose
	Coordinates        Coordinates
	StartPosition      Coordinates
	CalculatedPosition Coordinates

	// kinematics
	Speed         float64
	RigidMovement bool
	StartTime     float64
	EndTime       float64
	HasTimes      bool // false until the first MOVE is scheduled

	NumberOfActivations int
	TravelledDistance   float64

	// perception
	VisibilityRadius      *float64
	ObstructedVisibility  bool
	MultiplicityDetection bool
	Frame                 Frame

	// algorithmic identity
	Algorithm AlgorithmKind
	algo      algorithmImpl

	// convergence
	Frozen     bool
	Terminated bool

	// fault block
	Fault       FaultConfig
	FaultStatus FaultStatus

	// last observation
	Snapshot map[int]SnapshotDetails

	// LastSEC is the most recently computed smallest enclosing circle, set
	// only when Algorithm == SEC.
	LastSEC *Circle

	State RobotState

	thresholdPrecision int
	logger             kitlog.Logger
}

// epsilon returns the position-equality tolerance, 10^(-thresholdPrecision).
func (r *Robot) epsilon() float64 {
	return math.Pow(10, -float64(r.thresholdPrecision))
}

// NewRobot constructs a Robot from cfg, starting in WAIT (about to receive
// its first LOOK), with logger as its dedicated logging collaborator.
func NewRobot(cfg RobotConfig, logger kitlog.Logger) *Robot {
	frame := cfg.Frame
	if frame == nil {
		frame = IdentityFrame{}
	}
	r := &Robot{
		ID:                    cfg.ID,
		Coordinates:           cfg.Start,
		StartPosition:         cfg.Start,
		Speed:                 cfg.Speed,
		RigidMovement:         cfg.RigidMovement,
		VisibilityRadius:      cfg.VisibilityRadius,
		ObstructedVisibility:  cfg.ObstructedVisibility,
		MultiplicityDetection: cfg.MultiplicityDetection,
		Frame:                 frame,
		Algorithm:             cfg.Algorithm,
		Fault:                 cfg.Fault,
		State:                 Wait,
		thresholdPrecision:    cfg.ThresholdPrecision,
		logger:                kitlog.With(logger, "robot", cfg.ID),
	}
	r.algo = newAlgorithmImpl(cfg.Algorithm)
	return r
}

// visiblePeer reports whether a peer at position p is visible to r.
// occluders is every other robot's current position, used for the
// obstructed-visibility line-of-sight check.
func (r *Robot) visiblePeer(p Coordinates, occluders []Coordinates) bool {
	if r.VisibilityRadius != nil && distance(r.Coordinates, p) > *r.VisibilityRadius {
		return false
	}
	if !r.ObstructedVisibility {
		return true
	}
	for _, c := range occluders {
		if c == r.Coordinates || c == p {
			continue
		}
		if math.Abs(distance(r.Coordinates, c)+distance(c, p)-distance(r.Coordinates, p)) < 0.1 {
			return false
		}
	}
	return true
}

// look runs one LOOK phase: rolls the fault trigger check, filters global by
// visibility, converts the result into the robot's own frame, runs COMPUTE,
// and collapses directly into WAIT when the computed target already lies
// within epsilon of the current position.
func (r *Robot) look(global map[int]SnapshotDetails, time float64, rng *Stream) {
	r.State = Look
	r.NumberOfActivations++

	if r.Fault.Kind != FaultNone && r.FaultStatus == FaultInactive {
		r.FaultStatus = FaultActive
	}
	preTrigger := r.FaultStatus
	maybeTriggerFault(r, rng)
	if r.FaultStatus == FaultTriggered && preTrigger != FaultTriggered {
		r.logger.Log("event", "fault_triggered", "kind", r.Fault.Kind, "time", time)
	}
	if r.Fault.Kind == FaultCrash && r.FaultStatus == FaultTriggered {
		return // CRASH is absorbing: no COMPUTE, and Frozen stays set.
	}

	visible := r.filterVisible(global, rng)
	r.Snapshot = visible

	target := r.compute(r.toLocalFrame(visible), rng)
	target = r.Frame.ToAbsolute(target)
	target = applyComputeFault(r, target, rng)
	r.CalculatedPosition = target

	if distance(target, r.Coordinates) < r.epsilon() {
		r.Frozen = true
		r.wait(time)
	} else {
		r.Frozen = false
	}
}

// filterVisible applies the visibility rules and, while a VISIBILITY fault
// is TRIGGERED, additionally drops a random half of the otherwise-visible
// peers. The trigger roll happens before this call so a fault that triggers
// on this very LOOK still affects it.
func (r *Robot) filterVisible(global map[int]SnapshotDetails, rng *Stream) map[int]SnapshotDetails {
	globalIDs := sortedSnapshotIDs(global)
	positions := make([]Coordinates, 0, len(globalIDs))
	for _, id := range globalIDs {
		positions = append(positions, global[id].Pos)
	}

	visible := make(map[int]SnapshotDetails)
	for _, id := range globalIDs {
		d := global[id]
		if id == r.ID || r.visiblePeer(d.Pos, positions) {
			visible[id] = d
		}
	}

	if r.Fault.Kind == FaultVisibility && r.FaultStatus == FaultTriggered {
		ids := make([]int, 0, len(visible))
		for _, id := range sortedSnapshotIDs(visible) {
			if id != r.ID {
				ids = append(ids, id)
			}
		}
		rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		for _, id := range ids[:len(ids)/2] {
			delete(visible, id)
		}
	}
	return visible
}

// toLocalFrame converts every position in visible from the absolute frame
// into r's own frame (identity for an absolute-frame robot).
func (r *Robot) toLocalFrame(visible map[int]SnapshotDetails) map[int]SnapshotDetails {
	if _, identity := r.Frame.(IdentityFrame); identity {
		return visible
	}
	local := make(map[int]SnapshotDetails, len(visible))
	for id, d := range visible {
		d.Pos = r.Frame.ToLocal(d.Pos)
		local[id] = d
	}
	return local
}

// compute runs the robot's algorithm on its last LOOK snapshot and returns
// the target position, setting Terminated if the terminal predicate holds.
func (r *Robot) compute(visible map[int]SnapshotDetails, rng *Stream) Coordinates {
	target, terminal := r.algo.compute(r, visible, rng)
	if terminal {
		r.Terminated = true
		r.State = Terminated
	}
	return target
}

// move starts the MOVE phase: anchors StartPosition and StartTime.
// Completion timing is computed by the Scheduler, not here.
func (r *Robot) move(startTime float64) {
	r.State = Move
	r.StartTime = startTime
	r.StartPosition = r.Coordinates
	r.HasTimes = true
}

// wait settles the WAIT phase: updates Coordinates to time's position,
// accumulates TravelledDistance, rebases StartPosition, clears the MOVE
// timing, and resolves a transient fault if one was triggered.
func (r *Robot) wait(time float64) {
	prev := r.Coordinates
	r.Coordinates = r.GetPosition(time)
	r.TravelledDistance += distance(prev, r.Coordinates)
	r.StartPosition = r.Coordinates
	r.HasTimes = false
	r.State = Wait

	preResolve := r.FaultStatus
	resolveTransientFault(r)
	if r.FaultStatus == FaultResolved && preResolve != FaultResolved {
		r.logger.Log("event", "fault_resolved", "kind", r.Fault.Kind, "time", time)
	}
}

// GetPosition returns the robot's interpolated position at time, a pure
// function of (state, startTime, startPosition, calculatedPosition, speed,
// time).
func (r *Robot) GetPosition(time float64) Coordinates {
	if r.State == Look || r.State == Wait || !r.HasTimes {
		return r.Coordinates
	}
	d := distance(r.StartPosition, r.CalculatedPosition)
	if d == 0 {
		return r.CalculatedPosition
	}
	covered := r.Speed * (time - r.StartTime)
	if covered >= d-r.epsilon() {
		return r.CalculatedPosition
	}
	return interpolate(r.StartPosition, r.CalculatedPosition, covered/d)
}
