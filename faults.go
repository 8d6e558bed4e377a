package lcm

// FaultKind enumerates the fault types a Robot may be configured with.
type FaultKind uint8

// FaultKind values.
const (
	FaultNone FaultKind = iota
	FaultCrash
	FaultDelay
	FaultByzantine
	FaultVisibility
	FaultMovement
)

func (k FaultKind) String() string {
	switch k {
	case FaultNone:
		return "none"
	case FaultCrash:
		return "crash"
	case FaultDelay:
		return "delay"
	case FaultByzantine:
		return "byzantine"
	case FaultVisibility:
		return "visibility"
	case FaultMovement:
		return "movement"
	default:
		return "unknown"
	}
}

// FaultStatus is the current lifecycle stage of a Robot's fault:
// INACTIVE -> ACTIVE -> TRIGGERED -> RESOLVED, with CRASH's TRIGGERED
// absorbing.
type FaultStatus uint8

// FaultStatus values.
const (
	FaultInactive FaultStatus = iota
	FaultActive
	FaultTriggered
	FaultResolved
)

// FaultConfig configures a Robot's fault injection.
type FaultConfig struct {
	Kind        FaultKind
	Probability float64 // Bernoulli(p) trigger probability at each action point
}

// isEmpty reports whether cfg has no effect.
func (cfg FaultConfig) isEmpty() bool {
	return cfg.Kind == FaultNone
}

// maybeTriggerFault rolls the independent Bernoulli(p) trigger check and
// applies the fault's "on trigger" effect. A single bus function switching
// on the active kind, called once per action point rather than scattered
// through the state machine.
func maybeTriggerFault(r *Robot, rng *Stream) {
	if r.Fault.isEmpty() {
		return
	}
	if r.FaultStatus == FaultTriggered && r.Fault.Kind == FaultCrash {
		return // CRASH is absorbing; no further rolls.
	}
	if r.FaultStatus == FaultResolved {
		// A transient fault (DELAY, VISIBILITY) may re-trigger on a later cycle.
		r.FaultStatus = FaultActive
	}
	if !rng.Bernoulli(r.Fault.Probability) {
		return
	}
	r.FaultStatus = FaultTriggered
	switch r.Fault.Kind {
	case FaultCrash:
		r.Frozen = true
		r.Terminated = true
		r.State = Terminated
	case FaultDelay:
		r.Speed /= 2
	case FaultVisibility:
		if r.VisibilityRadius != nil {
			half := *r.VisibilityRadius / 2
			r.VisibilityRadius = &half
		}
	}
}

// applyComputeFault applies the faults whose effect is a post-COMPUTE
// perturbation of the target (BYZANTINE, MOVEMENT); other fault kinds act
// elsewhere in the LCM cycle and leave target untouched here.
func applyComputeFault(r *Robot, target Coordinates, rng *Stream) Coordinates {
	if r.FaultStatus != FaultTriggered {
		return target
	}
	switch r.Fault.Kind {
	case FaultByzantine:
		return Coordinates{
			X: target.X * rng.Uniform(0.8, 1.2),
			Y: target.Y * rng.Uniform(0.8, 1.2),
		}
	case FaultMovement:
		return Coordinates{X: -target.X, Y: -target.Y}
	default:
		return target
	}
}

// resolveTransientFault restores defaults and marks RESOLVED for a
// transient fault (DELAY or VISIBILITY) that was TRIGGERED this cycle, called
// from the WAIT phase. BYZANTINE and MOVEMENT stay TRIGGERED.
func resolveTransientFault(r *Robot) {
	if r.FaultStatus != FaultTriggered {
		return
	}
	switch r.Fault.Kind {
	case FaultDelay:
		r.Speed *= 2
		r.FaultStatus = FaultResolved
	case FaultVisibility:
		if r.VisibilityRadius != nil {
			full := *r.VisibilityRadius * 2
			r.VisibilityRadius = &full
		}
		r.FaultStatus = FaultResolved
	}
}
