package lcm

// AlgorithmKind selects which convergence algorithm a Robot runs.
type AlgorithmKind uint8

// AlgorithmKind values.
const (
	Gathering AlgorithmKind = iota + 1
	SEC
)

func (a AlgorithmKind) String() string {
	switch a {
	case Gathering:
		return "Gathering"
	case SEC:
		return "SEC"
	default:
		panic("lcm: unknown algorithm")
	}
}

// algorithmImpl is the (compute, terminal) strategy looked up once at Robot
// construction rather than switched on per call.
type algorithmImpl interface {
	// compute returns the COMPUTE target for r given its latest visible
	// snapshot, and whether the terminal predicate holds for that target.
	// rng is the simulation's single shared Stream, needed by SEC's Welzl
	// construction.
	compute(r *Robot, visible map[int]SnapshotDetails, rng *Stream) (target Coordinates, terminal bool)
}

// newAlgorithmImpl looks up the strategy for kind.
func newAlgorithmImpl(kind AlgorithmKind) algorithmImpl {
	switch kind {
	case Gathering:
		return gatheringAlgorithm{}
	case SEC:
		return secAlgorithm{}
	default:
		panic("lcm: unknown algorithm")
	}
}

// gatheringAlgorithm targets the centroid of visible peers, including self.
type gatheringAlgorithm struct{}

func (gatheringAlgorithm) compute(r *Robot, visible map[int]SnapshotDetails, _ *Stream) (Coordinates, bool) {
	ids := sortedSnapshotIDs(visible)
	points := make([]Coordinates, 0, len(ids))
	for _, id := range ids {
		points = append(points, visible[id].Pos)
	}
	target := centroid(points)
	eps := r.epsilon()
	terminal := true
	for _, p := range points {
		if distance(p, target) >= eps {
			terminal = false
			break
		}
	}
	return target, terminal
}

// secAlgorithm targets the closest point, on the smallest enclosing circle
// of visible peers, to the robot's current position.
type secAlgorithm struct{}

func (secAlgorithm) compute(r *Robot, visible map[int]SnapshotDetails, rng *Stream) (Coordinates, bool) {
	ids := sortedSnapshotIDs(visible)
	points := make([]Coordinates, 0, len(ids))
	for _, id := range ids {
		points = append(points, visible[id].Pos)
	}
	c := smallestEnclosingCircle(points, rng)
	abs := Circle{Center: r.Frame.ToAbsolute(c.Center), Radius: c.Radius}
	r.LastSEC = &abs
	target := closestPointOnCircle(c, r.Frame.ToLocal(r.Coordinates))

	terminal := true
	for _, p := range points {
		if !isPointOnCircle(p, c, r.thresholdPrecision) {
			terminal = false
			break
		}
	}
	return target, terminal
}
