package lcm

import "testing"

func TestGetPositionDuringWaitOrLook(t *testing.T) {
	r := newTestRobot(0, Coordinates{1, 1}, Gathering, 5)
	r.State = Wait
	if p := r.GetPosition(100); p != r.Coordinates {
		t.Fatalf("GetPosition in WAIT = %v, want %v", p, r.Coordinates)
	}
	r.State = Look
	if p := r.GetPosition(100); p != r.Coordinates {
		t.Fatalf("GetPosition in LOOK = %v, want %v", p, r.Coordinates)
	}
}

func TestGetPositionInterpolatesDuringMove(t *testing.T) {
	r := newTestRobot(0, Coordinates{0, 0}, Gathering, 5)
	r.Speed = 1
	r.CalculatedPosition = Coordinates{10, 0}
	r.move(0)

	mid := r.GetPosition(5)
	if !mid.Equal(Coordinates{5, 0}, 6) {
		t.Fatalf("midpoint position = %v, want (5,0)", mid)
	}

	arrived := r.GetPosition(10)
	if arrived != r.CalculatedPosition {
		t.Fatalf("position at exact arrival = %v, want %v", arrived, r.CalculatedPosition)
	}

	overshoot := r.GetPosition(20)
	if overshoot != r.CalculatedPosition {
		t.Fatalf("position past arrival = %v, want calculated position (no extrapolation)", overshoot)
	}
}

func TestWaitAccumulatesTravelledDistance(t *testing.T) {
	r := newTestRobot(0, Coordinates{0, 0}, Gathering, 5)
	r.Speed = 1
	r.CalculatedPosition = Coordinates{10, 0}
	r.move(0)
	r.wait(10)

	if r.TravelledDistance != 10 {
		t.Fatalf("travelled distance = %f, want 10", r.TravelledDistance)
	}
	if r.State != Wait {
		t.Fatalf("state after wait = %v, want WAIT", r.State)
	}
	if r.StartPosition != r.Coordinates {
		t.Fatalf("StartPosition not rebased: %v != %v", r.StartPosition, r.Coordinates)
	}
}

func TestVisiblePeerRespectsRadius(t *testing.T) {
	radius := 5.0
	r := newTestRobot(0, Coordinates{0, 0}, Gathering, 5)
	r.VisibilityRadius = &radius

	if !r.visiblePeer(Coordinates{4, 0}, nil) {
		t.Fatal("peer within radius should be visible")
	}
	if r.visiblePeer(Coordinates{6, 0}, nil) {
		t.Fatal("peer outside radius should not be visible")
	}
}

func TestVisiblePeerObstruction(t *testing.T) {
	r := newTestRobot(0, Coordinates{0, 0}, Gathering, 5)
	r.ObstructedVisibility = true

	occluders := []Coordinates{{0, 0}, {5, 0}, {10, 0}}
	if r.visiblePeer(Coordinates{10, 0}, occluders) {
		t.Fatal("peer occluded by an intermediate robot should not be visible")
	}
	if !r.visiblePeer(Coordinates{0, 10}, occluders) {
		t.Fatal("peer off the occluded line should remain visible")
	}
}

func TestLookFreezesWhenWithinEpsilon(t *testing.T) {
	r := newTestRobot(0, Coordinates{3, 2}, Gathering, 5)
	global := map[int]SnapshotDetails{
		0: {Pos: Coordinates{3, 2}},
		1: {Pos: Coordinates{3, 2}},
	}
	r.look(global, 0, NewStream(1))
	if !r.Frozen {
		t.Fatal("expected Frozen when COMPUTE target matches current position")
	}
	if r.State != Wait {
		t.Fatalf("frozen LOOK should collapse into WAIT, state = %v", r.State)
	}
}
