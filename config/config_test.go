package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing scenario: %s", err)
	}
	return path
}

func TestLoadBroadcastsScalarSpeed(t *testing.T) {
	path := writeScenario(t, `
seed = 1
num_of_robots = 3
robot_speeds = 2.5
sampling_rate = 0.2
lambda_rate = 5.0
algorithm = "SEC"
`)
	sc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %s", err)
	}
	if len(sc.RobotSpeeds) != 3 {
		t.Fatalf("RobotSpeeds not broadcast: len = %d", len(sc.RobotSpeeds))
	}
	for i, v := range sc.RobotSpeeds {
		if v != 2.5 {
			t.Fatalf("RobotSpeeds[%d] = %f, want 2.5", i, v)
		}
	}
}

func TestLoadRejectsInvalidAlgorithm(t *testing.T) {
	path := writeScenario(t, `
seed = 1
num_of_robots = 1
robot_speeds = 1.0
sampling_rate = 0.2
lambda_rate = 5.0
algorithm = "Flocking"
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected ConfigError for unrecognized algorithm")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Fatalf("expected *ConfigError, got %T: %s", err, err)
	}
}

func TestLoadRejectsSpeedLengthMismatch(t *testing.T) {
	path := writeScenario(t, `
seed = 1
num_of_robots = 3
robot_speeds = [1.0, 2.0]
sampling_rate = 0.2
lambda_rate = 5.0
algorithm = "Gathering"
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected ConfigError for robot_speeds length mismatch")
	}
}

func TestLoadRejectsNonPositiveSpeed(t *testing.T) {
	path := writeScenario(t, `
seed = 1
num_of_robots = 2
robot_speeds = [1.0, -1.0]
sampling_rate = 0.2
lambda_rate = 5.0
algorithm = "Gathering"
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected ConfigError for negative speed")
	}
}

func TestToRobotConfigsUsesExplicitPositions(t *testing.T) {
	path := writeScenario(t, `
seed = 1
num_of_robots = 2
robot_speeds = 1.0
sampling_rate = 0.2
lambda_rate = 5.0
algorithm = "Gathering"
initial_positions = [[0.0, 0.0], [6.0, 0.0]]
`)
	sc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %s", err)
	}
	cfgs := sc.ToRobotConfigs()
	if len(cfgs) != 2 {
		t.Fatalf("len(cfgs) = %d, want 2", len(cfgs))
	}
	if cfgs[0].Start.X != 0 || cfgs[1].Start.X != 6 {
		t.Fatalf("initial positions not threaded through: %v, %v", cfgs[0].Start, cfgs[1].Start)
	}
}
