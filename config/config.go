// Package config ingests a TOML scenario file into the construction-time
// parameters the simulation core consumes. It is the only package in this
// module allowed to import viper or touch the filesystem; the lcm package
// never imports config, keeping the simulation core free of any file-IO
// dependency.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/lcmsim/lcmsim"
)

// ConfigError reports a malformed scenario field: a list-length mismatch, an
// invalid enum value, or a non-positive speed, wrapping the offending field
// name into the message.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: field %q: %s", e.Field, e.Message)
}

// FaultSpec is one entry of the optional robot_faults list.
type FaultSpec struct {
	Type        string  `mapstructure:"type"`
	Probability float64 `mapstructure:"probability"`
}

// Scenario is the raw, ingested form of a scenario file, before broadcast
// and validation.
type Scenario struct {
	Seed      uint64 `mapstructure:"seed"`
	NumRobots int    `mapstructure:"num_of_robots"`

	InitialPositions [][2]float64 `mapstructure:"initial_positions"`
	WidthBound       float64      `mapstructure:"width_bound"`
	HeightBound      float64      `mapstructure:"height_bound"`

	RobotSpeeds []float64 `mapstructure:"robot_speeds"`

	VisibilityRadius    *float64 `mapstructure:"visibility_radius"`
	RigidMovement       bool     `mapstructure:"rigid_movement"`
	MultiplicityDetect  bool     `mapstructure:"multiplicity_detection"`
	ObstructedVisibility bool    `mapstructure:"obstructed_visibility"`

	SchedulerType           string `mapstructure:"scheduler_type"`
	ProbabilityDistribution string `mapstructure:"probability_distribution"`

	TimePrecision      int `mapstructure:"time_precision"`
	ThresholdPrecision int `mapstructure:"threshold_precision"`

	SamplingRate float64 `mapstructure:"sampling_rate"`
	LambdaRate   float64 `mapstructure:"lambda_rate"`

	Algorithm string `mapstructure:"algorithm"`

	RobotFaults []FaultSpec `mapstructure:"robot_faults"`
}

// Load reads the TOML scenario file at path via viper, broadcasts scalar
// fields to per-robot slices, and validates the result.
func Load(path string) (Scenario, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("scheduler_type", "ASYNC")
	v.SetDefault("probability_distribution", "EXPONENTIAL")
	v.SetDefault("rigid_movement", true)
	v.SetDefault("time_precision", 5)
	v.SetDefault("threshold_precision", 5)
	v.SetDefault("width_bound", 50.0)
	v.SetDefault("height_bound", 50.0)

	if err := v.ReadInConfig(); err != nil {
		return Scenario{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var sc Scenario
	if err := v.Unmarshal(&sc); err != nil {
		return Scenario{}, fmt.Errorf("config: unmarshalling %s: %w", path, err)
	}

	if err := sc.broadcast(); err != nil {
		return Scenario{}, err
	}
	if err := sc.validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// broadcast expands scalar robot_speeds (a one-element slice from a scalar
// TOML value) to num_of_robots entries.
func (sc *Scenario) broadcast() error {
	if sc.NumRobots <= 0 {
		return &ConfigError{Field: "num_of_robots", Message: "must be positive"}
	}
	if len(sc.RobotSpeeds) == 1 && sc.NumRobots > 1 {
		speed := sc.RobotSpeeds[0]
		sc.RobotSpeeds = make([]float64, sc.NumRobots)
		for i := range sc.RobotSpeeds {
			sc.RobotSpeeds[i] = speed
		}
	}
	return nil
}

// validate checks list lengths against num_of_robots, enum values, and
// speeds.
func (sc *Scenario) validate() error {
	if len(sc.RobotSpeeds) != sc.NumRobots {
		return &ConfigError{Field: "robot_speeds", Message: "length must equal num_of_robots"}
	}
	for i, speed := range sc.RobotSpeeds {
		if speed <= 0 {
			return &ConfigError{Field: fmt.Sprintf("robot_speeds[%d]", i), Message: "must be positive"}
		}
	}
	if len(sc.InitialPositions) != 0 && len(sc.InitialPositions) != sc.NumRobots {
		return &ConfigError{Field: "initial_positions", Message: "length must be 0 or num_of_robots"}
	}
	if sc.SchedulerType != "ASYNC" {
		return &ConfigError{Field: "scheduler_type", Message: "only ASYNC is supported"}
	}
	if sc.ProbabilityDistribution != "EXPONENTIAL" {
		return &ConfigError{Field: "probability_distribution", Message: "only EXPONENTIAL is supported"}
	}
	switch sc.Algorithm {
	case "Gathering", "SEC":
	default:
		return &ConfigError{Field: "algorithm", Message: `must be "Gathering" or "SEC"`}
	}
	if sc.VisibilityRadius != nil && *sc.VisibilityRadius <= 0 {
		return &ConfigError{Field: "visibility_radius", Message: "must be positive or absent"}
	}
	if sc.SamplingRate <= 0 {
		return &ConfigError{Field: "sampling_rate", Message: "must be positive"}
	}
	if sc.LambdaRate <= 0 {
		return &ConfigError{Field: "lambda_rate", Message: "must be positive"}
	}
	if sc.TimePrecision < 0 || sc.ThresholdPrecision < 0 {
		return &ConfigError{Field: "time_precision/threshold_precision", Message: "must be non-negative"}
	}
	if len(sc.RobotFaults) != 0 && len(sc.RobotFaults) != sc.NumRobots {
		return &ConfigError{Field: "robot_faults", Message: "length must be 0 or num_of_robots"}
	}
	for i, f := range sc.RobotFaults {
		if _, ok := faultKinds[f.Type]; f.Type != "" && !ok {
			return &ConfigError{Field: fmt.Sprintf("robot_faults[%d].type", i), Message: "unrecognized fault type"}
		}
	}
	return nil
}

var faultKinds = map[string]lcm.FaultKind{
	"NONE":       lcm.FaultNone,
	"CRASH":      lcm.FaultCrash,
	"DELAY":      lcm.FaultDelay,
	"BYZANTINE":  lcm.FaultByzantine,
	"VISIBILITY": lcm.FaultVisibility,
	"MOVEMENT":   lcm.FaultMovement,
}

// ToRobotConfigs converts the ingested Scenario into the per-robot
// construction parameters the Scheduler consumes. When initial_positions is
// empty, positions are drawn uniformly from [-width_bound, width_bound] x
// [-height_bound, height_bound] using the scenario's own seed, via a
// throwaway Stream local to config so the simulation core's RNG remains the
// single source of randomness for everything after startup.
func (sc Scenario) ToRobotConfigs() []lcm.RobotConfig {
	algo := lcm.Gathering
	if sc.Algorithm == "SEC" {
		algo = lcm.SEC
	}

	positions := sc.InitialPositions
	if len(positions) == 0 {
		seed := lcm.NewStream(sc.Seed)
		positions = make([][2]float64, sc.NumRobots)
		for i := range positions {
			positions[i] = [2]float64{
				seed.Uniform(-sc.WidthBound, sc.WidthBound),
				seed.Uniform(-sc.HeightBound, sc.HeightBound),
			}
		}
	}

	cfgs := make([]lcm.RobotConfig, sc.NumRobots)
	for i := 0; i < sc.NumRobots; i++ {
		cfg := lcm.RobotConfig{
			ID:                    i,
			Start:                 lcm.Coordinates{X: positions[i][0], Y: positions[i][1]},
			Speed:                 sc.RobotSpeeds[i],
			VisibilityRadius:      sc.VisibilityRadius,
			RigidMovement:         sc.RigidMovement,
			ObstructedVisibility:  sc.ObstructedVisibility,
			MultiplicityDetection: sc.MultiplicityDetect,
			Algorithm:             algo,
			ThresholdPrecision:    sc.ThresholdPrecision,
		}
		if i < len(sc.RobotFaults) {
			fs := sc.RobotFaults[i]
			cfg.Fault = lcm.FaultConfig{Kind: faultKinds[fs.Type], Probability: fs.Probability}
		}
		cfgs[i] = cfg
	}
	return cfgs
}

// SchedulerConfig projects the scalar, non-per-robot fields of sc into a
// lcm.SchedulerConfig.
func (sc Scenario) SchedulerConfig() lcm.SchedulerConfig {
	algo := lcm.Gathering
	if sc.Algorithm == "SEC" {
		algo = lcm.SEC
	}
	return lcm.SchedulerConfig{
		Seed:                  sc.Seed,
		LambdaRate:            sc.LambdaRate,
		SamplingRate:          sc.SamplingRate,
		TimePrecision:         sc.TimePrecision,
		ThresholdPrecision:    sc.ThresholdPrecision,
		MultiplicityDetection: sc.MultiplicityDetect,
		Algorithm:             algo,
	}
}
