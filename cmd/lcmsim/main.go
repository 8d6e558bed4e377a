package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/lcmsim/lcmsim"
	"github.com/lcmsim/lcmsim/config"
	"github.com/lcmsim/lcmsim/export"
)

const defaultScenario = "~~unset~~"

var (
	scenario string
	format   string
	verbose  bool
)

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "scenario TOML file")
	flag.StringVar(&format, "format", "csv", "output format: csv or json")
	flag.BoolVar(&verbose, "verbose", false, "log every fault trigger/resolve and termination event")
}

func main() {
	flag.Parse()
	if scenario == defaultScenario {
		log.Fatal("no scenario provided: pass -scenario path/to/scenario.toml")
	}

	sc, err := config.Load(scenario)
	if err != nil {
		log.Fatalf("%s: %s", scenario, err)
	}

	logWriter := os.Stderr
	if !verbose {
		logWriter = nil
	}
	logger := lcm.NewLogger(nopWriterIfNil(logWriter))

	scheduler := lcm.NewScheduler(sc.ToRobotConfigs(), sc.SchedulerConfig(), logger)

	events := make(chan lcm.StreamEvent, 64)
	go func() {
		scheduler.Run(context.Background(), events)
		close(events)
	}()

	var streamErr error
	switch format {
	case "json":
		streamErr = export.StreamJSON(os.Stdout, events)
	default:
		streamErr = export.StreamCSV(os.Stdout, events)
	}
	if streamErr != nil {
		log.Fatalf("export: %s", streamErr)
	}
}

// nopWriterIfNil returns a writer on the null device when w is nil, so
// non-verbose runs discard their log output without special-casing the
// logger construction itself. If the null device cannot be opened it returns
// os.Stderr.
func nopWriterIfNil(w *os.File) *os.File {
	if w != nil {
		return w
	}
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return os.Stderr
	}
	return devNull
}
