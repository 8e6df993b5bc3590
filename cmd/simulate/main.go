//go:build !rp2040 && !rp2350

// cmd/simulate runs the monitor against the simulated devices and prints
// each rendered frame. A fixed script unplugs the thermometer, NACKs the ADC
// and drops the panel so the stale, fault and recovery paths are visible.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"aquamon-go/display"
	"aquamon-go/hal/platform"
	"aquamon-go/services/config"
	"aquamon-go/services/monitor"
	"aquamon-go/types"
	"aquamon-go/x/fmtx"
)

type event struct {
	cycle int
	what  string
	apply func(*platform.Sim)
}

var script = []event{
	{3, "thermometer unplugged", func(s *platform.Sim) { s.Thermometer.Present = false }},
	{5, "adc stops acknowledging", func(s *platform.Sim) { s.ADC.SetNack(true) }},
	{7, "thermometer back after power loss", func(s *platform.Sim) {
		s.Thermometer.PowerCycle()
		s.Thermometer.Present = true
	}},
	{8, "panel drops off the bus", func(s *platform.Sim) { s.Panel.SetNack(true) }},
	{9, "adc recovers, water warms", func(s *platform.Sim) {
		s.ADC.SetNack(false)
		s.ADC.SetCode(9100)
		s.Thermometer.Temperature = types.TemperatureFromDeci(265)
	}},
	{12, "panel back", func(s *platform.Sim) { s.Panel.SetNack(false) }},
}

func main() {
	board := flag.String("board", "sim", "embedded board configuration")
	cycles := flag.Int("cycles", 14, "cycles to run")
	frames := flag.Bool("frames", false, "print the panel contents after every cycle")
	flag.Parse()

	logrus.SetOutput(os.Stderr)
	log := logrus.WithFields(logrus.Fields{"cmd": "simulate", "board": *board})

	cfg, err := config.Load(*board)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	b, sim := platform.OpenSim(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var m *monitor.Monitor
	b.Clock = &scriptClock{SimClock: sim.Clock, idle: cfg.Schedule.Idle, fn: func(n int) {
		lines := display.Text(m.Snapshot())
		fmtx.Printf("[simulate] t+%s  | %-12s | %-12s |\n", sim.Clock.Slept.String(), lines[0], lines[1])
		if *frames {
			visible := display.Frame(sim.Panel.Visible())
			fmtx.Printf("%s\n", visible.String())
		}
		if n >= *cycles {
			cancel()
			return
		}
		for _, e := range script {
			if e.cycle == n+1 {
				log.WithFields(logrus.Fields{"cycle": e.cycle}).Info(e.what)
				e.apply(sim)
			}
		}
	}}

	m, err = config.NewMonitor(cfg, b)
	if err != nil {
		log.WithError(err).Fatal("assemble monitor")
	}

	if err := m.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("run")
	}
	log.WithFields(logrus.Fields{"cycles": m.Cycles()}).Info("done")
}

// scriptClock calls fn after each idle sleep with the number of completed cycles.
type scriptClock struct {
	*platform.SimClock
	idle time.Duration
	n    int
	fn   func(int)
}

func (c *scriptClock) Sleep(d time.Duration) {
	c.SimClock.Sleep(d)
	if d == c.idle {
		c.n++
		c.fn(c.n)
	}
}
