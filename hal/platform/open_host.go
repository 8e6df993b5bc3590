//go:build !rp2040 && !rp2350

package platform

import (
	"os"

	"aquamon-go/types"
)

// DefaultBoard names the embedded configuration for this build.
const DefaultBoard = "sim"

// Simulated readings at boot: 21.0 °C and a mid-range probe voltage.
const (
	simTemperature types.Temperature = 336
	simCode        int16             = 6553
)

// Open wires the simulated devices. See OpenSim for access to them.
func Open(cfg types.MonitorConfig) (*Board, error) {
	b, _ := OpenSim(cfg)
	return b, nil
}

// OpenSim is Open that also returns the simulated devices.
func OpenSim(cfg types.MonitorConfig) (*Board, *Sim) {
	s := NewSim(simTemperature, simCode, cfg.ADC.Address, cfg.Display.Address)
	b := &Board{
		Name:    cfg.Board,
		OneWire: s.Thermometer,
		I2C:     s.I2C,
		Clock:   s.Clock,
	}
	if cfg.Console.Enabled {
		b.Console = os.Stdout
	}
	return b, s
}
