package config

import (
	"aquamon-go/display"
	"aquamon-go/drivers/ds18b20"
	"aquamon-go/drivers/tds"
	"aquamon-go/hal/platform"
	"aquamon-go/services/monitor"
	"aquamon-go/types"
)

// NewMonitor builds the drivers described by cfg on the board's handles.
func NewMonitor(cfg types.MonitorConfig, b *platform.Board) (*monitor.Monitor, error) {
	probe, err := tds.New(ADC(cfg), Calibration(cfg), b.Clock)
	if err != nil {
		return nil, err
	}
	return monitor.New(Schedule(cfg), monitor.Deps{
		OneWire:     b.OneWire,
		I2C:         b.I2C,
		Clock:       b.Clock,
		Thermometer: ds18b20.New(Thermometer(cfg)),
		Probe:       probe,
		Panel:       display.NewPanel(Panel(cfg)),
		Console:     b.Console,
	})
}
