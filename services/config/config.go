// Package config resolves the embedded per-board configuration.
//
// Each board document is YAML overlaid on Default(); fields a document omits
// keep their defaults. Load validates the result against the drivers'
// accepted settings, so a bad document fails at boot rather than on the
// first measurement.
package config

import (
	"time"

	"gopkg.in/yaml.v3"

	"aquamon-go/drivers/ads1115"
	"aquamon-go/drivers/ds18b20"
	"aquamon-go/drivers/sh1106"
	"aquamon-go/drivers/tds"
	"aquamon-go/errcode"
	"aquamon-go/services/monitor"
	"aquamon-go/types"
)

// EmbeddedConfigLookup allows overriding how board documents are resolved.
var EmbeddedConfigLookup = func(board string) ([]byte, bool) {
	b, ok := embeddedConfigs[board]
	return b, ok
}

// Default is the Pico wiring with datasheet timing.
func Default() types.MonitorConfig {
	cal := tds.DefaultCalibration()
	return types.MonitorConfig{
		Board: "pico",
		Thermometer: types.ThermometerConfig{
			Pin:        16,
			Resolution: 12,
		},
		ADC: types.ADCConfig{
			Bus:          "i2c0",
			SDA:          4,
			SCL:          5,
			Hz:           400_000,
			Address:      ads1115.Address,
			Channel:      0,
			FullScaleMV:  4096,
			DataRate:     128,
			PollInterval: time.Millisecond,
			PollAttempts: 4,
		},
		Probe: types.ProbeConfig{
			FullScaleV: cal.FullScaleV,
			MaxCode:    cal.MaxCode,
			Alpha:      cal.Alpha,
			A3:         cal.A3,
			A2:         cal.A2,
			A1:         cal.A1,
			Scale:      cal.Scale,
			MaxPPM:     uint16(cal.MaxPPM),
		},
		Display: types.DisplayConfig{
			Address:     sh1106.Address,
			ReinitAfter: monitor.DefaultReinitAfter,
			Splash:      true,
		},
		Schedule: types.ScheduleConfig{
			Idle:       monitor.DefaultIdle,
			FaultAfter: types.DefaultFaultAfter,
		},
		Console: types.ConsoleConfig{
			Enabled: false,
			UART:    "uart0",
			Baud:    115200,
			TX:      0,
			RX:      1,
		},
	}
}

// Load resolves, parses and validates the document for board.
func Load(board string) (types.MonitorConfig, error) {
	raw, ok := EmbeddedConfigLookup(board)
	if !ok || len(raw) == 0 {
		return types.MonitorConfig{}, errcode.New(errcode.InvalidParams, "config.load", "no embedded config for board: "+board)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return cfg, err
	}
	if cfg.Board == "" {
		cfg.Board = board
	}
	return cfg, nil
}

// Parse overlays a YAML document on Default and validates it.
func Parse(raw []byte) (types.MonitorConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errcode.Wrap(errcode.InvalidParams, "config.parse", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints and the drivers' accepted values.
func Validate(cfg types.MonitorConfig) error {
	const op = "config.validate"
	if r := cfg.Thermometer.Resolution; r < 9 || r > 12 {
		return errcode.New(errcode.InvalidParams, op, "thermometer resolution must be 9..12")
	}
	if cfg.ADC.Address == cfg.Display.Address {
		return errcode.New(errcode.InvalidParams, op, "adc and display share an i2c address")
	}
	// also catches a probe range that disagrees with the adc gain
	if _, err := tds.New(ADC(cfg), Calibration(cfg), nil); err != nil {
		return err
	}
	if cfg.Schedule.FaultAfter < 1 {
		return errcode.New(errcode.InvalidParams, op, "fault_after must be at least 1")
	}
	if cfg.Console.Enabled && cfg.Console.Baud == 0 {
		return errcode.New(errcode.InvalidParams, op, "console baud must be set")
	}
	return nil
}

// ------------------------
// Driver settings
// ------------------------

func Thermometer(cfg types.MonitorConfig) ds18b20.Config {
	return ds18b20.Config{Resolution: cfg.Thermometer.Resolution}
}

func ADC(cfg types.MonitorConfig) ads1115.Config {
	return ads1115.Config{
		Address:      cfg.ADC.Address,
		Channel:      cfg.ADC.Channel,
		FullScaleMV:  cfg.ADC.FullScaleMV,
		DataRate:     cfg.ADC.DataRate,
		PollInterval: cfg.ADC.PollInterval,
		PollAttempts: cfg.ADC.PollAttempts,
	}
}

func Calibration(cfg types.MonitorConfig) tds.Calibration {
	p := cfg.Probe
	return tds.Calibration{
		FullScaleV: p.FullScaleV,
		MaxCode:    p.MaxCode,
		Alpha:      p.Alpha,
		A3:         p.A3,
		A2:         p.A2,
		A1:         p.A1,
		Scale:      p.Scale,
		MaxPPM:     types.PPM(p.MaxPPM),
	}
}

func Panel(cfg types.MonitorConfig) sh1106.Config {
	return sh1106.Config{Address: cfg.Display.Address}
}

func Schedule(cfg types.MonitorConfig) monitor.Config {
	return monitor.Config{
		Idle:        cfg.Schedule.Idle,
		FaultAfter:  cfg.Schedule.FaultAfter,
		ReinitAfter: cfg.Display.ReinitAfter,
		Splash:      cfg.Display.Splash,
	}
}
