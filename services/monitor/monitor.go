// Package monitor runs the acquisition cycle:
//
//	Idle -> AcquireTemperature -> AcquireTDS -> Render -> Idle
//
// Each acquisition updates only its own channel. A failed read keeps the
// last good value and downgrades the channel (stale, then fault); the cycle
// always reaches Render. Nothing here panics or returns a driver error to
// the caller.
package monitor

import (
	"context"
	"io"
	"time"

	"aquamon-go/display"
	"aquamon-go/drivers/ds18b20"
	"aquamon-go/drivers/tds"
	"aquamon-go/errcode"
	"aquamon-go/hal"
	"aquamon-go/types"
	"aquamon-go/x/fmtx"
)

// Phase is the position in the cycle.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseAcquireTemperature
	PhaseAcquireTDS
	PhaseRender
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAcquireTemperature:
		return "acquire_temperature"
	case PhaseAcquireTDS:
		return "acquire_tds"
	case PhaseRender:
		return "render"
	default:
		return "unknown"
	}
}

// ErrIdleTooShort rejects an idle interval that does not exceed the sum of
// the conversion budgets.
var ErrIdleTooShort = errcode.New(errcode.InvalidParams, "monitor.new", "idle interval must exceed conversion budgets")

// Defaults.
const (
	DefaultIdle        = 5 * time.Second
	DefaultReinitAfter = 3
)

// Config holds the scheduling policy.
type Config struct {
	Idle        time.Duration // pause after Render
	FaultAfter  int           // consecutive failures before a channel faults
	ReinitAfter int           // consecutive flush failures before the panel is re-initialised
	Splash      bool          // show the boot screen in Boot
}

// Deps are the devices and handles the monitor drives. Console may be nil.
type Deps struct {
	OneWire     hal.OneWire
	I2C         hal.I2C
	Clock       hal.Clock
	Thermometer *ds18b20.Device
	Probe       *tds.Probe
	Panel       *display.Panel
	Console     io.Writer
}

// Monitor owns the channel state and the frame for the life of the loop.
type Monitor struct {
	cfg Config
	d   Deps

	state types.Snapshot
	frame display.Frame
	phase Phase

	cycles     uint64
	flushFails int
	reinit     bool
}

// New validates cfg against the devices' worst-case timing.
func New(cfg Config, d Deps) (*Monitor, error) {
	if d.OneWire == nil || d.I2C == nil || d.Thermometer == nil || d.Probe == nil || d.Panel == nil {
		return nil, errcode.New(errcode.InvalidParams, "monitor.new", "missing device")
	}
	if d.Clock == nil {
		d.Clock = hal.SystemClock{}
	}
	if cfg.FaultAfter <= 0 {
		cfg.FaultAfter = types.DefaultFaultAfter
	}
	if cfg.ReinitAfter <= 0 {
		cfg.ReinitAfter = DefaultReinitAfter
	}
	if cfg.Idle <= d.Thermometer.ConversionTime()+d.Probe.Budget() {
		return nil, ErrIdleTooShort
	}
	return &Monitor{cfg: cfg, d: d}, nil
}

func (m *Monitor) Phase() Phase { return m.phase }

// Snapshot returns a copy of both channels.
func (m *Monitor) Snapshot() types.Snapshot { return m.state }

// Frame returns a copy of the last rendered frame.
func (m *Monitor) Frame() display.Frame { return m.frame }

func (m *Monitor) Cycles() uint64 { return m.cycles }

// Boot configures the thermometer and the panel, and shows the splash.
// Failures are logged; the first cycle deals with absent devices.
func (m *Monitor) Boot() {
	if err := m.d.Thermometer.Configure(m.d.OneWire); err != nil {
		m.logf("[monitor] thermometer configure: %s\n", err.Error())
	}
	if err := m.d.Panel.Init(m.d.I2C); err != nil {
		m.logf("[monitor] panel init: %s\n", err.Error())
		m.reinit = true
		return
	}
	if m.cfg.Splash {
		display.Splash(&m.frame)
		if err := m.d.Panel.Flush(m.d.I2C, &m.frame); err != nil {
			m.logf("[monitor] splash: %s\n", err.Error())
		}
	}
}

// Step runs one full cycle and returns to Idle.
func (m *Monitor) Step() {
	m.phase = PhaseAcquireTemperature
	m.acquireTemperature()

	m.phase = PhaseAcquireTDS
	m.acquireTDS()

	m.phase = PhaseRender
	m.render()

	m.phase = PhaseIdle
	m.cycles++
	m.report()
}

// Run boots, then steps and idles until ctx is done. On the device ctx is
// never cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	m.Boot()
	for {
		m.Step()
		if err := ctx.Err(); err != nil {
			return err
		}
		m.d.Clock.Sleep(m.cfg.Idle)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (m *Monitor) acquireTemperature() {
	ch := &m.state.Temperature
	prev := ch.Status
	t, err := m.readTemperature(ch.Fails > 0)
	if err != nil {
		if ch.Fail(err, m.cfg.FaultAfter) {
			m.transition("temperature", prev, ch.Status, ch.Err)
		}
		return
	}
	if ch.Succeed(t) {
		m.transition("temperature", prev, ch.Status, errcode.OK)
	}
}

// readTemperature rewrites the device configuration first when the last read
// failed: a sensor that dropped out may be back at its 12-bit power-on
// default. A power cycle between two good reads surfaces as
// ds18b20.ErrResolutionMismatch and is repaired on the next cycle.
func (m *Monitor) readTemperature(reconfigure bool) (types.Temperature, error) {
	if reconfigure {
		if err := m.d.Thermometer.Configure(m.d.OneWire); err != nil {
			return 0, err
		}
	}
	return m.d.Thermometer.ConvertAndRead(m.d.OneWire, m.d.Clock)
}

func (m *Monitor) acquireTDS() {
	ch := &m.state.TDS
	prev := ch.Status
	ppm, err := m.readTDS()
	if err != nil {
		if ch.Fail(err, m.cfg.FaultAfter) {
			m.transition("tds", prev, ch.Status, ch.Err)
		}
		return
	}
	if ch.Succeed(ppm) {
		m.transition("tds", prev, ch.Status, errcode.OK)
	}
}

// readTDS compensates at the last trusted temperature, or at the 25 °C
// reference when there is none.
func (m *Monitor) readTDS() (types.PPM, error) {
	raw, err := m.d.Probe.ReadRaw(m.d.I2C)
	if err != nil {
		return 0, err
	}
	t, ok := m.state.Temperature.Trusted()
	if !ok {
		t = types.TemperatureRef
	}
	return m.d.Probe.Compensate(raw, t)
}

func (m *Monitor) render() {
	display.Render(&m.frame, m.state)
	if m.reinit {
		if err := m.d.Panel.Init(m.d.I2C); err != nil {
			m.logf("[monitor] panel init: %s\n", err.Error())
			return
		}
		m.reinit = false
		m.flushFails = 0
	}
	if err := m.d.Panel.Flush(m.d.I2C, &m.frame); err != nil {
		m.flushFails++
		m.logf("[monitor] flush: %s\n", err.Error())
		if m.flushFails >= m.cfg.ReinitAfter {
			m.reinit = true
		}
		return
	}
	m.flushFails = 0
}

// ------------------------
// Console
// ------------------------

func (m *Monitor) logf(format string, a ...any) {
	if m.d.Console == nil {
		return
	}
	_, _ = fmtx.Fprintf(m.d.Console, format, a...)
}

func (m *Monitor) transition(ch string, from, to types.Status, code errcode.Code) {
	if code == errcode.OK {
		m.logf("[monitor] %s %s -> %s\n", ch, from.String(), to.String())
		return
	}
	m.logf("[monitor] %s %s -> %s (%s)\n", ch, from.String(), to.String(), string(code))
}

func (m *Monitor) report() {
	if m.d.Console == nil {
		return
	}
	l := display.Lines(m.state)
	m.logf("[monitor] cycle=%d t=%sC %s tds=%sppm %s\n",
		int64(m.cycles),
		l[0].Value, m.state.Temperature.Status.String(),
		l[1].Value, m.state.TDS.Status.String())
}
