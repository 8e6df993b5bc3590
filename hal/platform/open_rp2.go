//go:build rp2040 || rp2350

package platform

import (
	"errors"
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/delay"

	"aquamon-go/drivers/onewire"
	"aquamon-go/hal"
	"aquamon-go/types"
	"aquamon-go/x/fmtx"
)

// DefaultBoard names the embedded configuration for this build.
const DefaultBoard = "pico"

// Open configures the I2C bus shared by the ADC and the panel, the one-wire
// GPIO and, when enabled, the UART console.
func Open(cfg types.MonitorConfig) (*Board, error) {
	var i2c *machine.I2C
	switch cfg.ADC.Bus {
	case "i2c0", "":
		i2c = machine.I2C0
	case "i2c1":
		i2c = machine.I2C1
	default:
		return nil, errors.New("unknown i2c bus: " + cfg.ADC.Bus)
	}
	if err := i2c.Configure(machine.I2CConfig{
		Frequency: cfg.ADC.Hz,
		SDA:       machine.Pin(cfg.ADC.SDA),
		SCL:       machine.Pin(cfg.ADC.SCL),
	}); err != nil {
		return nil, err
	}

	if cfg.Thermometer.Pin < 0 || cfg.Thermometer.Pin > 28 {
		return nil, errors.New("one-wire pin out of range")
	}
	ow := onewire.New(&rp2Pin{p: machine.Pin(cfg.Thermometer.Pin)}, busyWait)

	b := &Board{
		Name:    cfg.Board,
		OneWire: ow,
		I2C:     i2c,
		Clock:   hal.SystemClock{},
	}

	if cfg.Console.Enabled {
		var u *uartx.UART
		switch cfg.Console.UART {
		case "uart1":
			u = uartx.UART1
		default:
			u = uartx.UART0
		}
		_ = u.Configure(uartx.UARTConfig{
			BaudRate: cfg.Console.Baud,
			TX:       machine.Pin(cfg.Console.TX),
			RX:       machine.Pin(cfg.Console.RX),
		})
		b.Console = u
		fmtx.DefaultOutput = u
	}
	return b, nil
}

// busyWait is handed to the one-wire master; slot timing needs microsecond
// accuracy that time.Sleep does not give.
func busyWait(d time.Duration) { delay.Sleep(d) }

// ---- GPIO for the one-wire line ----

type rp2Pin struct{ p machine.Pin }

func (r *rp2Pin) ConfigureInput(pull hal.Pull) error {
	var mode machine.PinMode
	switch pull {
	case hal.PullUp:
		mode = machine.PinInputPullup
	case hal.PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2Pin) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

func (r *rp2Pin) Set(level bool) { r.p.Set(level) }
func (r *rp2Pin) Get() bool      { return r.p.Get() }
