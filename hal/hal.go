// Package hal holds the capability interfaces the firmware core consumes.
// Implementations are owned by the board bring-up (see hal/platform); the
// core receives them by reference per call and never stores global handles.
package hal

import (
	"time"

	"tinygo.org/x/drivers"
)

// I2C is the transactional bus shape shared with tinygo.org/x/drivers.
// Tx MUST perform a write followed by a repeated-start read when both w and r
// are provided, without releasing the bus.
type I2C interface {
	Tx(addr uint16, w, r []byte) error
}

var _ drivers.I2C = I2C(nil)

// OneWire is a single-master one-wire bus.
type OneWire interface {
	// Reset drives the reset pulse and samples the presence pulse.
	// err reports a bus fault (line stuck); present=false means no device answered.
	Reset() (present bool, err error)
	WriteByte(b byte) error
	ReadByte() (byte, error)
}

// Clock is the monotonic time source and the only blocking primitive.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock uses the runtime clock (TinyGo maps Sleep to the timer alarm).
type SystemClock struct{}

func (SystemClock) Now() time.Time        { return time.Now() }
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

// Pull selects the input bias of a GPIO.
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// Pin is the GPIO subset needed to bit-bang the one-wire line.
type Pin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
}
