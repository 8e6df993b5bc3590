// Package onewire bit-bangs a one-wire master on a single open-drain GPIO.
//
// The line must be pulled up externally (4.7 kΩ typical). Slot timings follow
// the standard-speed values of the Maxim application notes; Delay must be a
// busy-wait accurate to a microsecond or two (time.Sleep is not).
package onewire

import (
	"time"

	"aquamon-go/errcode"
	"aquamon-go/hal"
)

// ROM commands.
const (
	ReadROM   = 0x33
	MatchROM  = 0x55
	SkipROM   = 0xCC
	SearchROM = 0xF0
)

// Standard-speed slot timings.
const (
	tResetLow     = 480 * time.Microsecond
	tPresenceWait = 70 * time.Microsecond
	tResetRelease = 410 * time.Microsecond
	tWrite1Low    = 6 * time.Microsecond
	tWrite1High   = 64 * time.Microsecond
	tWrite0Low    = 60 * time.Microsecond
	tWrite0High   = 10 * time.Microsecond
	tReadLow      = 3 * time.Microsecond
	tReadSample   = 10 * time.Microsecond
	tReadRecover  = 53 * time.Microsecond

	// The idle line must read high within this window before a reset.
	tIdleWait  = 250 * time.Microsecond
	idlePolls  = 5
	idlePeriod = tIdleWait / idlePolls
)

// Bus drives the line. It implements hal.OneWire.
type Bus struct {
	pin   hal.Pin
	delay func(time.Duration)
}

var _ hal.OneWire = (*Bus)(nil)

// New creates a bus on pin. delay must busy-wait; see package docs.
func New(pin hal.Pin, delay func(time.Duration)) *Bus {
	if delay == nil {
		delay = time.Sleep
	}
	return &Bus{pin: pin, delay: delay}
}

func (b *Bus) release() error { return b.pin.ConfigureInput(hal.PullUp) }
func (b *Bus) low() error     { return b.pin.ConfigureOutput(false) }

func pinFault(op string, err error) error {
	return errcode.Wrap(errcode.BusTimeout, op, err)
}

// Reset sends the reset pulse and samples presence. A line that never
// returns high is a bus fault (shorted or missing pull-up).
func (b *Bus) Reset() (bool, error) {
	const op = "onewire.reset"
	if err := b.release(); err != nil {
		return false, pinFault(op, err)
	}
	idle := false
	for i := 0; i < idlePolls; i++ {
		if b.pin.Get() {
			idle = true
			break
		}
		b.delay(idlePeriod)
	}
	if !idle {
		return false, errcode.New(errcode.BusTimeout, op, "line held low")
	}

	if err := b.low(); err != nil {
		return false, pinFault(op, err)
	}
	b.delay(tResetLow)
	if err := b.release(); err != nil {
		return false, pinFault(op, err)
	}
	b.delay(tPresenceWait)
	present := !b.pin.Get()
	b.delay(tResetRelease)
	return present, nil
}

func (b *Bus) writeBit(bit byte) error {
	if err := b.low(); err != nil {
		return err
	}
	if bit&1 == 1 {
		b.delay(tWrite1Low)
		if err := b.release(); err != nil {
			return err
		}
		b.delay(tWrite1High)
		return nil
	}
	b.delay(tWrite0Low)
	if err := b.release(); err != nil {
		return err
	}
	b.delay(tWrite0High)
	return nil
}

func (b *Bus) readBit() (byte, error) {
	if err := b.low(); err != nil {
		return 0, err
	}
	b.delay(tReadLow)
	if err := b.release(); err != nil {
		return 0, err
	}
	b.delay(tReadSample)
	var v byte
	if b.pin.Get() {
		v = 1
	}
	b.delay(tReadRecover)
	return v, nil
}

// WriteByte transmits LSB first.
func (b *Bus) WriteByte(v byte) error {
	for i := 0; i < 8; i++ {
		if err := b.writeBit(v); err != nil {
			return pinFault("onewire.write", err)
		}
		v >>= 1
	}
	return nil
}

// ReadByte receives LSB first.
func (b *Bus) ReadByte() (byte, error) {
	var v byte
	for i := 0; i < 8; i++ {
		bit, err := b.readBit()
		if err != nil {
			return 0, pinFault("onewire.read", err)
		}
		v >>= 1
		v |= bit << 7
	}
	return v, nil
}
