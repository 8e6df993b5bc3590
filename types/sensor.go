package types

import "aquamon-go/errcode"

// ------------------------
// Temperature
// ------------------------

// Temperature is a signed fixed-point temperature in sixteenths of a degree
// Celsius (the DS18B20 native LSB). 336 => 21.0°C.
type Temperature int16

// Physical limits of the thermometer, in raw sixteenths.
const (
	TemperatureMin Temperature = -55 * 16
	TemperatureMax Temperature = 125 * 16
)

// Reference temperature for conductivity compensation (25.0°C).
const TemperatureRef Temperature = 25 * 16

// InRange reports whether t lies within the device's documented range.
func (t Temperature) InRange() bool { return t >= TemperatureMin && t <= TemperatureMax }

// Celsius returns °C (float). Exact: every raw step is a power-of-two fraction.
func (t Temperature) Celsius() float32 { return float32(t) / 16 }

// DeciCelsius returns tenths of °C, rounded half away from zero.
func (t Temperature) DeciCelsius() int32 {
	v := int32(t) * 10
	if v >= 0 {
		return (v + 8) / 16
	}
	return (v - 8) / 16
}

// TemperatureFromDeci converts tenths of °C to the nearest raw step.
func TemperatureFromDeci(d int32) Temperature {
	v := d * 16
	if v >= 0 {
		return Temperature((v + 5) / 10)
	}
	return Temperature((v - 5) / 10)
}

// ------------------------
// Total dissolved solids
// ------------------------

// PPM is a TDS reading in parts-per-million, already rounded.
type PPM uint16

// ------------------------
// Channel status
// ------------------------

type Status uint8

const (
	StatusOK Status = iota
	StatusStale
	StatusFault
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusStale:
		return "stale"
	case StatusFault:
		return "fault"
	default:
		return "unknown"
	}
}

// DefaultFaultAfter is the number of consecutive failures that turns a stale
// channel into a faulted one.
const DefaultFaultAfter = 3

// Channel holds the last-known-good value of one sensor and its status.
// The zero value is a channel that has never been read: no value, StatusOK.
type Channel[T any] struct {
	Value  T
	Valid  bool
	Status Status
	Fails  int          // consecutive failures
	Err    errcode.Code // code of the most recent failure, OK after a success
}

// Succeed records a fresh value. It reports whether the status changed.
func (c *Channel[T]) Succeed(v T) bool {
	prev := c.Status
	c.Value = v
	c.Valid = true
	c.Status = StatusOK
	c.Fails = 0
	c.Err = errcode.OK
	return prev != StatusOK
}

// Fail records a failed read, keeping the last good value. The first failure
// marks the channel stale; faultAfter consecutive failures mark it faulted.
// It reports whether the status changed.
func (c *Channel[T]) Fail(err error, faultAfter int) bool {
	if faultAfter < 1 {
		faultAfter = DefaultFaultAfter
	}
	prev := c.Status
	c.Fails++
	c.Err = errcode.Of(err)
	if c.Fails >= faultAfter {
		c.Status = StatusFault
	} else {
		c.Status = StatusStale
	}
	return prev != c.Status
}

// Trusted returns the value when it may still be shown or used: a value has
// been acquired and the channel is not faulted.
func (c *Channel[T]) Trusted() (T, bool) {
	if !c.Valid || c.Status == StatusFault {
		var zero T
		return zero, false
	}
	return c.Value, true
}

// Snapshot is the state of both channels handed to the renderer by value.
type Snapshot struct {
	Temperature Channel[Temperature]
	TDS         Channel[PPM]
}
