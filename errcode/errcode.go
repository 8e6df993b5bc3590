package errcode

import "errors"

// Code is a stable, display- and console-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK            Code = "ok"
	Busy          Code = "busy"
	InvalidParams Code = "invalid_params"
	Timeout       Code = "timeout"

	// Sensor taxonomy. All are recoverable at the scheduler.
	BusTimeout       Code = "bus_timeout"
	DeviceAbsent     Code = "device_absent"
	ChecksumMismatch Code = "checksum_mismatch"
	OutOfRange       Code = "out_of_range"
	AckFailure       Code = "ack_failure"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, errcode.ChecksumMismatch) match a wrapped *E.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// New builds an *E without a cause.
func New(c Code, op, msg string) *E { return &E{C: c, Op: op, Msg: msg} }

// Wrap builds an *E around a cause. A nil cause still yields a non-nil error.
func Wrap(c Code, op string, err error) *E {
	e := &E{C: c, Op: op, Err: err}
	if err != nil {
		e.Msg = err.Error()
	}
	return e
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	// The outermost *E wins over any Code in its cause chain.
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return Error
}

// MapDriverErr maps low-level bus errors to a Code. Errors that already carry
// a code keep it; a bus that reported timeout or busy maps to BusTimeout.
func MapDriverErr(err error) Code {
	switch c := Of(err); c {
	case Timeout, Busy:
		return BusTimeout
	default:
		return c
	}
}

// FromI2C wraps an I2C transfer error. Anything the bus did not classify is
// treated as a missing acknowledge.
func FromI2C(op string, err error) error {
	if err == nil {
		return nil
	}
	c := MapDriverErr(err)
	if c == Error {
		c = AckFailure
	}
	return Wrap(c, op, err)
}
