// Package platform brings up the boundary services the monitor consumes:
// the one-wire line, the shared I2C bus, the clock and an optional console.
//
// On rp2040/rp2350 builds Open configures the real peripherals. On any other
// target Open wires the simulated devices in sim.go, which the tests and
// cmd/simulate also use directly.
package platform

import (
	"io"

	"aquamon-go/hal"
)

// Board is the set of handles owned by the boundary and lent to the core.
type Board struct {
	Name    string
	OneWire hal.OneWire
	I2C     hal.I2C
	Clock   hal.Clock
	Console io.Writer // nil when disabled
}
