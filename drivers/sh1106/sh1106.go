// Package sh1106 writes a full 128x64 frame to an SH1106 OLED controller
// over I2C.
//
// The controller has 132 columns of RAM; a 128-pixel glass is wired to
// columns 2..129, hence the fixed column offset on every page write.
//
//	d := sh1106.New(sh1106.Config{})
//	_ = d.Init(bus)
//	_ = d.Flush(bus, &buf) // 8 pages x 128 bytes, LSB = top row of the page
//
// Flush always writes every page. A failed transfer is reported and the
// caller simply flushes the whole buffer again later.
package sh1106

import (
	"aquamon-go/errcode"
	"aquamon-go/hal"
)

// I2C address with SA0 low.
const Address = 0x3C

// Geometry.
const (
	Width      = 128
	Height     = 64
	Pages      = Height / 8
	BufferSize = Width * Pages

	columnOffset = 2
)

// Control bytes.
const (
	ctrlCommand = 0x00
	ctrlData    = 0x40
)

// Commands.
const (
	cmdDisplayOff    = 0xAE
	cmdDisplayOn     = 0xAF
	cmdClockDiv      = 0xD5
	cmdMultiplex     = 0xA8
	cmdDisplayOffset = 0xD3
	cmdStartLine     = 0x40
	cmdDCDC          = 0xAD
	cmdSegRemap      = 0xA0
	cmdComScanDec    = 0xC8
	cmdComPins       = 0xDA
	cmdContrast      = 0x81
	cmdPrecharge     = 0xD9
	cmdVCOMH         = 0xDB
	cmdResume        = 0xA4
	cmdNormal        = 0xA6
	cmdPageAddr      = 0xB0
	cmdLowColumn     = 0x00
	cmdHighColumn    = 0x10

	dcdcOn = 0x8B
)

// Config holds bus-independent settings. All fields are optional.
type Config struct {
	// Address defaults to 0x3C if zero.
	Address uint16
	// Contrast 0..255; 0 selects 0xCF.
	Contrast uint8
}

// Device holds the configuration and the transfer buffer; the bus is
// passed per call.
type Device struct {
	cfg Config
	w   [1 + Width]byte
}

func New(cfg Config) *Device {
	if cfg.Address == 0 {
		cfg.Address = Address
	}
	if cfg.Contrast == 0 {
		cfg.Contrast = 0xCF
	}
	return &Device{cfg: cfg}
}

func (d *Device) Address() uint16 { return d.cfg.Address }

// Init sends the power-up sequence for the internal DC-DC, 128x64 glass.
func (d *Device) Init(bus hal.I2C) error {
	seq := [...]byte{
		ctrlCommand,
		cmdDisplayOff,
		cmdClockDiv, 0x80,
		cmdMultiplex, Height - 1,
		cmdDisplayOffset, 0x00,
		cmdStartLine | 0x00,
		cmdDCDC, dcdcOn,
		cmdSegRemap | 0x01,
		cmdComScanDec,
		cmdComPins, 0x12,
		cmdContrast, d.cfg.Contrast,
		cmdPrecharge, 0xF1,
		cmdVCOMH, 0x40,
		cmdResume,
		cmdNormal,
		cmdDisplayOn,
	}
	return errcode.FromI2C("sh1106.init", bus.Tx(d.cfg.Address, seq[:], nil))
}

// Flush writes all pages. The first failed transfer aborts the sequence.
func (d *Device) Flush(bus hal.I2C, buf *[BufferSize]byte) error {
	for pg := 0; pg < Pages; pg++ {
		cmd := [...]byte{
			ctrlCommand,
			cmdPageAddr | byte(pg),
			cmdLowColumn | columnOffset&0x0F,
			cmdHighColumn | columnOffset>>4,
		}
		if err := bus.Tx(d.cfg.Address, cmd[:], nil); err != nil {
			return ackFailure("sh1106.flush", err)
		}
		d.w[0] = ctrlData
		copy(d.w[1:], buf[pg*Width:(pg+1)*Width])
		if err := bus.Tx(d.cfg.Address, d.w[:], nil); err != nil {
			return ackFailure("sh1106.flush", err)
		}
	}
	return nil
}

// ackFailure reports any panel transfer error as a missing acknowledge.
func ackFailure(op string, err error) error {
	return errcode.Wrap(errcode.AckFailure, op, err)
}
