// Package ads1115 provides single-shot reads from a TI ADS1115 16-bit ADC.
//
// A read writes the config register (which starts the conversion), sleeps
// the worst-case conversion time, polls the OS bit a bounded number of times
// and then reads the conversion register:
//
//	code, err := d.Read(bus, clk)
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when both
// w and r are provided, without releasing the bus.
package ads1115

import (
	"time"

	"aquamon-go/errcode"
	"aquamon-go/hal"
)

// I2C address with ADDR tied to GND.
const Address = 0x48

// Registers.
const (
	RegConversion = 0x00
	RegConfig     = 0x01
)

// Config register fields.
const (
	cfgOS         uint16 = 0x8000 // write: start single shot; read: 1 = idle
	cfgModeSingle uint16 = 0x0100
	cfgCompQueOff uint16 = 0x0003

	muxSingle0 uint16 = 0x4000 // AINx vs GND: 0x4000 + ch<<12
	muxShift          = 12
)

// PGA settings keyed by full-scale range in millivolts.
var pgaBits = map[uint16]uint16{
	6144: 0x0000,
	4096: 0x0200,
	2048: 0x0400,
	1024: 0x0600,
	512:  0x0800,
	256:  0x0A00,
}

// Data-rate settings keyed by samples per second.
var drBits = map[uint16]uint16{
	8:   0x0000,
	16:  0x0020,
	32:  0x0040,
	64:  0x0060,
	128: 0x0080,
	250: 0x00A0,
	475: 0x00C0,
	860: 0x00E0,
}

// Saturation codes: the input is at or beyond the selected range.
const (
	CodeMax int16 = 0x7FFF
	CodeMin int16 = -0x8000
)

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x48 if zero.
	Address uint16
	// Channel is the single-ended input, 0..3.
	Channel uint8
	// FullScaleMV selects the PGA. Default 4096.
	FullScaleMV uint16
	// DataRate in samples per second. Default 128.
	DataRate uint16
	// PollInterval spaces OS-bit polls after the conversion budget. Default 1 ms.
	PollInterval time.Duration
	// PollAttempts bounds the polls before BusTimeout. Default 4.
	PollAttempts int
}

// Device holds the configuration and fixed buffers; the bus is passed per call.
type Device struct {
	cfg  Config
	word uint16

	w [3]byte
	r [2]byte
}

// New validates cfg and applies defaults. Unsupported range or rate settings
// are rejected rather than silently rounded.
func New(cfg Config) (*Device, error) {
	if cfg.Address == 0 {
		cfg.Address = Address
	}
	if cfg.FullScaleMV == 0 {
		cfg.FullScaleMV = 4096
	}
	if cfg.DataRate == 0 {
		cfg.DataRate = 128
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Millisecond
	}
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = 4
	}
	pga, ok := pgaBits[cfg.FullScaleMV]
	if !ok {
		return nil, errcode.New(errcode.InvalidParams, "ads1115.new", "unsupported full-scale range")
	}
	dr, ok := drBits[cfg.DataRate]
	if !ok {
		return nil, errcode.New(errcode.InvalidParams, "ads1115.new", "unsupported data rate")
	}
	if cfg.Channel > 3 {
		return nil, errcode.New(errcode.InvalidParams, "ads1115.new", "channel must be 0..3")
	}
	d := &Device{cfg: cfg}
	d.word = cfgOS | (muxSingle0 + uint16(cfg.Channel)<<muxShift) | pga | cfgModeSingle | dr | cfgCompQueOff
	return d, nil
}

// ConfigWord is the value written to the config register for each read.
func (d *Device) ConfigWord() uint16 { return d.word }

// FullScaleMV is the voltage represented by CodeMax.
func (d *Device) FullScaleMV() uint16 { return d.cfg.FullScaleMV }

// ConversionTime is 1/SPS plus the datasheet's 10% oscillator tolerance.
func (d *Device) ConversionTime() time.Duration {
	period := time.Second / time.Duration(d.cfg.DataRate)
	return period + period/10
}

// Budget is the worst case Read may block: the conversion time plus all polls.
func (d *Device) Budget() time.Duration {
	return d.ConversionTime() + time.Duration(d.cfg.PollAttempts)*d.cfg.PollInterval
}

func (d *Device) readReg(bus hal.I2C, reg byte) (uint16, error) {
	d.w[0] = reg
	if err := bus.Tx(d.cfg.Address, d.w[:1], d.r[:2]); err != nil {
		return 0, err
	}
	return uint16(d.r[0])<<8 | uint16(d.r[1]), nil
}

func (d *Device) writeReg(bus hal.I2C, reg byte, v uint16) error {
	d.w[0] = reg
	d.w[1] = byte(v >> 8)
	d.w[2] = byte(v)
	return bus.Tx(d.cfg.Address, d.w[:3], nil)
}

// Trigger starts a single-shot conversion.
func (d *Device) Trigger(bus hal.I2C) error {
	return errcode.FromI2C("ads1115.trigger", d.writeReg(bus, RegConfig, d.word))
}

// Ready reports whether the last conversion finished.
func (d *Device) Ready(bus hal.I2C) (bool, error) {
	v, err := d.readReg(bus, RegConfig)
	if err != nil {
		return false, errcode.FromI2C("ads1115.status", err)
	}
	return v&cfgOS != 0, nil
}

// Collect reads the conversion register. Saturated codes are OutOfRange.
func (d *Device) Collect(bus hal.I2C) (int16, error) {
	v, err := d.readReg(bus, RegConversion)
	if err != nil {
		return 0, errcode.FromI2C("ads1115.collect", err)
	}
	code := int16(v)
	if code == CodeMax || code == CodeMin {
		return code, errcode.New(errcode.OutOfRange, "ads1115.collect", "input saturated")
	}
	return code, nil
}

// Read performs trigger, the conversion wait, bounded polling and collect.
func (d *Device) Read(bus hal.I2C, clk hal.Clock) (int16, error) {
	if err := d.Trigger(bus); err != nil {
		return 0, err
	}
	clk.Sleep(d.ConversionTime())
	for i := 0; ; i++ {
		ok, err := d.Ready(bus)
		if err != nil {
			return 0, err
		}
		if ok {
			break
		}
		if i >= d.cfg.PollAttempts {
			return 0, errcode.New(errcode.BusTimeout, "ads1115.read", "conversion did not complete")
		}
		clk.Sleep(d.cfg.PollInterval)
	}
	return d.Collect(bus)
}
