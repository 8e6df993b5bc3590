// Package ds18b20 drives a single DS18B20 thermometer on a one-wire bus.
//
// The measurement API mirrors the split used elsewhere in this repo:
//
//	d.StartConversion(bus)        // reset, skip ROM, convert T
//	clk.Sleep(d.ConversionTime()) // datasheet maximum, not typical
//	sp, err := d.ReadScratchpad(bus)
//	t, err := Decode(sp)
//
// ConvertAndRead performs the whole sequence. Nothing is retried here; retry
// and staleness policy belong to the caller.
package ds18b20

import (
	"time"

	"aquamon-go/drivers/onewire"
	"aquamon-go/errcode"
	"aquamon-go/hal"
	"aquamon-go/types"

	tgds "tinygo.org/x/drivers/ds18b20"
)

// Function commands.
const (
	cmdConvert        = tgds.CONVERT_TEMPERATURE
	cmdReadScratchpad = tgds.READ_SCRATCHPAD
	cmdWriteScratch   = tgds.WRITE_SCRATCHPAD
)

// FamilyCode is the first ROM byte of every DS18B20.
const FamilyCode = 0x28

// Conversion time at 12-bit resolution (datasheet tCONV max); halves per bit less.
const maxConversion12 = 750 * time.Millisecond

// Scratchpad is the 9-byte register image; byte 8 is the CRC of bytes 0..7.
type Scratchpad [9]byte

// ROM is the 64-bit registration code; byte 7 is the CRC of bytes 0..6.
type ROM [8]byte

func (r ROM) Family() byte { return r[0] }

// Config controls the device setup written by Configure. All fields are optional.
type Config struct {
	// Resolution in bits, 9..12. Default 12 (1/16 °C).
	Resolution uint8
	// Alarm registers, written only when SetAlarms is true. Otherwise TH/TL
	// span the full range so the alarm flag never trips.
	SetAlarms bool
	AlarmHigh int8
	AlarmLow  int8
}

// ErrResolutionMismatch reports a scratchpad converted at a resolution other
// than the configured one, typically after the device power-cycled back to
// 12 bits. The wait was sized for the configured resolution, so the
// temperature register may predate the conversion.
var ErrResolutionMismatch = errcode.New(errcode.Busy, "ds18b20.read", "device resolution differs from configured")

// Device holds configuration only; the bus is passed per call.
type Device struct {
	cfg Config
}

// New applies defaults to cfg.
func New(cfg Config) *Device {
	if cfg.Resolution < 9 || cfg.Resolution > 12 {
		cfg.Resolution = 12
	}
	if !cfg.SetAlarms {
		cfg.AlarmHigh, cfg.AlarmLow = 127, -128
	}
	return &Device{cfg: cfg}
}

// Resolution returns the configured resolution in bits.
func (d *Device) Resolution() uint8 { return d.cfg.Resolution }

// ConversionTime is the worst-case conversion budget for the configured resolution.
func (d *Device) ConversionTime() time.Duration {
	return maxConversion12 >> (12 - d.cfg.Resolution)
}

// configByte encodes the resolution with the fixed-one low bits.
func configByte(res uint8) byte { return (res-9)<<5 | 0x1F }

// selectOnly resets the line and addresses the single device.
func selectOnly(bus hal.OneWire, op string) error {
	present, err := bus.Reset()
	if err != nil {
		return errcode.Wrap(errcode.MapDriverErr(err), op, err)
	}
	if !present {
		return errcode.New(errcode.DeviceAbsent, op, "no presence pulse")
	}
	return write(bus, op, onewire.SkipROM)
}

func write(bus hal.OneWire, op string, bs ...byte) error {
	for _, b := range bs {
		if err := bus.WriteByte(b); err != nil {
			return errcode.Wrap(errcode.BusTimeout, op, err)
		}
	}
	return nil
}

func read(bus hal.OneWire, op string, dst []byte) error {
	for i := range dst {
		b, err := bus.ReadByte()
		if err != nil {
			return errcode.Wrap(errcode.BusTimeout, op, err)
		}
		dst[i] = b
	}
	return nil
}

// ReadROM reads the registration code. Only valid with a single device on
// the bus. A foreign family code is reported as DeviceAbsent.
func (d *Device) ReadROM(bus hal.OneWire) (ROM, error) {
	const op = "ds18b20.rom"
	var rom ROM
	present, err := bus.Reset()
	if err != nil {
		return rom, errcode.Wrap(errcode.MapDriverErr(err), op, err)
	}
	if !present {
		return rom, errcode.New(errcode.DeviceAbsent, op, "no presence pulse")
	}
	if err := write(bus, op, onewire.ReadROM); err != nil {
		return rom, err
	}
	if err := read(bus, op, rom[:]); err != nil {
		return rom, err
	}
	if onewire.CRC8(rom[:7]) != rom[7] {
		return rom, errcode.New(errcode.ChecksumMismatch, op, "rom crc")
	}
	if rom.Family() != FamilyCode {
		return rom, errcode.New(errcode.DeviceAbsent, op, "not a ds18b20")
	}
	return rom, nil
}

// Configure writes alarm limits and resolution, then reads the scratchpad
// back to confirm the device accepted them.
func (d *Device) Configure(bus hal.OneWire) error {
	const op = "ds18b20.configure"
	if err := selectOnly(bus, op); err != nil {
		return err
	}
	want := configByte(d.cfg.Resolution)
	if err := write(bus, op, cmdWriteScratch, byte(d.cfg.AlarmHigh), byte(d.cfg.AlarmLow), want); err != nil {
		return err
	}
	sp, err := d.ReadScratchpad(bus)
	if err != nil {
		return err
	}
	if sp[4] != want || sp[2] != byte(d.cfg.AlarmHigh) || sp[3] != byte(d.cfg.AlarmLow) {
		return errcode.New(errcode.ChecksumMismatch, op, "configuration not accepted")
	}
	return nil
}

// StartConversion issues Convert T. The result is ready after ConversionTime.
func (d *Device) StartConversion(bus hal.OneWire) error {
	const op = "ds18b20.convert"
	if err := selectOnly(bus, op); err != nil {
		return err
	}
	return write(bus, op, cmdConvert)
}

// ReadScratchpad reads and CRC-checks the 9-byte scratchpad.
func (d *Device) ReadScratchpad(bus hal.OneWire) (Scratchpad, error) {
	const op = "ds18b20.scratchpad"
	var sp Scratchpad
	if err := selectOnly(bus, op); err != nil {
		return sp, err
	}
	if err := write(bus, op, cmdReadScratchpad); err != nil {
		return sp, err
	}
	if err := read(bus, op, sp[:]); err != nil {
		return sp, err
	}
	if err := sp.Validate(); err != nil {
		return sp, err
	}
	return sp, nil
}

// ConvertAndRead runs one full measurement, sleeping the worst-case
// conversion time on clk. A device found at another resolution yields
// ErrResolutionMismatch; Configure restores it.
func (d *Device) ConvertAndRead(bus hal.OneWire, clk hal.Clock) (types.Temperature, error) {
	if err := d.StartConversion(bus); err != nil {
		return 0, err
	}
	clk.Sleep(d.ConversionTime())
	sp, err := d.ReadScratchpad(bus)
	if err != nil {
		return 0, err
	}
	if sp.Resolution() != d.cfg.Resolution {
		return 0, ErrResolutionMismatch
	}
	return Decode(sp)
}

// Validate checks the CRC and the configuration byte's fixed bits. An
// all-zero image passes the CRC, so the second check is what rejects a
// device that never drove the line.
func (sp *Scratchpad) Validate() error {
	const op = "ds18b20.scratchpad"
	if onewire.CRC8(sp[:8]) != sp[8] {
		return errcode.New(errcode.ChecksumMismatch, op, "crc")
	}
	if sp[4]&0x9F != 0x1F {
		return errcode.New(errcode.ChecksumMismatch, op, "config byte")
	}
	return nil
}

// Resolution reports the resolution the device used, from the config byte.
func (sp *Scratchpad) Resolution() uint8 { return 9 + (sp[4]>>5)&0x03 }

// Decode validates sp and converts its temperature register. Bits that are
// undefined at the device's resolution are cleared.
func Decode(sp Scratchpad) (types.Temperature, error) {
	if err := sp.Validate(); err != nil {
		return 0, err
	}
	raw := int16(uint16(sp[0]) | uint16(sp[1])<<8)
	raw &^= int16(1<<(12-sp.Resolution())) - 1
	t := types.Temperature(raw)
	if !t.InRange() {
		return 0, errcode.New(errcode.OutOfRange, "ds18b20.decode", "outside -55..125 °C")
	}
	return t, nil
}
