//go:build !rp2040 && !rp2350

package platform

import (
	"errors"
	"sync"
	"time"

	"aquamon-go/drivers/onewire"
	"aquamon-go/errcode"
	"aquamon-go/hal"
	"aquamon-go/types"
)

// ErrNack is returned by SimI2C when nothing acknowledges the address.
var ErrNack = errors.New("i2c: no acknowledge")

// ----------------------------- Clock -----------------------------------------

// SimClock advances only when slept on. It never blocks.
type SimClock struct {
	mu    sync.Mutex
	now   time.Time
	Slept time.Duration // total of all sleeps
	Last  time.Duration // most recent sleep
}

var _ hal.Clock = (*SimClock)(nil)

func NewSimClock() *SimClock { return &SimClock{now: time.Unix(0, 0)} }

func (c *SimClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *SimClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.Slept += d
	c.Last = d
}

// ----------------------------- One-wire --------------------------------------

// DS18B20 power-on scratchpad: 85.0 °C, TH 75, TL 70, 12-bit.
var powerOnScratchpad = [8]byte{0x50, 0x05, 0x4B, 0x46, 0x7F, 0xFF, 0x0C, 0x10}

type owState uint8

const (
	owIdle owState = iota // waiting for reset
	owROM                 // waiting for a ROM command
	owFunction            // waiting for a function command
	owWriteScratch        // collecting TH, TL, config
)

// SimThermometer emulates a single DS18B20 at byte level. Temperature is
// latched into the scratchpad on Convert T, as on the real part.
type SimThermometer struct {
	mu sync.Mutex

	Present bool // answers the reset pulse
	Stuck   bool // line held low: Reset fails
	Corrupt bool // flips the CRC byte of scratchpad reads

	ROM         [8]byte
	Temperature types.Temperature

	Conversions int
	Configures  int

	sp    [8]byte
	state owState
	wr    []byte
	out   []byte
}

var _ hal.OneWire = (*SimThermometer)(nil)

// NewSimThermometer returns a present device reading t, in power-on state.
func NewSimThermometer(t types.Temperature) *SimThermometer {
	s := &SimThermometer{Present: true, Temperature: t}
	s.ROM = [8]byte{0x28, 0xAA, 0x1C, 0x50, 0x16, 0x13, 0x02}
	s.ROM[7] = onewire.CRC8(s.ROM[:7])
	s.sp = powerOnScratchpad
	return s
}

// PowerCycle restores the power-on scratchpad (85 °C, 12-bit, default alarms).
func (s *SimThermometer) PowerCycle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sp = powerOnScratchpad
	s.state = owIdle
	s.out = nil
}

// SetResolution changes the config byte as if written by another master.
func (s *SimThermometer) SetResolution(bits uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sp[4] = (bits-9)<<5 | 0x1F
}

// Resolution reports the resolution held in the config byte.
func (s *SimThermometer) Resolution() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return 9 + (s.sp[4]>>5)&0x03
}

// Alarms reports the TH and TL registers.
func (s *SimThermometer) Alarms() (high, low int8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int8(s.sp[2]), int8(s.sp[3])
}

func (s *SimThermometer) Reset() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = nil
	s.wr = s.wr[:0]
	if s.Stuck {
		s.state = owIdle
		return false, errcode.New(errcode.BusTimeout, "onewire.reset", "line held low")
	}
	if !s.Present {
		s.state = owIdle
		return false, nil
	}
	s.state = owROM
	return true, nil
}

func (s *SimThermometer) WriteByte(b byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Present || s.Stuck {
		return nil
	}
	switch s.state {
	case owROM:
		switch b {
		case onewire.SkipROM:
			s.state = owFunction
		case onewire.ReadROM:
			s.out = append(s.out[:0], s.ROM[:]...)
			s.state = owIdle
		default:
			s.state = owIdle
		}
	case owFunction:
		switch b {
		case 0x44:
			s.convert()
			s.state = owIdle
		case 0xBE:
			s.out = append(s.out[:0], s.sp[:]...)
			crc := onewire.CRC8(s.sp[:])
			if s.Corrupt {
				crc ^= 0x5A
			}
			s.out = append(s.out, crc)
			s.state = owIdle
		case 0x4E:
			s.wr = s.wr[:0]
			s.state = owWriteScratch
		default:
			s.state = owIdle
		}
	case owWriteScratch:
		s.wr = append(s.wr, b)
		if len(s.wr) == 3 {
			s.sp[2], s.sp[3] = s.wr[0], s.wr[1]
			s.sp[4] = s.wr[2]&0x60 | 0x1F
			s.Configures++
			s.state = owIdle
		}
	}
	return nil
}

// convert latches Temperature at the configured resolution.
func (s *SimThermometer) convert() {
	res := 9 + (s.sp[4]>>5)&0x03
	raw := uint16(s.Temperature)
	raw &^= uint16(1<<(12-res)) - 1
	s.sp[0], s.sp[1] = byte(raw), byte(raw>>8)
	s.Conversions++
}

// ReadByte returns queued response bytes; an undriven line reads 0xFF.
func (s *SimThermometer) ReadByte() (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.out) == 0 {
		return 0xFF, nil
	}
	b := s.out[0]
	s.out = s.out[1:]
	return b, nil
}

// ----------------------------- I2C -------------------------------------------

// SimI2CDevice is one target on a SimI2C bus.
type SimI2CDevice interface {
	Tx(w, r []byte) error
}

// SimI2C routes transactions by address. Unknown addresses NACK.
type SimI2C struct {
	mu      sync.Mutex
	devices map[uint16]SimI2CDevice
	Txs     int
}

var _ hal.I2C = (*SimI2C)(nil)

func NewSimI2C() *SimI2C { return &SimI2C{devices: make(map[uint16]SimI2CDevice)} }

func (b *SimI2C) Attach(addr uint16, d SimI2CDevice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.devices[addr] = d
}

func (b *SimI2C) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	d, ok := b.devices[addr]
	b.Txs++
	b.mu.Unlock()
	if !ok {
		return ErrNack
	}
	return d.Tx(w, r)
}

// SimADC emulates an ADS1115's config and conversion registers.
type SimADC struct {
	mu sync.Mutex

	Code int16 // value the next conversion produces
	Nack bool  // refuse every transaction
	Busy int   // status reads reporting busy after each trigger

	Config   uint16 // last config word written
	Triggers int

	conv    uint16
	pending int
	ptr     byte
}

func NewSimADC(code int16) *SimADC { return &SimADC{Code: code, Config: 0x8583} }

func (a *SimADC) SetCode(c int16) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Code = c
}

func (a *SimADC) SetNack(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Nack = v
}

func (a *SimADC) Tx(w, r []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Nack {
		return ErrNack
	}
	if len(w) > 0 {
		a.ptr = w[0]
	}
	if len(w) == 3 && a.ptr == 0x01 {
		v := uint16(w[1])<<8 | uint16(w[2])
		a.Config = v &^ 0x8000
		if v&0x8000 != 0 {
			a.Triggers++
			a.conv = uint16(a.Code)
			a.pending = a.Busy
		}
	}
	if len(r) >= 2 {
		var v uint16
		switch a.ptr {
		case 0x00:
			v = a.conv
		case 0x01:
			v = a.Config
			if a.pending > 0 {
				a.pending--
			} else {
				v |= 0x8000
			}
		}
		r[0], r[1] = byte(v>>8), byte(v)
	}
	return nil
}

// SH1106 commands followed by one parameter byte.
var sh1106TwoByte = map[byte]bool{
	0x81: true, 0xA8: true, 0xAD: true, 0xD3: true,
	0xD5: true, 0xD9: true, 0xDA: true, 0xDB: true,
}

// SimPanel emulates the SH1106 display RAM (132 columns x 8 pages).
type SimPanel struct {
	mu sync.Mutex

	// FailAt makes the Nth transaction from now NACK (1 = next), 0 disables.
	FailAt int
	Nack   bool

	On    bool
	Inits int // display-off commands seen, one per init sequence
	Pages int // data writes completed

	ram   [8][132]byte
	page  int
	col   int
	param bool
}

func NewSimPanel() *SimPanel { return &SimPanel{} }

func (p *SimPanel) SetNack(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Nack = v
}

func (p *SimPanel) Tx(w, r []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Nack {
		return ErrNack
	}
	if p.FailAt > 0 {
		p.FailAt--
		if p.FailAt == 0 {
			return ErrNack
		}
	}
	if len(w) == 0 {
		return nil
	}
	switch w[0] {
	case 0x00:
		for _, c := range w[1:] {
			p.command(c)
		}
	case 0x40:
		for _, d := range w[1:] {
			if p.col < len(p.ram[p.page]) {
				p.ram[p.page][p.col] = d
			}
			p.col++
		}
		p.Pages++
	}
	return nil
}

func (p *SimPanel) command(c byte) {
	if p.param {
		p.param = false
		return
	}
	switch {
	case sh1106TwoByte[c]:
		p.param = true
	case c == 0xAE:
		p.On = false
		p.Inits++
	case c == 0xAF:
		p.On = true
	case c >= 0xB0 && c <= 0xB7:
		p.page = int(c & 0x07)
	case c <= 0x0F:
		p.col = p.col&0xF0 | int(c)
	case c >= 0x10 && c <= 0x1F:
		p.col = p.col&0x0F | int(c&0x0F)<<4
	}
}

// Visible returns the 128 visible columns (RAM columns 2..129) in the
// page-major layout used by display.Frame.
func (p *SimPanel) Visible() [1024]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out [1024]byte
	for pg := 0; pg < 8; pg++ {
		copy(out[pg*128:(pg+1)*128], p.ram[pg][2:130])
	}
	return out
}

// ----------------------------- Bundle ----------------------------------------

// Sim holds every simulated device so callers can inject faults.
type Sim struct {
	Clock       *SimClock
	Thermometer *SimThermometer
	I2C         *SimI2C
	ADC         *SimADC
	Panel       *SimPanel
}

// NewSim builds a thermometer at t and an ADC producing code, with the ADC
// and panel on one bus at the given addresses.
func NewSim(t types.Temperature, code int16, adcAddr, panelAddr uint16) *Sim {
	s := &Sim{
		Clock:       NewSimClock(),
		Thermometer: NewSimThermometer(t),
		I2C:         NewSimI2C(),
		ADC:         NewSimADC(code),
		Panel:       NewSimPanel(),
	}
	s.I2C.Attach(adcAddr, s.ADC)
	s.I2C.Attach(panelAddr, s.Panel)
	return s
}
