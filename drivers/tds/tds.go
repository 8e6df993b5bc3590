// Package tds turns ADS1115 codes from a conductivity TDS probe into
// temperature-compensated parts-per-million.
//
//	raw code -> volts (full-scale / max code, negative clamps to 0)
//	-> volts at 25 °C = volts / (1 + alpha*(T - 25))
//	-> ppm = (A3*v^3 + A2*v^2 + A1*v) * Scale, rounded
//
// The default polynomial is the vendor curve for the common analog TDS
// meter boards (Keyestudio KS0429 / DFRobot SEN0244).
package tds

import (
	"time"

	"github.com/chewxy/math32"

	"aquamon-go/drivers/ads1115"
	"aquamon-go/errcode"
	"aquamon-go/hal"
	"aquamon-go/types"
	"aquamon-go/x/mathx"
)

// ErrRangeMismatch rejects a calibration whose full-scale voltage differs
// from the ADS1115 gain setting.
var ErrRangeMismatch = errcode.New(errcode.InvalidParams, "tds.new", "probe full-scale voltage does not match adc gain")

// Calibration holds the fixed constants of the conversion.
type Calibration struct {
	FullScaleV float32 // volts represented by MaxCode
	MaxCode    int32
	Alpha      float32 // compensation coefficient per °C
	A3, A2, A1 float32 // probe polynomial
	Scale      float32
	MaxPPM     types.PPM // sane upper bound; above is OutOfRange
}

// DefaultCalibration matches a probe on an ADS1115 at ±4.096 V.
func DefaultCalibration() Calibration {
	return Calibration{
		FullScaleV: 4.096,
		MaxCode:    32767,
		Alpha:      0.02,
		A3:         133.42,
		A2:         -255.86,
		A1:         857.39,
		Scale:      0.5,
		MaxPPM:     2000,
	}
}

// Validate rejects constants that would make the conversion meaningless.
func (c Calibration) Validate() error {
	const op = "tds.calibration"
	switch {
	case c.FullScaleV <= 0:
		return errcode.New(errcode.InvalidParams, op, "full-scale voltage must be positive")
	case c.MaxCode <= 0:
		return errcode.New(errcode.InvalidParams, op, "max code must be positive")
	case c.Alpha < 0:
		return errcode.New(errcode.InvalidParams, op, "alpha must not be negative")
	case c.Scale <= 0:
		return errcode.New(errcode.InvalidParams, op, "scale must be positive")
	case c.MaxPPM == 0:
		return errcode.New(errcode.InvalidParams, op, "max ppm must be set")
	}
	return nil
}

// Volts converts a raw code. Codes below zero are single-ended noise and clamp to 0 V.
func (c Calibration) Volts(raw int16) float32 {
	code := mathx.Max(int32(raw), 0)
	return float32(code) * c.FullScaleV / float32(c.MaxCode)
}

// Coefficient is the linear compensation divisor at temperature t.
func (c Calibration) Coefficient(t types.Temperature) float32 {
	return 1 + c.Alpha*(t.Celsius()-types.TemperatureRef.Celsius())
}

// Compensate converts raw at temperature t into ppm.
func (c Calibration) Compensate(raw int16, t types.Temperature) (types.PPM, error) {
	const op = "tds.compensate"
	if int32(raw) > c.MaxCode {
		return 0, errcode.New(errcode.OutOfRange, op, "code beyond converter span")
	}
	k := c.Coefficient(t)
	if k <= 0 {
		return 0, errcode.New(errcode.OutOfRange, op, "compensation coefficient not positive")
	}
	v := c.Volts(raw) / k
	ppm := (c.A3*v*v*v + c.A2*v*v + c.A1*v) * c.Scale
	if math32.IsNaN(ppm) || math32.IsInf(ppm, 0) {
		return 0, errcode.New(errcode.OutOfRange, op, "not a number")
	}
	ppm = math32.Round(mathx.Max(ppm, 0))
	if ppm > float32(c.MaxPPM) {
		return 0, errcode.New(errcode.OutOfRange, op, "above sane bound")
	}
	return types.PPM(ppm), nil
}

// Probe couples the ADC channel with the calibration.
type Probe struct {
	adc *ads1115.Device
	clk hal.Clock
	Cal Calibration
}

// New builds a probe on an ADS1115 channel. clk provides the conversion wait.
// The converter's gain fixes the volts behind MaxCode: a zero
// cal.FullScaleV takes it from the ADC, any other value must agree with it.
func New(cfg ads1115.Config, cal Calibration, clk hal.Clock) (*Probe, error) {
	adc, err := ads1115.New(cfg)
	if err != nil {
		return nil, err
	}
	adcV := float32(adc.FullScaleMV()) / 1000
	switch {
	case cal.FullScaleV == 0:
		cal.FullScaleV = adcV
	case math32.Abs(cal.FullScaleV-adcV) > 0.0005:
		return nil, ErrRangeMismatch
	}
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = hal.SystemClock{}
	}
	return &Probe{adc: adc, clk: clk, Cal: cal}, nil
}

// Budget is the worst-case time ReadRaw blocks.
func (p *Probe) Budget() time.Duration { return p.adc.Budget() }

// ReadRaw performs one single-shot conversion and returns the code.
func (p *Probe) ReadRaw(bus hal.I2C) (int16, error) {
	return p.adc.Read(bus, p.clk)
}

// Compensate converts a raw code at temperature t.
func (p *Probe) Compensate(raw int16, t types.Temperature) (types.PPM, error) {
	return p.Cal.Compensate(raw, t)
}
