// Package display composes the monitor's fixed two-line screen into a
// page-major frame buffer and pushes it to the SH1106 panel.
//
// Layout (128x64):
//
//	+--------------------------------------------+
//	|  21.0   °C  ?|   value x3, right-aligned in 5 cells; unit x1; marker
//	|   359  ppm   |
//	+--------------------------------------------+
//
// Render is a pure function of the snapshot; the frame is rebuilt from
// scratch every cycle.
package display

import (
	"strings"

	"aquamon-go/drivers/sh1106"
	"aquamon-go/hal"
	"aquamon-go/types"
	"aquamon-go/x/conv"
)

// Frame mirrors the panel RAM: 8 pages x 128 columns, bit y%8 of byte
// x + (y/8)*128 is pixel (x, y).
type Frame [sh1106.BufferSize]byte

func (f *Frame) Clear() { *f = Frame{} }

// SetPixel sets or clears (x, y). Coordinates off the panel are ignored.
func (f *Frame) SetPixel(x, y int, on bool) {
	if x < 0 || x >= sh1106.Width || y < 0 || y >= sh1106.Height {
		return
	}
	i := x + (y/8)*sh1106.Width
	if on {
		f[i] |= 1 << (y % 8)
	} else {
		f[i] &^= 1 << (y % 8)
	}
}

func (f *Frame) Pixel(x, y int) bool {
	if x < 0 || x >= sh1106.Width || y < 0 || y >= sh1106.Height {
		return false
	}
	return f[x+(y/8)*sh1106.Width]&(1<<(y%8)) != 0
}

// DrawText draws s with its top-left corner at (x, y), each font pixel
// scaled to a scale x scale block. It returns the x just past the last cell.
func (f *Frame) DrawText(x, y int, s string, scale int) int {
	if scale < 1 {
		scale = 1
	}
	for _, r := range s {
		g := glyph(r)
		for col := 0; col < glyphW; col++ {
			bits := g[col]
			for row := 0; row < glyphH; row++ {
				if bits&(1<<row) == 0 {
					continue
				}
				for dx := 0; dx < scale; dx++ {
					for dy := 0; dy < scale; dy++ {
						f.SetPixel(x+col*scale+dx, y+row*scale+dy, true)
					}
				}
			}
		}
		x += cellW * scale
	}
	return x
}

// TextWidth is the advance of s at scale.
func TextWidth(s string, scale int) int {
	n := 0
	for range s {
		n++
	}
	return n * cellW * scale
}

// String renders the frame as 64 rows of '#' and '.', for consoles and tests.
func (f *Frame) String() string {
	var b strings.Builder
	b.Grow((sh1106.Width + 1) * sh1106.Height)
	for y := 0; y < sh1106.Height; y++ {
		for x := 0; x < sh1106.Width; x++ {
			if f.Pixel(x, y) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ------------------------
// Layout
// ------------------------

const (
	valueScale  = 3
	valueCells  = 5
	fieldRight  = valueCells * cellW * valueScale // 90
	unitX       = fieldRight + 2
	markerX     = sh1106.Width - glyphW - 1
	line1Y      = 4
	line2Y      = 36
	unitBaseOff = glyphH * (valueScale - 1) // bottom-align x1 text with x3 digits

	TempPlaceholder = "--.-"
	TDSPlaceholder  = "---"
	TempUnit        = "°C"
	TDSUnit         = "ppm"
)

// Markers per status; OK has none.
func marker(s types.Status) string {
	switch s {
	case types.StatusStale:
		return "?"
	case types.StatusFault:
		return "!"
	default:
		return ""
	}
}

// Line is one rendered row in text form.
type Line struct {
	Value  string
	Unit   string
	Marker string
}

func (l Line) String() string {
	s := l.Value + " " + l.Unit
	if l.Marker != "" {
		s += " " + l.Marker
	}
	return s
}

// FormatTemperature writes t with one decimal, e.g. "21.0", "-0.5".
func FormatTemperature(t types.Temperature) string {
	d := t.DeciCelsius()
	neg := d < 0
	if neg {
		d = -d
	}
	var buf [12]byte
	ip := conv.Itoa(buf[:], int64(d/10))
	out := make([]byte, 0, len(ip)+3)
	if neg {
		out = append(out, '-')
	}
	out = append(out, ip...)
	out = append(out, '.', byte('0'+d%10))
	return string(out)
}

// FormatPPM writes a TDS reading as an integer.
func FormatPPM(p types.PPM) string {
	var buf [8]byte
	return string(conv.Itoa(buf[:], int64(p)))
}

// Lines returns the two rows as drawn. A channel without a trusted value
// shows its placeholder, never a number.
func Lines(s types.Snapshot) [2]Line {
	var out [2]Line
	out[0] = Line{Value: TempPlaceholder, Unit: TempUnit, Marker: marker(s.Temperature.Status)}
	if v, ok := s.Temperature.Trusted(); ok {
		out[0].Value = FormatTemperature(v)
	}
	out[1] = Line{Value: TDSPlaceholder, Unit: TDSUnit, Marker: marker(s.TDS.Status)}
	if v, ok := s.TDS.Trusted(); ok {
		out[1].Value = FormatPPM(v)
	}
	return out
}

// Text is Lines as plain strings.
func Text(s types.Snapshot) [2]string {
	l := Lines(s)
	return [2]string{l[0].String(), l[1].String()}
}

// Render rebuilds fb from s.
func Render(fb *Frame, s types.Snapshot) {
	fb.Clear()
	lines := Lines(s)
	for i, y := range [2]int{line1Y, line2Y} {
		drawLine(fb, y, lines[i])
	}
}

func drawLine(fb *Frame, y int, l Line) {
	v := l.Value
	if len(v) > valueCells {
		v = v[len(v)-valueCells:]
	}
	fb.DrawText(fieldRight-TextWidth(v, valueScale), y, v, valueScale)
	fb.DrawText(unitX, y+unitBaseOff, l.Unit, 1)
	if l.Marker != "" {
		fb.DrawText(markerX, y, l.Marker, 1)
	}
}

// Splash draws the boot screen shown before the first measurement.
func Splash(fb *Frame) {
	fb.Clear()
	const title, sub = "AQUAMON", "STARTING"
	fb.DrawText((sh1106.Width-TextWidth(title, 2))/2, 16, title, 2)
	fb.DrawText((sh1106.Width-TextWidth(sub, 1))/2, 40, sub, 1)
}

// ------------------------
// Panel
// ------------------------

// Panel pushes frames to the SH1106.
type Panel struct {
	dev *sh1106.Device
}

func NewPanel(cfg sh1106.Config) *Panel { return &Panel{dev: sh1106.New(cfg)} }

func (p *Panel) Init(bus hal.I2C) error { return p.dev.Init(bus) }

// Flush writes the complete frame; on error the caller retries with a full
// frame on a later cycle.
func (p *Panel) Flush(bus hal.I2C, fb *Frame) error {
	return p.dev.Flush(bus, (*[sh1106.BufferSize]byte)(fb))
}
