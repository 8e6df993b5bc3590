package display

import (
	"strings"
	"testing"

	"aquamon-go/drivers/sh1106"
	"aquamon-go/errcode"
	"aquamon-go/hal/platform"
	"aquamon-go/types"
)

func snap(temp *types.Temperature, ppm *types.PPM) types.Snapshot {
	var s types.Snapshot
	if temp != nil {
		s.Temperature.Succeed(*temp)
	}
	if ppm != nil {
		s.TDS.Succeed(*ppm)
	}
	return s
}

func ptr[T any](v T) *T { return &v }

func TestTextNeverAcquiredShowsPlaceholders(t *testing.T) {
	got := Text(types.Snapshot{})
	want := [2]string{"--.- °C", "--- ppm"}
	if got != want {
		t.Fatalf("Text = %q, want %q", got, want)
	}
	for _, l := range got {
		if strings.ContainsRune(l, '0') {
			t.Fatalf("placeholder line %q contains a zero", l)
		}
	}
}

func TestTextZeroIsALiteralZero(t *testing.T) {
	got := Text(snap(ptr(types.Temperature(0)), ptr(types.PPM(0))))
	want := [2]string{"0.0 °C", "0 ppm"}
	if got != want {
		t.Fatalf("Text = %q, want %q", got, want)
	}
}

func TestTextValuesAndMarkers(t *testing.T) {
	s := snap(ptr(types.Temperature(336)), ptr(types.PPM(359)))
	if got := Text(s); got != [2]string{"21.0 °C", "359 ppm"} {
		t.Fatalf("ok: %q", got)
	}

	s.TDS.Fail(errcode.AckFailure, 3)
	if got := Text(s)[1]; got != "359 ppm ?" {
		t.Fatalf("stale: %q", got)
	}
	s.TDS.Fail(errcode.AckFailure, 3)
	s.TDS.Fail(errcode.AckFailure, 3)
	if got := Text(s)[1]; got != "--- ppm !" {
		t.Fatalf("fault: %q", got)
	}
	if got := Text(s)[0]; got != "21.0 °C" {
		t.Fatalf("temperature line changed: %q", got)
	}
}

func TestFormatTemperature(t *testing.T) {
	tests := []struct {
		in   types.Temperature
		want string
	}{
		{336, "21.0"},
		{-56, "-3.5"},
		{-8, "-0.5"},
		{-1, "-0.1"},
		{0, "0.0"},
		{types.TemperatureMax, "125.0"},
		{types.TemperatureMin, "-55.0"},
		{405, "25.3"},
	}
	for _, tc := range tests {
		if got := FormatTemperature(tc.in); got != tc.want {
			t.Errorf("FormatTemperature(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDrawTextGlyphColumns(t *testing.T) {
	var f Frame
	end := f.DrawText(0, 0, "1", 1)
	if end != cellW {
		t.Fatalf("advance = %d", end)
	}
	// '1' column 2 is 0x7F: rows 0..6 lit, row 7 dark.
	for y := 0; y < 7; y++ {
		if !f.Pixel(2, y) {
			t.Fatalf("pixel (2,%d) dark", y)
		}
	}
	if f.Pixel(2, 7) || f.Pixel(5, 3) {
		t.Fatal("pixel outside glyph lit")
	}
	if f[2] != 0x7F {
		t.Fatalf("page 0 column 2 = %#02x, want 0x7f", f[2])
	}
}

func TestRenderPlaceholderDiffersFromZero(t *testing.T) {
	var none, zero Frame
	Render(&none, types.Snapshot{})
	Render(&zero, snap(ptr(types.Temperature(0)), ptr(types.PPM(0))))
	if none == zero {
		t.Fatal("no-data frame renders identically to a zero reading")
	}

	var want Frame
	want.DrawText(fieldRight-TextWidth("0.0", valueScale), line1Y, "0.0", valueScale)
	want.DrawText(unitX, line1Y+unitBaseOff, TempUnit, 1)
	want.DrawText(fieldRight-TextWidth("0", valueScale), line2Y, "0", valueScale)
	want.DrawText(unitX, line2Y+unitBaseOff, TDSUnit, 1)
	if zero != want {
		t.Fatal("zero reading frame does not match the expected layout")
	}
}

func TestRenderIsRebuiltEachTime(t *testing.T) {
	var f Frame
	s := snap(ptr(types.Temperature(336)), nil)
	s.TDS.Fail(errcode.BusTimeout, 3)
	Render(&f, s)
	first := f

	for i := range f {
		f[i] = 0xFF
	}
	Render(&f, s)
	if f != first {
		t.Fatal("render depends on previous frame contents")
	}
	// stale marker at the right edge of line 2
	lit := false
	for x := markerX; x < markerX+glyphW; x++ {
		for y := line2Y; y < line2Y+glyphH; y++ {
			lit = lit || f.Pixel(x, y)
		}
	}
	if !lit {
		t.Fatal("stale marker not drawn")
	}
}

func TestValueStaysInsideField(t *testing.T) {
	var f Frame
	Render(&f, snap(ptr(types.TemperatureMin), ptr(types.PPM(65535))))
	for y := 0; y < sh1106.Height; y++ {
		for x := fieldRight; x < unitX; x++ {
			if f.Pixel(x, y) {
				t.Fatalf("value spilled into the unit gap at (%d,%d)", x, y)
			}
		}
	}
}

func TestSplash(t *testing.T) {
	var f Frame
	Splash(&f)
	if f == (Frame{}) {
		t.Fatal("splash is blank")
	}
}

func TestPanelFlush(t *testing.T) {
	bus := platform.NewSimI2C()
	sim := platform.NewSimPanel()
	bus.Attach(sh1106.Address, sim)
	p := NewPanel(sh1106.Config{})
	if err := p.Init(bus); err != nil {
		t.Fatal(err)
	}
	var f Frame
	Render(&f, snap(ptr(types.Temperature(336)), ptr(types.PPM(359))))
	if err := p.Flush(bus, &f); err != nil {
		t.Fatal(err)
	}
	if sim.Visible() != [sh1106.BufferSize]byte(f) {
		t.Fatal("panel does not show the rendered frame")
	}
}
