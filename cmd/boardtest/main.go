// cmd/boardtest/main.go
//
// Bring-up check for a freshly assembled board: reads the thermometer ROM,
// takes one reading from each sensor, lights the panel with a test pattern
// and then repeats the sensor reads forever.
package main

import (
	"time"

	"aquamon-go/display"
	"aquamon-go/drivers/ds18b20"
	"aquamon-go/drivers/tds"
	"aquamon-go/errcode"
	"aquamon-go/hal/platform"
	"aquamon-go/services/config"
	"aquamon-go/types"
	"aquamon-go/x/conv"
)

// ---------- Configuration ----------

const (
	usbSettle   = 2 * time.Second
	patternHold = 2 * time.Second
	repeatEvery = 2 * time.Second

	// Cycles: 0 = loop forever
	cyclesToRun = 0
)

// ---------- Helpers ----------

func itoa(n int64) string {
	var buf [20]byte
	return string(conv.Itoa(buf[:], n))
}

func result(step string, err error) bool {
	if err != nil {
		println("[boardtest]", step, "FAIL", string(errcode.Of(err)), "-", err.Error())
		return false
	}
	println("[boardtest]", step, "ok")
	return true
}

// checkerboard fills 8x8 blocks so dead rows or columns stand out.
func checkerboard(f *display.Frame) {
	f.Clear()
	for y := 0; y < 64; y++ {
		for x := 0; x < 128; x++ {
			f.SetPixel(x, y, (x/8+y/8)%2 == 0)
		}
	}
}

func main() {
	time.Sleep(usbSettle)

	cfg, err := config.Load(platform.DefaultBoard)
	if err != nil {
		println("[boardtest] config:", err.Error(), "- using defaults")
		cfg = config.Default()
	}
	b, err := platform.Open(cfg)
	if !result("platform open", err) {
		return
	}

	therm := ds18b20.New(config.Thermometer(cfg))
	rom, err := therm.ReadROM(b.OneWire)
	if result("ds18b20 rom", err) {
		println("[boardtest]   rom", string(conv.AppendHex(nil, rom[:])))
	}
	result("ds18b20 configure", therm.Configure(b.OneWire))

	probe, err := tds.New(config.ADC(cfg), config.Calibration(cfg), b.Clock)
	if !result("tds probe config", err) {
		return
	}

	panel := display.NewPanel(config.Panel(cfg))
	var f display.Frame
	if result("sh1106 init", panel.Init(b.I2C)) {
		checkerboard(&f)
		result("sh1106 pattern", panel.Flush(b.I2C, &f))
		time.Sleep(patternHold)
		display.Splash(&f)
		result("sh1106 splash", panel.Flush(b.I2C, &f))
	}

	for n := 1; cyclesToRun == 0 || n <= cyclesToRun; n++ {
		ref := types.TemperatureRef
		t, err := therm.ConvertAndRead(b.OneWire, b.Clock)
		if result("temperature", err) {
			println("[boardtest]   ", display.FormatTemperature(t), "C raw", itoa(int64(t)))
			ref = t
		}
		raw, err := probe.ReadRaw(b.I2C)
		if result("adc", err) {
			ppm, cerr := probe.Compensate(raw, ref)
			if result("tds", cerr) {
				println("[boardtest]   ", display.FormatPPM(ppm), "ppm raw", itoa(int64(raw)))
			}
		}
		time.Sleep(repeatEvery)
	}
}
