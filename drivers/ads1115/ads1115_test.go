package ads1115_test

import (
	"errors"
	"testing"
	"time"

	"tinygo.org/x/drivers/tester"

	"aquamon-go/drivers/ads1115"
	"aquamon-go/errcode"
	"aquamon-go/hal/platform"
)

func newBus(t *testing.T, conv uint16) (*tester.I2CBus, *tester.I2CDevice16) {
	bus := tester.NewI2CBus(t)
	dev := tester.NewI2CDevice16(t, ads1115.Address)
	dev.Registers[ads1115.RegConversion] = conv
	dev.Registers[ads1115.RegConfig] = 0x8583 // power-on value
	bus.AddDevice(dev)
	return bus, dev
}

func mustNew(t *testing.T, cfg ads1115.Config) *ads1115.Device {
	t.Helper()
	d, err := ads1115.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestConfigWord(t *testing.T) {
	tests := []struct {
		cfg  ads1115.Config
		want uint16
	}{
		{ads1115.Config{}, 0xC383},
		{ads1115.Config{Channel: 2}, 0xE383},
		{ads1115.Config{FullScaleMV: 2048, DataRate: 860}, 0xC5E3},
		{ads1115.Config{Channel: 3, FullScaleMV: 6144, DataRate: 8}, 0xF103},
	}
	for _, tc := range tests {
		if got := mustNew(t, tc.cfg).ConfigWord(); got != tc.want {
			t.Errorf("%+v: config = %#04x, want %#04x", tc.cfg, got, tc.want)
		}
	}
}

func TestNewRejectsUnsupportedSettings(t *testing.T) {
	for _, cfg := range []ads1115.Config{
		{FullScaleMV: 3300},
		{DataRate: 100},
		{Channel: 4},
	} {
		if _, err := ads1115.New(cfg); errcode.Of(err) != errcode.InvalidParams {
			t.Errorf("%+v: err = %v, want invalid_params", cfg, err)
		}
	}
}

func TestReadSingleShot(t *testing.T) {
	bus, dev := newBus(t, 6553)
	clk := platform.NewSimClock()
	d := mustNew(t, ads1115.Config{})

	code, err := d.Read(bus, clk)
	if err != nil {
		t.Fatal(err)
	}
	if code != 6553 {
		t.Fatalf("code = %d, want 6553", code)
	}
	if got := dev.Registers[ads1115.RegConfig]; got != 0xC383 {
		t.Fatalf("config register = %#04x, want 0xc383", got)
	}
	if want := 8593750 * time.Nanosecond; clk.Slept != want {
		t.Fatalf("slept %v, want %v (1/128 s + 10%%)", clk.Slept, want)
	}
}

func TestReadNegativeCodePassesThrough(t *testing.T) {
	bus, _ := newBus(t, 0xFFF0)
	code, err := mustNew(t, ads1115.Config{}).Read(bus, platform.NewSimClock())
	if err != nil || code != -16 {
		t.Fatalf("Read = %d, %v; want -16", code, err)
	}
}

func TestReadSaturationIsOutOfRange(t *testing.T) {
	for _, raw := range []uint16{0x7FFF, 0x8000} {
		bus, _ := newBus(t, raw)
		_, err := mustNew(t, ads1115.Config{}).Read(bus, platform.NewSimClock())
		if !errors.Is(err, errcode.OutOfRange) {
			t.Errorf("code %#04x: err = %v, want out_of_range", raw, err)
		}
	}
}

func TestReadNackIsAckFailure(t *testing.T) {
	bus, dev := newBus(t, 0)
	dev.Err = errors.New("i2c: nack")
	_, err := mustNew(t, ads1115.Config{}).Read(bus, platform.NewSimClock())
	if errcode.Of(err) != errcode.AckFailure {
		t.Fatalf("err = %v, want ack_failure", err)
	}
}

func TestReadPollsUntilReady(t *testing.T) {
	adc := platform.NewSimADC(1234)
	adc.Busy = 2
	bus := platform.NewSimI2C()
	bus.Attach(ads1115.Address, adc)
	clk := platform.NewSimClock()
	d := mustNew(t, ads1115.Config{PollInterval: 2 * time.Millisecond})

	code, err := d.Read(bus, clk)
	if err != nil || code != 1234 {
		t.Fatalf("Read = %d, %v", code, err)
	}
	if want := d.ConversionTime() + 4*time.Millisecond; clk.Slept != want {
		t.Fatalf("slept %v, want %v", clk.Slept, want)
	}
}

func TestReadStillBusyIsBusTimeout(t *testing.T) {
	adc := platform.NewSimADC(1234)
	adc.Busy = 100
	bus := platform.NewSimI2C()
	bus.Attach(ads1115.Address, adc)
	clk := platform.NewSimClock()
	d := mustNew(t, ads1115.Config{})

	_, err := d.Read(bus, clk)
	if errcode.Of(err) != errcode.BusTimeout {
		t.Fatalf("err = %v, want bus_timeout", err)
	}
	if clk.Slept > d.Budget() {
		t.Fatalf("slept %v beyond budget %v", clk.Slept, d.Budget())
	}
}
