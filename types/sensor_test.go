package types

import (
	"testing"

	"aquamon-go/errcode"
)

func TestChannelTransitions(t *testing.T) {
	var c Channel[PPM]
	if c.Status != StatusOK || c.Valid {
		t.Fatalf("zero channel = %+v", c)
	}

	c.Succeed(359)
	fail := errcode.New(errcode.AckFailure, "ads1115.trigger", "nack")

	steps := []struct {
		ok   bool
		want Status
	}{
		{false, StatusStale},
		{false, StatusStale},
		{false, StatusFault},
		{false, StatusFault},
		{true, StatusOK},
		{false, StatusStale},
		{true, StatusOK},
	}
	for i, s := range steps {
		if s.ok {
			c.Succeed(360)
		} else {
			c.Fail(fail, DefaultFaultAfter)
		}
		if c.Status != s.want {
			t.Fatalf("step %d: status = %s, want %s", i, c.Status, s.want)
		}
	}
	if c.Fails != 0 || c.Err != errcode.OK || c.Value != 360 {
		t.Fatalf("after success: %+v", c)
	}
}

func TestChannelKeepsLastGoodValue(t *testing.T) {
	var c Channel[Temperature]
	c.Succeed(336)
	c.Fail(errcode.DeviceAbsent, 3)

	if v, ok := c.Trusted(); !ok || v != 336 {
		t.Fatalf("stale Trusted = %d, %v; want 336, true", v, ok)
	}
	if c.Err != errcode.DeviceAbsent {
		t.Fatalf("Err = %s", c.Err)
	}
	c.Fail(errcode.DeviceAbsent, 3)
	c.Fail(errcode.DeviceAbsent, 3)
	if _, ok := c.Trusted(); ok {
		t.Fatal("faulted channel must not be trusted")
	}
	if !c.Valid || c.Value != 336 {
		t.Fatal("last good value must be retained under fault")
	}
}

func TestChannelNeverAcquired(t *testing.T) {
	var c Channel[Temperature]
	changed := c.Fail(errcode.BusTimeout, 2)
	if !changed || c.Status != StatusStale {
		t.Fatalf("first failure: changed=%v status=%s", changed, c.Status)
	}
	if _, ok := c.Trusted(); ok {
		t.Fatal("never-acquired channel must not be trusted")
	}
	if changed := c.Fail(errcode.BusTimeout, 2); !changed || c.Status != StatusFault {
		t.Fatalf("second failure with N=2: status=%s", c.Status)
	}
	if changed := c.Fail(errcode.BusTimeout, 2); changed {
		t.Fatal("fault to fault is not a change")
	}
}

func TestFaultAfterDefaultsWhenUnset(t *testing.T) {
	var c Channel[PPM]
	for i := 0; i < DefaultFaultAfter-1; i++ {
		c.Fail(errcode.Error, 0)
	}
	if c.Status != StatusStale {
		t.Fatalf("status = %s before default threshold", c.Status)
	}
	c.Fail(errcode.Error, 0)
	if c.Status != StatusFault {
		t.Fatalf("status = %s at default threshold", c.Status)
	}
}

func TestDeciCelsius(t *testing.T) {
	tests := []struct {
		raw  Temperature
		want int32
	}{
		{0, 0},
		{336, 210},
		{-56, -35},
		{1, 1},       // 0.0625 -> 0.1
		{-1, -1},     // -0.0625 -> -0.1
		{-162, -101}, // -10.125 -> -10.1
		{TemperatureMax, 1250},
		{TemperatureMin, -550},
	}
	for _, tc := range tests {
		if got := tc.raw.DeciCelsius(); got != tc.want {
			t.Errorf("DeciCelsius(%d) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestTemperatureFromDeci(t *testing.T) {
	for _, d := range []int32{0, 210, -35, 1250, -550, 255} {
		got := TemperatureFromDeci(d).DeciCelsius()
		if got != d {
			t.Errorf("round trip %d -> %d", d, got)
		}
	}
}
