package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"bus_timeout":       BusTimeout,
		"device_absent":     DeviceAbsent,
		"checksum_mismatch": ChecksumMismatch,
		"out_of_range":      OutOfRange,
		"ack_failure":       AckFailure,
		"timeout":           Timeout,
		"ok":                OK,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestOfUnwrapsThroughWrapping(t *testing.T) {
	base := New(ChecksumMismatch, "ds18b20.read", "crc")
	wrapped := fmt.Errorf("cycle 3: %w", base)

	if got := Of(wrapped); got != ChecksumMismatch {
		t.Fatalf("Of(wrapped) = %q, want %q", got, ChecksumMismatch)
	}
	if !errors.Is(wrapped, ChecksumMismatch) {
		t.Fatal("errors.Is should match the code through *E")
	}
	if errors.Is(wrapped, OutOfRange) {
		t.Fatal("errors.Is matched the wrong code")
	}
	if Of(nil) != OK {
		t.Fatal("Of(nil) should be OK")
	}
	if Of(errors.New("plain")) != Error {
		t.Fatal("plain errors map to Error")
	}
}

func TestFromI2C(t *testing.T) {
	if FromI2C("op", nil) != nil {
		t.Fatal("nil stays nil")
	}
	if got := Of(FromI2C("ads1115.write", errors.New("I2C: nack"))); got != AckFailure {
		t.Fatalf("nack -> %q, want ack_failure", got)
	}
	if got := Of(FromI2C("ads1115.write", Timeout)); got != BusTimeout {
		t.Fatalf("timeout -> %q, want bus_timeout", got)
	}
	if got := Of(FromI2C("ads1115.write", Busy)); got != BusTimeout {
		t.Fatalf("busy -> %q, want bus_timeout", got)
	}
}

func TestEErrorString(t *testing.T) {
	e := &E{C: DeviceAbsent, Op: "ds18b20.reset", Msg: "no presence pulse"}
	if got, want := e.Error(), "ds18b20.reset: device_absent: no presence pulse"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if got := (&E{C: OutOfRange}).Error(); got != "out_of_range" {
		t.Fatalf("bare Error() = %q", got)
	}
}
