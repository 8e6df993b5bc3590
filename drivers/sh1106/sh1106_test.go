package sh1106_test

import (
	"testing"

	"aquamon-go/drivers/sh1106"
	"aquamon-go/errcode"
	"aquamon-go/hal/platform"
)

func setup() (*platform.SimI2C, *platform.SimPanel, *sh1106.Device) {
	bus := platform.NewSimI2C()
	panel := platform.NewSimPanel()
	bus.Attach(sh1106.Address, panel)
	return bus, panel, sh1106.New(sh1106.Config{})
}

func pattern() *[sh1106.BufferSize]byte {
	var buf [sh1106.BufferSize]byte
	for i := range buf {
		buf[i] = byte(i*7 + i/128)
	}
	return &buf
}

func TestInitTurnsPanelOn(t *testing.T) {
	bus, panel, d := setup()
	if err := d.Init(bus); err != nil {
		t.Fatal(err)
	}
	if !panel.On || panel.Inits != 1 {
		t.Fatalf("panel on=%v inits=%d", panel.On, panel.Inits)
	}
}

func TestFlushWritesVisibleColumns(t *testing.T) {
	bus, panel, d := setup()
	buf := pattern()
	if err := d.Flush(bus, buf); err != nil {
		t.Fatal(err)
	}
	if got := panel.Visible(); got != *buf {
		t.Fatal("panel RAM does not match the flushed buffer")
	}
	if panel.Pages != sh1106.Pages {
		t.Fatalf("data writes = %d, want %d", panel.Pages, sh1106.Pages)
	}
	if bus.Txs != 2*sh1106.Pages {
		t.Fatalf("transactions = %d, want %d", bus.Txs, 2*sh1106.Pages)
	}
}

func TestFlushFailureAbortsAndNextFlushHeals(t *testing.T) {
	bus, panel, d := setup()
	old := [sh1106.BufferSize]byte{}
	_ = d.Flush(bus, &old)

	panel.FailAt = 7 // page 3 command
	buf := pattern()
	err := d.Flush(bus, buf)
	if errcode.Of(err) != errcode.AckFailure {
		t.Fatalf("err = %v, want ack_failure", err)
	}
	if panel.Pages != sh1106.Pages+3 {
		t.Fatalf("pages written before abort = %d", panel.Pages-sh1106.Pages)
	}

	if err := d.Flush(bus, buf); err != nil {
		t.Fatal(err)
	}
	if got := panel.Visible(); got != *buf {
		t.Fatal("full rewrite did not restore the frame")
	}
}

func TestFlushWithoutPanelIsAckFailure(t *testing.T) {
	bus := platform.NewSimI2C()
	err := sh1106.New(sh1106.Config{}).Flush(bus, pattern())
	if errcode.Of(err) != errcode.AckFailure {
		t.Fatalf("err = %v", err)
	}
}
