package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquamon-go/drivers/tds"
	"aquamon-go/errcode"
	"aquamon-go/types"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "pico", cfg.Board)
	assert.Equal(t, uint8(12), cfg.Thermometer.Resolution)
	assert.Equal(t, uint16(0x48), cfg.ADC.Address)
	assert.Equal(t, uint16(0x3C), cfg.Display.Address)
	assert.Equal(t, 5*time.Second, cfg.Schedule.Idle)
	assert.Equal(t, 3, cfg.Schedule.FaultAfter)
	assert.Equal(t, float32(4.096), cfg.Probe.FullScaleV)
	assert.Equal(t, uint16(2000), cfg.Probe.MaxPPM)
	require.NoError(t, Validate(cfg))
}

func TestLoadEmbeddedBoards(t *testing.T) {
	pico, err := Load("pico")
	require.NoError(t, err)
	assert.Equal(t, 16, pico.Thermometer.Pin)
	assert.Equal(t, uint32(400000), pico.ADC.Hz)
	assert.True(t, pico.Console.Enabled)
	assert.Equal(t, uint32(115200), pico.Console.Baud)

	sim, err := Load("sim")
	require.NoError(t, err)
	assert.Equal(t, "sim", sim.Board)
	assert.Equal(t, time.Second, sim.Schedule.Idle)
	// omitted sections keep their defaults
	assert.Equal(t, Default().Probe, sim.Probe)
	assert.Equal(t, Default().ADC, sim.ADC)
}

func TestLoadUnknownBoard(t *testing.T) {
	_, err := Load("esp32")
	require.Error(t, err)
	assert.Equal(t, errcode.InvalidParams, errcode.Of(err))
}

func TestLoadUsesLookupOverride(t *testing.T) {
	old := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(board string) ([]byte, bool) {
		// 500 ppm/V over a 3.3 V span, expressed on the 4.096 V adc range
		return []byte("probe:\n  a3: 0\n  a2: 0\n  a1: 402.83203125\n  scale: 1\n"), board == "bench"
	}
	t.Cleanup(func() { EmbeddedConfigLookup = old })

	cfg, err := Load("bench")
	require.NoError(t, err)
	assert.Equal(t, "bench", cfg.Board)

	cal := Calibration(cfg)
	assert.Equal(t, float32(402.83203125), cal.A1)
	assert.Equal(t, float32(0), cal.A3)
	ppm, err := cal.Compensate(6553, 21*16)
	require.NoError(t, err)
	assert.Equal(t, types.PPM(359), ppm)
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"bad yaml":             "schedule: [",
		"resolution":           "thermometer:\n  resolution: 8\n",
		"data rate":            "adc:\n  data_rate: 100\n",
		"full scale":           "adc:\n  full_scale_mv: 3300\n",
		"gain without range":   "adc:\n  full_scale_mv: 2048\n",
		"range without gain":   "probe:\n  full_scale_v: 3.3\n",
		"shared address":       "display:\n  address: 0x48\n",
		"calibration":          "probe:\n  scale: 0\n",
		"fault threshold":      "schedule:\n  fault_after: 0\n",
		"console without baud": "console:\n  enabled: true\n  baud: 0\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.Equal(t, errcode.InvalidParams, errcode.Of(err))
		})
	}
}

func TestDriverSettings(t *testing.T) {
	cfg := Default()
	cfg.ADC.Channel = 2
	cfg.Display.ReinitAfter = 5

	assert.Equal(t, uint8(2), ADC(cfg).Channel)
	assert.Equal(t, uint8(12), Thermometer(cfg).Resolution)
	assert.Equal(t, uint16(0x3C), Panel(cfg).Address)

	s := Schedule(cfg)
	assert.Equal(t, 5, s.ReinitAfter)
	assert.Equal(t, 5*time.Second, s.Idle)
	assert.True(t, s.Splash)
}

func TestProbeRangeFollowsADCGain(t *testing.T) {
	cfg, err := Parse([]byte("adc:\n  full_scale_mv: 2048\nprobe:\n  full_scale_v: 2.048\n"))
	require.NoError(t, err)
	assert.Equal(t, uint16(2048), ADC(cfg).FullScaleMV)

	// zero defers to the converter
	cfg, err = Parse([]byte("adc:\n  full_scale_mv: 1024\nprobe:\n  full_scale_v: 0\n"))
	require.NoError(t, err)
	p, err := tds.New(ADC(cfg), Calibration(cfg), nil)
	require.NoError(t, err)
	assert.Equal(t, float32(1.024), p.Cal.FullScaleV)
}
