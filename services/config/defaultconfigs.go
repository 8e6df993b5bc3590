package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: board name passed to Load.
// Val: YAML overlaid on Default().
// -----------------------------------------------------------------------------

// Raspberry Pi Pico: DS18B20 on GP16, ADS1115 and SH1106 on I2C0 (GP4/GP5).
const cfgPico = `
board: pico
thermometer:
  pin: 16
  resolution: 12
adc:
  bus: i2c0
  sda: 4
  scl: 5
  hz: 400000
  address: 0x48
  channel: 0
  full_scale_mv: 4096
  data_rate: 128
display:
  address: 0x3c
  splash: true
schedule:
  idle: 5s
  fault_after: 3
console:
  enabled: true
  uart: uart0
  baud: 115200
  tx: 0
  rx: 1
`

// Host simulation: shorter idle so a run shows several cycles quickly.
const cfgSim = `
board: sim
schedule:
  idle: 1s
console:
  enabled: true
`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
	"sim":  []byte(cfgSim),
}
