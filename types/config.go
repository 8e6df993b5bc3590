package types

import "time"

// MonitorConfig is the board configuration consumed at boot.
// Zero fields are replaced by defaults in services/config.
type MonitorConfig struct {
	Board       string            `yaml:"board"`
	Thermometer ThermometerConfig `yaml:"thermometer"`
	ADC         ADCConfig         `yaml:"adc"`
	Probe       ProbeConfig       `yaml:"probe"`
	Display     DisplayConfig     `yaml:"display"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
	Console     ConsoleConfig     `yaml:"console"`
}

type ThermometerConfig struct {
	Pin        int   `yaml:"pin"`        // GPIO carrying the one-wire line
	Resolution uint8 `yaml:"resolution"` // 9..12 bits
}

type ADCConfig struct {
	Bus          string        `yaml:"bus"` // "i2c0", "i2c1"
	SDA          int           `yaml:"sda"`
	SCL          int           `yaml:"scl"`
	Hz           uint32        `yaml:"hz"`
	Address      uint16        `yaml:"address"`
	Channel      uint8         `yaml:"channel"`        // AIN0..AIN3
	FullScaleMV  uint16        `yaml:"full_scale_mv"`  // PGA range: 6144, 4096, 2048, 1024, 512, 256
	DataRate     uint16        `yaml:"data_rate"`      // samples per second
	PollInterval time.Duration `yaml:"poll_interval"`  // between OS-bit polls
	PollAttempts int           `yaml:"poll_attempts"`  // bounded; then bus_timeout
}

type ProbeConfig struct {
	FullScaleV float32 `yaml:"full_scale_v"` // voltage represented by MaxCode; 0 follows adc.full_scale_mv
	MaxCode    int32   `yaml:"max_code"`
	Alpha      float32 `yaml:"alpha"` // per °C around 25°C
	A3         float32 `yaml:"a3"`
	A2         float32 `yaml:"a2"`
	A1         float32 `yaml:"a1"`
	Scale      float32 `yaml:"scale"`
	MaxPPM     uint16  `yaml:"max_ppm"`
}

type DisplayConfig struct {
	Address     uint16 `yaml:"address"`
	ReinitAfter int    `yaml:"reinit_after"` // consecutive flush failures before re-init
	Splash      bool   `yaml:"splash"`
}

type ScheduleConfig struct {
	Idle       time.Duration `yaml:"idle"`
	FaultAfter int           `yaml:"fault_after"`
}

type ConsoleConfig struct {
	Enabled bool   `yaml:"enabled"`
	UART    string `yaml:"uart"` // "uart0", "uart1"
	Baud    uint32 `yaml:"baud"`
	TX      int    `yaml:"tx"`
	RX      int    `yaml:"rx"`
}
