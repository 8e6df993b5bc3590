package main

import (
	"context"
	"time"

	"aquamon-go/hal/platform"
	"aquamon-go/services/config"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[main] boot", platform.DefaultBoard)

	cfg, err := config.Load(platform.DefaultBoard)
	if err != nil {
		println("[main] config:", err.Error(), "- using defaults")
		cfg = config.Default()
	}

	b, err := platform.Open(cfg)
	if err != nil {
		halt("[main] platform: " + err.Error())
	}

	m, err := config.NewMonitor(cfg, b)
	if err != nil {
		halt("[main] monitor: " + err.Error())
	}

	println("[main] running, idle", cfg.Schedule.Idle.String())
	_ = m.Run(context.Background())
}

// halt keeps reporting a boot failure; there is no one to return to.
func halt(msg string) {
	for {
		println(msg)
		time.Sleep(5 * time.Second)
	}
}
