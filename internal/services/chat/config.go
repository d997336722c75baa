// G:\go_aichat\internal\services\chat\config.go
package chat

import (
	"fmt"
	"time"
)

// Latency holds the simulated round-trip of each operation.
type Latency struct {
	List   time.Duration
	Create time.Duration
	Send   time.Duration
	Get    time.Duration
	Delete time.Duration
}

func DefaultLatency() Latency {
	return Latency{
		List:   500 * time.Millisecond,
		Create: 300 * time.Millisecond,
		Send:   200 * time.Millisecond,
		Get:    200 * time.Millisecond,
		Delete: 300 * time.Millisecond,
	}
}

type Config struct {
	MaxMessageLength int // in runes
	MaxTitleLength   int // in runes, for explicitly given titles

	SimulateLatency bool
	Latency         Latency
}

func (c *Config) Validate() error {
	if c.MaxMessageLength <= 0 {
		return fmt.Errorf("max_message_length must be positive")
	}
	if c.MaxTitleLength <= 0 {
		return fmt.Errorf("max_title_length must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		MaxMessageLength: 2000,
		MaxTitleLength:   100,
		SimulateLatency:  false,
		Latency:          DefaultLatency(),
	}
}
