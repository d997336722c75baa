package user_services

import (
	"errors"
	"time"
)

type Latency struct {
	Register time.Duration
	Login    time.Duration
	Current  time.Duration
	Logout   time.Duration
}

func DefaultLatency() Latency {
	return Latency{
		Register: 1000 * time.Millisecond,
		Login:    800 * time.Millisecond,
		Current:  300 * time.Millisecond,
		Logout:   200 * time.Millisecond,
	}
}

type Config struct {
	JWTSecretKey string
	TokenTTL     time.Duration

	SimulateLatency bool
	Latency         Latency
}

func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return errors.New("jwt secret key is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	return nil
}

func DefaultConfig(secret string) *Config {
	return &Config{
		JWTSecretKey: secret,
		TokenTTL:     7 * 24 * time.Hour,
		Latency:      DefaultLatency(),
	}
}
