package user_services

import (
	"sync"
	"time"
)

const (
	MaxFailedAttempts = 5
	LockoutDuration   = 15 * time.Minute
)

type attempts struct {
	failures    int
	lockedUntil time.Time
}

// LockoutService tracks failed password checks per account and locks an
// account out after MaxFailedAttempts consecutive failures.
type LockoutService struct {
	mu       sync.Mutex
	accounts map[string]*attempts
	logger   Logger
	now      func() time.Time
}

func NewLockoutService(logger Logger) *LockoutService {
	if logger == nil {
		logger = nopLogger{}
	}
	return &LockoutService{
		accounts: make(map[string]*attempts),
		logger:   logger,
		now:      time.Now,
	}
}

// IsLocked reports whether the account is locked and for how much longer.
func (s *LockoutService) IsLocked(account string) (bool, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[account]
	if !ok || a.lockedUntil.IsZero() {
		return false, 0
	}
	remaining := a.lockedUntil.Sub(s.now())
	if remaining <= 0 {
		delete(s.accounts, account)
		return false, 0
	}
	return true, remaining
}

// RecordFailedAttempt counts a failure and reports whether it locked the account.
func (s *LockoutService) RecordFailedAttempt(account string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[account]
	if !ok {
		a = &attempts{}
		s.accounts[account] = a
	}
	a.failures++

	s.logger.Warn("failed login attempt recorded",
		"account", mask(account),
		"failures", a.failures,
		"max_attempts", MaxFailedAttempts)

	if a.failures >= MaxFailedAttempts {
		a.lockedUntil = s.now().Add(LockoutDuration)
		s.logger.Warn("account locked",
			"account", mask(account),
			"duration", LockoutDuration)
		return true
	}
	return false
}

func (s *LockoutService) Reset(account string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, account)
}
