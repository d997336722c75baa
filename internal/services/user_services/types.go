package user_services

import "github.com/iyunix/go-aichat/internal/domain"

// Logger interface for all user services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// RegisterForm is the registration payload. Type selects which of Email or
// Phone is required; the other one is optional.
type RegisterForm struct {
	Username        string             `json:"username"`
	Email           string             `json:"email,omitempty"`
	Phone           string             `json:"phone,omitempty"`
	Password        string             `json:"password"`
	ConfirmPassword string             `json:"confirmPassword"`
	Type            domain.AccountType `json:"type"`
}

// LoginForm identifies the account by email or phone, per Type.
type LoginForm struct {
	Account  string             `json:"account"`
	Password string             `json:"password"`
	Type     domain.AccountType `json:"type"`
}

type LoginResult struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

// mask keeps the first few characters of an identifier for log correlation.
func mask(s string) string {
	r := []rune(s)
	if len(r) <= 4 {
		return "****"
	}
	return string(r[:4]) + "****"
}
