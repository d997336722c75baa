// Package stores holds client-side state on top of the service layer. Each
// container is owned by its caller and safe for concurrent use.
package stores

import (
	"context"
	"errors"

	"github.com/iyunix/go-aichat/internal/domain"
	"github.com/iyunix/go-aichat/internal/envelope"
	"github.com/iyunix/go-aichat/internal/services/user_services"
)

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// AuthAPI is the slice of the auth service the user store drives.
type AuthAPI interface {
	Register(ctx context.Context, form user_services.RegisterForm) (*domain.User, error)
	Login(ctx context.Context, form user_services.LoginForm) (*user_services.LoginResult, error)
	CurrentUser(ctx context.Context) (*domain.User, error)
	Logout(ctx context.Context) error
}

// errorMessage is the text shown for err: the service's own message for
// typed errors, fallback for anything unexpected.
func errorMessage(err error, fallback string) string {
	var sc envelope.StatusCoder
	if !errors.As(err, &sc) {
		return fallback
	}
	return envelope.FromError[struct{}](err).Message
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
