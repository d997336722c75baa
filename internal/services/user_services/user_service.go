// File: internal/services/user_services/user_service.go
package user_services

import (
	"context"

	"github.com/iyunix/go-aichat/internal/domain"
	"github.com/iyunix/go-aichat/internal/repository/user"
)

// UserService is the main service that composes other user-related services
type UserService struct {
	*AuthService
	*LockoutService
}

// NewUserService wires the auth flow to a shared lockout tracker.
func NewUserService(userRepo user.UserRepository, config *Config, logger Logger) (*UserService, error) {
	lockoutService := NewLockoutService(logger)
	authService, err := NewAuthService(userRepo, config, lockoutService, logger)
	if err != nil {
		return nil, err
	}
	return &UserService{
		AuthService:    authService,
		LockoutService: lockoutService,
	}, nil
}

// UserServiceInterface defines the complete interface for user operations
type UserServiceInterface interface {
	Register(ctx context.Context, form RegisterForm) (*domain.User, error)
	Login(ctx context.Context, form LoginForm) (*LoginResult, error)
	CurrentUser(ctx context.Context) (*domain.User, error)
	Logout(ctx context.Context) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	ValidateToken(token string) (string, error)
}

var _ UserServiceInterface = (*UserService)(nil)
