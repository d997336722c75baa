// G:\go_aichat\internal\services\user_services\auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iyunix/go-aichat/internal/auth"
	"github.com/iyunix/go-aichat/internal/domain"
	"github.com/iyunix/go-aichat/internal/repository/user"
	"github.com/iyunix/go-aichat/internal/services/latency"
)

type AuthService struct {
	userRepo user.UserRepository
	config   *Config
	lockout  *LockoutService
	logger   Logger
	now      func() time.Time
}

func NewAuthService(userRepo user.UserRepository, config *Config, lockout *LockoutService, logger Logger) (*AuthService, error) {
	if userRepo == nil {
		return nil, errors.New("user repository is required")
	}
	if config == nil {
		return nil, errors.New("auth config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid auth config: %w", err)
	}
	if logger == nil {
		logger = nopLogger{}
	}
	if lockout == nil {
		lockout = NewLockoutService(logger)
	}
	return &AuthService{
		userRepo: userRepo,
		config:   config,
		lockout:  lockout,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Register creates a new user. Email and phone must both be unused.
func (s *AuthService) Register(ctx context.Context, form RegisterForm) (*domain.User, error) {
	const op = "register"
	if err := s.pause(ctx, s.config.Latency.Register); err != nil {
		return nil, newServiceError(op, "request canceled", err)
	}

	if msg := validateRegisterForm(&form); msg != "" {
		s.logger.Warn("registration validation failed",
			"username", mask(form.Username),
			"error", msg)
		return nil, newValidationError(op, msg)
	}

	existing, err := s.userRepo.FindByEmailOrPhone(ctx, form.Email, form.Phone)
	if err == nil && existing != nil {
		s.logger.Warn("registration failed - user already exists",
			"email", mask(form.Email),
			"phone", mask(form.Phone),
			"existing_user_id", existing.ID)
		return nil, newValidationError(op, "user already exists")
	}
	if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		s.logger.Error("user lookup failed", "error", err)
		return nil, newServiceError(op, "registration failed", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("password hashing failed", "error", err)
		return nil, newServiceError(op, "registration failed", err)
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Username:     form.Username,
		Email:        form.Email,
		Phone:        form.Phone,
		PasswordHash: string(hashed),
		CreatedAt:    s.now(),
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrDuplicate) {
			return nil, newValidationError(op, "user already exists")
		}
		s.logger.Error("user creation failed", "error", err, "username", mask(form.Username))
		return nil, newServiceError(op, "registration failed", err)
	}

	s.logger.Info("user registered successfully",
		"username", mask(u.Username),
		"user_id", u.ID)

	public := u.Public()
	return &public, nil
}

// Login authenticates by email or phone and returns a signed session token.
// Legacy records without a stored hash skip the password check.
func (s *AuthService) Login(ctx context.Context, form LoginForm) (*LoginResult, error) {
	const op = "login"
	if err := s.pause(ctx, s.config.Latency.Login); err != nil {
		return nil, newServiceError(op, "request canceled", err)
	}

	if msg := validateLoginForm(&form); msg != "" {
		return nil, newValidationError(op, msg)
	}

	if locked, remaining := s.lockout.IsLocked(form.Account); locked {
		s.logger.Warn("login attempt on locked account",
			"account", mask(form.Account),
			"remaining", remaining)
		return nil, newUnauthorizedError(op,
			fmt.Sprintf("too many failed attempts, try again in %d minutes", int(remaining.Minutes())+1), nil)
	}

	u, err := s.userRepo.FindByAccount(ctx, form.Type, form.Account)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.logger.Warn("login failed - user not found", "account", mask(form.Account))
			return nil, newNotFoundError(op, "user not found")
		}
		s.logger.Error("user lookup failed", "error", err)
		return nil, newServiceError(op, "login failed", err)
	}

	if u.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(form.Password)); err != nil {
			s.lockout.RecordFailedAttempt(form.Account)
			s.logger.Warn("login failed - invalid password",
				"account", mask(form.Account),
				"user_id", u.ID)
			return nil, newUnauthorizedError(op, "invalid credentials", nil)
		}
	}
	s.lockout.Reset(form.Account)

	token, err := s.generateJWTToken(u)
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "user_id", u.ID)
		return nil, newServiceError(op, "login failed", err)
	}

	if err := s.userRepo.SetCurrent(ctx, u); err != nil {
		s.logger.Error("failed to record current user", "error", err, "user_id", u.ID)
		return nil, newServiceError(op, "login failed", err)
	}

	s.logger.Info("login successful", "account", mask(form.Account), "user_id", u.ID)
	return &LoginResult{User: u.Public(), Token: token}, nil
}

// CurrentUser returns the user recorded by the last successful login.
func (s *AuthService) CurrentUser(ctx context.Context) (*domain.User, error) {
	const op = "current_user"
	if err := s.pause(ctx, s.config.Latency.Current); err != nil {
		return nil, newServiceError(op, "request canceled", err)
	}

	u, err := s.userRepo.Current(ctx)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, newUnauthorizedError(op, "not logged in", nil)
		}
		return nil, newServiceError(op, "failed to load current user", err)
	}
	public := u.Public()
	return &public, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	const op = "logout"
	if err := s.pause(ctx, s.config.Latency.Logout); err != nil {
		return newServiceError(op, "request canceled", err)
	}
	if err := s.userRepo.ClearCurrent(ctx); err != nil {
		s.logger.Error("logout failed", "error", err)
		return newServiceError(op, "logout failed", err)
	}
	s.logger.Info("user logged out")
	return nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, newNotFoundError("get_user", "user not found")
		}
		return nil, newServiceError("get_user", "failed to load user", err)
	}
	public := u.Public()
	return &public, nil
}

// ValidateToken verifies a session token and returns the user ID it carries.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	const op = "validate_token"
	if tokenString == "" {
		return "", newUnauthorizedError(op, "missing token", nil)
	}

	sub, err := auth.ParseJWT(tokenString, []byte(s.config.JWTSecretKey), s.now)
	if err != nil {
		s.logger.Debug("JWT token validation failed", "error", err)
		return "", newUnauthorizedError(op, "invalid token", err)
	}
	return sub, nil
}

func (s *AuthService) generateJWTToken(u *domain.User) (string, error) {
	return auth.GenerateJWT(u.ID, []byte(s.config.JWTSecretKey), s.config.TokenTTL, s.now())
}

func (s *AuthService) pause(ctx context.Context, d time.Duration) error {
	if !s.config.SimulateLatency {
		return nil
	}
	return latency.Sleep(ctx, d)
}
