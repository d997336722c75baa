package user

import (
	"context"
	"errors"

	"github.com/iyunix/go-aichat/internal/domain"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrDuplicate    = errors.New("user already exists")
)

// UserRepository handles user data operations, plus the single "current
// user" pointer recorded at login.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByAccount(ctx context.Context, accountType domain.AccountType, account string) (*domain.User, error)
	// FindByEmailOrPhone matches on any non-empty identifier.
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error

	SetCurrent(ctx context.Context, user *domain.User) error
	Current(ctx context.Context) (*domain.User, error)
	ClearCurrent(ctx context.Context) error
}
