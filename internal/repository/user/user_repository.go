package user

import (
	"context"
	"fmt"
	"sync"

	"github.com/iyunix/go-aichat/internal/domain"
	"github.com/iyunix/go-aichat/internal/repository/kv"
)

const (
	UsersKey       = "ai_chat_users"
	CurrentUserKey = "ai_chat_current_user"
)

type kvUserRepository struct {
	store kv.Store
	mu    sync.Mutex
}

func NewUserRepository(store kv.Store) UserRepository {
	return &kvUserRepository{store: store}
}

func (r *kvUserRepository) load(ctx context.Context) ([]domain.User, error) {
	users, err := kv.LoadArray[domain.User](ctx, r.store, UsersKey)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == "" {
			return nil, fmt.Errorf("%w: %s: record %d has no id", kv.ErrCorrupt, UsersKey, i)
		}
	}
	return users, nil
}

func (r *kvUserRepository) find(ctx context.Context, match func(u *domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if match(&users[i]) {
			u := users[i]
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *kvUserRepository) List(ctx context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *kvUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, ErrUserNotFound
	}
	return r.find(ctx, func(u *domain.User) bool { return u.ID == id })
}

func (r *kvUserRepository) FindByAccount(ctx context.Context, accountType domain.AccountType, account string) (*domain.User, error) {
	if account == "" {
		return nil, ErrUserNotFound
	}
	return r.find(ctx, func(u *domain.User) bool { return u.Account(accountType) == account })
}

func (r *kvUserRepository) FindByEmailOrPhone(ctx context.Context, email, phone string) (*domain.User, error) {
	return r.find(ctx, func(u *domain.User) bool {
		return (email != "" && u.Email == email) || (phone != "" && u.Phone == phone)
	})
}

// Create appends the user. Uniqueness is checked again under the lock so two
// concurrent registrations with the same email or phone cannot both succeed.
func (r *kvUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return fmt.Errorf("user id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if (user.Email != "" && u.Email == user.Email) || (user.Phone != "" && u.Phone == user.Phone) {
			return ErrDuplicate
		}
	}
	users = append(users, *user)
	return kv.SaveArray(ctx, r.store, UsersKey, users)
}

func (r *kvUserRepository) SetCurrent(ctx context.Context, user *domain.User) error {
	return kv.SaveObject(ctx, r.store, CurrentUserKey, user.Public())
}

func (r *kvUserRepository) Current(ctx context.Context) (*domain.User, error) {
	u, found, err := kv.LoadObject[domain.User](ctx, r.store, CurrentUserKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (r *kvUserRepository) ClearCurrent(ctx context.Context) error {
	return r.store.Remove(ctx, CurrentUserKey)
}
