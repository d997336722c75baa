package stores

import (
	"context"
	"sync"

	"github.com/iyunix/go-aichat/internal/domain"
	"github.com/iyunix/go-aichat/internal/services/user_services"
)

// UserStore tracks the signed-in user and session token.
type UserStore struct {
	mu      sync.RWMutex
	api     AuthAPI
	tokens  *TokenStore
	logger  Logger
	user    *domain.User
	token   string
	loading bool
	err     string
}

func NewUserStore(api AuthAPI, tokens *TokenStore, logger Logger) *UserStore {
	if logger == nil {
		logger = nopLogger{}
	}
	return &UserStore{api: api, tokens: tokens, logger: logger}
}

func (s *UserStore) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *UserStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *UserStore) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != ""
}

func (s *UserStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *UserStore) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *UserStore) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
}

func (s *UserStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	if v {
		s.err = ""
	}
	s.mu.Unlock()
}

// Initialize restores a persisted token and, when one exists, the user it
// belongs to.
func (s *UserStore) Initialize(ctx context.Context) {
	token, err := s.tokens.Get(ctx)
	if err != nil {
		s.logger.Warn("failed to read stored token", "error", err)
		return
	}
	if token == "" {
		return
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.FetchCurrentUser(ctx)
}

func (s *UserStore) Login(ctx context.Context, form user_services.LoginForm) bool {
	s.setLoading(true)
	defer s.setLoading(false)
	return s.login(ctx, form)
}

func (s *UserStore) login(ctx context.Context, form user_services.LoginForm) bool {
	res, err := s.api.Login(ctx, form)
	if err != nil {
		s.mu.Lock()
		s.err = errorMessage(err, "login failed, please retry")
		s.mu.Unlock()
		return false
	}
	if err := s.tokens.Set(ctx, res.Token); err != nil {
		s.logger.Warn("failed to persist token", "error", err)
	}

	s.mu.Lock()
	u := res.User
	s.user = &u
	s.token = res.Token
	s.mu.Unlock()
	return true
}

// Register creates the account and signs in with the same credentials.
func (s *UserStore) Register(ctx context.Context, form user_services.RegisterForm) bool {
	s.setLoading(true)
	defer s.setLoading(false)

	if _, err := s.api.Register(ctx, form); err != nil {
		s.mu.Lock()
		s.err = errorMessage(err, "registration failed, please retry")
		s.mu.Unlock()
		return false
	}

	login := user_services.LoginForm{
		Account:  form.Phone,
		Password: form.Password,
		Type:     domain.AccountTypePhone,
	}
	if form.Email != "" {
		login.Account = form.Email
		login.Type = domain.AccountTypeEmail
	}
	return s.login(ctx, login)
}

// FetchCurrentUser refreshes the user behind the stored token. Any failure
// signs the client out.
func (s *UserStore) FetchCurrentUser(ctx context.Context) {
	s.mu.RLock()
	hasToken := s.token != ""
	s.mu.RUnlock()
	if !hasToken {
		return
	}

	s.setLoading(true)
	u, err := s.api.CurrentUser(ctx)
	if err != nil {
		s.logger.Warn("failed to fetch current user", "error", err)
		s.Logout(ctx)
		return
	}
	s.mu.Lock()
	s.user = u
	s.loading = false
	s.mu.Unlock()
}

// Logout always clears local state, even if the service call fails.
func (s *UserStore) Logout(ctx context.Context) {
	s.setLoading(true)
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn("logout failed", "error", err)
	}
	if err := s.tokens.Remove(ctx); err != nil {
		s.logger.Warn("failed to remove token", "error", err)
	}
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.loading = false
	s.mu.Unlock()
}
