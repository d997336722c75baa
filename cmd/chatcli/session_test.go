package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-aichat/internal/domain"
	"github.com/iyunix/go-aichat/internal/repository/conversation"
	"github.com/iyunix/go-aichat/internal/repository/kv"
	"github.com/iyunix/go-aichat/internal/repository/user"
	"github.com/iyunix/go-aichat/internal/services/ai"
	"github.com/iyunix/go-aichat/internal/services/chat"
	"github.com/iyunix/go-aichat/internal/services/filter"
	"github.com/iyunix/go-aichat/internal/services/user_services"
	"github.com/iyunix/go-aichat/internal/stores"
)

type echoAI struct{}

func (echoAI) Generate(ctx context.Context, history []domain.Message, msg string) ai.Response {
	return ai.Response{Content: "echo: " + msg}
}

func (echoAI) GenerateStream(ctx context.Context, history []domain.Message, msg string, onChunk func(string) error) ai.Response {
	for _, part := range []string{"echo: ", msg} {
		if err := onChunk(part); err != nil {
			return ai.Response{Error: err.Error()}
		}
	}
	return ai.Response{Content: "echo: " + msg}
}

type fixedHealth ai.HealthStatus

func (h fixedHealth) CheckHealth(context.Context) ai.HealthStatus { return ai.HealthStatus(h) }

func newSession(t *testing.T) (*session, *bytes.Buffer) {
	t.Helper()
	return newSessionOn(t, kv.NewMemoryStore())
}

func newSessionOn(t *testing.T, store kv.Store) (*session, *bytes.Buffer) {
	t.Helper()

	chatSvc, err := chat.NewConversationService(nil,
		conversation.NewConversationRepository(store), echoAI{}, filter.Default(), nil, nil)
	require.NoError(t, err)
	userSvc, err := user_services.NewUserService(user.NewUserRepository(store),
		user_services.DefaultConfig("test-secret"), nil)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	s := &session{
		out:    out,
		chat:   stores.NewChatStore(chatSvc, nil),
		users:  stores.NewUserStore(userSvc, stores.NewTokenStore(store), nil),
		health: fixedHealth{IsHealthy: true},
		password: func(string) (string, error) {
			return "secret123", nil
		},
	}
	return s, out
}

func exec(t *testing.T, s *session, out *bytes.Buffer, input string) string {
	t.Helper()
	out.Reset()
	assert.False(t, s.handle(context.Background(), input))
	return out.String()
}

func TestSession_RequiresLogin(t *testing.T) {
	s, out := newSession(t)

	assert.Contains(t, exec(t, s, out, "hello"), "please /login")
	assert.Contains(t, exec(t, s, out, "/list"), "please /login")
	assert.Contains(t, exec(t, s, out, "/whoami"), "not logged in")
}

func TestSession_RegisterChatAndDelete(t *testing.T) {
	s, out := newSession(t)

	assert.Contains(t, exec(t, s, out, "/register alice alice@example.com"), "welcome, alice")
	assert.Contains(t, exec(t, s, out, "/whoami"), "alice (alice@example.com)")

	assert.Equal(t, "ai: echo: hello\n", exec(t, s, out, "hello"))
	conv := s.chat.CurrentConversation()
	require.NotNil(t, conv)
	assert.Equal(t, "hello", conv.Title)
	assert.Equal(t, "[hello]> ", s.prompt())

	assert.Equal(t, "ai: echo: more\n", exec(t, s, out, "/stream more"))
	assert.Len(t, s.chat.CurrentMessages(), 4)

	listing := exec(t, s, out, "/list")
	assert.Contains(t, listing, "* "+conv.ID)
	assert.Contains(t, listing, "4 messages")

	assert.Contains(t, exec(t, s, out, "/delete "+conv.ID), "deleted "+conv.ID)
	assert.Nil(t, s.chat.CurrentConversation())
	assert.Contains(t, exec(t, s, out, "/list"), "no conversations yet")
	assert.Contains(t, exec(t, s, out, "/open "+conv.ID), "error: conversation not found")
}

func TestSession_OpenPrintsHistory(t *testing.T) {
	s, out := newSession(t)
	exec(t, s, out, "/register bob 13800138000")

	created := exec(t, s, out, "/new trip plans")
	assert.Contains(t, created, `"trip plans"`)
	first := s.chat.CurrentConversation().ID
	exec(t, s, out, "where to?")

	exec(t, s, out, "/new")
	require.NotEqual(t, first, s.chat.CurrentConversation().ID)

	history := exec(t, s, out, "/open "+first)
	assert.Contains(t, history, "you: where to?")
	assert.Contains(t, history, "ai: echo: where to?")
}

func TestSession_LoginFailureAndLogout(t *testing.T) {
	s, out := newSession(t)
	exec(t, s, out, "/register carol carol@example.com")
	assert.Contains(t, exec(t, s, out, "/logout"), "signed out")
	assert.False(t, s.users.IsLoggedIn())

	assert.Contains(t, exec(t, s, out, "/login nobody@example.com"), "error: user not found")
	assert.Contains(t, exec(t, s, out, "/login carol@example.com"), "welcome back, carol")
}

func TestSession_MiscCommands(t *testing.T) {
	s, out := newSession(t)

	assert.Contains(t, exec(t, s, out, "/health"), "AI provider healthy")
	s.health = fixedHealth{Error: "missing AI API key"}
	assert.Contains(t, exec(t, s, out, "/health"), "unhealthy: missing AI API key")

	assert.Contains(t, exec(t, s, out, "/bogus"), "unknown command /bogus")
	assert.Contains(t, exec(t, s, out, "/help"), "/register")
	assert.Contains(t, exec(t, s, out, "/register onlyname"), "usage: /register")

	assert.True(t, s.handle(context.Background(), "/quit"))
}

func TestCompleteCommand(t *testing.T) {
	assert.Equal(t, []string{"/login", "/logout", "/list"}, completeCommand("/l"))
	assert.Nil(t, completeCommand("hello"))
	assert.Nil(t, completeCommand("/open abc"))
	assert.Equal(t, domain.AccountTypeEmail, accountType("a@b.co"))
	assert.Equal(t, domain.AccountTypePhone, accountType("13800138000"))
}

func TestSession_RestoredFromSharedStore(t *testing.T) {
	store, err := kv.OpenSQLite(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	defer store.Close()

	first, out := newSessionOn(t, store)
	exec(t, first, out, "/register dave dave@example.com")
	require.True(t, first.users.IsLoggedIn())

	second, out := newSessionOn(t, store)
	second.users.Initialize(context.Background())
	assert.True(t, second.users.IsLoggedIn())
	assert.Contains(t, exec(t, second, out, "/whoami"), "dave (dave@example.com)")

	exec(t, second, out, "/logout")
	third, _ := newSessionOn(t, store)
	third.users.Initialize(context.Background())
	assert.False(t, third.users.IsLoggedIn())
}
