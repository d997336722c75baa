package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-aichat/internal/domain"
	"github.com/iyunix/go-aichat/internal/envelope"
	"github.com/iyunix/go-aichat/internal/ratelimit"
	"github.com/iyunix/go-aichat/internal/repository/conversation"
	"github.com/iyunix/go-aichat/internal/repository/kv"
	"github.com/iyunix/go-aichat/internal/repository/user"
	"github.com/iyunix/go-aichat/internal/services/ai"
	"github.com/iyunix/go-aichat/internal/services/chat"
	"github.com/iyunix/go-aichat/internal/services/filter"
	"github.com/iyunix/go-aichat/internal/services/user_services"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

type scriptedAI struct {
	reply string
	fail  string
}

func (s *scriptedAI) Generate(ctx context.Context, history []domain.Message, msg string) ai.Response {
	if s.fail != "" {
		return ai.Response{Error: s.fail}
	}
	return ai.Response{Content: s.reply}
}

func (s *scriptedAI) GenerateStream(ctx context.Context, history []domain.Message, msg string, onChunk func(string) error) ai.Response {
	if s.fail != "" {
		return ai.Response{Error: s.fail}
	}
	for _, word := range strings.SplitAfter(s.reply, " ") {
		if err := onChunk(word); err != nil {
			return ai.Response{Error: err.Error(), Err: err}
		}
	}
	return ai.Response{Content: s.reply}
}

type healthyAI struct{}

func (healthyAI) CheckHealth(context.Context) ai.HealthStatus {
	return ai.HealthStatus{IsHealthy: true}
}

type brokenStore struct{ kv.Store }

func (brokenStore) Ping(context.Context) error { return errors.New("disk unplugged") }

type server struct {
	t     *testing.T
	h     http.Handler
	model *scriptedAI
	token string
}

func newServer(t *testing.T) *server {
	t.Helper()
	return newServerWithLimiter(t, nil)
}

func newServerWithLimiter(t *testing.T, limiter *ratelimit.MemoryRateLimiter) *server {
	t.Helper()
	store := kv.NewMemoryStore()
	users, err := user_services.NewUserService(user.NewUserRepository(store), user_services.DefaultConfig("secret"), nil)
	require.NoError(t, err)

	model := &scriptedAI{reply: "hi there"}
	chats, err := chat.NewConversationService(nil, conversation.NewConversationRepository(store), model, filter.Default(), nil, nil)
	require.NoError(t, err)

	h := NewRouter(Routes{
		Auth:        NewAuthHandler(users, false, nopLogger{}),
		Chat:        NewChatHandler(chats, nopLogger{}),
		Health:      NewHealthHandler(store, healthyAI{}),
		Log:         NewLogHandler(nopLogger{}),
		Tokens:      users,
		AuthLimiter: limiter,
		Logger:      nopLogger{},
	})
	return &server{t: t, h: h, model: model}
}

func (s *server) do(method, path, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		r.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, r)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope.Response[T] {
	t.Helper()
	var resp envelope.Response[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	assert.Equal(t, rec.Code, resp.Code, "HTTP status mirrors envelope code")
	return resp
}

func (s *server) signIn() {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"passw0rd","confirmPassword":"passw0rd","type":"email"}`)
	require.Equal(s.t, 200, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/auth/login",
		`{"account":"alice@example.com","password":"passw0rd","type":"email"}`)
	require.Equal(s.t, 200, rec.Code, rec.Body.String())
	res := decode[user_services.LoginResult](s.t, rec)
	s.token = res.Data.Token
}

func TestAuthFlow(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodGet, "/api/auth/me", "")
	assert.Equal(t, 401, rec.Code)

	s.signIn()
	require.NotEmpty(t, s.token)

	me := decode[domain.User](t, s.do(http.MethodGet, "/api/auth/me", ""))
	require.NotNil(t, me.Data)
	assert.Equal(t, "alice", me.Data.Username)
	assert.Empty(t, me.Data.PasswordHash)

	// Signed-in clients are sent away from guest-only routes.
	rec = s.do(http.MethodPost, "/api/auth/login", `{"account":"alice@example.com","password":"passw0rd","type":"email"}`)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, 200, rec.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := newServer(t)
	body := `{"username":"alice","email":"dup@example.com","password":"passw0rd","confirmPassword":"passw0rd","type":"email"}`

	require.Equal(t, 200, s.do(http.MethodPost, "/api/auth/register", body).Code)

	resp := decode[domain.User](t, s.do(http.MethodPost, "/api/auth/register", body))
	assert.Equal(t, 400, resp.Code)
	assert.Equal(t, "user already exists", resp.Message)
	assert.Nil(t, resp.Data)
}

func TestLogin_UnknownUser(t *testing.T) {
	s := newServer(t)
	resp := decode[user_services.LoginResult](t, s.do(http.MethodPost, "/api/auth/login",
		`{"account":"ghost@example.com","password":"passw0rd","type":"email"}`))
	assert.Equal(t, 404, resp.Code)
}

func TestConversationsRequireAuth(t *testing.T) {
	s := newServer(t)
	resp := decode[[]domain.Conversation](t, s.do(http.MethodGet, "/api/conversations", ""))
	assert.Equal(t, 401, resp.Code)
}

func TestConversationLifecycle(t *testing.T) {
	s := newServer(t)
	s.signIn()

	created := decode[domain.Conversation](t, s.do(http.MethodPost, "/api/conversations", ""))
	require.Equal(t, 200, created.Code)
	id := created.Data.ID
	assert.Equal(t, domain.DefaultConversationTitle, created.Data.Title)

	sent := decode[chat.SendResult](t, s.do(http.MethodPost, "/api/conversations/"+id+"/messages", `{"content":"hello"}`))
	require.Equal(t, 200, sent.Code)
	assert.Equal(t, "hi there", sent.Data.AIMessage.Content)

	got := decode[domain.Conversation](t, s.do(http.MethodGet, "/api/conversations/"+id, ""))
	require.Equal(t, 200, got.Code)
	assert.Len(t, got.Data.Messages, 2)
	assert.Equal(t, "hello", got.Data.Title)

	list := decode[[]domain.Conversation](t, s.do(http.MethodGet, "/api/conversations", ""))
	require.Equal(t, 200, list.Code)
	assert.Len(t, *list.Data, 1)

	assert.Equal(t, 200, s.do(http.MethodDelete, "/api/conversations/"+id, "").Code)
	assert.Equal(t, 404, s.do(http.MethodDelete, "/api/conversations/"+id, "").Code)
}

func TestSendMessage_SensitiveWord(t *testing.T) {
	s := newServer(t)
	s.signIn()

	created := decode[domain.Conversation](t, s.do(http.MethodPost, "/api/conversations", `{"title":"t"}`))
	id := created.Data.ID

	resp := decode[chat.SendResult](t, s.do(http.MethodPost, "/api/conversations/"+id+"/messages", `{"content":"talk about violence"}`))
	assert.Equal(t, 400, resp.Code)

	got := decode[domain.Conversation](t, s.do(http.MethodGet, "/api/conversations/"+id, ""))
	assert.Empty(t, got.Data.Messages)
}

func TestSendMessage_AIFailure(t *testing.T) {
	s := newServer(t)
	s.signIn()
	s.model.fail = "API quota exhausted, please try again later"

	created := decode[domain.Conversation](t, s.do(http.MethodPost, "/api/conversations", ""))
	resp := decode[chat.SendResult](t, s.do(http.MethodPost, "/api/conversations/"+created.Data.ID+"/messages", `{"content":"hello"}`))
	assert.Equal(t, 500, resp.Code)
	assert.Contains(t, resp.Message, "quota")
}

func TestGetConversation_HTML(t *testing.T) {
	s := newServer(t)
	s.signIn()
	s.model.reply = "**bold** reply"

	created := decode[domain.Conversation](t, s.do(http.MethodPost, "/api/conversations", ""))
	id := created.Data.ID
	require.Equal(t, 200, s.do(http.MethodPost, "/api/conversations/"+id+"/messages", `{"content":"*hello*"}`).Code)

	got := decode[domain.Conversation](t, s.do(http.MethodGet, "/api/conversations/"+id+"?format=html", ""))
	require.Len(t, got.Data.Messages, 2)
	assert.Equal(t, "*hello*", got.Data.Messages[0].Content)
	assert.Contains(t, got.Data.Messages[1].Content, "<strong>bold</strong>")
}

func TestStreamMessage(t *testing.T) {
	s := newServer(t)
	s.signIn()
	s.model.reply = "hi there friend"

	created := decode[domain.Conversation](t, s.do(http.MethodPost, "/api/conversations", ""))
	rec := s.do(http.MethodGet, "/api/conversations/"+created.Data.ID+"/stream?message=hello", "")

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	var events []string
	var chunks []string
	sc := bufio.NewScanner(strings.NewReader(rec.Body.String()))
	var event string
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
			events = append(events, event)
		case strings.HasPrefix(line, "data: ") && event == "chunk":
			var c string
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &c))
			chunks = append(chunks, c)
		}
	}
	assert.Equal(t, "done", events[len(events)-1])
	assert.Equal(t, "hi there friend", strings.Join(chunks, ""))
}

func TestStreamMessage_ValidationFailsBeforeStreaming(t *testing.T) {
	s := newServer(t)
	s.signIn()

	created := decode[domain.Conversation](t, s.do(http.MethodPost, "/api/conversations", ""))
	resp := decode[chat.SendResult](t, s.do(http.MethodGet, "/api/conversations/"+created.Data.ID+"/stream?message=", ""))
	assert.Equal(t, 400, resp.Code)
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	resp := decode[HealthStatus](t, s.do(http.MethodGet, "/health", ""))
	require.Equal(t, 200, resp.Code)
	assert.Equal(t, "ok", resp.Data.Storage)
	assert.True(t, resp.Data.AI.IsHealthy)

	rec := httptest.NewRecorder()
	NewHealthHandler(brokenStore{}, nil).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, 500, rec.Code)
}

func TestLogFrontendEvent(t *testing.T) {
	s := newServer(t)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPost, "/api/log", `{"level":"error","message":"boom"}`).Code)
	assert.Equal(t, 400, s.do(http.MethodPost, "/api/log", `{"level":"error"}`).Code)
	assert.Equal(t, 400, s.do(http.MethodPost, "/api/log", `not json`).Code)
}

func TestNotFound(t *testing.T) {
	s := newServer(t)
	resp := decode[struct{}](t, s.do(http.MethodGet, "/nope", ""))
	assert.Equal(t, 404, resp.Code)
}

func tightLimiter(t *testing.T) *ratelimit.MemoryRateLimiter {
	t.Helper()
	limiter := ratelimit.NewMemoryRateLimiter(&ratelimit.Config{
		Every:         time.Hour,
		Burst:         2,
		IdleTTL:       time.Hour,
		CleanupPeriod: time.Hour,
	})
	t.Cleanup(limiter.Close)
	return limiter
}

func TestAuthRateLimit_RegisterDoesNotRefill(t *testing.T) {
	s := newServerWithLimiter(t, tightLimiter(t))
	ghost := `{"account":"ghost@example.com","password":"passw0rd","type":"email"}`

	limited := 0
	for i := 0; i < 5; i++ {
		if s.do(http.MethodPost, "/api/auth/login", ghost).Code == http.StatusTooManyRequests {
			limited++
		}
		body := fmt.Sprintf(`{"username":"user%d","email":"user%d@example.com","password":"passw0rd","confirmPassword":"passw0rd","type":"email"}`, i, i)
		s.do(http.MethodPost, "/api/auth/register", body)
	}
	assert.Equal(t, 4, limited)

	rec := s.do(http.MethodPost, "/api/auth/login", ghost)
	resp := decode[user_services.LoginResult](t, rec)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestAuthRateLimit_LoginSuccessRefills(t *testing.T) {
	s := newServerWithLimiter(t, tightLimiter(t))

	rec := s.do(http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"passw0rd","confirmPassword":"passw0rd","type":"email"}`)
	require.Equal(t, 200, rec.Code, rec.Body.String())
	rec = s.do(http.MethodPost, "/api/auth/login",
		`{"account":"alice@example.com","password":"passw0rd","type":"email"}`)
	require.Equal(t, 200, rec.Code, rec.Body.String())

	ghost := `{"account":"ghost@example.com","password":"passw0rd","type":"email"}`
	assert.Equal(t, 404, s.do(http.MethodPost, "/api/auth/login", ghost).Code)
	assert.Equal(t, 404, s.do(http.MethodPost, "/api/auth/login", ghost).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(http.MethodPost, "/api/auth/login", ghost).Code)
}
