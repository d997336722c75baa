package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/iyunix/go-aichat/internal/domain"
	"github.com/iyunix/go-aichat/internal/services/ai"
	"github.com/iyunix/go-aichat/internal/services/user_services"
	"github.com/iyunix/go-aichat/internal/stores"
)

type healthChecker interface {
	CheckHealth(ctx context.Context) ai.HealthStatus
}

// session executes one line of input at a time against the client stores.
type session struct {
	out      io.Writer
	chat     *stores.ChatStore
	users    *stores.UserStore
	health   healthChecker
	password func(prompt string) (string, error)
}

var commands = []string{
	"/help", "/register", "/login", "/logout", "/whoami",
	"/new", "/list", "/open", "/delete", "/stream", "/health", "/quit",
}

const helpText = `Commands:
  /register <username> <email|phone>   create an account and sign in
  /login <email|phone>                 sign in
  /logout                              sign out
  /whoami                              show the signed-in user
  /new [title]                         start a conversation
  /list                                list conversations
  /open <id>                           open a conversation
  /delete <id>                         delete a conversation
  /stream <text>                       send text and stream the reply
  /health                              check the AI provider
  /quit                                exit
Any other input is sent to the open conversation.`

func completeCommand(line string) []string {
	if !strings.HasPrefix(line, "/") || strings.Contains(line, " ") {
		return nil
	}
	var out []string
	for _, c := range commands {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}
	return out
}

// accountType guesses the identifier kind from its shape.
func accountType(account string) domain.AccountType {
	if strings.Contains(account, "@") {
		return domain.AccountTypeEmail
	}
	return domain.AccountTypePhone
}

func (s *session) prompt() string {
	if c := s.chat.CurrentConversation(); c != nil {
		return fmt.Sprintf("[%s]> ", c.Title)
	}
	return "> "
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// reportChatError prints and clears the chat store's error.
func (s *session) reportChatError() {
	if msg := s.chat.Error(); msg != "" {
		s.printf("error: %s\n", msg)
		s.chat.ClearError()
	}
}

func (s *session) reportUserError() {
	if msg := s.users.Error(); msg != "" {
		s.printf("error: %s\n", msg)
		s.users.ClearError()
	}
}

// handle runs one input line and reports whether the session should end.
func (s *session) handle(ctx context.Context, input string) bool {
	if !strings.HasPrefix(input, "/") {
		s.send(ctx, input, false)
		return false
	}

	name, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch name {
	case "/quit", "/exit":
		return true
	case "/help":
		s.printf("%s\n", helpText)
	case "/register":
		s.register(ctx, args)
	case "/login":
		s.login(ctx, args)
	case "/logout":
		s.users.Logout(ctx)
		s.chat.ResetState()
		s.printf("signed out\n")
	case "/whoami":
		if u := s.users.User(); u != nil {
			s.printf("%s (%s)\n", u.Username, firstNonEmpty(u.Email, u.Phone))
		} else {
			s.printf("not logged in\n")
		}
	case "/new":
		if !s.requireLogin() {
			return false
		}
		if c := s.chat.CreateNewConversation(ctx, rest); c != nil {
			s.printf("created %s %q\n", c.ID, c.Title)
		}
		s.reportChatError()
	case "/list":
		if !s.requireLogin() {
			return false
		}
		s.list(ctx)
	case "/open":
		if !s.requireLogin() {
			return false
		}
		if len(args) != 1 {
			s.printf("usage: /open <id>\n")
			return false
		}
		s.chat.SelectConversation(ctx, args[0])
		s.reportChatError()
		if c := s.chat.CurrentConversation(); c != nil && c.ID == args[0] {
			s.printHistory(c)
		}
	case "/delete":
		if !s.requireLogin() {
			return false
		}
		if len(args) != 1 {
			s.printf("usage: /delete <id>\n")
			return false
		}
		if s.chat.RemoveConversation(ctx, args[0]) {
			s.printf("deleted %s\n", args[0])
		}
		s.reportChatError()
	case "/stream":
		s.send(ctx, rest, true)
	case "/health":
		status := s.health.CheckHealth(ctx)
		if status.IsHealthy {
			s.printf("AI provider healthy\n")
		} else {
			s.printf("AI provider unhealthy: %s\n", status.Error)
		}
	default:
		s.printf("unknown command %s, try /help\n", name)
	}
	return false
}

func (s *session) requireLogin() bool {
	if s.users.IsLoggedIn() {
		return true
	}
	s.printf("please /login or /register first\n")
	return false
}

func (s *session) register(ctx context.Context, args []string) {
	if len(args) != 2 {
		s.printf("usage: /register <username> <email|phone>\n")
		return
	}
	password, err := s.password("password: ")
	if err != nil {
		return
	}
	confirm, err := s.password("confirm password: ")
	if err != nil {
		return
	}

	form := user_services.RegisterForm{
		Username:        args[0],
		Password:        password,
		ConfirmPassword: confirm,
		Type:            accountType(args[1]),
	}
	if form.Type == domain.AccountTypeEmail {
		form.Email = args[1]
	} else {
		form.Phone = args[1]
	}

	if s.users.Register(ctx, form) {
		s.printf("welcome, %s\n", s.users.User().Username)
		return
	}
	s.reportUserError()
}

func (s *session) login(ctx context.Context, args []string) {
	if len(args) != 1 {
		s.printf("usage: /login <email|phone>\n")
		return
	}
	password, err := s.password("password: ")
	if err != nil {
		return
	}

	form := user_services.LoginForm{
		Account:  args[0],
		Password: password,
		Type:     accountType(args[0]),
	}
	if s.users.Login(ctx, form) {
		s.chat.ResetState()
		s.printf("welcome back, %s\n", s.users.User().Username)
		return
	}
	s.reportUserError()
}

func (s *session) list(ctx context.Context) {
	s.chat.FetchConversations(ctx)
	s.reportChatError()
	if !s.chat.HasConversations() {
		s.printf("no conversations yet, start one with /new\n")
		return
	}

	current := s.chat.CurrentConversation()
	for _, c := range s.chat.Conversations() {
		marker := " "
		if current != nil && current.ID == c.ID {
			marker = "*"
		}
		s.printf("%s %s  %-20s  %3d messages  %s\n",
			marker, c.ID, c.Title, len(c.Messages), c.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
}

func (s *session) printHistory(c *domain.Conversation) {
	s.printf("-- %s --\n", c.Title)
	for _, m := range c.Messages {
		who := "ai"
		if m.IsUser() {
			who = "you"
		}
		s.printf("%s: %s\n", who, m.Content)
	}
}

func (s *session) send(ctx context.Context, content string, stream bool) {
	if !s.requireLogin() {
		return
	}
	if s.chat.CurrentConversation() == nil {
		if s.chat.CreateNewConversation(ctx, "") == nil {
			s.reportChatError()
			return
		}
	}

	if stream {
		s.printf("ai: ")
		ok := s.chat.SendUserMessageStream(ctx, content, func(chunk string) error {
			s.printf("%s", chunk)
			return nil
		})
		s.printf("\n")
		if !ok {
			s.reportChatError()
		}
		return
	}

	if !s.chat.SendUserMessage(ctx, content) {
		s.reportChatError()
		return
	}
	msgs := s.chat.CurrentMessages()
	if n := len(msgs); n > 0 {
		s.printf("ai: %s\n", msgs[n-1].Content)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
