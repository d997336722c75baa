package ai

import (
	"context"
	"strings"
	"time"

	"github.com/iyunix/go-aichat/internal/domain"
	"github.com/iyunix/go-aichat/internal/metrics"
)

// healthCheckPrompt is the minimal real request sent by CheckHealth.
const healthCheckPrompt = "ping"

// Client turns conversation history into provider requests and provider
// replies into Responses. It never returns a Go error to its caller.
type Client struct {
	config   *Config
	provider CompletionProvider
	metrics  *metrics.Metrics
	logger   Logger
}

func NewClient(config *Config, provider CompletionProvider, m *metrics.Metrics, logger Logger) *Client {
	return &Client{
		config:   config,
		provider: provider,
		metrics:  m,
		logger:   logger,
	}
}

// BuildContext prepends the system prompt, keeps the last MaxContextMessages
// of history in order, and appends userMessage last.
func (c *Client) BuildContext(history []domain.Message, userMessage string) []ChatMessage {
	recent := history
	if limit := c.config.MaxContextMessages; len(recent) > limit {
		recent = recent[len(recent)-limit:]
	}

	out := make([]ChatMessage, 0, len(recent)+2)
	out = append(out, ChatMessage{Role: RoleSystem, Content: c.config.SystemPrompt})
	for _, m := range recent {
		role := RoleAssistant
		if m.IsUser() {
			role = RoleUser
		}
		out = append(out, ChatMessage{Role: role, Content: m.Content})
	}
	return append(out, ChatMessage{Role: RoleUser, Content: userMessage})
}

// Generate makes one non-streaming request.
func (c *Client) Generate(ctx context.Context, history []domain.Message, userMessage string) Response {
	return c.run(ctx, "sync", history, userMessage, func(ctx context.Context, msgs []ChatMessage) (*Completion, error) {
		return c.provider.Complete(ctx, msgs)
	})
}

// GenerateStream delivers each fragment to onChunk as it arrives and resolves
// with the full text. Returning an error from onChunk aborts the stream.
func (c *Client) GenerateStream(ctx context.Context, history []domain.Message, userMessage string, onChunk func(string) error) Response {
	return c.run(ctx, "stream", history, userMessage, func(ctx context.Context, msgs []ChatMessage) (*Completion, error) {
		return c.provider.Stream(ctx, msgs, onChunk)
	})
}

func (c *Client) run(
	ctx context.Context,
	mode string,
	history []domain.Message,
	userMessage string,
	call func(context.Context, []ChatMessage) (*Completion, error),
) Response {
	if err := c.config.Validate(); err != nil {
		c.logger.Error("AI client misconfigured", "error", err)
		c.metrics.ObserveAIRequest(mode, string(ErrTypeConfig), 0)
		return Response{Error: UserMessage(err), Err: err}
	}

	msgs := c.BuildContext(history, userMessage)

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()
	completion, err := call(ctx, msgs)
	elapsed := time.Since(start)

	if err != nil {
		aiErr := classify(mode, err)
		c.logger.Error("AI request failed",
			"mode", mode,
			"type", string(aiErr.Type),
			"status", aiErr.Code,
			"duration", elapsed,
			"error", err)
		c.metrics.ObserveAIRequest(mode, string(aiErr.Type), elapsed)
		return Response{Error: UserMessage(aiErr), Err: aiErr}
	}

	content := strings.TrimSpace(completion.Content)
	if content == "" {
		aiErr := NewEmptyResponseError(mode)
		c.metrics.ObserveAIRequest(mode, string(aiErr.Type), elapsed)
		return Response{Error: UserMessage(aiErr), Err: aiErr}
	}

	c.metrics.ObserveAIRequest(mode, "ok", elapsed)
	if completion.Usage != nil {
		c.metrics.AddTokens(completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
	}
	c.logger.Debug("AI request completed",
		"mode", mode,
		"context_messages", len(msgs),
		"response_length", len(content),
		"duration", elapsed)

	return Response{Content: content, Usage: completion.Usage}
}

// CheckHealth sends a minimal real request.
func (c *Client) CheckHealth(ctx context.Context) HealthStatus {
	resp := c.Generate(ctx, nil, healthCheckPrompt)
	return HealthStatus{IsHealthy: !resp.Failed(), Error: resp.Error}
}
