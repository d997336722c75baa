// Package app assembles repositories, services and handlers from a Config.
// The server, the terminal client and the diagnostic tool all start here.
package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iyunix/go-aichat/internal/config"
	"github.com/iyunix/go-aichat/internal/metrics"
	"github.com/iyunix/go-aichat/internal/repository/conversation"
	"github.com/iyunix/go-aichat/internal/repository/kv"
	"github.com/iyunix/go-aichat/internal/repository/user"
	"github.com/iyunix/go-aichat/internal/services"
	"github.com/iyunix/go-aichat/internal/services/ai"
	"github.com/iyunix/go-aichat/internal/services/chat"
	"github.com/iyunix/go-aichat/internal/services/filter"
	"github.com/iyunix/go-aichat/internal/services/user_services"
)

const redisKeyPrefix = "aichat:"

// Application aggregates all services
type Application struct {
	Config  *config.Config
	Logger  services.Logger
	Metrics *metrics.Metrics

	Store            kv.Store
	UserRepo         user.UserRepository
	ConversationRepo conversation.ConversationRepository

	AIClient    *ai.Client
	ChatService *chat.ConversationService
	UserService *user_services.UserService
}

// ProvideStore opens the key/value backend selected by STORAGE_DRIVER.
func ProvideStore(cfg *config.Config) (kv.Store, error) {
	switch cfg.StorageDriver {
	case "memory":
		return kv.NewMemoryStore(), nil
	case "redis":
		return kv.NewRedisStore(cfg.RedisURL, redisKeyPrefix)
	case "sqlite", "":
		return kv.OpenSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func ProvideAIConfig(cfg *config.Config) *ai.Config {
	aiConfig := ai.DefaultConfig()
	aiConfig.APIKey = cfg.AIAPIKey
	if cfg.AIBaseURL != "" {
		aiConfig.BaseURL = cfg.AIBaseURL
	}
	if cfg.AIModel != "" {
		aiConfig.Model = cfg.AIModel
	}
	aiConfig.MaxTokens = cfg.AIMaxTokens
	aiConfig.Temperature = cfg.AITemperature
	aiConfig.Timeout = cfg.AITimeout
	aiConfig.MaxContextMessages = cfg.AIMaxContextMessages
	if cfg.SystemPrompt != "" {
		aiConfig.SystemPrompt = cfg.SystemPrompt
	}
	return aiConfig
}

func ProvideChatConfig(cfg *config.Config) *chat.Config {
	chatConfig := chat.DefaultConfig()
	if cfg.MaxMessageLength > 0 {
		chatConfig.MaxMessageLength = cfg.MaxMessageLength
	}
	chatConfig.SimulateLatency = cfg.SimulateLatency
	return chatConfig
}

func ProvideAuthConfig(cfg *config.Config) *user_services.Config {
	authConfig := user_services.DefaultConfig(cfg.JWTSecretKey)
	authConfig.SimulateLatency = cfg.SimulateLatency
	return authConfig
}

// ProvideAIClient builds the AI client alone, for tools that need nothing else.
func ProvideAIClient(cfg *config.Config, m *metrics.Metrics, logger services.Logger) *ai.Client {
	aiConfig := ProvideAIConfig(cfg)
	return ai.NewClient(aiConfig, ai.NewOpenAIProvider(aiConfig), m, logger)
}

// New wires the application on top of store. reg may be nil to skip metrics.
func New(cfg *config.Config, store kv.Store, reg prometheus.Registerer, logger services.Logger) (*Application, error) {
	if logger == nil {
		logger = services.NewLogger("go_aichat")
	}
	var m *metrics.Metrics
	if reg != nil {
		m = metrics.NewMetrics(reg)
	}

	userRepo := user.NewUserRepository(store)
	conversationRepo := conversation.NewConversationRepository(store)
	aiClient := ProvideAIClient(cfg, m, logger)

	chatService, err := chat.NewConversationService(
		ProvideChatConfig(cfg), conversationRepo, aiClient, filter.Default(), m, logger)
	if err != nil {
		return nil, fmt.Errorf("chat service: %w", err)
	}

	userService, err := user_services.NewUserService(userRepo, ProvideAuthConfig(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("user service: %w", err)
	}

	return &Application{
		Config:           cfg,
		Logger:           logger,
		Metrics:          m,
		Store:            store,
		UserRepo:         userRepo,
		ConversationRepo: conversationRepo,
		AIClient:         aiClient,
		ChatService:      chatService,
		UserService:      userService,
	}, nil
}

func (a *Application) Close() error {
	return a.Store.Close()
}
