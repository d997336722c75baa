package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-aichat/internal/metrics"
	"github.com/iyunix/go-aichat/internal/middleware"
	"github.com/iyunix/go-aichat/internal/ratelimit"
)

// Routes collects everything NewRouter mounts.
type Routes struct {
	Auth   *AuthHandler
	Chat   *ChatHandler
	Health *HealthHandler
	Log    *LogHandler

	Tokens      middleware.TokenValidator
	AuthLimiter *ratelimit.MemoryRateLimiter
	Metrics     *metrics.Metrics
	// MetricsHandler serves /metrics; omitted when nil.
	MetricsHandler http.Handler
	Logger         Logger
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func NewRouter(rt Routes) *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.Use(middleware.RecoverPanic(rt.Logger))
	r.Use(middleware.LoggingMiddleware(rt.Logger, rt.Metrics))

	// --- Public Routes ---
	r.HandleFunc("/", Index).Methods(http.MethodGet)
	r.HandleFunc("/health", rt.Health.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/log", rt.Log.LogFrontendEvent).Methods(http.MethodPost)
	if rt.MetricsHandler != nil {
		r.Handle("/metrics", rt.MetricsHandler).Methods(http.MethodGet)
	}

	// --- Guest-only auth routes ---
	guest := r.PathPrefix("/api/auth").Subrouter()
	guest.Use(middleware.GuestOnly(rt.Tokens))
	var login http.Handler = http.HandlerFunc(rt.Auth.Login)
	if rt.AuthLimiter != nil {
		guest.Use(middleware.RateLimitMiddleware(rt.AuthLimiter, "auth", rt.Logger))
		// Only a successful login refills the bucket; registering does not.
		login = middleware.AuthSuccessMiddleware(rt.AuthLimiter)(login)
	}
	guest.HandleFunc("/register", rt.Auth.Register).Methods(http.MethodPost)
	guest.Handle("/login", login).Methods(http.MethodPost)

	// --- Protected Routes ---
	authMiddleware := middleware.NewAuthMiddleware(rt.Tokens, rt.Logger)

	session := r.PathPrefix("/api/auth").Subrouter()
	session.Use(authMiddleware)
	session.HandleFunc("/logout", rt.Auth.Logout).Methods(http.MethodPost)
	session.HandleFunc("/me", rt.Auth.Me).Methods(http.MethodGet)

	api := r.PathPrefix("/api/conversations").Subrouter()
	api.Use(authMiddleware)
	api.HandleFunc("", rt.Chat.ListConversations).Methods(http.MethodGet)
	api.HandleFunc("", rt.Chat.CreateConversation).Methods(http.MethodPost)
	api.HandleFunc("/{id}", rt.Chat.GetConversation).Methods(http.MethodGet)
	api.HandleFunc("/{id}", rt.Chat.DeleteConversation).Methods(http.MethodDelete)
	api.HandleFunc("/{id}/messages", rt.Chat.SendMessage).Methods(http.MethodPost)
	api.HandleFunc("/{id}/stream", rt.Chat.StreamMessage).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFail(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFail(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}
