package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/iyunix/go-aichat/internal/services/ai"
)

// Pinger is implemented by the key/value store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AIHealthChecker is implemented by *ai.Client.
type AIHealthChecker interface {
	CheckHealth(ctx context.Context) ai.HealthStatus
}

type HealthStatus struct {
	Storage string          `json:"storage"`
	AI      ai.HealthStatus `json:"ai"`
}

type HealthHandler struct {
	store   Pinger
	ai      AIHealthChecker
	timeout time.Duration
}

func NewHealthHandler(store Pinger, aiChecker AIHealthChecker) *HealthHandler {
	return &HealthHandler{store: store, ai: aiChecker, timeout: 10 * time.Second}
}

// Health reports storage and AI provider health. Storage failure is a 500;
// an unhealthy AI provider is reported in the data with code 200, since
// conversations can still be read.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := HealthStatus{Storage: "ok"}
	if err := h.store.Ping(ctx); err != nil {
		writeFail(w, http.StatusInternalServerError, "storage unavailable: "+err.Error())
		return
	}
	if h.ai != nil {
		status.AI = h.ai.CheckHealth(ctx)
	}
	writeJSON(w, status, "ok")
}

// Index describes the API. Guest-only routes redirect signed-in clients here.
func Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"service": "go-aichat",
		"docs":    "see /api/conversations and /api/auth",
	}, "ok")
}
