// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-aichat/internal/envelope"
	"github.com/iyunix/go-aichat/internal/render"
	"github.com/iyunix/go-aichat/internal/services/chat"
)

type ChatHandler struct {
	ChatService chat.Service
	logger      Logger
}

func NewChatHandler(cs chat.Service, logger Logger) *ChatHandler {
	return &ChatHandler{ChatService: cs, logger: logger}
}

func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.ChatService.ListConversations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, convs, "fetched")
}

func (h *ChatHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	conv, err := h.ChatService.CreateConversation(r.Context(), req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, *conv, "conversation created")
}

// GetConversation returns one conversation. With ?format=html the AI
// messages are rendered from markdown to HTML.
func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := h.ChatService.GetConversation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		rendered, err := render.Conversation(*conv)
		if err != nil {
			h.logger.Error("markdown rendering failed", "conversation_id", conv.ID, "error", err)
			writeFail(w, http.StatusInternalServerError, "failed to render conversation")
			return
		}
		conv = &rendered
	}
	writeJSON(w, *conv, "fetched")
}

func (h *ChatHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := h.ChatService.DeleteConversation(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "conversation deleted")
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.ChatService.SendMessage(r.Context(), mux.Vars(r)["id"], req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, *res, "message sent")
}

// StreamMessage sends ?message= and streams the reply as server-sent events:
// "chunk" events carry JSON-encoded text fragments and a final "done" or
// "error" event carries an envelope. Failures before the first fragment are
// answered with a plain JSON envelope instead.
func (h *ChatHandler) StreamMessage(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeFail(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	id := mux.Vars(r)["id"]
	started := false
	start := func() {
		if started {
			return
		}
		started = true
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
	}

	res, err := h.ChatService.SendMessageStream(r.Context(), id, r.URL.Query().Get("message"), func(chunk string) error {
		start()
		if err := writeEvent(w, "chunk", chunk); err != nil {
			return err
		}
		flusher.Flush()
		return r.Context().Err()
	})

	if err != nil {
		if !started {
			writeError(w, err)
			return
		}
		h.logger.Warn("stream ended with error", "conversation_id", id, "error", err)
		_ = writeEvent(w, "error", envelope.FromError[struct{}](err))
		flusher.Flush()
		return
	}

	start()
	_ = writeEvent(w, "done", envelope.OK(*res, "message sent"))
	flusher.Flush()
}

func writeEvent(w http.ResponseWriter, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
