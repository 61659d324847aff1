package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"paper-reader/internal/domain"
)

// ChatHandler exposes model listing, streaming chat and per-paper history.
type ChatHandler struct {
	chatService domain.ChatService
	logger      domain.Logger
}

func NewChatHandler(chatService domain.ChatService, logger domain.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// ListModels handles GET /api/chat/models
func (h *ChatHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.chatService.ListModels(r.Context(), optionalUser(r))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, models)
}

// Ask handles POST /api/chat/ask
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req domain.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	stream, err := h.chatService.Ask(r.Context(), optionalUser(r), req)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	h.relay(w, stream)
}

// Conversation handles POST /api/chat/conversation
func (h *ChatHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	var req domain.ConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	stream, err := h.chatService.Converse(r.Context(), optionalUser(r), req)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	h.relay(w, stream)
}

// GetHistory handles GET /api/chat/history?paper_path=...
func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.chatService.History(r.Context(), r.URL.Query().Get("paper_path"))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// ClearHistory handles DELETE /api/chat/history?paper_path=...
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	n, err := h.chatService.ClearHistory(r.Context(), r.URL.Query().Get("paper_path"))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// relay writes the stream as server-sent events: "token" per delta, then
// "done", or "error" if the provider fails mid-stream.
func (h *ChatHandler) relay(w http.ResponseWriter, stream domain.ChatStream) {
	defer stream.Close()

	flusher, _ := w.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("X-Model", stream.Model())
	w.WriteHeader(http.StatusOK)
	flush()

	for {
		token, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = writeSSEEvent(w, "error", map[string]string{"error": err.Error()})
			flush()
			return
		}
		if err := writeSSEEvent(w, "token", map[string]string{"content": token}); err != nil {
			// Client went away.
			h.logger.Debug("SSE write failed", "error", err, "model", stream.Model())
			return
		}
		flush()
	}

	_ = writeSSEEvent(w, "done", struct{}{})
	flush()
}

func writeSSEEvent(w io.Writer, event string, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, encoded)
	return err
}
