package handler

import (
	"log/slog"
	"net/http"

	"go-auth-api/internal/middleware"
	"go-auth-api/internal/model"
	"go-auth-api/internal/service"
)

type LLMHandler struct {
	chat *service.ChatService
	blog *service.BlogService
}

func NewLLMHandler(chat *service.ChatService, blog *service.BlogService) *LLMHandler {
	return &LLMHandler{chat: chat, blog: blog}
}

func (h *LLMHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	logCaller(r, "llm chat requested")
	resp, err := h.chat.Chat(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "ok", resp, nil)
}

func (h *LLMHandler) GenerateBlog(w http.ResponseWriter, r *http.Request) {
	var req model.BlogArticleRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	logCaller(r, "blog generation requested")
	resp, err := h.blog.Generate(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "ok", resp, nil)
}

func logCaller(r *http.Request, msg string) {
	attrs := []any{"request_id", middleware.RequestIDFromContext(r.Context())}
	if id, ok := middleware.UserIDFromContext(r.Context()); ok {
		attrs = append(attrs, "user_id", id)
	}
	slog.InfoContext(r.Context(), msg, attrs...)
}
