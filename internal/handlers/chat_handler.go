package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"go_ms_user/internal/model"
	"go_ms_user/internal/service"
	"go_ms_user/internal/webutil"

	"github.com/go-playground/validator/v10"
)

type ChatHandler struct {
	service service.ChatService
	logger  *slog.Logger
}

func NewChatHandler(s service.ChatService, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{
		service: s,
		logger:  logger,
	}
}

// PostChat は新しいチャットリソースを作成するためのハンドラ
func (h *ChatHandler) PostChat(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostChat"))

	var req model.CreateChatRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			logger.Warn("Validation failed", slog.String("errors", validationErrors.Error()))
			webutil.HandleError(w, logger, webutil.NewValidationErrorResponse(validationErrors))
		} else {
			logger.Error("Unexpected error during validation", slog.Any("error", err))
			webutil.HandleError(w, logger, err)
		}
		return
	}

	chat, err := h.service.CreateChat(r.Context(), &req)
	if err != nil {
		logger.Error("Error creating chat in service", slog.Any("error", err), slog.Any("request", req))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Chat created successfully", slog.String("chat_id", chat.ChatID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, chat, logger)
}

// GetChats はチャットリソースの一覧を取得するためのハンドラ
func (h *ChatHandler) GetChats(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetChats"))

	chats, err := h.service.ListChats(r.Context())
	if err != nil {
		logger.Error("Error listing chats in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	if chats == nil {
		chats = []*model.Chat{}
	}
	logger.Info("Chats listed successfully", slog.Int("count", len(chats)))
	webutil.RespondWithJSON(w, http.StatusOK, chats, logger)
}

// GetChat は特定のチャットリソースを取得するためのハンドラ
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetChat"))

	chatID, ok := parseUUIDParam(w, r, logger, "chat_id")
	if !ok {
		return
	}
	logger = logger.With(slog.String("chat_id", chatID.String()))

	chat, err := h.service.GetChat(r.Context(), chatID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Chat not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error getting chat from service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Chat retrieved successfully")
	webutil.RespondWithJSON(w, http.StatusOK, chat, logger)
}

// PatchChat は特定のチャットリソースの一部を更新するためのハンドラ
func (h *ChatHandler) PatchChat(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchChat"))

	chatID, ok := parseUUIDParam(w, r, logger, "chat_id")
	if !ok {
		return
	}
	logger = logger.With(slog.String("chat_id", chatID.String()))

	var req model.UpdateChatRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			logger.Warn("Validation failed", slog.String("errors", validationErrors.Error()))
			webutil.HandleError(w, logger, webutil.NewValidationErrorResponse(validationErrors))
		} else {
			logger.Error("Unexpected error during validation", slog.Any("error", err))
			webutil.HandleError(w, logger, err)
		}
		return
	}

	chat, err := h.service.UpdateChat(r.Context(), chatID, &req)
	if err != nil {
		logger.Error("Error updating chat in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Chat updated successfully")
	webutil.RespondWithJSON(w, http.StatusOK, chat, logger)
}

// DeleteChat は特定のチャットリソースを削除するためのハンドラ
func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteChat"))

	chatID, ok := parseUUIDParam(w, r, logger, "chat_id")
	if !ok {
		return
	}
	logger = logger.With(slog.String("chat_id", chatID.String()))

	if err := h.service.DeleteChat(r.Context(), chatID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Chat not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error deleting chat in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Chat deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}
