package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"go_ms_user/internal/model"
	"go_ms_user/internal/service"
	"go_ms_user/internal/webutil"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type MessageHandler struct {
	service service.MessageService
	logger  *slog.Logger
}

func NewMessageHandler(s service.MessageService, logger *slog.Logger) *MessageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageHandler{
		service: s,
		logger:  logger,
	}
}

// PostMessage は新しいメッセージリソースを作成するためのハンドラ
func (h *MessageHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostMessage"))

	var req model.CreateMessageRequest
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

	message, err := h.service.CreateMessage(r.Context(), &req)
	if err != nil {
		logger.Error("Error creating message in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Message created successfully", slog.String("message_id", message.MessageID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, message, logger)
}

// GetMessages はメッセージ一覧を取得するためのハンドラ。
// クエリパラメータ chat_id で絞り込みできる。
func (h *MessageHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetMessages"))

	var chatID *uuid.UUID
	if chatIDStr := r.URL.Query().Get("chat_id"); chatIDStr != "" {
		id, err := uuid.Parse(chatIDStr)
		if err != nil {
			logger.Warn("Invalid chat_id query param", slog.String("value", chatIDStr))
			appErr := model.NewAppError("INVALID_QUERY_PARAM", "chat_idの形式が正しくありません。", "chat_id", model.ErrInvalidInput)
			webutil.HandleError(w, logger, appErr)
			return
		}
		chatID = &id
	}

	messages, err := h.service.ListMessages(r.Context(), chatID)
	if err != nil {
		logger.Error("Error listing messages in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	if messages == nil {
		messages = []*model.Message{}
	}
	logger.Info("Messages listed successfully", slog.Int("count", len(messages)))
	webutil.RespondWithJSON(w, http.StatusOK, messages, logger)
}

// GetChatMessages はチャット配下のメッセージ一覧を取得するためのハンドラ。
// GET /chats/{chat_id}/messages 用で、絞り込みの実体は GetMessages と同じ。
func (h *MessageHandler) GetChatMessages(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetChatMessages"))

	chatID, ok := parseUUIDParam(w, r, logger, "chat_id")
	if !ok {
		return
	}
	logger = logger.With(slog.String("chat_id", chatID.String()))

	messages, err := h.service.ListMessages(r.Context(), &chatID)
	if err != nil {
		logger.Error("Error listing messages in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	if messages == nil {
		messages = []*model.Message{}
	}
	logger.Info("Chat messages listed successfully", slog.Int("count", len(messages)))
	webutil.RespondWithJSON(w, http.StatusOK, messages, logger)
}

// GetMessage は特定のメッセージリソースを取得するためのハンドラ
func (h *MessageHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetMessage"))

	messageID, ok := parseUUIDParam(w, r, logger, "message_id")
	if !ok {
		return
	}
	logger = logger.With(slog.String("message_id", messageID.String()))

	message, err := h.service.GetMessage(r.Context(), messageID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Message not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error getting message from service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Message retrieved successfully")
	webutil.RespondWithJSON(w, http.StatusOK, message, logger)
}

// PatchMessage は特定のメッセージリソースの一部を更新するためのハンドラ
func (h *MessageHandler) PatchMessage(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchMessage"))

	messageID, ok := parseUUIDParam(w, r, logger, "message_id")
	if !ok {
		return
	}
	logger = logger.With(slog.String("message_id", messageID.String()))

	var req model.UpdateMessageRequest
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

	message, err := h.service.UpdateMessage(r.Context(), messageID, &req)
	if err != nil {
		logger.Error("Error updating message in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Message updated successfully")
	webutil.RespondWithJSON(w, http.StatusOK, message, logger)
}

// DeleteMessage は特定のメッセージリソースを削除するためのハンドラ
func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteMessage"))

	messageID, ok := parseUUIDParam(w, r, logger, "message_id")
	if !ok {
		return
	}
	logger = logger.With(slog.String("message_id", messageID.String()))

	if err := h.service.DeleteMessage(r.Context(), messageID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Message not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error deleting message in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Message deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}
