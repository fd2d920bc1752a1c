package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"go_ms_user/internal/model"
	"go_ms_user/internal/service"
	"go_ms_user/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type UserHandler struct {
	service service.UserService
	logger  *slog.Logger
}

func NewUserHandler(s service.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		service: s,
		logger:  logger,
	}
}

// PostUser は新しいユーザーリソースを作成するためのハンドラ (管理用・旧経路)
func (h *UserHandler) PostUser(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostUser"))

	var req model.CreateUserRequest
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

	user, err := h.service.CreateUser(r.Context(), &req)
	if err != nil {
		logger.Error("Error creating user in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("User created successfully", slog.String("user_id", user.UserID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, model.NewUserResponse(user), logger)
}

// GetUsers はユーザーリソースの一覧を取得するためのハンドラ
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetUsers"))

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		logger.Error("Error listing users in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	resp := make([]*model.UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, model.NewUserResponse(u))
	}
	logger.Info("Users listed successfully", slog.Int("count", len(resp)))
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// GetUser は特定のユーザーリソースを取得するためのハンドラ
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetUser"))

	userID, ok := parseUUIDParam(w, r, logger, "user_id")
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("User not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error getting user from service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("User retrieved successfully")
	webutil.RespondWithJSON(w, http.StatusOK, model.NewUserResponse(user), logger)
}

// PatchUser は特定のユーザーリソースの一部を更新するためのハンドラ
func (h *UserHandler) PatchUser(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchUser"))

	userID, ok := parseUUIDParam(w, r, logger, "user_id")
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	var req model.UpdateUserRequest
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

	user, err := h.service.UpdateUser(r.Context(), userID, &req)
	if err != nil {
		logger.Error("Error updating user in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("User updated successfully")
	webutil.RespondWithJSON(w, http.StatusOK, model.NewUserResponse(user), logger)
}

// DeleteUser は特定のユーザーリソースを論理削除するためのハンドラ
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteUser"))

	userID, ok := parseUUIDParam(w, r, logger, "user_id")
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("User not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error deleting user in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("User deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}

// parseUUIDParam はURLパラメータからUUIDを取り出す。失敗時はレスポンス済み。
func parseUUIDParam(w http.ResponseWriter, r *http.Request, logger *slog.Logger, name string) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, name)
	id, err := uuid.Parse(idStr)
	if err != nil {
		logger.Warn("Invalid UUID format in URL", slog.String("param", name), slog.String("value", idStr))
		appErr := model.NewAppError("INVALID_URL_PARAM", name+"の形式が正しくありません。", name, model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return uuid.Nil, false
	}
	return id, true
}
