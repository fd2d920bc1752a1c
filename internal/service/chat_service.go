package service

import (
	"context"
	"errors"

	"go_ms_user/internal/middleware"
	"go_ms_user/internal/model"
	"go_ms_user/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatService interface {
	CreateChat(ctx context.Context, req *model.CreateChatRequest) (*model.Chat, error)
	GetChat(ctx context.Context, chatID uuid.UUID) (*model.Chat, error)
	ListChats(ctx context.Context) ([]*model.Chat, error)
	UpdateChat(ctx context.Context, chatID uuid.UUID, req *model.UpdateChatRequest) (*model.Chat, error)
	DeleteChat(ctx context.Context, chatID uuid.UUID) error
}

type chatService struct {
	db       *gorm.DB
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
}

func NewChatService(db *gorm.DB, chatRepo repository.ChatRepository, userRepo repository.UserRepository) ChatService {
	return &chatService{
		db:       db,
		chatRepo: chatRepo,
		userRepo: userRepo,
	}
}

func (s *chatService) CreateChat(ctx context.Context, req *model.CreateChatRequest) (*model.Chat, error) {
	logger := middleware.GetLogger(ctx)

	var created *model.Chat
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 所有者が実在しないチャットは作らせない
		if _, err := s.userRepo.FindByID(ctx, tx, req.UserID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("USER_NOT_FOUND", "指定されたユーザーが存在しません。", "user_id", model.ErrNotFound)
			}
			return err
		}

		chat := &model.Chat{
			ChatID: uuid.New(),
			UserID: req.UserID,
			Title:  req.Title,
		}
		if err := s.chatRepo.Create(ctx, tx, chat); err != nil {
			return err
		}
		created = chat
		return nil
	})
	if err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		logger.Error("Transaction failed for CreateChat", "error", err)
		return nil, model.ErrInternalServer
	}

	logger.Info("Chat created", "chat_id", created.ChatID, "user_id", created.UserID)
	return created, nil
}

func (s *chatService) GetChat(ctx context.Context, chatID uuid.UUID) (*model.Chat, error) {
	return s.chatRepo.FindByID(ctx, s.db, chatID)
}

func (s *chatService) ListChats(ctx context.Context) ([]*model.Chat, error) {
	chats, err := s.chatRepo.List(ctx, s.db)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to list chats", "error", err)
		return nil, model.ErrInternalServer
	}
	return chats, nil
}

func (s *chatService) UpdateChat(ctx context.Context, chatID uuid.UUID, req *model.UpdateChatRequest) (*model.Chat, error) {
	logger := middleware.GetLogger(ctx)
	var updated *model.Chat

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.chatRepo.FindByID(ctx, tx, chatID); err != nil {
			return err
		}

		updates := map[string]interface{}{"title": req.Title}
		if err := s.chatRepo.Update(ctx, tx, chatID, updates); err != nil {
			return err
		}

		chat, err := s.chatRepo.FindByID(ctx, tx, chatID)
		if err != nil {
			return err
		}
		updated = chat
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		logger.Error("Transaction failed for UpdateChat", "error", err, "chat_id", chatID)
		return nil, model.ErrInternalServer
	}

	return updated, nil
}

func (s *chatService) DeleteChat(ctx context.Context, chatID uuid.UUID) error {
	if err := s.chatRepo.Delete(ctx, s.db, chatID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		middleware.GetLogger(ctx).Error("Failed to delete chat", "error", err, "chat_id", chatID)
		return model.ErrInternalServer
	}
	return nil
}
