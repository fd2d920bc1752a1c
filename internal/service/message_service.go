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

type MessageService interface {
	CreateMessage(ctx context.Context, req *model.CreateMessageRequest) (*model.Message, error)
	GetMessage(ctx context.Context, messageID uuid.UUID) (*model.Message, error)
	// ListMessages は chatID が nil なら全件を返す
	ListMessages(ctx context.Context, chatID *uuid.UUID) ([]*model.Message, error)
	UpdateMessage(ctx context.Context, messageID uuid.UUID, req *model.UpdateMessageRequest) (*model.Message, error)
	DeleteMessage(ctx context.Context, messageID uuid.UUID) error
}

type messageService struct {
	db          *gorm.DB
	messageRepo repository.MessageRepository
	chatRepo    repository.ChatRepository
}

func NewMessageService(db *gorm.DB, messageRepo repository.MessageRepository, chatRepo repository.ChatRepository) MessageService {
	return &messageService{
		db:          db,
		messageRepo: messageRepo,
		chatRepo:    chatRepo,
	}
}

func (s *messageService) CreateMessage(ctx context.Context, req *model.CreateMessageRequest) (*model.Message, error) {
	logger := middleware.GetLogger(ctx)

	var created *model.Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 親チャットが無いメッセージは作らせない
		if _, err := s.chatRepo.FindByID(ctx, tx, req.ChatID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("CHAT_NOT_FOUND", "指定されたチャットが存在しません。", "chat_id", model.ErrNotFound)
			}
			return err
		}

		message := &model.Message{
			MessageID: uuid.New(),
			ChatID:    req.ChatID,
			Sender:    req.Sender,
			Content:   req.Content,
		}
		if err := s.messageRepo.Create(ctx, tx, message); err != nil {
			return err
		}
		created = message
		return nil
	})
	if err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		logger.Error("Transaction failed for CreateMessage", "error", err)
		return nil, model.ErrInternalServer
	}

	return created, nil
}

func (s *messageService) GetMessage(ctx context.Context, messageID uuid.UUID) (*model.Message, error) {
	return s.messageRepo.FindByID(ctx, s.db, messageID)
}

func (s *messageService) ListMessages(ctx context.Context, chatID *uuid.UUID) ([]*model.Message, error) {
	messages, err := s.messageRepo.List(ctx, s.db, chatID)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to list messages", "error", err)
		return nil, model.ErrInternalServer
	}
	return messages, nil
}

func (s *messageService) UpdateMessage(ctx context.Context, messageID uuid.UUID, req *model.UpdateMessageRequest) (*model.Message, error) {
	logger := middleware.GetLogger(ctx)
	var updated *model.Message

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.messageRepo.FindByID(ctx, tx, messageID); err != nil {
			return err
		}

		updates := map[string]interface{}{"content": req.Content}
		if err := s.messageRepo.Update(ctx, tx, messageID, updates); err != nil {
			return err
		}

		message, err := s.messageRepo.FindByID(ctx, tx, messageID)
		if err != nil {
			return err
		}
		updated = message
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		logger.Error("Transaction failed for UpdateMessage", "error", err, "message_id", messageID)
		return nil, model.ErrInternalServer
	}

	return updated, nil
}

func (s *messageService) DeleteMessage(ctx context.Context, messageID uuid.UUID) error {
	if err := s.messageRepo.Delete(ctx, s.db, messageID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		middleware.GetLogger(ctx).Error("Failed to delete message", "error", err, "message_id", messageID)
		return model.ErrInternalServer
	}
	return nil
}
