//go:generate mockery --name ChatRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_ms_user/internal/middleware"
	"go_ms_user/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRepository interface {
	Create(ctx context.Context, db *gorm.DB, chat *model.Chat) error
	FindByID(ctx context.Context, db *gorm.DB, chatID uuid.UUID) (*model.Chat, error)
	List(ctx context.Context, db *gorm.DB) ([]*model.Chat, error)
	Update(ctx context.Context, db *gorm.DB, chatID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, db *gorm.DB, chatID uuid.UUID) error
}

type gormChatRepository struct{}

func NewGormChatRepository() ChatRepository {
	return &gormChatRepository{}
}

func (r *gormChatRepository) Create(ctx context.Context, db *gorm.DB, chat *model.Chat) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Create(chat)
	if result.Error != nil {
		logger.Error("Error creating chat in DB",
			"error", result.Error,
			"user_id", chat.UserID.String(),
		)
		return fmt.Errorf("gormChatRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormChatRepository) FindByID(ctx context.Context, db *gorm.DB, chatID uuid.UUID) (*model.Chat, error) {
	logger := middleware.GetLogger(ctx)
	var chat model.Chat
	result := db.WithContext(ctx).Where("chat_id = ?", chatID).First(&chat)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding chat by ID in DB",
			"error", result.Error,
			"chat_id", chatID.String(),
		)
		return nil, fmt.Errorf("gormChatRepository.FindByID: %w", result.Error)
	}
	return &chat, nil
}

func (r *gormChatRepository) List(ctx context.Context, db *gorm.DB) ([]*model.Chat, error) {
	logger := middleware.GetLogger(ctx)
	var chats []*model.Chat
	result := db.WithContext(ctx).Order("created_at DESC").Find(&chats)
	if result.Error != nil {
		logger.Error("Error listing chats in DB", "error", result.Error)
		return nil, fmt.Errorf("gormChatRepository.List: %w", result.Error)
	}
	return chats, nil
}

func (r *gormChatRepository) Update(ctx context.Context, db *gorm.DB, chatID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := db.WithContext(ctx).Model(&model.Chat{}).Where("chat_id = ?", chatID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating chat in DB",
			"error", result.Error,
			"chat_id", chatID.String(),
		)
		return fmt.Errorf("gormChatRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormChatRepository) Delete(ctx context.Context, db *gorm.DB, chatID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Where("chat_id = ?", chatID).Delete(&model.Chat{})
	if result.Error != nil {
		logger.Error("Error deleting chat in DB",
			"error", result.Error,
			"chat_id", chatID.String(),
		)
		return fmt.Errorf("gormChatRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
