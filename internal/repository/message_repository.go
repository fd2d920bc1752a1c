//go:generate mockery --name MessageRepository --output ./mocks --outpkg mocks --case=underscore
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

type MessageRepository interface {
	Create(ctx context.Context, db *gorm.DB, message *model.Message) error
	FindByID(ctx context.Context, db *gorm.DB, messageID uuid.UUID) (*model.Message, error)
	// List は chatID が nil なら全件、指定されていればそのチャットのみ返す
	List(ctx context.Context, db *gorm.DB, chatID *uuid.UUID) ([]*model.Message, error)
	Update(ctx context.Context, db *gorm.DB, messageID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, db *gorm.DB, messageID uuid.UUID) error
}

type gormMessageRepository struct{}

func NewGormMessageRepository() MessageRepository {
	return &gormMessageRepository{}
}

func (r *gormMessageRepository) Create(ctx context.Context, db *gorm.DB, message *model.Message) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Create(message)
	if result.Error != nil {
		logger.Error("Error creating message in DB",
			"error", result.Error,
			"chat_id", message.ChatID.String(),
		)
		return fmt.Errorf("gormMessageRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormMessageRepository) FindByID(ctx context.Context, db *gorm.DB, messageID uuid.UUID) (*model.Message, error) {
	logger := middleware.GetLogger(ctx)
	var message model.Message
	result := db.WithContext(ctx).Where("message_id = ?", messageID).First(&message)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding message by ID in DB",
			"error", result.Error,
			"message_id", messageID.String(),
		)
		return nil, fmt.Errorf("gormMessageRepository.FindByID: %w", result.Error)
	}
	return &message, nil
}

func (r *gormMessageRepository) List(ctx context.Context, db *gorm.DB, chatID *uuid.UUID) ([]*model.Message, error) {
	logger := middleware.GetLogger(ctx)
	var messages []*model.Message

	query := db.WithContext(ctx).Order("created_at ASC")
	if chatID != nil {
		query = query.Where("chat_id = ?", *chatID)
	}
	result := query.Find(&messages)
	if result.Error != nil {
		logger.Error("Error listing messages in DB", "error", result.Error)
		return nil, fmt.Errorf("gormMessageRepository.List: %w", result.Error)
	}
	return messages, nil
}

func (r *gormMessageRepository) Update(ctx context.Context, db *gorm.DB, messageID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := db.WithContext(ctx).Model(&model.Message{}).Where("message_id = ?", messageID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating message in DB",
			"error", result.Error,
			"message_id", messageID.String(),
		)
		return fmt.Errorf("gormMessageRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormMessageRepository) Delete(ctx context.Context, db *gorm.DB, messageID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Where("message_id = ?", messageID).Delete(&model.Message{})
	if result.Error != nil {
		logger.Error("Error deleting message in DB",
			"error", result.Error,
			"message_id", messageID.String(),
		)
		return fmt.Errorf("gormMessageRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
