package model

import (
	"time"

	"github.com/google/uuid"
)

// Chat はユーザーの会話スレッドです
type Chat struct {
	ChatID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []Message `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Chat) TableName() string {
	return "chats"
}

// メッセージの送信者種別
const (
	SenderUser    = "user"
	SenderChatbot = "chatbot"
)

// Message はチャット内の1発言です
type Message struct {
	MessageID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID    uuid.UUID `gorm:"type:uuid;not null;index" json:"chat_id"`
	Sender    string    `gorm:"type:varchar(10);not null" json:"sender"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"date"`
}

func (Message) TableName() string {
	return "messages"
}

type CreateChatRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Title  string    `json:"title" validate:"required,max=255"`
}

type UpdateChatRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

type CreateMessageRequest struct {
	ChatID  uuid.UUID `json:"chat_id" validate:"required"`
	Sender  string    `json:"sender" validate:"required,oneof=user chatbot"`
	Content string    `json:"content" validate:"required"`
}

type UpdateMessageRequest struct {
	Content string `json:"content" validate:"required"`
}
