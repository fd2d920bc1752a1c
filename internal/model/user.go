package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// プランの種別
const (
	PlanFree    = "FREE"
	PlanPremium = "PREMIUM"
)

// User はローカルのユーザーレコードです。
// 認証情報(パスワード)はFirebase側が正であり、FirebaseUID で両者を紐付ける。
// PasswordHash はプロバイダ導入前のレガシーアカウントのみが使用する。
type User struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FirebaseUID *string   `gorm:"type:varchar(128);uniqueIndex;default:null" json:"firebase_uid,omitempty"`
	Name        string    `gorm:"type:varchar(25);not null" json:"name"`
	Email       string    `gorm:"type:varchar(50);unique;not null" json:"email"`
	// レガシー(非プロバイダ)アカウント用。Firebase連携アカウントでは常にNULL。
	PasswordHash *string        `gorm:"default:null" json:"-"`
	Plan         string         `gorm:"type:varchar(50);not null;default:'FREE'" json:"plan"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// GORM用のリレーション (JSONには含めない)
	Chats []Chat `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// CreateUserRequest は(認証を伴わない)ユーザーCRUD作成のリクエストボディ
type CreateUserRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=25"`
	Email    string  `json:"email" validate:"required,email,max=50"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	Plan     string  `json:"plan" validate:"omitempty,oneof=FREE PREMIUM"`
}

// UpdateUserRequest はユーザー更新のリクエストボディ
type UpdateUserRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=25"`
	Email *string `json:"email" validate:"omitempty,email,max=50"`
	Plan  *string `json:"plan" validate:"omitempty,oneof=FREE PREMIUM"`
}

// UserResponse はクライアントに返すユーザー情報の構造体 (パスワードは含めない)
type UserResponse struct {
	UserID      uuid.UUID `json:"id"`
	FirebaseUID *string   `json:"firebase_uid,omitempty"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Plan        string    `json:"plan"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewUserResponse(u *User) *UserResponse {
	return &UserResponse{
		UserID:      u.UserID,
		FirebaseUID: u.FirebaseUID,
		Name:        u.Name,
		Email:       u.Email,
		Plan:        u.Plan,
		CreatedAt:   u.CreatedAt,
	}
}
