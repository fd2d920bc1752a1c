package service

import (
	"context"
	"errors"

	"go_ms_user/internal/middleware"
	"go_ms_user/internal/model"
	"go_ms_user/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService interface {
	CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, req *model.UpdateUserRequest) (*model.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	db       *gorm.DB // トランザクション用にDB接続を持つ
	userRepo repository.UserRepository
}

func NewUserService(db *gorm.DB, userRepo repository.UserRepository) UserService {
	return &userService{
		db:       db,
		userRepo: userRepo,
	}
}

// CreateUser はIDプロバイダを経由しない管理用のユーザー作成です。
// パスワードが渡された場合のみbcryptハッシュをローカルに保存する (移行用の旧経路)。
func (s *userService) CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	logger := middleware.GetLogger(ctx)

	if req.Email == "" {
		return nil, model.NewAppError("VALIDATION_ERROR", "メールアドレスは必須です。", "email", model.ErrInvalidInput)
	}
	plan := req.Plan
	if plan == "" {
		plan = model.PlanFree
	}

	user := &model.User{
		UserID: uuid.New(),
		Name:   req.Name,
		Email:  req.Email,
		Plan:   plan,
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.Error("Failed to hash password", "error", err)
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザーの作成に失敗しました。", "", err)
		}
		hashStr := string(hash)
		user.PasswordHash = &hashStr
	}

	if err := s.userRepo.Create(ctx, s.db, user); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
		}
		logger.Error("Failed to create user", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザーの作成に失敗しました。", "", err)
	}

	logger.Info("User created", "user_id", user.UserID)
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	// エラーはリポジトリで変換済み (ErrNotFound含む)
	return s.userRepo.FindByID(ctx, s.db, userID)
}

func (s *userService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx, s.db)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to list users", "error", err)
		return nil, model.ErrInternalServer
	}
	return users, nil
}

func (s *userService) UpdateUser(ctx context.Context, userID uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var updated *model.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 存在確認を先に行い、更新対象が無ければ404を返す
		if _, err := s.userRepo.FindByID(ctx, tx, userID); err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Email != nil {
			updates["email"] = *req.Email
		}
		if req.Plan != nil {
			updates["plan"] = *req.Plan
		}
		if len(updates) > 0 {
			if err := s.userRepo.Update(ctx, tx, userID, updates); err != nil {
				return err
			}
		}

		user, err := s.userRepo.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrConflict) {
			return nil, err
		}
		logger.Error("Transaction failed for UpdateUser", "error", err, "user_id", userID)
		return nil, model.ErrInternalServer
	}

	return updated, nil
}

// DeleteUser はローカルレコードの論理削除です。
// プロバイダ側アカウントは削除しない (サインインはローカル不在で404になる)。
func (s *userService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, s.db, userID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		middleware.GetLogger(ctx).Error("Failed to delete user", "error", err, "user_id", userID)
		return model.ErrInternalServer
	}
	return nil
}
