package service

import (
	"context"
	"errors"
	"fmt"

	"go_ms_user/internal/middleware"
	"go_ms_user/internal/model"
	"go_ms_user/internal/provider"
	"go_ms_user/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService はIDブリッジです。サインアップ(作成して紐付け)と
// サインイン(検証して引き当て)の2操作だけを持つ。
type AuthService interface {
	Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error)
	Signin(ctx context.Context, req *model.SigninRequest) (*model.SigninResponse, error)
}

type authService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	provider provider.Client
	mailer   Mailer
}

func NewAuthService(db *gorm.DB, userRepo repository.UserRepository, providerClient provider.Client, mailer Mailer) AuthService {
	return &authService{
		db:       db,
		userRepo: userRepo,
		provider: providerClient,
		mailer:   mailer,
	}
}

// Signup はFirebaseにアカウントを作成し、返されたuidを紐付けた
// ローカルユーザーを作成します。
//
// プロバイダとローカルDBをまたぐトランザクションは存在しないため、
// ステップ3 (ローカル作成) が失敗した場合、プロバイダ側には対応する
// ローカルレコードを持たない孤児アカウントが残る。補償削除は行わず、
// ログで追跡可能にする (DESIGN.md参照)。
func (s *authService) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error) {
	logger := middleware.GetLogger(ctx).With("email", req.Email)

	// 1. 必須フィールドの検証。ここで弾ければ外部呼び出しは一切発生しない。
	if req.Email == "" || req.Password == "" {
		logger.Warn("Signup rejected: missing required fields")
		return nil, model.NewAppError("VALIDATION_ERROR", "メールアドレスとパスワードは必須です。", "email,password", model.ErrInvalidInput)
	}
	plan := req.Plan
	if plan == "" {
		plan = model.PlanFree
	}

	// 2. プロバイダ側アカウントの作成。失敗したらローカルには何も作らない。
	uid, err := s.provider.CreateAccount(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrDuplicateAccount):
			logger.Warn("Signup failed: email already exists at provider")
			return nil, model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", err)
		case errors.Is(err, provider.ErrRateLimited):
			logger.Warn("Signup failed: provider rate limited")
			return nil, model.NewAppError("RATE_LIMITED", "リクエストが多すぎます。しばらくしてから再度お試しください。", "", err)
		case errors.Is(err, provider.ErrUnavailable):
			logger.Error("Signup failed: provider unavailable", "error", err)
			return nil, model.NewAppError("PROVIDER_UNAVAILABLE", "認証サービスに接続できませんでした。", "", err)
		default:
			// パスワードが弱い等。プロバイダのメッセージをそのまま返す。
			logger.Warn("Signup rejected by provider", "error", err)
			return nil, model.NewAppError("PROVIDER_REJECTED", err.Error(), "", err)
		}
	}
	logger = logger.With("firebase_uid", uid)

	// 3. uidを紐付けたローカルユーザーを作成
	user := &model.User{
		UserID:      uuid.New(),
		FirebaseUID: &uid,
		Name:        req.Name,
		Email:       req.Email,
		Plan:        plan,
	}
	if err := s.userRepo.Create(ctx, s.db, user); err != nil {
		if errors.Is(err, model.ErrConflict) {
			// 既知の整合性ギャップ: プロバイダ側アカウントが孤児として残る
			logger.Warn("Local user creation conflicted; provider account is now orphaned",
				"orphaned_uid", uid,
			)
			return nil, model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
		}
		logger.Error("Failed to create local user; provider account is now orphaned",
			"error", err,
			"orphaned_uid", uid,
		)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザーの作成に失敗しました。", "", err)
	}

	// ウェルカムメールはベストエフォート。失敗してもサインアップは成立する。
	if s.mailer != nil {
		if err := s.sendWelcomeEmail(ctx, user); err != nil {
			logger.Warn("Failed to send welcome email", "error", err)
		}
	}

	logger.Info("User signed up", "user_id", user.UserID)
	return user, nil
}

// Signin はパスワードグラントを実行し、返却トークンを独立に再検証した上で、
// 検証済みuidでローカルユーザーを引き当てます。ローカル状態は変更しない。
func (s *authService) Signin(ctx context.Context, req *model.SigninRequest) (*model.SigninResponse, error) {
	logger := middleware.GetLogger(ctx).With("email", req.Email)

	if req.Email == "" || req.Password == "" {
		return nil, model.NewAppError("VALIDATION_ERROR", "メールアドレスとパスワードは必須です。", "email,password", model.ErrInvalidInput)
	}

	// 1. パスワードグラント。どちらのフィールドが誤っていたかは区別しない
	//    (列挙攻撃対策)。スロットリングと到達不能はそれとは別に伝える。
	grant, err := s.provider.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrAuthFailed):
			logger.Warn("Signin failed: invalid credentials")
			return nil, model.NewAppError("AUTHENTICATION_FAILED", "メールアドレスまたはパスワードが正しくありません。", "", err)
		case errors.Is(err, provider.ErrRateLimited):
			logger.Warn("Signin failed: provider rate limited")
			return nil, model.NewAppError("RATE_LIMITED", "試行回数が多すぎます。しばらくしてから再度お試しください。", "", err)
		case errors.Is(err, provider.ErrUnavailable):
			logger.Error("Signin failed: provider unavailable", "error", err)
			return nil, model.NewAppError("PROVIDER_UNAVAILABLE", "認証サービスに接続できませんでした。", "", err)
		default:
			logger.Error("Signin failed: unexpected provider error", "error", err)
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
		}
	}

	// 2. グラント応答の改竄・すり替えに備え、subjectを信用する前に
	//    トークン自体をプロバイダに対して再検証する。
	identity, err := s.provider.VerifyToken(ctx, grant.IDToken)
	if err != nil {
		if errors.Is(err, provider.ErrUnavailable) || errors.Is(err, provider.ErrRateLimited) {
			logger.Error("Signin failed: token re-verification unavailable", "error", err)
			return nil, model.NewAppError("PROVIDER_UNAVAILABLE", "認証サービスに接続できませんでした。", "", err)
		}
		logger.Error("Signin failed: granted token did not verify", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}
	if identity.UID != grant.UID {
		logger.Error("Signin failed: grant uid and token subject mismatch",
			"grant_uid", grant.UID, "token_uid", identity.UID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "",
			fmt.Errorf("%w: grant/token subject mismatch", model.ErrInternalServer))
	}

	// 3. 検証済みsubjectでローカルユーザーを引き当てる。
	//    不在は資格情報誤りとは区別されるエラー (管理上の不整合)。
	user, err := s.userRepo.FindByFirebaseUID(ctx, s.db, identity.UID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Signin failed: account exists at provider but not locally", "firebase_uid", identity.UID)
			return nil, model.NewAppError("USER_NOT_PROVISIONED", "アカウントは存在しますが、ユーザー情報が登録されていません。", "", model.ErrNotFound)
		}
		logger.Error("Signin failed: db error on FindByFirebaseUID", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}

	logger.Info("Signin successful", "user_id", user.UserID)
	return &model.SigninResponse{
		User:         model.NewUserResponse(user),
		IDToken:      grant.IDToken,
		RefreshToken: grant.RefreshToken,
	}, nil
}

func (s *authService) sendWelcomeEmail(ctx context.Context, user *model.User) error {
	subject := "【ms-user】ご登録ありがとうございます"
	body := fmt.Sprintf("%s様\n\nご登録が完了しました。\nプラン: %s\n", user.Name, user.Plan)
	return s.mailer.Send(ctx, user.Email, subject, body)
}
