package service

import (
	"context"
	"testing"

	"go_ms_user/internal/model"
	"go_ms_user/internal/provider"
	providermocks "go_ms_user/internal/provider/mocks"
	"go_ms_user/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// プロバイダだけをモックし、ローカルストアは本物のリポジトリ+sqliteで動かす。
func setupFlowTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true, // sqliteの一意制約違反を gorm.ErrDuplicatedKey に変換する
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Chat{}, &model.Message{}))
	return db
}

func countUsers(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
	return count
}

// サインアップ→サインインの往復で、同じローカルユーザーに行き着くこと。
func Test_authService_SignupSigninRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := setupFlowTestDB(t)
	providerClient := providermocks.NewClient(t)
	svc := NewAuthService(db, repository.NewGormUserRepository(), providerClient, &LogMailer{})

	email := "hanako@example.com"
	uid := "firebase-uid-roundtrip"

	providerClient.On("CreateAccount", ctx, email, "password123").
		Return(uid, nil).Once()

	created, err := svc.Signup(ctx, &model.SignupRequest{
		Email:    email,
		Password: "password123",
		Name:     "花子",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.EqualValues(t, 1, countUsers(t, db))

	providerClient.On("SignInWithPassword", ctx, email, "password123").
		Return(&provider.Grant{IDToken: "id-token-1", RefreshToken: "refresh-token-1", UID: uid}, nil).Once()
	providerClient.On("VerifyToken", ctx, "id-token-1").
		Return(&model.VerifiedIdentity{UID: uid}, nil).Once()

	resp, err := svc.Signin(ctx, &model.SigninRequest{Email: email, Password: "password123"})
	require.NoError(t, err)
	require.NotNil(t, resp)

	// サインアップで作られたのと同一のユーザーが返る
	assert.Equal(t, created.UserID, resp.User.UserID)
	assert.Equal(t, created.Email, resp.User.Email)
	require.NotNil(t, resp.User.FirebaseUID)
	assert.Equal(t, uid, *resp.User.FirebaseUID)
	assert.Equal(t, "id-token-1", resp.IDToken)
	assert.Equal(t, "refresh-token-1", resp.RefreshToken)

	// 往復してもローカルユーザーは1行のまま
	assert.EqualValues(t, 1, countUsers(t, db))
}

// プロバイダ側の作成は成功したがローカルのメール一意制約で弾かれるケース。
// プロバイダアカウントは孤児として残り、そのuidでのサインインは
// USER_NOT_PROVISIONED で失敗する。
func Test_authService_Signup_OrphanedAccountGap(t *testing.T) {
	ctx := context.Background()
	db := setupFlowTestDB(t)
	providerClient := providermocks.NewClient(t)
	svc := NewAuthService(db, repository.NewGormUserRepository(), providerClient, &LogMailer{})

	email := "jiro@example.com"

	// 1人目のサインアップは成立する
	providerClient.On("CreateAccount", ctx, email, "password-first").
		Return("firebase-uid-first", nil).Once()
	first, err := svc.Signup(ctx, &model.SignupRequest{Email: email, Password: "password-first", Name: "次郎"})
	require.NoError(t, err)
	require.EqualValues(t, 1, countUsers(t, db))

	// 2人目: プロバイダは新しいuidを払い出すが、ローカルのemail一意制約で衝突する
	orphanUID := "firebase-uid-orphan"
	providerClient.On("CreateAccount", ctx, email, "password-second").
		Return(orphanUID, nil).Once()

	_, err = svc.Signup(ctx, &model.SignupRequest{Email: email, Password: "password-second", Name: "偽次郎"})
	require.Error(t, err)
	var appErr *model.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "DUPLICATE_EMAIL", appErr.Detail.Code)
	assert.ErrorIs(t, err, model.ErrConflict)

	// 衝突後もローカルユーザーはちょうど1行
	assert.EqualValues(t, 1, countUsers(t, db))

	// 孤児uidでのサインイン: 資格情報は正しいがローカルに対応行がない
	providerClient.On("SignInWithPassword", ctx, email, "password-second").
		Return(&provider.Grant{IDToken: "orphan-token", RefreshToken: "orphan-refresh", UID: orphanUID}, nil).Once()
	providerClient.On("VerifyToken", ctx, "orphan-token").
		Return(&model.VerifiedIdentity{UID: orphanUID}, nil).Once()

	_, err = svc.Signin(ctx, &model.SigninRequest{Email: email, Password: "password-second"})
	require.Error(t, err)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "USER_NOT_PROVISIONED", appErr.Detail.Code)
	assert.ErrorIs(t, err, model.ErrNotFound)

	// 1人目のアカウントは無傷のまま
	stored, err := repository.NewGormUserRepository().FindByID(ctx, db, first.UserID)
	require.NoError(t, err)
	assert.Equal(t, email, stored.Email)
	require.NotNil(t, stored.FirebaseUID)
	assert.Equal(t, "firebase-uid-first", *stored.FirebaseUID)
}
