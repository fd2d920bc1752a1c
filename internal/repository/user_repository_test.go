package repository

import (
	"context"
	"testing"

	"go_ms_user/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true, // sqliteの一意制約違反を gorm.ErrDuplicatedKey に変換する
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Chat{}, &model.Message{}))
	return db
}

func newTestUser(email string) *model.User {
	uid := "firebase-" + email
	return &model.User{
		UserID:      uuid.New(),
		FirebaseUID: &uid,
		Name:        "テストユーザー",
		Email:       email,
		Plan:        model.PlanFree,
	}
}

func TestGormUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	db := setupRepoTestDB(t)
	repo := NewGormUserRepository()

	user := newTestUser("taro@example.com")
	require.NoError(t, repo.Create(ctx, db, user))

	t.Run("FindByID", func(t *testing.T) {
		found, err := repo.FindByID(ctx, db, user.UserID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, found.Email)
	})

	t.Run("FindByEmail", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, db, "taro@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.UserID, found.UserID)
	})

	t.Run("FindByFirebaseUID", func(t *testing.T) {
		found, err := repo.FindByFirebaseUID(ctx, db, *user.FirebaseUID)
		require.NoError(t, err)
		assert.Equal(t, user.UserID, found.UserID)
	})

	t.Run("存在しないIDはErrNotFound", func(t *testing.T) {
		_, err := repo.FindByID(ctx, db, uuid.New())
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("存在しないfirebase_uidはErrNotFound", func(t *testing.T) {
		_, err := repo.FindByFirebaseUID(ctx, db, "no-such-uid")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestGormUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	db := setupRepoTestDB(t)
	repo := NewGormUserRepository()

	require.NoError(t, repo.Create(ctx, db, newTestUser("dup@example.com")))

	dup := newTestUser("dup@example.com")
	dup.UserID = uuid.New()
	uid := "another-uid"
	dup.FirebaseUID = &uid

	err := repo.Create(ctx, db, dup)
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestGormUserRepository_Update(t *testing.T) {
	ctx := context.Background()
	db := setupRepoTestDB(t)
	repo := NewGormUserRepository()

	user := newTestUser("update@example.com")
	require.NoError(t, repo.Create(ctx, db, user))

	t.Run("属性が更新される", func(t *testing.T) {
		err := repo.Update(ctx, db, user.UserID, map[string]interface{}{
			"name": "改名後",
			"plan": model.PlanPremium,
		})
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, db, user.UserID)
		require.NoError(t, err)
		assert.Equal(t, "改名後", found.Name)
		assert.Equal(t, model.PlanPremium, found.Plan)
	})

	t.Run("存在しないユーザーの更新はErrNotFound", func(t *testing.T) {
		err := repo.Update(ctx, db, uuid.New(), map[string]interface{}{"name": "x"})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestGormUserRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db := setupRepoTestDB(t)
	repo := NewGormUserRepository()

	user := newTestUser("delete@example.com")
	require.NoError(t, repo.Create(ctx, db, user))

	require.NoError(t, repo.Delete(ctx, db, user.UserID))

	// 論理削除後は見えない
	_, err := repo.FindByID(ctx, db, user.UserID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	// 二重削除はErrNotFound
	err = repo.Delete(ctx, db, user.UserID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
