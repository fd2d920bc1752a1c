package handlers_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go_ms_user/internal/handlers"
	"go_ms_user/internal/model"
	"go_ms_user/internal/provider"
	providermocks "go_ms_user/internal/provider/mocks"
	"go_ms_user/internal/repository"
	"go_ms_user/internal/service"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// setupAuthAPIApp は実DB (dockertestのPostgreSQL) とモックプロバイダで
// 認証APIを組み立てる。ローカルストアの状態遷移まで含めて検証するのが目的。
func setupAuthAPIApp(t *testing.T) (*chi.Mux, *providermocks.Client) {
	t.Helper()
	if testDB == nil {
		t.Skip("PostgreSQL container is not available")
	}
	require.NoError(t, testDB.Exec("TRUNCATE users, chats, messages CASCADE").Error)

	providerClient := providermocks.NewClient(t)
	userRepo := repository.NewGormUserRepository()
	authService := service.NewAuthService(testDB, userRepo, providerClient, &service.LogMailer{})
	authHandler := handlers.NewAuthHandler(authService, slog.Default())

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(5 * time.Second))
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/signin", authHandler.Signin)
	})
	return r, providerClient
}

func countStoredUsers(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, testDB.Model(&model.User{}).Count(&count).Error)
	return count
}

func postJSON(t *testing.T, server *httptest.Server, path string, payload interface{}) *http.Response {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, server.URL+path, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

// サインアップ→サインインの往復が同じユーザーに行き着くこと (実ストア)。
func TestAuthAPI_SignupSigninRoundTrip(t *testing.T) {
	router, providerClient := setupAuthAPIApp(t)
	server := httptest.NewServer(router)
	defer server.Close()

	uid := "it-firebase-uid-1"
	providerClient.On("CreateAccount", mock.Anything, "roundtrip@example.com", "password123").
		Return(uid, nil).Once()

	resp := postJSON(t, server, "/api/v1/auth/signup", model.SignupRequest{
		Email:    "roundtrip@example.com",
		Password: "password123",
		Name:     "往復太郎",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.UserResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	assert.EqualValues(t, 1, countStoredUsers(t))

	providerClient.On("SignInWithPassword", mock.Anything, "roundtrip@example.com", "password123").
		Return(&provider.Grant{IDToken: "it-id-token", RefreshToken: "it-refresh", UID: uid}, nil).Once()
	providerClient.On("VerifyToken", mock.Anything, "it-id-token").
		Return(&model.VerifiedIdentity{UID: uid}, nil).Once()

	resp = postJSON(t, server, "/api/v1/auth/signin", model.SigninRequest{
		Email:    "roundtrip@example.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var signin model.SigninResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&signin))
	resp.Body.Close()

	require.NotNil(t, signin.User)
	assert.Equal(t, created.UserID, signin.User.UserID)
	assert.Equal(t, created.Email, signin.User.Email)
	assert.Equal(t, "it-id-token", signin.IDToken)
	assert.EqualValues(t, 1, countStoredUsers(t))
}

// プロバイダ側の作成成功後にローカルのメール一意制約で弾かれたケース。
// 孤児になったプロバイダアカウントはその後サインインできない。
func TestAuthAPI_OrphanedAccountGap(t *testing.T) {
	router, providerClient := setupAuthAPIApp(t)
	server := httptest.NewServer(router)
	defer server.Close()

	providerClient.On("CreateAccount", mock.Anything, "gap@example.com", "password-a").
		Return("it-uid-first", nil).Once()
	resp := postJSON(t, server, "/api/v1/auth/signup", model.SignupRequest{
		Email:    "gap@example.com",
		Password: "password-a",
		Name:     "一人目",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// 2回目: プロバイダは成功するがローカルで重複 → 409、行数は増えない
	providerClient.On("CreateAccount", mock.Anything, "gap@example.com", "password-b").
		Return("it-uid-orphan", nil).Once()
	resp = postJSON(t, server, "/api/v1/auth/signup", model.SignupRequest{
		Email:    "gap@example.com",
		Password: "password-b",
		Name:     "二人目",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var errResp map[string]map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	resp.Body.Close()
	assert.Equal(t, "DUPLICATE_EMAIL", errResp["error"]["code"])
	assert.EqualValues(t, 1, countStoredUsers(t))

	// 孤児uidでのサインインは404 (USER_NOT_PROVISIONED)
	providerClient.On("SignInWithPassword", mock.Anything, "gap@example.com", "password-b").
		Return(&provider.Grant{IDToken: "it-orphan-token", RefreshToken: "it-orphan-refresh", UID: "it-uid-orphan"}, nil).Once()
	providerClient.On("VerifyToken", mock.Anything, "it-orphan-token").
		Return(&model.VerifiedIdentity{UID: "it-uid-orphan"}, nil).Once()

	resp = postJSON(t, server, "/api/v1/auth/signin", model.SigninRequest{
		Email:    "gap@example.com",
		Password: "password-b",
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	resp.Body.Close()
	assert.Equal(t, "USER_NOT_PROVISIONED", errResp["error"]["code"])
	assert.EqualValues(t, 1, countStoredUsers(t))
}
