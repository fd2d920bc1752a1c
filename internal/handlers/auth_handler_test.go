package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go_ms_user/internal/handlers"
	"go_ms_user/internal/model"
	"go_ms_user/internal/provider"
	"go_ms_user/internal/service/mocks"
)

func setupAuthRouter(t *testing.T) (*chi.Mux, *mocks.AuthService) {
	t.Helper()
	mockAuthService := mocks.NewAuthService(t)
	authHandler := handlers.NewAuthHandler(mockAuthService, nil)

	router := chi.NewRouter()
	router.Post("/api/v1/auth/signup", authHandler.Signup)
	router.Post("/api/v1/auth/signin", authHandler.Signin)
	return router, mockAuthService
}

func TestAuthHandler_Signup(t *testing.T) {
	uid := "firebase-uid-1"
	createdUser := &model.User{
		UserID:      uuid.New(),
		FirebaseUID: &uid,
		Name:        "太郎",
		Email:       "taro@example.com",
		Plan:        model.PlanFree,
	}

	tests := []struct {
		name           string
		body           interface{}
		rawBody        string // body より優先 (壊れたJSONのテスト用)
		setupMock      func(s *mocks.AuthService)
		expectedStatus int
		expectedCode   string // エラーレスポンスの error.code
	}{
		{
			name: "正常系: 201とユーザー情報を返す",
			body: model.SignupRequest{Email: "taro@example.com", Password: "password123", Name: "太郎"},
			setupMock: func(s *mocks.AuthService) {
				s.On("Signup", mock.Anything, mock.AnythingOfType("*model.SignupRequest")).
					Return(createdUser, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "異常系: 壊れたJSONは400",
			rawBody:        `{"email": `,
			setupMock:      func(s *mocks.AuthService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST_BODY",
		},
		{
			name:           "異常系: メール形式不正はバリデーションで400",
			body:           model.SignupRequest{Email: "not-an-email", Password: "password123"},
			setupMock:      func(s *mocks.AuthService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "異常系: パスワードが短すぎるのも400",
			body:           model.SignupRequest{Email: "taro@example.com", Password: "abc"},
			setupMock:      func(s *mocks.AuthService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name: "異常系: メール重複は409",
			body: model.SignupRequest{Email: "taro@example.com", Password: "password123"},
			setupMock: func(s *mocks.AuthService) {
				appErr := model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
				s.On("Signup", mock.Anything, mock.AnythingOfType("*model.SignupRequest")).
					Return(nil, appErr).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "DUPLICATE_EMAIL",
		},
		{
			name: "異常系: プロバイダ到達不能は502",
			body: model.SignupRequest{Email: "taro@example.com", Password: "password123"},
			setupMock: func(s *mocks.AuthService) {
				appErr := model.NewAppError("PROVIDER_UNAVAILABLE", "認証サービスに接続できませんでした。", "", provider.ErrUnavailable)
				s.On("Signup", mock.Anything, mock.AnythingOfType("*model.SignupRequest")).
					Return(nil, appErr).Once()
			},
			expectedStatus: http.StatusBadGateway,
			expectedCode:   "PROVIDER_UNAVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockAuthService := setupAuthRouter(t)
			tt.setupMock(mockAuthService)

			var bodyBytes []byte
			if tt.rawBody != "" {
				bodyBytes = []byte(tt.rawBody)
			} else {
				var err error
				bodyBytes, err = json.Marshal(tt.body)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(bodyBytes))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusCreated {
				var resp model.UserResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, createdUser.UserID, resp.UserID)
				assert.Equal(t, createdUser.Email, resp.Email)
				return
			}

			var errResp model.APIErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
			assert.Equal(t, tt.expectedCode, errResp.Error.Code)
			assert.NotEmpty(t, errResp.Error.Message)
		})
	}
}

func TestAuthHandler_Signin(t *testing.T) {
	signinResp := &model.SigninResponse{
		User: &model.UserResponse{
			UserID: uuid.New(),
			Email:  "taro@example.com",
			Plan:   model.PlanFree,
		},
		IDToken:      "id-token",
		RefreshToken: "refresh-token",
	}

	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(s *mocks.AuthService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "正常系: 200でトークンとユーザー情報を返す",
			body: model.SigninRequest{Email: "taro@example.com", Password: "password123"},
			setupMock: func(s *mocks.AuthService) {
				s.On("Signin", mock.Anything, mock.AnythingOfType("*model.SigninRequest")).
					Return(signinResp, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "異常系: 資格情報誤りは401",
			body: model.SigninRequest{Email: "taro@example.com", Password: "wrong-pass"},
			setupMock: func(s *mocks.AuthService) {
				appErr := model.NewAppError("AUTHENTICATION_FAILED", "メールアドレスまたはパスワードが正しくありません。", "", provider.ErrAuthFailed)
				s.On("Signin", mock.Anything, mock.AnythingOfType("*model.SigninRequest")).
					Return(nil, appErr).Once()
			},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "AUTHENTICATION_FAILED",
		},
		{
			name: "異常系: スロットリングは429",
			body: model.SigninRequest{Email: "taro@example.com", Password: "password123"},
			setupMock: func(s *mocks.AuthService) {
				appErr := model.NewAppError("RATE_LIMITED", "試行回数が多すぎます。しばらくしてから再度お試しください。", "", provider.ErrRateLimited)
				s.On("Signin", mock.Anything, mock.AnythingOfType("*model.SigninRequest")).
					Return(nil, appErr).Once()
			},
			expectedStatus: http.StatusTooManyRequests,
			expectedCode:   "RATE_LIMITED",
		},
		{
			name: "異常系: ローカル未登録ユーザーは404",
			body: model.SigninRequest{Email: "taro@example.com", Password: "password123"},
			setupMock: func(s *mocks.AuthService) {
				appErr := model.NewAppError("USER_NOT_PROVISIONED", "アカウントは存在しますが、ユーザー情報が登録されていません。", "", model.ErrNotFound)
				s.On("Signin", mock.Anything, mock.AnythingOfType("*model.SigninRequest")).
					Return(nil, appErr).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "USER_NOT_PROVISIONED",
		},
		{
			name:           "異常系: 必須フィールド欠落は400",
			body:           model.SigninRequest{Email: "taro@example.com"},
			setupMock:      func(s *mocks.AuthService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockAuthService := setupAuthRouter(t)
			tt.setupMock(mockAuthService)

			bodyBytes, err := json.Marshal(tt.body)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signin", bytes.NewReader(bodyBytes))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusOK {
				var resp map[string]interface{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "id-token", resp["idToken"])
				assert.Equal(t, "refresh-token", resp["refreshToken"])
				assert.NotNil(t, resp["user"])
				return
			}

			var errResp model.APIErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
			assert.Equal(t, tt.expectedCode, errResp.Error.Code)
		})
	}
}
