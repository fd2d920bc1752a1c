package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go_ms_user/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGrantTestClient(serverURL string) *firebaseClient {
	return &firebaseClient{
		httpClient: &http.Client{Timeout: 2 * time.Second},
		cfg: &config.FirebaseConfig{
			APIKey:       "test-api-key",
			GrantTimeout: 2 * time.Second,
		},
		logger:   slog.Default(),
		grantURL: serverURL,
	}
}

func TestFirebaseClient_SignInWithPassword(t *testing.T) {
	t.Run("正常系: トークンとuidを取り出す", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "test-api-key", r.URL.Query().Get("key"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"idToken":"tok","refreshToken":"ref","localId":"uid-1"}`)
		}))
		defer srv.Close()

		grant, err := newGrantTestClient(srv.URL).SignInWithPassword(context.Background(), "a@example.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, "tok", grant.IDToken)
		assert.Equal(t, "ref", grant.RefreshToken)
		assert.Equal(t, "uid-1", grant.UID)
	})

	errorCases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "EMAIL_NOT_FOUND は認証失敗",
			status:  http.StatusBadRequest,
			body:    `{"error":{"code":400,"message":"EMAIL_NOT_FOUND"}}`,
			wantErr: ErrAuthFailed,
		},
		{
			name:    "INVALID_PASSWORD も同じ認証失敗 (区別しない)",
			status:  http.StatusBadRequest,
			body:    `{"error":{"code":400,"message":"INVALID_PASSWORD"}}`,
			wantErr: ErrAuthFailed,
		},
		{
			name:    "INVALID_LOGIN_CREDENTIALS も認証失敗",
			status:  http.StatusBadRequest,
			body:    `{"error":{"code":400,"message":"INVALID_LOGIN_CREDENTIALS"}}`,
			wantErr: ErrAuthFailed,
		},
		{
			name:    "USER_DISABLED も認証失敗",
			status:  http.StatusBadRequest,
			body:    `{"error":{"code":400,"message":"USER_DISABLED"}}`,
			wantErr: ErrAuthFailed,
		},
		{
			name:    "TOO_MANY_ATTEMPTS はスロットリング",
			status:  http.StatusBadRequest,
			body:    `{"error":{"code":400,"message":"TOO_MANY_ATTEMPTS_TRY_LATER : ..."}}`,
			wantErr: ErrRateLimited,
		},
		{
			name:    "5xxは到達不能扱い",
			status:  http.StatusInternalServerError,
			body:    `{"error":{"code":500,"message":"BACKEND_ERROR"}}`,
			wantErr: ErrUnavailable,
		},
		{
			name:    "解釈できないエラーボディも到達不能扱い",
			status:  http.StatusBadGateway,
			body:    `<html>bad gateway</html>`,
			wantErr: ErrUnavailable,
		},
	}

	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			grant, err := newGrantTestClient(srv.URL).SignInWithPassword(context.Background(), "a@example.com", "pw")
			assert.Nil(t, grant)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("サーバーに到達できなければErrUnavailable", func(t *testing.T) {
		// 閉じたサーバーのURLを使う
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		grant, err := newGrantTestClient(url).SignInWithPassword(context.Background(), "a@example.com", "pw")
		assert.Nil(t, grant)
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("200でもトークン欠落ならErrUnavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"refreshToken":"ref"}`)
		}))
		defer srv.Close()

		grant, err := newGrantTestClient(srv.URL).SignInWithPassword(context.Background(), "a@example.com", "pw")
		assert.Nil(t, grant)
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func Test_mapGrantError(t *testing.T) {
	// ステータスが4xxでも既知のメッセージでなければ拒否扱い
	err := mapGrantError(http.StatusBadRequest, []byte(`{"error":{"code":400,"message":"OPERATION_NOT_ALLOWED"}}`))
	assert.ErrorIs(t, err, ErrRejected)
}
