package middleware

import (
	"context"
	"net/http"
	"strings"

	"go_ms_user/internal/model"
	"go_ms_user/internal/webutil"
)

// TokenVerifier はGateが必要とするプロバイダ操作の最小インターフェースです。
// provider.Client がこれを満たす。
type TokenVerifier interface {
	VerifyToken(ctx context.Context, idToken string) (*model.VerifiedIdentity, error)
}

// extractBearerToken は Authorization ヘッダーからトークンを取り出します。
// 「空白区切りでちょうど2要素、先頭が大文字小文字を無視して bearer」以外は
// すべて「トークン未提示」として扱う (エラーではない)。
func extractBearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// FirebaseAuthMiddleware は全リクエストで Bearer トークンを検証するGateです。
//   - トークン未提示/形式不正: nil アイデンティティをセットして続行する (拒否しない)。
//     認証必須の強制は下流 (RequireAuth) の責務。
//   - トークン提示あり: プロバイダに対して検証する。失敗 (不正・期限切れ・
//     プロバイダ到達不能) は固定メッセージの401で即時終了し、下流は実行されない。
func FirebaseAuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			token, ok := extractBearerToken(r.Header.Get("Authorization"))
			if !ok {
				// 未提示と検証失敗はレスポンスこそ同じでも、ログでは区別する
				logger.Debug("No bearer token presented")
				ctx := context.WithValue(r.Context(), model.IdentityKey, (*model.VerifiedIdentity)(nil))
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			identity, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				logger.Warn("Token verification failed", "error", err)
				// 失敗理由は外に出さない
				appErr := model.NewAppError("INVALID_TOKEN", "認証トークンが無効です。", "", model.ErrUnauthorized)
				webutil.HandleError(w, logger, appErr)
				return
			}

			logger.Debug("Token verified", "uid", identity.UID)
			ctx := context.WithValue(r.Context(), model.IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth は検証済みアイデンティティの存在を強制するミドルウェアです。
// Gateの下流に置き、認証必須のルートグループにのみ適用する。
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := GetLogger(r.Context())

		if GetIdentity(r.Context()) == nil {
			logger.Warn("Rejected unauthenticated request", "path", r.URL.Path)
			appErr := model.NewAppError("UNAUTHORIZED", "認証が必要です。", "", model.ErrUnauthorized)
			webutil.HandleError(w, logger, appErr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetIdentity はコンテキストから検証済みアイデンティティを取得します。
// トークン未提示のリクエストでは nil を返す。
func GetIdentity(ctx context.Context) *model.VerifiedIdentity {
	if identity, ok := ctx.Value(model.IdentityKey).(*model.VerifiedIdentity); ok {
		return identity
	}
	return nil
}
