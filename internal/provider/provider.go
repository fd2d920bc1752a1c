//go:generate mockery --name Client --output ./mocks --outpkg mocks --case=underscore
package provider

import (
	"context"
	"errors"

	"go_ms_user/internal/model"
)

// 境界呼び出しごとの閉じたエラー種別。呼び出し側は catch-all ではなく
// この種別ごとにハンドリングする。
var (
	// ErrAuthFailed は資格情報(メール/パスワード)の不一致、または
	// トークンが無効・期限切れであることを示す。
	ErrAuthFailed = errors.New("provider: authentication failed")
	// ErrRateLimited はプロバイダ側のスロットリングを示す。
	ErrRateLimited = errors.New("provider: rate limited")
	// ErrUnavailable はプロバイダへの到達不能・タイムアウト・5xxを示す。
	ErrUnavailable = errors.New("provider: unavailable")
	// ErrDuplicateAccount は同じメールのアカウントが既にプロバイダに存在することを示す。
	ErrDuplicateAccount = errors.New("provider: account already exists")
	// ErrRejected は上記以外の理由でプロバイダがリクエストを拒否したことを示す
	// (パスワードが弱い等)。
	ErrRejected = errors.New("provider: request rejected")
)

// Grant はパスワードグラント成功時にプロバイダが発行する資格情報です。
// トークンはopaqueとして扱い、ローカルでは解釈・保存しない。
type Grant struct {
	IDToken      string
	RefreshToken string
	UID          string
}

// Client は外部IDプロバイダへの境界です。実装はFirebaseへの
// ネットワーク呼び出しで、テストではモックに差し替える。
type Client interface {
	// CreateAccount はメール+パスワードでプロバイダ側アカウントを作成し、
	// Subject識別子(uid)を返します。
	CreateAccount(ctx context.Context, email, password string) (string, error)

	// SignInWithPassword はパスワードグラントを実行します。
	// 資格情報誤り(どちらのフィールドが誤りかは区別しない)は ErrAuthFailed。
	SignInWithPassword(ctx context.Context, email, password string) (*Grant, error)

	// VerifyToken はトークンをプロバイダに対して検証し、
	// デコード済みクレームを返します。冪等。
	VerifyToken(ctx context.Context, idToken string) (*model.VerifiedIdentity, error)
}
