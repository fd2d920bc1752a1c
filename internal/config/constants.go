// internal/config/constants.go
package config

import "time"

// アプリケーション情報
const (
	AppName    = "ms-user"
	AppVersion = "1.0.0"
)

// デフォルト設定値
const (
	DefaultServerPort        = ":8000"
	DefaultLogLevel          = "info"
	DefaultVerifyTimeout     = 5 * time.Second
	DefaultGrantTimeout      = 10 * time.Second
	DefaultAccountTimeout    = 10 * time.Second
	DefaultHeartbeatInterval = 10 * time.Second
)

// Firebase の REST エンドポイント (パスワードグラント用)
const IdentityToolkitEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"
