package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/errorutils"
	"google.golang.org/api/option"

	"go_ms_user/internal/config"
	"go_ms_user/internal/model"
)

// firebaseClient は Client のFirebase実装です。
// アカウント作成とトークン検証は Admin SDK、パスワードグラントは
// Identity Toolkit の REST エンドポイントを使う (Admin SDKにグラントはないため)。
type firebaseClient struct {
	auth       *fbauth.Client
	httpClient *http.Client
	cfg        *config.FirebaseConfig
	logger     *slog.Logger
	grantURL   string
}

// NewFirebaseClient は設定からFirebaseクライアントを構築します。
// グローバル初期化はせず、依存として注入できる形で返す。
func NewFirebaseClient(ctx context.Context, cfg *config.FirebaseConfig, logger *slog.Logger) (Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("provider: initializing firebase app: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("provider: initializing firebase auth client: %w", err)
	}

	return &firebaseClient{
		auth:       authClient,
		httpClient: &http.Client{Timeout: cfg.GrantTimeout},
		cfg:        cfg,
		logger:     logger,
		grantURL:   config.IdentityToolkitEndpoint,
	}, nil
}

func (c *firebaseClient) CreateAccount(ctx context.Context, email, password string) (string, error) {
	logger := c.logger

	ctx, cancel := context.WithTimeout(ctx, c.cfg.AccountTimeout)
	defer cancel()

	params := (&fbauth.UserToCreate{}).Email(email).Password(password)
	record, err := c.auth.CreateUser(ctx, params)
	if err != nil {
		switch {
		case fbauth.IsEmailAlreadyExists(err):
			logger.Warn("Firebase account creation failed: email exists", "email", email)
			return "", fmt.Errorf("%w: %s", ErrDuplicateAccount, err.Error())
		case errorutils.IsInvalidArgument(err):
			logger.Warn("Firebase rejected account creation", "error", err)
			return "", fmt.Errorf("%w: %s", ErrRejected, err.Error())
		case errorutils.IsResourceExhausted(err):
			return "", fmt.Errorf("%w: %s", ErrRateLimited, err.Error())
		case isTransient(ctx, err):
			logger.Error("Firebase unreachable during account creation", "error", err)
			return "", fmt.Errorf("%w: %s", ErrUnavailable, err.Error())
		default:
			logger.Error("Firebase account creation failed", "error", err)
			return "", fmt.Errorf("%w: %s", ErrRejected, err.Error())
		}
	}

	logger.Info("Firebase account created", "uid", record.UID)
	return record.UID, nil
}

// signInRequest / signInResponse は signInWithPassword のワイヤ形式です
type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
}

type signInErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *firebaseClient) SignInWithPassword(ctx context.Context, email, password string) (*Grant, error) {
	logger := c.logger

	ctx, cancel := context.WithTimeout(ctx, c.cfg.GrantTimeout)
	defer cancel()

	payload, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return nil, fmt.Errorf("provider: marshaling grant request: %w", err)
	}

	url := c.grantURL + "?key=" + c.cfg.APIKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("provider: building grant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Password grant request failed", "error", err)
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading grant response: %s", ErrUnavailable, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		return nil, mapGrantError(resp.StatusCode, body)
	}

	var grant signInResponse
	if err := json.Unmarshal(body, &grant); err != nil {
		return nil, fmt.Errorf("%w: decoding grant response: %s", ErrUnavailable, err.Error())
	}
	if grant.IDToken == "" || grant.LocalID == "" {
		return nil, fmt.Errorf("%w: grant response missing token or uid", ErrUnavailable)
	}

	return &Grant{
		IDToken:      grant.IDToken,
		RefreshToken: grant.RefreshToken,
		UID:          grant.LocalID,
	}, nil
}

func (c *firebaseClient) VerifyToken(ctx context.Context, idToken string) (*model.VerifiedIdentity, error) {
	logger := c.logger

	var lastErr error
	// 検証は冪等なので、到達不能時のみ有限回リトライする
	for attempt := 0; attempt <= c.cfg.VerifyRetries; attempt++ {
		token, err := c.verifyOnce(ctx, idToken)
		if err == nil {
			return &model.VerifiedIdentity{UID: token.UID, Claims: token.Claims}, nil
		}
		lastErr = err
		if !errors.Is(err, ErrUnavailable) {
			break
		}
		logger.Warn("Token verification attempt failed, retrying", "attempt", attempt+1, "error", err)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, ctx.Err().Error())
		case <-time.After(100 * time.Millisecond):
		}
	}
	return nil, lastErr
}

func (c *firebaseClient) verifyOnce(ctx context.Context, idToken string) (*fbauth.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.VerifyTimeout)
	defer cancel()

	token, err := c.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		switch {
		case isTransient(ctx, err):
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, err.Error())
		case errorutils.IsResourceExhausted(err):
			return nil, fmt.Errorf("%w: %s", ErrRateLimited, err.Error())
		default:
			// 署名不正・期限切れ・形式不正はすべて認証失敗として扱う
			return nil, fmt.Errorf("%w: %s", ErrAuthFailed, err.Error())
		}
	}
	return token, nil
}

// mapGrantError は signInWithPassword のエラーボディをエラー種別にマッピングします。
// どのフィールドが誤っていたか(EMAIL_NOT_FOUND / INVALID_PASSWORD)は
// 呼び出し側に区別させない。
func mapGrantError(status int, body []byte) error {
	var errResp signInErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return fmt.Errorf("%w: grant failed with status %d", ErrUnavailable, status)
	}
	msg := errResp.Error.Message

	switch {
	case strings.HasPrefix(msg, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(msg, "INVALID_PASSWORD"),
		strings.HasPrefix(msg, "INVALID_LOGIN_CREDENTIALS"),
		strings.HasPrefix(msg, "USER_DISABLED"),
		strings.HasPrefix(msg, "INVALID_EMAIL"):
		return fmt.Errorf("%w: %s", ErrAuthFailed, msg)
	case strings.HasPrefix(msg, "TOO_MANY_ATTEMPTS_TRY_LATER"):
		return fmt.Errorf("%w: %s", ErrRateLimited, msg)
	case status >= 500:
		return fmt.Errorf("%w: %s", ErrUnavailable, msg)
	default:
		return fmt.Errorf("%w: %s", ErrRejected, msg)
	}
}

// isTransient はネットワーク到達不能・タイムアウト系のエラーかを判定します。
// タイムアウトはフェイルクローズ(拒否側)に倒すため ErrUnavailable に寄せる。
func isTransient(ctx context.Context, err error) bool {
	if errorutils.IsUnavailable(err) || errorutils.IsInternal(err) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	return ctx.Err() != nil
}
