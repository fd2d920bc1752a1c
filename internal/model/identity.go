package model

// VerifiedIdentity はトークン検証に成功したリクエストに付与される、
// リクエストスコープの認証済みアイデンティティです。永続化しない。
type VerifiedIdentity struct {
	// Firebaseが払い出した Subject 識別子 (uid)
	UID string
	// プロバイダがトークンに付与したクレーム
	Claims map[string]interface{}
}

type ContextKey string

const (
	// IdentityKey は検証済みアイデンティティをコンテキストに格納するキー。
	// トークン未提示のリクエストでは nil (*VerifiedIdentity) が入る。
	IdentityKey ContextKey = "verifiedIdentity"
)
