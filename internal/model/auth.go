package model

// SignupRequest はサインアップAPIのリクエストボディ
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"omitempty,max=25"`
	Plan     string `json:"plan" validate:"omitempty,oneof=FREE PREMIUM"`
}

// SigninRequest はサインインAPIのリクエストボディ
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SigninResponse はサインイン成功時のレスポンス。
// トークンはプロバイダ発行のopaque文字列で、ローカルでは解釈しない。
type SigninResponse struct {
	User         *UserResponse `json:"user"`
	IDToken      string        `json:"idToken"`
	RefreshToken string        `json:"refreshToken"`
}
