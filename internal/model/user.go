package model

import "time"

type User struct {
	ID            int64
	Username      string
	Email         string
	PasswordHash  string
	Avatar        *string
	BlogURL       *string
	Introduce     *string
	GithubUID     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastLoginTime *time.Time
}

// AuthUser is the identity the auth middleware attaches to a request
// context after the session token checks out. Handlers read it, never
// write it.
type AuthUser struct {
	ID       int64
	Username string
	Email    string
}

type RegisterRequest struct {
	Username  string `json:"username" form:"username"`
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password"`
	EmailCode string `json:"emailCode" form:"emailCode"`
}

type LoginRequest struct {
	Email        string `json:"email" form:"email"`
	Password     string `json:"password" form:"password"`
	CaptchaKey   string `json:"captchaKey" form:"captchaKey"`
	CaptchaValue string `json:"captchaValue" form:"captchaValue"`
	RememberMe   bool   `json:"rememberMe" form:"rememberMe"`
}

type CaptchaVerifyRequest struct {
	CaptchaKey   string `json:"captchaKey" form:"captchaKey"`
	CaptchaValue string `json:"captchaValue" form:"captchaValue"`
	Email        string `json:"email" form:"email"`
}

type PasswordResetRequest struct {
	Email       string `json:"email" form:"email"`
	EmailCode   string `json:"emailCode" form:"emailCode"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}
