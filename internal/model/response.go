package model

// ErrorResponse is the only error body shape the API emits. Code is a
// stable machine-readable identifier; Message is safe for end users and
// never carries internal detail.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type VerifyStatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type RegisterResponse struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type LoginResponse struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type MeResponse struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type PingResponse struct {
	Message string `json:"message"`
}
