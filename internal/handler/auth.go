package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/whatsoo/backend/internal/model"
	"github.com/whatsoo/backend/internal/service"
)

// CaptchaKeyHeader is the fixed response header carrying the id the
// client must echo back when verifying a captcha answer.
const CaptchaKeyHeader = "captcha-key"

type AuthHandler struct {
	auth       *service.AuthService
	challenges *service.ChallengeService
}

func NewAuthHandler(auth *service.AuthService, challenges *service.ChallengeService) *AuthHandler {
	return &AuthHandler{auth: auth, challenges: challenges}
}

// GetCaptcha godoc
// @Summary Issue a captcha challenge
// @Description Returns a PNG image; the challenge id is in the captcha-key response header.
// @Tags auth
// @Produce png
// @Success 200 {file} binary
// @Failure 500 {object} model.ErrorResponse
// @Router /captcha [get]
func (h *AuthHandler) GetCaptcha(c *gin.Context) {
	key, png, err := h.challenges.IssueCaptcha(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header(CaptchaKeyHeader, key)
	c.Data(http.StatusOK, "image/png", png)
}

// VerifyCaptcha godoc
// @Summary Verify a captcha answer and send an email code
// @Description On a correct answer a verification code is mailed to the given address.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.CaptchaVerifyRequest true "Captcha key, answer and target email"
// @Success 200 {object} model.VerifyStatusResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /verify/captcha [post]
func (h *AuthHandler) VerifyCaptcha(c *gin.Context) {
	var req model.CaptchaVerifyRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, service.ErrInvalidInput)
		return
	}

	if err := h.auth.RequestEmailCode(c.Request.Context(), req.CaptchaKey, req.CaptchaValue, req.Email); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.VerifyStatusResponse{
		Success: true,
		Message: "verification code sent, check your inbox",
	})
}

// Register godoc
// @Summary Register a new user
// @Description Commits registration once the mailed code verifies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Registration payload with email code"
// @Success 200 {object} model.RegisterResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /verify/email [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, service.ErrInvalidInput)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.RegisterResponse{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

// Login godoc
// @Summary Login
// @Description On success the session token is in the token response header.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Email, password and captcha answer"
// @Success 200 {object} model.LoginResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, service.ErrInvalidInput)
		return
	}

	user, signed, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header(TokenHeader, signed)
	c.JSON(http.StatusOK, model.LoginResponse{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

// ResetPassword godoc
// @Summary Reset a forgotten password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.PasswordResetRequest true "Email, mailed code and new password"
// @Success 200 {object} model.VerifyStatusResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /password/reset [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.PasswordResetRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, service.ErrInvalidInput)
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.VerifyStatusResponse{Success: true})
}

// ValidateEmail godoc
// @Summary Check whether an email address is available
// @Tags auth
// @Produce json
// @Param email path string true "Email address"
// @Success 200 {object} model.VerifyStatusResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /user/validate/email/{email} [get]
func (h *AuthHandler) ValidateEmail(c *gin.Context) {
	available, err := h.auth.EmailAvailable(c.Request.Context(), c.Param("email"))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := model.VerifyStatusResponse{Success: available}
	if !available {
		resp.Message = "email already taken"
	}
	c.JSON(http.StatusOK, resp)
}

// ValidateUsername godoc
// @Summary Check whether a username is available
// @Tags auth
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} model.VerifyStatusResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /user/validate/username/{username} [get]
func (h *AuthHandler) ValidateUsername(c *gin.Context) {
	available, err := h.auth.UsernameAvailable(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := model.VerifyStatusResponse{Success: available}
	if !available {
		resp.Message = "username already taken"
	}
	c.JSON(http.StatusOK, resp)
}

// Me godoc
// @Summary Get the authenticated identity
// @Tags auth
// @Produce json
// @Success 200 {object} model.MeResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /user/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{
			Code:    codeMissingToken,
			Message: "authentication required",
		})
		return
	}
	c.JSON(http.StatusOK, model.MeResponse{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}
