package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/whatsoo/backend/internal/db"
	"github.com/whatsoo/backend/internal/model"
	"github.com/whatsoo/backend/internal/password"
	"github.com/whatsoo/backend/internal/token"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrChallengeFailed covers captcha and email-code mismatch or
	// expiry. One error for all cases so responses leak nothing.
	ErrChallengeFailed = errors.New("challenge verification failed")
	// ErrCredentialMismatch is returned for wrong password AND unknown
	// email; the two must be indistinguishable to the caller.
	ErrCredentialMismatch = errors.New("credential mismatch")
	ErrConflict           = errors.New("already exists")
	ErrStoreUnavailable   = errors.New("user store unavailable")
)

// UserStore is the relational surface the auth flows consume.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	CountUsersByEmail(ctx context.Context, email string) (int64, error)
	CountUsersByUsername(ctx context.Context, username string) (int64, error)
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) (int64, error)
	TouchLastLogin(ctx context.Context, id int64) error
}

type AuthService struct {
	users       UserStore
	challenges  *ChallengeService
	tokens      *token.Codec
	sessionTTL  time.Duration
	rememberTTL time.Duration
	logger      *slog.Logger
}

func NewAuthService(users UserStore, challenges *ChallengeService, tokens *token.Codec, sessionTTL, rememberTTL time.Duration, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:       users,
		challenges:  challenges,
		tokens:      tokens,
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
		logger:      logger,
	}
}

// EmailAvailable reports whether email is well-formed and unused.
func (s *AuthService) EmailAvailable(ctx context.Context, email string) (bool, error) {
	if !emailPattern.MatchString(email) {
		return false, ErrInvalidEmail
	}
	count, err := s.users.CountUsersByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return count == 0, nil
}

// UsernameAvailable reports whether username is well-formed and unused.
func (s *AuthService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	if !usernamePattern.MatchString(username) {
		return false, ErrInvalidInput
	}
	count, err := s.users.CountUsersByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return count == 0, nil
}

// RequestEmailCode verifies a captcha answer and, only on success,
// issues a verification code to email. Captcha-before-code is the
// anti-abuse invariant of the whole flow; nothing else issues email
// codes.
func (s *AuthService) RequestEmailCode(ctx context.Context, captchaKey, captchaValue, email string) error {
	ok, err := s.challenges.Verify(ctx, captchaKey, captchaValue)
	if err != nil {
		return err
	}
	if !ok {
		return ErrChallengeFailed
	}
	return s.challenges.IssueEmailCode(ctx, email)
}

// Register commits a new user. The email code issued by
// RequestEmailCode must verify first.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	ok, err := s.challenges.Verify(ctx, req.Email, req.EmailCode)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrChallengeFailed
	}

	emailCount, err := s.users.CountUsersByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if emailCount > 0 {
		return nil, ErrConflict
	}
	nameCount, err := s.users.CountUsersByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if nameCount > 0 {
		return nil, ErrConflict
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, req.Username, req.Email, hash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.logger.Info("user registered", "userId", user.ID, "username", user.Username)
	return user, nil
}

// Login checks the captcha, then the password, and returns the user
// with a signed session token. Unknown email and wrong password produce
// the same error.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.User, string, error) {
	ok, err := s.challenges.Verify(ctx, req.CaptchaKey, req.CaptchaValue)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", ErrChallengeFailed
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, "", ErrCredentialMismatch
		}
		return nil, "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if !password.Verify(req.Password, user.PasswordHash) {
		return nil, "", ErrCredentialMismatch
	}

	ttl := s.sessionTTL
	if req.RememberMe {
		ttl = s.rememberTTL
	}
	signed, err := s.tokens.Encode(token.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	}, ttl)
	if err != nil {
		return nil, "", err
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Error("last-login update failed", "userId", user.ID, "err", err)
	}

	return user, signed, nil
}

// ResetPassword replaces the stored credential for an email-code-
// verified address. The whole hash value is swapped in one update.
func (s *AuthService) ResetPassword(ctx context.Context, req model.PasswordResetRequest) error {
	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}

	ok, err := s.challenges.Verify(ctx, req.Email, req.EmailCode)
	if err != nil {
		return err
	}
	if !ok {
		return ErrChallengeFailed
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if db.IsNotFound(err) {
			// A code verified for an address with no account; answer the
			// same way as a failed challenge.
			return ErrChallengeFailed
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	affected, err := s.users.UpdateUserPassword(ctx, user.ID, hash)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: password update affected no rows", ErrStoreUnavailable)
	}

	s.logger.Info("password reset", "userId", user.ID)
	return nil
}

func validateRegistration(req model.RegisterRequest) error {
	if !usernamePattern.MatchString(req.Username) {
		return ErrInvalidInput
	}
	if !emailPattern.MatchString(req.Email) {
		return ErrInvalidEmail
	}
	return validatePassword(req.Password)
}

func validatePassword(pw string) error {
	if strings.TrimSpace(pw) != pw {
		return ErrInvalidInput
	}
	if len(pw) < minPasswordLength || len(pw) > maxPasswordLength {
		return ErrInvalidInput
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
