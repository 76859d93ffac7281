package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/steambap/captcha"
	"github.com/whatsoo/backend/internal/cache"
)

const (
	captchaWidth  = 150
	captchaHeight = 50
	captchaTTL    = 5 * time.Minute

	emailCodeTTL    = 50 * time.Minute
	emailSubject    = "Your verification code"
	mailSendTimeout = 30 * time.Second

	codeCharset = "abcdefghjkmnpqrstuvwxyz23456789"
	codeLength  = 4
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+@[a-zA-Z0-9_-]+(\.[a-zA-Z0-9_-]+)+$`)

// ErrInvalidEmail rejects syntactically malformed addresses before any
// code is issued.
var ErrInvalidEmail = errors.New("invalid email address")

// MailSender is the slice of the mail transport the challenge flow
// needs. Tests inject a recorder.
type MailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// ChallengeService issues and verifies one-time challenges: visual
// captchas keyed by a random id, and email codes keyed by the address.
type ChallengeService struct {
	codes  *cache.CodeStore
	mailer MailSender
	logger *slog.Logger
}

func NewChallengeService(codes *cache.CodeStore, mailer MailSender, logger *slog.Logger) *ChallengeService {
	return &ChallengeService{codes: codes, mailer: mailer, logger: logger}
}

// IssueCaptcha renders a fresh captcha, caches its answer for five
// minutes and returns the cache key plus the PNG bytes. The key travels
// back to the client in the captcha-key response header.
func (s *ChallengeService) IssueCaptcha(ctx context.Context) (string, []byte, error) {
	img, err := captcha.New(captchaWidth, captchaHeight, func(o *captcha.Options) {
		o.CharPreset = codeCharset
		o.TextLength = codeLength
	})
	if err != nil {
		return "", nil, fmt.Errorf("captcha render failed: %w", err)
	}

	key := uuid.NewString()
	if err := s.codes.Put(ctx, key, img.Text, captchaTTL); err != nil {
		return "", nil, err
	}

	var buf bytes.Buffer
	if err := img.WriteImage(&buf); err != nil {
		return "", nil, fmt.Errorf("captcha encode failed: %w", err)
	}
	return key, buf.Bytes(), nil
}

// IssueEmailCode caches a fresh code under the address and dispatches
// the mail in the background. The cache write always precedes the send
// attempt; a failed send is logged and the user may request a resend,
// so it is not surfaced as a request error.
func (s *ChallengeService) IssueEmailCode(ctx context.Context, email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}

	code, err := randomCode()
	if err != nil {
		return err
	}
	if err := s.codes.Put(ctx, email, code, emailCodeTTL); err != nil {
		return err
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), mailSendTimeout)
		defer cancel()
		body := fmt.Sprintf("<p>Your verification code is <b>%s</b>. It expires in 50 minutes.</p>", code)
		if err := s.mailer.Send(sendCtx, email, emailSubject, body); err != nil {
			s.logger.Error("verification mail dispatch failed", "email", email, "err", err)
		}
	}()

	return nil
}

// Verify compares supplied against the cached value for key. Absent,
// expired and mismatched all read as false; the caller cannot tell
// which happened. A successful match consumes the entry, so a code
// verifies at most once even inside its TTL.
func (s *ChallengeService) Verify(ctx context.Context, key, supplied string) (bool, error) {
	cached, found, err := s.codes.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !found || supplied == "" || cached != supplied {
		return false, nil
	}

	if err := s.codes.Invalidate(ctx, key); err != nil {
		// The match already happened; a failed delete only risks replay,
		// which the TTL still bounds.
		s.logger.Error("consumed code invalidation failed", "err", err)
	}
	return true, nil
}

func randomCode() (string, error) {
	out := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("code generation failed: %w", err)
		}
		out[i] = codeCharset[n.Int64()]
	}
	return string(out), nil
}
