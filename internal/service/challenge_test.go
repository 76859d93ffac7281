package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whatsoo/backend/internal/cache"
)

type sentMail struct {
	to      string
	subject string
	body    string
}

// recordingMailer captures sends so tests can wait for the async
// dispatch instead of sleeping.
type recordingMailer struct {
	mu    sync.Mutex
	sent  []sentMail
	ready chan struct{}
	fail  bool
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{ready: make(chan struct{}, 8)}
}

func (m *recordingMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		m.ready <- struct{}{}
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: htmlBody})
	m.ready <- struct{}{}
	return nil
}

func (m *recordingMailer) waitForSend(t *testing.T) {
	t.Helper()
	select {
	case <-m.ready:
	case <-time.After(2 * time.Second):
		t.Fatal("mail dispatch never happened")
	}
}

func (m *recordingMailer) messages() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

func newChallengeFixture(t *testing.T) (*ChallengeService, *cache.CodeStore, *miniredis.Miniredis, *recordingMailer) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	codes := cache.NewCodeStore(rdb)
	mailer := newRecordingMailer()
	svc := NewChallengeService(codes, mailer, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, codes, mr, mailer
}

func TestIssueCaptcha(t *testing.T) {
	svc, codes, _, _ := newChallengeFixture(t)
	ctx := context.Background()

	key, png, err := svc.IssueCaptcha(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, key)
	require.NotEmpty(t, png)
	// PNG magic bytes.
	assert.Equal(t, "\x89PNG", string(png[:4]))

	answer, found, err := codes.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found, "captcha answer not cached")
	assert.Len(t, answer, codeLength)
}

func TestCaptchaVerifiesExactlyOnce(t *testing.T) {
	svc, codes, _, _ := newChallengeFixture(t)
	ctx := context.Background()

	key, _, err := svc.IssueCaptcha(ctx)
	require.NoError(t, err)

	// Recover the answer out-of-band.
	answer, found, err := codes.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)

	ok, err := svc.Verify(ctx, key, answer)
	require.NoError(t, err)
	assert.True(t, ok, "correct answer rejected")

	// The entry is consumed; a replay inside the TTL fails.
	ok, err = svc.Verify(ctx, key, answer)
	require.NoError(t, err)
	assert.False(t, ok, "consumed captcha verified twice")
}

func TestCaptchaVerifyMismatch(t *testing.T) {
	svc, codes, _, _ := newChallengeFixture(t)
	ctx := context.Background()

	key, _, err := svc.IssueCaptcha(ctx)
	require.NoError(t, err)

	ok, err := svc.Verify(ctx, key, "not-the-answer")
	require.NoError(t, err)
	assert.False(t, ok)

	// A wrong guess does not consume the challenge.
	answer, found, err := codes.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)

	ok, err = svc.Verify(ctx, key, answer)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCaptchaExpires(t *testing.T) {
	svc, codes, mr, _ := newChallengeFixture(t)
	ctx := context.Background()

	key, _, err := svc.IssueCaptcha(ctx)
	require.NoError(t, err)
	answer, _, err := codes.Get(ctx, key)
	require.NoError(t, err)

	mr.FastForward(captchaTTL + time.Second)

	ok, err := svc.Verify(ctx, key, answer)
	require.NoError(t, err)
	assert.False(t, ok, "expired captcha verified")
}

func TestIssueEmailCode(t *testing.T) {
	svc, codes, _, mailer := newChallengeFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.IssueEmailCode(ctx, "user@example.com"))
	mailer.waitForSend(t)

	code, found, err := codes.Get(ctx, "user@example.com")
	require.NoError(t, err)
	require.True(t, found, "email code not cached")
	assert.Len(t, code, codeLength)

	msgs := mailer.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "user@example.com", msgs[0].to)
	assert.Equal(t, emailSubject, msgs[0].subject)
	assert.True(t, strings.Contains(msgs[0].body, code), "mail body does not carry the code")
}

func TestIssueEmailCodeRejectsBadAddress(t *testing.T) {
	svc, _, _, mailer := newChallengeFixture(t)

	tests := []string{"", "no-at-sign", "a@b", "spaces in@example.com", "a@@example.com"}
	for _, email := range tests {
		err := svc.IssueEmailCode(context.Background(), email)
		assert.ErrorIs(t, err, ErrInvalidEmail, "email %q", email)
	}
	assert.Empty(t, mailer.messages())
}

func TestEmailCodeCachedEvenWhenSendFails(t *testing.T) {
	svc, codes, _, mailer := newChallengeFixture(t)
	mailer.fail = true
	ctx := context.Background()

	// Send failure is logged, not surfaced; the code stays cached so the
	// user can ask for a resend.
	require.NoError(t, svc.IssueEmailCode(ctx, "user@example.com"))
	mailer.waitForSend(t)

	_, found, err := codes.Get(ctx, "user@example.com")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestVerifyUnavailableCache(t *testing.T) {
	svc, _, mr, _ := newChallengeFixture(t)
	mr.Close()

	_, err := svc.Verify(context.Background(), "k", "v")
	assert.ErrorIs(t, err, cache.ErrUnavailable)
}
