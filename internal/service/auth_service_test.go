package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/booklist-service/internal/model"
	"github.com/iliyamo/booklist-service/internal/repository"
)

const testSecret = "test-secret"

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type recorded struct {
	mu   sync.Mutex
	seen []string
}

func (r *recorded) RecordAuth(op, outcome string) {
	r.mu.Lock()
	r.seen = append(r.seen, op+":"+outcome)
	r.mu.Unlock()
}

// failingUserStore lets a test inject store errors.
type failingUserStore struct {
	repository.UserStore
	getByEmailFn func(ctx context.Context, email string) (model.User, error)
	createFn     func(ctx context.Context, u *model.User) error
}

func (f *failingUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return f.UserStore.GetByEmail(ctx, email)
}

func (f *failingUserStore) Create(ctx context.Context, u *model.User) error {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	return f.UserStore.Create(ctx, u)
}

func newAuth(users repository.UserStore, opts ...AuthOption) *AuthService {
	opts = append([]AuthOption{WithLogger(quietLogger())}, opts...)
	return NewAuthService(users, testSecret, bcrypt.MinCost, opts...)
}

func TestRegisterThenLoginIssuesVerifiableToken(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUserRepo()
	auth := newAuth(users)

	msg, err := auth.Register(ctx, "Alice", "a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, MsgRegistered, msg)

	stored, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", stored.PasswordHash)
	assert.NotEmpty(t, stored.ID)

	tok, err := auth.Login(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	sub, err := auth.Verify(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, sub)
}

func TestRegisterThenLoginWithPasswordPastBcryptLimit(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(repository.NewMemoryUserRepo())
	long := strings.Repeat("p", 80)

	_, err := auth.Register(ctx, "A", "a@x.com", long)
	require.NoError(t, err)

	tok, err := auth.Login(ctx, "a@x.com", long)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUserRepo()
	auth := newAuth(users)

	_, err := auth.Register(ctx, "Alice", "a@x.com", "pw1")
	require.NoError(t, err)
	before, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)

	_, err = auth.Register(ctx, "Someone Else", "a@x.com", "different")
	assert.ErrorIs(t, err, ErrConflict)

	after, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, users.Len())
}

func TestRegisterEmailIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(repository.NewMemoryUserRepo())

	_, err := auth.Register(ctx, "Alice", "a@x.com", "pw1")
	require.NoError(t, err)
	_, err = auth.Register(ctx, "Alice", "A@x.com", "pw1")
	assert.NoError(t, err)
}

func TestRegisterRaceOnCreateMapsToConflict(t *testing.T) {
	users := &failingUserStore{
		UserStore: repository.NewMemoryUserRepo(),
		createFn: func(context.Context, *model.User) error {
			return repository.ErrEmailExists
		},
	}
	_, err := newAuth(users).Register(context.Background(), "A", "a@x.com", "pw")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegisterStoreFailure(t *testing.T) {
	users := &failingUserStore{
		UserStore: repository.NewMemoryUserRepo(),
		getByEmailFn: func(context.Context, string) (model.User, error) {
			return model.User{}, errors.New("connection refused")
		},
	}
	_, err := newAuth(users).Register(context.Background(), "A", "a@x.com", "pw")
	assert.ErrorIs(t, err, ErrStoreFailure)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	rec := &recorded{}
	auth := newAuth(repository.NewMemoryUserRepo(), WithRecorder(rec))
	_, err := auth.Register(ctx, "Alice", "a@x.com", "pw1")
	require.NoError(t, err)

	_, err = auth.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = auth.Login(ctx, "nobody@x.com", "pw1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{"register:ok", "login:invalid_credential", "login:not_found"}, rec.seen)
}

func TestLoginStoreFailure(t *testing.T) {
	users := &failingUserStore{
		UserStore: repository.NewMemoryUserRepo(),
		getByEmailFn: func(context.Context, string) (model.User, error) {
			return model.User{}, errors.New("timeout")
		},
	}
	_, err := newAuth(users).Login(context.Background(), "a@x.com", "pw")
	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	users := repository.NewMemoryUserRepo()
	auth := newAuth(users, WithClock(clock))

	_, err := auth.Register(ctx, "Alice", "a@x.com", "pw1")
	require.NoError(t, err)
	tok, err := auth.Login(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	_, err = auth.Verify(tok.Token)
	require.NoError(t, err)

	now = now.Add(time.Hour + time.Minute)
	_, err = auth.Verify(tok.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyGivesOneGenericFailure(t *testing.T) {
	auth := newAuth(repository.NewMemoryUserRepo())
	other := NewAuthService(repository.NewMemoryUserRepo(), "other-secret", bcrypt.MinCost, WithLogger(quietLogger()))
	ctx := context.Background()
	_, err := other.Register(ctx, "B", "b@x.com", "pw")
	require.NoError(t, err)
	forged, err := other.Login(ctx, "b@x.com", "pw")
	require.NoError(t, err)

	for _, raw := range []string{"", "garbage", forged.Token} {
		_, err := auth.Verify(raw)
		assert.Equal(t, ErrUnauthorized, err, "raw=%q", raw)
	}
}

func TestAuthenticateDoesNotRecordOutcome(t *testing.T) {
	ctx := context.Background()
	rec := &recorded{}
	auth := newAuth(repository.NewMemoryUserRepo(), WithRecorder(rec))
	_, err := auth.Register(ctx, "Alice", "a@x.com", "pw1")
	require.NoError(t, err)
	tok, err := auth.Login(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	sub, err := auth.Authenticate(tok.Token)
	require.NoError(t, err)
	assert.NotEmpty(t, sub)
	_, err = auth.Authenticate("garbage")
	assert.Equal(t, ErrUnauthorized, err)

	_, err = auth.Verify(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{"register:ok", "login:ok", "verify:ok"}, rec.seen)
}

func TestLogoutIsAcknowledgementOnly(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(repository.NewMemoryUserRepo())
	_, err := auth.Register(ctx, "Alice", "a@x.com", "pw1")
	require.NoError(t, err)
	tok, err := auth.Login(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	assert.Equal(t, MsgLoggedOut, auth.Logout())
	_, err = auth.Verify(tok.Token)
	assert.NoError(t, err, "token stays valid until expiry")
}

func TestHashSlotHonoursContext(t *testing.T) {
	auth := newAuth(repository.NewMemoryUserRepo(), WithHashConcurrency(1))
	require.NoError(t, auth.hashSem.Acquire(context.Background(), 1))
	defer auth.hashSem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := auth.Register(ctx, "A", "a@x.com", "pw")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
