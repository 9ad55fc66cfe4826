package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/iliyamo/booklist-service/internal/model"
	"github.com/iliyamo/booklist-service/internal/repository"
	"github.com/iliyamo/booklist-service/internal/utils"
)

// Messages returned to clients on success.
const (
	MsgRegistered = "User registered successfully"
	MsgLoggedOut  = "Logged out successfully"
)

// AuthRecorder receives auth outcomes, e.g. for metrics.
type AuthRecorder interface {
	RecordAuth(op, outcome string)
}

// AuthService registers identities, issues session tokens and verifies
// them. The signing secret is fixed at construction.
type AuthService struct {
	users   repository.UserStore
	secret  string
	cost    int
	hashSem *semaphore.Weighted
	now     func() time.Time
	log     logrus.FieldLogger
	rec     AuthRecorder
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

// WithClock overrides the time source used for issuing and verifying tokens.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) AuthOption {
	return func(s *AuthService) { s.log = l }
}

// WithRecorder sets the outcome recorder.
func WithRecorder(r AuthRecorder) AuthOption {
	return func(s *AuthService) { s.rec = r }
}

// WithHashConcurrency bounds how many bcrypt operations run at once.
func WithHashConcurrency(n int) AuthOption {
	return func(s *AuthService) {
		if n > 0 {
			s.hashSem = semaphore.NewWeighted(int64(n))
		}
	}
}

// NewAuthService builds the service. bcrypt work is limited to
// GOMAXPROCS concurrent operations unless overridden.
func NewAuthService(users repository.UserStore, secret string, bcryptCost int, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:   users,
		secret:  secret,
		cost:    bcryptCost,
		hashSem: semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
		now:     time.Now,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new identity. It does not issue a token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		s.record("register", "conflict")
		return "", ErrConflict
	case !errors.Is(err, repository.ErrUserNotFound):
		s.record("register", "error")
		return "", storeFailure("lookup user", err)
	}

	var hash string
	if err := s.withHashSlot(ctx, func() error {
		var herr error
		hash, herr = utils.HashPassword(password, s.cost)
		return herr
	}); err != nil {
		s.record("register", "error")
		return "", fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.record("register", "conflict")
			return "", ErrConflict
		}
		s.record("register", "error")
		return "", storeFailure("create user", err)
	}
	s.log.WithField("user_id", u.ID).Info("user registered")
	s.record("register", "ok")
	return MsgRegistered, nil
}

// Login checks the credentials and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (utils.AccessToken, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.record("login", "not_found")
			return utils.AccessToken{}, ErrNotFound
		}
		s.record("login", "error")
		return utils.AccessToken{}, storeFailure("lookup user", err)
	}

	var ok bool
	if err := s.withHashSlot(ctx, func() error {
		ok = utils.VerifyPassword(u.PasswordHash, password)
		return nil
	}); err != nil {
		s.record("login", "error")
		return utils.AccessToken{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.record("login", "invalid_credential")
		return utils.AccessToken{}, ErrInvalidCredential
	}

	tok, err := utils.NewAccessToken(s.secret, u.ID, s.now())
	if err != nil {
		s.record("login", "error")
		return utils.AccessToken{}, fmt.Errorf("issue token: %w", err)
	}
	s.log.WithField("user_id", u.ID).Info("user logged in")
	s.record("login", "ok")
	return tok, nil
}

// Verify returns the user id carried by token or ErrUnauthorized and
// records the outcome. It is the check the request gate runs.
func (s *AuthService) Verify(token string) (string, error) {
	sub, err := s.Authenticate(token)
	if err != nil {
		s.record("verify", "denied")
		return "", err
	}
	s.record("verify", "ok")
	return sub, nil
}

// Authenticate is Verify without recording an outcome, for checks that
// repeat one the gate already counted.
func (s *AuthService) Authenticate(token string) (string, error) {
	sub, err := utils.ParseAccessToken(token, s.secret, s.now())
	if err != nil {
		return "", ErrUnauthorized
	}
	return sub, nil
}

// Logout only acknowledges. Tokens stay valid until they expire because
// no revocation list exists.
func (s *AuthService) Logout() string {
	return MsgLoggedOut
}

func (s *AuthService) withHashSlot(ctx context.Context, fn func() error) error {
	if err := s.hashSem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.hashSem.Release(1)
	return fn()
}

func (s *AuthService) record(op, outcome string) {
	if s.rec != nil {
		s.rec.RecordAuth(op, outcome)
	}
}
