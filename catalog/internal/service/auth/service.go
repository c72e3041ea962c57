package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spiritus-lectoris/catalog-service/catalog/internal/errs"
	"github.com/spiritus-lectoris/catalog-service/catalog/internal/repository"
)

// AdminUsername is the single fixed identity; login takes a password
// only.
const AdminUsername = "admin"

type Service struct {
	log      *zap.Logger
	users    repository.UserRepository
	sessions repository.SessionRepository
	ttl      time.Duration
}

func NewService(users repository.UserRepository, sessions repository.SessionRepository, ttl time.Duration, log *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		log:      log,
		users:    users,
		sessions: sessions,
		ttl:      ttl,
	}
}

// Login verifies the password against the stored bcrypt hash and, on
// match, opens an authenticated session and returns its opaque token.
// A mismatch and a missing account are indistinguishable to the
// caller.
func (s *Service) Login(ctx context.Context, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, AdminUsername)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", errs.ErrInvalidCredentials
		}
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", errs.ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.sessions.Create(ctx, token, s.ttl); err != nil {
		return "", errors.Wrap(err, "create session")
	}
	return token, nil
}

// Logout destroys the session unconditionally, an absent token is a
// success.
func (s *Service) Logout(ctx context.Context, token string) error {
	if !validToken(token) {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// IsAuthenticated treats expired sessions as absent and removes them
// on sight.
func (s *Service) IsAuthenticated(ctx context.Context, token string) (bool, error) {
	if !validToken(token) {
		return false, nil
	}
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if time.Now().After(sess.ExpiresAt) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			s.log.Warn("delete expired session", zap.Error(err))
		}
		return false, nil
	}
	return true, nil
}

// Seed ensures the admin account exists with the given password,
// bcrypt cost 10. An already-seeded account is left untouched.
func (s *Service) Seed(ctx context.Context, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := s.users.Create(ctx, AdminUsername, string(hash)); err != nil {
		if errors.Is(err, errs.ErrUserExists) {
			return nil
		}
		return errors.Wrap(err, "seed admin user")
	}
	s.log.Info("admin user seeded")
	return nil
}

// validToken screens cookie values before they reach the uuid-typed
// token column: a forged or truncated cookie reads as no session, not
// as a storage failure.
func validToken(token string) bool {
	if token == "" {
		return false
	}
	_, err := uuid.Parse(token)
	return err == nil
}

// PruneSessions drops expired rows so the table does not grow
// unbounded.
func (s *Service) PruneSessions(ctx context.Context) {
	n, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.log.Warn("prune sessions", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Debug("pruned sessions", zap.Int64("count", n))
	}
}
