package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/spiritus-lectoris/catalog-service/catalog/internal/errs"
	"github.com/spiritus-lectoris/catalog-service/catalog/internal/model"
)

type SessionRepository interface {
	Create(ctx context.Context, token string, ttl time.Duration) error
	Get(ctx context.Context, token string) (model.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type sessionRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewSessionRepository(db *sqlx.DB, log *zap.Logger) *sessionRepository {
	return &sessionRepository{
		db:  db,
		log: log.Named("session-repo"),
	}
}

const sessionsTableName = `sessions`

// Create stores a session whose expiry is ttl from creation, not from
// last activity.
func (r *sessionRepository) Create(ctx context.Context, token string, ttl time.Duration) error {
	query, args, err := qb.Insert(sessionsTableName).
		Columns("token", "expires_at").
		Values(token, time.Now().UTC().Add(ttl)).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *sessionRepository) Get(ctx context.Context, token string) (model.Session, error) {
	query, args, err := qb.Select("token", "created_at", "expires_at").
		From(sessionsTableName).
		Where(sq.Eq{"token": token}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Session{}, err
	}

	var s model.Session
	if err := r.db.GetContext(ctx, &s, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Session{}, errs.ErrNotFound
		}
		return model.Session{}, err
	}
	return s, nil
}

// Delete is idempotent: removing an absent token is not an error.
func (r *sessionRepository) Delete(ctx context.Context, token string) error {
	query, args, err := qb.Delete(sessionsTableName).
		Where(sq.Eq{"token": token}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *sessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query, args, err := qb.Delete(sessionsTableName).
		Where(sq.Expr("expires_at <= now()")).
		ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
