package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/auth-rbac/internal/database"
	"github.com/iliyamo/auth-rbac/internal/model"
)

// SessionRepo is the session ledger: one row per outstanding token jti.
type SessionRepo struct {
	q database.Querier
	d database.Dialect
}

func NewSessionRepo(q database.Querier, d database.Dialect) *SessionRepo {
	return &SessionRepo{q: q, d: d}
}

// Create inserts a session row.  A jti collision surfaces as
// ErrDuplicateToken; the existing row is left alone.
func (r *SessionRepo) Create(ctx context.Context, userID uint64, jti string, expiresAt time.Time) error {
	_, err := r.q.ExecContext(ctx,
		r.d.Rebind("INSERT INTO user_sessions (user_id, jti, expires_at, created_at) VALUES (?,?,?,?)"),
		userID, jti, expiresAt.UTC(), time.Now().UTC())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateToken
		}
		return fmt.Errorf("repository.SessionRepo.Create: %w", err)
	}
	return nil
}

// IsLive reports whether a row with jti exists.  Expiry is not checked
// here; the token codec enforces it on decode.
func (r *SessionRepo) IsLive(ctx context.Context, jti string) (bool, error) {
	var one int
	err := r.q.QueryRowContext(ctx,
		r.d.Rebind("SELECT 1 FROM user_sessions WHERE jti=? LIMIT 1"), jti).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("repository.SessionRepo.IsLive: %w", err)
	}
	return true, nil
}

// DeleteByJTI removes one session and returns how many rows went away.
func (r *SessionRepo) DeleteByJTI(ctx context.Context, jti string) (int64, error) {
	res, err := r.q.ExecContext(ctx, r.d.Rebind("DELETE FROM user_sessions WHERE jti=?"), jti)
	if err != nil {
		return 0, fmt.Errorf("repository.SessionRepo.DeleteByJTI: %w", err)
	}
	return res.RowsAffected()
}

// DeleteAllForUser wipes every session owned by userID.
func (r *SessionRepo) DeleteAllForUser(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.q.ExecContext(ctx, r.d.Rebind("DELETE FROM user_sessions WHERE user_id=?"), userID)
	if err != nil {
		return 0, fmt.Errorf("repository.SessionRepo.DeleteAllForUser: %w", err)
	}
	return res.RowsAffected()
}

// ListForUser returns the user's sessions, oldest first.
func (r *SessionRepo) ListForUser(ctx context.Context, userID uint64) ([]model.Session, error) {
	rows, err := r.q.QueryContext(ctx,
		r.d.Rebind("SELECT id, user_id, jti, expires_at, created_at FROM user_sessions WHERE user_id=? ORDER BY id"),
		userID)
	if err != nil {
		return nil, fmt.Errorf("repository.SessionRepo.ListForUser: %w", err)
	}
	defer rows.Close()

	var out []model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.JTI, &s.ExpiresAt, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository.SessionRepo.ListForUser: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
