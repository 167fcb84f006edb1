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

const (
	verificationTable  = "verification_tokens"
	passwordResetTable = "password_reset_tokens"
)

// OneTimeTokenRepo stores single-use tokens.  One instance serves one
// table: email verification or password reset.
type OneTimeTokenRepo struct {
	q     database.Querier
	d     database.Dialect
	table string
}

func NewVerificationTokenRepo(q database.Querier, d database.Dialect) *OneTimeTokenRepo {
	return &OneTimeTokenRepo{q: q, d: d, table: verificationTable}
}

func NewPasswordResetTokenRepo(q database.Querier, d database.Dialect) *OneTimeTokenRepo {
	return &OneTimeTokenRepo{q: q, d: d, table: passwordResetTable}
}

// Create stores a token for userID valid until expiresAt.
func (r *OneTimeTokenRepo) Create(ctx context.Context, userID uint64, token string, expiresAt time.Time) error {
	_, err := r.q.ExecContext(ctx,
		r.d.Rebind("INSERT INTO "+r.table+" (user_id, token, expires_at, created_at) VALUES (?,?,?,?)"),
		userID, token, expiresAt.UTC(), time.Now().UTC())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateToken
		}
		return fmt.Errorf("repository.OneTimeTokenRepo.Create(%s): %w", r.table, err)
	}
	return nil
}

// GetValid looks up token by exact match and returns ErrNotFound when it
// is absent or expired at now.
func (r *OneTimeTokenRepo) GetValid(ctx context.Context, token string, now time.Time) (model.OneTimeToken, error) {
	var t model.OneTimeToken
	err := r.q.QueryRowContext(ctx,
		r.d.Rebind("SELECT id, user_id, token, expires_at, created_at FROM "+r.table+" WHERE token=? LIMIT 1"),
		token).Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.OneTimeToken{}, ErrNotFound
	}
	if err != nil {
		return model.OneTimeToken{}, fmt.Errorf("repository.OneTimeTokenRepo.GetValid(%s): %w", r.table, err)
	}
	if t.Expired(now) {
		return model.OneTimeToken{}, ErrNotFound
	}
	return t, nil
}

// Delete consumes the token row with id.  ErrNotFound means another
// request consumed it first.
func (r *OneTimeTokenRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.q.ExecContext(ctx, r.d.Rebind("DELETE FROM "+r.table+" WHERE id=?"), id)
	if err != nil {
		return fmt.Errorf("repository.OneTimeTokenRepo.Delete(%s): %w", r.table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository.OneTimeTokenRepo.Delete(%s): %w", r.table, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
