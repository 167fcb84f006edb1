package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/auth-rbac/internal/database"
	"github.com/iliyamo/auth-rbac/internal/model"
)

const userColumns = "id,email,password_hash,first_name,last_name,patronymic,is_active,is_verified,is_superuser,created_at,updated_at,deleted_at"

type UserRepo struct {
	q database.Querier
	d database.Dialect
}

func NewUserRepo(q database.Querier, d database.Dialect) *UserRepo { return &UserRepo{q: q, d: d} }

// Create inserts u and returns its ID.  Email is stored as given.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (uint64, error) {
	const op = "repository.UserRepo.Create"

	now := time.Now().UTC()
	id, err := r.d.InsertID(ctx, r.q,
		`INSERT INTO users (email,password_hash,first_name,last_name,patronymic,is_active,is_verified,is_superuser,created_at,updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Patronymic,
		u.IsActive, u.IsVerified, u.IsSuperuser, now, now)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return 0, ErrEmailExists
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	u.ID = uint64(id)
	u.CreatedAt, u.UpdatedAt = now, now
	return u.ID, nil
}

// GetByEmail fetches a user by exact email match.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, "repository.UserRepo.GetByEmail",
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx, "repository.UserRepo.GetByID",
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// ExistsByEmail reports whether any user already holds email.
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var one int
	err := r.q.QueryRowContext(ctx, r.d.Rebind("SELECT 1 FROM users WHERE email=? LIMIT 1"), email).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("repository.UserRepo.ExistsByEmail: %w", err)
	}
	return true, nil
}

// MarkVerified flips both is_verified and is_active on.
func (r *UserRepo) MarkVerified(ctx context.Context, id uint64) error {
	return r.exec(ctx, "repository.UserRepo.MarkVerified",
		"UPDATE users SET is_verified=?, is_active=?, updated_at=? WHERE id=?",
		true, true, time.Now().UTC(), id)
}

// UpdatePassword overwrites the stored hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	return r.exec(ctx, "repository.UserRepo.UpdatePassword",
		"UPDATE users SET password_hash=?, updated_at=? WHERE id=?",
		hash, time.Now().UTC(), id)
}

// UpdateProfile applies the non-nil fields of upd.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, upd model.ProfileUpdate) error {
	var (
		sets []string
		args []any
	)
	if upd.FirstName != nil {
		sets = append(sets, "first_name=?")
		args = append(args, *upd.FirstName)
	}
	if upd.LastName != nil {
		sets = append(sets, "last_name=?")
		args = append(args, *upd.LastName)
	}
	if upd.Patronymic != nil {
		sets = append(sets, "patronymic=?")
		args = append(args, *upd.Patronymic)
	}
	sets = append(sets, "updated_at=?")
	args = append(args, time.Now().UTC(), id)

	return r.exec(ctx, "repository.UserRepo.UpdateProfile",
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
}

// Deactivate soft-deletes the account: it stays in place but can no
// longer log in or authenticate.
func (r *UserRepo) Deactivate(ctx context.Context, id uint64) error {
	now := time.Now().UTC()
	return r.exec(ctx, "repository.UserRepo.Deactivate",
		"UPDATE users SET is_active=?, deleted_at=?, updated_at=? WHERE id=?",
		false, now, now, id)
}

func (r *UserRepo) getOne(ctx context.Context, op, query string, arg any) (model.User, error) {
	var u model.User
	err := r.q.QueryRowContext(ctx, r.d.Rebind(query), arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Patronymic,
		&u.IsActive, &u.IsVerified, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// exec runs an UPDATE that must hit exactly one user.
func (r *UserRepo) exec(ctx context.Context, op, query string, args ...any) error {
	res, err := r.q.ExecContext(ctx, r.d.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
