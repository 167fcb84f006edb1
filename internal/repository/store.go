package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/auth-rbac/internal/database"
)

// Store groups the repositories over one connection.  Inside InTx the
// callback receives a Store whose repositories all share the transaction.
type Store struct {
	db   *database.DB
	inTx bool

	Users         *UserRepo
	Sessions      *SessionRepo
	Verifications *OneTimeTokenRepo
	Resets        *OneTimeTokenRepo
	Access        *AccessRepo
}

func NewStore(db *database.DB) *Store {
	return newStore(db, db.DB, false)
}

func newStore(db *database.DB, q database.Querier, inTx bool) *Store {
	return &Store{
		db:            db,
		inTx:          inTx,
		Users:         NewUserRepo(q, db.Dialect),
		Sessions:      NewSessionRepo(q, db.Dialect),
		Verifications: NewVerificationTokenRepo(q, db.Dialect),
		Resets:        NewPasswordResetTokenRepo(q, db.Dialect),
		Access:        NewAccessRepo(q, db.Dialect),
	}
}

// InTx runs fn with transaction-bound repositories, committing when fn
// returns nil.  Calling InTx on a Store that is already transactional
// reuses the open transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.InTx(ctx, func(tx *sql.Tx) error {
		return fn(newStore(s.db, tx, true))
	})
}
