package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iliyamo/auth-rbac/internal/model"
	"github.com/iliyamo/auth-rbac/internal/repository"
)

// Profile is a user together with the names of the roles they hold.
type Profile struct {
	model.User
	Roles []string
}

// UserService serves the signed-in user's own account.
type UserService struct {
	store *repository.Store
	log   *slog.Logger
}

func NewUserService(store *repository.Store, log *slog.Logger) *UserService {
	return &UserService{store: store, log: log}
}

func (s *UserService) Profile(ctx context.Context, userID uint64) (Profile, error) {
	const op = "service.UserService.Profile"

	u, err := s.store.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return Profile{}, ErrUserNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	roles, err := s.store.Access.RoleNamesForUser(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	return Profile{User: u, Roles: roles}, nil
}

// UpdateProfile applies a partial name change and returns the new profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint64, upd model.ProfileUpdate) (Profile, error) {
	const op = "service.UserService.UpdateProfile"

	if err := s.store.Users.UpdateProfile(ctx, userID, upd); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Profile{}, ErrUserNotFound
		}
		return Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.Profile(ctx, userID)
}

// Deactivate soft-deletes the account and wipes its sessions in one
// transaction, so outstanding tokens stop working immediately.
func (s *UserService) Deactivate(ctx context.Context, userID uint64) error {
	const op = "service.UserService.Deactivate"

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		if err := tx.Users.Deactivate(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		_, err := tx.Sessions.DeleteAllForUser(ctx, userID)
		return err
	})
	if err != nil {
		if KindOf(err) != KindInternal {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user deactivated", slog.String("op", op), slog.Uint64("user_id", userID))
	return nil
}
