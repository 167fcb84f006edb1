package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iliyamo/auth-rbac/internal/model"
	"github.com/iliyamo/auth-rbac/internal/repository"
)

// AccessService administers access rules and role membership.  Callers are
// expected to have passed the permission gate already.
type AccessService struct {
	store *repository.Store
	log   *slog.Logger
}

func NewAccessService(store *repository.Store, log *slog.Logger) *AccessService {
	return &AccessService{store: store, log: log}
}

func (s *AccessService) ListRules(ctx context.Context) ([]model.AccessRule, error) {
	rules, err := s.store.Access.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.AccessService.ListRules: %w", err)
	}
	return rules, nil
}

// SetRule replaces the flags a role holds on an object.
func (s *AccessService) SetRule(ctx context.Context, roleName, objectName string, p model.Permissions) error {
	const op = "service.AccessService.SetRule"

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		role, err := tx.Access.GetRoleByName(ctx, roleName)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotFound
		}
		if err != nil {
			return err
		}
		obj, err := tx.Access.GetObjectByName(ctx, objectName)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrObjectNotFound
		}
		if err != nil {
			return err
		}
		return tx.Access.UpsertRule(ctx, role.ID, obj.ID, p)
	})
	if err != nil {
		if KindOf(err) != KindInternal {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("access rule updated", slog.String("op", op),
		slog.String("role", roleName), slog.String("object", objectName))
	return nil
}

// AssignRole grants roleName to userID.  Granting a held role is a no-op.
func (s *AccessService) AssignRole(ctx context.Context, userID uint64, roleName string) error {
	const op = "service.AccessService.AssignRole"

	err := s.withUserAndRole(ctx, userID, roleName, func(tx *repository.Store, role model.Role) error {
		return tx.Access.AssignRole(ctx, userID, role.ID)
	})
	if err != nil {
		if KindOf(err) != KindInternal {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("role assigned", slog.String("op", op),
		slog.Uint64("user_id", userID), slog.String("role", roleName))
	return nil
}

// RemoveRole revokes roleName from userID.
func (s *AccessService) RemoveRole(ctx context.Context, userID uint64, roleName string) error {
	const op = "service.AccessService.RemoveRole"

	err := s.withUserAndRole(ctx, userID, roleName, func(tx *repository.Store, role model.Role) error {
		err := tx.Access.RemoveRole(ctx, userID, role.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotAssigned
		}
		return err
	})
	if err != nil {
		if KindOf(err) != KindInternal {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("role removed", slog.String("op", op),
		slog.Uint64("user_id", userID), slog.String("role", roleName))
	return nil
}

func (s *AccessService) withUserAndRole(ctx context.Context, userID uint64, roleName string, fn func(*repository.Store, model.Role) error) error {
	return s.store.InTx(ctx, func(tx *repository.Store) error {
		if _, err := tx.Users.GetByID(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		role, err := tx.Access.GetRoleByName(ctx, roleName)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotFound
		}
		if err != nil {
			return err
		}
		return fn(tx, role)
	})
}
