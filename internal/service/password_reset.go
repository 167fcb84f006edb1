package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iliyamo/auth-rbac/internal/repository"
	"github.com/iliyamo/auth-rbac/internal/utils"
)

// RequestPasswordReset issues a reset token for email and mails it.  An
// unknown email returns nil as well, so callers answer both cases the same.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	const op = "service.AuthService.RequestPasswordReset"

	u, err := s.store.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Debug("password reset for unknown email", slog.String("op", op))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	raw, err := utils.RandomURLSafe(oneTimeTokenBytes)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.Resets.Create(ctx, u.ID, raw, s.now().Add(s.ttl.ResetPasswordTTL())); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mailer.SendPasswordReset(u.Email, raw)
	return nil
}

// ResetPassword consumes a reset token and stores the new password hash.
func (s *AuthService) ResetPassword(ctx context.Context, raw, newPassword string) error {
	const op = "service.AuthService.ResetPassword"

	hash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		t, err := tx.Resets.GetValid(ctx, raw, s.now())
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		if err != nil {
			return err
		}
		if err := tx.Users.UpdatePassword(ctx, t.UserID, hash); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := tx.Resets.Delete(ctx, t.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidOrExpiredToken
			}
			return err
		}
		return nil
	})
	if err != nil {
		if KindOf(err) != KindInternal {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("password reset", slog.String("op", op))
	return nil
}
