package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iliyamo/auth-rbac/internal/config"
	"github.com/iliyamo/auth-rbac/internal/model"
	"github.com/iliyamo/auth-rbac/internal/repository"
	"github.com/iliyamo/auth-rbac/internal/token"
	"github.com/iliyamo/auth-rbac/internal/utils"
)

const (
	defaultRoleName = "user"

	jtiBytes          = 16
	oneTimeTokenBytes = 32
)

// TokenPair is the result of a login or refresh.  The refresh token only
// ever travels in a cookie.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// RegisterInput is a validated registration request.  PasswordConfirm is
// compared only when set.
type RegisterInput struct {
	Email           string
	Password        string
	PasswordConfirm string
	FirstName       *string
	LastName        *string
	Patronymic      *string
}

// AuthService orchestrates registration, verification, login, refresh,
// logout and password reset on top of the store and the token codec.
type AuthService struct {
	store      *repository.Store
	codec      *token.Codec
	mailer     Mailer
	log        *slog.Logger
	ttl        config.TokenConfig
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(store *repository.Store, codec *token.Codec, mailer Mailer, log *slog.Logger, ttl config.TokenConfig, bcryptCost int) *AuthService {
	// builds the dummy hash now so the first unknown-email login is not slower
	utils.BurnPasswordCheck("", bcryptCost)
	return &AuthService{
		store:      store,
		codec:      codec,
		mailer:     mailer,
		log:        log,
		ttl:        ttl,
		bcryptCost: bcryptCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an inactive, unverified user holding the default role
// and sends a verification email without waiting for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	const op = "service.AuthService.Register"
	log := s.log.With(slog.String("op", op))

	if in.PasswordConfirm != "" && in.PasswordConfirm != in.Password {
		return model.User{}, ErrPasswordMismatch
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}
	verifyToken, err := utils.RandomURLSafe(oneTimeTokenBytes)
	if err != nil {
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}

	u := model.User{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Patronymic:   in.Patronymic,
	}
	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		exists, err := tx.Users.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return err
		}
		if exists {
			return ErrUserExists
		}
		if _, err := tx.Users.Create(ctx, &u); err != nil {
			if errors.Is(err, repository.ErrEmailExists) {
				return ErrUserExists
			}
			return err
		}

		role, err := tx.Access.GetRoleByName(ctx, defaultRoleName)
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("default role missing, check seed data", slog.String("role", defaultRoleName))
			return ErrDefaultRoleMissing
		}
		if err != nil {
			return err
		}
		if err := tx.Access.AssignRole(ctx, u.ID, role.ID); err != nil {
			return err
		}
		return tx.Verifications.Create(ctx, u.ID, verifyToken, s.now().Add(s.ttl.VerifyEmailTTL()))
	})
	if err != nil {
		if KindOf(err) != KindInternal {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.Uint64("user_id", u.ID))
	s.mailer.SendVerification(u.Email, verifyToken)
	return u, nil
}

// VerifyEmail consumes a verification token and activates its user.
func (s *AuthService) VerifyEmail(ctx context.Context, raw string) error {
	const op = "service.AuthService.VerifyEmail"

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		t, err := tx.Verifications.GetValid(ctx, raw, s.now())
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		if err != nil {
			return err
		}
		if _, err := tx.Users.GetByID(ctx, t.UserID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.log.Error("verification token without user",
					slog.String("op", op), slog.Uint64("user_id", t.UserID))
				return ErrUserNotFound
			}
			return err
		}
		if err := tx.Users.MarkVerified(ctx, t.UserID); err != nil {
			return err
		}
		if err := tx.Verifications.Delete(ctx, t.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidOrExpiredToken
			}
			return err
		}
		return nil
	})
	if err != nil && KindOf(err) == KindInternal {
		return fmt.Errorf("%s: %w", op, err)
	}
	return err
}

// Login checks credentials and opens two sessions, one per issued token.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	const op = "service.AuthService.Login"

	u, err := s.store.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		utils.BurnPasswordCheck(password, s.bcryptCost)
		return TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return TokenPair{}, ErrInvalidCredentials
	}
	// A fresh registration is both unverified and inactive; it reports
	// the verification step it is missing.
	if !u.IsVerified {
		return TokenPair{}, ErrEmailNotVerified
	}
	if !u.IsActive {
		return TokenPair{}, ErrAccountInactive
	}

	var pair TokenPair
	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		pair, err = s.issuePair(ctx, tx, u.ID)
		return err
	})
	if err != nil {
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user logged in", slog.String("op", op), slog.Uint64("user_id", u.ID))
	return pair, nil
}

// Refresh rotates a refresh token.  The presented session and every other
// session of the user are deleted before the new pair is created, so all
// of the user's devices are signed out.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (TokenPair, error) {
	const op = "service.AuthService.Refresh"

	if rawRefresh == "" {
		return TokenPair{}, ErrMissingRefreshToken
	}
	claims, err := s.codec.Decode(rawRefresh, token.Refresh)
	if err != nil {
		return TokenPair{}, ErrInvalidToken
	}

	var pair TokenPair
	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		n, err := tx.Sessions.DeleteByJTI(ctx, claims.JTI)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrInvalidToken
		}
		if _, err := tx.Sessions.DeleteAllForUser(ctx, claims.Subject); err != nil {
			return err
		}
		pair, err = s.issuePair(ctx, tx, claims.Subject)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			s.log.Warn("refresh with revoked token",
				slog.String("op", op), slog.Uint64("user_id", claims.Subject))
			return TokenPair{}, ErrInvalidToken
		}
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	return pair, nil
}

// Logout deletes the presented refresh session and all other sessions of
// its user.  It succeeds even when nothing was left to delete.
func (s *AuthService) Logout(ctx context.Context, rawRefresh string) error {
	const op = "service.AuthService.Logout"

	if rawRefresh == "" {
		return ErrMissingRefreshToken
	}
	claims, err := s.codec.Decode(rawRefresh, token.Refresh)
	if err != nil {
		return ErrInvalidToken
	}

	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		if _, err := tx.Sessions.DeleteByJTI(ctx, claims.JTI); err != nil {
			return err
		}
		_, err := tx.Sessions.DeleteAllForUser(ctx, claims.Subject)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user logged out", slog.String("op", op), slog.Uint64("user_id", claims.Subject))
	return nil
}

// Authenticate resolves an access token to its live, active user.
func (s *AuthService) Authenticate(ctx context.Context, rawAccess string) (model.User, error) {
	const op = "service.AuthService.Authenticate"

	claims, err := s.codec.Decode(rawAccess, token.Access)
	if err != nil {
		return model.User{}, ErrInvalidToken
	}
	live, err := s.store.Sessions.IsLive(ctx, claims.JTI)
	if err != nil {
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if !live {
		return model.User{}, ErrInvalidToken
	}
	u, err := s.store.Users.GetByID(ctx, claims.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, ErrInvalidToken
	}
	if err != nil {
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if !u.IsActive {
		return model.User{}, ErrInvalidToken
	}
	return u, nil
}

// issuePair mints an access and a refresh token with fresh jtis and records
// a session for each through tx.
func (s *AuthService) issuePair(ctx context.Context, tx *repository.Store, userID uint64) (TokenPair, error) {
	accessJTI, err := utils.RandomURLSafe(jtiBytes)
	if err != nil {
		return TokenPair{}, err
	}
	refreshJTI, err := utils.RandomURLSafe(jtiBytes)
	if err != nil {
		return TokenPair{}, err
	}

	now := s.now()
	pair := TokenPair{
		AccessExpiresAt:  now.Add(s.ttl.AccessTTL()),
		RefreshExpiresAt: now.Add(s.ttl.RefreshTTL()),
	}
	pair.AccessToken, err = s.codec.Encode(token.Claims{
		Subject: userID, JTI: accessJTI, Type: token.Access, ExpiresAt: pair.AccessExpiresAt,
	})
	if err != nil {
		return TokenPair{}, err
	}
	pair.RefreshToken, err = s.codec.Encode(token.Claims{
		Subject: userID, JTI: refreshJTI, Type: token.Refresh, ExpiresAt: pair.RefreshExpiresAt,
	})
	if err != nil {
		return TokenPair{}, err
	}

	if err := tx.Sessions.Create(ctx, userID, accessJTI, pair.AccessExpiresAt); err != nil {
		return TokenPair{}, err
	}
	if err := tx.Sessions.Create(ctx, userID, refreshJTI, pair.RefreshExpiresAt); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}
