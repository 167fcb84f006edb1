package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/auth-rbac/internal/model"
	"github.com/iliyamo/auth-rbac/internal/repository"
)

// PermissionGate answers whether a user may perform an action on a
// business object.  Every call reads the store; nothing is cached.
type PermissionGate struct {
	store *repository.Store
}

func NewPermissionGate(store *repository.Store) *PermissionGate {
	return &PermissionGate{store: store}
}

// Check ORs the matching flag across every rule of the user's roles for
// the object.  Superusers always pass; unknown objects and actions deny.
func (g *PermissionGate) Check(ctx context.Context, u model.User, object string, action model.Action) (bool, error) {
	const op = "service.PermissionGate.Check"

	if u.IsSuperuser {
		return true, nil
	}

	roleIDs, err := g.store.Access.RoleIDsForUser(ctx, u.ID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if len(roleIDs) == 0 {
		return false, nil
	}

	obj, err := g.store.Access.GetObjectByName(ctx, object)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	rules, err := g.store.Access.RulesFor(ctx, roleIDs, obj.ID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	for _, r := range rules {
		if r.Allows(action) {
			return true, nil
		}
	}
	return false, nil
}

// Require is Check turned into an error: ErrPermissionDenied on deny.
func (g *PermissionGate) Require(ctx context.Context, u model.User, object string, action model.Action) error {
	ok, err := g.Check(ctx, u, object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPermissionDenied
	}
	return nil
}
