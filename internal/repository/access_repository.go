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

// AccessRepo reads and writes roles, business objects, role membership and
// access rules.
type AccessRepo struct {
	q database.Querier
	d database.Dialect
}

func NewAccessRepo(q database.Querier, d database.Dialect) *AccessRepo {
	return &AccessRepo{q: q, d: d}
}

// GetRoleByName returns ErrNotFound when no role has that name.
func (r *AccessRepo) GetRoleByName(ctx context.Context, name string) (model.Role, error) {
	var role model.Role
	err := r.q.QueryRowContext(ctx,
		r.d.Rebind("SELECT id, name, description FROM roles WHERE name=? LIMIT 1"), name).
		Scan(&role.ID, &role.Name, &role.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Role{}, ErrNotFound
	}
	if err != nil {
		return model.Role{}, fmt.Errorf("repository.AccessRepo.GetRoleByName: %w", err)
	}
	return role, nil
}

// GetObjectByName returns ErrNotFound for unknown objects.
func (r *AccessRepo) GetObjectByName(ctx context.Context, name string) (model.BusinessObject, error) {
	var obj model.BusinessObject
	err := r.q.QueryRowContext(ctx,
		r.d.Rebind("SELECT id, name, description, created_at FROM business_objects WHERE name=? LIMIT 1"), name).
		Scan(&obj.ID, &obj.Name, &obj.Description, &obj.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BusinessObject{}, ErrNotFound
	}
	if err != nil {
		return model.BusinessObject{}, fmt.Errorf("repository.AccessRepo.GetObjectByName: %w", err)
	}
	return obj, nil
}

// RoleIDsForUser lists the ids of every role held by userID.
func (r *AccessRepo) RoleIDsForUser(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.q.QueryContext(ctx,
		r.d.Rebind("SELECT role_id FROM user_roles WHERE user_id=? ORDER BY role_id"), userID)
	if err != nil {
		return nil, fmt.Errorf("repository.AccessRepo.RoleIDsForUser: %w", err)
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("repository.AccessRepo.RoleIDsForUser: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RoleNamesForUser lists role names held by userID, alphabetically.
func (r *AccessRepo) RoleNamesForUser(ctx context.Context, userID uint64) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, r.d.Rebind(`SELECT r.name FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id=? ORDER BY r.name`), userID)
	if err != nil {
		return nil, fmt.Errorf("repository.AccessRepo.RoleNamesForUser: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("repository.AccessRepo.RoleNamesForUser: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// RulesFor returns the rules of any of roleIDs on objectID.
func (r *AccessRepo) RulesFor(ctx context.Context, roleIDs []uint64, objectID uint64) ([]model.AccessRule, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(roleIDs)+1)
	args = append(args, objectID)
	for _, id := range roleIDs {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(roleIDs)), ",")

	rows, err := r.q.QueryContext(ctx, r.d.Rebind(`SELECT id, role_id, object_id,
		can_read, can_read_all, can_create, can_update, can_update_all, can_delete, can_delete_all, created_at
		FROM access_rules WHERE object_id=? AND role_id IN (`+placeholders+`)`), args...)
	if err != nil {
		return nil, fmt.Errorf("repository.AccessRepo.RulesFor: %w", err)
	}
	defer rows.Close()

	var out []model.AccessRule
	for rows.Next() {
		var ar model.AccessRule
		if err := rows.Scan(&ar.ID, &ar.RoleID, &ar.ObjectID,
			&ar.CanRead, &ar.CanReadAll, &ar.CanCreate, &ar.CanUpdate, &ar.CanUpdateAll,
			&ar.CanDelete, &ar.CanDeleteAll, &ar.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository.AccessRepo.RulesFor: %w", err)
		}
		out = append(out, ar)
	}
	return out, rows.Err()
}

// ListRules returns every rule with role and object names filled in.
func (r *AccessRepo) ListRules(ctx context.Context) ([]model.AccessRule, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT ar.id, ar.role_id, ar.object_id, r.name, bo.name,
		ar.can_read, ar.can_read_all, ar.can_create, ar.can_update, ar.can_update_all, ar.can_delete, ar.can_delete_all, ar.created_at
		FROM access_rules ar
		JOIN roles r ON r.id = ar.role_id
		JOIN business_objects bo ON bo.id = ar.object_id
		ORDER BY r.name, bo.name`)
	if err != nil {
		return nil, fmt.Errorf("repository.AccessRepo.ListRules: %w", err)
	}
	defer rows.Close()

	out := []model.AccessRule{}
	for rows.Next() {
		var ar model.AccessRule
		if err := rows.Scan(&ar.ID, &ar.RoleID, &ar.ObjectID, &ar.RoleName, &ar.ObjectName,
			&ar.CanRead, &ar.CanReadAll, &ar.CanCreate, &ar.CanUpdate, &ar.CanUpdateAll,
			&ar.CanDelete, &ar.CanDeleteAll, &ar.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository.AccessRepo.ListRules: %w", err)
		}
		out = append(out, ar)
	}
	return out, rows.Err()
}

var ruleFlagColumns = []string{
	"can_read", "can_read_all", "can_create", "can_update", "can_update_all", "can_delete", "can_delete_all",
}

// UpsertRule replaces the flags of the (roleID, objectID) rule, creating it
// when missing.
func (r *AccessRepo) UpsertRule(ctx context.Context, roleID, objectID uint64, p model.Permissions) error {
	_, err := r.q.ExecContext(ctx, r.d.Upsert(`INSERT INTO access_rules
		(role_id, object_id, can_read, can_read_all, can_create, can_update, can_update_all, can_delete, can_delete_all, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`, []string{"role_id", "object_id"}, ruleFlagColumns),
		roleID, objectID,
		p.CanRead, p.CanReadAll, p.CanCreate, p.CanUpdate, p.CanUpdateAll, p.CanDelete, p.CanDeleteAll,
		time.Now().UTC())
	if err != nil {
		return fmt.Errorf("repository.AccessRepo.UpsertRule: %w", err)
	}
	return nil
}

// AssignRole grants roleID to userID.  Assigning a held role is a no-op.
func (r *AccessRepo) AssignRole(ctx context.Context, userID, roleID uint64) error {
	_, err := r.q.ExecContext(ctx,
		r.d.InsertIgnore("INSERT INTO user_roles (user_id, role_id, created_at) VALUES (?,?,?)"),
		userID, roleID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("repository.AccessRepo.AssignRole: %w", err)
	}
	return nil
}

// RemoveRole revokes roleID from userID; ErrNotFound if it was not held.
func (r *AccessRepo) RemoveRole(ctx context.Context, userID, roleID uint64) error {
	res, err := r.q.ExecContext(ctx,
		r.d.Rebind("DELETE FROM user_roles WHERE user_id=? AND role_id=?"), userID, roleID)
	if err != nil {
		return fmt.Errorf("repository.AccessRepo.RemoveRole: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository.AccessRepo.RemoveRole: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
