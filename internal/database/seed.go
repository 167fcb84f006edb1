package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type seedRow struct {
	Name        string
	Description string
}

var defaultRoles = []seedRow{
	{"admin", "Administrator with full access"},
	{"manager", "Manager with limited admin access"},
	{"user", "Regular user"},
	{"guest", "Guest user with minimal access"},
}

var defaultObjects = []seedRow{
	{"users", "User management"},
	{"products", "Product catalog"},
	{"orders", "Customer orders"},
	{"access_rules", "Access control rules"},
}

// Seed inserts the default roles, business objects and the admin rules.
// It does nothing when any role already exists.
func (db *DB) Seed(ctx context.Context) error {
	const op = "database.Seed"

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM roles").Scan(&n); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n > 0 {
		return nil
	}

	err := db.InTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()

		var adminID int64
		for _, r := range defaultRoles {
			id, err := db.Dialect.InsertID(ctx, tx,
				"INSERT INTO roles (name, description) VALUES (?, ?)", r.Name, r.Description)
			if err != nil {
				return fmt.Errorf("role %s: %w", r.Name, err)
			}
			if r.Name == "admin" {
				adminID = id
			}
		}

		for _, o := range defaultObjects {
			objectID, err := db.Dialect.InsertID(ctx, tx,
				"INSERT INTO business_objects (name, description, created_at) VALUES (?, ?, ?)",
				o.Name, o.Description, now)
			if err != nil {
				return fmt.Errorf("object %s: %w", o.Name, err)
			}
			if _, err := tx.ExecContext(ctx, db.Dialect.Rebind(`INSERT INTO access_rules
				(role_id, object_id, can_read, can_read_all, can_create, can_update, can_update_all, can_delete, can_delete_all, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
				adminID, objectID, true, true, true, true, true, true, true, now,
			); err != nil {
				return fmt.Errorf("admin rule for %s: %w", o.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
