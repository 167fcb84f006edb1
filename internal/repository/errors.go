// Package repository holds the SQL-backed stores.  Sentinel errors let the
// service layer tell expected outcomes apart from driver failures, which
// are always wrapped with the failing operation's name.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when inserting a user whose email is taken.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicateToken is returned when a session jti or one-time token
// collides with an existing row.  Never overwrite on collision.
var ErrDuplicateToken = errors.New("duplicate token")
