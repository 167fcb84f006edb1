package model

import "time"

// User represents an account record as stored in the `users` table.
// Handlers never serialise this struct directly; the password hash stays
// inside the service layer.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address, matched exactly.
//  PasswordHash – bcrypt hashed password.
//  FirstName, LastName, Patronymic – optional profile fields.
//  IsActive     – false until the email is verified, or after deactivation.
//  IsVerified   – set once by a successful email verification.
//  IsSuperuser  – bypasses every permission check.
//  DeletedAt    – soft-deactivation timestamp (nil while the account is live).
type User struct {
	ID           uint64
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
	Patronymic   *string
	IsActive     bool
	IsVerified   bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// ProfileUpdate carries a partial profile change.  Nil fields are left
// untouched.
type ProfileUpdate struct {
	FirstName  *string
	LastName   *string
	Patronymic *string
}
