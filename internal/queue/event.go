// Package queue defines the email jobs exchanged over the message broker
// and the code that produces, consumes and delivers them.
package queue

import "time"

// EmailKind selects the template an EmailJob is rendered with.
type EmailKind string

const (
	KindVerifyEmail   EmailKind = "verify_email"
	KindPasswordReset EmailKind = "password_reset"
)

// EmailJob is one email waiting to be delivered.  Only the recipient and
// the one-time token travel; links and bodies are built at delivery time.
type EmailJob struct {
	ID        string    `json:"id"`
	Kind      EmailKind `json:"kind"`
	To        string    `json:"to"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}
