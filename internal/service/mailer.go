package service

// Mailer delivers the verification and reset emails.  Implementations
// must return immediately and own their failures: the caller never waits
// for delivery and never sees its errors.
type Mailer interface {
	SendVerification(email, token string)
	SendPasswordReset(email, token string)
}
