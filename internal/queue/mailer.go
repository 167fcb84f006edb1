package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const deliveryTimeout = 30 * time.Second

func newJob(kind EmailKind, to, token string) EmailJob {
	return EmailJob{
		ID:        uuid.NewString(),
		Kind:      kind,
		To:        to,
		Token:     token,
		CreatedAt: time.Now().UTC(),
	}
}

// DirectMailer delivers from a goroutine of the calling process.  Errors
// are logged and dropped.
type DirectMailer struct {
	Deliverer *Deliverer
	Log       *slog.Logger
}

func (m *DirectMailer) SendVerification(email, token string) {
	m.dispatch(newJob(KindVerifyEmail, email, token))
}

func (m *DirectMailer) SendPasswordReset(email, token string) {
	m.dispatch(newJob(KindPasswordReset, email, token))
}

func (m *DirectMailer) dispatch(job EmailJob) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		if err := m.Deliverer.Deliver(ctx, job); err != nil {
			m.Log.Error("email delivery failed",
				slog.String("job_id", job.ID), slog.String("kind", string(job.Kind)), slog.Any("err", err))
		}
	}()
}

// QueueMailer publishes jobs to the broker for the consumer to deliver.
// When publishing fails the job is delivered directly instead.
type QueueMailer struct {
	Publisher *Publisher
	Fallback  *DirectMailer
	Log       *slog.Logger
}

func (m *QueueMailer) SendVerification(email, token string) {
	m.dispatch(newJob(KindVerifyEmail, email, token))
}

func (m *QueueMailer) SendPasswordReset(email, token string) {
	m.dispatch(newJob(KindPasswordReset, email, token))
}

func (m *QueueMailer) dispatch(job EmailJob) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.Publisher.Publish(ctx, job); err != nil {
			m.Log.Warn("email publish failed, delivering directly",
				slog.String("job_id", job.ID), slog.Any("err", err))
			if m.Fallback != nil {
				m.Fallback.dispatch(job)
			}
		}
	}()
}
