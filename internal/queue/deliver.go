package queue

import (
	"context"
	"fmt"
	"log/slog"
)

// Deliverer renders a job and sends it.
type Deliverer struct {
	Renderer Renderer
	Sender   Sender
	Log      *slog.Logger
}

func (d *Deliverer) Deliver(ctx context.Context, job EmailJob) error {
	subject, body, err := d.Renderer.Render(job)
	if err != nil {
		return err
	}
	if err := d.Sender.Send(ctx, job.To, subject, body); err != nil {
		return fmt.Errorf("deliver %s to %s: %w", job.Kind, job.To, err)
	}
	d.Log.Info("email delivered",
		slog.String("job_id", job.ID), slog.String("kind", string(job.Kind)), slog.String("to", job.To))
	return nil
}
