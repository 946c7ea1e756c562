package ports

import (
	"context"

	"usercrud/internal/domain/record"
)

// Notifier delivers a plain text message to one recipient.
type Notifier interface {
	Send(ctx context.Context, to, subject, text string) error
}

type SubmissionNotifier interface {
	Notify(ctx context.Context, r *record.Record) error
}
