package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"usercrud/internal/application/ports"
	"usercrud/internal/domain/record"
	"usercrud/internal/infrastructure/metrics"
)

const SubmissionSubject = "New User Detail Submitted"

type SubmissionNotifier struct {
	notifier   ports.Notifier
	adminEmail string
	mCounter   *prometheus.CounterVec
}

func NewSubmissionNotifier(
	notifier ports.Notifier,
	adminEmail string,
	mCounter *prometheus.CounterVec,
) ports.SubmissionNotifier {
	return &SubmissionNotifier{
		notifier:   notifier,
		adminEmail: adminEmail,
		mCounter:   mCounter,
	}
}

func (sn *SubmissionNotifier) Notify(ctx context.Context, r *record.Record) error {
	if err := sn.notifier.Send(ctx, sn.adminEmail, SubmissionSubject, SubmissionBody(r)); err != nil {
		sn.mCounter.WithLabelValues(metrics.NotificationFailed).Inc()
		return fmt.Errorf("notify admin about record %d: %w", r.ID, err)
	}

	sn.mCounter.WithLabelValues(metrics.NotificationSent).Inc()

	return nil
}

func SubmissionBody(r *record.Record) string {
	var b strings.Builder
	b.WriteString("New user detail submission:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", r.Name)
	fmt.Fprintf(&b, "Father Name: %s\n", r.FatherName)
	fmt.Fprintf(&b, "Date of Birth: %s\n", r.DateOfBirth.Format(time.DateOnly))
	fmt.Fprintf(&b, "Email: %s\n", r.Email)
	fmt.Fprintf(&b, "Phone: %s\n", r.PhoneNumber)
	fmt.Fprintf(&b, "Submitted at: %s\n", r.CreatedAt.UTC().Format(time.RFC3339))
	return b.String()
}
