package notification

import (
	"context"
	"log/slog"
)

// SlogSink writes notifications to the structured log. It is the default
// sink: real delivery (email, push) lives behind external collaborators and
// is wired in via the Kafka sink when configured.
type SlogSink struct {
	logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Send(_ context.Context, event Event) error {
	s.logger.Info("notification",
		"type", string(event.Type),
		"user_id", event.UserID.String(),
		"application_id", event.ApplicationID.String(),
		"status", event.Status,
		"occurred_at", event.OccurredAt,
	)
	return nil
}
