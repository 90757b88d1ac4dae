package audit

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes events to a zap logger.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(ctx context.Context, event Event) error {
	event = stamp(ctx, event)

	fields := []zap.Field{
		zap.String("event_type", string(event.Type)),
		zap.Time("event_time", event.Timestamp),
		zap.String("account", event.Account),
	}
	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.GrantID != "" {
		fields = append(fields, zap.String("grant_id", event.GrantID))
	}
	if event.ProposalID != "" {
		fields = append(fields, zap.String("proposal_id", event.ProposalID))
	}
	if event.Reason != "" {
		fields = append(fields, zap.String("reason", event.Reason))
	}
	if len(event.Detail) > 0 {
		fields = append(fields, zap.Any("detail", event.Detail))
	}
	if event.CorrelationID != "" {
		fields = append(fields, zap.String("correlation_id", event.CorrelationID))
	}

	s.logger.Info("Audit event", fields...)
	return nil
}
