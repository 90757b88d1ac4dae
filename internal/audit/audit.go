// Package audit publishes policy decisions: every authorization and
// denial, and every multisig state change.
package audit

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// EventType names an audited decision.
type EventType string

const (
	EventSessionIssued     EventType = "session.issued"
	EventSessionRevoked    EventType = "session.revoked"
	EventSessionAuthorized EventType = "session.authorized"
	EventSessionDenied     EventType = "session.denied"

	EventProposalCreated   EventType = "multisig.proposal_created"
	EventProposalSigned    EventType = "multisig.proposal_signed"
	EventProposalExecuted  EventType = "multisig.proposal_executed"
	EventProposalCancelled EventType = "multisig.proposal_cancelled"
	EventProposalRejected  EventType = "multisig.proposal_rejected"
)

// Event is one audited decision.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	// Account is the issuer of a grant or the multisig account.
	Account string `json:"account"`
	Actor   string `json:"actor,omitempty"`

	GrantID    string `json:"grant_id,omitempty"`
	ProposalID string `json:"proposal_id,omitempty"`

	Reason string                 `json:"reason,omitempty"`
	Detail map[string]interface{} `json:"detail,omitempty"`

	CorrelationID string `json:"correlation_id,omitempty"`
}

// Sink receives audit events. Publish must not block on the caller's
// critical path for long; policy code logs and ignores sink errors.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi fans an event out to several sinks and joins their errors.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type correlationKey struct{}

// WithCorrelationID attaches a request correlation id to ctx so sinks can
// stamp it on events.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the id stored by WithCorrelationID.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

func stamp(ctx context.Context, event Event) Event {
	if event.CorrelationID == "" {
		event.CorrelationID = CorrelationID(ctx)
	}
	return event
}

// Emit publishes event and logs, rather than returns, a sink failure.
// Policy decisions are already committed when they are audited.
func Emit(ctx context.Context, sink Sink, log *zap.Logger, event Event) {
	if sink == nil {
		return
	}
	if err := sink.Publish(ctx, event); err != nil {
		log.Warn("Failed to publish audit event",
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}
