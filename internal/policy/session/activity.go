package session

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/helpers"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/capability"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/outcome"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrOutcomeFinal is returned when an outcome is reported for an
// activity that already has a final one.
var ErrOutcomeFinal = errors.New("activity outcome already final")

// Activity is one authorized use of a grant and its chain outcome.
type Activity struct {
	ID           string
	GrantID      string
	CapabilityID string

	Kind         capability.Kind
	Target       common.Address
	Selector     *capability.Selector
	Value        *big.Int
	EstimatedGas uint64

	// Handle is the wallet SDK operation handle, empty until submitted.
	Handle  outcome.Handle
	Outcome outcome.Outcome

	CreatedAt time.Time
}

// Clone returns a deep copy.
func (a *Activity) Clone() *Activity {
	out := *a
	if a.Selector != nil {
		s := *a.Selector
		out.Selector = &s
	}
	if a.Value != nil {
		out.Value = new(big.Int).Set(a.Value)
	}
	if a.Outcome.TxHash != nil {
		h := *a.Outcome.TxHash
		out.Outcome.TxHash = &h
	}
	return &out
}

// ActivityLog records authorized operations and their outcomes. Updates
// to one entry are serialized by activity id.
type ActivityLog struct {
	repo   ActivityRepository
	locks  *helpers.KeyedMutex
	logger *zap.Logger
}

// NewActivityLog creates an ActivityLog backed by repo.
func NewActivityLog(repo ActivityRepository) *ActivityLog {
	return &ActivityLog{
		repo:   repo,
		locks:  helpers.NewKeyedMutex(),
		logger: logger.ForComponent(logger.ComponentSession),
	}
}

// Record stores a pending activity entry for an authorized operation.
func (l *ActivityLog) Record(ctx context.Context, op *AuthorizedOp) (*Activity, error) {
	a := &Activity{
		ID:           uuid.New().String(),
		GrantID:      op.GrantID,
		CapabilityID: op.CapabilityID,
		Kind:         op.Kind,
		Target:       op.Operation.Target,
		EstimatedGas: op.Operation.EstimatedGas,
		Outcome:      outcome.Pending(op.AuthorizedAt),
		CreatedAt:    op.AuthorizedAt,
	}
	if sel, ok := op.Operation.EffectiveSelector(); ok {
		a.Selector = &sel
	}
	if op.Operation.Value != nil {
		a.Value = new(big.Int).Set(op.Operation.Value)
	}

	if err := l.repo.CreateActivity(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to record session activity: %w", err)
	}
	return a.Clone(), nil
}

// AttachHandle links an activity to the operation handle returned by the
// wallet SDK, so the outcome can be routed back later.
func (l *ActivityLog) AttachHandle(ctx context.Context, activityID string, handle outcome.Handle) error {
	unlock := l.locks.Lock(activityID)
	defer unlock()

	a, err := l.repo.GetActivity(ctx, activityID)
	if err != nil {
		return err
	}
	if a.Handle != "" && a.Handle != handle {
		return fmt.Errorf("activity %s already bound to handle %s", activityID, a.Handle)
	}

	a.Handle = handle
	if err := l.repo.UpdateActivity(ctx, a); err != nil {
		return fmt.Errorf("failed to attach handle: %w", err)
	}
	return nil
}

// RecordOutcome stores the chain outcome reported for handle.
func (l *ActivityLog) RecordOutcome(ctx context.Context, handle outcome.Handle, result outcome.Outcome) (*Activity, error) {
	found, err := l.repo.GetActivityByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}

	unlock := l.locks.Lock(found.ID)
	defer unlock()

	a, err := l.repo.GetActivity(ctx, found.ID)
	if err != nil {
		return nil, err
	}
	if a.Outcome.Status.IsFinal() {
		return nil, fmt.Errorf("activity %s: %w", a.ID, ErrOutcomeFinal)
	}

	a.Outcome = result
	if err := l.repo.UpdateActivity(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to record outcome: %w", err)
	}

	l.logger.Info("Session activity outcome recorded",
		zap.String("activity_id", a.ID),
		zap.String("grant_id", a.GrantID),
		zap.String("handle", string(handle)),
		zap.String("status", string(result.Status)))
	return a.Clone(), nil
}

// List returns a grant's activity, newest first.
func (l *ActivityLog) List(ctx context.Context, grantID string) ([]*Activity, error) {
	return l.repo.ListActivityByGrant(ctx, grantID)
}
