package session

import (
	"context"
	"fmt"
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/audit"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/capability"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// AuthorizedOp is the result of a successful authorization.
type AuthorizedOp struct {
	GrantID      string
	CapabilityID string

	Issuer   common.Address
	Delegate common.Address

	Kind      capability.Kind
	Operation capability.Operation

	AuthorizedAt time.Time

	// UsageCount is the grant's count after this use was recorded.
	UsageCount uint64
}

// Evaluate decides whether g permits op at now. It has no side effects
// and returns the same result for the same inputs. gasPolicy is the
// policy attached to g, or nil.
//
// Checks run in a fixed order: lifetime, delegate, capabilities, gas
// policy. The first failure is returned as a *Denial.
func Evaluate(g *Grant, op capability.Operation, gasPolicy *GasPolicy, now time.Time) (*AuthorizedOp, error) {
	deny := func(reason error, detail string) *Denial {
		return &Denial{Reason: reason, GrantID: g.ID, Operation: op.Clone(), Detail: detail}
	}

	if g.Revoked {
		return nil, deny(ErrExpired, "grant was revoked")
	}
	if g.IsExpired(now) {
		return nil, deny(ErrExpired, fmt.Sprintf("grant expired at %s", g.ExpiresAt.Format(time.RFC3339)))
	}

	if op.ActingAddress != g.DelegateAddress {
		return nil, deny(ErrWrongDelegate, fmt.Sprintf("expected %s, got %s", g.DelegateAddress.Hex(), op.ActingAddress.Hex()))
	}

	var matched *capability.Capability
	for i := range g.Capabilities {
		if g.Capabilities[i].Permits(op) {
			matched = &g.Capabilities[i]
			break
		}
	}
	if matched == nil {
		d := deny(ErrNoMatchingCapability, fmt.Sprintf("%s to %s", op.EffectiveKind(), op.Target.Hex()))
		d.Capabilities = capability.CloneAll(g.Capabilities)
		return nil, d
	}

	if gasPolicy != nil && gasPolicy.IsActive {
		if detail := checkGasPolicy(g, gasPolicy, op, now); detail != "" {
			d := deny(ErrGasPolicyExceeded, detail)
			d.PolicyID = gasPolicy.ID
			return nil, d
		}
	}

	return &AuthorizedOp{
		GrantID:      g.ID,
		CapabilityID: matched.ID,
		Issuer:       g.IssuerAddress,
		Delegate:     g.DelegateAddress,
		Kind:         op.EffectiveKind(),
		Operation:    op.Clone(),
		AuthorizedAt: now,
		UsageCount:   g.UsageCount,
	}, nil
}

// checkGasPolicy returns a non-empty description of the first violated
// limit.
func checkGasPolicy(g *Grant, p *GasPolicy, op capability.Operation, now time.Time) string {
	if op.EstimatedGas > p.MaxGasPerTx {
		return fmt.Sprintf("estimated gas %d exceeds per-transaction limit %d", op.EstimatedGas, p.MaxGasPerTx)
	}
	if !p.Allows(op.Target) {
		return fmt.Sprintf("target %s is not an allowed contract", op.Target.Hex())
	}
	used := g.gasUsedAt(now)
	if used+op.EstimatedGas > p.MaxGasPerDay {
		return fmt.Sprintf("daily gas %d + %d exceeds limit %d", used, op.EstimatedGas, p.MaxGasPerDay)
	}
	return ""
}

// Authorizer evaluates operations against stored grants and records each
// successful use.
type Authorizer struct {
	store  *GrantStore
	sink   audit.Sink
	logger *zap.Logger
}

// NewAuthorizer creates an Authorizer. sink may be nil.
func NewAuthorizer(store *GrantStore, sink audit.Sink) *Authorizer {
	return &Authorizer{
		store:  store,
		sink:   sink,
		logger: logger.ForComponent(logger.ComponentSession),
	}
}

// Authorize loads the grant, evaluates op against it and, on success,
// records the use. Evaluation and the usage update happen under the
// grant's lock, so concurrent callers cannot both spend the same gas
// budget. Every decision is published to the audit sink.
func (a *Authorizer) Authorize(ctx context.Context, grantID string, op capability.Operation, now time.Time) (*AuthorizedOp, error) {
	unlock := a.store.locks.Lock(grantID)
	defer unlock()

	g, err := a.store.grants.GetGrant(ctx, grantID)
	if err != nil {
		return nil, err
	}

	var gasPolicy *GasPolicy
	if g.GasPolicyID != nil {
		gasPolicy, err = a.store.policies.GetPolicy(ctx, *g.GasPolicyID)
		if err != nil {
			return nil, fmt.Errorf("failed to load gas policy for grant %s: %w", grantID, err)
		}
	}

	result, err := Evaluate(g, op, gasPolicy, now)
	if err != nil {
		if d, ok := AsDenial(err); ok {
			a.auditDenial(ctx, g, d, now)
		}
		return nil, err
	}

	if err := a.store.recordUse(ctx, g, now, op.EstimatedGas); err != nil {
		return nil, err
	}
	result.UsageCount = g.UsageCount

	a.logger.Debug("Session operation authorized",
		zap.String("grant_id", g.ID),
		zap.String("capability_id", result.CapabilityID),
		zap.String("kind", string(result.Kind)),
		zap.Uint64("usage_count", result.UsageCount))

	audit.Emit(ctx, a.sink, a.logger, audit.Event{
		Type:      audit.EventSessionAuthorized,
		Timestamp: now,
		Account:   g.IssuerAddress.Hex(),
		Actor:     op.ActingAddress.Hex(),
		GrantID:   g.ID,
		Detail: map[string]interface{}{
			"capability_id": result.CapabilityID,
			"kind":          string(result.Kind),
			"target":        op.Target.Hex(),
			"usage_count":   result.UsageCount,
		},
	})
	return result, nil
}

func (a *Authorizer) auditDenial(ctx context.Context, g *Grant, d *Denial, now time.Time) {
	detail := map[string]interface{}{
		"kind":   string(d.Operation.EffectiveKind()),
		"target": d.Operation.Target.Hex(),
	}
	if d.Detail != "" {
		detail["message"] = d.Detail
	}
	if len(d.Capabilities) > 0 {
		detail["capabilities"] = d.Capabilities
	}
	if d.PolicyID != "" {
		detail["gas_policy_id"] = d.PolicyID
	}

	a.logger.Info("Session operation denied",
		zap.String("grant_id", g.ID),
		zap.String("acting_address", d.Operation.ActingAddress.Hex()),
		zap.Error(d))

	audit.Emit(ctx, a.sink, a.logger, audit.Event{
		Type:      audit.EventSessionDenied,
		Timestamp: now,
		Account:   g.IssuerAddress.Hex(),
		Actor:     d.Operation.ActingAddress.Hex(),
		GrantID:   g.ID,
		Reason:    d.Reason.Error(),
		Detail:    detail,
	})
}
