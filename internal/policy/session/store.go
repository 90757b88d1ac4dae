// Package session implements delegated session-key grants: issuance and
// revocation, authorization of proposed operations against a grant's
// capabilities, optional gas budgets, and the per-grant activity log.
//
// Every operation takes the current time explicitly. Expiry is computed
// from that time on each read and is never stored.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/audit"
	"github.com/cyphera/cyphera-wallet-policy/internal/helpers"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/capability"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IssueParams holds the inputs of a new grant.
type IssueParams struct {
	Issuer       common.Address
	Delegate     common.Address
	Capabilities []capability.Capability
	TTL          time.Duration

	Name        string
	Description string
	GasPolicyID *string
}

// GrantStore owns session grants. Writes to one grant are serialized.
type GrantStore struct {
	grants   GrantRepository
	policies GasPolicyRepository
	sink     audit.Sink
	locks    *helpers.KeyedMutex
	logger   *zap.Logger
}

// NewGrantStore creates a store over the given repositories. sink may be
// nil.
func NewGrantStore(grants GrantRepository, policies GasPolicyRepository, sink audit.Sink) *GrantStore {
	return &GrantStore{
		grants:   grants,
		policies: policies,
		sink:     sink,
		locks:    helpers.NewKeyedMutex(),
		logger:   logger.ForComponent(logger.ComponentSession),
	}
}

// Issue validates and stores a new grant with issuedAt = now and
// expiresAt = now + ttl.
func (s *GrantStore) Issue(ctx context.Context, now time.Time, params IssueParams) (*Grant, error) {
	if len(params.Capabilities) == 0 {
		return nil, ErrEmptyGrant
	}
	if err := capability.ValidateAll(params.Capabilities); err != nil {
		return nil, err
	}
	if params.TTL < 0 {
		return nil, ErrInvalidTTL
	}
	if params.Delegate == (common.Address{}) {
		return nil, fmt.Errorf("%w: delegate address is required", policy.ErrInvalidArgument)
	}

	if params.GasPolicyID != nil {
		p, err := s.policies.GetPolicy(ctx, *params.GasPolicyID)
		if err != nil {
			return nil, err
		}
		if p.IssuerAddress != params.Issuer {
			return nil, fmt.Errorf("gas policy %s: %w", p.ID, policy.ErrUnauthorized)
		}
	}

	caps := capability.CloneAll(params.Capabilities)
	for i := range caps {
		caps[i].ID = uuid.New().String()
	}

	g := &Grant{
		ID:              uuid.New().String(),
		Name:            params.Name,
		Description:     params.Description,
		IssuerAddress:   params.Issuer,
		DelegateAddress: params.Delegate,
		Capabilities:    caps,
		IssuedAt:        now,
		ExpiresAt:       now.Add(params.TTL),
	}
	if params.GasPolicyID != nil {
		id := *params.GasPolicyID
		g.GasPolicyID = &id
	}

	if err := s.grants.CreateGrant(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to store grant: %w", err)
	}

	s.logger.Info("Session grant issued",
		zap.String("grant_id", g.ID),
		zap.String("issuer", g.IssuerAddress.Hex()),
		zap.String("delegate", g.DelegateAddress.Hex()),
		zap.Int("capabilities", len(g.Capabilities)),
		zap.Time("expires_at", g.ExpiresAt))

	audit.Emit(ctx, s.sink, s.logger, audit.Event{
		Type:      audit.EventSessionIssued,
		Timestamp: now,
		Account:   g.IssuerAddress.Hex(),
		Actor:     g.IssuerAddress.Hex(),
		GrantID:   g.ID,
		Detail: map[string]interface{}{
			"delegate":     g.DelegateAddress.Hex(),
			"capabilities": len(g.Capabilities),
			"expires_at":   g.ExpiresAt,
		},
	})
	return g.Clone(), nil
}

// Revoke marks a grant revoked. Only the issuer may revoke. Revoking an
// already-revoked grant succeeds and changes nothing.
func (s *GrantStore) Revoke(ctx context.Context, now time.Time, grantID string, caller common.Address) (*Grant, error) {
	unlock := s.locks.Lock(grantID)
	defer unlock()

	g, err := s.grants.GetGrant(ctx, grantID)
	if err != nil {
		return nil, err
	}
	if g.IssuerAddress != caller {
		return nil, fmt.Errorf("grant %s: %w", grantID, policy.ErrUnauthorized)
	}
	if g.Revoked {
		return g, nil
	}

	g.Revoked = true
	g.RevokedAt = &now
	if err := s.grants.UpdateGrant(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to revoke grant: %w", err)
	}

	s.logger.Info("Session grant revoked",
		zap.String("grant_id", g.ID),
		zap.String("issuer", caller.Hex()))

	audit.Emit(ctx, s.sink, s.logger, audit.Event{
		Type:      audit.EventSessionRevoked,
		Timestamp: now,
		Account:   g.IssuerAddress.Hex(),
		Actor:     caller.Hex(),
		GrantID:   g.ID,
	})
	return g.Clone(), nil
}

// Get returns a grant by id.
func (s *GrantStore) Get(ctx context.Context, grantID string) (*Grant, error) {
	return s.grants.GetGrant(ctx, grantID)
}

// ListActive returns the issuer's grants that are neither revoked nor
// expired at now, ordered by issuedAt ascending.
func (s *GrantStore) ListActive(ctx context.Context, issuer common.Address, now time.Time) ([]*Grant, error) {
	all, err := s.grants.ListGrantsByIssuer(ctx, issuer)
	if err != nil {
		return nil, err
	}

	active := make([]*Grant, 0, len(all))
	for _, g := range all {
		if g.IsActive(now) {
			active = append(active, g)
		}
	}
	return active, nil
}

// ListAll returns every grant the issuer created, including revoked and
// expired ones, ordered by issuedAt ascending.
func (s *GrantStore) ListAll(ctx context.Context, issuer common.Address) ([]*Grant, error) {
	return s.grants.ListGrantsByIssuer(ctx, issuer)
}

// recordUse applies a successful authorization to g and persists it. The
// caller must hold the grant lock.
func (s *GrantStore) recordUse(ctx context.Context, g *Grant, now time.Time, gas uint64) error {
	g.UsageCount++
	g.LastUsedAt = &now

	if g.GasPolicyID != nil {
		if g.gasWindowOpen(now) {
			g.GasUsedInWindow += gas
		} else {
			g.GasWindowStart = &now
			g.GasUsedInWindow = gas
		}
	}

	if err := s.grants.UpdateGrant(ctx, g); err != nil {
		return fmt.Errorf("failed to record grant use: %w", err)
	}
	return nil
}
