package repository

import (
	"context"
	"encoding/json"

	"github.com/cyphera/cyphera-wallet-policy/internal/db"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/capability"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/outcome"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/session"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SessionStore persists grants, gas policies and session activity in
// Postgres.
type SessionStore struct {
	queries db.Querier
	logger  *zap.Logger
}

var (
	_ session.GrantRepository     = (*SessionStore)(nil)
	_ session.GasPolicyRepository = (*SessionStore)(nil)
	_ session.ActivityRepository  = (*SessionStore)(nil)
)

// NewSessionStore creates a SessionStore.
func NewSessionStore(queries db.Querier) *SessionStore {
	return &SessionStore{
		queries: queries,
		logger:  logger.ForComponent(logger.ComponentDB),
	}
}

func (s *SessionStore) CreateGrant(ctx context.Context, g *session.Grant) error {
	if err := g.CheckIntegrity(); err != nil {
		return err
	}

	id, err := parseID(g.ID, errors.Wrapf(policy.ErrInvalidArgument, "invalid grant id %q", g.ID))
	if err != nil {
		return err
	}
	caps, err := json.Marshal(g.Capabilities)
	if err != nil {
		return errors.Wrap(err, "failed to encode capabilities")
	}
	gasPolicyID, err := optionalUUID(g.GasPolicyID)
	if err != nil {
		return err
	}

	_, err = s.queries.CreateSessionGrant(ctx, db.CreateSessionGrantParams{
		ID:              id,
		Name:            g.Name,
		Description:     g.Description,
		IssuerAddress:   g.IssuerAddress.Hex(),
		DelegateAddress: g.DelegateAddress.Hex(),
		Capabilities:    caps,
		IssuedAt:        timestamptz(g.IssuedAt),
		ExpiresAt:       timestamptz(g.ExpiresAt),
		GasPolicyID:     gasPolicyID,
	})
	if err != nil {
		s.logger.Error("Failed to create session grant", zap.String("grant_id", g.ID), zap.Error(err))
		return errors.Wrap(err, "failed to create session grant")
	}
	return nil
}

func (s *SessionStore) GetGrant(ctx context.Context, id string) (*session.Grant, error) {
	grantID, err := parseID(id, session.ErrGrantNotFound)
	if err != nil {
		return nil, err
	}

	row, err := s.queries.GetSessionGrant(ctx, grantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrGrantNotFound
		}
		return nil, errors.Wrap(err, "failed to get session grant")
	}
	return grantFromRow(row)
}

func (s *SessionStore) UpdateGrant(ctx context.Context, g *session.Grant) error {
	if err := g.CheckIntegrity(); err != nil {
		return err
	}

	id, err := parseID(g.ID, session.ErrGrantNotFound)
	if err != nil {
		return err
	}
	usage, err := int64From(g.UsageCount)
	if err != nil {
		return err
	}
	gasUsed, err := int64From(g.GasUsedInWindow)
	if err != nil {
		return err
	}

	_, err = s.queries.UpdateSessionGrant(ctx, db.UpdateSessionGrantParams{
		ID:              id,
		Revoked:         g.Revoked,
		RevokedAt:       optionalTimestamptz(g.RevokedAt),
		UsageCount:      usage,
		LastUsedAt:      optionalTimestamptz(g.LastUsedAt),
		GasUsedInWindow: gasUsed,
		GasWindowStart:  optionalTimestamptz(g.GasWindowStart),
	})
	if err != nil {
		// No row is returned both for unknown ids and for an attempt to
		// clear the revoked flag.
		if errors.Is(err, pgx.ErrNoRows) {
			return session.ErrGrantNotFound
		}
		return errors.Wrap(err, "failed to update session grant")
	}
	return nil
}

func (s *SessionStore) ListGrantsByIssuer(ctx context.Context, issuer common.Address) ([]*session.Grant, error) {
	rows, err := s.queries.ListSessionGrantsByIssuer(ctx, issuer.Hex())
	if err != nil {
		return nil, errors.Wrap(err, "failed to list session grants")
	}

	out := make([]*session.Grant, 0, len(rows))
	for _, row := range rows {
		g, err := grantFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func grantFromRow(row db.SessionGrant) (*session.Grant, error) {
	var caps []capability.Capability
	if err := json.Unmarshal(row.Capabilities, &caps); err != nil {
		return nil, errors.Wrapf(policy.ErrCorruptRecord, "grant %s: capabilities: %v", row.ID, err)
	}
	issuer, err := address(row.IssuerAddress)
	if err != nil {
		return nil, err
	}
	delegate, err := address(row.DelegateAddress)
	if err != nil {
		return nil, err
	}
	usage, err := uint64From(row.UsageCount)
	if err != nil {
		return nil, err
	}
	gasUsed, err := uint64From(row.GasUsedInWindow)
	if err != nil {
		return nil, err
	}

	g := &session.Grant{
		ID:              row.ID.String(),
		Name:            row.Name,
		Description:     row.Description,
		IssuerAddress:   issuer,
		DelegateAddress: delegate,
		Capabilities:    caps,
		IssuedAt:        timeFrom(row.IssuedAt),
		ExpiresAt:       timeFrom(row.ExpiresAt),
		Revoked:         row.Revoked,
		RevokedAt:       optionalTimeFrom(row.RevokedAt),
		UsageCount:      usage,
		LastUsedAt:      optionalTimeFrom(row.LastUsedAt),
		GasPolicyID:     optionalUUIDFrom(row.GasPolicyID),
		GasUsedInWindow: gasUsed,
		GasWindowStart:  optionalTimeFrom(row.GasWindowStart),
	}
	if err := g.CheckIntegrity(); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *SessionStore) CreatePolicy(ctx context.Context, p *session.GasPolicy) error {
	id, err := parseID(p.ID, errors.Wrapf(policy.ErrInvalidArgument, "invalid policy id %q", p.ID))
	if err != nil {
		return err
	}
	perTx, err := int64From(p.MaxGasPerTx)
	if err != nil {
		return err
	}
	perDay, err := int64From(p.MaxGasPerDay)
	if err != nil {
		return err
	}

	_, err = s.queries.CreateGasPolicy(ctx, db.CreateGasPolicyParams{
		ID:               id,
		IssuerAddress:    p.IssuerAddress.Hex(),
		Name:             p.Name,
		Description:      p.Description,
		MaxGasPerTx:      perTx,
		MaxGasPerDay:     perDay,
		AllowedContracts: addressStrings(p.AllowedContracts),
		AllowAnyContract: p.AllowAnyContract,
		IsActive:         p.IsActive,
		CreatedAt:        timestamptz(p.CreatedAt),
	})
	if err != nil {
		s.logger.Error("Failed to create gas policy", zap.String("policy_id", p.ID), zap.Error(err))
		return errors.Wrap(err, "failed to create gas policy")
	}
	return nil
}

func (s *SessionStore) GetPolicy(ctx context.Context, id string) (*session.GasPolicy, error) {
	policyID, err := parseID(id, session.ErrPolicyNotFound)
	if err != nil {
		return nil, err
	}

	row, err := s.queries.GetGasPolicy(ctx, policyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrPolicyNotFound
		}
		return nil, errors.Wrap(err, "failed to get gas policy")
	}
	return gasPolicyFromRow(row)
}

func (s *SessionStore) UpdatePolicy(ctx context.Context, p *session.GasPolicy) error {
	id, err := parseID(p.ID, session.ErrPolicyNotFound)
	if err != nil {
		return err
	}
	perTx, err := int64From(p.MaxGasPerTx)
	if err != nil {
		return err
	}
	perDay, err := int64From(p.MaxGasPerDay)
	if err != nil {
		return err
	}

	_, err = s.queries.UpdateGasPolicy(ctx, db.UpdateGasPolicyParams{
		ID:               id,
		Name:             p.Name,
		Description:      p.Description,
		MaxGasPerTx:      perTx,
		MaxGasPerDay:     perDay,
		AllowedContracts: addressStrings(p.AllowedContracts),
		AllowAnyContract: p.AllowAnyContract,
		IsActive:         p.IsActive,
		UpdatedAt:        timestamptz(p.UpdatedAt),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.ErrPolicyNotFound
		}
		return errors.Wrap(err, "failed to update gas policy")
	}
	return nil
}

func (s *SessionStore) ListPolicies(ctx context.Context, issuer common.Address) ([]*session.GasPolicy, error) {
	rows, err := s.queries.ListGasPoliciesByIssuer(ctx, issuer.Hex())
	if err != nil {
		return nil, errors.Wrap(err, "failed to list gas policies")
	}

	out := make([]*session.GasPolicy, 0, len(rows))
	for _, row := range rows {
		p, err := gasPolicyFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func gasPolicyFromRow(row db.GasPolicy) (*session.GasPolicy, error) {
	issuer, err := address(row.IssuerAddress)
	if err != nil {
		return nil, err
	}
	perTx, err := uint64From(row.MaxGasPerTx)
	if err != nil {
		return nil, err
	}
	perDay, err := uint64From(row.MaxGasPerDay)
	if err != nil {
		return nil, err
	}
	contracts := make([]common.Address, 0, len(row.AllowedContracts))
	for _, c := range row.AllowedContracts {
		a, err := address(c)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, a)
	}

	return &session.GasPolicy{
		ID:               row.ID.String(),
		IssuerAddress:    issuer,
		Name:             row.Name,
		Description:      row.Description,
		MaxGasPerTx:      perTx,
		MaxGasPerDay:     perDay,
		AllowedContracts: contracts,
		AllowAnyContract: row.AllowAnyContract,
		IsActive:         row.IsActive,
		CreatedAt:        timeFrom(row.CreatedAt),
		UpdatedAt:        timeFrom(row.UpdatedAt),
	}, nil
}

func (s *SessionStore) CreateActivity(ctx context.Context, a *session.Activity) error {
	id, err := parseID(a.ID, errors.Wrapf(policy.ErrInvalidArgument, "invalid activity id %q", a.ID))
	if err != nil {
		return err
	}
	grantID, err := parseID(a.GrantID, session.ErrGrantNotFound)
	if err != nil {
		return err
	}
	gas, err := int64From(a.EstimatedGas)
	if err != nil {
		return err
	}

	var selector string
	if a.Selector != nil {
		selector = a.Selector.String()
	}

	_, err = s.queries.CreateSessionActivity(ctx, db.CreateSessionActivityParams{
		ID:           id,
		GrantID:      grantID,
		CapabilityID: a.CapabilityID,
		Kind:         string(a.Kind),
		Target:       a.Target.Hex(),
		Selector:     text(selector),
		ValueWei:     numeric(a.Value),
		EstimatedGas: gas,
		Status:       string(a.Outcome.Status),
		RecordedAt:   timestamptz(a.Outcome.RecordedAt),
		CreatedAt:    timestamptz(a.CreatedAt),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create session activity")
	}
	return nil
}

func (s *SessionStore) GetActivity(ctx context.Context, id string) (*session.Activity, error) {
	activityID, err := parseID(id, session.ErrActivityNotFound)
	if err != nil {
		return nil, err
	}

	row, err := s.queries.GetSessionActivity(ctx, activityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrActivityNotFound
		}
		return nil, errors.Wrap(err, "failed to get session activity")
	}
	return activityFromRow(row)
}

func (s *SessionStore) GetActivityByHandle(ctx context.Context, handle outcome.Handle) (*session.Activity, error) {
	if handle == "" {
		return nil, session.ErrActivityNotFound
	}

	row, err := s.queries.GetSessionActivityByHandle(ctx, text(string(handle)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrActivityNotFound
		}
		return nil, errors.Wrap(err, "failed to get session activity by handle")
	}
	return activityFromRow(row)
}

func (s *SessionStore) UpdateActivity(ctx context.Context, a *session.Activity) error {
	id, err := parseID(a.ID, session.ErrActivityNotFound)
	if err != nil {
		return err
	}
	gasUsed, err := int64From(a.Outcome.GasUsed)
	if err != nil {
		return err
	}

	_, err = s.queries.UpdateSessionActivity(ctx, db.UpdateSessionActivityParams{
		ID:            id,
		Handle:        text(string(a.Handle)),
		Status:        string(a.Outcome.Status),
		TxHash:        hashText(a.Outcome.TxHash),
		FailureReason: a.Outcome.Reason,
		GasUsed:       gasUsed,
		RecordedAt:    timestamptz(a.Outcome.RecordedAt),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.ErrActivityNotFound
		}
		return errors.Wrap(err, "failed to update session activity")
	}
	return nil
}

func (s *SessionStore) ListActivityByGrant(ctx context.Context, grantID string) ([]*session.Activity, error) {
	id, err := parseID(grantID, session.ErrGrantNotFound)
	if err != nil {
		return nil, err
	}

	rows, err := s.queries.ListSessionActivityByGrant(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list session activity")
	}

	out := make([]*session.Activity, 0, len(rows))
	for _, row := range rows {
		a, err := activityFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func activityFromRow(row db.SessionActivity) (*session.Activity, error) {
	kind, err := capability.ParseKind(row.Kind)
	if err != nil {
		return nil, errors.Wrapf(policy.ErrCorruptRecord, "activity %s: %v", row.ID, err)
	}
	status, err := outcome.ParseStatus(row.Status)
	if err != nil {
		return nil, errors.Wrapf(policy.ErrCorruptRecord, "activity %s: %v", row.ID, err)
	}
	target, err := address(row.Target)
	if err != nil {
		return nil, err
	}
	value, err := bigIntFrom(row.ValueWei)
	if err != nil {
		return nil, err
	}
	estimated, err := uint64From(row.EstimatedGas)
	if err != nil {
		return nil, err
	}
	gasUsed, err := uint64From(row.GasUsed)
	if err != nil {
		return nil, err
	}

	a := &session.Activity{
		ID:           row.ID.String(),
		GrantID:      row.GrantID.String(),
		CapabilityID: row.CapabilityID,
		Kind:         kind,
		Target:       target,
		Value:        value,
		EstimatedGas: estimated,
		Handle:       outcome.Handle(textFrom(row.Handle)),
		Outcome: outcome.Outcome{
			Status:     status,
			TxHash:     optionalHash(row.TxHash),
			Reason:     row.FailureReason,
			GasUsed:    gasUsed,
			RecordedAt: timeFrom(row.RecordedAt),
		},
		CreatedAt: timeFrom(row.CreatedAt),
	}
	if row.Selector.Valid {
		sel, err := capability.ParseSelector(row.Selector.String)
		if err != nil {
			return nil, errors.Wrapf(policy.ErrCorruptRecord, "activity %s: %v", row.ID, err)
		}
		a.Selector = &sel
	}
	return a, nil
}

func addressStrings(addrs []common.Address) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.Hex()
	}
	return out
}
