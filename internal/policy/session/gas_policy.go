package session

import (
	"context"
	"fmt"
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/helpers"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GasPolicy is a gas budget that can be attached to session grants.
type GasPolicy struct {
	ID            string
	IssuerAddress common.Address
	Name          string
	Description   string

	MaxGasPerTx  uint64
	MaxGasPerDay uint64

	// AllowedContracts restricts targets. AllowAnyContract is the "*" entry.
	AllowedContracts []common.Address
	AllowAnyContract bool

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Allows reports whether target is on the policy's contract list.
func (p *GasPolicy) Allows(target common.Address) bool {
	if p.AllowAnyContract {
		return true
	}
	for _, c := range p.AllowedContracts {
		if c == target {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (p *GasPolicy) Clone() *GasPolicy {
	out := *p
	out.AllowedContracts = append([]common.Address(nil), p.AllowedContracts...)
	return &out
}

func (p *GasPolicy) validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPolicy)
	}
	if p.MaxGasPerTx == 0 || p.MaxGasPerDay == 0 {
		return fmt.Errorf("%w: gas limits must be positive", ErrInvalidPolicy)
	}
	if p.MaxGasPerDay < p.MaxGasPerTx {
		return fmt.Errorf("%w: max gas per day is below max gas per transaction", ErrInvalidPolicy)
	}
	if !p.AllowAnyContract && len(p.AllowedContracts) == 0 {
		return fmt.Errorf("%w: at least one allowed contract (or \"*\") is required", ErrInvalidPolicy)
	}
	return nil
}

// GasPolicyRepository persists gas policies.
type GasPolicyRepository interface {
	CreatePolicy(ctx context.Context, p *GasPolicy) error
	GetPolicy(ctx context.Context, id string) (*GasPolicy, error)
	UpdatePolicy(ctx context.Context, p *GasPolicy) error
	ListPolicies(ctx context.Context, issuer common.Address) ([]*GasPolicy, error)
}

// CreatePolicyParams holds the fields of a new gas policy.
type CreatePolicyParams struct {
	Issuer           common.Address
	Name             string
	Description      string
	MaxGasPerTx      uint64
	MaxGasPerDay     uint64
	AllowedContracts []common.Address
	AllowAnyContract bool
}

// UpdatePolicyParams holds optional changes to a gas policy.
type UpdatePolicyParams struct {
	IsActive         *bool
	MaxGasPerTx      *uint64
	MaxGasPerDay     *uint64
	AllowedContracts []common.Address
	AllowAnyContract *bool
}

// GasPolicyRegistry manages gas policies for an issuer.
type GasPolicyRegistry struct {
	repo   GasPolicyRepository
	locks  *helpers.KeyedMutex
	logger *zap.Logger
}

// NewGasPolicyRegistry creates a registry backed by repo.
func NewGasPolicyRegistry(repo GasPolicyRepository) *GasPolicyRegistry {
	return &GasPolicyRegistry{
		repo:   repo,
		locks:  helpers.NewKeyedMutex(),
		logger: logger.ForComponent(logger.ComponentSession),
	}
}

// CreatePolicy stores a new, active gas policy.
func (r *GasPolicyRegistry) CreatePolicy(ctx context.Context, now time.Time, params CreatePolicyParams) (*GasPolicy, error) {
	p := &GasPolicy{
		ID:               uuid.New().String(),
		IssuerAddress:    params.Issuer,
		Name:             params.Name,
		Description:      params.Description,
		MaxGasPerTx:      params.MaxGasPerTx,
		MaxGasPerDay:     params.MaxGasPerDay,
		AllowedContracts: append([]common.Address(nil), params.AllowedContracts...),
		AllowAnyContract: params.AllowAnyContract,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	if err := r.repo.CreatePolicy(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create gas policy: %w", err)
	}

	r.logger.Info("Gas policy created",
		zap.String("policy_id", p.ID),
		zap.String("issuer", p.IssuerAddress.Hex()),
		zap.Uint64("max_gas_per_tx", p.MaxGasPerTx),
		zap.Uint64("max_gas_per_day", p.MaxGasPerDay))
	return p.Clone(), nil
}

// GetPolicy returns a policy by id.
func (r *GasPolicyRegistry) GetPolicy(ctx context.Context, id string) (*GasPolicy, error) {
	p, err := r.repo.GetPolicy(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPolicies returns the issuer's policies ordered by creation time.
func (r *GasPolicyRegistry) ListPolicies(ctx context.Context, issuer common.Address) ([]*GasPolicy, error) {
	return r.repo.ListPolicies(ctx, issuer)
}

// UpdatePolicy applies params to a policy owned by caller. Patches to one
// policy are applied one at a time.
func (r *GasPolicyRegistry) UpdatePolicy(ctx context.Context, now time.Time, id string, caller common.Address, params UpdatePolicyParams) (*GasPolicy, error) {
	unlock := r.locks.Lock(id)
	defer unlock()

	p, err := r.repo.GetPolicy(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IssuerAddress != caller {
		return nil, fmt.Errorf("gas policy %s: %w", id, policy.ErrUnauthorized)
	}

	if params.IsActive != nil {
		p.IsActive = *params.IsActive
	}
	if params.MaxGasPerTx != nil {
		p.MaxGasPerTx = *params.MaxGasPerTx
	}
	if params.MaxGasPerDay != nil {
		p.MaxGasPerDay = *params.MaxGasPerDay
	}
	if params.AllowedContracts != nil {
		p.AllowedContracts = append([]common.Address(nil), params.AllowedContracts...)
	}
	if params.AllowAnyContract != nil {
		p.AllowAnyContract = *params.AllowAnyContract
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	p.UpdatedAt = now

	if err := r.repo.UpdatePolicy(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update gas policy: %w", err)
	}

	r.logger.Info("Gas policy updated",
		zap.String("policy_id", p.ID),
		zap.Bool("is_active", p.IsActive))
	return p.Clone(), nil
}

// SetPolicyActive toggles enforcement of a policy.
func (r *GasPolicyRegistry) SetPolicyActive(ctx context.Context, now time.Time, id string, caller common.Address, active bool) (*GasPolicy, error) {
	return r.UpdatePolicy(ctx, now, id, caller, UpdatePolicyParams{IsActive: &active})
}
