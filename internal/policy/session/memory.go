package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cyphera/cyphera-wallet-policy/internal/policy/outcome"
	"github.com/ethereum/go-ethereum/common"
)

// MemoryGrantRepository is an in-process GrantRepository.
type MemoryGrantRepository struct {
	mu     sync.RWMutex
	grants map[string]*Grant
}

// NewMemoryGrantRepository creates an empty repository.
func NewMemoryGrantRepository() *MemoryGrantRepository {
	return &MemoryGrantRepository{grants: make(map[string]*Grant)}
}

func (r *MemoryGrantRepository) CreateGrant(_ context.Context, g *Grant) error {
	if err := g.CheckIntegrity(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.grants[g.ID]; exists {
		return fmt.Errorf("grant %s already exists", g.ID)
	}
	r.grants[g.ID] = g.Clone()
	return nil
}

func (r *MemoryGrantRepository) GetGrant(_ context.Context, id string) (*Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.grants[id]
	if !ok {
		return nil, ErrGrantNotFound
	}
	if err := g.CheckIntegrity(); err != nil {
		return nil, err
	}
	return g.Clone(), nil
}

func (r *MemoryGrantRepository) UpdateGrant(_ context.Context, g *Grant) error {
	if err := g.CheckIntegrity(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.grants[g.ID]; !ok {
		return ErrGrantNotFound
	}
	r.grants[g.ID] = g.Clone()
	return nil
}

func (r *MemoryGrantRepository) ListGrantsByIssuer(_ context.Context, issuer common.Address) ([]*Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Grant, 0)
	for _, g := range r.grants {
		if g.IssuerAddress != issuer {
			continue
		}
		if err := g.CheckIntegrity(); err != nil {
			return nil, err
		}
		out = append(out, g.Clone())
	}
	sortGrants(out)
	return out, nil
}

// sortGrants orders by issuedAt ascending, ties broken by id.
func sortGrants(grants []*Grant) {
	sort.Slice(grants, func(i, j int) bool {
		if !grants[i].IssuedAt.Equal(grants[j].IssuedAt) {
			return grants[i].IssuedAt.Before(grants[j].IssuedAt)
		}
		return grants[i].ID < grants[j].ID
	})
}

// MemoryGasPolicyRepository is an in-process GasPolicyRepository.
type MemoryGasPolicyRepository struct {
	mu       sync.RWMutex
	policies map[string]*GasPolicy
}

// NewMemoryGasPolicyRepository creates an empty repository.
func NewMemoryGasPolicyRepository() *MemoryGasPolicyRepository {
	return &MemoryGasPolicyRepository{policies: make(map[string]*GasPolicy)}
}

func (r *MemoryGasPolicyRepository) CreatePolicy(_ context.Context, p *GasPolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.policies[p.ID]; exists {
		return fmt.Errorf("gas policy %s already exists", p.ID)
	}
	r.policies[p.ID] = p.Clone()
	return nil
}

func (r *MemoryGasPolicyRepository) GetPolicy(_ context.Context, id string) (*GasPolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.policies[id]
	if !ok {
		return nil, ErrPolicyNotFound
	}
	return p.Clone(), nil
}

func (r *MemoryGasPolicyRepository) UpdatePolicy(_ context.Context, p *GasPolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.policies[p.ID]; !ok {
		return ErrPolicyNotFound
	}
	r.policies[p.ID] = p.Clone()
	return nil
}

func (r *MemoryGasPolicyRepository) ListPolicies(_ context.Context, issuer common.Address) ([]*GasPolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*GasPolicy, 0)
	for _, p := range r.policies {
		if p.IssuerAddress == issuer {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// MemoryActivityRepository is an in-process ActivityRepository.
type MemoryActivityRepository struct {
	mu       sync.RWMutex
	entries  map[string]*Activity
	byHandle map[outcome.Handle]string
}

// NewMemoryActivityRepository creates an empty repository.
func NewMemoryActivityRepository() *MemoryActivityRepository {
	return &MemoryActivityRepository{
		entries:  make(map[string]*Activity),
		byHandle: make(map[outcome.Handle]string),
	}
}

func (r *MemoryActivityRepository) CreateActivity(_ context.Context, a *Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[a.ID]; exists {
		return fmt.Errorf("activity %s already exists", a.ID)
	}
	r.entries[a.ID] = a.Clone()
	if a.Handle != "" {
		r.byHandle[a.Handle] = a.ID
	}
	return nil
}

func (r *MemoryActivityRepository) GetActivity(_ context.Context, id string) (*Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.entries[id]
	if !ok {
		return nil, ErrActivityNotFound
	}
	return a.Clone(), nil
}

func (r *MemoryActivityRepository) GetActivityByHandle(_ context.Context, handle outcome.Handle) (*Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byHandle[handle]
	if !ok {
		return nil, ErrActivityNotFound
	}
	return r.entries[id].Clone(), nil
}

func (r *MemoryActivityRepository) UpdateActivity(_ context.Context, a *Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[a.ID]; !ok {
		return ErrActivityNotFound
	}
	r.entries[a.ID] = a.Clone()
	if a.Handle != "" {
		r.byHandle[a.Handle] = a.ID
	}
	return nil
}

func (r *MemoryActivityRepository) ListActivityByGrant(_ context.Context, grantID string) ([]*Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Activity, 0)
	for _, a := range r.entries {
		if a.GrantID == grantID {
			out = append(out, a.Clone())
		}
	}
	sortActivityNewestFirst(out)
	return out, nil
}

func sortActivityNewestFirst(entries []*Activity) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID > entries[j].ID
	})
}
