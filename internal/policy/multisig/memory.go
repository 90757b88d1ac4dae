package multisig

import (
	"context"
	"sort"
	"sync"

	"github.com/cyphera/cyphera-wallet-policy/internal/policy/outcome"
	"github.com/ethereum/go-ethereum/common"
)

// MemoryConfigRepository is an in-process ConfigRepository.
type MemoryConfigRepository struct {
	mu      sync.RWMutex
	configs map[common.Address]*Config
}

// NewMemoryConfigRepository creates an empty repository.
func NewMemoryConfigRepository() *MemoryConfigRepository {
	return &MemoryConfigRepository{configs: make(map[common.Address]*Config)}
}

func (r *MemoryConfigRepository) CreateConfig(_ context.Context, cfg *Config) error {
	if err := cfg.CheckIntegrity(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[cfg.Account]; exists {
		return ErrConfigExists
	}
	r.configs[cfg.Account] = cfg.Clone()
	return nil
}

func (r *MemoryConfigRepository) GetConfig(_ context.Context, account common.Address) (*Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[account]
	if !ok {
		return nil, ErrConfigNotFound
	}
	if err := cfg.CheckIntegrity(); err != nil {
		return nil, err
	}
	return cfg.Clone(), nil
}

func (r *MemoryConfigRepository) UpdateConfig(_ context.Context, cfg *Config) error {
	if err := cfg.CheckIntegrity(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.configs[cfg.Account]; !ok {
		return ErrConfigNotFound
	}
	r.configs[cfg.Account] = cfg.Clone()
	return nil
}

// MemoryProposalRepository is an in-process ProposalRepository.
type MemoryProposalRepository struct {
	mu        sync.RWMutex
	proposals map[string]*Proposal
}

// NewMemoryProposalRepository creates an empty repository.
func NewMemoryProposalRepository() *MemoryProposalRepository {
	return &MemoryProposalRepository{proposals: make(map[string]*Proposal)}
}

func (r *MemoryProposalRepository) CreateProposal(_ context.Context, p *Proposal) error {
	if err := p.CheckIntegrity(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.proposals[p.ID] = p.Clone()
	return nil
}

func (r *MemoryProposalRepository) GetProposal(_ context.Context, id string) (*Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.proposals[id]
	if !ok {
		return nil, ErrProposalNotFound
	}
	if err := p.CheckIntegrity(); err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

func (r *MemoryProposalRepository) GetProposalByHandle(_ context.Context, handle outcome.Handle) (*Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.proposals {
		if p.Receipt != nil && p.Receipt.Handle == handle {
			return p.Clone(), nil
		}
	}
	return nil, ErrProposalNotFound
}

func (r *MemoryProposalRepository) UpdateProposal(_ context.Context, p *Proposal) error {
	if err := p.CheckIntegrity(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.proposals[p.ID]; !ok {
		return ErrProposalNotFound
	}
	r.proposals[p.ID] = p.Clone()
	return nil
}

func (r *MemoryProposalRepository) ListProposalsByAccount(_ context.Context, account common.Address) ([]*Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Proposal, 0)
	for _, p := range r.proposals {
		if p.Account != account {
			continue
		}
		if err := p.CheckIntegrity(); err != nil {
			return nil, err
		}
		out = append(out, p.Clone())
	}
	sortProposals(out)
	return out, nil
}

// sortProposals orders by createdAt ascending, ties broken by nonce.
func sortProposals(proposals []*Proposal) {
	sort.Slice(proposals, func(i, j int) bool {
		if !proposals[i].CreatedAt.Equal(proposals[j].CreatedAt) {
			return proposals[i].CreatedAt.Before(proposals[j].CreatedAt)
		}
		return proposals[i].Nonce < proposals[j].Nonce
	})
}

// MemoryRepository is an in-process Repository.
type MemoryRepository struct {
	*MemoryConfigRepository
	*MemoryProposalRepository
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		MemoryConfigRepository:   NewMemoryConfigRepository(),
		MemoryProposalRepository: NewMemoryProposalRepository(),
	}
}

// CommitExecution checks every record before storing any of them. The
// config lock is always taken before the proposal lock.
func (r *MemoryRepository) CommitExecution(_ context.Context, commit ExecutionCommit) error {
	if commit.Executed == nil {
		return ErrProposalNotFound
	}
	writes := append([]*Proposal{commit.Executed}, commit.Pruned...)
	for _, p := range writes {
		if err := p.CheckIntegrity(); err != nil {
			return err
		}
	}
	if commit.Config != nil {
		if err := commit.Config.CheckIntegrity(); err != nil {
			return err
		}
	}

	r.MemoryConfigRepository.mu.Lock()
	defer r.MemoryConfigRepository.mu.Unlock()
	r.MemoryProposalRepository.mu.Lock()
	defer r.MemoryProposalRepository.mu.Unlock()

	if commit.Config != nil {
		if _, ok := r.configs[commit.Config.Account]; !ok {
			return ErrConfigNotFound
		}
	}
	for _, p := range writes {
		if _, ok := r.proposals[p.ID]; !ok {
			return ErrProposalNotFound
		}
	}

	if commit.Config != nil {
		r.configs[commit.Config.Account] = commit.Config.Clone()
	}
	for _, p := range writes {
		r.proposals[p.ID] = p.Clone()
	}
	return nil
}
