package multisig

import (
	"context"

	"github.com/cyphera/cyphera-wallet-policy/internal/policy/outcome"
	"github.com/ethereum/go-ethereum/common"
)

// ConfigRepository persists multisig configs, one per account.
type ConfigRepository interface {
	CreateConfig(ctx context.Context, cfg *Config) error
	GetConfig(ctx context.Context, account common.Address) (*Config, error)
	UpdateConfig(ctx context.Context, cfg *Config) error
}

// ProposalRepository persists proposals. Implementations return copies
// and reject records that fail CheckIntegrity.
type ProposalRepository interface {
	CreateProposal(ctx context.Context, p *Proposal) error
	GetProposal(ctx context.Context, id string) (*Proposal, error)
	GetProposalByHandle(ctx context.Context, handle outcome.Handle) (*Proposal, error)
	UpdateProposal(ctx context.Context, p *Proposal) error
	ListProposalsByAccount(ctx context.Context, account common.Address) ([]*Proposal, error)
}

// ExecutionCommit is everything one Execute writes. Config is nil when the
// proposal does not change governance. Pruned holds open proposals that
// lost a removed owner's signature.
type ExecutionCommit struct {
	Config   *Config
	Executed *Proposal
	Pruned   []*Proposal
}

// Repository is the storage behind a Ledger. CommitExecution applies an
// ExecutionCommit entirely or not at all.
type Repository interface {
	ConfigRepository
	ProposalRepository
	CommitExecution(ctx context.Context, commit ExecutionCommit) error
}
