// Package multisig implements the M-of-N proposal workflow of a smart
// wallet: owner membership and threshold, proposals with collected owner
// signatures, execution once quorum is reached, and the quorum status
// shown for each proposal.
//
// All writes for one account (its config and every proposal on it) are
// serialized, because executing a governance proposal changes the config
// the other proposals are evaluated against.
package multisig

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/audit"
	"github.com/cyphera/cyphera-wallet-policy/internal/helpers"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/capability"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/outcome"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier tells owners about proposals that need their attention.
// Calls are made after the ledger lock is released.
type Notifier interface {
	ProposalCreated(ctx context.Context, cfg *Config, p *Proposal) error
	ProposalReady(ctx context.Context, cfg *Config, p *Proposal) error
}

// Ledger owns multisig configs and their proposals.
type Ledger struct {
	repo      Repository
	configs   ConfigRepository
	proposals ProposalRepository
	verifier  Verifier
	sink      audit.Sink
	notifier  Notifier
	locks     *helpers.KeyedMutex
	logger    *zap.Logger
}

// NewLedger creates a Ledger. sink and notifier may be nil.
func NewLedger(repo Repository, verifier Verifier, sink audit.Sink, notifier Notifier) *Ledger {
	return &Ledger{
		repo:      repo,
		configs:   repo,
		proposals: repo,
		verifier:  verifier,
		sink:      sink,
		notifier:  notifier,
		locks:     helpers.NewKeyedMutex(),
		logger:    logger.ForComponent(logger.ComponentMultisig),
	}
}

// OwnerParams describes an owner at bootstrap.
type OwnerParams struct {
	Address     common.Address
	DisplayName string
	Email       string
	IsAdmin     bool
}

// InitConfigParams holds the initial membership of an account.
type InitConfigParams struct {
	Account   common.Address
	ChainID   uint64
	Owners    []OwnerParams
	Threshold int
}

// InitConfig creates the config of a new multisig account.
func (l *Ledger) InitConfig(ctx context.Context, now time.Time, params InitConfigParams) (*Config, error) {
	if params.Account == (common.Address{}) {
		return nil, fmt.Errorf("%w: account address is required", ErrInvalidConfig)
	}
	if len(params.Owners) == 0 {
		return nil, fmt.Errorf("%w: at least one owner is required", ErrInvalidConfig)
	}
	if params.Threshold < 1 || params.Threshold > len(params.Owners) {
		return nil, fmt.Errorf("%w: threshold %d outside 1..%d", ErrInvalidConfig, params.Threshold, len(params.Owners))
	}

	cfg := &Config{
		Account:   params.Account,
		ChainID:   params.ChainID,
		Threshold: params.Threshold,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, o := range params.Owners {
		if o.Address == (common.Address{}) {
			return nil, fmt.Errorf("%w: owner address is required", ErrInvalidConfig)
		}
		if _, dup := cfg.Owner(o.Address); dup {
			return nil, fmt.Errorf("%w: duplicate owner %s", ErrInvalidConfig, o.Address.Hex())
		}
		cfg.Owners = append(cfg.Owners, Owner{
			Address:     o.Address,
			DisplayName: o.DisplayName,
			Email:       o.Email,
			IsActive:    true,
			IsAdmin:     o.IsAdmin,
			AddedAt:     now,
		})
	}

	unlock := l.locks.Lock(accountKey(params.Account))
	defer unlock()

	if err := l.configs.CreateConfig(ctx, cfg); err != nil {
		return nil, err
	}

	l.logger.Info("Multisig config created",
		zap.String("account", cfg.Account.Hex()),
		zap.Int("owners", len(cfg.Owners)),
		zap.Int("threshold", cfg.Threshold))
	return cfg.Clone(), nil
}

// Config returns the current config of account.
func (l *Ledger) Config(ctx context.Context, account common.Address) (*Config, error) {
	return l.configs.GetConfig(ctx, account)
}

// ProposeParams holds the inputs of a new proposal. Which payload fields
// are read depends on ActionType.
type ProposeParams struct {
	Account     common.Address
	Proposer    common.Address
	ActionType  ActionType
	Title       string
	Description string

	// Transfer and Custom.
	Target *common.Address
	Value  *big.Int
	Data   []byte

	// AddOwner and RemoveOwner.
	Owner      *common.Address
	OwnerName  string
	OwnerEmail string

	// ChangeThreshold.
	NewThreshold *int

	Deadline time.Time
}

// Propose creates a proposal on behalf of an active owner and snapshots
// the account's current threshold as its required signature count.
func (l *Ledger) Propose(ctx context.Context, now time.Time, params ProposeParams) (*Proposal, error) {
	var (
		cfg *Config
		p   *Proposal
	)
	err := l.locks.WithLock(accountKey(params.Account), func() error {
		var err error
		cfg, err = l.configs.GetConfig(ctx, params.Account)
		if err != nil {
			return err
		}
		if !cfg.IsActiveOwner(params.Proposer) {
			return fmt.Errorf("proposer %s: %w", params.Proposer.Hex(), ErrNotAnOwner)
		}
		if !params.Deadline.After(now) {
			return ErrInvalidDeadline
		}

		p = &Proposal{
			ID:                 uuid.New().String(),
			Account:            cfg.Account,
			Title:              params.Title,
			Description:        params.Description,
			ActionType:         params.ActionType,
			ProposerAddress:    params.Proposer,
			CreatedAt:          now,
			Deadline:           params.Deadline,
			RequiredSignatures: cfg.Threshold,
		}
		if err := buildPayload(p, cfg, params); err != nil {
			return err
		}

		cfg.ProposalCount++
		cfg.UpdatedAt = now
		p.Nonce = cfg.ProposalCount

		if err := l.configs.UpdateConfig(ctx, cfg); err != nil {
			return fmt.Errorf("failed to update proposal count: %w", err)
		}
		if err := l.proposals.CreateProposal(ctx, p); err != nil {
			return fmt.Errorf("failed to store proposal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Proposal created",
		zap.String("proposal_id", p.ID),
		zap.String("account", p.Account.Hex()),
		zap.String("action", string(p.ActionType)),
		zap.Int("required_signatures", p.RequiredSignatures))
	audit.Emit(ctx, l.sink, l.logger, audit.Event{
		Type:       audit.EventProposalCreated,
		Timestamp:  now,
		Account:    p.Account.Hex(),
		Actor:      p.ProposerAddress.Hex(),
		ProposalID: p.ID,
		Detail: map[string]interface{}{
			"action":              string(p.ActionType),
			"required_signatures": p.RequiredSignatures,
			"deadline":            p.Deadline,
		},
	})
	l.notify(ctx, cfg, p, l.notifierCreated)

	return p.Clone(), nil
}

// buildPayload fills target, value and data for the action type.
// Governance actions are calls on the account itself.
func buildPayload(p *Proposal, cfg *Config, params ProposeParams) error {
	var err error
	p.Value = new(big.Int)

	switch params.ActionType {
	case ActionTransfer:
		if params.Target == nil {
			return fmt.Errorf("%w: transfer needs a recipient", ErrInvalidProposal)
		}
		if params.Value == nil || params.Value.Sign() <= 0 {
			return fmt.Errorf("%w: transfer needs a positive value", ErrInvalidProposal)
		}
		p.Target = *params.Target
		p.Value.Set(params.Value)
		p.Data = cloneBytes(params.Data)

	case ActionCustom:
		if params.Target == nil || len(params.Data) < capability.SelectorLength {
			return fmt.Errorf("%w: custom action needs a target and call data", ErrInvalidProposal)
		}
		p.Target = *params.Target
		if params.Value != nil {
			if params.Value.Sign() < 0 {
				return fmt.Errorf("%w: value must not be negative", ErrInvalidProposal)
			}
			p.Value.Set(params.Value)
		}
		p.Data = cloneBytes(params.Data)

	case ActionAddOwner:
		if params.Owner == nil || *params.Owner == (common.Address{}) {
			return fmt.Errorf("%w: add owner needs an address", ErrInvalidProposal)
		}
		if cfg.IsActiveOwner(*params.Owner) {
			return fmt.Errorf("%w: %s is already an owner", ErrInvalidProposal, params.Owner.Hex())
		}
		p.Target = cfg.Account
		p.NewOwnerName = params.OwnerName
		p.NewOwnerEmail = params.OwnerEmail
		p.Data, err = capability.EncodeCall(capability.SelectorAddOwner, capability.AddressArg(*params.Owner))

	case ActionRemoveOwner:
		if params.Owner == nil {
			return fmt.Errorf("%w: remove owner needs an address", ErrInvalidProposal)
		}
		if !cfg.IsActiveOwner(*params.Owner) {
			return fmt.Errorf("%s: %w", params.Owner.Hex(), ErrNotAnOwner)
		}
		if err := checkThreshold(p.ID, cfg.Threshold, cfg.ActiveOwnerCount()-1); err != nil {
			return err
		}
		p.Target = cfg.Account
		p.Data, err = capability.EncodeCall(capability.SelectorRemoveOwner, capability.AddressArg(*params.Owner))

	case ActionChangeThreshold:
		if params.NewThreshold == nil {
			return fmt.Errorf("%w: change threshold needs a value", ErrInvalidProposal)
		}
		if err := checkThreshold(p.ID, *params.NewThreshold, cfg.ActiveOwnerCount()); err != nil {
			return err
		}
		p.Target = cfg.Account
		p.Data, err = capability.EncodeCall(capability.SelectorChangeThreshold,
			capability.Uint256Arg(big.NewInt(int64(*params.NewThreshold))))

	default:
		return fmt.Errorf("%w: unknown action type %q", ErrInvalidProposal, params.ActionType)
	}

	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", params.ActionType, err)
	}
	return nil
}

func checkThreshold(proposalID string, threshold, activeOwners int) error {
	if threshold < 1 || threshold > activeOwners {
		return &QuorumError{
			ProposalID:   proposalID,
			Reason:       ErrInvalidConfigChange,
			Threshold:    threshold,
			ActiveOwners: activeOwners,
		}
	}
	return nil
}

// Sign adds signer's approval. Checks run in a fixed order: closed,
// expired, already signed, not an active owner, bad signature. Owner
// status is read from the live config, so a removed owner cannot sign
// proposals created before the removal.
func (l *Ledger) Sign(ctx context.Context, now time.Time, proposalID string, signer common.Address, signature []byte) (*Proposal, error) {
	account, err := l.accountOf(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	var (
		cfg         *Config
		p           *Proposal
		becameReady bool
	)
	err = l.locks.WithLock(accountKey(account), func() error {
		var err error
		if p, err = l.proposals.GetProposal(ctx, proposalID); err != nil {
			return err
		}
		if cfg, err = l.configs.GetConfig(ctx, account); err != nil {
			return err
		}

		if p.IsClosed() {
			return fmt.Errorf("proposal %s: %w", p.ID, ErrProposalClosed)
		}
		if p.IsExpired(now) {
			return fmt.Errorf("proposal %s deadline %s: %w", p.ID, p.Deadline.Format(time.RFC3339), ErrExpired)
		}
		if p.HasSigned(signer) {
			return fmt.Errorf("proposal %s signer %s: %w", p.ID, signer.Hex(), ErrAlreadySigned)
		}
		if !cfg.IsActiveOwner(signer) {
			return fmt.Errorf("signer %s: %w", signer.Hex(), ErrNotAnOwner)
		}
		if err := l.verifier.Verify(Digest(p, cfg.ChainID), signer, signature); err != nil {
			return err
		}

		before := StatusOf(p, cfg, now).Kind
		p.Signatures = append(p.Signatures, Signature{
			Signer:   signer,
			Bytes:    cloneBytes(signature),
			SignedAt: now,
		})
		becameReady = before != StatusReadyToExecute && StatusOf(p, cfg, now).Kind == StatusReadyToExecute

		if err := l.proposals.UpdateProposal(ctx, p); err != nil {
			return fmt.Errorf("failed to store signature: %w", err)
		}
		return nil
	})
	if err != nil {
		l.auditRejection(ctx, now, account, proposalID, signer, "sign", err)
		return nil, err
	}

	st := StatusOf(p, cfg, now)
	l.logger.Info("Proposal signed",
		zap.String("proposal_id", p.ID),
		zap.String("signer", signer.Hex()),
		zap.String("status", st.String()))
	audit.Emit(ctx, l.sink, l.logger, audit.Event{
		Type:       audit.EventProposalSigned,
		Timestamp:  now,
		Account:    account.Hex(),
		Actor:      signer.Hex(),
		ProposalID: p.ID,
		Detail: map[string]interface{}{
			"count":    st.Count,
			"required": st.Required,
		},
	})
	if becameReady {
		l.notify(ctx, cfg, p, l.notifierReady)
	}

	return p.Clone(), nil
}

// Execute marks a proposal executed once it has quorum and returns the
// receipt to submit. The config change of a governance action, the
// executed proposal and any pruned signatures are committed together; if
// the change would break the threshold invariant or the commit fails the
// proposal stays open. The returned receipt's outcome is pending until
// RecordOutcome.
func (l *Ledger) Execute(ctx context.Context, now time.Time, proposalID string) (*Receipt, error) {
	account, err := l.accountOf(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	var receipt *Receipt
	err = l.locks.WithLock(accountKey(account), func() error {
		p, err := l.proposals.GetProposal(ctx, proposalID)
		if err != nil {
			return err
		}
		cfg, err := l.configs.GetConfig(ctx, account)
		if err != nil {
			return err
		}

		if p.IsClosed() {
			return fmt.Errorf("proposal %s: %w", p.ID, ErrProposalClosed)
		}
		if p.IsExpired(now) {
			return fmt.Errorf("proposal %s deadline %s: %w", p.ID, p.Deadline.Format(time.RFC3339), ErrExpired)
		}
		if count := CountApprovals(p, cfg); count < p.RequiredSignatures {
			return &QuorumError{
				ProposalID: p.ID,
				Reason:     ErrInsufficientSignatures,
				Count:      count,
				Required:   p.RequiredSignatures,
			}
		}

		commit := ExecutionCommit{Executed: p}
		var removed *common.Address
		if p.ActionType.IsGovernance() {
			if removed, err = applyGovernance(cfg, p, now); err != nil {
				return err
			}
			cfg.UpdatedAt = now
			commit.Config = cfg
		}
		if removed != nil {
			if commit.Pruned, err = l.pruneSignatures(ctx, account, p.ID, *removed); err != nil {
				return err
			}
		}

		executedAt := now
		p.Executed = true
		p.ExecutedAt = &executedAt
		p.Receipt = &Receipt{
			ProposalID: p.ID,
			Account:    p.Account,
			ChainID:    cfg.ChainID,
			Target:     p.Target,
			Value:      new(big.Int).Set(p.Value),
			Data:       cloneBytes(p.Data),
			ExecutedAt: now,
			Outcome:    outcome.Pending(now),
		}
		if err := l.repo.CommitExecution(ctx, commit); err != nil {
			return fmt.Errorf("failed to execute proposal %s: %w", p.ID, err)
		}
		for _, pruned := range commit.Pruned {
			l.logger.Info("Pruned removed owner's signature",
				zap.String("proposal_id", pruned.ID),
				zap.String("owner", removed.Hex()))
		}

		receipt = p.Clone().Receipt
		return nil
	})
	if err != nil {
		l.auditRejection(ctx, now, account, proposalID, common.Address{}, "execute", err)
		return nil, err
	}

	l.logger.Info("Proposal executed",
		zap.String("proposal_id", proposalID),
		zap.String("account", account.Hex()))
	audit.Emit(ctx, l.sink, l.logger, audit.Event{
		Type:       audit.EventProposalExecuted,
		Timestamp:  now,
		Account:    account.Hex(),
		ProposalID: proposalID,
		Detail: map[string]interface{}{
			"target": receipt.Target.Hex(),
			"value":  receipt.Value.String(),
		},
	})
	return receipt, nil
}

// applyGovernance changes cfg according to p's call data and returns the
// address of a removed owner, if any.
func applyGovernance(cfg *Config, p *Proposal, now time.Time) (*common.Address, error) {
	switch p.ActionType {
	case ActionAddOwner:
		addr, err := capability.DecodeAddressCall(p.Data, capability.SelectorAddOwner)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", policy.ErrCorruptRecord, err)
		}
		if o, ok := cfg.Owner(addr); ok {
			if o.IsActive {
				return nil, fmt.Errorf("%w: %s is already an owner", ErrInvalidConfigChange, addr.Hex())
			}
			o.IsActive = true
			o.RemovedAt = nil
			o.AddedAt = now
			if p.NewOwnerName != "" {
				o.DisplayName = p.NewOwnerName
			}
			if p.NewOwnerEmail != "" {
				o.Email = p.NewOwnerEmail
			}
			return nil, nil
		}
		cfg.Owners = append(cfg.Owners, Owner{
			Address:     addr,
			DisplayName: p.NewOwnerName,
			Email:       p.NewOwnerEmail,
			IsActive:    true,
			AddedAt:     now,
		})
		return nil, nil

	case ActionRemoveOwner:
		addr, err := capability.DecodeAddressCall(p.Data, capability.SelectorRemoveOwner)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", policy.ErrCorruptRecord, err)
		}
		o, ok := cfg.Owner(addr)
		if !ok || !o.IsActive {
			return nil, fmt.Errorf("%w: %s is not an active owner", ErrInvalidConfigChange, addr.Hex())
		}
		if err := checkThreshold(p.ID, cfg.Threshold, cfg.ActiveOwnerCount()-1); err != nil {
			return nil, err
		}
		removedAt := now
		o.IsActive = false
		o.RemovedAt = &removedAt
		return &addr, nil

	case ActionChangeThreshold:
		n, err := capability.DecodeUint256Call(p.Data, capability.SelectorChangeThreshold)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", policy.ErrCorruptRecord, err)
		}
		if !n.IsInt64() {
			return nil, checkThreshold(p.ID, -1, cfg.ActiveOwnerCount())
		}
		threshold := int(n.Int64())
		if err := checkThreshold(p.ID, threshold, cfg.ActiveOwnerCount()); err != nil {
			return nil, err
		}
		cfg.Threshold = threshold
		return nil, nil
	}
	return nil, nil
}

// pruneSignatures returns the account's other open proposals with the
// removed owner's signature dropped. Nothing is written.
func (l *Ledger) pruneSignatures(ctx context.Context, account common.Address, executing string, removed common.Address) ([]*Proposal, error) {
	proposals, err := l.proposals.ListProposalsByAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	var pruned []*Proposal
	for _, p := range proposals {
		if p.ID == executing || p.IsClosed() || !p.HasSigned(removed) {
			continue
		}
		kept := make([]Signature, 0, len(p.Signatures))
		for _, s := range p.Signatures {
			if s.Signer != removed {
				kept = append(kept, s)
			}
		}
		p.Signatures = kept
		pruned = append(pruned, p)
	}
	return pruned, nil
}

// Cancel closes an open proposal. Only the proposer or an active admin
// owner may cancel.
func (l *Ledger) Cancel(ctx context.Context, now time.Time, proposalID string, caller common.Address) (*Proposal, error) {
	account, err := l.accountOf(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	var p *Proposal
	err = l.locks.WithLock(accountKey(account), func() error {
		var err error
		if p, err = l.proposals.GetProposal(ctx, proposalID); err != nil {
			return err
		}
		cfg, err := l.configs.GetConfig(ctx, account)
		if err != nil {
			return err
		}

		if p.IsClosed() {
			return fmt.Errorf("proposal %s: %w", p.ID, ErrProposalClosed)
		}
		if caller != p.ProposerAddress && !cfg.IsAdmin(caller) {
			return fmt.Errorf("cancel proposal %s: %w", p.ID, policy.ErrUnauthorized)
		}

		cancelledAt := now
		p.Cancelled = true
		p.CancelledAt = &cancelledAt
		p.CancelledBy = &caller
		if err := l.proposals.UpdateProposal(ctx, p); err != nil {
			return fmt.Errorf("failed to cancel proposal: %w", err)
		}
		return nil
	})
	if err != nil {
		l.auditRejection(ctx, now, account, proposalID, caller, "cancel", err)
		return nil, err
	}

	l.logger.Info("Proposal cancelled",
		zap.String("proposal_id", p.ID),
		zap.String("cancelled_by", caller.Hex()))
	audit.Emit(ctx, l.sink, l.logger, audit.Event{
		Type:       audit.EventProposalCancelled,
		Timestamp:  now,
		Account:    account.Hex(),
		Actor:      caller.Hex(),
		ProposalID: p.ID,
	})
	return p.Clone(), nil
}

// Get returns a proposal by id.
func (l *Ledger) Get(ctx context.Context, proposalID string) (*Proposal, error) {
	return l.proposals.GetProposal(ctx, proposalID)
}

// ListOpen returns proposals that are not executed, cancelled or expired
// at now, ordered by creation time.
func (l *Ledger) ListOpen(ctx context.Context, account common.Address, now time.Time) ([]*Proposal, error) {
	all, err := l.proposals.ListProposalsByAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	open := make([]*Proposal, 0, len(all))
	for _, p := range all {
		if !p.IsClosed() && !p.IsExpired(now) {
			open = append(open, p)
		}
	}
	return open, nil
}

// ListAll returns every proposal of account ordered by creation time.
func (l *Ledger) ListAll(ctx context.Context, account common.Address) ([]*Proposal, error) {
	return l.proposals.ListProposalsByAccount(ctx, account)
}

// AttachHandle records the wallet SDK handle of an executed proposal's
// submission.
func (l *Ledger) AttachHandle(ctx context.Context, proposalID string, handle outcome.Handle) error {
	account, err := l.accountOf(ctx, proposalID)
	if err != nil {
		return err
	}

	return l.locks.WithLock(accountKey(account), func() error {
		p, err := l.proposals.GetProposal(ctx, proposalID)
		if err != nil {
			return err
		}
		if !p.Executed || p.Receipt == nil {
			return fmt.Errorf("proposal %s has not been executed", p.ID)
		}
		if p.Receipt.Handle != "" && p.Receipt.Handle != handle {
			return fmt.Errorf("proposal %s already bound to handle %s", p.ID, p.Receipt.Handle)
		}
		p.Receipt.Handle = handle
		return l.proposals.UpdateProposal(ctx, p)
	})
}

// RecordOutcome stores the chain outcome reported for handle.
func (l *Ledger) RecordOutcome(ctx context.Context, handle outcome.Handle, result outcome.Outcome) (*Proposal, error) {
	found, err := l.proposals.GetProposalByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}

	var p *Proposal
	err = l.locks.WithLock(accountKey(found.Account), func() error {
		var err error
		if p, err = l.proposals.GetProposal(ctx, found.ID); err != nil {
			return err
		}
		if p.Receipt.Outcome.Status.IsFinal() {
			return fmt.Errorf("proposal %s: %w", p.ID, ErrOutcomeFinal)
		}
		p.Receipt.Outcome = result
		return l.proposals.UpdateProposal(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Proposal execution outcome recorded",
		zap.String("proposal_id", p.ID),
		zap.String("handle", string(handle)),
		zap.String("status", string(result.Status)))
	return p.Clone(), nil
}

// accountOf reads the account a proposal belongs to. The account never
// changes, so it can be read before taking the account lock.
func (l *Ledger) accountOf(ctx context.Context, proposalID string) (common.Address, error) {
	p, err := l.proposals.GetProposal(ctx, proposalID)
	if err != nil {
		return common.Address{}, err
	}
	return p.Account, nil
}

func (l *Ledger) auditRejection(ctx context.Context, now time.Time, account common.Address, proposalID string, actor common.Address, action string, err error) {
	event := audit.Event{
		Type:       audit.EventProposalRejected,
		Timestamp:  now,
		Account:    account.Hex(),
		ProposalID: proposalID,
		Reason:     err.Error(),
		Detail:     map[string]interface{}{"action": action},
	}
	if actor != (common.Address{}) {
		event.Actor = actor.Hex()
	}
	audit.Emit(ctx, l.sink, l.logger, event)
}

func (l *Ledger) notifierCreated(ctx context.Context, cfg *Config, p *Proposal) error {
	return l.notifier.ProposalCreated(ctx, cfg, p)
}

func (l *Ledger) notifierReady(ctx context.Context, cfg *Config, p *Proposal) error {
	return l.notifier.ProposalReady(ctx, cfg, p)
}

func (l *Ledger) notify(ctx context.Context, cfg *Config, p *Proposal, send func(context.Context, *Config, *Proposal) error) {
	if l.notifier == nil {
		return
	}
	if err := send(ctx, cfg.Clone(), p.Clone()); err != nil {
		l.logger.Warn("Failed to notify owners",
			zap.String("proposal_id", p.ID),
			zap.Error(err))
	}
}

func accountKey(account common.Address) string {
	return account.Hex()
}
