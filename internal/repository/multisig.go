package repository

import (
	"context"
	"math/big"

	"github.com/cyphera/cyphera-wallet-policy/internal/db"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/multisig"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/outcome"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// MultisigStore persists multisig configs, owners, proposals and
// signatures in Postgres. Multi-row writes run in one transaction.
type MultisigStore struct {
	queries db.Querier
	tx      db.TxRunner
	logger  *zap.Logger
}

var _ multisig.Repository = (*MultisigStore)(nil)

// NewMultisigStore creates a MultisigStore.
func NewMultisigStore(queries db.Querier, tx db.TxRunner) *MultisigStore {
	return &MultisigStore{
		queries: queries,
		tx:      tx,
		logger:  logger.ForComponent(logger.ComponentDB),
	}
}

func (s *MultisigStore) CreateConfig(ctx context.Context, cfg *multisig.Config) error {
	if err := cfg.CheckIntegrity(); err != nil {
		return err
	}
	chainID, err := int64From(cfg.ChainID)
	if err != nil {
		return err
	}
	count, err := int64From(cfg.ProposalCount)
	if err != nil {
		return err
	}

	err = s.tx.InTx(ctx, func(q db.Querier) error {
		if _, err := q.CreateMultisigConfig(ctx, db.CreateMultisigConfigParams{
			Account:       cfg.Account.Hex(),
			ChainID:       chainID,
			Threshold:     int32(cfg.Threshold),
			ProposalCount: count,
			CreatedAt:     timestamptz(cfg.CreatedAt),
			UpdatedAt:     timestamptz(cfg.UpdatedAt),
		}); err != nil {
			return errors.Wrap(err, "failed to create multisig config")
		}
		return upsertOwners(ctx, q, cfg)
	})
	if err != nil {
		s.logger.Error("Failed to create multisig config",
			zap.String("account", cfg.Account.Hex()),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *MultisigStore) GetConfig(ctx context.Context, account common.Address) (*multisig.Config, error) {
	return getConfig(ctx, s.queries, account)
}

func (s *MultisigStore) UpdateConfig(ctx context.Context, cfg *multisig.Config) error {
	if err := cfg.CheckIntegrity(); err != nil {
		return err
	}
	return s.tx.InTx(ctx, func(q db.Querier) error {
		return updateConfig(ctx, q, cfg)
	})
}

func updateConfig(ctx context.Context, q db.Querier, cfg *multisig.Config) error {
	count, err := int64From(cfg.ProposalCount)
	if err != nil {
		return err
	}
	if _, err := q.UpdateMultisigConfig(ctx, db.UpdateMultisigConfigParams{
		Account:       cfg.Account.Hex(),
		Threshold:     int32(cfg.Threshold),
		ProposalCount: count,
		UpdatedAt:     timestamptz(cfg.UpdatedAt),
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return multisig.ErrConfigNotFound
		}
		return errors.Wrap(err, "failed to update multisig config")
	}
	return upsertOwners(ctx, q, cfg)
}

func upsertOwners(ctx context.Context, q db.Querier, cfg *multisig.Config) error {
	for i, o := range cfg.Owners {
		if _, err := q.UpsertMultisigOwner(ctx, db.UpsertMultisigOwnerParams{
			Account:     cfg.Account.Hex(),
			Address:     o.Address.Hex(),
			Position:    int32(i),
			DisplayName: o.DisplayName,
			Email:       o.Email,
			IsActive:    o.IsActive,
			IsAdmin:     o.IsAdmin,
			AddedAt:     timestamptz(o.AddedAt),
			RemovedAt:   optionalTimestamptz(o.RemovedAt),
		}); err != nil {
			return errors.Wrapf(err, "failed to upsert owner %s", o.Address.Hex())
		}
	}
	return nil
}

func getConfig(ctx context.Context, q db.Querier, account common.Address) (*multisig.Config, error) {
	row, err := q.GetMultisigConfig(ctx, account.Hex())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, multisig.ErrConfigNotFound
		}
		return nil, errors.Wrap(err, "failed to get multisig config")
	}
	owners, err := q.ListMultisigOwners(ctx, row.Account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list multisig owners")
	}
	return configFromRows(row, owners)
}

func configFromRows(row db.MultisigConfig, owners []db.MultisigOwner) (*multisig.Config, error) {
	account, err := address(row.Account)
	if err != nil {
		return nil, err
	}
	chainID, err := uint64From(row.ChainID)
	if err != nil {
		return nil, err
	}
	count, err := uint64From(row.ProposalCount)
	if err != nil {
		return nil, err
	}

	cfg := &multisig.Config{
		Account:       account,
		ChainID:       chainID,
		Owners:        make([]multisig.Owner, 0, len(owners)),
		Threshold:     int(row.Threshold),
		ProposalCount: count,
		CreatedAt:     timeFrom(row.CreatedAt),
		UpdatedAt:     timeFrom(row.UpdatedAt),
	}
	for _, o := range owners {
		addr, err := address(o.Address)
		if err != nil {
			return nil, err
		}
		cfg.Owners = append(cfg.Owners, multisig.Owner{
			Address:     addr,
			DisplayName: o.DisplayName,
			Email:       o.Email,
			IsActive:    o.IsActive,
			IsAdmin:     o.IsAdmin,
			AddedAt:     timeFrom(o.AddedAt),
			RemovedAt:   optionalTimeFrom(o.RemovedAt),
		})
	}
	if err := cfg.CheckIntegrity(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *MultisigStore) CreateProposal(ctx context.Context, p *multisig.Proposal) error {
	if err := p.CheckIntegrity(); err != nil {
		return err
	}
	id, err := parseID(p.ID, errors.Wrapf(policy.ErrInvalidArgument, "invalid proposal id %q", p.ID))
	if err != nil {
		return err
	}
	nonce, err := int64From(p.Nonce)
	if err != nil {
		return err
	}

	err = s.tx.InTx(ctx, func(q db.Querier) error {
		if _, err := q.CreateMultisigProposal(ctx, db.CreateMultisigProposalParams{
			ID:                 id,
			Account:            p.Account.Hex(),
			Nonce:              nonce,
			Title:              p.Title,
			Description:        p.Description,
			ActionType:         string(p.ActionType),
			Target:             p.Target.Hex(),
			ValueWei:           numeric(weiOrZero(p.Value)),
			Data:               p.Data,
			NewOwnerName:       p.NewOwnerName,
			NewOwnerEmail:      p.NewOwnerEmail,
			ProposerAddress:    p.ProposerAddress.Hex(),
			CreatedAt:          timestamptz(p.CreatedAt),
			Deadline:           timestamptz(p.Deadline),
			RequiredSignatures: int32(p.RequiredSignatures),
		}); err != nil {
			return errors.Wrap(err, "failed to create proposal")
		}
		return syncSignatures(ctx, q, id, p.Signatures, nil)
	})
	if err != nil {
		s.logger.Error("Failed to create proposal", zap.String("proposal_id", p.ID), zap.Error(err))
		return err
	}
	return nil
}

func (s *MultisigStore) GetProposal(ctx context.Context, id string) (*multisig.Proposal, error) {
	proposalID, err := parseID(id, multisig.ErrProposalNotFound)
	if err != nil {
		return nil, err
	}

	row, err := s.queries.GetMultisigProposal(ctx, proposalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, multisig.ErrProposalNotFound
		}
		return nil, errors.Wrap(err, "failed to get proposal")
	}
	return s.loadProposal(ctx, row, nil)
}

func (s *MultisigStore) GetProposalByHandle(ctx context.Context, handle outcome.Handle) (*multisig.Proposal, error) {
	if handle == "" {
		return nil, multisig.ErrProposalNotFound
	}

	row, err := s.queries.GetMultisigProposalByHandle(ctx, text(string(handle)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, multisig.ErrProposalNotFound
		}
		return nil, errors.Wrap(err, "failed to get proposal by handle")
	}
	return s.loadProposal(ctx, row, nil)
}

func (s *MultisigStore) UpdateProposal(ctx context.Context, p *multisig.Proposal) error {
	if err := p.CheckIntegrity(); err != nil {
		return err
	}
	return s.tx.InTx(ctx, func(q db.Querier) error {
		return updateProposal(ctx, q, p)
	})
}

// CommitExecution writes the config change, the executed proposal and the
// pruned proposals in one transaction.
func (s *MultisigStore) CommitExecution(ctx context.Context, commit multisig.ExecutionCommit) error {
	if commit.Executed == nil {
		return multisig.ErrProposalNotFound
	}
	writes := append([]*multisig.Proposal{commit.Executed}, commit.Pruned...)
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

	err := s.tx.InTx(ctx, func(q db.Querier) error {
		if commit.Config != nil {
			if err := updateConfig(ctx, q, commit.Config); err != nil {
				return err
			}
		}
		for _, p := range writes {
			if err := updateProposal(ctx, q, p); err != nil {
				return errors.Wrapf(err, "proposal %s", p.ID)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to commit proposal execution",
			zap.String("proposal_id", commit.Executed.ID),
			zap.Int("pruned", len(commit.Pruned)),
			zap.Error(err))
		return err
	}
	return nil
}

func updateProposal(ctx context.Context, q db.Querier, p *multisig.Proposal) error {
	id, err := parseID(p.ID, multisig.ErrProposalNotFound)
	if err != nil {
		return err
	}

	params := db.UpdateMultisigProposalParams{
		ID:          id,
		Executed:    p.Executed,
		ExecutedAt:  optionalTimestamptz(p.ExecutedAt),
		Cancelled:   p.Cancelled,
		CancelledAt: optionalTimestamptz(p.CancelledAt),
	}
	if p.CancelledBy != nil {
		params.CancelledBy = pgtype.Text{String: p.CancelledBy.Hex(), Valid: true}
	}
	if r := p.Receipt; r != nil {
		gasUsed, err := int64From(r.Outcome.GasUsed)
		if err != nil {
			return err
		}
		params.ReceiptHandle = text(string(r.Handle))
		params.ReceiptStatus = text(string(r.Outcome.Status))
		params.ReceiptTxHash = hashText(r.Outcome.TxHash)
		params.ReceiptReason = r.Outcome.Reason
		params.ReceiptGasUsed = gasUsed
		params.ReceiptRecordedAt = timestamptz(r.Outcome.RecordedAt)
	}

	if _, err := q.UpdateMultisigProposal(ctx, params); err != nil {
		// No row comes back for unknown ids and for attempts to
		// reopen a closed proposal.
		if errors.Is(err, pgx.ErrNoRows) {
			return multisig.ErrProposalNotFound
		}
		return errors.Wrap(err, "failed to update proposal")
	}

	existing, err := q.ListProposalSignatures(ctx, id)
	if err != nil {
		return errors.Wrap(err, "failed to list proposal signatures")
	}
	return syncSignatures(ctx, q, id, p.Signatures, existing)
}

// syncSignatures makes the stored signature set equal to want.
func syncSignatures(ctx context.Context, q db.Querier, id uuid.UUID, want []multisig.Signature, existing []db.ProposalSignature) error {
	keep := make(map[string]struct{}, len(want))
	for _, sig := range want {
		keep[sig.Signer.Hex()] = struct{}{}
	}
	stored := make(map[string]struct{}, len(existing))
	for _, row := range existing {
		stored[row.Signer] = struct{}{}
		if _, ok := keep[row.Signer]; ok {
			continue
		}
		if err := q.DeleteProposalSignature(ctx, db.DeleteProposalSignatureParams{
			ProposalID: id,
			Signer:     row.Signer,
		}); err != nil {
			return errors.Wrapf(err, "failed to delete signature of %s", row.Signer)
		}
	}

	for _, sig := range want {
		if _, ok := stored[sig.Signer.Hex()]; ok {
			continue
		}
		if err := q.CreateProposalSignature(ctx, db.CreateProposalSignatureParams{
			ProposalID: id,
			Signer:     sig.Signer.Hex(),
			Signature:  sig.Bytes,
			SignedAt:   timestamptz(sig.SignedAt),
		}); err != nil {
			return errors.Wrapf(err, "failed to store signature of %s", sig.Signer.Hex())
		}
	}
	return nil
}

func (s *MultisigStore) ListProposalsByAccount(ctx context.Context, account common.Address) ([]*multisig.Proposal, error) {
	rows, err := s.queries.ListMultisigProposalsByAccount(ctx, account.Hex())
	if err != nil {
		return nil, errors.Wrap(err, "failed to list proposals")
	}

	var chainID *uint64
	out := make([]*multisig.Proposal, 0, len(rows))
	for _, row := range rows {
		if row.Executed && chainID == nil {
			cfg, err := getConfig(ctx, s.queries, account)
			if err != nil {
				return nil, err
			}
			chainID = &cfg.ChainID
		}
		p, err := s.loadProposal(ctx, row, chainID)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// loadProposal attaches signatures and, for executed proposals, rebuilds
// the receipt. chainID is looked up when not supplied.
func (s *MultisigStore) loadProposal(ctx context.Context, row db.MultisigProposal, chainID *uint64) (*multisig.Proposal, error) {
	sigs, err := s.queries.ListProposalSignatures(ctx, row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list proposal signatures")
	}

	p, err := proposalFromRow(row, sigs)
	if err != nil {
		return nil, err
	}

	if p.Executed {
		if chainID == nil {
			cfg, err := getConfig(ctx, s.queries, p.Account)
			if err != nil {
				return nil, err
			}
			chainID = &cfg.ChainID
		}
		if p.Receipt, err = receiptFromRow(p, row, *chainID); err != nil {
			return nil, err
		}
	}

	if err := p.CheckIntegrity(); err != nil {
		return nil, err
	}
	return p, nil
}

func proposalFromRow(row db.MultisigProposal, sigs []db.ProposalSignature) (*multisig.Proposal, error) {
	account, err := address(row.Account)
	if err != nil {
		return nil, err
	}
	target, err := address(row.Target)
	if err != nil {
		return nil, err
	}
	proposer, err := address(row.ProposerAddress)
	if err != nil {
		return nil, err
	}
	cancelledBy, err := optionalAddress(row.CancelledBy)
	if err != nil {
		return nil, err
	}
	nonce, err := uint64From(row.Nonce)
	if err != nil {
		return nil, err
	}
	value, err := bigIntFrom(row.ValueWei)
	if err != nil {
		return nil, err
	}
	action, err := multisig.ParseActionType(row.ActionType)
	if err != nil {
		return nil, errors.Wrapf(policy.ErrCorruptRecord, "proposal %s: %v", row.ID, err)
	}

	p := &multisig.Proposal{
		ID:                 row.ID.String(),
		Account:            account,
		Nonce:              nonce,
		Title:              row.Title,
		Description:        row.Description,
		ActionType:         action,
		Target:             target,
		Value:              value,
		Data:               row.Data,
		NewOwnerName:       row.NewOwnerName,
		NewOwnerEmail:      row.NewOwnerEmail,
		ProposerAddress:    proposer,
		CreatedAt:          timeFrom(row.CreatedAt),
		Deadline:           timeFrom(row.Deadline),
		RequiredSignatures: int(row.RequiredSignatures),
		Executed:           row.Executed,
		ExecutedAt:         optionalTimeFrom(row.ExecutedAt),
		Cancelled:          row.Cancelled,
		CancelledAt:        optionalTimeFrom(row.CancelledAt),
		CancelledBy:        cancelledBy,
		Signatures:         make([]multisig.Signature, 0, len(sigs)),
	}
	for _, sig := range sigs {
		signer, err := address(sig.Signer)
		if err != nil {
			return nil, err
		}
		p.Signatures = append(p.Signatures, multisig.Signature{
			Signer:   signer,
			Bytes:    sig.Signature,
			SignedAt: timeFrom(sig.SignedAt),
		})
	}
	return p, nil
}

func receiptFromRow(p *multisig.Proposal, row db.MultisigProposal, chainID uint64) (*multisig.Receipt, error) {
	if p.ExecutedAt == nil {
		return nil, errors.Wrapf(policy.ErrCorruptRecord, "proposal %s: executed without executed_at", p.ID)
	}

	status := outcome.StatusPending
	if row.ReceiptStatus.Valid {
		parsed, err := outcome.ParseStatus(row.ReceiptStatus.String)
		if err != nil {
			return nil, errors.Wrapf(policy.ErrCorruptRecord, "proposal %s: %v", p.ID, err)
		}
		status = parsed
	}
	gasUsed, err := uint64From(row.ReceiptGasUsed)
	if err != nil {
		return nil, err
	}

	recordedAt := *p.ExecutedAt
	if row.ReceiptRecordedAt.Valid {
		recordedAt = timeFrom(row.ReceiptRecordedAt)
	}

	r := &multisig.Receipt{
		ProposalID: p.ID,
		Account:    p.Account,
		ChainID:    chainID,
		Target:     p.Target,
		Data:       append([]byte(nil), p.Data...),
		ExecutedAt: *p.ExecutedAt,
		Handle:     outcome.Handle(textFrom(row.ReceiptHandle)),
		Outcome: outcome.Outcome{
			Status:     status,
			TxHash:     optionalHash(row.ReceiptTxHash),
			Reason:     row.ReceiptReason,
			GasUsed:    gasUsed,
			RecordedAt: recordedAt,
		},
	}
	if p.Value != nil {
		r.Value = new(big.Int).Set(p.Value)
	}
	return r, nil
}

func weiOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
