package repository_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/db"
	"github.com/cyphera/cyphera-wallet-policy/internal/mocks"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/multisig"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/outcome"
	"github.com/cyphera/cyphera-wallet-policy/internal/repository"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// directTx runs the unit of work against the same querier without a
// real transaction.
type directTx struct {
	q     db.Querier
	calls int
}

func (d *directTx) InTx(_ context.Context, fn func(db.Querier) error) error {
	d.calls++
	return fn(d.q)
}

var (
	account = common.HexToAddress("0x5afe00000000000000000000000000000000cafe")
	ownerA  = common.HexToAddress("0xA000000000000000000000000000000000000001")
	ownerB  = common.HexToAddress("0xB000000000000000000000000000000000000002")
	ownerC  = common.HexToAddress("0xC000000000000000000000000000000000000003")
)

func newMultisigStore(t *testing.T) (*repository.MultisigStore, *mocks.MockQuerier, *directTx) {
	ctrl := gomock.NewController(t)
	mockQuerier := mocks.NewMockQuerier(ctrl)
	tx := &directTx{q: mockQuerier}
	return repository.NewMultisigStore(mockQuerier, tx), mockQuerier, tx
}

func configRows() (db.MultisigConfig, []db.MultisigOwner) {
	cfg := db.MultisigConfig{
		Account:       account.Hex(),
		ChainID:       84532,
		Threshold:     2,
		ProposalCount: 4,
		CreatedAt:     ts(t0),
		UpdatedAt:     ts(t0),
	}
	owners := []db.MultisigOwner{
		{Account: account.Hex(), Address: ownerA.Hex(), Position: 0, DisplayName: "Alice", IsActive: true, IsAdmin: true, AddedAt: ts(t0)},
		{Account: account.Hex(), Address: ownerB.Hex(), Position: 1, DisplayName: "Bob", IsActive: true, AddedAt: ts(t0)},
		{Account: account.Hex(), Address: ownerC.Hex(), Position: 2, DisplayName: "Carol", IsActive: false, AddedAt: ts(t0), RemovedAt: ts(t0.Add(time.Hour))},
	}
	return cfg, owners
}

func TestMultisigStore_GetConfig(t *testing.T) {
	store, mockQuerier, _ := newMultisigStore(t)

	cfgRow, owners := configRows()
	mockQuerier.EXPECT().GetMultisigConfig(gomock.Any(), account.Hex()).Return(cfgRow, nil)
	mockQuerier.EXPECT().ListMultisigOwners(gomock.Any(), account.Hex()).Return(owners, nil)

	cfg, err := store.GetConfig(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, uint64(84532), cfg.ChainID)
	assert.Equal(t, 2, cfg.Threshold)
	assert.Equal(t, 2, cfg.ActiveOwnerCount())
	assert.True(t, cfg.IsAdmin(ownerA))
	assert.False(t, cfg.IsActiveOwner(ownerC))
	require.Len(t, cfg.Owners, 3)
	assert.Equal(t, "Carol", cfg.Owners[2].DisplayName)
}

func TestMultisigStore_GetConfig_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		store, mockQuerier, _ := newMultisigStore(t)
		mockQuerier.EXPECT().GetMultisigConfig(gomock.Any(), gomock.Any()).Return(db.MultisigConfig{}, pgx.ErrNoRows)

		_, err := store.GetConfig(context.Background(), account)
		assert.ErrorIs(t, err, multisig.ErrConfigNotFound)
	})

	t.Run("threshold above active owners", func(t *testing.T) {
		store, mockQuerier, _ := newMultisigStore(t)
		cfgRow, owners := configRows()
		cfgRow.Threshold = 3
		mockQuerier.EXPECT().GetMultisigConfig(gomock.Any(), gomock.Any()).Return(cfgRow, nil)
		mockQuerier.EXPECT().ListMultisigOwners(gomock.Any(), gomock.Any()).Return(owners, nil)

		_, err := store.GetConfig(context.Background(), account)
		assert.ErrorIs(t, err, policy.ErrCorruptRecord)
	})
}

func TestMultisigStore_UpdateConfig(t *testing.T) {
	store, mockQuerier, tx := newMultisigStore(t)

	removed := t0.Add(time.Hour)
	cfg := &multisig.Config{
		Account:       account,
		ChainID:       84532,
		Threshold:     1,
		ProposalCount: 5,
		Owners: []multisig.Owner{
			{Address: ownerA, IsActive: true, IsAdmin: true, AddedAt: t0},
			{Address: ownerB, IsActive: false, AddedAt: t0, RemovedAt: &removed},
		},
		CreatedAt: t0,
		UpdatedAt: removed,
	}

	gomock.InOrder(
		mockQuerier.EXPECT().
			UpdateMultisigConfig(gomock.Any(), db.UpdateMultisigConfigParams{
				Account:       account.Hex(),
				Threshold:     1,
				ProposalCount: 5,
				UpdatedAt:     ts(removed),
			}).
			Return(db.MultisigConfig{}, nil),
		mockQuerier.EXPECT().
			UpsertMultisigOwner(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, arg db.UpsertMultisigOwnerParams) (db.MultisigOwner, error) {
				assert.Equal(t, ownerA.Hex(), arg.Address)
				assert.Equal(t, int32(0), arg.Position)
				return db.MultisigOwner{}, nil
			}),
		mockQuerier.EXPECT().
			UpsertMultisigOwner(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, arg db.UpsertMultisigOwnerParams) (db.MultisigOwner, error) {
				assert.Equal(t, ownerB.Hex(), arg.Address)
				assert.False(t, arg.IsActive)
				assert.True(t, arg.RemovedAt.Valid)
				return db.MultisigOwner{}, nil
			}),
	)

	require.NoError(t, store.UpdateConfig(context.Background(), cfg))
	assert.Equal(t, 1, tx.calls)
}

func proposalRow(id uuid.UUID) db.MultisigProposal {
	return db.MultisigProposal{
		ID:                 id,
		Account:            account.Hex(),
		Nonce:              3,
		Title:              "Pay vendor",
		ActionType:         string(multisig.ActionTransfer),
		Target:             ownerC.Hex(),
		ValueWei:           pgtype.Numeric{Int: big.NewInt(1), Exp: 17, Valid: true},
		ProposerAddress:    ownerA.Hex(),
		CreatedAt:          ts(t0),
		Deadline:           ts(t0.Add(24 * time.Hour)),
		RequiredSignatures: 2,
	}
}

func TestMultisigStore_GetProposal(t *testing.T) {
	t.Run("open proposal with signatures", func(t *testing.T) {
		store, mockQuerier, _ := newMultisigStore(t)
		id := uuid.New()

		mockQuerier.EXPECT().GetMultisigProposal(gomock.Any(), id).Return(proposalRow(id), nil)
		mockQuerier.EXPECT().ListProposalSignatures(gomock.Any(), id).Return([]db.ProposalSignature{
			{ProposalID: id, Signer: ownerA.Hex(), Signature: []byte{1}, SignedAt: ts(t0)},
			{ProposalID: id, Signer: ownerB.Hex(), Signature: []byte{2}, SignedAt: ts(t0.Add(time.Minute))},
		}, nil)

		p, err := store.GetProposal(context.Background(), id.String())
		require.NoError(t, err)
		assert.Equal(t, []common.Address{ownerA, ownerB}, p.Signers())
		assert.Equal(t, "100000000000000000", p.Value.String())
		assert.Equal(t, multisig.ActionTransfer, p.ActionType)
		assert.Nil(t, p.Receipt)
	})

	t.Run("executed proposal rebuilds receipt", func(t *testing.T) {
		store, mockQuerier, _ := newMultisigStore(t)
		id := uuid.New()
		row := proposalRow(id)
		row.Executed = true
		row.ExecutedAt = ts(t0.Add(time.Hour))
		row.ReceiptHandle = pgtype.Text{String: "0xbatch", Valid: true}
		row.ReceiptStatus = pgtype.Text{String: "pending", Valid: true}
		row.ReceiptRecordedAt = ts(t0.Add(time.Hour))

		cfgRow, owners := configRows()
		mockQuerier.EXPECT().GetMultisigProposal(gomock.Any(), id).Return(row, nil)
		mockQuerier.EXPECT().ListProposalSignatures(gomock.Any(), id).Return(nil, nil)
		mockQuerier.EXPECT().GetMultisigConfig(gomock.Any(), account.Hex()).Return(cfgRow, nil)
		mockQuerier.EXPECT().ListMultisigOwners(gomock.Any(), account.Hex()).Return(owners, nil)

		p, err := store.GetProposal(context.Background(), id.String())
		require.NoError(t, err)
		require.NotNil(t, p.Receipt)
		assert.Equal(t, uint64(84532), p.Receipt.ChainID)
		assert.Equal(t, outcome.Handle("0xbatch"), p.Receipt.Handle)
		assert.Equal(t, outcome.StatusPending, p.Receipt.Outcome.Status)
		assert.Equal(t, ownerC, p.Receipt.Target)
	})

	t.Run("executed and cancelled", func(t *testing.T) {
		store, mockQuerier, _ := newMultisigStore(t)
		id := uuid.New()
		row := proposalRow(id)
		row.Executed = true
		row.ExecutedAt = ts(t0)
		row.Cancelled = true
		row.CancelledAt = ts(t0)

		cfgRow, owners := configRows()
		mockQuerier.EXPECT().GetMultisigProposal(gomock.Any(), id).Return(row, nil)
		mockQuerier.EXPECT().ListProposalSignatures(gomock.Any(), id).Return(nil, nil)
		mockQuerier.EXPECT().GetMultisigConfig(gomock.Any(), gomock.Any()).Return(cfgRow, nil)
		mockQuerier.EXPECT().ListMultisigOwners(gomock.Any(), gomock.Any()).Return(owners, nil)

		_, err := store.GetProposal(context.Background(), id.String())
		assert.ErrorIs(t, err, policy.ErrCorruptRecord)
	})

	t.Run("duplicate signer", func(t *testing.T) {
		store, mockQuerier, _ := newMultisigStore(t)
		id := uuid.New()

		mockQuerier.EXPECT().GetMultisigProposal(gomock.Any(), id).Return(proposalRow(id), nil)
		mockQuerier.EXPECT().ListProposalSignatures(gomock.Any(), id).Return([]db.ProposalSignature{
			{ProposalID: id, Signer: ownerA.Hex(), SignedAt: ts(t0)},
			{ProposalID: id, Signer: ownerA.Hex(), SignedAt: ts(t0)},
		}, nil)

		_, err := store.GetProposal(context.Background(), id.String())
		assert.ErrorIs(t, err, policy.ErrCorruptRecord)
	})

	t.Run("unknown", func(t *testing.T) {
		store, mockQuerier, _ := newMultisigStore(t)
		mockQuerier.EXPECT().GetMultisigProposal(gomock.Any(), gomock.Any()).Return(db.MultisigProposal{}, pgx.ErrNoRows)

		_, err := store.GetProposal(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, multisig.ErrProposalNotFound)
	})
}

func TestMultisigStore_UpdateProposal_SyncsSignatures(t *testing.T) {
	store, mockQuerier, tx := newMultisigStore(t)
	id := uuid.New()

	p := &multisig.Proposal{
		ID:                 id.String(),
		Account:            account,
		ActionType:         multisig.ActionTransfer,
		Target:             ownerC,
		Value:              big.NewInt(1),
		ProposerAddress:    ownerA,
		CreatedAt:          t0,
		Deadline:           t0.Add(24 * time.Hour),
		RequiredSignatures: 2,
		Signatures: []multisig.Signature{
			{Signer: ownerA, Bytes: []byte{1}, SignedAt: t0},
			{Signer: ownerC, Bytes: []byte{3}, SignedAt: t0.Add(time.Minute)},
		},
	}

	mockQuerier.EXPECT().UpdateMultisigProposal(gomock.Any(), gomock.Any()).Return(db.MultisigProposal{}, nil)
	mockQuerier.EXPECT().ListProposalSignatures(gomock.Any(), id).Return([]db.ProposalSignature{
		{ProposalID: id, Signer: ownerA.Hex()},
		{ProposalID: id, Signer: ownerB.Hex()},
	}, nil)
	mockQuerier.EXPECT().
		DeleteProposalSignature(gomock.Any(), db.DeleteProposalSignatureParams{ProposalID: id, Signer: ownerB.Hex()}).
		Return(nil)
	mockQuerier.EXPECT().
		CreateProposalSignature(gomock.Any(), db.CreateProposalSignatureParams{
			ProposalID: id,
			Signer:     ownerC.Hex(),
			Signature:  []byte{3},
			SignedAt:   ts(t0.Add(time.Minute)),
		}).
		Return(nil)

	require.NoError(t, store.UpdateProposal(context.Background(), p))
	assert.Equal(t, 1, tx.calls)
}

func TestMultisigStore_UpdateProposal_Receipt(t *testing.T) {
	store, mockQuerier, _ := newMultisigStore(t)
	id := uuid.New()
	executedAt := t0.Add(time.Hour)
	txHash := common.HexToHash("0xabc")

	p := &multisig.Proposal{
		ID:                 id.String(),
		Account:            account,
		ActionType:         multisig.ActionTransfer,
		Target:             ownerC,
		Value:              big.NewInt(1),
		ProposerAddress:    ownerA,
		CreatedAt:          t0,
		Deadline:           t0.Add(24 * time.Hour),
		RequiredSignatures: 1,
		Executed:           true,
		ExecutedAt:         &executedAt,
		Receipt: &multisig.Receipt{
			ProposalID: id.String(),
			Handle:     "0xbatch",
			Outcome:    outcome.Succeeded(executedAt.Add(time.Minute), txHash, 21000),
		},
	}

	mockQuerier.EXPECT().
		UpdateMultisigProposal(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg db.UpdateMultisigProposalParams) (db.MultisigProposal, error) {
			assert.True(t, arg.Executed)
			assert.Equal(t, pgtype.Text{String: "0xbatch", Valid: true}, arg.ReceiptHandle)
			assert.Equal(t, pgtype.Text{String: "success", Valid: true}, arg.ReceiptStatus)
			assert.Equal(t, pgtype.Text{String: txHash.Hex(), Valid: true}, arg.ReceiptTxHash)
			assert.Equal(t, int64(21000), arg.ReceiptGasUsed)
			return db.MultisigProposal{}, nil
		})
	mockQuerier.EXPECT().ListProposalSignatures(gomock.Any(), id).Return(nil, nil)

	require.NoError(t, store.UpdateProposal(context.Background(), p))
}

func TestMultisigStore_CommitExecution(t *testing.T) {
	executedAt := t0.Add(time.Hour)
	removedAt := executedAt

	cfg := &multisig.Config{
		Account:       account,
		ChainID:       84532,
		Threshold:     1,
		ProposalCount: 2,
		Owners: []multisig.Owner{
			{Address: ownerA, IsActive: true, IsAdmin: true, AddedAt: t0},
			{Address: ownerB, IsActive: false, AddedAt: t0, RemovedAt: &removedAt},
		},
		CreatedAt: t0,
		UpdatedAt: executedAt,
	}
	newProposal := func(id uuid.UUID) *multisig.Proposal {
		return &multisig.Proposal{
			ID:                 id.String(),
			Account:            account,
			ActionType:         multisig.ActionTransfer,
			Target:             ownerC,
			Value:              big.NewInt(1),
			ProposerAddress:    ownerA,
			CreatedAt:          t0,
			Deadline:           t0.Add(24 * time.Hour),
			RequiredSignatures: 1,
		}
	}
	executedID, prunedID := uuid.New(), uuid.New()
	executed := newProposal(executedID)
	executed.Executed = true
	executed.ExecutedAt = &executedAt
	executed.Receipt = &multisig.Receipt{
		ProposalID: executedID.String(),
		Outcome:    outcome.Pending(executedAt),
	}
	pruned := newProposal(prunedID)

	t.Run("one transaction", func(t *testing.T) {
		store, mockQuerier, tx := newMultisigStore(t)

		gomock.InOrder(
			mockQuerier.EXPECT().UpdateMultisigConfig(gomock.Any(), gomock.Any()).Return(db.MultisigConfig{}, nil),
			mockQuerier.EXPECT().UpsertMultisigOwner(gomock.Any(), gomock.Any()).Return(db.MultisigOwner{}, nil).Times(2),
			mockQuerier.EXPECT().
				UpdateMultisigProposal(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, arg db.UpdateMultisigProposalParams) (db.MultisigProposal, error) {
					assert.Equal(t, executedID, arg.ID)
					assert.True(t, arg.Executed)
					return db.MultisigProposal{}, nil
				}),
			mockQuerier.EXPECT().ListProposalSignatures(gomock.Any(), executedID).Return(nil, nil),
			mockQuerier.EXPECT().
				UpdateMultisigProposal(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, arg db.UpdateMultisigProposalParams) (db.MultisigProposal, error) {
					assert.Equal(t, prunedID, arg.ID)
					assert.False(t, arg.Executed)
					return db.MultisigProposal{}, nil
				}),
			mockQuerier.EXPECT().ListProposalSignatures(gomock.Any(), prunedID).Return([]db.ProposalSignature{
				{ProposalID: prunedID, Signer: ownerB.Hex()},
			}, nil),
			mockQuerier.EXPECT().
				DeleteProposalSignature(gomock.Any(), db.DeleteProposalSignatureParams{ProposalID: prunedID, Signer: ownerB.Hex()}).
				Return(nil),
		)

		err := store.CommitExecution(context.Background(), multisig.ExecutionCommit{
			Config:   cfg,
			Executed: executed,
			Pruned:   []*multisig.Proposal{pruned},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, tx.calls)
	})

	t.Run("proposal write fails", func(t *testing.T) {
		store, mockQuerier, tx := newMultisigStore(t)

		mockQuerier.EXPECT().UpdateMultisigConfig(gomock.Any(), gomock.Any()).Return(db.MultisigConfig{}, nil)
		mockQuerier.EXPECT().UpsertMultisigOwner(gomock.Any(), gomock.Any()).Return(db.MultisigOwner{}, nil).Times(2)
		mockQuerier.EXPECT().UpdateMultisigProposal(gomock.Any(), gomock.Any()).Return(db.MultisigProposal{}, pgx.ErrNoRows)

		err := store.CommitExecution(context.Background(), multisig.ExecutionCommit{
			Config:   cfg,
			Executed: executed,
		})
		assert.ErrorIs(t, err, multisig.ErrProposalNotFound)
		assert.Equal(t, 1, tx.calls)
	})

	t.Run("corrupt record writes nothing", func(t *testing.T) {
		store, _, tx := newMultisigStore(t)
		bad := newProposal(uuid.New())
		bad.Cancelled = true
		bad.Executed = true

		err := store.CommitExecution(context.Background(), multisig.ExecutionCommit{Executed: bad})
		assert.ErrorIs(t, err, policy.ErrCorruptRecord)
		assert.Equal(t, 0, tx.calls)
	})
}

func TestMultisigStore_ListProposalsByAccount(t *testing.T) {
	store, mockQuerier, _ := newMultisigStore(t)
	open, executed := uuid.New(), uuid.New()

	executedRow := proposalRow(executed)
	executedRow.Nonce = 4
	executedRow.Executed = true
	executedRow.ExecutedAt = ts(t0.Add(time.Hour))

	cfgRow, owners := configRows()
	mockQuerier.EXPECT().
		ListMultisigProposalsByAccount(gomock.Any(), account.Hex()).
		Return([]db.MultisigProposal{proposalRow(open), executedRow}, nil)
	mockQuerier.EXPECT().ListProposalSignatures(gomock.Any(), open).Return(nil, nil)
	mockQuerier.EXPECT().ListProposalSignatures(gomock.Any(), executed).Return(nil, nil)
	// The config is loaded once for all executed proposals.
	mockQuerier.EXPECT().GetMultisigConfig(gomock.Any(), account.Hex()).Return(cfgRow, nil).Times(1)
	mockQuerier.EXPECT().ListMultisigOwners(gomock.Any(), account.Hex()).Return(owners, nil).Times(1)

	proposals, err := store.ListProposalsByAccount(context.Background(), account)
	require.NoError(t, err)
	require.Len(t, proposals, 2)
	assert.Nil(t, proposals[0].Receipt)
	require.NotNil(t, proposals[1].Receipt)
	assert.Equal(t, outcome.StatusPending, proposals[1].Receipt.Outcome.Status)
}
