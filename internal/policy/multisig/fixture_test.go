package multisig_test

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/audit"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/multisig"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitLogger("test")
}

const chainID = 84532

var (
	account   = common.HexToAddress("0x5afe00000000000000000000000000000000cafe")
	recipient = common.HexToAddress("0x00000000000000000000000000000000000000ee")

	t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

type signer struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

func newSigner(t *testing.T) signer {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return signer{key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}
}

type notification struct {
	kind       string
	proposalID string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *fakeNotifier) ProposalCreated(_ context.Context, _ *multisig.Config, p *multisig.Proposal) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{kind: "created", proposalID: p.ID})
	return nil
}

func (n *fakeNotifier) ProposalReady(_ context.Context, _ *multisig.Config, p *multisig.Proposal) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{kind: "ready", proposalID: p.ID})
	return nil
}

func (n *fakeNotifier) of(kind string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var ids []string
	for _, s := range n.sent {
		if s.kind == kind {
			ids = append(ids, s.proposalID)
		}
	}
	return ids
}

type fixture struct {
	ledger   *multisig.Ledger
	repo     *multisig.MemoryRepository
	recorder *audit.Recorder
	notifier *fakeNotifier

	a, b, c signer
}

// newFixture creates an account owned by A (admin), B and C.
func newFixture(t *testing.T, threshold int) *fixture {
	t.Helper()
	repo := multisig.NewMemoryRepository()
	return newFixtureWithRepo(t, threshold, repo, repo)
}

// newFixtureWithRepo builds the ledger on store, which may wrap repo.
func newFixtureWithRepo(t *testing.T, threshold int, repo *multisig.MemoryRepository, store multisig.Repository) *fixture {
	t.Helper()
	f := &fixture{
		repo:     repo,
		recorder: &audit.Recorder{},
		notifier: &fakeNotifier{},
		a:        newSigner(t),
		b:        newSigner(t),
		c:        newSigner(t),
	}
	f.ledger = multisig.NewLedger(store, multisig.ECDSAVerifier{}, f.recorder, f.notifier)

	_, err := f.ledger.InitConfig(context.Background(), t0, multisig.InitConfigParams{
		Account: account,
		ChainID: chainID,
		Owners: []multisig.OwnerParams{
			{Address: f.a.addr, DisplayName: "Alice", IsAdmin: true},
			{Address: f.b.addr, DisplayName: "Bob"},
			{Address: f.c.addr, DisplayName: "Carol"},
		},
		Threshold: threshold,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) proposeTransfer(t *testing.T, proposer signer, at time.Time) *multisig.Proposal {
	t.Helper()
	to := recipient
	p, err := f.ledger.Propose(context.Background(), at, multisig.ProposeParams{
		Account:    account,
		Proposer:   proposer.addr,
		ActionType: multisig.ActionTransfer,
		Title:      "Pay vendor",
		Target:     &to,
		Value:      big.NewInt(1e17),
		Deadline:   at.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) proposeRemove(t *testing.T, proposer signer, owner signer, at time.Time) *multisig.Proposal {
	t.Helper()
	addr := owner.addr
	p, err := f.ledger.Propose(context.Background(), at, multisig.ProposeParams{
		Account:    account,
		Proposer:   proposer.addr,
		ActionType: multisig.ActionRemoveOwner,
		Title:      "Remove owner",
		Owner:      &addr,
		Deadline:   at.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) proposeThreshold(t *testing.T, proposer signer, threshold int, at time.Time) *multisig.Proposal {
	t.Helper()
	p, err := f.ledger.Propose(context.Background(), at, multisig.ProposeParams{
		Account:      account,
		Proposer:     proposer.addr,
		ActionType:   multisig.ActionChangeThreshold,
		Title:        "Change threshold",
		NewThreshold: &threshold,
		Deadline:     at.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	return p
}

func signatureOf(t *testing.T, s signer, p *multisig.Proposal) []byte {
	t.Helper()
	sig, err := multisig.SignDigest(s.key, multisig.Digest(p, chainID))
	require.NoError(t, err)
	return sig
}

func (f *fixture) sign(t *testing.T, s signer, p *multisig.Proposal, at time.Time) (*multisig.Proposal, error) {
	t.Helper()
	return f.ledger.Sign(context.Background(), at, p.ID, s.addr, signatureOf(t, s, p))
}

func (f *fixture) mustSign(t *testing.T, s signer, p *multisig.Proposal, at time.Time) *multisig.Proposal {
	t.Helper()
	updated, err := f.sign(t, s, p, at)
	require.NoError(t, err)
	return updated
}

func (f *fixture) status(t *testing.T, id string, at time.Time) multisig.Status {
	t.Helper()
	ctx := context.Background()
	p, err := f.ledger.Get(ctx, id)
	require.NoError(t, err)
	cfg, err := f.ledger.Config(ctx, account)
	require.NoError(t, err)
	return multisig.StatusOf(p, cfg, at)
}
