package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/audit"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/capability"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/session"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize_ScenarioA_MatchingSwap(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	g := issueSwapGrant(t, f, time.Hour)

	result, err := f.authorizer.Authorize(ctx, g.ID, swapOp(routerA, ether(0.5)), t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, g.Capabilities[0].ID, result.CapabilityID)
	assert.Equal(t, capability.KindContractCall, result.Kind)
	assert.Equal(t, uint64(1), result.UsageCount)

	stored, err := f.store.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stored.UsageCount)
	require.NotNil(t, stored.LastUsedAt)
	assert.Equal(t, t0.Add(time.Minute), *stored.LastUsedAt)

	assert.Len(t, f.recorder.OfType(audit.EventSessionAuthorized), 1)
}

func TestAuthorize_ScenarioB_WrongTarget(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	g := issueSwapGrant(t, f, time.Hour)

	_, err := f.authorizer.Authorize(ctx, g.ID, swapOp(routerB, ether(0.5)), t0.Add(time.Minute))
	require.Error(t, err)
	assert.True(t, errors.Is(err, session.ErrNoMatchingCapability))

	denial, ok := session.AsDenial(err)
	require.True(t, ok)
	assert.Equal(t, g.ID, denial.GrantID)
	assert.Equal(t, routerB, denial.Operation.Target)
	require.Len(t, denial.Capabilities, 1)
	assert.Equal(t, g.Capabilities[0].ID, denial.Capabilities[0].ID)

	stored, err := f.store.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), stored.UsageCount)

	denied := f.recorder.OfType(audit.EventSessionDenied)
	require.Len(t, denied, 1)
	assert.Equal(t, session.ErrNoMatchingCapability.Error(), denied[0].Reason)
}

func TestAuthorize_ScenarioE_ZeroTTL(t *testing.T) {
	f := newFixture()
	g := issueSwapGrant(t, f, 0)

	_, err := f.authorizer.Authorize(context.Background(), g.ID, swapOp(routerA, ether(0.1)), t0)
	assert.True(t, errors.Is(err, session.ErrExpired))
	assert.True(t, errors.Is(err, policy.ErrExpired))
}

func TestAuthorize_UnknownGrant(t *testing.T) {
	f := newFixture()
	_, err := f.authorizer.Authorize(context.Background(), "missing", swapOp(routerA, nil), t0)
	assert.True(t, errors.Is(err, session.ErrGrantNotFound))
}

func TestEvaluate_Checks(t *testing.T) {
	f := newFixture()
	g := issueSwapGrant(t, f, time.Hour)
	now := t0.Add(time.Minute)

	tests := []struct {
		name    string
		grant   func() *session.Grant
		op      capability.Operation
		wantErr error
	}{
		{
			name:  "allowed",
			grant: g.Clone,
			op:    swapOp(routerA, ether(1)),
		},
		{
			name:    "value above cap",
			grant:   g.Clone,
			op:      swapOp(routerA, ether(1.5)),
			wantErr: session.ErrNoMatchingCapability,
		},
		{
			name:  "wrong delegate",
			grant: g.Clone,
			op: func() capability.Operation {
				op := swapOp(routerA, ether(0.5))
				op.ActingAddress = stranger
				return op
			}(),
			wantErr: session.ErrWrongDelegate,
		},
		{
			name: "expired at exact boundary",
			grant: func() *session.Grant {
				c := g.Clone()
				c.ExpiresAt = now
				return c
			},
			op:      swapOp(routerA, ether(0.5)),
			wantErr: session.ErrExpired,
		},
		{
			name: "revoked dominates wrong delegate",
			grant: func() *session.Grant {
				c := g.Clone()
				c.Revoked = true
				c.RevokedAt = &now
				return c
			},
			op: func() capability.Operation {
				op := swapOp(routerB, ether(5))
				op.ActingAddress = stranger
				return op
			}(),
			wantErr: session.ErrExpired,
		},
		{
			name: "native transfer not covered",
			grant: g.Clone,
			op: capability.Operation{
				Target: routerA, Value: ether(0.1), ActingAddress: delegate,
			},
			wantErr: session.ErrNoMatchingCapability,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := session.Evaluate(tt.grant(), tt.op, nil, now)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, g.Capabilities[0].ID, result.CapabilityID)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			_, isDenial := session.AsDenial(err)
			assert.True(t, isDenial)
		})
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	f := newFixture()
	g := issueSwapGrant(t, f, time.Hour)
	now := t0.Add(time.Minute)

	for _, op := range []capability.Operation{swapOp(routerA, ether(0.5)), swapOp(routerB, ether(0.5))} {
		r1, err1 := session.Evaluate(g, op, nil, now)
		r2, err2 := session.Evaluate(g, op, nil, now)
		assert.Equal(t, r1, r2)
		assert.Equal(t, err1, err2)
	}

	assert.Equal(t, uint64(0), g.UsageCount)
}

func TestEvaluate_ExpiryDominatesCapabilities(t *testing.T) {
	f := newFixture()
	g := issueSwapGrant(t, f, time.Hour)
	after := g.ExpiresAt.Add(time.Nanosecond)

	ops := []capability.Operation{
		swapOp(routerA, ether(0.5)),
		swapOp(routerB, ether(10)),
		{Target: routerA, ActingAddress: stranger},
	}
	for _, op := range ops {
		_, err := session.Evaluate(g, op, nil, after)
		assert.True(t, errors.Is(err, session.ErrExpired))
	}
}

func TestEvaluate_AnyCapabilityPermits(t *testing.T) {
	sel := swapSelector
	target := routerB
	caps := []capability.Capability{
		{ID: "native", Kind: capability.KindNativeTransfer, MaxValuePerCall: ether(0.01)},
		{ID: "swap-b", Kind: capability.KindContractCall, Target: &target, Selector: &sel},
	}
	reversed := []capability.Capability{caps[1], caps[0]}

	op := swapOp(routerB, ether(0.5))
	for _, set := range [][]capability.Capability{caps, reversed} {
		g := &session.Grant{
			ID: "g", DelegateAddress: delegate, Capabilities: set,
			IssuedAt: t0, ExpiresAt: t0.Add(time.Hour),
		}
		result, err := session.Evaluate(g, op, nil, t0)
		require.NoError(t, err)
		assert.Equal(t, "swap-b", result.CapabilityID)
	}
}

func TestAuthorize_GasPolicy(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p, err := f.registry.CreatePolicy(ctx, t0, session.CreatePolicyParams{
		Issuer:           issuer,
		Name:             "DeFi Operations",
		MaxGasPerTx:      200000,
		MaxGasPerDay:     400000,
		AllowedContracts: []common.Address{routerA},
	})
	require.NoError(t, err)

	g, err := f.store.Issue(ctx, t0, session.IssueParams{
		Issuer: issuer, Delegate: delegate, TTL: 72 * time.Hour,
		Capabilities: []capability.Capability{swapCapability()},
		GasPolicyID:  &p.ID,
	})
	require.NoError(t, err)

	op := swapOp(routerA, ether(0.1))
	op.EstimatedGas = 150000

	_, err = f.authorizer.Authorize(ctx, g.ID, op, t0.Add(time.Minute))
	require.NoError(t, err)
	_, err = f.authorizer.Authorize(ctx, g.ID, op, t0.Add(2*time.Minute))
	require.NoError(t, err)

	_, err = f.authorizer.Authorize(ctx, g.ID, op, t0.Add(3*time.Minute))
	require.Error(t, err)
	assert.True(t, errors.Is(err, session.ErrGasPolicyExceeded))
	denial, _ := session.AsDenial(err)
	assert.Equal(t, p.ID, denial.PolicyID)

	// The window resets a day after its first use.
	result, err := f.authorizer.Authorize(ctx, g.ID, op, t0.Add(time.Minute+session.GasWindow))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), result.UsageCount)

	heavy := swapOp(routerA, ether(0.1))
	heavy.EstimatedGas = 250000
	_, err = f.authorizer.Authorize(ctx, g.ID, heavy, t0.Add(25*time.Hour))
	assert.True(t, errors.Is(err, session.ErrGasPolicyExceeded))

	_, err = f.registry.SetPolicyActive(ctx, t0.Add(25*time.Hour), p.ID, issuer, false)
	require.NoError(t, err)
	_, err = f.authorizer.Authorize(ctx, g.ID, heavy, t0.Add(25*time.Hour))
	assert.NoError(t, err)
}

func TestAuthorize_ConcurrentUsesAreAllCounted(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	g := issueSwapGrant(t, f, time.Hour)

	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := f.authorizer.Authorize(ctx, g.ID, swapOp(routerA, ether(0.1)), t0.Add(time.Minute))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := f.store.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(workers), stored.UsageCount)
}

func TestAuthorize_RevokedGrantNeverAuthorizes(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	g := issueSwapGrant(t, f, time.Hour)

	_, err := f.store.Revoke(ctx, t0, g.ID, issuer)
	require.NoError(t, err)

	_, err = f.authorizer.Authorize(ctx, g.ID, swapOp(routerA, ether(0.1)), t0.Add(time.Second))
	assert.True(t, errors.Is(err, session.ErrExpired))
}
