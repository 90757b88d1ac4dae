package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/audit"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/capability"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantStore_Issue(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		params  session.IssueParams
		wantErr error
	}{
		{
			name: "valid grant",
			params: session.IssueParams{
				Issuer: issuer, Delegate: delegate,
				Capabilities: []capability.Capability{swapCapability()},
				TTL:          time.Hour,
			},
		},
		{
			name: "empty capability set",
			params: session.IssueParams{
				Issuer: issuer, Delegate: delegate, TTL: time.Hour,
			},
			wantErr: session.ErrEmptyGrant,
		},
		{
			name: "invalid capability",
			params: session.IssueParams{
				Issuer: issuer, Delegate: delegate, TTL: time.Hour,
				Capabilities: []capability.Capability{
					swapCapability(),
					{Kind: capability.KindContractCall},
				},
			},
			wantErr: capability.ErrInvalidCapability,
		},
		{
			name: "negative ttl",
			params: session.IssueParams{
				Issuer: issuer, Delegate: delegate, TTL: -time.Second,
				Capabilities: []capability.Capability{swapCapability()},
			},
			wantErr: session.ErrInvalidTTL,
		},
		{
			name: "missing delegate",
			params: session.IssueParams{
				Issuer: issuer, TTL: time.Hour,
				Capabilities: []capability.Capability{swapCapability()},
			},
			wantErr: policy.ErrInvalidArgument,
		},
		{
			name: "unknown gas policy",
			params: session.IssueParams{
				Issuer: issuer, Delegate: delegate, TTL: time.Hour,
				Capabilities: []capability.Capability{swapCapability()},
				GasPolicyID:  strPtr("missing"),
			},
			wantErr: session.ErrPolicyNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			g, err := f.store.Issue(ctx, t0, tt.params)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, g)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, g.ID)
			assert.Equal(t, t0, g.IssuedAt)
			assert.Equal(t, t0.Add(tt.params.TTL), g.ExpiresAt)
			assert.Equal(t, uint64(0), g.UsageCount)
			assert.False(t, g.Revoked)
			for _, c := range g.Capabilities {
				assert.NotEmpty(t, c.ID)
			}
			assert.Len(t, f.recorder.OfType(audit.EventSessionIssued), 1)
		})
	}
}

func TestGrantStore_IssueCopiesCapabilities(t *testing.T) {
	f := newFixture()
	caps := []capability.Capability{swapCapability()}

	g, err := f.store.Issue(context.Background(), t0, session.IssueParams{
		Issuer: issuer, Delegate: delegate, Capabilities: caps, TTL: time.Hour,
	})
	require.NoError(t, err)

	caps[0].MaxValuePerCall.SetInt64(1)
	stored, err := f.store.Get(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Capabilities[0].MaxValuePerCall.Cmp(ether(1)))
	assert.Empty(t, caps[0].ID)
}

func TestGrantStore_ZeroTTLIsExpiredAtIssuance(t *testing.T) {
	f := newFixture()
	g := issueSwapGrant(t, f, 0)

	assert.Equal(t, g.IssuedAt, g.ExpiresAt)
	assert.True(t, g.IsExpired(t0))

	active, err := f.store.ListActive(context.Background(), issuer, t0)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestGrantStore_Revoke(t *testing.T) {
	ctx := context.Background()

	t.Run("only the issuer may revoke", func(t *testing.T) {
		f := newFixture()
		g := issueSwapGrant(t, f, time.Hour)

		_, err := f.store.Revoke(ctx, t0, g.ID, delegate)
		assert.True(t, errors.Is(err, policy.ErrUnauthorized))

		stored, err := f.store.Get(ctx, g.ID)
		require.NoError(t, err)
		assert.False(t, stored.Revoked)
	})

	t.Run("unknown grant", func(t *testing.T) {
		f := newFixture()
		_, err := f.store.Revoke(ctx, t0, "nope", issuer)
		assert.True(t, errors.Is(err, session.ErrGrantNotFound))
		assert.True(t, errors.Is(err, policy.ErrNotFound))
	})

	t.Run("revoke is idempotent", func(t *testing.T) {
		f := newFixture()
		g := issueSwapGrant(t, f, time.Hour)

		first, err := f.store.Revoke(ctx, t0.Add(time.Minute), g.ID, issuer)
		require.NoError(t, err)
		second, err := f.store.Revoke(ctx, t0.Add(2*time.Minute), g.ID, issuer)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.True(t, second.Revoked)
		assert.Equal(t, t0.Add(time.Minute), *second.RevokedAt)
		assert.Len(t, f.recorder.OfType(audit.EventSessionRevoked), 1)
	})
}

func TestGrantStore_ListActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	issueAt := func(at time.Time, ttl time.Duration) *session.Grant {
		g, err := f.store.Issue(ctx, at, session.IssueParams{
			Issuer: issuer, Delegate: delegate, TTL: ttl,
			Capabilities: []capability.Capability{swapCapability()},
		})
		require.NoError(t, err)
		return g
	}

	later := issueAt(t0.Add(2*time.Minute), time.Hour)
	earlier := issueAt(t0, time.Hour)
	short := issueAt(t0.Add(time.Minute), 5*time.Minute)
	revoked := issueAt(t0.Add(3*time.Minute), time.Hour)
	_, err := f.store.Revoke(ctx, t0.Add(4*time.Minute), revoked.ID, issuer)
	require.NoError(t, err)

	_, err = f.store.Issue(ctx, t0, session.IssueParams{
		Issuer: stranger, Delegate: delegate, TTL: time.Hour,
		Capabilities: []capability.Capability{swapCapability()},
	})
	require.NoError(t, err)

	active, err := f.store.ListActive(ctx, issuer, t0.Add(10*time.Minute))
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, earlier.ID, active[0].ID)
	assert.Equal(t, later.ID, active[1].ID)

	all, err := f.store.ListAll(ctx, issuer)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, short.ID, all[1].ID)
	assert.Equal(t, "expired", all[1].Status(t0.Add(10*time.Minute)))
	assert.Equal(t, "revoked", all[3].Status(t0.Add(10*time.Minute)))
}

func TestGrant_CheckIntegrity(t *testing.T) {
	f := newFixture()
	g := issueSwapGrant(t, f, time.Hour)
	require.NoError(t, g.CheckIntegrity())

	corrupt := g.Clone()
	corrupt.ExpiresAt = corrupt.IssuedAt.Add(-time.Second)
	assert.True(t, errors.Is(corrupt.CheckIntegrity(), policy.ErrCorruptRecord))

	corrupt = g.Clone()
	corrupt.Revoked = true
	assert.True(t, errors.Is(corrupt.CheckIntegrity(), policy.ErrCorruptRecord))

	corrupt = g.Clone()
	corrupt.Capabilities = append(corrupt.Capabilities, corrupt.Capabilities[0])
	assert.True(t, errors.Is(corrupt.CheckIntegrity(), policy.ErrCorruptRecord))

	err := f.grants.UpdateGrant(context.Background(), corrupt)
	assert.True(t, errors.Is(err, policy.ErrCorruptRecord))
}

func strPtr(s string) *string { return &s }
