package session

import (
	"fmt"
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/policy"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/capability"
	"github.com/ethereum/go-ethereum/common"
)

// GasWindow is the length of the rolling gas budget window.
const GasWindow = 24 * time.Hour

// Grant is a delegated signing permission.
type Grant struct {
	ID          string
	Name        string
	Description string

	IssuerAddress   common.Address
	DelegateAddress common.Address

	// Capabilities are evaluated with "any capability permits" semantics.
	Capabilities []capability.Capability

	IssuedAt  time.Time
	ExpiresAt time.Time

	Revoked   bool
	RevokedAt *time.Time

	UsageCount uint64
	LastUsedAt *time.Time

	GasPolicyID     *string
	GasUsedInWindow uint64
	GasWindowStart  *time.Time
}

// IsExpired reports whether the grant's window has closed. The issuance
// instant itself counts as expired for a zero ttl.
func (g *Grant) IsExpired(now time.Time) bool {
	return !g.ExpiresAt.After(now)
}

// IsActive reports whether the grant can still authorize operations.
func (g *Grant) IsActive(now time.Time) bool {
	return !g.Revoked && !g.IsExpired(now)
}

// Status is the display state of a grant.
func (g *Grant) Status(now time.Time) string {
	switch {
	case g.Revoked:
		return "revoked"
	case g.IsExpired(now):
		return "expired"
	}
	return "active"
}

func (g *Grant) gasWindowOpen(now time.Time) bool {
	return g.GasWindowStart != nil && now.Before(g.GasWindowStart.Add(GasWindow))
}

// gasUsedAt returns the gas consumed in the window containing now.
func (g *Grant) gasUsedAt(now time.Time) uint64 {
	if !g.gasWindowOpen(now) {
		return 0
	}
	return g.GasUsedInWindow
}

// Clone returns a deep copy.
func (g *Grant) Clone() *Grant {
	out := *g
	out.Capabilities = capability.CloneAll(g.Capabilities)
	out.RevokedAt = cloneTime(g.RevokedAt)
	out.LastUsedAt = cloneTime(g.LastUsedAt)
	out.GasWindowStart = cloneTime(g.GasWindowStart)
	if g.GasPolicyID != nil {
		id := *g.GasPolicyID
		out.GasPolicyID = &id
	}
	return &out
}

// CheckIntegrity rejects records that violate the grant invariants. It is
// applied whenever a grant crosses the storage boundary.
func (g *Grant) CheckIntegrity() error {
	corrupt := func(reason string) error {
		return fmt.Errorf("%w: grant %s: %s", policy.ErrCorruptRecord, g.ID, reason)
	}

	if g.ID == "" {
		return corrupt("missing id")
	}
	if g.ExpiresAt.Before(g.IssuedAt) {
		return corrupt("expires_at before issued_at")
	}
	if len(g.Capabilities) == 0 {
		return corrupt("no capabilities")
	}
	if g.Revoked != (g.RevokedAt != nil) {
		return corrupt("revoked flag and revoked_at disagree")
	}
	if g.UsageCount > 0 && g.LastUsedAt == nil {
		return corrupt("usage recorded without last_used_at")
	}

	seen := make(map[string]struct{}, len(g.Capabilities))
	for _, c := range g.Capabilities {
		if _, dup := seen[c.ID]; dup || c.ID == "" {
			return corrupt("missing or duplicate capability id")
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
