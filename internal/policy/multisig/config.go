package multisig

import (
	"fmt"
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/policy"
	"github.com/ethereum/go-ethereum/common"
)

// Owner is a member of a multisig account.
type Owner struct {
	Address     common.Address
	DisplayName string
	Email       string

	IsActive bool

	// IsAdmin grants the right to cancel other owners' proposals.
	IsAdmin bool

	AddedAt   time.Time
	RemovedAt *time.Time
}

// Config is the membership and threshold of a multisig account.
type Config struct {
	Account common.Address
	ChainID uint64

	// Owners keeps removed owners, marked inactive, in insertion order.
	Owners    []Owner
	Threshold int

	ProposalCount uint64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Owner looks up an owner record, active or not.
func (c *Config) Owner(addr common.Address) (*Owner, bool) {
	for i := range c.Owners {
		if c.Owners[i].Address == addr {
			return &c.Owners[i], true
		}
	}
	return nil, false
}

// IsActiveOwner reports whether addr is a current owner.
func (c *Config) IsActiveOwner(addr common.Address) bool {
	o, ok := c.Owner(addr)
	return ok && o.IsActive
}

// IsAdmin reports whether addr is an active owner with administrative rank.
func (c *Config) IsAdmin(addr common.Address) bool {
	o, ok := c.Owner(addr)
	return ok && o.IsActive && o.IsAdmin
}

// ActiveOwners returns the current owners in insertion order.
func (c *Config) ActiveOwners() []Owner {
	out := make([]Owner, 0, len(c.Owners))
	for _, o := range c.Owners {
		if o.IsActive {
			out = append(out, o)
		}
	}
	return out
}

// ActiveOwnerCount returns the number of current owners.
func (c *Config) ActiveOwnerCount() int {
	n := 0
	for _, o := range c.Owners {
		if o.IsActive {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Owners = make([]Owner, len(c.Owners))
	for i, o := range c.Owners {
		out.Owners[i] = o
		if o.RemovedAt != nil {
			t := *o.RemovedAt
			out.Owners[i].RemovedAt = &t
		}
	}
	return &out
}

// CheckIntegrity rejects configs that violate the threshold invariant or
// list an owner twice.
func (c *Config) CheckIntegrity() error {
	corrupt := func(reason string) error {
		return fmt.Errorf("%w: multisig %s: %s", policy.ErrCorruptRecord, c.Account.Hex(), reason)
	}

	seen := make(map[common.Address]struct{}, len(c.Owners))
	for _, o := range c.Owners {
		if _, dup := seen[o.Address]; dup {
			return corrupt("duplicate owner " + o.Address.Hex())
		}
		seen[o.Address] = struct{}{}
		if o.IsActive == (o.RemovedAt != nil) {
			return corrupt("owner " + o.Address.Hex() + " active flag and removed_at disagree")
		}
	}

	if c.Threshold < 1 || c.Threshold > c.ActiveOwnerCount() {
		return corrupt(fmt.Sprintf("threshold %d outside 1..%d", c.Threshold, c.ActiveOwnerCount()))
	}
	return nil
}
