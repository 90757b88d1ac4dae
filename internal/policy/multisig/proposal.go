package multisig

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/policy"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/outcome"
	"github.com/ethereum/go-ethereum/common"
)

// ActionType is what a proposal does when executed.
type ActionType string

const (
	ActionTransfer        ActionType = "transfer"
	ActionAddOwner        ActionType = "add_owner"
	ActionRemoveOwner     ActionType = "remove_owner"
	ActionChangeThreshold ActionType = "change_threshold"
	ActionCustom          ActionType = "custom"
)

// ParseActionType accepts snake_case names and the demo UI's camelCase.
func ParseActionType(s string) (ActionType, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "")) {
	case "transfer":
		return ActionTransfer, nil
	case "addowner":
		return ActionAddOwner, nil
	case "removeowner":
		return ActionRemoveOwner, nil
	case "changethreshold":
		return ActionChangeThreshold, nil
	case "custom":
		return ActionCustom, nil
	}
	return "", fmt.Errorf("%w: unknown action type %q", ErrInvalidProposal, s)
}

// IsGovernance reports whether executing the action changes the config.
func (a ActionType) IsGovernance() bool {
	return a == ActionAddOwner || a == ActionRemoveOwner || a == ActionChangeThreshold
}

// Signature is one owner's approval.
type Signature struct {
	Signer   common.Address
	Bytes    []byte
	SignedAt time.Time
}

// Receipt records a proposal's execution and its chain outcome.
type Receipt struct {
	ProposalID string
	Account    common.Address
	ChainID    uint64

	Target common.Address
	Value  *big.Int
	Data   []byte

	ExecutedAt time.Time

	// Handle is set once the calls are submitted to the wallet SDK.
	Handle  outcome.Handle
	Outcome outcome.Outcome
}

// Proposal is a pending or resolved multisig action.
type Proposal struct {
	ID      string
	Account common.Address

	// Nonce is the account's proposal counter at creation. It makes the
	// signing digest unique per proposal.
	Nonce uint64

	Title       string
	Description string
	ActionType  ActionType

	Target common.Address
	Value  *big.Int
	Data   []byte

	// NewOwnerName and NewOwnerEmail describe the owner an AddOwner
	// proposal will add. The address itself lives in Data.
	NewOwnerName  string
	NewOwnerEmail string

	ProposerAddress common.Address
	CreatedAt       time.Time
	Deadline        time.Time

	Signatures         []Signature
	RequiredSignatures int

	Executed    bool
	ExecutedAt  *time.Time
	Cancelled   bool
	CancelledAt *time.Time
	CancelledBy *common.Address

	Receipt *Receipt
}

// IsClosed reports whether the proposal reached a terminal stored state.
func (p *Proposal) IsClosed() bool {
	return p.Executed || p.Cancelled
}

// IsExpired reports whether the deadline has passed. The deadline
// instant itself is still open.
func (p *Proposal) IsExpired(now time.Time) bool {
	return now.After(p.Deadline)
}

// HasSigned reports whether addr has a signature on the proposal.
func (p *Proposal) HasSigned(addr common.Address) bool {
	for _, s := range p.Signatures {
		if s.Signer == addr {
			return true
		}
	}
	return false
}

// Signers returns the signer addresses in signing order.
func (p *Proposal) Signers() []common.Address {
	out := make([]common.Address, len(p.Signatures))
	for i, s := range p.Signatures {
		out[i] = s.Signer
	}
	return out
}

// Clone returns a deep copy.
func (p *Proposal) Clone() *Proposal {
	out := *p
	if p.Value != nil {
		out.Value = new(big.Int).Set(p.Value)
	}
	out.Data = cloneBytes(p.Data)
	if p.Signatures != nil {
		out.Signatures = make([]Signature, len(p.Signatures))
		for i, s := range p.Signatures {
			out.Signatures[i] = Signature{Signer: s.Signer, Bytes: cloneBytes(s.Bytes), SignedAt: s.SignedAt}
		}
	}
	out.ExecutedAt = cloneTime(p.ExecutedAt)
	out.CancelledAt = cloneTime(p.CancelledAt)
	if p.CancelledBy != nil {
		a := *p.CancelledBy
		out.CancelledBy = &a
	}
	if p.Receipt != nil {
		r := *p.Receipt
		if r.Value != nil {
			r.Value = new(big.Int).Set(r.Value)
		}
		r.Data = cloneBytes(r.Data)
		if r.Outcome.TxHash != nil {
			h := *r.Outcome.TxHash
			r.Outcome.TxHash = &h
		}
		out.Receipt = &r
	}
	return &out
}

// CheckIntegrity rejects proposals that violate the stored invariants.
func (p *Proposal) CheckIntegrity() error {
	corrupt := func(reason string) error {
		return fmt.Errorf("%w: proposal %s: %s", policy.ErrCorruptRecord, p.ID, reason)
	}

	if p.Executed && p.Cancelled {
		return corrupt("both executed and cancelled")
	}
	if p.Executed != (p.ExecutedAt != nil) {
		return corrupt("executed flag and executed_at disagree")
	}
	if p.Cancelled != (p.CancelledAt != nil) {
		return corrupt("cancelled flag and cancelled_at disagree")
	}
	if p.RequiredSignatures < 1 {
		return corrupt("required signatures below 1")
	}

	seen := make(map[common.Address]struct{}, len(p.Signatures))
	for _, s := range p.Signatures {
		if _, dup := seen[s.Signer]; dup {
			return corrupt("duplicate signer " + s.Signer.Hex())
		}
		seen[s.Signer] = struct{}{}
	}
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
