package multisig

import (
	"errors"
	"fmt"

	"github.com/cyphera/cyphera-wallet-policy/internal/policy"
)

var (
	ErrConfigNotFound   = fmt.Errorf("multisig config %w", policy.ErrNotFound)
	ErrProposalNotFound = fmt.Errorf("proposal %w", policy.ErrNotFound)
	ErrConfigExists     = errors.New("multisig config already exists")

	ErrNotAnOwner             = errors.New("address is not an active owner")
	ErrAlreadySigned          = errors.New("owner already signed this proposal")
	ErrProposalClosed         = errors.New("proposal is already executed or cancelled")
	ErrExpired                = fmt.Errorf("proposal %w", policy.ErrExpired)
	ErrInsufficientSignatures = errors.New("insufficient signatures")
	ErrInvalidSignature       = errors.New("signature does not recover to signer")
	ErrInvalidConfigChange    = errors.New("change would violate the owner threshold")
	ErrOutcomeFinal           = errors.New("execution outcome already final")

	ErrInvalidDeadline = fmt.Errorf("%w: deadline must be after creation time", policy.ErrInvalidArgument)
	ErrInvalidProposal = fmt.Errorf("%w: proposal", policy.ErrInvalidArgument)
	ErrInvalidConfig   = fmt.Errorf("%w: multisig config", policy.ErrInvalidArgument)
)

// QuorumError reports a threshold violation with the numbers involved.
type QuorumError struct {
	ProposalID string
	Reason     error

	// Count and Required are set for ErrInsufficientSignatures.
	Count    int
	Required int

	// Threshold and ActiveOwners describe the config a change would
	// produce. Set for ErrInvalidConfigChange.
	Threshold    int
	ActiveOwners int
}

func (e *QuorumError) Error() string {
	if errors.Is(e.Reason, ErrInvalidConfigChange) {
		return fmt.Sprintf("proposal %s: %v: threshold %d with %d active owners",
			e.ProposalID, e.Reason, e.Threshold, e.ActiveOwners)
	}
	return fmt.Sprintf("proposal %s: %v: have %d of %d", e.ProposalID, e.Reason, e.Count, e.Required)
}

func (e *QuorumError) Unwrap() error {
	return e.Reason
}
