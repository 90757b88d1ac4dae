package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cyphera/cyphera-wallet-policy/internal/policy"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/capability"
)

var (
	ErrGrantNotFound    = fmt.Errorf("session grant %w", policy.ErrNotFound)
	ErrPolicyNotFound   = fmt.Errorf("gas policy %w", policy.ErrNotFound)
	ErrActivityNotFound = fmt.Errorf("session activity %w", policy.ErrNotFound)

	ErrEmptyGrant    = errors.New("grant has no capabilities")
	ErrInvalidTTL    = fmt.Errorf("%w: ttl must not be negative", policy.ErrInvalidArgument)
	ErrInvalidPolicy = fmt.Errorf("%w: gas policy", policy.ErrInvalidArgument)

	// Denial reasons. Every *Denial unwraps to exactly one of these.
	ErrExpired              = fmt.Errorf("session grant %w", policy.ErrExpired)
	ErrWrongDelegate        = errors.New("acting address is not the grant delegate")
	ErrNoMatchingCapability = errors.New("no capability permits the operation")
	ErrGasPolicyExceeded    = errors.New("gas policy exceeded")
)

// Denial is returned by the evaluator when an operation is not allowed.
// It carries what was checked so the caller can render an actionable
// message and audit the decision.
type Denial struct {
	Reason  error
	GrantID string

	Operation capability.Operation

	// Capabilities is the full set that was checked. Set for
	// ErrNoMatchingCapability.
	Capabilities []capability.Capability

	// PolicyID is set for ErrGasPolicyExceeded.
	PolicyID string
	Detail   string
}

func (d *Denial) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "grant %s denied: %v", d.GrantID, d.Reason)
	if len(d.Capabilities) > 0 {
		fmt.Fprintf(&b, " (checked %d capabilities)", len(d.Capabilities))
	}
	if d.Detail != "" {
		b.WriteString(": ")
		b.WriteString(d.Detail)
	}
	return b.String()
}

func (d *Denial) Unwrap() error {
	return d.Reason
}

// AsDenial extracts a *Denial from err.
func AsDenial(err error) (*Denial, bool) {
	var d *Denial
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}
