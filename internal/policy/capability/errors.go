package capability

import (
	"errors"
	"fmt"
)

// ErrInvalidCapability is the sentinel wrapped by every validation failure.
var ErrInvalidCapability = errors.New("invalid capability")

// CapabilityError describes why a capability was rejected.
type CapabilityError struct {
	Index  int // position in the submitted set, -1 when validated alone
	Field  string
	Reason string
}

func (e *CapabilityError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid capability %d: %s: %s", e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid capability: %s: %s", e.Field, e.Reason)
}

func (e *CapabilityError) Unwrap() error {
	return ErrInvalidCapability
}
