package capability

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Capability is a single permitted action class.
type Capability struct {
	// ID is assigned when the capability is issued as part of a grant.
	ID   string
	Kind Kind

	// Target restricts the call target or recipient. Nil means any.
	Target *common.Address

	// Selector restricts the called function. For ContractCall it must be
	// set unless AnySelector is true.
	Selector *Selector

	// AnySelector is the explicit opt-in for "any function on Target".
	AnySelector bool

	// MaxValuePerCall bounds native value (wei) moved in one call.
	MaxValuePerCall *big.Int

	// MaxGasPerCall bounds gas consumed in one call.
	MaxGasPerCall *uint64

	Description string
}

// Validate checks a capability in isolation.
func Validate(c Capability) error {
	return validateAt(c, -1)
}

// ValidateAll validates a capability set, reporting the first failing index.
func ValidateAll(caps []Capability) error {
	for i, c := range caps {
		if err := validateAt(c, i); err != nil {
			return err
		}
	}
	return nil
}

func validateAt(c Capability, index int) error {
	fail := func(field, reason string) error {
		return &CapabilityError{Index: index, Field: field, Reason: reason}
	}

	if !c.Kind.IsValid() {
		return fail("kind", "unknown kind "+string(c.Kind))
	}

	if c.AnySelector {
		if c.Kind != KindContractCall {
			return fail("any_selector", "only valid for contract_call")
		}
		if c.Selector != nil {
			return fail("any_selector", "cannot be combined with an explicit selector")
		}
	}

	if c.Kind == KindContractCall {
		if c.Target == nil && c.Selector == nil {
			return fail("target", "contract_call needs a target or a selector")
		}
		if c.Selector == nil && !c.AnySelector {
			return fail("selector", "contract_call needs a selector, or any_selector set explicitly")
		}
	}

	if c.MaxValuePerCall != nil && c.MaxValuePerCall.Sign() <= 0 {
		return fail("max_value_per_call", "must be positive when set")
	}
	if c.MaxGasPerCall != nil && *c.MaxGasPerCall == 0 {
		return fail("max_gas_per_call", "must be positive when set")
	}

	return nil
}

// Permits reports whether c allows op. The acting address and grant
// lifetime are checked by the caller; this looks only at the action.
func (c Capability) Permits(op Operation) bool {
	if !c.Kind.Covers(op.EffectiveKind()) {
		return false
	}

	if c.Target != nil && *c.Target != op.Target {
		return false
	}

	if c.Selector != nil {
		sel, ok := op.EffectiveSelector()
		if !ok || sel != *c.Selector {
			return false
		}
	}

	if c.MaxValuePerCall != nil && op.valueOrZero().Cmp(c.MaxValuePerCall) > 0 {
		return false
	}

	if c.MaxGasPerCall != nil && op.EstimatedGas > *c.MaxGasPerCall {
		return false
	}

	return true
}

// Clone returns a deep copy.
func (c Capability) Clone() Capability {
	out := c
	if c.Target != nil {
		t := *c.Target
		out.Target = &t
	}
	if c.Selector != nil {
		s := *c.Selector
		out.Selector = &s
	}
	if c.MaxValuePerCall != nil {
		out.MaxValuePerCall = new(big.Int).Set(c.MaxValuePerCall)
	}
	if c.MaxGasPerCall != nil {
		g := *c.MaxGasPerCall
		out.MaxGasPerCall = &g
	}
	return out
}

// CloneAll deep-copies a capability set.
func CloneAll(caps []Capability) []Capability {
	if caps == nil {
		return nil
	}
	out := make([]Capability, len(caps))
	for i, c := range caps {
		out[i] = c.Clone()
	}
	return out
}
