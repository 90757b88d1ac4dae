package capability

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// capabilityJSON is the stored and wire form. Wei amounts are decimal
// strings so they survive JSON number precision limits.
type capabilityJSON struct {
	ID              string          `json:"id,omitempty"`
	Kind            Kind            `json:"kind"`
	Target          *common.Address `json:"target,omitempty"`
	Selector        *Selector       `json:"selector,omitempty"`
	AnySelector     bool            `json:"any_selector,omitempty"`
	MaxValuePerCall string          `json:"max_value_per_call,omitempty"`
	MaxGasPerCall   *uint64         `json:"max_gas_per_call,omitempty"`
	Description     string          `json:"description,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (c Capability) MarshalJSON() ([]byte, error) {
	out := capabilityJSON{
		ID:            c.ID,
		Kind:          c.Kind,
		Target:        c.Target,
		Selector:      c.Selector,
		AnySelector:   c.AnySelector,
		MaxGasPerCall: c.MaxGasPerCall,
		Description:   c.Description,
	}
	if c.MaxValuePerCall != nil {
		out.MaxValuePerCall = c.MaxValuePerCall.String()
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Capability) UnmarshalJSON(data []byte) error {
	var in capabilityJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*c = Capability{
		ID:            in.ID,
		Kind:          in.Kind,
		Target:        in.Target,
		Selector:      in.Selector,
		AnySelector:   in.AnySelector,
		MaxGasPerCall: in.MaxGasPerCall,
		Description:   in.Description,
	}
	if in.MaxValuePerCall != "" {
		v, ok := new(big.Int).SetString(in.MaxValuePerCall, 10)
		if !ok {
			return fmt.Errorf("invalid max_value_per_call %q", in.MaxValuePerCall)
		}
		c.MaxValuePerCall = v
	}
	return nil
}
