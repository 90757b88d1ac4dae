package capability

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// SelectorLength is the size of an ABI function selector.
const SelectorLength = 4

// Selector is the first four bytes of the Keccak-256 hash of a function
// signature.
type Selector [SelectorLength]byte

// Well-known selectors used for kind inference and governance payloads.
var (
	SelectorApprove           = MustParseSelector("0x095ea7b3") // approve(address,uint256)
	SelectorIncreaseAllowance = MustParseSelector("0x39509351") // increaseAllowance(address,uint256)
	SelectorSetApprovalForAll = MustParseSelector("0xa22cb465") // setApprovalForAll(address,bool)
	SelectorSafeTransferFrom  = MustParseSelector("0x42842e0e") // safeTransferFrom(address,address,uint256)
	SelectorSafeTransferData  = MustParseSelector("0xb88d4fde") // safeTransferFrom(address,address,uint256,bytes)
	SelectorERC1155Transfer   = MustParseSelector("0xf242432a") // safeTransferFrom(address,address,uint256,uint256,bytes)
	SelectorERC1155Batch      = MustParseSelector("0x2eb2c2d6") // safeBatchTransferFrom(address,address,uint256[],uint256[],bytes)

	SelectorAddOwner        = MustParseSelector("0x7065cb48") // addOwner(address)
	SelectorRemoveOwner     = MustParseSelector("0x173825d9") // removeOwner(address)
	SelectorChangeThreshold = MustParseSelector("0x694e80c3") // changeThreshold(uint256)
)

// SelectorFromSignature hashes a canonical signature such as
// "transfer(address,uint256)".
func SelectorFromSignature(signature string) Selector {
	var s Selector
	copy(s[:], crypto.Keccak256([]byte(signature))[:SelectorLength])
	return s
}

// ParseSelector decodes a 0x-prefixed (or bare) 8 hex digit selector.
func ParseSelector(s string) (Selector, error) {
	var sel Selector
	raw := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if len(raw) != SelectorLength*2 {
		return sel, fmt.Errorf("selector must be %d bytes, got %q", SelectorLength, s)
	}
	if _, err := hex.Decode(sel[:], []byte(raw)); err != nil {
		return sel, fmt.Errorf("invalid selector %q: %w", s, err)
	}
	return sel, nil
}

// MustParseSelector is ParseSelector for package-level constants.
func MustParseSelector(s string) Selector {
	sel, err := ParseSelector(s)
	if err != nil {
		panic(err)
	}
	return sel
}

// SelectorOf extracts the selector from call data. ok is false when the
// data is too short to carry one.
func SelectorOf(data []byte) (sel Selector, ok bool) {
	if len(data) < SelectorLength {
		return sel, false
	}
	copy(sel[:], data[:SelectorLength])
	return sel, true
}

func (s Selector) String() string {
	return "0x" + hex.EncodeToString(s[:])
}

// MarshalJSON encodes the selector as a hex string.
func (s Selector) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a hex string selector.
func (s *Selector) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSelector(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
