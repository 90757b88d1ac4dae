package capability

import (
	"fmt"
	"strings"
)

// Kind classifies a permitted action.
type Kind string

const (
	KindNativeTransfer Kind = "native_transfer"
	KindContractCall   Kind = "contract_call"
	KindTokenApproval  Kind = "token_approval"
	KindNftTransfer    Kind = "nft_transfer"
	KindCustom         Kind = "custom"
)

// AllKinds lists every valid kind in display order.
var AllKinds = []Kind{
	KindNativeTransfer,
	KindContractCall,
	KindTokenApproval,
	KindNftTransfer,
	KindCustom,
}

// ParseKind accepts the canonical names plus the short "transfer" alias
// the wallet UI sends for native transfers.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindNativeTransfer, "transfer":
		return KindNativeTransfer, nil
	case KindContractCall:
		return KindContractCall, nil
	case KindTokenApproval:
		return KindTokenApproval, nil
	case KindNftTransfer:
		return KindNftTransfer, nil
	case KindCustom:
		return KindCustom, nil
	}
	return "", fmt.Errorf("unknown capability kind %q", s)
}

// IsValid reports whether k is one of the defined kinds.
func (k Kind) IsValid() bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Covers reports whether a capability of kind k may permit an operation
// of kind op. Token approvals and NFT transfers are contract calls, so a
// ContractCall capability covers them too; its target and selector
// restrictions still apply.
func (k Kind) Covers(op Kind) bool {
	if k == op {
		return true
	}
	if k == KindContractCall {
		return op == KindTokenApproval || op == KindNftTransfer
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}
