package capability

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Operation is an action a delegate proposes to perform on the owner's behalf.
type Operation struct {
	Target common.Address

	// Data is the call data. Empty for plain value transfers.
	Data []byte

	// Selector overrides the selector read from Data when set.
	Selector *Selector

	Value        *big.Int
	EstimatedGas uint64

	// ActingAddress is the key that signs the operation.
	ActingAddress common.Address

	// Kind may be declared by the caller. Custom is only ever declared,
	// never inferred. Empty means infer from the call data.
	Kind Kind
}

// EffectiveSelector returns the explicit selector or the one read from Data.
func (op Operation) EffectiveSelector() (Selector, bool) {
	if op.Selector != nil {
		return *op.Selector, true
	}
	return SelectorOf(op.Data)
}

// EffectiveKind returns the declared kind or the inferred one.
func (op Operation) EffectiveKind() Kind {
	if op.Kind != "" {
		return op.Kind
	}
	return InferKind(op)
}

func (op Operation) valueOrZero() *big.Int {
	if op.Value == nil {
		return new(big.Int)
	}
	return op.Value
}

// InferKind classifies an operation by its call data. Only an operation
// without call data is a native transfer; data too short to carry a
// selector is a contract call.
func InferKind(op Operation) Kind {
	sel, ok := op.EffectiveSelector()
	if !ok {
		if len(op.Data) > 0 {
			return KindContractCall
		}
		return KindNativeTransfer
	}

	switch sel {
	case SelectorApprove, SelectorIncreaseAllowance, SelectorSetApprovalForAll:
		return KindTokenApproval
	case SelectorSafeTransferFrom, SelectorSafeTransferData, SelectorERC1155Transfer, SelectorERC1155Batch:
		return KindNftTransfer
	}
	return KindContractCall
}

// Clone returns a deep copy.
func (op Operation) Clone() Operation {
	out := op
	if op.Data != nil {
		out.Data = append([]byte(nil), op.Data...)
	}
	if op.Selector != nil {
		s := *op.Selector
		out.Selector = &s
	}
	if op.Value != nil {
		out.Value = new(big.Int).Set(op.Value)
	}
	return out
}
