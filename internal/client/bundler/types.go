package bundler

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/cyphera/cyphera-wallet-policy/internal/policy/outcome"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// WalletClient is the wallet SDK surface the service depends on.
type WalletClient interface {
	// SendCalls submits a batch of calls and returns its opaque handle.
	SendCalls(ctx context.Context, req SendCallsRequest) (outcome.Handle, error)
	// AwaitConfirmation polls the handle until the batch reaches a final
	// state or ctx is done.
	AwaitConfirmation(ctx context.Context, handle outcome.Handle) (outcome.Outcome, error)
	// CurrentAccount returns the first account the wallet exposes.
	CurrentAccount(ctx context.Context) (common.Address, error)
}

// Call is one call in a batch.
type Call struct {
	To    common.Address
	Value *big.Int
	Data  []byte
}

// SendCallsRequest is the wallet_sendCalls payload.
type SendCallsRequest struct {
	From    common.Address
	ChainID uint64
	Calls   []Call
}

type callJSON struct {
	To    common.Address `json:"to"`
	Value *hexutil.Big   `json:"value,omitempty"`
	Data  hexutil.Bytes  `json:"data,omitempty"`
}

type sendCallsJSON struct {
	Version string         `json:"version"`
	From    common.Address `json:"from"`
	ChainID hexutil.Uint64 `json:"chainId"`
	Calls   []callJSON     `json:"calls"`
}

func (r SendCallsRequest) MarshalJSON() ([]byte, error) {
	out := sendCallsJSON{
		Version: "1.0",
		From:    r.From,
		ChainID: hexutil.Uint64(r.ChainID),
		Calls:   make([]callJSON, len(r.Calls)),
	}
	for i, c := range r.Calls {
		out.Calls[i] = callJSON{To: c.To, Data: c.Data}
		if c.Value != nil && c.Value.Sign() > 0 {
			out.Calls[i].Value = (*hexutil.Big)(c.Value)
		}
	}
	return json.Marshal(out)
}

// Batch status codes returned by wallet_getCallsStatus.
const (
	StatusPending           = 100
	StatusConfirmed         = 200
	StatusOffchainFailure   = 400
	StatusReverted          = 500
	StatusPartiallyReverted = 600
)

// CallsStatus is the wallet_getCallsStatus result.
type CallsStatus struct {
	ID       string        `json:"id"`
	Status   int           `json:"status"`
	Receipts []CallReceipt `json:"receipts"`
}

// CallReceipt is the receipt of one mined transaction in a batch.
type CallReceipt struct {
	Status          hexutil.Uint64 `json:"status"`
	TransactionHash common.Hash    `json:"transactionHash"`
	GasUsed         hexutil.Uint64 `json:"gasUsed"`
	BlockNumber     hexutil.Uint64 `json:"blockNumber"`
}

// IsFinal reports whether the batch will not change state again.
func (s *CallsStatus) IsFinal() bool {
	return s.Status >= StatusConfirmed
}

// rpcRequest and rpcResponse are JSON-RPC 2.0 envelopes.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}
