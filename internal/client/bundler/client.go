// Package bundler talks to the smart-wallet SDK endpoint using the
// EIP-5792 batch-call methods.
package bundler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	httpclient "github.com/cyphera/cyphera-wallet-policy/internal/client/http"
	"github.com/cyphera/cyphera-wallet-policy/internal/clock"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/outcome"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const (
	methodSendCalls      = "wallet_sendCalls"
	methodGetCallsStatus = "wallet_getCallsStatus"
	methodAccounts       = "eth_accounts"
)

// ErrNoAccount is returned when the wallet exposes no accounts.
var ErrNoAccount = errors.New("wallet exposes no account")

// PollConfig bounds confirmation polling.
type PollConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultPollConfig polls every few seconds for up to five minutes.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		InitialInterval: 2 * time.Second,
		MaxInterval:     15 * time.Second,
		MaxElapsedTime:  5 * time.Minute,
	}
}

// Client is the JSON-RPC WalletClient.
type Client struct {
	http   *httpclient.HTTPClient
	path   string
	poll   PollConfig
	clock  clock.Clock
	nextID atomic.Uint64
	logger *zap.Logger
}

var _ WalletClient = (*Client)(nil)

// NewClient creates a Client posting to path on httpClient's base URL.
func NewClient(httpClient *httpclient.HTTPClient, path string, poll PollConfig, clk clock.Clock) *Client {
	return &Client{
		http:   httpClient,
		path:   path,
		poll:   poll,
		clock:  clk,
		logger: logger.ForComponent(logger.ComponentBundler),
	}
}

func (c *Client) call(ctx context.Context, method string, out interface{}, params ...interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}

	var resp rpcResponse
	if err := c.http.PostJSON(ctx, c.path, req, &resp); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if resp.Error != nil {
		return fmt.Errorf("%s: %w", method, resp.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("%s: failed to decode result: %w", method, err)
	}
	return nil
}

// SendCalls submits the batch with wallet_sendCalls.
func (c *Client) SendCalls(ctx context.Context, req SendCallsRequest) (outcome.Handle, error) {
	if len(req.Calls) == 0 {
		return "", fmt.Errorf("%s: empty batch", methodSendCalls)
	}

	// Wallets return either a bare id or {"id": ...} depending on the
	// EIP-5792 revision they implement.
	var raw json.RawMessage
	if err := c.call(ctx, methodSendCalls, &raw, req); err != nil {
		return "", err
	}

	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return "", fmt.Errorf("%s: unexpected result %s", methodSendCalls, string(raw))
		}
		id = obj.ID
	}
	if id == "" {
		return "", fmt.Errorf("%s: empty handle", methodSendCalls)
	}

	c.logger.Info("Calls submitted",
		zap.String("handle", id),
		zap.String("from", req.From.Hex()),
		zap.Int("calls", len(req.Calls)))
	return outcome.Handle(id), nil
}

// GetCallsStatus fetches the current batch status.
func (c *Client) GetCallsStatus(ctx context.Context, handle outcome.Handle) (*CallsStatus, error) {
	var status CallsStatus
	if err := c.call(ctx, methodGetCallsStatus, &status, string(handle)); err != nil {
		return nil, err
	}
	return &status, nil
}

// AwaitConfirmation polls wallet_getCallsStatus with exponential backoff
// until the batch is final. Transient polling errors are retried.
func (c *Client) AwaitConfirmation(ctx context.Context, handle outcome.Handle) (outcome.Outcome, error) {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.poll.InitialInterval
	expBackoff.MaxInterval = c.poll.MaxInterval
	expBackoff.MaxElapsedTime = c.poll.MaxElapsedTime

	var final *CallsStatus
	poll := func() error {
		status, err := c.GetCallsStatus(ctx, handle)
		if err != nil {
			c.logger.Warn("Failed to poll calls status", zap.String("handle", string(handle)), zap.Error(err))
			return err
		}
		if !status.IsFinal() {
			return fmt.Errorf("batch %s still pending", handle)
		}
		final = status
		return nil
	}

	if err := backoff.Retry(poll, backoff.WithContext(expBackoff, ctx)); err != nil {
		return outcome.Outcome{}, fmt.Errorf("awaiting confirmation of %s: %w", handle, err)
	}
	return c.toOutcome(final), nil
}

func (c *Client) toOutcome(status *CallsStatus) outcome.Outcome {
	now := c.clock.Now()

	switch status.Status {
	case StatusConfirmed:
		if len(status.Receipts) == 0 {
			return outcome.Failed(now, "confirmed without receipts")
		}
		var gasUsed uint64
		for _, r := range status.Receipts {
			gasUsed += uint64(r.GasUsed)
		}
		last := status.Receipts[len(status.Receipts)-1]
		if last.Status != 1 {
			return outcome.Failed(now, "transaction reverted")
		}
		return outcome.Succeeded(now, last.TransactionHash, gasUsed)
	case StatusOffchainFailure:
		return outcome.Failed(now, "batch rejected before inclusion")
	case StatusReverted:
		return outcome.Failed(now, "batch reverted")
	case StatusPartiallyReverted:
		return outcome.Failed(now, "batch partially reverted")
	}
	return outcome.Failed(now, fmt.Sprintf("unknown batch status %d", status.Status))
}

// CurrentAccount returns the first account from eth_accounts.
func (c *Client) CurrentAccount(ctx context.Context) (common.Address, error) {
	var accounts []common.Address
	if err := c.call(ctx, methodAccounts, &accounts); err != nil {
		return common.Address{}, err
	}
	if len(accounts) == 0 {
		return common.Address{}, ErrNoAccount
	}
	return accounts[0], nil
}
