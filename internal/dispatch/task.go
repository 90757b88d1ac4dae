package dispatch

import (
	"math/big"

	"github.com/cyphera/cyphera-wallet-policy/internal/client/bundler"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/multisig"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/session"
)

// TaskKind says where a task's outcome is recorded.
type TaskKind string

const (
	KindSessionActivity TaskKind = "session_activity"
	KindProposalReceipt TaskKind = "proposal_receipt"
)

// Task is one batch of calls waiting to be submitted to the wallet SDK.
type Task struct {
	Kind TaskKind

	// RefID is the activity id or proposal id the outcome belongs to.
	RefID string

	Request bundler.SendCallsRequest
}

// ActivityTask builds the submission for an authorized session operation.
// The issuing smart account sends the call.
func ActivityTask(op *session.AuthorizedOp, activity *session.Activity, chainID uint64) Task {
	return Task{
		Kind:  KindSessionActivity,
		RefID: activity.ID,
		Request: bundler.SendCallsRequest{
			From:    op.Issuer,
			ChainID: chainID,
			Calls: []bundler.Call{{
				To:    op.Operation.Target,
				Value: copyValue(op.Operation.Value),
				Data:  append([]byte(nil), op.Operation.Data...),
			}},
		},
	}
}

// ReceiptTask builds the submission for an executed multisig proposal.
func ReceiptTask(r *multisig.Receipt) Task {
	return Task{
		Kind:  KindProposalReceipt,
		RefID: r.ProposalID,
		Request: bundler.SendCallsRequest{
			From:    r.Account,
			ChainID: r.ChainID,
			Calls: []bundler.Call{{
				To:    r.Target,
				Value: copyValue(r.Value),
				Data:  append([]byte(nil), r.Data...),
			}},
		},
	}
}

func copyValue(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
