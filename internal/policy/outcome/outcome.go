// Package outcome describes the on-chain result of a submitted operation.
package outcome

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Status is the lifecycle state of a submitted operation.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// ParseStatus converts a stored status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusSuccess, StatusFailed:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown outcome status %q", s)
}

// IsFinal reports whether no further transition is expected.
func (s Status) IsFinal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Handle is the opaque identifier returned by the wallet SDK for a
// submitted batch of calls.
type Handle string

// Outcome is the recorded result of a submission.
type Outcome struct {
	Status Status

	// TxHash is set once the operation is mined.
	TxHash *common.Hash

	// Reason carries the failure reason reported by the wallet SDK.
	Reason string

	GasUsed    uint64
	RecordedAt time.Time
}

// Pending returns the initial outcome.
func Pending(now time.Time) Outcome {
	return Outcome{Status: StatusPending, RecordedAt: now}
}

// Succeeded builds a success outcome.
func Succeeded(now time.Time, txHash common.Hash, gasUsed uint64) Outcome {
	return Outcome{Status: StatusSuccess, TxHash: &txHash, GasUsed: gasUsed, RecordedAt: now}
}

// Failed builds a failure outcome.
func Failed(now time.Time, reason string) Outcome {
	return Outcome{Status: StatusFailed, Reason: reason, RecordedAt: now}
}
