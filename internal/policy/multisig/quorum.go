package multisig

import (
	"fmt"
	"time"
)

// StatusKind is the single badge shown for a proposal.
type StatusKind string

const (
	StatusExecuted        StatusKind = "executed"
	StatusCancelled       StatusKind = "cancelled"
	StatusExpired         StatusKind = "expired"
	StatusReadyToExecute  StatusKind = "ready_to_execute"
	StatusPartiallySigned StatusKind = "partially_signed"
)

// Status is a proposal's quorum state at a point in time.
type Status struct {
	Kind     StatusKind
	Count    int
	Required int
}

func (s Status) String() string {
	if s.Kind == StatusPartiallySigned {
		return fmt.Sprintf("%s(%d/%d)", s.Kind, s.Count, s.Required)
	}
	return string(s.Kind)
}

// StatusOf evaluates p against cfg at now. The precedence is fixed:
// executed or cancelled, then expired, then ready, then partially signed.
func StatusOf(p *Proposal, cfg *Config, now time.Time) Status {
	count := CountApprovals(p, cfg)
	st := Status{Count: count, Required: p.RequiredSignatures}

	switch {
	case p.Executed:
		st.Kind = StatusExecuted
	case p.Cancelled:
		st.Kind = StatusCancelled
	case p.IsExpired(now):
		st.Kind = StatusExpired
	case count >= p.RequiredSignatures:
		st.Kind = StatusReadyToExecute
	default:
		st.Kind = StatusPartiallySigned
	}
	return st
}

// CountApprovals counts signatures from owners that are active in cfg.
// Signatures of removed owners do not count toward quorum.
func CountApprovals(p *Proposal, cfg *Config) int {
	n := 0
	for _, s := range p.Signatures {
		if cfg.IsActiveOwner(s.Signer) {
			n++
		}
	}
	return n
}
