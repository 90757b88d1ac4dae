package handlers

import (
	"math/big"
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/constants"
	"github.com/cyphera/cyphera-wallet-policy/internal/helpers"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/capability"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/multisig"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/outcome"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/session"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// SessionKeyResponse represents a session grant
type SessionKeyResponse struct {
	ID              string                  `json:"id"`
	Object          string                  `json:"object"`
	Name            string                  `json:"name,omitempty"`
	Description     string                  `json:"description,omitempty"`
	Issuer          string                  `json:"issuer"`
	Delegate        string                  `json:"delegate"`
	Capabilities    []capability.Capability `json:"capabilities"`
	Status          string                  `json:"status"`
	IssuedAt        int64                   `json:"issued_at"`
	ExpiresAt       int64                   `json:"expires_at"`
	RevokedAt       *int64                  `json:"revoked_at,omitempty"`
	UsageCount      uint64                  `json:"usage_count"`
	LastUsedAt      *int64                  `json:"last_used_at,omitempty"`
	GasPolicyID     *string                 `json:"gas_policy_id,omitempty"`
	GasUsedInWindow uint64                  `json:"gas_used_in_window"`
	GasWindowStart  *int64                  `json:"gas_window_start,omitempty"`
}

// OutcomeResponse is the chain result of a submitted operation
type OutcomeResponse struct {
	Status     string  `json:"status"`
	TxHash     *string `json:"tx_hash,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	GasUsed    uint64  `json:"gas_used,omitempty"`
	RecordedAt int64   `json:"recorded_at"`
}

// ActivityResponse represents one authorized use of a session grant
type ActivityResponse struct {
	ID           string          `json:"id"`
	Object       string          `json:"object"`
	GrantID      string          `json:"grant_id"`
	CapabilityID string          `json:"capability_id"`
	Kind         string          `json:"kind"`
	Target       string          `json:"target"`
	Selector     string          `json:"selector,omitempty"`
	Value        string          `json:"value"`
	ValueWei     string          `json:"value_wei"`
	EstimatedGas uint64          `json:"estimated_gas"`
	Handle       string          `json:"handle,omitempty"`
	Outcome      OutcomeResponse `json:"outcome"`
	CreatedAt    int64           `json:"created_at"`
}

// GasPolicyResponse represents a gas policy
type GasPolicyResponse struct {
	ID               string   `json:"id"`
	Object           string   `json:"object"`
	Issuer           string   `json:"issuer"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	MaxGasPerTx      uint64   `json:"max_gas_per_tx"`
	MaxGasPerDay     uint64   `json:"max_gas_per_day"`
	AllowedContracts []string `json:"allowed_contracts"`
	Active           bool     `json:"active"`
	CreatedAt        int64    `json:"created_at"`
	UpdatedAt        int64    `json:"updated_at"`
}

// OwnerResponse represents a multisig owner
type OwnerResponse struct {
	Address     string `json:"address"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Active      bool   `json:"active"`
	Admin       bool   `json:"admin"`
	AddedAt     int64  `json:"added_at"`
	RemovedAt   *int64 `json:"removed_at,omitempty"`
}

// MultisigConfigResponse represents a multisig account's membership
type MultisigConfigResponse struct {
	Object        string          `json:"object"`
	Account       string          `json:"account"`
	ChainID       uint64          `json:"chain_id"`
	Threshold     int             `json:"threshold"`
	Owners        []OwnerResponse `json:"owners"`
	ProposalCount uint64          `json:"proposal_count"`
	CreatedAt     int64           `json:"created_at"`
	UpdatedAt     int64           `json:"updated_at"`
}

// SignatureResponse represents one owner's approval
type SignatureResponse struct {
	Signer   string `json:"signer"`
	Counted  bool   `json:"counted"`
	SignedAt int64  `json:"signed_at"`
}

// ProposalStatusResponse is the badge of a proposal
type ProposalStatusResponse struct {
	Kind     string `json:"kind"`
	Label    string `json:"label"`
	Count    int    `json:"count"`
	Required int    `json:"required"`
}

// ReceiptResponse represents an executed proposal
type ReceiptResponse struct {
	Object     string          `json:"object"`
	ProposalID string          `json:"proposal_id"`
	Account    string          `json:"account"`
	ChainID    uint64          `json:"chain_id"`
	Target     string          `json:"target"`
	Value      string          `json:"value"`
	Data       string          `json:"data"`
	ExecutedAt int64           `json:"executed_at"`
	Handle     string          `json:"handle,omitempty"`
	Outcome    OutcomeResponse `json:"outcome"`
	Submitted  *bool           `json:"submitted,omitempty"`
}

// ProposalResponse represents a multisig proposal with its status badge
type ProposalResponse struct {
	ID                 string                 `json:"id"`
	Object             string                 `json:"object"`
	Account            string                 `json:"account"`
	Nonce              uint64                 `json:"nonce"`
	Title              string                 `json:"title"`
	Description        string                 `json:"description,omitempty"`
	ActionType         string                 `json:"action_type"`
	Target             string                 `json:"target"`
	Value              string                 `json:"value"`
	Data               string                 `json:"data"`
	NewOwnerName       string                 `json:"new_owner_name,omitempty"`
	NewOwnerEmail      string                 `json:"new_owner_email,omitempty"`
	Proposer           string                 `json:"proposer"`
	Digest             string                 `json:"digest"`
	Signatures         []SignatureResponse    `json:"signatures"`
	RequiredSignatures int                    `json:"required_signatures"`
	Status             ProposalStatusResponse `json:"status"`
	CreatedAt          int64                  `json:"created_at"`
	Deadline           int64                  `json:"deadline"`
	ExecutedAt         *int64                 `json:"executed_at,omitempty"`
	CancelledAt        *int64                 `json:"cancelled_at,omitempty"`
	CancelledBy        *string                `json:"cancelled_by,omitempty"`
	Receipt            *ReceiptResponse       `json:"receipt,omitempty"`
}

func unixPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	v := t.Unix()
	return &v
}

func weiString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func toOutcomeResponse(o outcome.Outcome) OutcomeResponse {
	resp := OutcomeResponse{
		Status:     string(o.Status),
		Reason:     o.Reason,
		GasUsed:    o.GasUsed,
		RecordedAt: o.RecordedAt.Unix(),
	}
	if o.TxHash != nil {
		h := o.TxHash.Hex()
		resp.TxHash = &h
	}
	return resp
}

func toSessionKeyResponse(g *session.Grant, now time.Time) SessionKeyResponse {
	return SessionKeyResponse{
		ID:              g.ID,
		Object:          "session_key",
		Name:            g.Name,
		Description:     g.Description,
		Issuer:          g.IssuerAddress.Hex(),
		Delegate:        g.DelegateAddress.Hex(),
		Capabilities:    g.Capabilities,
		Status:          g.Status(now),
		IssuedAt:        g.IssuedAt.Unix(),
		ExpiresAt:       g.ExpiresAt.Unix(),
		RevokedAt:       unixPtr(g.RevokedAt),
		UsageCount:      g.UsageCount,
		LastUsedAt:      unixPtr(g.LastUsedAt),
		GasPolicyID:     g.GasPolicyID,
		GasUsedInWindow: g.GasUsedInWindow,
		GasWindowStart:  unixPtr(g.GasWindowStart),
	}
}

func toActivityResponse(a *session.Activity) ActivityResponse {
	resp := ActivityResponse{
		ID:           a.ID,
		Object:       "session_activity",
		GrantID:      a.GrantID,
		CapabilityID: a.CapabilityID,
		Kind:         string(a.Kind),
		Target:       a.Target.Hex(),
		Value:        helpers.FormatEtherAmount(a.Value),
		ValueWei:     weiString(a.Value),
		EstimatedGas: a.EstimatedGas,
		Handle:       string(a.Handle),
		Outcome:      toOutcomeResponse(a.Outcome),
		CreatedAt:    a.CreatedAt.Unix(),
	}
	if a.Selector != nil {
		resp.Selector = a.Selector.String()
	}
	return resp
}

func toGasPolicyResponse(p *session.GasPolicy) GasPolicyResponse {
	contracts := make([]string, 0, len(p.AllowedContracts)+1)
	if p.AllowAnyContract {
		contracts = append(contracts, constants.AnyContract)
	}
	for _, c := range p.AllowedContracts {
		contracts = append(contracts, c.Hex())
	}
	return GasPolicyResponse{
		ID:               p.ID,
		Object:           "gas_policy",
		Issuer:           p.IssuerAddress.Hex(),
		Name:             p.Name,
		Description:      p.Description,
		MaxGasPerTx:      p.MaxGasPerTx,
		MaxGasPerDay:     p.MaxGasPerDay,
		AllowedContracts: contracts,
		Active:           p.IsActive,
		CreatedAt:        p.CreatedAt.Unix(),
		UpdatedAt:        p.UpdatedAt.Unix(),
	}
}

func toMultisigConfigResponse(cfg *multisig.Config) MultisigConfigResponse {
	owners := make([]OwnerResponse, 0, len(cfg.Owners))
	for _, o := range cfg.Owners {
		owners = append(owners, OwnerResponse{
			Address:     o.Address.Hex(),
			DisplayName: o.DisplayName,
			Email:       o.Email,
			Active:      o.IsActive,
			Admin:       o.IsAdmin,
			AddedAt:     o.AddedAt.Unix(),
			RemovedAt:   unixPtr(o.RemovedAt),
		})
	}
	return MultisigConfigResponse{
		Object:        "multisig_config",
		Account:       cfg.Account.Hex(),
		ChainID:       cfg.ChainID,
		Threshold:     cfg.Threshold,
		Owners:        owners,
		ProposalCount: cfg.ProposalCount,
		CreatedAt:     cfg.CreatedAt.Unix(),
		UpdatedAt:     cfg.UpdatedAt.Unix(),
	}
}

func toReceiptResponse(r *multisig.Receipt) *ReceiptResponse {
	if r == nil {
		return nil
	}
	return &ReceiptResponse{
		Object:     "multisig_receipt",
		ProposalID: r.ProposalID,
		Account:    r.Account.Hex(),
		ChainID:    r.ChainID,
		Target:     r.Target.Hex(),
		Value:      weiString(r.Value),
		Data:       hexutil.Encode(r.Data),
		ExecutedAt: r.ExecutedAt.Unix(),
		Handle:     string(r.Handle),
		Outcome:    toOutcomeResponse(r.Outcome),
	}
}

func toProposalResponse(p *multisig.Proposal, cfg *multisig.Config, now time.Time) ProposalResponse {
	status := multisig.StatusOf(p, cfg, now)

	sigs := make([]SignatureResponse, 0, len(p.Signatures))
	for _, s := range p.Signatures {
		sigs = append(sigs, SignatureResponse{
			Signer:   s.Signer.Hex(),
			Counted:  cfg.IsActiveOwner(s.Signer),
			SignedAt: s.SignedAt.Unix(),
		})
	}

	resp := ProposalResponse{
		ID:                 p.ID,
		Object:             "multisig_proposal",
		Account:            p.Account.Hex(),
		Nonce:              p.Nonce,
		Title:              p.Title,
		Description:        p.Description,
		ActionType:         string(p.ActionType),
		Target:             p.Target.Hex(),
		Value:              weiString(p.Value),
		Data:               hexutil.Encode(p.Data),
		NewOwnerName:       p.NewOwnerName,
		NewOwnerEmail:      p.NewOwnerEmail,
		Proposer:           p.ProposerAddress.Hex(),
		Digest:             multisig.Digest(p, cfg.ChainID).Hex(),
		Signatures:         sigs,
		RequiredSignatures: p.RequiredSignatures,
		Status: ProposalStatusResponse{
			Kind:     string(status.Kind),
			Label:    status.String(),
			Count:    status.Count,
			Required: status.Required,
		},
		CreatedAt:   p.CreatedAt.Unix(),
		Deadline:    p.Deadline.Unix(),
		ExecutedAt:  unixPtr(p.ExecutedAt),
		CancelledAt: unixPtr(p.CancelledAt),
		Receipt:     toReceiptResponse(p.Receipt),
	}
	if p.CancelledBy != nil {
		by := p.CancelledBy.Hex()
		resp.CancelledBy = &by
	}
	return resp
}

// parseContracts splits "*" out of an allowed-contracts list.
func parseContracts(in []string) ([]common.Address, bool, error) {
	var (
		out         []common.Address
		anyContract bool
	)
	for _, s := range in {
		if s == constants.AnyContract {
			anyContract = true
			continue
		}
		addr, err := helpers.ParseAddress(s)
		if err != nil {
			return nil, false, err
		}
		out = append(out, addr)
	}
	return out, anyContract, nil
}
