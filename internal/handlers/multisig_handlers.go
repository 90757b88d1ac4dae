package handlers

import (
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/dispatch"
	"github.com/cyphera/cyphera-wallet-policy/internal/helpers"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/multisig"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// defaultProposalLifetime applies when a proposal names no deadline.
const defaultProposalLifetime = 7 * 24 * time.Hour

// MultisigHandler handles multisig config and proposal operations. The
// authenticated account acts as an owner; the multisig account is named
// by the account field or query parameter and defaults to the caller.
type MultisigHandler struct {
	common *CommonServices
}

// NewMultisigHandler creates a new instance of MultisigHandler
func NewMultisigHandler(common *CommonServices) *MultisigHandler {
	return &MultisigHandler{common: common}
}

// OwnerRequest describes an owner at bootstrap
type OwnerRequest struct {
	Address     string `json:"address" binding:"required"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Admin       bool   `json:"admin,omitempty"`
}

// InitMultisigRequest represents the request body for creating a multisig config
type InitMultisigRequest struct {
	Account   string         `json:"account,omitempty"`
	ChainID   uint64         `json:"chain_id,omitempty"`
	Owners    []OwnerRequest `json:"owners" binding:"required,dive"`
	Threshold int            `json:"threshold" binding:"required"`
}

// CreateProposalRequest represents the request body for a new proposal.
// Value is in ETH; ValueWei takes precedence when both are set. Deadline
// is a unix timestamp.
type CreateProposalRequest struct {
	Account      string `json:"account,omitempty"`
	ActionType   string `json:"action_type" binding:"required"`
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description,omitempty"`
	Target       string `json:"target,omitempty"`
	Value        string `json:"value,omitempty"`
	ValueWei     string `json:"value_wei,omitempty"`
	Data         string `json:"data,omitempty"`
	Owner        string `json:"owner,omitempty"`
	OwnerName    string `json:"owner_name,omitempty"`
	OwnerEmail   string `json:"owner_email,omitempty"`
	NewThreshold *int   `json:"new_threshold,omitempty"`
	Deadline     *int64 `json:"deadline,omitempty"`
	ExpiresIn    *int64 `json:"expires_in_seconds,omitempty"`
}

// SignProposalRequest carries a 65-byte signature over the proposal digest
type SignProposalRequest struct {
	Signature string `json:"signature" binding:"required"`
}

// InitMultisig godoc
// @Summary Create a multisig config
// @Description Sets the owners and threshold of a multisig account. Only the account itself may create its config
// @Tags multisig
// @Accept json
// @Produce json
// @Param request body InitMultisigRequest true "Config"
// @Success 201 {object} MultisigConfigResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /multisig [post]
func (h *MultisigHandler) InitMultisig(c *gin.Context) {
	caller, ok := currentAccount(c)
	if !ok {
		return
	}

	var req InitMultisigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	account, err := accountOrCaller(req.Account, caller)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid account address", err)
		return
	}
	if caller != account {
		handlePolicyError(c, fmt.Errorf("multisig %s: only the account may create its config: %w", account.Hex(), policy.ErrUnauthorized))
		return
	}

	params := multisig.InitConfigParams{
		Account:   account,
		ChainID:   req.ChainID,
		Threshold: req.Threshold,
	}
	if params.ChainID == 0 {
		params.ChainID = h.common.chainID
	}
	for _, o := range req.Owners {
		addr, err := helpers.ParseAddress(o.Address)
		if err != nil {
			sendError(c, http.StatusBadRequest, "Invalid owner address", err)
			return
		}
		params.Owners = append(params.Owners, multisig.OwnerParams{
			Address:     addr,
			DisplayName: o.DisplayName,
			Email:       o.Email,
			IsAdmin:     o.Admin,
		})
	}
	cfg, err := h.common.ledger.InitConfig(c.Request.Context(), h.common.clock.Now(), params)
	if err != nil {
		handlePolicyError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, toMultisigConfigResponse(cfg))
}

// GetMultisig godoc
// @Summary Get a multisig config
// @Tags multisig
// @Produce json
// @Param account query string false "Multisig account, defaults to the caller"
// @Success 200 {object} MultisigConfigResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /multisig [get]
func (h *MultisigHandler) GetMultisig(c *gin.Context) {
	cfg, ok := h.loadConfig(c, c.Query("account"))
	if !ok {
		return
	}
	sendSuccess(c, http.StatusOK, toMultisigConfigResponse(cfg))
}

// CreateProposal godoc
// @Summary Create a proposal
// @Description Creates a transfer, add_owner, remove_owner, change_threshold or custom proposal
// @Tags multisig
// @Accept json
// @Produce json
// @Param request body CreateProposalRequest true "Proposal"
// @Success 201 {object} ProposalResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /multisig/proposals [post]
func (h *MultisigHandler) CreateProposal(c *gin.Context) {
	caller, ok := currentAccount(c)
	if !ok {
		return
	}

	var req CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	now := h.common.clock.Now()
	params, err := parseProposal(req, caller, now)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	ctx := c.Request.Context()
	p, err := h.common.ledger.Propose(ctx, now, params)
	if err != nil {
		handlePolicyError(c, err)
		return
	}
	cfg, err := h.common.ledger.Config(ctx, p.Account)
	if err != nil {
		handlePolicyError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, toProposalResponse(p, cfg, now))
}

// ListProposals godoc
// @Summary List proposals
// @Description Lists an account's proposals with status badges. status=open (default) or all
// @Tags multisig
// @Produce json
// @Param account query string false "Multisig account, defaults to the caller"
// @Param status query string false "open or all"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /multisig/proposals [get]
func (h *MultisigHandler) ListProposals(c *gin.Context) {
	cfg, ok := h.loadConfig(c, c.Query("account"))
	if !ok {
		return
	}
	page, err := helpers.ParsePaginationParams(c)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	ctx := c.Request.Context()
	now := h.common.clock.Now()
	var proposals []*multisig.Proposal
	switch c.DefaultQuery("status", "open") {
	case "open":
		proposals, err = h.common.ledger.ListOpen(ctx, cfg.Account, now)
	case "all":
		proposals, err = h.common.ledger.ListAll(ctx, cfg.Account)
	default:
		sendError(c, http.StatusBadRequest, "status must be open or all", nil)
		return
	}
	if err != nil {
		handlePolicyError(c, err)
		return
	}

	out := make([]ProposalResponse, 0, len(proposals))
	for _, p := range helpers.Paginate(proposals, page) {
		out = append(out, toProposalResponse(p, cfg, now))
	}
	sendList(c, out)
}

// GetProposal godoc
// @Summary Get a proposal
// @Tags multisig
// @Produce json
// @Param proposal_id path string true "Proposal ID"
// @Success 200 {object} ProposalResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /multisig/proposals/{proposal_id} [get]
func (h *MultisigHandler) GetProposal(c *gin.Context) {
	p, cfg, ok := h.loadProposal(c)
	if !ok {
		return
	}
	sendSuccess(c, http.StatusOK, toProposalResponse(p, cfg, h.common.clock.Now()))
}

// SignProposal godoc
// @Summary Sign a proposal
// @Description Adds the caller's signature over the proposal digest
// @Tags multisig
// @Accept json
// @Produce json
// @Param proposal_id path string true "Proposal ID"
// @Param request body SignProposalRequest true "Signature"
// @Success 200 {object} ProposalResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Security BearerAuth
// @Router /multisig/proposals/{proposal_id}/sign [post]
func (h *MultisigHandler) SignProposal(c *gin.Context) {
	caller, ok := currentAccount(c)
	if !ok {
		return
	}

	var req SignProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	sig, err := hexutil.Decode(req.Signature)
	if err != nil {
		sendError(c, http.StatusBadRequest, "signature must be 0x-prefixed hex", err)
		return
	}

	ctx := c.Request.Context()
	now := h.common.clock.Now()
	p, err := h.common.ledger.Sign(ctx, now, c.Param("proposal_id"), caller, sig)
	if err != nil {
		handlePolicyError(c, err)
		return
	}
	cfg, err := h.common.ledger.Config(ctx, p.Account)
	if err != nil {
		handlePolicyError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, toProposalResponse(p, cfg, now))
}

// ExecuteProposal godoc
// @Summary Execute a proposal
// @Description Marks a proposal with quorum executed and submits its call to the wallet
// @Tags multisig
// @Produce json
// @Param proposal_id path string true "Proposal ID"
// @Success 200 {object} ReceiptResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Security BearerAuth
// @Router /multisig/proposals/{proposal_id}/execute [post]
func (h *MultisigHandler) ExecuteProposal(c *gin.Context) {
	p, cfg, ok := h.loadProposal(c)
	if !ok {
		return
	}
	caller, _ := currentAccount(c)
	if caller != cfg.Account && !cfg.IsActiveOwner(caller) {
		handlePolicyError(c, fmt.Errorf("execute proposal %s: %w", p.ID, multisig.ErrNotAnOwner))
		return
	}

	receipt, err := h.common.ledger.Execute(c.Request.Context(), h.common.clock.Now(), p.ID)
	if err != nil {
		handlePolicyError(c, err)
		return
	}

	submitted := false
	if h.common.queue != nil {
		if err := h.common.queue.Enqueue(dispatch.ReceiptTask(receipt)); err != nil {
			logger.Warn("Executed proposal not submitted",
				zap.String("proposal_id", receipt.ProposalID),
				zap.Error(err))
		} else {
			submitted = true
		}
	}

	resp := toReceiptResponse(receipt)
	resp.Submitted = &submitted
	sendSuccess(c, http.StatusOK, resp)
}

// CancelProposal godoc
// @Summary Cancel a proposal
// @Description Only the proposer or an admin owner may cancel
// @Tags multisig
// @Produce json
// @Param proposal_id path string true "Proposal ID"
// @Success 200 {object} ProposalResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /multisig/proposals/{proposal_id}/cancel [post]
func (h *MultisigHandler) CancelProposal(c *gin.Context) {
	caller, ok := currentAccount(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	now := h.common.clock.Now()
	p, err := h.common.ledger.Cancel(ctx, now, c.Param("proposal_id"), caller)
	if err != nil {
		handlePolicyError(c, err)
		return
	}
	cfg, err := h.common.ledger.Config(ctx, p.Account)
	if err != nil {
		handlePolicyError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, toProposalResponse(p, cfg, now))
}

// loadConfig resolves the multisig account and checks the caller may
// read it: the account itself or any owner, including removed ones.
func (h *MultisigHandler) loadConfig(c *gin.Context, rawAccount string) (*multisig.Config, bool) {
	caller, ok := currentAccount(c)
	if !ok {
		return nil, false
	}
	account, err := accountOrCaller(rawAccount, caller)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid account address", err)
		return nil, false
	}

	cfg, err := h.common.ledger.Config(c.Request.Context(), account)
	if err != nil {
		handlePolicyError(c, err)
		return nil, false
	}
	if !canView(cfg, caller) {
		handlePolicyError(c, fmt.Errorf("multisig %s: %w", account.Hex(), policy.ErrUnauthorized))
		return nil, false
	}
	return cfg, true
}

func (h *MultisigHandler) loadProposal(c *gin.Context) (*multisig.Proposal, *multisig.Config, bool) {
	caller, ok := currentAccount(c)
	if !ok {
		return nil, nil, false
	}

	ctx := c.Request.Context()
	p, err := h.common.ledger.Get(ctx, c.Param("proposal_id"))
	if err != nil {
		handlePolicyError(c, err)
		return nil, nil, false
	}
	cfg, err := h.common.ledger.Config(ctx, p.Account)
	if err != nil {
		handlePolicyError(c, err)
		return nil, nil, false
	}
	if !canView(cfg, caller) {
		handlePolicyError(c, fmt.Errorf("proposal %s: %w", p.ID, policy.ErrUnauthorized))
		return nil, nil, false
	}
	return p, cfg, true
}

func canView(cfg *multisig.Config, caller common.Address) bool {
	if caller == cfg.Account {
		return true
	}
	_, owner := cfg.Owner(caller)
	return owner
}

func accountOrCaller(raw string, caller common.Address) (common.Address, error) {
	if raw == "" {
		return caller, nil
	}
	return helpers.ParseAddress(raw)
}

// parseProposal converts the request into ledger params. The proposer is
// always the caller.
func parseProposal(req CreateProposalRequest, caller common.Address, now time.Time) (multisig.ProposeParams, error) {
	params := multisig.ProposeParams{
		Proposer:     caller,
		Title:        req.Title,
		Description:  req.Description,
		OwnerName:    req.OwnerName,
		OwnerEmail:   req.OwnerEmail,
		NewThreshold: req.NewThreshold,
	}

	var err error
	if params.Account, err = accountOrCaller(req.Account, caller); err != nil {
		return params, err
	}
	if params.ActionType, err = multisig.ParseActionType(req.ActionType); err != nil {
		return params, err
	}
	if params.Target, err = helpers.ParseOptionalAddress(req.Target); err != nil {
		return params, err
	}
	if params.Owner, err = helpers.ParseOptionalAddress(req.Owner); err != nil {
		return params, err
	}
	if req.Data != "" {
		if params.Data, err = hexutil.Decode(req.Data); err != nil {
			return params, errors.New("data must be 0x-prefixed hex")
		}
	}

	switch {
	case req.ValueWei != "":
		v, ok := new(big.Int).SetString(req.ValueWei, 10)
		if !ok {
			return params, errors.New("value_wei must be an integer")
		}
		params.Value = v
	case req.Value != "":
		if params.Value, err = helpers.ParseEtherAmount(req.Value); err != nil {
			return params, err
		}
	}

	switch {
	case req.Deadline != nil:
		params.Deadline = time.Unix(*req.Deadline, 0)
	case req.ExpiresIn != nil:
		lifetime, err := helpers.SecondsToDuration("expires_in_seconds", *req.ExpiresIn)
		if err != nil {
			return params, err
		}
		params.Deadline = now.Add(lifetime)
	default:
		params.Deadline = now.Add(defaultProposalLifetime)
	}
	return params, nil
}
