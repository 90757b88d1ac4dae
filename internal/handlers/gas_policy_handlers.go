package handlers

import (
	"fmt"
	"net/http"

	"github.com/cyphera/cyphera-wallet-policy/internal/helpers"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/session"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// GasPolicyHandler handles gas policy operations
type GasPolicyHandler struct {
	common *CommonServices
}

// NewGasPolicyHandler creates a new instance of GasPolicyHandler
func NewGasPolicyHandler(common *CommonServices) *GasPolicyHandler {
	return &GasPolicyHandler{common: common}
}

// CreateGasPolicyRequest represents the request body for creating a gas policy.
// AllowedContracts accepts "*" for any contract.
type CreateGasPolicyRequest struct {
	Name             string   `json:"name" binding:"required"`
	Description      string   `json:"description,omitempty"`
	MaxGasPerTx      uint64   `json:"max_gas_per_tx" binding:"required"`
	MaxGasPerDay     uint64   `json:"max_gas_per_day" binding:"required"`
	AllowedContracts []string `json:"allowed_contracts" binding:"required"`
}

// UpdateGasPolicyRequest represents the request body for updating a gas policy
type UpdateGasPolicyRequest struct {
	Active           *bool    `json:"active,omitempty"`
	MaxGasPerTx      *uint64  `json:"max_gas_per_tx,omitempty"`
	MaxGasPerDay     *uint64  `json:"max_gas_per_day,omitempty"`
	AllowedContracts []string `json:"allowed_contracts,omitempty"`
}

// CreateGasPolicy godoc
// @Summary Create a gas policy
// @Tags gas-policies
// @Accept json
// @Produce json
// @Param request body CreateGasPolicyRequest true "Policy"
// @Success 201 {object} GasPolicyResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /gas-policies [post]
func (h *GasPolicyHandler) CreateGasPolicy(c *gin.Context) {
	issuer, ok := currentAccount(c)
	if !ok {
		return
	}

	var req CreateGasPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	contracts, anyContract, err := parseContracts(req.AllowedContracts)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid allowed contract", err)
		return
	}

	p, err := h.common.policies.CreatePolicy(c.Request.Context(), h.common.clock.Now(), session.CreatePolicyParams{
		Issuer:           issuer,
		Name:             req.Name,
		Description:      req.Description,
		MaxGasPerTx:      req.MaxGasPerTx,
		MaxGasPerDay:     req.MaxGasPerDay,
		AllowedContracts: contracts,
		AllowAnyContract: anyContract,
	})
	if err != nil {
		handlePolicyError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, toGasPolicyResponse(p))
}

// ListGasPolicies godoc
// @Summary List gas policies
// @Tags gas-policies
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /gas-policies [get]
func (h *GasPolicyHandler) ListGasPolicies(c *gin.Context) {
	issuer, ok := currentAccount(c)
	if !ok {
		return
	}
	page, err := helpers.ParsePaginationParams(c)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	policies, err := h.common.policies.ListPolicies(c.Request.Context(), issuer)
	if err != nil {
		handlePolicyError(c, err)
		return
	}

	out := make([]GasPolicyResponse, 0, len(policies))
	for _, p := range helpers.Paginate(policies, page) {
		out = append(out, toGasPolicyResponse(p))
	}
	sendList(c, out)
}

// GetGasPolicy godoc
// @Summary Get a gas policy
// @Tags gas-policies
// @Produce json
// @Param policy_id path string true "Policy ID"
// @Success 200 {object} GasPolicyResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /gas-policies/{policy_id} [get]
func (h *GasPolicyHandler) GetGasPolicy(c *gin.Context) {
	caller, ok := currentAccount(c)
	if !ok {
		return
	}

	p, err := h.common.policies.GetPolicy(c.Request.Context(), c.Param("policy_id"))
	if err != nil {
		handlePolicyError(c, err)
		return
	}
	if p.IssuerAddress != caller {
		handlePolicyError(c, fmt.Errorf("gas policy %s: %w", p.ID, policy.ErrUnauthorized))
		return
	}
	sendSuccess(c, http.StatusOK, toGasPolicyResponse(p))
}

// UpdateGasPolicy godoc
// @Summary Update a gas policy
// @Description Changes limits, the contract list or toggles enforcement
// @Tags gas-policies
// @Accept json
// @Produce json
// @Param policy_id path string true "Policy ID"
// @Param request body UpdateGasPolicyRequest true "Changes"
// @Success 200 {object} GasPolicyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /gas-policies/{policy_id} [patch]
func (h *GasPolicyHandler) UpdateGasPolicy(c *gin.Context) {
	caller, ok := currentAccount(c)
	if !ok {
		return
	}

	var req UpdateGasPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := c.Request.Context()
	now := h.common.clock.Now()
	policyID := c.Param("policy_id")

	if req.Active != nil && req.MaxGasPerTx == nil && req.MaxGasPerDay == nil && req.AllowedContracts == nil {
		p, err := h.common.policies.SetPolicyActive(ctx, now, policyID, caller, *req.Active)
		if err != nil {
			handlePolicyError(c, err)
			return
		}
		sendSuccess(c, http.StatusOK, toGasPolicyResponse(p))
		return
	}

	params := session.UpdatePolicyParams{
		IsActive:     req.Active,
		MaxGasPerTx:  req.MaxGasPerTx,
		MaxGasPerDay: req.MaxGasPerDay,
	}
	if req.AllowedContracts != nil {
		contracts, anyContract, err := parseContracts(req.AllowedContracts)
		if err != nil {
			sendError(c, http.StatusBadRequest, "Invalid allowed contract", err)
			return
		}
		params.AllowedContracts = contracts
		if params.AllowedContracts == nil {
			params.AllowedContracts = []common.Address{}
		}
		params.AllowAnyContract = &anyContract
	}

	p, err := h.common.policies.UpdatePolicy(ctx, now, policyID, caller, params)
	if err != nil {
		handlePolicyError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, toGasPolicyResponse(p))
}
