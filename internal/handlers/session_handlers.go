package handlers

import (
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sort"

	"github.com/cyphera/cyphera-wallet-policy/internal/dispatch"
	"github.com/cyphera/cyphera-wallet-policy/internal/helpers"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/capability"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/session"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionKeyHandler handles session grant operations
type SessionKeyHandler struct {
	common *CommonServices
}

// NewSessionKeyHandler creates a new instance of SessionKeyHandler
func NewSessionKeyHandler(common *CommonServices) *SessionKeyHandler {
	return &SessionKeyHandler{common: common}
}

// IssueSessionKeyRequest represents the request body for issuing a grant
type IssueSessionKeyRequest struct {
	Delegate     string                  `json:"delegate" binding:"required"`
	Name         string                  `json:"name,omitempty"`
	Description  string                  `json:"description,omitempty"`
	Capabilities []capability.Capability `json:"capabilities" binding:"required"`
	TTLSeconds   *int64                  `json:"ttl_seconds" binding:"required"`
	GasPolicyID  string                  `json:"gas_policy_id,omitempty"`
}

// AuthorizeOperationRequest represents an operation proposed by a delegate.
// Value is in ETH; ValueWei takes precedence when both are set. The acting
// address is always the authenticated caller.
type AuthorizeOperationRequest struct {
	Target       string `json:"target" binding:"required"`
	Data         string `json:"data,omitempty"`
	Selector     string `json:"selector,omitempty"`
	Value        string `json:"value,omitempty"`
	ValueWei     string `json:"value_wei,omitempty"`
	EstimatedGas uint64 `json:"estimated_gas,omitempty"`
	Kind         string `json:"kind,omitempty"`
}

// AuthorizeOperationResponse is returned for an authorized operation
type AuthorizeOperationResponse struct {
	Object       string           `json:"object"`
	Authorized   bool             `json:"authorized"`
	GrantID      string           `json:"grant_id"`
	CapabilityID string           `json:"capability_id"`
	Kind         string           `json:"kind"`
	UsageCount   uint64           `json:"usage_count"`
	AuthorizedAt int64            `json:"authorized_at"`
	Activity     ActivityResponse `json:"activity"`
	Submitted    bool             `json:"submitted"`
}

// DenialResponse explains why an operation was refused
type DenialResponse struct {
	Error        string                  `json:"error"`
	Code         string                  `json:"code"`
	Authorized   bool                    `json:"authorized"`
	GrantID      string                  `json:"grant_id"`
	Detail       string                  `json:"detail,omitempty"`
	Capabilities []capability.Capability `json:"checked_capabilities,omitempty"`
	GasPolicyID  string                  `json:"gas_policy_id,omitempty"`
}

// IssueSessionKey godoc
// @Summary Issue a session key
// @Description Grants a delegate key a set of capabilities for a limited time
// @Tags session-keys
// @Accept json
// @Produce json
// @Param request body IssueSessionKeyRequest true "Grant"
// @Success 201 {object} SessionKeyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /session-keys [post]
func (h *SessionKeyHandler) IssueSessionKey(c *gin.Context) {
	issuer, ok := currentAccount(c)
	if !ok {
		return
	}

	var req IssueSessionKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	delegate, err := helpers.ParseAddress(req.Delegate)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid delegate address", err)
		return
	}

	ttl, err := helpers.SecondsToDuration("ttl_seconds", *req.TTLSeconds)
	if err != nil {
		sendErrorCode(c, http.StatusBadRequest, err.Error(), "invalid_argument", err)
		return
	}

	params := session.IssueParams{
		Issuer:       issuer,
		Delegate:     delegate,
		Capabilities: req.Capabilities,
		TTL:          ttl,
		Name:         req.Name,
		Description:  req.Description,
	}
	if req.GasPolicyID != "" {
		params.GasPolicyID = &req.GasPolicyID
	}

	now := h.common.clock.Now()
	grant, err := h.common.grants.Issue(c.Request.Context(), now, params)
	if err != nil {
		handlePolicyError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, toSessionKeyResponse(grant, now))
}

// ListSessionKeys godoc
// @Summary List session keys
// @Description Lists the caller's grants. status=active (default) or all
// @Tags session-keys
// @Produce json
// @Param status query string false "active or all"
// @Param limit query int false "Page size"
// @Param page query int false "Page number"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /session-keys [get]
func (h *SessionKeyHandler) ListSessionKeys(c *gin.Context) {
	issuer, ok := currentAccount(c)
	if !ok {
		return
	}
	page, err := helpers.ParsePaginationParams(c)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	now := h.common.clock.Now()
	var grants []*session.Grant
	switch c.DefaultQuery("status", "active") {
	case "active":
		grants, err = h.common.grants.ListActive(c.Request.Context(), issuer, now)
	case "all":
		grants, err = h.common.grants.ListAll(c.Request.Context(), issuer)
	default:
		sendError(c, http.StatusBadRequest, "status must be active or all", nil)
		return
	}
	if err != nil {
		handlePolicyError(c, err)
		return
	}

	out := make([]SessionKeyResponse, 0, len(grants))
	for _, g := range helpers.Paginate(grants, page) {
		out = append(out, toSessionKeyResponse(g, now))
	}
	sendList(c, out)
}

// GetSessionKey godoc
// @Summary Get a session key
// @Tags session-keys
// @Produce json
// @Param grant_id path string true "Grant ID"
// @Success 200 {object} SessionKeyResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /session-keys/{grant_id} [get]
func (h *SessionKeyHandler) GetSessionKey(c *gin.Context) {
	grant, ok := h.loadGrant(c, false)
	if !ok {
		return
	}
	sendSuccess(c, http.StatusOK, toSessionKeyResponse(grant, h.common.clock.Now()))
}

// RevokeSessionKey godoc
// @Summary Revoke a session key
// @Description Revoking an already revoked grant succeeds
// @Tags session-keys
// @Produce json
// @Param grant_id path string true "Grant ID"
// @Success 200 {object} SessionKeyResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /session-keys/{grant_id} [delete]
func (h *SessionKeyHandler) RevokeSessionKey(c *gin.Context) {
	caller, ok := currentAccount(c)
	if !ok {
		return
	}

	now := h.common.clock.Now()
	grant, err := h.common.grants.Revoke(c.Request.Context(), now, c.Param("grant_id"), caller)
	if err != nil {
		handlePolicyError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, toSessionKeyResponse(grant, now))
}

// AuthorizeOperation godoc
// @Summary Authorize an operation under a session key
// @Description Evaluates the operation against the grant, records the use and submits it to the wallet
// @Tags session-keys
// @Accept json
// @Produce json
// @Param grant_id path string true "Grant ID"
// @Param request body AuthorizeOperationRequest true "Operation"
// @Success 200 {object} AuthorizeOperationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} DenialResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /session-keys/{grant_id}/authorize [post]
func (h *SessionKeyHandler) AuthorizeOperation(c *gin.Context) {
	grant, ok := h.loadGrant(c, true)
	if !ok {
		return
	}
	caller, _ := currentAccount(c)

	var req AuthorizeOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	op, err := parseOperation(req, caller)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	ctx := c.Request.Context()
	now := h.common.clock.Now()
	authorized, err := h.common.authorizer.Authorize(ctx, grant.ID, op, now)
	if err != nil {
		if d, ok := session.AsDenial(err); ok {
			sendDenial(c, d)
			return
		}
		handlePolicyError(c, err)
		return
	}

	activity, err := h.common.activity.Record(ctx, authorized)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Failed to record session activity", err)
		return
	}

	submitted := false
	if h.common.queue != nil {
		if err := h.common.queue.Enqueue(dispatch.ActivityTask(authorized, activity, h.common.chainID)); err != nil {
			logger.Warn("Authorized operation not submitted",
				zap.String("grant_id", grant.ID),
				zap.String("activity_id", activity.ID),
				zap.Error(err))
		} else {
			submitted = true
		}
	}

	sendSuccess(c, http.StatusOK, AuthorizeOperationResponse{
		Object:       "authorization",
		Authorized:   true,
		GrantID:      authorized.GrantID,
		CapabilityID: authorized.CapabilityID,
		Kind:         string(authorized.Kind),
		UsageCount:   authorized.UsageCount,
		AuthorizedAt: authorized.AuthorizedAt.Unix(),
		Activity:     toActivityResponse(activity),
		Submitted:    submitted,
	})
}

// ListSessionActivity godoc
// @Summary List a session key's activity
// @Tags session-keys
// @Produce json
// @Param grant_id path string true "Grant ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /session-keys/{grant_id}/activity [get]
func (h *SessionKeyHandler) ListSessionActivity(c *gin.Context) {
	grant, ok := h.loadGrant(c, false)
	if !ok {
		return
	}
	page, err := helpers.ParsePaginationParams(c)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	entries, err := h.common.activity.List(c.Request.Context(), grant.ID)
	if err != nil {
		handlePolicyError(c, err)
		return
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	out := make([]ActivityResponse, 0, len(entries))
	for _, a := range helpers.Paginate(entries, page) {
		out = append(out, toActivityResponse(a))
	}
	sendList(c, out)
}

// loadGrant fetches the grant named in the path. The caller must be its
// issuer, or its delegate when allowDelegate is set.
func (h *SessionKeyHandler) loadGrant(c *gin.Context, allowDelegate bool) (*session.Grant, bool) {
	caller, ok := currentAccount(c)
	if !ok {
		return nil, false
	}

	grant, err := h.common.grants.Get(c.Request.Context(), c.Param("grant_id"))
	if err != nil {
		handlePolicyError(c, err)
		return nil, false
	}
	if grant.IssuerAddress != caller && !(allowDelegate && grant.DelegateAddress == caller) {
		handlePolicyError(c, fmt.Errorf("grant %s: %w", grant.ID, policy.ErrUnauthorized))
		return nil, false
	}
	return grant, true
}

// parseOperation converts the request into an Operation acted by caller.
func parseOperation(req AuthorizeOperationRequest, caller common.Address) (capability.Operation, error) {
	var op capability.Operation

	target, err := helpers.ParseAddress(req.Target)
	if err != nil {
		return op, err
	}
	op.Target = target
	op.EstimatedGas = req.EstimatedGas
	op.ActingAddress = caller

	if req.Data != "" {
		if op.Data, err = hexutil.Decode(req.Data); err != nil {
			return op, errors.New("data must be 0x-prefixed hex")
		}
		if n := len(op.Data); n > 0 && n < capability.SelectorLength {
			return op, fmt.Errorf("data must be empty or start with a %d-byte selector", capability.SelectorLength)
		}
	}
	if req.Selector != "" {
		sel, err := capability.ParseSelector(req.Selector)
		if err != nil {
			return op, err
		}
		op.Selector = &sel
	}
	if req.Kind != "" {
		if op.Kind, err = capability.ParseKind(req.Kind); err != nil {
			return op, err
		}
	}

	switch {
	case req.ValueWei != "":
		v, ok := new(big.Int).SetString(req.ValueWei, 10)
		if !ok || v.Sign() < 0 {
			return op, errors.New("value_wei must be a non-negative integer")
		}
		op.Value = v
	case req.Value != "":
		if op.Value, err = helpers.ParseEtherAmount(req.Value); err != nil {
			return op, err
		}
	}
	return op, nil
}

func sendDenial(c *gin.Context, d *session.Denial) {
	status, code := errorStatus(d)
	logger.Info("Session operation denied",
		zap.String("grant_id", d.GrantID),
		zap.String("code", code),
		zap.String("path", c.Request.URL.Path))
	c.JSON(status, DenialResponse{
		Error:        d.Reason.Error(),
		Code:         code,
		GrantID:      d.GrantID,
		Detail:       d.Detail,
		Capabilities: d.Capabilities,
		GasPolicyID:  d.PolicyID,
	})
}
