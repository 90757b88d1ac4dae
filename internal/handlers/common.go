package handlers

import (
	"errors"
	"net/http"

	"github.com/cyphera/cyphera-wallet-policy/internal/auth"
	"github.com/cyphera/cyphera-wallet-policy/internal/clock"
	"github.com/cyphera/cyphera-wallet-policy/internal/dispatch"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/capability"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/multisig"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/session"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TaskQueue accepts work for the wallet SDK dispatcher.
type TaskQueue interface {
	Enqueue(task dispatch.Task) error
}

// CommonServices holds common dependencies used across handlers
type CommonServices struct {
	grants     *session.GrantStore
	authorizer *session.Authorizer
	policies   *session.GasPolicyRegistry
	activity   *session.ActivityLog
	ledger     *multisig.Ledger
	queue      TaskQueue
	clock      clock.Clock
	chainID    uint64
}

// CommonServicesConfig lists the services shared by all handlers. Queue
// may be nil, in which case authorized operations and executed proposals
// are recorded but never submitted.
type CommonServicesConfig struct {
	Grants     *session.GrantStore
	Authorizer *session.Authorizer
	Policies   *session.GasPolicyRegistry
	Activity   *session.ActivityLog
	Ledger     *multisig.Ledger
	Queue      TaskQueue
	Clock      clock.Clock
	ChainID    uint64
}

// NewCommonServices creates a new instance of CommonServices
func NewCommonServices(cfg CommonServicesConfig) *CommonServices {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &CommonServices{
		grants:     cfg.Grants,
		authorizer: cfg.Authorizer,
		policies:   cfg.Policies,
		activity:   cfg.Activity,
		ledger:     cfg.Ledger,
		queue:      cfg.Queue,
		clock:      clk,
		chainID:    cfg.ChainID,
	}
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// sendError is a helper function that combines logging and error response
// It logs the error with the given message and sends a JSON error response
func sendError(c *gin.Context, statusCode int, message string, err error) {
	sendErrorCode(c, statusCode, message, "", err)
}

func sendErrorCode(c *gin.Context, statusCode int, message, code string, err error) {
	log := logger.Warn
	if statusCode >= http.StatusInternalServerError {
		log = logger.Error
	}
	log(message,
		zap.Error(err),
		zap.String("code", code),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)
	c.JSON(statusCode, ErrorResponse{Error: message, Code: code})
}

// sendSuccess is a helper function that sends a success response
func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// sendList is a helper function that sends a list response
func sendList(c *gin.Context, items interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   items,
	})
}

// errorStatus maps a policy error to an HTTP status and a stable code.
// Denials are checked before the generic classes because an expired
// grant denial also unwraps to policy.ErrExpired.
func errorStatus(err error) (int, string) {
	if d, ok := session.AsDenial(err); ok {
		switch {
		case errors.Is(d.Reason, session.ErrExpired):
			return http.StatusForbidden, "grant_expired"
		case errors.Is(d.Reason, session.ErrWrongDelegate):
			return http.StatusForbidden, "wrong_delegate"
		case errors.Is(d.Reason, session.ErrGasPolicyExceeded):
			return http.StatusForbidden, "gas_policy_exceeded"
		}
		return http.StatusForbidden, "no_matching_capability"
	}

	var quorum *multisig.QuorumError
	if errors.As(err, &quorum) {
		if errors.Is(err, multisig.ErrInvalidConfigChange) {
			return http.StatusConflict, "invalid_config_change"
		}
		return http.StatusConflict, "insufficient_signatures"
	}

	switch {
	case errors.Is(err, policy.ErrCorruptRecord):
		return http.StatusInternalServerError, "corrupt_record"
	case errors.Is(err, policy.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, policy.ErrUnauthorized), errors.Is(err, multisig.ErrNotAnOwner):
		return http.StatusForbidden, "unauthorized"
	case errors.Is(err, policy.ErrExpired):
		return http.StatusGone, "expired"
	case errors.Is(err, multisig.ErrAlreadySigned):
		return http.StatusConflict, "already_signed"
	case errors.Is(err, multisig.ErrProposalClosed):
		return http.StatusConflict, "proposal_closed"
	case errors.Is(err, multisig.ErrConfigExists):
		return http.StatusConflict, "config_exists"
	case errors.Is(err, multisig.ErrInsufficientSignatures):
		return http.StatusConflict, "insufficient_signatures"
	case errors.Is(err, multisig.ErrInvalidSignature):
		return http.StatusBadRequest, "invalid_signature"
	case errors.Is(err, capability.ErrInvalidCapability):
		return http.StatusBadRequest, "invalid_capability"
	case errors.Is(err, session.ErrEmptyGrant):
		return http.StatusBadRequest, "empty_grant"
	case errors.Is(err, policy.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	}
	return http.StatusInternalServerError, "internal"
}

// handlePolicyError sends the response for an error returned by the
// session or multisig packages.
func handlePolicyError(c *gin.Context, err error) {
	status, code := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	sendErrorCode(c, status, message, code, err)
}

// currentAccount returns the authenticated account or aborts with 401.
func currentAccount(c *gin.Context) (common.Address, bool) {
	account, ok := auth.AccountAddress(c)
	if !ok {
		sendError(c, http.StatusUnauthorized, "No authenticated account", auth.ErrNoAccount)
		return common.Address{}, false
	}
	return account, true
}
