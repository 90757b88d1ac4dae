package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DispatchState reports the wallet SDK dispatcher's breaker.
type DispatchState interface {
	CircuitOpen() bool
	PendingCount() int
}

type HealthHandler struct {
	db       Pinger
	dispatch DispatchState
}

// NewHealthHandler creates a health handler. Either dependency may be nil.
func NewHealthHandler(db Pinger, dispatch DispatchState) *HealthHandler {
	return &HealthHandler{db: db, dispatch: dispatch}
}

type HealthResponse struct {
	Status        string `json:"status"`
	Database      string `json:"database,omitempty"`
	Wallet        string `json:"wallet,omitempty"`
	PendingWallet int    `json:"pending_wallet_tasks,omitempty"`
}

// Health godoc
// @Summary      Health check
// @Description  Checks if the server and its database are reachable
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok"}
	status := http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		resp.Database = "ok"
		if err := h.db.Ping(ctx); err != nil {
			resp.Status = "unavailable"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	// An open breaker degrades the service but reads and authorization
	// still work, so it does not fail the check.
	if h.dispatch != nil {
		resp.Wallet = "ok"
		if h.dispatch.CircuitOpen() {
			resp.Wallet = "circuit_open"
			if resp.Status == "ok" {
				resp.Status = "degraded"
			}
		}
		resp.PendingWallet = h.dispatch.PendingCount()
	}

	c.JSON(status, resp)
}
