package handlers

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/audit"
	"github.com/cyphera/cyphera-wallet-policy/internal/clock"
	"github.com/cyphera/cyphera-wallet-policy/internal/constants"
	"github.com/cyphera/cyphera-wallet-policy/internal/dispatch"
	"github.com/cyphera/cyphera-wallet-policy/internal/helpers"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/capability"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/multisig"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/session"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAccountHeader = "X-Test-Account"

var (
	issuer    = common.HexToAddress("0x1111000000000000000000000000000000000001")
	delegate  = common.HexToAddress("0x2222000000000000000000000000000000000002")
	stranger  = common.HexToAddress("0x3333000000000000000000000000000000000003")
	recipient = common.HexToAddress("0x00000000000000000000000000000000000000ee")

	t0 = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
)

func init() {
	logger.InitLogger("test")
	gin.SetMode(gin.TestMode)
}

type fakeQueue struct {
	mu    sync.Mutex
	tasks []dispatch.Task
	err   error
}

func (q *fakeQueue) Enqueue(task dispatch.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *fakeQueue) Tasks() []dispatch.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]dispatch.Task(nil), q.tasks...)
}

type testEnv struct {
	router *gin.Engine
	clock  *clock.FakeClock
	queue  *fakeQueue
	sink   *audit.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		clock: clock.Fake(t0),
		queue: &fakeQueue{},
		sink:  &audit.Recorder{},
	}

	grantRepo := session.NewMemoryGrantRepository()
	policyRepo := session.NewMemoryGasPolicyRepository()
	grants := session.NewGrantStore(grantRepo, policyRepo, env.sink)
	services := NewCommonServices(CommonServicesConfig{
		Grants:     grants,
		Authorizer: session.NewAuthorizer(grants, env.sink),
		Policies:   session.NewGasPolicyRegistry(policyRepo),
		Activity:   session.NewActivityLog(session.NewMemoryActivityRepository()),
		Ledger:     multisig.NewLedger(multisig.NewMemoryRepository(), multisig.ECDSAVerifier{}, env.sink, nil),
		Queue:      env.queue,
		Clock:      env.clock,
		ChainID:    84532,
	})

	r := gin.New()
	r.GET("/health", NewHealthHandler(nil, nil).Health)

	v1 := r.Group("/api/v1")
	v1.Use(func(c *gin.Context) {
		if raw := c.GetHeader(testAccountHeader); raw != "" {
			c.Set(constants.AccountAddressKey, common.HexToAddress(raw))
		}
		c.Next()
	})

	sessions := NewSessionKeyHandler(services)
	v1.POST("/session-keys", sessions.IssueSessionKey)
	v1.GET("/session-keys", sessions.ListSessionKeys)
	v1.GET("/session-keys/:grant_id", sessions.GetSessionKey)
	v1.DELETE("/session-keys/:grant_id", sessions.RevokeSessionKey)
	v1.POST("/session-keys/:grant_id/authorize", sessions.AuthorizeOperation)
	v1.GET("/session-keys/:grant_id/activity", sessions.ListSessionActivity)

	policies := NewGasPolicyHandler(services)
	v1.POST("/gas-policies", policies.CreateGasPolicy)
	v1.GET("/gas-policies", policies.ListGasPolicies)
	v1.GET("/gas-policies/:policy_id", policies.GetGasPolicy)
	v1.PATCH("/gas-policies/:policy_id", policies.UpdateGasPolicy)

	ms := NewMultisigHandler(services)
	v1.POST("/multisig", ms.InitMultisig)
	v1.GET("/multisig", ms.GetMultisig)
	v1.POST("/multisig/proposals", ms.CreateProposal)
	v1.GET("/multisig/proposals", ms.ListProposals)
	v1.GET("/multisig/proposals/:proposal_id", ms.GetProposal)
	v1.POST("/multisig/proposals/:proposal_id/sign", ms.SignProposal)
	v1.POST("/multisig/proposals/:proposal_id/execute", ms.ExecuteProposal)
	v1.POST("/multisig/proposals/:proposal_id/cancel", ms.CancelProposal)

	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, as common.Address, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != (common.Address{}) {
		req.Header.Set(testAccountHeader, as.Hex())
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type listBody[T any] struct {
	Object string `json:"object"`
	Data   []T    `json:"data"`
}

func transferGrant(ttl int64) gin.H {
	return gin.H{
		"delegate":    delegate.Hex(),
		"name":        "Payroll bot",
		"ttl_seconds": ttl,
		"capabilities": []gin.H{{
			"kind":               "native_transfer",
			"target":             recipient.Hex(),
			"max_value_per_call": "1000000000000000000",
		}},
	}
}

func issueGrant(t *testing.T, env *testEnv, body gin.H) SessionKeyResponse {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/v1/session-keys", issuer, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[SessionKeyResponse](t, w)
}

func TestSessionKeyLifecycle(t *testing.T) {
	env := newTestEnv(t)
	grant := issueGrant(t, env, transferGrant(3600))

	assert.Equal(t, "active", grant.Status)
	assert.Equal(t, issuer.Hex(), grant.Issuer)
	assert.Equal(t, t0.Add(time.Hour).Unix(), grant.ExpiresAt)
	require.Len(t, grant.Capabilities, 1)
	assert.NotEmpty(t, grant.Capabilities[0].ID)

	base := "/api/v1/session-keys/" + grant.ID

	w := env.do(t, http.MethodGet, base, stranger, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Authorized transfer is recorded and queued for the wallet.
	w = env.do(t, http.MethodPost, base+"/authorize", delegate, gin.H{
		"target":        recipient.Hex(),
		"value":         "0.5",
		"estimated_gas": 21000,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	auth := decode[AuthorizeOperationResponse](t, w)
	assert.True(t, auth.Authorized)
	assert.True(t, auth.Submitted)
	assert.Equal(t, uint64(1), auth.UsageCount)
	assert.Equal(t, "native_transfer", auth.Kind)
	assert.Equal(t, "0.5", auth.Activity.Value)
	assert.Equal(t, "pending", auth.Activity.Outcome.Status)

	tasks := env.queue.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, dispatch.KindSessionActivity, tasks[0].Kind)
	assert.Equal(t, auth.Activity.ID, tasks[0].RefID)
	assert.Equal(t, issuer, tasks[0].Request.From)

	// Above the per-call value cap.
	w = env.do(t, http.MethodPost, base+"/authorize", delegate, gin.H{
		"target": recipient.Hex(),
		"value":  "2",
	})
	require.Equal(t, http.StatusForbidden, w.Code)
	denial := decode[DenialResponse](t, w)
	assert.Equal(t, "no_matching_capability", denial.Code)
	assert.Len(t, denial.Capabilities, 1)

	// The issuer may call authorize but the operation must be signed by the delegate.
	w = env.do(t, http.MethodPost, base+"/authorize", issuer, gin.H{
		"target": recipient.Hex(),
		"value":  "0.1",
	})
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "wrong_delegate", decode[DenialResponse](t, w).Code)

	// Naming the delegate in the body does not change who is acting.
	w = env.do(t, http.MethodPost, base+"/authorize", issuer, gin.H{
		"target":         recipient.Hex(),
		"value":          "0.1",
		"acting_address": delegate.Hex(),
	})
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	assert.Equal(t, "wrong_delegate", decode[DenialResponse](t, w).Code)
	assert.Len(t, env.queue.Tasks(), 1)

	// Call data too short to hold a selector.
	w = env.do(t, http.MethodPost, base+"/authorize", delegate, gin.H{
		"target": recipient.Hex(),
		"value":  "0.1",
		"data":   "0x0102",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, base+"/activity", issuer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	activity := decode[listBody[ActivityResponse]](t, w)
	require.Len(t, activity.Data, 1)
	assert.Equal(t, recipient.Hex(), activity.Data[0].Target)

	w = env.do(t, http.MethodDelete, base, delegate, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodDelete, base, issuer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "revoked", decode[SessionKeyResponse](t, w).Status)

	w = env.do(t, http.MethodDelete, base, issuer, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, base+"/authorize", delegate, gin.H{"target": recipient.Hex(), "value": "0.1"})
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "grant_expired", decode[DenialResponse](t, w).Code)

	w = env.do(t, http.MethodGet, "/api/v1/session-keys", issuer, nil)
	assert.Empty(t, decode[listBody[SessionKeyResponse]](t, w).Data)
	w = env.do(t, http.MethodGet, "/api/v1/session-keys?status=all", issuer, nil)
	assert.Len(t, decode[listBody[SessionKeyResponse]](t, w).Data, 1)
}

func TestSessionKeyExpiry(t *testing.T) {
	env := newTestEnv(t)
	grant := issueGrant(t, env, transferGrant(60))

	env.clock.Advance(time.Minute)

	w := env.do(t, http.MethodGet, "/api/v1/session-keys/"+grant.ID, issuer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "expired", decode[SessionKeyResponse](t, w).Status)

	w = env.do(t, http.MethodPost, "/api/v1/session-keys/"+grant.ID+"/authorize", delegate, gin.H{"target": recipient.Hex()})
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "grant_expired", decode[DenialResponse](t, w).Code)
	assert.Empty(t, env.queue.Tasks())
}

func TestAuthorize_QueueUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.queue.err = dispatch.ErrQueueFull
	grant := issueGrant(t, env, transferGrant(3600))

	w := env.do(t, http.MethodPost, "/api/v1/session-keys/"+grant.ID+"/authorize", delegate, gin.H{"target": recipient.Hex()})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[AuthorizeOperationResponse](t, w).Submitted)
}

func TestIssueSessionKey_Validation(t *testing.T) {
	env := newTestEnv(t)

	badKind := transferGrant(3600)
	badKind["capabilities"] = []gin.H{{"kind": "teleport"}}
	callNoSelector := transferGrant(3600)
	callNoSelector["capabilities"] = []gin.H{{"kind": "contract_call", "target": recipient.Hex()}}
	empty := transferGrant(3600)
	empty["capabilities"] = []gin.H{}
	badDelegate := transferGrant(3600)
	badDelegate["delegate"] = "0x1234"
	noTTL := transferGrant(3600)
	delete(noTTL, "ttl_seconds")

	tests := []struct {
		name     string
		body     gin.H
		as       common.Address
		wantCode int
		wantErr  string
	}{
		{name: "unknown kind", body: badKind, as: issuer, wantCode: http.StatusBadRequest, wantErr: "invalid_capability"},
		{name: "contract call without selector", body: callNoSelector, as: issuer, wantCode: http.StatusBadRequest, wantErr: "invalid_capability"},
		{name: "no capabilities", body: empty, as: issuer, wantCode: http.StatusBadRequest, wantErr: "empty_grant"},
		{name: "negative ttl", body: transferGrant(-1), as: issuer, wantCode: http.StatusBadRequest, wantErr: "invalid_argument"},
		{name: "ttl one past duration range", body: transferGrant(helpers.MaxDurationSeconds + 1), as: issuer, wantCode: http.StatusBadRequest, wantErr: "invalid_argument"},
		{name: "ttl wrapping to zero", body: transferGrant(18446744074), as: issuer, wantCode: http.StatusBadRequest, wantErr: "invalid_argument"},
		{name: "ttl wrapping negative", body: transferGrant(9300000000), as: issuer, wantCode: http.StatusBadRequest, wantErr: "invalid_argument"},
		{name: "negative ttl past duration range", body: transferGrant(-helpers.MaxDurationSeconds - 1), as: issuer, wantCode: http.StatusBadRequest, wantErr: "invalid_argument"},
		{name: "bad delegate", body: badDelegate, as: issuer, wantCode: http.StatusBadRequest},
		{name: "missing ttl", body: noTTL, as: issuer, wantCode: http.StatusBadRequest},
		{name: "unauthenticated", body: transferGrant(3600), wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/session-keys", tt.as, tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, decode[ErrorResponse](t, w).Code)
			}
		})
	}

	// Zero ttl is accepted and the grant is expired from the start.
	grant := issueGrant(t, env, transferGrant(0))
	assert.Equal(t, "expired", grant.Status)

	w := env.do(t, http.MethodPost, "/api/v1/session-keys", issuer, transferGrant(helpers.MaxDurationSeconds+1))
	assert.Contains(t, decode[ErrorResponse](t, w).Error, "9223372036")

	longest := issueGrant(t, env, transferGrant(helpers.MaxDurationSeconds))
	assert.Equal(t, "active", longest.Status)
	assert.Equal(t, t0.Add(time.Duration(helpers.MaxDurationSeconds)*time.Second).Unix(), longest.ExpiresAt)
}

func TestGasPolicies(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/gas-policies", issuer, gin.H{
		"name":              "Daily budget",
		"max_gas_per_tx":    100000,
		"max_gas_per_day":   150000,
		"allowed_contracts": []string{recipient.Hex()},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	gp := decode[GasPolicyResponse](t, w)
	assert.True(t, gp.Active)
	assert.Equal(t, []string{recipient.Hex()}, gp.AllowedContracts)

	grantBody := transferGrant(3600)
	grantBody["gas_policy_id"] = gp.ID
	grant := issueGrant(t, env, grantBody)
	authorize := func(gas uint64) *httptest.ResponseRecorder {
		return env.do(t, http.MethodPost, "/api/v1/session-keys/"+grant.ID+"/authorize", delegate, gin.H{
			"target":        recipient.Hex(),
			"estimated_gas": gas,
		})
	}

	assert.Equal(t, http.StatusOK, authorize(90000).Code)
	w = authorize(90000)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "gas_policy_exceeded", decode[DenialResponse](t, w).Code)

	w = env.do(t, http.MethodPatch, "/api/v1/gas-policies/"+gp.ID, stranger, gin.H{"active": false})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPatch, "/api/v1/gas-policies/"+gp.ID, issuer, gin.H{"active": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[GasPolicyResponse](t, w).Active)

	w = env.do(t, http.MethodPatch, "/api/v1/gas-policies/"+gp.ID, issuer, gin.H{"allowed_contracts": []string{"*"}, "max_gas_per_day": 500000})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[GasPolicyResponse](t, w)
	assert.Equal(t, []string{"*"}, updated.AllowedContracts)
	assert.Equal(t, uint64(500000), updated.MaxGasPerDay)

	w = env.do(t, http.MethodPatch, "/api/v1/gas-policies/"+gp.ID, issuer, gin.H{"max_gas_per_day": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/gas-policies", issuer, nil)
	assert.Len(t, decode[listBody[GasPolicyResponse]](t, w).Data, 1)
	w = env.do(t, http.MethodGet, "/api/v1/gas-policies", stranger, nil)
	assert.Empty(t, decode[listBody[GasPolicyResponse]](t, w).Data)

	w = env.do(t, http.MethodGet, "/api/v1/gas-policies/missing", issuer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type owner struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

func newOwner(t *testing.T) owner {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return owner{key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}
}

func (o owner) sign(t *testing.T, digest string) string {
	t.Helper()
	sig, err := multisig.SignDigest(o.key, common.HexToHash(digest))
	require.NoError(t, err)
	return hexutil.Encode(sig)
}

func TestMultisigLifecycle(t *testing.T) {
	env := newTestEnv(t)
	alice, bob, carol := newOwner(t), newOwner(t), newOwner(t)
	account := common.HexToAddress("0x5afe00000000000000000000000000000000cafe")

	initBody := gin.H{
		"account": account.Hex(),
		"owners": []gin.H{
			{"address": alice.addr.Hex(), "display_name": "Alice", "admin": true},
			{"address": bob.addr.Hex(), "display_name": "Bob"},
		},
		"threshold": 2,
	}

	// Listing yourself as an owner does not let you claim another account.
	w := env.do(t, http.MethodPost, "/api/v1/multisig", carol.addr, gin.H{
		"account":   account.Hex(),
		"owners":    []gin.H{{"address": carol.addr.Hex()}},
		"threshold": 1,
	})
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	assert.Equal(t, "unauthorized", decode[ErrorResponse](t, w).Code)

	w = env.do(t, http.MethodPost, "/api/v1/multisig", alice.addr, initBody)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/multisig", account, initBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cfg := decode[MultisigConfigResponse](t, w)
	assert.Equal(t, uint64(84532), cfg.ChainID)
	assert.Len(t, cfg.Owners, 2)

	w = env.do(t, http.MethodPost, "/api/v1/multisig", account, gin.H{
		"owners":    []gin.H{{"address": alice.addr.Hex()}},
		"threshold": 1,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/multisig/proposals", alice.addr, gin.H{
		"account":     account.Hex(),
		"action_type": "transfer",
		"title":       "Pay contractor",
		"target":      recipient.Hex(),
		"value":       "0.25",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode[ProposalResponse](t, w)
	assert.Equal(t, "250000000000000000", p.Value)
	assert.Equal(t, 2, p.RequiredSignatures)
	assert.Equal(t, t0.Add(7*24*time.Hour).Unix(), p.Deadline)
	assert.Equal(t, "partially_signed", p.Status.Kind)

	base := "/api/v1/multisig/proposals/" + p.ID

	w = env.do(t, http.MethodGet, base, carol.addr, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, base+"/sign", alice.addr, gin.H{"signature": alice.sign(t, p.Digest)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "partially_signed(1/2)", decode[ProposalResponse](t, w).Status.Label)

	w = env.do(t, http.MethodPost, base+"/execute", alice.addr, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "insufficient_signatures", decode[ErrorResponse](t, w).Code)

	// Bob's key signing for Carol's address does not recover.
	w = env.do(t, http.MethodPost, base+"/sign", bob.addr, gin.H{"signature": carol.sign(t, p.Digest)})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_signature", decode[ErrorResponse](t, w).Code)

	w = env.do(t, http.MethodPost, base+"/sign", bob.addr, gin.H{"signature": bob.sign(t, p.Digest)})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready_to_execute", decode[ProposalResponse](t, w).Status.Kind)

	w = env.do(t, http.MethodPost, base+"/sign", bob.addr, gin.H{"signature": bob.sign(t, p.Digest)})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, base+"/execute", carol.addr, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, base+"/execute", bob.addr, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	receipt := decode[ReceiptResponse](t, w)
	assert.Equal(t, recipient.Hex(), receipt.Target)
	require.NotNil(t, receipt.Submitted)
	assert.True(t, *receipt.Submitted)

	tasks := env.queue.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, dispatch.KindProposalReceipt, tasks[0].Kind)
	assert.Equal(t, account, tasks[0].Request.From)

	w = env.do(t, http.MethodGet, base, alice.addr, nil)
	got := decode[ProposalResponse](t, w)
	assert.Equal(t, "executed", got.Status.Kind)
	require.NotNil(t, got.Receipt)

	w = env.do(t, http.MethodPost, base+"/cancel", alice.addr, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/multisig/proposals?account="+account.Hex(), alice.addr, nil)
	assert.Empty(t, decode[listBody[ProposalResponse]](t, w).Data)
	w = env.do(t, http.MethodGet, "/api/v1/multisig/proposals?status=all&account="+account.Hex(), alice.addr, nil)
	assert.Len(t, decode[listBody[ProposalResponse]](t, w).Data, 1)

	w = env.do(t, http.MethodGet, "/api/v1/multisig?account="+account.Hex(), bob.addr, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint64(1), decode[MultisigConfigResponse](t, w).ProposalCount)
}

func TestMultisigCancelAndExpiry(t *testing.T) {
	env := newTestEnv(t)
	alice, bob := newOwner(t), newOwner(t)

	// The caller is the multisig account itself when none is named.
	w := env.do(t, http.MethodPost, "/api/v1/multisig", alice.addr, gin.H{
		"owners":    []gin.H{{"address": alice.addr.Hex(), "admin": true}, {"address": bob.addr.Hex()}},
		"threshold": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	propose := func(as owner, body gin.H) ProposalResponse {
		body["account"] = alice.addr.Hex()
		w := env.do(t, http.MethodPost, "/api/v1/multisig/proposals", as.addr, body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return decode[ProposalResponse](t, w)
	}

	byBob := propose(bob, gin.H{"action_type": "changeThreshold", "title": "Raise", "new_threshold": 2})
	w = env.do(t, http.MethodPost, "/api/v1/multisig/proposals/"+byBob.ID+"/cancel", alice.addr, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cancelled := decode[ProposalResponse](t, w)
	assert.Equal(t, "cancelled", cancelled.Status.Kind)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, alice.addr.Hex(), *cancelled.CancelledBy)

	byAlice := propose(alice, gin.H{"action_type": "transfer", "title": "Pay", "target": recipient.Hex(), "value_wei": "1", "expires_in_seconds": 60})
	w = env.do(t, http.MethodPost, "/api/v1/multisig/proposals/"+byAlice.ID+"/cancel", bob.addr, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	env.clock.Advance(2 * time.Minute)
	w = env.do(t, http.MethodPost, "/api/v1/multisig/proposals/"+byAlice.ID+"/sign", alice.addr, gin.H{"signature": alice.sign(t, byAlice.Digest)})
	assert.Equal(t, http.StatusGone, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/multisig/proposals/"+byAlice.ID, bob.addr, nil)
	assert.Equal(t, "expired", decode[ProposalResponse](t, w).Status.Kind)

	tests := []struct {
		name string
		body gin.H
	}{
		{name: "unknown action", body: gin.H{"action_type": "mint", "title": "x"}},
		{name: "bad target", body: gin.H{"action_type": "transfer", "title": "x", "target": "0x12", "value": "1"}},
		{name: "bad data", body: gin.H{"action_type": "custom", "title": "x", "target": recipient.Hex(), "data": "zz"}},
		{name: "past deadline", body: gin.H{"action_type": "transfer", "title": "x", "target": recipient.Hex(), "value": "1", "deadline": t0.Unix()}},
		{name: "transfer without value", body: gin.H{"action_type": "transfer", "title": "x", "target": recipient.Hex()}},
		{name: "lifetime past duration range", body: gin.H{"action_type": "transfer", "title": "x", "target": recipient.Hex(), "value": "1", "expires_in_seconds": 18446744074}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.body["account"] = alice.addr.Hex()
			w := env.do(t, http.MethodPost, "/api/v1/multisig/proposals", alice.addr, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type breaker struct{ open bool }

func (b breaker) CircuitOpen() bool { return b.open }
func (b breaker) PendingCount() int { return 3 }

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		handler    *HealthHandler
		wantCode   int
		wantStatus string
	}{
		{name: "no dependencies", handler: NewHealthHandler(nil, nil), wantCode: http.StatusOK, wantStatus: "ok"},
		{name: "database down", handler: NewHealthHandler(pinger{err: errors.New("dial tcp")}, nil), wantCode: http.StatusServiceUnavailable, wantStatus: "unavailable"},
		{name: "wallet breaker open", handler: NewHealthHandler(pinger{}, breaker{open: true}), wantCode: http.StatusOK, wantStatus: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", tt.handler.Health)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantStatus, decode[HealthResponse](t, w).Status)
		})
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantTag  string
	}{
		{name: "denial expired", err: &session.Denial{Reason: session.ErrExpired}, wantCode: http.StatusForbidden, wantTag: "grant_expired"},
		{name: "denial capability", err: &session.Denial{Reason: session.ErrNoMatchingCapability}, wantCode: http.StatusForbidden, wantTag: "no_matching_capability"},
		{name: "grant not found", err: session.ErrGrantNotFound, wantCode: http.StatusNotFound, wantTag: "not_found"},
		{name: "unauthorized", err: fmt.Errorf("x: %w", policy.ErrUnauthorized), wantCode: http.StatusForbidden, wantTag: "unauthorized"},
		{name: "not an owner", err: multisig.ErrNotAnOwner, wantCode: http.StatusForbidden, wantTag: "unauthorized"},
		{name: "proposal expired", err: multisig.ErrExpired, wantCode: http.StatusGone, wantTag: "expired"},
		{name: "config change", err: &multisig.QuorumError{Reason: multisig.ErrInvalidConfigChange}, wantCode: http.StatusConflict, wantTag: "invalid_config_change"},
		{name: "capability", err: &capability.CapabilityError{Field: "kind"}, wantCode: http.StatusBadRequest, wantTag: "invalid_capability"},
		{name: "corrupt", err: fmt.Errorf("%w: grant g", policy.ErrCorruptRecord), wantCode: http.StatusInternalServerError, wantTag: "corrupt_record"},
		{name: "unknown", err: errors.New("boom"), wantCode: http.StatusInternalServerError, wantTag: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, tag := errorStatus(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantTag, tag)
		})
	}
}
