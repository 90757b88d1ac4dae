package session_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/audit"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/capability"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/session"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitLogger("test")
}

var (
	issuer   = common.HexToAddress("0x1000000000000000000000000000000000000001")
	delegate = common.HexToAddress("0x2000000000000000000000000000000000000002")
	stranger = common.HexToAddress("0x3000000000000000000000000000000000000003")
	routerA  = common.HexToAddress("0xAAAA00000000000000000000000000000000AAAA")
	routerB  = common.HexToAddress("0xBBBB00000000000000000000000000000000BBBB")

	swapSelector = capability.MustParseSelector("0x38ed1739")

	t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func ether(n float64) *big.Int {
	f := new(big.Float).Mul(big.NewFloat(n), big.NewFloat(1e18))
	wei, _ := f.Int(nil)
	return wei
}

type fixture struct {
	grants     *session.MemoryGrantRepository
	policies   *session.MemoryGasPolicyRepository
	recorder   *audit.Recorder
	store      *session.GrantStore
	authorizer *session.Authorizer
	registry   *session.GasPolicyRegistry
}

func newFixture() *fixture {
	f := &fixture{
		grants:   session.NewMemoryGrantRepository(),
		policies: session.NewMemoryGasPolicyRepository(),
		recorder: &audit.Recorder{},
	}
	f.store = session.NewGrantStore(f.grants, f.policies, f.recorder)
	f.authorizer = session.NewAuthorizer(f.store, f.recorder)
	f.registry = session.NewGasPolicyRegistry(f.policies)
	return f
}

func swapCapability() capability.Capability {
	target := routerA
	sel := swapSelector
	return capability.Capability{
		Kind:            capability.KindContractCall,
		Target:          &target,
		Selector:        &sel,
		MaxValuePerCall: ether(1),
		Description:     "swap on router A",
	}
}

func swapOp(target common.Address, value *big.Int) capability.Operation {
	sel := swapSelector
	return capability.Operation{
		Target:        target,
		Selector:      &sel,
		Value:         value,
		EstimatedGas:  150000,
		ActingAddress: delegate,
	}
}

func issueSwapGrant(t *testing.T, f *fixture, ttl time.Duration) *session.Grant {
	t.Helper()
	g, err := f.store.Issue(context.Background(), t0, session.IssueParams{
		Issuer:       issuer,
		Delegate:     delegate,
		Capabilities: []capability.Capability{swapCapability()},
		TTL:          ttl,
		Name:         "DeFi Trading",
	})
	require.NoError(t, err)
	return g
}
