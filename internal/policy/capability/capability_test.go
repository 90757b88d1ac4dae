package capability_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/cyphera/cyphera-wallet-policy/internal/policy/capability"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tokenAddr = common.HexToAddress("0x00000000000000000000000000000000000000A1")
	otherAddr = common.HexToAddress("0x00000000000000000000000000000000000000B2")
)

func addrPtr(a common.Address) *common.Address { return &a }

func selPtr(s capability.Selector) *capability.Selector { return &s }

func gasPtr(g uint64) *uint64 { return &g }

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cap     capability.Capability
		wantErr bool
		field   string
	}{
		{
			name: "native transfer with value cap",
			cap: capability.Capability{
				Kind:            capability.KindNativeTransfer,
				MaxValuePerCall: big.NewInt(1000),
			},
		},
		{
			name: "contract call with target and selector",
			cap: capability.Capability{
				Kind:     capability.KindContractCall,
				Target:   addrPtr(tokenAddr),
				Selector: selPtr(capability.SelectorApprove),
			},
		},
		{
			name: "contract call with explicit any selector",
			cap: capability.Capability{
				Kind:        capability.KindContractCall,
				Target:      addrPtr(tokenAddr),
				AnySelector: true,
			},
		},
		{
			name: "contract call selector on any target",
			cap: capability.Capability{
				Kind:     capability.KindContractCall,
				Selector: selPtr(capability.SelectorApprove),
			},
		},
		{
			name:    "contract call with neither target nor selector",
			cap:     capability.Capability{Kind: capability.KindContractCall},
			wantErr: true,
			field:   "target",
		},
		{
			name: "contract call missing selector without opt-in",
			cap: capability.Capability{
				Kind:   capability.KindContractCall,
				Target: addrPtr(tokenAddr),
			},
			wantErr: true,
			field:   "selector",
		},
		{
			name: "any selector combined with selector",
			cap: capability.Capability{
				Kind:        capability.KindContractCall,
				Target:      addrPtr(tokenAddr),
				Selector:    selPtr(capability.SelectorApprove),
				AnySelector: true,
			},
			wantErr: true,
			field:   "any_selector",
		},
		{
			name: "any selector on native transfer",
			cap: capability.Capability{
				Kind:        capability.KindNativeTransfer,
				AnySelector: true,
			},
			wantErr: true,
			field:   "any_selector",
		},
		{
			name: "zero value cap",
			cap: capability.Capability{
				Kind:            capability.KindNativeTransfer,
				MaxValuePerCall: big.NewInt(0),
			},
			wantErr: true,
			field:   "max_value_per_call",
		},
		{
			name: "zero gas cap",
			cap: capability.Capability{
				Kind:          capability.KindNativeTransfer,
				MaxGasPerCall: gasPtr(0),
			},
			wantErr: true,
			field:   "max_gas_per_call",
		},
		{
			name:    "unknown kind",
			cap:     capability.Capability{Kind: "teleport"},
			wantErr: true,
			field:   "kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := capability.Validate(tt.cap)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, capability.ErrInvalidCapability))

			var capErr *capability.CapabilityError
			require.True(t, errors.As(err, &capErr))
			assert.Equal(t, tt.field, capErr.Field)
			assert.Equal(t, -1, capErr.Index)
		})
	}
}

func TestValidateAll_ReportsIndex(t *testing.T) {
	caps := []capability.Capability{
		{Kind: capability.KindNativeTransfer},
		{Kind: capability.KindContractCall},
	}

	err := capability.ValidateAll(caps)
	require.Error(t, err)

	var capErr *capability.CapabilityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, 1, capErr.Index)
	assert.Contains(t, err.Error(), "invalid capability 1")
}

func TestPermits(t *testing.T) {
	approveData, err := capability.EncodeCall(capability.SelectorApprove,
		capability.AddressArg(otherAddr), capability.Uint256Arg(big.NewInt(5)))
	require.NoError(t, err)

	transferSel := capability.SelectorFromSignature("transfer(address,uint256)")
	transferData, err := capability.EncodeCall(transferSel,
		capability.AddressArg(otherAddr), capability.Uint256Arg(big.NewInt(5)))
	require.NoError(t, err)

	tests := []struct {
		name string
		cap  capability.Capability
		op   capability.Operation
		want bool
	}{
		{
			name: "native transfer within value cap",
			cap:  capability.Capability{Kind: capability.KindNativeTransfer, MaxValuePerCall: big.NewInt(100)},
			op:   capability.Operation{Target: otherAddr, Value: big.NewInt(100)},
			want: true,
		},
		{
			name: "native transfer over value cap",
			cap:  capability.Capability{Kind: capability.KindNativeTransfer, MaxValuePerCall: big.NewInt(100)},
			op:   capability.Operation{Target: otherAddr, Value: big.NewInt(101)},
			want: false,
		},
		{
			name: "native transfer to wrong recipient",
			cap:  capability.Capability{Kind: capability.KindNativeTransfer, Target: addrPtr(tokenAddr)},
			op:   capability.Operation{Target: otherAddr, Value: big.NewInt(1)},
			want: false,
		},
		{
			name: "native capability does not cover contract call",
			cap:  capability.Capability{Kind: capability.KindNativeTransfer},
			op:   capability.Operation{Target: tokenAddr, Data: transferData},
			want: false,
		},
		{
			name: "contract call covers approval with matching selector",
			cap: capability.Capability{
				Kind: capability.KindContractCall, Target: addrPtr(tokenAddr),
				Selector: selPtr(capability.SelectorApprove),
			},
			op:   capability.Operation{Target: tokenAddr, Data: approveData},
			want: true,
		},
		{
			name: "selector mismatch",
			cap: capability.Capability{
				Kind: capability.KindContractCall, Target: addrPtr(tokenAddr),
				Selector: selPtr(capability.SelectorApprove),
			},
			op:   capability.Operation{Target: tokenAddr, Data: transferData},
			want: false,
		},
		{
			name: "any selector on target",
			cap:  capability.Capability{Kind: capability.KindContractCall, Target: addrPtr(tokenAddr), AnySelector: true},
			op:   capability.Operation{Target: tokenAddr, Data: transferData},
			want: true,
		},
		{
			name: "token approval capability does not cover generic call",
			cap:  capability.Capability{Kind: capability.KindTokenApproval, Target: addrPtr(tokenAddr)},
			op:   capability.Operation{Target: tokenAddr, Data: transferData},
			want: false,
		},
		{
			name: "gas cap exceeded",
			cap:  capability.Capability{Kind: capability.KindNativeTransfer, MaxGasPerCall: gasPtr(21000)},
			op:   capability.Operation{Target: otherAddr, EstimatedGas: 21001},
			want: false,
		},
		{
			name: "declared custom kind",
			cap:  capability.Capability{Kind: capability.KindCustom},
			op:   capability.Operation{Target: otherAddr, Data: transferData, Kind: capability.KindCustom},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cap.Permits(tt.op))
		})
	}
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name string
		op   capability.Operation
		want capability.Kind
	}{
		{"no data", capability.Operation{Target: otherAddr}, capability.KindNativeTransfer},
		{"short data", capability.Operation{Data: []byte{0x01, 0x02}}, capability.KindContractCall},
		{"empty data", capability.Operation{Data: []byte{}}, capability.KindNativeTransfer},
		{"approve", capability.Operation{Data: capability.SelectorApprove[:]}, capability.KindTokenApproval},
		{"set approval for all", capability.Operation{Data: capability.SelectorSetApprovalForAll[:]}, capability.KindTokenApproval},
		{"erc721 safe transfer", capability.Operation{Data: capability.SelectorSafeTransferFrom[:]}, capability.KindNftTransfer},
		{"erc1155 transfer", capability.Operation{Data: capability.SelectorERC1155Transfer[:]}, capability.KindNftTransfer},
		{"other selector", capability.Operation{Data: capability.SelectorAddOwner[:]}, capability.KindContractCall},
		{"explicit selector overrides data", capability.Operation{
			Data:     capability.SelectorAddOwner[:],
			Selector: selPtr(capability.SelectorApprove),
		}, capability.KindTokenApproval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, capability.InferKind(tt.op))
		})
	}
}

func TestCapabilityClone(t *testing.T) {
	orig := capability.Capability{
		Kind:            capability.KindContractCall,
		Target:          addrPtr(tokenAddr),
		Selector:        selPtr(capability.SelectorApprove),
		MaxValuePerCall: big.NewInt(10),
		MaxGasPerCall:   gasPtr(50000),
	}

	clone := orig.Clone()
	clone.MaxValuePerCall.SetInt64(99)
	*clone.Target = otherAddr
	*clone.MaxGasPerCall = 1

	assert.Equal(t, int64(10), orig.MaxValuePerCall.Int64())
	assert.Equal(t, tokenAddr, *orig.Target)
	assert.Equal(t, uint64(50000), *orig.MaxGasPerCall)
}

func TestCapabilityJSON(t *testing.T) {
	orig := capability.Capability{
		ID:              "cap-1",
		Kind:            capability.KindContractCall,
		Target:          addrPtr(tokenAddr),
		Selector:        selPtr(capability.SelectorApprove),
		MaxValuePerCall: new(big.Int).Lsh(big.NewInt(1), 100),
	}

	raw, err := orig.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"selector":"0x095ea7b3"`)
	assert.Contains(t, string(raw), `"max_value_per_call":"1267650600228229401496703205376"`)

	var decoded capability.Capability
	require.NoError(t, decoded.UnmarshalJSON(raw))
	assert.Equal(t, orig.ID, decoded.ID)
	assert.Equal(t, *orig.Target, *decoded.Target)
	assert.Equal(t, *orig.Selector, *decoded.Selector)
	assert.Equal(t, 0, orig.MaxValuePerCall.Cmp(decoded.MaxValuePerCall))
}

func TestParseKind(t *testing.T) {
	k, err := capability.ParseKind("transfer")
	require.NoError(t, err)
	assert.Equal(t, capability.KindNativeTransfer, k)

	k, err = capability.ParseKind(" Contract_Call ")
	require.NoError(t, err)
	assert.Equal(t, capability.KindContractCall, k)

	_, err = capability.ParseKind("swap")
	assert.Error(t, err)
}

func TestKindCovers(t *testing.T) {
	assert.True(t, capability.KindContractCall.Covers(capability.KindTokenApproval))
	assert.True(t, capability.KindContractCall.Covers(capability.KindNftTransfer))
	assert.False(t, capability.KindContractCall.Covers(capability.KindNativeTransfer))
	assert.False(t, capability.KindContractCall.Covers(capability.KindCustom))
	assert.False(t, capability.KindTokenApproval.Covers(capability.KindContractCall))
}
