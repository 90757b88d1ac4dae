package capability

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Argument is one typed ABI argument, e.g. {"address", addr}.
type Argument struct {
	Type  string
	Value interface{}
}

// AddressArg wraps an address argument.
func AddressArg(a common.Address) Argument {
	return Argument{Type: "address", Value: a}
}

// Uint256Arg wraps a uint256 argument.
func Uint256Arg(n *big.Int) Argument {
	return Argument{Type: "uint256", Value: n}
}

// BytesArg wraps a dynamic bytes argument.
func BytesArg(b []byte) Argument {
	return Argument{Type: "bytes", Value: b}
}

// EncodeCall builds call data from a selector and its ABI arguments.
func EncodeCall(sel Selector, args ...Argument) ([]byte, error) {
	arguments, err := argumentsFor(typesOf(args))
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, len(args))
	for i, a := range args {
		values[i] = a.Value
	}

	packed, err := arguments.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack arguments for %s: %w", sel, err)
	}

	data := make([]byte, 0, SelectorLength+len(packed))
	data = append(data, sel[:]...)
	return append(data, packed...), nil
}

// DecodeArgs splits call data into its selector and decoded arguments.
func DecodeArgs(data []byte, types ...string) (Selector, []interface{}, error) {
	sel, ok := SelectorOf(data)
	if !ok {
		return sel, nil, fmt.Errorf("call data too short: %d bytes", len(data))
	}

	arguments, err := argumentsFor(types)
	if err != nil {
		return sel, nil, err
	}

	values, err := arguments.Unpack(data[SelectorLength:])
	if err != nil {
		return sel, nil, fmt.Errorf("failed to unpack arguments for %s: %w", sel, err)
	}
	return sel, values, nil
}

// DecodeAddressCall decodes call data of the form f(address) and checks
// the selector.
func DecodeAddressCall(data []byte, want Selector) (common.Address, error) {
	sel, values, err := DecodeArgs(data, "address")
	if err != nil {
		return common.Address{}, err
	}
	if sel != want {
		return common.Address{}, fmt.Errorf("unexpected selector %s, want %s", sel, want)
	}
	addr, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("argument is %T, not an address", values[0])
	}
	return addr, nil
}

// DecodeUint256Call decodes call data of the form f(uint256) and checks
// the selector.
func DecodeUint256Call(data []byte, want Selector) (*big.Int, error) {
	sel, values, err := DecodeArgs(data, "uint256")
	if err != nil {
		return nil, err
	}
	if sel != want {
		return nil, fmt.Errorf("unexpected selector %s, want %s", sel, want)
	}
	n, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("argument is %T, not a uint256", values[0])
	}
	return n, nil
}

func typesOf(args []Argument) []string {
	types := make([]string, len(args))
	for i, a := range args {
		types[i] = a.Type
	}
	return types
}

func argumentsFor(types []string) (abi.Arguments, error) {
	arguments := make(abi.Arguments, len(types))
	for i, t := range types {
		abiType, err := abi.NewType(t, "", nil)
		if err != nil {
			return nil, fmt.Errorf("unsupported ABI type %q: %w", t, err)
		}
		arguments[i] = abi.Argument{Type: abiType}
	}
	return arguments, nil
}
