package helpers

import (
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// weiPerEther is 10^18 as a decimal, used to scale human ETH amounts
var weiPerEther = decimal.New(1, 18)

// MaxDurationSeconds is the largest whole number of seconds a
// time.Duration can hold.
const MaxDurationSeconds = math.MaxInt64 / int64(time.Second)

// SecondsToDuration converts a request field given in seconds. Values whose
// magnitude exceeds MaxDurationSeconds are rejected instead of wrapping.
func SecondsToDuration(field string, seconds int64) (time.Duration, error) {
	if seconds > MaxDurationSeconds || seconds < -MaxDurationSeconds {
		return 0, fmt.Errorf("%s must not exceed %d seconds", field, MaxDurationSeconds)
	}
	return time.Duration(seconds) * time.Second, nil
}

// IsAddressValid checks if the provided string is a valid Ethereum address
// It verifies:
// 1. The address is exactly 42 characters long (including 0x prefix)
// 2. The address starts with "0x"
// 3. The remaining 40 characters are valid hexadecimal
func IsAddressValid(address string) bool {
	if len(address) != 42 {
		return false
	}
	if !strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "0X") {
		return false
	}
	return common.IsHexAddress(address)
}

// ParseAddress validates and converts a hex string into an address.
// Comparison of the result is case-insensitive since the checksum casing
// is discarded.
func ParseAddress(address string) (common.Address, error) {
	address = strings.TrimSpace(address)
	if !IsAddressValid(address) {
		return common.Address{}, fmt.Errorf("invalid address: %q", address)
	}
	return common.HexToAddress(address), nil
}

// ParseOptionalAddress returns nil for an empty string.
func ParseOptionalAddress(address string) (*common.Address, error) {
	if strings.TrimSpace(address) == "" {
		return nil, nil
	}
	parsed, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// ParseEtherAmount converts a human readable ETH amount ("0.5") into wei.
// Amounts with more than 18 fractional digits or negative amounts are rejected.
func ParseEtherAmount(amount string) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return big.NewInt(0), nil
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if value.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative: %s", amount)
	}

	wei := value.Mul(weiPerEther)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, fmt.Errorf("amount %s has more than 18 decimal places", amount)
	}
	return wei.BigInt(), nil
}

// FormatEtherAmount renders wei as an ETH decimal string without trailing zeros.
func FormatEtherAmount(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -18).String()
}
