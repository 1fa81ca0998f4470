package id

import (
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strings"

	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
	"github.com/shopspring/decimal"
)

var decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// HealthFactorDecimals is the fixed-point scale the looping contracts use for
// targetHealthFactor (1.2 is sent as 12000).
const HealthFactorDecimals = 4

// NormalizeAmount resolves either a base-unit integer or a decimal amount into
// base units. It returns the base units and the canonical decimal rendering.
func NormalizeAmount(baseUnits, amountDecimal string, decimals int) (*big.Int, string, error) {
	baseUnits = strings.TrimSpace(baseUnits)
	amountDecimal = strings.TrimSpace(amountDecimal)
	if baseUnits != "" && amountDecimal != "" {
		return nil, "", clierr.New(clierr.CodeUsage, "use either --amount or --amount-decimal, not both")
	}
	if baseUnits == "" && amountDecimal == "" {
		return nil, "", clierr.New(clierr.CodeUsage, "amount is required")
	}
	if decimals < 0 {
		return nil, "", clierr.New(clierr.CodeUsage, "decimals must be >= 0")
	}

	if baseUnits != "" {
		base, err := ParseBaseUnits(baseUnits)
		if err != nil {
			return nil, "", err
		}
		return base, FormatDecimal(base, decimals), nil
	}

	if !decimalPattern.MatchString(amountDecimal) {
		return nil, "", clierr.New(clierr.CodeUsage, "--amount-decimal must be in decimal form like 1.23")
	}
	d, err := decimal.NewFromString(amountDecimal)
	if err != nil {
		return nil, "", clierr.Wrap(clierr.CodeUsage, "invalid decimal amount", err)
	}
	if -d.Exponent() > int32(decimals) {
		return nil, "", clierr.New(clierr.CodeUsage, fmt.Sprintf("decimal precision exceeds token decimals (%d)", decimals))
	}
	base := d.Shift(int32(decimals)).BigInt()
	return base, FormatDecimal(base, decimals), nil
}

// ParseBaseUnits parses a non-negative integer amount in base units.
func ParseBaseUnits(v string) (*big.Int, error) {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "-") {
		return nil, clierr.New(clierr.CodeUsage, "--amount must be non-negative")
	}
	n, ok := new(big.Int).SetString(v, 10)
	if !ok {
		return nil, clierr.New(clierr.CodeUsage, "--amount must be a positive integer string")
	}
	return n, nil
}

// FormatDecimal renders base units as a decimal string without trailing zeros.
func FormatDecimal(baseUnits *big.Int, decimals int) string {
	if baseUnits == nil {
		return "0"
	}
	return decimal.NewFromBigInt(baseUnits, -int32(decimals)).String()
}

// ParseHealthFactor converts a ratio such as "1.2" into the contract's uint16
// fixed-point representation.
func ParseHealthFactor(input string) (uint16, error) {
	raw := strings.TrimSpace(input)
	if !decimalPattern.MatchString(raw) {
		return 0, clierr.New(clierr.CodeUsage, "--health-factor must be a decimal ratio like 1.2")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, clierr.Wrap(clierr.CodeUsage, "invalid health factor", err)
	}
	if d.LessThan(decimal.NewFromInt(1)) {
		return 0, clierr.New(clierr.CodeUsage, "--health-factor must be at least 1")
	}
	scaled := d.Shift(HealthFactorDecimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, clierr.New(clierr.CodeUsage, fmt.Sprintf("--health-factor supports at most %d decimal places", HealthFactorDecimals))
	}
	if scaled.GreaterThan(decimal.NewFromInt(math.MaxUint16)) {
		return 0, clierr.New(clierr.CodeUsage, "--health-factor is too large")
	}
	return uint16(scaled.IntPart()), nil
}

// FormatHealthFactor is the inverse of ParseHealthFactor.
func FormatHealthFactor(v uint16) string {
	return decimal.New(int64(v), -HealthFactorDecimals).String()
}
