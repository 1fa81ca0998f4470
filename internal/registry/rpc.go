package registry

import (
	"fmt"
	"strings"
)

// Default EVM RPC endpoints by chain ID, used whenever neither config nor
// --rpc-url provide one.
var defaultRPCByChainID = map[int64]string{
	1:     "https://eth.llamarpc.com",
	98866: "https://rpc.plume.org",
	98867: "https://testnet-rpc.plume.org",
}

func DefaultRPCURL(chainID int64) (string, bool) {
	value, ok := defaultRPCByChainID[chainID]
	return value, ok
}

func ResolveRPCURL(override string, chainID int64) (string, error) {
	if strings.TrimSpace(override) != "" {
		return strings.TrimSpace(override), nil
	}
	if value, ok := DefaultRPCURL(chainID); ok {
		return value, nil
	}
	return "", fmt.Errorf("no default rpc configured for chain id %d; provide --rpc-url", chainID)
}
