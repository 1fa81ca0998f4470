package id

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
)

var (
	eip155ChainPattern = regexp.MustCompile(`^eip155:[0-9]+$`)
	evmAddressPattern  = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	eip155AssetPattern = regexp.MustCompile(`^eip155:[0-9]+/erc20:0x[0-9a-fA-F]{40}$`)
)

// NativeAssetAddress is the sentinel that stands for the chain's base currency.
// It is never a token contract and must be swapped for the wrapped token before
// any pool lookup.
var NativeAssetAddress = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

func IsNative(addr common.Address) bool {
	return addr == NativeAssetAddress
}

type Chain struct {
	Name         string
	Slug         string
	CAIP2        string
	EVMChainID   int64
	NativeSymbol string
}

type Asset struct {
	ChainID  string
	AssetID  string
	Address  common.Address
	Symbol   string
	Decimals int
	Native   bool
}

type Token struct {
	Symbol   string
	Address  string
	Decimals int
}

var chainBySlug = map[string]Chain{
	"plume":         {Name: "Plume", Slug: "plume", CAIP2: "eip155:98866", EVMChainID: 98866, NativeSymbol: "PLUME"},
	"plume-mainnet": {Name: "Plume", Slug: "plume", CAIP2: "eip155:98866", EVMChainID: 98866, NativeSymbol: "PLUME"},
	"plume-testnet": {Name: "Plume Testnet", Slug: "plume-testnet", CAIP2: "eip155:98867", EVMChainID: 98867, NativeSymbol: "PLUME"},
	"ethereum":      {Name: "Ethereum", Slug: "ethereum", CAIP2: "eip155:1", EVMChainID: 1, NativeSymbol: "ETH"},
	"mainnet":       {Name: "Ethereum", Slug: "ethereum", CAIP2: "eip155:1", EVMChainID: 1, NativeSymbol: "ETH"},
}

var chainByID = map[int64]Chain{
	1:     chainBySlug["ethereum"],
	98866: chainBySlug["plume"],
	98867: chainBySlug["plume-testnet"],
}

// Bootstrap token table for the deployments shipped with the CLI.
var tokenRegistry = map[string][]Token{
	"eip155:98866": {
		{Symbol: "WPLUME", Address: "0x626613B473F7eF65747967017C11225436EFaEd7", Decimals: 18},
		{Symbol: "NRWA", Address: "0x81537d879ACc8a290a1846635a0cAA908f8ca3a6", Decimals: 6},
		{Symbol: "PETH", Address: "0xD630fb6A07c9c723cf709d2DaA9B63325d0E0B73", Decimals: 18},
		{Symbol: "NELIXIR", Address: "0x9fbC367B9Bb966a2A537989817A088AFCaFFDC4c", Decimals: 6},
		{Symbol: "NYIELD", Address: "0x892DFf5257B39f7afB7803dd7C81E8ECDB6af3E8", Decimals: 6},
		{Symbol: "PUSD", Address: "0xdddD73F5Df1F0DC31373357beAC77545dC5A6f3F", Decimals: 6},
		{Symbol: "NTBILL", Address: "0xE72Fe64840F4EF80E3Ec73a1c749491b5c938CB9", Decimals: 6},
	},
}

func ParseChain(input string) (Chain, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Chain{}, clierr.New(clierr.CodeUsage, "chain is required")
	}
	norm := strings.ToLower(raw)

	if chain, ok := chainBySlug[norm]; ok {
		return chain, nil
	}

	var chainID int64
	switch {
	case eip155ChainPattern.MatchString(norm):
		chainID, _ = strconv.ParseInt(strings.TrimPrefix(norm, "eip155:"), 10, 64)
	default:
		n, err := strconv.ParseInt(norm, 10, 64)
		if err != nil || n <= 0 {
			return Chain{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("unsupported chain input: %s", input))
		}
		chainID = n
	}
	if known, ok := chainByID[chainID]; ok {
		return known, nil
	}
	return Chain{
		Name:         fmt.Sprintf("EVM-%d", chainID),
		Slug:         fmt.Sprintf("evm-%d", chainID),
		CAIP2:        fmt.Sprintf("eip155:%d", chainID),
		EVMChainID:   chainID,
		NativeSymbol: "ETH",
	}, nil
}

// ParseAsset accepts a 0x address, a CAIP-19 erc20 asset id, a known symbol, or
// "native" / the chain's native symbol for the base currency.
func ParseAsset(input string, chain Chain) (Asset, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Asset{}, clierr.New(clierr.CodeUsage, "asset is required")
	}
	if strings.EqualFold(raw, "native") || (chain.NativeSymbol != "" && strings.EqualFold(raw, chain.NativeSymbol)) {
		return nativeAsset(chain), nil
	}

	if strings.Contains(raw, "/") {
		if !eip155AssetPattern.MatchString(raw) {
			return Asset{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("invalid CAIP-19 asset format: %s", input))
		}
		parts := strings.SplitN(raw, "/", 2)
		if parts[0] != chain.CAIP2 {
			return Asset{}, clierr.New(clierr.CodeUsage, "asset chain does not match --chain")
		}
		raw = strings.TrimPrefix(parts[1], "erc20:")
	}

	if evmAddressPattern.MatchString(raw) {
		addr := common.HexToAddress(raw)
		if IsNative(addr) {
			return nativeAsset(chain), nil
		}
		token, _ := LookupByAddress(chain.CAIP2, addr)
		return Asset{
			ChainID:  chain.CAIP2,
			AssetID:  canonicalAssetID(chain.CAIP2, addr),
			Address:  addr,
			Symbol:   token.Symbol,
			Decimals: token.Decimals,
		}, nil
	}

	matches := findTokensBySymbol(chain.CAIP2, raw)
	if len(matches) == 0 {
		return Asset{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("symbol %s not found in registry for chain %s", input, chain.CAIP2))
	}
	if len(matches) > 1 {
		addresses := make([]string, 0, len(matches))
		for _, m := range matches {
			addresses = append(addresses, m.Address)
		}
		sort.Strings(addresses)
		return Asset{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("symbol %s is ambiguous on chain %s, use an address (%s)", input, chain.CAIP2, strings.Join(addresses, ", ")))
	}
	t := matches[0]
	addr := common.HexToAddress(t.Address)
	return Asset{
		ChainID:  chain.CAIP2,
		AssetID:  canonicalAssetID(chain.CAIP2, addr),
		Address:  addr,
		Symbol:   t.Symbol,
		Decimals: t.Decimals,
	}, nil
}

func nativeAsset(chain Chain) Asset {
	return Asset{
		ChainID:  chain.CAIP2,
		AssetID:  fmt.Sprintf("%s/slip44:native", chain.CAIP2),
		Address:  NativeAssetAddress,
		Symbol:   chain.NativeSymbol,
		Decimals: 18,
		Native:   true,
	}
}

func canonicalAssetID(chainID string, address common.Address) string {
	return fmt.Sprintf("%s/erc20:%s", chainID, strings.ToLower(address.Hex()))
}

func findTokensBySymbol(chainID, symbol string) []Token {
	matches := []Token{}
	for _, t := range tokenRegistry[chainID] {
		if strings.EqualFold(t.Symbol, symbol) {
			matches = append(matches, t)
		}
	}
	return matches
}

func KnownToken(chainID, symbol string) (Token, bool) {
	matches := findTokensBySymbol(chainID, symbol)
	if len(matches) != 1 {
		return Token{}, false
	}
	return matches[0], true
}

func LookupByAddress(chainID string, address common.Address) (Token, bool) {
	for _, t := range tokenRegistry[chainID] {
		if common.HexToAddress(t.Address) == address {
			return t, true
		}
	}
	return Token{}, false
}

// SymbolOf returns the registered symbol for address, or its checksummed hex.
func SymbolOf(chainID string, address common.Address) string {
	if IsNative(address) {
		return "native"
	}
	if t, ok := LookupByAddress(chainID, address); ok {
		return t.Symbol
	}
	return address.Hex()
}
