package looping

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/loop-cli/internal/route"
	"github.com/stretchr/testify/require"
)

var (
	user        = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	looping     = common.HexToAddress("0x0000000000000000000000000000000000000100")
	gateway     = common.HexToAddress("0x0000000000000000000000000000000000000200")
	wrapped     = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	wrappedDebt = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	tokenX      = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	tokenY      = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	tokenZ      = common.HexToAddress("0x00000000000000000000000000000000000000b3")
	usd         = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	unlisted    = common.HexToAddress("0x00000000000000000000000000000000000000e9")
	debtX       = common.HexToAddress("0x00000000000000000000000000000000000000d2")

	poolWrappedUSD = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	poolXUSD       = common.HexToAddress("0x00000000000000000000000000000000000000f2")
	poolYUSD       = common.HexToAddress("0x00000000000000000000000000000000000000f3")
)

func testTables() route.Tables {
	viaUSD := func(first, second common.Address) []route.Hop {
		return []route.Hop{{Pool: first, TokenAIn: true}, {Pool: second, TokenAIn: false}}
	}
	return route.Tables{
		SingleHop: []route.SingleHopPool{
			{TokenA: wrapped, TokenB: usd, Pool: poolWrappedUSD},
			{TokenA: tokenX, TokenB: usd, Pool: poolXUSD},
			{TokenA: tokenY, TokenB: usd, Pool: poolYUSD},
		},
		MultiHop: []route.MultiHopPool{
			{TokenA: tokenX, TokenB: tokenY, Hops: viaUSD(poolXUSD, poolYUSD)},
			{TokenA: wrapped, TokenB: tokenX, Hops: viaUSD(poolWrappedUSD, poolXUSD)},
			{TokenA: tokenX, TokenB: wrapped, Hops: viaUSD(poolXUSD, poolWrappedUSD)},
		},
		Special: []route.SpecialPair{
			{Supply: tokenX, Borrow: usd, Tag: route.TagNRWA},
			{Supply: tokenZ, Borrow: usd, Tag: route.TagSPLUME},
			{Supply: wrapped, Borrow: tokenY, Tag: route.TagNINSTO},
			{Supply: tokenZ, Borrow: wrapped, Tag: route.TagNALPHA},
		},
	}
}

func testConfig(reader AllowanceReader) Config {
	return Config{
		Looping:                looping,
		Gateway:                gateway,
		WrappedNative:          wrapped,
		WrappedNativeDebtToken: wrappedDebt,
		Allowances:             reader,
		DebtTokens:             staticDebtTokens{wrapped: wrappedDebt, tokenX: debtX},
	}
}

func newSwapBuilder(t *testing.T, cfg Config) *SwapBuilder {
	t.Helper()
	resolver, err := route.FromTables(testTables(), wrapped)
	require.NoError(t, err)
	b, err := NewSwapBuilder(cfg, resolver)
	require.NoError(t, err)
	return b
}

func mustEncode(t *testing.T, method string, args any) []byte {
	t.Helper()
	data, err := DefaultCodec().EncodeCall(method, args)
	require.NoError(t, err)
	return data
}

func selectorOf(t *testing.T, method string) []byte {
	t.Helper()
	m, ok := DefaultCodec().Method(method)
	require.True(t, ok, "unknown method %s", method)
	return m.ID
}

type staticDebtTokens map[common.Address]common.Address

func (s staticDebtTokens) DebtToken(_ context.Context, asset common.Address) (common.Address, error) {
	return s[asset], nil
}

type allowanceKey struct {
	owner, spender, token common.Address
}

type fakeAllowances struct {
	mu          sync.Mutex
	allowances  map[allowanceKey]*big.Int
	delegations map[allowanceKey]*big.Int
	err         error
	reads       []allowanceKey
}

func newFakeAllowances() *fakeAllowances {
	return &fakeAllowances{allowances: map[allowanceKey]*big.Int{}, delegations: map[allowanceKey]*big.Int{}}
}

func (f *fakeAllowances) GetAllowance(_ context.Context, owner, spender, token common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := allowanceKey{owner, spender, token}
	f.reads = append(f.reads, key)
	if f.err != nil {
		return nil, f.err
	}
	return f.allowances[key], nil
}

func (f *fakeAllowances) GetDelegationAllowance(_ context.Context, owner, spender, debtToken common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := allowanceKey{owner, spender, debtToken}
	f.reads = append(f.reads, key)
	if f.err != nil {
		return nil, f.err
	}
	return f.delegations[key], nil
}
