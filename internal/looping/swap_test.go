package looping

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
	"github.com/ggonzalez94/loop-cli/internal/id"
	"github.com/ggonzalez94/loop-cli/internal/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func swapParams(supply, borrow common.Address) SwapParams {
	return SwapParams{
		User:               user,
		SupplyReserve:      supply,
		BorrowReserve:      borrow,
		NumLoops:           3,
		Amount:             big.NewInt(1_000_000),
		TargetHealthFactor: 12000,
		MinAmountSupplied:  big.NewInt(2_500_000),
	}
}

func TestSwapSingleHopMatchesDirectCodecCall(t *testing.T) {
	b := newSwapBuilder(t, testConfig(nil))
	p := swapParams(tokenY, usd)

	tx, err := b.Build(p)
	require.NoError(t, err)

	want := mustEncode(t, "loopSingleSwap", loopSingleSwapArgs{
		SupplyToken:        tokenY,
		TargetHealthFactor: 12000,
		OnBehalfOf:         user,
		IsSupplyTokenA:     true,
		BorrowToken:        usd,
		NumLoops:           3,
		MaverickPool:       poolYUSD,
		MinAmountSupplied:  big.NewInt(2_500_000),
		InitialAmount:      big.NewInt(1_000_000),
	})
	assert.Equal(t, want, tx.Data)
	assert.Equal(t, looping, tx.To)
	assert.Equal(t, user, tx.From)
	assert.Nil(t, tx.Value)
	assert.Equal(t, "210000", tx.GasLimit.String())
}

func TestSwapEntryNativeSingleHop(t *testing.T) {
	b := newSwapBuilder(t, testConfig(nil))
	p := swapParams(id.NativeAssetAddress, usd)

	tx, err := b.Build(p)
	require.NoError(t, err)

	assert.Equal(t, gateway, tx.To)
	require.True(t, tx.HasValue())
	assert.Equal(t, 0, tx.Value.Cmp(p.Amount))
	assert.Equal(t, selectorOf(t, "loopEntryETHSingleSwap"), tx.Data[:4])
	assert.Equal(t, mustEncode(t, "loopEntryETHSingleSwap", entryETHSingleSwapArgs{
		TargetHealthFactor: 12000,
		OnBehalfOf:         user,
		IsSupplyTokenA:     true,
		BorrowToken:        usd,
		NumLoops:           3,
		MaverickPool:       poolWrappedUSD,
		MinAmountSupplied:  big.NewInt(2_500_000),
	}), tx.Data)

	m, _ := DefaultCodec().Method("loopEntryETHSingleSwap")
	assert.NotContains(t, m.Inputs[0].Type.TupleRawNames, "supplyToken")

	// The attached value is a copy.
	p.Amount.SetInt64(1)
	assert.Equal(t, "1000000", tx.Value.String())
}

func TestSwapExitNativeSingleHop(t *testing.T) {
	b := newSwapBuilder(t, testConfig(nil))

	tx, err := b.Build(swapParams(usd, id.NativeAssetAddress))
	require.NoError(t, err)

	assert.Equal(t, gateway, tx.To)
	assert.Nil(t, tx.Value)
	assert.Equal(t, mustEncode(t, "loopExitETHSingleSwap", exitETHSingleSwapArgs{
		SupplyToken:        usd,
		TargetHealthFactor: 12000,
		OnBehalfOf:         user,
		IsSupplyTokenA:     false,
		NumLoops:           3,
		MaverickPool:       poolWrappedUSD,
		MinAmountSupplied:  big.NewInt(2_500_000),
		InitialAmount:      big.NewInt(1_000_000),
	}), tx.Data)
}

func TestSwapMultiHopTargetsLoopingWithoutValue(t *testing.T) {
	b := newSwapBuilder(t, testConfig(nil))
	path := route.EncodePath(testTables().MultiHop[0].Hops)

	tx, err := b.Build(swapParams(tokenX, tokenY))
	require.NoError(t, err)

	assert.Equal(t, looping, tx.To)
	assert.Nil(t, tx.Value)
	assert.Equal(t, mustEncode(t, "loopMultiSwap", loopMultiSwapArgs{
		SupplyToken:        tokenX,
		TargetHealthFactor: 12000,
		BorrowToken:        tokenY,
		NumLoops:           3,
		OnBehalfOf:         user,
		InitialAmount:      big.NewInt(1_000_000),
		MinAmountSupplied:  big.NewInt(2_500_000),
		Path:               path,
	}), tx.Data)
}

func TestSwapMultiHopNativeSides(t *testing.T) {
	b := newSwapBuilder(t, testConfig(nil))
	tables := testTables()

	entry, err := b.Build(swapParams(id.NativeAssetAddress, tokenX))
	require.NoError(t, err)
	assert.Equal(t, gateway, entry.To)
	require.NotNil(t, entry.Value)
	assert.Equal(t, "1000000", entry.Value.String())
	assert.Equal(t, mustEncode(t, "loopEntryETHMultiSwap", entryETHMultiSwapArgs{
		TargetHealthFactor: 12000,
		OnBehalfOf:         user,
		BorrowToken:        tokenX,
		NumLoops:           3,
		MinAmountSupplied:  big.NewInt(2_500_000),
		Path:               route.EncodePath(tables.MultiHop[1].Hops),
	}), entry.Data)

	exit, err := b.Build(swapParams(tokenX, id.NativeAssetAddress))
	require.NoError(t, err)
	assert.Equal(t, gateway, exit.To)
	assert.Nil(t, exit.Value)
	assert.Equal(t, mustEncode(t, "loopExitETHMultiSwap", exitETHMultiSwapArgs{
		SupplyToken:        tokenX,
		TargetHealthFactor: 12000,
		OnBehalfOf:         user,
		NumLoops:           3,
		MinAmountSupplied:  big.NewInt(2_500_000),
		Path:               route.EncodePath(tables.MultiHop[2].Hops),
		InitialAmount:      big.NewInt(1_000_000),
	}), exit.Data)
}

func TestSwapSpecialRoutes(t *testing.T) {
	b := newSwapBuilder(t, testConfig(nil))

	// tokenX/usd also has a single-hop pool; the special function wins.
	nrwa, err := b.Build(swapParams(tokenX, usd))
	require.NoError(t, err)
	assert.Equal(t, looping, nrwa.To)
	assert.Nil(t, nrwa.Value)
	assert.Equal(t, mustEncode(t, "loopNRWA", loopSpecialArgs{
		TargetHealthFactor: 12000,
		OnBehalfOf:         user,
		NumLoops:           3,
		InitialAmount:      big.NewInt(1_000_000),
		MinAmountSupplied:  big.NewInt(2_500_000),
	}), nrwa.Data)

	splume, err := b.Build(swapParams(tokenZ, usd))
	require.NoError(t, err)
	assert.Equal(t, mustEncode(t, "loopSPLUME", loopSpecialNoMinArgs{
		TargetHealthFactor: 12000,
		OnBehalfOf:         user,
		NumLoops:           3,
		InitialAmount:      big.NewInt(1_000_000),
	}), splume.Data)
}

func TestSwapSpecialRouteWithNativeSideIsUnsupported(t *testing.T) {
	b := newSwapBuilder(t, testConfig(nil))

	tx, err := b.Build(swapParams(id.NativeAssetAddress, tokenY))
	require.Error(t, err)
	assert.True(t, clierr.HasCode(err, clierr.CodeUnsupported))
	assert.Equal(t, TxRequest{}, tx)

	// The wrapped token itself uses the dedicated function.
	tx, err = b.Build(swapParams(wrapped, tokenY))
	require.NoError(t, err)
	assert.Equal(t, selectorOf(t, "loopNINSTO"), tx.Data[:4])
}

func TestSwapErrors(t *testing.T) {
	b := newSwapBuilder(t, testConfig(nil))

	tests := []struct {
		name string
		p    SwapParams
		code clierr.Code
	}{
		{"both native", swapParams(id.NativeAssetAddress, id.NativeAssetAddress), clierr.CodeInvalidParams},
		{"no route", swapParams(tokenY, tokenX), clierr.CodeRouteNotFound},
		{"no route for unknown token", swapParams(tokenZ, tokenX), clierr.CodeRouteNotFound},
		{"missing user", func() SwapParams { p := swapParams(tokenY, usd); p.User = common.Address{}; return p }(), clierr.CodeUsage},
		{"zero amount", func() SwapParams { p := swapParams(tokenY, usd); p.Amount = new(big.Int); return p }(), clierr.CodeUsage},
		{"zero loops", func() SwapParams { p := swapParams(tokenY, usd); p.NumLoops = 0; return p }(), clierr.CodeUsage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tx, err := b.Build(tc.p)
			require.Error(t, err)
			assert.True(t, clierr.HasCode(err, tc.code), "got %v", err)
			assert.Equal(t, TxRequest{}, tx)
		})
	}
}

func TestSwapNilMinAmountSuppliedIsZero(t *testing.T) {
	b := newSwapBuilder(t, testConfig(nil))

	withNil := swapParams(tokenY, usd)
	withNil.MinAmountSupplied = nil
	withZero := swapParams(tokenY, usd)
	withZero.MinAmountSupplied = new(big.Int)

	a, err := b.Build(withNil)
	require.NoError(t, err)
	z, err := b.Build(withZero)
	require.NoError(t, err)
	assert.Equal(t, z.Data, a.Data)
}

func TestSwapGatewayFlowsNeedGateway(t *testing.T) {
	cfg := testConfig(nil)
	cfg.Gateway = common.Address{}
	b := newSwapBuilder(t, cfg)

	_, err := b.Build(swapParams(id.NativeAssetAddress, usd))
	assert.True(t, clierr.HasCode(err, clierr.CodeUsage))

	_, err = b.Build(swapParams(tokenY, usd))
	assert.NoError(t, err)
}

// Every route kind crossed with every native side must either build or fail
// with a typed, non-internal error.
func TestSwapDispatchIsExhaustive(t *testing.T) {
	b := newSwapBuilder(t, testConfig(nil))
	native := id.NativeAssetAddress

	cases := map[route.Kind]map[NativeSide]struct {
		supply, borrow common.Address
		method         string
		code           clierr.Code
	}{
		route.KindSingleHop: {
			NativeNone:   {supply: tokenY, borrow: usd, method: "loopSingleSwap"},
			NativeSupply: {supply: native, borrow: usd, method: "loopEntryETHSingleSwap"},
			NativeBorrow: {supply: usd, borrow: native, method: "loopExitETHSingleSwap"},
		},
		route.KindMultiHop: {
			NativeNone:   {supply: tokenX, borrow: tokenY, method: "loopMultiSwap"},
			NativeSupply: {supply: native, borrow: tokenX, method: "loopEntryETHMultiSwap"},
			NativeBorrow: {supply: tokenX, borrow: native, method: "loopExitETHMultiSwap"},
		},
		route.KindSpecial: {
			NativeNone:   {supply: tokenX, borrow: usd, method: "loopNRWA"},
			NativeSupply: {supply: native, borrow: tokenY, code: clierr.CodeUnsupported},
			NativeBorrow: {supply: tokenZ, borrow: native, code: clierr.CodeUnsupported},
		},
		route.KindNone: {
			NativeNone:   {supply: tokenY, borrow: tokenX, code: clierr.CodeRouteNotFound},
			NativeSupply: {supply: native, borrow: unlisted, code: clierr.CodeRouteNotFound},
			NativeBorrow: {supply: tokenY, borrow: native, code: clierr.CodeRouteNotFound},
		},
	}

	for _, kind := range route.AllKinds() {
		bySide, ok := cases[kind]
		require.True(t, ok, "route kind %s has no dispatch case", kind)
		for _, side := range AllNativeSides() {
			tc, ok := bySide[side]
			require.True(t, ok, "route kind %s with native side %s has no dispatch case", kind, side)

			tx, err := b.Build(swapParams(tc.supply, tc.borrow))
			if tc.method == "" {
				require.Error(t, err, "%s/%s", kind, side)
				assert.True(t, clierr.HasCode(err, tc.code), "%s/%s: %v", kind, side, err)
				continue
			}
			require.NoError(t, err, "%s/%s", kind, side)
			assert.Equal(t, selectorOf(t, tc.method), tx.Data[:4], "%s/%s", kind, side)
			assert.Equal(t, side == NativeSupply, tx.HasValue(), "%s/%s", kind, side)
		}
	}
}

func TestEverySpecialTagHasAFunction(t *testing.T) {
	for _, tag := range route.AllSpecialTags() {
		method, ok := SpecialMethod(tag)
		require.True(t, ok, "tag %s", tag)
		_, ok = DefaultCodec().Method(method)
		assert.True(t, ok, "tag %s maps to unknown method %s", tag, method)
	}
}
