package route

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRegistryValidation(t *testing.T) {
	cases := map[string]struct {
		single []SingleHopPool
		multi  []MultiHopPool
		errMsg string
	}{
		"zero token": {
			single: []SingleHopPool{{TokenA: common.Address{}, TokenB: usd, Pool: poolXUSD}},
			errMsg: "token address is zero",
		},
		"zero pool": {
			single: []SingleHopPool{{TokenA: tokenX, TokenB: usd}},
			errMsg: "pool address is zero",
		},
		"same token": {
			single: []SingleHopPool{{TokenA: tokenX, TokenB: tokenX, Pool: poolXUSD}},
			errMsg: "same token",
		},
		"duplicate single": {
			single: []SingleHopPool{
				{TokenA: tokenX, TokenB: usd, Pool: poolXUSD},
				{TokenA: tokenX, TokenB: usd, Pool: poolYUSD},
			},
			errMsg: "duplicate single-hop pair",
		},
		"one hop": {
			multi:  []MultiHopPool{{TokenA: tokenX, TokenB: tokenY, Hops: []Hop{{Pool: poolXUSD}}}},
			errMsg: "at least two hops",
		},
		"zero hop pool": {
			multi:  []MultiHopPool{{TokenA: tokenX, TokenB: tokenY, Hops: []Hop{{Pool: poolXUSD}, {}}}},
			errMsg: "zero pool address",
		},
		"duplicate multi": {
			multi: []MultiHopPool{
				{TokenA: tokenX, TokenB: tokenY, Hops: []Hop{{Pool: poolXUSD}, {Pool: poolYUSD}}},
				{TokenA: tokenX, TokenB: tokenY, Hops: []Hop{{Pool: poolYUSD}, {Pool: poolXUSD}}},
			},
			errMsg: "duplicate multi-hop pair",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewPoolRegistry(tc.single, tc.multi)
			require.Error(t, err)
			assert.True(t, clierr.HasCode(err, clierr.CodeUsage))
			assert.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func TestPoolRegistryLookupsAreIndependent(t *testing.T) {
	tables := testTables()
	r, err := NewPoolRegistry(tables.SingleHop, tables.MultiHop)
	require.NoError(t, err)

	pool, ok := r.SingleHop(NewPair(tokenX, usd))
	require.True(t, ok)
	assert.Equal(t, poolXUSD, pool)

	_, ok = r.SingleHop(NewPair(usd, tokenX))
	assert.False(t, ok, "exact lookup must not symmetrize")

	match, ok := r.MatchSingleHop(usd, tokenX)
	require.True(t, ok)
	assert.Equal(t, SingleHopMatch{Pool: poolXUSD, IsSupplyTokenA: false}, match)

	_, ok = r.MultiHop(NewPair(tokenY, tokenX))
	assert.False(t, ok)

	assert.Len(t, r.SingleHops(), len(tables.SingleHop))
	assert.Len(t, r.MultiHops(), len(tables.MultiHop))
}

func TestPoolRegistryCopiesInput(t *testing.T) {
	tables := testTables()
	r, err := NewPoolRegistry(tables.SingleHop, tables.MultiHop)
	require.NoError(t, err)

	tables.MultiHop[0].Hops[0].TokenAIn = !tables.MultiHop[0].Hops[0].TokenAIn
	listed := r.MultiHops()
	assert.NotEqual(t, tables.MultiHop[0].Hops[0].TokenAIn, listed[0].Hops[0].TokenAIn)

	path, ok := r.MultiHop(NewPair(tokenX, tokenY))
	require.True(t, ok)
	assert.Equal(t, EncodePath(testTables().MultiHop[0].Hops), path)
}

func TestSpecialTable(t *testing.T) {
	table, err := NewSpecialTable([]SpecialPair{{Supply: tokenX, Borrow: usd, Tag: "NRWA"}})
	require.NoError(t, err)

	tag, ok := table.Lookup(NewPair(tokenX, usd))
	require.True(t, ok)
	assert.Equal(t, TagNRWA, tag)
	_, ok = table.Lookup(NewPair(usd, tokenX))
	assert.False(t, ok)
	assert.Equal(t, []SpecialPair{{Supply: tokenX, Borrow: usd, Tag: TagNRWA}}, table.Entries())

	_, err = NewSpecialTable([]SpecialPair{{Supply: tokenX, Borrow: usd, Tag: "bogus"}})
	assert.Error(t, err)

	_, err = NewSpecialTable([]SpecialPair{
		{Supply: tokenX, Borrow: usd, Tag: TagNRWA},
		{Supply: tokenX, Borrow: usd, Tag: TagNALPHA},
	})
	assert.ErrorContains(t, err, "already tagged")

	var nilTable *SpecialTable
	_, ok = nilTable.Lookup(NewPair(tokenX, usd))
	assert.False(t, ok)
}
