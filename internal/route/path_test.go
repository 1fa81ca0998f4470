package route

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePathPacksAddressAndFlag(t *testing.T) {
	hops := []Hop{
		{Pool: common.HexToAddress("0x40528F831D013cca16Fae64a7b4A1fA9b6ae86B7"), TokenAIn: false},
		{Pool: common.HexToAddress("0xCef7E4547328130B58e07d171F56f5A705c86fc5"), TokenAIn: true},
	}
	want := common.FromHex("0x40528f831d013cca16fae64a7b4a1fa9b6ae86b700" + "cef7e4547328130b58e07d171f56f5a705c86fc501")

	got := EncodePath(hops)
	assert.Equal(t, want, got)

	decoded, err := DecodePath(got)
	require.NoError(t, err)
	assert.Equal(t, hops, decoded)
}

func TestDecodePathRejectsMalformedInput(t *testing.T) {
	_, err := DecodePath(nil)
	assert.Error(t, err)

	_, err = DecodePath(make([]byte, hopSize+3))
	assert.Error(t, err)

	bad := make([]byte, hopSize)
	bad[hopSize-1] = 2
	_, err = DecodePath(bad)
	assert.ErrorContains(t, err, "invalid direction byte")
}
