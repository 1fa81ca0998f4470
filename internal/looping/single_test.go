package looping

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/loop-cli/internal/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleAssetAlwaysTargetsLoopingWithoutValue(t *testing.T) {
	b, err := NewSingleAssetBuilder(testConfig(nil))
	require.NoError(t, err)

	for _, reserve := range []struct {
		name string
		addr common.Address
	}{
		{"token", tokenZ},
		{"wrapped native", wrapped},
		{"native sentinel", id.NativeAssetAddress},
	} {
		t.Run(reserve.name, func(t *testing.T) {
			p := SingleAssetParams{User: user, Reserve: reserve.addr, NumLoops: 2, Amount: big.NewInt(5e6), TargetHealthFactor: 11000}
			tx, err := b.Build(p)
			require.NoError(t, err)
			assert.Equal(t, looping, tx.To)
			assert.False(t, tx.HasValue())
			assert.Equal(t, mustEncode(t, "loopSingleAsset", loopSingleAssetArgs{
				Token:              reserve.addr,
				TargetHealthFactor: 11000,
				OnBehalfOf:         user,
				NumLoops:           2,
				InitialAmount:      big.NewInt(5e6),
			}), tx.Data)
		})
	}
}

func TestNewBuildersRequireLooping(t *testing.T) {
	cfg := testConfig(nil)
	cfg.Looping = common.Address{}

	_, err := NewSingleAssetBuilder(cfg)
	assert.Error(t, err)
	_, err = NewNativeBuilder(cfg)
	assert.Error(t, err)
}
