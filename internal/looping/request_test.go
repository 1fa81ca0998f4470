package looping

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxRequestJSONDistinguishesMissingValue(t *testing.T) {
	tx := TxRequest{To: looping, From: user, Data: []byte{0xde, 0xad}, GasLimit: big.NewInt(210000)}

	raw, err := json.Marshal(tx)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.NotContains(t, decoded, "value")
	assert.Equal(t, "0xdead", decoded["data"])
	assert.Equal(t, "210000", decoded["gas_limit"])
	assert.Equal(t, looping.Hex(), decoded["to"])

	tx.Value = new(big.Int)
	raw, err = json.Marshal(tx)
	require.NoError(t, err)
	decoded = nil
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "0", decoded["value"])
}

func TestABICodecRejectsUnknownMethodAndDuplicates(t *testing.T) {
	_, err := DefaultCodec().EncodeCall("loopEverything")
	assert.ErrorContains(t, err, "unknown contract method")

	_, err = NewABICodec(`[{"name":"approve","type":"function","inputs":[],"outputs":[]}]`, `[{"name":"approve","type":"function","inputs":[],"outputs":[]}]`)
	assert.ErrorContains(t, err, "more than one abi")
}
