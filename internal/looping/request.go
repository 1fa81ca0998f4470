package looping

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TxRequest is an unsigned transaction ready for a signer. A nil Value means
// no native currency is attached, which is not the same as a zero value.
type TxRequest struct {
	To       common.Address
	From     common.Address
	Data     []byte
	Value    *big.Int
	GasLimit *big.Int
}

func (t TxRequest) HasValue() bool {
	return t.Value != nil
}

type txRequestJSON struct {
	To       string `json:"to"`
	From     string `json:"from"`
	Data     string `json:"data"`
	Value    string `json:"value,omitempty"`
	GasLimit string `json:"gas_limit"`
}

func (t TxRequest) MarshalJSON() ([]byte, error) {
	out := txRequestJSON{
		To:       t.To.Hex(),
		From:     t.From.Hex(),
		Data:     hexutil.Encode(t.Data),
		GasLimit: "0",
	}
	if t.Value != nil {
		out.Value = t.Value.String()
	}
	if t.GasLimit != nil {
		out.GasLimit = t.GasLimit.String()
	}
	return json.Marshal(out)
}
