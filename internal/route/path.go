package route

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Hop is one pool of a multi-hop path. TokenAIn reports whether the swap
// enters the pool on its token A side.
type Hop struct {
	Pool     common.Address `json:"pool"`
	TokenAIn bool           `json:"token_a_in"`
}

const hopSize = common.AddressLength + 1

// EncodePath packs hops the way Solidity's abi.encodePacked(address, bool, ...)
// does: 20 address bytes followed by a single 0x00/0x01 byte, per hop.
func EncodePath(hops []Hop) []byte {
	out := make([]byte, 0, len(hops)*hopSize)
	for _, hop := range hops {
		out = append(out, hop.Pool.Bytes()...)
		if hop.TokenAIn {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	}
	return out
}

func DecodePath(path []byte) ([]Hop, error) {
	if len(path) == 0 || len(path)%hopSize != 0 {
		return nil, fmt.Errorf("path length %d is not a multiple of %d", len(path), hopSize)
	}
	hops := make([]Hop, 0, len(path)/hopSize)
	for off := 0; off < len(path); off += hopSize {
		flag := path[off+common.AddressLength]
		if flag > 1 {
			return nil, fmt.Errorf("hop %d: invalid direction byte 0x%02x", off/hopSize, flag)
		}
		hops = append(hops, Hop{
			Pool:     common.BytesToAddress(path[off : off+common.AddressLength]),
			TokenAIn: flag == 1,
		})
	}
	return hops, nil
}
