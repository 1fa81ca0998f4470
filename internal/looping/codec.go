package looping

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
	"github.com/ggonzalez94/loop-cli/internal/registry"
)

// Codec turns a contract function name and its arguments into calldata.
type Codec interface {
	EncodeCall(method string, args ...any) ([]byte, error)
}

// ABICodec packs calls against a set of parsed contract ABIs. Method names
// must be unique across the set.
type ABICodec struct {
	methods map[string]abi.ABI
}

func NewABICodec(rawABIs ...string) (*ABICodec, error) {
	c := &ABICodec{methods: map[string]abi.ABI{}}
	for _, raw := range rawABIs {
		parsed, err := abi.JSON(strings.NewReader(raw))
		if err != nil {
			return nil, clierr.Wrap(clierr.CodeInternal, "parse contract abi", err)
		}
		for name := range parsed.Methods {
			if _, exists := c.methods[name]; exists {
				return nil, clierr.New(clierr.CodeInternal, fmt.Sprintf("method %s is declared by more than one abi", name))
			}
			c.methods[name] = parsed
		}
	}
	return c, nil
}

// DefaultCodec covers the looping contract, the native gateway and the token
// approval surfaces.
func DefaultCodec() *ABICodec {
	return defaultCodec
}

var defaultCodec = mustCodec(
	registry.LoopingABI,
	registry.LoopingGatewayABI,
	registry.ERC20MinimalABI,
	registry.DebtTokenABI,
)

func mustCodec(raw ...string) *ABICodec {
	c, err := NewABICodec(raw...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *ABICodec) EncodeCall(method string, args ...any) ([]byte, error) {
	parsed, ok := c.methods[method]
	if !ok {
		return nil, clierr.New(clierr.CodeInternal, fmt.Sprintf("unknown contract method %s", method))
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, fmt.Sprintf("pack %s calldata", method), err)
	}
	return data, nil
}

// Method exposes the parsed definition, mostly for selector checks.
func (c *ABICodec) Method(name string) (abi.Method, bool) {
	parsed, ok := c.methods[name]
	if !ok {
		return abi.Method{}, false
	}
	m, ok := parsed.Methods[name]
	return m, ok
}
