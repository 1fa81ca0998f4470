package looping

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
	lru "github.com/hashicorp/golang-lru"
)

const debtTokenMemoSize = 128

// ReserveReader looks a reserve's variable debt token up on the lending pool.
type ReserveReader interface {
	VariableDebtToken(ctx context.Context, asset common.Address) (common.Address, error)
}

// DebtTokenResolver answers from the deployment's static map first and falls
// back to the reader. Reader answers are memoized for the process lifetime.
type DebtTokenResolver struct {
	static map[common.Address]common.Address
	reader ReserveReader
	memo   *lru.Cache
}

func NewDebtTokenResolver(static map[common.Address]common.Address, reader ReserveReader) (*DebtTokenResolver, error) {
	memo, err := lru.New(debtTokenMemoSize)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "create debt token memo", err)
	}
	copied := make(map[common.Address]common.Address, len(static))
	for k, v := range static {
		copied[k] = v
	}
	return &DebtTokenResolver{static: copied, reader: reader, memo: memo}, nil
}

func (r *DebtTokenResolver) DebtToken(ctx context.Context, asset common.Address) (common.Address, error) {
	if debt, ok := r.static[asset]; ok {
		return debt, nil
	}
	if cached, ok := r.memo.Get(asset); ok {
		return cached.(common.Address), nil
	}
	if r.reader == nil {
		return common.Address{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("no debt token configured for %s", asset.Hex()))
	}
	debt, err := r.reader.VariableDebtToken(ctx, asset)
	if err != nil {
		return common.Address{}, err
	}
	if debt == (common.Address{}) {
		return common.Address{}, clierr.New(clierr.CodeUnsupported, fmt.Sprintf("%s is not a borrowable reserve", asset.Hex()))
	}
	r.memo.Add(asset, debt)
	return debt, nil
}
