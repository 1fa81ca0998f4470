package looping

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/loop-cli/internal/registry"
)

// SingleAssetParams loops one reserve against itself, so there is no swap leg.
type SingleAssetParams struct {
	User               common.Address
	Reserve            common.Address
	NumLoops           uint16
	Amount             *big.Int
	TargetHealthFactor uint16
}

type SingleAssetBuilder struct {
	base
}

func NewSingleAssetBuilder(cfg Config) (*SingleAssetBuilder, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	return &SingleAssetBuilder{base: b}, nil
}

// Build always targets the looping contract and never attaches value.
func (b *SingleAssetBuilder) Build(p SingleAssetParams) (TxRequest, error) {
	if err := validateLoopInputs(p.User, p.Amount, p.NumLoops); err != nil {
		return TxRequest{}, err
	}
	return b.call(b.cfg.Looping, p.User, registry.ActionLoopSingleAsset, nil, "loopSingleAsset", loopSingleAssetArgs{
		Token:              p.Reserve,
		TargetHealthFactor: p.TargetHealthFactor,
		OnBehalfOf:         p.User,
		NumLoops:           p.NumLoops,
		InitialAmount:      p.Amount,
	})
}

func (b *SingleAssetBuilder) ApprovalTarget(token common.Address) (common.Address, common.Address, error) {
	return token, b.cfg.Looping, nil
}

func (b *SingleAssetBuilder) ApprovedAmount(ctx context.Context, user, token common.Address) (Approval, error) {
	return b.readApproval(ctx, user, token, b.cfg.Looping)
}

func (b *SingleAssetBuilder) DelegationTarget(ctx context.Context, token common.Address) (common.Address, common.Address, error) {
	debtToken, err := b.debtTokenFor(ctx, token)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	return debtToken, b.cfg.Looping, nil
}

func (b *SingleAssetBuilder) CreditApprovedAmount(ctx context.Context, user, token common.Address) (Delegation, error) {
	debtToken, _, err := b.DelegationTarget(ctx, token)
	if err != nil {
		return Delegation{}, err
	}
	return b.readDelegation(ctx, user, debtToken)
}
