package looping

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
	"github.com/ggonzalez94/loop-cli/internal/id"
	"github.com/ggonzalez94/loop-cli/internal/registry"
)

// NativeParams loops the wrapped native asset through the gateway. Reserve is
// either the native sentinel or the wrapped native token; Unwrap delivers the
// exit side as native currency.
type NativeParams struct {
	User               common.Address
	Reserve            common.Address
	NumLoops           uint16
	Amount             *big.Int
	TargetHealthFactor uint16
	Unwrap             bool
}

// NativeMode is one of the valid (supplying native, unwrap) combinations.
type NativeMode int

const (
	NativeModeInvalid NativeMode = iota
	NativeModeFull
	NativeModeEntry
	NativeModeExit
)

func (m NativeMode) String() string {
	switch m {
	case NativeModeFull:
		return "full"
	case NativeModeEntry:
		return "entry"
	case NativeModeExit:
		return "exit"
	default:
		return "invalid"
	}
}

func (m NativeMode) method() string {
	switch m {
	case NativeModeFull:
		return "loopETHSingleAsset"
	case NativeModeEntry:
		return "loopEntryETHSingleAsset"
	case NativeModeExit:
		return "loopExitETHSingleAsset"
	default:
		return ""
	}
}

// ModeFor classifies a request. Not supplying native and not unwrapping has
// no gateway function and is rejected.
func ModeFor(supplyingNative, unwrap bool) (NativeMode, error) {
	switch {
	case supplyingNative && unwrap:
		return NativeModeFull, nil
	case supplyingNative:
		return NativeModeEntry, nil
	case unwrap:
		return NativeModeExit, nil
	default:
		return NativeModeInvalid, clierr.New(clierr.CodeInvalidParams, "native loop must supply the native asset or unwrap on exit")
	}
}

type NativeBuilder struct {
	base
}

func NewNativeBuilder(cfg Config) (*NativeBuilder, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := b.wrappedNative(); err != nil {
		return nil, err
	}
	return &NativeBuilder{base: b}, nil
}

func (b *NativeBuilder) Build(p NativeParams) (TxRequest, error) {
	if err := validateLoopInputs(p.User, p.Amount, p.NumLoops); err != nil {
		return TxRequest{}, err
	}
	supplyingNative := id.IsNative(p.Reserve)
	mode, err := ModeFor(supplyingNative, p.Unwrap)
	if err != nil {
		return TxRequest{}, err
	}
	if !supplyingNative && p.Reserve != b.cfg.WrappedNative {
		return TxRequest{}, clierr.New(clierr.CodeInvalidParams, "native loop reserve must be the native asset or the wrapped native token")
	}
	gateway, err := b.gateway()
	if err != nil {
		return TxRequest{}, err
	}

	switch mode {
	case NativeModeFull, NativeModeEntry:
		return b.call(gateway, p.User, registry.ActionLoopNative, p.Amount, mode.method(), nativeLoopArgs{
			TargetHealthFactor: p.TargetHealthFactor,
			OnBehalfOf:         p.User,
			NumLoops:           p.NumLoops,
		})
	case NativeModeExit:
		return b.call(gateway, p.User, registry.ActionLoopNative, nil, mode.method(), exitETHSingleAssetArgs{
			TargetHealthFactor: p.TargetHealthFactor,
			OnBehalfOf:         p.User,
			NumLoops:           p.NumLoops,
			InitialAmount:      p.Amount,
		})
	default:
		return TxRequest{}, clierr.New(clierr.CodeInternal, "unhandled native loop mode "+mode.String())
	}
}

// ApprovalTarget returns the wrapped native token and its spender. Exiting to
// native pulls the wrapped token through the gateway; every other mode
// approves the looping contract.
func (b *NativeBuilder) ApprovalTarget(supplyingNative, unwrap bool) (common.Address, common.Address, error) {
	if !supplyingNative && unwrap {
		gateway, err := b.gateway()
		if err != nil {
			return common.Address{}, common.Address{}, err
		}
		return b.cfg.WrappedNative, gateway, nil
	}
	return b.cfg.WrappedNative, b.cfg.Looping, nil
}

func (b *NativeBuilder) ApprovedAmount(ctx context.Context, user common.Address, supplyingNative, unwrap bool) (Approval, error) {
	token, spender, err := b.ApprovalTarget(supplyingNative, unwrap)
	if err != nil {
		return Approval{}, err
	}
	return b.readApproval(ctx, user, token, spender)
}

func (b *NativeBuilder) DelegationTarget() (common.Address, common.Address, error) {
	if b.cfg.WrappedNativeDebtToken == (common.Address{}) {
		return common.Address{}, common.Address{}, clierr.New(clierr.CodeUsage, "wrapped native debt token address is not configured")
	}
	return b.cfg.WrappedNativeDebtToken, b.cfg.Looping, nil
}

func (b *NativeBuilder) CreditApprovedAmount(ctx context.Context, user common.Address) (Delegation, error) {
	debtToken, _, err := b.DelegationTarget()
	if err != nil {
		return Delegation{}, err
	}
	return b.readDelegation(ctx, user, debtToken)
}
