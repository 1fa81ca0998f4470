package looping

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
	"github.com/ggonzalez94/loop-cli/internal/id"
	"github.com/ggonzalez94/loop-cli/internal/registry"
	"github.com/ggonzalez94/loop-cli/internal/route"
)

// SwapParams describes a loop that borrows one asset and swaps it back into
// the supplied asset. Either reserve may be the native sentinel.
type SwapParams struct {
	User               common.Address
	SupplyReserve      common.Address
	BorrowReserve      common.Address
	NumLoops           uint16
	Amount             *big.Int
	TargetHealthFactor uint16
	MinAmountSupplied  *big.Int
}

// NativeSide says which leg of a swap loop, if any, is the native asset.
type NativeSide int

const (
	NativeNone NativeSide = iota
	NativeSupply
	NativeBorrow
)

func AllNativeSides() []NativeSide {
	return []NativeSide{NativeNone, NativeSupply, NativeBorrow}
}

func (s NativeSide) String() string {
	switch s {
	case NativeNone:
		return "none"
	case NativeSupply:
		return "supply"
	case NativeBorrow:
		return "borrow"
	default:
		return fmt.Sprintf("native_side(%d)", int(s))
	}
}

type specialCall struct {
	method        string
	withMinSupply bool
	gatewayMethod string
}

// specialCalls selects the dedicated looping function per tag. None of the
// current tags has a gateway variant.
var specialCalls = map[route.SpecialTag]specialCall{
	route.TagNALPHA: {method: "loopNALPHA", withMinSupply: true},
	route.TagNRWA:   {method: "loopNRWA", withMinSupply: true},
	route.TagNINSTO: {method: "loopNINSTO"},
	route.TagSPLUME: {method: "loopSPLUME"},
}

// SpecialMethod returns the contract function a special tag calls.
func SpecialMethod(tag route.SpecialTag) (string, bool) {
	call, ok := specialCalls[tag]
	return call.method, ok
}

type SwapBuilder struct {
	base
	resolver *route.Resolver
}

func NewSwapBuilder(cfg Config, resolver *route.Resolver) (*SwapBuilder, error) {
	if resolver == nil {
		return nil, clierr.New(clierr.CodeInternal, "swap builder requires a route resolver")
	}
	if cfg.WrappedNative == (common.Address{}) {
		cfg.WrappedNative = resolver.WrappedNative()
	}
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	return &SwapBuilder{base: b, resolver: resolver}, nil
}

func (b *SwapBuilder) Resolver() *route.Resolver { return b.resolver }

// Build resolves the route for the pair and encodes the matching call.
func (b *SwapBuilder) Build(p SwapParams) (TxRequest, error) {
	if err := validateLoopInputs(p.User, p.Amount, p.NumLoops); err != nil {
		return TxRequest{}, err
	}
	side, err := nativeSideOf(p.SupplyReserve, p.BorrowReserve)
	if err != nil {
		return TxRequest{}, err
	}
	rt, err := b.resolver.Resolve(p.SupplyReserve, p.BorrowReserve)
	if err != nil {
		return TxRequest{}, err
	}
	if p.MinAmountSupplied == nil {
		p.MinAmountSupplied = new(big.Int)
	}

	switch rt.Kind {
	case route.KindSpecial:
		return b.buildSpecial(p, rt.Tag, side)
	case route.KindSingleHop:
		return b.buildSingleHop(p, rt, side)
	case route.KindMultiHop:
		return b.buildMultiHop(p, rt, side)
	case route.KindNone:
		return TxRequest{}, clierr.New(clierr.CodeRouteNotFound, fmt.Sprintf("no swap route found for supply %s and borrow %s", p.SupplyReserve.Hex(), p.BorrowReserve.Hex()))
	default:
		return TxRequest{}, clierr.New(clierr.CodeInternal, fmt.Sprintf("unhandled route kind %s", rt.Kind))
	}
}

func nativeSideOf(supply, borrow common.Address) (NativeSide, error) {
	supplyNative, borrowNative := id.IsNative(supply), id.IsNative(borrow)
	switch {
	case supplyNative && borrowNative:
		return NativeNone, clierr.New(clierr.CodeInvalidParams, "supply and borrow cannot both be the native asset")
	case supplyNative:
		return NativeSupply, nil
	case borrowNative:
		return NativeBorrow, nil
	default:
		return NativeNone, nil
	}
}

func (b *SwapBuilder) buildSpecial(p SwapParams, tag route.SpecialTag, side NativeSide) (TxRequest, error) {
	call, ok := specialCalls[tag]
	if !ok {
		return TxRequest{}, clierr.New(clierr.CodeInternal, fmt.Sprintf("no contract function for special route %s", tag))
	}
	if side != NativeNone {
		if call.gatewayMethod == "" {
			return TxRequest{}, clierr.New(clierr.CodeUnsupported, fmt.Sprintf("special route %s does not support the native asset", tag))
		}
		gateway, err := b.gateway()
		if err != nil {
			return TxRequest{}, err
		}
		var value *big.Int
		if side == NativeSupply {
			value = p.Amount
		}
		return b.call(gateway, p.User, registry.ActionLoopSwap, value, call.gatewayMethod, specialArgs(p, call))
	}
	return b.call(b.cfg.Looping, p.User, registry.ActionLoopSwap, nil, call.method, specialArgs(p, call))
}

func specialArgs(p SwapParams, call specialCall) any {
	if call.withMinSupply {
		return loopSpecialArgs{
			TargetHealthFactor: p.TargetHealthFactor,
			OnBehalfOf:         p.User,
			NumLoops:           p.NumLoops,
			InitialAmount:      p.Amount,
			MinAmountSupplied:  p.MinAmountSupplied,
		}
	}
	return loopSpecialNoMinArgs{
		TargetHealthFactor: p.TargetHealthFactor,
		OnBehalfOf:         p.User,
		NumLoops:           p.NumLoops,
		InitialAmount:      p.Amount,
	}
}

func (b *SwapBuilder) buildSingleHop(p SwapParams, rt route.Route, side NativeSide) (TxRequest, error) {
	switch side {
	case NativeNone:
		return b.call(b.cfg.Looping, p.User, registry.ActionLoopSwap, nil, "loopSingleSwap", loopSingleSwapArgs{
			SupplyToken:        p.SupplyReserve,
			TargetHealthFactor: p.TargetHealthFactor,
			OnBehalfOf:         p.User,
			IsSupplyTokenA:     rt.IsSupplyTokenA,
			BorrowToken:        p.BorrowReserve,
			NumLoops:           p.NumLoops,
			MaverickPool:       rt.Pool,
			MinAmountSupplied:  p.MinAmountSupplied,
			InitialAmount:      p.Amount,
		})
	case NativeSupply:
		gateway, err := b.gateway()
		if err != nil {
			return TxRequest{}, err
		}
		return b.call(gateway, p.User, registry.ActionLoopSwap, p.Amount, "loopEntryETHSingleSwap", entryETHSingleSwapArgs{
			TargetHealthFactor: p.TargetHealthFactor,
			OnBehalfOf:         p.User,
			IsSupplyTokenA:     rt.IsSupplyTokenA,
			BorrowToken:        p.BorrowReserve,
			NumLoops:           p.NumLoops,
			MaverickPool:       rt.Pool,
			MinAmountSupplied:  p.MinAmountSupplied,
		})
	case NativeBorrow:
		gateway, err := b.gateway()
		if err != nil {
			return TxRequest{}, err
		}
		return b.call(gateway, p.User, registry.ActionLoopSwap, nil, "loopExitETHSingleSwap", exitETHSingleSwapArgs{
			SupplyToken:        p.SupplyReserve,
			TargetHealthFactor: p.TargetHealthFactor,
			OnBehalfOf:         p.User,
			IsSupplyTokenA:     rt.IsSupplyTokenA,
			NumLoops:           p.NumLoops,
			MaverickPool:       rt.Pool,
			MinAmountSupplied:  p.MinAmountSupplied,
			InitialAmount:      p.Amount,
		})
	default:
		return TxRequest{}, clierr.New(clierr.CodeInternal, fmt.Sprintf("unhandled native side %s", side))
	}
}

func (b *SwapBuilder) buildMultiHop(p SwapParams, rt route.Route, side NativeSide) (TxRequest, error) {
	switch side {
	case NativeNone:
		return b.call(b.cfg.Looping, p.User, registry.ActionLoopSwap, nil, "loopMultiSwap", loopMultiSwapArgs{
			SupplyToken:        p.SupplyReserve,
			TargetHealthFactor: p.TargetHealthFactor,
			BorrowToken:        p.BorrowReserve,
			NumLoops:           p.NumLoops,
			OnBehalfOf:         p.User,
			InitialAmount:      p.Amount,
			MinAmountSupplied:  p.MinAmountSupplied,
			Path:               rt.Path,
		})
	case NativeSupply:
		gateway, err := b.gateway()
		if err != nil {
			return TxRequest{}, err
		}
		return b.call(gateway, p.User, registry.ActionLoopSwap, p.Amount, "loopEntryETHMultiSwap", entryETHMultiSwapArgs{
			TargetHealthFactor: p.TargetHealthFactor,
			OnBehalfOf:         p.User,
			BorrowToken:        p.BorrowReserve,
			NumLoops:           p.NumLoops,
			MinAmountSupplied:  p.MinAmountSupplied,
			Path:               rt.Path,
		})
	case NativeBorrow:
		gateway, err := b.gateway()
		if err != nil {
			return TxRequest{}, err
		}
		return b.call(gateway, p.User, registry.ActionLoopSwap, nil, "loopExitETHMultiSwap", exitETHMultiSwapArgs{
			SupplyToken:        p.SupplyReserve,
			TargetHealthFactor: p.TargetHealthFactor,
			OnBehalfOf:         p.User,
			NumLoops:           p.NumLoops,
			MinAmountSupplied:  p.MinAmountSupplied,
			Path:               rt.Path,
			InitialAmount:      p.Amount,
		})
	default:
		return TxRequest{}, clierr.New(clierr.CodeInternal, fmt.Sprintf("unhandled native side %s", side))
	}
}

// ApprovalTarget returns the token whose allowance a loop supplying token
// needs, and the spender. The native sentinel is checked as the wrapped token
// against the gateway.
func (b *SwapBuilder) ApprovalTarget(token common.Address) (common.Address, common.Address, error) {
	if id.IsNative(token) {
		gateway, err := b.gateway()
		if err != nil {
			return common.Address{}, common.Address{}, err
		}
		return b.resolver.Normalize(token), gateway, nil
	}
	return token, b.cfg.Looping, nil
}

// LoopApprovalTarget is the allowance a loop from supply into borrow draws on.
// Exits to native run through the gateway, which pulls the supplied token.
func (b *SwapBuilder) LoopApprovalTarget(supply, borrow common.Address) (common.Address, common.Address, error) {
	if id.IsNative(borrow) && !id.IsNative(supply) {
		gateway, err := b.gateway()
		if err != nil {
			return common.Address{}, common.Address{}, err
		}
		return supply, gateway, nil
	}
	return b.ApprovalTarget(supply)
}

func (b *SwapBuilder) ApprovedAmount(ctx context.Context, user, token common.Address) (Approval, error) {
	readToken, spender, err := b.ApprovalTarget(token)
	if err != nil {
		return Approval{}, err
	}
	return b.readApproval(ctx, user, readToken, spender)
}

// DelegationTarget returns token's variable debt token and the delegatee.
func (b *SwapBuilder) DelegationTarget(ctx context.Context, token common.Address) (common.Address, common.Address, error) {
	debtToken, err := b.debtTokenFor(ctx, b.resolver.Normalize(token))
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	return debtToken, b.cfg.Looping, nil
}

// CreditApprovedAmount reports the borrow delegation the looping contract
// holds on token's variable debt token.
func (b *SwapBuilder) CreditApprovedAmount(ctx context.Context, user, token common.Address) (Delegation, error) {
	debtToken, _, err := b.DelegationTarget(ctx, token)
	if err != nil {
		return Delegation{}, err
	}
	return b.readDelegation(ctx, user, debtToken)
}
