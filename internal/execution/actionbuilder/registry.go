package actionbuilder

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
	"github.com/ggonzalez94/loop-cli/internal/execution"
	"github.com/ggonzalez94/loop-cli/internal/execution/planner"
	"github.com/ggonzalez94/loop-cli/internal/id"
	"github.com/ggonzalez94/loop-cli/internal/looping"
	"github.com/ggonzalez94/loop-cli/internal/registry"
	"github.com/ggonzalez94/loop-cli/internal/route"
	"go.uber.org/zap"
)

// Mode selects which looping builder handles a request.
type Mode string

const (
	ModeSwap   Mode = "swap"
	ModeSingle Mode = "single"
	ModeNative Mode = "native"
)

func AllModes() []Mode {
	return []Mode{ModeSwap, ModeSingle, ModeNative}
}

func ParseMode(input string) (Mode, error) {
	norm := Mode(strings.ToLower(strings.TrimSpace(input)))
	for _, m := range AllModes() {
		if m == norm {
			return m, nil
		}
	}
	return "", clierr.New(clierr.CodeUsage, fmt.Sprintf("unsupported mode %q (expected swap, single or native)", input))
}

type Options struct {
	Deployment registry.Deployment
	Chain      id.Chain
	RPCURL     string
	Gas        registry.GasTable
	Resolver   *route.Resolver
	Reader     looping.AllowanceReader
	DebtTokens looping.DebtTokenSource
	Logger     *zap.Logger
}

// Registry wires one deployment's builders to the action planner.
type Registry struct {
	deployment registry.Deployment
	chain      id.Chain
	rpcURL     string
	reader     looping.AllowanceReader
	log        *zap.Logger

	swap   *looping.SwapBuilder
	single *looping.SingleAssetBuilder
	native *looping.NativeBuilder
}

func New(opts Options) (*Registry, error) {
	d := opts.Deployment
	if opts.Resolver == nil {
		return nil, clierr.New(clierr.CodeInternal, "action registry requires a route resolver")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cfg := looping.Config{
		Looping:                d.Looping,
		Gateway:                d.Gateway,
		WrappedNative:          d.WrappedNative,
		WrappedNativeDebtToken: d.WrappedNativeDebtToken,
		Gas:                    opts.Gas,
		Allowances:             opts.Reader,
		DebtTokens:             opts.DebtTokens,
	}
	swap, err := looping.NewSwapBuilder(cfg, opts.Resolver)
	if err != nil {
		return nil, err
	}
	single, err := looping.NewSingleAssetBuilder(cfg)
	if err != nil {
		return nil, err
	}
	native, err := looping.NewNativeBuilder(cfg)
	if err != nil {
		return nil, err
	}
	return &Registry{
		deployment: d,
		chain:      opts.Chain,
		rpcURL:     opts.RPCURL,
		reader:     opts.Reader,
		log:        log,
		swap:       swap,
		single:     single,
		native:     native,
	}, nil
}

// LoopRequest is the mode-independent input of a loop plan. Asset is the
// supplied reserve for every mode; Borrow is only read in swap mode.
type LoopRequest struct {
	Mode               Mode
	User               common.Address
	Asset              common.Address
	Borrow             common.Address
	Amount             *big.Int
	NumLoops           uint16
	TargetHealthFactor uint16
	MinAmountSupplied  *big.Int
	Unwrap             bool
	SkipChecks         bool
	// DelegationAmount overrides the default unlimited credit delegation and
	// becomes the minimum accepted existing delegation.
	DelegationAmount *big.Int
}

func (r *Registry) BuildLoopAction(ctx context.Context, req LoopRequest) (execution.Action, error) {
	var (
		tx         looping.TxRequest
		routeLabel string
		approver   planner.Approver
		approval   *planner.Requirement
		delegation *planner.Requirement
		err        error
	)
	switch req.Mode {
	case ModeSwap:
		tx, err = r.swap.Build(looping.SwapParams{
			User:               req.User,
			SupplyReserve:      req.Asset,
			BorrowReserve:      req.Borrow,
			NumLoops:           req.NumLoops,
			Amount:             req.Amount,
			TargetHealthFactor: req.TargetHealthFactor,
			MinAmountSupplied:  req.MinAmountSupplied,
		})
		if err != nil {
			return execution.Action{}, err
		}
		rt, _ := r.swap.Resolver().Resolve(req.Asset, req.Borrow)
		routeLabel = DescribeRoute(rt)
		approver = r.swap
		if !id.IsNative(req.Asset) {
			token, spender, err := r.swap.LoopApprovalTarget(req.Asset, req.Borrow)
			if err != nil {
				return execution.Action{}, err
			}
			approval = r.requirement(token, spender, req.Amount, nil)
		}
		debtToken, delegatee, err := r.swap.DelegationTarget(ctx, req.Borrow)
		if err != nil {
			return execution.Action{}, err
		}
		delegation = r.requirement(debtToken, delegatee, req.DelegationAmount, req.DelegationAmount)
	case ModeSingle:
		if id.IsNative(req.Asset) {
			return execution.Action{}, clierr.New(clierr.CodeUsage, "single-asset loops take an erc20 reserve; use native mode for the native asset")
		}
		tx, err = r.single.Build(looping.SingleAssetParams{
			User:               req.User,
			Reserve:            req.Asset,
			NumLoops:           req.NumLoops,
			Amount:             req.Amount,
			TargetHealthFactor: req.TargetHealthFactor,
		})
		if err != nil {
			return execution.Action{}, err
		}
		routeLabel = "single_asset"
		approver = r.single
		token, spender, _ := r.single.ApprovalTarget(req.Asset)
		approval = r.requirement(token, spender, req.Amount, nil)
		debtToken, delegatee, err := r.single.DelegationTarget(ctx, req.Asset)
		if err != nil {
			return execution.Action{}, err
		}
		delegation = r.requirement(debtToken, delegatee, req.DelegationAmount, req.DelegationAmount)
	case ModeNative:
		tx, err = r.native.Build(looping.NativeParams{
			User:               req.User,
			Reserve:            req.Asset,
			NumLoops:           req.NumLoops,
			Amount:             req.Amount,
			TargetHealthFactor: req.TargetHealthFactor,
			Unwrap:             req.Unwrap,
		})
		if err != nil {
			return execution.Action{}, err
		}
		supplying := id.IsNative(req.Asset)
		mode, _ := looping.ModeFor(supplying, req.Unwrap)
		routeLabel = "native_" + mode.String()
		approver = r.native
		if !supplying {
			token, spender, err := r.native.ApprovalTarget(supplying, req.Unwrap)
			if err != nil {
				return execution.Action{}, err
			}
			approval = r.requirement(token, spender, req.Amount, nil)
		}
		debtToken, delegatee, err := r.native.DelegationTarget()
		if err != nil {
			return execution.Action{}, err
		}
		delegation = r.requirement(debtToken, delegatee, req.DelegationAmount, req.DelegationAmount)
	default:
		return execution.Action{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("unsupported mode %q", req.Mode))
	}

	constraints := execution.Constraints{
		NumLoops:           req.NumLoops,
		TargetHealthFactor: id.FormatHealthFactor(req.TargetHealthFactor),
		Unwrap:             req.Unwrap,
		SkipChecks:         req.SkipChecks,
	}
	if req.Mode == ModeSwap && req.MinAmountSupplied != nil {
		constraints.MinAmountSupplied = req.MinAmountSupplied.String()
	}
	metadata := map[string]any{
		"looping": r.deployment.Looping.Hex(),
		"asset":   id.SymbolOf(r.chain.CAIP2, req.Asset),
	}
	if req.Mode == ModeSwap {
		metadata["borrow"] = id.SymbolOf(r.chain.CAIP2, req.Borrow)
	}
	if r.deployment.Gateway != (common.Address{}) {
		metadata["gateway"] = r.deployment.Gateway.Hex()
	}

	return planner.BuildLoopAction(ctx, planner.LoopRequest{
		Mode:        string(req.Mode),
		Chain:       r.chain,
		Deployment:  r.deployment.Name,
		RPCURL:      r.rpcURL,
		User:        req.User,
		Amount:      req.Amount,
		Route:       routeLabel,
		Loop:        tx,
		Constraints: constraints,
		Approval:    approval,
		Delegation:  delegation,
		Approver:    approver,
		Reader:      r.reader,
		Metadata:    metadata,
		Logger:      r.log,
	})
}

func (r *Registry) requirement(token, spender common.Address, required, approve *big.Int) *planner.Requirement {
	return &planner.Requirement{
		Token:    token,
		Spender:  spender,
		Symbol:   symbolOrEmpty(r.chain.CAIP2, token),
		Required: required,
		Approve:  approve,
	}
}

func symbolOrEmpty(chainID string, token common.Address) string {
	if t, ok := id.LookupByAddress(chainID, token); ok {
		return t.Symbol
	}
	return ""
}

// Allowance reports the ERC-20 allowance a loop in mode would draw on. For
// native mode token is the reserve (native sentinel or wrapped token).
func (r *Registry) Allowance(ctx context.Context, mode Mode, user, token common.Address, unwrap bool) (looping.Approval, error) {
	switch mode {
	case ModeSwap:
		return r.swap.ApprovedAmount(ctx, user, token)
	case ModeSingle:
		return r.single.ApprovedAmount(ctx, user, token)
	case ModeNative:
		return r.native.ApprovedAmount(ctx, user, id.IsNative(token), unwrap)
	default:
		return looping.Approval{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("unsupported mode %q", mode))
	}
}

// Delegation reports the borrow delegation the looping contract holds for
// token's debt. Native mode ignores token.
func (r *Registry) Delegation(ctx context.Context, mode Mode, user, token common.Address) (looping.Delegation, error) {
	switch mode {
	case ModeSwap:
		return r.swap.CreditApprovedAmount(ctx, user, token)
	case ModeSingle:
		return r.single.CreditApprovedAmount(ctx, user, token)
	case ModeNative:
		return r.native.CreditApprovedAmount(ctx, user)
	default:
		return looping.Delegation{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("unsupported mode %q", mode))
	}
}

// DescribeRoute renders a route as a short label such as "single_hop" or
// "special:nrwa".
func DescribeRoute(rt route.Route) string {
	if rt.Kind == route.KindSpecial {
		return "special:" + string(rt.Tag)
	}
	return rt.Kind.String()
}
